package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	"github.com/charmbracelet/wish/logging"

	"github.com/tomz197/paddleball/internal/config"
	"github.com/tomz197/paddleball/internal/draw"
	"github.com/tomz197/paddleball/internal/events"
	"github.com/tomz197/paddleball/internal/game"
	"github.com/tomz197/paddleball/internal/input"
	"github.com/tomz197/paddleball/internal/loop"
	"github.com/tomz197/paddleball/internal/object"
)

// sessions tracks running games so shutdown can end them.
type sessions struct {
	mu sync.Mutex
	m  map[*loop.Session]struct{}
	wg sync.WaitGroup
}

func (s *sessions) add(sess *loop.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[sess] = struct{}{}
	s.wg.Add(1)
}

func (s *sessions) remove(sess *loop.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, sess)
	s.wg.Done()
}

// stopAll stops every session and waits up to timeout for them to return.
func (s *sessions) stopAll(timeout time.Duration) {
	s.mu.Lock()
	for sess := range s.m {
		sess.Stop()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
	}
}

type app struct {
	cfg      config.Game
	log      *log.Logger
	sink     game.Sink
	sessions *sessions
}

func main() {
	host := config.LoadHost()
	logger := host.Logger("ssh")

	cfg := config.FromEnv()
	if err := cfg.Validate(); err != nil {
		logger.Fatal("bad game config", "err", err)
	}

	workingDir, workErr := os.Getwd()
	if workErr != nil {
		logger.Warn("failed to get working directory", "err", workErr)
	}
	logger.Info("ssh config", "host", host.SSHHost, "port", host.SSHPort,
		"hostKeyPath", host.SSHHostKeyPath, "workingDir", workingDir)

	a := &app{
		cfg:      cfg,
		log:      logger,
		sessions: &sessions{m: make(map[*loop.Session]struct{})},
	}

	if host.RedisURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		rdb, err := events.Connect(ctx, host.RedisURL)
		cancel()
		if err != nil {
			logger.Warn("event publishing disabled", "err", err)
		} else {
			defer rdb.Close()
			pub := events.NewPublisher(rdb, host.EventsChannel, logger.WithPrefix("events"))
			defer pub.Close()
			a.sink = pub
			logger.Info("publishing match events", "channel", host.EventsChannel)
		}
	}

	opts := []ssh.Option{
		wish.WithAddress(net.JoinHostPort(host.SSHHost, host.SSHPort)),
		wish.WithMiddleware(
			a.gameMiddleware,
			activeterm.Middleware(),
			logging.StructuredMiddlewareWithLogger(logger, log.InfoLevel),
		),
		// Set TCP_NODELAY to reduce latency for paddle input
		ssh.WrapConn(func(ctx ssh.Context, conn net.Conn) net.Conn {
			if tcpConn, ok := conn.(*net.TCPConn); ok {
				_ = tcpConn.SetNoDelay(true)
			}
			return conn
		}),
	}

	if host.SSHHostKeyPath != "" {
		opts = append(opts, wish.WithHostKeyPath(host.SSHHostKeyPath))
	}

	s, err := wish.NewServer(opts...)
	if err != nil {
		logger.Fatal("failed to create server", "err", err)
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("starting ssh server", "addr", net.JoinHostPort(host.SSHHost, host.SSHPort))
	go func() {
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			logger.Fatal("server error", "err", err)
		}
	}()

	<-done
	logger.Info("shutting down server")
	a.sessions.stopAll(15 * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.Shutdown(ctx); err != nil {
		logger.Fatal("shutdown error", "err", err)
	}
}

// gameMiddleware runs one match against the AI per SSH session.
func (a *app) gameMiddleware(next ssh.Handler) ssh.Handler {
	return func(sess ssh.Session) {
		pty, winCh, ok := sess.Pty()
		if !ok {
			fmt.Fprintln(sess, "Error: PTY required. Please connect with: ssh -t user@host")
			return
		}

		logger := a.log.With("user", sess.User())
		logger.Info("new game session", "terminal", pty.Term,
			"width", pty.Window.Width, "height", pty.Window.Height)

		// Create a terminal size tracker that updates on window changes
		sizeTracker := newSizeTracker(pty.Window.Width, pty.Window.Height)

		// Listen for window size changes in a goroutine
		go func() {
			for win := range winCh {
				sizeTracker.update(win.Width, win.Height)
			}
		}()

		renderWidth, renderHeight, _, _ := draw.ClampTermSize(pty.Window.Width, pty.Window.Height,
			config.MaxTermWidth, config.MaxTermHeight)
		keys := &input.Buttons{}
		engine, err := game.New(a.cfg, game.Options{
			Viewport: loop.CourtViewport(renderWidth, renderHeight),
			Left:     object.NewHuman(keys),
			Names:    [2]string{sess.User(), "cpu"},
			Logger:   logger,
			Sink:     a.sink,
		})
		if err != nil {
			logger.Error("engine", "err", err)
			fmt.Fprintln(sess, "Error: game unavailable")
			return
		}

		gs := loop.NewSession(engine, bufio.NewReader(sess), sess, loop.Options{
			Pausable:       engine,
			Resizable:      engine,
			Left:           keys,
			SinglePlayer:   true,
			TermSizeFunc:   sizeTracker.getSize,
			Logger:         logger,
			Subtitle:       fmt.Sprintf("%s against the cpu, first to %d", sess.User(), a.cfg.WinningScore),
			Controls:       []string{"W/S or I/K or arrows  move", "P  pause     Q  quit"},
			IdleDisconnect: true,
		})
		a.sessions.add(gs)
		defer a.sessions.remove(gs)

		if err := gs.Run(sess.Context()); err != nil {
			logger.Error("game error", "err", err)
		}

		logger.Info("session ended", "controllerFaults", engine.ControllerFaults())
		next(sess)
	}
}

// sizeTracker tracks terminal size from SSH window change events.
type sizeTracker struct {
	mu     sync.RWMutex
	width  int
	height int
}

func newSizeTracker(width, height int) *sizeTracker {
	return &sizeTracker{width: width, height: height}
}

func (s *sizeTracker) update(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width = width
	s.height = height
}

func (s *sizeTracker) getSize() (int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.width, s.height, nil
}

// Ensure sizeTracker.getSize satisfies draw.TermSizeFunc
var _ draw.TermSizeFunc = (*sizeTracker)(nil).getSize
