package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"golang.org/x/term"

	"github.com/tomz197/paddleball/internal/config"
	"github.com/tomz197/paddleball/internal/draw"
	"github.com/tomz197/paddleball/internal/events"
	"github.com/tomz197/paddleball/internal/game"
	"github.com/tomz197/paddleball/internal/input"
	"github.com/tomz197/paddleball/internal/loop"
	"github.com/tomz197/paddleball/internal/object"
)

func main() {
	versus := flag.Bool("versus", false, "two players on one keyboard (w/s against i/k)")
	logFile := flag.String("log", os.Getenv("LOG_FILE"), "write logs to this file")
	flag.Parse()

	host := config.LoadHost()
	logger := newLogger(host, *logFile)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var sink game.Sink
	if host.RedisURL != "" {
		rdb, err := events.Connect(ctx, host.RedisURL)
		if err != nil {
			logger.Warn("event publishing disabled", "err", err)
		} else {
			defer rdb.Close()
			pub := events.NewPublisher(rdb, host.EventsChannel, logger)
			defer pub.Close()
			sink = pub
		}
	}

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to enable raw mode: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = term.Restore(fd, oldState)
	}()

	if err := run(ctx, *versus, sink, logger); err != nil {
		_ = term.Restore(fd, oldState)
		fmt.Fprintf(os.Stderr, "game error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, versus bool, sink game.Sink, logger *log.Logger) error {
	renderWidth, renderHeight, _, _, err := draw.DefaultTermSizeFunc.RenderArea(config.MaxTermWidth, config.MaxTermHeight)
	if err != nil {
		renderWidth, renderHeight = 80, 24
	}

	cfg := config.FromEnv()
	leftKeys := &input.Buttons{}
	opts := game.Options{
		Viewport: loop.CourtViewport(renderWidth, renderHeight),
		Left:     object.NewHuman(leftKeys),
		Names:    [2]string{"you", "cpu"},
		Logger:   logger,
		Sink:     sink,
	}
	sessOpts := loop.Options{
		Left:         leftKeys,
		SinglePlayer: !versus,
		Logger:       logger,
		Subtitle:     fmt.Sprintf("you against the cpu, first to %d", cfg.WinningScore),
		Controls: []string{
			"W/S or I/K or arrows  move",
			"P  pause     Q  quit",
		},
	}
	if versus {
		rightKeys := &input.Buttons{}
		opts.Right = object.NewHuman(rightKeys)
		opts.Names = [2]string{"left", "right"}
		sessOpts.Right = rightKeys
		sessOpts.Subtitle = fmt.Sprintf("two players, one keyboard, first to %d", cfg.WinningScore)
		sessOpts.Controls = []string{
			"Left  W/S     Right  I/K or arrows",
			"P  pause     Q  quit",
		}
	}

	engine, err := game.New(cfg, opts)
	if err != nil {
		return err
	}
	sessOpts.Pausable = engine
	sessOpts.Resizable = engine

	sess := loop.NewSession(engine, bufio.NewReader(os.Stdin), os.Stdout, sessOpts)
	return sess.Run(ctx)
}

// newLogger writes to path, or nowhere: stderr belongs to the game screen.
func newLogger(host config.Host, path string) *log.Logger {
	if path == "" {
		return log.New(io.Discard)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open log file: %v\n", err)
		return log.New(io.Discard)
	}
	logger := log.NewWithOptions(f, log.Options{ReportTimestamp: true, Prefix: "pong"})
	if level, err := log.ParseLevel(host.LogLevel); err == nil {
		logger.SetLevel(level)
	}
	return logger
}
