// Package loop drives a match from a terminal: input, engine advance, draw, frame sleep.
package loop

import (
	"bufio"
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/paddleball/internal/config"
	"github.com/tomz197/paddleball/internal/draw"
	"github.com/tomz197/paddleball/internal/events"
	"github.com/tomz197/paddleball/internal/game"
	"github.com/tomz197/paddleball/internal/input"
	"github.com/tomz197/paddleball/internal/object"
)

// Scene is what a session drives each frame.
type Scene interface {
	Start() error
	Advance(realDelta time.Duration) (game.Tick, error)
	Snapshot() game.RenderState
	DrainEvents() []game.Event
}

// Pausable scenes accept pause toggles.
type Pausable interface {
	TogglePause() error
}

// Resizable scenes follow the terminal size.
type Resizable interface {
	BeginResize()
	Resize(vp object.Viewport) error
	EndResize()
}

// Options configures a session. Pausable and Resizable are optional; a session
// without them ignores pause keys and keeps its court size.
type Options struct {
	Pausable  Pausable
	Resizable Resizable

	// Ports fed from the keyboard. Nil ports are skipped (AI-driven paddles).
	Left, Right *input.Buttons
	// SinglePlayer routes both key sets to the left paddle.
	SinglePlayer bool

	TermSizeFunc draw.TermSizeFunc
	Logger       *log.Logger
	Subtitle     string
	Controls     []string

	// IdleDisconnect ends the session after InactivityDisconnectUser seconds without
	// a key press, warning from InactivityWarnUser.
	IdleDisconnect bool
}

// Session runs one scene against one terminal.
type Session struct {
	scene     Scene
	pausable  Pausable
	resizable Resizable

	left, right  *input.Buttons
	singlePlayer bool

	canvas       *draw.Canvas
	chunkWriter  *draw.ChunkWriter
	writer       io.Writer
	inputStream  *input.Stream
	termSizeFunc draw.TermSizeFunc
	log          *log.Logger

	overlay        draw.Overlay
	idleDisconnect bool
	lastInput      time.Time
	prevState      game.GameState
	wasInactive    bool
	stats          events.Stats

	stopOnce sync.Once
	done     chan struct{}
}

// NewSession wires a scene to a terminal reader and writer.
func NewSession(scene Scene, r *bufio.Reader, w io.Writer, opts Options) *Session {
	termSizeFunc := opts.TermSizeFunc
	if termSizeFunc == nil {
		termSizeFunc = draw.DefaultTermSizeFunc
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	rs := scene.Snapshot()
	renderWidth, renderHeight, offsetCol, offsetRow, _ := termSizeFunc.RenderArea(config.MaxTermWidth, config.MaxTermHeight)
	canvas := draw.NewScaledCanvas(renderWidth, renderHeight, rs.Viewport.Width, rs.Viewport.Height)
	canvas.SetOffset(offsetCol, offsetRow)

	return &Session{
		scene:          scene,
		pausable:       opts.Pausable,
		resizable:      opts.Resizable,
		left:           opts.Left,
		right:          opts.Right,
		singlePlayer:   opts.SinglePlayer,
		canvas:         canvas,
		chunkWriter:    draw.NewChunkWriter(w, offsetCol, offsetRow),
		writer:         w,
		inputStream:    input.StartStream(r),
		termSizeFunc:   termSizeFunc,
		log:            logger,
		overlay:        draw.Overlay{Subtitle: opts.Subtitle, Controls: opts.Controls},
		idleDisconnect: opts.IdleDisconnect,
		lastInput:      time.Now(),
		prevState:      -1,
		done:           make(chan struct{}),
	}
}

// Stop ends Run at the next frame boundary. Safe to call repeatedly and from any
// goroutine.
func (s *Session) Stop() {
	s.stopOnce.Do(func() { close(s.done) })
}

// Run blocks until the player quits, ctx is cancelled, Stop is called or the scene
// faults. A fault is returned after the final frame is drawn.
func (s *Session) Run(ctx context.Context) error {
	draw.EnterGame(s.writer)
	defer draw.LeaveGame(s.writer)
	s.resizeScene(s.canvas.TerminalWidth(), s.canvas.TerminalHeight())

	lastTime := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.done:
			return nil
		default:
		}

		frameStart := time.Now()
		delta := frameStart.Sub(lastTime)
		lastTime = frameStart

		if !s.processInput(frameStart) {
			return nil
		}
		s.updateScreen()

		_, stepErr := s.scene.Advance(delta)
		s.stats.ObserveAll(s.scene.DrainEvents())

		if err := s.drawFrame(frameStart); err != nil {
			return err
		}
		if stepErr != nil {
			s.log.Error("session stopped", "err", stepErr)
			return stepErr
		}

		elapsed := time.Since(frameStart)
		if elapsed < config.ClientTargetFrameTime {
			timer := time.NewTimer(config.ClientTargetFrameTime - elapsed)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
			case <-s.done:
				timer.Stop()
			}
		}
	}
}

// processInput feeds keys to the ports and handles menu keys. Returns false to quit.
func (s *Session) processInput(now time.Time) bool {
	in := input.ReadInput(s.inputStream)
	if in.Quit {
		return false
	}

	if len(in.Pressed) > 0 {
		s.lastInput = now
		s.overlay.Inactive = false
	} else if s.idleDisconnect {
		idle := now.Sub(s.lastInput)
		if idle > config.InactivityDisconnectUser*time.Second {
			s.log.Info("disconnecting idle session", "idle", idle.Round(time.Second))
			return false
		}
		if idle > config.InactivityWarnUser*time.Second {
			s.overlay.Inactive = true
			s.overlay.DisconnectIn = config.InactivityDisconnectUser*time.Second - idle
		}
	}

	left, right := in.Left, in.Right
	if s.singlePlayer {
		left = input.PressState{Up: in.Left.Up || in.Right.Up, Down: in.Left.Down || in.Right.Down}
		right = input.PressState{}
	}
	if s.left != nil {
		s.left.Set(left.Up, left.Down)
	}
	if s.right != nil {
		s.right.Set(right.Up, right.Down)
	}

	if in.Start {
		switch err := s.scene.Start(); {
		case err == nil:
			s.inputStream.Reset()
		case !errors.Is(err, game.ErrMatchInProgress):
			s.log.Warn("start failed", "err", err)
		}
	}
	if in.Pause && s.pausable != nil {
		if err := s.pausable.TogglePause(); err != nil && !errors.Is(err, game.ErrNotRunning) {
			s.log.Warn("pause failed", "err", err)
		}
	}
	return true
}

// updateScreen handles terminal resize, clamping to max render resolution.
func (s *Session) updateScreen() {
	renderWidth, renderHeight, offsetCol, offsetRow, err := s.termSizeFunc.RenderArea(config.MaxTermWidth, config.MaxTermHeight)
	if err != nil {
		return
	}

	if renderWidth == s.canvas.TerminalWidth() && renderHeight == s.canvas.TerminalHeight() &&
		offsetCol == s.canvas.OffsetCol() && offsetRow == s.canvas.OffsetRow() {
		return
	}

	draw.ClearScreen(s.writer)
	s.canvas.Resize(renderWidth, renderHeight)
	s.canvas.SetOffset(offsetCol, offsetRow)
	s.canvas.ForceRedraw()
	s.chunkWriter.SetOffset(offsetCol, offsetRow)
	s.resizeScene(renderWidth, renderHeight)
}

func (s *Session) resizeScene(renderWidth, renderHeight int) {
	if s.resizable == nil {
		return
	}
	s.resizable.BeginResize()
	defer s.resizable.EndResize()
	if err := s.resizable.Resize(CourtViewport(renderWidth, renderHeight)); err != nil {
		s.log.Warn("resize rejected", "err", err)
	}
}

// CourtViewport returns the court for a render area: CourtWidth wide, with square
// half-block pixels.
func CourtViewport(renderWidth, renderHeight int) object.Viewport {
	if renderWidth <= 0 || renderHeight <= 0 {
		return object.Viewport{Width: config.CourtWidth, Height: config.CourtHeight}
	}
	return object.Viewport{
		Width:  config.CourtWidth,
		Height: config.CourtWidth * float64(2*renderHeight) / float64(renderWidth),
	}
}

// drawFrame paints the scene. On state or inactivity transitions it clears the
// terminal so text from the previous screen does not persist.
func (s *Session) drawFrame(now time.Time) error {
	rs := s.scene.Snapshot()

	if rs.State != s.prevState || s.overlay.Inactive != s.wasInactive {
		s.chunkWriter.Clear()
		s.canvas.ForceRedraw()
		s.prevState = rs.State
		s.wasInactive = s.overlay.Inactive
	}

	s.overlay.BlinkOn = now.UnixMilli()/600%2 == 0
	s.overlay.Stats = nil
	if rs.State == game.StateGameOver && s.stats.MatchID == rs.MatchID {
		s.overlay.Stats = s.stats.Lines()
	}
	draw.PaintFrame(s.canvas, s.chunkWriter, rs, s.overlay)
	return s.chunkWriter.Flush()
}
