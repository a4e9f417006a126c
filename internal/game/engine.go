package game

import (
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/tomz197/paddleball/internal/clock"
	"github.com/tomz197/paddleball/internal/config"
	"github.com/tomz197/paddleball/internal/object"
)

var (
	// ErrFaulted is returned by Advance once a step has failed fatally. The engine
	// runs no further steps.
	ErrFaulted = errors.New("engine faulted")
	// ErrNotRunning is returned by TogglePause when no match is under way.
	ErrNotRunning = errors.New("no match running")
	// ErrMatchInProgress is returned by Start while a match is under way.
	ErrMatchInProgress = errors.New("match in progress")
)

const (
	left  = 0
	right = 1
)

// Tick reports what one Advance call did.
type Tick struct {
	Steps int     // Fixed steps run
	Alpha float64 // Leftover fraction of a step, [0,1)
}

// Options wires the engine's collaborators. Zero values get defaults: AI
// controllers, a discarding logger, real time and a time-seeded rand.
type Options struct {
	Viewport    object.Viewport
	Left, Right object.Controller
	Names       [2]string
	Logger      *log.Logger
	Time        clock.TimeProvider
	Rand        *rand.Rand
	Sink        Sink
}

// Engine owns one match. It is single-threaded: every method must be called from
// the goroutine that drives Advance.
type Engine struct {
	cfg  config.Game
	log  *log.Logger
	time clock.TimeProvider
	rng  *rand.Rand
	sink Sink

	viewport    object.Viewport
	ball        *object.Ball
	paddles     [2]*object.Paddle
	controllers [2]object.Controller
	hitbox      object.Hitbox

	state        GameState
	pendingPause bool
	resizing     bool
	countdown    time.Duration

	matchID  uuid.UUID
	clock    *clock.MatchClock
	watchdog *clock.Watchdog
	goals    int
	winner   object.Side
	timedOut bool

	accumulator time.Duration
	alpha       float64

	controllerFaults int
	fault            error
	events           []Event
}

// New validates cfg and builds an engine in StateMenu.
func New(cfg config.Game, opts Options) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := checkViewport(opts.Viewport); err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:      cfg,
		log:      opts.Logger,
		time:     opts.Time,
		rng:      opts.Rand,
		sink:     opts.Sink,
		viewport: opts.Viewport,
		hitbox:   object.NewHitbox(cfg),
		state:    StateMenu,
		watchdog: clock.NewWatchdog(cfg.MatchTimeout),
	}
	if e.log == nil {
		e.log = log.New(io.Discard)
	}
	if e.time == nil {
		e.time = clock.RealTime{}
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	e.controllers = [2]object.Controller{opts.Left, opts.Right}
	tuning := object.AITuning{IdleDeadzone: cfg.AIIdleDeadzone, TrackDeadzone: cfg.AITrackDeadzone}
	for i, side := range []object.Side{object.SideLeft, object.SideRight} {
		if e.controllers[i] == nil {
			e.controllers[i] = object.NewAI(tuning)
		}
		name := opts.Names[i]
		if name == "" {
			name = side.String()
		}
		e.paddles[i] = object.NewPaddle(side, e.controllers[i].Kind(), name)
		e.paddles[i].Fit(e.viewport, cfg)
	}

	e.ball = object.NewBall(e.viewport, cfg)
	e.clock = clock.NewMatchClock(e.time)
	return e, nil
}

func checkViewport(vp object.Viewport) error {
	if !vp.Valid() || math.IsInf(vp.Width, 0) || math.IsInf(vp.Height, 0) {
		return fmt.Errorf("%w: viewport must be positive, got %vx%v", config.ErrInvalidConfig, vp.Width, vp.Height)
	}
	return nil
}

// Start begins a match from StateMenu, or a rematch from StateGameOver. Scores reset
// and a new match ID is drawn.
func (e *Engine) Start() error {
	if e.fault != nil {
		return e.fault
	}
	if e.state.InMatch() {
		return ErrMatchInProgress
	}

	e.matchID = uuid.New()
	e.goals = 0
	e.winner = object.SideNone
	e.timedOut = false
	e.pendingPause = false
	e.accumulator = 0
	e.alpha = 0
	for _, p := range e.paddles {
		p.Score = 0
		p.Center(e.viewport)
	}
	e.ball.X, e.ball.Y = e.viewport.CenterX(), e.viewport.CenterY()
	e.ball.Stop()

	e.clock = clock.NewMatchClock(e.time)
	e.watchdog.Arm(e.time.Now())

	e.log.Info("match starting", "match", e.matchID,
		"left", e.paddles[left].Name, "right", e.paddles[right].Name)

	e.state = StateCountdown
	e.countdown = time.Duration(e.cfg.CountdownSeconds) * time.Second
	if e.countdown <= 0 {
		e.beginPlay()
	}
	return nil
}

// TogglePause flips PLAYING and PAUSED. During the countdown the request is held and
// applied the moment play begins. While a resize is in progress it does nothing.
func (e *Engine) TogglePause() error {
	if e.resizing {
		return nil
	}
	switch e.state {
	case StatePlaying:
		e.state = StatePaused
		e.clock.Pause()
	case StatePaused:
		e.state = StatePlaying
		e.clock.Resume()
	case StateCountdown:
		e.pendingPause = true
	default:
		return ErrNotRunning
	}
	return nil
}

// BeginResize suppresses pause toggling until EndResize.
func (e *Engine) BeginResize() { e.resizing = true }

// EndResize lifts the resize guard.
func (e *Engine) EndResize() { e.resizing = false }

// Resize re-derives all geometry for a new viewport. Paddles keep their relative
// height and the ball keeps its relative position and heading.
func (e *Engine) Resize(vp object.Viewport) error {
	if err := checkViewport(vp); err != nil {
		return err
	}
	guarded := e.resizing
	e.resizing = true
	defer func() { e.resizing = guarded }()

	old := e.viewport
	e.viewport = vp
	for _, p := range e.paddles {
		p.Fit(vp, e.cfg)
	}
	e.ball.Rescale(old, vp, e.cfg)
	e.log.Debug("resized", "width", vp.Width, "height", vp.Height)
	return nil
}

// Advance feeds real elapsed time into the accumulator and runs as many fixed steps
// as it covers, up to MaxStepsPerFrame. Whole frames beyond the cap are dropped.
func (e *Engine) Advance(realDelta time.Duration) (Tick, error) {
	if e.fault != nil {
		return Tick{}, e.fault
	}
	if realDelta < 0 {
		realDelta = 0
	}
	if realDelta > e.cfg.MaxDeltaTime {
		realDelta = e.cfg.MaxDeltaTime
	}

	if e.state.InMatch() && e.watchdog.Expired(e.time.Now()) {
		e.timeout()
	}

	frame := e.cfg.FrameTime
	e.accumulator += realDelta
	steps := 0
	for e.accumulator >= frame && steps < e.cfg.MaxStepsPerFrame {
		if err := e.safeStep(); err != nil {
			return Tick{Steps: steps}, err
		}
		e.accumulator -= frame
		steps++
	}
	if e.accumulator >= frame {
		e.log.Debug("dropping frames", "steps", steps, "behind", e.accumulator)
		e.accumulator %= frame
	}

	e.alpha = float64(e.accumulator) / float64(frame)
	return Tick{Steps: steps, Alpha: e.alpha}, nil
}

func (e *Engine) safeStep() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = e.faultf("panic in step: %v", r)
		}
	}()
	return e.step()
}

func (e *Engine) step() error {
	dt := e.cfg.FrameSeconds()

	if e.state == StateCountdown {
		e.countdown -= e.cfg.FrameTime
		if e.countdown <= 0 {
			e.beginPlay()
		}
	}

	playing := e.state == StatePlaying
	for i, p := range e.paddles {
		sig, err := e.controllers[i].Signals(object.Observation{
			Paddle:   *p,
			Ball:     *e.ball,
			Viewport: e.viewport,
			DT:       dt,
		})
		if err != nil {
			e.controllerFaults++
			e.log.Warn("controller failed", "side", p.Side, "err", err)
			continue
		}
		if playing {
			p.Move(sig.Direction(), dt, e.viewport)
		}
	}
	if !playing {
		return nil
	}

	exit := e.ball.Update(dt, e.court())
	for _, p := range e.paddles {
		if c := e.hitbox.Resolve(p, e.ball, dt); c.Collided {
			e.ball.Hit(c.Face, c.Deflection)
			exit = object.ExitNone
		}
	}
	if !e.ball.Finite() {
		return e.faultf("ball state not finite: pos=(%v, %v) vel=(%v, %v)",
			e.ball.X, e.ball.Y, e.ball.DX, e.ball.DY)
	}

	if scorer := exit.Scorer(); scorer != object.SideNone {
		e.score(scorer)
	}
	return nil
}

func (e *Engine) court() object.Court {
	return object.Court{
		Top:    0,
		Bottom: e.viewport.Height,
		Left:   e.paddles[left].OuterEdge(),
		Right:  e.paddles[right].OuterEdge(),
	}
}

func (e *Engine) beginPlay() {
	e.countdown = 0
	e.state = StatePlaying
	e.clock.Start()
	e.ball.Restart(e.viewport, object.SideNone, e.rng)
	e.log.Info("match started", "match", e.matchID)

	if e.pendingPause {
		e.pendingPause = false
		e.state = StatePaused
		e.clock.Pause()
	}
}

func (e *Engine) score(side object.Side) {
	p := e.paddle(side)
	p.Score++
	e.goals++

	goal := GoalRecorded{
		MatchID:     e.matchID,
		ScoringSide: side,
		Duration:    e.clock.GoalDuration(),
		Score:       e.scores(),
	}
	e.log.Debug("goal", "match", e.matchID, "side", side, "score", goal.Score, "after", goal.Duration)
	e.emit(goal)
	e.clock.ResetGoal()

	if p.Score >= e.cfg.WinningScore {
		e.finish(side, false)
		return
	}
	e.ball.Restart(e.viewport, side.Opponent(), e.rng)
}

func (e *Engine) timeout() {
	winner := object.SideNone
	switch s := e.scores(); {
	case s[left] > s[right]:
		winner = object.SideLeft
	case s[right] > s[left]:
		winner = object.SideRight
	}
	e.log.Warn("match timed out", "match", e.matchID, "after", e.cfg.MatchTimeout)
	e.finish(winner, true)
}

func (e *Engine) finish(winner object.Side, timedOut bool) {
	e.clock.Stop()
	e.watchdog.Disarm()
	e.ball.Stop()
	e.pendingPause = false
	e.state = StateGameOver
	e.winner = winner
	e.timedOut = timedOut

	done := MatchCompleted{
		MatchID:    e.matchID,
		WinnerSide: winner,
		Duration:   e.clock.Duration(),
		TimedOut:   timedOut,
		Score:      e.scores(),
		Goals:      e.goals,
	}
	e.log.Info("match completed", "match", e.matchID, "winner", winner,
		"score", done.Score, "duration", done.Duration, "timedOut", timedOut)
	e.emit(done)
}

func (e *Engine) faultf(format string, args ...any) error {
	e.fault = fmt.Errorf("%w: %s", ErrFaulted, fmt.Sprintf(format, args...))
	e.clock.Stop()
	e.watchdog.Disarm()
	e.log.Error("engine stopped", "match", e.matchID, "err", e.fault)
	return e.fault
}

func (e *Engine) emit(ev Event) {
	e.events = append(e.events, ev)
	if e.sink != nil {
		e.sink.Publish(ev)
	}
}

func (e *Engine) paddle(side object.Side) *object.Paddle {
	if side == object.SideRight {
		return e.paddles[right]
	}
	return e.paddles[left]
}

func (e *Engine) scores() [2]int {
	return [2]int{e.paddles[left].Score, e.paddles[right].Score}
}

// DrainEvents returns the events emitted since the last call.
func (e *Engine) DrainEvents() []Event {
	evs := e.events
	e.events = nil
	return evs
}

// State returns the current phase.
func (e *Engine) State() GameState { return e.state }

// MatchID returns the current (or last) match ID; zero before the first Start.
func (e *Engine) MatchID() uuid.UUID { return e.matchID }

// Viewport returns the current court size.
func (e *Engine) Viewport() object.Viewport { return e.viewport }

// Clock exposes the match clock for duration queries.
func (e *Engine) Clock() *clock.MatchClock { return e.clock }

// ControllerFaults counts controller errors isolated so far.
func (e *Engine) ControllerFaults() int { return e.controllerFaults }

// Fault returns the fatal error, if the engine has stopped.
func (e *Engine) Fault() error { return e.fault }

// Snapshot copies the render state.
func (e *Engine) Snapshot() RenderState {
	rs := RenderState{
		MatchID:  e.matchID,
		State:    e.state,
		Viewport: e.viewport,
		Ball: BallView{
			X: e.ball.X, Y: e.ball.Y,
			DX: e.ball.DX, DY: e.ball.DY,
			Radius: e.ball.Radius,
		},
		Left:         paddleView(e.paddles[left]),
		Right:        paddleView(e.paddles[right]),
		Alpha:        e.alpha,
		Step:         e.cfg.FrameSeconds(),
		PendingPause: e.pendingPause,
		Winner:       e.winner,
		TimedOut:     e.timedOut,
		Duration:     e.clock.Duration(),
	}
	if e.state == StateCountdown {
		rs.Countdown = int(math.Ceil(e.countdown.Seconds()))
	}
	return rs
}

func paddleView(p *object.Paddle) PaddleView {
	return PaddleView{
		X: p.X, Y: p.Y,
		Width: p.Width, Height: p.Height,
		Side:  p.Side,
		Kind:  p.Kind,
		Name:  p.Name,
		Score: p.Score,
	}
}
