package game

import (
	"errors"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/tomz197/paddleball/internal/clock"
	"github.com/tomz197/paddleball/internal/config"
	"github.com/tomz197/paddleball/internal/input"
	"github.com/tomz197/paddleball/internal/object"
)

const testFrame = 10 * time.Millisecond

var testViewport = object.Viewport{Width: 800, Height: 600}

type stubController struct {
	sig      input.PressState
	err      error
	panicMsg string
	calls    int
}

func (s *stubController) Kind() object.ControlKind { return object.ControlHuman }

func (s *stubController) Signals(object.Observation) (input.PressState, error) {
	s.calls++
	if s.panicMsg != "" {
		panic(s.panicMsg)
	}
	return s.sig, s.err
}

type recordSink struct {
	events []Event
}

func (r *recordSink) Publish(ev Event) { r.events = append(r.events, ev) }

func testConfig() config.Game {
	cfg := config.Default()
	cfg.FrameTime = testFrame
	cfg.CountdownSeconds = 0
	return cfg
}

func newTestEngine(t *testing.T, cfg config.Game, opts Options) (*Engine, *clock.MockTimeProvider) {
	t.Helper()
	mock := clock.NewMockTimeProvider(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	if opts.Viewport == (object.Viewport{}) {
		opts.Viewport = testViewport
	}
	opts.Time = mock
	opts.Rand = rand.New(rand.NewSource(42))
	e, err := New(cfg, opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e, mock
}

// sendBallOut places the ball behind the given side's paddle, heading out.
func sendBallOut(e *Engine, side object.Side) {
	e.ball.Y = 20
	e.ball.DY = 0
	if side == object.SideLeft {
		e.ball.X = e.paddles[left].OuterEdge() - e.ball.Radius
		e.ball.DX = -600
	} else {
		e.ball.X = e.paddles[right].OuterEdge() + e.ball.Radius
		e.ball.DX = 600
	}
}

func TestNewFailsFast(t *testing.T) {
	cfg := testConfig()
	cfg.FrameTime = 0
	if _, err := New(cfg, Options{Viewport: testViewport}); !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("zero frame time: err = %v, want ErrInvalidConfig", err)
	}

	if _, err := New(testConfig(), Options{Viewport: object.Viewport{Width: 0, Height: 600}}); !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("empty viewport: err = %v, want ErrInvalidConfig", err)
	}

	e, err := New(testConfig(), Options{Viewport: testViewport})
	if err != nil {
		t.Fatal(err)
	}
	if e.State() != StateMenu {
		t.Errorf("new engine state = %v, want menu", e.State())
	}
}

func TestAdvanceStepCap(t *testing.T) {
	e, _ := newTestEngine(t, testConfig(), Options{})
	if err := e.Start(); err != nil {
		t.Fatal(err)
	}

	tick, err := e.Advance(10 * time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if tick.Steps != e.cfg.MaxStepsPerFrame {
		t.Errorf("steps = %d, want cap %d", tick.Steps, e.cfg.MaxStepsPerFrame)
	}
	if e.accumulator >= testFrame {
		t.Errorf("accumulator carried debt: %v", e.accumulator)
	}

	// The dropped frames are not replayed on the next tick.
	tick, _ = e.Advance(0)
	if tick.Steps != 0 {
		t.Errorf("steps after drop = %d, want 0", tick.Steps)
	}

	tick, _ = e.Advance(2*testFrame + testFrame/2)
	if tick.Steps != 2 || math.Abs(tick.Alpha-0.5) > 1e-9 {
		t.Errorf("tick = %+v, want 2 steps and alpha 0.5", tick)
	}

	tick, _ = e.Advance(-time.Second)
	if tick.Steps != 0 {
		t.Errorf("negative delta ran %d steps", tick.Steps)
	}
}

func TestAdvanceAlphaRange(t *testing.T) {
	e, _ := newTestEngine(t, testConfig(), Options{})
	rng := rand.New(rand.NewSource(3))

	for i := 0; i < 2000; i++ {
		delta := time.Duration(rng.Int63n(int64(400 * time.Millisecond)))
		tick, err := e.Advance(delta)
		if err != nil {
			t.Fatal(err)
		}
		if tick.Steps < 0 || tick.Steps > e.cfg.MaxStepsPerFrame {
			t.Fatalf("delta %v: steps %d out of range", delta, tick.Steps)
		}
		if tick.Alpha < 0 || tick.Alpha >= 1 {
			t.Fatalf("delta %v: alpha %f out of [0,1)", delta, tick.Alpha)
		}
		if i%300 == 0 && !e.State().InMatch() {
			_ = e.Start()
		}
	}
}

func TestCountdownRunsInSteps(t *testing.T) {
	cfg := testConfig()
	cfg.CountdownSeconds = 3
	e, _ := newTestEngine(t, cfg, Options{})
	if err := e.Start(); err != nil {
		t.Fatal(err)
	}
	if got := e.Snapshot().Countdown; got != 3 {
		t.Errorf("countdown = %d, want 3", got)
	}

	x, y := e.ball.X, e.ball.Y
	for i := 0; i < 59; i++ {
		_, _ = e.Advance(5 * testFrame)
	}
	if e.State() != StateCountdown {
		t.Fatalf("state = %v before the countdown elapsed", e.State())
	}
	if e.ball.X != x || e.ball.Y != y || !e.ball.Stationary() {
		t.Error("ball moved during the countdown")
	}
	if got := e.Snapshot().Countdown; got != 1 {
		t.Errorf("countdown near the end = %d, want 1", got)
	}

	_, _ = e.Advance(5 * testFrame)
	if e.State() != StatePlaying {
		t.Fatalf("state = %v after 3s of steps, want playing", e.State())
	}
	if e.ball.Stationary() {
		t.Error("ball not served when play began")
	}
}

func TestPendingPauseConsumedOnce(t *testing.T) {
	cfg := testConfig()
	cfg.CountdownSeconds = 1
	e, mock := newTestEngine(t, cfg, Options{})
	if err := e.Start(); err != nil {
		t.Fatal(err)
	}

	if err := e.TogglePause(); err != nil {
		t.Fatal(err)
	}
	if e.State() != StateCountdown || !e.Snapshot().PendingPause {
		t.Fatalf("pause during countdown should be deferred, state=%v", e.State())
	}

	for e.State() == StateCountdown {
		_, _ = e.Advance(5 * testFrame)
	}
	if e.State() != StatePaused {
		t.Fatalf("state = %v, want paused once the countdown ends", e.State())
	}
	if e.pendingPause {
		t.Error("pending pause not cleared")
	}
	mock.Advance(time.Minute)
	if d := e.Clock().Duration(); d != 0 {
		t.Errorf("clock ran while paused: %v", d)
	}

	_ = e.TogglePause()
	if e.State() != StatePlaying {
		t.Fatalf("state = %v, want playing", e.State())
	}
	for i := 0; i < 10; i++ {
		_, _ = e.Advance(testFrame)
		if e.State() != StatePlaying {
			t.Fatalf("pending pause applied twice (state %v)", e.State())
		}
	}
}

func TestPausedFreezesBodies(t *testing.T) {
	right := &stubController{sig: input.PressState{Down: true}}
	e, _ := newTestEngine(t, testConfig(), Options{Right: right})
	_ = e.Start()
	_ = e.TogglePause()

	bx, by, py := e.ball.X, e.ball.Y, e.paddles[1].Y
	for i := 0; i < 20; i++ {
		_, _ = e.Advance(testFrame)
	}
	if e.ball.X != bx || e.ball.Y != by || e.paddles[1].Y != py {
		t.Error("bodies moved while paused")
	}
}

func TestResizeGuardSuppressesPause(t *testing.T) {
	e, _ := newTestEngine(t, testConfig(), Options{})
	_ = e.Start()

	e.BeginResize()
	_ = e.TogglePause()
	if e.State() != StatePlaying {
		t.Errorf("pause toggled during resize, state=%v", e.State())
	}
	e.EndResize()
	_ = e.TogglePause()
	if e.State() != StatePaused {
		t.Errorf("pause ignored after resize, state=%v", e.State())
	}
}

func TestResize(t *testing.T) {
	e, _ := newTestEngine(t, testConfig(), Options{})
	_ = e.Start()

	if err := e.Resize(object.Viewport{Width: -1, Height: 10}); !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("bad viewport: err = %v", err)
	}

	vp := object.Viewport{Width: 400, Height: 300}
	if err := e.Resize(vp); err != nil {
		t.Fatal(err)
	}
	rs := e.Snapshot()
	if rs.Viewport != vp {
		t.Errorf("viewport = %+v", rs.Viewport)
	}
	if rs.Right.X+rs.Right.Width > vp.Width || rs.Left.Y+rs.Left.Height > vp.Height {
		t.Errorf("paddles not refitted: %+v %+v", rs.Left, rs.Right)
	}
	if e.resizing {
		t.Error("resize guard left on")
	}
}

func TestGoalScoredAndServedToConceder(t *testing.T) {
	sink := &recordSink{}
	e, mock := newTestEngine(t, testConfig(), Options{Sink: sink})
	_ = e.Start()

	mock.Advance(5 * time.Second)
	sendBallOut(e, object.SideLeft)
	if _, err := e.Advance(testFrame); err != nil {
		t.Fatal(err)
	}

	evs := e.DrainEvents()
	if len(evs) != 1 {
		t.Fatalf("events = %d, want 1", len(evs))
	}
	goal, ok := evs[0].(GoalRecorded)
	if !ok {
		t.Fatalf("event = %T, want GoalRecorded", evs[0])
	}
	if goal.ScoringSide != object.SideRight || goal.Score != [2]int{0, 1} {
		t.Errorf("goal = %+v", goal)
	}
	if goal.Duration != 5*time.Second {
		t.Errorf("goal duration = %v, want 5s", goal.Duration)
	}
	if goal.MatchID != e.MatchID() {
		t.Error("goal carries the wrong match ID")
	}
	if len(sink.events) != 1 {
		t.Errorf("sink got %d events, want 1", len(sink.events))
	}
	if len(e.DrainEvents()) != 0 {
		t.Error("drain did not clear events")
	}

	if e.ball.X != testViewport.CenterX() || e.ball.DX >= 0 {
		t.Errorf("ball should be re-served from centre towards the left, got X=%f DX=%f", e.ball.X, e.ball.DX)
	}
	if e.Clock().GoalDuration() != 0 {
		t.Error("goal timer not reset")
	}
}

func TestMatchCompletesAndRematch(t *testing.T) {
	cfg := testConfig()
	cfg.WinningScore = 2
	e, _ := newTestEngine(t, cfg, Options{})
	_ = e.Start()
	first := e.MatchID()

	for i := 0; i < 2; i++ {
		sendBallOut(e, object.SideRight)
		_, _ = e.Advance(testFrame)
	}
	if e.State() != StateGameOver {
		t.Fatalf("state = %v, want game over", e.State())
	}

	evs := e.DrainEvents()
	done, ok := evs[len(evs)-1].(MatchCompleted)
	if !ok {
		t.Fatalf("last event = %T, want MatchCompleted", evs[len(evs)-1])
	}
	if done.WinnerSide != object.SideLeft || done.TimedOut || done.Goals != 2 || done.Score != [2]int{2, 0} {
		t.Errorf("completion = %+v", done)
	}
	if !e.ball.Stationary() {
		t.Error("ball still moving after game over")
	}
	if err := e.TogglePause(); !errors.Is(err, ErrNotRunning) {
		t.Errorf("TogglePause after game over: %v", err)
	}

	if err := e.Start(); err != nil {
		t.Fatal(err)
	}
	if e.MatchID() == first {
		t.Error("rematch reused the match ID")
	}
	if s := e.Snapshot().Scores(); s != [2]int{0, 0} {
		t.Errorf("rematch scores = %v", s)
	}
	if err := e.Start(); !errors.Is(err, ErrMatchInProgress) {
		t.Errorf("Start during a match: %v", err)
	}
}

func TestWatchdogTimesOutOnce(t *testing.T) {
	cfg := testConfig()
	cfg.MatchTimeout = time.Minute
	e, mock := newTestEngine(t, cfg, Options{})
	_ = e.Start()
	_ = e.TogglePause()

	mock.Advance(59 * time.Second)
	_, _ = e.Advance(testFrame)
	if e.State() != StatePaused {
		t.Fatalf("timed out early, state=%v", e.State())
	}

	mock.Advance(time.Second)
	_, _ = e.Advance(testFrame)
	if e.State() != StateGameOver {
		t.Fatalf("state = %v, want game over after timeout", e.State())
	}

	mock.Advance(time.Hour)
	_, _ = e.Advance(testFrame)

	var completed []MatchCompleted
	for _, ev := range e.DrainEvents() {
		if mc, ok := ev.(MatchCompleted); ok {
			completed = append(completed, mc)
		}
	}
	if len(completed) != 1 {
		t.Fatalf("match completed %d times, want 1", len(completed))
	}
	if !completed[0].TimedOut || completed[0].WinnerSide != object.SideNone {
		t.Errorf("completion = %+v, want timed out with no winner", completed[0])
	}
	if !e.Snapshot().TimedOut {
		t.Error("snapshot does not report the timeout")
	}
}

func TestControllerFaultIsolated(t *testing.T) {
	bad := &stubController{err: errors.New("lost input")}
	good := &stubController{sig: input.PressState{Down: true}}
	e, _ := newTestEngine(t, testConfig(), Options{Left: bad, Right: good})
	_ = e.Start()

	ly, ry := e.paddles[0].Y, e.paddles[1].Y
	if _, err := e.Advance(testFrame); err != nil {
		t.Fatalf("controller error escaped: %v", err)
	}
	if e.ControllerFaults() != 1 {
		t.Errorf("faults = %d, want 1", e.ControllerFaults())
	}
	if e.paddles[0].Y != ly {
		t.Error("failing controller's paddle moved")
	}
	if e.paddles[1].Y <= ry {
		t.Error("healthy controller's paddle did not move")
	}
	if e.State() != StatePlaying {
		t.Errorf("state = %v, want playing", e.State())
	}
}

func TestNumericFaultStopsEngine(t *testing.T) {
	e, _ := newTestEngine(t, testConfig(), Options{})
	_ = e.Start()
	e.ball.DX = math.NaN()

	if _, err := e.Advance(testFrame); !errors.Is(err, ErrFaulted) {
		t.Fatalf("err = %v, want ErrFaulted", err)
	}
	tick, err := e.Advance(testFrame)
	if !errors.Is(err, ErrFaulted) || tick.Steps != 0 {
		t.Errorf("faulted engine kept stepping: %+v, %v", tick, err)
	}
	if err := e.Start(); !errors.Is(err, ErrFaulted) {
		t.Errorf("Start on faulted engine: %v", err)
	}
}

func TestPanicInStepIsFault(t *testing.T) {
	e, _ := newTestEngine(t, testConfig(), Options{Left: &stubController{panicMsg: "boom"}})
	_ = e.Start()

	if _, err := e.Advance(testFrame); !errors.Is(err, ErrFaulted) {
		t.Fatalf("err = %v, want ErrFaulted", err)
	}
	if e.Fault() == nil {
		t.Error("fault not recorded")
	}
}

func TestTogglePauseOutsideMatch(t *testing.T) {
	e, _ := newTestEngine(t, testConfig(), Options{})
	if err := e.TogglePause(); !errors.Is(err, ErrNotRunning) {
		t.Errorf("err = %v, want ErrNotRunning", err)
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	e, _ := newTestEngine(t, testConfig(), Options{})
	_ = e.Start()
	rs := e.Snapshot()
	rs.Ball.X = -1000
	rs.Left.Score = 99
	if e.ball.X == -1000 || e.paddles[0].Score == 99 {
		t.Error("snapshot aliases engine state")
	}

	_, _ = e.Advance(testFrame + testFrame/4)
	rs = e.Snapshot()
	x, _ := rs.BallAt()
	want := rs.Ball.X + rs.Ball.DX*rs.Alpha*rs.Step
	if math.Abs(x-want) > 1e-9 {
		t.Errorf("BallAt x = %f, want %f", x, want)
	}
}

func TestFastBallDoesNotPassThroughPaddle(t *testing.T) {
	cfg := testConfig()
	cfg.FrameTime = time.Second / 60
	e, _ := newTestEngine(t, cfg, Options{
		Viewport: object.Viewport{Width: 160, Height: 96},
		Left:     &stubController{},
		Right:    &stubController{},
	})
	_ = e.Start()

	p := e.paddles[left]
	e.ball.X = p.X + p.Width + e.ball.Radius + 0.5
	e.ball.Y = p.CenterY()
	e.ball.DX, e.ball.DY = -e.ball.MaxSpeed, 0

	for i := 0; i < 3; i++ {
		if _, err := e.Advance(cfg.FrameTime); err != nil {
			t.Fatal(err)
		}
	}
	if evs := e.DrainEvents(); len(evs) != 0 {
		t.Fatalf("ball at top speed scored through the paddle: %+v", evs)
	}
	if e.ball.DX <= 0 {
		t.Errorf("ball not returned, DX=%f", e.ball.DX)
	}
}
