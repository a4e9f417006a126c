package config

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrInvalidConfig is returned (wrapped) by Validate for any out-of-range setting.
var ErrInvalidConfig = errors.New("invalid game config")

// Game is the tuning bundle read by the match engine.
// Sizes are ratios of the current viewport so that geometry can be re-derived on resize.
type Game struct {
	// Timing
	FrameTime        time.Duration // Fixed simulation step
	MaxDeltaTime     time.Duration // Per-tick clamp on real elapsed time
	MaxStepsPerFrame int           // Catch-up cap per Advance call

	// Paddle geometry (ratios of viewport width/height)
	PaddleWidthRatio   float64 // of viewport width
	PaddleHeightRatio  float64 // of viewport height
	PaddlePaddingRatio float64 // gap between court edge and paddle, of viewport width
	PaddleSpeedRatio   float64 // viewport heights per second

	// Ball
	BallRadiusRatio   float64 // of the smaller viewport dimension
	BallSpeedRatio    float64 // initial speed, viewport widths per second
	MaxBallSpeedRatio float64 // speed cap, viewport widths per second
	SpeedUpPerHit     float64 // fractional speed-up per front hit
	ServeAngle        float64 // max serve angle off the horizontal, radians

	// Collision
	EdgeZone      float64 // fraction of paddle height that deflects at each end
	MaxDeflection float64 // tangential velocity factor at the very edge

	// AI
	AISpeedFactor   float64 // AI paddle speed relative to a human paddle
	AIIdleDeadzone  float64 // in paddle steps, when the ball is away
	AITrackDeadzone float64 // in paddle steps, when the ball approaches

	// Match
	WinningScore     int
	CountdownSeconds int
	MatchTimeout     time.Duration // Watchdog for abandoned matches
}

// Default returns the stock tuning.
func Default() Game {
	return Game{
		FrameTime:        time.Second / 60,
		MaxDeltaTime:     250 * time.Millisecond,
		MaxStepsPerFrame: 5,

		PaddleWidthRatio:   0.015,
		PaddleHeightRatio:  0.18,
		PaddlePaddingRatio: 0.03,
		PaddleSpeedRatio:   0.9,

		BallRadiusRatio:   0.012,
		BallSpeedRatio:    0.45,
		MaxBallSpeedRatio: 1.2,
		SpeedUpPerHit:     0.05,
		ServeAngle:        math.Pi / 6,

		EdgeZone:      0.2,
		MaxDeflection: 0.75,

		AISpeedFactor:   0.8,
		AIIdleDeadzone:  1.0,
		AITrackDeadzone: 0.5,

		WinningScore:     11,
		CountdownSeconds: 3,
		MatchTimeout:     10 * time.Minute,
	}
}

// FromEnv returns Default overridden by any matching environment variables.
func FromEnv() Game {
	g := Default()

	g.FrameTime = GetEnvDuration("FRAME_TIME", g.FrameTime)
	g.MaxDeltaTime = GetEnvDuration("MAX_DELTA_TIME", g.MaxDeltaTime)
	g.MaxStepsPerFrame = GetEnvInt("MAX_STEPS_PER_FRAME", g.MaxStepsPerFrame)

	g.PaddleHeightRatio = GetEnvFloat("PADDLE_HEIGHT_RATIO", g.PaddleHeightRatio)
	g.PaddleSpeedRatio = GetEnvFloat("PADDLE_SPEED_RATIO", g.PaddleSpeedRatio)
	g.BallSpeedRatio = GetEnvFloat("BALL_SPEED_RATIO", g.BallSpeedRatio)
	g.MaxBallSpeedRatio = GetEnvFloat("MAX_BALL_SPEED_RATIO", g.MaxBallSpeedRatio)
	g.SpeedUpPerHit = GetEnvFloat("SPEED_UP_PER_HIT", g.SpeedUpPerHit)

	g.EdgeZone = GetEnvFloat("EDGE_ZONE", g.EdgeZone)
	g.MaxDeflection = GetEnvFloat("MAX_DEFLECTION", g.MaxDeflection)
	g.AISpeedFactor = GetEnvFloat("AI_SPEED_FACTOR", g.AISpeedFactor)

	g.WinningScore = GetEnvInt("WINNING_SCORE", g.WinningScore)
	g.CountdownSeconds = GetEnvInt("COUNTDOWN_SECONDS", g.CountdownSeconds)
	g.MatchTimeout = GetEnvDuration("MATCH_TIMEOUT", g.MatchTimeout)

	return g
}

// Validate reports the first setting that cannot drive a match.
func (g Game) Validate() error {
	switch {
	case g.FrameTime <= 0:
		return fmt.Errorf("%w: frame time must be positive, got %v", ErrInvalidConfig, g.FrameTime)
	case g.MaxDeltaTime < g.FrameTime:
		return fmt.Errorf("%w: max delta time %v is shorter than frame time %v", ErrInvalidConfig, g.MaxDeltaTime, g.FrameTime)
	case g.MaxStepsPerFrame < 1:
		return fmt.Errorf("%w: max steps per frame must be at least 1, got %d", ErrInvalidConfig, g.MaxStepsPerFrame)
	}

	ratios := []struct {
		name  string
		value float64
	}{
		{"paddle width ratio", g.PaddleWidthRatio},
		{"paddle height ratio", g.PaddleHeightRatio},
		{"paddle speed ratio", g.PaddleSpeedRatio},
		{"ball radius ratio", g.BallRadiusRatio},
		{"ball speed ratio", g.BallSpeedRatio},
		{"max ball speed ratio", g.MaxBallSpeedRatio},
		{"AI speed factor", g.AISpeedFactor},
	}
	for _, r := range ratios {
		if !(r.value > 0) || math.IsInf(r.value, 0) {
			return fmt.Errorf("%w: %s must be positive, got %v", ErrInvalidConfig, r.name, r.value)
		}
	}

	switch {
	case g.PaddleHeightRatio >= 1:
		return fmt.Errorf("%w: paddle height ratio must be below 1, got %v", ErrInvalidConfig, g.PaddleHeightRatio)
	case g.PaddlePaddingRatio < 0 || 2*(g.PaddlePaddingRatio+g.PaddleWidthRatio) >= 1:
		return fmt.Errorf("%w: paddles do not fit the court (padding %v, width %v)", ErrInvalidConfig, g.PaddlePaddingRatio, g.PaddleWidthRatio)
	case g.BallSpeedRatio > g.MaxBallSpeedRatio:
		return fmt.Errorf("%w: initial ball speed %v exceeds cap %v", ErrInvalidConfig, g.BallSpeedRatio, g.MaxBallSpeedRatio)
	case g.SpeedUpPerHit < 0:
		return fmt.Errorf("%w: speed-up per hit must not be negative, got %v", ErrInvalidConfig, g.SpeedUpPerHit)
	case g.ServeAngle < 0 || g.ServeAngle >= math.Pi/2:
		return fmt.Errorf("%w: serve angle must be in [0, pi/2), got %v", ErrInvalidConfig, g.ServeAngle)
	case !(g.EdgeZone > 0) || g.EdgeZone > 0.5:
		return fmt.Errorf("%w: edge zone must be in (0, 0.5], got %v", ErrInvalidConfig, g.EdgeZone)
	case g.MaxDeflection < 0:
		return fmt.Errorf("%w: max deflection must not be negative, got %v", ErrInvalidConfig, g.MaxDeflection)
	case g.AIIdleDeadzone < 0 || g.AITrackDeadzone < 0:
		return fmt.Errorf("%w: AI deadzones must not be negative", ErrInvalidConfig)
	case g.WinningScore < 1:
		return fmt.Errorf("%w: winning score must be at least 1, got %d", ErrInvalidConfig, g.WinningScore)
	case g.CountdownSeconds < 0:
		return fmt.Errorf("%w: countdown must not be negative, got %d", ErrInvalidConfig, g.CountdownSeconds)
	case g.MatchTimeout <= 0:
		return fmt.Errorf("%w: match timeout must be positive, got %v", ErrInvalidConfig, g.MatchTimeout)
	}
	return nil
}

// FrameSeconds is FrameTime as a float step size for the integrators.
func (g Game) FrameSeconds() float64 {
	return g.FrameTime.Seconds()
}
