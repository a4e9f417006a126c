package object

import (
	"errors"
	"fmt"

	"github.com/tomz197/paddleball/internal/input"
	"github.com/tomz197/paddleball/internal/physics"
)

// ErrBadObservation is returned by a controller that was handed unusable state.
var ErrBadObservation = errors.New("bad observation")

// Observation is the read-only view a controller decides from.
type Observation struct {
	Paddle   Paddle
	Ball     Ball
	Viewport Viewport
	DT       float64 // Fixed step, seconds
}

// Controller produces the press state for one paddle each fixed step.
type Controller interface {
	Kind() ControlKind
	Signals(obs Observation) (input.PressState, error)
}

// Human forwards whatever its input port reports.
type Human struct {
	port input.Port
}

var _ Controller = (*Human)(nil)

// NewHuman creates a controller reading from port.
func NewHuman(port input.Port) *Human {
	return &Human{port: port}
}

func (h *Human) Kind() ControlKind { return ControlHuman }

func (h *Human) Signals(Observation) (input.PressState, error) {
	if h.port == nil {
		return input.PressState{}, nil
	}
	return h.port.PressState(), nil
}

// AITuning holds the deadzones, in multiples of one step of paddle travel.
type AITuning struct {
	IdleDeadzone  float64 // Used while recentring
	TrackDeadzone float64 // Used while tracking an approaching ball
}

// AI recentres while the ball is away or stationary and tracks the ball's height
// while it approaches. The deadzones keep it from jittering around its target.
type AI struct {
	tuning AITuning
	target float64
}

var _ Controller = (*AI)(nil)

// NewAI creates an AI controller.
func NewAI(t AITuning) *AI {
	return &AI{tuning: t}
}

func (a *AI) Kind() ControlKind { return ControlAI }

// Target returns the height the AI steered towards on its last decision.
func (a *AI) Target() float64 { return a.target }

func (a *AI) Signals(obs Observation) (input.PressState, error) {
	p, b := &obs.Paddle, &obs.Ball
	if !physics.Finite(p.Y, p.Height, p.Speed, b.X, b.Y, b.DX, b.DY, obs.DT, obs.Viewport.Height) {
		return input.PressState{}, fmt.Errorf("ai %s: %w", p.Side, ErrBadObservation)
	}

	step := p.Speed * obs.DT
	var deadzone float64
	if b.Stationary() || !movingTowards(p.Side, b) {
		a.target = obs.Viewport.CenterY()
		deadzone = a.tuning.IdleDeadzone * step
	} else {
		a.target = b.Y
		deadzone = a.tuning.TrackDeadzone * step
	}

	center := p.CenterY()
	switch {
	case center < a.target-deadzone:
		return input.PressState{Down: true}, nil
	case center > a.target+deadzone:
		return input.PressState{Up: true}, nil
	default:
		return input.PressState{}, nil
	}
}

func movingTowards(side Side, b *Ball) bool {
	if side == SideRight {
		return b.DX > 0
	}
	return b.DX < 0
}
