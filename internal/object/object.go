// Package object holds the match bodies (ball, paddles), the paddle hitbox and the
// paddle controllers.
package object

// Side identifies which end of the court a paddle defends.
type Side int

const (
	SideNone  Side = iota // No side (e.g. a drawn, timed-out match)
	SideLeft              // Left paddle
	SideRight             // Right paddle
)

func (s Side) String() string {
	switch s {
	case SideLeft:
		return "left"
	case SideRight:
		return "right"
	default:
		return "none"
	}
}

// Opponent returns the other side. SideNone has no opponent.
func (s Side) Opponent() Side {
	switch s {
	case SideLeft:
		return SideRight
	case SideRight:
		return SideLeft
	default:
		return SideNone
	}
}

// ControlKind records who drives a paddle.
type ControlKind int

const (
	ControlHuman ControlKind = iota
	ControlAI
)

func (k ControlKind) String() string {
	if k == ControlAI {
		return "ai"
	}
	return "human"
}

// Viewport is the current surface size in logical units.
type Viewport struct {
	Width  float64
	Height float64
}

// Valid reports whether the viewport can hold a court.
func (v Viewport) Valid() bool {
	return v.Width > 0 && v.Height > 0
}

// CenterX returns the horizontal midpoint.
func (v Viewport) CenterX() float64 { return v.Width / 2 }

// CenterY returns the vertical midpoint.
func (v Viewport) CenterY() float64 { return v.Height / 2 }

// Court is the playfield the ball lives in for one step: walls at Top/Bottom and
// the outer edges of the two paddles at Left/Right.
type Court struct {
	Top, Bottom float64
	Left, Right float64
}
