package object

import (
	"github.com/tomz197/paddleball/internal/config"
	"github.com/tomz197/paddleball/internal/input"
	"github.com/tomz197/paddleball/internal/physics"
)

// Paddle is one player's bat. X, Y is the top-left corner.
//
// Width, Height, Speed and X are always re-derived from the viewport by Fit and are
// never adjusted independently, so any sequence of resizes lands in the same place.
type Paddle struct {
	X, Y          float64
	Width, Height float64
	Speed         float64 // Units per second
	Side          Side
	Kind          ControlKind
	Score         int
	Name          string

	fitted Viewport // Viewport of the last Fit, for keeping Y proportional
}

// NewPaddle creates a paddle; call Fit before use.
func NewPaddle(side Side, kind ControlKind, name string) *Paddle {
	return &Paddle{Side: side, Kind: kind, Name: name}
}

// Fit sizes and positions the paddle for the viewport. This is the single sizing
// function for paddles. The vertical centre keeps its ratio of the court height.
func (p *Paddle) Fit(vp Viewport, g config.Game) {
	centerRatio := 0.5
	if p.fitted.Valid() {
		centerRatio = p.CenterY() / p.fitted.Height
	}

	p.Width = g.PaddleWidthRatio * vp.Width
	p.Height = g.PaddleHeightRatio * vp.Height
	p.Speed = g.PaddleSpeedRatio * vp.Height
	if p.Kind == ControlAI {
		p.Speed *= g.AISpeedFactor
	}

	padding := g.PaddlePaddingRatio * vp.Width
	if p.Side == SideRight {
		p.X = vp.Width - padding - p.Width
	} else {
		p.X = padding
	}

	p.Y = physics.Clamp(centerRatio*vp.Height-p.Height/2, 0, vp.Height-p.Height)
	p.fitted = vp
}

// Center puts the paddle in the vertical middle of the viewport.
func (p *Paddle) Center(vp Viewport) {
	p.Y = vp.CenterY() - p.Height/2
}

// Move integrates one step in the given direction, clamped to the court.
func (p *Paddle) Move(dir input.Direction, dt float64, vp Viewport) {
	switch dir {
	case input.DirUp:
		p.Y -= p.Speed * dt
	case input.DirDown:
		p.Y += p.Speed * dt
	}
	p.Y = physics.Clamp(p.Y, 0, vp.Height-p.Height)
}

// CenterY returns the vertical midpoint.
func (p *Paddle) CenterY() float64 {
	return p.Y + p.Height/2
}

// OuterEdge is the x coordinate of the paddle face pointing away from the court.
func (p *Paddle) OuterEdge() float64 {
	if p.Side == SideRight {
		return p.X + p.Width
	}
	return p.X
}

// Bounds returns the paddle's bounding box.
func (p *Paddle) Bounds() physics.AABB {
	return physics.Box(p.X, p.Y, p.Width, p.Height)
}
