package object

import (
	"math"
	"math/rand"

	"github.com/tomz197/paddleball/internal/config"
	"github.com/tomz197/paddleball/internal/physics"
)

// maxBounceSlope caps |DY|/|DX| after a front hit (60 degrees off the horizontal),
// so repeated edge hits cannot send the ball vertical.
var maxBounceSlope = math.Tan(math.Pi / 3)

// Exit reports whether the ball left the court this step, and on which side.
type Exit int

const (
	ExitNone  Exit = iota
	ExitLeft       // Past the left paddle: right side scores
	ExitRight      // Past the right paddle: left side scores
)

// Scorer returns the side that earns the point for this exit.
func (e Exit) Scorer() Side {
	switch e {
	case ExitLeft:
		return SideRight
	case ExitRight:
		return SideLeft
	default:
		return SideNone
	}
}

// Ball is the single physics body of a match. X, Y is the centre.
type Ball struct {
	X, Y   float64 // Position
	DX, DY float64 // Velocity, units per second
	Radius float64

	InitialSpeed float64 // Serve speed
	MaxSpeed     float64 // Hard cap on velocity magnitude
	SpeedUp      float64 // Fractional speed-up per front hit
	ServeAngle   float64 // Max serve angle off the horizontal, radians
}

// NewBall creates a stationary ball sized for the viewport.
func NewBall(vp Viewport, g config.Game) *Ball {
	b := &Ball{SpeedUp: g.SpeedUpPerHit, ServeAngle: g.ServeAngle}
	b.Fit(vp, g)
	b.X, b.Y = vp.CenterX(), vp.CenterY()
	return b
}

// Fit re-derives radius and speed limits from the viewport.
func (b *Ball) Fit(vp Viewport, g config.Game) {
	b.Radius = g.BallRadiusRatio * math.Min(vp.Width, vp.Height)
	b.InitialSpeed = g.BallSpeedRatio * vp.Width
	b.MaxSpeed = g.MaxBallSpeedRatio * vp.Width
}

// Rescale maps position and velocity from one viewport to another and refits limits.
func (b *Ball) Rescale(from, to Viewport, g config.Game) {
	if from.Valid() {
		sx := to.Width / from.Width
		sy := to.Height / from.Height
		b.X *= sx
		b.Y *= sy
		b.DX *= sx
		b.DY *= sx
	}
	b.Fit(to, g)
	b.Y = physics.Clamp(b.Y, b.Radius, to.Height-b.Radius)
	b.DX, b.DY = physics.ClampMagnitude(b.DX, b.DY, b.MaxSpeed)
}

// Update integrates position, bounces off the top and bottom walls and reports a
// scoring exit once the ball is entirely past a paddle's outer edge.
func (b *Ball) Update(dt float64, c Court) Exit {
	b.X += b.DX * dt
	b.Y += b.DY * dt

	if b.Y-b.Radius < c.Top {
		b.Y = c.Top + b.Radius
		b.DY = math.Abs(b.DY)
	} else if b.Y+b.Radius > c.Bottom {
		b.Y = c.Bottom - b.Radius
		b.DY = -math.Abs(b.DY)
	}

	switch {
	case b.X+b.Radius < c.Left:
		return ExitLeft
	case b.X-b.Radius > c.Right:
		return ExitRight
	default:
		return ExitNone
	}
}

// Hit applies a paddle collision. Front hits reverse the horizontal direction, add a
// tangential component proportional to deflection and speed the ball up (capped).
// Top and bottom hits reverse the vertical direction only.
func (b *Ball) Hit(face HitFace, deflection float64) {
	switch face {
	case FaceTop, FaceBottom:
		b.DY = -b.DY
		return
	}

	speed := b.Speed()
	b.DX = -b.DX
	b.DY += deflection * math.Abs(b.DX)

	limit := maxBounceSlope * math.Abs(b.DX)
	b.DY = physics.Clamp(b.DY, -limit, limit)

	target := math.Min(speed*(1+b.SpeedUp), b.MaxSpeed)
	if cur := b.Speed(); cur > 0 {
		scale := target / cur
		b.DX *= scale
		b.DY *= scale
	}
	b.DX, b.DY = physics.ClampMagnitude(b.DX, b.DY, b.MaxSpeed)
}

// Restart puts the ball back in the centre and serves it towards the given side at a
// random angle within ServeAngle. SideNone picks a side at random.
func (b *Ball) Restart(vp Viewport, towards Side, rng *rand.Rand) {
	b.X, b.Y = vp.CenterX(), vp.CenterY()

	if towards == SideNone {
		towards = SideLeft
		if rng.Intn(2) == 1 {
			towards = SideRight
		}
	}

	angle := (rng.Float64()*2 - 1) * b.ServeAngle
	dir := 1.0
	if towards == SideLeft {
		dir = -1
	}
	speed := math.Min(b.InitialSpeed, b.MaxSpeed)
	b.DX = dir * speed * math.Cos(angle)
	b.DY = speed * math.Sin(angle)
}

// Stop zeroes the velocity.
func (b *Ball) Stop() {
	b.DX, b.DY = 0, 0
}

// Speed returns the velocity magnitude.
func (b *Ball) Speed() float64 {
	return physics.Magnitude(b.DX, b.DY)
}

// Stationary reports whether the ball has no velocity at all.
func (b *Ball) Stationary() bool {
	return b.DX == 0 && b.DY == 0
}

// Bounds returns the ball's bounding box.
func (b *Ball) Bounds() physics.AABB {
	return physics.CenteredBox(b.X, b.Y, b.Radius)
}

// Finite reports whether position and velocity are usable numbers.
func (b *Ball) Finite() bool {
	return physics.Finite(b.X, b.Y, b.DX, b.DY)
}
