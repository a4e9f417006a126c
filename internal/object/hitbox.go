package object

import (
	"github.com/tomz197/paddleball/internal/config"
	"github.com/tomz197/paddleball/internal/physics"
)

// snapEpsilon pushes the ball just clear of a paddle after a hit so the next step
// cannot register the same contact again.
const snapEpsilon = 1e-6

// HitFace is the paddle face the ball struck.
type HitFace int

const (
	FaceFront  HitFace = iota // Face pointing into the court
	FaceTop                   // Top edge
	FaceBottom                // Bottom edge
)

func (f HitFace) String() string {
	switch f {
	case FaceTop:
		return "top"
	case FaceBottom:
		return "bottom"
	default:
		return "front"
	}
}

// Collision is the result of testing the ball against one paddle.
type Collision struct {
	Collided   bool
	Face       HitFace
	Deflection float64 // Tangential factor for front hits, in [-MaxDeflection, MaxDeflection]
}

// Hitbox resolves ball-paddle contacts. The centre (1-2*EdgeZone) of the paddle
// face returns the ball straight; the outer zones deflect it linearly up to
// MaxDeflection at the very edge.
type Hitbox struct {
	EdgeZone      float64
	MaxDeflection float64
}

// NewHitbox builds a hitbox from the game config.
func NewHitbox(g config.Game) Hitbox {
	return Hitbox{EdgeZone: g.EdgeZone, MaxDeflection: g.MaxDeflection}
}

// Approaching reports whether the ball is moving towards the paddle and its centre is
// still on the court side of the paddle's midline.
func Approaching(p *Paddle, b *Ball) bool {
	mid := p.Bounds().CenterX()
	if p.Side == SideRight {
		return b.DX > 0 && b.X < mid
	}
	return b.DX < 0 && b.X > mid
}

// frontX returns the x of the paddle face pointing into the court.
func frontX(p *Paddle) float64 {
	if p.Side == SideRight {
		return p.X
	}
	return p.X + p.Width
}

// leadingX returns the x of the ball's edge nearest the paddle.
func leadingX(p *Paddle, x, radius float64) float64 {
	if p.Side == SideRight {
		return x + radius
	}
	return x - radius
}

// crossed reports whether the ball's leading edge went from the court side of the
// front face (or on it) to behind it during the last step of length dt. It returns
// the ball centre y at the moment of crossing.
func crossed(p *Paddle, b *Ball, dt float64) (y float64, ok bool) {
	if dt <= 0 {
		return 0, false
	}
	face := frontX(p)
	prevX, prevY := b.X-b.DX*dt, b.Y-b.DY*dt
	prevLead, lead := leadingX(p, prevX, b.Radius), leadingX(p, b.X, b.Radius)

	before, after := prevLead-face, lead-face
	if p.Side == SideRight {
		before, after = -before, -after
	}
	if before < 0 || after >= 0 {
		return 0, false
	}
	t := before / (before - after)
	return prevY + (b.Y-prevY)*t, true
}

// Resolve tests the ball against the paddle after a step of length dt. A ball whose
// leading edge crossed the front face during the step is caught at the crossing
// point, however far it travelled. Otherwise the boxes must overlap: the ball is
// classified by face and snapped outside the paddle. The velocity is not touched
// here; apply the result with Ball.Hit.
func (h Hitbox) Resolve(p *Paddle, b *Ball, dt float64) Collision {
	towards := b.DX < 0
	if p.Side == SideRight {
		towards = b.DX > 0
	}
	if !towards {
		return Collision{}
	}
	pb := p.Bounds()

	if y, ok := crossed(p, b, dt); ok && y >= pb.MinY-b.Radius && y <= pb.MaxY+b.Radius {
		b.Y = y
		return h.front(p, b)
	}

	if !pb.Intersects(b.Bounds()) || !Approaching(p, b) {
		return Collision{}
	}

	ox, oy := pb.Overlap(b.Bounds())
	switch {
	case b.Y < pb.MinY && b.DY > 0 && oy < ox:
		b.Y = pb.MinY - b.Radius - snapEpsilon
		return Collision{Collided: true, Face: FaceTop}
	case b.Y > pb.MaxY && b.DY < 0 && oy < ox:
		b.Y = pb.MaxY + b.Radius + snapEpsilon
		return Collision{Collided: true, Face: FaceBottom}
	case b.Y < pb.MinY || b.Y > pb.MaxY:
		// Beside the face with no vertical approach, e.g. the paddle moved into a
		// ball it had just sent off its top edge.
		return Collision{}
	}
	return h.front(p, b)
}

// front snaps the ball clear of the front face and computes the deflection.
func (h Hitbox) front(p *Paddle, b *Ball) Collision {
	pb := p.Bounds()
	rel := physics.Clamp((b.Y-pb.MinY)/(pb.MaxY-pb.MinY), 0, 1)
	if p.Side == SideRight {
		b.X = pb.MinX - b.Radius - snapEpsilon
	} else {
		b.X = pb.MaxX + b.Radius + snapEpsilon
	}
	return Collision{Collided: true, Face: FaceFront, Deflection: h.Deflection(rel)}
}

// Deflection maps a relative hit position (0 = top edge, 1 = bottom edge) to a
// tangential factor. Negative sends the ball up.
func (h Hitbox) Deflection(rel float64) float64 {
	rel = physics.Clamp(rel, 0, 1)
	if h.EdgeZone <= 0 {
		return 0
	}
	switch {
	case rel < h.EdgeZone:
		return -h.MaxDeflection * (h.EdgeZone - rel) / h.EdgeZone
	case rel > 1-h.EdgeZone:
		return h.MaxDeflection * (rel - (1 - h.EdgeZone)) / h.EdgeZone
	default:
		return 0
	}
}
