package game

import (
	"time"

	"github.com/google/uuid"

	"github.com/tomz197/paddleball/internal/object"
)

// PaddleView is the drawable part of a paddle.
type PaddleView struct {
	X, Y          float64
	Width, Height float64
	Side          object.Side
	Kind          object.ControlKind
	Name          string
	Score         int
}

// BallView is the drawable part of the ball.
type BallView struct {
	X, Y   float64
	DX, DY float64
	Radius float64
}

// RenderState is a value copy of everything a renderer needs for one frame.
type RenderState struct {
	MatchID      uuid.UUID
	State        GameState
	Viewport     object.Viewport
	Ball         BallView
	Left, Right  PaddleView
	Countdown    int     // Whole seconds left, only in StateCountdown
	Alpha        float64 // Fraction of a step left in the accumulator, [0,1)
	Step         float64 // Fixed step, seconds
	PendingPause bool
	Winner       object.Side // Set in StateGameOver
	TimedOut     bool
	Duration     time.Duration
}

// BallAt returns the ball position extrapolated by Alpha of a step. Outside
// StatePlaying the ball does not move, so the stored position is returned.
func (r RenderState) BallAt() (x, y float64) {
	if r.State != StatePlaying {
		return r.Ball.X, r.Ball.Y
	}
	t := r.Alpha * r.Step
	return r.Ball.X + r.Ball.DX*t, r.Ball.Y + r.Ball.DY*t
}

// Scores returns {left, right}.
func (r RenderState) Scores() [2]int {
	return [2]int{r.Left.Score, r.Right.Score}
}
