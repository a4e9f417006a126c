package game

import (
	"time"

	"github.com/google/uuid"

	"github.com/tomz197/paddleball/internal/object"
)

// Event is emitted by the engine at a goal or at the end of a match.
type Event interface {
	Match() uuid.UUID
}

// Sink receives events synchronously from inside Advance. Implementations must not
// block; hand the event off and return.
type Sink interface {
	Publish(ev Event)
}

// GoalRecorded is emitted when a side scores. Duration is the pause-compensated time
// since the previous goal (or since play began). Score is {left, right} after the goal.
type GoalRecorded struct {
	MatchID     uuid.UUID
	ScoringSide object.Side
	Duration    time.Duration
	Score       [2]int
}

func (g GoalRecorded) Match() uuid.UUID { return g.MatchID }

// MatchCompleted is emitted once per match. WinnerSide is SideNone when a timed-out
// match was level.
type MatchCompleted struct {
	MatchID    uuid.UUID
	WinnerSide object.Side
	Duration   time.Duration
	TimedOut   bool
	Score      [2]int
	Goals      int
}

func (m MatchCompleted) Match() uuid.UUID { return m.MatchID }
