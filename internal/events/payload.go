package events

import (
	"errors"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/tomz197/paddleball/internal/game"
)

// ErrUnknownEvent is returned when encoding an event type this package does not know.
var ErrUnknownEvent = errors.New("unknown event")

// Event type tags on the wire.
const (
	TypeGoal     = "goal"
	TypeComplete = "match_completed"
)

// Envelope is the msgpack payload published per event.
type Envelope struct {
	Type       string `msgpack:"type"`
	MatchID    string `msgpack:"match_id"`
	At         int64  `msgpack:"at"` // Unix milliseconds
	Side       string `msgpack:"side,omitempty"`
	DurationMs int64  `msgpack:"duration_ms"`
	Score      [2]int `msgpack:"score"`
	TimedOut   bool   `msgpack:"timed_out,omitempty"`
	Goals      int    `msgpack:"goals,omitempty"`
}

// NewEnvelope converts an engine event.
func NewEnvelope(ev game.Event, at time.Time) (Envelope, error) {
	env := Envelope{MatchID: ev.Match().String(), At: at.UnixMilli()}
	switch e := ev.(type) {
	case game.GoalRecorded:
		env.Type = TypeGoal
		env.Side = e.ScoringSide.String()
		env.DurationMs = e.Duration.Milliseconds()
		env.Score = e.Score
	case game.MatchCompleted:
		env.Type = TypeComplete
		env.Side = e.WinnerSide.String()
		env.DurationMs = e.Duration.Milliseconds()
		env.Score = e.Score
		env.TimedOut = e.TimedOut
		env.Goals = e.Goals
	default:
		return Envelope{}, fmt.Errorf("%w: %T", ErrUnknownEvent, ev)
	}
	return env, nil
}

// Encode marshals an engine event.
func Encode(ev game.Event, at time.Time) ([]byte, error) {
	env, err := NewEnvelope(ev, at)
	if err != nil {
		return nil, err
	}
	return msgpack.Marshal(&env)
}

// Decode unmarshals a published payload.
func Decode(b []byte) (Envelope, error) {
	var env Envelope
	if err := msgpack.Unmarshal(b, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode event: %w", err)
	}
	return env, nil
}
