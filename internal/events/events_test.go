package events

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/tomz197/paddleball/internal/game"
	"github.com/tomz197/paddleball/internal/object"
)

func goal(id uuid.UUID, side object.Side, d time.Duration) game.GoalRecorded {
	return game.GoalRecorded{MatchID: id, ScoringSide: side, Duration: d}
}

func TestStats(t *testing.T) {
	id := uuid.New()
	var s Stats
	if s.Lines() != nil {
		t.Error("empty stats should render nothing")
	}

	s.ObserveAll([]game.Event{
		goal(id, object.SideLeft, 4*time.Second),
		goal(id, object.SideRight, 2*time.Second),
		goal(id, object.SideLeft, 6*time.Second),
	})

	if s.Left.Goals != 2 || s.Left.Fastest != 4*time.Second || s.Left.Average() != 5*time.Second {
		t.Errorf("left = %+v", s.Left)
	}
	all := s.Overall()
	if all.Goals != 3 || all.Fastest != 2*time.Second || all.Average() != 4*time.Second {
		t.Errorf("overall = %+v", all)
	}
	if got := len(s.Lines()); got != 3 {
		t.Errorf("lines = %d, want 3", got)
	}

	s.Observe(game.MatchCompleted{MatchID: id, WinnerSide: object.SideLeft})
	if s.Completed == nil || s.Completed.WinnerSide != object.SideLeft {
		t.Errorf("completion not recorded: %+v", s.Completed)
	}

	// A new match starts over.
	s.Observe(goal(uuid.New(), object.SideRight, time.Second))
	if s.Left.Goals != 0 || s.Right.Goals != 1 || s.Completed != nil {
		t.Errorf("stats not reset for a new match: %+v", s)
	}
}

func TestEncodeDecode(t *testing.T) {
	id := uuid.New()
	at := time.UnixMilli(1_700_000_000_000)

	b, err := Encode(game.MatchCompleted{
		MatchID:    id,
		WinnerSide: object.SideRight,
		Duration:   95 * time.Second,
		TimedOut:   true,
		Score:      [2]int{3, 4},
		Goals:      7,
	}, at)
	if err != nil {
		t.Fatal(err)
	}

	env, err := Decode(b)
	if err != nil {
		t.Fatal(err)
	}
	want := Envelope{
		Type:       TypeComplete,
		MatchID:    id.String(),
		At:         at.UnixMilli(),
		Side:       "right",
		DurationMs: 95000,
		Score:      [2]int{3, 4},
		TimedOut:   true,
		Goals:      7,
	}
	if env != want {
		t.Errorf("envelope = %+v, want %+v", env, want)
	}

	if _, err := Decode([]byte{0xc1}); err == nil {
		t.Error("decoding garbage should fail")
	}
}

type unknownEvent struct{}

func (unknownEvent) Match() uuid.UUID { return uuid.Nil }

func TestEncodeUnknown(t *testing.T) {
	if _, err := Encode(unknownEvent{}, time.Now()); !errors.Is(err, ErrUnknownEvent) {
		t.Errorf("err = %v, want ErrUnknownEvent", err)
	}
}

type fakeRedis struct {
	mu       sync.Mutex
	channels []string
	payloads [][]byte
	release  chan struct{}
}

func (f *fakeRedis) Publish(ctx context.Context, channel string, payload []byte) error {
	if f.release != nil {
		<-f.release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.channels = append(f.channels, channel)
	f.payloads = append(f.payloads, payload)
	return nil
}

func (f *fakeRedis) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.payloads)
}

func TestPublisherDelivers(t *testing.T) {
	fake := &fakeRedis{}
	p := newPublisher(fake, "match_events", log.New(io.Discard))

	id := uuid.New()
	p.Publish(goal(id, object.SideLeft, time.Second))
	p.Publish(game.MatchCompleted{MatchID: id, WinnerSide: object.SideLeft})
	p.Close()
	p.Close()

	if fake.count() != 2 {
		t.Fatalf("published %d events, want 2", fake.count())
	}
	if fake.channels[0] != "match_events" {
		t.Errorf("channel = %q", fake.channels[0])
	}
	env, err := Decode(fake.payloads[1])
	if err != nil || env.Type != TypeComplete || env.MatchID != id.String() {
		t.Errorf("second payload = %+v, %v", env, err)
	}

	// Publishing after Close is a no-op.
	p.Publish(goal(id, object.SideLeft, time.Second))
	if fake.count() != 2 {
		t.Error("event published after close")
	}
}

func TestPublisherDropsWhenFull(t *testing.T) {
	fake := &fakeRedis{release: make(chan struct{})}
	p := newPublisher(fake, "match_events", log.New(io.Discard))

	const total = queueSize + 10
	id := uuid.New()
	for i := 0; i < total; i++ {
		p.Publish(goal(id, object.SideLeft, time.Second))
	}
	if p.Dropped() < 9 {
		t.Errorf("dropped = %d, want at least 9", p.Dropped())
	}

	close(fake.release)
	p.Close()
	if got := int64(fake.count()) + p.Dropped(); got != total {
		t.Errorf("delivered+dropped = %d, want %d", got, total)
	}
}

func TestPublisherNilLogger(t *testing.T) {
	fake := &fakeRedis{release: make(chan struct{})}
	p := newPublisher(fake, "match_events", nil)

	id := uuid.New()
	for i := 0; i < queueSize+5; i++ {
		p.Publish(goal(id, object.SideLeft, time.Second))
	}
	p.Publish(unknownEvent{})
	if p.Dropped() == 0 {
		t.Error("expected drops with a stalled connection")
	}

	close(fake.release)
	p.Close()
}
