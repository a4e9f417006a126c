// Package events consumes match events: goal statistics for the result screens and
// a Redis publisher for downstream services.
package events

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tomz197/paddleball/internal/game"
	"github.com/tomz197/paddleball/internal/object"
)

// SideStats aggregates goal timings for one side.
type SideStats struct {
	Goals   int
	Fastest time.Duration
	Total   time.Duration
}

// Average returns the mean time to score, zero without goals.
func (s SideStats) Average() time.Duration {
	if s.Goals == 0 {
		return 0
	}
	return s.Total / time.Duration(s.Goals)
}

func (s *SideStats) add(d time.Duration) {
	if s.Goals == 0 || d < s.Fastest {
		s.Fastest = d
	}
	s.Goals++
	s.Total += d
}

func merge(a, b SideStats) SideStats {
	out := SideStats{Goals: a.Goals + b.Goals, Total: a.Total + b.Total}
	switch {
	case a.Goals == 0:
		out.Fastest = b.Fastest
	case b.Goals == 0:
		out.Fastest = a.Fastest
	default:
		out.Fastest = min(a.Fastest, b.Fastest)
	}
	return out
}

// Stats follows one match at a time. An event from a new match resets it.
type Stats struct {
	MatchID   uuid.UUID
	Left      SideStats
	Right     SideStats
	Completed *game.MatchCompleted
}

// Observe folds one event in.
func (s *Stats) Observe(ev game.Event) {
	if ev.Match() != s.MatchID {
		*s = Stats{MatchID: ev.Match()}
	}

	switch e := ev.(type) {
	case game.GoalRecorded:
		if e.ScoringSide == object.SideRight {
			s.Right.add(e.Duration)
		} else {
			s.Left.add(e.Duration)
		}
	case game.MatchCompleted:
		s.Completed = &e
	}
}

// ObserveAll folds a batch in order.
func (s *Stats) ObserveAll(evs []game.Event) {
	for _, ev := range evs {
		s.Observe(ev)
	}
}

// Overall combines both sides.
func (s *Stats) Overall() SideStats {
	return merge(s.Left, s.Right)
}

// Lines renders a short report for the result screen. Empty until a goal is scored.
func (s *Stats) Lines() []string {
	all := s.Overall()
	if all.Goals == 0 {
		return nil
	}
	lines := []string{
		fmt.Sprintf("Goals %d  fastest %s  average %s", all.Goals, fmtDur(all.Fastest), fmtDur(all.Average())),
	}
	for _, side := range []struct {
		name  string
		stats SideStats
	}{{"left", s.Left}, {"right", s.Right}} {
		if side.stats.Goals == 0 {
			continue
		}
		lines = append(lines, fmt.Sprintf("%-5s %d goals, fastest %s", side.name, side.stats.Goals, fmtDur(side.stats.Fastest)))
	}
	return lines
}

func fmtDur(d time.Duration) string {
	return fmt.Sprintf("%.1fs", d.Seconds())
}
