package clock

import "time"

// MatchClock measures match and goal durations in wall-clock time, excluding paused
// intervals. Queries made while paused return the value frozen at the pause instant.
//
// Not safe for concurrent use; the engine that owns it is the only writer.
type MatchClock struct {
	time TimeProvider

	started     bool
	stopped     bool
	matchStart  time.Time
	goalStart   time.Time
	totalPaused time.Duration
	pauseStart  time.Time
	paused      bool
	stoppedAt   time.Time
}

// NewMatchClock creates an idle clock reading from tp.
func NewMatchClock(tp TimeProvider) *MatchClock {
	if tp == nil {
		tp = RealTime{}
	}
	return &MatchClock{time: tp}
}

// Start begins timing a new match (and its first goal), discarding any previous state.
func (c *MatchClock) Start() {
	now := c.time.Now()
	*c = MatchClock{
		time:       c.time,
		started:    true,
		matchStart: now,
		goalStart:  now,
	}
}

// Started reports whether Start has been called.
func (c *MatchClock) Started() bool {
	return c.started
}

// Pause freezes both timers. Pausing an already paused or idle clock is a no-op.
func (c *MatchClock) Pause() {
	if !c.started || c.stopped || c.paused {
		return
	}
	c.paused = true
	c.pauseStart = c.time.Now()
}

// Resume adds the paused interval to the running total.
func (c *MatchClock) Resume() {
	if !c.paused {
		return
	}
	c.totalPaused += c.time.Now().Sub(c.pauseStart)
	c.paused = false
	c.pauseStart = time.Time{}
}

// IsPaused returns current pause state.
func (c *MatchClock) IsPaused() bool {
	return c.paused
}

// TotalPaused returns the cumulative completed pause time (the current pause excluded).
func (c *MatchClock) TotalPaused() time.Duration {
	return c.totalPaused
}

// Duration returns the pause-compensated time since the match started.
func (c *MatchClock) Duration() time.Duration {
	return c.since(c.matchStart)
}

// GoalDuration returns the pause-compensated time since the last goal (or match start).
func (c *MatchClock) GoalDuration() time.Duration {
	return c.since(c.goalStart)
}

// ResetGoal restarts the goal timer. The start is stored pre-shifted by the pause
// total so that the shared duration formula applies to both timers.
func (c *MatchClock) ResetGoal() {
	if !c.started {
		return
	}
	c.goalStart = c.time.Now().Add(-c.totalPaused)
	if c.paused {
		c.goalStart = c.goalStart.Add(-c.time.Now().Sub(c.pauseStart))
	}
}

// Stop freezes the clock at its current value. Later queries keep returning it.
func (c *MatchClock) Stop() {
	if !c.started || c.stopped {
		return
	}
	c.stoppedAt = c.time.Now()
	c.stopped = true
}

// since implements: now - start - totalPaused - (paused ? now - pauseStart : 0).
func (c *MatchClock) since(start time.Time) time.Duration {
	if !c.started {
		return 0
	}
	now := c.time.Now()
	if c.stopped {
		now = c.stoppedAt
	}
	d := now.Sub(start) - c.totalPaused
	if c.paused {
		d -= now.Sub(c.pauseStart)
	}
	if d < 0 {
		return 0
	}
	return d
}
