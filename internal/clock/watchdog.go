package clock

import "time"

// Watchdog bounds the lifetime of a match. It holds one wall-clock deadline,
// independent of pauses, and fires at most once per arming.
type Watchdog struct {
	timeout  time.Duration
	deadline time.Time
	armed    bool
}

// NewWatchdog creates a disarmed watchdog with the given timeout.
func NewWatchdog(timeout time.Duration) *Watchdog {
	return &Watchdog{timeout: timeout}
}

// Arm schedules the single deferred check at now + timeout, replacing any earlier one.
func (w *Watchdog) Arm(now time.Time) {
	w.deadline = now.Add(w.timeout)
	w.armed = true
}

// Disarm cancels the pending check. Safe to call repeatedly.
func (w *Watchdog) Disarm() {
	w.armed = false
}

// Armed reports whether a check is pending.
func (w *Watchdog) Armed() bool {
	return w.armed
}

// Deadline returns the pending deadline (zero when disarmed).
func (w *Watchdog) Deadline() time.Time {
	if !w.armed {
		return time.Time{}
	}
	return w.deadline
}

// Expired reports true exactly once, on the first call at or after the deadline.
func (w *Watchdog) Expired(now time.Time) bool {
	if !w.armed || now.Before(w.deadline) {
		return false
	}
	w.armed = false
	return true
}
