// Package clock provides pause-compensated match timing and the abandoned-match watchdog.
package clock

import (
	"sync"
	"time"
)

// TimeProvider supplies wall-clock readings.
type TimeProvider interface {
	Now() time.Time
}

// RealTime reads the system clock (with its monotonic component).
type RealTime struct{}

// Now implements TimeProvider.
func (RealTime) Now() time.Time {
	return time.Now()
}

// MockTimeProvider provides a controllable time source for testing
type MockTimeProvider struct {
	mu          sync.RWMutex
	currentTime time.Time
}

// NewMockTimeProvider creates a new mock time provider with the given start time
func NewMockTimeProvider(startTime time.Time) *MockTimeProvider {
	return &MockTimeProvider{currentTime: startTime}
}

// Now returns the current mocked time
func (m *MockTimeProvider) Now() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.currentTime
}

// Advance moves the mocked time forward by d
func (m *MockTimeProvider) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentTime = m.currentTime.Add(d)
}
