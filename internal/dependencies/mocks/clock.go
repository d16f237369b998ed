package mocks

import (
	"sync"
	"time"

	"github.com/mcoot/tourneybot/internal/dependencies/clock"
)

// MockClock is a mock implementation of Clock for testing.
// Ticks are only delivered when Fire is called.
type MockClock struct {
	mu          sync.Mutex
	currentTime time.Time
	ticks       chan time.Time
}

// Ensure MockClock implements Clock
var _ clock.Clock = (*MockClock)(nil)

// NewMockClock creates a MockClock set to the given time
func NewMockClock(t time.Time) *MockClock {
	return &MockClock{
		currentTime: t,
		ticks:       make(chan time.Time),
	}
}

// Now returns the mocked current time
func (c *MockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentTime
}

// Tick returns the channel fed by Fire; the interval is ignored
func (c *MockClock) Tick(_ time.Duration) (<-chan time.Time, func()) {
	return c.ticks, func() {}
}

// Advance moves the clock forward by the given duration
func (c *MockClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.currentTime = c.currentTime.Add(d)
}

// Set sets the clock to the given time
func (c *MockClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.currentTime = t
}

// Fire delivers one tick, blocking until a ticker consumer receives it
func (c *MockClock) Fire() {
	c.ticks <- c.Now()
}
