package testfixtures

import (
	"sync"
	"time"
)

// Clock is a manually driven time source shared by a scheduler under test
// and the assertions about it.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock starts at start, or at ReferenceTime when start is zero.
func NewClock(start time.Time) *Clock {
	if start.IsZero() {
		start = ReferenceTime()
	}
	return &Clock{now: start}
}

// Now returns the clock's current instant.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// NowFunc returns Now for injection; a nil clock falls back to wall time.
func (c *Clock) NowFunc() func() time.Time {
	if c == nil {
		return time.Now
	}
	return c.Now
}

// Set jumps to t, which may be earlier than the current instant.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

// Advance moves forward by d and returns the new instant.
func (c *Clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

// PassEnd moves the clock one minute past the end of the fixture so the
// reservation counts as historical.
func (c *Clock) PassEnd(r ReservationFixture) time.Time {
	next := r.EndTime.Add(time.Minute)
	c.Set(next)
	return next
}

// During puts the clock halfway through the fixture's interval.
func (c *Clock) During(r ReservationFixture) time.Time {
	mid := r.StartTime.Add(r.EndTime.Sub(r.StartTime) / 2)
	c.Set(mid)
	return mid
}
