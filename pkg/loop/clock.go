package loop

import "time"

// Clock measures time since start and between ticks
type Clock struct {
	now     func() time.Time
	start   time.Time
	last    time.Time
	elapsed time.Duration
	delta   time.Duration
}

// NewClock starts a clock at the current time
func NewClock() *Clock {
	return newClockWith(time.Now)
}

func newClockWith(now func() time.Time) *Clock {
	start := now()
	return &Clock{now: now, start: start, last: start}
}

// Tick samples the clock. Elapsed and Delta report the values of the most
// recent tick.
func (c *Clock) Tick() {
	now := c.now()
	c.delta = now.Sub(c.last)
	c.elapsed = now.Sub(c.start)
	c.last = now
}

// Elapsed is the time from start to the last tick
func (c *Clock) Elapsed() time.Duration {
	return c.elapsed
}

// Delta is the time between the last two ticks
func (c *Clock) Delta() time.Duration {
	return c.delta
}
