package history

import (
	"time"

	"go.uber.org/atomic"
)

// Clock issues strictly increasing entry keys derived from wall-clock milliseconds.
// Safe for concurrent use.
type Clock struct {
	last atomic.Int64
	now  func() time.Time
}

// NewClock creates a clock reading time.Now.
func NewClock() *Clock {
	return &Clock{now: time.Now}
}

// NewClockFunc creates a clock reading now; used to pin time in tests.
func NewClockFunc(now func() time.Time) *Clock {
	return &Clock{now: now}
}

// Next returns a key greater than every key returned before.
func (c *Clock) Next() int64 {
	for {
		prev := c.last.Load()
		next := c.now().UnixMilli()
		if next <= prev {
			next = prev + 1
		}
		if c.last.CompareAndSwap(prev, next) {
			return next
		}
	}
}
