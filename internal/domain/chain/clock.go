package chain

import (
	"sync"
	"time"
)

type Clock interface {
	Now() time.Time
}

// TimeTraveler is a Clock that can be moved forward, like evm_increaseTime on
// a development node.
type TimeTraveler interface {
	Clock
	IncreaseTime(d time.Duration) time.Time
}

type systemClock struct{}

func NewSystemClock() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now()
}

const maxDuration = time.Duration(1<<63 - 1)

type offsetClock struct {
	mutex  sync.Mutex
	now    func() time.Time
	offset time.Duration
}

// NewOffsetClock returns a TimeTraveler over now. A nil now uses the wall
// clock.
func NewOffsetClock(now func() time.Time) *offsetClock {
	if now == nil {
		now = time.Now
	}

	return &offsetClock{now: now}
}

// NewFixedClock returns a TimeTraveler which only moves with IncreaseTime.
func NewFixedClock(t time.Time) *offsetClock {
	return NewOffsetClock(func() time.Time { return t })
}

func (c *offsetClock) Now() time.Time {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return c.now().Add(c.offset)
}

// IncreaseTime moves the clock forward by d. The offset saturates instead of
// wrapping around.
func (c *offsetClock) IncreaseTime(d time.Duration) time.Time {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if d > maxDuration-c.offset {
		c.offset = maxDuration
	} else {
		c.offset += d
	}

	return c.now().Add(c.offset)
}
