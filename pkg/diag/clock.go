package diag

import "time"

// FrequencyClock tracks whether a full period (1/Frequency seconds) has
// passed since the clock was last ticked. A clock that was never ticked
// reads as elapsed, as does a clock with no frequency set.
type FrequencyClock struct {
	Frequency float64
	lastTick  time.Time
	now       func() time.Time
}

func NewFrequencyClock(frequency float64) *FrequencyClock {
	return &FrequencyClock{Frequency: frequency}
}

// SetTimeSource overrides the wall clock, for tests.
func (c *FrequencyClock) SetTimeSource(now func() time.Time) {
	c.now = now
}

func (c *FrequencyClock) time() time.Time {
	if c.now != nil {
		return c.now()
	}
	return time.Now()
}

func (c *FrequencyClock) Period() time.Duration {
	if c.Frequency <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / c.Frequency)
}

// Tick resets the last activity instant to now.
func (c *FrequencyClock) Tick() {
	c.lastTick = c.time()
}

// Elapsed reports whether the period has passed since the last tick. With
// reset, an elapsed clock is ticked again so the next period starts counting
// from now.
func (c *FrequencyClock) Elapsed(reset bool) bool {
	if c.Frequency <= 0 {
		return true
	}
	elapsed := c.lastTick.IsZero() || c.time().Sub(c.lastTick) >= c.Period()
	if elapsed && reset {
		c.Tick()
	}
	return elapsed
}
