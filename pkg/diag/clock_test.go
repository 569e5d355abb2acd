package diag

import (
	"testing"
	"time"
)

func TestFrequencyClockPeriod(t *testing.T) {
	tests := []struct {
		frequency float64
		want      time.Duration
	}{
		{5, 200 * time.Millisecond},
		{1, time.Second},
		{0.2, 5 * time.Second},
		{0, 0},
	}
	for _, tt := range tests {
		if got := NewFrequencyClock(tt.frequency).Period(); got != tt.want {
			t.Errorf("period at %g Hz = %v, want %v", tt.frequency, got, tt.want)
		}
	}
}

func TestFrequencyClockElapsed(t *testing.T) {
	now := time.Now()
	c := NewFrequencyClock(0.2)
	c.SetTimeSource(func() time.Time { return now })

	if !c.Elapsed(false) {
		t.Fatal("a clock that was never ticked should read elapsed")
	}

	c.Tick()
	if c.Elapsed(false) {
		t.Fatal("elapsed immediately after tick")
	}

	now = now.Add(4 * time.Second)
	if c.Elapsed(false) {
		t.Fatal("elapsed before the period passed")
	}

	now = now.Add(time.Second)
	if !c.Elapsed(false) {
		t.Fatal("not elapsed after a full period")
	}

	// reading without reset must not consume the elapse
	if !c.Elapsed(false) {
		t.Fatal("non-resetting read consumed the elapse")
	}

	if !c.Elapsed(true) {
		t.Fatal("resetting read should still report elapsed")
	}
	if c.Elapsed(false) {
		t.Fatal("elapsed right after a resetting read")
	}
}

func TestFrequencyClockZeroFrequency(t *testing.T) {
	c := NewFrequencyClock(0)
	c.Tick()
	if !c.Elapsed(false) {
		t.Fatal("a clock with no frequency should always read elapsed")
	}
}
