package matchclock

import (
	"context"
	"time"
)

// MatchDuration bounds every match.
const MatchDuration = 60 * time.Second

// PollInterval keeps the displayed countdown smooth without burning CPU.
const PollInterval = 100 * time.Millisecond

// Clock derives the remaining match time from a fixed anchor instead of
// counting down a local variable, so repeated polls cannot drift.
type Clock struct {
	Anchor   time.Time
	Duration time.Duration
}

// New anchors a clock at the moment the match went active.
func New(anchor time.Time) Clock {
	return Clock{Anchor: anchor, Duration: MatchDuration}
}

// Remaining returns max(0, Duration - (now - Anchor)).
func (c Clock) Remaining(now time.Time) time.Duration {
	if c.Anchor.IsZero() {
		return c.Duration
	}
	rem := c.Duration - now.Sub(c.Anchor)
	if rem < 0 {
		return 0
	}
	return rem
}

// Seconds is Remaining rounded down to whole seconds for display.
func (c Clock) Seconds(now time.Time) int {
	if c.Anchor.IsZero() {
		return int(c.Duration / time.Second)
	}
	elapsed := int(now.Sub(c.Anchor) / time.Second)
	secs := int(c.Duration/time.Second) - elapsed
	if secs < 0 {
		return 0
	}
	return secs
}

// Expired reports whether the match time has fully elapsed.
func (c Clock) Expired(now time.Time) bool {
	return !c.Anchor.IsZero() && c.Remaining(now) == 0
}

// Poll invokes fn at every interval until the clock expires or ctx is
// cancelled. It runs in the calling goroutine; callers start it with go and
// cancel the context to release it on teardown.
func (c Clock) Poll(ctx context.Context, interval time.Duration, fn func(remaining time.Duration)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			rem := c.Remaining(now)
			fn(rem)
			if rem == 0 {
				return
			}
		}
	}
}
