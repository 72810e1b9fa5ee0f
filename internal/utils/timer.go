package utils

import "time"

// Timer is a stopwatch. The zero value is not started; use NewTimer.
type Timer struct {
	start    time.Time
	duration time.Duration
}

// NewTimer returns a running Timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Stop records and returns the time elapsed since NewTimer. Calling it again
// measures from the same start.
func (t *Timer) Stop() time.Duration {
	t.duration = time.Since(t.start)
	return t.duration
}

// Duration returns the value recorded by the last Stop, zero before that.
func (t *Timer) Duration() time.Duration {
	return t.duration
}
