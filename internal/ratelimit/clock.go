package ratelimit

import "time"

// Clock provides time operations, abstracted for testing.
type Clock interface {
	Now() time.Time
}

// SystemClock implements Clock using the real system time.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
