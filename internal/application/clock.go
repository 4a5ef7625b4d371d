package application

import "time"

// Clock keeps time injectable for tests
type Clock interface {
	Now() time.Time
}

// SystemClock is the default clock, backed by time.Now()
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
