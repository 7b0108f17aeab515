package clock

import "time"

// Clock is the time source for token expiry and game timestamps
type Clock interface {
	Now() time.Time
}

// RealClock reads the system clock in UTC
type RealClock struct{}

// New creates a new RealClock
func New() *RealClock {
	return &RealClock{}
}

// Now returns the current UTC time
func (c *RealClock) Now() time.Time {
	return time.Now().UTC()
}
