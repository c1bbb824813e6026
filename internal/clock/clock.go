// Package clock abstracts time lookups so that lastSeen stamps and contract
// timestamps can be controlled in tests.
package clock

import "time"

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// System reads the real system clock.
type System struct{}

// Now returns the current system time.
func (System) Now() time.Time {
	return time.Now()
}

var _ Clock = System{}

// Fixed always returns the same instant. Test helper.
type Fixed struct {
	Time time.Time
}

// Now returns the fixed instant.
func (f Fixed) Now() time.Time {
	return f.Time
}

var _ Clock = Fixed{}
