// Package clock supplies the current instant behind an interface so that
// time-dependent business logic stays testable.
package clock

import "time"

// Clock provides the current instant.
type Clock interface {
	// Now returns the current time in UTC.
	Now() time.Time
}

// System is a Clock backed by the system wall clock.
type System struct{}

// Now returns the current system time in UTC.
func (System) Now() time.Time {
	return time.Now().UTC()
}
