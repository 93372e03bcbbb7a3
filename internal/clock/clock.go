// Package clock abstracts the wall clock so age comparisons can be tested
// against a fixed "now".
package clock

import "time"

// Clock provides the current instant and the zone used for naive timestamps.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// Location is the zone attached to timestamps that carry no offset.
	Location() *time.Location
}

// RealClock implements Clock using the system time and local zone.
type RealClock struct{}

// Now returns the current system time.
func (c *RealClock) Now() time.Time {
	return time.Now()
}

// Location returns time.Local.
func (c *RealClock) Location() *time.Location {
	return time.Local
}

// FakeClock implements Clock with a fixed time for testing.
type FakeClock struct {
	current time.Time
	loc     *time.Location
}

// NewFakeClock creates a FakeClock pinned to t. Naive timestamps are read in
// t's location.
func NewFakeClock(t time.Time) *FakeClock {
	return &FakeClock{current: t, loc: t.Location()}
}

// Now returns the fixed time.
func (c *FakeClock) Now() time.Time {
	return c.current
}

// Location returns the zone the clock was created in.
func (c *FakeClock) Location() *time.Location {
	return c.loc
}

// Set updates the fixed time without changing the location.
func (c *FakeClock) Set(t time.Time) {
	c.current = t
}

// Advance moves the fixed time forward by the given duration.
func (c *FakeClock) Advance(d time.Duration) {
	c.current = c.current.Add(d)
}
