// Package clock provides an injectable time source so services can pin "now"
// in tests instead of reading the system clock directly.
package clock

import "time"

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// System reads the wall clock in UTC.
type System struct{}

// NewSystem creates a system clock.
func NewSystem() System { return System{} }

// Now returns the current UTC time.
func (System) Now() time.Time { return time.Now().UTC() }

// Fixed always returns the same instant. Intended for tests.
type Fixed struct {
	t time.Time
}

// NewFixed creates a clock pinned to t.
func NewFixed(t time.Time) Fixed { return Fixed{t: t} }

// Now returns the pinned instant.
func (f Fixed) Now() time.Time { return f.t }
