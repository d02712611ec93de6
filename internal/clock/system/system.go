// Package system provides clocks for stamping runs.
package system

import "time"

// Clock implements tracker.Clock using the wall clock, in UTC.
type Clock struct{}

// New creates a new Clock.
func New() *Clock {
	return &Clock{}
}

// Now returns the current time.
func (Clock) Now() time.Time {
	return time.Now().UTC()
}

// Fixed always reports the same instant. It pins the generation timestamp so
// a re-render produces the same document.
type Fixed struct {
	at time.Time
}

// NewFixed returns a clock stopped at t.
func NewFixed(t time.Time) Fixed {
	return Fixed{at: t.UTC()}
}

// Now returns the fixed instant.
func (f Fixed) Now() time.Time {
	return f.at
}
