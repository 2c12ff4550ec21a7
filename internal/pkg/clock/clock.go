// Package clock abstracts the wall clock so date math can be tested
// against a fixed point in time.
package clock

import "time"

// TimeProvider supplies the current time in a given location.
type TimeProvider interface {
	Now(loc *time.Location) time.Time
}

// DefaultTimeProvider reads the system clock.
type DefaultTimeProvider struct{}

func (p *DefaultTimeProvider) Now(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.Now().In(loc)
}

// FixedTimeProvider always returns the same instant. Intended for tests.
type FixedTimeProvider struct {
	CurrentTime time.Time
}

func (p *FixedTimeProvider) Now(loc *time.Location) time.Time {
	if loc == nil {
		return p.CurrentTime
	}
	return p.CurrentTime.In(loc)
}
