package services

import "time"

// Clock abstracts "now" so tests can pin time instead of depending on the
// wall clock.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the wall-clock implementation used in production.
func SystemClock() Clock { return systemClock{} }

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }
