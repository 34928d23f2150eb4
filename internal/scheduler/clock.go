package scheduler

import "time"

// Clock abstracts wall-clock access so deadline behavior is testable without
// real waiting.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, fn func()) Timer
}

// Timer is the cancelable handle returned by Clock.AfterFunc.
type Timer interface {
	// Stop reports whether the timer was stopped before firing.
	Stop() bool
}

type realClock struct{}

// NewRealClock returns a Clock backed by the runtime timers.
func NewRealClock() Clock {
	return realClock{}
}

func (realClock) Now() time.Time {
	return time.Now()
}

func (realClock) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}
