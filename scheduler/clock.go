package scheduler

import "time"

// Timer is the handle for one armed reminder. Stop reports whether the timer
// was stopped before firing.
type Timer interface {
	Stop() bool
}

// Clock abstracts time for the scheduler so tests can drive firing without
// sleeping. The production implementation delegates to the time package.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// RealClock returns a Clock backed by the system clock.
func RealClock() Clock { return realClock{} }
