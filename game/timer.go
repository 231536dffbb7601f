package game

import "time"

// TimerHandle is an armed one-shot timer. Stop reports whether the timer was
// stopped before firing.
type TimerHandle interface {
	Stop() bool
}

// Scheduler creates one-shot timers. The engine arms at most one turn timer
// and one results timer per room; arming replaces the previous handle.
// Injected so tests can fire timers by hand.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) TimerHandle
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, f func()) TimerHandle {
	return time.AfterFunc(d, f)
}

// NewScheduler returns a Scheduler backed by the wall clock.
func NewScheduler() Scheduler {
	return realScheduler{}
}
