package timex

import "time"

// Timer is a pending scheduled call. Stop reports whether it prevented the
// call from running, like time.Timer.Stop.
type Timer interface {
	Stop() bool
}

// Scheduler runs functions after a delay and reports the current time.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
	Now() time.Time
}

type realScheduler struct{}

// Real returns a Scheduler backed by the time package.
func Real() Scheduler {
	return realScheduler{}
}

func (realScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

func (realScheduler) Now() time.Time {
	return time.Now()
}
