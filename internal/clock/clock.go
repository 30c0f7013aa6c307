// Package clock abstracts time so the deferred parts of the bot (close
// delay, session durations) can be driven deterministically in tests.
package clock

import "time"

// Clock is the subset of the time package the bot uses.
type Clock interface {
	Now() time.Time
	// AfterFunc calls f in its own goroutine after d (Real) or
	// synchronously from Advance (Fake).
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer cancels a pending AfterFunc.
type Timer interface {
	// Stop reports true if it prevented the call.
	Stop() bool
}

// Real returns the wall clock.
func Real() Clock {
	return realClock{}
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
