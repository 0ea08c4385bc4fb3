// Package dtime provides injectable clocks and schedulers, so that code which cares about the
// passage of time can be pointed at either the real system clock or a virtual clock that a test
// drives by hand.
//
// There are two abstractions.  A Clock tells the time and can call a function at a given Time; it
// is carried in a Context (WithClock), and dtime.Now(ctx), Sleep, After, and NewTicker all
// respect it.  A Scheduler is the task-submission shape that production code is written against:
// run a task now, run it after a delay, or run it repeatedly at an interval until cancelled.
//
// StdClock implements both on top of the real clock.  VirtualScheduler implements both on top of
// a simulated timeline that only moves when a test calls AdvanceBy, AdvanceTo, or
// WaitForAllTasks; every task that becomes due fires synchronously, in a single deterministic
// order, on the goroutine that moved the clock.
package dtime

import (
	"context"
)

// Clock is the type you must implement and pass to WithClock if you would like to spoof the system
// clock.  StdClock is the actual system clock, and VirtualScheduler is a handy mock clock that you
// can use instead of implementing your own.
type Clock interface {
	// Now returns the current Time.
	Now() Time

	// At arranges for a function to be called at a given Time, unless the Context is cancelled
	// first.  If the given Time is before Now(), then the function is called as soon as
	// possible.  If the Context is canceled before the Time is reached, then the function is
	// not called.
	At(context.Context, Time, func())
}

// CancelFunc stops a repeating task.  Calling it more than once is a no-op, as is calling it from
// inside the task itself; either way no fire that has not already started will happen.
type CancelFunc func()

// Scheduler runs tasks now, later, or periodically.
//
// Production code should accept a Scheduler rather than calling time.AfterFunc directly, so that
// tests can substitute a VirtualScheduler.
type Scheduler interface {
	// Now returns the Scheduler's notion of the current time.
	Now() Time

	// Schedule runs action as soon as possible.
	Schedule(action func())

	// ScheduleAfter runs action once, after delay has passed.  A non-positive delay means "as
	// soon as possible".
	ScheduleAfter(delay Duration, action func())

	// ScheduleRepeating runs action after delay, and then again every interval after that
	// first planned time, until the returned CancelFunc is called.  The interval must be
	// positive.
	ScheduleRepeating(delay, interval Duration, action func()) CancelFunc
}

var (
	_ Clock     = StdClock{}
	_ Scheduler = StdClock{}
	_ Clock     = (*VirtualScheduler)(nil)
	_ Scheduler = (*VirtualScheduler)(nil)
)

type clockCtxKey struct{}

func getClock(ctx context.Context) Clock {
	if clock, ok := ctx.Value(clockCtxKey{}).(Clock); ok && clock != nil {
		return clock
	}
	return NewStdClock(ctx)
}

// WithClock changes the Clock used by dtime functions that are passed the resulting Context.
func WithClock(ctx context.Context, clock Clock) context.Context {
	return context.WithValue(ctx, clockCtxKey{}, clock)
}

// Now returns the current time according to the Context's Clock.
func Now(ctx context.Context) Time {
	return getClock(ctx).Now()
}

// Since returns the time elapsed since t.  It is shorthand for `dtime.Now(ctx).Sub(t)`.
func Since(ctx context.Context, t Time) Duration {
	return Now(ctx).Sub(t)
}

// Until returns the duration until t.  It is shorthand for `t.Sub(dtime.Now(ctx))`.
func Until(ctx context.Context, t Time) Duration {
	return t.Sub(Now(ctx))
}
