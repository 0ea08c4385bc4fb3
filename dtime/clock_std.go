package dtime

import (
	"context"
	"sync"
	"time"

	"github.com/datawire/dworld/derror"
	"github.com/datawire/dworld/dlog"
)

// StdClock is a Clock and Scheduler that uses the real system clock.
//
// Scheduled actions run on their own goroutines, so unlike with a VirtualScheduler two actions may
// run concurrently.  An action that panics does not crash the process; the panic is logged (with
// its stack trace) to the Context given to NewStdClock.  The zero value logs to the dlog fallback
// Logger.
type StdClock struct {
	ctx context.Context
}

// NewStdClock returns a StdClock that logs to ctx.
func NewStdClock(ctx context.Context) StdClock {
	return StdClock{ctx: ctx}
}

func (c StdClock) logContext() context.Context {
	if c.ctx == nil {
		return context.Background()
	}
	return c.ctx
}

func (c StdClock) run(action func()) {
	defer func() {
		if err := derror.PanicToError(recover()); err != nil {
			dlog.Errorf(c.logContext(), "dtime: scheduled action crashed: %+v", err)
		}
	}()
	action()
}

// Now implements Clock.
func (StdClock) Now() Time {
	return time.Now()
}

// At implements Clock.  A nil ctx is treated as context.Background().
func (c StdClock) At(ctx context.Context, t Time, f func()) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	timer := time.AfterFunc(time.Until(t), func() {
		cancel()
		c.run(f)
	})
	go func() {
		<-ctx.Done()
		timer.Stop()
	}()
}

// Schedule implements Scheduler.
func (c StdClock) Schedule(action func()) {
	go c.run(action)
}

// ScheduleAfter implements Scheduler.
func (c StdClock) ScheduleAfter(delay Duration, action func()) {
	time.AfterFunc(delay, func() { c.run(action) })
}

// ScheduleRepeating implements Scheduler.  The n-th run is planned for start+delay+n*interval
// rather than for "interval after the previous run finished", so slow actions do not make the
// cadence drift.  A non-positive delay means the first run is due now.  Runs whose planned time
// has already passed when the previous one fires (after the machine was suspended, say) are
// skipped rather than run back-to-back.
func (c StdClock) ScheduleRepeating(delay, interval Duration, action func()) CancelFunc {
	if interval <= 0 {
		panic("dtime: non-positive interval for ScheduleRepeating")
	}

	var (
		mu        sync.Mutex
		cancelled bool
		timer     *time.Timer
		n         int64
	)
	if delay < 0 {
		delay = 0
	}
	first := time.Now().Add(delay)

	fire := func() {
		mu.Lock()
		if cancelled {
			mu.Unlock()
			return
		}
		n++
		if now := time.Now(); first.Add(interval * Duration(n)).Before(now) {
			n = int64(now.Sub(first)/interval) + 1
		}
		timer.Reset(time.Until(first.Add(interval * Duration(n))))
		mu.Unlock()
		c.run(action)
	}

	mu.Lock()
	timer = time.AfterFunc(delay, fire)
	mu.Unlock()

	return func() {
		mu.Lock()
		defer mu.Unlock()
		cancelled = true
		timer.Stop()
	}
}
