package dtime

import (
	"context"
	"sync"
)

// Sleep pauses the current goroutine either until the Context's Clock reaches Now+d, or until the
// Context becomes done; whichever happens first.  A negative or zero duration causes Sleep to
// return immediately.
//
// With a VirtualScheduler, Sleep returns once some other goroutine advances the clock far enough.
func Sleep(ctx context.Context, d Duration) {
	if d <= 0 {
		return
	}
	<-After(ctx, d)
}

// After either waits for the Duration to elapse and then sends the current time on the returned
// channel, or waits for the Context to become Done and closes the returned channel; whichever
// happens first.  If the Duration elapses first, the channel is never closed.
func After(ctx context.Context, d Duration) <-chan Time {
	clock := getClock(ctx)
	ch := make(chan Time, 1)
	ctx, cancel := context.WithCancel(ctx)

	var once sync.Once
	clock.At(ctx, clock.Now().Add(d), func() {
		once.Do(func() { ch <- clock.Now() })
		cancel()
	})
	go func() {
		<-ctx.Done()
		once.Do(func() { close(ch) })
	}()
	return ch
}
