package dtime

import (
	"context"
	"sync"
)

// A Ticker holds a channel that delivers “ticks” of the Context's Clock at intervals.
type Ticker struct {
	C <-chan Time // The channel on which the ticks are delivered.
	c chan<- Time

	clock  Clock
	ctx    context.Context
	cancel context.CancelFunc

	mu    sync.Mutex
	start Time
	d     Duration
	i     int64
	gen   int64 // bumped by Reset, so that ticks armed before the Reset are ignored
}

// armLocked must be called with t.mu held.
func (t *Ticker) armLocked() {
	gen := t.gen
	// Schedule based on t.start rather than on Now(), to avoid drift over time.
	t.clock.At(t.ctx, t.start.Add(t.d*Duration(t.i+1)), func() { t.fire(gen) })
}

func (t *Ticker) fire(gen int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if gen != t.gen || t.ctx.Err() != nil {
		return
	}
	select {
	case t.c <- t.clock.Now():
	default:
	}
	t.i++
	t.armLocked()
}

// NewTicker returns a new Ticker containing a channel that will send the time on the channel after
// each tick.  The period of the ticks is specified by the Duration argument.  The Ticker drops
// ticks to make up for slow receivers.  The Duration d must be greater than zero; if not,
// NewTicker will panic.  The Context becoming Done implicitly calls the Ticker's Stop method.
func NewTicker(ctx context.Context, d Duration) *Ticker {
	if d <= 0 {
		panic("dtime: non-positive interval for NewTicker")
	}

	ch := make(chan Time, 1)
	clock := getClock(ctx)
	ctx, cancel := context.WithCancel(ctx)
	t := &Ticker{
		C: ch,
		c: ch,

		clock:  clock,
		ctx:    ctx,
		cancel: cancel,

		start: clock.Now(),
		d:     d,
	}
	t.mu.Lock()
	t.armLocked()
	t.mu.Unlock()
	return t
}

// Reset changes the ticker's period to d; the next tick arrives d after the call.  It is a no-op
// to call Reset on a stopped Ticker.
func (t *Ticker) Reset(d Duration) {
	if d <= 0 {
		panic("dtime: non-positive interval for Ticker.Reset")
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.ctx.Err() != nil {
		return
	}
	t.gen++
	t.start = t.clock.Now()
	t.d = d
	t.i = 0
	t.armLocked()
}

// Stop turns off a ticker.  After Stop, no more ticks will be sent.  Stop does not close the
// channel, to prevent a concurrent goroutine reading from the channel from seeing an erroneous
// "tick".
func (t *Ticker) Stop() {
	t.cancel()
}
