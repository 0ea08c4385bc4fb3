package dtime_test

import (
	"context"
	"log"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/datawire/dworld/dlog"
	"github.com/datawire/dworld/dtime"
)

// chanLogger is a dlog.Logger that forwards every message to a channel.
type chanLogger chan string

func (l chanLogger) Helper()                                   {}
func (l chanLogger) WithField(string, interface{}) dlog.Logger { return l }
func (l chanLogger) StdLogger(dlog.LogLevel) *log.Logger       { return log.New(log.Writer(), "", 0) }
func (l chanLogger) Log(level dlog.LogLevel, msg string)       { l <- level.String() + ": " + msg }

func waitFor(t *testing.T, ch <-chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
	}
}

func TestStdClockSchedule(t *testing.T) {
	clock := dtime.NewStdClock(dlog.NewTestContext(t, true))

	now := make(chan struct{})
	clock.Schedule(func() { close(now) })
	waitFor(t, now, "Schedule")

	start := time.Now()
	later := make(chan struct{})
	clock.ScheduleAfter(50*time.Millisecond, func() { close(later) })
	waitFor(t, later, "ScheduleAfter")
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestStdClockScheduleRepeating(t *testing.T) {
	clock := dtime.NewStdClock(dlog.NewTestContext(t, true))

	var fires int32
	third := make(chan struct{})
	cancelled := make(chan dtime.CancelFunc, 1)
	cancel := clock.ScheduleRepeating(0, 50*time.Millisecond, func() {
		if atomic.AddInt32(&fires, 1) == 3 {
			(<-cancelled)()
			close(third)
		}
	})
	cancelled <- cancel

	waitFor(t, third, "the third fire")
	time.Sleep(150 * time.Millisecond)
	assert.EqualValues(t, 3, atomic.LoadInt32(&fires))
}

func TestStdClockAt(t *testing.T) {
	clock := dtime.NewStdClock(dlog.NewTestContext(t, true))

	fired := make(chan struct{})
	clock.At(context.Background(), time.Now().Add(10*time.Millisecond), func() { close(fired) })
	waitFor(t, fired, "At")

	ctx, cancel := context.WithCancel(context.Background())
	var cancelledFired int32
	clock.At(ctx, time.Now().Add(50*time.Millisecond), func() { atomic.StoreInt32(&cancelledFired, 1) })
	cancel()
	time.Sleep(100 * time.Millisecond)
	assert.Zero(t, atomic.LoadInt32(&cancelledFired))
}

func TestStdClockNilContext(t *testing.T) {
	clock := dtime.NewStdClock(dlog.NewTestContext(t, true))

	fired := make(chan struct{})
	clock.At(nil, time.Now(), func() { close(fired) }) //nolint:staticcheck // nil is what is being tested
	waitFor(t, fired, "At with a nil Context")
}

func TestStdClockNegativeDelay(t *testing.T) {
	ctx := dlog.NewTestContext(t, true)

	var stdFires int32
	cancel := dtime.NewStdClock(ctx).ScheduleRepeating(-time.Hour, time.Second, func() {
		atomic.AddInt32(&stdFires, 1)
	})
	time.Sleep(200 * time.Millisecond)
	cancel()

	var virtualFires int32
	sched := dtime.NewVirtualScheduler(dtime.ReferenceDate)
	sched.ScheduleRepeating(-time.Hour, time.Second, func() { virtualFires++ })
	sched.AdvanceBy(200 * time.Millisecond)

	assert.EqualValues(t, 1, virtualFires)
	assert.EqualValues(t, virtualFires, atomic.LoadInt32(&stdFires))
}

func TestStdClockRecoversPanics(t *testing.T) {
	logs := make(chanLogger, 1)
	clock := dtime.NewStdClock(dlog.WithLogger(context.Background(), logs))

	clock.Schedule(func() { panic("boom") })

	select {
	case msg := <-logs:
		assert.Contains(t, msg, "error: ")
		assert.Contains(t, msg, "PANIC: boom")
	case <-time.After(5 * time.Second):
		t.Fatal("the panic was not logged")
	}
}

func TestStdClockNonPositiveInterval(t *testing.T) {
	assert.Panics(t, func() { dtime.StdClock{}.ScheduleRepeating(0, 0, func() {}) })
}
