package dtime_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datawire/dworld/dtime"
)

// recorder collects the names of fired tasks, and the virtual time each fired at.
type recorder struct {
	mu    sync.Mutex
	sched *dtime.VirtualScheduler
	names []string
	times []dtime.Duration
}

func newRecorder() *recorder {
	return &recorder{sched: dtime.NewVirtualScheduler(dtime.ReferenceDate)}
}

func (r *recorder) task(name string) func() {
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.names = append(r.names, name)
		r.times = append(r.times, r.sched.TimeSinceBoot())
	}
}

func (r *recorder) fired() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.names...)
}

func (r *recorder) at(d dtime.Duration) dtime.Time {
	return r.sched.BootTime().Add(d)
}

func TestVirtualSchedulerOrdering(t *testing.T) {
	r := newRecorder()
	r.sched.ScheduleAfter(3*time.Second, r.task("A"))
	r.sched.ScheduleAfter(1*time.Second, r.task("B"))
	r.sched.ScheduleAfter(1*time.Second, r.task("C"))

	r.sched.AdvanceBy(3 * time.Second)

	assert.Equal(t, []string{"B", "C", "A"}, r.fired())
	assert.Equal(t, []dtime.Duration{time.Second, time.Second, 3 * time.Second}, r.times)
	assert.Equal(t, 3*time.Second, r.sched.TimeSinceBoot())
}

func TestVirtualSchedulerOrderingTable(t *testing.T) {
	type job struct {
		name  string
		delay dtime.Duration
	}
	testcases := map[string]struct {
		Jobs     []job
		Expected []string
	}{
		"distinct": {
			Jobs:     []job{{"a", 5}, {"b", 1}, {"c", 3}},
			Expected: []string{"b", "c", "a"},
		},
		"all-equal": {
			Jobs:     []job{{"a", 2}, {"b", 2}, {"c", 2}, {"d", 2}},
			Expected: []string{"a", "b", "c", "d"},
		},
		"mixed": {
			Jobs:     []job{{"a", 4}, {"b", 0}, {"c", 4}, {"d", -1}, {"e", 1}},
			Expected: []string{"b", "d", "e", "a", "c"},
		},
	}
	for tcname, tc := range testcases {
		tc := tc
		t.Run(tcname, func(t *testing.T) {
			r := newRecorder()
			for _, j := range tc.Jobs {
				r.sched.ScheduleAfter(j.delay*time.Second, r.task(j.name))
			}
			r.sched.AdvanceBy(time.Minute)
			assert.Equal(t, tc.Expected, r.fired())
		})
	}
}

func TestVirtualSchedulerNoAdvanceNoFire(t *testing.T) {
	r := newRecorder()
	r.sched.Schedule(r.task("now"))
	r.sched.ScheduleAfter(0, r.task("zero"))
	r.sched.ScheduleAfter(time.Second, r.task("later"))
	cancel := r.sched.ScheduleRepeating(0, time.Second, r.task("repeating"))
	defer cancel()

	assert.Empty(t, r.fired())
	assert.Equal(t, 4, r.sched.Pending())
	assert.Equal(t, r.sched.BootTime(), r.sched.Now())
}

func TestVirtualSchedulerExactBoundary(t *testing.T) {
	r := newRecorder()
	r.sched.ScheduleAfter(5*time.Second, r.task("t5"))

	r.sched.AdvanceTo(r.at(4 * time.Second))
	assert.Empty(t, r.fired())
	assert.Equal(t, r.at(4*time.Second), r.sched.Now())

	r.sched.AdvanceTo(r.at(5*time.Second - time.Nanosecond))
	assert.Empty(t, r.fired())

	r.sched.AdvanceTo(r.at(5 * time.Second))
	assert.Equal(t, []string{"t5"}, r.fired())
}

func TestVirtualSchedulerDriftFreeCadence(t *testing.T) {
	r := newRecorder()
	work := r.task("tick")
	cancel := r.sched.ScheduleRepeating(0, 2*time.Second, func() {
		work()
		// Lots of "work" between fires must not shift the cadence.
		r.sched.ScheduleAfter(time.Second/2, func() {})
	})
	defer cancel()

	r.sched.AdvanceBy(6 * time.Second)

	assert.Equal(t, []dtime.Duration{0, 2 * time.Second, 4 * time.Second, 6 * time.Second}, r.times)
}

func TestVirtualSchedulerRepeatingInOneBigJump(t *testing.T) {
	r := newRecorder()
	cancel := r.sched.ScheduleRepeating(time.Second, 3*time.Second, r.task("tick"))
	defer cancel()

	r.sched.AdvanceBy(11 * time.Second)
	assert.Equal(t, []dtime.Duration{1 * time.Second, 4 * time.Second, 7 * time.Second, 10 * time.Second}, r.times)

	r.sched.AdvanceBy(2 * time.Second)
	assert.Len(t, r.times, 5)
	assert.Equal(t, 13*time.Second, r.times[4])
}

func TestVirtualSchedulerCancelFromOwnCallback(t *testing.T) {
	r := newRecorder()
	var cancel dtime.CancelFunc
	fires := 0
	cancel = r.sched.ScheduleRepeating(0, time.Second, func() {
		fires++
		if fires == 2 {
			cancel()
		}
	})

	r.sched.AdvanceBy(time.Minute)

	assert.Equal(t, 2, fires)
	assert.Zero(t, r.sched.Pending())
}

func TestVirtualSchedulerCancelIsIdempotent(t *testing.T) {
	r := newRecorder()
	cancel := r.sched.ScheduleRepeating(time.Second, time.Second, r.task("repeating"))
	cancel()
	cancel()

	// A task scheduled after the cancellation must not be affected by further cancels, even
	// though the repeating task's sequence number is no longer in use.
	r.sched.ScheduleAfter(time.Second, r.task("one-shot"))
	cancel()

	r.sched.AdvanceBy(5 * time.Second)
	assert.Equal(t, []string{"one-shot"}, r.fired())
}

func TestVirtualSchedulerCancelFromAnotherGoroutine(t *testing.T) {
	r := newRecorder()
	cancel := r.sched.ScheduleRepeating(0, time.Second, r.task("tick"))
	r.sched.AdvanceBy(2 * time.Second)

	done := make(chan struct{})
	go func() {
		defer close(done)
		cancel()
	}()
	<-done

	r.sched.AdvanceBy(10 * time.Second)
	assert.Len(t, r.fired(), 3)
}

func TestVirtualSchedulerRepeatingKeepsItsPlace(t *testing.T) {
	r := newRecorder()
	cancel := r.sched.ScheduleRepeating(2*time.Second, 2*time.Second, r.task("repeating"))
	defer cancel()
	r.sched.ScheduleAfter(4*time.Second, r.task("one-shot"))

	r.sched.AdvanceBy(4 * time.Second)

	// Both are due at t=4; the repeating task was scheduled first.
	assert.Equal(t, []string{"repeating", "repeating", "one-shot"}, r.fired())
}

func TestVirtualSchedulerBackwardAdvanceIsNoop(t *testing.T) {
	r := newRecorder()
	r.sched.AdvanceTo(r.at(10 * time.Second))
	r.sched.Schedule(r.task("due-now"))

	r.sched.AdvanceTo(r.at(7 * time.Second))
	assert.Equal(t, r.at(10*time.Second), r.sched.Now())
	assert.Empty(t, r.fired())

	r.sched.AdvanceBy(-time.Second)
	assert.Equal(t, r.at(10*time.Second), r.sched.Now())
	assert.Empty(t, r.fired())

	r.sched.AdvanceBy(0)
	assert.Equal(t, []string{"due-now"}, r.fired())
}

func TestVirtualSchedulerNonPositiveDelay(t *testing.T) {
	r := newRecorder()
	r.sched.AdvanceSec(3)
	r.sched.ScheduleAfter(-time.Hour, r.task("negative"))

	r.sched.AdvanceBy(0)

	assert.Equal(t, []string{"negative"}, r.fired())
	assert.Equal(t, []dtime.Duration{3 * time.Second}, r.times)
	assert.Equal(t, r.at(3*time.Second), r.sched.Now())
}

func TestVirtualSchedulerReentrantScheduling(t *testing.T) {
	r := newRecorder()
	r.sched.ScheduleAfter(time.Second, func() {
		r.task("outer")()
		r.sched.ScheduleAfter(0, r.task("inner-now"))
		r.sched.ScheduleAfter(time.Second, r.task("inner-later"))
		r.sched.ScheduleAfter(time.Hour, r.task("inner-too-late"))
	})

	r.sched.AdvanceTo(r.at(2 * time.Second))

	assert.Equal(t, []string{"outer", "inner-now", "inner-later"}, r.fired())
	assert.Equal(t, 1, r.sched.Pending())
}

func TestVirtualSchedulerReentrantAdvance(t *testing.T) {
	r := newRecorder()
	r.sched.ScheduleAfter(time.Second, func() {
		r.task("first")()
		// Advancing from inside a task must not deadlock.
		r.sched.AdvanceBy(5 * time.Second)
	})
	r.sched.ScheduleAfter(3*time.Second, r.task("second"))

	r.sched.AdvanceBy(2 * time.Second)

	assert.Equal(t, []string{"first", "second"}, r.fired())
	assert.Equal(t, 6*time.Second, r.sched.TimeSinceBoot())
}

func TestVirtualSchedulerWaitForAllTasks(t *testing.T) {
	r := newRecorder()
	r.sched.ScheduleAfter(10*time.Second, r.task("one-shot"))
	r.sched.ScheduleAfter(time.Second, func() {
		r.task("parent")()
		r.sched.ScheduleAfter(30*time.Second, r.task("child"))
	})
	var cancel dtime.CancelFunc
	ticks := 0
	cancel = r.sched.ScheduleRepeating(0, 5*time.Second, func() {
		ticks++
		if ticks == 3 {
			cancel()
		}
	})

	r.sched.WaitForAllTasks()

	assert.Equal(t, []string{"parent", "one-shot", "child"}, r.fired())
	assert.Equal(t, 3, ticks)
	assert.Zero(t, r.sched.Pending())
	assert.Equal(t, 31*time.Second, r.sched.TimeSinceBoot())
}

func TestVirtualSchedulerWaitForAllTasksEmpty(t *testing.T) {
	r := newRecorder()
	r.sched.WaitForAllTasks()
	assert.Equal(t, r.sched.BootTime(), r.sched.Now())
}

func TestVirtualSchedulerConcurrentCallers(t *testing.T) {
	r := newRecorder()
	const n = 64

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r.sched.ScheduleAfter(dtime.Duration(i%7)*time.Second, r.task("job"))
			cancel := r.sched.ScheduleRepeating(time.Second, time.Second, r.task("never"))
			cancel()
		}(i)
	}
	wg.Wait()

	r.sched.WaitForAllTasks()

	assert.Len(t, r.fired(), n)
	for i := 1; i < len(r.times); i++ {
		assert.LessOrEqual(t, r.times[i-1], r.times[i])
	}
}

func TestVirtualSchedulerAt(t *testing.T) {
	r := newRecorder()
	ctx, cancel := context.WithCancel(context.Background())

	r.sched.At(context.Background(), r.at(2*time.Second), r.task("kept"))
	r.sched.At(ctx, r.at(time.Second), r.task("cancelled"))
	r.sched.At(context.Background(), r.at(-time.Hour), r.task("in-the-past"))
	cancel()
	assert.Equal(t, 2, r.sched.Pending())

	r.sched.AdvanceSec(5)

	assert.Equal(t, []string{"in-the-past", "kept"}, r.fired())
	assert.Equal(t, []dtime.Duration{0, 2 * time.Second}, r.times)
}

func TestVirtualSchedulerCancelledAtDoesNotMoveClock(t *testing.T) {
	r := newRecorder()
	ctx, cancel := context.WithCancel(context.Background())
	r.sched.At(ctx, r.at(time.Hour), r.task("cancelled"))
	cancel()

	r.sched.WaitForAllTasks()

	assert.Empty(t, r.fired())
	assert.Equal(t, r.sched.BootTime(), r.sched.Now())
}

func TestVirtualSchedulerNonPositiveInterval(t *testing.T) {
	sched := dtime.NewVirtualScheduler(dtime.ReferenceDate)
	assert.Panics(t, func() { sched.ScheduleRepeating(0, 0, func() {}) })
	assert.Panics(t, func() { sched.ScheduleRepeating(0, -time.Second, func() {}) })
}

func TestVirtualSchedulerWaitForPending(t *testing.T) {
	sched := dtime.NewVirtualScheduler(dtime.ReferenceDate)
	ctx := dtime.WithClock(context.Background(), sched)

	woke := make(chan dtime.Time)
	go func() {
		dtime.Sleep(ctx, 5*time.Second)
		woke <- dtime.Now(ctx)
	}()

	waitCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, sched.WaitForPending(waitCtx, 1))

	sched.AdvanceSec(5)

	select {
	case now := <-woke:
		assert.Equal(t, sched.BootTime().Add(5*time.Second), now)
	case <-time.After(10 * time.Second):
		t.Fatal("Sleep did not return after the clock was advanced")
	}
}

func TestVirtualSchedulerWaitForPendingCancelled(t *testing.T) {
	sched := dtime.NewVirtualScheduler(dtime.ReferenceDate)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sched.WaitForPending(ctx, 1), context.Canceled)
}
