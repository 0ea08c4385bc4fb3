package dtime

import (
	"container/heap"
	"context"
	"sync"
)

type pendingTask struct {
	seq      uint64
	dueAt    Time
	action   func()
	interval Duration        // > 0 for repeating tasks
	ctx      context.Context // non-nil only for tasks registered with At
	index    int             // position in the heap; maintained by taskQueue
}

func (t *pendingTask) dead() bool {
	return t.ctx != nil && t.ctx.Err() != nil
}

// taskQueue is a min-heap ordered by (dueAt, seq).
type taskQueue []*pendingTask

func (q taskQueue) Len() int { return len(q) }

func (q taskQueue) Less(i, j int) bool {
	if !q[i].dueAt.Equal(q[j].dueAt) {
		return q[i].dueAt.Before(q[j].dueAt)
	}
	return q[i].seq < q[j].seq
}

func (q taskQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *taskQueue) Push(x interface{}) {
	task := x.(*pendingTask)
	task.index = len(*q)
	*q = append(*q, task)
}

func (q *taskQueue) Pop() interface{} {
	old := *q
	task := old[len(old)-1]
	old[len(old)-1] = nil
	task.index = -1
	*q = old[:len(old)-1]
	return task
}

// VirtualScheduler is a Clock and Scheduler that keeps track of virtual time, so that tests don't
// have to rely on the real system clock.  Time stands still until AdvanceBy, AdvanceTo, or
// WaitForAllTasks is called; those fire every task that has become due, synchronously, on the
// calling goroutine, before returning.
//
// Tasks fire in order of their due time; tasks due at the same time fire in the order they were
// scheduled.  A repeating task keeps the position it was first scheduled with, and its next
// occurrence is queued before its action runs, so the action may cancel itself.
//
// The lock that protects the queue and the clock is never held while an action runs: an action
// may schedule more work, cancel tasks, or even advance the clock itself.
//
// VirtualScheduler is safe for concurrent use by multiple goroutines.
type VirtualScheduler struct {
	mu       sync.Mutex
	bootTime Time
	now      Time
	nextSeq  uint64
	queue    taskQueue
	bySeq    map[uint64]*pendingTask

	// changed is closed (and replaced) whenever a task is added, so that WaitForPending can
	// notice.
	changed chan struct{}
}

// NewVirtualScheduler returns a VirtualScheduler whose clock reads initial.
func NewVirtualScheduler(initial Time) *VirtualScheduler {
	return &VirtualScheduler{
		bootTime: initial,
		now:      initial,
		bySeq:    make(map[uint64]*pendingTask),
		changed:  make(chan struct{}),
	}
}

// enqueueLocked must be called with s.mu held.
func (s *VirtualScheduler) enqueueLocked(task *pendingTask) {
	if task.dueAt.Before(s.now) {
		task.dueAt = s.now
	}
	heap.Push(&s.queue, task)
	s.bySeq[task.seq] = task
	close(s.changed)
	s.changed = make(chan struct{})
}

// scheduleLocked assigns task the next sequence number and queues it.  It must be called with
// s.mu held.
func (s *VirtualScheduler) scheduleLocked(task *pendingTask) uint64 {
	s.nextSeq++
	task.seq = s.nextSeq
	s.enqueueLocked(task)
	return task.seq
}

// headLocked returns the earliest live task without removing it, discarding any At tasks whose
// Context has been cancelled.  It must be called with s.mu held.
func (s *VirtualScheduler) headLocked() *pendingTask {
	for len(s.queue) > 0 {
		head := s.queue[0]
		if !head.dead() {
			return head
		}
		heap.Pop(&s.queue)
		delete(s.bySeq, head.seq)
	}
	return nil
}

// popDue removes and returns the next task due at or before target, moving the clock to its due
// time; re-queueing the next occurrence if it repeats.  If there is no such task, it moves the
// clock to target (but never backward) and returns nil.
func (s *VirtualScheduler) popDue(target Time) *pendingTask {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.now.After(target) {
		return nil
	}
	head := s.headLocked()
	if head == nil || head.dueAt.After(target) {
		s.now = target
		return nil
	}

	heap.Pop(&s.queue)
	delete(s.bySeq, head.seq)
	if head.dueAt.After(s.now) {
		s.now = head.dueAt
	}
	if head.interval > 0 {
		s.enqueueLocked(&pendingTask{
			seq:      head.seq,
			dueAt:    head.dueAt.Add(head.interval),
			action:   head.action,
			interval: head.interval,
		})
	}
	return head
}

// Now implements Clock and Scheduler.
func (s *VirtualScheduler) Now() Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// BootTime returns the time that the VirtualScheduler was created with.
func (s *VirtualScheduler) BootTime() Time {
	return s.bootTime
}

// TimeSinceBoot returns the amount of virtual time that has passed since the VirtualScheduler
// was created.
func (s *VirtualScheduler) TimeSinceBoot() Duration {
	return s.Now().Sub(s.bootTime)
}

// Schedule implements Scheduler.  The action is due immediately, but, like everything else, it
// only fires once the clock is advanced (even by zero).
func (s *VirtualScheduler) Schedule(action func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scheduleLocked(&pendingTask{dueAt: s.now, action: action})
}

// ScheduleAfter implements Scheduler.
func (s *VirtualScheduler) ScheduleAfter(delay Duration, action func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scheduleLocked(&pendingTask{dueAt: s.now.Add(delay), action: action})
}

// ScheduleRepeating implements Scheduler.  The n-th fire is due at first+n*interval, regardless
// of how long each action takes or how far each advance jumps.
func (s *VirtualScheduler) ScheduleRepeating(delay, interval Duration, action func()) CancelFunc {
	if interval <= 0 {
		panic("dtime: non-positive interval for ScheduleRepeating")
	}
	s.mu.Lock()
	seq := s.scheduleLocked(&pendingTask{
		dueAt:    s.now.Add(delay),
		action:   action,
		interval: interval,
	})
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if task, ok := s.bySeq[seq]; ok {
			heap.Remove(&s.queue, task.index)
			delete(s.bySeq, seq)
		}
	}
}

// At implements Clock.  If ctx is done by the time t is reached, f is dropped without firing and
// without moving the clock.
func (s *VirtualScheduler) At(ctx context.Context, t Time, f func()) {
	if ctx == nil {
		ctx = context.Background()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scheduleLocked(&pendingTask{dueAt: t, action: f, ctx: ctx})
}

// AdvanceTo moves the clock forward to target, firing every task due at or before target in
// (due time, scheduling order) order.  Tasks that those tasks schedule are fired too, if they
// become due at or before target.  Advancing to a time before Now is a no-op.
func (s *VirtualScheduler) AdvanceTo(target Time) {
	for {
		task := s.popDue(target)
		if task == nil {
			return
		}
		task.action()
	}
}

// AdvanceBy moves the clock forward by d; see AdvanceTo.
func (s *VirtualScheduler) AdvanceBy(d Duration) {
	s.AdvanceTo(s.Now().Add(d))
}

// AdvanceSec moves the clock forward by a given number of seconds.
//
// This is a convenience to allow writing unit tests that don't have to have "* time.Second"
// scattered over and over and over again through everything.
func (s *VirtualScheduler) AdvanceSec(sec int) {
	s.AdvanceBy(Duration(sec) * Second)
}

// WaitForAllTasks advances the clock from one due time to the next until nothing is left in the
// queue, including tasks scheduled by other tasks along the way.
//
// It never returns while an uncancelled repeating task exists.  Cancel those first.
func (s *VirtualScheduler) WaitForAllTasks() {
	for {
		s.mu.Lock()
		head := s.headLocked()
		s.mu.Unlock()
		if head == nil {
			return
		}
		s.AdvanceTo(head.dueAt)
	}
}

// Pending returns the number of tasks waiting to fire.  A repeating task counts once.
func (s *VirtualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, task := range s.queue {
		if !task.dead() {
			n++
		}
	}
	return n
}

// WaitForPending blocks until at least n tasks are pending, or until ctx is done (in which case
// it returns ctx.Err()).
//
// This closes the race between a goroutine that is about to Sleep (or set a timer) and the test
// that wants to advance the clock past it:
//
//	go func() { dtime.Sleep(ctx, 5*dtime.Second) }()
//	_ = sched.WaitForPending(ctx, 1) // the Sleep is now registered
//	sched.AdvanceSec(5)
func (s *VirtualScheduler) WaitForPending(ctx context.Context, n int) error {
	for {
		s.mu.Lock()
		changed := s.changed
		s.mu.Unlock()

		if s.Pending() >= n {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-changed:
		}
	}
}
