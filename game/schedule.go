package game

import "container/heap"

// task is one deferred work item: run once elapsed time reaches fireAt.
type task struct {
	fireAt float64
	run    func()
}

// taskHeap is a min-heap of tasks ordered by fire time.
type taskHeap []task

func (h taskHeap) Len() int            { return len(h) }
func (h taskHeap) Less(i, j int) bool  { return h[i].fireAt < h[j].fireAt }
func (h taskHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *taskHeap) Push(x interface{}) { *h = append(*h, x.(task)) }
func (h *taskHeap) Pop() interface{} {
	old := *h
	n := len(old)
	t := old[n-1]
	*h = old[:n-1]
	return t
}

// Scheduler owns all deferred work (delayed respawns, power-up
// replacements). Tasks fire inside the tick whose elapsed time passes
// their deadline; nothing runs from timer callbacks outside the loop.
type Scheduler struct {
	tasks taskHeap
}

// NewScheduler creates an empty scheduler.
func NewScheduler() *Scheduler {
	s := &Scheduler{}
	heap.Init(&s.tasks)
	return s
}

// After schedules fn to run once now+delay is reached.
func (s *Scheduler) After(now, delay float64, fn func()) {
	heap.Push(&s.tasks, task{fireAt: now + delay, run: fn})
}

// Fire runs every task whose deadline has elapsed, in deadline order.
func (s *Scheduler) Fire(now float64) {
	for s.tasks.Len() > 0 && s.tasks[0].fireAt <= now {
		t := heap.Pop(&s.tasks).(task)
		t.run()
	}
}

// Pending returns the number of queued tasks.
func (s *Scheduler) Pending() int {
	return s.tasks.Len()
}

// Reset discards all queued work.
func (s *Scheduler) Reset() {
	s.tasks = s.tasks[:0]
}
