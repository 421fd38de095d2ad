package graph

import (
	"container/heap"
	"math"
)

// Timer is a pending callback scheduled in context time.
type Timer interface {
	// Stop cancels the timer. It reports whether the call prevented the
	// callback from running.
	Stop() bool
}

// Scheduler arranges for callbacks to run after a span of context time.
// *Context is the Scheduler everything else wraps.
type Scheduler interface {
	AfterFunc(delaySeconds float64, fn func()) Timer
}

type timer struct {
	ctx     *Context
	frame   int64
	seq     uint64
	fn      func()
	index   int
	stopped bool
}

func (t *timer) Stop() bool {
	t.ctx.mu.Lock()
	defer t.ctx.mu.Unlock()
	if t.stopped || t.index < 0 {
		return false
	}
	t.stopped = true
	heap.Remove(&t.ctx.timers, t.index)
	return true
}

// AfterFunc runs fn once delaySeconds of context time have been rendered.
// A non-positive delay fires at the start of the next Render or Advance.
func (c *Context) AfterFunc(delaySeconds float64, fn func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	frames := int64(0)
	if delaySeconds > 0 && !math.IsInf(delaySeconds, 1) {
		frames = int64(math.Ceil(delaySeconds*c.sampleRate - 1e-9))
	}
	c.timerSeq++
	t := &timer{ctx: c, frame: c.frame + frames, seq: c.timerSeq, fn: fn}
	heap.Push(&c.timers, t)
	return t
}

// PendingTimers reports how many timers have not fired or been stopped.
func (c *Context) PendingTimers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

func (c *Context) runDueTimers() {
	// Callbacks may arm zero-delay timers; bound the passes so a callback
	// that re-arms itself with no delay cannot stall rendering.
	for pass := 0; pass < 64; pass++ {
		c.mu.Lock()
		var due []*timer
		for len(c.timers) > 0 && c.timers[0].frame <= c.frame {
			t := heap.Pop(&c.timers).(*timer)
			due = append(due, t)
		}
		c.mu.Unlock()
		if len(due) == 0 {
			return
		}
		for _, t := range due {
			t.fn()
		}
	}
}

type timerQueue []*timer

func (q timerQueue) Len() int { return len(q) }
func (q timerQueue) Less(i, j int) bool {
	if q[i].frame != q[j].frame {
		return q[i].frame < q[j].frame
	}
	return q[i].seq < q[j].seq
}
func (q timerQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}
func (q *timerQueue) Push(x any) {
	t := x.(*timer)
	t.index = len(*q)
	*q = append(*q, t)
}
func (q *timerQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*q = old[:n-1]
	return t
}

func (q timerQueue) peekFrame() (int64, bool) {
	if len(q) == 0 {
		return 0, false
	}
	return q[0].frame, true
}
