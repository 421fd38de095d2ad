// Package arp steps through the held notes at the current tempo.
package arp

import "github.com/cbegin/polysynth-go/internal/graph"

// Periodic is a cancellable repeating task on a graph.Scheduler. The
// interval is asked for again before every rescheduling, so it can follow a
// value that changes while the task runs.
//
// Periodic is not safe for concurrent use; callbacks delivered by the
// scheduler must be serialized with calls to Arm and Cancel.
type Periodic struct {
	sched graph.Scheduler
	timer graph.Timer
	gen   uint64
	armed bool
}

func NewPeriodic(sched graph.Scheduler) *Periodic {
	return &Periodic{sched: sched}
}

// Arm cancels any running task, runs fn once right away and then again
// every interval() seconds until cancelled.
func (p *Periodic) Arm(interval func() float64, fn func()) {
	p.Cancel()
	p.armed = true
	p.fire(p.gen, interval, fn)
}

// Cancel stops the task. A tick already handed to the scheduler's callback
// queue is discarded when it arrives.
func (p *Periodic) Cancel() {
	p.gen++
	p.armed = false
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
}

func (p *Periodic) Armed() bool { return p.armed }

func (p *Periodic) fire(gen uint64, interval func() float64, fn func()) {
	if gen != p.gen {
		return
	}
	fn()
	if gen != p.gen {
		return
	}
	p.timer = p.sched.AfterFunc(interval(), func() {
		p.fire(gen, interval, fn)
	})
}
