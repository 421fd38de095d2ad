package arp

import (
	"github.com/cbegin/polysynth-go/internal/graph"
	"github.com/cbegin/polysynth-go/internal/notes"
)

// NoteLength is how long, in seconds, each arpeggiated note sounds before
// its release begins.
const NoteLength = 1.0

// Clock triggers the held notes round-robin, one per period.
type Clock struct {
	task     *Periodic
	interval func() float64
	held     func() []notes.Note
	trigger  func(notes.Note)
	cursor   int
}

// NewClock returns a disarmed clock. interval gives the current period in
// seconds, held the current notes in press order, and trigger sounds one.
func NewClock(sched graph.Scheduler, interval func() float64, held func() []notes.Note, trigger func(notes.Note)) *Clock {
	return &Clock{
		task:     NewPeriodic(sched),
		interval: interval,
		held:     held,
		trigger:  trigger,
	}
}

// Interval converts a tempo in beats per minute into a period in seconds.
func Interval(bpm float64) float64 { return 60 / bpm }

// Sync arms the clock when active and it is not running, and disarms it
// when inactive. A clock that is already running keeps its cursor. Arming
// starts from the first held note and ticks immediately.
func (c *Clock) Sync(active bool) {
	if !active {
		c.task.Cancel()
		c.cursor = 0
		return
	}
	if c.task.Armed() {
		return
	}
	c.cursor = 0
	c.task.Arm(c.interval, c.tick)
}

// Cursor returns the index of the next note to play and whether the clock
// is running.
func (c *Clock) Cursor() (int, bool) {
	if !c.task.Armed() {
		return 0, false
	}
	if c.cursor >= len(c.held()) {
		return 0, true
	}
	return c.cursor, true
}

func (c *Clock) tick() {
	held := c.held()
	if len(held) == 0 {
		c.task.Cancel()
		c.cursor = 0
		return
	}
	if c.cursor >= len(held) {
		c.cursor = 0
	}
	n := held[c.cursor]
	// Wrapping happens on the next read so notes added in between are reached.
	c.cursor++
	c.trigger(n)
}
