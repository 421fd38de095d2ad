package graph

import "sort"

// EventKind distinguishes automation events on a Param timeline.
type EventKind int

const (
	EventSet EventKind = iota
	EventLinearRamp
)

func (k EventKind) String() string {
	if k == EventLinearRamp {
		return "linearRamp"
	}
	return "set"
}

// Event is one point of a Param's automation timeline. A linear ramp ends at
// Time with Value and starts from the preceding event (or, with no
// preceding event, from the intrinsic value at the time it was scheduled).
type Event struct {
	Kind  EventKind
	Time  float64
	Value float64

	from float64
}

// Param is an automatable node parameter. Nodes connected with ConnectParam
// are summed onto its automated value every frame.
type Param struct {
	ctx    *Context
	name   string
	value  float64
	events []Event
	inputs []*node
}

func newParam(ctx *Context, name string, value float64) *Param {
	return &Param{ctx: ctx, name: name, value: value}
}

func (p *Param) Name() string { return p.name }

// Value returns the automated value at the current context time, excluding
// modulation inputs.
func (p *Param) Value() float64 {
	p.ctx.mu.Lock()
	defer p.ctx.mu.Unlock()
	return p.valueAtLocked(p.ctx.nowLocked())
}

// SetValue sets the intrinsic value and drops the automation timeline.
func (p *Param) SetValue(v float64) {
	p.ctx.mu.Lock()
	defer p.ctx.mu.Unlock()
	p.value = v
	p.events = nil
}

func (p *Param) ValueAt(t float64) float64 {
	p.ctx.mu.Lock()
	defer p.ctx.mu.Unlock()
	return p.valueAtLocked(t)
}

// Events returns a copy of the pending automation timeline.
func (p *Param) Events() []Event {
	p.ctx.mu.Lock()
	defer p.ctx.mu.Unlock()
	out := make([]Event, len(p.events))
	copy(out, p.events)
	return out
}

func (p *Param) SetValueAtTime(v, t float64) {
	p.ctx.mu.Lock()
	defer p.ctx.mu.Unlock()
	p.insertLocked(Event{Kind: EventSet, Time: t, Value: v})
}

func (p *Param) LinearRampToValueAtTime(v, t float64) {
	p.ctx.mu.Lock()
	defer p.ctx.mu.Unlock()
	p.insertLocked(Event{Kind: EventLinearRamp, Time: t, Value: v, from: p.ctx.nowLocked()})
}

// CancelScheduledValues removes every event at or after t.
func (p *Param) CancelScheduledValues(t float64) {
	p.ctx.mu.Lock()
	defer p.ctx.mu.Unlock()
	p.cancelLocked(t)
}

// CancelAndHoldAtTime removes every event at or after t and pins the value
// the timeline had at t, so a following ramp starts from where the old
// automation actually was.
func (p *Param) CancelAndHoldAtTime(t float64) {
	p.ctx.mu.Lock()
	defer p.ctx.mu.Unlock()
	held := p.valueAtLocked(t)
	p.cancelLocked(t)
	p.insertLocked(Event{Kind: EventSet, Time: t, Value: held})
}

func (p *Param) cancelLocked(t float64) {
	i := sort.Search(len(p.events), func(i int) bool { return p.events[i].Time >= t })
	p.events = p.events[:i]
}

func (p *Param) insertLocked(ev Event) {
	p.compactLocked(p.ctx.nowLocked())
	i := sort.Search(len(p.events), func(i int) bool { return p.events[i].Time > ev.Time })
	p.events = append(p.events, Event{})
	copy(p.events[i+1:], p.events[i:])
	p.events[i] = ev
}

func (p *Param) valueAtLocked(t float64) float64 {
	cur := p.value
	startT := 0.0
	started := false
	for _, ev := range p.events {
		if ev.Time <= t {
			cur = ev.Value
			startT = ev.Time
			started = true
			continue
		}
		if ev.Kind == EventLinearRamp {
			if !started {
				startT = ev.from
			}
			span := ev.Time - startT
			if span <= 0 || t <= startT {
				return cur
			}
			return cur + (ev.Value-cur)*(t-startT)/span
		}
		break
	}
	return cur
}

// compactLocked folds events that are fully in the past into the intrinsic
// value. The last past event is kept because a pending ramp starts from it.
func (p *Param) compactLocked(now float64) {
	n := 0
	for n+1 < len(p.events) && p.events[n+1].Time <= now {
		n++
	}
	if n == 0 {
		return
	}
	p.value = p.events[n-1].Value
	p.events = append(p.events[:0], p.events[n:]...)
}

func (p *Param) computedLocked(f int64, t float64) float64 {
	v := p.valueAtLocked(t)
	for _, in := range p.inputs {
		v += in.output(f)
	}
	return v
}

func (p *Param) removeInputLocked(n *node) {
	for i, in := range p.inputs {
		if in == n {
			p.inputs = append(p.inputs[:i], p.inputs[i+1:]...)
			return
		}
	}
}
