// Package signal owns the nodes every voice shares: the filter, the delay
// with its feedback loop, the main output gain, and the LFO with its depth
// gain and routing.
package signal

import (
	"log/slog"

	"github.com/cbegin/polysynth-go/internal/graph"
	"github.com/cbegin/polysynth-go/internal/params"
	"github.com/cbegin/polysynth-go/internal/wave"
)

// Graph is the shared part of the synth's signal path:
//
//	voice VCA → filter ─┬──────────────→ main → destination
//	                    └→ delay ⇄ feedback ┘
//	lfo → depth → filter.frequency | pitch bus 1 | pitch bus 2
//
// Pitch buses are unity gains; each voice connects bus N to its oscillator
// N detune, so the depth gain always has exactly one outgoing edge.
type Graph struct {
	ctx      *graph.Context
	log      *slog.Logger
	main     *graph.Gain
	filter   *graph.Filter
	delay    *graph.Delay
	feedback *graph.Gain
	lfo      *graph.Oscillator
	depth    *graph.Gain
	pitch    [2]*graph.Gain
	target   params.Target

	// last values pushed to the nodes, used to skip redundant scheduling
	cur struct {
		filter params.Filter
		delay  params.Delay
		level  float64
		depth  float64
		shape  wave.Shape
		rate   float64
	}
}

// New builds and wires the shared nodes from the store's current records and
// starts the LFO, which then runs for the life of the context.
func New(ctx *graph.Context, store *params.Store, log *slog.Logger) *Graph {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	s := store.Snapshot()
	g := &Graph{
		ctx:      ctx,
		log:      log,
		main:     ctx.NewGain(s.Amp.Level),
		filter:   ctx.NewFilter(s.Filter.Frequency, s.Filter.Q),
		delay:    ctx.NewDelay(s.Delay.Time),
		feedback: ctx.NewGain(s.Delay.Feedback),
		lfo:      ctx.NewOscillator(s.LFO.Shape, s.LFO.Frequency),
		depth:    ctx.NewGain(s.LFO.Depth),
		pitch:    [2]*graph.Gain{ctx.NewGain(1), ctx.NewGain(1)},
		target:   s.LFO.Target,
	}
	g.cur.filter = s.Filter
	g.cur.delay = s.Delay
	g.cur.level = s.Amp.Level
	g.cur.depth = s.LFO.Depth
	g.cur.shape = s.LFO.Shape
	g.cur.rate = s.LFO.Frequency

	g.filter.Connect(g.delay)
	g.filter.Connect(g.main)
	g.delay.Connect(g.feedback)
	g.feedback.Connect(g.delay)
	g.delay.Connect(g.main)
	g.main.Connect(ctx.Destination())

	g.lfo.Connect(g.depth)
	g.connectDepth(g.target)
	g.lfo.Start(ctx.CurrentTime())
	return g
}

// Input is where voices connect their VCA.
func (g *Graph) Input() graph.Node { return g.filter }

// PitchBus returns the modulation bus for oscillator 1 or 2.
func (g *Graph) PitchBus(osc int) *graph.Gain {
	if osc == 2 {
		return g.pitch[1]
	}
	return g.pitch[0]
}

func (g *Graph) LFODepth() *graph.Gain { return g.depth }

func (g *Graph) Target() params.Target { return g.target }

func (g *Graph) connectDepth(t params.Target) {
	switch t {
	case params.TargetOscillator1:
		g.depth.Connect(g.pitch[0])
	case params.TargetOscillator2:
		g.depth.Connect(g.pitch[1])
	default:
		g.depth.ConnectParam(g.filter.Frequency)
	}
}

// SetLFORouting retargets the LFO and updates depth, shape and rate. Each
// is only touched when it differs from what the nodes already have.
func (g *Graph) SetLFORouting(target params.Target, depth float64, shape wave.Shape, frequency float64) {
	now := g.ctx.CurrentTime()
	if target != g.target {
		g.depth.Disconnect()
		g.connectDepth(target)
		g.log.Debug("lfo retargeted", "from", g.target, "to", target)
		g.target = target
	}
	if depth != g.cur.depth {
		g.depth.Gain.SetValueAtTime(depth, now)
		g.cur.depth = depth
	}
	if shape != g.cur.shape {
		g.lfo.SetShape(shape)
		g.cur.shape = shape
	}
	if frequency != g.cur.rate {
		g.lfo.Frequency.SetValueAtTime(frequency, now)
		g.cur.rate = frequency
	}
}

func (g *Graph) SetFilter(frequency, q float64) {
	now := g.ctx.CurrentTime()
	if frequency != g.cur.filter.Frequency {
		g.filter.Frequency.SetValueAtTime(frequency, now)
		g.cur.filter.Frequency = frequency
	}
	if q != g.cur.filter.Q {
		g.filter.Q.SetValueAtTime(q, now)
		g.cur.filter.Q = q
	}
}

func (g *Graph) SetDelay(seconds, feedback float64) {
	now := g.ctx.CurrentTime()
	if seconds != g.cur.delay.Time {
		g.delay.DelayTime.SetValueAtTime(seconds, now)
		g.cur.delay.Time = seconds
	}
	if feedback != g.cur.delay.Feedback {
		g.feedback.Gain.SetValueAtTime(feedback, now)
		g.cur.delay.Feedback = feedback
	}
}

func (g *Graph) SetMainLevel(gain float64) {
	if gain == g.cur.level {
		return
	}
	g.main.Gain.SetValueAtTime(gain, g.ctx.CurrentTime())
	g.cur.level = gain
}
