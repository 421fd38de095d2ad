// Package envelope turns ADSR settings into gain automation points.
package envelope

import (
	"math"

	"github.com/cbegin/polysynth-go/internal/graph"
	"github.com/cbegin/polysynth-go/internal/params"
)

// PeakLevel is the level the attack ramp reaches. There is no peak control;
// with two oscillators summed into one VCA this keeps a held note at or
// under full scale.
const PeakLevel = 0.5

// Point is one scheduled gain value. Ramp points are reached linearly from
// the previous point.
type Point struct {
	Time  float64
	Value float64
	Ramp  bool
}

// Schedule returns the note-on automation: hold 0 at noteOn, ramp to
// PeakLevel by the end of the attack, ramp to the sustain level by the end
// of the decay. The level then holds until Release is applied.
func Schedule(env params.Envelope, noteOn float64) []Point {
	attack := nonNegative(env.Attack)
	decay := nonNegative(env.Decay)
	sustain := math.Min(math.Max(env.Sustain, 0), 1)
	noteOn = nonNegative(noteOn)
	return []Point{
		{Time: noteOn, Value: 0},
		{Time: noteOn + attack, Value: PeakLevel, Ramp: true},
		{Time: noteOn + attack + decay, Value: sustain, Ramp: true},
	}
}

// Release returns the note-off automation: a linear ramp from whatever the
// level is at noteOff down to zero, ending releaseSeconds later.
func Release(releaseSeconds, noteOff float64) []Point {
	return []Point{{Time: nonNegative(noteOff) + nonNegative(releaseSeconds), Value: 0, Ramp: true}}
}

// Apply writes points onto p in order.
func Apply(p *graph.Param, points []Point) {
	for _, pt := range points {
		if pt.Ramp {
			p.LinearRampToValueAtTime(pt.Value, pt.Time)
		} else {
			p.SetValueAtTime(pt.Value, pt.Time)
		}
	}
}

func nonNegative(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	return v
}
