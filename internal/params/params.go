// Package params defines the synthesizer's parameter records and the store
// that holds the single live copy of each.
package params

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/cbegin/polysynth-go/internal/graph"
	"github.com/cbegin/polysynth-go/internal/wave"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid parameter")

// Target is where the LFO's depth gain is routed.
type Target int

const (
	TargetFilter Target = iota
	TargetOscillator1
	TargetOscillator2
)

var targetNames = [...]string{"filter", "oscillator1", "oscillator2"}

func (t Target) String() string {
	if t < 0 || int(t) >= len(targetNames) {
		return fmt.Sprintf("target(%d)", int(t))
	}
	return targetNames[t]
}

func (t Target) Valid() bool { return t >= TargetFilter && t <= TargetOscillator2 }

func ParseTarget(name string) (Target, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "filter", "cutoff":
		return TargetFilter, nil
	case "oscillator1", "osc1":
		return TargetOscillator1, nil
	case "oscillator2", "osc2":
		return TargetOscillator2, nil
	}
	return TargetFilter, fmt.Errorf("%w: unknown lfo target %q", ErrInvalid, name)
}

func (t Target) MarshalYAML() (any, error) { return t.String(), nil }

func (t *Target) UnmarshalYAML(node *yaml.Node) error {
	var name string
	if err := node.Decode(&name); err != nil {
		return err
	}
	parsed, err := ParseTarget(name)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

type Oscillator struct {
	Shape  wave.Shape `yaml:"shape"`
	Octave float64    `yaml:"octave"` // frequency multiplier: 0.5 is an octave down
	Detune float64    `yaml:"detune"` // cents
}

type LFO struct {
	Shape     wave.Shape `yaml:"shape"`
	Frequency float64    `yaml:"frequency"`
	Depth     float64    `yaml:"depth"` // Hz of cutoff, or cents of detune
	Target    Target     `yaml:"target"`
}

type Amp struct {
	Level float64 `yaml:"level"`
}

type Filter struct {
	Frequency float64 `yaml:"frequency"`
	Q         float64 `yaml:"q"`
}

// Envelope times are in seconds; Sustain is a gain level.
type Envelope struct {
	Attack  float64 `yaml:"attack"`
	Decay   float64 `yaml:"decay"`
	Sustain float64 `yaml:"sustain"`
	Release float64 `yaml:"release"`
}

type Delay struct {
	Time     float64 `yaml:"time"`
	Feedback float64 `yaml:"feedback"`
}

type Control struct {
	Tempo float64 `yaml:"tempo"` // BPM
	Latch bool    `yaml:"latch"`
	Arp   bool    `yaml:"arp"`
}

// MaxFeedback keeps the delay loop from running away.
const MaxFeedback = 0.95

// State is one record per category.
type State struct {
	Oscillator1 Oscillator `yaml:"oscillator1"`
	Oscillator2 Oscillator `yaml:"oscillator2"`
	LFO         LFO        `yaml:"lfo"`
	Amp         Amp        `yaml:"amp"`
	Filter      Filter     `yaml:"filter"`
	Envelope    Envelope   `yaml:"envelope"`
	Delay       Delay      `yaml:"delay"`
	Control     Control    `yaml:"control"`
}

func Defaults() State {
	return State{
		Oscillator1: Oscillator{Shape: wave.Sawtooth, Octave: 1, Detune: -4},
		Oscillator2: Oscillator{Shape: wave.Square, Octave: 0.5, Detune: 4},
		LFO:         LFO{Shape: wave.Sine, Frequency: 2, Depth: 300, Target: TargetFilter},
		Amp:         Amp{Level: 0.6},
		Filter:      Filter{Frequency: 2200, Q: 1},
		Envelope:    Envelope{Attack: 0.02, Decay: 0.3, Sustain: 0.3, Release: 0.5},
		Delay:       Delay{Time: 0.3, Feedback: 0.35},
		Control:     Control{Tempo: 120},
	}
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...)
}

func (o Oscillator) Validate() error {
	switch {
	case !o.Shape.Valid():
		return invalid("oscillator shape %d", int(o.Shape))
	case !finite(o.Octave) || o.Octave <= 0:
		return invalid("oscillator octave %v must be positive", o.Octave)
	case !finite(o.Detune):
		return invalid("oscillator detune %v", o.Detune)
	}
	return nil
}

func (l LFO) Validate() error {
	switch {
	case !l.Shape.Valid():
		return invalid("lfo shape %d", int(l.Shape))
	case !finite(l.Frequency) || l.Frequency < 0:
		return invalid("lfo frequency %v must not be negative", l.Frequency)
	case !finite(l.Depth):
		return invalid("lfo depth %v", l.Depth)
	case !l.Target.Valid():
		return invalid("lfo target %d", int(l.Target))
	}
	return nil
}

func (a Amp) Validate() error {
	if !finite(a.Level) || a.Level < 0 {
		return invalid("amp level %v must not be negative", a.Level)
	}
	return nil
}

func (f Filter) Validate() error {
	switch {
	case !finite(f.Frequency) || f.Frequency <= 0:
		return invalid("filter frequency %v must be positive", f.Frequency)
	case !finite(f.Q) || f.Q <= 0:
		return invalid("filter q %v must be positive", f.Q)
	}
	return nil
}

func (e Envelope) Validate() error {
	for _, v := range []float64{e.Attack, e.Decay, e.Release} {
		if !finite(v) || v < 0 {
			return invalid("envelope time %v must not be negative", v)
		}
	}
	if !finite(e.Sustain) || e.Sustain < 0 || e.Sustain > 1 {
		return invalid("envelope sustain %v outside [0, 1]", e.Sustain)
	}
	return nil
}

func (d Delay) Validate() error {
	switch {
	case !finite(d.Time) || d.Time < 0 || d.Time > graph.MaxDelaySeconds:
		return invalid("delay time %v outside [0, %v]", d.Time, graph.MaxDelaySeconds)
	case !finite(d.Feedback) || d.Feedback < 0 || d.Feedback > MaxFeedback:
		return invalid("delay feedback %v outside [0, %v]", d.Feedback, MaxFeedback)
	}
	return nil
}

func (c Control) Validate() error {
	if !finite(c.Tempo) || c.Tempo <= 0 {
		return invalid("tempo %v must be positive", c.Tempo)
	}
	return nil
}

func (s State) Validate() error {
	checks := []struct {
		name string
		err  error
	}{
		{"oscillator1", s.Oscillator1.Validate()},
		{"oscillator2", s.Oscillator2.Validate()},
		{"lfo", s.LFO.Validate()},
		{"amp", s.Amp.Validate()},
		{"filter", s.Filter.Validate()},
		{"envelope", s.Envelope.Validate()},
		{"delay", s.Delay.Validate()},
		{"control", s.Control.Validate()},
	}
	for _, c := range checks {
		if c.err != nil {
			return fmt.Errorf("%s: %w", c.name, c.err)
		}
	}
	return nil
}
