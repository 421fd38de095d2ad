package wave

import (
	"fmt"
	"math"
	"strings"

	"gopkg.in/yaml.v3"
)

// Shape selects the periodic waveform an oscillator produces.
type Shape int

const (
	Sine Shape = iota
	Square
	Sawtooth
	Triangle
)

var shapeNames = [...]string{"sine", "square", "sawtooth", "triangle"}

func (s Shape) String() string {
	if s < 0 || int(s) >= len(shapeNames) {
		return fmt.Sprintf("shape(%d)", int(s))
	}
	return shapeNames[s]
}

// Valid reports whether s is one of the defined shapes.
func (s Shape) Valid() bool {
	return s >= Sine && s <= Triangle
}

// Parse accepts the shape names used in patch files ("saw" is an alias of
// "sawtooth").
func Parse(name string) (Shape, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sine", "sin":
		return Sine, nil
	case "square", "sqr":
		return Square, nil
	case "sawtooth", "saw":
		return Sawtooth, nil
	case "triangle", "tri":
		return Triangle, nil
	}
	return Sine, fmt.Errorf("unknown wave shape %q (expected sine|square|sawtooth|triangle)", name)
}

func (s Shape) MarshalYAML() (any, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid wave shape %d", int(s))
	}
	return s.String(), nil
}

func (s *Shape) UnmarshalYAML(node *yaml.Node) error {
	var name string
	if err := node.Decode(&name); err != nil {
		return err
	}
	parsed, err := Parse(name)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Sample returns the waveform value in [-1, 1] at phase, where phase is the
// cycle position in [0, 1).
func (s Shape) Sample(phase float64) float64 {
	switch s {
	case Square:
		if phase < 0.5 {
			return 1.0
		}
		return -1.0
	case Sawtooth:
		return 2.0*phase - 1.0
	case Triangle:
		if phase < 0.5 {
			return 4.0*phase - 1.0
		}
		return 3.0 - 4.0*phase
	default:
		return math.Sin(2 * math.Pi * phase)
	}
}
