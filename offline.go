package polysynth

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/cbegin/polysynth-go/internal/notes"
	"github.com/cbegin/polysynth-go/internal/params"
)

// EventKind is what a performance event does.
type EventKind int

const (
	EventKeyDown EventKind = iota
	EventKeyUp
	EventNoteOn
	EventNoteOff
	EventEscape
	EventControl
)

// Event is one timed input in a Performance. Key is a keyboard key for
// EventKeyDown/EventKeyUp and a note name such as "A4" for
// EventNoteOn/EventNoteOff. Control is applied by EventControl.
type Event struct {
	At      float64
	Kind    EventKind
	Key     string
	Control params.Control
}

// Performance is a scripted session rendered offline. Events are applied in
// time order; rendering stops after Length seconds.
type Performance struct {
	Events []Event
	Length float64
}

// Chord returns a performance that presses keys together at time zero and
// releases them at hold, rendering length seconds in total.
func Chord(keys []string, hold, length float64) Performance {
	var perf Performance
	for _, k := range keys {
		perf.Events = append(perf.Events,
			Event{At: 0, Kind: EventKeyDown, Key: k},
			Event{At: hold, Kind: EventKeyUp, Key: k})
	}
	perf.Length = length
	return perf
}

// RenderSamples plays perf on a fresh synth and returns the interleaved
// stereo output.
func RenderSamples(sampleRate int, perf Performance, opts ...SynthOption) ([]float32, error) {
	if perf.Length <= 0 || math.IsNaN(perf.Length) || math.IsInf(perf.Length, 0) {
		return nil, errors.New("performance length must be positive")
	}
	s, err := NewSynth(sampleRate, opts...)
	if err != nil {
		return nil, err
	}
	events := append([]Event(nil), perf.Events...)
	sort.SliceStable(events, func(i, j int) bool { return events[i].At < events[j].At })

	total := int(math.Round(perf.Length * float64(sampleRate)))
	out := make([]float32, total*2)
	done := 0
	for _, ev := range events {
		at := min(max(int(math.Round(ev.At*float64(sampleRate))), done), total)
		s.Render(out[done*2 : at*2])
		done = at
		if err := s.apply(ev); err != nil {
			return nil, err
		}
	}
	s.Render(out[done*2:])
	return out, nil
}

func (s *Synth) apply(ev Event) error {
	switch ev.Kind {
	case EventKeyDown:
		s.KeyDown(ev.Key)
	case EventKeyUp:
		s.KeyUp(ev.Key)
	case EventNoteOn, EventNoteOff:
		n, ok := notes.Lookup(ev.Key)
		if !ok {
			return fmt.Errorf("unknown note %q at %.3fs", ev.Key, ev.At)
		}
		if ev.Kind == EventNoteOn {
			s.NoteOn(n)
		} else {
			s.NoteOff(n)
		}
	case EventEscape:
		s.Escape()
	case EventControl:
		if err := ev.Control.Validate(); err != nil {
			return fmt.Errorf("control at %.3fs: %w", ev.At, err)
		}
		s.SetControl(ev.Control)
	default:
		return fmt.Errorf("unknown event kind %d", ev.Kind)
	}
	return nil
}

// RenderWAV renders perf and encodes it as a 32-bit float stereo WAV file.
func RenderWAV(sampleRate int, perf Performance, opts ...SynthOption) ([]byte, error) {
	samples, err := RenderSamples(sampleRate, perf, opts...)
	if err != nil {
		return nil, err
	}
	return EncodeWAVFloat32LE(samples, sampleRate, 2), nil
}

// SplitKeys turns "a,d g" into its keys, dropping empties.
func SplitKeys(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
}

func EncodeWAVFloat32LE(samples []float32, sampleRate int, channels int) []byte {
	dataSize := len(samples) * 4
	byteRate := sampleRate * channels * 4
	blockAlign := channels * 4
	chunkSize := 36 + dataSize
	out := make([]byte, 44+dataSize)
	copy(out[0:], []byte("RIFF"))
	binary.LittleEndian.PutUint32(out[4:], uint32(chunkSize))
	copy(out[8:], []byte("WAVE"))
	copy(out[12:], []byte("fmt "))
	binary.LittleEndian.PutUint32(out[16:], 16)
	binary.LittleEndian.PutUint16(out[20:], 3)
	binary.LittleEndian.PutUint16(out[22:], uint16(channels))
	binary.LittleEndian.PutUint32(out[24:], uint32(sampleRate))
	binary.LittleEndian.PutUint32(out[28:], uint32(byteRate))
	binary.LittleEndian.PutUint16(out[32:], uint16(blockAlign))
	binary.LittleEndian.PutUint16(out[34:], 32)
	copy(out[36:], []byte("data"))
	binary.LittleEndian.PutUint32(out[40:], uint32(dataSize))
	for i, s := range samples {
		binary.LittleEndian.PutUint32(out[44+i*4:], math.Float32bits(s))
	}
	return out
}
