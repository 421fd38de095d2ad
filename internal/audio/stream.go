// Package audio plays a rendered stereo float32 stream through ebiten's audio
// context or directly through oto.
package audio

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
	"sync"
)

// Source fills dst with interleaved stereo samples. *graph.Context is one.
type Source interface {
	Render(dst []float32)
}

// StreamReader adapts a Source to the little-endian float32 byte stream both
// backends consume.
type StreamReader struct {
	mu     sync.Mutex
	source Source
	buf    []float32
}

func NewStreamReader(source Source) *StreamReader {
	return &StreamReader{source: source}
}

func (r *StreamReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	frames := len(p) / 8
	if frames == 0 {
		return 0, nil
	}
	need := frames * 2
	if cap(r.buf) < need {
		r.buf = make([]float32, need)
	}
	r.buf = r.buf[:need]
	r.source.Render(r.buf)
	for i := 0; i < need; i++ {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(r.buf[i]))
	}
	return frames * 8, nil
}

func (r *StreamReader) Close() error { return nil }

// Backend names an output implementation.
type Backend string

const (
	BackendEbiten Backend = "ebiten"
	BackendOto    Backend = "oto"
)

func ParseBackend(name string) (Backend, error) {
	switch b := Backend(strings.ToLower(strings.TrimSpace(name))); b {
	case BackendEbiten, BackendOto:
		return b, nil
	case "":
		return BackendEbiten, nil
	default:
		return "", fmt.Errorf("unknown audio backend %q (want ebiten or oto)", name)
	}
}

// Output is a started or paused audio stream.
type Output interface {
	Play()
	Pause()
	IsPlaying() bool
	Close() error
}

// Open connects source to the chosen backend. The stream starts paused.
// Only one sample rate can be used per process.
func Open(b Backend, sampleRate int, source Source) (Output, error) {
	switch b {
	case BackendOto:
		return newOtoOutput(sampleRate, source)
	case BackendEbiten, "":
		return NewPlayer(sampleRate, source)
	default:
		return nil, fmt.Errorf("unknown audio backend %q", b)
	}
}
