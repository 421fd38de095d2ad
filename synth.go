// Package polysynth is a polyphonic subtractive synthesizer: two detuned
// oscillators per note through an ADSR-shaped VCA into a shared resonant
// lowpass filter and feedback delay, with an LFO on the cutoff or on either
// oscillator's pitch, plus latch and an arpeggiator.
package polysynth

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	intaudio "github.com/cbegin/polysynth-go/internal/audio"
	"github.com/cbegin/polysynth-go/internal/engine"
	"github.com/cbegin/polysynth-go/internal/graph"
	"github.com/cbegin/polysynth-go/internal/params"
)

// Params is the full set of synth settings.
type Params = params.State

// DefaultParams returns the factory patch.
func DefaultParams() Params { return params.Defaults() }

// LoadParams reads a YAML patch file. Missing fields keep their defaults.
func LoadParams(path string) (Params, error) { return params.Load(path) }

type Backend = intaudio.Backend

const (
	BackendEbiten = intaudio.BackendEbiten
	BackendOto    = intaudio.BackendOto
)

type SynthOption func(*synthConfig)

type synthConfig struct {
	backend   Backend
	params    Params
	logger    *slog.Logger
	sampleTap func([]float32)
}

func defaultSynthConfig() synthConfig {
	return synthConfig{
		backend: BackendEbiten,
		params:  params.Defaults(),
		logger:  slog.New(slog.DiscardHandler),
	}
}

// WithBackend selects the audio output used by Start.
func WithBackend(b Backend) SynthOption {
	return func(cfg *synthConfig) {
		cfg.backend = b
	}
}

// WithParams replaces the factory patch.
func WithParams(p Params) SynthOption {
	return func(cfg *synthConfig) {
		cfg.params = p
	}
}

func WithLogger(l *slog.Logger) SynthOption {
	return func(cfg *synthConfig) {
		if l != nil {
			cfg.logger = l
		}
	}
}

// WithSampleTap installs a callback invoked with each generated stereo buffer.
// The callback runs on the audio thread; keep work brief and non-blocking.
func WithSampleTap(tap func([]float32)) SynthOption {
	return func(cfg *synthConfig) {
		cfg.sampleTap = tap
	}
}

// Synth is a ready-to-play synthesizer. Key, touch, MIDI note and parameter
// methods come from the embedded engine.
type Synth struct {
	*engine.Engine

	mu         sync.Mutex
	ctx        *graph.Context
	sampleRate int
	backend    Backend
	log        *slog.Logger
	sampleTap  func([]float32)
	out        intaudio.Output
}

func NewSynth(sampleRate int, opts ...SynthOption) (*Synth, error) {
	if sampleRate <= 0 {
		return nil, errors.New("sampleRate must be positive")
	}
	cfg := defaultSynthConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.params.Validate(); err != nil {
		return nil, fmt.Errorf("synth params: %w", err)
	}
	ctx, err := graph.NewContext(sampleRate)
	if err != nil {
		return nil, err
	}
	return &Synth{
		Engine:     engine.New(ctx, params.NewStore(cfg.params), engine.WithLogger(cfg.logger)),
		ctx:        ctx,
		sampleRate: sampleRate,
		backend:    cfg.backend,
		log:        cfg.logger,
		sampleTap:  cfg.sampleTap,
	}, nil
}

func (s *Synth) SampleRate() int { return s.sampleRate }

// CurrentTime is the synth clock in seconds of rendered audio.
func (s *Synth) CurrentTime() float64 { return s.ctx.CurrentTime() }

// Render produces the next len(dst)/2 stereo frames. The audio backend
// calls it; offline rendering calls it directly.
func (s *Synth) Render(dst []float32) {
	s.ctx.Render(dst)
	if s.sampleTap != nil {
		s.sampleTap(dst)
	}
}

// Start opens the audio output, if needed, and starts playback.
func (s *Synth) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.out == nil {
		out, err := intaudio.Open(s.backend, s.sampleRate, s)
		if err != nil {
			return fmt.Errorf("open %s audio: %w", s.backend, err)
		}
		s.out = out
		s.log.Info("audio started", "backend", s.backend, "sampleRate", s.sampleRate)
	}
	s.out.Play()
	return nil
}

func (s *Synth) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.out != nil {
		s.out.Pause()
	}
}

func (s *Synth) IsPlaying() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.out != nil && s.out.IsPlaying()
}

// Stop silences every voice and closes the audio output.
func (s *Synth) Stop() error {
	s.Silence()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.out == nil {
		return nil
	}
	err := s.out.Close()
	s.out = nil
	return err
}

// SetMasterVolume sets the main output level, clamped to [0, 1].
func (s *Synth) SetMasterVolume(volume float64) {
	if volume < 0 {
		volume = 0
	}
	if volume > 1 {
		volume = 1
	}
	s.SetAmp(params.Amp{Level: volume})
}

func (s *Synth) MasterVolume() float64 {
	return s.Params().Amp.Level
}
