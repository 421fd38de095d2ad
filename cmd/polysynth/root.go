package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/cbegin/polysynth-go"
	"github.com/cbegin/polysynth-go/internal/audio"
)

var (
	configPath  string
	sampleRate  int
	debug       bool
	backendName string

	// logger is replaced by initLogger before any command runs.
	logger = slog.Default()
)

var rootCmd = &cobra.Command{
	Use:   "polysynth",
	Short: "Polyphonic subtractive synthesizer",
	Long: `polysynth is a two-oscillator polyphonic synthesizer with an ADSR VCA,
a resonant lowpass filter, a feedback delay, an LFO, latch and an arpeggiator.

Keys a w s e d f t g y h u j k o l p ; ' play C4 upwards, z x c v b n m
play C3 to B3.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		initLogger(debug)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "YAML patch file (defaults are used for missing fields)")
	pf.IntVar(&sampleRate, "sample-rate", 48000, "output sample rate")
	pf.BoolVar(&debug, "debug", false, "enable debug logging (adds source location)")
	pf.StringVar(&backendName, "backend", "", "audio backend: ebiten|oto (default ebiten for play, oto otherwise)")
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func initLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:     level,
		AddSource: debug,
	})
	logger = slog.New(h)
	slog.SetDefault(logger)
}

func loadParams() (polysynth.Params, error) {
	if configPath == "" {
		return polysynth.DefaultParams(), nil
	}
	p, err := polysynth.LoadParams(configPath)
	if err != nil {
		return p, err
	}
	logger.Info("patch loaded", "path", configPath)
	return p, nil
}

// newSynth builds a synth from the persistent flags plus any extra options.
// The ebiten backend needs a running game loop, so commands without a
// window default to oto.
func newSynth(defaultBackend audio.Backend, extra ...polysynth.SynthOption) (*polysynth.Synth, error) {
	p, err := loadParams()
	if err != nil {
		return nil, err
	}
	backend := defaultBackend
	if backendName != "" {
		if backend, err = audio.ParseBackend(backendName); err != nil {
			return nil, err
		}
	}
	opts := append([]polysynth.SynthOption{
		polysynth.WithParams(p),
		polysynth.WithBackend(backend),
		polysynth.WithLogger(logger),
	}, extra...)
	s, err := polysynth.NewSynth(sampleRate, opts...)
	if err != nil {
		return nil, fmt.Errorf("create synth: %w", err)
	}
	return s, nil
}
