package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cbegin/polysynth-go"
	"github.com/cbegin/polysynth-go/internal/params"
)

var renderOpts struct {
	out        string
	keys       string
	hold       float64
	length     float64
	arp        bool
	tempo      float64
	dumpConfig bool
}

func init() {
	f := renderCmd.Flags()
	f.StringVarP(&renderOpts.out, "out", "o", "polysynth.wav", "output WAV path")
	f.StringVar(&renderOpts.keys, "keys", "a,d,g", "keyboard keys to hold, comma or space separated")
	f.Float64Var(&renderOpts.hold, "hold", 1, "seconds the keys are held")
	f.Float64Var(&renderOpts.length, "length", 3, "seconds to render")
	f.BoolVar(&renderOpts.arp, "arp", false, "arpeggiate the held keys")
	f.Float64Var(&renderOpts.tempo, "tempo", 0, "arpeggiator tempo in BPM (0 keeps the patch tempo)")
	f.BoolVar(&renderOpts.dumpConfig, "dump-config", false, "print the effective patch as YAML and exit")
	rootCmd.AddCommand(renderCmd)
}

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render held keys to a WAV file offline",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadParams()
		if err != nil {
			return err
		}
		if renderOpts.dumpConfig {
			data, err := params.Marshal(p)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		}

		keys := polysynth.SplitKeys(renderOpts.keys)
		if len(keys) == 0 {
			return fmt.Errorf("no keys to render")
		}
		perf := polysynth.Chord(keys, renderOpts.hold, renderOpts.length)
		if renderOpts.arp {
			ctl := p.Control
			ctl.Arp = true
			if renderOpts.tempo > 0 {
				ctl.Tempo = renderOpts.tempo
			}
			perf.Events = append([]polysynth.Event{{At: 0, Kind: polysynth.EventControl, Control: ctl}}, perf.Events...)
		}

		wav, err := polysynth.RenderWAV(sampleRate, perf,
			polysynth.WithParams(p), polysynth.WithLogger(logger))
		if err != nil {
			return err
		}
		if err := os.WriteFile(renderOpts.out, wav, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", renderOpts.out, err)
		}
		logger.Info("rendered", "path", renderOpts.out, "seconds", renderOpts.length, "keys", keys, "arp", renderOpts.arp)
		return nil
	},
}
