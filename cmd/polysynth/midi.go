package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/cbegin/polysynth-go/internal/audio"
	"github.com/cbegin/polysynth-go/internal/midiin"
)

var midiOpts struct {
	device  string
	channel int
}

func init() {
	midiPlayCmd.Flags().StringVar(&midiOpts.device, "device", "", "open the first input whose name starts with this (default: first input)")
	midiPlayCmd.Flags().IntVar(&midiOpts.channel, "channel", midiin.Omni, "MIDI channel 0-15 to listen on (-1 for all)")
	midiCmd.AddCommand(midiListCmd, midiPlayCmd)
	rootCmd.AddCommand(midiCmd)
}

var midiCmd = &cobra.Command{
	Use:   "midi",
	Short: "Play from a MIDI controller",
}

var midiListCmd = &cobra.Command{
	Use:   "list",
	Short: "List MIDI input ports",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		names, err := midiin.Inputs()
		if err != nil {
			return err
		}
		if len(names) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no MIDI inputs found")
		}
		for i, name := range names {
			fmt.Fprintf(cmd.OutOrStdout(), "%d: %s\n", i, name)
		}
		return nil
	},
}

var midiPlayCmd = &cobra.Command{
	Use:   "play",
	Short: "Play notes received from a MIDI input until interrupted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if midiOpts.channel < midiin.Omni || midiOpts.channel > 15 {
			return fmt.Errorf("invalid --channel %d (expected -1..15)", midiOpts.channel)
		}
		s, err := newSynth(audio.BackendOto)
		if err != nil {
			return err
		}
		if err := s.Start(); err != nil {
			return err
		}
		defer s.Stop()

		l := midiin.NewListener(s, midiin.WithChannel(midiOpts.channel), midiin.WithLogger(logger))
		name, stop, err := midiin.Open(midiOpts.device, l)
		if err != nil {
			return err
		}
		defer stop()
		fmt.Fprintf(cmd.OutOrStdout(), "listening on %s, ctrl-c to quit\n", name)

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt)
		<-sig
		return nil
	},
}
