package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/cbegin/polysynth-go/internal/arp"
	"github.com/cbegin/polysynth-go/internal/audio"
)

const escapeByte = 0x1b

func init() {
	rootCmd.AddCommand(termCmd)
}

var termCmd = &cobra.Command{
	Use:   "term",
	Short: "Play from the terminal keyboard",
	Long: `Play from the terminal keyboard. Terminals report no key releases, so
latch is always on: a key starts its note and pressing it again stops it.

  Esc  release everything     1  toggle arpeggiator
  -/+  tempo down/up          q  quit`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fd := int(os.Stdin.Fd())
		if !term.IsTerminal(fd) {
			return fmt.Errorf("stdin is not a terminal")
		}
		s, err := newSynth(audio.BackendOto)
		if err != nil {
			return err
		}
		ctl := s.Params().Control
		ctl.Latch = true
		s.SetControl(ctl)
		if err := s.Start(); err != nil {
			return err
		}
		defer s.Stop()

		oldState, err := term.MakeRaw(fd)
		if err != nil {
			return fmt.Errorf("raw mode: %w", err)
		}
		defer term.Restore(fd, oldState)

		out := cmd.OutOrStdout()
		status := func() {
			ctl := s.Params().Control
			var held []string
			for _, n := range s.Held() {
				held = append(held, n.Name)
			}
			fmt.Fprintf(out, "\r\x1b[Karp=%v tempo=%.0f (%.2fs) held=[%s]", ctl.Arp, ctl.Tempo, arp.Interval(ctl.Tempo), strings.Join(held, " "))
		}
		status()

		buf := make([]byte, 16)
		for {
			n, err := os.Stdin.Read(buf)
			if err != nil {
				return err
			}
			for i := 0; i < n; i++ {
				b := buf[i]
				if b == escapeByte && i+1 < n && buf[i+1] == '[' {
					// arrow and function keys arrive as CSI sequences; drop them
					i += 2
					for i < n && (buf[i] < 0x40 || buf[i] > 0x7e) {
						i++
					}
					continue
				}
				switch b {
				case 'q', 3: // ctrl-c arrives as a byte in raw mode
					fmt.Fprint(out, "\r\n")
					return nil
				case escapeByte:
					s.Escape()
				case '1':
					ctl := s.Params().Control
					ctl.Arp = !ctl.Arp
					s.SetControl(ctl)
				case '-', '+', '=':
					ctl := s.Params().Control
					if b == '-' {
						ctl.Tempo = max(ctl.Tempo-10, 10)
					} else {
						ctl.Tempo = min(ctl.Tempo+10, 600)
					}
					s.SetControl(ctl)
				default:
					s.KeyDown(string(rune(b)))
				}
			}
			status()
		}
	},
}
