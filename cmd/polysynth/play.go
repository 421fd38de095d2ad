package main

import (
	"fmt"
	"image"
	"image/color"
	"sort"
	"strings"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/spf13/cobra"

	"github.com/cbegin/polysynth-go"
	"github.com/cbegin/polysynth-go/internal/audio"
	"github.com/cbegin/polysynth-go/internal/notes"
	"github.com/cbegin/polysynth-go/internal/params"
	"github.com/cbegin/polysynth-go/internal/wave"
)

const (
	windowW = 980
	windowH = 520

	scopeLen       = 1024
	keyLabelOffset = 6
)

var (
	bgColor       = color.RGBA{192, 192, 192, 255}
	borderColor   = color.RGBA{128, 128, 128, 255}
	whiteKeyColor = color.RGBA{240, 240, 240, 255}
	blackKeyColor = color.RGBA{32, 32, 40, 255}
	heldColor     = color.RGBA{0, 0, 128, 255}
	soundingColor = color.RGBA{96, 96, 200, 255}
	sunkenBgColor = color.RGBA{24, 24, 32, 255}
	waveColor     = color.RGBA{120, 220, 140, 255}
	bevelLight    = color.RGBA{255, 255, 255, 255}
	bevelDarker   = color.RGBA{64, 64, 64, 255}
	scopeMidColor = color.RGBA{40, 44, 58, 255}
)

// keyNames maps the ebiten keys the note table knows about.
var keyNames = map[ebiten.Key]string{
	ebiten.KeyA: "a", ebiten.KeyW: "w", ebiten.KeyS: "s", ebiten.KeyE: "e",
	ebiten.KeyD: "d", ebiten.KeyF: "f", ebiten.KeyT: "t", ebiten.KeyG: "g",
	ebiten.KeyY: "y", ebiten.KeyH: "h", ebiten.KeyU: "u", ebiten.KeyJ: "j",
	ebiten.KeyK: "k", ebiten.KeyO: "o", ebiten.KeyL: "l", ebiten.KeyP: "p",
	ebiten.KeySemicolon: ";", ebiten.KeyQuote: "'",
	ebiten.KeyZ: "z", ebiten.KeyX: "x", ebiten.KeyC: "c", ebiten.KeyV: "v",
	ebiten.KeyB: "b", ebiten.KeyN: "n", ebiten.KeyM: "m",
}

func init() {
	rootCmd.AddCommand(playCmd)
}

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Open a keyboard window",
	Long: `Open a keyboard window. Play with the computer keyboard, the mouse or
touch.

  Esc  release everything     F1  latch       F2  arpeggiator
  Up/Down  tempo              Tab LFO target  F3/F4  oscillator 1/2 shape`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sc := newScope()
		s, err := newSynth(audio.BackendEbiten, polysynth.WithSampleTap(sc.Tap))
		if err != nil {
			return err
		}
		if err := s.Start(); err != nil {
			return err
		}
		defer s.Stop()

		ebiten.SetWindowSize(windowW, windowH)
		ebiten.SetWindowTitle("polysynth")
		return ebiten.RunGame(newWindow(s, sc))
	},
}

// scope keeps the most recent mono samples for the waveform display.
type scope struct {
	mu       sync.Mutex
	ring     []float32
	writePos int
}

func newScope() *scope {
	return &scope{ring: make([]float32, scopeLen*4)}
}

// Tap is called from the audio thread. Keep it minimal: just copy into ring.
func (sc *scope) Tap(samples []float32) {
	sc.mu.Lock()
	for i := 0; i+1 < len(samples); i += 2 {
		sc.ring[sc.writePos] = (samples[i] + samples[i+1]) * 0.5
		sc.writePos = (sc.writePos + 1) % len(sc.ring)
	}
	sc.mu.Unlock()
}

func (sc *scope) Snapshot(n int) []float32 {
	out := make([]float32, n)
	sc.mu.Lock()
	start := (sc.writePos - n + len(sc.ring)) % len(sc.ring)
	for i := range out {
		out[i] = sc.ring[(start+i)%len(sc.ring)]
	}
	sc.mu.Unlock()
	return out
}

type pad struct {
	key   string
	note  notes.Note
	black bool
	rect  image.Rectangle
}

type window struct {
	synth *polysynth.Synth
	scope *scope
	pads  []pad

	pressed []ebiten.Key
	touches map[ebiten.TouchID]string
	mouse   string
}

func newWindow(s *polysynth.Synth, sc *scope) *window {
	w := &window{synth: s, scope: sc, touches: map[ebiten.TouchID]string{}}
	for _, k := range notes.Keys() {
		n, _ := notes.ForKey(k)
		w.pads = append(w.pads, pad{key: k, note: n, black: strings.Contains(n.Name, "#")})
	}
	sort.Slice(w.pads, func(i, j int) bool { return w.pads[i].note.Frequency < w.pads[j].note.Frequency })
	w.layoutPads()
	return w
}

func (w *window) layoutPads() {
	const margin, top, whiteH, blackH = 20, 300, 180, 110
	whites := 0
	for _, p := range w.pads {
		if !p.black {
			whites++
		}
	}
	keyW := (windowW - 2*margin) / whites
	x := margin
	for i := range w.pads {
		p := &w.pads[i]
		if p.black {
			p.rect = image.Rect(x-keyW/3, top, x+keyW/3, top+blackH)
			continue
		}
		p.rect = image.Rect(x, top, x+keyW-2, top+whiteH)
		x += keyW
	}
}

// padAt hit-tests black keys first since they sit on top of the white ones.
func (w *window) padAt(x, y int) (string, bool) {
	pt := image.Pt(x, y)
	for _, black := range []bool{true, false} {
		for _, p := range w.pads {
			if p.black == black && pt.In(p.rect) {
				return p.key, true
			}
		}
	}
	return "", false
}

func (w *window) Update() error {
	w.handleKeys()
	w.handleTouches()
	w.handleMouse()
	return nil
}

func (w *window) handleKeys() {
	w.pressed = inpututil.AppendJustPressedKeys(w.pressed[:0])
	for _, k := range w.pressed {
		if name, ok := keyNames[k]; ok {
			w.synth.KeyDown(name)
			continue
		}
		w.command(k)
	}
	w.pressed = inpututil.AppendJustReleasedKeys(w.pressed[:0])
	for _, k := range w.pressed {
		if name, ok := keyNames[k]; ok {
			w.synth.KeyUp(name)
		}
	}
}

func (w *window) command(k ebiten.Key) {
	p := w.synth.Params()
	switch k {
	case ebiten.KeyEscape:
		w.synth.Escape()
	case ebiten.KeyF1:
		p.Control.Latch = !p.Control.Latch
		w.synth.SetControl(p.Control)
	case ebiten.KeyF2:
		p.Control.Arp = !p.Control.Arp
		w.synth.SetControl(p.Control)
	case ebiten.KeyArrowUp:
		p.Control.Tempo = min(p.Control.Tempo+5, 600)
		w.synth.SetControl(p.Control)
	case ebiten.KeyArrowDown:
		p.Control.Tempo = max(p.Control.Tempo-5, 10)
		w.synth.SetControl(p.Control)
	case ebiten.KeyTab:
		p.LFO.Target = (p.LFO.Target + 1) % 3
		p.LFO.Depth = params.Defaults().LFO.Depth
		if p.LFO.Target != params.TargetFilter {
			p.LFO.Depth = 25 // cents
		}
		w.synth.SetLFO(p.LFO)
	case ebiten.KeyF3:
		p.Oscillator1.Shape = (p.Oscillator1.Shape + 1) % (wave.Triangle + 1)
		w.synth.SetOscillator1(p.Oscillator1)
	case ebiten.KeyF4:
		p.Oscillator2.Shape = (p.Oscillator2.Shape + 1) % (wave.Triangle + 1)
		w.synth.SetOscillator2(p.Oscillator2)
	}
}

func (w *window) handleTouches() {
	for _, id := range inpututil.AppendJustPressedTouchIDs(nil) {
		x, y := ebiten.TouchPosition(id)
		if key, ok := w.padAt(x, y); ok {
			w.touches[id] = key
			w.synth.TouchStart(key)
		}
	}
	for id, key := range w.touches {
		if inpututil.IsTouchJustReleased(id) {
			delete(w.touches, id)
			w.synth.TouchEnd(key)
		}
	}
}

func (w *window) handleMouse() {
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		if key, ok := w.padAt(ebiten.CursorPosition()); ok {
			w.mouse = key
			w.synth.TouchStart(key)
		}
	}
	if w.mouse != "" && inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		w.synth.TouchEnd(w.mouse)
		w.mouse = ""
	}
}

func (w *window) Draw(screen *ebiten.Image) {
	screen.Fill(bgColor)
	p := w.synth.Params()

	held := map[string]bool{}
	for _, n := range w.synth.Held() {
		held[n.Name] = true
	}
	sounding := map[string]bool{}
	for _, name := range w.synth.Voices() {
		sounding[name] = true
	}

	w.drawScope(screen, image.Rect(20, 100, windowW-20, 280))
	for _, black := range []bool{false, true} {
		for _, pd := range w.pads {
			if pd.black != black {
				continue
			}
			col := whiteKeyColor
			if pd.black {
				col = blackKeyColor
			}
			switch {
			case held[pd.note.Name]:
				col = heldColor
			case sounding[pd.note.Name]:
				col = soundingColor
			}
			r := pd.rect
			drawBevel(screen, r)
			ebitenutil.DrawRect(screen, float64(r.Min.X+1), float64(r.Min.Y+1), float64(r.Dx()-2), float64(r.Dy()-2), col)
			ebitenutil.DebugPrintAt(screen, pd.key, r.Min.X+keyLabelOffset, r.Max.Y-36)
			ebitenutil.DebugPrintAt(screen, pd.note.Name, r.Min.X+keyLabelOffset, r.Max.Y-20)
		}
	}

	lines := []string{
		fmt.Sprintf("latch %-5v  arp %-5v  tempo %.0f bpm", p.Control.Latch, p.Control.Arp, p.Control.Tempo),
		fmt.Sprintf("osc1 %s x%.2f %+.0fc   osc2 %s x%.2f %+.0fc", p.Oscillator1.Shape, p.Oscillator1.Octave, p.Oscillator1.Detune, p.Oscillator2.Shape, p.Oscillator2.Octave, p.Oscillator2.Detune),
		fmt.Sprintf("lfo %s %.1f Hz depth %.0f -> %s   filter %.0f Hz q %.1f", p.LFO.Shape, p.LFO.Frequency, p.LFO.Depth, p.LFO.Target, p.Filter.Frequency, p.Filter.Q),
		fmt.Sprintf("voices %d   held %d   t=%.1fs", len(sounding), len(held), w.synth.CurrentTime()),
	}
	for i, line := range lines {
		ebitenutil.DebugPrintAt(screen, line, 20, 16+i*18)
	}
}

func (w *window) drawScope(dst *ebiten.Image, r image.Rectangle) {
	ebitenutil.DrawRect(dst, float64(r.Min.X), float64(r.Min.Y), float64(r.Dx()), float64(r.Dy()), sunkenBgColor)
	midY := float64(r.Min.Y + r.Dy()/2)
	ebitenutil.DrawRect(dst, float64(r.Min.X), midY, float64(r.Dx()), 1, scopeMidColor)
	samples := w.scope.Snapshot(scopeLen)
	half := float64(r.Dy()) / 2
	prevX, prevY := float64(r.Min.X), midY
	for i, s := range samples {
		x := float64(r.Min.X) + float64(i)*float64(r.Dx())/float64(len(samples))
		y := midY - float64(s)*half
		if i > 0 {
			ebitenutil.DrawLine(dst, prevX, prevY, x, y, waveColor)
		}
		prevX, prevY = x, y
	}
}

func drawBevel(dst *ebiten.Image, r image.Rectangle) {
	x, y, w, h := float64(r.Min.X), float64(r.Min.Y), float64(r.Dx()), float64(r.Dy())
	ebitenutil.DrawRect(dst, x, y, w, h, borderColor)
	ebitenutil.DrawRect(dst, x, y, w-1, 1, bevelLight)
	ebitenutil.DrawRect(dst, x, y+h-1, w, 1, bevelDarker)
}

func (w *window) Layout(outsideWidth, outsideHeight int) (int, int) {
	return windowW, windowH
}
