package engine

import (
	"context"
	"log/slog"
	"reflect"
	"sync"
	"testing"

	"github.com/cbegin/polysynth-go/internal/graph"
	"github.com/cbegin/polysynth-go/internal/notes"
	"github.com/cbegin/polysynth-go/internal/params"
)

// createdRecorder collects the note of every "voice created" log record.
type createdRecorder struct {
	mu    sync.Mutex
	notes []string
}

func (r *createdRecorder) Enabled(context.Context, slog.Level) bool { return true }

func (r *createdRecorder) Handle(_ context.Context, rec slog.Record) error {
	if rec.Message != "voice created" {
		return nil
	}
	rec.Attrs(func(a slog.Attr) bool {
		if a.Key == "note" {
			r.mu.Lock()
			r.notes = append(r.notes, a.Value.String())
			r.mu.Unlock()
		}
		return true
	})
	return nil
}

func (r *createdRecorder) WithAttrs([]slog.Attr) slog.Handler { return r }
func (r *createdRecorder) WithGroup(string) slog.Handler      { return r }

func (r *createdRecorder) created() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.notes...)
}

func newEngine(t *testing.T, s params.State) (*graph.Context, *Engine, *createdRecorder) {
	t.Helper()
	ctx, err := graph.NewContext(1000)
	if err != nil {
		t.Fatal(err)
	}
	rec := &createdRecorder{}
	e := New(ctx, params.NewStore(s), WithLogger(slog.New(rec)))
	return ctx, e, rec
}

func control(latch, arp bool) params.Control {
	return params.Control{Tempo: 120, Latch: latch, Arp: arp}
}

func heldNames(e *Engine) []string {
	var out []string
	for _, n := range e.Held() {
		out = append(out, n.Name)
	}
	return out
}

func TestKeyRepeatKeepsOneVoice(t *testing.T) {
	ctx, e, _ := newEngine(t, params.Defaults())
	for i := 0; i < 5; i++ {
		e.KeyDown("a")
		ctx.Advance(0.01)
	}
	if got := e.Voices(); !reflect.DeepEqual(got, []string{"C4"}) {
		t.Fatalf("voices = %v, want [C4]", got)
	}
	e.KeyUp("a")
	e.KeyUp("a")
	if e.ActiveVoices() != 0 {
		t.Fatal("key-up should release the voice")
	}
}

func TestUnmappedKeyIgnored(t *testing.T) {
	_, e, _ := newEngine(t, params.Defaults())
	e.KeyDown("1")
	e.TouchStart("F13")
	if len(e.Voices()) != 0 || len(e.Held()) != 0 {
		t.Fatal("unmapped keys should do nothing")
	}
}

func TestTouchMatchesKeys(t *testing.T) {
	_, e, _ := newEngine(t, params.Defaults())
	e.TouchStart("d")
	if got := heldNames(e); !reflect.DeepEqual(got, []string{"E4"}) {
		t.Fatalf("held = %v", got)
	}
	e.TouchEnd("d")
	if len(e.Held()) != 0 || e.ActiveVoices() != 0 {
		t.Fatal("touch end should release")
	}
}

func TestLatchOffClearsAll(t *testing.T) {
	_, e, _ := newEngine(t, params.Defaults())
	e.SetControl(control(true, false))
	e.KeyDown("a")
	e.KeyDown("d")
	e.KeyUp("a")
	e.KeyUp("d")
	if e.ActiveVoices() != 2 {
		t.Fatalf("active = %d, want 2 latched", e.ActiveVoices())
	}
	e.SetControl(control(false, false))
	if len(e.Held()) != 0 || e.ActiveVoices() != 0 {
		t.Fatalf("held %v active %d after latch off", heldNames(e), e.ActiveVoices())
	}
}

func TestEscapeOverridesLatch(t *testing.T) {
	_, e, _ := newEngine(t, params.Defaults())
	e.SetControl(control(true, false))
	e.KeyDown("a")
	e.KeyDown("g")
	e.Escape()
	if len(e.Held()) != 0 || e.ActiveVoices() != 0 {
		t.Fatal("escape should release latched notes")
	}
	if !e.Params().Control.Latch {
		t.Fatal("escape should leave latch on")
	}
}

func TestArpRoundRobin(t *testing.T) {
	ctx, e, rec := newEngine(t, params.Defaults())
	e.SetControl(control(false, true))
	e.KeyDown("a")
	e.KeyDown("d")
	e.KeyDown("g")
	if got := rec.created(); !reflect.DeepEqual(got, []string{"C4"}) {
		t.Fatalf("first tick = %v, want [C4]", got)
	}
	ctx.Advance(0.5)
	ctx.Advance(0.5)
	if got := rec.created(); !reflect.DeepEqual(got, []string{"C4", "E4", "G4"}) {
		t.Fatalf("N ticks = %v", got)
	}
	ctx.Advance(0.5)
	if got := rec.created(); got[len(got)-1] != "C4" || len(got) != 4 {
		t.Fatalf("N+1 ticks = %v, want trailing C4", got)
	}
}

func TestArpNotesReleaseAfterNoteLength(t *testing.T) {
	ctx, e, _ := newEngine(t, params.Defaults())
	e.SetControl(params.Control{Tempo: 30, Arp: true})
	e.KeyDown("a")
	ctx.Advance(0.99)
	if e.ActiveVoices() != 1 {
		t.Fatal("arp note released early")
	}
	ctx.Advance(0.02)
	if e.ActiveVoices() != 0 {
		t.Fatal("arp note still active after one second")
	}
	if got := e.Voices(); !reflect.DeepEqual(got, []string{"C4"}) {
		t.Fatalf("releasing voice should still be registered, got %v", got)
	}
}

func TestArpOnSilencesHeldAndArpOffWithLatchResounds(t *testing.T) {
	_, e, _ := newEngine(t, params.Defaults())
	e.SetControl(control(true, false))
	e.KeyDown("a")
	e.KeyDown("d")

	e.SetControl(control(true, true))
	if c, ok := e.ArpCursor(); !ok || c != 1 {
		t.Fatalf("cursor = %d, %v; want first note played and cursor 1", c, ok)
	}
	if e.ActiveVoices() != 1 {
		t.Fatalf("active = %d, want only the arp note", e.ActiveVoices())
	}

	e.SetControl(control(true, false))
	if _, ok := e.ArpCursor(); ok {
		t.Fatal("cursor should be inactive with arp off")
	}
	if e.ActiveVoices() != 2 {
		t.Fatalf("active = %d, want both latched notes", e.ActiveVoices())
	}
}

func TestLatchOffDuringArpStopsClock(t *testing.T) {
	ctx, e, rec := newEngine(t, params.Defaults())
	e.SetControl(control(true, true))
	e.KeyDown("a")
	e.KeyDown("d")
	e.SetControl(control(false, true))
	if len(e.Held()) != 0 {
		t.Fatal("latch off should clear held notes")
	}
	if _, ok := e.ArpCursor(); ok {
		t.Fatal("clock should stop with nothing held")
	}
	before := len(rec.created())
	ctx.Advance(2)
	if len(rec.created()) != before {
		t.Fatal("clock kept ticking")
	}
}

func TestReleaseUsesLiveEnvelope(t *testing.T) {
	ctx, e, _ := newEngine(t, params.Defaults())
	env := e.Params().Envelope
	env.Release = 0.5
	e.SetEnvelope(env)
	e.KeyDown("a")
	ctx.Advance(0.1)

	env.Release = 2.0
	e.SetEnvelope(env)
	e.KeyUp("a")
	ctx.Advance(1.9)
	if len(e.Voices()) != 1 {
		t.Fatal("voice gone before the live release time")
	}
	ctx.Advance(0.11)
	if len(e.Voices()) != 0 {
		t.Fatal("voice still registered after release")
	}
}

func TestInvalidRecordsAreDropped(t *testing.T) {
	_, e, _ := newEngine(t, params.Defaults())
	before := e.Params()
	e.SetFilter(params.Filter{Frequency: -1, Q: 1})
	e.SetDelay(params.Delay{Time: 1, Feedback: 2})
	e.SetControl(params.Control{Tempo: 0})
	e.SetOscillator1(params.Oscillator{Octave: 0})
	if got := e.Params(); got != before {
		t.Fatalf("invalid records changed state: %+v", got)
	}
}

func TestLFOSingleEdgeThroughSetter(t *testing.T) {
	_, e, _ := newEngine(t, params.Defaults())
	lfo := e.Params().LFO
	for _, target := range []params.Target{
		params.TargetOscillator1, params.TargetOscillator2, params.TargetOscillator2, params.TargetFilter,
	} {
		lfo.Target = target
		e.SetLFO(lfo)
		if n := len(e.sig.LFODepth().Outputs()); n != 1 {
			t.Fatalf("after %v: %d edges", target, n)
		}
		if e.sig.Target() != target {
			t.Fatalf("target = %v, want %v", e.sig.Target(), target)
		}
	}
}

func TestMIDIBypassesTracker(t *testing.T) {
	_, e, _ := newEngine(t, params.Defaults())
	e.SetControl(control(true, true))
	a4, _ := notes.Lookup("A4")
	e.NoteOn(a4)
	if len(e.Held()) != 0 {
		t.Fatal("note-on should not touch the held set")
	}
	if e.ActiveVoices() != 1 {
		t.Fatal("note-on should sound directly")
	}
	e.NoteOff(a4)
	e.NoteOff(a4)
	if e.ActiveVoices() != 0 {
		t.Fatal("note-off should release")
	}
}

func TestSilenceStopsEveryVoice(t *testing.T) {
	ctx, e, _ := newEngine(t, params.Defaults())
	e.SetControl(control(true, true))
	e.KeyDown("a")
	a4, _ := notes.Lookup("A4")
	e.NoteOn(a4)
	e.Silence()
	if len(e.Held()) != 0 {
		t.Fatal("silence should clear held notes")
	}
	if got := e.Voices(); len(got) != 0 {
		t.Fatalf("voices after silence = %v", got)
	}
	if _, ok := e.ArpCursor(); ok {
		t.Fatal("clock should stop")
	}
	ctx.Advance(2)
	if got := e.Voices(); len(got) != 0 {
		t.Fatalf("voices reappeared: %v", got)
	}
}

func TestInitialControlFromStore(t *testing.T) {
	s := params.Defaults()
	s.Control.Latch = true
	_, e, _ := newEngine(t, s)
	e.KeyDown("a")
	e.KeyUp("a")
	if len(e.Held()) != 1 {
		t.Fatal("latch from the initial state should be applied")
	}
}
