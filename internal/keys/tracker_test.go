package keys

import (
	"reflect"
	"testing"

	"github.com/cbegin/polysynth-go/internal/notes"
)

// fakeVoices records calls and keeps the set of sounding notes.
type fakeVoices struct {
	calls    []string
	sounding map[string]bool
}

func newFakeVoices() *fakeVoices {
	return &fakeVoices{sounding: map[string]bool{}}
}

func (f *fakeVoices) CreateVoice(n notes.Note) {
	f.calls = append(f.calls, "+"+n.Name)
	f.sounding[n.Name] = true
}

func (f *fakeVoices) DestroyVoice(n notes.Note) {
	f.calls = append(f.calls, "-"+n.Name)
	delete(f.sounding, n.Name)
}

func mustNote(t *testing.T, name string) notes.Note {
	t.Helper()
	n, ok := notes.Lookup(name)
	if !ok {
		t.Fatalf("no note %s", name)
	}
	return n
}

func names(ns []notes.Note) []string {
	out := make([]string, len(ns))
	for i, n := range ns {
		out[i] = n.Name
	}
	return out
}

func TestPressReleaseWithoutLatch(t *testing.T) {
	v := newFakeVoices()
	tr := NewTracker(v)
	c, e := mustNote(t, "C4"), mustNote(t, "E4")

	tr.Press(c)
	tr.Press(e)
	tr.Press(c) // key repeat
	if got := names(tr.Held()); !reflect.DeepEqual(got, []string{"C4", "E4"}) {
		t.Fatalf("held = %v", got)
	}
	tr.Release(c, false)
	if got := names(tr.Held()); !reflect.DeepEqual(got, []string{"E4"}) {
		t.Fatalf("held after release = %v", got)
	}
	want := []string{"+C4", "+E4", "-C4"}
	if !reflect.DeepEqual(v.calls, want) {
		t.Fatalf("calls = %v, want %v", v.calls, want)
	}
}

func TestLatchIgnoresKeyUpAndTogglesOnRepress(t *testing.T) {
	v := newFakeVoices()
	tr := NewTracker(v)
	tr.SetLatch(true)
	c := mustNote(t, "C4")

	tr.Press(c)
	tr.Release(c, false)
	if !v.sounding["C4"] || tr.held.Len() != 1 {
		t.Fatal("latched note should survive key-up")
	}
	tr.Press(c)
	if v.sounding["C4"] || tr.held.Len() != 0 {
		t.Fatal("second press of a latched note should release it")
	}
}

func TestLatchOffClearsAll(t *testing.T) {
	v := newFakeVoices()
	tr := NewTracker(v)
	tr.SetLatch(true)
	for _, name := range []string{"C4", "E4", "G4"} {
		tr.Press(mustNote(t, name))
	}
	tr.SetLatch(false)
	if len(tr.Held()) != 0 {
		t.Fatalf("held = %v, want empty", names(tr.Held()))
	}
	if len(v.sounding) != 0 {
		t.Fatalf("sounding = %v, want none", v.sounding)
	}
}

func TestPanicIgnoresLatch(t *testing.T) {
	v := newFakeVoices()
	tr := NewTracker(v)
	tr.SetLatch(true)
	tr.Press(mustNote(t, "C4"))
	tr.Press(mustNote(t, "G4"))

	tr.Panic()
	if len(tr.Held()) != 0 || len(v.sounding) != 0 {
		t.Fatalf("held %v sounding %v after panic", names(tr.Held()), v.sounding)
	}
	if !tr.Latch() {
		t.Error("panic should not change latch")
	}
}

func TestArpQueuesPresses(t *testing.T) {
	v := newFakeVoices()
	tr := NewTracker(v)
	changes := 0
	tr.OnChange = func() { changes++ }

	tr.Press(mustNote(t, "C4"))
	tr.SetArp(true)
	if v.sounding["C4"] {
		t.Fatal("arp on should silence held notes")
	}
	tr.Press(mustNote(t, "E4"))
	if v.sounding["E4"] {
		t.Fatal("press with arp on must not create a voice")
	}
	if got := names(tr.Held()); !reflect.DeepEqual(got, []string{"C4", "E4"}) {
		t.Fatalf("held = %v", got)
	}
	if changes != 3 {
		t.Errorf("OnChange ran %d times, want 3", changes)
	}
}

func TestArpOffWithLatchResoundsHeld(t *testing.T) {
	v := newFakeVoices()
	tr := NewTracker(v)
	tr.SetLatch(true)
	tr.SetArp(true)
	tr.Press(mustNote(t, "C4"))
	tr.Press(mustNote(t, "E4"))

	tr.SetArp(false)
	if !v.sounding["C4"] || !v.sounding["E4"] {
		t.Fatalf("sounding = %v, want both held notes", v.sounding)
	}
}

func TestArpOffWithoutLatchStaysSilent(t *testing.T) {
	v := newFakeVoices()
	tr := NewTracker(v)
	tr.SetArp(true)
	tr.Press(mustNote(t, "C4"))
	tr.SetArp(false)
	if len(v.sounding) != 0 {
		t.Fatalf("sounding = %v, want none", v.sounding)
	}
	if len(tr.Held()) != 1 {
		t.Fatal("held set should be kept")
	}
}

func TestHeldSetOrder(t *testing.T) {
	var h HeldSet
	for _, name := range []string{"C4", "D4", "E4"} {
		if !h.Add(notes.Note{Name: name, Frequency: 1}) {
			t.Fatalf("add %s", name)
		}
	}
	if h.Add(notes.Note{Name: "D4", Frequency: 1}) {
		t.Fatal("duplicate add should report false")
	}
	h.Remove("D4")
	h.Add(notes.Note{Name: "D4", Frequency: 1})
	if got := names(h.Notes()); !reflect.DeepEqual(got, []string{"C4", "E4", "D4"}) {
		t.Fatalf("order = %v", got)
	}
	if h.Remove("F4") {
		t.Fatal("removing an absent note should report false")
	}
}
