// Package keys tracks which notes the player is holding and applies the
// latch and arpeggiator rules to key presses and releases.
package keys

import "github.com/cbegin/polysynth-go/internal/notes"

// Voices is what the tracker sounds notes through.
type Voices interface {
	CreateVoice(n notes.Note)
	DestroyVoice(n notes.Note)
}

// Tracker is the press/release state machine over the held set, latch and
// arp flags. It is not safe for concurrent use.
type Tracker struct {
	voices Voices
	held   HeldSet
	latch  bool
	arp    bool

	// OnChange runs after the held set or the arp flag changes, so the
	// arpeggiator can be re-armed.
	OnChange func()
}

func NewTracker(v Voices) *Tracker {
	return &Tracker{voices: v}
}

func (t *Tracker) Latch() bool { return t.latch }
func (t *Tracker) Arp() bool   { return t.arp }

// Held returns the held notes in press order.
func (t *Tracker) Held() []notes.Note { return t.held.Notes() }

// Press holds n. With latch on, pressing a held note releases it instead.
// With arp on the note is only queued; the arpeggiator sounds it.
func (t *Tracker) Press(n notes.Note) {
	if t.held.Has(n.Name) {
		if t.latch {
			t.release(n)
		}
		return
	}
	t.held.Add(n)
	if !t.arp {
		t.voices.CreateVoice(n)
	}
	t.changed()
}

// Release lets go of n. Latched notes ignore releases unless force is set.
func (t *Tracker) Release(n notes.Note, force bool) {
	if t.latch && !force {
		return
	}
	t.release(n)
}

func (t *Tracker) release(n notes.Note) {
	t.voices.DestroyVoice(n)
	if t.held.Remove(n.Name) {
		t.changed()
	}
}

// SetLatch turns latch on or off. Turning it off releases everything held.
func (t *Tracker) SetLatch(on bool) {
	if on == t.latch {
		return
	}
	t.latch = on
	if !on {
		t.releaseAll()
	}
}

// SetArp turns the arpeggiator on or off. Turning it on silences the held
// notes so the clock can play them one at a time. Turning it off with latch
// on sounds every held note again.
func (t *Tracker) SetArp(on bool) {
	if on == t.arp {
		return
	}
	t.arp = on
	held := t.held.Notes()
	for _, n := range held {
		if on {
			t.voices.DestroyVoice(n)
		} else if t.latch {
			t.voices.CreateVoice(n)
		}
	}
	t.changed()
}

// Panic releases every held note regardless of latch.
func (t *Tracker) Panic() {
	t.releaseAll()
}

func (t *Tracker) releaseAll() {
	held := t.held.Notes()
	if len(held) == 0 {
		return
	}
	for _, n := range held {
		t.voices.DestroyVoice(n)
	}
	t.held.Clear()
	t.changed()
}

func (t *Tracker) changed() {
	if t.OnChange != nil {
		t.OnChange()
	}
}
