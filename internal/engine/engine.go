// Package engine is the synth's control surface: key, touch and MIDI note
// events plus one setter per parameter category. It owns the signal graph,
// voices, key tracker and arpeggiator and serializes everything that
// touches them, including callbacks fired by the audio clock.
package engine

import (
	"log/slog"
	"sync"

	"github.com/cbegin/polysynth-go/internal/arp"
	"github.com/cbegin/polysynth-go/internal/graph"
	"github.com/cbegin/polysynth-go/internal/keys"
	"github.com/cbegin/polysynth-go/internal/notes"
	"github.com/cbegin/polysynth-go/internal/params"
	"github.com/cbegin/polysynth-go/internal/signal"
	"github.com/cbegin/polysynth-go/internal/voice"
)

type Option func(*Engine)

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

type Engine struct {
	mu     sync.Mutex
	log    *slog.Logger
	ctx    *graph.Context
	store  *params.Store
	sig    *signal.Graph
	voices *voice.Manager
	keys   *keys.Tracker
	clock  *arp.Clock
}

// New wires an engine into ctx. The store is read live by every component;
// its Control record seeds the latch and arp flags.
func New(ctx *graph.Context, store *params.Store, opts ...Option) *Engine {
	e := &Engine{
		log:   slog.New(slog.DiscardHandler),
		ctx:   ctx,
		store: store,
	}
	for _, opt := range opts {
		opt(e)
	}
	sched := lockedScheduler{ctx: ctx, mu: &e.mu}
	e.sig = signal.New(ctx, store, e.log)
	e.voices = voice.NewManager(ctx, sched, store, e.sig, e.log)
	e.keys = keys.NewTracker(e.voices)
	e.clock = arp.NewClock(sched, e.arpInterval, e.keys.Held, e.arpTrigger)
	e.keys.OnChange = e.syncClock

	c := store.Control()
	e.keys.SetLatch(c.Latch)
	e.keys.SetArp(c.Arp)
	return e
}

// lockedScheduler runs graph timer callbacks under the engine lock.
type lockedScheduler struct {
	ctx *graph.Context
	mu  *sync.Mutex
}

func (s lockedScheduler) AfterFunc(delaySeconds float64, fn func()) graph.Timer {
	return s.ctx.AfterFunc(delaySeconds, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		fn()
	})
}

func (e *Engine) arpInterval() float64 {
	return arp.Interval(e.store.Control().Tempo)
}

// arpTrigger sounds one arpeggiated note and releases it NoteLength later,
// unless the voice has been replaced in the meantime.
func (e *Engine) arpTrigger(n notes.Note) {
	e.voices.CreateVoice(n)
	v := e.voices.Voice(n.Name)
	if v == nil {
		return
	}
	e.log.Debug("arp tick", "note", n.Name, "voice", v.ID)
	lockedScheduler{ctx: e.ctx, mu: &e.mu}.AfterFunc(arp.NoteLength, func() {
		if e.voices.Voice(n.Name) == v {
			e.voices.DestroyVoice(n)
		}
	})
}

func (e *Engine) syncClock() {
	e.clock.Sync(e.keys.Arp() && len(e.keys.Held()) > 0)
}

// KeyDown presses the note mapped to a computer-keyboard key. Unmapped keys
// are ignored.
func (e *Engine) KeyDown(key string) {
	n, ok := notes.ForKey(key)
	if !ok {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.keys.Press(n)
}

func (e *Engine) KeyUp(key string) {
	n, ok := notes.ForKey(key)
	if !ok {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.keys.Release(n, false)
}

// TouchStart and TouchEnd behave exactly like KeyDown and KeyUp.
func (e *Engine) TouchStart(key string) { e.KeyDown(key) }

func (e *Engine) TouchEnd(key string) { e.KeyUp(key) }

// Escape releases every held note, latched or not.
func (e *Engine) Escape() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.log.Debug("panic")
	e.keys.Panic()
}

// Silence releases every held note and cuts every voice immediately,
// including voices started over MIDI or by the arpeggiator.
func (e *Engine) Silence() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.keys.Panic()
	e.voices.StopAll()
}

// NoteOn sounds n directly, bypassing latch and arp.
func (e *Engine) NoteOn(n notes.Note) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.voices.CreateVoice(n)
}

func (e *Engine) NoteOff(n notes.Note) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.voices.DestroyVoice(n)
}

// Params returns a copy of the current parameter records.
func (e *Engine) Params() params.State { return e.store.Snapshot() }

// Held returns the held notes in press order.
func (e *Engine) Held() []notes.Note {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.keys.Held()
}

// Voices returns the note names that currently have a voice, including
// voices still in their release.
func (e *Engine) Voices() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.voices.Names()
}

// ActiveVoices counts voices that have not been released.
func (e *Engine) ActiveVoices() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.voices.ActiveCount()
}

// ArpCursor reports the arpeggiator's next index and whether it is running.
func (e *Engine) ArpCursor() (int, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.clock.Cursor()
}
