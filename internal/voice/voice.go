// Package voice keeps one sounding chain per note name: two oscillators into
// a VCA whose gain follows the note's envelope, feeding the shared filter.
package voice

import (
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"github.com/cbegin/polysynth-go/internal/envelope"
	"github.com/cbegin/polysynth-go/internal/graph"
	"github.com/cbegin/polysynth-go/internal/notes"
	"github.com/cbegin/polysynth-go/internal/params"
	"github.com/cbegin/polysynth-go/internal/signal"
)

// Voice is one note's chain. A releasing voice stays registered until its
// release ramp has finished.
type Voice struct {
	ID   uuid.UUID
	Note notes.Note
	Osc1 *graph.Oscillator
	Osc2 *graph.Oscillator
	VCA  *graph.Gain

	releasing  bool
	releaseEnd float64
}

// Releasing reports whether note-off has been applied.
func (v *Voice) Releasing() bool { return v.releasing }

// ReleaseEnd is the context time the release ramp reaches zero. It is zero
// until the voice is released.
func (v *Voice) ReleaseEnd() float64 { return v.releaseEnd }

// Manager maps note names to voices. It is not safe for concurrent use; the
// caller serializes access, including from callbacks run by sched.
type Manager struct {
	ctx    *graph.Context
	sched  graph.Scheduler
	store  *params.Store
	sig    *signal.Graph
	log    *slog.Logger
	voices map[string]*Voice
}

// NewManager returns a Manager that builds voices in ctx, reads settings from
// store at the moment of use, and schedules cleanup on sched. A nil sched
// uses ctx directly.
func NewManager(ctx *graph.Context, sched graph.Scheduler, store *params.Store, sig *signal.Graph, log *slog.Logger) *Manager {
	if sched == nil {
		sched = ctx
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Manager{
		ctx:    ctx,
		sched:  sched,
		store:  store,
		sig:    sig,
		log:    log,
		voices: make(map[string]*Voice),
	}
}

// CreateVoice starts a voice for n. Notes without a usable frequency are
// ignored. An existing voice for the same name is stopped first.
func (m *Manager) CreateVoice(n notes.Note) {
	if !n.Valid() {
		return
	}
	if _, ok := m.voices[n.Name]; ok {
		m.ForceStop(n.Name)
	}
	now := m.ctx.CurrentTime()
	o1, o2 := m.store.Oscillator1(), m.store.Oscillator2()

	v := &Voice{
		ID:   uuid.New(),
		Note: n,
		Osc1: m.oscillator(n.Frequency, o1),
		Osc2: m.oscillator(n.Frequency, o2),
		VCA:  m.ctx.NewGain(0),
	}
	v.Osc1.Start(now)
	v.Osc2.Start(now)
	m.sig.PitchBus(1).ConnectParam(v.Osc1.Detune)
	m.sig.PitchBus(2).ConnectParam(v.Osc2.Detune)

	envelope.Apply(v.VCA.Gain, envelope.Schedule(m.store.Envelope(), now))

	v.Osc1.Connect(v.VCA)
	v.Osc2.Connect(v.VCA)
	v.VCA.Connect(m.sig.Input())
	m.voices[n.Name] = v
	m.log.Debug("voice created", "voice", v.ID, "note", n.Name, "freq", n.Frequency)
}

func (m *Manager) oscillator(freq float64, p params.Oscillator) *graph.Oscillator {
	o := m.ctx.NewOscillator(p.Shape, freq*p.Octave)
	o.Detune.SetValue(p.Detune)
	return o
}

// DestroyVoice releases the voice for n using the envelope's release time as
// it is now. Absent or already releasing voices are left alone.
func (m *Manager) DestroyVoice(n notes.Note) {
	v, ok := m.voices[n.Name]
	if !ok || v.releasing {
		return
	}
	now := m.ctx.CurrentTime()
	points := envelope.Release(m.store.Envelope().Release, now)
	end := points[len(points)-1].Time

	v.VCA.Gain.CancelAndHoldAtTime(now)
	envelope.Apply(v.VCA.Gain, points)
	v.Osc1.Stop(end)
	v.Osc2.Stop(end)
	v.releasing = true
	v.releaseEnd = end
	m.log.Debug("voice released", "voice", v.ID, "note", n.Name, "until", end)

	m.sched.AfterFunc(end-now, func() {
		if m.voices[n.Name] != v {
			return
		}
		delete(m.voices, n.Name)
		v.VCA.Detach()
		m.log.Debug("voice removed", "voice", v.ID, "note", n.Name)
	})
}

// ForceStop silences and removes the voice for name immediately.
func (m *Manager) ForceStop(name string) {
	v, ok := m.voices[name]
	if !ok {
		return
	}
	delete(m.voices, name)
	now := m.ctx.CurrentTime()
	v.VCA.Gain.CancelAndHoldAtTime(now)
	v.VCA.Gain.SetValueAtTime(0, now)
	v.Osc1.Stop(now)
	v.Osc2.Stop(now)
	v.VCA.Detach()
	m.log.Debug("voice stopped", "voice", v.ID, "note", name)
}

// StopAll force-stops every voice.
func (m *Manager) StopAll() {
	for _, name := range m.Names() {
		m.ForceStop(name)
	}
}

func (m *Manager) Has(name string) bool {
	_, ok := m.voices[name]
	return ok
}

// Voice returns the voice registered for name, or nil.
func (m *Manager) Voice(name string) *Voice { return m.voices[name] }

// Names returns the registered note names in sorted order.
func (m *Manager) Names() []string {
	names := make([]string, 0, len(m.voices))
	for name := range m.voices {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (m *Manager) Len() int { return len(m.voices) }

// ActiveCount counts voices that have not been released.
func (m *Manager) ActiveCount() int {
	n := 0
	for _, v := range m.voices {
		if !v.releasing {
			n++
		}
	}
	return n
}
