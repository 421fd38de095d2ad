// Package midiin feeds MIDI note messages into the synth. Notes played over
// MIDI go straight to the voices and never pass through the key tracker.
package midiin

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"github.com/cbegin/polysynth-go/internal/notes"
)

// ErrNoDriver is returned when no MIDI driver has been registered, which is
// the case in builds without cgo.
var ErrNoDriver = errors.New("no MIDI driver available")

// Omni accepts messages on every channel.
const Omni = -1

// Sink receives decoded notes. *engine.Engine is one.
type Sink interface {
	NoteOn(n notes.Note)
	NoteOff(n notes.Note)
}

type Option func(*Listener)

// WithChannel restricts the listener to one MIDI channel (0-15).
func WithChannel(ch int) Option {
	return func(l *Listener) { l.channel = ch }
}

func WithLogger(log *slog.Logger) Option {
	return func(l *Listener) {
		if log != nil {
			l.log = log
		}
	}
}

// Listener decodes MIDI messages into Sink calls.
type Listener struct {
	sink    Sink
	channel int
	log     *slog.Logger
}

func NewListener(sink Sink, opts ...Option) *Listener {
	l := &Listener{sink: sink, channel: Omni, log: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Handle has the signature midi.ListenTo expects. A note-on with velocity 0
// counts as a note-off. Keys outside the note table are dropped.
func (l *Listener) Handle(msg midi.Message, timestampms int32) {
	var ch, key, vel uint8
	switch {
	case msg.GetNoteStart(&ch, &key, &vel):
		if n, ok := l.note(ch, key); ok {
			l.log.Debug("midi note on", "ch", ch, "key", key, "vel", vel, "note", n.Name)
			l.sink.NoteOn(n)
		}
	case msg.GetNoteEnd(&ch, &key):
		if n, ok := l.note(ch, key); ok {
			l.log.Debug("midi note off", "ch", ch, "key", key, "note", n.Name)
			l.sink.NoteOff(n)
		}
	}
}

func (l *Listener) note(ch, key uint8) (notes.Note, bool) {
	if l.channel != Omni && int(ch) != l.channel {
		return notes.Note{}, false
	}
	return notes.ForMIDI(key)
}

// Inputs lists the names of the available MIDI input ports.
func Inputs() ([]string, error) {
	if drivers.Get() == nil {
		return nil, ErrNoDriver
	}
	ins, err := drivers.Ins()
	if err != nil {
		return nil, fmt.Errorf("listing MIDI inputs: %w", err)
	}
	names := make([]string, len(ins))
	for i, in := range ins {
		names[i] = in.String()
	}
	return names, nil
}

// Open starts l listening on the first input whose name starts with
// prefix; an empty prefix takes the first input. The returned function
// stops listening and closes the port.
func Open(prefix string, l *Listener) (name string, stop func(), err error) {
	if drivers.Get() == nil {
		return "", nil, ErrNoDriver
	}
	ins, err := drivers.Ins()
	if err != nil {
		return "", nil, fmt.Errorf("listing MIDI inputs: %w", err)
	}
	var found drivers.In
	for _, in := range ins {
		if strings.HasPrefix(in.String(), prefix) {
			found = in
			break
		}
	}
	if found == nil {
		return "", nil, fmt.Errorf("MIDI input %q not found", prefix)
	}
	if !found.IsOpen() {
		if err := found.Open(); err != nil {
			return "", nil, fmt.Errorf("opening MIDI input %q: %w", found.String(), err)
		}
	}
	name = found.String()
	stopListening, err := midi.ListenTo(found, l.Handle, midi.HandleError(func(err error) {
		l.log.Warn("MIDI listener error", "device", name, "err", err)
	}))
	if err != nil {
		found.Close()
		return "", nil, fmt.Errorf("listening on MIDI input %q: %w", name, err)
	}
	l.log.Info("MIDI input connected", "device", name)
	return name, func() {
		stopListening()
		found.Close()
		l.log.Info("MIDI input closed", "device", name)
	}, nil
}
