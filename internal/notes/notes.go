// Package notes holds the static note table: note names to frequencies,
// computer-keyboard keys to note names, and MIDI note numbers to names.
package notes

import (
	"math"
	"strconv"
	"strings"
)

// Note is an immutable pitch taken from the table. Identity is Name.
type Note struct {
	Name      string
	Frequency float64
}

// Valid reports whether the note has a usable frequency.
func (n Note) Valid() bool {
	return n.Name != "" && n.Frequency > 0 && !math.IsInf(n.Frequency, 0) && !math.IsNaN(n.Frequency)
}

const (
	MinOctave = 0
	MaxOctave = 8
	// A4 is MIDI note 69 and sounds at 440 Hz.
	referenceMIDI = 69
	referenceFreq = 440.0
)

var pitchClasses = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

var (
	byName = buildTable()
	// keyMap follows the common two-row tracker layout: the home row plays
	// white keys from C4, the row above plays the sharps.
	keyMap = map[string]string{
		"a": "C4", "w": "C#4", "s": "D4", "e": "D#4", "d": "E4",
		"f": "F4", "t": "F#4", "g": "G4", "y": "G#4", "h": "A4",
		"u": "A#4", "j": "B4", "k": "C5", "o": "C#5", "l": "D5",
		"p": "D#5", ";": "E5", "'": "F5",
		"z": "C3", "x": "D3", "c": "E3", "v": "F3", "b": "G3",
		"n": "A3", "m": "B3",
	}
)

func buildTable() map[string]Note {
	table := make(map[string]Note, 12*(MaxOctave-MinOctave+1))
	for octave := MinOctave; octave <= MaxOctave; octave++ {
		for pc := range pitchClasses {
			midi := (octave+1)*12 + pc
			name := pitchClasses[pc] + strconv.Itoa(octave)
			table[name] = Note{Name: name, Frequency: midiToFreq(midi)}
		}
	}
	return table
}

func midiToFreq(note int) float64 {
	return referenceFreq * math.Pow(2, float64(note-referenceMIDI)/12)
}

// Lookup returns the note with the given name ("A4", "C#3"). Flats are
// accepted and spelled as their enharmonic sharp.
func Lookup(name string) (Note, bool) {
	n, ok := byName[normalize(name)]
	return n, ok
}

// ForKey resolves a computer-keyboard key identifier to its note. Unmapped
// keys are common and simply report false.
func ForKey(key string) (Note, bool) {
	name, ok := keyMap[strings.ToLower(key)]
	if !ok {
		return Note{}, false
	}
	return Lookup(name)
}

// Keys returns every mapped key identifier.
func Keys() []string {
	out := make([]string, 0, len(keyMap))
	for k := range keyMap {
		out = append(out, k)
	}
	return out
}

// ForMIDI resolves a MIDI note number. Numbers outside the table's octave
// range report false.
func ForMIDI(number uint8) (Note, bool) {
	octave := int(number)/12 - 1
	if octave < MinOctave || octave > MaxOctave {
		return Note{}, false
	}
	return Lookup(pitchClasses[int(number)%12] + strconv.Itoa(octave))
}

var flats = map[string]string{"DB": "C#", "EB": "D#", "GB": "F#", "AB": "G#", "BB": "A#"}

func normalize(name string) string {
	name = strings.TrimSpace(name)
	if len(name) < 2 {
		return name
	}
	if name[1] == 'b' && len(name) > 2 {
		if sharp, ok := flats[strings.ToUpper(name[:2])]; ok {
			return sharp + name[2:]
		}
	}
	return strings.ToUpper(name[:1]) + name[1:]
}
