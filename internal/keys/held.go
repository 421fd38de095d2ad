package keys

import "github.com/cbegin/polysynth-go/internal/notes"

// HeldSet is the ordered, duplicate-free set of held notes in press order.
type HeldSet struct {
	notes []notes.Note
}

func (h *HeldSet) Has(name string) bool {
	return h.index(name) >= 0
}

// Add appends n unless a note with the same name is already held. It
// reports whether the set changed.
func (h *HeldSet) Add(n notes.Note) bool {
	if h.Has(n.Name) {
		return false
	}
	h.notes = append(h.notes, n)
	return true
}

// Remove deletes the note with the given name, keeping the order of the rest.
func (h *HeldSet) Remove(name string) bool {
	i := h.index(name)
	if i < 0 {
		return false
	}
	h.notes = append(h.notes[:i], h.notes[i+1:]...)
	return true
}

func (h *HeldSet) Len() int { return len(h.notes) }

// Notes returns a copy of the held notes in press order.
func (h *HeldSet) Notes() []notes.Note {
	out := make([]notes.Note, len(h.notes))
	copy(out, h.notes)
	return out
}

func (h *HeldSet) Clear() { h.notes = nil }

func (h *HeldSet) index(name string) int {
	for i, n := range h.notes {
		if n.Name == name {
			return i
		}
	}
	return -1
}
