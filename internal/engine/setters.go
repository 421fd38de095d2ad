package engine

import "github.com/cbegin/polysynth-go/internal/params"

// Each setter takes a full replacement record. Invalid records are logged
// and dropped; valid ones are stored and diffed against the previous record
// to decide which live updates are needed.

// SetOscillator1 affects voices created afterwards.
func (e *Engine) SetOscillator1(v params.Oscillator) {
	if !e.valid("oscillator1", v.Validate()) {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.store.SetOscillator1(v)
}

// SetOscillator2 affects voices created afterwards.
func (e *Engine) SetOscillator2(v params.Oscillator) {
	if !e.valid("oscillator2", v.Validate()) {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.store.SetOscillator2(v)
}

func (e *Engine) SetLFO(v params.LFO) {
	if !e.valid("lfo", v.Validate()) {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if old := e.store.SetLFO(v); old == v {
		return
	}
	e.sig.SetLFORouting(v.Target, v.Depth, v.Shape, v.Frequency)
}

func (e *Engine) SetAmp(v params.Amp) {
	if !e.valid("amp", v.Validate()) {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if old := e.store.SetAmp(v); old == v {
		return
	}
	e.sig.SetMainLevel(v.Level)
}

func (e *Engine) SetFilter(v params.Filter) {
	if !e.valid("filter", v.Validate()) {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if old := e.store.SetFilter(v); old == v {
		return
	}
	e.sig.SetFilter(v.Frequency, v.Q)
}

// SetEnvelope affects note-ons from now on, and the release of every voice
// released from now on, including ones already sounding.
func (e *Engine) SetEnvelope(v params.Envelope) {
	if !e.valid("envelope", v.Validate()) {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.store.SetEnvelope(v)
}

func (e *Engine) SetDelay(v params.Delay) {
	if !e.valid("delay", v.Validate()) {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if old := e.store.SetDelay(v); old == v {
		return
	}
	e.sig.SetDelay(v.Time, v.Feedback)
}

// SetControl applies latch before arp, so switching both off at once does
// not resound the latched notes only to release them again. A tempo change
// reaches a running arpeggiator on its next tick.
func (e *Engine) SetControl(v params.Control) {
	if !e.valid("control", v.Validate()) {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	old := e.store.SetControl(v)
	if old.Latch != v.Latch {
		e.keys.SetLatch(v.Latch)
	}
	if old.Arp != v.Arp {
		e.keys.SetArp(v.Arp)
	}
	if old.Tempo != v.Tempo {
		e.syncClock()
	}
}

func (e *Engine) valid(category string, err error) bool {
	if err != nil {
		e.log.Warn("parameter change ignored", "category", category, "err", err)
		return false
	}
	return true
}
