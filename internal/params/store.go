package params

import "sync"

// Store holds the live parameter records. Components keep a *Store and read
// the record they need at the moment of use; nothing caches a copy.
type Store struct {
	mu    sync.RWMutex
	state State
}

func NewStore(initial State) *Store {
	return &Store{state: initial}
}

// Snapshot returns a copy of every record.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Store) Oscillator1() Oscillator {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Oscillator1
}

func (s *Store) Oscillator2() Oscillator {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Oscillator2
}

func (s *Store) LFO() LFO {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.LFO
}

func (s *Store) Amp() Amp {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Amp
}

func (s *Store) Filter() Filter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Filter
}

func (s *Store) Envelope() Envelope {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Envelope
}

func (s *Store) Delay() Delay {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Delay
}

func (s *Store) Control() Control {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Control
}

// The setters replace a record wholesale and return the one it replaced so
// callers can diff.

func (s *Store) SetOscillator1(v Oscillator) (old Oscillator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, s.state.Oscillator1 = s.state.Oscillator1, v
	return old
}

func (s *Store) SetOscillator2(v Oscillator) (old Oscillator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, s.state.Oscillator2 = s.state.Oscillator2, v
	return old
}

func (s *Store) SetLFO(v LFO) (old LFO) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, s.state.LFO = s.state.LFO, v
	return old
}

func (s *Store) SetAmp(v Amp) (old Amp) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, s.state.Amp = s.state.Amp, v
	return old
}

func (s *Store) SetFilter(v Filter) (old Filter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, s.state.Filter = s.state.Filter, v
	return old
}

func (s *Store) SetEnvelope(v Envelope) (old Envelope) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, s.state.Envelope = s.state.Envelope, v
	return old
}

func (s *Store) SetDelay(v Delay) (old Delay) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, s.state.Delay = s.state.Delay, v
	return old
}

func (s *Store) SetControl(v Control) (old Control) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, s.state.Control = s.state.Control, v
	return old
}
