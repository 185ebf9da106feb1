// internal/poller/state.go
package poller

// State is the process-wide poll state.
// Serial numbers are cached per unit and never evicted.
// The error counter is global: failures of any unit share one budget.
type State struct {
	serials map[uint8]string
	errors  uint
	budget  uint
}

// NewState creates empty state. Polling ends once the error counter
// goes above budget.
func NewState(budget uint) *State {
	return &State{
		serials: make(map[uint8]string),
		budget:  budget,
	}
}

// Serial returns the cached serial number of unit.
func (s *State) Serial(unit uint8) (string, bool) {
	sn, ok := s.serials[unit]
	return sn, ok
}

func (s *State) setSerial(unit uint8, sn string) {
	s.serials[unit] = sn
}

// Success resets the error counter.
func (s *State) Success() {
	s.errors = 0
}

// Failure counts one failed operation and returns the new count.
func (s *State) Failure() uint {
	s.errors++
	return s.errors
}

// Errors returns the current consecutive error count.
func (s *State) Errors() uint {
	return s.errors
}

// Exhausted reports whether the error counter is above the budget.
func (s *State) Exhausted() bool {
	return s.errors > s.budget
}
