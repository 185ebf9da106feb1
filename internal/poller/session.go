// internal/poller/session.go
package poller

import (
	"fmt"

	"github.com/tamzrod/kostal2mqtt/internal/registers"
)

// Session runs the per-unit read sequences over one shared transport.
// All reads are strictly sequential.
type Session struct {
	client Client
	state  *State
	blocks []registers.RegisterBlock
}

// NewSession binds a transport client to poll state.
func NewSession(client Client, state *State) *Session {
	return &Session{
		client: client,
		state:  state,
		blocks: registers.Catalog(),
	}
}

// ResolveIdentity reads the serial number of unit and caches it.
// On any failure the unit stays unresolved.
func (s *Session) ResolveIdentity(unit uint8) (string, error) {
	raw, err := s.client.ReadHoldingRegisters(unit, registers.SerialStart, registers.SerialCount)
	if err != nil {
		return "", fmt.Errorf("unit %d: read serial: %w", unit, err)
	}

	sn, err := registers.DecodeSerial(raw)
	if err != nil {
		return "", fmt.Errorf("unit %d: %w", unit, err)
	}
	if sn == "" {
		return "", fmt.Errorf("unit %d: %w", unit, ErrNoSerial)
	}

	s.state.setSerial(unit, sn)
	return sn, nil
}

// FetchSnapshot reads and decodes every telemetry block of unit.
// All-or-nothing: the first failing read or decode aborts the fetch and
// later blocks are not requested.
func (s *Session) FetchSnapshot(unit uint8) (registers.Snapshot, error) {
	decoded := make([]map[string]float64, 0, len(s.blocks))

	for _, b := range s.blocks {
		raw, err := s.client.ReadHoldingRegisters(unit, b.Start, b.Count)
		if err != nil {
			return nil, fmt.Errorf("unit %d: read block %d: %w", unit, b.Start, err)
		}

		m, err := registers.Decode(b, raw)
		if err != nil {
			return nil, fmt.Errorf("unit %d: %w", unit, err)
		}
		decoded = append(decoded, m)
	}

	return registers.Assemble(decoded...), nil
}
