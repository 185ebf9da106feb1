// internal/poller/types.go
package poller

import (
	"errors"

	"github.com/tamzrod/kostal2mqtt/internal/registers"
)

// Client abstracts the Modbus reads the poller needs.
// The unit id is explicit on every call: implementations must not let a
// second request start before the first has completed.
type Client interface {
	ReadHoldingRegisters(unitID uint8, addr, qty uint16) ([]byte, error)
}

// Publisher delivers one assembled snapshot.
// Fire-and-forget: nothing is reported back to the poller.
type Publisher interface {
	PublishSnapshot(serial string, snap registers.Snapshot)
}

// Recorder observes poller outcomes. Used for metrics.
type Recorder interface {
	ObserveCycle()
	ObservePublish(unitID uint8)
	ObserveFailure(unitID uint8, op string)
	SetErrorCount(n uint)
}

// Operation names passed to Recorder.ObserveFailure.
const (
	OpIdentity = "identity"
	OpSnapshot = "snapshot"
)

var (
	// ErrNoSerial is returned when the identity block holds no characters.
	ErrNoSerial = errors.New("poller: empty serial number")

	// ErrErrorBudgetExceeded ends Run once too many consecutive failures piled up.
	ErrErrorBudgetExceeded = errors.New("poller: too many errors")
)

type nopRecorder struct{}

func (nopRecorder) ObserveCycle() {}
func (nopRecorder) ObservePublish(uint8) {}
func (nopRecorder) ObserveFailure(uint8, string) {}
func (nopRecorder) SetErrorCount(uint) {}
