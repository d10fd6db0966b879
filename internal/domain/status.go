package domain

import "fmt"

// Wire status tokens accepted from the dispatch endpoint and carried in push
// payloads.
const (
	WireStart     = "START"
	WireCompleted = "COMPLETED"
	WireFailed    = "FAILED"
)

// ParseWireStatus maps a raw wire status to the canonical task status. Any
// token outside the closed wire vocabulary is an error; an unknown value must
// never default to a state.
func ParseWireStatus(raw string) (TaskStatus, error) {
	switch raw {
	case WireStart:
		return StatusRunning, nil
	case WireCompleted:
		return StatusCompleted, nil
	case WireFailed:
		return StatusFailed, nil
	}
	return "", fmt.Errorf("unknown wire status %q", raw)
}
