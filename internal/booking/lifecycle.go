package booking

import (
	"fmt"

	"tutorconnect/internal/apperr"
)

var transitions = map[Status][]Status{
	StatusPending:  {StatusAccepted, StatusRejected, StatusCancelled},
	StatusAccepted: {StatusCompleted, StatusCancelled},
}

func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

// escrowFor is the escrow state a booking holds after moving to status.
func escrowFor(status Status) EscrowStatus {
	switch status {
	case StatusCompleted:
		return EscrowReleased
	case StatusRejected, StatusCancelled:
		return EscrowRefunded
	default:
		return EscrowHeld
	}
}

func invalidTransition(from, to Status) error {
	return apperr.Conflict(fmt.Sprintf("Cannot change booking from %s to %s", from, to))
}
