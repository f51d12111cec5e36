package lifecycle

import "github.com/Advaitgaur004/Urban-ride-server/internal/model"

// AllowedTransitions is the slot status flow as one explicit table.
// Handlers never check statuses ad hoc; every status change goes
// through Transition so an illegal move is rejected in exactly one
// place.  CANCELLED and FINALIZED are terminal.
var AllowedTransitions = map[model.SlotStatus][]model.SlotStatus{
	model.SlotPendingDriver: {model.SlotOpen, model.SlotCancelled},
	model.SlotOpen:          {model.SlotBooked, model.SlotCancelled, model.SlotFinalized},
	model.SlotBooked:        {model.SlotFinalized},
	model.SlotCancelled:     {},
	model.SlotFinalized:     {},
}

// CanTransition reports whether from -> to is permitted by the table.
func CanTransition(from, to model.SlotStatus) bool {
	for _, s := range AllowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Transition applies a status change to the slot in memory, or returns
// an *InvalidTransitionError naming the rejected pair.  Persisting the
// change is the caller's job, inside the same transaction as any
// companion mutations (vehicle status, queue entries).
func Transition(slot *model.RideSlot, to model.SlotStatus) error {
	if !CanTransition(slot.Status, to) {
		return &InvalidTransitionError{From: slot.Status, To: to}
	}
	slot.Status = to
	return nil
}
