// Package lifecycle implements the ride-slot lifecycle engine: the
// vehicle queue manager, the slot state machine and the participant
// admission controller.  Every operation that touches more than one
// row runs inside a single database transaction.
package lifecycle

import (
	"errors"
	"fmt"

	"github.com/Advaitgaur004/Urban-ride-server/internal/model"
)

// Sentinel failures surfaced by engine operations.  Handlers translate
// these into HTTP responses; none of them is fatal to the process.
var (
	// ErrNotFound means a referenced entity (slot, rider, vehicle,
	// participation) does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState means the operation is not valid for the
	// entity's current lifecycle state, e.g. joining a slot that is
	// not OPEN or enqueueing a vehicle that is not AVAILABLE.
	ErrInvalidState = errors.New("invalid state")

	// ErrInvalidRole means the referenced user exists but has the
	// wrong role for the operation.
	ErrInvalidRole = errors.New("invalid role")

	// ErrSlotFull means the slot has reached max_capacity.
	ErrSlotFull = errors.New("slot is full")

	// ErrDuplicateJoin means the rider already holds an active
	// participation in the slot.
	ErrDuplicateJoin = errors.New("already joined")

	// ErrSelfJoinForbidden means the slot's creator attempted to join
	// their own slot.
	ErrSelfJoinForbidden = errors.New("creator cannot join own slot")

	// ErrScheduleConflict means the rider already holds an active
	// participation at the same ride time in another live slot.
	ErrScheduleConflict = errors.New("rider already booked at this time")

	// ErrQueueEmpty means no vehicle is waiting for assignment.
	ErrQueueEmpty = errors.New("vehicle queue is empty")

	// ErrConflict means an atomic commit failed because of concurrent
	// modification; the caller may retry the whole operation.
	ErrConflict = errors.New("concurrent modification")
)

// ValidationError reports malformed or out-of-range input, such as a
// ride time in the past.  The message names the offending field.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func validationf(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// InvalidTransitionError is returned when a slot status change is not
// permitted by the transition table.  It names the attempted pair so
// callers can report exactly what was rejected.
type InvalidTransitionError struct {
	From model.SlotStatus
	To   model.SlotStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid slot status transition: %s -> %s", e.From, e.To)
}
