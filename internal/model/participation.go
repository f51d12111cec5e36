package model

import "time"

// ParticipationStatus tracks a rider's membership in a slot.  Only
// JOINED counts as active for capacity, uniqueness and schedule
// conflict checks.
type ParticipationStatus string

const (
	ParticipationJoined    ParticipationStatus = "JOINED"
	ParticipationRemoved   ParticipationStatus = "REMOVED"
	ParticipationCancelled ParticipationStatus = "CANCELLED"
)

// Participation records a rider's membership in a ride slot, as stored
// in the `slot_participants` table.  At most one active participation
// exists per (slot, rider) pair; the slot's creator never holds one on
// their own slot.
//
// Fields:
//  ID                  – primary key identifier.
//  SlotID              – the slot joined.
//  UserID              – the joining rider.
//  Status              – JOINED, REMOVED or CANCELLED.
//  ConvenienceFeeCents – per-rider charge collected on joining.
//  Paid                – whether the convenience fee has been paid.
//  JoinedAt            – creation timestamp.
type Participation struct {
	ID                  uint64              // slot_participants.id
	SlotID              uint64              // slot_participants.slot_id
	UserID              uint64              // slot_participants.user_id
	Status              ParticipationStatus // slot_participants.status
	ConvenienceFeeCents int64               // slot_participants.convenience_fee_cents
	Paid                bool                // slot_participants.paid
	JoinedAt            time.Time           // slot_participants.joined_at
}
