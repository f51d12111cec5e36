package model

import "time"

// SlotStatus is the lifecycle state of a ride slot.  PENDING_DRIVER is
// the initial state; CANCELLED and FINALIZED are terminal.  Transitions
// between states are governed by the lifecycle state machine, not by
// handlers.
type SlotStatus string

const (
	SlotPendingDriver SlotStatus = "PENDING_DRIVER"
	SlotOpen          SlotStatus = "OPEN"
	SlotBooked        SlotStatus = "BOOKED"
	SlotCancelled     SlotStatus = "CANCELLED"
	SlotFinalized     SlotStatus = "FINALIZED"
)

// Locations is the fixed set of pickup/drop-off tags a slot may use.
var Locations = map[string]bool{
	"IITJ":       true,
	"NIFTJ":      true,
	"Paota":      true,
	"Ratanada":   true,
	"Sardarpura": true,
}

// RideSlot represents a time-boxed shared ride bound to one vehicle
// and one fare, as stored in the `ride_slots` table.  The creator owns
// the slot for display purposes but the slot is mutated by the state
// machine on behalf of drivers and admission logic.
//
// Fields:
//  ID              – primary key identifier.
//  VehicleID       – assigned vehicle.
//  CreatorID       – rider who created the slot.
//  MaxCapacity     – capacity bound, always >= 1.
//  CurrentCapacity – occupied seats; starts at 1 (the creator) and is
//                    only ever incremented by admissions, never past
//                    MaxCapacity.
//  FareCents       – shared fare in cents.
//  Status          – lifecycle state, see SlotStatus.
//  RideTime        – scheduled departure; strictly future at creation.
//  StartLoc        – origin location tag.
//  DestLoc         – destination location tag.
//  CreatedAt       – creation timestamp.
//  UpdatedAt       – last update timestamp.
type RideSlot struct {
	ID              uint64     // ride_slots.id
	VehicleID       uint64     // ride_slots.vehicle_id
	CreatorID       uint64     // ride_slots.creator_id
	MaxCapacity     uint32     // ride_slots.max_capacity
	CurrentCapacity uint32     // ride_slots.current_capacity
	FareCents       int64      // ride_slots.fare_cents
	Status          SlotStatus // ride_slots.status
	RideTime        time.Time  // ride_slots.ride_time
	StartLoc        string     // ride_slots.start_loc
	DestLoc         string     // ride_slots.dest_loc
	CreatedAt       time.Time  // ride_slots.created_at
	UpdatedAt       time.Time  // ride_slots.updated_at
}
