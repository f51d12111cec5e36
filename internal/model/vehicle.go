package model

import "time"

// VehicleStatus tracks where a vehicle sits in the assignment cycle.
// AVAILABLE vehicles may be enqueued, QUEUED vehicles are waiting for
// (or bound to) a slot that has not been accepted yet, and BOOKED
// vehicles are committed to an accepted slot.
type VehicleStatus string

const (
	VehicleAvailable VehicleStatus = "AVAILABLE"
	VehicleBooked    VehicleStatus = "BOOKED"
	VehicleQueued    VehicleStatus = "QUEUED"
)

// Vehicle represents a row in the `vehicles` table.  A vehicle belongs
// to one driver and is referenced by the ride slots it has served.
// Its status is mutated only by the queue manager and the slot state
// machine, never directly by handlers.
//
// Fields:
//  ID           – primary key identifier.
//  DriverID     – user ID of the operating driver.
//  LicensePlate – unique plate identifier.
//  Status       – AVAILABLE, BOOKED or QUEUED.
//  CreatedAt    – creation timestamp.
//  UpdatedAt    – last update timestamp.
type Vehicle struct {
	ID           uint64        // vehicles.id
	DriverID     uint64        // vehicles.driver_id
	LicensePlate string        // vehicles.license_plate
	Status       VehicleStatus // vehicles.status
	CreatedAt    time.Time     // vehicles.created_at
	UpdatedAt    time.Time     // vehicles.updated_at
}
