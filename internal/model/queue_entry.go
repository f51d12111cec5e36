package model

import "time"

// QueueEntry is a row in the `vehicle_queue` table: one waiting
// vehicle, timestamped at insertion.  Ordering is FIFO by CreatedAt
// (id breaks ties).  A unique constraint on VehicleID guarantees a
// vehicle appears in the queue at most once.  The row is deleted in
// the same transaction that assigns the vehicle to a new slot.
type QueueEntry struct {
	ID        uint64    // vehicle_queue.id
	VehicleID uint64    // vehicle_queue.vehicle_id
	CreatedAt time.Time // vehicle_queue.created_at
}
