package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/Advaitgaur004/Urban-ride-server/internal/model"
)

// QueueRepo persists the vehicle waiting queue.  All mutations are Tx
// variants: an enqueue pairs with a vehicle status change, a dequeue
// pairs with slot creation.
type QueueRepo struct{ DB *sql.DB }

func NewQueueRepo(db *sql.DB) *QueueRepo { return &QueueRepo{DB: db} }

// InsertTx appends a vehicle to the queue.  The unique vehicle_id index
// rejects a second entry for the same vehicle, reported as
// ErrAlreadyQueued.
func (r *QueueRepo) InsertTx(ctx context.Context, tx *sql.Tx, vehicleID uint64) (uint64, error) {
	res, err := tx.ExecContext(ctx,
		"INSERT INTO vehicle_queue (vehicle_id) VALUES (?)", vehicleID)
	if err != nil {
		if strings.Contains(err.Error(), "1062") {
			return 0, ErrAlreadyQueued
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// OldestForUpdateTx locks and returns the head of the queue: the entry
// with the earliest created_at, id breaking ties.  Returns
// sql.ErrNoRows when the queue is empty.  The lock serializes
// concurrent slot creations on the same head entry.
func (r *QueueRepo) OldestForUpdateTx(ctx context.Context, tx *sql.Tx) (model.QueueEntry, error) {
	var e model.QueueEntry
	err := tx.QueryRowContext(ctx,
		`SELECT id, vehicle_id, created_at
		   FROM vehicle_queue
		  ORDER BY created_at, id
		  LIMIT 1 FOR UPDATE`).
		Scan(&e.ID, &e.VehicleID, &e.CreatedAt)
	return e, err
}

// DeleteTx removes a queue entry by id.  Returns sql.ErrNoRows when the
// entry was already taken by a concurrent transaction.
func (r *QueueRepo) DeleteTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	res, err := tx.ExecContext(ctx, "DELETE FROM vehicle_queue WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// QueuedVehicle is one queue row joined with its vehicle, for the
// admin queue listing.
type QueuedVehicle struct {
	EntryID      uint64
	VehicleID    uint64
	DriverID     uint64
	LicensePlate string
	EnqueuedAt   time.Time
}

// List returns the queue in FIFO order with vehicle details.
func (r *QueueRepo) List(ctx context.Context) ([]QueuedVehicle, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT q.id, q.vehicle_id, v.driver_id, v.license_plate, q.created_at
		   FROM vehicle_queue q
		   JOIN vehicles v ON v.id = q.vehicle_id
		  ORDER BY q.created_at, q.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	entries := make([]QueuedVehicle, 0)
	for rows.Next() {
		var e QueuedVehicle
		if err := rows.Scan(&e.EntryID, &e.VehicleID, &e.DriverID, &e.LicensePlate, &e.EnqueuedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
