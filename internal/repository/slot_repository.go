package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/Advaitgaur004/Urban-ride-server/internal/model"
)

// SlotRepo persists ride slots.  Capacity and status writes are Tx-only
// because they always travel with other mutations.
type SlotRepo struct{ DB *sql.DB }

func NewSlotRepo(db *sql.DB) *SlotRepo { return &SlotRepo{DB: db} }

const slotCols = `id, vehicle_id, creator_id, max_capacity, current_capacity, fare_cents, status, ride_time, start_loc, dest_loc, created_at, updated_at`

// CreateTx inserts a slot and returns its generated ID.
func (r *SlotRepo) CreateTx(ctx context.Context, tx *sql.Tx, s *model.RideSlot) (uint64, error) {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO ride_slots
			(vehicle_id, creator_id, max_capacity, current_capacity, fare_cents, status, ride_time, start_loc, dest_loc)
		 VALUES (?,?,?,?,?,?,?,?,?)`,
		s.VehicleID, s.CreatorID, s.MaxCapacity, s.CurrentCapacity, s.FareCents,
		string(s.Status), s.RideTime, s.StartLoc, s.DestLoc)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

func scanSlot(row *sql.Row) (model.RideSlot, error) {
	var s model.RideSlot
	err := row.Scan(&s.ID, &s.VehicleID, &s.CreatorID, &s.MaxCapacity, &s.CurrentCapacity,
		&s.FareCents, &s.Status, &s.RideTime, &s.StartLoc, &s.DestLoc, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

// GetByID fetches a slot by id.
func (r *SlotRepo) GetByID(ctx context.Context, id uint64) (model.RideSlot, error) {
	return scanSlot(r.DB.QueryRowContext(ctx,
		"SELECT "+slotCols+" FROM ride_slots WHERE id=? LIMIT 1", id))
}

// GetByIDForUpdateTx locks the slot row for the rest of the
// transaction.  Every lifecycle mutation starts here so concurrent
// operations on one slot serialize on the row lock.
func (r *SlotRepo) GetByIDForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (model.RideSlot, error) {
	return scanSlot(tx.QueryRowContext(ctx,
		"SELECT "+slotCols+" FROM ride_slots WHERE id=? LIMIT 1 FOR UPDATE", id))
}

// UpdateStatusTx writes a new slot status.
func (r *SlotRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status model.SlotStatus) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE ride_slots SET status=? WHERE id=?", string(status), id)
	return err
}

// IncrementCapacityTx bumps current_capacity by one, guarded in SQL so
// it can never exceed max_capacity even under concurrent admissions.
// Reports whether a row was actually updated; false means the slot was
// full (or gone) by the time the write landed.
func (r *SlotRepo) IncrementCapacityTx(ctx context.Context, tx *sql.Tx, id uint64) (bool, error) {
	res, err := tx.ExecContext(ctx,
		"UPDATE ride_slots SET current_capacity = current_capacity + 1 WHERE id=? AND current_capacity < max_capacity",
		id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListFilter narrows the slot listing.  Zero values mean "no filter".
type ListFilter struct {
	Status    model.SlotStatus
	StartLoc  string
	DestLoc   string
	CreatorID uint64
	After     time.Time
}

// List returns slots matching the filter, soonest ride first.
func (r *SlotRepo) List(ctx context.Context, f ListFilter) ([]model.RideSlot, error) {
	q := "SELECT " + slotCols + " FROM ride_slots WHERE 1=1"
	args := []interface{}{}
	if f.Status != "" {
		q += " AND status=?"
		args = append(args, string(f.Status))
	}
	if f.StartLoc != "" {
		q += " AND start_loc=?"
		args = append(args, f.StartLoc)
	}
	if f.DestLoc != "" {
		q += " AND dest_loc=?"
		args = append(args, f.DestLoc)
	}
	if f.CreatorID != 0 {
		q += " AND creator_id=?"
		args = append(args, f.CreatorID)
	}
	if !f.After.IsZero() {
		q += " AND ride_time > ?"
		args = append(args, f.After)
	}
	q += " ORDER BY ride_time, id"
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	slots := make([]model.RideSlot, 0)
	for rows.Next() {
		var s model.RideSlot
		if err := rows.Scan(&s.ID, &s.VehicleID, &s.CreatorID, &s.MaxCapacity, &s.CurrentCapacity,
			&s.FareCents, &s.Status, &s.RideTime, &s.StartLoc, &s.DestLoc, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		slots = append(slots, s)
	}
	return slots, rows.Err()
}
