package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/Advaitgaur004/Urban-ride-server/internal/model"
)

// VehicleRepo persists vehicles.  Status changes run through the Tx
// variants so the queue manager and state machine can bundle them with
// their companion mutations.
type VehicleRepo struct{ DB *sql.DB }

func NewVehicleRepo(db *sql.DB) *VehicleRepo { return &VehicleRepo{DB: db} }

const vehicleCols = `id, driver_id, license_plate, status, created_at, updated_at`

// CreateTx inserts a vehicle and returns its generated ID.  A duplicate
// license plate is reported as ErrPlateExists.
func (r *VehicleRepo) CreateTx(ctx context.Context, tx *sql.Tx, driverID uint64, plate string, status model.VehicleStatus) (uint64, error) {
	res, err := tx.ExecContext(ctx,
		"INSERT INTO vehicles (driver_id, license_plate, status) VALUES (?,?,?)",
		driverID, strings.ToUpper(strings.TrimSpace(plate)), string(status))
	if err != nil {
		if strings.Contains(err.Error(), "1062") {
			return 0, ErrPlateExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

func scanVehicle(row *sql.Row) (model.Vehicle, error) {
	var v model.Vehicle
	err := row.Scan(&v.ID, &v.DriverID, &v.LicensePlate, &v.Status, &v.CreatedAt, &v.UpdatedAt)
	return v, err
}

// GetByID fetches a vehicle by id.
func (r *VehicleRepo) GetByID(ctx context.Context, id uint64) (model.Vehicle, error) {
	return scanVehicle(r.DB.QueryRowContext(ctx,
		"SELECT "+vehicleCols+" FROM vehicles WHERE id=? LIMIT 1", id))
}

// GetByIDTx is GetByID inside an existing transaction.
func (r *VehicleRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Vehicle, error) {
	return scanVehicle(tx.QueryRowContext(ctx,
		"SELECT "+vehicleCols+" FROM vehicles WHERE id=? LIMIT 1", id))
}

// GetByIDForUpdateTx locks the vehicle row for the rest of the
// transaction, so a concurrent enqueue or assignment blocks until this
// one commits.
func (r *VehicleRepo) GetByIDForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Vehicle, error) {
	return scanVehicle(tx.QueryRowContext(ctx,
		"SELECT "+vehicleCols+" FROM vehicles WHERE id=? LIMIT 1 FOR UPDATE", id))
}

// UpdateStatusTx writes a new vehicle status.  Returns sql.ErrNoRows
// when the vehicle does not exist.
func (r *VehicleRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status model.VehicleStatus) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE vehicles SET status=? WHERE id=?", string(status), id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// RowsAffected is also 0 when the status already matches; look
		// the row up to tell the two cases apart.
		if _, lookupErr := r.GetByIDTx(ctx, tx, id); lookupErr != nil {
			return lookupErr
		}
	}
	return nil
}

// ListByDriver returns a driver's vehicles ordered by id.
func (r *VehicleRepo) ListByDriver(ctx context.Context, driverID uint64) ([]model.Vehicle, error) {
	return r.list(ctx, "SELECT "+vehicleCols+" FROM vehicles WHERE driver_id=? ORDER BY id", driverID)
}

// List returns all vehicles ordered by id.
func (r *VehicleRepo) List(ctx context.Context) ([]model.Vehicle, error) {
	return r.list(ctx, "SELECT "+vehicleCols+" FROM vehicles ORDER BY id")
}

func (r *VehicleRepo) list(ctx context.Context, q string, args ...interface{}) ([]model.Vehicle, error) {
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	vehicles := make([]model.Vehicle, 0)
	for rows.Next() {
		var v model.Vehicle
		if err := rows.Scan(&v.ID, &v.DriverID, &v.LicensePlate, &v.Status, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, err
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, rows.Err()
}
