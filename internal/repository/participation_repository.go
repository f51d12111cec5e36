package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/Advaitgaur004/Urban-ride-server/internal/model"
)

// ParticipationRepo persists slot memberships.  The admission checks
// that gate an insert live in the lifecycle package; this layer only
// answers the questions those checks ask.
type ParticipationRepo struct{ DB *sql.DB }

func NewParticipationRepo(db *sql.DB) *ParticipationRepo { return &ParticipationRepo{DB: db} }

const participationCols = `id, slot_id, user_id, status, convenience_fee_cents, paid, joined_at`

// CreateTx inserts a JOINED participation and returns its generated ID.
func (r *ParticipationRepo) CreateTx(ctx context.Context, tx *sql.Tx, slotID, userID uint64, feeCents int64) (uint64, error) {
	res, err := tx.ExecContext(ctx,
		"INSERT INTO slot_participants (slot_id, user_id, status, convenience_fee_cents) VALUES (?,?,?,?)",
		slotID, userID, string(model.ParticipationJoined), feeCents)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// ExistsActiveTx reports whether the user already holds a JOINED
// participation in the slot.
func (r *ParticipationRepo) ExistsActiveTx(ctx context.Context, tx *sql.Tx, slotID, userID uint64) (bool, error) {
	var one int
	err := tx.QueryRowContext(ctx,
		"SELECT 1 FROM slot_participants WHERE slot_id=? AND user_id=? AND status=? LIMIT 1",
		slotID, userID, string(model.ParticipationJoined)).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// HasActiveAtTimeTx reports whether the user holds a JOINED
// participation in another OPEN or PENDING_DRIVER slot scheduled at
// the same ride time.
func (r *ParticipationRepo) HasActiveAtTimeTx(ctx context.Context, tx *sql.Tx, userID uint64, rideTime time.Time, excludeSlotID uint64) (bool, error) {
	var one int
	err := tx.QueryRowContext(ctx,
		`SELECT 1
		   FROM slot_participants sp
		   JOIN ride_slots rs ON rs.id = sp.slot_id
		  WHERE sp.user_id = ?
			AND sp.status = ?
			AND rs.ride_time = ?
			AND rs.id <> ?
			AND rs.status IN (?,?)
		  LIMIT 1`,
		userID, string(model.ParticipationJoined), rideTime, excludeSlotID,
		string(model.SlotPendingDriver), string(model.SlotOpen)).
		Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func scanParticipation(row *sql.Row) (model.Participation, error) {
	var p model.Participation
	err := row.Scan(&p.ID, &p.SlotID, &p.UserID, &p.Status, &p.ConvenienceFeeCents, &p.Paid, &p.JoinedAt)
	return p, err
}

// GetByID fetches a participation by id.
func (r *ParticipationRepo) GetByID(ctx context.Context, id uint64) (model.Participation, error) {
	return scanParticipation(r.DB.QueryRowContext(ctx,
		"SELECT "+participationCols+" FROM slot_participants WHERE id=? LIMIT 1", id))
}

// MarkPaid records payment of the convenience fee.  Returns
// sql.ErrNoRows when the participation does not exist or is already
// paid.
func (r *ParticipationRepo) MarkPaid(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE slot_participants SET paid=1 WHERE id=? AND paid=0", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SlotMember is a participation joined with rider details, for the
// slot detail view.
type SlotMember struct {
	ParticipationID uint64
	UserID          uint64
	Username        string
	Phone           string
	Status          model.ParticipationStatus
	Paid            bool
	JoinedAt        time.Time
}

// ListBySlot returns a slot's members in join order.
func (r *ParticipationRepo) ListBySlot(ctx context.Context, slotID uint64) ([]SlotMember, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT sp.id, sp.user_id, u.username, u.phone, sp.status, sp.paid, sp.joined_at
		   FROM slot_participants sp
		   JOIN users u ON u.id = sp.user_id
		  WHERE sp.slot_id = ?
		  ORDER BY sp.joined_at, sp.id`, slotID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	members := make([]SlotMember, 0)
	for rows.Next() {
		var m SlotMember
		if err := rows.Scan(&m.ParticipationID, &m.UserID, &m.Username, &m.Phone, &m.Status, &m.Paid, &m.JoinedAt); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// UserParticipation is a participation joined with its slot, for the
// rider's "my rides" view.
type UserParticipation struct {
	ParticipationID     uint64
	SlotID              uint64
	SlotStatus          model.SlotStatus
	RideTime            time.Time
	StartLoc            string
	DestLoc             string
	FareCents           int64
	ConvenienceFeeCents int64
	Paid                bool
	Status              model.ParticipationStatus
	JoinedAt            time.Time
}

// ListByUser returns a rider's participations, newest first.
func (r *ParticipationRepo) ListByUser(ctx context.Context, userID uint64) ([]UserParticipation, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT sp.id, rs.id, rs.status, rs.ride_time, rs.start_loc, rs.dest_loc,
				rs.fare_cents, sp.convenience_fee_cents, sp.paid, sp.status, sp.joined_at
		   FROM slot_participants sp
		   JOIN ride_slots rs ON rs.id = sp.slot_id
		  WHERE sp.user_id = ?
		  ORDER BY sp.joined_at DESC, sp.id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]UserParticipation, 0)
	for rows.Next() {
		var p UserParticipation
		if err := rows.Scan(&p.ParticipationID, &p.SlotID, &p.SlotStatus, &p.RideTime, &p.StartLoc,
			&p.DestLoc, &p.FareCents, &p.ConvenienceFeeCents, &p.Paid, &p.Status, &p.JoinedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
