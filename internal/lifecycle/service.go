package lifecycle

import (
	"context"
	"database/sql"
	"time"

	"github.com/Advaitgaur004/Urban-ride-server/internal/model"
	"github.com/Advaitgaur004/Urban-ride-server/internal/repository"
)

// Service is the ride-slot lifecycle engine.  It owns every mutation
// of vehicles, the queue, slots and participations; handlers call into
// it and translate the returned values or sentinel errors to HTTP.
// Each operation opens its own transaction so multi-entity mutations
// commit or roll back as one unit.
type Service struct {
	db             *sql.DB
	users          *repository.UserRepo
	vehicles       *repository.VehicleRepo
	queue          *repository.QueueRepo
	slots          *repository.SlotRepo
	participations *repository.ParticipationRepo
}

// NewService wires the engine over one database handle.
func NewService(db *sql.DB) *Service {
	return &Service{
		db:             db,
		users:          repository.NewUserRepo(db),
		vehicles:       repository.NewVehicleRepo(db),
		queue:          repository.NewQueueRepo(db),
		slots:          repository.NewSlotRepo(db),
		participations: repository.NewParticipationRepo(db),
	}
}

// begin opens a transaction.  Callers pair it with a deferred rollback
// that is disarmed by setting committed after Commit succeeds.
func (s *Service) begin(ctx context.Context) (*sql.Tx, error) {
	return s.db.BeginTx(ctx, nil)
}

// commit translates commit failures into ErrConflict: under
// contention the driver may refuse the commit, and the caller is
// expected to retry the whole operation.
func commit(tx *sql.Tx) error {
	if err := tx.Commit(); err != nil {
		return ErrConflict
	}
	return nil
}

// RegisterVehicle creates a vehicle for a driver and enqueues it in
// the same transaction, so a freshly registered vehicle is immediately
// eligible for slot assignment.
func (s *Service) RegisterVehicle(ctx context.Context, driverID uint64, plate string) (model.Vehicle, error) {
	if plate == "" {
		return model.Vehicle{}, validationf("license_plate is required")
	}
	driver, err := s.users.GetByID(ctx, driverID)
	if err == sql.ErrNoRows {
		return model.Vehicle{}, ErrNotFound
	}
	if err != nil {
		return model.Vehicle{}, err
	}
	if driver.Role != model.RoleDriver {
		return model.Vehicle{}, ErrInvalidRole
	}

	tx, err := s.begin(ctx)
	if err != nil {
		return model.Vehicle{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	id, err := s.vehicles.CreateTx(ctx, tx, driverID, plate, model.VehicleQueued)
	if err != nil {
		return model.Vehicle{}, err
	}
	if _, err := s.queue.InsertTx(ctx, tx, id); err != nil {
		return model.Vehicle{}, err
	}
	if err := commit(tx); err != nil {
		return model.Vehicle{}, err
	}
	committed = true
	return s.vehicles.GetByID(ctx, id)
}

// EnqueueVehicle appends an AVAILABLE vehicle to the waiting queue and
// marks it QUEUED.  Only the owning driver may enqueue a vehicle.
func (s *Service) EnqueueVehicle(ctx context.Context, driverID, vehicleID uint64) error {
	tx, err := s.begin(ctx)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	v, err := s.vehicles.GetByIDForUpdateTx(ctx, tx, vehicleID)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if v.DriverID != driverID {
		return repository.ErrForbidden
	}
	if v.Status != model.VehicleAvailable {
		return ErrInvalidState
	}
	if _, err := s.queue.InsertTx(ctx, tx, vehicleID); err != nil {
		return err
	}
	if err := s.vehicles.UpdateStatusTx(ctx, tx, vehicleID, model.VehicleQueued); err != nil {
		return err
	}
	if err := commit(tx); err != nil {
		return err
	}
	committed = true
	return nil
}

// CreateSlotInput is the typed input for CreateSlot.
type CreateSlotInput struct {
	CreatorID   uint64
	MaxCapacity uint32
	FareCents   int64
	RideTime    time.Time
	StartLoc    string
	DestLoc     string
}

// CreateSlot atomically dequeues the oldest queued vehicle and creates
// a PENDING_DRIVER slot bound to it with current_capacity = 1 (the
// creator).  The vehicle stays QUEUED until a driver accepts; the
// queue entry is deleted in the same transaction so two concurrent
// creations can never claim the same vehicle.
func (s *Service) CreateSlot(ctx context.Context, in CreateSlotInput) (model.RideSlot, error) {
	if in.MaxCapacity < 1 {
		return model.RideSlot{}, validationf("max_capacity must be at least 1")
	}
	if in.FareCents <= 0 {
		return model.RideSlot{}, validationf("fare_cents must be positive")
	}
	if !in.RideTime.After(time.Now()) {
		return model.RideSlot{}, validationf("ride_time must be in the future")
	}
	if !model.Locations[in.StartLoc] {
		return model.RideSlot{}, validationf("unknown start_loc %q", in.StartLoc)
	}
	if !model.Locations[in.DestLoc] {
		return model.RideSlot{}, validationf("unknown dest_loc %q", in.DestLoc)
	}
	if in.StartLoc == in.DestLoc {
		return model.RideSlot{}, validationf("start_loc and dest_loc must differ")
	}
	creator, err := s.users.GetByID(ctx, in.CreatorID)
	if err == sql.ErrNoRows {
		return model.RideSlot{}, validationf("creator does not exist")
	}
	if err != nil {
		return model.RideSlot{}, err
	}
	if creator.Role != model.RoleCustomer {
		return model.RideSlot{}, ErrInvalidRole
	}

	tx, err := s.begin(ctx)
	if err != nil {
		return model.RideSlot{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	entry, err := s.queue.OldestForUpdateTx(ctx, tx)
	if err == sql.ErrNoRows {
		return model.RideSlot{}, ErrQueueEmpty
	}
	if err != nil {
		return model.RideSlot{}, err
	}

	slot := model.RideSlot{
		VehicleID:       entry.VehicleID,
		CreatorID:       in.CreatorID,
		MaxCapacity:     in.MaxCapacity,
		CurrentCapacity: 1,
		FareCents:       in.FareCents,
		Status:          model.SlotPendingDriver,
		RideTime:        in.RideTime,
		StartLoc:        in.StartLoc,
		DestLoc:         in.DestLoc,
	}
	id, err := s.slots.CreateTx(ctx, tx, &slot)
	if err != nil {
		return model.RideSlot{}, err
	}
	if err := s.queue.DeleteTx(ctx, tx, entry.ID); err != nil {
		if err == sql.ErrNoRows {
			return model.RideSlot{}, ErrConflict
		}
		return model.RideSlot{}, err
	}
	if err := commit(tx); err != nil {
		return model.RideSlot{}, err
	}
	committed = true
	return s.slots.GetByID(ctx, id)
}

// AcceptSlot moves a PENDING_DRIVER slot to OPEN and its vehicle to
// BOOKED, atomically.  Only the driver owning the assigned vehicle may
// accept.  A second accept on the same slot fails with ErrInvalidState.
func (s *Service) AcceptSlot(ctx context.Context, driverID, slotID uint64) (model.RideSlot, error) {
	tx, err := s.begin(ctx)
	if err != nil {
		return model.RideSlot{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	slot, err := s.slots.GetByIDForUpdateTx(ctx, tx, slotID)
	if err == sql.ErrNoRows {
		return model.RideSlot{}, ErrNotFound
	}
	if err != nil {
		return model.RideSlot{}, err
	}
	v, err := s.vehicles.GetByIDForUpdateTx(ctx, tx, slot.VehicleID)
	if err != nil {
		return model.RideSlot{}, err
	}
	if v.DriverID != driverID {
		return model.RideSlot{}, repository.ErrForbidden
	}
	if slot.Status != model.SlotPendingDriver {
		return model.RideSlot{}, ErrInvalidState
	}
	if err := Transition(&slot, model.SlotOpen); err != nil {
		return model.RideSlot{}, err
	}
	if err := s.slots.UpdateStatusTx(ctx, tx, slot.ID, slot.Status); err != nil {
		return model.RideSlot{}, err
	}
	if err := s.vehicles.UpdateStatusTx(ctx, tx, v.ID, model.VehicleBooked); err != nil {
		return model.RideSlot{}, err
	}
	if err := commit(tx); err != nil {
		return model.RideSlot{}, err
	}
	committed = true
	return slot, nil
}

// FinalizeSlot moves a slot to FINALIZED per the transition table and
// releases the vehicle back to AVAILABLE.  Only the slot's creator may
// finalize.
func (s *Service) FinalizeSlot(ctx context.Context, userID, slotID uint64) (model.RideSlot, error) {
	return s.close(ctx, userID, slotID, model.SlotFinalized)
}

// CancelSlot moves a slot to CANCELLED per the transition table and
// releases the vehicle back to AVAILABLE.  Only the slot's creator may
// cancel.
func (s *Service) CancelSlot(ctx context.Context, userID, slotID uint64) (model.RideSlot, error) {
	return s.close(ctx, userID, slotID, model.SlotCancelled)
}

// close is the shared finalize/cancel path.  A disallowed move is
// rejected by the transition table with the exact from/to pair.
func (s *Service) close(ctx context.Context, userID, slotID uint64, to model.SlotStatus) (model.RideSlot, error) {
	tx, err := s.begin(ctx)
	if err != nil {
		return model.RideSlot{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	slot, err := s.slots.GetByIDForUpdateTx(ctx, tx, slotID)
	if err == sql.ErrNoRows {
		return model.RideSlot{}, ErrNotFound
	}
	if err != nil {
		return model.RideSlot{}, err
	}
	if slot.CreatorID != userID {
		return model.RideSlot{}, repository.ErrForbidden
	}
	if err := Transition(&slot, to); err != nil {
		return model.RideSlot{}, err
	}
	if err := s.slots.UpdateStatusTx(ctx, tx, slot.ID, slot.Status); err != nil {
		return model.RideSlot{}, err
	}
	// The vehicle served (or was reserved for) this slot; a terminal
	// slot state frees it for a fresh enqueue.
	if err := s.vehicles.UpdateStatusTx(ctx, tx, slot.VehicleID, model.VehicleAvailable); err != nil {
		return model.RideSlot{}, err
	}
	if err := commit(tx); err != nil {
		return model.RideSlot{}, err
	}
	committed = true
	return slot, nil
}

// Join admits a rider into a slot.  The preconditions run in a fixed
// order, each with its own failure, all inside one transaction that
// also holds the slot row lock:
//
//  1. slot exists                               -> ErrNotFound
//  2. slot is OPEN                              -> ErrInvalidState
//  3. a seat remains                            -> ErrSlotFull
//  4. rider exists and has the rider role       -> ErrNotFound / ErrInvalidRole
//  5. no active participation for (slot, rider) -> ErrDuplicateJoin
//  6. rider is not the slot's creator           -> ErrSelfJoinForbidden
//  7. no other live slot at the same ride time  -> ErrScheduleConflict
//
// On success the participation insert and the guarded capacity
// increment commit together, so two concurrent joins against the last
// seat can never both succeed.
func (s *Service) Join(ctx context.Context, slotID, riderID uint64, feeCents int64) (model.Participation, error) {
	if feeCents < 0 {
		return model.Participation{}, validationf("convenience_fee_cents must not be negative")
	}

	tx, err := s.begin(ctx)
	if err != nil {
		return model.Participation{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	slot, err := s.slots.GetByIDForUpdateTx(ctx, tx, slotID)
	if err == sql.ErrNoRows {
		return model.Participation{}, ErrNotFound
	}
	if err != nil {
		return model.Participation{}, err
	}
	if slot.Status != model.SlotOpen {
		return model.Participation{}, ErrInvalidState
	}
	if slot.CurrentCapacity >= slot.MaxCapacity {
		return model.Participation{}, ErrSlotFull
	}
	rider, err := s.users.GetByIDTx(ctx, tx, riderID)
	if err == sql.ErrNoRows {
		return model.Participation{}, ErrNotFound
	}
	if err != nil {
		return model.Participation{}, err
	}
	if rider.Role != model.RoleCustomer {
		return model.Participation{}, ErrInvalidRole
	}
	joined, err := s.participations.ExistsActiveTx(ctx, tx, slot.ID, riderID)
	if err != nil {
		return model.Participation{}, err
	}
	if joined {
		return model.Participation{}, ErrDuplicateJoin
	}
	if riderID == slot.CreatorID {
		return model.Participation{}, ErrSelfJoinForbidden
	}
	busy, err := s.participations.HasActiveAtTimeTx(ctx, tx, riderID, slot.RideTime, slot.ID)
	if err != nil {
		return model.Participation{}, err
	}
	if busy {
		return model.Participation{}, ErrScheduleConflict
	}

	id, err := s.participations.CreateTx(ctx, tx, slot.ID, riderID, feeCents)
	if err != nil {
		return model.Participation{}, err
	}
	bumped, err := s.slots.IncrementCapacityTx(ctx, tx, slot.ID)
	if err != nil {
		return model.Participation{}, err
	}
	if !bumped {
		// The guarded UPDATE found no seat even though the locked read
		// saw one; a concurrent writer got there first.
		return model.Participation{}, ErrConflict
	}
	if err := commit(tx); err != nil {
		return model.Participation{}, err
	}
	committed = true
	return s.participations.GetByID(ctx, id)
}
