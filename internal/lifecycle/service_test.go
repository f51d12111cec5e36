package lifecycle

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/Advaitgaur004/Urban-ride-server/internal/model"
	"github.com/Advaitgaur004/Urban-ride-server/internal/repository"
)

// setupTestService connects to the MySQL instance named by
// URBANRIDE_TEST_DSN, applies the schema and truncates all tables.
// Tests are skipped when the variable is unset so the pure tests still
// run everywhere.
func setupTestService(t *testing.T) (*Service, *sql.DB) {
	t.Helper()
	dsn := os.Getenv("URBANRIDE_TEST_DSN")
	if dsn == "" {
		t.Skip("URBANRIDE_TEST_DSN not set; skipping database tests")
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	schema, err := os.ReadFile(filepath.Join("..", "..", "migrations", "001_init.sql"))
	if err != nil {
		t.Fatalf("read schema: %v", err)
	}
	for _, stmt := range strings.Split(string(schema), ";") {
		var lines []string
		for _, line := range strings.Split(stmt, "\n") {
			if strings.HasPrefix(strings.TrimSpace(line), "--") {
				continue
			}
			lines = append(lines, line)
		}
		stmt = strings.TrimSpace(strings.Join(lines, "\n"))
		if stmt == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("apply schema: %v", err)
		}
	}
	if _, err := db.Exec("SET FOREIGN_KEY_CHECKS=0"); err != nil {
		t.Fatalf("disable fk checks: %v", err)
	}
	for _, table := range []string{"slot_participants", "ride_slots", "vehicle_queue", "vehicles", "refresh_tokens", "users"} {
		if _, err := db.Exec("TRUNCATE TABLE " + table); err != nil {
			t.Fatalf("truncate %s: %v", table, err)
		}
	}
	if _, err := db.Exec("SET FOREIGN_KEY_CHECKS=1"); err != nil {
		t.Fatalf("enable fk checks: %v", err)
	}
	return NewService(db), db
}

func createUser(t *testing.T, db *sql.DB, name string, role model.Role) uint64 {
	t.Helper()
	res, err := db.Exec(
		"INSERT INTO users (username, email, phone, password_hash, role) VALUES (?,?,?,?,?)",
		name, name+"@example.com", "9000000000", "x", string(role))
	if err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	id, _ := res.LastInsertId()
	return uint64(id)
}

func futureRide() time.Time {
	// DATETIME has second precision; truncate so read-back comparisons hold.
	return time.Now().UTC().Add(time.Hour).Truncate(time.Second)
}

func TestRegisterVehicleEnqueues(t *testing.T) {
	svc, db := setupTestService(t)
	ctx := context.Background()
	driver := createUser(t, db, "driver1", model.RoleDriver)

	v, err := svc.RegisterVehicle(ctx, driver, "RJ19 AB 1234")
	if err != nil {
		t.Fatalf("RegisterVehicle: %v", err)
	}
	if v.Status != model.VehicleQueued {
		t.Errorf("vehicle status = %s, want QUEUED", v.Status)
	}
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM vehicle_queue WHERE vehicle_id=?", v.ID).Scan(&n); err != nil || n != 1 {
		t.Errorf("queue entries for vehicle = %d (err=%v), want 1", n, err)
	}

	if _, err := svc.RegisterVehicle(ctx, driver, "RJ19 AB 1234"); !errors.Is(err, repository.ErrPlateExists) {
		t.Errorf("duplicate plate error = %v, want ErrPlateExists", err)
	}
	rider := createUser(t, db, "rider0", model.RoleCustomer)
	if _, err := svc.RegisterVehicle(ctx, rider, "RJ19 XX 0001"); !errors.Is(err, ErrInvalidRole) {
		t.Errorf("rider registering vehicle error = %v, want ErrInvalidRole", err)
	}
}

func TestCreateSlotFailsOnEmptyQueue(t *testing.T) {
	svc, db := setupTestService(t)
	ctx := context.Background()
	rider := createUser(t, db, "rider1", model.RoleCustomer)

	_, err := svc.CreateSlot(ctx, CreateSlotInput{
		CreatorID: rider, MaxCapacity: 2, FareCents: 10000,
		RideTime: futureRide(), StartLoc: "IITJ", DestLoc: "Paota",
	})
	if !errors.Is(err, ErrQueueEmpty) {
		t.Fatalf("error = %v, want ErrQueueEmpty", err)
	}
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM ride_slots").Scan(&n); err != nil || n != 0 {
		t.Errorf("ride_slots count = %d (err=%v), want 0", n, err)
	}
}

func TestSlotLifecycleHappyPath(t *testing.T) {
	svc, db := setupTestService(t)
	ctx := context.Background()
	driver := createUser(t, db, "driver2", model.RoleDriver)
	creator := createUser(t, db, "creator2", model.RoleCustomer)
	rider := createUser(t, db, "rider2", model.RoleCustomer)

	v, err := svc.RegisterVehicle(ctx, driver, "RJ19 CD 0002")
	if err != nil {
		t.Fatalf("RegisterVehicle: %v", err)
	}

	slot, err := svc.CreateSlot(ctx, CreateSlotInput{
		CreatorID: creator, MaxCapacity: 2, FareCents: 20000,
		RideTime: futureRide(), StartLoc: "IITJ", DestLoc: "Ratanada",
	})
	if err != nil {
		t.Fatalf("CreateSlot: %v", err)
	}
	if slot.Status != model.SlotPendingDriver {
		t.Errorf("slot status = %s, want PENDING_DRIVER", slot.Status)
	}
	if slot.CurrentCapacity != 1 {
		t.Errorf("current_capacity = %d, want 1", slot.CurrentCapacity)
	}
	if slot.VehicleID != v.ID {
		t.Errorf("slot vehicle = %d, want %d", slot.VehicleID, v.ID)
	}
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM vehicle_queue").Scan(&n); err != nil || n != 0 {
		t.Errorf("queue length = %d (err=%v), want 0", n, err)
	}

	opened, err := svc.AcceptSlot(ctx, driver, slot.ID)
	if err != nil {
		t.Fatalf("AcceptSlot: %v", err)
	}
	if opened.Status != model.SlotOpen {
		t.Errorf("slot status = %s, want OPEN", opened.Status)
	}
	var vStatus string
	if err := db.QueryRow("SELECT status FROM vehicles WHERE id=?", v.ID).Scan(&vStatus); err != nil || vStatus != "BOOKED" {
		t.Errorf("vehicle status = %s (err=%v), want BOOKED", vStatus, err)
	}

	// Accept is idempotent-rejecting: the second call fails.
	if _, err := svc.AcceptSlot(ctx, driver, slot.ID); !errors.Is(err, ErrInvalidState) {
		t.Errorf("second accept error = %v, want ErrInvalidState", err)
	}

	p, err := svc.Join(ctx, slot.ID, rider, 5000)
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	if p.Status != model.ParticipationJoined || p.Paid {
		t.Errorf("participation = %+v, want JOINED and unpaid", p)
	}
	got, err := svc.slots.GetByID(ctx, slot.ID)
	if err != nil {
		t.Fatalf("reload slot: %v", err)
	}
	if got.CurrentCapacity != 2 {
		t.Errorf("current_capacity = %d, want 2", got.CurrentCapacity)
	}

	// Slot is full now.
	other := createUser(t, db, "rider2b", model.RoleCustomer)
	if _, err := svc.Join(ctx, slot.ID, other, 5000); !errors.Is(err, ErrSlotFull) {
		t.Errorf("join full slot error = %v, want ErrSlotFull", err)
	}

	final, err := svc.FinalizeSlot(ctx, creator, slot.ID)
	if err != nil {
		t.Fatalf("FinalizeSlot: %v", err)
	}
	if final.Status != model.SlotFinalized {
		t.Errorf("slot status = %s, want FINALIZED", final.Status)
	}
	if err := db.QueryRow("SELECT status FROM vehicles WHERE id=?", v.ID).Scan(&vStatus); err != nil || vStatus != "AVAILABLE" {
		t.Errorf("vehicle status after finalize = %s (err=%v), want AVAILABLE", vStatus, err)
	}
}

func TestJoinRejections(t *testing.T) {
	svc, db := setupTestService(t)
	ctx := context.Background()
	driver := createUser(t, db, "driver3", model.RoleDriver)
	creator := createUser(t, db, "creator3", model.RoleCustomer)
	rider := createUser(t, db, "rider3", model.RoleCustomer)

	if _, err := svc.RegisterVehicle(ctx, driver, "RJ19 EF 0003"); err != nil {
		t.Fatalf("RegisterVehicle: %v", err)
	}
	rideTime := futureRide()
	slot, err := svc.CreateSlot(ctx, CreateSlotInput{
		CreatorID: creator, MaxCapacity: 3, FareCents: 15000,
		RideTime: rideTime, StartLoc: "NIFTJ", DestLoc: "Sardarpura",
	})
	if err != nil {
		t.Fatalf("CreateSlot: %v", err)
	}

	// Not OPEN yet.
	if _, err := svc.Join(ctx, slot.ID, rider, 5000); !errors.Is(err, ErrInvalidState) {
		t.Errorf("join pending slot error = %v, want ErrInvalidState", err)
	}
	if _, err := svc.AcceptSlot(ctx, driver, slot.ID); err != nil {
		t.Fatalf("AcceptSlot: %v", err)
	}

	if _, err := svc.Join(ctx, 999999, rider, 5000); !errors.Is(err, ErrNotFound) {
		t.Errorf("join missing slot error = %v, want ErrNotFound", err)
	}
	if _, err := svc.Join(ctx, slot.ID, 999999, 5000); !errors.Is(err, ErrNotFound) {
		t.Errorf("join with missing rider error = %v, want ErrNotFound", err)
	}
	if _, err := svc.Join(ctx, slot.ID, driver, 5000); !errors.Is(err, ErrInvalidRole) {
		t.Errorf("driver joining error = %v, want ErrInvalidRole", err)
	}
	if _, err := svc.Join(ctx, slot.ID, creator, 5000); !errors.Is(err, ErrSelfJoinForbidden) {
		t.Errorf("creator joining own slot error = %v, want ErrSelfJoinForbidden", err)
	}

	if _, err := svc.Join(ctx, slot.ID, rider, 5000); err != nil {
		t.Fatalf("Join: %v", err)
	}
	if _, err := svc.Join(ctx, slot.ID, rider, 5000); !errors.Is(err, ErrDuplicateJoin) {
		t.Errorf("second join error = %v, want ErrDuplicateJoin", err)
	}

	// A second slot at the same ride time conflicts for the same rider.
	driver2 := createUser(t, db, "driver3b", model.RoleDriver)
	creator2 := createUser(t, db, "creator3b", model.RoleCustomer)
	if _, err := svc.RegisterVehicle(ctx, driver2, "RJ19 EF 0103"); err != nil {
		t.Fatalf("RegisterVehicle: %v", err)
	}
	slot2, err := svc.CreateSlot(ctx, CreateSlotInput{
		CreatorID: creator2, MaxCapacity: 3, FareCents: 15000,
		RideTime: rideTime, StartLoc: "IITJ", DestLoc: "Paota",
	})
	if err != nil {
		t.Fatalf("CreateSlot second: %v", err)
	}
	if _, err := svc.AcceptSlot(ctx, driver2, slot2.ID); err != nil {
		t.Fatalf("AcceptSlot second: %v", err)
	}
	if _, err := svc.Join(ctx, slot2.ID, rider, 5000); !errors.Is(err, ErrScheduleConflict) {
		t.Errorf("same-time join error = %v, want ErrScheduleConflict", err)
	}

	// Once the first slot leaves OPEN/PENDING_DRIVER it no longer
	// blocks the rider's schedule.
	if _, err := db.Exec("UPDATE ride_slots SET status=? WHERE id=?", string(model.SlotBooked), slot.ID); err != nil {
		t.Fatalf("mark slot booked: %v", err)
	}
	if _, err := svc.Join(ctx, slot2.ID, rider, 5000); err != nil {
		t.Errorf("join after first slot booked error = %v, want nil", err)
	}
}

func TestCancelTransitions(t *testing.T) {
	svc, db := setupTestService(t)
	ctx := context.Background()
	driver := createUser(t, db, "driver4", model.RoleDriver)
	creator := createUser(t, db, "creator4", model.RoleCustomer)

	if _, err := svc.RegisterVehicle(ctx, driver, "RJ19 GH 0004"); err != nil {
		t.Fatalf("RegisterVehicle: %v", err)
	}
	slot, err := svc.CreateSlot(ctx, CreateSlotInput{
		CreatorID: creator, MaxCapacity: 2, FareCents: 10000,
		RideTime: futureRide(), StartLoc: "Paota", DestLoc: "IITJ",
	})
	if err != nil {
		t.Fatalf("CreateSlot: %v", err)
	}

	// Cancel straight from PENDING_DRIVER works and frees the vehicle.
	cancelled, err := svc.CancelSlot(ctx, creator, slot.ID)
	if err != nil {
		t.Fatalf("CancelSlot: %v", err)
	}
	if cancelled.Status != model.SlotCancelled {
		t.Errorf("slot status = %s, want CANCELLED", cancelled.Status)
	}
	var vStatus string
	if err := db.QueryRow("SELECT status FROM vehicles WHERE id=?", slot.VehicleID).Scan(&vStatus); err != nil || vStatus != "AVAILABLE" {
		t.Errorf("vehicle status = %s (err=%v), want AVAILABLE", vStatus, err)
	}

	// A terminal slot rejects further moves with the exact pair named.
	_, err = svc.CancelSlot(ctx, creator, slot.ID)
	var tErr *InvalidTransitionError
	if !errors.As(err, &tErr) {
		t.Fatalf("cancel of cancelled slot error = %v, want *InvalidTransitionError", err)
	}
	if tErr.From != model.SlotCancelled || tErr.To != model.SlotCancelled {
		t.Errorf("pair = %s -> %s, want CANCELLED -> CANCELLED", tErr.From, tErr.To)
	}
	if _, err := svc.FinalizeSlot(ctx, creator, slot.ID); !errors.As(err, &tErr) {
		t.Errorf("finalize of cancelled slot error = %v, want *InvalidTransitionError", err)
	}
}

func TestConcurrentJoinsNeverOverbook(t *testing.T) {
	svc, db := setupTestService(t)
	ctx := context.Background()
	driver := createUser(t, db, "driver5", model.RoleDriver)
	creator := createUser(t, db, "creator5", model.RoleCustomer)

	if _, err := svc.RegisterVehicle(ctx, driver, "RJ19 IJ 0005"); err != nil {
		t.Fatalf("RegisterVehicle: %v", err)
	}
	// max_capacity 2 with the creator in seat one: exactly one seat left.
	slot, err := svc.CreateSlot(ctx, CreateSlotInput{
		CreatorID: creator, MaxCapacity: 2, FareCents: 10000,
		RideTime: futureRide(), StartLoc: "Ratanada", DestLoc: "NIFTJ",
	})
	if err != nil {
		t.Fatalf("CreateSlot: %v", err)
	}
	if _, err := svc.AcceptSlot(ctx, driver, slot.ID); err != nil {
		t.Fatalf("AcceptSlot: %v", err)
	}

	const riders = 8
	ids := make([]uint64, riders)
	for i := range ids {
		ids[i] = createUser(t, db, fmt.Sprintf("racer5-%d", i), model.RoleCustomer)
	}

	var wg sync.WaitGroup
	errs := make([]error, riders)
	for i := 0; i < riders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Join(ctx, slot.ID, ids[i], 5000)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for i, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		if !errors.Is(err, ErrSlotFull) && !errors.Is(err, ErrConflict) {
			t.Errorf("rider %d unexpected error: %v", i, err)
		}
	}
	if succeeded != 1 {
		t.Errorf("successful joins = %d, want exactly 1", succeeded)
	}

	got, err := svc.slots.GetByID(ctx, slot.ID)
	if err != nil {
		t.Fatalf("reload slot: %v", err)
	}
	if got.CurrentCapacity != got.MaxCapacity {
		t.Errorf("current_capacity = %d, want %d", got.CurrentCapacity, got.MaxCapacity)
	}
	if got.CurrentCapacity > got.MaxCapacity {
		t.Errorf("capacity invariant violated: %d > %d", got.CurrentCapacity, got.MaxCapacity)
	}
}

func TestQueueIsFIFO(t *testing.T) {
	svc, db := setupTestService(t)
	ctx := context.Background()
	driverA := createUser(t, db, "driver7a", model.RoleDriver)
	driverB := createUser(t, db, "driver7b", model.RoleDriver)
	creator := createUser(t, db, "creator7", model.RoleCustomer)

	first, err := svc.RegisterVehicle(ctx, driverA, "RJ19 MN 0007")
	if err != nil {
		t.Fatalf("RegisterVehicle first: %v", err)
	}
	// Force distinct created_at values; the queue orders by time.
	time.Sleep(1100 * time.Millisecond)
	second, err := svc.RegisterVehicle(ctx, driverB, "RJ19 MN 0107")
	if err != nil {
		t.Fatalf("RegisterVehicle second: %v", err)
	}

	slot1, err := svc.CreateSlot(ctx, CreateSlotInput{
		CreatorID: creator, MaxCapacity: 2, FareCents: 10000,
		RideTime: futureRide(), StartLoc: "IITJ", DestLoc: "Paota",
	})
	if err != nil {
		t.Fatalf("CreateSlot first: %v", err)
	}
	if slot1.VehicleID != first.ID {
		t.Errorf("first slot vehicle = %d, want oldest entry %d", slot1.VehicleID, first.ID)
	}
	slot2, err := svc.CreateSlot(ctx, CreateSlotInput{
		CreatorID: creator, MaxCapacity: 2, FareCents: 10000,
		RideTime: futureRide().Add(time.Hour), StartLoc: "IITJ", DestLoc: "Paota",
	})
	if err != nil {
		t.Fatalf("CreateSlot second: %v", err)
	}
	if slot2.VehicleID != second.ID {
		t.Errorf("second slot vehicle = %d, want %d", slot2.VehicleID, second.ID)
	}
}

func TestEnqueueRequiresAvailable(t *testing.T) {
	svc, db := setupTestService(t)
	ctx := context.Background()
	driver := createUser(t, db, "driver6", model.RoleDriver)

	v, err := svc.RegisterVehicle(ctx, driver, "RJ19 KL 0006")
	if err != nil {
		t.Fatalf("RegisterVehicle: %v", err)
	}
	// Fresh registrations are already queued.
	if err := svc.EnqueueVehicle(ctx, driver, v.ID); !errors.Is(err, ErrInvalidState) {
		t.Errorf("enqueue queued vehicle error = %v, want ErrInvalidState", err)
	}

	other := createUser(t, db, "driver6b", model.RoleDriver)
	if err := svc.EnqueueVehicle(ctx, other, v.ID); !errors.Is(err, repository.ErrForbidden) {
		t.Errorf("enqueue someone else's vehicle error = %v, want ErrForbidden", err)
	}

	// After a ride finishes the vehicle is AVAILABLE and re-enqueues.
	creator := createUser(t, db, "creator6", model.RoleCustomer)
	slot, err := svc.CreateSlot(ctx, CreateSlotInput{
		CreatorID: creator, MaxCapacity: 2, FareCents: 10000,
		RideTime: futureRide(), StartLoc: "IITJ", DestLoc: "Sardarpura",
	})
	if err != nil {
		t.Fatalf("CreateSlot: %v", err)
	}
	if _, err := svc.CancelSlot(ctx, creator, slot.ID); err != nil {
		t.Fatalf("CancelSlot: %v", err)
	}
	if err := svc.EnqueueVehicle(ctx, driver, v.ID); err != nil {
		t.Fatalf("re-enqueue after cancel: %v", err)
	}
	if err := svc.EnqueueVehicle(ctx, driver, v.ID); !errors.Is(err, ErrInvalidState) {
		t.Errorf("double enqueue error = %v, want ErrInvalidState", err)
	}
}
