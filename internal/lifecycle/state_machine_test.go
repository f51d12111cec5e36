package lifecycle

import (
	"errors"
	"testing"

	"github.com/Advaitgaur004/Urban-ride-server/internal/model"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		name string
		from model.SlotStatus
		to   model.SlotStatus
		want bool
	}{
		{"pending to open", model.SlotPendingDriver, model.SlotOpen, true},
		{"pending to cancelled", model.SlotPendingDriver, model.SlotCancelled, true},
		{"pending to finalized", model.SlotPendingDriver, model.SlotFinalized, false},
		{"pending to booked", model.SlotPendingDriver, model.SlotBooked, false},
		{"open to booked", model.SlotOpen, model.SlotBooked, true},
		{"open to cancelled", model.SlotOpen, model.SlotCancelled, true},
		{"open to finalized", model.SlotOpen, model.SlotFinalized, true},
		{"open to pending", model.SlotOpen, model.SlotPendingDriver, false},
		{"booked to finalized", model.SlotBooked, model.SlotFinalized, true},
		{"booked to cancelled", model.SlotBooked, model.SlotCancelled, false},
		{"cancelled is terminal", model.SlotCancelled, model.SlotOpen, false},
		{"finalized is terminal", model.SlotFinalized, model.SlotCancelled, false},
		{"no self loop", model.SlotOpen, model.SlotOpen, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := CanTransition(c.from, c.to); got != c.want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", c.from, c.to, got, c.want)
			}
		})
	}
}

func TestTransitionMutatesOnSuccess(t *testing.T) {
	slot := &model.RideSlot{Status: model.SlotPendingDriver}
	if err := Transition(slot, model.SlotOpen); err != nil {
		t.Fatalf("Transition returned error: %v", err)
	}
	if slot.Status != model.SlotOpen {
		t.Fatalf("slot status = %s, want %s", slot.Status, model.SlotOpen)
	}
}

func TestTransitionRejectsAndNamesPair(t *testing.T) {
	slot := &model.RideSlot{Status: model.SlotFinalized}
	err := Transition(slot, model.SlotCancelled)
	if err == nil {
		t.Fatal("expected error for finalized -> cancelled")
	}
	var tErr *InvalidTransitionError
	if !errors.As(err, &tErr) {
		t.Fatalf("error type = %T, want *InvalidTransitionError", err)
	}
	if tErr.From != model.SlotFinalized || tErr.To != model.SlotCancelled {
		t.Errorf("pair = %s -> %s, want FINALIZED -> CANCELLED", tErr.From, tErr.To)
	}
	if slot.Status != model.SlotFinalized {
		t.Errorf("slot status changed on rejected transition: %s", slot.Status)
	}
}
