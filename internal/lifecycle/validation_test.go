package lifecycle

import (
	"context"
	"errors"
	"testing"
	"time"
)

// Input validation runs before any database access, so a nil-DB
// service is enough to exercise it.
func TestCreateSlotValidation(t *testing.T) {
	svc := NewService(nil)
	future := time.Now().Add(time.Hour)

	cases := []struct {
		name string
		in   CreateSlotInput
	}{
		{"zero capacity", CreateSlotInput{CreatorID: 1, MaxCapacity: 0, FareCents: 100, RideTime: future, StartLoc: "IITJ", DestLoc: "Paota"}},
		{"zero fare", CreateSlotInput{CreatorID: 1, MaxCapacity: 2, FareCents: 0, RideTime: future, StartLoc: "IITJ", DestLoc: "Paota"}},
		{"past ride time", CreateSlotInput{CreatorID: 1, MaxCapacity: 2, FareCents: 100, RideTime: time.Now().Add(-time.Minute), StartLoc: "IITJ", DestLoc: "Paota"}},
		{"unknown start", CreateSlotInput{CreatorID: 1, MaxCapacity: 2, FareCents: 100, RideTime: future, StartLoc: "Nowhere", DestLoc: "Paota"}},
		{"unknown dest", CreateSlotInput{CreatorID: 1, MaxCapacity: 2, FareCents: 100, RideTime: future, StartLoc: "IITJ", DestLoc: "Nowhere"}},
		{"same start and dest", CreateSlotInput{CreatorID: 1, MaxCapacity: 2, FareCents: 100, RideTime: future, StartLoc: "IITJ", DestLoc: "IITJ"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := svc.CreateSlot(context.Background(), c.in)
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("error = %v, want *ValidationError", err)
			}
		})
	}
}

func TestJoinRejectsNegativeFee(t *testing.T) {
	svc := NewService(nil)
	_, err := svc.Join(context.Background(), 1, 2, -1)
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("error = %v, want *ValidationError", err)
	}
}
