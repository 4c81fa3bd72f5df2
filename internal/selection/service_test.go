package selection

import (
	"context"
	"testing"

	"github.com/wonderpark/storefront/internal/domain"
)

func TestServiceSelectRide(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	rec, err := svc.SelectRide(ctx, "sid-1", "1")
	if err != nil {
		t.Fatalf("SelectRide: %v", err)
	}
	if len(rec.Selection.RideIDs) != 1 {
		t.Fatalf("RideIDs = %v, want one entry", rec.Selection.RideIDs)
	}

	// Selecting again is a no-op, not a duplicate.
	rec, err = svc.SelectRide(ctx, "sid-1", "1")
	if err != nil {
		t.Fatalf("SelectRide: %v", err)
	}
	if len(rec.Selection.RideIDs) != 1 {
		t.Errorf("RideIDs = %v, want still one entry", rec.Selection.RideIDs)
	}

	rec, err = svc.SelectRide(ctx, "sid-1", "3")
	if err != nil {
		t.Fatalf("SelectRide: %v", err)
	}
	if len(rec.Selection.RideIDs) != 2 {
		t.Errorf("RideIDs = %v, want two entries", rec.Selection.RideIDs)
	}
}

func TestServiceDeselectRide(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	if _, err := svc.SelectRide(ctx, "sid-1", "1"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.SelectRide(ctx, "sid-1", "3"); err != nil {
		t.Fatal(err)
	}

	rec, err := svc.DeselectRide(ctx, "sid-1", "1")
	if err != nil {
		t.Fatalf("DeselectRide: %v", err)
	}
	if len(rec.Selection.RideIDs) != 1 || rec.Selection.RideIDs[0] != "3" {
		t.Errorf("RideIDs = %v, want [3]", rec.Selection.RideIDs)
	}

	// Removing an unselected ride is a no-op.
	rec, err = svc.DeselectRide(ctx, "sid-1", "999")
	if err != nil {
		t.Fatalf("DeselectRide: %v", err)
	}
	if len(rec.Selection.RideIDs) != 1 {
		t.Errorf("RideIDs = %v, want [3]", rec.Selection.RideIDs)
	}
}

func TestServiceAdjustTier(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	steps := []struct {
		name   string
		tierID string
		delta  int
		want   int
	}{
		{"increment from zero", "silver", 1, 1},
		{"increment again", "silver", 1, 2},
		{"decrement", "silver", -1, 1},
		{"decrement to zero", "silver", -1, 0},
		{"decrement clamps at zero", "silver", -1, 0},
		{"decrement unknown tier clamps at zero", "gold", -1, 0},
		{"bulk increment", "diamond", 3, 3},
	}

	for _, st := range steps {
		rec, err := svc.AdjustTier(ctx, "sid-1", st.tierID, st.delta)
		if err != nil {
			t.Fatalf("%s: %v", st.name, err)
		}
		if got := rec.Selection.TierQuantities[st.tierID]; got != st.want {
			t.Errorf("%s: quantity = %d, want %d", st.name, got, st.want)
		}
	}

	// Zero-quantity tiers are dropped from the map entirely.
	rec, err := svc.Get(ctx, "sid-1")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := rec.Selection.TierQuantities["silver"]; ok {
		t.Error("silver should be absent after returning to zero")
	}
	if _, ok := rec.Selection.TierQuantities["gold"]; ok {
		t.Error("gold should never have been stored")
	}
}

func TestServiceSetContactAndReset(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	contact := domain.PersonalInfo{Name: "Visitor", Email: "v@park.test", Phone: "0812345678"}
	if _, err := svc.SetContact(ctx, "sid-1", contact); err != nil {
		t.Fatalf("SetContact: %v", err)
	}
	if _, err := svc.AdjustTier(ctx, "sid-1", "gold", 2); err != nil {
		t.Fatal(err)
	}

	rec, err := svc.Get(ctx, "sid-1")
	if err != nil {
		t.Fatal(err)
	}
	if rec.Contact != contact {
		t.Errorf("Contact = %+v, want %+v", rec.Contact, contact)
	}

	if err := svc.Reset(ctx, "sid-1"); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	rec, err = svc.Get(ctx, "sid-1")
	if err != nil {
		t.Fatal(err)
	}
	if !rec.Selection.Empty() {
		t.Errorf("Selection = %+v, want empty after reset", rec.Selection)
	}
	if !rec.Contact.Empty() {
		t.Errorf("Contact = %+v, want empty after reset", rec.Contact)
	}
}

func TestServiceSessionsAreIsolated(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	if _, err := svc.SelectRide(ctx, "sid-1", "1"); err != nil {
		t.Fatal(err)
	}

	rec, err := svc.Get(ctx, "sid-2")
	if err != nil {
		t.Fatal(err)
	}
	if !rec.Selection.Empty() {
		t.Errorf("sid-2 selection = %+v, want empty", rec.Selection)
	}
}
