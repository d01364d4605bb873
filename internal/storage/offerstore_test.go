package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tdenemark/hokieride/internal/models"
)

func offerAt(dir models.Direction, hhmm string) models.RideOffer {
	ts, _ := time.Parse("2006-01-02T15:04", "2025-03-01T"+hhmm)
	return models.RideOffer{
		DriverID:    "d1",
		Direction:   dir,
		ScheduledAt: ts,
		Pickup:      "Dorm A",
		Dropoff:     "Mall B",
		SeatsTotal:  3,
		SeatsLeft:   3,
		Price:       30,
	}
}

func TestMemoryStoreQuerySortedByDeparture(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	if _, err := s.Insert(ctx, offerAt(models.DirectionToCampus, "10:00")); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Insert(ctx, offerAt(models.DirectionToCampus, "09:00")); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Insert(ctx, offerAt(models.DirectionToNOVA, "08:00")); err != nil {
		t.Fatal(err)
	}

	got, err := s.QueryByDirection(ctx, models.DirectionToCampus)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 offers, got %d", len(got))
	}
	if got[0].ScheduledAt.After(got[1].ScheduledAt) {
		t.Fatalf("expected 09:00 first, got %v then %v", got[0].ScheduledAt, got[1].ScheduledAt)
	}
	for _, o := range got {
		if o.Direction != models.DirectionToCampus {
			t.Fatalf("wrong direction in result: %s", o.Direction)
		}
	}
}

func TestMemoryStoreStableOrderForEqualTimes(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	first, _ := s.Insert(ctx, offerAt(models.DirectionToNOVA, "09:00"))
	second, _ := s.Insert(ctx, offerAt(models.DirectionToNOVA, "09:00"))

	got, err := s.QueryByDirection(ctx, models.DirectionToNOVA)
	if err != nil {
		t.Fatal(err)
	}
	if got[0].ID != first.ID || got[1].ID != second.ID {
		t.Fatalf("expected insertion order on ties, got %s then %s", got[0].ID, got[1].ID)
	}
}

func TestMemoryStoreUnknownDirectionMatchesNothing(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	_, _ = s.Insert(ctx, offerAt(models.DirectionToNOVA, "09:00"))
	got, err := s.QueryByDirection(ctx, models.Direction("Sideways"))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty result, got %d", len(got))
	}
}

func TestMemoryStoreReadsAreIdempotent(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	_, _ = s.Insert(ctx, offerAt(models.DirectionToNOVA, "10:00"))
	_, _ = s.Insert(ctx, offerAt(models.DirectionToNOVA, "09:00"))

	a, _ := s.QueryByDirection(ctx, models.DirectionToNOVA)
	b, _ := s.QueryByDirection(ctx, models.DirectionToNOVA)
	if len(a) != len(b) {
		t.Fatalf("result lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].ID != b[i].ID {
			t.Fatalf("order differs at %d: %s vs %s", i, a[i].ID, b[i].ID)
		}
	}
}

func TestMemoryStoreReserveSeats(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	o, _ := s.Insert(ctx, offerAt(models.DirectionToNOVA, "09:00"))

	got, err := s.ReserveSeats(ctx, o.ID, 2)
	if err != nil {
		t.Fatal(err)
	}
	if got.SeatsLeft != 1 {
		t.Fatalf("expected 1 seat left, got %d", got.SeatsLeft)
	}

	if _, err := s.ReserveSeats(ctx, o.ID, 2); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if _, err := s.ReserveSeats(ctx, "missing", 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
