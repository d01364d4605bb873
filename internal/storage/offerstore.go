package storage

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tdenemark/hokieride/internal/models"
)

var (
	// ErrUnavailable wraps any failure to reach the backing store.
	ErrUnavailable = errors.New("storage unavailable")
	// ErrNotFound is returned when no offer exists for the given id.
	ErrNotFound = errors.New("offer not found")
	// ErrConflict is returned when a reservation asks for more seats than remain.
	ErrConflict = errors.New("not enough seats left")
)

// OfferStore defines persistence for ride offers. Offers are immutable apart
// from the seat counter, which only ReserveSeats may touch.
type OfferStore interface {
	// Insert persists a new offer and returns it with the store-assigned id.
	Insert(ctx context.Context, o models.RideOffer) (models.RideOffer, error)
	// QueryByDirection returns offers matching the direction, soonest first.
	// An unrecognized direction matches nothing and yields an empty slice.
	QueryByDirection(ctx context.Context, d models.Direction) ([]models.RideOffer, error)
	// ReserveSeats atomically decrements SeatsLeft by count and returns the
	// updated offer. Fails ErrConflict when fewer than count seats remain.
	ReserveSeats(ctx context.Context, id string, count int) (models.RideOffer, error)
}

// MemoryStore keeps offers in memory. Used when no PG_DSN is configured and
// as the store double in tests.
type MemoryStore struct {
	mu     sync.RWMutex
	offers []models.RideOffer
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Insert(ctx context.Context, o models.RideOffer) (models.RideOffer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o.ID = uuid.NewString()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	m.offers = append(m.offers, o)
	return o, nil
}

func (m *MemoryStore) QueryByDirection(ctx context.Context, d models.Direction) ([]models.RideOffer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.RideOffer, 0)
	for _, o := range m.offers {
		if o.Direction == d {
			out = append(out, o)
		}
	}
	// stable keeps insertion order for equal departure times
	sort.SliceStable(out, func(i, j int) bool { return out[i].ScheduledAt.Before(out[j].ScheduledAt) })
	return out, nil
}

func (m *MemoryStore) ReserveSeats(ctx context.Context, id string, count int) (models.RideOffer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.offers {
		if m.offers[i].ID != id {
			continue
		}
		if m.offers[i].SeatsLeft < count {
			return models.RideOffer{}, ErrConflict
		}
		m.offers[i].SeatsLeft -= count
		return m.offers[i], nil
	}
	return models.RideOffer{}, ErrNotFound
}

// Len reports the number of stored offers. Test helper.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.offers)
}
