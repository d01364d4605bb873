package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/tdenemark/hokieride/internal/models"
	"github.com/tdenemark/hokieride/internal/observability"
	"github.com/tdenemark/hokieride/internal/storage"
)

// ValidationError identifies the submission field that failed validation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Publisher emits offer lifecycle events for downstream consumers.
type Publisher interface {
	PublishOfferCreated(ctx context.Context, o models.RideOffer) error
}

// ListingCache is a read-through cache of per-direction listings.
type ListingCache interface {
	Get(ctx context.Context, d models.Direction) ([]models.RideOffer, bool)
	Set(ctx context.Context, d models.Direction, offers []models.RideOffer)
	Invalidate(ctx context.Context, d models.Direction)
}

// Broadcaster pushes a freshly posted offer to live subscribers.
type Broadcaster interface {
	Broadcast(d models.Direction, o models.RideOffer)
}

// Service orchestrates offer submission, discovery and seat reservation.
// Events, Cache and Notify are optional; the store is the source of truth
// and every side channel is best-effort.
type Service struct {
	Store        storage.OfferStore
	Events       Publisher
	Cache        ListingCache
	Notify       Broadcaster
	DefaultPrice float64
}

// SubmitOffer validates the submission, stamps the gate-resolved driver
// identity and persists one new offer. The caller-facing identity is the
// only source of DriverID; nothing client-supplied can override it.
func (s *Service) SubmitOffer(ctx context.Context, identity models.Identity, sub models.OfferSubmission) (models.RideOffer, error) {
	if err := validateSubmission(sub); err != nil {
		return models.RideOffer{}, err
	}

	price := s.DefaultPrice
	if sub.Price != nil {
		price = *sub.Price
	}

	offer := models.RideOffer{
		DriverID:    identity.ID,
		Direction:   sub.Direction,
		ScheduledAt: sub.ScheduledAt,
		Pickup:      strings.TrimSpace(sub.Pickup),
		Dropoff:     strings.TrimSpace(sub.Dropoff),
		SeatsTotal:  sub.SeatsTotal,
		SeatsLeft:   sub.SeatsTotal,
		Price:       price,
		Notes:       sub.Notes,
		Venmo:       sub.Venmo,
	}

	stored, err := s.Store.Insert(ctx, offer)
	if err != nil {
		return models.RideOffer{}, err
	}
	observability.OffersCreated.Inc()

	// side channels are best-effort; the offer is already durable
	if s.Events != nil {
		if err := s.Events.PublishOfferCreated(ctx, stored); err != nil {
			observability.EventPublishErrors.Inc()
		}
	}
	if s.Cache != nil {
		s.Cache.Invalidate(ctx, stored.Direction)
	}
	if s.Notify != nil {
		s.Notify.Broadcast(stored.Direction, stored)
	}
	return stored, nil
}

// FindOffers returns offers for the direction, soonest departure first.
// Unrecognized directions pass through to the store and match nothing;
// the launch deployment relied on that, so it stays.
func (s *Service) FindOffers(ctx context.Context, d models.Direction) ([]models.RideOffer, error) {
	if s.Cache != nil {
		if offers, ok := s.Cache.Get(ctx, d); ok {
			observability.ListingCacheHits.Inc()
			return offers, nil
		}
		observability.ListingCacheMisses.Inc()
	}
	offers, err := s.Store.QueryByDirection(ctx, d)
	if err != nil {
		return nil, err
	}
	observability.OfferQueries.Inc()
	if s.Cache != nil {
		// A Set here can land after a concurrent submit's Invalidate and
		// re-cache a listing missing that offer. The window is bounded by
		// the cache TTL; the store stays the source of truth.
		s.Cache.Set(ctx, d, offers)
	}
	return offers, nil
}

// ReserveSeats atomically takes count seats from an offer. Overbooking is
// prevented at the store, not here.
func (s *Service) ReserveSeats(ctx context.Context, identity models.Identity, offerID string, count int) (models.RideOffer, error) {
	if count < 1 {
		return models.RideOffer{}, &ValidationError{Field: "seats", Reason: "must be at least 1"}
	}
	updated, err := s.Store.ReserveSeats(ctx, offerID, count)
	if err != nil {
		return models.RideOffer{}, err
	}
	observability.SeatsReserved.Add(float64(count))
	if s.Cache != nil {
		s.Cache.Invalidate(ctx, updated.Direction)
	}
	return updated, nil
}

func validateSubmission(sub models.OfferSubmission) error {
	if !sub.Direction.Valid() {
		return &ValidationError{Field: "direction", Reason: fmt.Sprintf("must be %q or %q", models.DirectionToNOVA, models.DirectionToCampus)}
	}
	if sub.ScheduledAt.IsZero() {
		return &ValidationError{Field: "date_time", Reason: "required"}
	}
	if strings.TrimSpace(sub.Pickup) == "" {
		return &ValidationError{Field: "pickup", Reason: "required"}
	}
	if strings.TrimSpace(sub.Dropoff) == "" {
		return &ValidationError{Field: "dropoff", Reason: "required"}
	}
	if sub.SeatsTotal < 1 {
		return &ValidationError{Field: "seats", Reason: "must be a positive integer"}
	}
	if sub.Price != nil && *sub.Price < 0 {
		return &ValidationError{Field: "price", Reason: "must not be negative"}
	}
	return nil
}
