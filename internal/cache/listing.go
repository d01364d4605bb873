package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tdenemark/hokieride/internal/models"
)

// RedisListing caches per-direction offer listings as JSON blobs with a TTL.
// The store stays the source of truth; any cache error degrades to a miss.
type RedisListing struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisListing(addr, password, prefix string, ttl time.Duration) *RedisListing {
	c := redis.NewClient(&redis.Options{Addr: addr, Password: password})
	return &RedisListing{client: c, prefix: prefix, ttl: ttl}
}

func (r *RedisListing) Get(ctx context.Context, d models.Direction) ([]models.RideOffer, bool) {
	raw, err := r.client.Get(ctx, r.key(d)).Bytes()
	if err != nil {
		return nil, false
	}
	var offers []models.RideOffer
	if err := json.Unmarshal(raw, &offers); err != nil {
		return nil, false
	}
	return offers, true
}

func (r *RedisListing) Set(ctx context.Context, d models.Direction, offers []models.RideOffer) {
	b, err := json.Marshal(offers)
	if err != nil {
		return
	}
	_ = r.client.Set(ctx, r.key(d), b, r.ttl).Err()
}

func (r *RedisListing) Invalidate(ctx context.Context, d models.Direction) {
	_ = r.client.Del(ctx, r.key(d)).Err()
}

func (r *RedisListing) Close() error { return r.client.Close() }

func (r *RedisListing) key(d models.Direction) string { return r.prefix + string(d) }
