package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OffersCreated      = promauto.NewCounter(prometheus.CounterOpts{Namespace: "hokieride", Name: "offers_created_total", Help: "Total ride offers created"})
	OfferQueries       = promauto.NewCounter(prometheus.CounterOpts{Namespace: "hokieride", Name: "offer_queries_total", Help: "Total directional offer queries served from the store"})
	SeatsReserved      = promauto.NewCounter(prometheus.CounterOpts{Namespace: "hokieride", Name: "seats_reserved_total", Help: "Total seats reserved across offers"})
	EventPublishErrors = promauto.NewCounter(prometheus.CounterOpts{Namespace: "hokieride", Name: "event_publish_errors_total", Help: "Offer events that failed to publish"})
	ListingCacheHits   = promauto.NewCounter(prometheus.CounterOpts{Namespace: "hokieride", Name: "listing_cache_hits_total", Help: "Listing cache hits"})
	ListingCacheMisses = promauto.NewCounter(prometheus.CounterOpts{Namespace: "hokieride", Name: "listing_cache_misses_total", Help: "Listing cache misses"})

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "hokieride", Name: "http_requests_total", Help: "Total HTTP requests handled"},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "hokieride",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
