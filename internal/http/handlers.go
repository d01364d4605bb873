package httpapi

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tdenemark/hokieride/internal/auth"
	"github.com/tdenemark/hokieride/internal/cache"
	"github.com/tdenemark/hokieride/internal/config"
	"github.com/tdenemark/hokieride/internal/ingest"
	"github.com/tdenemark/hokieride/internal/logging"
	"github.com/tdenemark/hokieride/internal/models"
	"github.com/tdenemark/hokieride/internal/notify"
	"github.com/tdenemark/hokieride/internal/service"
	"github.com/tdenemark/hokieride/internal/storage"
)

type Server struct {
	Gate   *auth.Gate
	Offers *service.Service
	WSReg  *notify.WSRegistry

	defaultDirection models.Direction
	logger           *slog.Logger
	mux              *mux.Router
}

// NewServer wires the router over explicitly injected dependencies. Tests use
// this with the memory store and a static-identity gate.
func NewServer(gate *auth.Gate, offers *service.Service, wsreg *notify.WSRegistry, defaultDirection models.Direction, logger *slog.Logger) *Server {
	s := &Server{
		Gate:             gate,
		Offers:           offers,
		WSReg:            wsreg,
		defaultDirection: defaultDirection,
		logger:           logger,
		mux:              mux.NewRouter(),
	}
	s.registerMiddleware()
	s.routes()
	return s
}

// NewServerFromEnv builds the production server from environment config.
// Postgres, Redis and Kafka are each optional; the memory store backs local
// runs. The JWT secret is not optional: the fixed-identity verifier is a
// test double and must never serve real traffic.
func NewServerFromEnv() (*Server, error) {
	cfg, err := config.LoadServerConfig()
	if err != nil {
		return nil, err
	}
	logger := logging.NewLogger(cfg.LogLevel)

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	gate := auth.NewGate(auth.NewJWTVerifier(cfg.JWTSecret), cfg.EmailSuffix)

	var store storage.OfferStore
	if cfg.PGDSN != "" {
		ps, err := storage.NewPostgresStore(cfg.PGDSN)
		if err != nil {
			return nil, err
		}
		store = ps
	} else {
		store = storage.NewMemoryStore()
		logger.Warn("PG_DSN not set; offers are not durable")
	}

	svc := &service.Service{Store: store, DefaultPrice: cfg.DefaultPrice}
	if cfg.RedisAddr != "" {
		svc.Cache = cache.NewRedisListing(cfg.RedisAddr, cfg.RedisPassword, "offers:listing:", cfg.ListingCacheTTL)
	}
	if len(cfg.KafkaBrokers) > 0 {
		svc.Events = ingest.NewKafkaProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
	}

	wsreg := notify.NewWSRegistry()
	svc.Notify = wsreg

	return NewServer(gate, svc, wsreg, models.Direction(cfg.DefaultDirection), logger), nil
}

func (s *Server) routes() {
	s.mux.HandleFunc("/offer", s.handleSubmitOffer).Methods("POST")
	s.mux.HandleFunc("/offer/{id}/reserve", s.handleReserveSeats).Methods("POST")
	s.mux.HandleFunc("/find", s.handleFindOffers).Methods("GET")
	s.mux.HandleFunc("/ws/offers", s.handleWS).Methods("GET")
	s.mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ok")) }).Methods("GET")
	s.mux.Handle("/metrics", promhttp.Handler())
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.mux.ServeHTTP(w, r) }

func (s *Server) handleSubmitOffer(w http.ResponseWriter, r *http.Request) {
	identity, err := s.Gate.Resolve(r.Context(), bearerToken(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sub, err := submissionFromForm(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if _, err := s.Offers.SubmitOffer(r.Context(), identity, sub); err != nil {
		s.writeError(w, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleFindOffers(w http.ResponseWriter, r *http.Request) {
	direction := models.Direction(r.URL.Query().Get("direction"))
	if direction == "" {
		direction = s.defaultDirection
	}
	offers, err := s.Offers.FindOffers(r.Context(), direction)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(offers)
}

func (s *Server) handleReserveSeats(w http.ResponseWriter, r *http.Request) {
	identity, err := s.Gate.Resolve(r.Context(), bearerToken(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	count, err := strconv.Atoi(r.PostFormValue("seats"))
	if err != nil {
		s.writeError(w, &service.ValidationError{Field: "seats", Reason: "must be an integer"})
		return
	}

	offerID := mux.Vars(r)["id"]
	updated, err := s.Offers.ReserveSeats(r.Context(), identity, offerID, count)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(updated)
}

var upgrader = websocket.Upgrader{}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	direction := models.Direction(r.URL.Query().Get("direction"))
	if direction == "" {
		direction = s.defaultDirection
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, "upgrade failed", http.StatusBadRequest)
		return
	}
	sess := s.WSReg.Add(direction, conn)
	// reader loop exists only to notice the peer going away
	go func() {
		defer s.WSReg.Remove(direction, sess)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	var verr *service.ValidationError
	switch {
	case errors.Is(err, auth.ErrUnauthorized):
		http.Error(w, "community members only", http.StatusForbidden)
	case errors.As(err, &verr):
		http.Error(w, verr.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, storage.ErrNotFound):
		http.Error(w, "offer not found", http.StatusNotFound)
	case errors.Is(err, storage.ErrConflict):
		http.Error(w, "not enough seats left", http.StatusConflict)
	case errors.Is(err, storage.ErrUnavailable):
		http.Error(w, "storage unavailable", http.StatusServiceUnavailable)
	default:
		s.logger.Error("unhandled error", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func submissionFromForm(r *http.Request) (models.OfferSubmission, error) {
	sub := models.OfferSubmission{
		Direction: models.Direction(r.PostFormValue("direction")),
		Pickup:    r.PostFormValue("pickup"),
		Dropoff:   r.PostFormValue("dropoff"),
		Notes:     r.PostFormValue("notes"),
		Venmo:     r.PostFormValue("venmo"),
	}

	ts, err := parseDateTime(r.PostFormValue("date_time"))
	if err != nil {
		return sub, &service.ValidationError{Field: "date_time", Reason: "must be a timestamp like 2025-03-01T09:00"}
	}
	sub.ScheduledAt = ts

	seats, err := strconv.Atoi(r.PostFormValue("seats"))
	if err != nil {
		return sub, &service.ValidationError{Field: "seats", Reason: "must be an integer"}
	}
	sub.SeatsTotal = seats

	if raw := r.PostFormValue("price"); raw != "" {
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return sub, &service.ValidationError{Field: "price", Reason: "must be a number"}
		}
		sub.Price = &price
	}
	return sub, nil
}

// parseDateTime accepts the HTML datetime-local format used by the offer
// form, plus RFC3339 for API callers.
func parseDateTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range []string{"2006-01-02T15:04", "2006-01-02T15:04:05", time.RFC3339} {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", raw)
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	return strings.TrimPrefix(h, "Bearer ")
}

func newID() string { b := make([]byte, 8); _, _ = rand.Read(b); return hex.EncodeToString(b) }
