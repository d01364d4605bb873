package notify

import (
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/tdenemark/hokieride/internal/models"
)

// WSSession wraps a subscriber connection; writes are serialized.
type WSSession struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *WSSession) Send(o models.RideOffer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(o)
}

// WSRegistry holds live subscribers grouped by the direction they watch.
// Each new offer is pushed to everyone watching its direction.
type WSRegistry struct {
	mu   sync.RWMutex
	subs map[models.Direction]map[*WSSession]struct{}
}

func NewWSRegistry() *WSRegistry {
	return &WSRegistry{subs: make(map[models.Direction]map[*WSSession]struct{})}
}

func (r *WSRegistry) Add(d models.Direction, conn *websocket.Conn) *WSSession {
	s := &WSSession{conn: conn}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.subs[d] == nil {
		r.subs[d] = make(map[*WSSession]struct{})
	}
	r.subs[d][s] = struct{}{}
	return s
}

func (r *WSRegistry) Remove(d models.Direction, s *WSSession) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if set, ok := r.subs[d]; ok {
		delete(set, s)
	}
	_ = s.conn.Close()
}

// Broadcast pushes the offer to every subscriber of its direction. Dead
// connections are dropped from the registry.
func (r *WSRegistry) Broadcast(d models.Direction, o models.RideOffer) {
	r.mu.RLock()
	sessions := make([]*WSSession, 0, len(r.subs[d]))
	for s := range r.subs[d] {
		sessions = append(sessions, s)
	}
	r.mu.RUnlock()

	for _, s := range sessions {
		if err := s.Send(o); err != nil {
			log.Printf("ws send error: %v", err)
			r.Remove(d, s)
		}
	}
}
