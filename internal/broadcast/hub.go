// Package broadcast fans out game events to live subscribers.
package broadcast

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/ksuid"
)

type EventType string

const (
	EventGameCreated        EventType = "game.created"
	EventGameDeleted        EventType = "game.deleted"
	EventPlanetOwnerChanged EventType = "planet.owner_changed"
)

type Event struct {
	Type     EventType  `json:"type"`
	GameID   uuid.UUID  `json:"game_id"`
	PlanetID *uuid.UUID `json:"planet_id,omitempty"`
	OwnerID  *uuid.UUID `json:"owner_id,omitempty"`
	At       time.Time  `json:"at"`
}

const defaultBuffer = 16

// Hub keeps the subscribers of every game. Publishing never blocks: a
// subscriber whose buffer is full misses the event.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[uuid.UUID]map[ksuid.KSUID]*Subscription
	buffer      int
	logger      *slog.Logger
}

type Subscription struct {
	ID     ksuid.KSUID
	GameID uuid.UUID
	C      <-chan Event

	ch   chan Event
	hub  *Hub
	once sync.Once
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		subscribers: make(map[uuid.UUID]map[ksuid.KSUID]*Subscription),
		buffer:      defaultBuffer,
		logger:      logger.With("component", "broadcast_hub"),
	}
}

func (h *Hub) Subscribe(gameID uuid.UUID) *Subscription {
	ch := make(chan Event, h.buffer)
	sub := &Subscription{
		ID:     ksuid.New(),
		GameID: gameID,
		C:      ch,
		ch:     ch,
		hub:    h,
	}

	h.mu.Lock()
	subs, ok := h.subscribers[gameID]
	if !ok {
		subs = make(map[ksuid.KSUID]*Subscription)
		h.subscribers[gameID] = subs
	}
	subs[sub.ID] = sub
	count := len(subs)
	h.mu.Unlock()

	h.logger.Debug("Client subscribed", "game_id", gameID, "client_id", sub.ID.String(), "subscribers", count)
	return sub
}

// Close unsubscribes and closes C. It is safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.remove(s)
	})
}

func (h *Hub) remove(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs := h.subscribers[sub.GameID]
	if _, ok := subs[sub.ID]; !ok {
		return
	}
	delete(subs, sub.ID)
	if len(subs) == 0 {
		delete(h.subscribers, sub.GameID)
	}
	close(sub.ch)

	h.logger.Debug("Client unsubscribed", "game_id", sub.GameID, "client_id", sub.ID.String(), "subscribers", len(subs))
}

// Publish delivers ev to every subscriber of its game and returns how many
// received it.
func (h *Hub) Publish(ev Event) int {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for _, sub := range h.subscribers[ev.GameID] {
		select {
		case sub.ch <- ev:
			delivered++
		default:
			h.logger.Warn("Dropping event for slow subscriber",
				"game_id", ev.GameID, "client_id", sub.ID.String(), "event", ev.Type)
		}
	}
	return delivered
}

// CloseGame disconnects every subscriber of a game.
func (h *Hub) CloseGame(gameID uuid.UUID) {
	h.mu.Lock()
	subs := h.subscribers[gameID]
	delete(h.subscribers, gameID)
	h.mu.Unlock()

	for _, sub := range subs {
		sub.once.Do(func() { close(sub.ch) })
	}
}

func (h *Hub) SubscriberCount(gameID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[gameID])
}
