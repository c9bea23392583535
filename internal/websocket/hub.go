package websocket

import (
	"errors"
	"sync"

	"github.com/dafibh/finora/finora-backend/internal/metrics"
	"github.com/rs/zerolog/log"
)

var (
	// ErrHubClosed is returned by Register after Shutdown
	ErrHubClosed = errors.New("realtime hub is shut down")
	// ErrNoWorkspace is returned when a subscriber has no workspace yet
	ErrNoWorkspace = errors.New("subscriber has no workspace")
)

// EventPublisher is what services use to push ledger changes to the
// workspace's open sessions
type EventPublisher interface {
	Publish(workspaceID int32, event Event)
}

// Subscriber is one open session as seen by the hub. Send must not block.
type Subscriber interface {
	ID() string
	WorkspaceID() int32
	Send(data []byte) error
	Close() error
}

var _ EventPublisher = (*Hub)(nil)

// Hub fans events out to the subscribers of a workspace. Events are
// encoded once and delivered in publish order. A subscriber whose Send
// fails is dropped and closed.
type Hub struct {
	mu         sync.RWMutex
	workspaces map[int32]map[string]Subscriber
	closed     bool
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{workspaces: make(map[int32]map[string]Subscriber)}
}

// Register attaches a subscriber to its workspace
func (h *Hub) Register(sub Subscriber) error {
	workspaceID := sub.WorkspaceID()
	if workspaceID <= 0 {
		return ErrNoWorkspace
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrHubClosed
	}

	subs := h.workspaces[workspaceID]
	if subs == nil {
		subs = make(map[string]Subscriber)
		h.workspaces[workspaceID] = subs
	}
	if _, exists := subs[sub.ID()]; !exists {
		metrics.RealtimeClients.Inc()
	}
	subs[sub.ID()] = sub

	log.Debug().
		Int32("workspace_id", workspaceID).
		Str("client_id", sub.ID()).
		Msg("Realtime client registered")
	return nil
}

// Unregister detaches a subscriber. Unknown subscribers are ignored.
func (h *Hub) Unregister(sub Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.remove(sub)
}

// remove expects h.mu held for writing
func (h *Hub) remove(sub Subscriber) bool {
	workspaceID := sub.WorkspaceID()
	subs, ok := h.workspaces[workspaceID]
	if !ok {
		return false
	}
	if _, exists := subs[sub.ID()]; !exists {
		return false
	}
	delete(subs, sub.ID())
	if len(subs) == 0 {
		delete(h.workspaces, workspaceID)
	}
	metrics.RealtimeClients.Dec()

	log.Debug().
		Int32("workspace_id", workspaceID).
		Str("client_id", sub.ID()).
		Msg("Realtime client unregistered")
	return true
}

// Publish delivers event to every subscriber of workspaceID
func (h *Hub) Publish(workspaceID int32, event Event) {
	if workspaceID <= 0 {
		return
	}

	h.mu.RLock()
	subs := make([]Subscriber, 0, len(h.workspaces[workspaceID]))
	for _, sub := range h.workspaces[workspaceID] {
		subs = append(subs, sub)
	}
	h.mu.RUnlock()
	if len(subs) == 0 {
		return
	}

	data, err := event.ToJSON()
	if err != nil {
		log.Error().
			Err(err).
			Int32("workspace_id", workspaceID).
			Str("event_type", event.Type).
			Msg("Failed to encode realtime event")
		return
	}

	var failed []Subscriber
	for _, sub := range subs {
		if err := sub.Send(data); err != nil {
			log.Warn().
				Err(err).
				Int32("workspace_id", workspaceID).
				Str("client_id", sub.ID()).
				Str("event_type", event.Type).
				Msg("Dropping realtime client")
			failed = append(failed, sub)
			continue
		}
		metrics.RealtimeEvents.WithLabelValues(event.Type).Inc()
	}

	for _, sub := range failed {
		h.mu.Lock()
		removed := h.remove(sub)
		h.mu.Unlock()
		if removed {
			_ = sub.Close()
		}
	}
}

// ClientCount returns the number of subscribers of a workspace
func (h *Hub) ClientCount(workspaceID int32) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.workspaces[workspaceID])
}

// Shutdown closes every subscriber and refuses new ones
func (h *Hub) Shutdown() {
	h.mu.Lock()
	h.closed = true
	var subs []Subscriber
	for workspaceID, byID := range h.workspaces {
		for _, sub := range byID {
			subs = append(subs, sub)
		}
		delete(h.workspaces, workspaceID)
	}
	metrics.RealtimeClients.Sub(float64(len(subs)))
	h.mu.Unlock()

	for _, sub := range subs {
		_ = sub.Close()
	}
	log.Info().Int("client_count", len(subs)).Msg("Realtime hub shut down")
}
