// Package realtime fans domain events out to subscribers by topic.
//
// Topics are "student:<id>", "team:<id>" and "connection:<id>". A
// Subscription receives every event published to any topic it has joined,
// over a buffered channel. A subscriber that falls behind loses events
// instead of blocking the publisher.
package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Event types.
const (
	TypeRequestReceived   = "request.received"
	TypeRequestRejected   = "request.rejected"
	TypeRequestCancelled  = "request.cancelled"
	TypeConnectionCreated = "connection.created"
	TypeTeamJoined        = "team.joined"
	TypeMessageCreated    = "message.created"
)

const subscriptionBuffer = 64

type Event struct {
	Topic   string          `json:"topic"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
	At      time.Time       `json:"at"`
}

// NewEvent encodes payload as JSON and stamps the event with the current time.
func NewEvent(topic, eventType string, payload any) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{Topic: topic, Type: eventType, Payload: raw, At: time.Now().UTC()}, nil
}

// Publisher is what services publish domain events through. Both Hub and
// RedisBroker implement it.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// StudentTopic is the personal topic every connected student is
// subscribed to.
func StudentTopic(studentID uuid.UUID) string {
	return "student:" + studentID.String()
}

type Hub struct {
	mu     sync.RWMutex
	topics map[string]map[*Subscription]struct{}
	logger *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		topics: make(map[string]map[*Subscription]struct{}),
		logger: logger,
	}
}

// Publish delivers e to local subscribers. It never blocks and never fails.
func (h *Hub) Publish(_ context.Context, e Event) error {
	h.Deliver(e)
	return nil
}

// Deliver hands e to every subscription on e.Topic.
func (h *Hub) Deliver(e Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.topics[e.Topic] {
		select {
		case sub.ch <- e:
		default:
			h.logger.Warn("dropping event for slow subscriber",
				zap.String("topic", e.Topic),
				zap.String("type", e.Type),
				zap.String("subscription", sub.id),
			)
		}
	}
}

// Subscribe opens a subscription with no topics.
func (h *Hub) Subscribe() *Subscription {
	return &Subscription{
		id:     uuid.NewString(),
		hub:    h,
		ch:     make(chan Event, subscriptionBuffer),
		topics: make(map[string]struct{}),
	}
}

// Subscribers returns how many subscriptions have joined topic.
func (h *Hub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}

type Subscription struct {
	id     string
	hub    *Hub
	ch     chan Event
	topics map[string]struct{} // guarded by hub.mu
	closed bool
}

// C is closed after Close.
func (s *Subscription) C() <-chan Event {
	return s.ch
}

func (s *Subscription) Join(topic string) {
	h := s.hub
	h.mu.Lock()
	defer h.mu.Unlock()

	if s.closed {
		return
	}
	if h.topics[topic] == nil {
		h.topics[topic] = make(map[*Subscription]struct{})
	}
	h.topics[topic][s] = struct{}{}
	s.topics[topic] = struct{}{}
}

func (s *Subscription) Leave(topic string) {
	h := s.hub
	h.mu.Lock()
	defer h.mu.Unlock()

	s.leave(topic)
}

// Topics lists the topics s has joined.
func (s *Subscription) Topics() []string {
	s.hub.mu.RLock()
	defer s.hub.mu.RUnlock()

	out := make([]string, 0, len(s.topics))
	for t := range s.topics {
		out = append(out, t)
	}
	return out
}

// Close leaves every topic and closes C. Safe to call twice.
func (s *Subscription) Close() {
	h := s.hub
	h.mu.Lock()
	defer h.mu.Unlock()

	if s.closed {
		return
	}
	for t := range s.topics {
		s.leave(t)
	}
	s.closed = true
	close(s.ch)
}

// leave requires hub.mu held for writing.
func (s *Subscription) leave(topic string) {
	h := s.hub
	if subs, ok := h.topics[topic]; ok {
		delete(subs, s)
		if len(subs) == 0 {
			delete(h.topics, topic)
		}
	}
	delete(s.topics, topic)
}
