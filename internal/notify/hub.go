// Package notify delivers session events to subscribed participants.
// Topics are session ids. Each topic has at most one receiver, the target of
// files-received, and any number of senders.
package notify

import (
	"sync"

	"senda/relay/pkg/metrics"

	"go.uber.org/zap"
)

// Subscriber is an opaque delivery capability, usually one realtime connection.
type Subscriber interface {
	ID() string
	Deliver(evt Event) error
}

type funcSubscriber struct {
	id string
	f  func(Event) error
}

func (s *funcSubscriber) ID() string {
	return s.id
}

func (s *funcSubscriber) Deliver(evt Event) error {
	return s.f(evt)
}

// SubscriberFunc adapts f to Subscriber
func SubscriberFunc(id string, f func(Event) error) Subscriber {
	return &funcSubscriber{id: id, f: f}
}

type topic struct {
	receiver Subscriber
	senders  map[string]Subscriber
}

func (t *topic) empty() bool {
	return t.receiver == nil && len(t.senders) == 0
}

type Hub struct {
	mu     *sync.RWMutex
	topics map[string]*topic
	logger *zap.SugaredLogger
}

func NewHub(logger *zap.SugaredLogger) *Hub {
	return &Hub{
		mu:     new(sync.RWMutex),
		topics: make(map[string]*topic),
		logger: logger,
	}
}

func (h *Hub) topic(sessionID string) *topic {
	t, ok := h.topics[sessionID]
	if !ok {
		t = &topic{senders: make(map[string]Subscriber)}
		h.topics[sessionID] = t
	}
	return t
}

// Subscribe makes sub the receiver of sessionID, replacing the previous one
// silently. The returned func unsubscribes sub unless it was replaced already.
func (h *Hub) Subscribe(sessionID string, sub Subscriber) func() {
	h.mu.Lock()
	t := h.topic(sessionID)
	if t.receiver != nil && t.receiver.ID() != sub.ID() {
		h.logger.Debugf("receiver of session: %s replaced (%s -> %s)", sessionID, t.receiver.ID(), sub.ID())
	}
	t.receiver = sub
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()

		t, ok := h.topics[sessionID]
		if !ok || t.receiver == nil || t.receiver.ID() != sub.ID() {
			return
		}
		t.receiver = nil
		if t.empty() {
			delete(h.topics, sessionID)
		}
	}
}

// JoinAsSender registers sub as non-receiving participant of sessionID
func (h *Hub) JoinAsSender(sessionID string, sub Subscriber) func() {
	h.mu.Lock()
	h.topic(sessionID).senders[sub.ID()] = sub
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()

		t, ok := h.topics[sessionID]
		if !ok {
			return
		}
		delete(t.senders, sub.ID())
		if t.empty() {
			delete(h.topics, sessionID)
		}
	}
}

// Receiver returns current receiver of sessionID
func (h *Hub) Receiver(sessionID string) (Subscriber, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	t, ok := h.topics[sessionID]
	if !ok || t.receiver == nil {
		return nil, false
	}
	return t.receiver, true
}

// Publish delivers evt once to the current receiver of sessionID.
// Without a receiver evt is dropped. Reports whether evt was delivered.
func (h *Hub) Publish(sessionID string, evt Event) bool {
	receiver, ok := h.Receiver(sessionID)
	if !ok {
		metrics.Notifications.WithLabelValues("dropped").Inc()
		h.logger.Debugf("no receiver for session: %s. %s dropped", sessionID, evt.Name)
		return false
	}

	if err := receiver.Deliver(evt); err != nil {
		metrics.Notifications.WithLabelValues("failed").Inc()
		h.logger.Warnf("could not deliver %s to %s. err: %s", evt.Name, receiver.ID(), err.Error())
		return false
	}

	metrics.Notifications.WithLabelValues("delivered").Inc()
	h.logger.Debugf("%s delivered to receiver of session: %s", evt.Name, sessionID)
	return true
}

// Drop forgets sessionID and tells every participant the session is gone
func (h *Hub) Drop(sessionID string) {
	h.mu.Lock()
	t, ok := h.topics[sessionID]
	delete(h.topics, sessionID)
	h.mu.Unlock()

	if !ok {
		return
	}

	evt := Event{Name: EventSessionExpired, Data: SessionPayload{SessionID: sessionID}}

	participants := make([]Subscriber, 0, len(t.senders)+1)
	if t.receiver != nil {
		participants = append(participants, t.receiver)
	}
	for _, sender := range t.senders {
		participants = append(participants, sender)
	}

	for _, p := range participants {
		if err := p.Deliver(evt); err != nil {
			h.logger.Debugf("could not notify %s about expiry of %s. err: %s", p.ID(), sessionID, err.Error())
		}
	}
}

// Topics returns number of sessions with at least one participant
func (h *Hub) Topics() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics)
}
