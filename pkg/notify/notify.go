package notify

import (
	"log/slog"
	"sync"

	"automata-hq/triton/pkg/entity"
)

// Action distinguishes creations from in-place updates.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
)

// Notification describes one derived-record change.
type Notification struct {
	Action     Action            `json:"action"`
	EntityType entity.EntityType `json:"entityType"`
	EntityID   string            `json:"entityId"`
	RuleID     string            `json:"ruleId"`
	Entity     any               `json:"entity"`
}

// Publisher receives derived-record change notifications. Implementations
// must return quickly; anything slow belongs behind a channel or goroutine.
type Publisher interface {
	Publish(n Notification)
}

// LogPublisher writes each notification to the structured log. It is the
// default publisher when nothing else is configured.
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher creates a log-backed publisher.
func NewLogPublisher() *LogPublisher {
	return &LogPublisher{logger: slog.Default().With("component", "notify")}
}

// Publish logs the notification.
func (p *LogPublisher) Publish(n Notification) {
	p.logger.Info("derived record changed",
		"action", n.Action,
		"entity_type", n.EntityType,
		"entity_id", n.EntityID,
		"rule_id", n.RuleID,
	)
}

// Broadcaster fans one notification out to every subscriber over buffered
// channels. Subscribers that fall behind lose notifications rather than
// applying backpressure to the engine.
type Broadcaster struct {
	mu          sync.RWMutex
	subscribers map[int]chan Notification
	nextID      int
	buffer      int
	logger      *slog.Logger
}

// NewBroadcaster creates a broadcaster with the given per-subscriber buffer.
func NewBroadcaster(buffer int) *Broadcaster {
	if buffer <= 0 {
		buffer = 64
	}
	return &Broadcaster{
		subscribers: make(map[int]chan Notification),
		buffer:      buffer,
		logger:      slog.Default().With("component", "notify.broadcaster"),
	}
}

// Subscribe registers a new consumer. The returned cancel function removes
// the subscription and closes its channel.
func (b *Broadcaster) Subscribe() (<-chan Notification, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan Notification, b.buffer)
	b.subscribers[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if ch, ok := b.subscribers[id]; ok {
			delete(b.subscribers, id)
			close(ch)
		}
	}
	return ch, cancel
}

// Publish delivers the notification to every subscriber without blocking.
func (b *Broadcaster) Publish(n Notification) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for id, ch := range b.subscribers {
		select {
		case ch <- n:
		default:
			b.logger.Warn("subscriber buffer full, dropping notification",
				"subscriber", id,
				"entity_type", n.EntityType,
				"entity_id", n.EntityID,
			)
		}
	}
}

// Close removes all subscribers and closes their channels.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, ch := range b.subscribers {
		delete(b.subscribers, id)
		close(ch)
	}
}

// Multi publishes to several publishers in order.
type Multi []Publisher

// Publish forwards to each publisher.
func (m Multi) Publish(n Notification) {
	for _, p := range m {
		p.Publish(n)
	}
}
