package audit

import (
	"log/slog"
	"sync"
)

// subscriberBuffer is the per-session delivery buffer. A monitoring session
// that cannot drain this many events is dropping frames anyway; the producer
// never waits for it.
const subscriberBuffer = 64

// Bus fans validation events out to live monitoring sessions. Each session
// owns an independent buffered channel; publishing is non-blocking, so a slow
// or stuck subscriber costs the producer nothing and has no effect on other
// sessions.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[string]chan Event
	logger      *slog.Logger
	dropped     func() // metrics hook, may be nil
}

func NewBus(logger *slog.Logger, droppedHook func()) *Bus {
	return &Bus{
		subscribers: make(map[string]chan Event),
		logger:      logger.With("component", "audit.bus"),
		dropped:     droppedHook,
	}
}

// Subscribe registers a monitoring session and returns its delivery channel
// plus a cancel function. Cancelling closes the channel and detaches the
// session; other sessions and the producer are unaffected.
func (b *Bus) Subscribe(sessionID string) (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	b.mu.Lock()
	if old, exists := b.subscribers[sessionID]; exists {
		close(old)
	}
	b.subscribers[sessionID] = ch
	count := len(b.subscribers)
	b.mu.Unlock()

	b.logger.Info("monitoring session subscribed",
		"session_id", sessionID,
		"subscriber_count", count,
	)

	cancel := func() {
		b.mu.Lock()
		if current, exists := b.subscribers[sessionID]; exists && current == ch {
			delete(b.subscribers, sessionID)
			close(ch)
		}
		b.mu.Unlock()
	}
	return ch, cancel
}

// Publish fans the event out to every session. A full session buffer drops
// the event for that session only; the producer never blocks.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for sessionID, ch := range b.subscribers {
		select {
		case ch <- event:
		default:
			if b.dropped != nil {
				b.dropped()
			}
			b.logger.Warn("subscriber buffer full, event dropped",
				"session_id", sessionID,
			)
		}
	}
}

// SubscriberCount reports the number of live sessions.
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
