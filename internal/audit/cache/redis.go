// Package cache keeps the rolling window of recent security events in Redis
// so snapshot reads for new monitoring sessions skip the event store.
package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"licensio/internal/audit"
	platformredis "licensio/internal/platform/redis"
)

const recentEventsKey = "audit:recent_events"

// RecentEvents maintains a capped Redis list of the newest events, newest
// first. All methods are safe on a nil receiver so callers running without
// Redis need no branching.
type RecentEvents struct {
	client *platformredis.Client
	size   int
}

// New creates the cache over the shared Redis client. Returns nil when the
// client is nil.
func New(client *platformredis.Client, size int) *RecentEvents {
	if client == nil {
		return nil
	}
	if size <= 0 {
		size = audit.SnapshotSize
	}
	return &RecentEvents{client: client, size: size}
}

// Push prepends the event and trims the list to the window size.
func (c *RecentEvents) Push(ctx context.Context, event audit.Event) error {
	if c == nil {
		return nil
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	pipe := c.client.TxPipeline()
	pipe.LPush(ctx, recentEventsKey, payload)
	pipe.LTrim(ctx, recentEventsKey, 0, int64(c.size-1))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("push recent event: %w", err)
	}
	return nil
}

// Recent returns up to limit cached events, newest first. A nil cache or an
// empty list returns nil with no error; callers fall back to the store.
func (c *RecentEvents) Recent(ctx context.Context, limit int) ([]audit.Event, error) {
	if c == nil {
		return nil, nil
	}
	if limit <= 0 || limit > c.size {
		limit = c.size
	}

	raw, err := c.client.LRange(ctx, recentEventsKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("read recent events: %w", err)
	}
	if len(raw) == 0 {
		return nil, nil
	}

	events := make([]audit.Event, 0, len(raw))
	for _, item := range raw {
		var event audit.Event
		if err := json.Unmarshal([]byte(item), &event); err != nil {
			// A malformed entry poisons the whole window; drop back to the store.
			return nil, fmt.Errorf("decode cached event: %w", err)
		}
		events = append(events, event)
	}
	return events, nil
}
