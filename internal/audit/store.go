package audit

import (
	"context"
	"time"
)

// Store is the append-only event log. Nothing updates or deletes rows; the
// full history is retained for audit regardless of the 50-event delivery cap.
type Store interface {
	Append(ctx context.Context, event Event) error

	// ListRecent returns up to limit events, newest first.
	ListRecent(ctx context.Context, limit int) ([]Event, error)

	// CountSince counts events at or after the given instant.
	CountSince(ctx context.Context, since time.Time) (int, error)
}
