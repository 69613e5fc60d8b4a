package audit

import (
	"context"
	"log/slog"
	"time"

	"licensio/internal/audit/metrics"
	id "licensio/pkg/domain"
	dErrors "licensio/pkg/domain-errors"
	"licensio/pkg/requestcontext"
)

// inboxSize bounds the persistence backlog. Recording never waits on storage;
// when the backlog is full the event is still delivered live and then dropped
// from persistence with a warning.
const inboxSize = 1024

const (
	defaultLogLimit = SnapshotSize
	maxLogLimit     = 500
)

// RecentCache is the fast path for snapshot reads. Implementations tolerate
// being backed by nothing and return no events.
type RecentCache interface {
	Push(ctx context.Context, event Event) error
	Recent(ctx context.Context, limit int) ([]Event, error)
}

// Sink receives every recorded event for retention outside this service.
type Sink interface {
	Publish(ctx context.Context, event Event)
}

// Service runs the security event pipeline: it stamps and records events,
// fans them out to live monitoring sessions, and hands a copy to the
// background worker for persistence.
type Service struct {
	store   Store
	bus     *Bus
	cache   RecentCache
	sinks   []Sink
	metrics *metrics.Metrics
	logger  *slog.Logger
	inbox   chan Event
}

func NewService(store Store, bus *Bus, cache RecentCache, sinks []Sink, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		store:   store,
		bus:     bus,
		cache:   cache,
		sinks:   sinks,
		metrics: m,
		logger:  logger.With("component", "audit.service"),
		inbox:   make(chan Event, inboxSize),
	}
}

// Record stamps the event with an ID and timestamp, delivers it to live
// sessions, and queues it for persistence. It never blocks and never returns
// an error; the validation path must not stall on observability.
func (s *Service) Record(ctx context.Context, event Event) Event {
	if event.ID.IsNil() {
		event.ID = id.NewEventID()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}

	s.metrics.IncrementRecorded()
	s.bus.Publish(event)

	select {
	case s.inbox <- event:
	default:
		s.metrics.IncrementDropped("inbox")
		s.logger.Warn("persistence inbox full, event dropped",
			"event_id", event.ID.String(),
			"result", event.Result,
		)
	}
	s.metrics.SetInboxDepth(len(s.inbox))
	return event
}

// Subscribe attaches a live monitoring session. It returns the snapshot of
// recent events, newest first, plus the live channel and a cancel function.
func (s *Service) Subscribe(ctx context.Context, sessionID string) ([]Event, <-chan Event, func(), error) {
	snapshot, err := s.snapshot(ctx)
	if err != nil {
		return nil, nil, nil, err
	}

	live, cancel := s.bus.Subscribe(sessionID)
	s.metrics.SetSubscribers(s.bus.SubscriberCount())

	wrappedCancel := func() {
		cancel()
		s.metrics.SetSubscribers(s.bus.SubscriberCount())
	}
	return snapshot, live, wrappedCancel, nil
}

func (s *Service) snapshot(ctx context.Context) ([]Event, error) {
	if s.cache != nil {
		events, err := s.cache.Recent(ctx, SnapshotSize)
		if err != nil {
			s.logger.Warn("snapshot cache read failed, falling back to store", "error", err)
		} else if len(events) > 0 {
			return events, nil
		}
	}

	events, err := s.store.ListRecent(ctx, SnapshotSize)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to load recent events", err)
	}
	return events, nil
}

// RecentLogs returns up to limit persisted events, newest first. Admin only.
func (s *Service) RecentLogs(ctx context.Context, caller id.Caller, limit int) ([]Event, error) {
	if !caller.IsAdmin() {
		return nil, dErrors.New(dErrors.CodeForbidden, "admin access required")
	}

	if limit <= 0 {
		limit = defaultLogLimit
	}
	if limit > maxLogLimit {
		limit = maxLogLimit
	}

	events, err := s.store.ListRecent(ctx, limit)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to load event log", err)
	}
	return events, nil
}

// CountToday reports events recorded since UTC midnight.
func (s *Service) CountToday(ctx context.Context) (int, error) {
	now := requestcontext.Now(ctx).UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	count, err := s.store.CountSince(ctx, midnight)
	if err != nil {
		return 0, dErrors.Wrap(dErrors.CodeInternal, "failed to count events", err)
	}
	return count, nil
}
