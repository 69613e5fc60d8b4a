package audit

import "context"

// Run drains the persistence inbox until the context is cancelled, then
// finishes whatever is already queued. Storage failures are logged and
// counted; the event was already delivered live, so the pipeline keeps going.
func (s *Service) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			s.drain()
			return ctx.Err()
		case event := <-s.inbox:
			s.persist(event)
			s.metrics.SetInboxDepth(len(s.inbox))
		}
	}
}

func (s *Service) drain() {
	for {
		select {
		case event := <-s.inbox:
			s.persist(event)
		default:
			s.metrics.SetInboxDepth(0)
			return
		}
	}
}

// persist writes the event everywhere it is retained. Each destination fails
// independently; a dead cache or sink never costs the store its copy.
func (s *Service) persist(event Event) {
	ctx := context.Background()

	if err := s.store.Append(ctx, event); err != nil {
		s.metrics.IncrementPersistFailure()
		s.logger.Error("event store append failed",
			"error", err,
			"event_id", event.ID.String(),
		)
	}

	if s.cache != nil {
		if err := s.cache.Push(ctx, event); err != nil {
			s.logger.Warn("recent events cache push failed", "error", err)
		}
	}

	for _, sink := range s.sinks {
		sink.Publish(ctx, event)
	}
}
