package audit_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"licensio/internal/audit"
	"licensio/internal/audit/store"
	id "licensio/pkg/domain"
	dErrors "licensio/pkg/domain-errors"
	"licensio/pkg/requestcontext"
)

type AuditServiceSuite struct {
	suite.Suite

	store   *store.Memory
	service *audit.Service

	cancelWorker context.CancelFunc
	workerDone   chan struct{}
}

func (s *AuditServiceSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.store = store.NewMemory()
	s.service = audit.NewService(s.store, audit.NewBus(logger, nil), nil, nil, nil, logger)

	ctx, cancel := context.WithCancel(context.Background())
	s.cancelWorker = cancel
	s.workerDone = make(chan struct{})
	go func() {
		defer close(s.workerDone)
		s.service.Run(ctx)
	}()
}

func (s *AuditServiceSuite) TearDownTest() {
	s.cancelWorker()
	<-s.workerDone
}

func TestAuditServiceSuite(t *testing.T) {
	suite.Run(t, new(AuditServiceSuite))
}

func (s *AuditServiceSuite) record(code audit.Code, at time.Time) audit.Event {
	result := audit.ResultDeny
	if code == audit.CodeOK {
		result = audit.ResultAllow
	}
	ctx := requestcontext.WithTime(context.Background(), at)
	return s.service.Record(ctx, audit.Event{
		KeyString: "lk_test",
		Result:    result,
		ErrorCode: code,
	})
}

func (s *AuditServiceSuite) waitPersisted(n int) {
	s.Require().Eventually(func() bool { return s.store.Len() == n },
		2*time.Second, 5*time.Millisecond)
}

func (s *AuditServiceSuite) TestRecord() {
	s.Run("stamps id and timestamp", func() {
		at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
		event := s.record(audit.CodeOK, at)

		s.False(event.ID.IsNil())
		s.True(event.Timestamp.Equal(at))
	})

	s.Run("worker persists exactly one row per record", func() {
		s.record(audit.CodeOK, time.Now().UTC())
		s.record(audit.CodeBadSignature, time.Now().UTC())
		s.waitPersisted(3) // one from the previous subtest
	})
}

func (s *AuditServiceSuite) TestSubscribe() {
	s.Run("snapshot is capped and newest first", func() {
		base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
		for i := 0; i < audit.SnapshotSize+10; i++ {
			s.record(audit.CodeOK, base.Add(time.Duration(i)*time.Second))
		}
		s.waitPersisted(audit.SnapshotSize + 10)

		snapshot, _, cancel, err := s.service.Subscribe(context.Background(), "session-1")
		s.Require().NoError(err)
		defer cancel()

		s.Require().Len(snapshot, audit.SnapshotSize)
		s.True(snapshot[0].Timestamp.After(snapshot[len(snapshot)-1].Timestamp))
		for i := 1; i < len(snapshot); i++ {
			s.False(snapshot[i].Timestamp.After(snapshot[i-1].Timestamp))
		}
	})
}

func (s *AuditServiceSuite) TestLiveDelivery() {
	s.Run("live events arrive after the snapshot", func() {
		snapshot, live, cancel, err := s.service.Subscribe(context.Background(), "session-2")
		s.Require().NoError(err)
		defer cancel()
		s.Empty(snapshot)

		recorded := s.record(audit.CodeRevoked, time.Now().UTC())

		select {
		case event := <-live:
			s.Equal(recorded.ID, event.ID)
			s.Equal(audit.CodeRevoked, event.ErrorCode)
		case <-time.After(time.Second):
			s.Fail("live event not delivered")
		}
	})
}

func (s *AuditServiceSuite) TestRecordNeverBlocks() {
	s.Run("inbox overflow drops instead of blocking", func() {
		// Stop the worker so nothing drains the inbox, then overfill it.
		s.cancelWorker()
		<-s.workerDone

		done := make(chan struct{})
		go func() {
			defer close(done)
			for i := 0; i < 2000; i++ {
				s.record(audit.CodeOK, time.Now().UTC())
			}
		}()

		select {
		case <-done:
		case <-time.After(5 * time.Second):
			s.Fail("Record blocked on a full inbox")
		}
	})
}

func (s *AuditServiceSuite) TestRecentLogs() {
	admin := id.Caller{UserID: id.NewUserID(), Role: id.RoleAdmin}
	customer := id.Caller{UserID: id.NewUserID(), Role: id.RoleCustomer}

	s.Run("admin reads the persisted log newest first", func() {
		base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
		s.record(audit.CodeOK, base)
		s.record(audit.CodeExpired, base.Add(time.Minute))
		s.waitPersisted(2)

		events, err := s.service.RecentLogs(context.Background(), admin, 10)
		s.Require().NoError(err)
		s.Require().Len(events, 2)
		s.Equal(audit.CodeExpired, events[0].ErrorCode)
	})

	s.Run("customers are forbidden", func() {
		_, err := s.service.RecentLogs(context.Background(), customer, 10)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})
}

func (s *AuditServiceSuite) TestCountToday() {
	s.Run("counts only events since utc midnight", func() {
		today := time.Date(2024, 6, 2, 9, 0, 0, 0, time.UTC)
		s.record(audit.CodeOK, today.Add(-24*time.Hour)) // yesterday
		s.record(audit.CodeOK, today.Add(-time.Hour))
		s.record(audit.CodeBadSignature, today)
		s.waitPersisted(3)

		ctx := requestcontext.WithTime(context.Background(), today)
		count, err := s.service.CountToday(ctx)
		s.Require().NoError(err)
		s.Equal(2, count)
	})
}
