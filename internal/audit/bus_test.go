package audit

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	id "licensio/pkg/domain"
)

type BusSuite struct {
	suite.Suite
	bus     *Bus
	dropped int
}

func (s *BusSuite) SetupTest() {
	s.dropped = 0
	s.bus = NewBus(slog.New(slog.NewTextHandler(io.Discard, nil)), func() { s.dropped++ })
}

func TestBusSuite(t *testing.T) {
	suite.Run(t, new(BusSuite))
}

func testEvent() Event {
	return Event{
		ID:        id.NewEventID(),
		KeyString: "lk_test",
		Result:    ResultAllow,
		ErrorCode: CodeOK,
		Timestamp: time.Now().UTC(),
	}
}

func (s *BusSuite) TestFanout() {
	s.Run("every subscriber receives every event", func() {
		ch1, cancel1 := s.bus.Subscribe("session-1")
		defer cancel1()
		ch2, cancel2 := s.bus.Subscribe("session-2")
		defer cancel2()

		event := testEvent()
		s.bus.Publish(event)

		s.Equal(event.ID, (<-ch1).ID)
		s.Equal(event.ID, (<-ch2).ID)
	})

	s.Run("cancel detaches only that session", func() {
		ch1, cancel1 := s.bus.Subscribe("session-1")
		ch2, cancel2 := s.bus.Subscribe("session-2")
		defer cancel2()

		cancel1()
		s.Equal(1, s.bus.SubscriberCount())

		s.bus.Publish(testEvent())
		s.Len(ch2, 1)

		// the cancelled channel is closed, not fed
		_, open := <-ch1
		s.False(open)
	})

	s.Run("cancel is idempotent", func() {
		_, cancel := s.bus.Subscribe("session-1")
		cancel()
		cancel()
		s.Equal(0, s.bus.SubscriberCount())
	})
}

func (s *BusSuite) TestSlowSubscriber() {
	s.Run("full buffer drops for that session without blocking", func() {
		slow, cancelSlow := s.bus.Subscribe("slow")
		defer cancelSlow()

		// Nothing drains the slow session. Publishing past its buffer must
		// still return promptly, shedding the overflow.
		total := subscriberBuffer + 10
		published := make(chan struct{})
		go func() {
			defer close(published)
			for i := 0; i < total; i++ {
				s.bus.Publish(testEvent())
			}
		}()

		select {
		case <-published:
		case <-time.After(2 * time.Second):
			s.Fail("publish blocked on a slow subscriber")
		}

		s.Equal(subscriberBuffer, len(slow))
		s.Equal(10, s.dropped)
	})

	s.Run("other sessions are unaffected by a slow one", func() {
		slow, cancelSlow := s.bus.Subscribe("slow")
		defer cancelSlow()
		healthy, cancelHealthy := s.bus.Subscribe("healthy")
		defer cancelHealthy()

		for i := 0; i < subscriberBuffer; i++ {
			s.bus.Publish(testEvent())
			<-healthy
		}
		s.bus.Publish(testEvent())

		event := <-healthy
		s.Equal(CodeOK, event.ErrorCode)
		s.Equal(subscriberBuffer, len(slow))
	})
}
