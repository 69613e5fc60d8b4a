package stats_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"

	"licensio/internal/stats"
	id "licensio/pkg/domain"
	dErrors "licensio/pkg/domain-errors"
)

type fixedCounters struct {
	users       int
	credentials int
	events      int
	err         error
}

func (f fixedCounters) TotalUsers(context.Context) (int, error)  { return f.users, f.err }
func (f fixedCounters) ActiveCount(context.Context) (int, error) { return f.credentials, f.err }
func (f fixedCounters) CountToday(context.Context) (int, error)  { return f.events, f.err }

type StatsSuite struct {
	suite.Suite
}

func TestStatsSuite(t *testing.T) {
	suite.Run(t, new(StatsSuite))
}

func (s *StatsSuite) TestSummarize() {
	admin := id.Caller{UserID: id.NewUserID(), Role: id.RoleAdmin}

	s.Run("aggregates counters for an admin", func() {
		counters := fixedCounters{users: 12, credentials: 7, events: 340}
		service := stats.NewService(counters, counters, counters)

		summary, err := service.Summarize(context.Background(), admin)

		s.Require().NoError(err)
		s.Equal(12, summary.TotalUsers)
		s.Equal(7, summary.ActiveAPIKeys)
		s.Equal(340, summary.ValidationsToday)
	})

	s.Run("paid orders is always zero", func() {
		counters := fixedCounters{users: 1, credentials: 1, events: 1}
		service := stats.NewService(counters, counters, counters)

		summary, err := service.Summarize(context.Background(), admin)

		s.Require().NoError(err)
		s.Zero(summary.PaidOrders)
	})

	s.Run("customer caller is forbidden", func() {
		counters := fixedCounters{}
		service := stats.NewService(counters, counters, counters)

		_, err := service.Summarize(context.Background(), id.Caller{UserID: id.NewUserID(), Role: id.RoleCustomer})

		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("counter failure surfaces", func() {
		counters := fixedCounters{err: errors.New("store offline")}
		service := stats.NewService(counters, counters, counters)

		_, err := service.Summarize(context.Background(), admin)

		s.Require().Error(err)
	})
}
