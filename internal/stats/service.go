// Package stats aggregates the dashboard counters.
package stats

import (
	"context"

	id "licensio/pkg/domain"
	dErrors "licensio/pkg/domain-errors"
)

type UserCounter interface {
	TotalUsers(ctx context.Context) (int, error)
}

type CredentialCounter interface {
	ActiveCount(ctx context.Context) (int, error)
}

type EventCounter interface {
	CountToday(ctx context.Context) (int, error)
}

// Summary is the dashboard snapshot. PaidOrders is carried for the consumer
// contract but billing is not handled here, so it is always zero.
type Summary struct {
	TotalUsers       int `json:"total_users"`
	ActiveAPIKeys    int `json:"active_api_keys"`
	PaidOrders       int `json:"paid_orders"`
	ValidationsToday int `json:"validations_today"`
}

// Service gathers counters from the other modules. Admin only.
type Service struct {
	users       UserCounter
	credentials CredentialCounter
	events      EventCounter
}

func NewService(users UserCounter, credentials CredentialCounter, events EventCounter) *Service {
	return &Service{users: users, credentials: credentials, events: events}
}

func (s *Service) Summarize(ctx context.Context, caller id.Caller) (Summary, error) {
	if !caller.IsAdmin() {
		return Summary{}, dErrors.New(dErrors.CodeForbidden, "admin access required")
	}

	totalUsers, err := s.users.TotalUsers(ctx)
	if err != nil {
		return Summary{}, err
	}
	activeKeys, err := s.credentials.ActiveCount(ctx)
	if err != nil {
		return Summary{}, err
	}
	validationsToday, err := s.events.CountToday(ctx)
	if err != nil {
		return Summary{}, err
	}

	return Summary{
		TotalUsers:       totalUsers,
		ActiveAPIKeys:    activeKeys,
		ValidationsToday: validationsToday,
	}, nil
}
