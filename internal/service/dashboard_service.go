package service

import (
	"context"
	"fmt"

	"clientdesk/internal/model"
	"clientdesk/internal/policy"
	"clientdesk/internal/repository"
)

// DashboardService summarises the data visible to the actor.
type DashboardService interface {
	Statistics(ctx context.Context, actor policy.Actor) (*model.Statistics, error)
}

type dashboardService struct {
	clients repository.ClientRepository
	users   repository.UserRepository
}

// NewDashboardService creates a new dashboard service.
func NewDashboardService(clients repository.ClientRepository, users repository.UserRepository) DashboardService {
	return &dashboardService{clients: clients, users: users}
}

// Statistics counts the actor's own clients for managers. Higher roles get
// the whole client base plus manager and super manager headcounts.
func (s *dashboardService) Statistics(ctx context.Context, actor policy.Actor) (*model.Statistics, error) {
	var owner *uint
	if !actor.OutranksManager() {
		id := actor.ID
		owner = &id
	}

	total, active, err := s.clients.Count(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("count clients: %w", err)
	}
	stats := &model.Statistics{Clients: model.Counter{Active: active, Total: total}}

	if actor.OutranksManager() {
		staffTotal, staffActive, err := s.users.CountStaff(ctx)
		if err != nil {
			return nil, fmt.Errorf("count managers: %w", err)
		}
		stats.Managers = &model.Counter{Active: staffActive, Total: staffTotal}
	}
	return stats, nil
}
