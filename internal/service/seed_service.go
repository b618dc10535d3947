package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"clientdesk/internal/errors"
	"clientdesk/internal/model"
	"clientdesk/internal/repository"
)

// AdminInput describes the bootstrap administrator.
type AdminInput struct {
	Name     string
	Email    string
	Password string
}

// SeedService bootstraps data outside the request path.
type SeedService interface {
	// EnsureAdmin promotes the user with the given email to an active admin,
	// creating it when missing. It reports whether a new user was created.
	EnsureAdmin(ctx context.Context, in AdminInput) (user *model.User, created bool, err error)
	// SeedClients creates count clients spread over the active managers.
	SeedClients(ctx context.Context, count int) ([]model.Client, error)
}

type seedService struct {
	users   repository.UserRepository
	clients repository.ClientRepository
	pick    func(n int) int
}

// NewSeedService creates a new seed service.
func NewSeedService(users repository.UserRepository, clients repository.ClientRepository) SeedService {
	return &seedService{users: users, clients: clients, pick: rand.IntN}
}

func (s *seedService) EnsureAdmin(ctx context.Context, in AdminInput) (*model.User, bool, error) {
	in.Email = normalizeEmail(in.Email)
	verr := errors.NewValidationError()
	if in.Email == "" {
		verr.Add("email", "email is required")
	}
	if len(in.Password) < 8 {
		verr.Add("password", "password must be at least 8 characters")
	}
	if strings.TrimSpace(in.Name) == "" {
		verr.Add("name", "name is required")
	}
	if err := verr.OrNil(); err != nil {
		return nil, false, err
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, false, err
	}

	user, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil && !stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("find admin: %w", err)
	}

	if user != nil {
		user.Name = strings.TrimSpace(in.Name)
		user.PasswordHash = hash
		user.Role = model.RoleAdmin
		user.IsActive = true
		if err := s.users.Update(ctx, user); err != nil {
			return nil, false, fmt.Errorf("update admin: %w", err)
		}
		return user, false, nil
	}

	user = &model.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        in.Email,
		PasswordHash: hash,
		Role:         model.RoleAdmin,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, false, fmt.Errorf("create admin: %w", err)
	}
	return user, true, nil
}

func (s *seedService) SeedClients(ctx context.Context, count int) ([]model.Client, error) {
	if count < 1 {
		return nil, errors.FieldError("count", "count must be greater than 0")
	}

	managers, err := s.users.ActiveManagers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list managers: %w", err)
	}

	created := make([]model.Client, 0, count)
	for i := 0; i < count; i++ {
		suffix := strings.SplitN(uuid.NewString(), "-", 2)[0]
		client := model.Client{
			Name:  fmt.Sprintf("Client %s", strings.ToUpper(suffix)),
			Email: fmt.Sprintf("client-%s@example.com", suffix),
		}
		if len(managers) > 0 {
			id := managers[s.pick(len(managers))].ID
			client.ManagerID = &id
		}
		if err := s.clients.Create(ctx, &client); err != nil {
			return created, fmt.Errorf("create client %d: %w", i+1, err)
		}
		created = append(created, client)
	}
	return created, nil
}
