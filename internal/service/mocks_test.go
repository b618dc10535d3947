package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"clientdesk/internal/model"
	"clientdesk/internal/policy"
	"clientdesk/internal/repository"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
	clients *MockClientRepository
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	if args.Error(0) == nil && user.ID == 0 {
		user.ID = 100
	}
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByIDForUpdate(ctx context.Context, id uint) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context, q repository.ListQuery) ([]model.User, int64, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]model.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) EmailTaken(ctx context.Context, email string, exceptID uint) (bool, error) {
	args := m.Called(ctx, email, exceptID)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) ActiveManagers(ctx context.Context) ([]model.ManagerOption, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ManagerOption), args.Error(1)
}

func (m *MockUserRepository) CountStaff(ctx context.Context) (int64, int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) Clients() repository.ClientRepository {
	return m.clients
}

// WithTransaction runs fn against the mock itself unless an error is
// configured for the call.
func (m *MockUserRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, repo repository.UserRepository) error) error {
	args := m.Called(ctx, fn)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(ctx, m)
}

// MockClientRepository is a mock implementation of ClientRepository.
type MockClientRepository struct {
	mock.Mock
}

func (m *MockClientRepository) Create(ctx context.Context, client *model.Client) error {
	args := m.Called(ctx, client)
	if args.Error(0) == nil && client.ID == 0 {
		client.ID = 500
	}
	return args.Error(0)
}

func (m *MockClientRepository) Update(ctx context.Context, client *model.Client) error {
	args := m.Called(ctx, client)
	return args.Error(0)
}

func (m *MockClientRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockClientRepository) FindByID(ctx context.Context, id uint) (*model.Client, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Client), args.Error(1)
}

func (m *MockClientRepository) List(ctx context.Context, managerID *uint, q repository.ListQuery) ([]model.Client, int64, error) {
	args := m.Called(ctx, managerID, q)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]model.Client), args.Get(1).(int64), args.Error(2)
}

func (m *MockClientRepository) EmailTaken(ctx context.Context, email string, exceptID uint) (bool, error) {
	args := m.Called(ctx, email, exceptID)
	return args.Bool(0), args.Error(1)
}

func (m *MockClientRepository) ReassignManager(ctx context.Context, fromID, toID uint) (int64, error) {
	args := m.Called(ctx, fromID, toID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockClientRepository) Count(ctx context.Context, managerID *uint) (int64, int64, error) {
	args := m.Called(ctx, managerID)
	return args.Get(0).(int64), args.Get(1).(int64), args.Error(2)
}

// MockTokenStore is a mock implementation of TokenStoreInterface.
type MockTokenStore struct {
	mock.Mock
}

func (m *MockTokenStore) StoreRefreshToken(ctx context.Context, tokenID string, userID uint, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, userID, ttl)
	return args.Error(0)
}

func (m *MockTokenStore) GetRefreshToken(ctx context.Context, tokenID string) (uint, error) {
	args := m.Called(ctx, tokenID)
	return args.Get(0).(uint), args.Error(1)
}

func (m *MockTokenStore) DeleteRefreshToken(ctx context.Context, tokenID string) error {
	args := m.Called(ctx, tokenID)
	return args.Error(0)
}

// MockManagerService is a mock implementation of ManagerService. Only the
// pick-list is used by the client service.
type MockManagerService struct {
	mock.Mock
	ManagerService
}

func (m *MockManagerService) Options(ctx context.Context, actor policy.Actor) ([]model.ManagerOption, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ManagerOption), args.Error(1)
}

func newRepos() (*MockUserRepository, *MockClientRepository) {
	clients := new(MockClientRepository)
	return &MockUserRepository{clients: clients}, clients
}

var (
	adminActor        = policy.Actor{ID: 1, Role: model.RoleAdmin}
	superManagerActor = policy.Actor{ID: 2, Role: model.RoleSuperManager}
)

func managerActor(id uint) policy.Actor {
	return policy.Actor{ID: id, Role: model.RoleManager}
}

func uintPtr(v uint) *uint { return &v }

func strPtr(v string) *string { return &v }

func boolPtr(v bool) *bool { return &v }

func rolePtr(r model.Role) *model.Role { return &r }
