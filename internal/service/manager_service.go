package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"clientdesk/internal/cache"
	"clientdesk/internal/errors"
	"clientdesk/internal/metrics"
	"clientdesk/internal/model"
	"clientdesk/internal/policy"
	"clientdesk/internal/repository"
	"clientdesk/internal/validation"
)

const (
	bcryptCost        = 10
	userCacheTTL      = 5 * time.Minute
	managerOptionsKey = "managers:options"
	managerOptionsTTL = time.Minute
)

// CreateManagerInput is the payload for creating a staff user.
type CreateManagerInput struct {
	Name                 string     `json:"name" validate:"required,max=255"`
	Email                string     `json:"email" validate:"required,email,max=255"`
	Password             string     `json:"password" validate:"required,min=8,eqfield=PasswordConfirmation"`
	PasswordConfirmation string     `json:"password_confirmation"`
	Role                 model.Role `json:"role" validate:"required,role"`
	IsActive             *bool      `json:"is_active"`
}

// UpdateManagerInput holds the fields to change. Nil fields stay as they are.
type UpdateManagerInput struct {
	Name     *string     `json:"name" validate:"omitempty,min=1,max=255"`
	Email    *string     `json:"email" validate:"omitempty,email,max=255"`
	Role     *model.Role `json:"role" validate:"omitempty,role"`
	IsActive *bool       `json:"is_active"`
}

// ChangePasswordInput is the payload for replacing a staff user's password.
type ChangePasswordInput struct {
	Password             string `json:"password" validate:"required,min=8,eqfield=PasswordConfirmation"`
	PasswordConfirmation string `json:"password_confirmation"`
}

// DeleteManagerInput names the successor who takes over the deleted manager's clients.
type DeleteManagerInput struct {
	NewManagerID uint `json:"new_manager_id" validate:"required"`
}

// ManagerService exposes staff user operations.
type ManagerService interface {
	List(ctx context.Context, actor policy.Actor, q repository.ListQuery) (*model.Page[model.User], error)
	Get(ctx context.Context, actor policy.Actor, id uint) (*model.User, error)
	Create(ctx context.Context, actor policy.Actor, in CreateManagerInput) (*model.User, error)
	Update(ctx context.Context, actor policy.Actor, id uint, in UpdateManagerInput) (*model.User, error)
	// Delete hands every client of the manager to the successor and removes
	// the manager, in one transaction. It returns how many clients moved.
	Delete(ctx context.Context, actor policy.Actor, id uint, in DeleteManagerInput) (int64, error)
	ChangePassword(ctx context.Context, actor policy.Actor, id uint, in ChangePasswordInput) error
	ToggleActive(ctx context.Context, actor policy.Actor, id uint) (*model.User, error)
	// Options lists active managers for assignment pick-lists.
	Options(ctx context.Context, actor policy.Actor) ([]model.ManagerOption, error)
	// Resolve loads the user behind an authenticated request.
	Resolve(ctx context.Context, id uint) (*model.User, error)
	// Reload is Resolve without the cache.
	Reload(ctx context.Context, id uint) (*model.User, error)
}

type managerService struct {
	repo     repository.UserRepository
	cache    *cache.Client
	validate *validation.Validator
	perPage  int
	log      zerolog.Logger
}

// NewManagerService builds a ManagerService with repository and cache.
func NewManagerService(
	repo repository.UserRepository,
	cache *cache.Client,
	validate *validation.Validator,
	perPage int,
	log zerolog.Logger,
) ManagerService {
	return &managerService{
		repo:     repo,
		cache:    cache,
		validate: validate,
		perPage:  perPage,
		log:      log,
	}
}

func (s *managerService) cacheKey(id uint) string {
	return fmt.Sprintf("user:%d", id)
}

// forget drops every cached view of the user.
func (s *managerService) forget(ctx context.Context, ids ...uint) {
	keys := []string{managerOptionsKey}
	for _, id := range ids {
		keys = append(keys, s.cacheKey(id))
	}
	_ = s.cache.Delete(ctx, keys...)
}

// bury replaces the cached user with a tombstone for one cache lifetime.
// A read-through that loaded the row before the delete committed cannot
// overwrite it, so the deleted user stops resolving at once.
func (s *managerService) bury(ctx context.Context, id uint) {
	s.cache.SetJSON(ctx, s.cacheKey(id), model.User{}, userCacheTTL)
	_ = s.cache.Delete(ctx, managerOptionsKey)
}

func (s *managerService) List(ctx context.Context, actor policy.Actor, q repository.ListQuery) (*model.Page[model.User], error) {
	if err := policy.AuthorizeUser(actor, policy.UserViewAny, nil); err != nil {
		return nil, err
	}
	if q.PerPage < 1 {
		q.PerPage = s.perPage
	}
	q = q.Normalize()

	users, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list managers: %w", err)
	}
	page := model.NewPage(users, q.Page, q.PerPage, total)
	return &page, nil
}

func (s *managerService) Get(ctx context.Context, actor policy.Actor, id uint) (*model.User, error) {
	user, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.AuthorizeUser(actor, policy.UserView, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *managerService) Create(ctx context.Context, actor policy.Actor, in CreateManagerInput) (*model.User, error) {
	if err := policy.AuthorizeUser(actor, policy.UserCreate, nil); err != nil {
		return nil, err
	}

	in.Email = normalizeEmail(in.Email)
	verr := s.validate.Check(in)
	if !verr.Has("email") {
		taken, err := s.repo.EmailTaken(ctx, in.Email, 0)
		if err != nil {
			return nil, fmt.Errorf("check email: %w", err)
		}
		if taken {
			verr.Add("email", "a user with this email already exists")
		}
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        in.Email,
		PasswordHash: hash,
		Role:         in.Role,
		IsActive:     in.IsActive == nil || *in.IsActive,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if stderrors.Is(err, repository.ErrDuplicateKey) {
			return nil, errors.FieldError("email", "a user with this email already exists")
		}
		return nil, fmt.Errorf("create manager: %w", err)
	}
	s.forget(ctx, user.ID)
	return user, nil
}

func (s *managerService) Update(ctx context.Context, actor policy.Actor, id uint, in UpdateManagerInput) (*model.User, error) {
	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.AuthorizeUser(actor, policy.UserUpdate, user); err != nil {
		return nil, err
	}

	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		in.Email = &email
	}
	verr := s.validate.Check(in)
	if in.Email != nil && !verr.Has("email") {
		taken, err := s.repo.EmailTaken(ctx, *in.Email, user.ID)
		if err != nil {
			return nil, fmt.Errorf("check email: %w", err)
		}
		if taken {
			verr.Add("email", "a user with this email already exists")
		}
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	if in.Name != nil {
		user.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		user.Email = *in.Email
	}
	if in.Role != nil {
		user.Role = *in.Role
	}
	if in.IsActive != nil {
		user.IsActive = *in.IsActive
	}

	if err := s.repo.Update(ctx, user); err != nil {
		switch {
		case stderrors.Is(err, repository.ErrDuplicateKey):
			return nil, errors.FieldError("email", "a user with this email already exists")
		case stderrors.Is(err, gorm.ErrRecordNotFound):
			return nil, errors.ErrManagerNotFound
		}
		return nil, fmt.Errorf("update manager: %w", err)
	}
	s.forget(ctx, user.ID)
	return user, nil
}

func (s *managerService) Delete(ctx context.Context, actor policy.Actor, id uint, in DeleteManagerInput) (int64, error) {
	target, err := s.load(ctx, id)
	if err != nil {
		return 0, err
	}
	if err := policy.AuthorizeUser(actor, policy.UserDelete, target); err != nil {
		return 0, err
	}

	if err := s.validate.Check(in).OrNil(); err != nil {
		return 0, err
	}
	if in.NewManagerID == target.ID {
		return 0, errors.FieldError("new_manager_id", "the new manager must differ from the manager being deleted")
	}

	var moved int64
	err = s.repo.WithTransaction(ctx, func(ctx context.Context, txRepo repository.UserRepository) error {
		if _, err := txRepo.FindByIDForUpdate(ctx, target.ID); err != nil {
			if stderrors.Is(err, gorm.ErrRecordNotFound) {
				return errors.ErrManagerNotFound
			}
			return err
		}

		successor, err := txRepo.FindByIDForUpdate(ctx, in.NewManagerID)
		if err != nil && !stderrors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if successor == nil || !successor.Role.CanSucceed() {
			return errors.FieldError("new_manager_id", "the selected manager does not exist or cannot take over clients")
		}

		moved, err = txRepo.Clients().ReassignManager(ctx, target.ID, successor.ID)
		if err != nil {
			return err
		}
		return txRepo.Delete(ctx, target.ID)
	})
	if err != nil {
		var verr *errors.ValidationError
		if stderrors.As(err, &verr) || stderrors.Is(err, errors.ErrManagerNotFound) {
			return 0, err
		}
		s.log.Error().Err(err).Uint("manager_id", target.ID).Msg("reassignment rolled back")
		return 0, fmt.Errorf("%w: %v", errors.ErrIntegrity, err)
	}

	metrics.ManagersDeleted.Inc()
	metrics.ClientsReassigned.Add(float64(moved))
	s.log.Info().
		Uint("manager_id", target.ID).
		Uint("successor_id", in.NewManagerID).
		Int64("clients_moved", moved).
		Uint("actor_id", actor.ID).
		Msg("manager deleted")

	s.bury(ctx, target.ID)
	return moved, nil
}

func (s *managerService) ChangePassword(ctx context.Context, actor policy.Actor, id uint, in ChangePasswordInput) error {
	user, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := policy.AuthorizeUser(actor, policy.UserChangePassword, user); err != nil {
		return err
	}
	if err := s.validate.Check(in).OrNil(); err != nil {
		return err
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	if err := s.repo.Update(ctx, user); err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return errors.ErrManagerNotFound
		}
		return fmt.Errorf("change password: %w", err)
	}
	return nil
}

func (s *managerService) ToggleActive(ctx context.Context, actor policy.Actor, id uint) (*model.User, error) {
	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.AuthorizeUser(actor, policy.UserUpdate, user); err != nil {
		return nil, err
	}

	user.IsActive = !user.IsActive
	if err := s.repo.Update(ctx, user); err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrManagerNotFound
		}
		return nil, fmt.Errorf("toggle active: %w", err)
	}
	s.forget(ctx, user.ID)
	return user, nil
}

func (s *managerService) Options(ctx context.Context, actor policy.Actor) ([]model.ManagerOption, error) {
	if err := policy.AuthorizeUser(actor, policy.UserChangeManager, nil); err != nil {
		return nil, err
	}
	return s.activeManagers(ctx)
}

func (s *managerService) activeManagers(ctx context.Context) ([]model.ManagerOption, error) {
	var options []model.ManagerOption
	if s.cache.GetJSON(ctx, managerOptionsKey, &options) {
		return options, nil
	}

	options, err := s.repo.ActiveManagers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active managers: %w", err)
	}
	if options == nil {
		options = []model.ManagerOption{}
	}
	s.cache.SetJSON(ctx, managerOptionsKey, options, managerOptionsTTL)
	return options, nil
}

func (s *managerService) Resolve(ctx context.Context, id uint) (*model.User, error) {
	return s.find(ctx, id)
}

func (s *managerService) Reload(ctx context.Context, id uint) (*model.User, error) {
	return s.load(ctx, id)
}

// find reads through the cache. The password hash is never cached, so the
// result must not be written back.
func (s *managerService) find(ctx context.Context, id uint) (*model.User, error) {
	var cached model.User
	if s.cache.GetJSON(ctx, s.cacheKey(id), &cached) {
		if cached.ID == 0 {
			return nil, errors.ErrManagerNotFound
		}
		if cached.ID == id {
			return &cached, nil
		}
	}

	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.SetJSONIfAbsent(ctx, s.cacheKey(id), user, userCacheTTL)
	return user, nil
}

// load always reads the stored row; use it before any write.
func (s *managerService) load(ctx context.Context, id uint) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrManagerNotFound
		}
		return nil, fmt.Errorf("find manager: %w", err)
	}
	return user, nil
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(email)
}
