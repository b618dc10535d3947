package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"clientdesk/internal/errors"
	"clientdesk/internal/model"
	"clientdesk/internal/policy"
	"clientdesk/internal/repository"
	"clientdesk/internal/validation"
)

const (
	msgClientEmailTaken = "a client with this email already exists"
	msgManagerRequired  = "manager id is required"
	msgManagerInvalid   = "the selected manager does not exist or is not a manager"
)

// CreateClientInput is the payload for creating a client. ManagerID is
// ignored when the actor is a manager.
type CreateClientInput struct {
	Name      string `json:"name" validate:"required,max=255"`
	Email     string `json:"email" validate:"required,email,max=255"`
	ManagerID *uint  `json:"manager_id"`
}

// UpdateClientInput holds the fields to change. Nil fields stay as they are.
// ManagerID is only honoured for actors above manager.
type UpdateClientInput struct {
	Name      *string `json:"name" validate:"omitempty,min=1,max=255"`
	Email     *string `json:"email" validate:"omitempty,email,max=255"`
	ManagerID *uint   `json:"manager_id"`
}

// ChangeManagerInput is the payload of the dedicated reassignment operation.
type ChangeManagerInput struct {
	ManagerID uint `json:"manager_id" validate:"required"`
}

// ClientFilters echoes the listing options back to the caller.
type ClientFilters struct {
	Search    string `json:"search"`
	SortBy    string `json:"sort_by"`
	SortOrder string `json:"sort_order"`
}

// ClientListing is one page of visible clients. Managers is only filled for
// actors above manager.
type ClientListing struct {
	model.Page[model.Client]
	Managers []model.ManagerOption `json:"managers"`
	Filters  ClientFilters         `json:"filters"`
}

// ClientService exposes client operations scoped by the actor.
type ClientService interface {
	List(ctx context.Context, actor policy.Actor, q repository.ListQuery) (*ClientListing, error)
	Get(ctx context.Context, actor policy.Actor, id uint) (*model.Client, error)
	Create(ctx context.Context, actor policy.Actor, in CreateClientInput) (*model.Client, error)
	Update(ctx context.Context, actor policy.Actor, id uint, in UpdateClientInput) (*model.Client, error)
	Delete(ctx context.Context, actor policy.Actor, id uint) error
	ChangeManager(ctx context.Context, actor policy.Actor, id uint, in ChangeManagerInput) (*model.Client, error)
}

type clientService struct {
	clients  repository.ClientRepository
	users    repository.UserRepository
	managers ManagerService
	validate *validation.Validator
	perPage  int
}

// NewClientService creates a new client service.
func NewClientService(
	clients repository.ClientRepository,
	users repository.UserRepository,
	managers ManagerService,
	validate *validation.Validator,
	perPage int,
) ClientService {
	return &clientService{
		clients:  clients,
		users:    users,
		managers: managers,
		validate: validate,
		perPage:  perPage,
	}
}

func (s *clientService) List(ctx context.Context, actor policy.Actor, q repository.ListQuery) (*ClientListing, error) {
	if err := policy.AuthorizeClient(actor, policy.ClientViewAny, nil); err != nil {
		return nil, err
	}
	if q.PerPage < 1 {
		q.PerPage = s.perPage
	}
	q = q.Normalize()

	var owner *uint
	if !actor.OutranksManager() {
		id := actor.ID
		owner = &id
	}

	clients, total, err := s.clients.List(ctx, owner, q)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}

	listing := &ClientListing{
		Page:    model.NewPage(clients, q.Page, q.PerPage, total),
		Filters: ClientFilters{Search: q.Search, SortBy: q.SortBy, SortOrder: q.SortOrder},
	}
	if actor.OutranksManager() {
		if listing.Managers, err = s.managers.Options(ctx, actor); err != nil {
			return nil, err
		}
	}
	return listing, nil
}

func (s *clientService) Get(ctx context.Context, actor policy.Actor, id uint) (*model.Client, error) {
	client, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.AuthorizeClient(actor, policy.ClientView, client); err != nil {
		return nil, err
	}
	return client, nil
}

func (s *clientService) Create(ctx context.Context, actor policy.Actor, in CreateClientInput) (*model.Client, error) {
	if err := policy.AuthorizeClient(actor, policy.ClientCreate, nil); err != nil {
		return nil, err
	}

	in.Email = strings.TrimSpace(in.Email)
	verr := s.validate.Check(in)
	if err := s.checkClientEmail(ctx, verr, in.Email, 0); err != nil {
		return nil, err
	}

	if actor.OutranksManager() {
		switch {
		case in.ManagerID == nil || *in.ManagerID == 0:
			verr.Add("manager_id", msgManagerRequired)
		default:
			if err := s.checkAssignable(ctx, verr, *in.ManagerID); err != nil {
				return nil, err
			}
		}
	} else {
		id := actor.ID
		in.ManagerID = &id
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	client := &model.Client{
		Name:      strings.TrimSpace(in.Name),
		Email:     in.Email,
		ManagerID: in.ManagerID,
	}
	if err := s.clients.Create(ctx, client); err != nil {
		switch {
		case stderrors.Is(err, repository.ErrDuplicateKey):
			return nil, errors.FieldError("email", msgClientEmailTaken)
		case stderrors.Is(err, repository.ErrForeignKey):
			// the manager was deleted after checkAssignable saw it
			return nil, errors.FieldError("manager_id", msgManagerInvalid)
		}
		return nil, fmt.Errorf("create client: %w", err)
	}
	return client, nil
}

func (s *clientService) Update(ctx context.Context, actor policy.Actor, id uint, in UpdateClientInput) (*model.Client, error) {
	client, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.AuthorizeClient(actor, policy.ClientUpdate, client); err != nil {
		return nil, err
	}

	if !actor.OutranksManager() {
		in.ManagerID = nil
	}
	if in.Email != nil {
		email := strings.TrimSpace(*in.Email)
		in.Email = &email
	}

	verr := s.validate.Check(in)
	if in.Email != nil {
		if err := s.checkClientEmail(ctx, verr, *in.Email, client.ID); err != nil {
			return nil, err
		}
	}
	if in.ManagerID != nil {
		if err := s.checkAssignable(ctx, verr, *in.ManagerID); err != nil {
			return nil, err
		}
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	if in.Name != nil {
		client.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		client.Email = *in.Email
	}
	if in.ManagerID != nil {
		client.ManagerID = in.ManagerID
	}

	if err := s.clients.Update(ctx, client); err != nil {
		switch {
		case stderrors.Is(err, repository.ErrDuplicateKey):
			return nil, errors.FieldError("email", msgClientEmailTaken)
		case stderrors.Is(err, repository.ErrForeignKey):
			return nil, errors.FieldError("manager_id", msgManagerInvalid)
		case stderrors.Is(err, gorm.ErrRecordNotFound):
			return nil, errors.ErrClientNotFound
		}
		return nil, fmt.Errorf("update client: %w", err)
	}
	return s.find(ctx, client.ID)
}

func (s *clientService) Delete(ctx context.Context, actor policy.Actor, id uint) error {
	client, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := policy.AuthorizeClient(actor, policy.ClientDelete, client); err != nil {
		return err
	}

	if err := s.clients.Delete(ctx, client.ID); err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return errors.ErrClientNotFound
		}
		return fmt.Errorf("delete client: %w", err)
	}
	return nil
}

func (s *clientService) ChangeManager(ctx context.Context, actor policy.Actor, id uint, in ChangeManagerInput) (*model.Client, error) {
	client, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.AuthorizeClient(actor, policy.ClientUpdate, client); err != nil {
		return nil, err
	}
	if err := policy.AuthorizeClient(actor, policy.ClientChangeManager, client); err != nil {
		return nil, err
	}

	verr := s.validate.Check(in)
	if !verr.Has("manager_id") {
		if _, err := s.users.FindByID(ctx, in.ManagerID); err != nil {
			if !stderrors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("find manager: %w", err)
			}
			verr.Add("manager_id", "the selected manager does not exist")
		}
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	managerID := in.ManagerID
	client.ManagerID = &managerID
	if err := s.clients.Update(ctx, client); err != nil {
		switch {
		case stderrors.Is(err, repository.ErrForeignKey):
			return nil, errors.FieldError("manager_id", "the selected manager does not exist")
		case stderrors.Is(err, gorm.ErrRecordNotFound):
			return nil, errors.ErrClientNotFound
		}
		return nil, fmt.Errorf("change manager: %w", err)
	}
	return s.find(ctx, client.ID)
}

func (s *clientService) find(ctx context.Context, id uint) (*model.Client, error) {
	client, err := s.clients.FindByID(ctx, id)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrClientNotFound
		}
		return nil, fmt.Errorf("find client: %w", err)
	}
	return client, nil
}

// checkClientEmail adds a uniqueness failure to verr unless the email is
// already rejected or belongs to exceptID.
func (s *clientService) checkClientEmail(ctx context.Context, verr *errors.ValidationError, email string, exceptID uint) error {
	if verr.Has("email") {
		return nil
	}
	taken, err := s.clients.EmailTaken(ctx, email, exceptID)
	if err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if taken {
		verr.Add("email", msgClientEmailTaken)
	}
	return nil
}

// checkAssignable adds a failure to verr unless managerID names a user whose
// role is exactly manager.
func (s *clientService) checkAssignable(ctx context.Context, verr *errors.ValidationError, managerID uint) error {
	user, err := s.users.FindByID(ctx, managerID)
	if err != nil {
		if !stderrors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("find manager: %w", err)
		}
		verr.Add("manager_id", msgManagerInvalid)
		return nil
	}
	if !user.IsManager() {
		verr.Add("manager_id", msgManagerInvalid)
	}
	return nil
}
