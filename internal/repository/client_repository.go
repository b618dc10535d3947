package repository

import (
	"context"

	"gorm.io/gorm"

	"clientdesk/internal/model"
)

// ClientRepository defines client persistence operations.
type ClientRepository interface {
	Create(ctx context.Context, client *model.Client) error
	Update(ctx context.Context, client *model.Client) error
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*model.Client, error)
	// List returns one page of clients. A non-nil managerID restricts the
	// result to that manager's portfolio before search and sort apply.
	List(ctx context.Context, managerID *uint, q ListQuery) ([]model.Client, int64, error)
	EmailTaken(ctx context.Context, email string, exceptID uint) (bool, error)
	// ReassignManager moves every client of fromID to toID and returns how many moved.
	ReassignManager(ctx context.Context, fromID, toID uint) (int64, error)
	// Count returns the number of clients and how many of them have a manager.
	Count(ctx context.Context, managerID *uint) (total, active int64, err error)
}

var clientUpdateColumns = []string{"name", "email", "manager_id"}

type clientRepository struct {
	db *gorm.DB
}

// NewClientRepository creates a new client repository.
func NewClientRepository(db *gorm.DB) ClientRepository {
	return &clientRepository{db: db}
}

// Create creates a new client.
func (r *clientRepository) Create(ctx context.Context, client *model.Client) error {
	return translate(r.db.WithContext(ctx).Omit("Manager").Create(client).Error)
}

// Update writes the editable columns of an existing client. It never inserts:
// a row deleted in the meantime yields gorm.ErrRecordNotFound.
func (r *clientRepository) Update(ctx context.Context, client *model.Client) error {
	res := r.db.WithContext(ctx).Model(client).
		Select(clientUpdateColumns).
		Updates(client)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes a client by ID.
func (r *clientRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.Client{}, id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// FindByID finds a client by ID together with its manager.
func (r *clientRepository) FindByID(ctx context.Context, id uint) (*model.Client, error) {
	var client model.Client
	if err := r.db.WithContext(ctx).Preload("Manager").Where("id = ?", id).First(&client).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *clientRepository) List(ctx context.Context, managerID *uint, q ListQuery) ([]model.Client, int64, error) {
	q = q.Normalize()
	base := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&model.Client{}).Scopes(ownedBy(managerID), search(q.Search))
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var clients []model.Client
	if err := base().
		Scopes(sorted(clientSortColumns, q), paginate(q)).
		Preload("Manager").
		Find(&clients).Error; err != nil {
		return nil, 0, err
	}
	return clients, total, nil
}

func (r *clientRepository) EmailTaken(ctx context.Context, email string, exceptID uint) (bool, error) {
	var count int64
	tx := r.db.WithContext(ctx).Model(&model.Client{}).Where("email = ?", email)
	if exceptID != 0 {
		tx = tx.Where("id <> ?", exceptID)
	}
	if err := tx.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *clientRepository) ReassignManager(ctx context.Context, fromID, toID uint) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Client{}).
		Where("manager_id = ?", fromID).
		Update("manager_id", toID)
	if res.Error != nil {
		return 0, translate(res.Error)
	}
	return res.RowsAffected, nil
}

func (r *clientRepository) Count(ctx context.Context, managerID *uint) (total, active int64, err error) {
	if err = r.db.WithContext(ctx).Model(&model.Client{}).Scopes(ownedBy(managerID)).Count(&total).Error; err != nil {
		return 0, 0, err
	}
	if err = r.db.WithContext(ctx).Model(&model.Client{}).Scopes(ownedBy(managerID)).
		Where("manager_id IS NOT NULL").Count(&active).Error; err != nil {
		return 0, 0, err
	}
	return total, active, nil
}
