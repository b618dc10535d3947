package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"clientdesk/internal/model"
)

// UserRepository defines persistence operations for staff users.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*model.User, error)
	FindByIDForUpdate(ctx context.Context, id uint) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context, q ListQuery) ([]model.User, int64, error)
	EmailTaken(ctx context.Context, email string, exceptID uint) (bool, error)
	// ActiveManagers lists active users whose role is exactly manager.
	ActiveManagers(ctx context.Context) ([]model.ManagerOption, error)
	// CountStaff counts managers and super managers, and how many of them are active.
	CountStaff(ctx context.Context) (total, active int64, err error)
	// Clients returns a client repository bound to the same connection or transaction.
	Clients() ClientRepository
	// Transaction methods
	WithTransaction(ctx context.Context, fn func(ctx context.Context, repo UserRepository) error) error
}

var userUpdateColumns = []string{"name", "email", "password", "role", "is_active"}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository builds a GORM-backed repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return translate(r.db.WithContext(ctx).Create(user).Error)
}

// Update writes the editable columns of an existing user and reports
// gorm.ErrRecordNotFound when the row is gone.
func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	res := r.db.WithContext(ctx).Model(user).
		Select(userUpdateColumns).
		Updates(user)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.User{}, id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByIDForUpdate finds a user by ID with a row-level lock held until the
// surrounding transaction ends.
func (r *userRepository) FindByIDForUpdate(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context, q ListQuery) ([]model.User, int64, error) {
	q = q.Normalize()
	base := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&model.User{}).Scopes(search(q.Search))
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []model.User
	if err := base().Scopes(sorted(userSortColumns, q), paginate(q)).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *userRepository) EmailTaken(ctx context.Context, email string, exceptID uint) (bool, error) {
	var count int64
	tx := r.db.WithContext(ctx).Model(&model.User{}).Where("email = ?", email)
	if exceptID != 0 {
		tx = tx.Where("id <> ?", exceptID)
	}
	if err := tx.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *userRepository) ActiveManagers(ctx context.Context) ([]model.ManagerOption, error) {
	var options []model.ManagerOption
	if err := r.db.WithContext(ctx).Model(&model.User{}).
		Select("id", "name", "email").
		Where("role = ? AND is_active = ?", model.RoleManager, true).
		Order("name").
		Find(&options).Error; err != nil {
		return nil, err
	}
	return options, nil
}

func (r *userRepository) CountStaff(ctx context.Context) (total, active int64, err error) {
	staff := []model.Role{model.RoleManager, model.RoleSuperManager}
	if err = r.db.WithContext(ctx).Model(&model.User{}).Where("role IN ?", staff).Count(&total).Error; err != nil {
		return 0, 0, err
	}
	if err = r.db.WithContext(ctx).Model(&model.User{}).
		Where("role IN ? AND is_active = ?", staff, true).Count(&active).Error; err != nil {
		return 0, 0, err
	}
	return total, active, nil
}

func (r *userRepository) Clients() ClientRepository {
	return &clientRepository{db: r.db}
}

// WithTransaction executes fn within a database transaction. Repositories
// reached through the repo argument, including repo.Clients(), share it.
func (r *userRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, repo UserRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := &userRepository{db: tx}
		return fn(ctx, txRepo)
	})
}
