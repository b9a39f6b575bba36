package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"service-mesh/internal/model"
)

type userRow struct {
	ID             uint      `gorm:"primaryKey;autoIncrement"`
	Email          string    `gorm:"size:255;uniqueIndex;not null"`
	Name           string    `gorm:"size:100;not null"`
	Lastname       string    `gorm:"size:100;not null"`
	HashedPassword string    `gorm:"size:255;not null"`
	IsActive       bool      `gorm:"not null;default:true;index:idx_user_active_created,priority:1"`
	CreatedAt      time.Time `gorm:"index:idx_user_active_created,priority:2"`
	UpdatedAt      time.Time
}

func (userRow) TableName() string { return "users" }

func (r userRow) toModel() *model.User {
	return &model.User{
		ID:             r.ID,
		Email:          r.Email,
		Name:           r.Name,
		Lastname:       r.Lastname,
		HashedPassword: r.HashedPassword,
		IsActive:       r.IsActive,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

// MigrateUsers creates or updates the users table.
func MigrateUsers(db *gorm.DB) error {
	if err := db.AutoMigrate(&userRow{}); err != nil {
		return fmt.Errorf("migrate users: %w", err)
	}
	return nil
}

// UserRepository handles CRUD for users.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a user and returns it as stored. A duplicate email yields
// an error matching gorm.ErrDuplicatedKey.
func (r *UserRepository) Create(ctx context.Context, in model.NewUser) (*model.User, error) {
	row := userRow{
		Email:          in.Email,
		Name:           in.Name,
		Lastname:       in.Lastname,
		HashedPassword: in.HashedPassword,
		IsActive:       true,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return r.mustGet(ctx, row.ID)
}

// GetByID returns nil without error when no user has the id.
func (r *UserRepository) GetByID(ctx context.Context, id uint) (*model.User, error) {
	var row userRow
	err := r.db.WithContext(ctx).Take(&row, id).Error
	switch {
	case err == nil:
		return row.toModel(), nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, nil
	default:
		return nil, fmt.Errorf("find user %d: %w", id, err)
	}
}

// GetByEmail returns nil without error when the email is not registered.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var row userRow
	err := r.db.WithContext(ctx).Where("email = ?", email).Take(&row).Error
	switch {
	case err == nil:
		return row.toModel(), nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, nil
	default:
		return nil, fmt.Errorf("find user by email: %w", err)
	}
}

func (r *UserRepository) Exists(ctx context.Context, email string) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&userRow{}).Where("email = ?", email).Count(&n).Error; err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	return n > 0, nil
}

// Update applies the set fields of changes and returns the row as stored
// afterwards, or nil if it does not exist. Empty changes only read.
func (r *UserRepository) Update(ctx context.Context, id uint, changes model.UserChanges) (*model.User, error) {
	if changes.Empty() {
		return r.GetByID(ctx, id)
	}
	values := make(map[string]interface{}, 4)
	if changes.Email != nil {
		values["email"] = *changes.Email
	}
	if changes.Name != nil {
		values["name"] = *changes.Name
	}
	if changes.Lastname != nil {
		values["lastname"] = *changes.Lastname
	}
	if changes.IsActive != nil {
		values["is_active"] = *changes.IsActive
	}
	if err := r.db.WithContext(ctx).Model(&userRow{}).Where("id = ?", id).Updates(values).Error; err != nil {
		return nil, fmt.Errorf("update user %d: %w", id, err)
	}
	return r.GetByID(ctx, id)
}

// Delete reports whether a row was removed.
func (r *UserRepository) Delete(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&userRow{}, id)
	if res.Error != nil {
		return false, fmt.Errorf("delete user %d: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *UserRepository) mustGet(ctx context.Context, id uint) (*model.User, error) {
	u, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("user %d vanished after insert", id)
	}
	return u, nil
}
