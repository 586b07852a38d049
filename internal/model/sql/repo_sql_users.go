package sql

import (
	"context"
	"fmt"
	"strings"

	"storefront/internal/entity"

	"gorm.io/gorm"
)

// CreateUser persists a new user record.
func (r *GormRepository) CreateUser(ctx context.Context, user *entity.DbUser) error {
	if err := r.ready(); err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("user is nil")
	}
	return r.db.WithContext(ctx).Create(user).Error
}

// CreateUserWithProfile inserts a user and its profile in one transaction.
// On failure the generated IDs are cleared so the call can be retried.
func (r *GormRepository) CreateUserWithProfile(ctx context.Context, user *entity.DbUser, profile *entity.DbProfile) error {
	if err := r.ready(); err != nil {
		return err
	}
	if user == nil || profile == nil {
		return fmt.Errorf("user and profile are required")
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		profile.UserID = user.ID
		return tx.Omit("User").Create(profile).Error
	})
	if err != nil {
		user.ID = 0
		profile.ID = 0
		profile.UserID = 0
		return err
	}
	profile.User = user
	return nil
}

// GetUserByID loads a user by ID.
func (r *GormRepository) GetUserByID(ctx context.Context, id uint) (*entity.DbUser, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	if id == 0 {
		return nil, fmt.Errorf("invalid user id")
	}
	var user entity.DbUser
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail loads a user by email, ignoring case.
func (r *GormRepository) GetUserByEmail(ctx context.Context, email string) (*entity.DbUser, error) {
	return r.getUserByKey(ctx, "email_key", email)
}

// GetUserByUsername loads a user by username, ignoring case.
func (r *GormRepository) GetUserByUsername(ctx context.Context, username string) (*entity.DbUser, error) {
	return r.getUserByKey(ctx, "username_key", username)
}

func (r *GormRepository) getUserByKey(ctx context.Context, column, value string) (*entity.DbUser, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	key := strings.ToLower(strings.TrimSpace(value))
	if key == "" {
		return nil, gorm.ErrRecordNotFound
	}

	var user entity.DbUser
	if err := r.db.WithContext(ctx).Where(column+" = ?", key).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// CountUsers returns total user count.
func (r *GormRepository) CountUsers(ctx context.Context) (int64, error) {
	if err := r.ready(); err != nil {
		return 0, err
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&entity.DbUser{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
