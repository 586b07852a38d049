package sql

import (
	"context"
	"fmt"
	"strings"

	"storefront/internal/entity"

	"gorm.io/gorm"
)

// CreateProfile persists a profile for an existing user.
func (r *GormRepository) CreateProfile(ctx context.Context, profile *entity.DbProfile) error {
	if err := r.ready(); err != nil {
		return err
	}
	if profile == nil || profile.UserID == 0 {
		return fmt.Errorf("profile must reference a user")
	}
	if err := r.db.WithContext(ctx).Omit("User").Create(profile).Error; err != nil {
		profile.ID = 0
		return err
	}
	return nil
}

// GetProfileByUserID loads the profile owned by userID together with the user.
func (r *GormRepository) GetProfileByUserID(ctx context.Context, userID uint) (*entity.DbProfile, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	if userID == 0 {
		return nil, fmt.Errorf("invalid user id")
	}
	var profile entity.DbProfile
	if err := r.db.WithContext(ctx).Preload("User").Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// GetProfileBySlug loads a profile by its public slug.
func (r *GormRepository) GetProfileBySlug(ctx context.Context, slug string) (*entity.DbProfile, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	trimmed := strings.TrimSpace(slug)
	if trimmed == "" {
		return nil, gorm.ErrRecordNotFound
	}
	var profile entity.DbProfile
	if err := r.db.WithContext(ctx).Preload("User").Where("slug = ?", trimmed).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpdateProfile applies a partial update to the profile owned by userID.
func (r *GormRepository) UpdateProfile(ctx context.Context, userID uint, updates entity.ProfileUpdates) error {
	if err := r.ready(); err != nil {
		return err
	}
	if userID == 0 {
		return fmt.Errorf("invalid user id")
	}
	if updates.IsEmpty() {
		return nil
	}
	return r.db.WithContext(ctx).Model(&entity.DbProfile{}).Where("user_id = ?", userID).Updates(updates.ToMap()).Error
}

// ProfileSlugExists reports whether slug is already assigned to a profile.
func (r *GormRepository) ProfileSlugExists(ctx context.Context, slug string) (bool, error) {
	if err := r.ready(); err != nil {
		return false, err
	}
	return r.exists(r.db.WithContext(ctx), &entity.DbProfile{}, "slug", slug)
}
