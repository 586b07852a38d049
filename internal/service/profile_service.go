package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront/internal/entity"
	"storefront/internal/model"
	"storefront/internal/storage"

	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

// ProfileService 管理用户资料：懒分配 slug、部分更新、头像替换
type ProfileService struct {
	repo    model.Repository
	storage storage.Storage
}

// NewProfileService 创建资料服务
func NewProfileService(repo model.Repository, store storage.Storage) *ProfileService {
	return &ProfileService{repo: repo, storage: store}
}

// GetOrCreateProfile returns the user's profile, creating one with a fresh
// slug when the user has none yet.
func (s *ProfileService) GetOrCreateProfile(ctx context.Context, user *entity.DbUser) (*entity.DbProfile, error) {
	if user == nil || user.ID == 0 {
		return nil, fmt.Errorf("profile owner is required")
	}

	profile, err := s.repo.GetProfileByUserID(ctx, user.ID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("load profile: %w", err)
	}

	profile = &entity.DbProfile{UserID: user.ID, User: user}
	exists := func(candidate string) (bool, error) {
		return s.repo.ProfileSlugExists(ctx, candidate)
	}
	_, err = withSlugRetry("profile", exists, profile.FullName(), func(slug string) error {
		profile.Slug = slug
		createErr := s.repo.CreateProfile(ctx, profile)
		if errors.Is(createErr, gorm.ErrDuplicatedKey) {
			// Another request may have created the profile first.
			if existing, getErr := s.repo.GetProfileByUserID(ctx, user.ID); getErr == nil {
				profile = existing
				return nil
			}
		}
		return createErr
	})
	if err != nil {
		if _, ok := IsValidation(err); ok {
			return nil, err
		}
		return nil, fmt.Errorf("create profile: %w", err)
	}
	return profile, nil
}

// GetProfileBySlug returns the public profile for slug or ErrNotFound.
func (s *ProfileService) GetProfileBySlug(ctx context.Context, slug string) (*entity.DbProfile, error) {
	profile, err := s.repo.GetProfileBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("profile %q: %w", slug, ErrNotFound)
		}
		return nil, fmt.Errorf("load profile: %w", err)
	}
	return profile, nil
}

// UpdateProfile applies a partial update to the user's own profile. A new
// picture replaces the old one, whose file is removed after the update commits.
// The slug never changes.
func (s *ProfileService) UpdateProfile(ctx context.Context, user *entity.DbUser, req entity.ProfileUpdateRequest, picture *Upload) (*entity.DbProfile, error) {
	profile, err := s.GetOrCreateProfile(ctx, user)
	if err != nil {
		return nil, err
	}

	updates, err := profileUpdatesFromRequest(req)
	if err != nil {
		return nil, err
	}

	var newKey, oldKey string
	switch {
	case picture != nil:
		newKey, err = saveImage(ctx, s.storage, storage.CategoryProfilePictures, "profile_picture", picture)
		if err != nil {
			if _, ok := IsValidation(err); ok {
				return nil, err
			}
			return nil, fmt.Errorf("store profile picture: %w", err)
		}
		updates.ProfilePicture = &newKey
		oldKey = profile.ProfilePicture
	case req.ClearProfilePicture && profile.ProfilePicture != "":
		empty := ""
		updates.ProfilePicture = &empty
		oldKey = profile.ProfilePicture
	}

	if err := s.repo.UpdateProfile(ctx, user.ID, updates); err != nil {
		removeBlobs(ctx, s.storage, newKey)
		return nil, fmt.Errorf("update profile: %w", err)
	}
	if oldKey != "" && oldKey != newKey {
		removeBlobs(ctx, s.storage, oldKey)
	}

	updated, err := s.repo.GetProfileByUserID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("reload profile: %w", err)
	}
	return updated, nil
}

func profileUpdatesFromRequest(req entity.ProfileUpdateRequest) (entity.ProfileUpdates, error) {
	updates := entity.ProfileUpdates{
		FirstName:      trimmed(req.FirstName),
		LastName:       trimmed(req.LastName),
		Gender:         trimmed(req.Gender),
		Address:        req.Address,
		Phone:          trimmed(req.Phone),
		City:           trimmed(req.City),
		Area:           trimmed(req.Area),
		ZipCode:        trimmed(req.ZipCode),
		Bio:            req.Bio,
		MedicalHistory: req.MedicalHistory,
	}

	if req.DateOfBirth != nil {
		value := strings.TrimSpace(*req.DateOfBirth)
		if value == "" {
			updates.ClearDateOfBirth = true
		} else {
			dob, err := time.Parse(dateLayout, value)
			if err != nil {
				return entity.ProfileUpdates{}, newFieldError("date_of_birth", "Date has wrong format. Use YYYY-MM-DD.")
			}
			updates.DateOfBirth = &dob
		}
	}
	return updates, nil
}

func trimmed(value *string) *string {
	if value == nil {
		return nil
	}
	v := strings.TrimSpace(*value)
	return &v
}
