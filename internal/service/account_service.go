package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"storefront/internal/entity"
	"storefront/internal/model"

	"gorm.io/gorm"
)

// MinPasswordLength is enforced on self-registration.
const MinPasswordLength = 6

// RegisterParams is the self-registration input.
type RegisterParams struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// AccountService 处理自助注册：用户与资料在同一事务中创建
type AccountService struct {
	repo       model.Repository
	identities *IdentityService
}

// NewAccountService 创建账户服务
func NewAccountService(repo model.Repository, identities *IdentityService) *AccountService {
	return &AccountService{repo: repo, identities: identities}
}

// Register creates a customer identity and its profile atomically. The profile
// slug comes from the full name, or the username when no name was given.
func (s *AccountService) Register(ctx context.Context, params RegisterParams) (*entity.DbUser, error) {
	if utf8.RuneCountInString(params.Password) < MinPasswordLength {
		return nil, newFieldError("password", fmt.Sprintf("Ensure this field has at least %d characters.", MinPasswordLength))
	}

	user, err := s.identities.buildIdentity(ctx, IdentityParams{
		Username: params.Username,
		Email:    params.Email,
		Password: params.Password,
	})
	if err != nil {
		return nil, err
	}

	profile := &entity.DbProfile{
		FirstName: strings.TrimSpace(params.FirstName),
		LastName:  strings.TrimSpace(params.LastName),
		User:      user,
	}

	exists := func(candidate string) (bool, error) {
		return s.repo.ProfileSlugExists(ctx, candidate)
	}
	_, err = withSlugRetry("profile", exists, profile.FullName(), func(slug string) error {
		profile.Slug = slug
		createErr := s.repo.CreateUserWithProfile(ctx, user, profile)
		if errors.Is(createErr, gorm.ErrDuplicatedKey) {
			// A concurrent registration may have taken the username or email.
			if availErr := s.identities.checkAvailable(ctx, user.Username, user.Email); availErr != nil {
				return availErr
			}
		}
		return createErr
	})
	if err != nil {
		if _, ok := IsValidation(err); ok {
			return nil, err
		}
		return nil, fmt.Errorf("register: %w", err)
	}
	return user, nil
}
