package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storefront/internal/auth"
	"storefront/internal/entity"
	"storefront/internal/model"

	"gorm.io/gorm"
)

// IdentityParams describes a new identity. An empty Role means entity.DefaultRole.
type IdentityParams struct {
	Username string
	Email    string
	Password string
	Role     entity.UserRole
}

// PrivilegeOverrides lets callers pass explicit flags to CreatePrivilegedIdentity.
// Setting IsStaff or IsSuperuser to false is rejected.
type PrivilegeOverrides struct {
	IsStaff     *bool
	IsSuperuser *bool
}

// IdentityService 负责用户的创建、查找与凭证校验
type IdentityService struct {
	repo model.Repository
}

// NewIdentityService 创建身份服务实例
func NewIdentityService(repo model.Repository) *IdentityService {
	return &IdentityService{repo: repo}
}

// NormalizeEmail trims the address and lowercases its domain part. The local
// part keeps its case.
func NormalizeEmail(email string) string {
	trimmed := strings.TrimSpace(email)
	at := strings.LastIndex(trimmed, "@")
	if at < 0 {
		return trimmed
	}
	return trimmed[:at] + "@" + strings.ToLower(trimmed[at+1:])
}

// CreateIdentity validates and persists a new identity.
func (s *IdentityService) CreateIdentity(ctx context.Context, params IdentityParams) (*entity.DbUser, error) {
	user, err := s.buildIdentity(ctx, params)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, s.translateCreateError(ctx, user, err)
	}
	return user, nil
}

// CreatePrivilegedIdentity creates a staff superuser.
func (s *IdentityService) CreatePrivilegedIdentity(ctx context.Context, params IdentityParams, overrides PrivilegeOverrides) (*entity.DbUser, error) {
	if overrides.IsStaff != nil && !*overrides.IsStaff {
		return nil, newFieldError("is_staff", "Superuser must have is_staff=True.")
	}
	if overrides.IsSuperuser != nil && !*overrides.IsSuperuser {
		return nil, newFieldError("is_superuser", "Superuser must have is_superuser=True.")
	}

	params.Role = entity.RoleStaff
	user, err := s.buildIdentity(ctx, params)
	if err != nil {
		return nil, err
	}
	user.IsStaff = true
	user.IsSuperuser = true

	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, s.translateCreateError(ctx, user, err)
	}
	return user, nil
}

// CreateSuperuser adapts CreatePrivilegedIdentity for startup seeding.
func (s *IdentityService) CreateSuperuser(ctx context.Context, username, email, password string) error {
	_, err := s.CreatePrivilegedIdentity(ctx, IdentityParams{
		Username: username,
		Email:    email,
		Password: password,
	}, PrivilegeOverrides{})
	return err
}

// FindByEmail returns the identity with the given email, ignoring case.
// A missing identity yields (nil, nil).
func (s *IdentityService) FindByEmail(ctx context.Context, email string) (*entity.DbUser, error) {
	if strings.TrimSpace(email) == "" {
		return nil, nil
	}
	return s.find(s.repo.GetUserByEmail(ctx, NormalizeEmail(email)))
}

// FindByUsername returns the identity with the given username, ignoring case.
// A missing identity yields (nil, nil).
func (s *IdentityService) FindByUsername(ctx context.Context, username string) (*entity.DbUser, error) {
	if strings.TrimSpace(username) == "" {
		return nil, nil
	}
	return s.find(s.repo.GetUserByUsername(ctx, username))
}

// VerifyCredential compares plaintext against the stored hash.
func (s *IdentityService) VerifyCredential(user *entity.DbUser, plaintext string) bool {
	if user == nil {
		return false
	}
	return auth.PasswordMatches(user.PasswordHash, plaintext)
}

func (s *IdentityService) find(user *entity.DbUser, err error) (*entity.DbUser, error) {
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("lookup identity: %w", err)
	}
	return user, nil
}

// buildIdentity validates params and returns an unsaved row with the password hashed.
func (s *IdentityService) buildIdentity(ctx context.Context, params IdentityParams) (*entity.DbUser, error) {
	username := strings.TrimSpace(params.Username)
	email := NormalizeEmail(params.Email)

	fields := map[string]string{}
	if username == "" {
		fields["username"] = "This field is required."
	}
	if email == "" {
		fields["email"] = "This field is required."
	}
	if strings.TrimSpace(params.Password) == "" {
		fields["password"] = "This field may not be blank."
	} else if len(params.Password) > auth.MaxPasswordBytes {
		fields["password"] = fmt.Sprintf("Ensure this field has no more than %d bytes.", auth.MaxPasswordBytes)
	}

	role := params.Role
	if role == "" {
		role = entity.DefaultRole
	}
	if !role.IsValid() {
		fields["role"] = fmt.Sprintf("%q is not a valid choice.", role)
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Message: "Invalid input.", Fields: fields}
	}

	if err := s.checkAvailable(ctx, username, email); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(params.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	return &entity.DbUser{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}, nil
}

// checkAvailable returns a ValidationError naming every field already taken.
func (s *IdentityService) checkAvailable(ctx context.Context, username, email string) error {
	fields := map[string]string{}

	existing, err := s.FindByUsername(ctx, username)
	if err != nil {
		return err
	}
	if existing != nil {
		fields["username"] = "A user with that username already exists."
	}

	existing, err = s.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil {
		fields["email"] = "A user with that email already exists."
	}

	if len(fields) > 0 {
		return &ValidationError{Message: "Invalid input.", Fields: fields}
	}
	return nil
}

// translateCreateError turns a unique-index violation from a lost race into
// the same ValidationError the pre-check would have produced.
func (s *IdentityService) translateCreateError(ctx context.Context, user *entity.DbUser, err error) error {
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("create identity: %w", err)
	}
	if availErr := s.checkAvailable(ctx, user.Username, user.Email); availErr != nil {
		return availErr
	}
	return newValidationError("Identity already exists.")
}
