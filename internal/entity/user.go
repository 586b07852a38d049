package entity

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// UserRole gates write access to the catalog. It has exactly two values.
type UserRole string

const (
	RoleCustomer UserRole = "customer"
	RoleStaff    UserRole = "staff"

	// DefaultRole is applied by the identity store when the caller passes no role.
	DefaultRole = RoleCustomer
)

// IsValid reports whether r is one of the known roles.
func (r UserRole) IsValid() bool {
	switch r {
	case RoleCustomer, RoleStaff:
		return true
	default:
		return false
	}
}

// ParseRole maps free-form input onto a role.
func ParseRole(value string) (UserRole, bool) {
	role := UserRole(strings.ToLower(strings.TrimSpace(value)))
	return role, role.IsValid()
}

// DbUser represents a persisted identity.
type DbUser struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"date_joined"`
	UpdatedAt time.Time `json:"updated_at"`

	Username     string   `gorm:"column:username;type:varchar(100);not null" json:"username"`
	UsernameKey  string   `gorm:"column:username_key;type:varchar(100);uniqueIndex;not null" json:"-"`
	Email        string   `gorm:"column:email;type:varchar(255);not null" json:"email"`
	EmailKey     string   `gorm:"column:email_key;type:varchar(255);uniqueIndex;not null" json:"-"`
	PasswordHash string   `gorm:"column:password_hash;type:varchar(255);not null" json:"-"`
	Role         UserRole `gorm:"column:role;type:varchar(20);index;not null" json:"role"`
	IsActive     bool     `gorm:"column:is_active;not null" json:"is_active"`
	IsStaff      bool     `gorm:"column:is_staff;not null;default:false" json:"is_staff"`
	IsSuperuser  bool     `gorm:"column:is_superuser;not null;default:false" json:"is_superuser"`
}

// TableName overrides default pluralised name.
func (DbUser) TableName() string {
	return "users"
}

// BeforeSave keeps the case-folded lookup columns in sync so the unique
// indexes enforce case-insensitive uniqueness.
func (u *DbUser) BeforeSave(_ *gorm.DB) error {
	u.UsernameKey = strings.ToLower(strings.TrimSpace(u.Username))
	u.EmailKey = strings.ToLower(strings.TrimSpace(u.Email))
	return nil
}

// DbProfile is the public-facing record owned by exactly one user.
type DbProfile struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID uint    `gorm:"column:user_id;uniqueIndex;not null" json:"user_id"`
	User   *DbUser `gorm:"foreignKey:UserID" json:"-"`
	Slug   string  `gorm:"column:slug;type:varchar(120);uniqueIndex;not null" json:"slug"`

	FirstName      string     `gorm:"column:first_name;type:varchar(200)" json:"first_name"`
	LastName       string     `gorm:"column:last_name;type:varchar(200)" json:"last_name"`
	ProfilePicture string     `gorm:"column:profile_picture;type:varchar(500)" json:"profile_picture"`
	Gender         string     `gorm:"column:gender;type:varchar(20)" json:"gender"`
	DateOfBirth    *time.Time `gorm:"column:date_of_birth;type:date" json:"date_of_birth"`
	Address        string     `gorm:"column:address;type:text" json:"address"`
	Phone          string     `gorm:"column:phone;type:varchar(20)" json:"phone"`
	City           string     `gorm:"column:city;type:varchar(100)" json:"city"`
	Area           string     `gorm:"column:area;type:varchar(100)" json:"area"`
	ZipCode        string     `gorm:"column:zip_code;type:varchar(10)" json:"zip_code"`
	Bio            string     `gorm:"column:bio;type:text" json:"bio"`
	MedicalHistory string     `gorm:"column:medical_history;type:text" json:"medical_history"`
}

// TableName overrides default pluralised name.
func (DbProfile) TableName() string {
	return "user_profiles"
}

// FullName joins first and last name, falling back to the owner's username.
func (p *DbProfile) FullName() string {
	if p == nil {
		return ""
	}
	name := strings.TrimSpace(p.FirstName + " " + p.LastName)
	if name == "" && p.User != nil {
		return p.User.Username
	}
	return name
}

// UserSummary is the identity description returned to clients.
type UserSummary struct {
	ID         uint      `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	Role       UserRole  `json:"role"`
	DateJoined time.Time `json:"date_joined"`
}

// ProfileResponse is the serialised profile with its owner embedded.
type ProfileResponse struct {
	User           UserSummary `json:"user"`
	Slug           string      `json:"slug"`
	FirstName      string      `json:"first_name"`
	LastName       string      `json:"last_name"`
	ProfilePicture *string     `json:"profile_picture"`
	Gender         string      `json:"gender"`
	DateOfBirth    *string     `json:"date_of_birth"`
	Address        string      `json:"address"`
	Phone          string      `json:"phone"`
	City           string      `json:"city"`
	Area           string      `json:"area"`
	ZipCode        string      `json:"zip_code"`
	Bio            string      `json:"bio"`
	MedicalHistory string      `json:"medical_history"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// ProfileUpdateRequest carries editable profile fields. Nil means unchanged.
// It binds from JSON bodies and multipart forms alike.
type ProfileUpdateRequest struct {
	FirstName           *string `json:"first_name" form:"first_name" binding:"omitempty,max=200"`
	LastName            *string `json:"last_name" form:"last_name" binding:"omitempty,max=200"`
	Gender              *string `json:"gender" form:"gender" binding:"omitempty,max=20"`
	DateOfBirth         *string `json:"date_of_birth" form:"date_of_birth"`
	Address             *string `json:"address" form:"address"`
	Phone               *string `json:"phone" form:"phone" binding:"omitempty,max=20"`
	City                *string `json:"city" form:"city" binding:"omitempty,max=100"`
	Area                *string `json:"area" form:"area" binding:"omitempty,max=100"`
	ZipCode             *string `json:"zip_code" form:"zip_code" binding:"omitempty,max=10"`
	Bio                 *string `json:"bio" form:"bio"`
	MedicalHistory      *string `json:"medical_history" form:"medical_history"`
	ClearProfilePicture bool    `json:"clear_profile_picture" form:"clear_profile_picture"`
}

// AuthRegisterRequest is the registration payload.
type AuthRegisterRequest struct {
	Username  string `json:"username" binding:"required,max=100"`
	Email     string `json:"email" binding:"required,email,max=255"`
	Password  string `json:"password" binding:"required,min=6"`
	FirstName string `json:"first_name" binding:"max=200"`
	LastName  string `json:"last_name" binding:"max=200"`
}

// AuthLoginRequest accepts either an email or a username in Login.
// Emptiness is checked by the login resolver, not by binding.
type AuthLoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// TokenRefreshRequest carries a refresh token for /token/refresh and /logout.
type TokenRefreshRequest struct {
	Refresh string `json:"refresh"`
}

// AuthLoginResponse is returned after a successful login.
type AuthLoginResponse struct {
	Access  string      `json:"access"`
	Refresh string      `json:"refresh"`
	User    UserSummary `json:"user"`
}

// TokenRefreshResponse carries a freshly minted access token.
type TokenRefreshResponse struct {
	Access string `json:"access"`
}

// DetailResponse is a single human readable message.
type DetailResponse struct {
	Detail string `json:"detail"`
}
