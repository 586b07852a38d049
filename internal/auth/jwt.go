package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront/internal/entity"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenType distinguishes short-lived access tokens from refresh tokens.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// ErrWrongTokenType is returned when an access token is presented where a
// refresh token is expected, or the other way round.
var ErrWrongTokenType = errors.New("unexpected token type")

// Claims represents JWT claims for authenticated requests.
type Claims struct {
	UserID uint            `json:"uid"`
	Role   entity.UserRole `json:"role"`
	Type   TokenType       `json:"typ"`
	jwt.RegisteredClaims
}

// IssuedToken is a signed token together with the identifiers needed to
// track or revoke it.
type IssuedToken struct {
	Token     string
	JTI       string
	ExpiresAt time.Time
}

// TokenPair is what a successful login hands back.
type TokenPair struct {
	Access  IssuedToken
	Refresh IssuedToken
}

// Manager encapsulates JWT generation and validation.
type Manager struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// ManagerOption customises a Manager.
type ManagerOption func(*Manager)

// WithClock replaces the wall clock used for issuing and validating tokens.
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewManager creates a new JWT manager.
func NewManager(secret, issuer string, accessTTL, refreshTTL time.Duration, opts ...ManagerOption) (*Manager, error) {
	trimmed := strings.TrimSpace(secret)
	if trimmed == "" {
		return nil, errors.New("jwt secret must not be empty")
	}
	if accessTTL <= 0 {
		accessTTL = 30 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	if strings.TrimSpace(issuer) == "" {
		issuer = "storefront"
	}
	m := &Manager{
		secret:     []byte(trimmed),
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// AccessTTL returns the configured access token lifetime.
func (m *Manager) AccessTTL() time.Duration { return m.accessTTL }

// RefreshTTL returns the configured refresh token lifetime.
func (m *Manager) RefreshTTL() time.Duration { return m.refreshTTL }

// GenerateTokenPair issues an access and a refresh token for the user.
func (m *Manager) GenerateTokenPair(user *entity.DbUser) (*TokenPair, error) {
	if m == nil {
		return nil, errors.New("jwt manager is nil")
	}
	if user == nil || user.ID == 0 {
		return nil, errors.New("invalid user for token generation")
	}
	access, err := m.sign(user.ID, user.Role, TokenTypeAccess, m.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := m.sign(user.ID, user.Role, TokenTypeRefresh, m.refreshTTL)
	if err != nil {
		return nil, err
	}
	return &TokenPair{Access: access, Refresh: refresh}, nil
}

// GenerateAccessToken issues a single access token.
func (m *Manager) GenerateAccessToken(userID uint, role entity.UserRole) (IssuedToken, error) {
	if m == nil {
		return IssuedToken{}, errors.New("jwt manager is nil")
	}
	if userID == 0 {
		return IssuedToken{}, errors.New("invalid user for token generation")
	}
	return m.sign(userID, role, TokenTypeAccess, m.accessTTL)
}

func (m *Manager) sign(userID uint, role entity.UserRole, typ TokenType, ttl time.Duration) (IssuedToken, error) {
	now := m.now().UTC()
	expiry := now.Add(ttl)
	jti := uuid.NewString()

	claims := Claims{
		UserID: userID,
		Role:   role,
		Type:   typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   fmt.Sprintf("%d", userID),
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiry),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return IssuedToken{}, err
	}
	return IssuedToken{Token: signed, JTI: jti, ExpiresAt: expiry}, nil
}

// ParseToken validates signature, issuer, expiry and type, and returns claims.
// Expired tokens yield an error matching jwt.ErrTokenExpired.
func (m *Manager) ParseToken(tokenString string, expected TokenType) (*Claims, error) {
	if m == nil {
		return nil, errors.New("jwt manager is nil")
	}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)

	token, err := parser.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	if claims.UserID == 0 || claims.ID == "" {
		return nil, errors.New("invalid token claims")
	}
	if claims.Type != expected {
		return nil, ErrWrongTokenType
	}
	return claims, nil
}
