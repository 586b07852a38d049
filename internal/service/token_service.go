package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/auth"
	"storefront/internal/cache"
	"storefront/internal/entity"
	"storefront/internal/metrics"
	"storefront/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// TokenService issues, validates, refreshes and revokes session tokens.
// Refresh tokens are not rotated: one stays usable until it expires or is
// blacklisted.
type TokenService struct {
	repo        model.Repository
	manager     *auth.Manager
	revocations cache.RevocationCache
}

// NewTokenService 创建令牌服务。revocations 可以为 nil，此时只查询数据库。
func NewTokenService(repo model.Repository, manager *auth.Manager, revocations cache.RevocationCache) *TokenService {
	return &TokenService{
		repo:        repo,
		manager:     manager,
		revocations: revocations,
	}
}

// Issue signs an access/refresh pair for user and records the refresh token.
func (s *TokenService) Issue(ctx context.Context, user *entity.DbUser) (*auth.TokenPair, error) {
	pair, err := s.manager.GenerateTokenPair(user)
	if err != nil {
		return nil, fmt.Errorf("sign tokens: %w", err)
	}

	outstanding := &entity.DbOutstandingToken{
		JTI:       pair.Refresh.JTI,
		UserID:    user.ID,
		ExpiresAt: pair.Refresh.ExpiresAt,
	}
	if err := s.repo.CreateOutstandingToken(ctx, outstanding); err != nil {
		return nil, fmt.Errorf("record refresh token: %w", err)
	}

	metrics.TokensIssuedTotal.WithLabelValues(string(auth.TokenTypeAccess)).Inc()
	metrics.TokensIssuedTotal.WithLabelValues(string(auth.TokenTypeRefresh)).Inc()
	return pair, nil
}

// Validate checks an access token and returns the identity it belongs to.
func (s *TokenService) Validate(ctx context.Context, access string) (*entity.DbUser, error) {
	claims, err := s.manager.ParseToken(access, auth.TokenTypeAccess)
	if err != nil {
		return nil, classifyParseError(err)
	}
	return s.activeUser(ctx, claims.UserID)
}

// Refresh exchanges a refresh token for a new access token.
func (s *TokenService) Refresh(ctx context.Context, refresh string) (string, error) {
	claims, err := s.manager.ParseToken(refresh, auth.TokenTypeRefresh)
	if err != nil {
		return "", classifyParseError(err)
	}

	revoked, err := s.isRevoked(ctx, claims.ID)
	if err != nil {
		return "", err
	}
	if revoked {
		return "", tokenError(TokenBlacklisted, nil)
	}

	user, err := s.activeUser(ctx, claims.UserID)
	if err != nil {
		return "", err
	}

	access, err := s.manager.GenerateAccessToken(user.ID, user.Role)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	metrics.TokensIssuedTotal.WithLabelValues(string(auth.TokenTypeAccess)).Inc()
	return access.Token, nil
}

// Revoke blacklists a refresh token. Malformed, expired and already revoked
// tokens are accepted silently; only storage failures return an error.
func (s *TokenService) Revoke(ctx context.Context, refresh string) error {
	claims, err := s.manager.ParseToken(refresh, auth.TokenTypeRefresh)
	if err != nil {
		logrus.WithError(err).Debug("ignoring revoke of unusable refresh token")
		return nil
	}

	expiresAt := claims.ExpiresAt.Time
	row := &entity.DbBlacklistedToken{
		JTI:       claims.ID,
		UserID:    claims.UserID,
		ExpiresAt: expiresAt,
	}
	if err := s.repo.BlacklistToken(ctx, row); err != nil {
		return fmt.Errorf("blacklist token: %w", err)
	}
	metrics.TokenRevocationsTotal.Inc()

	if s.revocations != nil {
		if err := s.revocations.MarkRevoked(ctx, claims.ID, time.Until(expiresAt)); err != nil {
			logrus.WithError(err).WithField("user_id", claims.UserID).Warn("failed to cache token revocation")
		}
	}
	return nil
}

// PurgeExpired deletes outstanding and blacklisted rows that can no longer matter.
func (s *TokenService) PurgeExpired(ctx context.Context) (int64, error) {
	purged, err := s.repo.PurgeExpiredTokens(ctx, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("purge expired tokens: %w", err)
	}
	return purged, nil
}

// isRevoked consults the cache first; the database is authoritative on a miss
// or a cache failure.
func (s *TokenService) isRevoked(ctx context.Context, jti string) (bool, error) {
	if s.revocations != nil {
		revoked, err := s.revocations.IsRevoked(ctx, jti)
		if err != nil {
			logrus.WithError(err).Warn("revocation cache unavailable, falling back to database")
		} else if revoked {
			return true, nil
		}
	}

	revoked, err := s.repo.IsTokenBlacklisted(ctx, jti)
	if err != nil {
		return false, fmt.Errorf("check blacklist: %w", err)
	}
	return revoked, nil
}

func (s *TokenService) activeUser(ctx context.Context, userID uint) (*entity.DbUser, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, tokenError(TokenInvalid, errors.New("user not found"))
		}
		return nil, fmt.Errorf("load token user: %w", err)
	}
	if !user.IsActive {
		return nil, tokenError(TokenInactive, nil)
	}
	return user, nil
}

func classifyParseError(err error) error {
	if errors.Is(err, jwt.ErrTokenExpired) {
		return tokenError(TokenExpired, err)
	}
	return tokenError(TokenInvalid, err)
}
