package service

import (
	"context"
	"strings"
	"sync"

	"storefront/internal/auth"
	"storefront/internal/entity"
	"storefront/internal/metrics"

	"github.com/sirupsen/logrus"
)

const loginRequiredMessage = "Login and password required."

// LoginResolver maps a login string that may be an email or a username to
// exactly one identity.
type LoginResolver struct {
	identities *IdentityService
}

// NewLoginResolver 创建登录解析器
func NewLoginResolver(identities *IdentityService) *LoginResolver {
	return &LoginResolver{identities: identities}
}

// ResolveLogin authenticates login/password. Strings containing "@" are tried
// as an email first and then as a username; anything else is a username only.
// Every authentication failure returns ErrInvalidCredentials.
func (r *LoginResolver) ResolveLogin(ctx context.Context, login, password string) (*entity.DbUser, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		metrics.LoginAttemptsTotal.WithLabelValues("invalid").Inc()
		return nil, newValidationError(loginRequiredMessage)
	}

	user, err := r.lookup(ctx, login)
	if err != nil {
		return nil, err
	}

	if user == nil {
		// Equalise timing with the wrong-password path.
		auth.PasswordMatches(dummyHash(), password)
		return nil, r.fail(login, "unknown login")
	}
	if !r.identities.VerifyCredential(user, password) {
		return nil, r.fail(login, "password mismatch")
	}
	if !user.IsActive {
		return nil, r.fail(login, "inactive account")
	}

	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	return user, nil
}

func (r *LoginResolver) lookup(ctx context.Context, login string) (*entity.DbUser, error) {
	if strings.Contains(login, "@") {
		user, err := r.identities.FindByEmail(ctx, login)
		if err != nil || user != nil {
			return user, err
		}
	}
	return r.identities.FindByUsername(ctx, login)
}

func (r *LoginResolver) fail(login, reason string) error {
	metrics.LoginAttemptsTotal.WithLabelValues("failed").Inc()
	logrus.WithFields(logrus.Fields{
		"login":  login,
		"reason": reason,
	}).Info("login rejected")
	return ErrInvalidCredentials
}

var (
	dummyHashOnce  sync.Once
	dummyHashValue string
)

func dummyHash() string {
	dummyHashOnce.Do(func() {
		hash, err := auth.HashPassword("storefront-timing-equaliser")
		if err == nil {
			dummyHashValue = hash
		}
	})
	return dummyHashValue
}
