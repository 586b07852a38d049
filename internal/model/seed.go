package model

import (
	"context"
	"errors"
	"strings"

	"storefront/internal/config"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// SuperuserCreator creates a privileged identity. The identity service
// implements it so seeding goes through the same validation as the API.
type SuperuserCreator interface {
	CreateSuperuser(ctx context.Context, username, email, password string) error
}

// SeedSuperuser ensures the configured superuser exists. It is a no-op when
// no credentials are configured or either the username or email is taken.
func SeedSuperuser(ctx context.Context, repo Repository, creator SuperuserCreator, cfg config.Config) error {
	if repo == nil || creator == nil {
		return nil
	}

	username := strings.TrimSpace(cfg.SuperuserUsername)
	email := strings.TrimSpace(cfg.SuperuserEmail)
	if username == "" || email == "" || cfg.SuperuserPassword == "" {
		return nil
	}

	if _, err := repo.GetUserByUsername(ctx, username); err == nil {
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if _, err := repo.GetUserByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if err := creator.CreateSuperuser(ctx, username, email, cfg.SuperuserPassword); err != nil {
		return err
	}
	logrus.WithField("username", username).Info("seeded superuser")
	return nil
}
