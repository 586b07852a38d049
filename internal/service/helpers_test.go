package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"storefront/internal/auth"
	"storefront/internal/config"
	"storefront/internal/entity"
	"storefront/internal/model"
	"storefront/internal/storage"
)

// pngBytes is enough of a PNG for content sniffing.
var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01")

func newTestRepo(t *testing.T) model.Repository {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	repo, err := model.InitRepository(&config.Config{
		DBType: model.DBTypeSQLite,
		DBPath: fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", name),
	})
	if err != nil {
		t.Fatalf("init repository: %v", err)
	}
	return repo
}

func newTestStorage(t *testing.T) *storage.LocalStorage {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("new local storage: %v", err)
	}
	return store
}

func newTestManager(t *testing.T) *auth.Manager {
	t.Helper()
	manager, err := auth.NewManager("test-secret", "storefront-test", 30*time.Minute, 7*24*time.Hour)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	return manager
}

// createUser inserts an identity straight through the repository.
func createUser(t *testing.T, repo model.Repository, username, email, password string, active bool) *entity.DbUser {
	t.Helper()
	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := &entity.DbUser{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         entity.RoleCustomer,
		IsActive:     active,
	}
	if err := repo.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func requireFieldError(t *testing.T, err error, fields ...string) {
	t.Helper()
	vErr, ok := IsValidation(err)
	if !ok {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	for _, field := range fields {
		if _, ok := vErr.Fields[field]; !ok {
			t.Fatalf("expected field error for %q, got %v", field, vErr.Fields)
		}
	}
}

type fakeRevocationCache struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
	err     error
}

func newFakeRevocationCache() *fakeRevocationCache {
	return &fakeRevocationCache{revoked: map[string]time.Duration{}}
}

func (c *fakeRevocationCache) IsRevoked(_ context.Context, jti string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return false, c.err
	}
	_, ok := c.revoked[jti]
	return ok, nil
}

func (c *fakeRevocationCache) MarkRevoked(_ context.Context, jti string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.revoked[jti] = ttl
	return nil
}

func (c *fakeRevocationCache) Ping(context.Context) error { return c.err }
