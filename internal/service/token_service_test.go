package service

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/auth"
)

func TestIssueAndValidate(t *testing.T) {
	repo := newTestRepo(t)
	user := createUser(t, repo, "alice", "alice@x.com", "secret1", true)
	svc := NewTokenService(repo, newTestManager(t), nil)
	ctx := context.Background()

	pair, err := svc.Issue(ctx, user)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if pair.Access.Token == "" || pair.Refresh.Token == "" || pair.Refresh.JTI == "" {
		t.Fatalf("incomplete pair: %+v", pair)
	}

	got, err := svc.Validate(ctx, pair.Access.Token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if got.ID != user.ID {
		t.Fatalf("validated user %d, want %d", got.ID, user.ID)
	}

	// A refresh token is not an access token.
	_, err = svc.Validate(ctx, pair.Refresh.Token)
	var tokenErr *TokenError
	if !errors.As(err, &tokenErr) || tokenErr.Reason != TokenInvalid {
		t.Fatalf("expected invalid token error, got %v", err)
	}
}

func TestRefreshAndRevoke(t *testing.T) {
	repo := newTestRepo(t)
	user := createUser(t, repo, "alice", "alice@x.com", "secret1", true)
	cache := newFakeRevocationCache()
	svc := NewTokenService(repo, newTestManager(t), cache)
	ctx := context.Background()

	pair, err := svc.Issue(ctx, user)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	access, err := svc.Refresh(ctx, pair.Refresh.Token)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if _, err := svc.Validate(ctx, access); err != nil {
		t.Fatalf("refreshed access token must validate: %v", err)
	}

	// Without rotation the same refresh token keeps working.
	if _, err := svc.Refresh(ctx, pair.Refresh.Token); err != nil {
		t.Fatalf("second refresh: %v", err)
	}

	if err := svc.Revoke(ctx, pair.Refresh.Token); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if ttl, ok := cache.revoked[pair.Refresh.JTI]; !ok || ttl <= 0 {
		t.Fatalf("expected cached revocation with positive ttl, got %v %v", ttl, ok)
	}
	if err := svc.Revoke(ctx, pair.Refresh.Token); err != nil {
		t.Fatalf("second revoke must be a no-op: %v", err)
	}

	_, err = svc.Refresh(ctx, pair.Refresh.Token)
	var tokenErr *TokenError
	if !errors.As(err, &tokenErr) || tokenErr.Reason != TokenBlacklisted {
		t.Fatalf("expected blacklisted error, got %v", err)
	}
}

func TestRefreshFallsBackToDatabase(t *testing.T) {
	repo := newTestRepo(t)
	user := createUser(t, repo, "alice", "alice@x.com", "secret1", true)
	manager := newTestManager(t)
	ctx := context.Background()

	pair, err := NewTokenService(repo, manager, nil).Issue(ctx, user)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if err := NewTokenService(repo, manager, nil).Revoke(ctx, pair.Refresh.Token); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	broken := newFakeRevocationCache()
	broken.err = errors.New("connection refused")
	_, err = NewTokenService(repo, manager, broken).Refresh(ctx, pair.Refresh.Token)
	var tokenErr *TokenError
	if !errors.As(err, &tokenErr) || tokenErr.Reason != TokenBlacklisted {
		t.Fatalf("expected blacklisted error from database, got %v", err)
	}
}

func TestRevokeIgnoresUnusableTokens(t *testing.T) {
	repo := newTestRepo(t)
	user := createUser(t, repo, "alice", "alice@x.com", "secret1", true)
	svc := NewTokenService(repo, newTestManager(t), nil)
	ctx := context.Background()

	pair, err := svc.Issue(ctx, user)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	for _, token := range []string{"", "garbage", pair.Access.Token} {
		if err := svc.Revoke(ctx, token); err != nil {
			t.Fatalf("revoke %q: %v", token, err)
		}
	}
	if _, err := svc.Refresh(ctx, pair.Refresh.Token); err != nil {
		t.Fatalf("refresh token must be untouched: %v", err)
	}
}

func TestTokensOfInactiveUserAreRejected(t *testing.T) {
	repo := newTestRepo(t)
	user := createUser(t, repo, "frozen", "frozen@x.com", "secret1", false)
	svc := NewTokenService(repo, newTestManager(t), nil)
	ctx := context.Background()

	pair, err := svc.Issue(ctx, user)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	var tokenErr *TokenError
	if _, err := svc.Validate(ctx, pair.Access.Token); !errors.As(err, &tokenErr) || tokenErr.Reason != TokenInactive {
		t.Fatalf("expected inactive error, got %v", err)
	}
	if _, err := svc.Refresh(ctx, pair.Refresh.Token); !errors.As(err, &tokenErr) || tokenErr.Reason != TokenInactive {
		t.Fatalf("expected inactive error, got %v", err)
	}
}

func TestValidateRejectsForeignToken(t *testing.T) {
	repo := newTestRepo(t)
	user := createUser(t, repo, "alice", "alice@x.com", "secret1", true)
	other, err := auth.NewManager("other-secret", "storefront-test", 0, 0)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	foreign, err := other.GenerateAccessToken(user.ID, user.Role)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	_, err = NewTokenService(repo, newTestManager(t), nil).Validate(context.Background(), foreign.Token)
	var tokenErr *TokenError
	if !errors.As(err, &tokenErr) || tokenErr.Reason != TokenInvalid {
		t.Fatalf("expected invalid error, got %v", err)
	}
}

func TestPurgeExpired(t *testing.T) {
	svc := NewTokenService(newTestRepo(t), newTestManager(t), nil)
	purged, err := svc.PurgeExpired(context.Background())
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if purged != 0 {
		t.Fatalf("purged %d rows from an empty store", purged)
	}
}
