package service

import (
	"context"
	"strings"
	"testing"

	"storefront/internal/entity"
)

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Alice@Example.COM", "Alice@example.com"},
		{"  bob@X.com ", "bob@x.com"},
		{"no-at-sign", "no-at-sign"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeEmail(tt.in); got != tt.want {
			t.Errorf("NormalizeEmail(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCreateIdentityDefaults(t *testing.T) {
	svc := NewIdentityService(newTestRepo(t))

	user, err := svc.CreateIdentity(context.Background(), IdentityParams{
		Username: " carol ",
		Email:    "carol@EXAMPLE.com",
		Password: "hunter22",
	})
	if err != nil {
		t.Fatalf("create identity: %v", err)
	}
	if user.ID == 0 {
		t.Fatal("expected persisted id")
	}
	if user.Username != "carol" || user.Email != "carol@example.com" {
		t.Fatalf("unexpected normalisation: %q %q", user.Username, user.Email)
	}
	if user.Role != entity.DefaultRole || !user.IsActive || user.IsStaff || user.IsSuperuser {
		t.Fatalf("unexpected defaults: %+v", user)
	}
	if user.PasswordHash == "hunter22" || !svc.VerifyCredential(user, "hunter22") {
		t.Fatal("password must be stored hashed and verifiable")
	}
}

func TestCreateIdentityValidation(t *testing.T) {
	svc := NewIdentityService(newTestRepo(t))
	ctx := context.Background()

	tests := []struct {
		name   string
		params IdentityParams
		fields []string
	}{
		{"missing everything", IdentityParams{}, []string{"username", "email", "password"}},
		{"bad role", IdentityParams{Username: "a", Email: "a@x.com", Password: "pw", Role: "admin"}, []string{"role"}},
		{"blank password", IdentityParams{Username: "a", Email: "a@x.com", Password: "      "}, []string{"password"}},
		{"password too long", IdentityParams{Username: "a", Email: "a@x.com", Password: strings.Repeat("x", 73)}, []string{"password"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateIdentity(ctx, tt.params)
			requireFieldError(t, err, tt.fields...)
		})
	}
}

func TestCreateIdentityRejectsDuplicatesIgnoringCase(t *testing.T) {
	svc := NewIdentityService(newTestRepo(t))
	ctx := context.Background()

	if _, err := svc.CreateIdentity(ctx, IdentityParams{Username: "dave", Email: "dave@x.com", Password: "pw"}); err != nil {
		t.Fatalf("create identity: %v", err)
	}

	_, err := svc.CreateIdentity(ctx, IdentityParams{Username: "DAVE", Email: "other@x.com", Password: "pw"})
	requireFieldError(t, err, "username")

	_, err = svc.CreateIdentity(ctx, IdentityParams{Username: "other", Email: "Dave@X.com", Password: "pw"})
	requireFieldError(t, err, "email")
}

func TestCreatePrivilegedIdentity(t *testing.T) {
	svc := NewIdentityService(newTestRepo(t))
	ctx := context.Background()
	no := false
	yes := true

	_, err := svc.CreatePrivilegedIdentity(ctx, IdentityParams{Username: "root", Email: "root@x.com", Password: "pw"}, PrivilegeOverrides{IsStaff: &no})
	requireFieldError(t, err, "is_staff")

	_, err = svc.CreatePrivilegedIdentity(ctx, IdentityParams{Username: "root", Email: "root@x.com", Password: "pw"}, PrivilegeOverrides{IsSuperuser: &no})
	requireFieldError(t, err, "is_superuser")

	user, err := svc.CreatePrivilegedIdentity(ctx, IdentityParams{Username: "root", Email: "root@x.com", Password: "pw", Role: entity.RoleCustomer}, PrivilegeOverrides{IsStaff: &yes})
	if err != nil {
		t.Fatalf("create privileged identity: %v", err)
	}
	if user.Role != entity.RoleStaff || !user.IsStaff || !user.IsSuperuser || !user.IsActive {
		t.Fatalf("unexpected privileges: %+v", user)
	}
}

func TestFindReturnsNilWhenAbsent(t *testing.T) {
	svc := NewIdentityService(newTestRepo(t))
	ctx := context.Background()

	for _, find := range []func(context.Context, string) (*entity.DbUser, error){svc.FindByEmail, svc.FindByUsername} {
		user, err := find(ctx, "ghost@x.com")
		if err != nil || user != nil {
			t.Fatalf("expected (nil, nil), got (%v, %v)", user, err)
		}
	}
	if svc.VerifyCredential(nil, "pw") {
		t.Fatal("nil user must not verify")
	}
}
