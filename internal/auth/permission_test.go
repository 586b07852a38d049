package auth

import (
	"net/http"
	"testing"

	"storefront/internal/entity"
)

func TestAuthorizeWrite(t *testing.T) {
	customer := &Principal{UserID: 1, Role: entity.RoleCustomer}
	staff := &Principal{UserID: 2, Role: entity.RoleStaff}
	unknown := &Principal{UserID: 3, Role: entity.UserRole("admin")}

	cases := []struct {
		name      string
		principal *Principal
		safe      bool
		want      bool
	}{
		{name: "anonymous read", principal: nil, safe: true, want: true},
		{name: "anonymous write", principal: nil, safe: false, want: false},
		{name: "customer read", principal: customer, safe: true, want: true},
		{name: "customer write", principal: customer, safe: false, want: false},
		{name: "staff read", principal: staff, safe: true, want: true},
		{name: "staff write", principal: staff, safe: false, want: true},
		{name: "unknown role write", principal: unknown, safe: false, want: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := AuthorizeWrite(tc.principal, tc.safe); got != tc.want {
				t.Fatalf("AuthorizeWrite() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestIsSafeMethod(t *testing.T) {
	safe := []string{http.MethodGet, http.MethodHead, http.MethodOptions}
	unsafe := []string{http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete}

	for _, m := range safe {
		if !IsSafeMethod(m) {
			t.Errorf("expected %s to be safe", m)
		}
	}
	for _, m := range unsafe {
		if IsSafeMethod(m) {
			t.Errorf("expected %s to be unsafe", m)
		}
	}
}
