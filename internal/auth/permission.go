package auth

import (
	"net/http"

	"storefront/internal/entity"
)

// Principal is the authenticated caller of a request. A nil *Principal means
// the request is anonymous.
type Principal struct {
	UserID uint
	Role   entity.UserRole
}

// IsStaff reports whether the principal may write catalog data.
func (p *Principal) IsStaff() bool {
	return p != nil && p.Role == entity.RoleStaff
}

// IsSafeMethod reports whether an HTTP method only reads.
func IsSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	default:
		return false
	}
}

// AuthorizeWrite implements staff-or-read-only: reads are open to everyone,
// writes need an authenticated staff principal.
func AuthorizeWrite(p *Principal, safe bool) bool {
	if safe {
		return true
	}
	return p.IsStaff()
}
