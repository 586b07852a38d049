package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrInvalidCredentials covers unknown login, wrong password and inactive
// accounts alike, so callers cannot tell which one happened.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrNotFound is returned when a looked-up resource does not exist.
var ErrNotFound = errors.New("not found")

// ValidationError reports bad input. Fields maps a field name to a message;
// Message is the non-field summary.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	if len(e.Fields) == 0 {
		return e.Message
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	if e.Message == "" {
		return strings.Join(parts, "; ")
	}
	return e.Message + " (" + strings.Join(parts, "; ") + ")"
}

func newValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

func newFieldError(field, message string) *ValidationError {
	return &ValidationError{Message: "Invalid input.", Fields: map[string]string{field: message}}
}

// Token failure reasons.
const (
	TokenInvalid     = "invalid"
	TokenExpired     = "expired"
	TokenBlacklisted = "blacklisted"
	TokenInactive    = "inactive"
)

// TokenError reports why a presented token was rejected.
type TokenError struct {
	Reason string
	Err    error
}

func (e *TokenError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("token %s: %v", e.Reason, e.Err)
	}
	return "token " + e.Reason
}

func (e *TokenError) Unwrap() error { return e.Err }

func tokenError(reason string, err error) *TokenError {
	return &TokenError{Reason: reason, Err: err}
}

// IsValidation reports whether err carries a *ValidationError.
func IsValidation(err error) (*ValidationError, bool) {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return vErr, true
	}
	return nil, false
}
