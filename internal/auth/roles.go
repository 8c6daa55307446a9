package auth

import (
	"errors"
	"strings"

	"github.com/spec-kit/servicedesk/internal/domain"
	"github.com/spec-kit/servicedesk/pkg/util/errorutil"
)

var (
	// ErrMissingCredential is returned when no credential was presented.
	ErrMissingCredential = errors.New("missing authorization header")
	// ErrUnknownRole is returned for role names outside the closed set.
	ErrUnknownRole = errors.New("unknown role")
)

// ParseRole validates raw against the closed role set. Matching is exact.
func ParseRole(raw string) (domain.Role, error) {
	role := domain.Role(strings.TrimSpace(raw))
	if !role.Valid() {
		return "", ErrUnknownRole
	}
	return role, nil
}

// Authority resolves the actor role from an Authorization header value.
//
// Two schemes are accepted: "Basic <RoleName>", where a literal role name
// stands in for the credential, and "Bearer <jwt>" carrying a signed role
// claim. Anything else fails closed with an Unauthenticated error.
type Authority struct {
	tokens *TokenManager
}

// NewAuthority builds an Authority. tokens may be nil, which disables the
// Bearer scheme.
func NewAuthority(tokens *TokenManager) *Authority {
	return &Authority{tokens: tokens}
}

// RoleFromHeader resolves the role carried by header.
func (a *Authority) RoleFromHeader(header string) (domain.Role, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", errorutil.NewUnauthorized(ErrMissingCredential.Error())
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || strings.TrimSpace(parts[1]) == "" {
		return "", errorutil.NewUnauthorized("invalid authorization header")
	}

	switch {
	case strings.EqualFold(parts[0], "Basic"):
		role, err := ParseRole(parts[1])
		if err != nil {
			return "", errorutil.NewUnauthorized("unknown role " + strings.TrimSpace(parts[1]))
		}
		return role, nil
	case strings.EqualFold(parts[0], "Bearer"):
		if a == nil || a.tokens == nil {
			return "", errorutil.NewUnauthorized("bearer tokens not enabled")
		}
		claims, err := a.tokens.ParseToken(strings.TrimSpace(parts[1]))
		if err != nil {
			return "", errorutil.NewUnauthorized("invalid token")
		}
		role, err := ParseRole(string(claims.Role))
		if err != nil {
			return "", errorutil.NewUnauthorized("token carries unknown role")
		}
		return role, nil
	default:
		return "", errorutil.NewUnauthorized("unsupported authorization scheme")
	}
}
