package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/servicedesk/internal/domain"
	"github.com/spec-kit/servicedesk/pkg/util/errorutil"
)

const roleKey = "auth_role"

// Handle resolves the caller role and stores it for downstream handlers.
func (a *Authority) Handle(c *fiber.Ctx) error {
	role, err := a.RoleFromHeader(c.Get(fiber.HeaderAuthorization))
	if err != nil {
		return err
	}
	c.Locals(roleKey, role)
	return c.Next()
}

// Optional resolves the role when an Authorization header is present and
// lets anonymous requests through. A header that does not resolve is still
// rejected.
func (a *Authority) Optional(c *fiber.Ctx) error {
	if strings.TrimSpace(c.Get(fiber.HeaderAuthorization)) == "" {
		return c.Next()
	}
	return a.Handle(c)
}

// RoleFromContext retrieves the resolved role.
func RoleFromContext(c *fiber.Ctx) (domain.Role, bool) {
	role, ok := c.Locals(roleKey).(domain.Role)
	return role, ok
}

// RequireRole ensures the resolved role is one of allowed.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	names := make([]string, 0, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
		names = append(names, string(role))
	}

	return func(c *fiber.Ctx) error {
		role, ok := RoleFromContext(c)
		if !ok {
			return errorutil.NewUnauthorized("role required")
		}
		if _, exists := allowedSet[role]; !exists {
			return errorutil.NewForbidden("role "+string(role)+" is not permitted for this action", map[string]any{
				"role":    role,
				"allowed": strings.Join(names, ", "),
			})
		}
		return c.Next()
	}
}
