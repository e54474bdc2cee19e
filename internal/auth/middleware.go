package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/rescue-report-service/internal/domain"
	apperrors "github.com/spec-kit/rescue-report-service/pkg/util"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller as carried by the credential.
// The store is not consulted per request; the profile endpoint performs the
// live ban re-check.
type Principal struct {
	UserID string
	Role   domain.Role
	Email  string
}

// Middleware validates bearer credentials and attaches principals.
type Middleware struct {
	tokens *TokenManager
}

// NewMiddleware constructs middleware around a token manager.
func NewMiddleware(tokens *TokenManager) *Middleware {
	return &Middleware{tokens: tokens}
}

// Required rejects requests without a valid bearer credential.
func (m *Middleware) Required(c *fiber.Ctx) error {
	token, ok := bearerToken(c)
	if !ok {
		return apperrors.NewUnauthorized("missing authorization header")
	}
	claims, err := m.tokens.ParseToken(token)
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}
	c.Locals(principalKey, &Principal{UserID: claims.UserID, Role: claims.Role, Email: claims.Email})
	return c.Next()
}

// Optional attaches a principal when a valid credential is present and
// treats anything else as anonymous, so public submission keeps working.
func (m *Middleware) Optional(c *fiber.Ctx) error {
	token, ok := bearerToken(c)
	if !ok {
		return c.Next()
	}
	claims, err := m.tokens.ParseToken(token)
	if err != nil {
		return c.Next()
	}
	c.Locals(principalKey, &Principal{UserID: claims.UserID, Role: claims.Role, Email: claims.Email})
	return c.Next()
}

// RequireRole gates a route on the role hierarchy. It runs after Required,
// so a missing principal means a wiring mistake and is reported as
// unauthorized rather than forbidden.
func RequireRole(min domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !principal.Role.AtLeast(min) {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}

// PrincipalFromContext retrieves the authenticated caller, if any.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}

func bearerToken(c *fiber.Ctx) (string, bool) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}
