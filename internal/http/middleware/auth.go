package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"gifstore/internal/access"
)

// IdentityLocalKey is the Fiber locals key holding the caller's *access.Identity.
const IdentityLocalKey = "identity"

// TokenParser verifies a bearer token and returns the identity it carries.
type TokenParser interface {
	Parse(raw string) (*access.Identity, error)
}

// Authenticate attaches the identity from a valid "Authorization: Bearer"
// header. Missing or invalid tokens leave the request anonymous; routes that
// need a user add RequireIdentity.
func Authenticate(parser TokenParser) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := bearerToken(c.Get(fiber.HeaderAuthorization))
		if raw == "" {
			return c.Next()
		}
		id, err := parser.Parse(raw)
		if err == nil {
			c.Locals(IdentityLocalKey, id)
		}
		return c.Next()
	}
}

// RequireIdentity rejects anonymous requests with 401.
func RequireIdentity() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if IdentityFrom(c) == nil {
			return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
		}
		return c.Next()
	}
}

// IdentityFrom returns the authenticated caller, or nil for anonymous requests.
func IdentityFrom(c *fiber.Ctx) *access.Identity {
	id, _ := c.Locals(IdentityLocalKey).(*access.Identity)
	return id
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
