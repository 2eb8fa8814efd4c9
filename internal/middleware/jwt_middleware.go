package middleware

import (
	"strings"

	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
)

const principalKey = "principal"

// TokenValidator turns a bearer token into session claims.
type TokenValidator interface {
	ValidateToken(token string) (*services.Claims, error)
}

// AuthRequired is a Fiber middleware to check for a valid JWT token.
func AuthRequired(validator TokenValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return unauthorized(c, "Authorization header is required")
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") && parts[1] != "") {
			return unauthorized(c, "Authorization header format must be 'Bearer <token>'")
		}

		claims, err := validator.ValidateToken(parts[1])
		if err != nil {
			return unauthorized(c, "Invalid or expired token")
		}

		// Claims live for this request only.
		c.Locals(principalKey, claims)
		return c.Next()
	}
}

// Principal returns the claims stored by AuthRequired.
func Principal(c *fiber.Ctx) (*services.Claims, bool) {
	claims, ok := c.Locals(principalKey).(*services.Claims)
	return claims, ok && claims != nil
}

// RequireOwner rejects requests whose path parameter is not the caller's identifier.
func RequireOwner(param string) fiber.Handler {
	return requireMatch(param, func(claims *services.Claims) string { return claims.Identifier })
}

// RequireAccount rejects requests whose path parameter is not the caller's account ID.
func RequireAccount(param string) fiber.Handler {
	return requireMatch(param, func(claims *services.Claims) string { return claims.UserID })
}

func requireMatch(param string, field func(*services.Claims) string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := Principal(c)
		if !ok {
			return unauthorized(c, "Authentication required")
		}
		if c.Params(param) != field(claims) {
			return forbidden(c, "Access to another account is not allowed")
		}
		return c.Next()
	}
}

// RequireAdmin only lets identifiers listed in admins through.
func RequireAdmin(admins []string) fiber.Handler {
	allowed := make(map[string]struct{}, len(admins))
	for _, admin := range admins {
		allowed[admin] = struct{}{}
	}
	return func(c *fiber.Ctx) error {
		claims, ok := Principal(c)
		if !ok {
			return unauthorized(c, "Authentication required")
		}
		if _, ok := allowed[claims.Identifier]; !ok {
			return forbidden(c, "Admin access required")
		}
		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": message})
}

func forbidden(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": message})
}
