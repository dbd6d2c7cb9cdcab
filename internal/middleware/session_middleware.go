package middleware

import (
	"log"
	"strings"

	"github.com/rajkumardasgupta/btf-app-login/internal/services"

	"github.com/gofiber/fiber/v2"
)

// SessionRequired is a Fiber middleware that resolves the bearer token to a
// live session. A request without a resolvable session is logged out as far
// as the API is concerned, whatever the underlying reason (missing header,
// bad token, revoked or unreadable session row).
func SessionRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header is required",
			})
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header format must be 'Bearer <token>'",
			})
		}

		session, err := authService.ValidateToken(parts[1])
		if err != nil {
			log.Printf("Session validation failed: %v", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired session",
			})
		}

		// Store session identity in Fiber context for subsequent handlers
		c.Locals("session_id", session.ID)
		c.Locals("email", session.Email)

		return c.Next()
	}
}
