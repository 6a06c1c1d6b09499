package middleware

import (
	"errors"
	"log"
	"strings"

	"bloxstore/internal/models"
	"bloxstore/internal/services"

	"github.com/gofiber/fiber/v2"
)

// Locals keys set by AuthRequired.
const (
	LocalUserID = "user_id"
	LocalEmail  = "email"
)

// AuthRequired is a Fiber middleware to check for a valid JWT token.
func AuthRequired(authService *services.AuthService) fiber.Handler {
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

		claims, err := authService.ValidateToken(parts[1])
		if err != nil {
			log.Printf("JWT validation failed: %v", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
				"error":   err.Error(),
			})
		}

		userID, _ := claims["user_id"].(string)
		if userID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Token carries no user",
			})
		}
		c.Locals(LocalUserID, userID)
		c.Locals(LocalEmail, claims["email"])
		return c.Next()
	}
}

// UserID returns the id stored by AuthRequired.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(LocalUserID).(string)
	return id
}

// AdminRequired rejects callers whose profile is not an operator. It must run after AuthRequired.
func AdminRequired(profiles *services.ProfileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		profile, err := profiles.FetchProfile(c.UserContext(), UserID(c))
		if err != nil {
			if !errors.Is(err, services.ErrProfileNotFound) {
				log.Printf("Admin check failed: %v", err)
			}
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "Operator access required",
			})
		}
		if profile.Role != models.RoleAdmin || profile.IsBanned {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "Operator access required",
			})
		}
		return c.Next()
	}
}
