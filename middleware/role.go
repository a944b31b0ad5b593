package middleware

import (
	"github.com/gofiber/fiber/v2"
)

// RequireRole gates a route to callers holding one of the given roles. The
// role itself is established by the hosted auth provider; this only reads the
// claim set by Protected().
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals("role").(string)
		for _, r := range roles {
			if role == r {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "You don't have permission to perform this action",
		})
	}
}
