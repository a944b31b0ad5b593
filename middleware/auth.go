package middleware

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v3"
	"github.com/golang-jwt/jwt/v4"

	"github.com/meditrack/hospital-api/config"
)

// Protected verifies tokens issued by the hosted auth provider and exposes
// the caller's identity, role and hospital to handlers. This service never
// issues tokens itself.
func Protected() fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:   []byte(config.AppConfig.JWTSecret),
		ErrorHandler: jwtError,
		SuccessHandler: func(c *fiber.Ctx) error {
			userToken := c.Locals("user")
			if userToken == nil {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "No authentication token",
				})
			}

			token, ok := userToken.(*jwt.Token)
			if !ok {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "Invalid token",
				})
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "Invalid token claims",
				})
			}

			userID, err := extractUintClaim(claims, "id")
			if err != nil {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "Invalid user ID in token",
				})
			}

			hospitalID, err := extractUintClaim(claims, "hospital_id")
			if err != nil {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "Invalid hospital ID in token",
				})
			}

			role, err := extractRole(claims)
			if err != nil {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "Invalid role in token",
				})
			}

			c.Locals("userID", userID)
			c.Locals("hospitalID", hospitalID)
			c.Locals("role", role)

			return c.Next()
		},
	})
}

// extractUintClaim handles multiple potential formats of numeric IDs in the token
func extractUintClaim(claims jwt.MapClaims, key string) (uint, error) {
	val := claims[key]
	if val == nil {
		return 0, fmt.Errorf("no %s found in claims", key)
	}

	switch v := val.(type) {
	case float64:
		return uint(v), nil
	case string:
		parsed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("could not parse %s string: %v", key, err)
		}
		return uint(parsed), nil
	case uint:
		return v, nil
	case int:
		return uint(v), nil
	default:
		return 0, fmt.Errorf("unsupported %s type: %T", key, v)
	}
}

// extractRole handles multiple potential formats of role in token
func extractRole(claims jwt.MapClaims) (string, error) {
	roleVal := claims["role"]
	if roleVal == nil {
		return "", fmt.Errorf("no role found in claims")
	}

	switch v := roleVal.(type) {
	case string:
		return v, nil
	case map[string]interface{}:
		if roleName, ok := v["name"].(string); ok {
			return roleName, nil
		}
		return "", fmt.Errorf("could not extract role name")
	default:
		return "", fmt.Errorf("unsupported role type: %T", v)
	}
}

// jwtError handles JWT errors
func jwtError(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error":   "Unauthorized",
		"message": "Invalid or expired token",
	})
}
