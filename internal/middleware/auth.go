// Package middleware provides HTTP middleware: JWT authentication and
// the per-resource ownership gate.
package middleware

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"telebill/internal/utils"
)

// Auth validates the bearer token and stores the claims in the request
// context under "claims" and the authenticated id under "userID".
func Auth(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return utils.Unauthorized(c, "missing authorization header")
	}

	if !strings.HasPrefix(authHeader, "Bearer ") {
		return utils.Unauthorized(c, "invalid authorization format")
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	_, claims, err := utils.ParseToken(tokenString)
	if err != nil {
		log.Printf("token validation error: %v", err)
		return utils.Unauthorized(c, "invalid token")
	}

	c.Locals("claims", claims)
	c.Locals("userID", claims.UserID)
	return c.Next()
}
