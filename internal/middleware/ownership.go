package middleware

import (
	"github.com/gofiber/fiber/v2"

	"telebill/internal/models"
	"telebill/internal/repositories"
	"telebill/internal/utils"
)

// OwnerGate guards routes addressed by an owning-user id (/users/:id/...).
// A target that does not exist yields 404 before ownership is even
// considered; a target owned by someone else yields 403. The resolved id
// is stored under "targetUserID" for the handler.
func OwnerGate(userRepo repositories.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id < 1 {
			return utils.BadRequest(c, "invalid user id")
		}

		exists, err := userRepo.Exists(uint(id))
		if err != nil {
			return utils.InternalError(c, "failed to resolve user")
		}
		if !exists {
			return utils.NotFound(c, "user not found")
		}

		claims, ok := c.Locals("claims").(*models.UserClaims)
		if !ok || claims == nil {
			return utils.Unauthorized(c, "invalid claims")
		}
		if claims.UserID != uint(id) {
			return utils.Forbidden(c, "you do not have permission to perform this action")
		}

		c.Locals("targetUserID", uint(id))
		return c.Next()
	}
}

// TargetExists is the relaxed variant used where any authenticated user
// may read the resource (user profiles): it only checks existence.
func TargetExists(userRepo repositories.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id < 1 {
			return utils.BadRequest(c, "invalid user id")
		}

		exists, err := userRepo.Exists(uint(id))
		if err != nil {
			return utils.InternalError(c, "failed to resolve user")
		}
		if !exists {
			return utils.NotFound(c, "user not found")
		}

		c.Locals("targetUserID", uint(id))
		return c.Next()
	}
}
