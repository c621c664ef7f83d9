package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"telebill/internal/models"
	"telebill/internal/repositories"
	"telebill/internal/services/user"
	"telebill/internal/utils"
	"telebill/internal/utils/pagination"
	"telebill/internal/validation"
)

type UserHandler struct {
	userService user.Service
}

func NewUserHandler(userService user.Service) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// Register creates a new user together with its bill.
func (h *UserHandler) Register(c *fiber.Ctx) error {
	var input models.CreateUserInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}

	v := validation.New()
	v.UserRegistration(&input)
	if !v.Valid() {
		return utils.Respond(c, fiber.StatusBadRequest, fiber.Map{"errors": v.Errors})
	}

	created, err := h.userService.Register(&input)
	if err != nil {
		return mapUserError(c, err)
	}

	return utils.Created(c, fiber.Map{"data": created})
}

// List returns users with pagination and optional search.
func (h *UserHandler) List(c *fiber.Ctx) error {
	p := pagination.ParseFromRequest(c)
	users, total, err := h.userService.List(c.Query("search"), p.Offset, p.Limit)
	if err != nil {
		return utils.InternalError(c, "failed to list users")
	}
	p.Total = total
	return utils.Success(c, pagination.Response(p, users))
}

// Get returns one user by id. TargetExists has already resolved the id.
func (h *UserHandler) Get(c *fiber.Ctx) error {
	id := c.Locals("targetUserID").(uint)
	u, err := h.userService.Get(id)
	if err != nil {
		return mapUserError(c, err)
	}
	return utils.Success(c, fiber.Map{"data": u})
}

// Update patches the user profile. Concurrent patches of the same user
// are serialized on the user row lock inside the repository.
func (h *UserHandler) Update(c *fiber.Ctx) error {
	id := c.Locals("targetUserID").(uint)

	var input models.UpdateUserInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}

	v := validation.New()
	v.UserUpdate(&input)
	if !v.Valid() {
		return utils.Respond(c, fiber.StatusBadRequest, fiber.Map{"errors": v.Errors})
	}

	updated, err := h.userService.Update(id, &input)
	if err != nil {
		return mapUserError(c, err)
	}
	return utils.Success(c, fiber.Map{"data": updated})
}

// Delete removes the user; bill, payments and calls cascade with it.
func (h *UserHandler) Delete(c *fiber.Ctx) error {
	id := c.Locals("targetUserID").(uint)
	if err := h.userService.Delete(id); err != nil {
		return mapUserError(c, err)
	}
	return utils.Respond(c, fiber.StatusNoContent, fiber.Map{})
}

func mapUserError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, repositories.ErrUserNotFound):
		return utils.NotFound(c, "user not found")
	case errors.Is(err, repositories.ErrEmailTaken),
		errors.Is(err, repositories.ErrUsernameTaken),
		errors.Is(err, repositories.ErrDuplicateUser):
		return utils.BadRequest(c, err.Error())
	default:
		return utils.InternalError(c, "operation failed")
	}
}
