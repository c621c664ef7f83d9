package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"telebill/internal/models"
	"telebill/internal/repositories"
	"telebill/internal/services/call"
	"telebill/internal/utils"
	"telebill/internal/utils/pagination"
	"telebill/internal/validation"
)

type CallHandler struct {
	callService call.Service
}

func NewCallHandler(callService call.Service) *CallHandler {
	return &CallHandler{
		callService: callService,
	}
}

// Create records a call. Only the authenticated user may appear as the
// caller, since the charge lands on the caller's bill.
func (h *CallHandler) Create(c *fiber.Ctx) error {
	claims, ok := c.Locals("claims").(*models.UserClaims)
	if !ok || claims == nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input models.CreateCallInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}

	v := validation.New()
	v.Call(&input)
	if !v.Valid() {
		return utils.Respond(c, fiber.StatusBadRequest, fiber.Map{"errors": v.Errors})
	}

	if input.CallerID != claims.UserID {
		return utils.Forbidden(c, "caller must be the authenticated user")
	}

	created, err := h.callService.CreateCall(c.Context(), &input)
	if err != nil {
		return mapCallError(c, err)
	}
	return utils.Created(c, fiber.Map{"data": created})
}

// List returns the target user's calls, optionally filtered by status.
func (h *CallHandler) List(c *fiber.Ctx) error {
	userID := c.Locals("targetUserID").(uint)

	status := models.CallStatus(c.Query("status"))
	if status != "" && !status.Valid() {
		return utils.BadRequest(c, "status must be one of: successful, missed, declined")
	}

	p := pagination.ParseFromRequest(c)
	calls, total, err := h.callService.ListCalls(c.Context(), userID, status, p.Offset, p.Limit)
	if err != nil {
		return utils.InternalError(c, "failed to list calls")
	}
	p.Total = total
	return utils.Success(c, pagination.Response(p, calls))
}

func mapCallError(c *fiber.Ctx, err error) error {
	var selfCall *call.SelfCallError
	var insufficient *call.InsufficientBalanceError
	switch {
	case errors.As(err, &selfCall), errors.As(err, &insufficient):
		return utils.BadRequest(c, err.Error())
	case errors.Is(err, call.ErrMissingDuration):
		return utils.BadRequest(c, err.Error())
	case errors.Is(err, repositories.ErrUserNotFound):
		return utils.NotFound(c, "user not found")
	case errors.Is(err, repositories.ErrBillNotFound):
		return utils.NotFound(c, "bill not found")
	default:
		return utils.InternalError(c, "operation failed")
	}
}
