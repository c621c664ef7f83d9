package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"telebill/internal/models"
	"telebill/internal/repositories"
	"telebill/internal/services/billing"
	"telebill/internal/utils"
	"telebill/internal/validation"
)

type BillHandler struct {
	billingService billing.Service
}

func NewBillHandler(billingService billing.Service) *BillHandler {
	return &BillHandler{
		billingService: billingService,
	}
}

// Get returns the bill owned by the target user.
func (h *BillHandler) Get(c *fiber.Ctx) error {
	userID := c.Locals("targetUserID").(uint)
	bill, err := h.billingService.GetBill(c.Context(), userID)
	if err != nil {
		return mapBillError(c, err)
	}
	return utils.Success(c, fiber.Map{"data": bill})
}

// Update changes the tariff on the target user's bill. The balance is
// not patchable; it only moves through payments and call charges.
func (h *BillHandler) Update(c *fiber.Ctx) error {
	userID := c.Locals("targetUserID").(uint)

	var input models.UpdateBillInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}

	v := validation.New()
	v.BillUpdate(&input)
	if !v.Valid() {
		return utils.Respond(c, fiber.StatusBadRequest, fiber.Map{"errors": v.Errors})
	}

	bill, err := h.billingService.UpdateTariff(c.Context(), userID, *input.Tariff)
	if err != nil {
		return mapBillError(c, err)
	}
	return utils.Success(c, fiber.Map{"data": bill})
}

func mapBillError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, repositories.ErrBillNotFound):
		return utils.NotFound(c, "bill not found")
	case errors.Is(err, billing.ErrInvalidTariff),
		errors.Is(err, billing.ErrInvalidAmount):
		return utils.BadRequest(c, err.Error())
	case errors.Is(err, billing.ErrChargeFailed):
		return utils.BadRequest(c, err.Error())
	default:
		return utils.InternalError(c, "operation failed")
	}
}
