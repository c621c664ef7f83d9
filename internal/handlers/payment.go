package handlers

import (
	"github.com/gofiber/fiber/v2"

	"telebill/internal/models"
	"telebill/internal/services/billing"
	"telebill/internal/utils"
	"telebill/internal/utils/pagination"
	"telebill/internal/validation"
)

type PaymentHandler struct {
	billingService billing.Service
}

func NewPaymentHandler(billingService billing.Service) *PaymentHandler {
	return &PaymentHandler{
		billingService: billingService,
	}
}

// Create records a payment and credits the target user's bill.
func (h *PaymentHandler) Create(c *fiber.Ctx) error {
	userID := c.Locals("targetUserID").(uint)

	var input models.CreatePaymentInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}

	v := validation.New()
	v.Payment(&input)
	if !v.Valid() {
		return utils.Respond(c, fiber.StatusBadRequest, fiber.Map{"errors": v.Errors})
	}

	payment, err := h.billingService.CreatePayment(c.Context(), userID, &input)
	if err != nil {
		return mapBillError(c, err)
	}
	return utils.Created(c, fiber.Map{"data": payment})
}

// List returns the payment history of the target user's bill.
func (h *PaymentHandler) List(c *fiber.Ctx) error {
	userID := c.Locals("targetUserID").(uint)

	p := pagination.ParseFromRequest(c)
	payments, total, err := h.billingService.ListPayments(c.Context(), userID, p.Offset, p.Limit)
	if err != nil {
		return mapBillError(c, err)
	}
	p.Total = total
	return utils.Success(c, pagination.Response(p, payments))
}
