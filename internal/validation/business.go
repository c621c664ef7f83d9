package validation

import (
	"telebill/internal/models"
)

// UserRegistration validates the registration payload.
func (v *Validator) UserRegistration(input *models.CreateUserInput) {
	v.Required("email", input.Email)
	v.Email("email", input.Email)
	v.Required("username", input.Username)
	v.MaxLength("username", input.Username, 256)
	v.Required("password", input.Password)
	v.MinLength("password", input.Password, 8)
}

// UserUpdate validates the user patch payload.
func (v *Validator) UserUpdate(input *models.UpdateUserInput) {
	if input.Email != nil {
		v.Required("email", *input.Email)
		v.Email("email", *input.Email)
	}
	if input.Username != nil {
		v.Required("username", *input.Username)
		v.MaxLength("username", *input.Username, 256)
	}
	if input.Password != nil {
		v.MinLength("password", *input.Password, 8)
	}
}

// Payment validates the payment payload. Amounts are strictly positive.
func (v *Validator) Payment(input *models.CreatePaymentInput) {
	v.Positive("amount", input.Amount)
}

// BillUpdate validates the bill patch payload. Only the tariff may
// change, and it must stay strictly positive.
func (v *Validator) BillUpdate(input *models.UpdateBillInput) {
	if input.Tariff == nil {
		v.AddError("tariff", "must be provided")
		return
	}
	v.Positive("tariff", *input.Tariff)
}

// Call validates the call payload. A duration is required for statuses
// that imply the call happened, and must never be negative.
func (v *Validator) Call(input *models.CreateCallInput) {
	v.Check(input.CallerID != 0, "caller_id", "must be provided")
	v.Check(input.CalleeID != 0, "callee_id", "must be provided")

	if input.Status == "" {
		v.AddError("status", "must be provided")
	} else {
		v.Check(input.Status.Valid(), "status",
			"must be one of: successful, missed, declined")
	}

	if input.Status.Billable() && input.Duration == nil {
		v.AddError("duration", "must be provided for successful calls")
	}
	if input.Duration != nil {
		v.Check(*input.Duration >= 0, "duration", "must not be negative")
	}
}
