package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment is an immutable credit applied to a bill. Reference is an
// opaque id handed back to clients; for card-funded payments it is the
// provider charge id.
type Payment struct {
	ID        uint            `gorm:"primarykey" json:"id"`
	BillID    uint            `gorm:"index;not null" json:"bill_id"`
	Amount    decimal.Decimal `gorm:"type:numeric;not null" json:"amount"`
	Reference string          `gorm:"not null" json:"reference"`
	CreatedAt time.Time       `json:"created"`
}

// CreatePaymentInput is the payload accepted by the payment endpoint.
// CardToken is optional; when set the amount is charged to the card
// through the payment provider before the bill is credited.
type CreatePaymentInput struct {
	Amount    decimal.Decimal `json:"amount"`
	CardToken string          `json:"card_token"`
}
