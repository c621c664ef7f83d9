package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Bill is the billing account attached to exactly one user. Balance is
// mutated only through the ledger service, never written directly by
// handlers; tariff is the price of one minute of a successful call.
type Bill struct {
	ID        uint            `gorm:"primarykey" json:"id"`
	UserID    uint            `gorm:"uniqueIndex;not null" json:"user_id"`
	Balance   decimal.Decimal `gorm:"type:numeric;not null" json:"balance"`
	Tariff    decimal.Decimal `gorm:"type:numeric;not null" json:"tariff"`
	Payments  []Payment       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"payments,omitempty"`
	CreatedAt time.Time       `json:"created"`
	UpdatedAt time.Time       `json:"-"`
}

// UpdateBillInput carries the only bill field a client may change.
type UpdateBillInput struct {
	Tariff *decimal.Decimal `json:"tariff"`
}
