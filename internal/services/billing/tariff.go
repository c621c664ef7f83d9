package billing

import (
	"github.com/shopspring/decimal"
)

// CallCost returns the price of a call of the given duration (in
// seconds) at the given per-minute tariff. Billing is per started
// minute: any non-zero remainder after the whole minutes adds one more
// charged minute. A zero-length call costs nothing.
func CallCost(durationSeconds int64, tariff decimal.Decimal) decimal.Decimal {
	if durationSeconds <= 0 {
		return decimal.Zero
	}

	minutes := durationSeconds / 60
	if durationSeconds%60 != 0 {
		minutes++
	}

	return tariff.Mul(decimal.NewFromInt(minutes))
}

// CanAffordCall reports whether the balance buys at least one minute at
// the given tariff. This is the admission gate for billable calls: the
// account must be in the black and floor(balance / tariff) must be
// non-zero.
func CanAffordCall(balance, tariff decimal.Decimal) bool {
	if !balance.IsPositive() || !tariff.IsPositive() {
		return false
	}
	return !balance.Div(tariff).Floor().IsZero()
}
