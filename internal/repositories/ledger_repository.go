package repositories

import (
	"github.com/shopspring/decimal"

	"telebill/internal/models"
)

// LedgerRepository defines the billing-side database operations: bills,
// payments and calls. Balance mutations go through ApplyBalanceDelta and
// must run inside ExecuteInTransaction with the bill row locked via
// GetBillByUserIDForUpdate, so that the check-then-mutate sequences in
// the services observe one consistent balance snapshot.
type LedgerRepository interface {
	// CreateBill inserts a new bill row.
	CreateBill(bill *models.Bill) error

	// GetBillByUserID retrieves the bill owned by the given user.
	GetBillByUserID(userID uint) (*models.Bill, error)

	// GetBillByUserIDForUpdate retrieves the bill with SELECT ... FOR
	// UPDATE. Only meaningful on a transaction-scoped repository; the
	// row lock is released when that transaction commits or rolls back.
	GetBillByUserIDForUpdate(userID uint) (*models.Bill, error)

	// UpdateTariff sets the per-minute price on a bill. No balance effect.
	UpdateTariff(billID uint, tariff decimal.Decimal) error

	// ApplyBalanceDelta adds delta (which may be negative) to the bill
	// balance in a single UPDATE.
	ApplyBalanceDelta(billID uint, delta decimal.Decimal) error

	// CreatePayment inserts a payment row.
	CreatePayment(payment *models.Payment) error

	// PaymentsByBillID lists payments for one bill, newest first.
	PaymentsByBillID(billID uint, offset, limit int) ([]models.Payment, int64, error)

	// CreateCall inserts a call row.
	CreateCall(call *models.Call) error

	// CallsByUserID lists calls where the user is caller or callee,
	// newest first, optionally filtered by status.
	CallsByUserID(userID uint, status models.CallStatus, offset, limit int) ([]models.Call, int64, error)

	// UserExists reports whether a user row with the given id is present.
	UserExists(id uint) (bool, error)

	// ExecuteInTransaction runs fn against a transaction-scoped copy of
	// the repository. Any error from fn rolls the whole transaction back.
	ExecuteInTransaction(fn func(LedgerRepository) error) error
}
