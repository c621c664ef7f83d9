// Package ledgertest provides an in-memory LedgerRepository for service
// tests. Transactions are modeled faithfully enough for the ledger
// semantics under test: ExecuteInTransaction serializes on a mutex,
// works on a snapshot and discards it when the callback errors, so
// rollback and lost-update behavior can be asserted without a database.
package ledgertest

import (
	"errors"
	"sync"

	"github.com/shopspring/decimal"

	"telebill/internal/models"
	"telebill/internal/repositories"
)

type state struct {
	bills    map[uint]*models.Bill // keyed by user id
	payments []models.Payment
	calls    []models.Call
	users    map[uint]bool
	nextID   uint
}

func (s *state) clone() *state {
	c := &state{
		bills:    make(map[uint]*models.Bill, len(s.bills)),
		payments: append([]models.Payment(nil), s.payments...),
		calls:    append([]models.Call(nil), s.calls...),
		users:    make(map[uint]bool, len(s.users)),
		nextID:   s.nextID,
	}
	for k, v := range s.bills {
		b := *v
		c.bills[k] = &b
	}
	for k := range s.users {
		c.users[k] = true
	}
	return c
}

// Fake is an in-memory repositories.LedgerRepository.
type Fake struct {
	mu sync.Mutex
	st *state

	// BalanceDeltaErr makes every ApplyBalanceDelta fail, for
	// atomicity tests.
	BalanceDeltaErr error
}

func New() *Fake {
	return &Fake{st: &state{
		bills:  make(map[uint]*models.Bill),
		users:  make(map[uint]bool),
		nextID: 1,
	}}
}

// AddUser registers a user id as existing.
func (f *Fake) AddUser(id uint) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.st.users[id] = true
}

// AddBill registers a user with a bill holding the given balance and tariff.
func (f *Fake) AddBill(userID uint, balance, tariff decimal.Decimal) *models.Bill {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.st.users[userID] = true
	bill := &models.Bill{
		ID:      f.st.nextID,
		UserID:  userID,
		Balance: balance,
		Tariff:  tariff,
	}
	f.st.nextID++
	f.st.bills[userID] = bill
	return bill
}

// Balance returns the current balance of the user's bill.
func (f *Fake) Balance(userID uint) decimal.Decimal {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.st.bills[userID].Balance
}

// Payments returns all recorded payments.
func (f *Fake) Payments() []models.Payment {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Payment(nil), f.st.payments...)
}

// Calls returns all recorded calls.
func (f *Fake) Calls() []models.Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Call(nil), f.st.calls...)
}

// view is the handle passed to transaction callbacks; it works on the
// transaction's snapshot without re-locking.
type view struct {
	f  *Fake
	st *state
}

func (f *Fake) ExecuteInTransaction(fn func(repositories.LedgerRepository) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	tx := &view{f: f, st: f.st.clone()}
	if err := fn(tx); err != nil {
		return err
	}
	f.st = tx.st
	return nil
}

// Non-transactional reads lock and delegate to a view of live state.

func (f *Fake) locked(fn func(*view) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return fn(&view{f: f, st: f.st})
}

func (f *Fake) CreateBill(bill *models.Bill) error {
	return f.locked(func(v *view) error { return v.CreateBill(bill) })
}

func (f *Fake) GetBillByUserID(userID uint) (*models.Bill, error) {
	var bill *models.Bill
	err := f.locked(func(v *view) error {
		var err error
		bill, err = v.GetBillByUserID(userID)
		return err
	})
	return bill, err
}

func (f *Fake) GetBillByUserIDForUpdate(userID uint) (*models.Bill, error) {
	return f.GetBillByUserID(userID)
}

func (f *Fake) UpdateTariff(billID uint, tariff decimal.Decimal) error {
	return f.locked(func(v *view) error { return v.UpdateTariff(billID, tariff) })
}

func (f *Fake) ApplyBalanceDelta(billID uint, delta decimal.Decimal) error {
	return f.locked(func(v *view) error { return v.ApplyBalanceDelta(billID, delta) })
}

func (f *Fake) CreatePayment(payment *models.Payment) error {
	return f.locked(func(v *view) error { return v.CreatePayment(payment) })
}

func (f *Fake) PaymentsByBillID(billID uint, offset, limit int) ([]models.Payment, int64, error) {
	var out []models.Payment
	var total int64
	err := f.locked(func(v *view) error {
		var err error
		out, total, err = v.PaymentsByBillID(billID, offset, limit)
		return err
	})
	return out, total, err
}

func (f *Fake) CreateCall(call *models.Call) error {
	return f.locked(func(v *view) error { return v.CreateCall(call) })
}

func (f *Fake) CallsByUserID(userID uint, status models.CallStatus, offset, limit int) ([]models.Call, int64, error) {
	var out []models.Call
	var total int64
	err := f.locked(func(v *view) error {
		var err error
		out, total, err = v.CallsByUserID(userID, status, offset, limit)
		return err
	})
	return out, total, err
}

func (f *Fake) UserExists(id uint) (bool, error) {
	var ok bool
	err := f.locked(func(v *view) error {
		var err error
		ok, err = v.UserExists(id)
		return err
	})
	return ok, err
}

// view implementation

func (v *view) CreateBill(bill *models.Bill) error {
	bill.ID = v.st.nextID
	v.st.nextID++
	b := *bill
	v.st.bills[bill.UserID] = &b
	return nil
}

func (v *view) GetBillByUserID(userID uint) (*models.Bill, error) {
	bill, ok := v.st.bills[userID]
	if !ok {
		return nil, repositories.ErrBillNotFound
	}
	b := *bill
	return &b, nil
}

func (v *view) GetBillByUserIDForUpdate(userID uint) (*models.Bill, error) {
	return v.GetBillByUserID(userID)
}

func (v *view) UpdateTariff(billID uint, tariff decimal.Decimal) error {
	for _, bill := range v.st.bills {
		if bill.ID == billID {
			bill.Tariff = tariff
			return nil
		}
	}
	return repositories.ErrBillNotFound
}

func (v *view) ApplyBalanceDelta(billID uint, delta decimal.Decimal) error {
	if v.f.BalanceDeltaErr != nil {
		return v.f.BalanceDeltaErr
	}
	for _, bill := range v.st.bills {
		if bill.ID == billID {
			bill.Balance = bill.Balance.Add(delta)
			return nil
		}
	}
	return repositories.ErrBillNotFound
}

func (v *view) CreatePayment(payment *models.Payment) error {
	payment.ID = v.st.nextID
	v.st.nextID++
	v.st.payments = append(v.st.payments, *payment)
	return nil
}

func (v *view) PaymentsByBillID(billID uint, offset, limit int) ([]models.Payment, int64, error) {
	var matched []models.Payment
	for _, p := range v.st.payments {
		if p.BillID == billID {
			matched = append(matched, p)
		}
	}
	return page(matched, offset, limit), int64(len(matched)), nil
}

func (v *view) CreateCall(call *models.Call) error {
	call.ID = v.st.nextID
	v.st.nextID++
	v.st.calls = append(v.st.calls, *call)
	return nil
}

func (v *view) CallsByUserID(userID uint, status models.CallStatus, offset, limit int) ([]models.Call, int64, error) {
	var matched []models.Call
	for _, c := range v.st.calls {
		if c.CallerID != userID && c.CalleeID != userID {
			continue
		}
		if status != "" && c.Status != status {
			continue
		}
		matched = append(matched, c)
	}
	return page(matched, offset, limit), int64(len(matched)), nil
}

func (v *view) UserExists(id uint) (bool, error) {
	return v.st.users[id], nil
}

func (v *view) ExecuteInTransaction(fn func(repositories.LedgerRepository) error) error {
	return errors.New("nested transactions are not supported")
}

func page[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
