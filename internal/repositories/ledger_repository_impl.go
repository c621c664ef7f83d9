package repositories

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"telebill/internal/models"
)

type ledgerRepository struct {
	db *gorm.DB
}

// NewLedgerRepository creates a new instance of LedgerRepository.
func NewLedgerRepository(db *gorm.DB) LedgerRepository {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) CreateBill(bill *models.Bill) error {
	if err := r.db.Create(bill).Error; err != nil {
		return fmt.Errorf("failed to create bill: %w", err)
	}
	return nil
}

func (r *ledgerRepository) GetBillByUserID(userID uint) (*models.Bill, error) {
	var bill models.Bill
	if err := r.db.Where("user_id = ?", userID).First(&bill).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBillNotFound
		}
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}
	return &bill, nil
}

// GetBillByUserIDForUpdate takes the row lock that serializes all
// concurrent balance work on this bill. Callers must be inside
// ExecuteInTransaction; on the plain repository the lock would be
// released immediately.
func (r *ledgerRepository) GetBillByUserIDForUpdate(userID uint) (*models.Bill, error) {
	var bill models.Bill
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&bill).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBillNotFound
		}
		return nil, fmt.Errorf("failed to lock bill: %w", err)
	}
	return &bill, nil
}

func (r *ledgerRepository) UpdateTariff(billID uint, tariff decimal.Decimal) error {
	result := r.db.Model(&models.Bill{}).
		Where("id = ?", billID).
		Update("tariff", tariff)
	if result.Error != nil {
		return fmt.Errorf("failed to update tariff: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrBillNotFound
	}
	return nil
}

func (r *ledgerRepository) ApplyBalanceDelta(billID uint, delta decimal.Decimal) error {
	result := r.db.Model(&models.Bill{}).
		Where("id = ?", billID).
		Update("balance", gorm.Expr("balance + ?", delta))
	if result.Error != nil {
		return fmt.Errorf("failed to apply balance delta: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrBillNotFound
	}
	return nil
}

func (r *ledgerRepository) CreatePayment(payment *models.Payment) error {
	if err := r.db.Create(payment).Error; err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

func (r *ledgerRepository) PaymentsByBillID(billID uint, offset, limit int) ([]models.Payment, int64, error) {
	query := r.db.Model(&models.Payment{}).Where("bill_id = ?", billID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count payments: %w", err)
	}

	var payments []models.Payment
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).
		Find(&payments).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, total, nil
}

func (r *ledgerRepository) CreateCall(call *models.Call) error {
	if err := r.db.Create(call).Error; err != nil {
		return fmt.Errorf("failed to create call: %w", err)
	}
	return nil
}

func (r *ledgerRepository) CallsByUserID(userID uint, status models.CallStatus, offset, limit int) ([]models.Call, int64, error) {
	query := r.db.Model(&models.Call{}).
		Where("caller_id = ? OR callee_id = ?", userID, userID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count calls: %w", err)
	}

	var calls []models.Call
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).
		Find(&calls).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list calls: %w", err)
	}
	return calls, total, nil
}

func (r *ledgerRepository) UserExists(id uint) (bool, error) {
	var count int64
	if err := r.db.Model(&models.User{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return count > 0, nil
}

func (r *ledgerRepository) ExecuteInTransaction(fn func(LedgerRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&ledgerRepository{db: tx})
	})
}
