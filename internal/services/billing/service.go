package billing

import (
	"context"
	"fmt"
	"log"

	"github.com/shopspring/decimal"

	"telebill/internal/models"
	"telebill/internal/repositories"
	"telebill/internal/repositories/cache"
	"telebill/internal/utils"
)

// Service is the billing-side API consumed by the handlers and the call
// workflow.
type Service interface {
	// GetBill returns the bill owned by the given user.
	GetBill(ctx context.Context, userID uint) (*models.Bill, error)

	// UpdateTariff changes the per-minute price of the user's bill.
	// The balance is never touched.
	UpdateTariff(ctx context.Context, userID uint, tariff decimal.Decimal) (*models.Bill, error)

	// CreatePayment records a payment and credits the bill by the same
	// amount, atomically. With a card token the amount is collected
	// through the charge provider first, after the bill is known to
	// exist, and refunded if the credit cannot be recorded.
	CreatePayment(ctx context.Context, userID uint, input *models.CreatePaymentInput) (*models.Payment, error)

	// ListPayments returns the payment history of the user's bill.
	ListPayments(ctx context.Context, userID uint, offset, limit int) ([]models.Payment, int64, error)
}

type service struct {
	ledger   repositories.LedgerRepository
	cache    *cache.CacheService
	provider ChargeProvider
}

// NewService creates a new billing service. The charge provider may be
// nil when card-funded payments are disabled.
func NewService(ledger repositories.LedgerRepository, cacheService *cache.CacheService, provider ChargeProvider) Service {
	if ledger == nil {
		panic("ledger repository is required")
	}
	return &service{
		ledger:   ledger,
		cache:    cacheService,
		provider: provider,
	}
}

func (s *service) GetBill(ctx context.Context, userID uint) (*models.Bill, error) {
	if s.cache != nil {
		if bill, err := s.cache.GetBill(ctx, userID); err == nil {
			return bill, nil
		}
	}

	bill, err := s.ledger.GetBillByUserID(userID)
	if err != nil {
		return nil, err
	}

	s.cacheBill(ctx, bill)
	return bill, nil
}

func (s *service) UpdateTariff(ctx context.Context, userID uint, tariff decimal.Decimal) (*models.Bill, error) {
	if !tariff.IsPositive() {
		return nil, ErrInvalidTariff
	}

	// The row lock keeps the tariff change from interleaving with an
	// in-flight call charge reading tariff and balance.
	var bill *models.Bill
	err := s.ledger.ExecuteInTransaction(func(tx repositories.LedgerRepository) error {
		locked, err := tx.GetBillByUserIDForUpdate(userID)
		if err != nil {
			return err
		}
		if err := tx.UpdateTariff(locked.ID, tariff); err != nil {
			return err
		}
		locked.Tariff = tariff
		bill = locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateBill(ctx, userID)
	return bill, nil
}

func (s *service) CreatePayment(ctx context.Context, userID uint, input *models.CreatePaymentInput) (*models.Payment, error) {
	if !input.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	// The bill must exist before the card is touched; a charge against
	// an account that cannot be credited would collect real money with
	// nothing to show for it.
	if _, err := s.ledger.GetBillByUserID(userID); err != nil {
		return nil, err
	}

	reference := utils.GenerateReference()
	charged := false
	if input.CardToken != "" {
		if s.provider == nil {
			return nil, fmt.Errorf("%w: no charge provider configured", ErrChargeFailed)
		}
		chargeID, err := s.provider.Charge(input.Amount, input.CardToken)
		if err != nil {
			return nil, err
		}
		reference = chargeID
		charged = true
	}

	// One transaction, one bill lock: the payment row and the balance
	// credit become visible together or not at all.
	payment := &models.Payment{
		Amount:    input.Amount,
		Reference: reference,
	}
	err := s.ledger.ExecuteInTransaction(func(tx repositories.LedgerRepository) error {
		bill, err := tx.GetBillByUserIDForUpdate(userID)
		if err != nil {
			return err
		}
		payment.BillID = bill.ID
		if err := tx.CreatePayment(payment); err != nil {
			return err
		}
		return tx.ApplyBalanceDelta(bill.ID, input.Amount)
	})
	if err != nil {
		if charged {
			if rerr := s.provider.Refund(reference); rerr != nil {
				log.Printf("failed to refund charge %s after credit failure: %v", reference, rerr)
			}
		}
		return nil, err
	}

	s.invalidateBill(ctx, userID)
	return payment, nil
}

func (s *service) ListPayments(ctx context.Context, userID uint, offset, limit int) ([]models.Payment, int64, error) {
	bill, err := s.GetBill(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	return s.ledger.PaymentsByBillID(bill.ID, offset, limit)
}

func (s *service) cacheBill(ctx context.Context, bill *models.Bill) {
	if s.cache == nil {
		return
	}
	if err := s.cache.CacheBill(ctx, bill); err != nil {
		log.Printf("failed to cache bill %d: %v", bill.ID, err)
	}
}

func (s *service) invalidateBill(ctx context.Context, userID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateBill(ctx, userID); err != nil {
		log.Printf("failed to invalidate bill cache for user %d: %v", userID, err)
	}
}
