// Package call implements the call admission workflow: the distinct
// parties and existence checks, the balance sufficiency gate, the call
// record insert and the charge for billable statuses.
package call

import (
	"context"
	"log"

	"telebill/internal/models"
	"telebill/internal/repositories"
	"telebill/internal/repositories/cache"
	"telebill/internal/services/billing"
	"telebill/internal/utils"
)

type Service interface {
	// CreateCall runs the call workflow for an already-validated input.
	CreateCall(ctx context.Context, input *models.CreateCallInput) (*models.Call, error)

	// ListCalls returns calls where the user is caller or callee,
	// optionally filtered by status.
	ListCalls(ctx context.Context, userID uint, status models.CallStatus, offset, limit int) ([]models.Call, int64, error)
}

type service struct {
	ledger repositories.LedgerRepository
	cache  *cache.CacheService
}

// NewService creates a new call service.
func NewService(ledger repositories.LedgerRepository, cacheService *cache.CacheService) Service {
	if ledger == nil {
		panic("ledger repository is required")
	}
	return &service{
		ledger: ledger,
		cache:  cacheService,
	}
}

// CreateCall admits and records one call. For a billable status the
// sufficiency check, the insert and the debit all run inside a single
// transaction holding the caller's bill lock, so no other request can
// move the balance between the check and the charge. Any failure along
// the way rolls the whole thing back: a billable call row never exists
// without its charge.
func (s *service) CreateCall(ctx context.Context, input *models.CreateCallInput) (*models.Call, error) {
	if input.CallerID == input.CalleeID {
		return nil, &SelfCallError{UserID: input.CallerID}
	}
	if input.Status.Billable() && input.Duration == nil {
		return nil, ErrMissingDuration
	}

	call := &models.Call{
		CallerID:  input.CallerID,
		CalleeID:  input.CalleeID,
		Duration:  input.Duration,
		Status:    input.Status,
		Reference: utils.GenerateReference(),
	}

	err := s.ledger.ExecuteInTransaction(func(tx repositories.LedgerRepository) error {
		for _, id := range []uint{input.CallerID, input.CalleeID} {
			exists, err := tx.UserExists(id)
			if err != nil {
				return err
			}
			if !exists {
				return repositories.ErrUserNotFound
			}
		}

		if !input.Status.Billable() {
			// Missed and declined calls are pure records.
			return tx.CreateCall(call)
		}

		bill, err := tx.GetBillByUserIDForUpdate(input.CallerID)
		if err != nil {
			return err
		}
		if !billing.CanAffordCall(bill.Balance, bill.Tariff) {
			return &InsufficientBalanceError{UserID: input.CallerID}
		}

		if err := tx.CreateCall(call); err != nil {
			return err
		}

		cost := billing.CallCost(*call.Duration, bill.Tariff)
		return tx.ApplyBalanceDelta(bill.ID, cost.Neg())
	})
	if err != nil {
		return nil, err
	}

	if input.Status.Billable() {
		s.invalidateBill(ctx, input.CallerID)
	}
	return call, nil
}

func (s *service) ListCalls(ctx context.Context, userID uint, status models.CallStatus, offset, limit int) ([]models.Call, int64, error) {
	return s.ledger.CallsByUserID(userID, status, offset, limit)
}

func (s *service) invalidateBill(ctx context.Context, userID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateBill(ctx, userID); err != nil {
		log.Printf("failed to invalidate bill cache for user %d: %v", userID, err)
	}
}
