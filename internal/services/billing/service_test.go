package billing

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"telebill/internal/models"
	"telebill/internal/repositories"
	"telebill/internal/repositories/ledgertest"
)

type MockChargeProvider struct {
	mock.Mock
}

func (m *MockChargeProvider) Charge(amount decimal.Decimal, cardToken string) (string, error) {
	args := m.Called(amount, cardToken)
	return args.String(0), args.Error(1)
}

func (m *MockChargeProvider) Refund(chargeID string) error {
	args := m.Called(chargeID)
	return args.Error(0)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCreatePayment_CreditsBalance(t *testing.T) {
	ledger := ledgertest.New()
	ledger.AddBill(1, dec("1.00"), dec("0.50"))
	svc := NewService(ledger, nil, nil)

	payment, err := svc.CreatePayment(context.Background(), 1, &models.CreatePaymentInput{
		Amount: dec("2.50"),
	})
	require.NoError(t, err)
	assert.True(t, payment.Amount.Equal(dec("2.50")))
	assert.NotEmpty(t, payment.Reference)

	assert.True(t, ledger.Balance(1).Equal(dec("3.50")))
	require.Len(t, ledger.Payments(), 1)
	assert.Equal(t, payment.BillID, ledger.Payments()[0].BillID)
}

func TestCreatePayment_InvalidAmount(t *testing.T) {
	ledger := ledgertest.New()
	ledger.AddBill(1, dec("1.00"), dec("0.50"))
	svc := NewService(ledger, nil, nil)

	for _, amount := range []string{"0", "-5.00"} {
		_, err := svc.CreatePayment(context.Background(), 1, &models.CreatePaymentInput{
			Amount: dec(amount),
		})
		assert.ErrorIs(t, err, ErrInvalidAmount)
	}
	assert.Empty(t, ledger.Payments())
	assert.True(t, ledger.Balance(1).Equal(dec("1.00")))
}

func TestCreatePayment_BillNotFound(t *testing.T) {
	svc := NewService(ledgertest.New(), nil, nil)

	_, err := svc.CreatePayment(context.Background(), 42, &models.CreatePaymentInput{
		Amount: dec("1.00"),
	})
	assert.ErrorIs(t, err, repositories.ErrBillNotFound)
}

func TestCreatePayment_CardFunded(t *testing.T) {
	ledger := ledgertest.New()
	ledger.AddBill(1, dec("0.00"), dec("0.50"))

	provider := new(MockChargeProvider)
	provider.On("Charge", mock.Anything, "tok_visa").Return("ch_123", nil)
	svc := NewService(ledger, nil, provider)

	payment, err := svc.CreatePayment(context.Background(), 1, &models.CreatePaymentInput{
		Amount:    dec("10.00"),
		CardToken: "tok_visa",
	})
	require.NoError(t, err)
	assert.Equal(t, "ch_123", payment.Reference)
	assert.True(t, ledger.Balance(1).Equal(dec("10.00")))
	provider.AssertExpectations(t)
}

func TestCreatePayment_ChargeFailureLeavesNoTrace(t *testing.T) {
	ledger := ledgertest.New()
	ledger.AddBill(1, dec("1.00"), dec("0.50"))

	provider := new(MockChargeProvider)
	provider.On("Charge", mock.Anything, "tok_bad").Return("", ErrChargeFailed)
	svc := NewService(ledger, nil, provider)

	_, err := svc.CreatePayment(context.Background(), 1, &models.CreatePaymentInput{
		Amount:    dec("10.00"),
		CardToken: "tok_bad",
	})
	assert.ErrorIs(t, err, ErrChargeFailed)
	assert.Empty(t, ledger.Payments())
	assert.True(t, ledger.Balance(1).Equal(dec("1.00")))
}

func TestCreatePayment_MissingBillNeverChargesCard(t *testing.T) {
	ledger := ledgertest.New()

	provider := new(MockChargeProvider)
	svc := NewService(ledger, nil, provider)

	_, err := svc.CreatePayment(context.Background(), 7, &models.CreatePaymentInput{
		Amount:    dec("10.00"),
		CardToken: "tok_visa",
	})
	assert.ErrorIs(t, err, repositories.ErrBillNotFound)

	// No bill means no card charge and no dangling money.
	provider.AssertNotCalled(t, "Charge", mock.Anything, mock.Anything)
	assert.Empty(t, ledger.Payments())
}

func TestCreatePayment_RefundsChargeWhenCreditFails(t *testing.T) {
	ledger := ledgertest.New()
	ledger.AddBill(1, dec("1.00"), dec("0.50"))
	ledger.BalanceDeltaErr = assert.AnError

	provider := new(MockChargeProvider)
	provider.On("Charge", mock.Anything, "tok_visa").Return("ch_789", nil)
	provider.On("Refund", "ch_789").Return(nil)
	svc := NewService(ledger, nil, provider)

	_, err := svc.CreatePayment(context.Background(), 1, &models.CreatePaymentInput{
		Amount:    dec("10.00"),
		CardToken: "tok_visa",
	})
	require.Error(t, err)

	provider.AssertExpectations(t)
	assert.Empty(t, ledger.Payments())
	assert.True(t, ledger.Balance(1).Equal(dec("1.00")))
}

func TestCreatePayment_RollsBackWhenCreditFails(t *testing.T) {
	ledger := ledgertest.New()
	ledger.AddBill(1, dec("1.00"), dec("0.50"))
	ledger.BalanceDeltaErr = assert.AnError
	svc := NewService(ledger, nil, nil)

	_, err := svc.CreatePayment(context.Background(), 1, &models.CreatePaymentInput{
		Amount: dec("5.00"),
	})
	require.Error(t, err)

	// The payment row and the credit commit together or not at all.
	assert.Empty(t, ledger.Payments())
	assert.True(t, ledger.Balance(1).Equal(dec("1.00")))
}

func TestCreatePayment_ConcurrentNoLostUpdate(t *testing.T) {
	ledger := ledgertest.New()
	ledger.AddBill(1, dec("0.00"), dec("0.50"))
	svc := NewService(ledger, nil, nil)

	const workers = 25
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.CreatePayment(context.Background(), 1, &models.CreatePaymentInput{
				Amount: dec("1.00"),
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.True(t, ledger.Balance(1).Equal(decimal.NewFromInt(workers)),
		"final balance %s, want %d", ledger.Balance(1), workers)
	assert.Len(t, ledger.Payments(), workers)
}

func TestLedgerConservation(t *testing.T) {
	ledger := ledgertest.New()
	initial := dec("3.75")
	ledger.AddBill(1, initial, dec("0.50"))
	svc := NewService(ledger, nil, nil)

	amounts := []string{"0.01", "12.34", "5.00", "0.99"}
	sum := decimal.Zero
	for _, a := range amounts {
		_, err := svc.CreatePayment(context.Background(), 1, &models.CreatePaymentInput{
			Amount: dec(a),
		})
		require.NoError(t, err)
		sum = sum.Add(dec(a))
	}

	assert.True(t, ledger.Balance(1).Equal(initial.Add(sum)))
}

func TestUpdateTariff(t *testing.T) {
	ledger := ledgertest.New()
	ledger.AddBill(1, dec("7.00"), dec("0.50"))
	svc := NewService(ledger, nil, nil)

	bill, err := svc.UpdateTariff(context.Background(), 1, dec("0.75"))
	require.NoError(t, err)
	assert.True(t, bill.Tariff.Equal(dec("0.75")))

	// Tariff updates never touch the balance.
	assert.True(t, ledger.Balance(1).Equal(dec("7.00")))
}

func TestUpdateTariff_Invalid(t *testing.T) {
	ledger := ledgertest.New()
	ledger.AddBill(1, dec("7.00"), dec("0.50"))
	svc := NewService(ledger, nil, nil)

	for _, tariff := range []string{"0", "-0.50"} {
		_, err := svc.UpdateTariff(context.Background(), 1, dec(tariff))
		assert.ErrorIs(t, err, ErrInvalidTariff)
	}
}

func TestGetBill(t *testing.T) {
	ledger := ledgertest.New()
	ledger.AddBill(1, dec("2.00"), dec("0.50"))
	svc := NewService(ledger, nil, nil)

	bill, err := svc.GetBill(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, bill.Balance.Equal(dec("2.00")))

	_, err = svc.GetBill(context.Background(), 99)
	assert.ErrorIs(t, err, repositories.ErrBillNotFound)
}

func TestListPayments(t *testing.T) {
	ledger := ledgertest.New()
	ledger.AddBill(1, dec("0.00"), dec("0.50"))
	svc := NewService(ledger, nil, nil)

	for i := 0; i < 3; i++ {
		_, err := svc.CreatePayment(context.Background(), 1, &models.CreatePaymentInput{
			Amount: dec("1.00"),
		})
		require.NoError(t, err)
	}

	payments, total, err := svc.ListPayments(context.Background(), 1, 0, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, payments, 2)
}
