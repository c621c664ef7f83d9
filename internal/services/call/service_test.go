package call

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telebill/internal/models"
	"telebill/internal/repositories"
	"telebill/internal/repositories/ledgertest"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func seconds(n int64) *int64 {
	return &n
}

func TestCreateCall_SelfCall(t *testing.T) {
	ledger := ledgertest.New()
	ledger.AddBill(1, dec("100.00"), dec("0.50"))
	svc := NewService(ledger, nil)

	_, err := svc.CreateCall(context.Background(), &models.CreateCallInput{
		CallerID: 1,
		CalleeID: 1,
		Duration: seconds(60),
		Status:   models.CallStatusSuccessful,
	})

	var selfCall *SelfCallError
	require.ErrorAs(t, err, &selfCall)
	assert.Equal(t, uint(1), selfCall.UserID)
	assert.Empty(t, ledger.Calls())
}

func TestCreateCall_UnknownParty(t *testing.T) {
	ledger := ledgertest.New()
	ledger.AddBill(1, dec("100.00"), dec("0.50"))
	svc := NewService(ledger, nil)

	tests := []struct {
		name     string
		callerID uint
		calleeID uint
	}{
		{name: "unknown callee", callerID: 1, calleeID: 99},
		{name: "unknown caller", callerID: 99, calleeID: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateCall(context.Background(), &models.CreateCallInput{
				CallerID: tt.callerID,
				CalleeID: tt.calleeID,
				Duration: seconds(60),
				Status:   models.CallStatusSuccessful,
			})
			assert.ErrorIs(t, err, repositories.ErrUserNotFound)
		})
	}
	assert.Empty(t, ledger.Calls())
}

func TestCreateCall_InsufficientBalance(t *testing.T) {
	tests := []struct {
		name    string
		balance string
	}{
		{name: "zero balance", balance: "0.00"},
		{name: "negative balance", balance: "-2.00"},
		{name: "less than one minute", balance: "0.49"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := ledgertest.New()
			ledger.AddBill(1, dec(tt.balance), dec("0.50"))
			ledger.AddUser(2)
			svc := NewService(ledger, nil)

			_, err := svc.CreateCall(context.Background(), &models.CreateCallInput{
				CallerID: 1,
				CalleeID: 2,
				Duration: seconds(60),
				Status:   models.CallStatusSuccessful,
			})

			var insufficient *InsufficientBalanceError
			require.ErrorAs(t, err, &insufficient)
			assert.Equal(t, uint(1), insufficient.UserID)
			assert.Empty(t, ledger.Calls())
			assert.True(t, ledger.Balance(1).Equal(dec(tt.balance)))
		})
	}
}

func TestCreateCall_BillableWithoutDuration(t *testing.T) {
	ledger := ledgertest.New()
	ledger.AddBill(1, dec("100.00"), dec("0.50"))
	ledger.AddUser(2)
	svc := NewService(ledger, nil)

	_, err := svc.CreateCall(context.Background(), &models.CreateCallInput{
		CallerID: 1,
		CalleeID: 2,
		Status:   models.CallStatusSuccessful,
	})
	assert.ErrorIs(t, err, ErrMissingDuration)
	assert.Empty(t, ledger.Calls())
	assert.True(t, ledger.Balance(1).Equal(dec("100.00")))
}

func TestCreateCall_ExactlyOneMinuteAffordable(t *testing.T) {
	ledger := ledgertest.New()
	ledger.AddBill(1, dec("0.50"), dec("0.50"))
	ledger.AddUser(2)
	svc := NewService(ledger, nil)

	created, err := svc.CreateCall(context.Background(), &models.CreateCallInput{
		CallerID: 1,
		CalleeID: 2,
		Duration: seconds(60),
		Status:   models.CallStatusSuccessful,
	})
	require.NoError(t, err)
	assert.Equal(t, models.CallStatusSuccessful, created.Status)

	// Reaches zero, not negative.
	assert.True(t, ledger.Balance(1).IsZero())
	assert.Len(t, ledger.Calls(), 1)
}

func TestCreateCall_PartialMinuteRoundsUp(t *testing.T) {
	ledger := ledgertest.New()
	ledger.AddBill(1, dec("5.00"), dec("0.50"))
	ledger.AddUser(2)
	svc := NewService(ledger, nil)

	// 125s = 2 full minutes + 5s, charged as 3 minutes.
	_, err := svc.CreateCall(context.Background(), &models.CreateCallInput{
		CallerID: 1,
		CalleeID: 2,
		Duration: seconds(125),
		Status:   models.CallStatusSuccessful,
	})
	require.NoError(t, err)
	assert.True(t, ledger.Balance(1).Equal(dec("3.50")))
}

func TestCreateCall_NonBillableIsBalanceNeutral(t *testing.T) {
	for _, status := range []models.CallStatus{models.CallStatusMissed, models.CallStatusDeclined} {
		t.Run(string(status), func(t *testing.T) {
			ledger := ledgertest.New()
			ledger.AddBill(1, dec("0.00"), dec("0.50"))
			ledger.AddUser(2)
			svc := NewService(ledger, nil)

			// No duration, and a balance that could not afford a call.
			created, err := svc.CreateCall(context.Background(), &models.CreateCallInput{
				CallerID: 1,
				CalleeID: 2,
				Status:   status,
			})
			require.NoError(t, err)
			assert.Nil(t, created.Duration)
			assert.True(t, ledger.Balance(1).IsZero())
			assert.Len(t, ledger.Calls(), 1)
		})
	}
}

func TestCreateCall_NonBillableWithDuration(t *testing.T) {
	ledger := ledgertest.New()
	ledger.AddBill(1, dec("10.00"), dec("0.50"))
	ledger.AddUser(2)
	svc := NewService(ledger, nil)

	// A supplied duration on a missed call is recorded but never charged.
	created, err := svc.CreateCall(context.Background(), &models.CreateCallInput{
		CallerID: 1,
		CalleeID: 2,
		Duration: seconds(30),
		Status:   models.CallStatusMissed,
	})
	require.NoError(t, err)
	require.NotNil(t, created.Duration)
	assert.True(t, ledger.Balance(1).Equal(dec("10.00")))
}

func TestCreateCall_DebitFailureRollsBackCall(t *testing.T) {
	ledger := ledgertest.New()
	ledger.AddBill(1, dec("10.00"), dec("0.50"))
	ledger.AddUser(2)
	ledger.BalanceDeltaErr = assert.AnError
	svc := NewService(ledger, nil)

	_, err := svc.CreateCall(context.Background(), &models.CreateCallInput{
		CallerID: 1,
		CalleeID: 2,
		Duration: seconds(60),
		Status:   models.CallStatusSuccessful,
	})
	require.Error(t, err)

	// No call row without its charge, and no charge without its call row.
	assert.Empty(t, ledger.Calls())
	assert.True(t, ledger.Balance(1).Equal(dec("10.00")))
}

func TestCreateCall_ChargeUsesCallerTariff(t *testing.T) {
	ledger := ledgertest.New()
	ledger.AddBill(1, dec("10.00"), dec("2.00"))
	ledger.AddBill(2, dec("1.00"), dec("0.10"))
	svc := NewService(ledger, nil)

	_, err := svc.CreateCall(context.Background(), &models.CreateCallInput{
		CallerID: 1,
		CalleeID: 2,
		Duration: seconds(90),
		Status:   models.CallStatusSuccessful,
	})
	require.NoError(t, err)

	// 90s at 2.00/min charges two minutes to the caller only.
	assert.True(t, ledger.Balance(1).Equal(dec("6.00")))
	assert.True(t, ledger.Balance(2).Equal(dec("1.00")))
}

func TestListCalls_StatusFilter(t *testing.T) {
	ledger := ledgertest.New()
	ledger.AddBill(1, dec("10.00"), dec("0.50"))
	ledger.AddUser(2)
	svc := NewService(ledger, nil)

	inputs := []models.CreateCallInput{
		{CallerID: 1, CalleeID: 2, Duration: seconds(60), Status: models.CallStatusSuccessful},
		{CallerID: 1, CalleeID: 2, Status: models.CallStatusMissed},
		{CallerID: 1, CalleeID: 2, Status: models.CallStatusDeclined},
	}
	for i := range inputs {
		_, err := svc.CreateCall(context.Background(), &inputs[i])
		require.NoError(t, err)
	}

	all, total, err := svc.ListCalls(context.Background(), 1, "", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, all, 3)

	missed, total, err := svc.ListCalls(context.Background(), 1, models.CallStatusMissed, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, missed, 1)
	assert.Equal(t, models.CallStatusMissed, missed[0].Status)

	// The callee sees the same calls.
	callee, _, err := svc.ListCalls(context.Background(), 2, "", 0, 10)
	require.NoError(t, err)
	assert.Len(t, callee, 3)
}

func TestLedgerConservationAcrossPaymentsAndCalls(t *testing.T) {
	ledger := ledgertest.New()
	initial := dec("5.00")
	ledger.AddBill(1, initial, dec("0.50"))
	ledger.AddUser(2)
	svc := NewService(ledger, nil)

	// Two billable calls: 60s (0.50) and 150s (1.50).
	for _, d := range []int64{60, 150} {
		_, err := svc.CreateCall(context.Background(), &models.CreateCallInput{
			CallerID: 1,
			CalleeID: 2,
			Duration: seconds(d),
			Status:   models.CallStatusSuccessful,
		})
		require.NoError(t, err)
	}

	want := initial.Sub(dec("0.50")).Sub(dec("1.50"))
	assert.True(t, ledger.Balance(1).Equal(want),
		"balance %s, want %s", ledger.Balance(1), want)
}
