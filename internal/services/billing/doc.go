/*
Package billing implements the ledger core: bill retrieval, tariff
updates, the payment workflow and the call-cost arithmetic.

Every balance mutation runs inside one database transaction that first
locks the bill row with SELECT ... FOR UPDATE. The lock is released by
the commit or rollback, so concurrent payments and call charges against
the same bill are fully serialized while unrelated bills proceed in
parallel. Without the lock two overlapping debits could both read the
same pre-mutation balance and under-bill the account.

Usage:

	svc := billing.NewService(ledgerRepo, cacheService, provider)

	// Credit a bill by recording a payment
	payment, err := svc.CreatePayment(ctx, userID, &models.CreatePaymentInput{Amount: amount})

	// Read the bill (cached)
	bill, err := svc.GetBill(ctx, userID)

	// Change the per-minute price
	bill, err = svc.UpdateTariff(ctx, userID, newTariff)

Error Handling:

  - ErrInvalidAmount: non-positive payment amount
  - ErrInvalidTariff: non-positive tariff
  - ErrChargeFailed: the card provider refused the charge
  - repositories.ErrBillNotFound: the target bill does not exist
*/
package billing
