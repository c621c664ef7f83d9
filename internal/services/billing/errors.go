package billing

import "errors"

var (
	ErrInvalidAmount = errors.New("payment amount must be greater than zero")
	ErrInvalidTariff = errors.New("tariff must be greater than zero")
	ErrChargeFailed  = errors.New("card charge failed")
)
