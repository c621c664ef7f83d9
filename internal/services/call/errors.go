package call

import (
	"errors"
	"fmt"
)

// ErrMissingDuration rejects a billable call submitted without a
// duration; without one there is nothing to charge for.
var ErrMissingDuration = errors.New("successful call requires a duration")

// SelfCallError rejects a call whose caller and callee are the same user.
type SelfCallError struct {
	UserID uint
}

func (e *SelfCallError) Error() string {
	return fmt.Sprintf("user %d cannot call himself", e.UserID)
}

// InsufficientBalanceError rejects a billable call the caller cannot
// afford even one minute of.
type InsufficientBalanceError struct {
	UserID uint
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("user %d doesn't have enough money to call", e.UserID)
}
