package utils

import "github.com/google/uuid"

// GenerateReference returns an opaque id stamped on ledger records.
func GenerateReference() string {
	return uuid.NewString()
}
