package service

import (
	"strings"

	"github.com/benx421/lzar-wallet/internal/models"
	"github.com/shopspring/decimal"
)

// History page bounds
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// ValidateAmount converts a decimal amount to cents, rejecting non-positive values
// and more than two decimal places
func ValidateAmount(amount decimal.Decimal) (int64, error) {
	cents, err := models.ToCents(amount)
	if err != nil {
		return 0, &ServiceError{
			Code:    ErrCodeInvalidAmount,
			Message: "amount must be a positive value with at most two decimal places",
			Err:     err,
		}
	}
	return cents, nil
}

// ValidateRecipient checks that a recipient identifier was supplied
func ValidateRecipient(identifier string) (string, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return "", &ServiceError{
			Code:    ErrCodeRecipientRequired,
			Message: "recipient is required",
		}
	}
	return identifier, nil
}

// ValidateLimit applies the history page bounds. Zero selects the default.
func ValidateLimit(limit int) (int, error) {
	if limit == 0 {
		return DefaultListLimit, nil
	}
	if limit < 0 || limit > MaxListLimit {
		return 0, &ServiceError{
			Code:    ErrCodeInvalidRequest,
			Message: "limit must be between 1 and 100",
		}
	}
	return limit, nil
}
