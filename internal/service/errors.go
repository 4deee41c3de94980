package service

import "fmt"

// ServiceError represents a business logic error with a code
type ServiceError struct {
	Err     error
	Message string
	Code    string
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeInvalidAmount       = "invalid_amount"
	ErrCodeInvalidRequest      = "invalid_request"
	ErrCodeRecipientRequired   = "recipient_required"
	ErrCodeRecipientNotFound   = "recipient_not_found"
	ErrCodeWalletNotFound      = "wallet_not_found"
	ErrCodeTransactionNotFound = "transaction_not_found"
	ErrCodeChargeNotFound      = "charge_not_found"
	ErrCodeInsufficientBalance = "insufficient_balance"
	ErrCodeGatewayFailure      = "gateway_failure"
	ErrCodeUnauthorized        = "unauthorized"
	ErrCodeInternalError       = "internal_error"
)

// Kind groups error codes by how a caller should react to them
type Kind string

const (
	KindAuthentication      Kind = "authentication_failure"
	KindValidation          Kind = "validation_failure"
	KindNotFound            Kind = "not_found"
	KindInsufficientBalance Kind = "insufficient_balance"
	KindGateway             Kind = "gateway_failure"
	KindInternal            Kind = "internal_failure"
)

// Kind classifies the error. Validation, not-found and balance failures are the
// caller's to fix; gateway and internal failures are safe to retry.
func (e *ServiceError) Kind() Kind {
	switch e.Code {
	case ErrCodeUnauthorized:
		return KindAuthentication
	case ErrCodeInvalidAmount, ErrCodeInvalidRequest, ErrCodeRecipientRequired:
		return KindValidation
	case ErrCodeRecipientNotFound, ErrCodeWalletNotFound, ErrCodeTransactionNotFound, ErrCodeChargeNotFound:
		return KindNotFound
	case ErrCodeInsufficientBalance:
		return KindInsufficientBalance
	case ErrCodeGatewayFailure:
		return KindGateway
	default:
		return KindInternal
	}
}

func internalError(message string, err error) *ServiceError {
	return &ServiceError{Code: ErrCodeInternalError, Message: message, Err: err}
}
