// Package qr encodes and decodes the JSON payment intents carried in wallet QR codes.
package qr

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// IntentType discriminates the payload kinds a QR code may carry
type IntentType string

const (
	TypePaymentRequest     IntentType = "payment_request"
	TypeUserProfile        IntentType = "user_profile"
	TypeTransactionReceipt IntentType = "transaction_receipt"
)

// Bounds on scanned amounts. Anything outside them cannot be a real LZAR amount.
const (
	maxAmountScale    = 18
	maxAmountExponent = 18
	maxAmountDigits   = 38
)

// Decode failures. All of them mean the scanned code is not actionable.
var (
	ErrMalformed      = errors.New("qr payload is not a JSON object")
	ErrUnknownType    = errors.New("qr payload has an unknown type")
	ErrInvalidPayload = errors.New("qr payload failed validation")
)

// Intent is one of PaymentRequest, UserProfile or TransactionReceipt.
type Intent interface {
	Type() IntentType
}

// PaymentRequest asks the scanner to pay a charge
type PaymentRequest struct {
	Amount       decimal.Decimal
	ChargeID     string
	Currency     string
	Description  string
	MerchantName string
	MerchantID   string
	ExpiresAt    string
}

// UserProfile identifies a wallet holder the scanner can send money to
type UserProfile struct {
	UserID       string
	UserName     string
	ProfileImage string
}

// TransactionReceipt is a shareable proof of a completed movement
type TransactionReceipt struct {
	Amount        decimal.Decimal
	TransactionID string
	Currency      string
	Timestamp     string
	Status        string
}

func (PaymentRequest) Type() IntentType     { return TypePaymentRequest }
func (UserProfile) Type() IntentType        { return TypeUserProfile }
func (TransactionReceipt) Type() IntentType { return TypeTransactionReceipt }

type paymentRequestWire struct {
	Type         IntentType  `json:"type"`
	ChargeID     string      `json:"chargeId"`
	Amount       json.Number `json:"amount"`
	Currency     string      `json:"currency"`
	Description  string      `json:"description,omitempty"`
	MerchantName string      `json:"merchantName"`
	MerchantID   string      `json:"merchantId,omitempty"`
	ExpiresAt    string      `json:"expiresAt,omitempty"`
}

type userProfileWire struct {
	Type         IntentType `json:"type"`
	UserID       string     `json:"userId"`
	UserName     string     `json:"userName"`
	ProfileImage string     `json:"profileImage,omitempty"`
}

type transactionReceiptWire struct {
	Type          IntentType  `json:"type"`
	TransactionID string      `json:"transactionId"`
	Amount        json.Number `json:"amount"`
	Currency      string      `json:"currency"`
	Timestamp     string      `json:"timestamp"`
	Status        string      `json:"status"`
}

// Encode renders an intent as the JSON string embedded in a QR code.
func Encode(intent Intent) (string, error) {
	var wire any

	switch v := intent.(type) {
	case PaymentRequest:
		wire = paymentRequestWire{
			Type:         TypePaymentRequest,
			ChargeID:     v.ChargeID,
			Amount:       json.Number(v.Amount.String()),
			Currency:     v.Currency,
			Description:  v.Description,
			MerchantName: v.MerchantName,
			MerchantID:   v.MerchantID,
			ExpiresAt:    v.ExpiresAt,
		}
	case UserProfile:
		wire = userProfileWire{
			Type:         TypeUserProfile,
			UserID:       v.UserID,
			UserName:     v.UserName,
			ProfileImage: v.ProfileImage,
		}
	case TransactionReceipt:
		wire = transactionReceiptWire{
			Type:          TypeTransactionReceipt,
			TransactionID: v.TransactionID,
			Amount:        json.Number(v.Amount.String()),
			Currency:      v.Currency,
			Timestamp:     v.Timestamp,
			Status:        v.Status,
		}
	default:
		return "", fmt.Errorf("unsupported intent %T", intent)
	}

	out, err := json.Marshal(wire)
	if err != nil {
		return "", fmt.Errorf("failed to encode qr intent: %w", err)
	}

	return string(out), nil
}

// Decode parses a scanned payload. It never panics: every failure is reported as
// ErrMalformed, ErrUnknownType or ErrInvalidPayload.
func Decode(payload string) (Intent, error) {
	var f fields
	if err := json.Unmarshal([]byte(payload), &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	var typ string
	if raw, ok := f["type"]; !ok || json.Unmarshal(raw, &typ) != nil {
		return nil, ErrUnknownType
	}

	switch IntentType(typ) {
	case TypePaymentRequest:
		return decodePaymentRequest(f)
	case TypeUserProfile:
		return decodeUserProfile(f)
	case TypeTransactionReceipt:
		return decodeTransactionReceipt(f)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, typ)
	}
}

func decodePaymentRequest(f fields) (Intent, error) {
	var (
		p   PaymentRequest
		err error
	)

	if p.ChargeID, err = f.requiredString("chargeId"); err != nil {
		return nil, err
	}
	if p.Amount, err = f.requiredNumber("amount"); err != nil {
		return nil, err
	}
	if p.Currency, err = f.requiredString("currency"); err != nil {
		return nil, err
	}
	if p.MerchantName, err = f.requiredString("merchantName"); err != nil {
		return nil, err
	}
	if p.Description, err = f.optionalString("description"); err != nil {
		return nil, err
	}
	if p.MerchantID, err = f.optionalString("merchantId"); err != nil {
		return nil, err
	}
	if p.ExpiresAt, err = f.optionalString("expiresAt"); err != nil {
		return nil, err
	}

	return p, nil
}

func decodeUserProfile(f fields) (Intent, error) {
	var (
		u   UserProfile
		err error
	)

	if u.UserID, err = f.requiredString("userId"); err != nil {
		return nil, err
	}
	if u.UserName, err = f.requiredString("userName"); err != nil {
		return nil, err
	}
	if u.ProfileImage, err = f.optionalString("profileImage"); err != nil {
		return nil, err
	}

	return u, nil
}

func decodeTransactionReceipt(f fields) (Intent, error) {
	var (
		r   TransactionReceipt
		err error
	)

	if r.TransactionID, err = f.requiredString("transactionId"); err != nil {
		return nil, err
	}
	if r.Amount, err = f.requiredNumber("amount"); err != nil {
		return nil, err
	}
	if r.Currency, err = f.requiredString("currency"); err != nil {
		return nil, err
	}
	if r.Timestamp, err = f.requiredString("timestamp"); err != nil {
		return nil, err
	}
	if r.Status, err = f.requiredString("status"); err != nil {
		return nil, err
	}

	return r, nil
}

// fields keeps raw values so primitive kinds can be checked before conversion.
type fields map[string]json.RawMessage

func (f fields) requiredString(name string) (string, error) {
	raw, ok := f[name]
	if !ok {
		return "", fmt.Errorf("%w: missing %s", ErrInvalidPayload, name)
	}
	return decodeString(name, raw)
}

// optionalString treats an absent or null field as empty.
func (f fields) optionalString(name string) (string, error) {
	raw, ok := f[name]
	if !ok || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	return decodeString(name, raw)
}

func (f fields) requiredNumber(name string) (decimal.Decimal, error) {
	raw, ok := f[name]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: missing %s", ErrInvalidPayload, name)
	}
	if len(raw) == 0 || (raw[0] != '-' && (raw[0] < '0' || raw[0] > '9')) {
		return decimal.Zero, fmt.Errorf("%w: %s must be a number", ErrInvalidPayload, name)
	}

	d, err := decimal.NewFromString(string(raw))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s must be a number", ErrInvalidPayload, name)
	}
	// rescaling a decimal costs time proportional to its exponent
	if d.Exponent() < -maxAmountScale || d.Exponent() > maxAmountExponent || d.NumDigits() > maxAmountDigits {
		return decimal.Zero, fmt.Errorf("%w: %s is out of range", ErrInvalidPayload, name)
	}
	return d, nil
}

func decodeString(name string, raw json.RawMessage) (string, error) {
	if len(raw) == 0 || raw[0] != '"' {
		return "", fmt.Errorf("%w: %s must be a string", ErrInvalidPayload, name)
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("%w: %s must be a string", ErrInvalidPayload, name)
	}
	return s, nil
}
