package api

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Health status values
const (
	Healthy   = "healthy"
	Unhealthy = "unhealthy"
)

// FormatAmount renders an amount as a JSON number with two decimal places
func FormatAmount(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(2))
}

type Health struct {
	Status string `json:"status"`
}

// Error is the body of every non-2xx response
type Error struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type TransferRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Recipient   string          `json:"recipient"`
	Description string          `json:"description,omitempty"`
}

type MintRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Recipient   string          `json:"recipient,omitempty"`
	Description string          `json:"description,omitempty"`
}

type RedeemRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type ChargeRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	PaymentID   string          `json:"payment_id,omitempty"`
	Description string          `json:"description,omitempty"`
}

type ResolveQRRequest struct {
	Payload string `json:"payload"`
}

type Transaction struct {
	CreatedAt     time.Time   `json:"created_at"`
	CompletedAt   *time.Time  `json:"completed_at,omitempty"`
	SenderID      *uuid.UUID  `json:"sender_id,omitempty"`
	RecipientID   *uuid.UUID  `json:"recipient_id,omitempty"`
	ExternalID    *string     `json:"external_id,omitempty"`
	ErrorMessage  *string     `json:"error_message,omitempty"`
	Type          string      `json:"type"`
	Status        string      `json:"status"`
	Amount        json.Number `json:"amount"`
	Currency      string      `json:"currency"`
	Description   string      `json:"description,omitempty"`
	TransactionID uuid.UUID   `json:"transaction_id"`
}

type TransactionList struct {
	Transactions []Transaction `json:"transactions"`
}

type Charge struct {
	ExpiresAt   time.Time   `json:"expires_at"`
	CreatedAt   time.Time   `json:"created_at"`
	PaidAt      *time.Time  `json:"paid_at,omitempty"`
	PayerID     *uuid.UUID  `json:"payer_id,omitempty"`
	PaymentID   string      `json:"payment_id,omitempty"`
	Status      string      `json:"status"`
	Amount      json.Number `json:"amount"`
	Currency    string      `json:"currency"`
	Description string      `json:"description,omitempty"`
	ChargeID    uuid.UUID   `json:"charge_id"`
	OwnerID     uuid.UUID   `json:"owner_id"`
}

type Wallet struct {
	Balance          json.Number `json:"balance"`
	AvailableBalance json.Number `json:"available_balance"`
	Currency         string      `json:"currency"`
	UserID           uuid.UUID   `json:"user_id"`
}

type SettlementBalance struct {
	Balance  json.Number `json:"balance"`
	Currency string      `json:"currency"`
}

type QRPayload struct {
	Payload string `json:"payload"`
}

// QRDispatch tells a scanning client which flow to start and with what
type QRDispatch struct {
	Params any    `json:"params,omitempty"`
	Action string `json:"action"`
	Reason string `json:"reason,omitempty"`
}

// PaymentParams seed the confirm_payment flow
type PaymentParams struct {
	Amount       json.Number `json:"amount"`
	ChargeID     string      `json:"charge_id"`
	Description  string      `json:"description,omitempty"`
	MerchantName string      `json:"merchant_name"`
}

// RecipientParams seed the send_money flow
type RecipientParams struct {
	UserID   string `json:"user_id"`
	UserName string `json:"user_name"`
}
