package models

import (
	"time"

	"github.com/google/uuid"
)

// Currency is the only token this service moves.
const Currency = "LZAR"

// TransactionType represents the kind of money movement
type TransactionType string

const (
	TransactionTypeTransfer TransactionType = "transfer"
	TransactionTypeMint     TransactionType = "mint"
	TransactionTypeRedeem   TransactionType = "redeem"
	TransactionTypePayment  TransactionType = "payment"
)

// Transaction is the local system-of-record row for one money movement.
type Transaction struct {
	CreatedAt    time.Time       `db:"created_at"`
	CompletedAt  *time.Time      `db:"completed_at"`
	SenderID     *uuid.UUID      `db:"sender_id"`
	RecipientID  *uuid.UUID      `db:"recipient_id"`
	ExternalID   *string         `db:"external_id"`
	ErrorMessage *string         `db:"error_message"`
	Description  string          `db:"description"`
	Currency     string          `db:"currency"`
	Type         TransactionType `db:"type"`
	Status       Status          `db:"status"`
	AmountCents  int64           `db:"amount_cents"`
	ID           uuid.UUID       `db:"id"`
}

// Involves reports whether userID is the sender or the recipient.
func (t *Transaction) Involves(userID uuid.UUID) bool {
	return (t.SenderID != nil && *t.SenderID == userID) ||
		(t.RecipientID != nil && *t.RecipientID == userID)
}

// HoldDelta is the balance effect applied when the record is opened. Transfers and
// redemptions reserve the sender's available balance; mints and payments hold nothing.
func (t *Transaction) HoldDelta() *BalanceDelta {
	switch t.Type {
	case TransactionTypeTransfer, TransactionTypeRedeem:
		if t.SenderID == nil {
			return nil
		}
		return &BalanceDelta{UserID: *t.SenderID, Available: -t.AmountCents}
	default:
		return nil
	}
}

// SettlementDeltas returns the balance effects of moving the record into status to.
// Completion debits the held sender and credits the recipient; failure or
// cancellation releases the hold.
func (t *Transaction) SettlementDeltas(to Status) []BalanceDelta {
	var deltas []BalanceDelta

	switch to {
	case StatusCompleted:
		if t.SenderID != nil && t.HoldDelta() != nil {
			deltas = append(deltas, BalanceDelta{UserID: *t.SenderID, Balance: -t.AmountCents})
		}
		if t.RecipientID != nil {
			deltas = append(deltas, BalanceDelta{
				UserID:    *t.RecipientID,
				Balance:   t.AmountCents,
				Available: t.AmountCents,
			})
		}
	case StatusFailed, StatusCancelled:
		if hold := t.HoldDelta(); hold != nil {
			deltas = append(deltas, BalanceDelta{UserID: hold.UserID, Available: -hold.Available})
		}
	}

	return deltas
}

// Idempotency key states. A key is reserved in progress before its request runs
// and holds the response once the request succeeds.
const (
	IdempotencyInProgress = "in_progress"
	IdempotencyCompleted  = "completed"
)

// IdempotencyKey tracks processed requests to prevent duplicate transactions
type IdempotencyKey struct {
	CreatedAt      time.Time `db:"created_at"`
	Key            string    `db:"key"`
	RequestPath    string    `db:"request_path"`
	Status         string    `db:"status"`
	ResponseBody   string    `db:"response_body"`
	ResponseStatus int       `db:"response_status"`
}

// Completed reports whether the key holds a response that can be replayed
func (k *IdempotencyKey) Completed() bool {
	return k.Status == IdempotencyCompleted
}
