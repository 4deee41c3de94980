// Package events publishes ledger state changes for downstream consumers.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Record kinds carried in LedgerEvent.Record
const (
	RecordTransaction = "transaction"
	RecordCharge      = "charge"
)

// LedgerEvent describes one committed terminal transition
type LedgerEvent struct {
	OccurredAt  time.Time       `json:"occurred_at"`
	SenderID    *uuid.UUID      `json:"sender_id,omitempty"`
	RecipientID *uuid.UUID      `json:"recipient_id,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Record      string          `json:"record"`
	Type        string          `json:"type"`
	Status      string          `json:"status"`
	ID          uuid.UUID       `json:"id"`
}

// Publisher delivers ledger events. Publishing is best effort and never fails the
// caller.
type Publisher interface {
	Publish(ctx context.Context, event LedgerEvent)
}

// NopPublisher drops every event
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, LedgerEvent) {}
