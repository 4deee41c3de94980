package models

import (
	"time"

	"github.com/google/uuid"
)

// Wallet holds the local LZAR balance of one account.
//
// AvailableBalanceCents is BalanceCents minus funds held by in-flight transfers and
// redemptions.
type Wallet struct {
	CreatedAt             time.Time `db:"created_at"`
	UpdatedAt             time.Time `db:"updated_at"`
	Email                 string    `db:"email"`
	Phone                 string    `db:"phone"`
	DisplayName           string    `db:"display_name"`
	BalanceCents          int64     `db:"balance_cents"`
	AvailableBalanceCents int64     `db:"available_balance_cents"`
	UserID                uuid.UUID `db:"user_id"`
}

// BalanceDelta is a signed change to a wallet's balances.
type BalanceDelta struct {
	UserID    uuid.UUID
	Balance   int64
	Available int64
}
