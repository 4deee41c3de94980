package models

import (
	"time"

	"github.com/google/uuid"
)

// DefaultChargeTTL is how long a charge stays payable after creation.
const DefaultChargeTTL = 24 * time.Hour

// Charge is a merchant-created payment request. Paying it produces a companion
// Transaction of type payment.
type Charge struct {
	CreatedAt   time.Time  `db:"created_at"`
	ExpiresAt   time.Time  `db:"expires_at"`
	PaidAt      *time.Time `db:"paid_at"`
	PayerID     *uuid.UUID `db:"payer_id"`
	ExternalID  *string    `db:"external_id"`
	PaymentID   string     `db:"payment_id"`
	Description string     `db:"description"`
	Currency    string     `db:"currency"`
	Status      Status     `db:"status"`
	AmountCents int64      `db:"amount_cents"`
	ID          uuid.UUID  `db:"id"`
	OwnerID     uuid.UUID  `db:"owner_id"`
}

// Payable reports whether the charge can still be paid at now.
func (c *Charge) Payable(now time.Time) bool {
	return c.Status == StatusActive && now.Before(c.ExpiresAt)
}
