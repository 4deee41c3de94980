package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/benx421/lzar-wallet/internal/db"
	"github.com/benx421/lzar-wallet/internal/models"
	"github.com/google/uuid"
)

// ChargeRepository defines the interface for payment request data access
type ChargeRepository interface {
	Create(ctx context.Context, charge *models.Charge) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Charge, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Charge, error)
	Transition(ctx context.Context, charge *models.Charge, from models.Status) error
	ExpireDue(ctx context.Context, now time.Time, limit int) ([]models.Charge, error)
}

// chargeRepository implements ChargeRepository
type chargeRepository struct {
	db db.DBTX
}

// NewChargeRepository creates a new ChargeRepository
func NewChargeRepository(conn db.DBTX) ChargeRepository {
	return &chargeRepository{db: conn}
}

const chargeColumns = `id, owner_id, payer_id, payment_id, amount_cents, currency, status,
	description, external_id, expires_at, paid_at, created_at`

func scanCharge(row rowScanner) (*models.Charge, error) {
	var c models.Charge
	err := row.Scan(
		&c.ID,
		&c.OwnerID,
		&c.PayerID,
		&c.PaymentID,
		&c.AmountCents,
		&c.Currency,
		&c.Status,
		&c.Description,
		&c.ExternalID,
		&c.ExpiresAt,
		&c.PaidAt,
		&c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a charge, assigning an id and creation time when unset
func (r *chargeRepository) Create(ctx context.Context, charge *models.Charge) error {
	if charge.ID == uuid.Nil {
		charge.ID = uuid.New()
	}
	if charge.CreatedAt.IsZero() {
		charge.CreatedAt = time.Now().UTC()
	}
	if charge.Currency == "" {
		charge.Currency = models.Currency
	}

	query := `
		INSERT INTO charges (` + chargeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.ExecContext(ctx, query,
		charge.ID,
		charge.OwnerID,
		charge.PayerID,
		charge.PaymentID,
		charge.AmountCents,
		charge.Currency,
		charge.Status,
		charge.Description,
		charge.ExternalID,
		charge.ExpiresAt,
		charge.PaidAt,
		charge.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return models.ErrDuplicateTransaction
		}
		return fmt.Errorf("failed to create charge: %w", err)
	}

	return nil
}

// FindByID retrieves a charge
func (r *chargeRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Charge, error) {
	return r.find(ctx, `SELECT `+chargeColumns+` FROM charges WHERE id = $1`, id)
}

// FindByIDForUpdate retrieves a charge and locks it until the surrounding
// transaction ends
func (r *chargeRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Charge, error) {
	return r.find(ctx, `SELECT `+chargeColumns+` FROM charges WHERE id = $1 FOR UPDATE`, id)
}

func (r *chargeRepository) find(ctx context.Context, query string, id uuid.UUID) (*models.Charge, error) {
	charge, err := scanCharge(r.db.QueryRowContext(ctx, query, id))
	if isNoRows(err) {
		return nil, fmt.Errorf("charge %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find charge: %w", err)
	}
	return charge, nil
}

// Transition writes the charge's status and payment fields if the stored status is
// still from. external_id is only ever set once.
func (r *chargeRepository) Transition(ctx context.Context, charge *models.Charge, from models.Status) error {
	if !models.ChargeTransitions.Allows(from, charge.Status) {
		return fmt.Errorf("%s to %s: %w", from, charge.Status, models.ErrInvalidTransition)
	}

	query := `
		UPDATE charges
		SET status = $2,
		    external_id = COALESCE(external_id, $3),
		    payer_id = $4,
		    paid_at = $5
		WHERE id = $1 AND status = $6
	`

	result, err := r.db.ExecContext(ctx, query,
		charge.ID,
		charge.Status,
		charge.ExternalID,
		charge.PayerID,
		charge.PaidAt,
		from,
	)
	if err != nil {
		return fmt.Errorf("failed to update charge status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("charge %s is no longer %s: %w", charge.ID, from, models.ErrInvalidTransition)
	}

	return nil
}

// ExpireDue moves up to limit pending or active charges whose expiry is at or
// before now to expired and returns them
func (r *chargeRepository) ExpireDue(ctx context.Context, now time.Time, limit int) ([]models.Charge, error) {
	query := `
		UPDATE charges
		SET status = 'expired'
		WHERE id IN (
			SELECT id FROM charges
			WHERE status IN ('pending', 'active') AND expires_at <= $1
			ORDER BY expires_at
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		)
		RETURNING ` + chargeColumns

	rows, err := r.db.QueryContext(ctx, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to expire charges: %w", err)
	}
	defer rows.Close()

	var expired []models.Charge
	for rows.Next() {
		charge, err := scanCharge(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expired charge: %w", err)
		}
		expired = append(expired, *charge)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expired charges: %w", err)
	}

	return expired, nil
}
