package repository

import (
	"context"
	"fmt"

	"github.com/benx421/lzar-wallet/internal/db"
	"github.com/benx421/lzar-wallet/internal/models"
)

// IdempotencyRepository reserves idempotency keys for mutating requests and stores
// their responses
type IdempotencyRepository interface {
	Reserve(ctx context.Context, key, requestPath string) error
	Get(ctx context.Context, key, requestPath string) (*models.IdempotencyKey, error)
	Complete(ctx context.Context, idemKey *models.IdempotencyKey) error
	Release(ctx context.Context, key, requestPath string) error
}

// idempotencyRepository implements IdempotencyRepository
type idempotencyRepository struct {
	db db.DBTX
}

// NewIdempotencyRepository creates a new IdempotencyRepository
func NewIdempotencyRepository(conn db.DBTX) IdempotencyRepository {
	return &idempotencyRepository{db: conn}
}

// Reserve claims key on requestPath before the request runs. It returns
// models.ErrIdempotencyConflict when the key is already reserved or completed.
func (r *idempotencyRepository) Reserve(ctx context.Context, key, requestPath string) error {
	query := `
		INSERT INTO idempotency_keys (key, request_path, status)
		VALUES ($1, $2, 'in_progress')
	`

	if _, err := r.db.ExecContext(ctx, query, key, requestPath); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("key %s on %s: %w", key, requestPath, models.ErrIdempotencyConflict)
		}
		return fmt.Errorf("failed to reserve idempotency key: %w", err)
	}

	return nil
}

// Get returns the record for key on requestPath, or nil when none exists
func (r *idempotencyRepository) Get(ctx context.Context, key, requestPath string) (*models.IdempotencyKey, error) {
	query := `
		SELECT key, request_path, status, response_status, response_body, created_at
		FROM idempotency_keys
		WHERE key = $1 AND request_path = $2
	`

	var k models.IdempotencyKey
	err := r.db.QueryRowContext(ctx, query, key, requestPath).Scan(
		&k.Key,
		&k.RequestPath,
		&k.Status,
		&k.ResponseStatus,
		&k.ResponseBody,
		&k.CreatedAt,
	)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get idempotency key: %w", err)
	}

	return &k, nil
}

// Complete stores the response of a reserved key. A key that is already completed
// keeps its first response.
func (r *idempotencyRepository) Complete(ctx context.Context, idemKey *models.IdempotencyKey) error {
	query := `
		UPDATE idempotency_keys
		SET status = 'completed', response_status = $3, response_body = $4
		WHERE key = $1 AND request_path = $2 AND status = 'in_progress'
	`

	if _, err := r.db.ExecContext(ctx, query,
		idemKey.Key,
		idemKey.RequestPath,
		idemKey.ResponseStatus,
		idemKey.ResponseBody,
	); err != nil {
		return fmt.Errorf("failed to complete idempotency key: %w", err)
	}

	return nil
}

// Release drops an in-progress reservation so the request can be retried
func (r *idempotencyRepository) Release(ctx context.Context, key, requestPath string) error {
	query := `
		DELETE FROM idempotency_keys
		WHERE key = $1 AND request_path = $2 AND status = 'in_progress'
	`

	if _, err := r.db.ExecContext(ctx, query, key, requestPath); err != nil {
		return fmt.Errorf("failed to release idempotency key: %w", err)
	}

	return nil
}
