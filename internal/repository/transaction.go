package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/benx421/lzar-wallet/internal/db"
	"github.com/benx421/lzar-wallet/internal/models"
	"github.com/google/uuid"
)

// TransactionRepository defines the interface for ledger record data access
type TransactionRepository interface {
	Create(ctx context.Context, txn *models.Transaction) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Transaction, error)
	Transition(ctx context.Context, txn *models.Transaction, from models.Status) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Transaction, error)
}

// transactionRepository implements TransactionRepository
type transactionRepository struct {
	db db.DBTX
}

// NewTransactionRepository creates a new TransactionRepository
func NewTransactionRepository(conn db.DBTX) TransactionRepository {
	return &transactionRepository{db: conn}
}

const transactionColumns = `id, sender_id, recipient_id, amount_cents, currency, type, status,
	external_id, description, error_message, created_at, completed_at`

func scanTransaction(row rowScanner) (*models.Transaction, error) {
	var t models.Transaction
	err := row.Scan(
		&t.ID,
		&t.SenderID,
		&t.RecipientID,
		&t.AmountCents,
		&t.Currency,
		&t.Type,
		&t.Status,
		&t.ExternalID,
		&t.Description,
		&t.ErrorMessage,
		&t.CreatedAt,
		&t.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Create inserts a ledger record, assigning an id and creation time when unset
func (r *transactionRepository) Create(ctx context.Context, txn *models.Transaction) error {
	if txn.ID == uuid.Nil {
		txn.ID = uuid.New()
	}
	if txn.CreatedAt.IsZero() {
		txn.CreatedAt = time.Now().UTC()
	}
	if txn.Currency == "" {
		txn.Currency = models.Currency
	}

	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.ExecContext(ctx, query,
		txn.ID,
		txn.SenderID,
		txn.RecipientID,
		txn.AmountCents,
		txn.Currency,
		txn.Type,
		txn.Status,
		txn.ExternalID,
		txn.Description,
		txn.ErrorMessage,
		txn.CreatedAt,
		txn.CompletedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return models.ErrDuplicateTransaction
		}
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	return nil
}

// FindByID retrieves a ledger record
func (r *transactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	return r.find(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, id)
}

// FindByIDForUpdate retrieves a ledger record and locks it until the surrounding
// transaction ends
func (r *transactionRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	return r.find(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = $1 FOR UPDATE`, id)
}

func (r *transactionRepository) find(ctx context.Context, query string, id uuid.UUID) (*models.Transaction, error) {
	txn, err := scanTransaction(r.db.QueryRowContext(ctx, query, id))
	if isNoRows(err) {
		return nil, fmt.Errorf("transaction %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find transaction: %w", err)
	}
	return txn, nil
}

// Transition writes txn's status and settlement fields if the stored status is
// still from. external_id is only ever set once.
func (r *transactionRepository) Transition(ctx context.Context, txn *models.Transaction, from models.Status) error {
	if !models.TransactionTransitions.Allows(from, txn.Status) {
		return fmt.Errorf("%s to %s: %w", from, txn.Status, models.ErrInvalidTransition)
	}

	query := `
		UPDATE transactions
		SET status = $2,
		    external_id = COALESCE(external_id, $3),
		    error_message = $4,
		    completed_at = $5
		WHERE id = $1 AND status = $6
	`

	result, err := r.db.ExecContext(ctx, query,
		txn.ID,
		txn.Status,
		txn.ExternalID,
		txn.ErrorMessage,
		txn.CompletedAt,
		from,
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("transaction %s is no longer %s: %w", txn.ID, from, models.ErrInvalidTransition)
	}

	return nil
}

// ListByUser returns the most recent records the user sent or received
func (r *transactionRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE sender_id = $1 OR recipient_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var txns []models.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txns = append(txns, *txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	return txns, nil
}
