package repository

import (
	"context"
	"fmt"

	"github.com/benx421/lzar-wallet/internal/db"
	"github.com/benx421/lzar-wallet/internal/models"
	"github.com/google/uuid"
)

// WalletRepository defines the interface for wallet data access
type WalletRepository interface {
	Create(ctx context.Context, wallet *models.Wallet) error
	FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Wallet, error)
	FindByIdentifier(ctx context.Context, identifier string) (*models.Wallet, error)
	AdjustBalances(ctx context.Context, userID uuid.UUID, balanceDelta, availableBalanceDelta int64) (*models.Wallet, error)
}

// walletRepository implements WalletRepository
type walletRepository struct {
	db db.DBTX
}

// NewWalletRepository creates a new WalletRepository
func NewWalletRepository(conn db.DBTX) WalletRepository {
	return &walletRepository{db: conn}
}

const walletColumns = `user_id, email, phone, display_name, balance_cents, available_balance_cents, created_at, updated_at`

func scanWallet(row rowScanner) (*models.Wallet, error) {
	var (
		w            models.Wallet
		email, phone *string
	)

	err := row.Scan(
		&w.UserID,
		&email,
		&phone,
		&w.DisplayName,
		&w.BalanceCents,
		&w.AvailableBalanceCents,
		&w.CreatedAt,
		&w.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if email != nil {
		w.Email = *email
	}
	if phone != nil {
		w.Phone = *phone
	}

	return &w, nil
}

// Create inserts a wallet. Empty email or phone are stored as NULL.
func (r *walletRepository) Create(ctx context.Context, wallet *models.Wallet) error {
	query := `
		INSERT INTO wallets (user_id, email, phone, display_name, balance_cents, available_balance_cents)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), $4, $5, $6)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		wallet.UserID,
		wallet.Email,
		wallet.Phone,
		wallet.DisplayName,
		wallet.BalanceCents,
		wallet.AvailableBalanceCents,
	).Scan(&wallet.CreatedAt, &wallet.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("wallet already exists: %w", models.ErrDuplicateTransaction)
		}
		return fmt.Errorf("failed to create wallet: %w", err)
	}

	return nil
}

// FindByUserID retrieves a wallet by its owner
func (r *walletRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE user_id = $1`

	wallet, err := scanWallet(r.db.QueryRowContext(ctx, query, userID))
	if isNoRows(err) {
		return nil, fmt.Errorf("wallet %s: %w", userID, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find wallet by user id: %w", err)
	}

	return wallet, nil
}

// FindByIdentifier resolves an email address, phone number or user id to a wallet
func (r *walletRepository) FindByIdentifier(ctx context.Context, identifier string) (*models.Wallet, error) {
	query := `
		SELECT ` + walletColumns + `
		FROM wallets
		WHERE lower(email) = lower($1) OR phone = $1 OR user_id::text = lower($1)
		ORDER BY created_at
		LIMIT 1
	`

	wallet, err := scanWallet(r.db.QueryRowContext(ctx, query, identifier))
	if isNoRows(err) {
		return nil, fmt.Errorf("wallet %q: %w", identifier, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find wallet by identifier: %w", err)
	}

	return wallet, nil
}

// AdjustBalances atomically applies the deltas if neither balance would go negative.
// It returns ErrInsufficientFunds when the condition fails and ErrNotFound when the
// wallet does not exist.
func (r *walletRepository) AdjustBalances(ctx context.Context, userID uuid.UUID, balanceDelta, availableBalanceDelta int64) (*models.Wallet, error) {
	query := `
		UPDATE wallets
		SET balance_cents = balance_cents + $2,
		    available_balance_cents = available_balance_cents + $3,
		    updated_at = NOW()
		WHERE user_id = $1
		  AND balance_cents + $2 >= 0
		  AND available_balance_cents + $3 >= 0
		RETURNING ` + walletColumns

	wallet, err := scanWallet(r.db.QueryRowContext(ctx, query, userID, balanceDelta, availableBalanceDelta))
	if err == nil {
		return wallet, nil
	}
	if !isNoRows(err) {
		return nil, fmt.Errorf("failed to adjust wallet balances: %w", err)
	}

	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM wallets WHERE user_id = $1)`, userID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to check wallet existence: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("wallet %s: %w", userID, models.ErrNotFound)
	}

	return nil, fmt.Errorf("wallet %s: %w", userID, models.ErrInsufficientFunds)
}
