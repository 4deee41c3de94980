package repository

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/benx421/lzar-wallet/internal/config"
	"github.com/benx421/lzar-wallet/internal/db"
	"github.com/benx421/lzar-wallet/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var (
	aliceID    = uuid.MustParse("11111111-1111-4111-8111-111111111111")
	bobID      = uuid.MustParse("22222222-2222-4222-8222-222222222222")
	merchantID = uuid.MustParse("33333333-3333-4333-8333-333333333333")
)

// setupTestDB connects to the configured database, applies the schema and resets
// the seed wallets. Tests are skipped when no database is reachable.
func setupTestDB(t *testing.T) *db.DB {
	t.Helper()

	cfg, err := config.Load("")
	require.NoError(t, err, "failed to load config")

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	database, err := db.Connect(ctx, &cfg.Database, logger)
	if err != nil {
		t.Skipf("postgres unavailable: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	require.NoError(t, database.Migrate(ctx))
	truncateTables(t, database)

	return database
}

func truncateTables(t *testing.T, database *db.DB) {
	t.Helper()

	_, err := database.ExecContext(context.Background(), `
		TRUNCATE TABLE idempotency_keys, charges, transactions, wallets CASCADE;
		INSERT INTO wallets (user_id, email, phone, display_name, balance_cents, available_balance_cents) VALUES
			('11111111-1111-4111-8111-111111111111', 'alice@example.com', '+27110000001', 'Alice', 10000, 10000),
			('22222222-2222-4222-8222-222222222222', 'bob@example.com', '+27110000002', 'Bob', 500, 500),
			('33333333-3333-4333-8333-333333333333', NULL, NULL, 'Corner Shop', 0, 0);
	`)
	require.NoError(t, err, "failed to reset test data")
}

func pendingTransfer(amountCents int64) *models.Transaction {
	return &models.Transaction{
		ID:          uuid.New(),
		SenderID:    &aliceID,
		RecipientID: &bobID,
		AmountCents: amountCents,
		Currency:    models.Currency,
		Type:        models.TransactionTypeTransfer,
		Status:      models.StatusPending,
		Description: "lunch",
	}
}
