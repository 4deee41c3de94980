package repository

import (
	"context"
	"testing"
	"time"

	"github.com/benx421/lzar-wallet/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionRepository_CreateAndFind(t *testing.T) {
	database := setupTestDB(t)
	repo := NewTransactionRepository(database)
	ctx := context.Background()

	txn := pendingTransfer(3000)
	require.NoError(t, repo.Create(ctx, txn))

	found, err := repo.FindByID(ctx, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, found.Status)
	assert.Equal(t, int64(3000), found.AmountCents)
	assert.Equal(t, aliceID, *found.SenderID)
	assert.Nil(t, found.ExternalID)

	assert.ErrorIs(t, repo.Create(ctx, txn), models.ErrDuplicateTransaction)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestTransactionRepository_Transition(t *testing.T) {
	database := setupTestDB(t)
	repo := NewTransactionRepository(database)
	ctx := context.Background()

	txn := pendingTransfer(3000)
	require.NoError(t, repo.Create(ctx, txn))

	now := time.Now().UTC()
	externalID := "stl_1"
	txn.Status = models.StatusCompleted
	txn.ExternalID = &externalID
	txn.CompletedAt = &now
	require.NoError(t, repo.Transition(ctx, txn, models.StatusPending))

	found, err := repo.FindByID(ctx, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, found.Status)
	assert.Equal(t, "stl_1", *found.ExternalID)
	require.NotNil(t, found.CompletedAt)

	t.Run("stale source status", func(t *testing.T) {
		txn.Status = models.StatusFailed
		assert.ErrorIs(t, repo.Transition(ctx, txn, models.StatusPending), models.ErrInvalidTransition)
	})

	t.Run("disallowed transition", func(t *testing.T) {
		txn.Status = models.StatusPending
		assert.ErrorIs(t, repo.Transition(ctx, txn, models.StatusCompleted), models.ErrInvalidTransition)
	})
}

func TestTransactionRepository_ExternalIDIsSetOnce(t *testing.T) {
	database := setupTestDB(t)
	repo := NewTransactionRepository(database)
	ctx := context.Background()

	first := "stl_first"
	txn := pendingTransfer(100)
	txn.ExternalID = &first
	require.NoError(t, repo.Create(ctx, txn))

	second := "stl_second"
	txn.Status = models.StatusFailed
	txn.ExternalID = &second
	require.NoError(t, repo.Transition(ctx, txn, models.StatusPending))

	found, err := repo.FindByID(ctx, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, "stl_first", *found.ExternalID)
}

func TestTransactionRepository_ListByUser(t *testing.T) {
	database := setupTestDB(t)
	repo := NewTransactionRepository(database)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	for i := range 3 {
		txn := pendingTransfer(int64(100 * (i + 1)))
		txn.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, repo.Create(ctx, txn))
	}

	txns, err := repo.ListByUser(ctx, bobID, 2)
	require.NoError(t, err)
	require.Len(t, txns, 2)
	assert.Equal(t, int64(300), txns[0].AmountCents, "newest first")
	assert.Equal(t, int64(200), txns[1].AmountCents)

	txns, err = repo.ListByUser(ctx, merchantID, 10)
	require.NoError(t, err)
	assert.Empty(t, txns)
}
