package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/benx421/lzar-wallet/internal/gateway"
	"github.com/benx421/lzar-wallet/internal/models"
	"github.com/benx421/lzar-wallet/internal/qr"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// QueryService serves wallet balances, history, receipts and QR resolution
type QueryService struct {
	store   Store
	gateway gateway.Gateway
	logger  *slog.Logger
}

// NewQueryService creates a new QueryService
func NewQueryService(store Store, gw gateway.Gateway, logger *slog.Logger) *QueryService {
	return &QueryService{
		store:   store,
		gateway: gw,
		logger:  logger,
	}
}

// GetWallet retrieves the user's local wallet
func (s *QueryService) GetWallet(ctx context.Context, userID uuid.UUID) (*models.Wallet, error) {
	wallet, err := s.store.Repositories().Wallets.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, &ServiceError{
				Code:    ErrCodeWalletNotFound,
				Message: "wallet not found",
			}
		}
		return nil, internalError("failed to load wallet", err)
	}
	return wallet, nil
}

// SettlementBalance reads the user's balance as held by the settlement gateway
func (s *QueryService) SettlementBalance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	if _, err := s.GetWallet(ctx, userID); err != nil {
		return decimal.Zero, err
	}

	balance, err := s.gateway.FetchBalance(ctx, userID)
	if err != nil {
		s.logger.Warn("settlement balance read failed", "user_id", userID, "error", err)
		return decimal.Zero, &ServiceError{
			Code:    ErrCodeGatewayFailure,
			Message: "settlement balance is unavailable",
			Err:     err,
		}
	}
	return balance, nil
}

// GetTransaction retrieves a record the user sent or received
func (s *QueryService) GetTransaction(ctx context.Context, userID, transactionID uuid.UUID) (*models.Transaction, error) {
	txn, err := s.store.Repositories().Transactions.FindByID(ctx, transactionID)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return nil, internalError("failed to load transaction", err)
	}
	if err != nil || !txn.Involves(userID) {
		return nil, &ServiceError{
			Code:    ErrCodeTransactionNotFound,
			Message: "transaction not found",
		}
	}
	return txn, nil
}

// ListTransactions returns the user's most recent records, newest first
func (s *QueryService) ListTransactions(ctx context.Context, userID uuid.UUID, limit int) ([]models.Transaction, error) {
	limit, err := ValidateLimit(limit)
	if err != nil {
		return nil, err
	}

	txns, err := s.store.Repositories().Transactions.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, internalError("failed to list transactions", err)
	}
	if txns == nil {
		txns = []models.Transaction{}
	}
	return txns, nil
}

// TransactionReceipt renders the transaction_receipt QR payload of a record
func (s *QueryService) TransactionReceipt(ctx context.Context, userID, transactionID uuid.UUID) (string, error) {
	txn, err := s.GetTransaction(ctx, userID, transactionID)
	if err != nil {
		return "", err
	}

	timestamp := txn.CreatedAt
	if txn.CompletedAt != nil {
		timestamp = *txn.CompletedAt
	}

	payload, err := qr.Encode(qr.TransactionReceipt{
		TransactionID: txn.ID.String(),
		Amount:        models.FromCents(txn.AmountCents),
		Currency:      txn.Currency,
		Timestamp:     timestamp.UTC().Format(time.RFC3339),
		Status:        string(txn.Status),
	})
	if err != nil {
		return "", internalError("failed to encode receipt", err)
	}
	return payload, nil
}

// ResolveQR decodes a scanned payload into the flow it starts
func (s *QueryService) ResolveQR(payload string) qr.Dispatch {
	d := qr.Route(payload)
	if !d.Actionable() {
		s.logger.Debug("unsupported qr payload", "reason", d.Reason)
	}
	return d
}
