// Package service implements the wallet's transaction reconciliation engine and
// read models.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/benx421/lzar-wallet/internal/events"
	"github.com/benx421/lzar-wallet/internal/gateway"
	"github.com/benx421/lzar-wallet/internal/models"
	"github.com/benx421/lzar-wallet/internal/repository"
	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
)

// LedgerConfig holds the engine's tunables
type LedgerConfig struct {
	WebhookSecret  string
	GatewayTimeout time.Duration
	ChargeTTL      time.Duration
}

// LedgerService opens ledger records, submits them to the settlement gateway and
// reconciles their outcome, synchronously or from webhooks.
type LedgerService struct {
	store         Store
	gateway       gateway.Gateway
	publisher     events.Publisher
	guard         DeliveryGuard
	logger        *slog.Logger
	now           func() time.Time
	newBackOff    func() backoff.BackOff
	webhookSecret string
	timeout       time.Duration
	chargeTTL     time.Duration
}

// NewLedgerService creates a LedgerService. A nil publisher or guard disables
// event publication or webhook de-duplication respectively.
func NewLedgerService(
	store Store,
	gw gateway.Gateway,
	publisher events.Publisher,
	guard DeliveryGuard,
	cfg LedgerConfig,
	logger *slog.Logger,
) *LedgerService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if guard == nil {
		guard = nopGuard{}
	}
	if cfg.ChargeTTL <= 0 {
		cfg.ChargeTTL = models.DefaultChargeTTL
	}

	return &LedgerService{
		store:         store,
		gateway:       gw,
		publisher:     publisher,
		guard:         guard,
		logger:        logger,
		now:           func() time.Time { return time.Now().UTC() },
		newBackOff:    func() backoff.BackOff { return backoff.NewExponentialBackOff() },
		webhookSecret: cfg.WebhookSecret,
		timeout:       cfg.GatewayTimeout,
		chargeTTL:     cfg.ChargeTTL,
	}
}

type nopGuard struct{}

func (nopGuard) Claim(context.Context, string) (bool, error) { return true, nil }
func (nopGuard) Release(context.Context, string) error       { return nil }

// submit calls the gateway bounded by the configured timeout
func (s *LedgerService) submit(
	ctx context.Context,
	kind gateway.OperationKind,
	payload gateway.Payload,
	reference uuid.UUID,
) (*gateway.Outcome, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	return s.gateway.Submit(ctx, kind, payload, reference)
}

func (s *LedgerService) findWallet(ctx context.Context, wallets repository.WalletRepository, userID uuid.UUID) (*models.Wallet, error) {
	wallet, err := wallets.FindByUserID(ctx, userID)
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

func (s *LedgerService) findRecipient(ctx context.Context, wallets repository.WalletRepository, identifier string) (*models.Wallet, error) {
	wallet, err := wallets.FindByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, &ServiceError{
				Code:    ErrCodeRecipientNotFound,
				Message: "recipient not found",
			}
		}
		return nil, internalError("failed to look up recipient", err)
	}
	return wallet, nil
}

func newTransaction(
	txnType models.TransactionType,
	amountCents int64,
	senderID, recipientID *uuid.UUID,
	description string,
	now time.Time,
) *models.Transaction {
	return &models.Transaction{
		ID:          uuid.New(),
		SenderID:    senderID,
		RecipientID: recipientID,
		AmountCents: amountCents,
		Currency:    models.Currency,
		Type:        txnType,
		Status:      models.StatusPending,
		Description: description,
		CreatedAt:   now,
	}
}
