package service

import (
	"context"
	"time"

	"github.com/benx421/lzar-wallet/internal/models"
	"github.com/benx421/lzar-wallet/internal/qr"
	"github.com/benx421/lzar-wallet/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// HealthChecker validates system health.
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// Store hands out repositories outside or inside a database transaction
type Store interface {
	Repositories() repository.Repositories
	InTx(ctx context.Context, fn func(repos repository.Repositories) error) error
}

// DeliveryGuard de-duplicates webhook deliveries
type DeliveryGuard interface {
	Claim(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

// TransferRequest moves funds between two wallets
type TransferRequest struct {
	Amount      decimal.Decimal
	Recipient   string
	Description string
	SenderID    uuid.UUID
}

// MintRequest issues new funds to a wallet. An empty Recipient mints to the actor.
type MintRequest struct {
	Amount      decimal.Decimal
	Recipient   string
	Description string
	ActorID     uuid.UUID
}

// RedeemRequest withdraws funds from the user's wallet
type RedeemRequest struct {
	Amount decimal.Decimal
	UserID uuid.UUID
}

// ChargeRequest creates a payment request owned by OwnerID
type ChargeRequest struct {
	Amount      decimal.Decimal
	PaymentID   string
	Description string
	OwnerID     uuid.UUID
}

// Transferer handles peer transfers
type Transferer interface {
	Transfer(ctx context.Context, req TransferRequest) (*models.Transaction, error)
}

// Minter handles top-ups
type Minter interface {
	Mint(ctx context.Context, req MintRequest) (*models.Transaction, error)
}

// Redeemer handles withdrawals
type Redeemer interface {
	Redeem(ctx context.Context, req RedeemRequest) (*models.Transaction, error)
}

// Charger handles merchant payment requests
type Charger interface {
	CreateCharge(ctx context.Context, req ChargeRequest) (*models.Charge, error)
	GetCharge(ctx context.Context, chargeID uuid.UUID) (*models.Charge, error)
	ChargeQR(ctx context.Context, userID, chargeID uuid.UUID) (string, error)
}

// ChargeExpirer applies charge expiry
type ChargeExpirer interface {
	ExpireCharges(ctx context.Context, now time.Time) (int, error)
}

// WebhookProcessor verifies and reconciles settlement notifications
type WebhookProcessor interface {
	HandleWebhook(ctx context.Context, body []byte, signature string) error
}

// WalletReader serves balances
type WalletReader interface {
	GetWallet(ctx context.Context, userID uuid.UUID) (*models.Wallet, error)
	SettlementBalance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error)
}

// TransactionReader serves history and receipts
type TransactionReader interface {
	GetTransaction(ctx context.Context, userID, transactionID uuid.UUID) (*models.Transaction, error)
	ListTransactions(ctx context.Context, userID uuid.UUID, limit int) ([]models.Transaction, error)
	TransactionReceipt(ctx context.Context, userID, transactionID uuid.UUID) (string, error)
}

// QRResolver decodes scanned payloads
type QRResolver interface {
	ResolveQR(payload string) qr.Dispatch
}

// Ensure concrete types implement interfaces
var (
	_ Transferer        = (*LedgerService)(nil)
	_ Minter            = (*LedgerService)(nil)
	_ Redeemer          = (*LedgerService)(nil)
	_ Charger           = (*LedgerService)(nil)
	_ ChargeExpirer     = (*LedgerService)(nil)
	_ WebhookProcessor  = (*LedgerService)(nil)
	_ WalletReader      = (*QueryService)(nil)
	_ TransactionReader = (*QueryService)(nil)
	_ QRResolver        = (*QueryService)(nil)
)
