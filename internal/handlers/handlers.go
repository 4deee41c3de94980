// Package handlers implements HTTP handlers for the wallet API.
package handlers

import (
	"log/slog"

	"github.com/benx421/lzar-wallet/internal/service"
)

// Services groups the service dependencies of the HTTP surface
type Services struct {
	Transfers    service.Transferer
	Mints        service.Minter
	Redemptions  service.Redeemer
	Charges      service.Charger
	Webhooks     service.WebhookProcessor
	Wallets      service.WalletReader
	Transactions service.TransactionReader
	QR           service.QRResolver
	Health       service.HealthChecker
}

// Handler serves every endpoint of the wallet API
type Handler struct {
	transfers    service.Transferer
	mints        service.Minter
	redemptions  service.Redeemer
	charges      service.Charger
	webhooks     service.WebhookProcessor
	wallets      service.WalletReader
	transactions service.TransactionReader
	qr           service.QRResolver
	health       service.HealthChecker
	logger       *slog.Logger
}

// NewHandler creates a new Handler with injected service dependencies.
func NewHandler(svc Services, logger *slog.Logger) *Handler {
	return &Handler{
		transfers:    svc.Transfers,
		mints:        svc.Mints,
		redemptions:  svc.Redemptions,
		charges:      svc.Charges,
		webhooks:     svc.Webhooks,
		wallets:      svc.Wallets,
		transactions: svc.Transactions,
		qr:           svc.QR,
		health:       svc.Health,
		logger:       logger,
	}
}
