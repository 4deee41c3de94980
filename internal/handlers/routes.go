package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/benx421/lzar-wallet/internal/api"
	"github.com/benx421/lzar-wallet/internal/auth"
	"github.com/benx421/lzar-wallet/internal/middleware"
	"github.com/benx421/lzar-wallet/internal/repository"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterConfig holds the collaborators of the HTTP middleware chain
type RouterConfig struct {
	Verifier    auth.Verifier
	Idempotency repository.IdempotencyRepository
	// KafkaMetrics serves the event producer's metrics; nil leaves the route unset
	KafkaMetrics http.Handler
}

// NewRouter creates and configures the HTTP router with all routes and middleware.
func NewRouter(h *Handler, cfg RouterConfig, logger *slog.Logger) (http.Handler, error) {
	doc, err := api.GetSwagger()
	if err != nil {
		return nil, err
	}
	validate, err := middleware.OpenAPIValidator(doc, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build request validator: %w", err)
	}

	r := mux.NewRouter()
	r.Use(middleware.Metrics)

	api.RegisterDocsRoutes(r)
	r.HandleFunc("/health", h.GetHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	if cfg.KafkaMetrics != nil {
		r.Handle("/metrics/kafka", cfg.KafkaMetrics).Methods(http.MethodGet)
	}
	r.HandleFunc("/webhooks/settlement", h.SettlementWebhook).Methods(http.MethodPost)

	v1 := r.PathPrefix("/api/v1").Subrouter()
	v1.Use(
		middleware.Authenticate(cfg.Verifier, logger),
		validate,
		middleware.Idempotency(cfg.Idempotency, logger),
	)

	v1.HandleFunc("/transfer", h.CreateTransfer).Methods(http.MethodPost)
	v1.HandleFunc("/mint", h.CreateMint).Methods(http.MethodPost)
	v1.HandleFunc("/redeem", h.CreateRedeem).Methods(http.MethodPost)
	v1.HandleFunc("/charges", h.CreateCharge).Methods(http.MethodPost)
	v1.HandleFunc("/charges/{chargeId}", h.GetCharge).Methods(http.MethodGet)
	v1.HandleFunc("/charges/{chargeId}/qr", h.GetChargeQR).Methods(http.MethodGet)
	v1.HandleFunc("/transactions", h.ListTransactions).Methods(http.MethodGet)
	v1.HandleFunc("/transactions/{transactionId}", h.GetTransaction).Methods(http.MethodGet)
	v1.HandleFunc("/transactions/{transactionId}/receipt", h.GetTransactionReceipt).Methods(http.MethodGet)
	v1.HandleFunc("/wallet", h.GetWallet).Methods(http.MethodGet)
	v1.HandleFunc("/wallet/settlement-balance", h.GetSettlementBalance).Methods(http.MethodGet)
	v1.HandleFunc("/qr/resolve", h.ResolveQR).Methods(http.MethodPost)

	return r, nil
}
