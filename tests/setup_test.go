//nolint:errcheck // unchecked errors are acceptable in test files
package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benx421/lzar-wallet/internal/auth"
	"github.com/benx421/lzar-wallet/internal/config"
	"github.com/benx421/lzar-wallet/internal/db"
	"github.com/benx421/lzar-wallet/internal/gateway"
	"github.com/benx421/lzar-wallet/internal/handlers"
	"github.com/benx421/lzar-wallet/internal/repository"
	"github.com/benx421/lzar-wallet/internal/service"
	"github.com/benx421/lzar-wallet/internal/webhook"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const (
	jwtSecret     = "integration-jwt-secret"
	webhookSecret = "integration-webhook-secret"
)

// Seeded wallets
var (
	alice    = uuid.MustParse("11111111-1111-4111-8111-111111111111")
	bob      = uuid.MustParse("22222222-2222-4222-8222-222222222222")
	merchant = uuid.MustParse("33333333-3333-4333-8333-333333333333")
)

// settlementStub plays the external settlement API. Submissions are accepted
// unless reject is set.
type settlementStub struct {
	server    *httptest.Server
	reject    atomic.Bool
	submitted atomic.Int32
}

func newSettlementStub(t *testing.T) *settlementStub {
	t.Helper()

	stub := &settlementStub{}
	stub.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if r.Method == http.MethodGet {
			w.Write([]byte(`{"data":{"tokens":[{"name":"LZAR","balance":"42.00"}]}}`))
			return
		}

		n := stub.submitted.Add(1)
		if stub.reject.Load() {
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte(`{"error":"settlement unavailable"}`))
			return
		}
		fmt.Fprintf(w, `{"id":"stl_%d"}`, n)
	}))
	t.Cleanup(stub.server.Close)

	return stub
}

// TestServer wraps the HTTP test server and database for integration tests.
type TestServer struct {
	Server     *httptest.Server
	Database   *db.DB
	Settlement *settlementStub
	Ledger     *service.LedgerService
	t          *testing.T
}

// SetupTest creates a new test server with a clean database state. It skips when
// no database is reachable.
func SetupTest(t *testing.T) *TestServer {
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
	require.NoError(t, database.Migrate(ctx))
	resetTestData(t, database)

	stub := newSettlementStub(t)
	cfg.Gateway.BaseURL = stub.server.URL

	store := repository.NewStore(database)
	gw := gateway.NewClient(&cfg.Gateway, logger)
	ledger := service.NewLedgerService(store, gw, nil, nil, service.LedgerConfig{
		WebhookSecret:  webhookSecret,
		GatewayTimeout: cfg.Gateway.Timeout,
		ChargeTTL:      cfg.Charges.TTL,
	}, logger)
	queries := service.NewQueryService(store, gw, logger)

	h := handlers.NewHandler(handlers.Services{
		Transfers:    ledger,
		Mints:        ledger,
		Redemptions:  ledger,
		Charges:      ledger,
		Webhooks:     ledger,
		Wallets:      queries,
		Transactions: queries,
		QR:           queries,
		Health:       database,
	}, logger)

	router, err := handlers.NewRouter(h, handlers.RouterConfig{
		Verifier:    auth.NewJWTVerifier(jwtSecret),
		Idempotency: repository.NewIdempotencyRepository(database),
	}, logger)
	require.NoError(t, err)

	return &TestServer{
		Server:     httptest.NewServer(router),
		Database:   database,
		Settlement: stub,
		Ledger:     ledger,
		t:          t,
	}
}

// Close shuts down the test server and database connection.
func (ts *TestServer) Close() {
	ts.Server.Close()
	_ = ts.Database.Close()
}

// URL returns the full URL for a given path.
func (ts *TestServer) URL(path string) string {
	return ts.Server.URL + path
}

func resetTestData(t *testing.T, database *db.DB) {
	t.Helper()

	_, err := database.ExecContext(context.Background(), `
		TRUNCATE TABLE idempotency_keys, charges, transactions, wallets CASCADE;
		INSERT INTO wallets (user_id, email, phone, display_name, balance_cents, available_balance_cents) VALUES
			('11111111-1111-4111-8111-111111111111', 'alice@example.com', '+27110000001', 'Alice', 10000, 10000),
			('22222222-2222-4222-8222-222222222222', 'bob@example.com', '+27110000002', 'Bob', 500, 500),
			('33333333-3333-4333-8333-333333333333', 'shop@example.com', '+27110000003', 'Corner Shop', 0, 0);
	`)
	require.NoError(t, err, "failed to reset test data")
}

func bearer(t *testing.T, userID uuid.UUID) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID.String(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(jwtSecret))
	require.NoError(t, err)

	return "Bearer " + token
}

// Do sends an authenticated request as userID. body is JSON encoded when not nil.
func (ts *TestServer) Do(t *testing.T, userID uuid.UUID, method, path string, body any, idempotencyKey string) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequest(method, ts.URL(path), reader)
	require.NoError(t, err)

	req.Header.Set("Authorization", bearer(t, userID))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)

	return resp
}

// Webhook delivers a signed settlement notification.
func (ts *TestServer) Webhook(t *testing.T, body string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodPost, ts.URL("/webhooks/settlement"), bytes.NewReader([]byte(body)))
	require.NoError(t, err)

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(webhook.SignatureHeader, webhook.Sign([]byte(body), webhookSecret))

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)

	return resp
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

// Balance returns the wallet's balance and available balance in LZAR.
func (ts *TestServer) Balance(t *testing.T, userID uuid.UUID) (float64, float64) {
	t.Helper()

	resp := ts.Do(t, userID, http.MethodGet, "/api/v1/wallet", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode(t, resp)
	return body["balance"].(float64), body["available_balance"].(float64)
}
