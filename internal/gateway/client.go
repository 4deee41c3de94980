// Package gateway is the client side of the external stablecoin settlement API.
//
// Ledger-mutating submissions are sent exactly once; only balance reads are
// retried.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/benx421/lzar-wallet/internal/config"
	"github.com/benx421/lzar-wallet/internal/metrics"
	"github.com/benx421/lzar-wallet/internal/models"
	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const maxErrorBody = 4 << 10

// OperationKind selects the settlement endpoint
type OperationKind string

const (
	KindTransfer OperationKind = "transfer"
	KindMint     OperationKind = "mint"
	KindRedeem   OperationKind = "redeem"
	KindCharge   OperationKind = "charge"
)

func (k OperationKind) path() (string, error) {
	switch k {
	case KindTransfer, KindMint, KindRedeem:
		return "/" + string(k), nil
	case KindCharge:
		return "/charges", nil
	default:
		return "", fmt.Errorf("unknown operation kind %q", k)
	}
}

// Payload carries the operation-specific fields of a submission. Empty fields are
// omitted from the request body.
type Payload struct {
	Amount      decimal.Decimal
	From        string
	To          string
	MerchantID  string
	PaymentID   string
	Description string
}

// Outcome is an accepted submission
type Outcome struct {
	ExternalID string
}

// GatewayError is a non-2xx answer from the settlement API
type GatewayError struct {
	Body       string
	StatusCode int
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("settlement api returned %d: %s", e.StatusCode, e.Body)
}

// Gateway is the settlement API contract the reconciliation engine depends on
type Gateway interface {
	Submit(ctx context.Context, kind OperationKind, payload Payload, reference uuid.UUID) (*Outcome, error)
	FetchBalance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error)
}

// Client talks to the settlement API over HTTP
type Client struct {
	httpClient   *http.Client
	logger       *slog.Logger
	newBackOff   func() backoff.BackOff
	baseURL      string
	apiKey       string
	readAttempts int
}

var _ Gateway = (*Client)(nil)

// NewClient creates a Client. Every call is bounded by cfg.Timeout.
func NewClient(cfg *config.GatewayConfig, logger *slog.Logger) *Client {
	return &Client{
		httpClient:   &http.Client{Timeout: cfg.Timeout},
		logger:       logger,
		newBackOff:   func() backoff.BackOff { return backoff.NewExponentialBackOff() },
		baseURL:      strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:       cfg.APIKey,
		readAttempts: cfg.ReadAttempts,
	}
}

type submitRequest struct {
	From        string      `json:"from,omitempty"`
	To          string      `json:"to,omitempty"`
	MerchantID  string      `json:"merchant_id,omitempty"`
	PaymentID   string      `json:"payment_id,omitempty"`
	Description string      `json:"description,omitempty"`
	Currency    string      `json:"currency"`
	Reference   string      `json:"reference"`
	Amount      json.Number `json:"amount"`
}

type submitResponse struct {
	ID            string `json:"id"`
	TransactionID string `json:"transaction_id"`
}

// Submit sends one ledger-mutating operation. reference is the local record id; it
// is echoed back by webhooks and doubles as the request's Idempotency-Key. Any
// transport error, timeout or non-2xx status is returned as-is and never retried.
func (c *Client) Submit(ctx context.Context, kind OperationKind, payload Payload, reference uuid.UUID) (*Outcome, error) {
	path, err := kind.path()
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(submitRequest{
		From:        payload.From,
		To:          payload.To,
		MerchantID:  payload.MerchantID,
		PaymentID:   payload.PaymentID,
		Description: payload.Description,
		Currency:    models.Currency,
		Reference:   reference.String(),
		Amount:      json.Number(payload.Amount.StringFixed(2)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s request: %w", kind, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %w", kind, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", reference.String())

	respBody, err := c.do(req, string(kind))
	if err != nil {
		return nil, err
	}

	var decoded submitResponse
	if len(bytes.TrimSpace(respBody)) > 0 {
		if err := json.Unmarshal(respBody, &decoded); err != nil {
			c.logger.Warn("settlement api accepted with an unreadable body",
				"operation", kind,
				"reference", reference,
				"error", err,
			)
		}
	}

	outcome := &Outcome{ExternalID: decoded.ID}
	if outcome.ExternalID == "" {
		outcome.ExternalID = decoded.TransactionID
	}

	return outcome, nil
}

type token struct {
	Name    string          `json:"name"`
	Balance decimal.Decimal `json:"balance"`
}

type balanceResponse struct {
	Data *struct {
		Tokens []token `json:"tokens"`
	} `json:"data"`
	Tokens []token `json:"tokens"`
}

// FetchBalance reads the user's LZAR balance held by the settlement API. Network
// errors and 5xx answers are retried with exponential backoff up to the configured
// number of attempts; 4xx answers fail immediately.
func (c *Client) FetchBalance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	attempt := 0
	op := func() (decimal.Decimal, error) {
		attempt++
		return c.fetchBalance(ctx, userID)
	}

	notify := func(err error, wait time.Duration) {
		c.logger.Warn("balance read failed, retrying",
			"user_id", userID,
			"attempt", attempt,
			"wait", wait,
			"error", err,
		)
	}

	b := backoff.WithContext(backoff.WithMaxRetries(c.newBackOff(), uint64(max(c.readAttempts-1, 0))), ctx)
	return backoff.RetryNotifyWithData(op, b, notify)
}

func (c *Client) fetchBalance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+userID.String()+"/balance", nil)
	if err != nil {
		return decimal.Zero, backoff.Permanent(fmt.Errorf("failed to build balance request: %w", err))
	}

	body, err := c.do(req, "balance")
	if err != nil {
		var gwErr *GatewayError
		if errors.As(err, &gwErr) && gwErr.StatusCode < http.StatusInternalServerError {
			return decimal.Zero, backoff.Permanent(err)
		}
		return decimal.Zero, err
	}

	var decoded balanceResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return decimal.Zero, backoff.Permanent(fmt.Errorf("failed to decode balance response: %w", err))
	}

	tokens := decoded.Tokens
	if decoded.Data != nil {
		tokens = decoded.Data.Tokens
	}
	for _, t := range tokens {
		if strings.EqualFold(t.Name, models.Currency) {
			return t.Balance, nil
		}
	}

	return decimal.Zero, nil
}

// do sends req with credentials and returns the body of a 2xx answer
func (c *Client) do(req *http.Request, operation string) ([]byte, error) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.GatewayRequestDuration.WithLabelValues(operation, "error").Observe(time.Since(start).Seconds())
		return nil, fmt.Errorf("settlement api %s: %w", operation, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.GatewayRequestDuration.WithLabelValues(operation, "error").Observe(time.Since(start).Seconds())
		return nil, fmt.Errorf("failed to read settlement api %s response: %w", operation, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.GatewayRequestDuration.WithLabelValues(operation, "rejected").Observe(time.Since(start).Seconds())
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return nil, &GatewayError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	metrics.GatewayRequestDuration.WithLabelValues(operation, "accepted").Observe(time.Since(start).Seconds())
	return body, nil
}
