package gateway

import (
	"context"
	"crypto/rand"
	"errors"
	"log/slog"
	"math/big"
	"time"

	"github.com/benx421/lzar-wallet/internal/config"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrInjectedFault is returned by FaultInjector in place of a real call
var ErrInjectedFault = errors.New("injected settlement failure")

// FaultInjector wraps a Gateway and adds random latency and failures for testing
// how the ledger reconciles an unreliable settlement API.
type FaultInjector struct {
	next   Gateway
	logger *slog.Logger
	rate   float64
	minMS  int
	maxMS  int
}

var _ Gateway = (*FaultInjector)(nil)

// WithFaults wraps next when cfg enables fault injection and returns next unchanged
// otherwise.
func WithFaults(next Gateway, cfg *config.GatewayConfig, logger *slog.Logger) Gateway {
	if cfg.FaultRate <= 0 && cfg.MinLatencyMS <= 0 && cfg.MaxLatencyMS <= 0 {
		return next
	}
	return &FaultInjector{
		next:   next,
		logger: logger,
		rate:   cfg.FaultRate,
		minMS:  cfg.MinLatencyMS,
		maxMS:  cfg.MaxLatencyMS,
	}
}

func (f *FaultInjector) Submit(ctx context.Context, kind OperationKind, payload Payload, reference uuid.UUID) (*Outcome, error) {
	if err := f.inject(ctx, string(kind)); err != nil {
		return nil, err
	}
	return f.next.Submit(ctx, kind, payload, reference)
}

func (f *FaultInjector) FetchBalance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	if err := f.inject(ctx, "balance"); err != nil {
		return decimal.Zero, err
	}
	return f.next.FetchBalance(ctx, userID)
}

func (f *FaultInjector) inject(ctx context.Context, operation string) error {
	if err := injectLatency(ctx, f.minMS, f.maxMS); err != nil {
		return err
	}

	if shouldInjectFailure(f.rate) {
		f.logger.Debug("injecting settlement failure", "operation", operation)
		return ErrInjectedFault
	}
	return nil
}

func injectLatency(ctx context.Context, minMS, maxMS int) error {
	if minMS <= 0 && maxMS <= 0 {
		return nil
	}

	sleepMS := minMS
	if rangeMS := maxMS - minMS; rangeMS > 0 {
		if offset, err := rand.Int(rand.Reader, big.NewInt(int64(rangeMS))); err == nil {
			sleepMS += int(offset.Int64())
		}
	}

	timer := time.NewTimer(time.Duration(sleepMS) * time.Millisecond)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func shouldInjectFailure(failureRate float64) bool {
	if failureRate <= 0 {
		return false
	}
	if failureRate >= 1 {
		return true
	}

	const precision = 1000000
	randomNum, err := rand.Int(rand.Reader, big.NewInt(precision))
	if err != nil {
		return false
	}

	threshold := int64(failureRate * precision)
	return randomNum.Int64() < threshold
}
