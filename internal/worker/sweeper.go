// Package worker runs the wallet's background jobs.
package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/benx421/lzar-wallet/internal/service"
)

// ExpirySweeper periodically expires unpaid charges whose TTL has elapsed
type ExpirySweeper struct {
	expirer  service.ChargeExpirer
	logger   *slog.Logger
	now      func() time.Time
	cancel   context.CancelFunc
	interval time.Duration
	wg       sync.WaitGroup
}

// NewExpirySweeper creates an ExpirySweeper that runs every interval once started
func NewExpirySweeper(expirer service.ChargeExpirer, interval time.Duration, logger *slog.Logger) *ExpirySweeper {
	return &ExpirySweeper{
		expirer:  expirer,
		interval: interval,
		logger:   logger,
		now:      time.Now,
	}
}

// Start launches the sweep loop. It sweeps once immediately, then every interval
// until ctx is cancelled or Stop is called.
func (s *ExpirySweeper) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.sweep(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweep(ctx)
			}
		}
	}()
}

// Stop cancels the loop and waits for an in-flight sweep to finish
func (s *ExpirySweeper) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *ExpirySweeper) sweep(ctx context.Context) {
	expired, err := s.expirer.ExpireCharges(ctx, s.now())
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Error("charge expiry sweep failed", "error", err)
		}
		return
	}
	if expired > 0 {
		s.logger.Info("expired charges", "count", expired)
	}
}
