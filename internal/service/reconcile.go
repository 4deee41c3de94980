package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/benx421/lzar-wallet/internal/events"
	"github.com/benx421/lzar-wallet/internal/gateway"
	"github.com/benx421/lzar-wallet/internal/metrics"
	"github.com/benx421/lzar-wallet/internal/models"
	"github.com/benx421/lzar-wallet/internal/repository"
	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
)

// failureMarkAttempts bounds the retries of the failed-status write after a
// gateway failure.
const failureMarkAttempts = 3

// errUnknownReference marks a reconciliation for a record this ledger never opened
var errUnknownReference = errors.New("unknown reference")

// settlement is the target of a transaction leaving pending
type settlement struct {
	To           models.Status
	ExternalID   string
	ErrorMessage string
}

// open places the sender's hold and creates the pending record in one database
// transaction. Nothing is written when the hold cannot be placed.
func (s *LedgerService) open(ctx context.Context, txn *models.Transaction) error {
	err := s.store.InTx(ctx, func(repos repository.Repositories) error {
		return performOpen(ctx, repos, txn)
	})
	if err != nil {
		var svcErr *ServiceError
		if errors.As(err, &svcErr) {
			return svcErr
		}
		return internalError("failed to record transaction", err)
	}

	s.logger.Info("transaction opened",
		"transaction_id", txn.ID,
		"type", txn.Type,
		"amount_cents", txn.AmountCents,
	)
	return nil
}

func performOpen(ctx context.Context, repos repository.Repositories, txn *models.Transaction) error {
	if hold := txn.HoldDelta(); hold != nil {
		if _, err := repos.Wallets.AdjustBalances(ctx, hold.UserID, hold.Balance, hold.Available); err != nil {
			switch {
			case errors.Is(err, models.ErrInsufficientFunds):
				return &ServiceError{
					Code:    ErrCodeInsufficientBalance,
					Message: "insufficient balance",
				}
			case errors.Is(err, models.ErrNotFound):
				return &ServiceError{
					Code:    ErrCodeWalletNotFound,
					Message: "wallet not found",
				}
			}
			return fmt.Errorf("failed to hold funds: %w", err)
		}
	}

	if err := repos.Transactions.Create(ctx, txn); err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	return nil
}

// execute submits an opened record and reconciles the outcome. It runs detached
// from the caller's cancellation: once submitted, the operation is reconciled.
func (s *LedgerService) execute(
	ctx context.Context,
	txn *models.Transaction,
	kind gateway.OperationKind,
	payload gateway.Payload,
) (*models.Transaction, error) {
	ctx = context.WithoutCancel(ctx)

	outcome, err := s.submit(ctx, kind, payload, txn.ID)
	if err != nil {
		s.logger.Warn("settlement submission failed",
			"transaction_id", txn.ID,
			"type", txn.Type,
			"error", err,
		)
		_ = s.markFailed(ctx, txn.ID, err.Error()) //nolint:errcheck // markFailed logs the anomaly
		return nil, &ServiceError{
			Code:    ErrCodeGatewayFailure,
			Message: fmt.Sprintf("%s could not be settled, no funds were moved", txn.Type),
			Err:     err,
		}
	}

	settled, _, err := s.settle(ctx, txn.ID, settlement{
		To:         models.StatusCompleted,
		ExternalID: outcome.ExternalID,
	})
	if err != nil {
		s.logger.Error("settlement accepted but local reconciliation failed",
			"transaction_id", txn.ID,
			"external_id", outcome.ExternalID,
			"error", err,
		)
		metrics.LedgerAnomaliesTotal.Inc()
		return nil, internalError("settlement accepted but the ledger could not be updated", err)
	}

	return settled, nil
}

// markFailed moves a pending record to failed, retrying the write with backoff.
// When every attempt fails the record stays pending and the anomaly is logged.
func (s *LedgerService) markFailed(ctx context.Context, id uuid.UUID, reason string) error {
	op := func() error {
		_, _, err := s.settle(ctx, id, settlement{To: models.StatusFailed, ErrorMessage: reason})
		if errors.Is(err, models.ErrInvalidTransition) || errors.Is(err, errUnknownReference) {
			return backoff.Permanent(err)
		}
		return err
	}

	b := backoff.WithContext(backoff.WithMaxRetries(s.newBackOff(), failureMarkAttempts-1), ctx)
	if err := backoff.Retry(op, b); err != nil {
		s.logger.Error("failed to mark transaction failed, record left pending",
			"transaction_id", id,
			"error", err,
		)
		metrics.LedgerAnomaliesTotal.Inc()
		return err
	}

	return nil
}

// settle applies st to the record in its own database transaction and publishes
// the transition after commit.
func (s *LedgerService) settle(ctx context.Context, id uuid.UUID, st settlement) (*models.Transaction, bool, error) {
	var (
		txn     *models.Transaction
		applied bool
	)

	err := s.store.InTx(ctx, func(repos repository.Repositories) error {
		var err error
		txn, applied, err = performSettle(ctx, repos, id, st, s.now())
		return err
	})
	if err != nil {
		return nil, false, err
	}

	if applied {
		s.recordTransaction(ctx, txn)
	}
	return txn, applied, nil
}

// performSettle is the only place a transaction leaves pending. It locks the
// record, checks the transition table and applies the balance effects of the new
// status. A record already in st.To is returned unchanged with applied=false.
func performSettle(
	ctx context.Context,
	repos repository.Repositories,
	id uuid.UUID,
	st settlement,
	now time.Time,
) (*models.Transaction, bool, error) {
	txn, err := repos.Transactions.FindByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, false, fmt.Errorf("transaction %s: %w", id, errUnknownReference)
		}
		return nil, false, err
	}

	if txn.Status == st.To {
		return txn, false, nil
	}
	if !models.TransactionTransitions.Allows(txn.Status, st.To) {
		return txn, false, fmt.Errorf("transaction %s is %s, cannot become %s: %w",
			id, txn.Status, st.To, models.ErrInvalidTransition)
	}

	from := txn.Status
	txn.Status = st.To
	if st.ExternalID != "" && txn.ExternalID == nil {
		externalID := st.ExternalID
		txn.ExternalID = &externalID
	}
	switch st.To {
	case models.StatusCompleted:
		txn.CompletedAt = &now
	case models.StatusFailed:
		reason := st.ErrorMessage
		txn.ErrorMessage = &reason
	}

	if err := repos.Transactions.Transition(ctx, txn, from); err != nil {
		return nil, false, err
	}
	if err := applyDeltas(ctx, repos.Wallets, txn.SettlementDeltas(st.To)); err != nil {
		return nil, false, err
	}

	return txn, true, nil
}

// applyDeltas merges deltas per wallet and applies them in ascending user id order,
// so concurrent multi-wallet updates always lock rows in the same order.
func applyDeltas(ctx context.Context, wallets repository.WalletRepository, deltas []models.BalanceDelta) error {
	for _, d := range mergeDeltas(deltas) {
		if d.Balance == 0 && d.Available == 0 {
			continue
		}
		if _, err := wallets.AdjustBalances(ctx, d.UserID, d.Balance, d.Available); err != nil {
			return fmt.Errorf("failed to adjust wallet %s: %w", d.UserID, err)
		}
	}
	return nil
}

func mergeDeltas(deltas []models.BalanceDelta) []models.BalanceDelta {
	merged := make([]models.BalanceDelta, 0, len(deltas))
	for _, d := range deltas {
		i := slices.IndexFunc(merged, func(m models.BalanceDelta) bool { return m.UserID == d.UserID })
		if i < 0 {
			merged = append(merged, d)
			continue
		}
		merged[i].Balance += d.Balance
		merged[i].Available += d.Available
	}

	slices.SortFunc(merged, func(a, b models.BalanceDelta) int {
		return bytes.Compare(a.UserID[:], b.UserID[:])
	})
	return merged
}

func (s *LedgerService) recordTransaction(ctx context.Context, txn *models.Transaction) {
	metrics.LedgerTransitionsTotal.WithLabelValues(metrics.RecordTransaction, string(txn.Status)).Inc()

	s.logger.Info("transaction reconciled",
		"transaction_id", txn.ID,
		"type", txn.Type,
		"status", txn.Status,
	)

	s.publisher.Publish(ctx, events.LedgerEvent{
		OccurredAt:  s.now(),
		SenderID:    txn.SenderID,
		RecipientID: txn.RecipientID,
		Amount:      models.FromCents(txn.AmountCents),
		Record:      events.RecordTransaction,
		Type:        string(txn.Type),
		Status:      string(txn.Status),
		ID:          txn.ID,
	})
}

func (s *LedgerService) recordCharge(ctx context.Context, charge *models.Charge) {
	metrics.LedgerTransitionsTotal.WithLabelValues(metrics.RecordCharge, string(charge.Status)).Inc()

	s.logger.Info("charge reconciled",
		"charge_id", charge.ID,
		"status", charge.Status,
	)

	if !charge.Status.IsTerminal() {
		return
	}

	recipient := charge.OwnerID
	s.publisher.Publish(ctx, events.LedgerEvent{
		OccurredAt:  s.now(),
		SenderID:    charge.PayerID,
		RecipientID: &recipient,
		Amount:      models.FromCents(charge.AmountCents),
		Record:      events.RecordCharge,
		Type:        string(models.TransactionTypePayment),
		Status:      string(charge.Status),
		ID:          charge.ID,
	})
}
