package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"github.com/benx421/lzar-wallet/internal/metrics"
	"github.com/benx421/lzar-wallet/internal/models"
	"github.com/benx421/lzar-wallet/internal/repository"
	"github.com/benx421/lzar-wallet/internal/webhook"
	"github.com/google/uuid"
)

const defaultFailureReason = "settlement failed"

// HandleWebhook verifies a settlement notification against the raw body and
// reconciles the ledger from it. Nothing is parsed before the signature checks out.
// Unknown event types, unknown references and events that conflict with a record's
// terminal status are acknowledged without mutating state. Once a delivery is
// claimed it is reconciled to completion even if the sender disconnects.
func (s *LedgerService) HandleWebhook(ctx context.Context, body []byte, signature string) error {
	if !webhook.Verify(body, signature, s.webhookSecret) {
		metrics.WebhookEventsTotal.WithLabelValues("", "rejected").Inc()
		return &ServiceError{
			Code:    ErrCodeUnauthorized,
			Message: "invalid webhook signature",
		}
	}

	event, err := webhook.Parse(body)
	if err != nil {
		metrics.WebhookEventsTotal.WithLabelValues("", "malformed").Inc()
		return &ServiceError{
			Code:    ErrCodeInvalidRequest,
			Message: "malformed webhook event",
			Err:     err,
		}
	}
	eventType := string(event.EventType())

	key := deliveryKey(body)
	first, err := s.guard.Claim(ctx, key)
	if err != nil {
		s.logger.Warn("webhook delivery guard unavailable", "error", err)
		first = true
	}
	if !first {
		s.logger.Debug("duplicate webhook delivery acknowledged", "type", eventType)
		metrics.WebhookEventsTotal.WithLabelValues(eventType, "duplicate").Inc()
		return nil
	}

	// a delivery the sender gives up on is still reconciled, and a failed one must
	// release its claim even after the request context is gone
	ctx = context.WithoutCancel(ctx)

	if err := s.dispatch(ctx, event); err != nil {
		if relErr := s.guard.Release(ctx, key); relErr != nil {
			s.logger.Warn("failed to release webhook delivery", "error", relErr)
		}
		metrics.WebhookEventsTotal.WithLabelValues(eventType, "failed").Inc()
		return err
	}

	metrics.WebhookEventsTotal.WithLabelValues(eventType, "processed").Inc()
	return nil
}

func deliveryKey(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

func (s *LedgerService) dispatch(ctx context.Context, event webhook.Event) error {
	switch e := event.(type) {
	case webhook.TransactionCompleted:
		return s.reconcileTransaction(ctx, e.EventType(), e.Reference, settlement{
			To:         models.StatusCompleted,
			ExternalID: e.TransactionID,
		})
	case webhook.TransactionFailed:
		reason := e.ErrorMessage
		if reason == "" {
			reason = defaultFailureReason
		}
		return s.reconcileTransaction(ctx, e.EventType(), e.Reference, settlement{
			To:           models.StatusFailed,
			ErrorMessage: reason,
		})
	case webhook.ChargePaid:
		return s.reconcileChargePaid(ctx, e)
	case webhook.ChargeExpired:
		_, _, err := s.transitionCharge(ctx, e.Reference, models.StatusExpired, nil)
		return s.acknowledge(err, "charge_id", e.Reference, event.EventType())
	default:
		s.logger.Info("ignoring unhandled webhook event", "type", event.EventType())
		return nil
	}
}

func (s *LedgerService) reconcileTransaction(
	ctx context.Context,
	eventType webhook.EventType,
	reference uuid.UUID,
	st settlement,
) error {
	txn, applied, err := s.settle(ctx, reference, st)
	if err == nil && !applied {
		s.logger.Debug("webhook replay for settled transaction",
			"transaction_id", txn.ID,
			"status", txn.Status,
		)
	}
	return s.acknowledge(err, "transaction_id", reference, eventType)
}

func (s *LedgerService) reconcileChargePaid(ctx context.Context, e webhook.ChargePaid) error {
	var (
		charge  *models.Charge
		payment *models.Transaction
	)

	err := s.store.InTx(ctx, func(repos repository.Repositories) error {
		var err error
		charge, payment, err = performChargePaid(ctx, repos, e.Reference, e.PayerID, e.ChargeID, s.now())
		return err
	})
	if err != nil {
		return s.acknowledge(err, "charge_id", e.Reference, e.EventType())
	}

	if payment == nil {
		s.logger.Debug("webhook replay for paid charge", "charge_id", charge.ID)
		return nil
	}

	s.recordCharge(ctx, charge)
	s.recordTransaction(ctx, payment)
	return nil
}

// acknowledge turns reconciliation errors that a redelivery cannot fix into a
// logged acknowledgement
func (s *LedgerService) acknowledge(err error, idKey string, reference uuid.UUID, eventType webhook.EventType) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, errUnknownReference):
		s.logger.Warn("webhook references an unknown record",
			"type", eventType,
			idKey, reference,
		)
		return nil
	case errors.Is(err, models.ErrInvalidTransition):
		s.logger.Warn("webhook conflicts with a terminal record",
			"type", eventType,
			idKey, reference,
			"error", err,
		)
		return nil
	default:
		s.logger.Error("failed to reconcile webhook",
			"type", eventType,
			idKey, reference,
			"error", err,
		)
		return internalError("failed to reconcile webhook event", err)
	}
}
