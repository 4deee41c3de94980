package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/benx421/lzar-wallet/internal/gateway"
	"github.com/benx421/lzar-wallet/internal/metrics"
	"github.com/benx421/lzar-wallet/internal/models"
	"github.com/benx421/lzar-wallet/internal/qr"
	"github.com/benx421/lzar-wallet/internal/repository"
	"github.com/google/uuid"
)

// expiryBatchSize bounds how many charges one expiry statement touches
const expiryBatchSize = 500

// CreateCharge records a pending charge and activates it with the settlement
// gateway. A charge the gateway rejects is marked failed.
func (s *LedgerService) CreateCharge(ctx context.Context, req ChargeRequest) (*models.Charge, error) {
	cents, err := ValidateAmount(req.Amount)
	if err != nil {
		return nil, err
	}

	repos := s.store.Repositories()

	owner, err := s.findWallet(ctx, repos.Wallets, req.OwnerID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	charge := &models.Charge{
		ID:          uuid.New(),
		OwnerID:     owner.UserID,
		PaymentID:   req.PaymentID,
		AmountCents: cents,
		Currency:    models.Currency,
		Status:      models.StatusPending,
		Description: req.Description,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.chargeTTL),
	}

	if err := repos.Charges.Create(ctx, charge); err != nil {
		return nil, internalError("failed to record charge", err)
	}

	ctx = context.WithoutCancel(ctx)

	outcome, err := s.submit(ctx, gateway.KindCharge, gateway.Payload{
		Amount:      models.FromCents(cents),
		MerchantID:  owner.UserID.String(),
		PaymentID:   req.PaymentID,
		Description: req.Description,
	}, charge.ID)
	if err != nil {
		s.logger.Warn("charge activation failed",
			"charge_id", charge.ID,
			"error", err,
		)
		if _, _, markErr := s.transitionCharge(ctx, charge.ID, models.StatusFailed, nil); markErr != nil {
			s.logger.Error("failed to mark charge failed, charge left pending",
				"charge_id", charge.ID,
				"error", markErr,
			)
			metrics.LedgerAnomaliesTotal.Inc()
		}
		return nil, &ServiceError{
			Code:    ErrCodeGatewayFailure,
			Message: "charge could not be activated",
			Err:     err,
		}
	}

	activated, _, err := s.transitionCharge(ctx, charge.ID, models.StatusActive, func(c *models.Charge) {
		if outcome.ExternalID != "" {
			externalID := outcome.ExternalID
			c.ExternalID = &externalID
		}
	})
	if err != nil {
		s.logger.Error("charge accepted but local reconciliation failed",
			"charge_id", charge.ID,
			"external_id", outcome.ExternalID,
			"error", err,
		)
		metrics.LedgerAnomaliesTotal.Inc()
		return nil, internalError("charge accepted but the ledger could not be updated", err)
	}

	return activated, nil
}

// GetCharge retrieves a charge by ID
func (s *LedgerService) GetCharge(ctx context.Context, chargeID uuid.UUID) (*models.Charge, error) {
	charge, err := s.store.Repositories().Charges.FindByID(ctx, chargeID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, &ServiceError{
				Code:    ErrCodeChargeNotFound,
				Message: "charge not found",
			}
		}
		return nil, internalError("failed to load charge", err)
	}
	return charge, nil
}

// ChargeQR renders the payment_request payload of an active charge. Only the
// charge owner may render it.
func (s *LedgerService) ChargeQR(ctx context.Context, userID, chargeID uuid.UUID) (string, error) {
	charge, err := s.GetCharge(ctx, chargeID)
	if err != nil {
		return "", err
	}
	if charge.OwnerID != userID {
		return "", &ServiceError{
			Code:    ErrCodeChargeNotFound,
			Message: "charge not found",
		}
	}
	if !charge.Payable(s.now()) {
		return "", &ServiceError{
			Code:    ErrCodeInvalidRequest,
			Message: fmt.Sprintf("charge is %s and cannot be paid", charge.Status),
		}
	}

	owner, err := s.findWallet(ctx, s.store.Repositories().Wallets, charge.OwnerID)
	if err != nil {
		return "", err
	}

	payload, err := qr.Encode(qr.PaymentRequest{
		ChargeID:     charge.ID.String(),
		Amount:       models.FromCents(charge.AmountCents),
		Currency:     charge.Currency,
		Description:  charge.Description,
		MerchantName: merchantName(owner),
		MerchantID:   owner.UserID.String(),
		ExpiresAt:    charge.ExpiresAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return "", internalError("failed to encode charge", err)
	}
	return payload, nil
}

func merchantName(w *models.Wallet) string {
	switch {
	case w.DisplayName != "":
		return w.DisplayName
	case w.Email != "":
		return w.Email
	default:
		return w.UserID.String()
	}
}

// ExpireCharges moves every pending or active charge whose expiry has passed to
// expired and returns how many it moved. Pending charges only outlive their expiry
// when activation could not be recorded.
func (s *LedgerService) ExpireCharges(ctx context.Context, now time.Time) (int, error) {
	total := 0
	for {
		expired, err := s.store.Repositories().Charges.ExpireDue(ctx, now, expiryBatchSize)
		if err != nil {
			return total, fmt.Errorf("failed to expire charges: %w", err)
		}

		for i := range expired {
			s.recordCharge(ctx, &expired[i])
		}
		total += len(expired)

		if len(expired) < expiryBatchSize {
			return total, nil
		}
	}
}

// transitionCharge applies a status change in its own database transaction and
// records it after commit
func (s *LedgerService) transitionCharge(
	ctx context.Context,
	id uuid.UUID,
	to models.Status,
	mutate func(*models.Charge),
) (*models.Charge, bool, error) {
	var (
		charge  *models.Charge
		applied bool
	)

	err := s.store.InTx(ctx, func(repos repository.Repositories) error {
		var err error
		charge, applied, err = performChargeTransition(ctx, repos, id, to, mutate)
		return err
	})
	if err != nil {
		return nil, false, err
	}

	if applied {
		s.recordCharge(ctx, charge)
	}
	return charge, applied, nil
}

// performChargeTransition locks the charge and moves it to to. A charge already in
// to is returned unchanged with applied=false.
func performChargeTransition(
	ctx context.Context,
	repos repository.Repositories,
	id uuid.UUID,
	to models.Status,
	mutate func(*models.Charge),
) (*models.Charge, bool, error) {
	charge, err := repos.Charges.FindByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, false, fmt.Errorf("charge %s: %w", id, errUnknownReference)
		}
		return nil, false, err
	}

	if charge.Status == to {
		return charge, false, nil
	}
	if !models.ChargeTransitions.Allows(charge.Status, to) {
		return charge, false, fmt.Errorf("charge %s is %s, cannot become %s: %w",
			id, charge.Status, to, models.ErrInvalidTransition)
	}

	from := charge.Status
	charge.Status = to
	if mutate != nil {
		mutate(charge)
	}

	if err := repos.Charges.Transition(ctx, charge, from); err != nil {
		return nil, false, err
	}
	return charge, true, nil
}

// performChargePaid marks the charge paid, creates its companion payment record
// and credits the owner, all at most once per charge.
func performChargePaid(
	ctx context.Context,
	repos repository.Repositories,
	id, payerID uuid.UUID,
	gatewayChargeID string,
	now time.Time,
) (*models.Charge, *models.Transaction, error) {
	charge, applied, err := performChargeTransition(ctx, repos, id, models.StatusPaid, func(c *models.Charge) {
		c.PayerID = &payerID
		c.PaidAt = &now
		if gatewayChargeID != "" && c.ExternalID == nil {
			externalID := gatewayChargeID
			c.ExternalID = &externalID
		}
	})
	if err != nil || !applied {
		return charge, nil, err
	}

	payment := newTransaction(models.TransactionTypePayment, charge.AmountCents, &payerID, &charge.OwnerID, charge.Description, now)
	payment.Status = models.StatusCompleted
	payment.CompletedAt = &now
	payment.ExternalID = charge.ExternalID

	if err := repos.Transactions.Create(ctx, payment); err != nil {
		return nil, nil, fmt.Errorf("failed to create payment record: %w", err)
	}
	if err := applyDeltas(ctx, repos.Wallets, payment.SettlementDeltas(models.StatusCompleted)); err != nil {
		return nil, nil, err
	}

	return charge, payment, nil
}
