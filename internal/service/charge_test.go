package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/benx421/lzar-wallet/internal/gateway"
	gwmocks "github.com/benx421/lzar-wallet/internal/gateway/mocks"
	"github.com/benx421/lzar-wallet/internal/models"
	"github.com/benx421/lzar-wallet/internal/qr"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func createCharge(t *testing.T, svc *LedgerService, gw *gwmocks.MockGateway, owner models.Wallet) *models.Charge {
	t.Helper()

	gw.On("Submit", mock.Anything, gateway.KindCharge, mock.Anything, mock.Anything).
		Return(&gateway.Outcome{ExternalID: "chg_ext"}, nil).Once()

	charge, err := svc.CreateCharge(context.Background(), ChargeRequest{
		OwnerID:     owner.UserID,
		Amount:      decimal.NewFromInt(40),
		PaymentID:   "order-77",
		Description: "Coffee",
	})
	require.NoError(t, err)
	return charge
}

func TestLedgerService_CreateCharge(t *testing.T) {
	t.Run("activates with the gateway", func(t *testing.T) {
		merchant := wallet(0, "shop@example.com")
		store := newMemStore(merchant)
		svc, gw, pub := newTestLedger(t, store, nil)

		gw.On("Submit", mock.Anything, gateway.KindCharge, mock.MatchedBy(func(p gateway.Payload) bool {
			return p.MerchantID == merchant.UserID.String() &&
				p.PaymentID == "order-77" &&
				p.Amount.Equal(decimal.NewFromInt(40))
		}), mock.AnythingOfType("uuid.UUID")).Return(&gateway.Outcome{ExternalID: "chg_ext"}, nil).Once()

		charge, err := svc.CreateCharge(context.Background(), ChargeRequest{
			OwnerID:   merchant.UserID,
			Amount:    decimal.NewFromInt(40),
			PaymentID: "order-77",
		})

		require.NoError(t, err)
		assert.Equal(t, models.StatusActive, charge.Status)
		assert.Equal(t, "chg_ext", *charge.ExternalID)
		assert.Equal(t, fixedNow.Add(24*time.Hour), charge.ExpiresAt)
		assert.Equal(t, models.StatusActive, store.charge(charge.ID).Status)
		assert.Empty(t, pub.published(), "non-terminal charge transitions are not published")
	})

	t.Run("marks the charge failed when the gateway rejects", func(t *testing.T) {
		merchant := wallet(0, "shop@example.com")
		store := newMemStore(merchant)
		svc, gw, pub := newTestLedger(t, store, nil)

		gw.On("Submit", mock.Anything, gateway.KindCharge, mock.Anything, mock.Anything).
			Return(nil, errors.New("connection refused")).Once()

		_, err := svc.CreateCharge(context.Background(), ChargeRequest{
			OwnerID: merchant.UserID,
			Amount:  decimal.NewFromInt(40),
		})

		assertServiceCode(t, err, ErrCodeGatewayFailure)
		require.Len(t, store.charges, 1)
		for _, c := range store.charges {
			assert.Equal(t, models.StatusFailed, c.Status)
		}
		require.Len(t, pub.published(), 1)
		assert.Equal(t, "failed", pub.published()[0].Status)
	})

	t.Run("rejects bad amounts before writing", func(t *testing.T) {
		store := newMemStore()
		svc, _, _ := newTestLedger(t, store, nil)

		_, err := svc.CreateCharge(context.Background(), ChargeRequest{Amount: decimal.RequireFromString("0.001")})

		assertServiceCode(t, err, ErrCodeInvalidAmount)
		assert.Empty(t, store.charges)
	})
}

func TestLedgerService_ChargeQR(t *testing.T) {
	merchant := wallet(0, "shop@example.com")
	merchant.DisplayName = "Corner Shop"
	store := newMemStore(merchant)
	svc, gw, _ := newTestLedger(t, store, nil)
	charge := createCharge(t, svc, gw, merchant)

	t.Run("owner renders a payment request", func(t *testing.T) {
		payload, err := svc.ChargeQR(context.Background(), merchant.UserID, charge.ID)
		require.NoError(t, err)

		d := qr.Route(payload)
		require.Equal(t, qr.ActionConfirmPayment, d.Action)
		assert.Equal(t, charge.ID.String(), d.Payment.ChargeID)
		assert.Equal(t, "Corner Shop", d.Payment.MerchantName)
		assert.True(t, d.Payment.Amount.Equal(decimal.NewFromInt(40)))
	})

	t.Run("other users cannot render it", func(t *testing.T) {
		_, err := svc.ChargeQR(context.Background(), uuid.New(), charge.ID)
		assertServiceCode(t, err, ErrCodeChargeNotFound)
	})

	t.Run("any user can read it", func(t *testing.T) {
		got, err := svc.GetCharge(context.Background(), charge.ID)
		require.NoError(t, err)
		assert.Equal(t, charge.ID, got.ID)
	})

	t.Run("unknown charge", func(t *testing.T) {
		_, err := svc.GetCharge(context.Background(), uuid.New())
		assertServiceCode(t, err, ErrCodeChargeNotFound)
	})

	t.Run("expired charge is not payable", func(t *testing.T) {
		svc.now = func() time.Time { return fixedNow.Add(25 * time.Hour) }
		t.Cleanup(func() { svc.now = func() time.Time { return fixedNow } })

		_, err := svc.ChargeQR(context.Background(), merchant.UserID, charge.ID)
		assertServiceCode(t, err, ErrCodeInvalidRequest)
	})
}

func TestMerchantName(t *testing.T) {
	id := uuid.New()

	assert.Equal(t, "Shop", merchantName(&models.Wallet{UserID: id, DisplayName: "Shop", Email: "s@example.com"}))
	assert.Equal(t, "s@example.com", merchantName(&models.Wallet{UserID: id, Email: "s@example.com"}))
	assert.Equal(t, id.String(), merchantName(&models.Wallet{UserID: id}))
}

func TestLedgerService_ExpireCharges(t *testing.T) {
	merchant := wallet(0, "shop@example.com")
	store := newMemStore(merchant)
	svc, gw, pub := newTestLedger(t, store, nil)

	due := createCharge(t, svc, gw, merchant)
	svc.now = func() time.Time { return fixedNow.Add(time.Hour) }
	fresh := createCharge(t, svc, gw, merchant)

	n, err := svc.ExpireCharges(context.Background(), fixedNow.Add(24*time.Hour))

	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, models.StatusExpired, store.charge(due.ID).Status)
	assert.Equal(t, models.StatusActive, store.charge(fresh.ID).Status)

	events := pub.published()
	require.Len(t, events, 1)
	assert.Equal(t, due.ID, events[0].ID)
	assert.Equal(t, "expired", events[0].Status)

	n, err = svc.ExpireCharges(context.Background(), fixedNow.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestLedgerService_ExpireCharges_StalePending(t *testing.T) {
	merchant := wallet(0, "shop@example.com")
	store := newMemStore(merchant)
	svc, _, pub := newTestLedger(t, store, nil)

	stuck := models.Charge{
		ID:          uuid.New(),
		OwnerID:     merchant.UserID,
		PaymentID:   "order-78",
		AmountCents: 4000,
		Currency:    models.Currency,
		Status:      models.StatusPending,
		ExpiresAt:   fixedNow,
	}
	store.charges[stuck.ID] = stuck

	n, err := svc.ExpireCharges(context.Background(), fixedNow.Add(time.Minute))

	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, models.StatusExpired, store.charge(stuck.ID).Status)
	require.Len(t, pub.published(), 1)
}

func TestLedgerService_ExpireCharges_RepositoryError(t *testing.T) {
	store, repos := newMockStore(t)
	svc, _, _ := newTestLedger(t, store, nil)

	repos.charges.On("ExpireDue", mock.Anything, fixedNow, expiryBatchSize).Return(nil, errors.New("timeout"))

	_, err := svc.ExpireCharges(context.Background(), fixedNow)
	assert.ErrorContains(t, err, "failed to expire charges")
}
