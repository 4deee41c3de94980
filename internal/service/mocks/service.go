package mocks

import (
	"context"
	"time"

	"github.com/benx421/lzar-wallet/internal/models"
	"github.com/benx421/lzar-wallet/internal/qr"
	"github.com/benx421/lzar-wallet/internal/service"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type testingT interface {
	mock.TestingT
	Cleanup(func())
}

func newMock[T any](t testingT, m *T, expectations func(mock.TestingT) bool) *T {
	t.Cleanup(func() { expectations(t) })
	return m
}

// MockTransferer is a mock type for the Transferer type
type MockTransferer struct {
	mock.Mock
}

func (_m *MockTransferer) Transfer(ctx context.Context, req service.TransferRequest) (*models.Transaction, error) {
	ret := _m.Called(ctx, req)
	txn, _ := ret.Get(0).(*models.Transaction)
	return txn, ret.Error(1)
}

// NewMockTransferer creates a new instance of MockTransferer
func NewMockTransferer(t testingT) *MockTransferer {
	m := &MockTransferer{}
	m.Mock.Test(t)
	return newMock(t, m, m.AssertExpectations)
}

// MockMinter is a mock type for the Minter type
type MockMinter struct {
	mock.Mock
}

func (_m *MockMinter) Mint(ctx context.Context, req service.MintRequest) (*models.Transaction, error) {
	ret := _m.Called(ctx, req)
	txn, _ := ret.Get(0).(*models.Transaction)
	return txn, ret.Error(1)
}

// NewMockMinter creates a new instance of MockMinter
func NewMockMinter(t testingT) *MockMinter {
	m := &MockMinter{}
	m.Mock.Test(t)
	return newMock(t, m, m.AssertExpectations)
}

// MockRedeemer is a mock type for the Redeemer type
type MockRedeemer struct {
	mock.Mock
}

func (_m *MockRedeemer) Redeem(ctx context.Context, req service.RedeemRequest) (*models.Transaction, error) {
	ret := _m.Called(ctx, req)
	txn, _ := ret.Get(0).(*models.Transaction)
	return txn, ret.Error(1)
}

// NewMockRedeemer creates a new instance of MockRedeemer
func NewMockRedeemer(t testingT) *MockRedeemer {
	m := &MockRedeemer{}
	m.Mock.Test(t)
	return newMock(t, m, m.AssertExpectations)
}

// MockCharger is a mock type for the Charger type
type MockCharger struct {
	mock.Mock
}

func (_m *MockCharger) CreateCharge(ctx context.Context, req service.ChargeRequest) (*models.Charge, error) {
	ret := _m.Called(ctx, req)
	charge, _ := ret.Get(0).(*models.Charge)
	return charge, ret.Error(1)
}

func (_m *MockCharger) GetCharge(ctx context.Context, chargeID uuid.UUID) (*models.Charge, error) {
	ret := _m.Called(ctx, chargeID)
	charge, _ := ret.Get(0).(*models.Charge)
	return charge, ret.Error(1)
}

func (_m *MockCharger) ChargeQR(ctx context.Context, userID, chargeID uuid.UUID) (string, error) {
	ret := _m.Called(ctx, userID, chargeID)
	return ret.String(0), ret.Error(1)
}

// NewMockCharger creates a new instance of MockCharger
func NewMockCharger(t testingT) *MockCharger {
	m := &MockCharger{}
	m.Mock.Test(t)
	return newMock(t, m, m.AssertExpectations)
}

// MockChargeExpirer is a mock type for the ChargeExpirer type
type MockChargeExpirer struct {
	mock.Mock
}

func (_m *MockChargeExpirer) ExpireCharges(ctx context.Context, now time.Time) (int, error) {
	ret := _m.Called(ctx, now)
	return ret.Int(0), ret.Error(1)
}

// NewMockChargeExpirer creates a new instance of MockChargeExpirer
func NewMockChargeExpirer(t testingT) *MockChargeExpirer {
	m := &MockChargeExpirer{}
	m.Mock.Test(t)
	return newMock(t, m, m.AssertExpectations)
}

// MockWebhookProcessor is a mock type for the WebhookProcessor type
type MockWebhookProcessor struct {
	mock.Mock
}

func (_m *MockWebhookProcessor) HandleWebhook(ctx context.Context, body []byte, signature string) error {
	ret := _m.Called(ctx, body, signature)
	return ret.Error(0)
}

// NewMockWebhookProcessor creates a new instance of MockWebhookProcessor
func NewMockWebhookProcessor(t testingT) *MockWebhookProcessor {
	m := &MockWebhookProcessor{}
	m.Mock.Test(t)
	return newMock(t, m, m.AssertExpectations)
}

// MockWalletReader is a mock type for the WalletReader type
type MockWalletReader struct {
	mock.Mock
}

func (_m *MockWalletReader) GetWallet(ctx context.Context, userID uuid.UUID) (*models.Wallet, error) {
	ret := _m.Called(ctx, userID)
	wallet, _ := ret.Get(0).(*models.Wallet)
	return wallet, ret.Error(1)
}

func (_m *MockWalletReader) SettlementBalance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	ret := _m.Called(ctx, userID)
	balance, _ := ret.Get(0).(decimal.Decimal)
	return balance, ret.Error(1)
}

// NewMockWalletReader creates a new instance of MockWalletReader
func NewMockWalletReader(t testingT) *MockWalletReader {
	m := &MockWalletReader{}
	m.Mock.Test(t)
	return newMock(t, m, m.AssertExpectations)
}

// MockTransactionReader is a mock type for the TransactionReader type
type MockTransactionReader struct {
	mock.Mock
}

func (_m *MockTransactionReader) GetTransaction(ctx context.Context, userID, transactionID uuid.UUID) (*models.Transaction, error) {
	ret := _m.Called(ctx, userID, transactionID)
	txn, _ := ret.Get(0).(*models.Transaction)
	return txn, ret.Error(1)
}

func (_m *MockTransactionReader) ListTransactions(ctx context.Context, userID uuid.UUID, limit int) ([]models.Transaction, error) {
	ret := _m.Called(ctx, userID, limit)
	txns, _ := ret.Get(0).([]models.Transaction)
	return txns, ret.Error(1)
}

func (_m *MockTransactionReader) TransactionReceipt(ctx context.Context, userID, transactionID uuid.UUID) (string, error) {
	ret := _m.Called(ctx, userID, transactionID)
	return ret.String(0), ret.Error(1)
}

// NewMockTransactionReader creates a new instance of MockTransactionReader
func NewMockTransactionReader(t testingT) *MockTransactionReader {
	m := &MockTransactionReader{}
	m.Mock.Test(t)
	return newMock(t, m, m.AssertExpectations)
}

// MockQRResolver is a mock type for the QRResolver type
type MockQRResolver struct {
	mock.Mock
}

func (_m *MockQRResolver) ResolveQR(payload string) qr.Dispatch {
	ret := _m.Called(payload)
	d, _ := ret.Get(0).(qr.Dispatch)
	return d
}

// NewMockQRResolver creates a new instance of MockQRResolver
func NewMockQRResolver(t testingT) *MockQRResolver {
	m := &MockQRResolver{}
	m.Mock.Test(t)
	return newMock(t, m, m.AssertExpectations)
}

// MockHealthChecker is a mock type for the HealthChecker type
type MockHealthChecker struct {
	mock.Mock
}

func (_m *MockHealthChecker) PingContext(ctx context.Context) error {
	ret := _m.Called(ctx)
	return ret.Error(0)
}

// NewMockHealthChecker creates a new instance of MockHealthChecker
func NewMockHealthChecker(t testingT) *MockHealthChecker {
	m := &MockHealthChecker{}
	m.Mock.Test(t)
	return newMock(t, m, m.AssertExpectations)
}
