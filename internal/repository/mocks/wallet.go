package mocks

import (
	"context"

	"github.com/benx421/lzar-wallet/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockWalletRepository is a mock type for the WalletRepository type
type MockWalletRepository struct {
	mock.Mock
}

func (_m *MockWalletRepository) Create(ctx context.Context, wallet *models.Wallet) error {
	ret := _m.Called(ctx, wallet)
	return ret.Error(0)
}

func (_m *MockWalletRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Wallet, error) {
	ret := _m.Called(ctx, userID)
	w, _ := ret.Get(0).(*models.Wallet)
	return w, ret.Error(1)
}

func (_m *MockWalletRepository) FindByIdentifier(ctx context.Context, identifier string) (*models.Wallet, error) {
	ret := _m.Called(ctx, identifier)
	w, _ := ret.Get(0).(*models.Wallet)
	return w, ret.Error(1)
}

func (_m *MockWalletRepository) AdjustBalances(ctx context.Context, userID uuid.UUID, balanceDelta, availableBalanceDelta int64) (*models.Wallet, error) {
	ret := _m.Called(ctx, userID, balanceDelta, availableBalanceDelta)
	w, _ := ret.Get(0).(*models.Wallet)
	return w, ret.Error(1)
}

// NewMockWalletRepository creates a new instance of MockWalletRepository and
// registers a cleanup that asserts the expectations.
func NewMockWalletRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockWalletRepository {
	m := &MockWalletRepository{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
