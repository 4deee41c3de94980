package mocks

import (
	"context"

	"github.com/benx421/lzar-wallet/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockTransactionRepository is a mock type for the TransactionRepository type
type MockTransactionRepository struct {
	mock.Mock
}

func (_m *MockTransactionRepository) Create(ctx context.Context, txn *models.Transaction) error {
	ret := _m.Called(ctx, txn)
	return ret.Error(0)
}

func (_m *MockTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	ret := _m.Called(ctx, id)
	t, _ := ret.Get(0).(*models.Transaction)
	return t, ret.Error(1)
}

func (_m *MockTransactionRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	ret := _m.Called(ctx, id)
	t, _ := ret.Get(0).(*models.Transaction)
	return t, ret.Error(1)
}

func (_m *MockTransactionRepository) Transition(ctx context.Context, txn *models.Transaction, from models.Status) error {
	ret := _m.Called(ctx, txn, from)
	return ret.Error(0)
}

func (_m *MockTransactionRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Transaction, error) {
	ret := _m.Called(ctx, userID, limit)
	txns, _ := ret.Get(0).([]models.Transaction)
	return txns, ret.Error(1)
}

// NewMockTransactionRepository creates a new instance of MockTransactionRepository
// and registers a cleanup that asserts the expectations.
func NewMockTransactionRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockTransactionRepository {
	m := &MockTransactionRepository{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
