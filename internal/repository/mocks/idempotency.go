package mocks

import (
	"context"

	"github.com/benx421/lzar-wallet/internal/models"
	"github.com/stretchr/testify/mock"
)

// MockIdempotencyRepository is a mock type for the IdempotencyRepository type
type MockIdempotencyRepository struct {
	mock.Mock
}

func (_m *MockIdempotencyRepository) Reserve(ctx context.Context, key, requestPath string) error {
	ret := _m.Called(ctx, key, requestPath)
	return ret.Error(0)
}

func (_m *MockIdempotencyRepository) Get(ctx context.Context, key, requestPath string) (*models.IdempotencyKey, error) {
	ret := _m.Called(ctx, key, requestPath)
	k, _ := ret.Get(0).(*models.IdempotencyKey)
	return k, ret.Error(1)
}

func (_m *MockIdempotencyRepository) Complete(ctx context.Context, idemKey *models.IdempotencyKey) error {
	ret := _m.Called(ctx, idemKey)
	return ret.Error(0)
}

func (_m *MockIdempotencyRepository) Release(ctx context.Context, key, requestPath string) error {
	ret := _m.Called(ctx, key, requestPath)
	return ret.Error(0)
}

// NewMockIdempotencyRepository creates a new instance of MockIdempotencyRepository
// and registers a cleanup that asserts the expectations.
func NewMockIdempotencyRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockIdempotencyRepository {
	m := &MockIdempotencyRepository{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
