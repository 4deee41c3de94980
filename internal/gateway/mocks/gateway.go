package mocks

import (
	"context"

	"github.com/benx421/lzar-wallet/internal/gateway"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockGateway is a mock type for the Gateway type
type MockGateway struct {
	mock.Mock
}

func (_m *MockGateway) Submit(ctx context.Context, kind gateway.OperationKind, payload gateway.Payload, reference uuid.UUID) (*gateway.Outcome, error) {
	ret := _m.Called(ctx, kind, payload, reference)
	outcome, _ := ret.Get(0).(*gateway.Outcome)
	return outcome, ret.Error(1)
}

func (_m *MockGateway) FetchBalance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	ret := _m.Called(ctx, userID)
	balance, _ := ret.Get(0).(decimal.Decimal)
	return balance, ret.Error(1)
}

// NewMockGateway creates a new instance of MockGateway and registers a cleanup that
// asserts the expectations.
func NewMockGateway(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockGateway {
	m := &MockGateway{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
