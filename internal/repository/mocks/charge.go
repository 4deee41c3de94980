package mocks

import (
	"context"
	"time"

	"github.com/benx421/lzar-wallet/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockChargeRepository is a mock type for the ChargeRepository type
type MockChargeRepository struct {
	mock.Mock
}

func (_m *MockChargeRepository) Create(ctx context.Context, charge *models.Charge) error {
	ret := _m.Called(ctx, charge)
	return ret.Error(0)
}

func (_m *MockChargeRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Charge, error) {
	ret := _m.Called(ctx, id)
	c, _ := ret.Get(0).(*models.Charge)
	return c, ret.Error(1)
}

func (_m *MockChargeRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Charge, error) {
	ret := _m.Called(ctx, id)
	c, _ := ret.Get(0).(*models.Charge)
	return c, ret.Error(1)
}

func (_m *MockChargeRepository) Transition(ctx context.Context, charge *models.Charge, from models.Status) error {
	ret := _m.Called(ctx, charge, from)
	return ret.Error(0)
}

func (_m *MockChargeRepository) ExpireDue(ctx context.Context, now time.Time, limit int) ([]models.Charge, error) {
	ret := _m.Called(ctx, now, limit)
	charges, _ := ret.Get(0).([]models.Charge)
	return charges, ret.Error(1)
}

// NewMockChargeRepository creates a new instance of MockChargeRepository and
// registers a cleanup that asserts the expectations.
func NewMockChargeRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockChargeRepository {
	m := &MockChargeRepository{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
