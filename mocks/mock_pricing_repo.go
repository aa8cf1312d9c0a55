package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"billsage/internal/domain"
)

// MockPricingRepo is a mock implementation of port.PricingRepository.
type MockPricingRepo struct {
	mock.Mock
}

func (m *MockPricingRepo) LoadAll(ctx context.Context) ([]domain.ReferencePricingRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ReferencePricingRecord), args.Error(1)
}
