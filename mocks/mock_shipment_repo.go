package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"shipstream/internal/domain"
)

// MockShipmentRepo is a mock implementation of port.ShipmentRepository.
type MockShipmentRepo struct {
	mock.Mock
}

func (m *MockShipmentRepo) CreateBatch(ctx context.Context, bundles []domain.ShipmentBundle) error {
	args := m.Called(ctx, bundles)
	return args.Error(0)
}

func (m *MockShipmentRepo) GetByID(ctx context.Context, shipmentID uuid.UUID) (*domain.ShipmentBundle, error) {
	args := m.Called(ctx, shipmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ShipmentBundle), args.Error(1)
}

func (m *MockShipmentRepo) ListByDocument(ctx context.Context, docID uuid.UUID, needsReview *bool, offset, limit int) ([]domain.ShipmentBundle, int, error) {
	args := m.Called(ctx, docID, needsReview, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.ShipmentBundle), args.Int(1), args.Error(2)
}

func (m *MockShipmentRepo) Update(ctx context.Context, bundle *domain.ShipmentBundle) error {
	args := m.Called(ctx, bundle)
	return args.Error(0)
}

func (m *MockShipmentRepo) DeleteByDocument(ctx context.Context, docID uuid.UUID) error {
	args := m.Called(ctx, docID)
	return args.Error(0)
}
