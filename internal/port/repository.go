package port

import (
	"context"

	"github.com/google/uuid"

	"shipstream/internal/domain"
)

// DocumentRepository defines the contract for document persistence.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, docID uuid.UUID) (*domain.Document, error)
	List(ctx context.Context, offset, limit int) ([]domain.Document, int, error)
	UpdateStatus(ctx context.Context, doc *domain.Document) error
	Delete(ctx context.Context, docID uuid.UUID) error
}

// ShipmentRepository defines the contract for shipment bundle persistence.
// Bundles are always keyed by their source document.
type ShipmentRepository interface {
	CreateBatch(ctx context.Context, bundles []domain.ShipmentBundle) error
	GetByID(ctx context.Context, shipmentID uuid.UUID) (*domain.ShipmentBundle, error)
	ListByDocument(ctx context.Context, docID uuid.UUID, needsReview *bool, offset, limit int) ([]domain.ShipmentBundle, int, error)
	Update(ctx context.Context, bundle *domain.ShipmentBundle) error
	DeleteByDocument(ctx context.Context, docID uuid.UUID) error
}
