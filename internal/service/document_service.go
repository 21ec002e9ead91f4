package service

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/google/uuid"

	"shipstream/internal/config"
	"shipstream/internal/csvexport"
	"shipstream/internal/domain"
	"shipstream/internal/port"
)

// DocumentService defines the document management contract.
type DocumentService interface {
	GetByID(ctx context.Context, docID uuid.UUID) (*domain.Document, error)
	List(ctx context.Context, offset, limit int) ([]domain.Document, int, error)
	Delete(ctx context.Context, docID uuid.UUID) error
	ExportCSV(ctx context.Context, docID uuid.UUID, w io.Writer) (string, error)
}

type documentService struct {
	docRepo  port.DocumentRepository
	shipRepo port.ShipmentRepository
	storage  port.ObjectStorage // nil when archival is disabled
	s3Cfg    config.S3Config
}

// NewDocumentService creates a new DocumentService implementation.
func NewDocumentService(
	docRepo port.DocumentRepository,
	shipRepo port.ShipmentRepository,
	storage port.ObjectStorage,
	s3Cfg config.S3Config,
) DocumentService {
	return &documentService{
		docRepo:  docRepo,
		shipRepo: shipRepo,
		storage:  storage,
		s3Cfg:    s3Cfg,
	}
}

func (s *documentService) GetByID(ctx context.Context, docID uuid.UUID) (*domain.Document, error) {
	return s.docRepo.GetByID(ctx, docID)
}

func (s *documentService) List(ctx context.Context, offset, limit int) ([]domain.Document, int, error) {
	return s.docRepo.List(ctx, offset, limit)
}

// Delete removes a document, its shipments, and (best effort) its archived
// upload.
func (s *documentService) Delete(ctx context.Context, docID uuid.UUID) error {
	doc, err := s.docRepo.GetByID(ctx, docID)
	if err != nil {
		return err
	}

	if err := s.shipRepo.DeleteByDocument(ctx, docID); err != nil {
		return fmt.Errorf("documentService.Delete shipments: %w", err)
	}
	if err := s.docRepo.Delete(ctx, docID); err != nil {
		return err
	}

	if s.storage != nil && s.s3Cfg.Enabled {
		if err := s.storage.Delete(ctx, s.s3Cfg.Bucket, uploadKey(doc.ID, doc.FileName)); err != nil {
			log.Printf("documentService.Delete: removing archived upload for %s: %v", docID, err)
		}
	}
	return nil
}

// ExportCSV streams every shipment of a document as CSV, BOM-prefixed for
// Excel. It returns the suggested download filename.
func (s *documentService) ExportCSV(ctx context.Context, docID uuid.UUID, w io.Writer) (string, error) {
	doc, err := s.docRepo.GetByID(ctx, docID)
	if err != nil {
		return "", err
	}

	const exportBatch = 500
	if _, err := w.Write(csvexport.BOM); err != nil {
		return "", fmt.Errorf("documentService.ExportCSV: %w", err)
	}

	cw := csvexport.NewWriter(w)
	if err := cw.WriteHeader(); err != nil {
		return "", fmt.Errorf("documentService.ExportCSV header: %w", err)
	}

	for offset := 0; ; offset += exportBatch {
		bundles, total, err := s.shipRepo.ListByDocument(ctx, docID, nil, offset, exportBatch)
		if err != nil {
			return "", fmt.Errorf("documentService.ExportCSV list: %w", err)
		}
		if err := cw.WriteShipments(bundles); err != nil {
			return "", fmt.Errorf("documentService.ExportCSV rows: %w", err)
		}
		if offset+len(bundles) >= total || len(bundles) == 0 {
			break
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return "", fmt.Errorf("documentService.ExportCSV flush: %w", err)
	}
	return csvexport.BuildFilename(doc.FileName), nil
}
