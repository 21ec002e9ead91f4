package service

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"shipstream/internal/config"
	"shipstream/internal/domain"
	"shipstream/internal/extract"
	"shipstream/internal/port"
	"shipstream/internal/score"
)

// IngestInput is the DTO for ingesting one document.
type IngestInput struct {
	DocumentType        string
	FileName            string
	FileBytes           []byte
	HasHeaderRow        bool
	SheetIndex          *int
	AIMappingEnabled    bool
	ConfidenceThreshold float64 // 0 uses the configured review threshold
}

// IngestResult is the definite outcome of one ingest request. Status is always
// a terminal document status; Message is set only on failure.
type IngestResult struct {
	Status        domain.DocumentStatus `json:"status"`
	DocumentID    uuid.UUID             `json:"document_id"`
	ShipmentCount int                   `json:"shipment_count"`
	Message       string                `json:"message,omitempty"`
}

// IngestService runs the document processing pipeline.
type IngestService interface {
	Ingest(ctx context.Context, input *IngestInput) (*IngestResult, error)
}

type ingestService struct {
	docRepo   port.DocumentRepository
	shipRepo  port.ShipmentRepository
	storage   port.ObjectStorage // nil when archival is disabled
	decoders  map[domain.FileType]port.SheetDecoder
	walker    *extract.Walker
	ocr       *extract.OCRExtractor
	scoring   config.ScoringConfig
	s3Cfg     config.S3Config
	ingestCfg config.IngestConfig
	aiEnabled bool
}

// NewIngestService creates the pipeline orchestrator. storage may be nil; ocr
// may be nil when no vision-capable provider is configured.
func NewIngestService(
	docRepo port.DocumentRepository,
	shipRepo port.ShipmentRepository,
	storage port.ObjectStorage,
	decoders map[domain.FileType]port.SheetDecoder,
	walker *extract.Walker,
	ocr *extract.OCRExtractor,
	cfg *config.Config,
) IngestService {
	return &ingestService{
		docRepo:   docRepo,
		shipRepo:  shipRepo,
		storage:   storage,
		decoders:  decoders,
		walker:    walker,
		ocr:       ocr,
		scoring:   cfg.Scoring,
		s3Cfg:     cfg.S3,
		ingestCfg: cfg.Ingest,
		aiEnabled: cfg.Mapping.AIEnabled,
	}
}

// Ingest runs the full pipeline for one document. Input errors return before
// any document record exists. Once the record exists, the deferred finalizer
// writes the terminal status exactly once, whether the pipeline succeeds,
// fails with a caught error, or panics.
func (s *ingestService) Ingest(ctx context.Context, input *IngestInput) (res *IngestResult, err error) {
	fileType, inputErr := s.validateInput(input)
	if inputErr != nil {
		return nil, inputErr
	}

	doc := &domain.Document{
		ID:           uuid.New(),
		FileName:     input.FileName,
		FileType:     fileType,
		DocumentType: input.DocumentType,
		Status:       domain.DocumentStatusUploaded,
	}
	if err := s.docRepo.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("ingestService.Ingest create: %w", err)
	}

	// The finalizer is installed before any further status write: once the
	// record exists, it always reaches a terminal or explained state.
	var (
		bundles     []domain.ShipmentBundle
		pipelineErr error
	)
	defer func() {
		if r := recover(); r != nil {
			pipelineErr = fmt.Errorf("pipeline panic: %v", r)
		}
		s.finalize(ctx, doc, len(bundles), pipelineErr)
		if pipelineErr != nil {
			res = &IngestResult{
				Status:     domain.DocumentStatusError,
				DocumentID: doc.ID,
				Message:    s.truncateError(pipelineErr),
			}
			err = nil
		}
	}()

	if pipelineErr = s.markProcessing(ctx, doc); pipelineErr != nil {
		return nil, nil
	}

	s.archiveUpload(ctx, doc, input)

	bundles, pipelineErr = s.extractBundles(ctx, doc, input, fileType)
	if pipelineErr != nil {
		bundles = nil
		return nil, nil // finalizer builds the failure result
	}

	if allRowsFailed(bundles) {
		pipelineErr = fmt.Errorf("%w: %d rows, none extractable", domain.ErrAllRowsFailed, len(bundles))
		bundles = nil
		return nil, nil
	}

	s.scoreAndValidate(bundles, input.ConfidenceThreshold)

	// Persistence failure is an operational problem; the computed result stands.
	if perr := s.shipRepo.CreateBatch(ctx, bundles); perr != nil {
		log.Printf("ingestService.Ingest: persisting %d bundles for document %s: %v", len(bundles), doc.ID, perr)
	}

	return &IngestResult{
		Status:        domain.DocumentStatusProcessed,
		DocumentID:    doc.ID,
		ShipmentCount: len(bundles),
	}, nil
}

// validateInput rejects unusable uploads before any record is created.
func (s *ingestService) validateInput(input *IngestInput) (domain.FileType, error) {
	if len(input.FileBytes) == 0 {
		return "", domain.ErrEmptyFile
	}
	maxBytes := s.s3Cfg.MaxFileSizeMB * 1024 * 1024
	if maxBytes > 0 && int64(len(input.FileBytes)) > maxBytes {
		return "", fmt.Errorf("%w: %d bytes, limit %d MB", domain.ErrFileTooLarge, len(input.FileBytes), s.s3Cfg.MaxFileSizeMB)
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(input.FileName)), ".")
	fileType, ok := domain.AllowedExtensions[ext]
	if !ok {
		return "", fmt.Errorf("%w: .%s", domain.ErrUnsupportedFileType, ext)
	}
	return fileType, nil
}

// markProcessing advances the document to processing and persists the change.
func (s *ingestService) markProcessing(ctx context.Context, doc *domain.Document) error {
	if err := doc.TransitionTo(domain.DocumentStatusProcessing); err != nil {
		return err
	}
	if err := s.docRepo.UpdateStatus(ctx, doc); err != nil {
		return fmt.Errorf("marking document processing: %w", err)
	}
	return nil
}

// archiveUpload stores the original bytes in object storage. Best effort:
// failures are logged and the pipeline continues.
func (s *ingestService) archiveUpload(ctx context.Context, doc *domain.Document, input *IngestInput) {
	if s.storage == nil || !s.s3Cfg.Enabled {
		return
	}
	contentType := "application/octet-stream"
	if doc.FileType.IsImage() {
		contentType = doc.FileType.ImageContentType()
	}
	_, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.s3Cfg.Bucket,
		Key:         uploadKey(doc.ID, doc.FileName),
		Body:        bytes.NewReader(input.FileBytes),
		ContentType: contentType,
		Size:        int64(len(input.FileBytes)),
	})
	if err != nil {
		log.Printf("ingestService.archiveUpload: archiving document %s: %v", doc.ID, err)
	}
}

func uploadKey(docID uuid.UUID, fileName string) string {
	return fmt.Sprintf("uploads/%s/%s", docID, fileName)
}

func (s *ingestService) extractBundles(ctx context.Context, doc *domain.Document, input *IngestInput, fileType domain.FileType) ([]domain.ShipmentBundle, error) {
	if fileType.IsImage() {
		if s.ocr == nil {
			return nil, fmt.Errorf("image ingestion requires a vision-capable completion provider")
		}
		result, err := s.ocr.Extract(ctx, extract.OCRInput{
			DocumentID:  doc.ID,
			FileName:    doc.FileName,
			ImageBytes:  input.FileBytes,
			ContentType: fileType.ImageContentType(),
		})
		if err != nil {
			return nil, err
		}
		return []domain.ShipmentBundle{result.Bundle}, nil
	}

	dec, ok := s.decoders[fileType]
	if !ok {
		return nil, fmt.Errorf("no decoder registered for file type %s", fileType)
	}
	sheets, err := dec.Decode(input.FileBytes)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", doc.FileName, err)
	}

	return s.walker.Walk(ctx, extract.WalkInput{
		DocumentID:       doc.ID,
		FileName:         doc.FileName,
		Sheets:           sheets,
		HasHeaderRow:     input.HasHeaderRow,
		SheetIndex:       input.SheetIndex,
		AIMappingEnabled: input.AIMappingEnabled && s.aiEnabled,
	})
}

// scoreAndValidate applies the confidence scorer and the hard validation rules
// to every bundle in place.
func (s *ingestService) scoreAndValidate(bundles []domain.ShipmentBundle, reviewThreshold float64) {
	cfg := s.scoring
	if reviewThreshold > 0 {
		cfg.ReviewThreshold = reviewThreshold
	}
	for i := range bundles {
		verdict := score.Calculate(bundles[i], cfg)
		validationErrs := score.Validate(bundles[i])

		bundles[i].Metadata.ProcessingErrors = append(bundles[i].Metadata.ProcessingErrors, validationErrs...)
		bundles[i].Metadata.NeedsReview = bundles[i].Metadata.NeedsReview ||
			verdict.NeedsReview || len(validationErrs) > 0
	}
}

// allRowsFailed reports whether every extracted bundle carries extraction
// errors, the internal sentinel condition for an ERROR terminal state. It is
// checked before validation so hard-rule violations on otherwise clean rows
// never trip it.
func allRowsFailed(bundles []domain.ShipmentBundle) bool {
	if len(bundles) == 0 {
		return true
	}
	for i := range bundles {
		if len(bundles[i].Metadata.ProcessingErrors) == 0 {
			return false
		}
	}
	return true
}

// finalize writes the terminal document state. It runs exactly once per
// pipeline, from the deferred block in Ingest.
func (s *ingestService) finalize(ctx context.Context, doc *domain.Document, shipmentCount int, pipelineErr error) {
	target := domain.DocumentStatusProcessed
	if pipelineErr != nil {
		target = domain.DocumentStatusError
	}
	if err := doc.TransitionTo(target); err != nil {
		log.Printf("ingestService.finalize: document %s: %v", doc.ID, err)
		return
	}
	if pipelineErr != nil {
		doc.ErrorMessage = s.truncateError(pipelineErr)
	} else {
		now := nowUTC()
		doc.ShipmentCount = shipmentCount
		doc.ParsedAt = &now
	}
	if err := s.docRepo.UpdateStatus(ctx, doc); err != nil {
		log.Printf("ingestService.finalize: writing terminal status %s for document %s: %v", doc.Status, doc.ID, err)
	}
}

func nowUTC() time.Time {
	return time.Now().UTC()
}

func (s *ingestService) truncateError(err error) string {
	msg := err.Error()
	max := s.ingestCfg.MaxErrorLen
	if max <= 0 {
		max = 500
	}
	if len(msg) > max {
		msg = msg[:max]
	}
	return msg
}
