package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"shipstream/internal/config"
	"shipstream/internal/domain"
	"shipstream/internal/extract"
	"shipstream/internal/mapper"
	"shipstream/internal/normalize"
	"shipstream/internal/port"
	"shipstream/internal/service"
	"shipstream/mocks"
)

func testConfig() *config.Config {
	return &config.Config{
		S3: config.S3Config{Enabled: false, MaxFileSizeMB: 25},
		Mapping: config.MappingConfig{
			HeuristicThreshold: 0.8,
			AIEnabled:          false,
		},
		Scoring: config.ScoringConfig{
			ConfidenceWeight:   0.7,
			CompletenessWeight: 0.3,
			CriticalPenalty:    0.2,
			AIConfidenceCutoff: 0.7,
			AIMappingDiscount:  0.9,
			ReviewThreshold:    0.75,
			MinConfidence:      0.1,
			OptionalCredit:     0.5,
		},
		Ingest: config.IngestConfig{DateOrder: "MDY", MaxErrorLen: 500},
	}
}

type ingestFixture struct {
	docRepo  *mocks.MockDocumentRepo
	shipRepo *mocks.MockShipmentRepo
	decoder  *mocks.MockSheetDecoder
	svc      service.IngestService

	statusWrites []domain.DocumentStatus
	finalDoc     *domain.Document
}

func newIngestFixture(t *testing.T) *ingestFixture {
	t.Helper()
	f := &ingestFixture{
		docRepo:  new(mocks.MockDocumentRepo),
		shipRepo: new(mocks.MockShipmentRepo),
		decoder:  new(mocks.MockSheetDecoder),
	}

	f.docRepo.On("Create", mock.Anything, mock.Anything).Return(nil).Maybe()
	f.docRepo.On("UpdateStatus", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		doc := args.Get(1).(*domain.Document)
		f.statusWrites = append(f.statusWrites, doc.Status)
		snapshot := *doc
		f.finalDoc = &snapshot
	}).Return(nil).Maybe()

	walker := extract.NewWalker(mapper.NewHeuristicMapper(0.8), nil, normalize.OrderMonthFirst)
	decoders := map[domain.FileType]port.SheetDecoder{
		domain.FileTypeXLSX: f.decoder,
		domain.FileTypeCSV:  f.decoder,
	}
	f.svc = service.NewIngestService(f.docRepo, f.shipRepo, nil, decoders, walker, nil, testConfig())
	return f
}

func threeRowSheet() []port.Sheet {
	return []port.Sheet{{
		Name: "Loads",
		Rows: [][]string{
			{"Load Number", "Order Number", "Consignee", "Ship Date", "Total Weight", "Description", "Qty"},
			{"L-1", "SO-1", "Acme", "45292", "1000", "Widgets", "5"},
			{"L-2", "SO-2", "Beta", "45293", "2000", "Gadgets", "3"},
			{"L-3", "SO-3", "Gamma", "45294", "3000", "Gizmos", "9"},
		},
	}}
}

func TestIngest_UnsupportedFileType(t *testing.T) {
	f := newIngestFixture(t)

	_, err := f.svc.Ingest(context.Background(), &service.IngestInput{
		FileName:  "loads.pdf",
		FileBytes: []byte("data"),
	})

	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)
	// No document record is created for input errors.
	f.docRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestIngest_EmptyFile(t *testing.T) {
	f := newIngestFixture(t)

	_, err := f.svc.Ingest(context.Background(), &service.IngestInput{
		FileName:  "loads.xlsx",
		FileBytes: nil,
	})

	assert.ErrorIs(t, err, domain.ErrEmptyFile)
	f.docRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestIngest_WellFormedSpreadsheetProcessed(t *testing.T) {
	f := newIngestFixture(t)
	f.decoder.On("Decode", mock.Anything).Return(threeRowSheet(), nil).Once()
	f.shipRepo.On("CreateBatch", mock.Anything, mock.MatchedBy(func(bundles []domain.ShipmentBundle) bool {
		return len(bundles) == 3
	})).Return(nil).Once()

	result, err := f.svc.Ingest(context.Background(), &service.IngestInput{
		DocumentType: "load_sheet",
		FileName:     "loads.xlsx",
		FileBytes:    []byte("xlsx bytes"),
		HasHeaderRow: true,
	})

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, domain.DocumentStatusProcessed, result.Status)
	assert.Equal(t, 3, result.ShipmentCount)
	assert.Empty(t, result.Message)

	// uploaded -> processing -> processed, terminal write exactly once.
	assert.Equal(t, []domain.DocumentStatus{
		domain.DocumentStatusProcessing,
		domain.DocumentStatusProcessed,
	}, f.statusWrites)
	require.NotNil(t, f.finalDoc)
	assert.Equal(t, 3, f.finalDoc.ShipmentCount)
	assert.NotNil(t, f.finalDoc.ParsedAt)
	f.shipRepo.AssertExpectations(t)
}

func TestIngest_CorruptSpreadsheetEndsInError(t *testing.T) {
	f := newIngestFixture(t)
	f.decoder.On("Decode", mock.Anything).Return(nil, errors.New("zip: not a valid zip file")).Once()

	result, err := f.svc.Ingest(context.Background(), &service.IngestInput{
		FileName:     "broken.xlsx",
		FileBytes:    []byte("garbage"),
		HasHeaderRow: true,
	})

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, domain.DocumentStatusError, result.Status)
	assert.NotEmpty(t, result.Message)

	require.NotNil(t, f.finalDoc)
	assert.Equal(t, domain.DocumentStatusError, f.finalDoc.Status)
	assert.Contains(t, f.finalDoc.ErrorMessage, "not a valid zip file")
	f.shipRepo.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything)
}

func TestIngest_RowFailureDoesNotAbortDocument(t *testing.T) {
	sheets := []port.Sheet{{
		Name: "Loads",
		Rows: [][]string{
			{"Load Number", "Total Weight"},
			{"L-1", "1000"},
			{"L-2", "junk weight"},
			{"L-3", "3000"},
		},
	}}
	f := newIngestFixture(t)
	f.decoder.On("Decode", mock.Anything).Return(sheets, nil).Once()

	var persisted []domain.ShipmentBundle
	f.shipRepo.On("CreateBatch", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		persisted = args.Get(1).([]domain.ShipmentBundle)
	}).Return(nil).Once()

	result, err := f.svc.Ingest(context.Background(), &service.IngestInput{
		FileName:     "loads.xlsx",
		FileBytes:    []byte("bytes"),
		HasHeaderRow: true,
	})

	require.NoError(t, err)
	assert.Equal(t, domain.DocumentStatusProcessed, result.Status)
	assert.Equal(t, 3, result.ShipmentCount)

	require.Len(t, persisted, 3)
	assert.NotEmpty(t, persisted[1].Metadata.ProcessingErrors)
	assert.True(t, persisted[1].Metadata.NeedsReview)
}

func TestIngest_EveryRowFailedIsError(t *testing.T) {
	sheets := []port.Sheet{{
		Name: "Loads",
		Rows: [][]string{
			{"Load Number", "Total Weight"},
			{"L-1", "bad"},
			{"L-2", "worse"},
		},
	}}
	f := newIngestFixture(t)
	f.decoder.On("Decode", mock.Anything).Return(sheets, nil).Once()

	result, err := f.svc.Ingest(context.Background(), &service.IngestInput{
		FileName:     "loads.xlsx",
		FileBytes:    []byte("bytes"),
		HasHeaderRow: true,
	})

	require.NoError(t, err)
	assert.Equal(t, domain.DocumentStatusError, result.Status)
	assert.NotEmpty(t, result.Message)
	f.shipRepo.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything)
}

func TestIngest_MarkProcessingFailureEndsInError(t *testing.T) {
	docRepo := new(mocks.MockDocumentRepo)
	shipRepo := new(mocks.MockShipmentRepo)
	dec := new(mocks.MockSheetDecoder)

	docRepo.On("Create", mock.Anything, mock.Anything).Return(nil).Once()

	var statusWrites []domain.DocumentStatus
	var finalDoc domain.Document
	record := func(args mock.Arguments) {
		doc := args.Get(1).(*domain.Document)
		statusWrites = append(statusWrites, doc.Status)
		finalDoc = *doc
	}
	// The processing write fails; the terminal write succeeds.
	docRepo.On("UpdateStatus", mock.Anything, mock.Anything).Run(record).
		Return(errors.New("pq: connection reset")).Once()
	docRepo.On("UpdateStatus", mock.Anything, mock.Anything).Run(record).
		Return(nil).Once()

	walker := extract.NewWalker(mapper.NewHeuristicMapper(0.8), nil, normalize.OrderMonthFirst)
	decoders := map[domain.FileType]port.SheetDecoder{domain.FileTypeXLSX: dec}
	svc := service.NewIngestService(docRepo, shipRepo, nil, decoders, walker, nil, testConfig())

	result, err := svc.Ingest(context.Background(), &service.IngestInput{
		FileName:     "loads.xlsx",
		FileBytes:    []byte("bytes"),
		HasHeaderRow: true,
	})

	// The record still reaches an explained terminal state.
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, domain.DocumentStatusError, result.Status)
	assert.NotEmpty(t, result.Message)

	assert.Equal(t, []domain.DocumentStatus{
		domain.DocumentStatusProcessing,
		domain.DocumentStatusError,
	}, statusWrites)
	assert.Contains(t, finalDoc.ErrorMessage, "marking document processing")
	dec.AssertNotCalled(t, "Decode", mock.Anything)
}

func TestIngest_PersistenceFailureDoesNotChangeOutcome(t *testing.T) {
	f := newIngestFixture(t)
	f.decoder.On("Decode", mock.Anything).Return(threeRowSheet(), nil).Once()
	f.shipRepo.On("CreateBatch", mock.Anything, mock.Anything).Return(errors.New("pq: connection reset")).Once()

	result, err := f.svc.Ingest(context.Background(), &service.IngestInput{
		FileName:     "loads.xlsx",
		FileBytes:    []byte("bytes"),
		HasHeaderRow: true,
	})

	require.NoError(t, err)
	assert.Equal(t, domain.DocumentStatusProcessed, result.Status)
	assert.Equal(t, 3, result.ShipmentCount)
}

func TestIngest_FileTooLarge(t *testing.T) {
	f := newIngestFixture(t)

	big := make([]byte, 26*1024*1024)
	_, err := f.svc.Ingest(context.Background(), &service.IngestInput{
		FileName:  "huge.xlsx",
		FileBytes: big,
	})

	assert.ErrorIs(t, err, domain.ErrFileTooLarge)
}
