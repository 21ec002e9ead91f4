package extract_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shipstream/internal/domain"
	"shipstream/internal/extract"
	"shipstream/internal/mapper"
	"shipstream/internal/normalize"
	"shipstream/internal/port"
)

// stubResolver is a canned AIFieldResolver for walker tests.
type stubResolver struct {
	mappings map[string]domain.FieldMapping
	err      error
	calls    int
}

func (s *stubResolver) MapField(_ context.Context, header string) (domain.FieldMapping, error) {
	s.calls++
	if s.err != nil {
		return domain.FieldMapping{}, s.err
	}
	if m, ok := s.mappings[header]; ok {
		return m, nil
	}
	return domain.FieldMapping{OriginalField: header, CanonicalField: "unknown", Source: domain.MappingSourceAI}, nil
}

func newWalker(ai extract.AIFieldResolver) *extract.Walker {
	return extract.NewWalker(mapper.NewHeuristicMapper(0.8), ai, normalize.OrderMonthFirst)
}

func walkInput(sheets []port.Sheet) extract.WalkInput {
	return extract.WalkInput{
		DocumentID:       uuid.New(),
		FileName:         "loads.xlsx",
		Sheets:           sheets,
		HasHeaderRow:     true,
		AIMappingEnabled: true,
	}
}

func loadSheet() port.Sheet {
	return port.Sheet{
		Name: "Loads",
		Rows: [][]string{
			{"Load Number", "Consignee", "Ship Date", "Total Weight", "Warehouse Zone"},
			{"L-1001", "Acme Retail", "45292", "1,250 lbs", "Z-4"},
			{"L-1002", "Beta Stores", "1/2/2024", "980", "Z-9"},
			{"L-1003", "Gamma Mart", "", "2200", ""},
		},
	}
}

func TestWalker_Walk_ExtractsEveryRow(t *testing.T) {
	w := newWalker(nil)
	in := walkInput([]port.Sheet{loadSheet()})
	in.AIMappingEnabled = false

	bundles, err := w.Walk(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, bundles, 3)

	first := bundles[0]
	assert.Equal(t, "L-1001", first.LoadNumber)
	assert.Equal(t, "Acme Retail", first.ShipToCustomer)
	assert.Equal(t, 1250.0, first.TotalWeight)
	require.NotNil(t, first.PromisedShipDate)
	assert.Equal(t, "2024-01-01", normalize.Canonical(*first.PromisedShipDate))

	// Original row indices preserved.
	assert.Equal(t, 1, bundles[0].Source.RowIndex)
	assert.Equal(t, 2, bundles[1].Source.RowIndex)
	assert.Equal(t, 3, bundles[2].Source.RowIndex)
	assert.Equal(t, "Loads", first.Source.SheetName)
	assert.Equal(t, "loads.xlsx", first.Source.FileName)

	// Third row has an empty date cell: absent, not guessed.
	assert.Nil(t, bundles[2].PromisedShipDate)
}

func TestWalker_Walk_DateColumnsExtractUnderTheirOwnHeaders(t *testing.T) {
	// Date cells live under the sheet's header names, not the canonical field
	// names, and must still land on the bundle.
	sheet := port.Sheet{
		Name: "Loads",
		Rows: [][]string{
			{"Load Number", "Ship Date", "Pickup Date", "Delivery Date"},
			{"L-1", "45292", "1/3/2024", "2024-01-05"},
		},
	}
	w := newWalker(nil)
	in := walkInput([]port.Sheet{sheet})
	in.AIMappingEnabled = false

	bundles, err := w.Walk(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, bundles, 1)

	b := bundles[0]
	require.NotNil(t, b.PromisedShipDate)
	assert.Equal(t, "2024-01-01", normalize.Canonical(*b.PromisedShipDate))
	require.NotNil(t, b.PickupDate)
	assert.Equal(t, "2024-01-03", normalize.Canonical(*b.PickupDate))
	require.NotNil(t, b.DeliveryDate)
	assert.Equal(t, "2024-01-05", normalize.Canonical(*b.DeliveryDate))
	assert.Empty(t, b.Metadata.ProcessingErrors)
	assert.False(t, b.Metadata.NeedsReview)
}

func TestWalker_Walk_UnmappedHeadersKeptAsCustomDetails(t *testing.T) {
	w := newWalker(nil)
	in := walkInput([]port.Sheet{loadSheet()})
	in.AIMappingEnabled = false

	bundles, err := w.Walk(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, "Z-4", bundles[0].CustomDetails["Warehouse Zone"])
	// Empty cells do not create custom detail entries.
	_, ok := bundles[2].CustomDetails["Warehouse Zone"]
	assert.False(t, ok)
}

func TestWalker_Walk_RowFailureIsIsolated(t *testing.T) {
	sheet := port.Sheet{
		Name: "Loads",
		Rows: [][]string{
			{"Load Number", "Total Weight"},
			{"L-1", "1000"},
			{"L-2", "not a weight"},
			{"L-3", "3000"},
		},
	}
	w := newWalker(nil)
	in := walkInput([]port.Sheet{sheet})
	in.AIMappingEnabled = false

	bundles, err := w.Walk(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, bundles, 3)

	assert.Empty(t, bundles[0].Metadata.ProcessingErrors)
	assert.False(t, bundles[0].Metadata.NeedsReview)

	require.NotEmpty(t, bundles[1].Metadata.ProcessingErrors)
	assert.True(t, bundles[1].Metadata.NeedsReview)
	assert.Equal(t, "L-2", bundles[1].LoadNumber)

	assert.Empty(t, bundles[2].Metadata.ProcessingErrors)
	assert.Equal(t, 3000.0, bundles[2].TotalWeight)
}

func TestWalker_Walk_AIResolvesResidualHeadersOncePerSheet(t *testing.T) {
	ai := &stubResolver{mappings: map[string]domain.FieldMapping{
		"Warehouse Zone": {
			OriginalField:  "Warehouse Zone",
			CanonicalField: domain.FieldSpecialInstructions,
			Confidence:     0.75,
			Source:         domain.MappingSourceAI,
		},
	}}
	w := newWalker(ai)

	bundles, err := w.Walk(context.Background(), walkInput([]port.Sheet{loadSheet()}))
	require.NoError(t, err)

	// One residual header, one AI call regardless of row count.
	assert.Equal(t, 1, ai.calls)
	assert.Equal(t, "Z-4", bundles[0].SpecialInstructions)
	assert.Contains(t, bundles[0].Metadata.AIMappedFields, domain.FieldSpecialInstructions)
}

func TestWalker_Walk_NoAICallsWhenHeuristicCoversEveryHeader(t *testing.T) {
	sheet := port.Sheet{
		Name: "Loads",
		Rows: [][]string{
			{"Load Number", "Consignee", "Total Weight"},
			{"L-1", "Acme", "1000"},
		},
	}
	ai := &stubResolver{}
	w := newWalker(ai)

	_, err := w.Walk(context.Background(), walkInput([]port.Sheet{sheet}))
	require.NoError(t, err)
	assert.Equal(t, 0, ai.calls)
}

func TestWalker_Walk_AIFailureDegradesToUnmapped(t *testing.T) {
	ai := &stubResolver{err: errors.New("provider unavailable")}
	w := newWalker(ai)

	bundles, err := w.Walk(context.Background(), walkInput([]port.Sheet{loadSheet()}))
	require.NoError(t, err)

	// The header falls back to the custom bucket; no rows are lost.
	require.Len(t, bundles, 3)
	assert.Equal(t, "Z-4", bundles[0].CustomDetails["Warehouse Zone"])
	assert.Empty(t, bundles[0].Metadata.AIMappedFields)
}

func TestWalker_Walk_PositionalMappingWithoutHeaderRow(t *testing.T) {
	sheet := port.Sheet{
		Name: "Sheet1",
		Rows: [][]string{
			{"L-500", "SO-77"},
			{"L-501", "SO-78"},
		},
	}
	w := newWalker(nil)
	in := walkInput([]port.Sheet{sheet})
	in.HasHeaderRow = false
	in.AIMappingEnabled = false

	bundles, err := w.Walk(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, bundles, 2)

	// Columns map positionally onto the canonical catalog at reduced confidence.
	assert.Equal(t, "L-500", bundles[0].LoadNumber)
	assert.Equal(t, "SO-77", bundles[0].OrderNumber)
	assert.Equal(t, 0, bundles[0].Source.RowIndex)

	for _, m := range bundles[0].Metadata.FieldMappingsUsed {
		assert.Equal(t, extract.PositionalConfidence, m.Confidence)
	}
}

func TestWalker_Walk_ExplicitSheetSelection(t *testing.T) {
	sheets := []port.Sheet{
		{Name: "Cover", Rows: [][]string{{"nothing", "useful"}, {"x", "y"}}},
		loadSheet(),
	}
	w := newWalker(nil)
	in := walkInput(sheets)
	in.AIMappingEnabled = false
	idx := 1
	in.SheetIndex = &idx

	bundles, err := w.Walk(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, bundles, 3)
	assert.Equal(t, "Loads", bundles[0].Source.SheetName)
}

func TestWalker_Walk_SheetIndexOutOfRange(t *testing.T) {
	w := newWalker(nil)
	in := walkInput([]port.Sheet{loadSheet()})
	idx := 5
	in.SheetIndex = &idx

	_, err := w.Walk(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrSheetOutOfRange)
}

func TestWalker_Walk_NoDataRows(t *testing.T) {
	sheet := port.Sheet{
		Name: "Loads",
		Rows: [][]string{
			{"Load Number", "Total Weight"},
			{"", "   "},
		},
	}
	w := newWalker(nil)
	in := walkInput([]port.Sheet{sheet})
	in.AIMappingEnabled = false

	_, err := w.Walk(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrNoDataExtracted)
}
