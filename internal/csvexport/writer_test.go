package csvexport_test

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shipstream/internal/csvexport"
	"shipstream/internal/domain"
)

func exportBundle() domain.ShipmentBundle {
	ship := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)
	b := domain.ShipmentBundle{
		ID:             uuid.New(),
		LoadNumber:     "L-1001",
		OrderNumber:    "SO-445",
		Carrier:        "Acme Trucking",
		ShipToCustomer: "Beta Stores",
		TotalWeight:    1250.5,
		Rate:           450,
		PromisedShipDate: &ship,
		Destination:    domain.Address{City: "Columbus", State: "OH", Zip: "43004"},
		Items: []domain.ShipmentItem{
			{Description: "Widgets", Quantity: 10},
			{Description: "Gadgets", Quantity: 4},
		},
		Metadata: domain.NewBundleMetadata(uuid.New(), "1.3.0"),
		Source:   domain.SourceInfo{FileName: "loads.xlsx", SheetName: "Loads", RowIndex: 3},
	}
	b.Metadata.NeedsReview = true
	return b
}

func exportToRecords(t *testing.T, bundles []domain.ShipmentBundle) [][]string {
	t.Helper()
	var buf bytes.Buffer
	w := csvexport.NewWriter(&buf)
	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.WriteShipments(bundles))
	w.Flush()
	require.NoError(t, w.Error())

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	return records
}

func TestWriter_HeaderShape(t *testing.T) {
	records := exportToRecords(t, nil)
	require.Len(t, records, 1)
	header := records[0]
	assert.Len(t, header, 25)
	assert.Equal(t, "Load Number", header[0])
	assert.Equal(t, "Source Row", header[24])
}

func TestWriter_ShipmentRow(t *testing.T) {
	records := exportToRecords(t, []domain.ShipmentBundle{exportBundle()})
	require.Len(t, records, 2)

	row := records[1]
	assert.Equal(t, "L-1001", row[0])
	assert.Equal(t, "SO-445", row[1])
	assert.Equal(t, "Acme Trucking", row[5])
	assert.Equal(t, "Beta Stores", row[6])
	assert.Equal(t, "1250.5", row[8])
	assert.Equal(t, "450.00", row[9])
	assert.Equal(t, "2024-03-05", row[10])
	assert.Equal(t, "Columbus", row[17])
	assert.Equal(t, "OH", row[18])
	assert.Equal(t, "2", row[20])
	assert.Equal(t, "Yes", row[22])
	assert.Equal(t, "Loads", row[23])
	assert.Equal(t, "3", row[24])
}

func TestWriter_ZeroValuesLeftBlank(t *testing.T) {
	b := domain.ShipmentBundle{
		LoadNumber: "L-2",
		Metadata:   domain.NewBundleMetadata(uuid.New(), "1.3.0"),
	}
	records := exportToRecords(t, []domain.ShipmentBundle{b})
	row := records[1]

	assert.Empty(t, row[8], "zero weight")
	assert.Empty(t, row[9], "zero rate")
	assert.Empty(t, row[10], "nil ship date")
	assert.Equal(t, "0", row[20], "item count")
	assert.Equal(t, "No", row[22])
}

func TestSanitizeFilename(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Q1 Loads (final).xlsx", "Q1_Loads_final_xlsx"},
		{"already-clean_name", "already-clean_name"},
		{"___trim___", "trim"},
		{"weird///***chars", "weird_chars"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, csvexport.SanitizeFilename(tc.in), tc.in)
	}
}

func TestSanitizeFilename_Truncates(t *testing.T) {
	long := bytes.Repeat([]byte{'a'}, 150)
	assert.Len(t, csvexport.SanitizeFilename(string(long)), 100)
}

func TestBuildFilename(t *testing.T) {
	got := csvexport.BuildFilename("March Loads.xlsx")
	want := fmt.Sprintf("March_Loads_xlsx_%s.csv", time.Now().Format("2006-01-02"))
	assert.Equal(t, want, got)
}
