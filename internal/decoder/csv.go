package decoder

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"shipstream/internal/port"
)

// utf8BOM is stripped when Excel-exported CSVs carry it.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVDecoder implements port.SheetDecoder for comma-separated files, presented
// as a single pseudo-sheet.
type CSVDecoder struct{}

// NewCSVDecoder creates a CSV decoder.
func NewCSVDecoder() *CSVDecoder {
	return &CSVDecoder{}
}

func (d *CSVDecoder) Decode(fileBytes []byte) ([]port.Sheet, error) {
	fileBytes = bytes.TrimPrefix(fileBytes, utf8BOM)

	r := csv.NewReader(bytes.NewReader(fileBytes))
	r.FieldsPerRecord = -1 // ragged rows are the walker's problem, not a decode error
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("csv file contains no rows")
	}
	return []port.Sheet{{Name: "Sheet1", Rows: rows}}, nil
}
