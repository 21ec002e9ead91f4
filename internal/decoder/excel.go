package decoder

import (
	"bytes"
	"fmt"
	"log"

	"github.com/xuri/excelize/v2"

	"shipstream/internal/port"
)

// ExcelDecoder implements port.SheetDecoder for xlsx workbooks.
type ExcelDecoder struct{}

// NewExcelDecoder creates an xlsx decoder.
func NewExcelDecoder() *ExcelDecoder {
	return &ExcelDecoder{}
}

// Decode opens a workbook from raw bytes and returns every sheet in workbook
// order. Cells are read raw so date cells keep their numeric serials.
func (d *ExcelDecoder) Decode(fileBytes []byte) ([]port.Sheet, error) {
	f, err := excelize.OpenReader(bytes.NewReader(fileBytes))
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			log.Printf("decoder.ExcelDecoder: closing workbook: %v", cerr)
		}
	}()

	names := f.GetSheetList()
	sheets := make([]port.Sheet, 0, len(names))
	for _, name := range names {
		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("reading sheet %q: %w", name, err)
		}
		sheets = append(sheets, port.Sheet{Name: name, Rows: rows})
	}
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook contains no sheets")
	}
	return sheets, nil
}
