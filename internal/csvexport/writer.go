package csvexport

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"shipstream/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns defines the CSV header row (25 columns).
var columns = []string{
	"Load Number",
	"Order Number",
	"PO Number",
	"PRO Number",
	"BOL Number",
	"Carrier",
	"Ship To Customer",
	"Equipment Type",
	"Total Weight",
	"Rate",
	"Promised Ship Date",
	"Requested Delivery Date",
	"Pickup Date",
	"Delivery Date",
	"Origin City",
	"Origin State",
	"Origin Zip",
	"Destination City",
	"Destination State",
	"Destination Zip",
	"Item Count",
	"Special Instructions",
	"Needs Review",
	"Source Sheet",
	"Source Row",
}

// Writer wraps csv.Writer for exporting shipments as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the 25-column header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteShipments converts a batch of shipment bundles to CSV rows and writes them.
func (w *Writer) WriteShipments(bundles []domain.ShipmentBundle) error {
	for i := range bundles {
		row := shipmentToRow(&bundles[i])
		if err := w.csv.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

func shipmentToRow(b *domain.ShipmentBundle) []string {
	row := make([]string, len(columns))

	row[0] = b.LoadNumber
	row[1] = b.OrderNumber
	row[2] = b.PONumber
	row[3] = b.ProNumber
	row[4] = b.BOLNumber
	row[5] = b.Carrier
	row[6] = b.ShipToCustomer
	row[7] = b.EquipmentType
	row[8] = formatWeight(b.TotalWeight)
	row[9] = formatMoney(b.Rate)
	row[10] = formatDate(b.PromisedShipDate)
	row[11] = formatDate(b.RequestedDeliveryDate)
	row[12] = formatDate(b.PickupDate)
	row[13] = formatDate(b.DeliveryDate)
	row[14] = b.Origin.City
	row[15] = b.Origin.State
	row[16] = b.Origin.Zip
	row[17] = b.Destination.City
	row[18] = b.Destination.State
	row[19] = b.Destination.Zip
	row[20] = strconv.Itoa(len(b.Items))
	row[21] = b.SpecialInstructions
	row[22] = formatBool(b.Metadata.NeedsReview)
	row[23] = b.Source.SheetName
	row[24] = strconv.Itoa(b.Source.RowIndex)

	return row
}

func formatMoney(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatWeight(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatBool(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a document name for use in Content-Disposition.
// Replaces non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns a sanitized filename for Content-Disposition header.
// Format: {sanitized_document_name}_{YYYY-MM-DD}.csv
func BuildFilename(documentName string) string {
	sanitized := SanitizeFilename(documentName)
	date := time.Now().Format("2006-01-02")
	return fmt.Sprintf("%s_%s.csv", sanitized, date)
}
