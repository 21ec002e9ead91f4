package extract

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"shipstream/internal/domain"
	"shipstream/internal/mapper"
	"shipstream/internal/normalize"
	"shipstream/internal/port"
)

// ParserVersion is stamped into every bundle's metadata so downstream consumers
// can tell which extraction logic produced it.
const ParserVersion = "1.3.0"

// PositionalConfidence is assigned to column mappings when the sheet has no
// header row and columns are matched by position alone.
const PositionalConfidence = 0.5

// AIFieldResolver resolves a single raw header through the AI fallback path.
type AIFieldResolver interface {
	MapField(ctx context.Context, header string) (domain.FieldMapping, error)
}

// Walker turns decoded sheets into shipment bundles. Header resolution happens
// once per sheet; rows are then extracted independently so one bad row never
// aborts the rest.
type Walker struct {
	heuristic *mapper.HeuristicMapper
	ai        AIFieldResolver
	dateOrder normalize.DateOrder
}

// NewWalker creates a sheet walker. ai may be nil when AI mapping is disabled
// globally; it is also skipped per-call via WalkInput.AIMappingEnabled.
func NewWalker(heuristic *mapper.HeuristicMapper, ai AIFieldResolver, dateOrder normalize.DateOrder) *Walker {
	return &Walker{heuristic: heuristic, ai: ai, dateOrder: dateOrder}
}

// WalkInput carries one document's decoded sheets plus extraction options.
type WalkInput struct {
	DocumentID       uuid.UUID
	FileName         string
	Sheets           []port.Sheet
	HasHeaderRow     bool
	SheetIndex       *int // nil walks every sheet
	AIMappingEnabled bool
}

// Walk extracts shipment bundles from the selected sheets. It returns
// domain.ErrSheetOutOfRange for an invalid explicit sheet index and
// domain.ErrNoDataExtracted when the selection holds no data rows at all.
func (w *Walker) Walk(ctx context.Context, in WalkInput) ([]domain.ShipmentBundle, error) {
	sheets := in.Sheets
	if in.SheetIndex != nil {
		idx := *in.SheetIndex
		if idx < 0 || idx >= len(sheets) {
			return nil, fmt.Errorf("%w: index %d, workbook has %d sheets", domain.ErrSheetOutOfRange, idx, len(sheets))
		}
		sheets = sheets[idx : idx+1]
	}

	var bundles []domain.ShipmentBundle
	for _, sheet := range sheets {
		extracted, err := w.walkSheet(ctx, in, sheet)
		if err != nil {
			return nil, err
		}
		bundles = append(bundles, extracted...)
	}
	if len(bundles) == 0 {
		return nil, domain.ErrNoDataExtracted
	}
	return bundles, nil
}

func (w *Walker) walkSheet(ctx context.Context, in WalkInput, sheet port.Sheet) ([]domain.ShipmentBundle, error) {
	if len(sheet.Rows) == 0 {
		return nil, nil
	}

	var headers []string
	dataStart := 0
	if in.HasHeaderRow {
		headers = cleanHeaders(sheet.Rows[0])
		dataStart = 1
	} else {
		headers = positionalHeaders(widestRow(sheet.Rows))
	}

	mappings := w.resolveHeaders(ctx, in, headers)

	var bundles []domain.ShipmentBundle
	for i := dataStart; i < len(sheet.Rows); i++ {
		row := sheet.Rows[i]
		if rowIsEmpty(row) {
			continue
		}
		bundle := w.extractRow(in, sheet.Name, headers, mappings, i, row)
		bundles = append(bundles, bundle)
	}
	return bundles, nil
}

// resolveHeaders runs the heuristic pass and, when enabled, the AI pass for
// residual headers. AI failures degrade that header to unmapped with
// confidence 0; they never fail the sheet.
func (w *Walker) resolveHeaders(ctx context.Context, in WalkInput, headers []string) []domain.FieldMapping {
	if !in.HasHeaderRow {
		return positionalMappings(headers)
	}

	accepted, residual := w.heuristic.MapHeaders(headers)
	if w.ai == nil || !in.AIMappingEnabled {
		return append(accepted, unmappedAll(residual)...)
	}

	for _, header := range residual {
		m, err := w.ai.MapField(ctx, header)
		if err != nil {
			log.Printf("extract.Walker.resolveHeaders: AI mapping for header %q failed, leaving unmapped: %v", header, err)
			accepted = append(accepted, unmapped(header))
			continue
		}
		if m.CanonicalField == "unknown" {
			m.CanonicalField = ""
		}
		accepted = append(accepted, m)
	}
	return accepted
}

// extractRow builds one bundle from one raw row. Any panic or field-level
// failure is recovered into the bundle's own ProcessingErrors so the remaining
// rows still extract.
func (w *Walker) extractRow(in WalkInput, sheetName string, headers []string, mappings []domain.FieldMapping, rowIndex int, row []string) (bundle domain.ShipmentBundle) {
	bundle = domain.ShipmentBundle{
		ID:            uuid.New(),
		CustomDetails: map[string]string{},
		Metadata:      domain.NewBundleMetadata(in.DocumentID, ParserVersion),
		Source: domain.SourceInfo{
			FileName:  in.FileName,
			SheetName: sheetName,
			RowIndex:  rowIndex,
		},
	}
	bundle.Metadata.OriginalHeaders = append(bundle.Metadata.OriginalHeaders, headers...)
	bundle.Metadata.FieldMappingsUsed = append(bundle.Metadata.FieldMappingsUsed, mappings...)

	defer func() {
		if r := recover(); r != nil {
			log.Printf("extract.Walker.extractRow: recovered panic on row %d: %v", rowIndex, r)
			bundle.Metadata.ProcessingErrors = append(bundle.Metadata.ProcessingErrors,
				fmt.Sprintf("row %d: extraction panic: %v", rowIndex, r))
			bundle.Metadata.NeedsReview = true
		}
	}()

	raw := rawRow(headers, row)

	var item domain.ShipmentItem
	for _, m := range mappings {
		value, ok := raw[m.OriginalField]
		if !ok || strings.TrimSpace(value) == "" {
			continue
		}
		if m.CanonicalField == "" || m.CanonicalField == "unknown" {
			bundle.CustomDetails[m.OriginalField] = normalize.CleanString(value)
			continue
		}
		if m.Source == domain.MappingSourceAI {
			bundle.Metadata.AIMappedFields = append(bundle.Metadata.AIMappedFields, m.CanonicalField)
		}
		if err := w.applyField(&bundle, &item, m.CanonicalField, value); err != nil {
			bundle.Metadata.ProcessingErrors = append(bundle.Metadata.ProcessingErrors,
				fmt.Sprintf("row %d: field %s: %v", rowIndex, m.CanonicalField, err))
			bundle.Metadata.NeedsReview = true
		}
	}
	if item != (domain.ShipmentItem{}) {
		bundle.Items = append(bundle.Items, item)
	}
	return bundle
}

// applyField routes one normalized cell value onto the bundle.
func (w *Walker) applyField(b *domain.ShipmentBundle, item *domain.ShipmentItem, field, value string) error {
	if domain.DateFields[field] {
		t := normalize.ParseDate(value, w.dateOrder)
		switch field {
		case domain.FieldPromisedShipDate:
			b.PromisedShipDate = t
		case domain.FieldRequestedDeliveryDate:
			b.RequestedDeliveryDate = t
		case domain.FieldPickupDate:
			b.PickupDate = t
		case domain.FieldDeliveryDate:
			b.DeliveryDate = t
		}
		return nil
	}

	cleaned := normalize.CleanString(value)

	switch field {
	case domain.FieldLoadNumber:
		b.LoadNumber = cleaned
	case domain.FieldOrderNumber:
		b.OrderNumber = cleaned
	case domain.FieldPONumber:
		b.PONumber = cleaned
	case domain.FieldProNumber:
		b.ProNumber = cleaned
	case domain.FieldBOLNumber:
		b.BOLNumber = cleaned
	case domain.FieldCarrier:
		b.Carrier = cleaned
	case domain.FieldShipToCustomer:
		b.ShipToCustomer = cleaned
	case domain.FieldEquipmentType:
		b.EquipmentType = cleaned
	case domain.FieldSpecialInstructions:
		b.SpecialInstructions = cleaned
	case domain.FieldTotalWeight:
		n, ok := normalize.ParseNumber(value)
		if !ok {
			return fmt.Errorf("non-numeric weight %q", value)
		}
		b.TotalWeight = n
	case domain.FieldRate:
		n, ok := normalize.ParseNumber(value)
		if !ok {
			return fmt.Errorf("non-numeric rate %q", value)
		}
		b.Rate = n
	case domain.FieldOriginStreet:
		b.Origin.Street = cleaned
	case domain.FieldOriginCity:
		b.Origin.City = cleaned
	case domain.FieldOriginState:
		b.Origin.State = cleaned
	case domain.FieldOriginZip:
		b.Origin.Zip = cleaned
	case domain.FieldDestinationStreet:
		b.Destination.Street = cleaned
	case domain.FieldDestinationCity:
		b.Destination.City = cleaned
	case domain.FieldDestinationState:
		b.Destination.State = cleaned
	case domain.FieldDestinationZip:
		b.Destination.Zip = cleaned
	case domain.FieldPickupContactName:
		b.Pickup.ContactName = cleaned
	case domain.FieldPickupContactPhone:
		b.Pickup.ContactPhone = cleaned
	case domain.FieldDropoffContactName:
		b.Dropoff.ContactName = cleaned
	case domain.FieldDropoffContactPhone:
		b.Dropoff.ContactPhone = cleaned
	case domain.FieldItemDescription:
		item.Description = cleaned
	case domain.FieldCommodity:
		item.Commodity = cleaned
	case domain.FieldItemQuantity:
		item.Quantity, _ = normalize.ParseNumber(value)
	case domain.FieldItemWeight:
		item.Weight, _ = normalize.ParseNumber(value)
	case domain.FieldItemPallets:
		item.Pallets, _ = normalize.ParseNumber(value)
	case domain.FieldItemPieces:
		item.Pieces, _ = normalize.ParseNumber(value)
	default:
		b.CustomDetails[field] = cleaned
	}
	return nil
}

func rawRow(headers []string, row []string) map[string]string {
	raw := make(map[string]string, len(headers))
	for i, h := range headers {
		if i < len(row) {
			raw[h] = row[i]
		}
	}
	return raw
}

func cleanHeaders(row []string) []string {
	headers := make([]string, len(row))
	for i, h := range row {
		h = normalize.CleanString(h)
		if h == "" {
			h = fmt.Sprintf("col%d", i+1)
		}
		headers[i] = h
	}
	return headers
}

// positionalHeaders names columns col1..colN when no header row exists.
func positionalHeaders(width int) []string {
	headers := make([]string, width)
	for i := range headers {
		headers[i] = fmt.Sprintf("col%d", i+1)
	}
	return headers
}

// positionalMappings assigns canonical fields to columns in catalog order with
// reduced confidence; columns past the catalog stay unmapped.
func positionalMappings(headers []string) []domain.FieldMapping {
	catalog := domain.CanonicalFields()
	mappings := make([]domain.FieldMapping, 0, len(headers))
	for i, header := range headers {
		m := unmapped(header)
		if i < len(catalog) {
			m.CanonicalField = catalog[i]
			m.Confidence = PositionalConfidence
		}
		mappings = append(mappings, m)
	}
	return mappings
}

func unmapped(header string) domain.FieldMapping {
	return domain.FieldMapping{
		OriginalField: header,
		Confidence:    0,
		Source:        domain.MappingSourceHeuristic,
	}
}

func unmappedAll(headers []string) []domain.FieldMapping {
	out := make([]domain.FieldMapping, 0, len(headers))
	for _, h := range headers {
		out = append(out, unmapped(h))
	}
	return out
}

func widestRow(rows [][]string) int {
	width := 0
	for _, r := range rows {
		if len(r) > width {
			width = len(r)
		}
	}
	return width
}

func rowIsEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
