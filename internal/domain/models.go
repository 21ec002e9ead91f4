package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Document represents one ingested file and its processing outcome.
type Document struct {
	ID            uuid.UUID      `db:"id" json:"id"`
	FileName      string         `db:"file_name" json:"file_name"`
	FileType      FileType       `db:"file_type" json:"file_type"`
	DocumentType  string         `db:"document_type" json:"document_type"`
	Status        DocumentStatus `db:"status" json:"status"`
	ErrorMessage  string         `db:"error_message" json:"error_message"`
	ShipmentCount int            `db:"shipment_count" json:"shipment_count"`
	ParsedAt      *time.Time     `db:"parsed_at" json:"parsed_at"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at" json:"updated_at"`
}

// TransitionTo advances the document through its forward-only lifecycle,
// returning ErrInvalidTransition for any move the state machine does not allow.
func (d *Document) TransitionTo(next DocumentStatus) error {
	if !d.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, d.Status, next)
	}
	d.Status = next
	return nil
}

// FieldMapping records how one original header was resolved to a canonical field.
type FieldMapping struct {
	OriginalField  string        `json:"original_field"`
	CanonicalField string        `json:"canonical_field"`
	Confidence     float64       `json:"confidence"`
	Source         MappingSource `json:"source"`
}

// Address is a postal address sub-object on a bundle.
type Address struct {
	Street string `json:"street,omitempty"`
	City   string `json:"city,omitempty"`
	State  string `json:"state,omitempty"`
	Zip    string `json:"zip,omitempty"`
}

// Empty reports whether no address component is set.
func (a Address) Empty() bool {
	return a.Street == "" && a.City == "" && a.State == "" && a.Zip == ""
}

// Stop holds contact and time-window details for a pickup or dropoff.
type Stop struct {
	ContactName  string     `json:"contact_name,omitempty"`
	ContactPhone string     `json:"contact_phone,omitempty"`
	ContactEmail string     `json:"contact_email,omitempty"`
	WindowStart  *time.Time `json:"window_start,omitempty"`
	WindowEnd    *time.Time `json:"window_end,omitempty"`
	Notes        string     `json:"notes,omitempty"`
}

// ShipmentItem is one freight line on a shipment.
type ShipmentItem struct {
	Description string  `json:"description,omitempty"`
	Quantity    float64 `json:"quantity,omitempty"`
	Weight      float64 `json:"weight,omitempty"`
	Pallets     float64 `json:"pallets,omitempty"`
	Pieces      float64 `json:"pieces,omitempty"`
	Commodity   string  `json:"commodity,omitempty"`
}

// SourceInfo locates a bundle within its source document.
type SourceInfo struct {
	FileName  string `json:"file_name"`
	SheetName string `json:"sheet_name,omitempty"`
	RowIndex  int    `json:"row_index"`
}

// BundleMetadata carries extraction provenance for a bundle. A bundle always has
// metadata; constructors must use NewBundleMetadata so the slices are non-nil.
type BundleMetadata struct {
	OriginalHeaders   []string       `json:"original_headers"`
	FieldMappingsUsed []FieldMapping `json:"field_mappings_used"`
	AIMappedFields    []string       `json:"ai_mapped_fields"`
	NeedsReview       bool           `json:"needs_review"`
	ParserVersion     string         `json:"parser_version"`
	ProcessingErrors  []string       `json:"processing_errors"`
	SourceDocumentID  uuid.UUID      `json:"source_document_id"`
}

// NewBundleMetadata returns initialized metadata with empty, non-nil collections.
func NewBundleMetadata(docID uuid.UUID, parserVersion string) BundleMetadata {
	return BundleMetadata{
		OriginalHeaders:   []string{},
		FieldMappingsUsed: []FieldMapping{},
		AIMappedFields:    []string{},
		ProcessingErrors:  []string{},
		ParserVersion:     parserVersion,
		SourceDocumentID:  docID,
	}
}

// ShipmentBundle is the normalized in-memory representation of one extracted
// shipment record, prior to and after persistence.
type ShipmentBundle struct {
	ID uuid.UUID `json:"id"`

	LoadNumber          string  `json:"load_number,omitempty"`
	OrderNumber         string  `json:"order_number,omitempty"`
	PONumber            string  `json:"po_number,omitempty"`
	ProNumber           string  `json:"pro_number,omitempty"`
	BOLNumber           string  `json:"bol_number,omitempty"`
	Carrier             string  `json:"carrier,omitempty"`
	ShipToCustomer      string  `json:"ship_to_customer,omitempty"`
	EquipmentType       string  `json:"equipment_type,omitempty"`
	TotalWeight         float64 `json:"total_weight,omitempty"`
	Rate                float64 `json:"rate,omitempty"`
	SpecialInstructions string  `json:"special_instructions,omitempty"`

	PromisedShipDate      *time.Time `json:"promised_ship_date,omitempty"`
	RequestedDeliveryDate *time.Time `json:"requested_delivery_date,omitempty"`
	PickupDate            *time.Time `json:"pickup_date,omitempty"`
	DeliveryDate          *time.Time `json:"delivery_date,omitempty"`

	Origin      Address `json:"origin"`
	Destination Address `json:"destination"`
	Pickup      Stop    `json:"pickup"`
	Dropoff     Stop    `json:"dropoff"`

	Items []ShipmentItem `json:"items"`

	// CustomDetails keeps values from headers that could not be mapped to a
	// canonical field. They are retained, never dropped.
	CustomDetails map[string]string `json:"custom_details,omitempty"`

	Metadata BundleMetadata `json:"metadata"`
	Source   SourceInfo     `json:"source"`
}

// ConfidenceScore is the derived confidence/review verdict for a bundle. It is
// recomputed from the current bundle state on demand and never persisted as a
// source of truth.
type ConfidenceScore struct {
	Confidence  float64 `json:"confidence"`
	NeedsReview bool    `json:"needs_review"`
	Message     string  `json:"message"`
}
