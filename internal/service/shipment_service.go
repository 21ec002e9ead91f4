package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"shipstream/internal/config"
	"shipstream/internal/domain"
	"shipstream/internal/normalize"
	"shipstream/internal/port"
	"shipstream/internal/score"
)

// CorrectShipmentInput is the DTO for a manual shipment correction. Nil fields
// are left untouched; date strings go through the normalizer.
type CorrectShipmentInput struct {
	LoadNumber          *string  `json:"load_number"`
	OrderNumber         *string  `json:"order_number"`
	PONumber            *string  `json:"po_number"`
	ProNumber           *string  `json:"pro_number"`
	BOLNumber           *string  `json:"bol_number"`
	Carrier             *string  `json:"carrier"`
	ShipToCustomer      *string  `json:"ship_to_customer"`
	EquipmentType       *string  `json:"equipment_type"`
	TotalWeight         *float64 `json:"total_weight"`
	Rate                *float64 `json:"rate"`
	SpecialInstructions *string  `json:"special_instructions"`

	PromisedShipDate      *string `json:"promised_ship_date"`
	RequestedDeliveryDate *string `json:"requested_delivery_date"`
	PickupDate            *string `json:"pickup_date"`
	DeliveryDate          *string `json:"delivery_date"`

	Origin      *domain.Address `json:"origin"`
	Destination *domain.Address `json:"destination"`

	Items []domain.ShipmentItem `json:"items"`
}

// ShipmentWithScore pairs a bundle with its freshly recomputed score.
type ShipmentWithScore struct {
	Bundle domain.ShipmentBundle  `json:"shipment"`
	Score  domain.ConfidenceScore `json:"score"`
}

// ShipmentService defines the shipment read/correction contract.
type ShipmentService interface {
	GetByID(ctx context.Context, shipmentID uuid.UUID) (*ShipmentWithScore, error)
	ListByDocument(ctx context.Context, docID uuid.UUID, needsReview *bool, offset, limit int) ([]domain.ShipmentBundle, int, error)
	Correct(ctx context.Context, shipmentID uuid.UUID, input *CorrectShipmentInput) (*ShipmentWithScore, error)
}

type shipmentService struct {
	shipRepo  port.ShipmentRepository
	scoring   config.ScoringConfig
	dateOrder normalize.DateOrder
}

// NewShipmentService creates a new ShipmentService implementation.
func NewShipmentService(shipRepo port.ShipmentRepository, scoring config.ScoringConfig, dateOrder normalize.DateOrder) ShipmentService {
	return &shipmentService{shipRepo: shipRepo, scoring: scoring, dateOrder: dateOrder}
}

// GetByID returns a shipment with its score recomputed from current state.
// Scores are derived, never stored, so corrections show up immediately.
func (s *shipmentService) GetByID(ctx context.Context, shipmentID uuid.UUID) (*ShipmentWithScore, error) {
	bundle, err := s.shipRepo.GetByID(ctx, shipmentID)
	if err != nil {
		return nil, err
	}
	return &ShipmentWithScore{
		Bundle: *bundle,
		Score:  score.Calculate(*bundle, s.scoring),
	}, nil
}

func (s *shipmentService) ListByDocument(ctx context.Context, docID uuid.UUID, needsReview *bool, offset, limit int) ([]domain.ShipmentBundle, int, error) {
	return s.shipRepo.ListByDocument(ctx, docID, needsReview, offset, limit)
}

// Correct merges the edited fields into the stored bundle, marks each edited
// field's mapping as manual with full confidence, recomputes the score and
// review flag, and persists the result.
func (s *shipmentService) Correct(ctx context.Context, shipmentID uuid.UUID, input *CorrectShipmentInput) (*ShipmentWithScore, error) {
	bundle, err := s.shipRepo.GetByID(ctx, shipmentID)
	if err != nil {
		return nil, err
	}

	s.applyCorrections(bundle, input)

	verdict := score.Calculate(*bundle, s.scoring)
	validationErrs := score.Validate(*bundle)
	bundle.Metadata.NeedsReview = verdict.NeedsReview || len(validationErrs) > 0

	if err := s.shipRepo.Update(ctx, bundle); err != nil {
		return nil, err
	}
	return &ShipmentWithScore{Bundle: *bundle, Score: verdict}, nil
}

func (s *shipmentService) applyCorrections(b *domain.ShipmentBundle, in *CorrectShipmentInput) {
	setString := func(field string, dst *string, src *string) {
		if src != nil {
			*dst = normalize.CleanString(*src)
			markManual(b, field)
		}
	}
	setNumber := func(field string, dst *float64, src *float64) {
		if src != nil {
			*dst = *src
			markManual(b, field)
		}
	}
	setDate := func(field string, dst **time.Time, src *string) {
		if src != nil {
			*dst = normalize.ParseDate(*src, s.dateOrder)
			markManual(b, field)
		}
	}

	setString(domain.FieldLoadNumber, &b.LoadNumber, in.LoadNumber)
	setString(domain.FieldOrderNumber, &b.OrderNumber, in.OrderNumber)
	setString(domain.FieldPONumber, &b.PONumber, in.PONumber)
	setString(domain.FieldProNumber, &b.ProNumber, in.ProNumber)
	setString(domain.FieldBOLNumber, &b.BOLNumber, in.BOLNumber)
	setString(domain.FieldCarrier, &b.Carrier, in.Carrier)
	setString(domain.FieldShipToCustomer, &b.ShipToCustomer, in.ShipToCustomer)
	setString(domain.FieldEquipmentType, &b.EquipmentType, in.EquipmentType)
	setString(domain.FieldSpecialInstructions, &b.SpecialInstructions, in.SpecialInstructions)
	setNumber(domain.FieldTotalWeight, &b.TotalWeight, in.TotalWeight)
	setNumber(domain.FieldRate, &b.Rate, in.Rate)
	setDate(domain.FieldPromisedShipDate, &b.PromisedShipDate, in.PromisedShipDate)
	setDate(domain.FieldRequestedDeliveryDate, &b.RequestedDeliveryDate, in.RequestedDeliveryDate)
	setDate(domain.FieldPickupDate, &b.PickupDate, in.PickupDate)
	setDate(domain.FieldDeliveryDate, &b.DeliveryDate, in.DeliveryDate)

	if in.Origin != nil {
		b.Origin = *in.Origin
		markManual(b, domain.FieldOriginCity)
	}
	if in.Destination != nil {
		b.Destination = *in.Destination
		markManual(b, domain.FieldDestinationCity)
	}
	if in.Items != nil {
		b.Items = in.Items
		markManual(b, domain.FieldItemDescription)
	}
}

// markManual upserts a full-confidence manual mapping for a corrected field.
// A manual mapping replaces any earlier heuristic or AI mapping for the same
// canonical field, so AI-mapping discounts no longer apply to it.
func markManual(b *domain.ShipmentBundle, field string) {
	for i := range b.Metadata.FieldMappingsUsed {
		if b.Metadata.FieldMappingsUsed[i].CanonicalField == field {
			b.Metadata.FieldMappingsUsed[i].Confidence = 1.0
			b.Metadata.FieldMappingsUsed[i].Source = domain.MappingSourceManual
			return
		}
	}
	b.Metadata.FieldMappingsUsed = append(b.Metadata.FieldMappingsUsed, domain.FieldMapping{
		OriginalField:  field,
		CanonicalField: field,
		Confidence:     1.0,
		Source:         domain.MappingSourceManual,
	})
}
