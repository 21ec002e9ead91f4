package score

import (
	"fmt"
	"strings"

	"shipstream/internal/config"
	"shipstream/internal/domain"
)

// Calculate derives the confidence/review verdict for a bundle. It is a pure
// function of the bundle and the configured weights: recomputed on demand, so
// a manual correction changes the score immediately.
func Calculate(bundle domain.ShipmentBundle, cfg config.ScoringConfig) domain.ConfidenceScore {
	missing := missingCriticalFields(bundle)

	confidence := 1.0 - cfg.CriticalPenalty*float64(len(missing))
	if confidence < 0 {
		confidence = 0
	}

	lowConfidenceAI := hasLowConfidenceAIMapping(bundle, cfg.AIConfidenceCutoff)
	if lowConfidenceAI {
		confidence *= cfg.AIMappingDiscount
	}

	completeness := completenessRatio(bundle, cfg.OptionalCredit)

	blended := cfg.ConfidenceWeight*confidence + cfg.CompletenessWeight*completeness
	if blended < cfg.MinConfidence {
		blended = cfg.MinConfidence
	}
	if blended > 1.0 {
		blended = 1.0
	}

	needsReview := len(missing) > 0 || lowConfidenceAI || blended < cfg.ReviewThreshold

	return domain.ConfidenceScore{
		Confidence:  blended,
		NeedsReview: needsReview,
		Message:     scoreMessage(missing, lowConfidenceAI, blended, cfg.ReviewThreshold),
	}
}

// completenessRatio is required-field coverage plus partial credit for
// optional fields, normalized to [0, 1].
func completenessRatio(bundle domain.ShipmentBundle, optionalCredit float64) float64 {
	required := domain.CriticalFields
	presentRequired := 0
	for _, field := range required {
		if fieldPresent(bundle, field) {
			presentRequired++
		}
	}

	optional := domain.OptionalScoredFields
	presentOptional := 0
	for _, field := range optional {
		if fieldPresent(bundle, field) {
			presentOptional++
		}
	}

	earned := float64(presentRequired) + optionalCredit*float64(presentOptional)
	possible := float64(len(required)) + optionalCredit*float64(len(optional))
	return earned / possible
}

func missingCriticalFields(bundle domain.ShipmentBundle) []string {
	var missing []string
	for _, field := range domain.CriticalFields {
		if !fieldPresent(bundle, field) {
			missing = append(missing, field)
		}
	}
	return missing
}

// hasLowConfidenceAIMapping reports whether any field resolved by the AI
// mapper carries a mapping confidence below the cutoff.
func hasLowConfidenceAIMapping(bundle domain.ShipmentBundle, cutoff float64) bool {
	for _, m := range bundle.Metadata.FieldMappingsUsed {
		if m.Source != domain.MappingSourceAI || m.CanonicalField == "" {
			continue
		}
		if m.Confidence < cutoff {
			return true
		}
	}
	return false
}

// fieldPresent reports whether a scored field holds a usable value. The
// pseudo-field "items" means a non-empty item list.
func fieldPresent(b domain.ShipmentBundle, field string) bool {
	switch field {
	case "items":
		return len(b.Items) > 0
	case domain.FieldLoadNumber:
		return b.LoadNumber != ""
	case domain.FieldOrderNumber:
		return b.OrderNumber != ""
	case domain.FieldPONumber:
		return b.PONumber != ""
	case domain.FieldProNumber:
		return b.ProNumber != ""
	case domain.FieldBOLNumber:
		return b.BOLNumber != ""
	case domain.FieldCarrier:
		return b.Carrier != ""
	case domain.FieldShipToCustomer:
		return b.ShipToCustomer != ""
	case domain.FieldEquipmentType:
		return b.EquipmentType != ""
	case domain.FieldTotalWeight:
		return b.TotalWeight > 0
	case domain.FieldRate:
		return b.Rate > 0
	case domain.FieldPromisedShipDate:
		return b.PromisedShipDate != nil
	case domain.FieldRequestedDeliveryDate:
		return b.RequestedDeliveryDate != nil
	case domain.FieldPickupDate:
		return b.PickupDate != nil
	case domain.FieldDeliveryDate:
		return b.DeliveryDate != nil
	case domain.FieldOriginCity:
		return b.Origin.City != ""
	case domain.FieldOriginState:
		return b.Origin.State != ""
	case domain.FieldOriginZip:
		return b.Origin.Zip != ""
	case domain.FieldDestinationCity:
		return b.Destination.City != ""
	case domain.FieldDestinationState:
		return b.Destination.State != ""
	case domain.FieldDestinationZip:
		return b.Destination.Zip != ""
	case domain.FieldDropoffContactName:
		return b.Dropoff.ContactName != ""
	case domain.FieldDropoffContactPhone:
		return b.Dropoff.ContactPhone != ""
	default:
		return false
	}
}

func scoreMessage(missing []string, lowConfidenceAI bool, blended, reviewThreshold float64) string {
	var parts []string
	if len(missing) > 0 {
		parts = append(parts, "missing critical fields: "+strings.Join(missing, ", "))
	}
	if lowConfidenceAI {
		parts = append(parts, "contains low-confidence AI field mappings")
	}
	if len(parts) == 0 && blended < reviewThreshold {
		parts = append(parts, fmt.Sprintf("confidence %.2f below review threshold %.2f", blended, reviewThreshold))
	}
	if len(parts) == 0 {
		return "ok"
	}
	return strings.Join(parts, "; ")
}
