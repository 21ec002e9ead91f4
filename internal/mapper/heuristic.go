package mapper

import (
	"shipstream/internal/domain"
)

// DefaultHeuristicThreshold is the acceptance confidence for dictionary-based
// header resolution when no explicit threshold is configured.
const DefaultHeuristicThreshold = 0.8

// HeuristicMapper resolves spreadsheet headers against the synonym dictionary.
type HeuristicMapper struct {
	threshold float64
}

// NewHeuristicMapper creates a mapper with the given acceptance threshold.
// A zero threshold falls back to the default.
func NewHeuristicMapper(threshold float64) *HeuristicMapper {
	if threshold <= 0 {
		threshold = DefaultHeuristicThreshold
	}
	return &HeuristicMapper{threshold: threshold}
}

// MapHeaders resolves each header. Matches at or above the threshold become
// heuristic FieldMappings; the rest are returned as residual headers for the
// AI fallback.
func (m *HeuristicMapper) MapHeaders(headers []string) (accepted []domain.FieldMapping, residual []string) {
	for _, header := range headers {
		field, conf := ResolveHeader(header)
		if field != "" && conf >= m.threshold {
			accepted = append(accepted, domain.FieldMapping{
				OriginalField:  header,
				CanonicalField: field,
				Confidence:     conf,
				Source:         domain.MappingSourceHeuristic,
			})
			continue
		}
		residual = append(residual, header)
	}
	return accepted, residual
}
