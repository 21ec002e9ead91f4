package mapper_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shipstream/internal/domain"
	"shipstream/internal/mapper"
)

func TestHeuristicMapper_MapHeaders(t *testing.T) {
	m := mapper.NewHeuristicMapper(0.8)

	headers := []string{"Load Number", "Consignee", "Internal Ref Code XYZ"}
	accepted, residual := m.MapHeaders(headers)

	require.Len(t, accepted, 2)
	assert.Equal(t, domain.FieldLoadNumber, accepted[0].CanonicalField)
	assert.Equal(t, "Load Number", accepted[0].OriginalField)
	assert.Equal(t, domain.MappingSourceHeuristic, accepted[0].Source)
	assert.Equal(t, domain.FieldShipToCustomer, accepted[1].CanonicalField)

	require.Len(t, residual, 1)
	assert.Equal(t, "Internal Ref Code XYZ", residual[0])
}

func TestHeuristicMapper_ThresholdGatesWeakMatches(t *testing.T) {
	strict := mapper.NewHeuristicMapper(0.99)

	// Case-insensitive match scores 0.95, below a 0.99 threshold.
	accepted, residual := strict.MapHeaders([]string{"Load Number"})
	assert.Empty(t, accepted)
	assert.Equal(t, []string{"Load Number"}, residual)
}

func TestNewHeuristicMapper_ZeroThresholdUsesDefault(t *testing.T) {
	m := mapper.NewHeuristicMapper(0)

	accepted, _ := m.MapHeaders([]string{"load number"})
	require.Len(t, accepted, 1)
	assert.Equal(t, 1.0, accepted[0].Confidence)
}
