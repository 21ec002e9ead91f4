package mapper

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"shipstream/internal/domain"
	"shipstream/internal/port"
)

// DefaultCacheTTL is how long an AI header resolution stays valid.
const DefaultCacheTTL = 7 * 24 * time.Hour

// AIMapper resolves headers the heuristic mapper could not, using an external
// completion service behind a TTL cache.
type AIMapper struct {
	client port.CompletionClient
	cache  port.MappingCache
	ttl    time.Duration
}

// NewAIMapper creates an AI mapping service. A zero TTL falls back to the default.
func NewAIMapper(client port.CompletionClient, cache port.MappingCache, ttl time.Duration) *AIMapper {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &AIMapper{client: client, cache: cache, ttl: ttl}
}

// MapField resolves one raw header to a canonical field. A cache hit returns
// without any external call. On a miss the completion service is invoked and
// the result cached with TTL before returning. Failures come back as a typed
// *MappingError; the caller decides the fallback (field unmapped, confidence 0).
func (m *AIMapper) MapField(ctx context.Context, header string) (domain.FieldMapping, error) {
	if cached, ok := m.cache.Get(ctx, header); ok {
		return domain.FieldMapping{
			OriginalField:  header,
			CanonicalField: cached.Field,
			Confidence:     cached.Confidence,
			Source:         domain.MappingSourceAI,
		}, nil
	}

	resp, err := m.client.Complete(ctx, port.CompletionRequest{
		Prompt:    BuildFieldMappingPrompt(header),
		MaxTokens: 256,
	})
	if err != nil {
		return domain.FieldMapping{}, newMappingError(header, "completion call failed", err)
	}

	field, confidence, err := parseMappingResponse(resp.Text)
	if err != nil {
		return domain.FieldMapping{}, newMappingError(header, "unparseable mapping response", err)
	}

	if field != "unknown" && !domain.IsCanonicalField(field) {
		log.Printf("mapper.AIMapper: model returned unknown field %q for header %q, treating as unmapped", field, header)
		field, confidence = "unknown", 0
	}

	m.cache.Set(ctx, header, port.CachedMapping{Field: field, Confidence: confidence}, m.ttl)

	return domain.FieldMapping{
		OriginalField:  header,
		CanonicalField: field,
		Confidence:     confidence,
		Source:         domain.MappingSourceAI,
	}, nil
}

// mappingResponse is the exact shape expected from the model.
type mappingResponse struct {
	Field      string  `json:"field"`
	Confidence float64 `json:"confidence"`
}

func parseMappingResponse(text string) (string, float64, error) {
	cleaned := stripCodeFences(text)

	var parsed mappingResponse
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return "", 0, err
	}
	if parsed.Field == "" {
		return "", 0, errMissingField
	}
	if parsed.Confidence < 0 {
		parsed.Confidence = 0
	}
	if parsed.Confidence > 1 {
		parsed.Confidence = 1
	}
	return parsed.Field, parsed.Confidence, nil
}

var errMissingField = &MappingError{Reason: `response JSON has no "field" key`}

// stripCodeFences removes markdown code fences some models wrap JSON in.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
	}
	return strings.TrimSpace(s)
}
