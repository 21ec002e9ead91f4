package port

import (
	"context"
	"time"
)

// CachedMapping is one stored header resolution.
type CachedMapping struct {
	Field      string  `json:"field"`
	Confidence float64 `json:"confidence"`
}

// MappingCache is a TTL key-value store for AI header resolutions. Entries are
// immutable until expiry, after which they are overwritten, not merged.
// Implementations must be safe for concurrent use.
type MappingCache interface {
	Get(ctx context.Context, header string) (*CachedMapping, bool)
	Set(ctx context.Context, header string, mapping CachedMapping, ttl time.Duration)
}
