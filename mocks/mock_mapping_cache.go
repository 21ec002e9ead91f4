package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"shipstream/internal/port"
)

// MockMappingCache is a mock implementation of port.MappingCache.
type MockMappingCache struct {
	mock.Mock
}

func (m *MockMappingCache) Get(ctx context.Context, header string) (*port.CachedMapping, bool) {
	args := m.Called(ctx, header)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).(*port.CachedMapping), args.Bool(1)
}

func (m *MockMappingCache) Set(ctx context.Context, header string, mapping port.CachedMapping, ttl time.Duration) {
	m.Called(ctx, header, mapping, ttl)
}
