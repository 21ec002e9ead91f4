package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"shipstream/internal/port"
)

// MockCompletionClient is a mock implementation of port.CompletionClient.
type MockCompletionClient struct {
	mock.Mock
}

func (m *MockCompletionClient) Complete(ctx context.Context, req port.CompletionRequest) (*port.CompletionResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.CompletionResponse), args.Error(1)
}
