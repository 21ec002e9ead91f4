package mocks

import (
	"github.com/stretchr/testify/mock"

	"shipstream/internal/port"
)

// MockSheetDecoder is a mock implementation of port.SheetDecoder.
type MockSheetDecoder struct {
	mock.Mock
}

func (m *MockSheetDecoder) Decode(fileBytes []byte) ([]port.Sheet, error) {
	args := m.Called(fileBytes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]port.Sheet), args.Error(1)
}
