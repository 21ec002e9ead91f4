package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shipstream/internal/domain"
)

func TestDocumentStatus_ForwardTransitions(t *testing.T) {
	assert.True(t, domain.DocumentStatusUploaded.CanTransitionTo(domain.DocumentStatusProcessing))
	assert.True(t, domain.DocumentStatusProcessing.CanTransitionTo(domain.DocumentStatusProcessed))
	assert.True(t, domain.DocumentStatusProcessing.CanTransitionTo(domain.DocumentStatusError))
}

func TestDocumentStatus_IllegalTransitions(t *testing.T) {
	// No skipping, no backward moves, no leaving a terminal state.
	assert.False(t, domain.DocumentStatusUploaded.CanTransitionTo(domain.DocumentStatusProcessed))
	assert.False(t, domain.DocumentStatusUploaded.CanTransitionTo(domain.DocumentStatusError))
	assert.False(t, domain.DocumentStatusProcessing.CanTransitionTo(domain.DocumentStatusUploaded))
	assert.False(t, domain.DocumentStatusProcessed.CanTransitionTo(domain.DocumentStatusError))
	assert.False(t, domain.DocumentStatusError.CanTransitionTo(domain.DocumentStatusProcessing))
}

func TestDocument_TransitionTo(t *testing.T) {
	doc := &domain.Document{Status: domain.DocumentStatusUploaded}

	require.NoError(t, doc.TransitionTo(domain.DocumentStatusProcessing))
	require.NoError(t, doc.TransitionTo(domain.DocumentStatusError))
	assert.Equal(t, domain.DocumentStatusError, doc.Status)
}

func TestDocument_TransitionTo_IllegalMoveLeavesStatusUntouched(t *testing.T) {
	doc := &domain.Document{Status: domain.DocumentStatusUploaded}

	err := doc.TransitionTo(domain.DocumentStatusProcessed)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Equal(t, domain.DocumentStatusUploaded, doc.Status)

	doc.Status = domain.DocumentStatusProcessed
	err = doc.TransitionTo(domain.DocumentStatusError)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Equal(t, domain.DocumentStatusProcessed, doc.Status)
}

func TestDocumentStatus_IsTerminal(t *testing.T) {
	assert.False(t, domain.DocumentStatusUploaded.IsTerminal())
	assert.False(t, domain.DocumentStatusProcessing.IsTerminal())
	assert.True(t, domain.DocumentStatusProcessed.IsTerminal())
	assert.True(t, domain.DocumentStatusError.IsTerminal())
}

func TestFileType_ImagePath(t *testing.T) {
	assert.True(t, domain.FileTypePNG.IsImage())
	assert.True(t, domain.FileTypeJPG.IsImage())
	assert.False(t, domain.FileTypeXLSX.IsImage())
	assert.False(t, domain.FileTypeCSV.IsImage())

	assert.Equal(t, "image/png", domain.FileTypePNG.ImageContentType())
	assert.Equal(t, "image/jpeg", domain.FileTypeJPG.ImageContentType())
}

func TestAllowedExtensions(t *testing.T) {
	assert.Equal(t, domain.FileTypeXLSX, domain.AllowedExtensions["xls"])
	assert.Equal(t, domain.FileTypeJPG, domain.AllowedExtensions["jpeg"])
	_, ok := domain.AllowedExtensions["pdf"]
	assert.False(t, ok)
}
