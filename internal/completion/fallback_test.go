package completion_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"shipstream/internal/completion"
	"shipstream/internal/port"
	"shipstream/mocks"
)

func fallbackPair() (*mocks.MockCompletionClient, *mocks.MockCompletionClient, *completion.FallbackClient) {
	primary := new(mocks.MockCompletionClient)
	secondary := new(mocks.MockCompletionClient)
	fc := completion.NewFallbackClient(
		[]port.CompletionClient{primary, secondary},
		[]string{"openai", "anthropic"},
	)
	return primary, secondary, fc
}

func TestFallback_PrimarySucceeds(t *testing.T) {
	primary, secondary, fc := fallbackPair()
	primary.On("Complete", mock.Anything, mock.Anything).
		Return(&port.CompletionResponse{Text: "ok"}, nil).Once()

	resp, err := fc.Complete(context.Background(), port.CompletionRequest{Prompt: "x"})

	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Text)
	secondary.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
}

func TestFallback_RateLimitedPrimaryFallsThrough(t *testing.T) {
	primary, secondary, fc := fallbackPair()
	primary.On("Complete", mock.Anything, mock.Anything).
		Return(nil, completion.NewRateLimitError("openai", errors.New("429"), 60)).Once()
	secondary.On("Complete", mock.Anything, mock.Anything).
		Return(&port.CompletionResponse{Text: "from secondary"}, nil).Once()

	resp, err := fc.Complete(context.Background(), port.CompletionRequest{Prompt: "x"})

	require.NoError(t, err)
	assert.Equal(t, "from secondary", resp.Text)
}

func TestFallback_OpenCircuitSkipsProvider(t *testing.T) {
	primary, secondary, fc := fallbackPair()
	primary.On("Complete", mock.Anything, mock.Anything).
		Return(nil, completion.NewRateLimitError("openai", errors.New("429"), 60)).Once()
	secondary.On("Complete", mock.Anything, mock.Anything).
		Return(&port.CompletionResponse{Text: "ok"}, nil).Twice()

	// First call opens the primary circuit.
	_, err := fc.Complete(context.Background(), port.CompletionRequest{Prompt: "x"})
	require.NoError(t, err)

	// Second call must skip the primary entirely.
	_, err = fc.Complete(context.Background(), port.CompletionRequest{Prompt: "y"})
	require.NoError(t, err)
	primary.AssertNumberOfCalls(t, "Complete", 1)
	secondary.AssertNumberOfCalls(t, "Complete", 2)
}

func TestFallback_AllRateLimited(t *testing.T) {
	primary, secondary, fc := fallbackPair()
	primary.On("Complete", mock.Anything, mock.Anything).
		Return(nil, completion.NewRateLimitError("openai", errors.New("429"), 30)).Once()
	secondary.On("Complete", mock.Anything, mock.Anything).
		Return(nil, completion.NewRateLimitError("anthropic", errors.New("429"), 90)).Once()

	_, err := fc.Complete(context.Background(), port.CompletionRequest{Prompt: "x"})

	var provErr *completion.ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, completion.CodeRateLimited, provErr.Code)
	// Aggregate retry-after reflects the earliest circuit reset.
	assert.LessOrEqual(t, provErr.RetryAfter.Seconds(), float64(30))
}

func TestFallback_NonRateLimitFailuresAggregate(t *testing.T) {
	primary, secondary, fc := fallbackPair()
	primary.On("Complete", mock.Anything, mock.Anything).
		Return(nil, completion.NewProviderError("openai", completion.CodeUnavailable, errors.New("502"))).Once()
	secondary.On("Complete", mock.Anything, mock.Anything).
		Return(nil, completion.NewProviderError("anthropic", completion.CodeBadResponse, errors.New("garbage"))).Once()

	_, err := fc.Complete(context.Background(), port.CompletionRequest{Prompt: "x"})

	require.Error(t, err)
	var provErr *completion.ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, completion.CodeBadResponse, provErr.Code)
}
