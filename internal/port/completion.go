package port

import "context"

// CompletionRequest carries one prompt for the external completion/vision service.
// ImageBytes, when set, turns the call into a vision request; the provider is
// responsible for encoding the image into its own content-block format.
type CompletionRequest struct {
	System           string
	Prompt           string
	ImageBytes       []byte
	ImageContentType string
	MaxTokens        int
}

// CompletionResponse is the raw text result of a completion call.
type CompletionResponse struct {
	Text  string
	Model string
}

// CompletionClient abstracts a single request/response call to an external
// language-model service. Implementations must bound every call with a timeout
// and return a typed *completion.ProviderError for classifiable failures.
type CompletionClient interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}
