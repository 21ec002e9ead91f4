package completion

import (
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// ErrorCode is a stable classification of a completion provider failure.
// Callers branch on codes, never on error-message substrings.
type ErrorCode string

const (
	CodeRateLimited ErrorCode = "rate_limited"
	CodeTimeout     ErrorCode = "timeout"
	CodeUnavailable ErrorCode = "unavailable"
	CodeBadResponse ErrorCode = "bad_response"
	CodeAuth        ErrorCode = "auth"
	CodeQuota       ErrorCode = "quota"
)

// ProviderError carries a typed failure from a completion provider.
type ProviderError struct {
	Provider   string
	Code       ErrorCode
	Err        error
	RetryAfter time.Duration
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s provider error (%s): %v", e.Provider, e.Code, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Recoverable reports whether the failure should leave the field unmapped
// rather than abort the document.
func (e *ProviderError) Recoverable() bool {
	switch e.Code {
	case CodeRateLimited, CodeTimeout, CodeUnavailable, CodeQuota, CodeBadResponse:
		return true
	}
	return false
}

// NewProviderError creates a ProviderError with the given classification.
func NewProviderError(provider string, code ErrorCode, err error) *ProviderError {
	return &ProviderError{Provider: provider, Code: code, Err: err}
}

// NewRateLimitError creates a rate-limit ProviderError. If retryAfterSecs is 0,
// defaults to 60s.
func NewRateLimitError(provider string, err error, retryAfterSecs int) *ProviderError {
	if retryAfterSecs <= 0 {
		retryAfterSecs = 60
	}
	return &ProviderError{
		Provider:   provider,
		Code:       CodeRateLimited,
		Err:        err,
		RetryAfter: time.Duration(retryAfterSecs) * time.Second,
	}
}

// ClassifyHTTPStatus maps a non-200 provider response to a typed error.
func ClassifyHTTPStatus(provider string, status int, body string, retryAfterHeader string) *ProviderError {
	baseErr := fmt.Errorf("%s API error (status %d): %s", provider, status, body)
	switch {
	case status == http.StatusTooManyRequests:
		return NewRateLimitError(provider, baseErr, ParseRetryAfterHeader(retryAfterHeader))
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return NewProviderError(provider, CodeAuth, baseErr)
	case status == http.StatusPaymentRequired:
		return NewProviderError(provider, CodeQuota, baseErr)
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return NewProviderError(provider, CodeTimeout, baseErr)
	case status >= 500:
		return NewProviderError(provider, CodeUnavailable, baseErr)
	default:
		return NewProviderError(provider, CodeBadResponse, baseErr)
	}
}

// ParseRetryAfterHeader parses a Retry-After header value into seconds.
// Returns 0 if the value is empty or not a valid integer.
func ParseRetryAfterHeader(val string) int {
	if val == "" {
		return 0
	}
	secs, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return secs
}
