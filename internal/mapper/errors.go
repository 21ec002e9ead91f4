package mapper

import "fmt"

// MappingError indicates that the AI mapping service could not resolve a
// header: the external call failed, or the response did not carry the expected
// {field, confidence} shape. Callers recover locally; the error never aborts a
// document.
type MappingError struct {
	Header string
	Reason string
	Err    error
}

func (e *MappingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("mapping header %q: %s: %v", e.Header, e.Reason, e.Err)
	}
	return fmt.Sprintf("mapping header %q: %s", e.Header, e.Reason)
}

func (e *MappingError) Unwrap() error {
	return e.Err
}

func newMappingError(header, reason string, err error) *MappingError {
	return &MappingError{Header: header, Reason: reason, Err: err}
}
