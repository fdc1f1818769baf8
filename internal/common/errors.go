package common

import (
	"errors"
	"fmt"
)

// Common application errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidState = errors.New("invalid document state")
)

// StorageError wraps a failure talking to the object store.
type StorageError struct {
	Key   string
	Cause error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Key, e.Cause)
}

func (e *StorageError) Unwrap() error { return e.Cause }

// ExtractionError wraps a failure turning blob bytes into text.
type ExtractionError struct {
	Cause error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("text extraction: %v", e.Cause)
}

func (e *ExtractionError) Unwrap() error { return e.Cause }

// GatewayError wraps a transport or HTTP failure against the LLM endpoint.
// Status is zero when the request never got a response.
type GatewayError struct {
	Status int
	Cause  error
}

func (e *GatewayError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("llm gateway: status %d: %v", e.Status, e.Cause)
	}
	return fmt.Sprintf("llm gateway: %v", e.Cause)
}

func (e *GatewayError) Unwrap() error { return e.Cause }

// NormalizationError reports that a raw LLM response body could not be
// turned into a typed payload. Slice carries the offending text span for
// diagnostics; it is empty when no candidate span was found.
type NormalizationError struct {
	Reason string
	Slice  string
	Cause  error
}

func (e *NormalizationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("normalize response: %s: %v", e.Reason, e.Cause)
	}
	return "normalize response: " + e.Reason
}

func (e *NormalizationError) Unwrap() error { return e.Cause }
