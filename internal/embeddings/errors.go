package embeddings

import (
	"errors"
	"fmt"
)

var (
	// ErrInputTooLong is returned when a sentence exceeds the model's positional limit.
	ErrInputTooLong = errors.New("input exceeds maximum sequence length")
	// ErrInvalidInput is returned when the tokenizer or model rejects the input.
	ErrInvalidInput = errors.New("input rejected by model")
	// ErrProviderUnavailable covers transport failures and upstream server errors.
	ErrProviderUnavailable = errors.New("embedding provider unavailable")
)

// ProviderError carries the status and message returned by a remote provider.
type ProviderError struct {
	StatusCode int
	Type       string
	Message    string
}

func (e *ProviderError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("provider error %d (%s): %s", e.StatusCode, e.Type, e.Message)
	}
	return fmt.Sprintf("provider error %d: %s", e.StatusCode, e.Message)
}

// Unwrap classifies the error: 4xx means the input was refused, anything
// else means the provider could not serve the request.
func (e *ProviderError) Unwrap() error {
	switch {
	case e.StatusCode == 413:
		return ErrInputTooLong
	case e.StatusCode >= 400 && e.StatusCode < 500:
		return ErrInvalidInput
	default:
		return ErrProviderUnavailable
	}
}
