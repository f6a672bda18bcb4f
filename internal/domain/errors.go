package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
)

// ValidationError reports user input that blocks a transition, e.g. a missing
// required form field. Message is shown to the user as is.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError builds a ValidationError with the given message.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

// RemoteRequestError wraps a failed call to the content API. Message holds the
// human-readable text returned by the API when there was one.
type RemoteRequestError struct {
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *RemoteRequestError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Op + " failed"
}

func (e *RemoteRequestError) Unwrap() error {
	return e.Err
}

// TokenizationError reports a failure to exchange card details for a payment token.
type TokenizationError struct {
	Message string
	Err     error
}

func (e *TokenizationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "payment tokenization failed"
}

func (e *TokenizationError) Unwrap() error {
	return e.Err
}
