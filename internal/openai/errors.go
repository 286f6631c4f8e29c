package openai

import "errors"

// Kind classifies API client failures.
type Kind string

const (
	// KindUnconfigured means no API key is set; no network call was made.
	KindUnconfigured Kind = "unconfigured"
	// KindRemote means the endpoint answered with a non-success status.
	KindRemote Kind = "remote"
	// KindInvalidResponse means the body did not match the expected shape.
	KindInvalidResponse Kind = "invalid_response"
	// KindNetwork means the request never completed (timeout, DNS, ...).
	KindNetwork Kind = "network"
)

// APIError is the failure contract of the translation client. Code is the
// short machine-readable code recorded into run logs.
type APIError struct {
	Kind    Kind
	Code    string
	Message string
	cause   error
}

func newAPIError(kind Kind, code, message string, cause error) *APIError {
	return &APIError{
		Kind:    kind,
		Code:    code,
		Message: message,
		cause:   cause,
	}
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// AsAPIError unwraps err into an *APIError when possible.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
