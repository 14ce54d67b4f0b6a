package liqpay

import (
	"net/http"
)

// ErrorType classifies an error returned by [CallbackHandler].
type ErrorType string

const (
	InvalidRequest  ErrorType = "invalid_request"  // Missing or malformed callback field.
	Unauthorized    ErrorType = "unauthorized"     // Callback could not be attributed to this merchant.
	ProcessingError ErrorType = "processing_error" // Provider or internal failure.
)

// ErrorCode is a machine-readable identifier for the specific failure.
type ErrorCode string

const (
	SignatureRequired ErrorCode = "signature_required" // The signature form field was empty.
	InvalidSignature  ErrorCode = "invalid_signature"  // Signature does not match the data payload.
	InvalidPublicKey  ErrorCode = "invalid_public_key" // Payload was issued for another merchant.
	MalformedPayload  ErrorCode = "malformed_payload"  // data is not base64 JSON.
)

// HTTPError is the JSON error body written by [CallbackHandler]. Providers
// may return one to control the response status.
type HTTPError struct {
	Type    ErrorType `json:"type"`
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Param   *string   `json:"param,omitempty"`

	status int
}

func (e *HTTPError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// StatusCode is the HTTP status written for e.
func (e *HTTPError) StatusCode() int {
	if e == nil || e.status == 0 {
		return http.StatusInternalServerError
	}
	return e.status
}

type errorOption func(*HTTPError)

// WithOffendingParam names the form field that triggered the error.
func WithOffendingParam(name string) errorOption {
	return func(er *HTTPError) {
		er.Param = &name
	}
}

// WithStatusCode overrides the HTTP status code returned to the client.
func WithStatusCode(status int) errorOption {
	return func(er *HTTPError) {
		er.status = status
	}
}

// NewInvalidRequestError builds a Bad Request error payload.
func NewInvalidRequestError(message string, opts ...errorOption) *HTTPError {
	return newHTTPError(InvalidRequest, ErrorCode(InvalidRequest), message, append([]errorOption{WithStatusCode(http.StatusBadRequest)}, opts...)...)
}

// NewUnauthorizedError builds an Unauthorized error payload with code.
func NewUnauthorizedError(code ErrorCode, message string, opts ...errorOption) *HTTPError {
	return newHTTPError(Unauthorized, code, message, append([]errorOption{WithStatusCode(http.StatusUnauthorized)}, opts...)...)
}

// NewProcessingError builds an Internal Server Error payload.
func NewProcessingError(message string, opts ...errorOption) *HTTPError {
	return newHTTPError(ProcessingError, ErrorCode(ProcessingError), message, append([]errorOption{WithStatusCode(http.StatusInternalServerError)}, opts...)...)
}

// NewHTTPError allows callers to control the status code explicitly.
func NewHTTPError(status int, typ ErrorType, code ErrorCode, message string, opts ...errorOption) *HTTPError {
	return newHTTPError(typ, code, message, append(opts, WithStatusCode(status))...)
}

func newHTTPError(typ ErrorType, code ErrorCode, message string, opts ...errorOption) *HTTPError {
	errPayload := &HTTPError{
		Type:    typ,
		Code:    code,
		Message: message,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(errPayload)
	}
	return errPayload
}
