package liqpay

import (
	"errors"
	"fmt"
)

// ErrSignatureMismatch is wrapped by the [*ValidationError] returned when a
// callback signature does not match its payload.
var ErrSignatureMismatch = errors.New("liqpay: signature mismatch")

// ValidationError reports a parameter that is missing, malformed or out
// of range. It is returned before any signing or network work happens.
type ValidationError struct {
	Field  string
	Reason string
}

func newValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("liqpay: invalid param %q", e.Field)
	}
	return fmt.Sprintf("liqpay: invalid param %q: %s", e.Field, e.Reason)
}

// Unwrap exposes [ErrSignatureMismatch] for signature failures.
func (e *ValidationError) Unwrap() error {
	if e.Field == "signature" {
		return ErrSignatureMismatch
	}
	return nil
}

// TransportError reports a remote call that could not complete or whose
// response was not JSON. StatusCode is zero when no response arrived.
type TransportError struct {
	Method     string
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("liqpay: %s %s: status %d: %v", e.Method, e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("liqpay: %s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// DecodeStage names the step of callback decoding that failed.
type DecodeStage string

const (
	DecodeStageBase64 DecodeStage = "base64"
	DecodeStageJSON   DecodeStage = "json"
)

// DecodeError reports a corrupted or tampered callback payload.
type DecodeError struct {
	Stage DecodeStage
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("liqpay: decode %s: %v", e.Stage, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
