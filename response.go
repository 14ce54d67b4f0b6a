package liqpay

import (
	"fmt"
)

// Response is the decoded JSON reply of an API call. Numbers are kept as
// json.Number.
type Response map[string]any

// Result returns the "result" field ("ok" or "error").
func (r Response) Result() string { return Params(r).String("result") }

// Status returns the payment "status" field, e.g. "success" or "failure".
func (r Response) Status() string { return Params(r).String("status") }

// APIError is a LiqPay-reported failure carried in a successful HTTP reply.
type APIError struct {
	Code        string
	Description string
	Status      string
}

func (e *APIError) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("liqpay: api error %s", e.Code)
	}
	return fmt.Sprintf("liqpay: api error %s: %s", e.Code, e.Description)
}

// Err returns an [*APIError] when the reply reports a failure and nil
// otherwise.
func (r Response) Err() error {
	status := r.Status()
	if r.Result() != "error" && PaymentStatus(status) != StatusError && PaymentStatus(status) != StatusFailure {
		return nil
	}
	p := Params(r)
	return &APIError{
		Code:        p.String("err_code"),
		Description: p.String("err_description"),
		Status:      status,
	}
}
