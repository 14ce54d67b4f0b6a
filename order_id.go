package liqpay

import (
	"github.com/google/uuid"
)

// NewOrderID returns a random merchant order id suitable for the
// "order_id" parameter.
func NewOrderID() string {
	return uuid.NewString()
}
