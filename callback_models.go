package liqpay

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// PaymentStatus defines model for Callback.Status.
type PaymentStatus string

// Final payment statuses.
const (
	StatusSuccess  PaymentStatus = "success"
	StatusFailure  PaymentStatus = "failure"
	StatusError    PaymentStatus = "error"
	StatusReversed PaymentStatus = "reversed"
	StatusSandbox  PaymentStatus = "sandbox"
)

// Statuses that require payer action or are still in flight.
const (
	StatusWaitAccept  PaymentStatus = "wait_accept"
	StatusWaitSecure  PaymentStatus = "wait_secure"
	StatusProcessing  PaymentStatus = "processing"
	Status3DSVerify   PaymentStatus = "3ds_verify"
	StatusOTPVerify   PaymentStatus = "otp_verify"
	StatusSubscribed  PaymentStatus = "subscribed"
	StatusUnsubscribe PaymentStatus = "unsubscribed"
)

// Callback is the typed view of a decoded server_url notification.
type Callback struct {
	Action        string          `json:"action"`
	Status        PaymentStatus   `json:"status" validate:"required"`
	Version       json.Number     `json:"version,omitempty"`
	PublicKey     string          `json:"public_key,omitempty"`
	OrderID       string          `json:"order_id,omitempty"`
	LiqpayOrderID string          `json:"liqpay_order_id,omitempty"`
	PaymentID     json.Number     `json:"payment_id,omitempty"`
	TransactionID json.Number     `json:"transaction_id,omitempty"`
	Type          string          `json:"type,omitempty"`
	Paytype       string          `json:"paytype,omitempty"`
	Description   string          `json:"description,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency,omitempty" validate:"omitempty,len=3"`
	AmountDebit   decimal.Decimal `json:"amount_debit"`
	CurrencyDebit string          `json:"currency_debit,omitempty"`

	SenderCommission   decimal.Decimal `json:"sender_commission"`
	ReceiverCommission decimal.Decimal `json:"receiver_commission"`
	AgentCommission    decimal.Decimal `json:"agent_commission"`

	SenderPhone     string `json:"sender_phone,omitempty"`
	SenderCardMask2 string `json:"sender_card_mask2,omitempty"`
	SenderCardBank  string `json:"sender_card_bank,omitempty"`
	SenderCardType  string `json:"sender_card_type,omitempty"`
	IP              string `json:"ip,omitempty"`
	Is3DS           bool   `json:"is_3ds,omitempty"`
	Info            string `json:"info,omitempty"`
	Language        string `json:"language,omitempty"`

	// CreateDate and EndDate are Unix milliseconds.
	CreateDate int64 `json:"create_date,omitempty"`
	EndDate    int64 `json:"end_date,omitempty"`

	ErrCode        string `json:"err_code,omitempty"`
	ErrDescription string `json:"err_description,omitempty"`

	// Raw holds every decoded field, including ones not mapped above.
	Raw Params `json:"-"`
}

// Successful reports whether the payment completed, in production or in
// sandbox mode.
func (c *Callback) Successful() bool {
	return c.Status == StatusSuccess || c.Status == StatusSandbox
}

// ParseCallback maps decoded callback params onto a [Callback] and
// validates it.
func ParseCallback(params Params) (*Callback, error) {
	raw, err := json.Marshal(map[string]any(params))
	if err != nil {
		return nil, fmt.Errorf("liqpay: encode callback: %w", err)
	}
	var cb Callback
	if err := json.Unmarshal(raw, &cb); err != nil {
		return nil, &DecodeError{Stage: DecodeStageJSON, Err: err}
	}
	if err := validateStruct(&cb); err != nil {
		return nil, err
	}
	cb.Raw = params.Clone()
	return &cb, nil
}
