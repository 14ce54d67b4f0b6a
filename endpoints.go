package liqpay

// DefaultBaseURL is the production API root.
const DefaultBaseURL = "https://www.liqpay.ua/api/"

// Paths relative to the base URL.
const (
	EndpointCheckout  = "3/checkout/"
	EndpointLegacyPay = "pay/"
	EndpointRequest   = "request"
)

// API actions used by the convenience helpers.
const (
	ActionPay    = "pay"
	ActionStatus = "status"
	ActionRefund = "refund"
)

// APIVersion is sent as "version" by [Client.Status] and [Client.Refund].
const APIVersion = 3
