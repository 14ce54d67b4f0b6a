// Package liqpay is a Go client for the LiqPay payment API. It builds
// signed request payloads, renders HTML checkout forms, calls the remote
// API and verifies callback notifications.
//
// # Signing
//
// Every request is a parameter set serialized as compact JSON with keys
// sorted byte-wise, encoded as base64 and signed with
// base64(sha1(private_key + data + private_key)). Serialization is
// deterministic, so equal parameter sets always produce equal payloads
// and signatures. The building blocks live in the signature package.
//
// # Checkout forms
//
// [Client.CNBForm] validates the parameters in a fixed order (amount,
// currency, description, then version and action for versioned
// protocols), applies defaults for language, currency aliases and the
// sandbox flag, and renders the form. A failure is a [*ValidationError]
// naming the first offending field.
//
// # Protocols
//
// LiqPay has shipped several signing conventions. [ProtocolV3] posts raw
// JSON to the API and base64 JSON in forms, [ProtocolV3Encoded] uses
// base64 JSON for both, and [ProtocolLegacy] renders the pre-v3 "pay"
// form signed over a fixed list of fields. Select one with
// [WithProtocol].
//
// # Callbacks
//
// [Client.DecodeCallback] checks the signature of the still-encoded
// payload before decoding it. [NewCallbackHandler] exposes the same check
// over net/http and passes a typed [Callback] to a [CallbackProvider].
package liqpay
