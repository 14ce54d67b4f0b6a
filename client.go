package liqpay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/oapi-codegen/runtime"
	"github.com/shopspring/decimal"

	"github.com/liqpay/liqpay-go/internal/observability"
	"github.com/liqpay/liqpay-go/internal/transport"
	"github.com/liqpay/liqpay-go/signature"
)

// Client builds signed LiqPay requests for one merchant. It holds no
// mutable state and is safe for concurrent use.
type Client struct {
	publicKey  string
	privateKey string
	protocol   *Protocol
	verifier   signature.Verifier
	transport  *transport.HTTPClient
	log        *slog.Logger
}

// New returns a client for the merchant identified by publicKey.
func New(publicKey, privateKey string, opts ...Option) *Client {
	cfg := config{
		baseURL:  DefaultBaseURL,
		protocol: ProtocolV3,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = observability.NewNoopLogger()
	}

	var transportOpts []transport.Option
	if cfg.httpClient != nil {
		transportOpts = append(transportOpts, transport.WithClient(cfg.httpClient))
	}
	tr, err := transport.NewHTTPClient(cfg.baseURL, transportOpts...)
	if err != nil {
		// Option constructors validate the base URL.
		panic(err)
	}

	return &Client{
		publicKey:  publicKey,
		privateKey: privateKey,
		protocol:   cfg.protocol,
		verifier:   signature.SHA1Verifier{Secret: privateKey},
		transport:  tr,
		log:        cfg.logger,
	}
}

// PublicKey returns the merchant public key injected into every request.
func (c *Client) PublicKey() string { return c.publicKey }

// Protocol returns the signing convention in use.
func (c *Client) Protocol() *Protocol { return c.protocol }

// LogValue implements slog.LogValuer without exposing the private key.
func (c *Client) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("public_key", c.publicKey),
		slog.String("protocol", c.protocol.name),
	)
}

// CNBForm validates params and renders an HTML checkout form that posts
// the signed payload to LiqPay.
func (c *Client) CNBForm(params Params) (string, error) {
	normalized, err := c.normalize(params, opForm)
	if err != nil {
		return "", err
	}
	fields, err := c.protocol.formFields(c.privateKey, normalized)
	if err != nil {
		return "", err
	}
	action, err := c.transport.Resolve(c.protocol.formPath)
	if err != nil {
		return "", err
	}
	return renderForm(c.protocol, action, normalized.String("language"), fields)
}

// FormData validates params and returns the data and signature values a
// custom checkout form must post. The legacy protocol has no data blob and
// returns an error.
func (c *Client) FormData(params Params) (data, sig string, err error) {
	if c.protocol == ProtocolLegacy {
		return "", "", fmt.Errorf("liqpay: %s forms have no data payload", c.protocol)
	}
	normalized, err := c.normalize(params, opForm)
	if err != nil {
		return "", "", err
	}
	payload, err := encodedAPIPayload(c.privateKey, normalized)
	if err != nil {
		return "", "", err
	}
	return payload.Data, payload.Signature, nil
}

// CNBData returns the base64 canonical payload of params with the public
// key injected. No validation or defaulting is applied.
func (c *Client) CNBData(params Params) (string, error) {
	raw, err := canonicalize(c.prepareRaw(params))
	if err != nil {
		return "", err
	}
	return signature.Encode(raw), nil
}

// CNBSignature signs params the way [Client.CNBData] encodes them. With the
// legacy protocol it returns the per-field signature instead.
func (c *Client) CNBSignature(params Params) (string, error) {
	prepared := c.prepareRaw(params)
	if c.protocol == ProtocolLegacy {
		values := make([]string, len(legacySignatureFields))
		for i, key := range legacySignatureFields {
			values[i] = prepared.String(key)
		}
		return signature.SignFields(c.privateKey, values...), nil
	}
	data, err := c.CNBData(params)
	if err != nil {
		return "", err
	}
	return signature.Sign(c.privateKey, []byte(data)), nil
}

// StrToSign returns base64(sha1(s)).
func (c *Client) StrToSign(s string) string {
	return signature.SignString(s)
}

func (c *Client) prepareRaw(params Params) Params {
	prepared := c.prepare(params)
	coerceBools(prepared)
	exactFloats(prepared)
	return prepared
}

// API signs params and posts them to path, resolved against the base URL.
// Failures to reach the server or to parse its JSON reply are returned as
// [*TransportError].
func (c *Client) API(ctx context.Context, path string, params Params) (Response, error) {
	normalized, err := c.normalize(params, opAPI)
	if err != nil {
		return nil, err
	}
	payload, err := c.protocol.apiPayload(c.privateKey, normalized)
	if err != nil {
		return nil, err
	}
	form, err := runtime.MarshalForm(&payload, nil)
	if err != nil {
		return nil, fmt.Errorf("liqpay: encode form: %w", err)
	}
	target, err := c.transport.Resolve(path)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := c.transport.PostForm(ctx, path, form)
	if err != nil {
		c.log.DebugContext(ctx, "liqpay request failed", "url", target, "duration", time.Since(start), "error", err)
		return nil, &TransportError{Method: http.MethodPost, URL: target, Err: err}
	}
	c.log.DebugContext(ctx, "liqpay request", "url", target, "status", resp.StatusCode, "duration", time.Since(start))

	body, err := transport.ParseResponse(resp)
	if err != nil {
		terr := &TransportError{Method: http.MethodPost, URL: target, Err: err}
		var statusErr *transport.StatusError
		if errors.As(err, &statusErr) {
			terr.StatusCode = statusErr.StatusCode
		}
		return nil, terr
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var out Response
	if err := dec.Decode(&out); err != nil {
		return nil, &TransportError{
			Method:     http.MethodPost,
			URL:        target,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("decode response: %w", err),
		}
	}
	return out, nil
}

// Status queries the state of a payment by merchant order id.
func (c *Client) Status(ctx context.Context, orderID string) (Response, error) {
	if orderID == "" {
		return nil, newValidationError("order_id", "is required")
	}
	return c.API(ctx, EndpointRequest, Params{
		"action":   ActionStatus,
		"version":  APIVersion,
		"order_id": orderID,
	})
}

// Refund returns amount of a successful payment to the payer.
func (c *Client) Refund(ctx context.Context, orderID string, amount decimal.Decimal) (Response, error) {
	if orderID == "" {
		return nil, newValidationError("order_id", "is required")
	}
	if !amount.IsPositive() {
		return nil, newValidationError("amount", "must be a number greater than 0")
	}
	return c.API(ctx, EndpointRequest, Params{
		"action":   ActionRefund,
		"version":  APIVersion,
		"order_id": orderID,
		"amount":   amount,
	})
}

// DecodeData decodes a base64 JSON payload without checking its signature.
func (c *Client) DecodeData(data string) (Params, error) {
	raw, err := signature.Decode(data)
	if err != nil {
		return nil, &DecodeError{Stage: DecodeStageBase64, Err: err}
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var out Params
	if err := dec.Decode(&out); err != nil {
		return nil, &DecodeError{Stage: DecodeStageJSON, Err: err}
	}
	if dec.More() {
		return nil, &DecodeError{Stage: DecodeStageJSON, Err: errors.New("unexpected data after JSON object")}
	}
	if out == nil {
		return nil, &DecodeError{Stage: DecodeStageJSON, Err: errors.New("payload is not a JSON object")}
	}
	return out, nil
}

// DecodeCallback verifies sig against the still-encoded data and only then
// decodes it. A mismatch yields a [*ValidationError] for "signature" that
// wraps [ErrSignatureMismatch].
func (c *Client) DecodeCallback(data, sig string) (Params, error) {
	if err := c.verifier.Verify([]byte(data), sig); err != nil {
		return nil, newValidationError("signature", "does not match data")
	}
	return c.DecodeData(data)
}
