package liqpay

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/oapi-codegen/runtime"

	"github.com/liqpay/liqpay-go/internal/observability"
)

// DefaultCallbackPath is the route served by [CallbackHandler] unless
// [WithCallbackPath] overrides it.
const DefaultCallbackPath = "/liqpay/callback"

// maxCallbackBody bounds the form body accepted from LiqPay.
const maxCallbackBody = 1 << 20

// CallbackProvider is implemented by business logic that reacts to
// verified payment notifications.
type CallbackProvider interface {
	HandleCallback(ctx context.Context, cb *Callback) error
}

// CallbackProviderFunc lifts bare functions into [CallbackProvider].
type CallbackProviderFunc func(ctx context.Context, cb *Callback) error

// HandleCallback delegates to the wrapped function.
func (f CallbackProviderFunc) HandleCallback(ctx context.Context, cb *Callback) error {
	return f(ctx, cb)
}

// CallbackHandler accepts the form-encoded data/signature notification
// LiqPay posts to server_url and hands verified payloads to a
// [CallbackProvider].
type CallbackHandler struct {
	client  *Client
	service CallbackProvider
	mux     *http.ServeMux
	cfg     handlerConfig
}

// NewCallbackHandler builds a [CallbackHandler] that verifies callbacks
// with client's private key.
func NewCallbackHandler(client *Client, service CallbackProvider, opts ...HandlerOption) *CallbackHandler {
	if client == nil {
		panic("liqpay: callback handler requires a client")
	}
	if service == nil {
		panic("liqpay: callback handler requires a provider")
	}
	cfg := handlerConfig{
		path: DefaultCallbackPath,
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
	h := &CallbackHandler{
		client:  client,
		service: service,
		mux:     http.NewServeMux(),
		cfg:     cfg,
	}
	h.registerRoutes(cfg.middleware...)
	return h
}

// Path is the route the handler serves.
func (h *CallbackHandler) Path() string { return h.cfg.path }

// ServeHTTP satisfies http.Handler.
func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestCtx := requestContextFromRequest(r)
	ctx := contextWithRequestContext(r.Context(), requestCtx)
	h.mux.ServeHTTP(w, r.WithContext(ctx))
}

func (h *CallbackHandler) registerRoutes(middleware ...Middleware) {
	h.mux.HandleFunc("POST "+h.cfg.path, applyMiddleware(h.handleCallback, middleware...))
}

func (h *CallbackHandler) handleCallback(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxCallbackBody)
	if err := r.ParseForm(); err != nil {
		writeJSONError(w, NewInvalidRequestError("malformed form body"))
		return
	}
	var form signedPayload
	if err := runtime.BindForm(&form, r.PostForm, nil, nil); err != nil {
		writeJSONError(w, NewInvalidRequestError(err.Error()))
		return
	}
	if form.Data == "" {
		writeJSONError(w, NewInvalidRequestError("data is required", WithOffendingParam("data")))
		return
	}
	if form.Signature == "" {
		writeJSONError(w, NewUnauthorizedError(SignatureRequired, "signature is required", WithOffendingParam("signature")))
		return
	}

	params, err := h.client.DecodeCallback(form.Data, form.Signature)
	if err != nil {
		h.cfg.logger.WarnContext(r.Context(), "liqpay callback rejected", "error", err)
		writeDecodeError(w, err)
		return
	}
	if pk := params.String("public_key"); pk != "" && pk != h.client.publicKey {
		writeJSONError(w, NewUnauthorizedError(InvalidPublicKey, "callback issued for another merchant", WithOffendingParam("public_key")))
		return
	}
	cb, err := ParseCallback(params)
	if err != nil {
		writeDecodeError(w, err)
		return
	}

	h.cfg.logger.DebugContext(r.Context(), "liqpay callback", slog.String("order_id", cb.OrderID), slog.String("status", string(cb.Status)))
	if err := h.service.HandleCallback(r.Context(), cb); err != nil {
		h.cfg.logger.ErrorContext(r.Context(), "liqpay callback provider failed", slog.String("order_id", cb.OrderID), "error", err)
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func writeDecodeError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrSignatureMismatch) {
		writeJSONError(w, NewUnauthorizedError(InvalidSignature, "signature does not match data", WithOffendingParam("signature")))
		return
	}
	var decodeErr *DecodeError
	if errors.As(err, &decodeErr) {
		writeJSONError(w, NewHTTPError(http.StatusBadRequest, InvalidRequest, MalformedPayload, decodeErr.Error(), WithOffendingParam("data")))
		return
	}
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		writeJSONError(w, NewInvalidRequestError(validationErr.Error(), WithOffendingParam(validationErr.Field)))
		return
	}
	writeServiceError(w, err)
}
