package liqpay

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/liqpay/liqpay-go/internal/transport"
)

type config struct {
	baseURL    string
	protocol   *Protocol
	httpClient *http.Client
	logger     *slog.Logger
}

// Option customizes a [Client].
type Option func(*config)

// WithBaseURL overrides the API root, e.g. for a sandbox or test server.
// A trailing slash is added when missing.
func WithBaseURL(baseURL string) Option {
	if _, err := transport.ParseBaseURL(baseURL); err != nil {
		panic(fmt.Sprintf("liqpay: invalid base url: %v", err))
	}
	return func(cfg *config) {
		cfg.baseURL = baseURL
	}
}

// WithProtocol selects the signing convention. Defaults to [ProtocolV3].
func WithProtocol(p *Protocol) Option {
	if p == nil {
		panic("liqpay: protocol must not be nil")
	}
	return func(cfg *config) {
		cfg.protocol = p
	}
}

// WithHTTPClient replaces the *http.Client used by [Client.API].
func WithHTTPClient(c *http.Client) Option {
	return func(cfg *config) {
		cfg.httpClient = c
	}
}

// WithLogger sets the logger for request diagnostics. Records never carry
// the private key or signatures.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}

type handlerConfig struct {
	path       string
	middleware []Middleware
	logger     *slog.Logger
}

// Middleware wraps the callback handler.
type Middleware func(http.HandlerFunc) http.HandlerFunc

func applyMiddleware(h http.HandlerFunc, middleware ...Middleware) http.HandlerFunc {
	for _, m := range middleware {
		h = m(h)
	}
	return h
}

// HandlerOption customizes a [CallbackHandler].
type HandlerOption func(*handlerConfig)

// WithCallbackPath sets the route the handler serves. Defaults to
// [DefaultCallbackPath].
func WithCallbackPath(path string) HandlerOption {
	if path == "" || path[0] != '/' {
		panic("liqpay: callback path must start with /")
	}
	return func(cfg *handlerConfig) {
		cfg.path = path
	}
}

// WithMiddleware appends custom middleware in the order provided.
func WithMiddleware(mw ...Middleware) HandlerOption {
	return func(cfg *handlerConfig) {
		for _, m := range mw {
			if m == nil {
				continue
			}
			cfg.middleware = append(cfg.middleware, m)
		}
	}
}

// WithHandlerLogger sets the logger used for callback diagnostics.
func WithHandlerLogger(logger *slog.Logger) HandlerOption {
	return func(cfg *handlerConfig) {
		cfg.logger = logger
	}
}
