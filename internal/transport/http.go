package transport

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// StatusError is returned by [ParseResponse] for non-2xx responses.
type StatusError struct {
	StatusCode int
	Method     string
	URL        string
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s returned %d: %s", e.Method, e.URL, e.StatusCode, e.Message)
}

// HTTPClient posts form-encoded requests below a base URL. It performs a
// single attempt per call.
type HTTPClient struct {
	client  *http.Client
	baseURL *url.URL
}

// Option is a functional option for configuring HTTPClient.
type Option func(*HTTPClient)

// WithClient replaces the underlying *http.Client.
func WithClient(c *http.Client) Option {
	return func(h *HTTPClient) {
		if c != nil {
			h.client = c
		}
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(h *HTTPClient) {
		h.client.Timeout = d
	}
}

// NewHTTPClient parses baseURL and returns a client rooted at it. A missing
// trailing slash is added so relative paths resolve below the base path.
// Default configuration: timeout=30s.
func NewHTTPClient(baseURL string, opts ...Option) (*HTTPClient, error) {
	base, err := ParseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	c := &HTTPClient{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: base,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ParseBaseURL validates an absolute http(s) URL and normalizes its path to
// end with a slash.
func ParseBaseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("transport: parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("transport: base url %q must be absolute http(s)", raw)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("transport: base url %q has no host", raw)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u, nil
}

// Resolve joins path onto the base URL with RFC 3986 reference resolution.
func (c *HTTPClient) Resolve(path string) (string, error) {
	return ResolveReference(c.baseURL, path)
}

// ResolveReference joins ref onto base the way browsers resolve links.
func ResolveReference(base *url.URL, ref string) (string, error) {
	r, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("transport: parse path %q: %w", ref, err)
	}
	return base.ResolveReference(r).String(), nil
}

// PostForm sends form as an application/x-www-form-urlencoded POST body.
func (c *HTTPClient) PostForm(ctx context.Context, path string, form url.Values) (*http.Response, error) {
	target, err := c.Resolve(path)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("transport: creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	return c.client.Do(req)
}

// ParseResponse reads the response body and checks the status code.
// On success (2xx), it returns the raw body bytes.
func ParseResponse(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("transport: reading response body: %w", err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return body, nil
	}

	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}

	se := &StatusError{
		StatusCode: resp.StatusCode,
		Message:    msg,
	}
	if resp.Request != nil {
		se.Method = resp.Request.Method
		se.URL = resp.Request.URL.String()
	}
	return nil, se
}
