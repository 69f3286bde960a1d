// Package client talks to the FeedbackX backing store over HTTP.
//
// Every endpoint answers with a {"success": bool, "message": string} envelope
// plus endpoint-specific fields. Network failures surface as *TransportError,
// success=false answers as *APIError.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"
)

// Client is safe for concurrent use.
type Client struct {
	baseURL *url.URL
	base    *http.Client
	hc      *http.Client
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*options)

type options struct {
	hc     *http.Client
	token  string
	logger *slog.Logger
}

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.hc = hc }
}

// WithToken authenticates every request with a bearer token.
func WithToken(token string) Option {
	return func(o *options) { o.token = token }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// New returns a client for the store at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("client: invalid base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("client: base url %q must be absolute", baseURL)
	}
	o := options{hc: http.DefaultClient, logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.hc == nil {
		o.hc = http.DefaultClient
	}
	hc := o.hc
	if o.token != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, o.hc)
		hc = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: o.token, TokenType: "Bearer"}))
	}
	return &Client{baseURL: u, base: o.hc, hc: hc, logger: o.logger}, nil
}

// WithToken returns a copy of c that authenticates with token.
func (c *Client) WithToken(token string) (*Client, error) {
	return New(c.baseURL.String(), WithHTTPClient(c.base), WithToken(token), WithLogger(c.logger))
}

// envelope is embedded in every response body.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

func (e *envelope) ok() (bool, string) { return e.Success, e.Message }

type enveloped interface {
	ok() (bool, string)
}

func (c *Client) endpoint(query url.Values, segments ...string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	u := *c.baseURL
	u.RawPath = strings.TrimRight(u.EscapedPath(), "/") + "/" + strings.Join(escaped, "/")
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.Join(segments, "/")
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

func (c *Client) do(ctx context.Context, op, method, target string, body any, out enveloped) error {
	var rdr io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("client: %s: encode request: %w", op, err)
		}
		rdr = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, rdr)
	if err != nil {
		return fmt.Errorf("client: %s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()
	c.logger.DebugContext(ctx, "store request", "op", op, "method", method, "url", target, "status", resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return &APIError{Op: op, Status: resp.StatusCode, Message: fallbackMessage(resp.StatusCode, raw)}
		}
		return &TransportError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	if success, msg := out.ok(); !success {
		if msg == "" {
			msg = fallbackMessage(resp.StatusCode, raw)
		}
		return &APIError{Op: op, Status: resp.StatusCode, Message: msg}
	}
	return nil
}

func fallbackMessage(status int, raw []byte) string {
	if s := strings.TrimSpace(string(raw)); s != "" && len(s) < 200 && !strings.HasPrefix(s, "{") {
		return s
	}
	if s := http.StatusText(status); s != "" {
		return s
	}
	return "request failed"
}

// IsUnauthorized reports whether err is a 401 from the store, meaning the
// token is missing or expired.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}
