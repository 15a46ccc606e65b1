package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"shotcraft/pkg/logger"
)

const (
	// defaultHTTPTimeout is the per-request timeout used by the client.
	defaultHTTPTimeout = 15 * time.Second
)

// TokenSource supplies the current bearer token, if any.
type TokenSource func() (token string, ok bool)

// UnauthorizedHandler is invoked once per 401 response, before the error is
// returned to the caller. The session-expired policy (clear credential, notify,
// return to login) is defined in exactly one registered handler rather than at
// every call site.
type UnauthorizedHandler func()

// Client talks to the ShotCraft backend over HTTP.
//
// All operations attach `Authorization: Bearer <token>` when the token source
// yields one, convert non-2xx responses into *Error values, and route 401s
// through the registered UnauthorizedHandler.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	tokenSource    TokenSource
	onUnauthorized UnauthorizedHandler
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTokenSource sets the bearer token source.
func WithTokenSource(src TokenSource) Option {
	return func(c *Client) { c.tokenSource = src }
}

// WithUnauthorizedHandler registers the shared 401 handler.
func WithUnauthorizedHandler(h UnauthorizedHandler) Option {
	return func(c *Client) { c.onUnauthorized = h }
}

// NewClient creates a backend client for the given base URL.
//
// The client expects a URL without a trailing slash, because request paths are
// joined as `baseURL + "/..."`.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetUnauthorizedHandler registers the shared 401 handler after construction.
// Used to break the construction cycle between the client and the auth session.
func (c *Client) SetUnauthorizedHandler(h UnauthorizedHandler) {
	c.onUnauthorized = h
}

// doRequest performs one HTTP request and returns the raw response body.
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, contentType string, body io.Reader) ([]byte, error) {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.tokenSource != nil {
		if token, ok := c.tokenSource(); ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	if method != http.MethodGet {
		req.Header.Set("X-Request-ID", uuid.NewString())
	}

	logger.Tracef("%s %s", method, reqURL)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := errorFromResponse(resp.StatusCode, respBody, resp.Header)
		if resp.StatusCode == http.StatusUnauthorized && c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		logger.Debugf("%s %s failed: status=%d detail=%q", method, path, resp.StatusCode, apiErr.Detail)
		return nil, apiErr
	}

	return respBody, nil
}

// getJSON performs a GET request and decodes the JSON response into out.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	body, err := c.doRequest(ctx, http.MethodGet, path, query, "", nil)
	if err != nil {
		return err
	}
	return decodeJSON(body, out)
}

// postJSON performs a POST request with a JSON payload and decodes the
// response into out (when out is non-nil).
func (c *Client) postJSON(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	respBody, err := c.doRequest(ctx, http.MethodPost, path, nil, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return decodeJSON(respBody, out)
}

// postForm performs a POST request with a url-encoded form body.
func (c *Client) postForm(ctx context.Context, path string, form url.Values, out any) error {
	respBody, err := c.doRequest(ctx, http.MethodPost, path, nil, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return decodeJSON(respBody, out)
}

// postMultipart performs a POST request with a multipart form built by fill.
func (c *Client) postMultipart(ctx context.Context, path string, fill func(*multipart.Writer) error, out any) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := fill(mw); err != nil {
		return fmt.Errorf("build multipart body: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("finalize multipart body: %w", err)
	}

	respBody, err := c.doRequest(ctx, http.MethodPost, path, nil, mw.FormDataContentType(), &buf)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return decodeJSON(respBody, out)
}

func encodeJSONBody(payload any) (io.Reader, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	return bytes.NewReader(body), nil
}

func decodeJSON(body []byte, out any) error {
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}
