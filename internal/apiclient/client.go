// Package apiclient is the authenticated client for the placement backend.
// Every call gets the session's bearer token attached, and a 401 tears the
// session down before the error reaches the caller.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/placementcell/portal/internal/metrics"
	"github.com/placementcell/portal/internal/session"
)

const (
	bearerPrefix    = "Bearer "
	jsonContentType = "application/json"
)

// Client represents an HTTP client for the placement backend API
type Client struct {
	baseURL    string
	httpClient *http.Client
	session    *session.Store
	logger     zerolog.Logger
}

// New creates a new API client bound to a session store
func New(baseURL string, store *session.Store, logger zerolog.Logger) (*Client, error) {
	if baseURL == "" {
		return nil, ErrMissingBaseURL
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		session: store,
		logger:  logger,
	}, nil
}

// SetHTTPClient sets a custom HTTP client
func (c *Client) SetHTTPClient(httpClient *http.Client) {
	c.httpClient = httpClient
}

// WithSession returns a copy of the client bound to another session store.
// The server uses this to serve each browser with its own session.
func (c *Client) WithSession(store *session.Store) *Client {
	clone := *c
	clone.session = store
	return &clone
}

// Session returns the store the client reads tokens from
func (c *Client) Session() *session.Store {
	return c.session
}

// RequestOptions are the standard request options of a call.
//
// Body may be nil, a *MultipartBody, an io.Reader or []byte (sent as-is,
// binary), or any other value, which is encoded as JSON.
type RequestOptions struct {
	Method string
	Header http.Header
	Body   any
}

// Do sends an authenticated request to path and decodes a JSON response into out.
// out may be nil when the response body is not needed.
func (c *Client) Do(ctx context.Context, path string, opts RequestOptions, out any) error {
	return c.do(ctx, path, opts, out, true)
}

func (c *Client) do(ctx context.Context, path string, opts RequestOptions, out any, expireOn401 bool) error {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	var token string
	if c.session != nil {
		token = c.session.Token()
	}

	req, err := c.newRequest(ctx, method, path, opts, token)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().
			Err(err).
			Str("method", method).
			Str("endpoint", path).
			Msg("API request failed")
		metrics.APIRequests.WithLabelValues(method, metrics.OutcomeNetworkError).Inc()
		return &RequestError{
			Method:   method,
			Endpoint: path,
			Message:  genericFailureMessage,
			Err:      err,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized && expireOn401 {
		// Teardown completes before the caller sees the rejection
		if c.session != nil && c.session.Expire(context.WithoutCancel(ctx), token) {
			c.logger.Warn().Str("method", method).Str("endpoint", path).Msg("Session expired")
		}
		metrics.APIRequests.WithLabelValues(method, metrics.OutcomeSessionExpired).Inc()
		return ErrSessionExpired
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		reqErr := &RequestError{
			Method:   method,
			Endpoint: path,
			Status:   resp.StatusCode,
			Message:  errorMessage(body),
		}
		c.logger.Warn().
			Str("method", method).
			Str("endpoint", path).
			Int("status", resp.StatusCode).
			Str("message", reqErr.Message).
			Msg("API request rejected")
		metrics.APIRequests.WithLabelValues(method, metrics.OutcomeFailed).Inc()
		return reqErr
	}

	metrics.APIRequests.WithLabelValues(method, metrics.OutcomeOK).Inc()

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// newRequest builds the outbound request: default JSON content type unless
// the body is binary or multipart, caller headers on top, bearer token last.
func (c *Client) newRequest(ctx context.Context, method, path string, opts RequestOptions, token string) (*http.Request, error) {
	var (
		body        io.Reader
		contentType = jsonContentType
	)

	switch b := opts.Body.(type) {
	case nil:
	case *MultipartBody:
		reader, ct, err := b.encode()
		if err != nil {
			return nil, err
		}
		body, contentType = reader, ct
	case io.Reader:
		body, contentType = b, ""
	case []byte:
		body, contentType = bytes.NewReader(b), ""
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for key, values := range opts.Header {
		req.Header.Del(key)
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	if token != "" {
		req.Header.Set("Authorization", bearerPrefix+token)
	} else {
		req.Header.Del("Authorization")
	}
	req.Header.Set("Accept", jsonContentType)

	return req, nil
}
