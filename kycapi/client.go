// Package kycapi is the HTTP transport to the KYC backend's REST API.
package kycapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-kyc-client/auth"
	"github.com/rs/zerolog"
)

var _ auth.API = (*Client)(nil)

const (
	requestIDHeader = "X-Request-ID"
	maxBodyBytes    = 1 << 20
)

// Client calls the backend. It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// ClientOption defines a function type to modify the Client instance.
type ClientOption func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(logger zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a client for the API rooted at baseURL, e.g. "http://localhost:8080/api".
func New(baseURL string, options ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		logger:     zerolog.Nop(),
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// WithAuthorizedClient returns a copy of c that sends requests through httpClient, typically
// the bearer token client from auth.Service.HTTPClient.
func (c *Client) WithAuthorizedClient(httpClient *http.Client) *Client {
	clone := *c
	clone.httpClient = httpClient
	return &clone
}

func (c *Client) Login(ctx context.Context, request auth.LoginRequest) (*auth.LoginResponse, error) {
	var response auth.LoginResponse
	if err := c.postJSON(ctx, "/auth/login", request, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

func (c *Client) Register(ctx context.Context, request auth.RegisterRequest) error {
	return c.postJSON(ctx, "/auth/register", request, nil)
}

func (c *Client) Refresh(ctx context.Context, request auth.RefreshRequest) (*auth.LoginResponse, error) {
	var response auth.LoginResponse
	if err := c.postJSON(ctx, "/auth/refresh", request, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("[kycapi %s] encode request: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("[kycapi %s] %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("[kycapi %s] %w", path, err)
	}
	return c.do(req, out)
}

// do sends req and decodes a 2xx JSON body into out when out is non-nil. Non-2xx responses
// become *APIError.
func (c *Client) do(req *http.Request, out any) error {
	requestID := uuid.NewString()
	req.Header.Set(requestIDHeader, requestID)
	req.Header.Set("Accept", "application/json")
	path := req.URL.Path

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Str("method", req.Method).Str("path", path).Str("request_id", requestID).Msg("request failed")
		return fmt.Errorf("[kycapi %s %s] %w", req.Method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("[kycapi %s %s] read body: %w", req.Method, path, err)
	}

	c.logger.Debug().
		Str("method", req.Method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Str("request_id", requestID).
		Msg("request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp, body, requestID)
	}

	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("[kycapi %s %s] decode response: %w", req.Method, path, err)
	}
	return nil
}
