package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/studiowebux/fxdash/internal/types"
)

// DefaultTimeout is used when no HTTP client is supplied
const DefaultTimeout = 30 * time.Second

// Request describes one backend call
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
}

// Response is a completed backend call
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Decode unmarshals the response body into v
func (r *Response) Decode(v any) error {
	if len(r.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// Client talks to the backend REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the request logger
func WithLogger(log zerolog.Logger) ClientOption {
	return func(c *Client) { c.log = log }
}

// NewClient creates a client for the API rooted at baseURL
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Send issues req with an optional bearer token. Transport failures are
// returned as errors; HTTP error statuses are returned in the Response.
func (c *Client) Send(ctx context.Context, req Request, accessToken string) (*Response, error) {
	var body io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	target := c.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	requestID := uuid.NewString()
	httpReq.Header.Set("X-Request-ID", requestID)

	if accessToken != "" {
		(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}).SetAuthHeader(httpReq)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.log.Debug().Err(err).Str("method", req.Method).Str("path", req.Path).Str("requestId", requestID).Msg("request failed")
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.Path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	c.log.Debug().
		Str("method", req.Method).
		Str("path", req.Path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Str("requestId", requestID).
		Msg("request completed")

	return &Response{Status: resp.StatusCode, Header: resp.Header, Body: data}, nil
}

// errorFromResponse builds an *Error, preferring the backend's message
func errorFromResponse(resp *Response, fallback string) *Error {
	var payload struct {
		Message string `json:"message"`
	}
	msg := fallback
	if err := json.Unmarshal(resp.Body, &payload); err == nil && payload.Message != "" {
		msg = payload.Message
	}
	return &Error{Status: resp.Status, Message: msg}
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

func (c *Client) authCall(ctx context.Context, req Request, accessToken, fallback string) (*types.AuthResponse, error) {
	resp, err := c.Send(ctx, req, accessToken)
	if err != nil {
		return nil, err
	}
	if !isSuccess(resp.Status) {
		return nil, errorFromResponse(resp, fallback)
	}

	var out types.AuthResponse
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	if out.Security.JWTAccessToken == "" || out.Security.JWTRefreshToken == "" {
		return nil, fmt.Errorf("auth response is missing tokens")
	}
	return &out, nil
}

// SignIn posts credentials to /v1/auth/login
func (c *Client) SignIn(ctx context.Context, email, password string) (*types.AuthResponse, error) {
	req := Request{
		Method: http.MethodPost,
		Path:   "/v1/auth/login",
		Body:   map[string]string{"email": email, "password": password},
	}
	return c.authCall(ctx, req, "", "Invalid credentials")
}

// SignOut notifies the backend of a logout
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	resp, err := c.Send(ctx, Request{Method: http.MethodPost, Path: "/v1/auth/logout"}, accessToken)
	if err != nil {
		return err
	}
	if !isSuccess(resp.Status) {
		return errorFromResponse(resp, "Failed to sign out")
	}
	return nil
}

// RefreshToken exchanges a refresh token for a new token pair
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*types.AuthResponse, error) {
	req := Request{
		Method: http.MethodPost,
		Path:   "/v1/auth/refresh",
		Body:   map[string]string{"refreshToken": refreshToken},
	}
	return c.authCall(ctx, req, "", "Failed to refresh token")
}

// CurrentUser fetches the identity behind accessToken
func (c *Client) CurrentUser(ctx context.Context, accessToken string) (*types.User, error) {
	resp, err := c.Send(ctx, Request{Method: http.MethodGet, Path: "/v1/auth/me"}, accessToken)
	if err != nil {
		return nil, err
	}
	if !isSuccess(resp.Status) {
		return nil, errorFromResponse(resp, "Failed to get current user")
	}

	var user types.User
	if err := resp.Decode(&user); err != nil {
		return nil, err
	}
	if err := validate.Var(user.Email, "required"); err != nil {
		return nil, &ValidationError{Fields: map[string]string{"email": "current user has no email"}}
	}
	return &user, nil
}
