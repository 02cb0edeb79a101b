package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
)

// TokenSource is the session view the authenticated client needs.
// *session.Manager satisfies it.
type TokenSource interface {
	AccessToken() string
	Refresh(ctx context.Context) error
	Logout(ctx context.Context)
}

// AuthClient sends bearer-authenticated requests and recovers from an
// expired access token by refreshing once and retrying once.
type AuthClient struct {
	client    *Client
	tokens    TokenSource
	onExpired func(error)
	log       zerolog.Logger
}

// AuthOption configures an AuthClient
type AuthOption func(*AuthClient)

// OnSessionExpired registers the hook run after a failed refresh, once the
// session has been logged out. Interactive front ends return to their login
// screen here.
func OnSessionExpired(fn func(error)) AuthOption {
	return func(a *AuthClient) { a.onExpired = fn }
}

// WithAuthLogger sets the logger for refresh and retry events
func WithAuthLogger(log zerolog.Logger) AuthOption {
	return func(a *AuthClient) { a.log = log }
}

// NewAuthClient wraps client with tokens from src
func NewAuthClient(client *Client, src TokenSource, opts ...AuthOption) *AuthClient {
	a := &AuthClient{
		client: client,
		tokens: src,
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Do sends req and returns the 2xx response. Non-2xx statuses become
// *Error; a 401 triggers at most one refresh and one retry.
func (a *AuthClient) Do(ctx context.Context, req Request) (*Response, error) {
	resp, err := a.client.Send(ctx, req, a.tokens.AccessToken())
	if err != nil {
		return nil, err
	}

	if resp.Status == http.StatusUnauthorized {
		a.log.Info().Str("path", req.Path).Msg("access token rejected, refreshing")

		if err := a.tokens.Refresh(ctx); err != nil {
			a.log.Warn().Err(err).Msg("refresh failed, logging out")
			a.tokens.Logout(ctx)
			if a.onExpired != nil {
				a.onExpired(err)
			}
			return nil, fmt.Errorf("%w: %w", ErrSessionExpired, err)
		}

		resp, err = a.client.Send(ctx, req, a.tokens.AccessToken())
		if err != nil {
			return nil, err
		}
	}

	if !isSuccess(resp.Status) {
		return nil, errorFromResponse(resp, "Request failed")
	}
	return resp, nil
}

// DoJSON sends req and decodes the response body into out when non-nil
func (a *AuthClient) DoJSON(ctx context.Context, req Request, out any) error {
	resp, err := a.Do(ctx, req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return resp.Decode(out)
}
