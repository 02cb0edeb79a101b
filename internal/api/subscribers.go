package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/studiowebux/fxdash/internal/types"
)

// SubscriberService reads and removes subscribers
type SubscriberService struct {
	api *AuthClient
}

// NewSubscriberService creates a subscriber service on top of api
func NewSubscriberService(api *AuthClient) *SubscriberService {
	return &SubscriberService{api: api}
}

// List returns every subscriber
func (s *SubscriberService) List(ctx context.Context) ([]types.Subscriber, error) {
	return s.Search(ctx, SearchParams{})
}

// Search returns subscribers matching params
func (s *SubscriberService) Search(ctx context.Context, params SearchParams) ([]types.Subscriber, error) {
	var out []types.Subscriber
	req := Request{Method: http.MethodGet, Path: searchPath, Query: params.values(roleSubscriber)}
	if err := s.api.DoJSON(ctx, req, &out); err != nil {
		return nil, err
	}
	for i := range out {
		if err := Validate(out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Delete removes subscriber id
func (s *SubscriberService) Delete(ctx context.Context, id string) error {
	req := Request{Method: http.MethodDelete, Path: usersPath + "/" + url.PathEscape(id)}
	return s.api.DoJSON(ctx, req, nil)
}
