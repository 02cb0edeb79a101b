package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/studiowebux/fxdash/internal/types"
)

const (
	usersPath  = "/v1/users"
	searchPath = "/v1/users/search"

	roleProvider   = "provider"
	roleSubscriber = "subscriber"
)

// SearchParams narrows a search on the backend
type SearchParams struct {
	Query  string
	Status types.Status
}

func (p SearchParams) values(role string) url.Values {
	v := url.Values{}
	v.Set("role", role)
	if p.Query != "" {
		v.Set("q", p.Query)
	}
	if p.Status != "" {
		v.Set("status", string(p.Status))
	}
	return v
}

type providerPayload struct {
	types.Provider
	Role string `json:"role"`
}

// ProviderService manages exchange-rate providers
type ProviderService struct {
	api *AuthClient
}

// NewProviderService creates a provider service on top of api
func NewProviderService(api *AuthClient) *ProviderService {
	return &ProviderService{api: api}
}

// List returns every provider
func (s *ProviderService) List(ctx context.Context) ([]types.Provider, error) {
	return s.Search(ctx, SearchParams{})
}

// Search returns providers matching params
func (s *ProviderService) Search(ctx context.Context, params SearchParams) ([]types.Provider, error) {
	var out []types.Provider
	req := Request{Method: http.MethodGet, Path: searchPath, Query: params.values(roleProvider)}
	if err := s.api.DoJSON(ctx, req, &out); err != nil {
		return nil, err
	}
	for i := range out {
		if err := validatePartial(out[i], "Name"); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Get fetches one provider
func (s *ProviderService) Get(ctx context.Context, id string) (*types.Provider, error) {
	var out types.Provider
	req := Request{Method: http.MethodGet, Path: usersPath + "/" + url.PathEscape(id)}
	if err := s.api.DoJSON(ctx, req, &out); err != nil {
		return nil, err
	}
	if err := validatePartial(out, "Name"); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create validates p and creates it
func (s *ProviderService) Create(ctx context.Context, p types.Provider) (*types.Provider, error) {
	if err := Validate(p); err != nil {
		return nil, err
	}
	var out types.Provider
	req := Request{Method: http.MethodPost, Path: usersPath, Body: providerPayload{Provider: p, Role: roleProvider}}
	if err := s.api.DoJSON(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update validates p and patches provider id
func (s *ProviderService) Update(ctx context.Context, id string, p types.Provider) (*types.Provider, error) {
	if err := Validate(p); err != nil {
		return nil, err
	}
	var out types.Provider
	req := Request{Method: http.MethodPatch, Path: usersPath + "/" + url.PathEscape(id), Body: providerPayload{Provider: p, Role: roleProvider}}
	if err := s.api.DoJSON(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes provider id
func (s *ProviderService) Delete(ctx context.Context, id string) error {
	req := Request{Method: http.MethodDelete, Path: usersPath + "/" + url.PathEscape(id)}
	return s.api.DoJSON(ctx, req, nil)
}
