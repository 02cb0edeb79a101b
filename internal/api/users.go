package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/studiowebux/fxdash/internal/types"
)

// UserInput is the payload for creating or updating a user
type UserInput struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name,omitempty" validate:"max=100"`
	Password string `json:"password,omitempty" validate:"omitempty,min=8"`
}

// UserService manages backend user accounts
type UserService struct {
	api *AuthClient
}

// NewUserService creates a user service on top of api
func NewUserService(api *AuthClient) *UserService {
	return &UserService{api: api}
}

// List returns every user
func (s *UserService) List(ctx context.Context) ([]types.User, error) {
	var out []types.User
	if err := s.api.DoJSON(ctx, Request{Method: http.MethodGet, Path: usersPath}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get fetches user id
func (s *UserService) Get(ctx context.Context, id string) (*types.User, error) {
	var out types.User
	if err := s.api.DoJSON(ctx, Request{Method: http.MethodGet, Path: usersPath + "/" + url.PathEscape(id)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create validates in and creates a user
func (s *UserService) Create(ctx context.Context, in UserInput) (*types.User, error) {
	if err := Validate(in); err != nil {
		return nil, err
	}
	var out types.User
	if err := s.api.DoJSON(ctx, Request{Method: http.MethodPost, Path: usersPath, Body: in}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update validates in and patches user id
func (s *UserService) Update(ctx context.Context, id string, in UserInput) (*types.User, error) {
	if err := Validate(in); err != nil {
		return nil, err
	}
	var out types.User
	req := Request{Method: http.MethodPatch, Path: usersPath + "/" + url.PathEscape(id), Body: in}
	if err := s.api.DoJSON(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteMe deletes the authenticated account
func (s *UserService) DeleteMe(ctx context.Context) error {
	return s.api.DoJSON(ctx, Request{Method: http.MethodDelete, Path: "/v1/auth/me"}, nil)
}
