package session

import "errors"

var (
	// ErrNoSession is returned by Refresh when no refresh token is stored
	ErrNoSession = errors.New("no refresh token available")

	// ErrInvalidCredentials wraps a rejected login
	ErrInvalidCredentials = errors.New("invalid credentials")
)
