/*
Package types defines core data structures shared across fxdash.

# Overview

The types package provides shared type definitions for:
  - Authentication (User, AuthTokens, AuthResponse)
  - Backend resources (Provider, Subscriber)
  - Local activity entries

# Authentication

AuthResponse is the body returned by login and refresh:

	{"user": {...}, "security": {"jwtAccessToken": "...", "jwtRefreshToken": "..."}}

AuthTokens is the unit of persistence. ExpiresAt is stored as Unix
milliseconds so records written by the web dashboard remain readable.

# Resources

Provider and Subscriber carry validator struct tags; the api package
validates them before sending and after decoding.
*/
package types
