package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return NewClient(ts.URL + "/")
}

func TestClient_SignIn(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "/v1/auth/login", r.URL.Path)
			require.Equal(t, "application/json", r.Header.Get("Content-Type"))
			require.Empty(t, r.Header.Get("Authorization"))

			var creds map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
			require.Equal(t, "ada@example.com", creds["email"])
			require.Equal(t, "secret", creds["password"])

			w.Write([]byte(`{"user":{"id":"u-1","email":"ada@example.com"},"security":{"jwtAccessToken":"a","jwtRefreshToken":"r"}}`))
		})

		resp, err := client.SignIn(context.Background(), "ada@example.com", "secret")
		require.NoError(t, err)
		require.Equal(t, "u-1", resp.User.ID)
		require.Equal(t, "a", resp.Security.JWTAccessToken)
		require.Equal(t, "r", resp.Security.JWTRefreshToken)
	})

	t.Run("rejected with message", func(t *testing.T) {
		client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"message":"wrong password"}`))
		})

		_, err := client.SignIn(context.Background(), "ada@example.com", "nope")
		var apiErr *Error
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, "wrong password", apiErr.Message)
	})

	t.Run("rejected without body", func(t *testing.T) {
		client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
		})

		_, err := client.SignIn(context.Background(), "ada@example.com", "nope")
		var apiErr *Error
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, "Invalid credentials", apiErr.Message)
	})

	t.Run("missing tokens", func(t *testing.T) {
		client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"user":{"id":"u-1"},"security":{}}`))
		})

		_, err := client.SignIn(context.Background(), "ada@example.com", "secret")
		require.Error(t, err)
		require.Contains(t, err.Error(), "missing tokens")
	})
}

func TestClient_SignOut(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer a", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusInternalServerError)
	})

	err := client.SignOut(context.Background(), "a")
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "Failed to sign out", apiErr.Message)
}

func TestClient_RefreshToken(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/auth/refresh", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["refreshToken"] != "r-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"user":{"id":"u-1","email":"ada@example.com"},"security":{"jwtAccessToken":"a-2","jwtRefreshToken":"r-2"}}`))
	})

	resp, err := client.RefreshToken(context.Background(), "r-1")
	require.NoError(t, err)
	require.Equal(t, "a-2", resp.Security.JWTAccessToken)

	_, err = client.RefreshToken(context.Background(), "stale")
	require.True(t, IsUnauthorized(err))
}

func TestClient_CurrentUser(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "Bearer a", r.Header.Get("Authorization"))
		w.Write([]byte(`{"id":"u-1","email":"ada@example.com","name":"Ada"}`))
	})

	user, err := client.CurrentUser(context.Background(), "a")
	require.NoError(t, err)
	require.Equal(t, "Ada", user.Name)
}

func TestError_CredentialsRejected(t *testing.T) {
	for status, want := range map[int]bool{
		http.StatusBadRequest:          true,
		http.StatusUnauthorized:        true,
		http.StatusForbidden:           true,
		http.StatusInternalServerError: false,
		http.StatusBadGateway:          false,
	} {
		err := &Error{Status: status, Message: "x"}
		require.Equal(t, want, err.CredentialsRejected(), "status %d", status)
	}
}
