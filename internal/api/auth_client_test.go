package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeTokens struct {
	mu         sync.Mutex
	token      string
	next       string
	refreshErr error
	refreshes  int
	logouts    int
}

func (f *fakeTokens) AccessToken() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token
}

func (f *fakeTokens) Refresh(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshes++
	if f.refreshErr != nil {
		f.token = ""
		return f.refreshErr
	}
	f.token = f.next
	return nil
}

func (f *fakeTokens) Logout(ctx context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logouts++
	f.token = ""
}

// recordingServer answers with statuses in order and records each bearer header
type recordingServer struct {
	mu       sync.Mutex
	statuses []int
	bodies   []string
	auths    []string
	reqIDs   []string
}

func (s *recordingServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := len(s.auths)
	s.auths = append(s.auths, r.Header.Get("Authorization"))
	s.reqIDs = append(s.reqIDs, r.Header.Get("X-Request-ID"))

	status := http.StatusOK
	if i < len(s.statuses) {
		status = s.statuses[i]
	}
	body := `{}`
	if i < len(s.bodies) {
		body = s.bodies[i]
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(body))
}

func (s *recordingServer) hits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.auths)
}

func newAuthClient(t *testing.T, srv http.Handler, tokens TokenSource, opts ...AuthOption) *AuthClient {
	t.Helper()
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return NewAuthClient(NewClient(ts.URL), tokens, opts...)
}

func TestAuthClient_AttachesBearer(t *testing.T) {
	srv := &recordingServer{bodies: []string{`{"ok":true}`}}
	client := newAuthClient(t, srv, &fakeTokens{token: "access-1"})

	var out struct{ OK bool }
	require.NoError(t, client.DoJSON(context.Background(), Request{Method: http.MethodGet, Path: "/v1/users"}, &out))

	require.True(t, out.OK)
	require.Equal(t, []string{"Bearer access-1"}, srv.auths)
	require.NotEmpty(t, srv.reqIDs[0])
}

func TestAuthClient_NoTokenSendsNoHeader(t *testing.T) {
	srv := &recordingServer{}
	client := newAuthClient(t, srv, &fakeTokens{})

	_, err := client.Do(context.Background(), Request{Method: http.MethodGet, Path: "/v1/users"})
	require.NoError(t, err)
	require.Equal(t, []string{""}, srv.auths)
}

func TestAuthClient_RefreshAndRetryOnce(t *testing.T) {
	srv := &recordingServer{
		statuses: []int{http.StatusUnauthorized, http.StatusOK},
		bodies:   []string{`{"message":"token expired"}`, `[{"name":"Fixer.io"}]`},
	}
	tokens := &fakeTokens{token: "old", next: "new"}
	client := newAuthClient(t, srv, tokens)

	resp, err := client.Do(context.Background(), Request{Method: http.MethodGet, Path: "/v1/users/search"})
	require.NoError(t, err)

	require.Equal(t, `[{"name":"Fixer.io"}]`, string(resp.Body))
	require.Equal(t, 1, tokens.refreshes)
	require.Zero(t, tokens.logouts)
	require.Equal(t, []string{"Bearer old", "Bearer new"}, srv.auths)
	require.NotEqual(t, srv.reqIDs[0], srv.reqIDs[1])
}

func TestAuthClient_RetryKeepsRequestBody(t *testing.T) {
	var bodies []string
	calls := 0
	srv := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf, _ := io.ReadAll(r.Body)
		bodies = append(bodies, string(buf))
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{}`))
	})
	client := newAuthClient(t, srv, &fakeTokens{token: "old", next: "new"})

	_, err := client.Do(context.Background(), Request{Method: http.MethodPost, Path: "/v1/users", Body: map[string]string{"name": "CurrencyLayer"}})
	require.NoError(t, err)
	require.Len(t, bodies, 2)
	require.Equal(t, bodies[0], bodies[1])
	require.Contains(t, bodies[1], "CurrencyLayer")
}

func TestAuthClient_RefreshFailureLogsOut(t *testing.T) {
	srv := &recordingServer{statuses: []int{http.StatusUnauthorized}}
	refreshErr := errors.New("Failed to refresh token")
	tokens := &fakeTokens{token: "old", refreshErr: refreshErr}

	var hookErr error
	hookCalls := 0
	client := newAuthClient(t, srv, tokens, OnSessionExpired(func(err error) {
		hookCalls++
		hookErr = err
	}))

	_, err := client.Do(context.Background(), Request{Method: http.MethodGet, Path: "/v1/users"})
	require.Error(t, err)
	require.ErrorIs(t, err, refreshErr)
	require.ErrorIs(t, err, ErrSessionExpired)

	require.Equal(t, 1, srv.hits(), "original request must not be retried")
	require.Equal(t, 1, tokens.refreshes)
	require.Equal(t, 1, tokens.logouts)
	require.Equal(t, 1, hookCalls)
	require.ErrorIs(t, hookErr, refreshErr)
}

func TestAuthClient_SecondUnauthorizedIsNotRetried(t *testing.T) {
	srv := &recordingServer{
		statuses: []int{http.StatusUnauthorized, http.StatusUnauthorized, http.StatusOK},
		bodies:   []string{`{}`, `{"message":"still no"}`},
	}
	tokens := &fakeTokens{token: "old", next: "new"}
	client := newAuthClient(t, srv, tokens)

	_, err := client.Do(context.Background(), Request{Method: http.MethodGet, Path: "/v1/users"})
	require.Error(t, err)
	require.True(t, IsUnauthorized(err))
	require.Contains(t, err.Error(), "still no")
	require.Equal(t, 2, srv.hits())
	require.Equal(t, 1, tokens.refreshes)
}

func TestAuthClient_OtherFailuresSurfaceUnchanged(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"server error with message", http.StatusInternalServerError, `{"message":"database down"}`, "database down"},
		{"forbidden", http.StatusForbidden, `{"message":"forbidden"}`, "forbidden"},
		{"not found without body", http.StatusNotFound, ``, "Request failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := &recordingServer{statuses: []int{tt.status}, bodies: []string{tt.body}}
			tokens := &fakeTokens{token: "t"}
			client := newAuthClient(t, srv, tokens)

			_, err := client.Do(context.Background(), Request{Method: http.MethodGet, Path: "/v1/users"})

			var apiErr *Error
			require.ErrorAs(t, err, &apiErr)
			require.Equal(t, tt.status, apiErr.Status)
			require.Equal(t, tt.wantMsg, apiErr.Message)
			require.Equal(t, 1, srv.hits())
			require.Zero(t, tokens.refreshes)
		})
	}
}

func TestAuthClient_TransportErrorNotRetried(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	ts.Close()

	tokens := &fakeTokens{token: "t"}
	client := NewAuthClient(NewClient(ts.URL), tokens)

	_, err := client.Do(context.Background(), Request{Method: http.MethodGet, Path: "/v1/users"})
	require.Error(t, err)
	require.Zero(t, tokens.refreshes)
}
