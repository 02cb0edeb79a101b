package mock

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

const maxLogs = 1000

// Server is a development stand-in for the exchange-rate Backend API
type Server struct {
	config     *Config
	router     *mux.Router
	httpServer *http.Server
	store      *store
	tokens     *tokenIssuer
	log        zerolog.Logger
	now        func() time.Time

	logs      []RequestLog
	logsMutex sync.RWMutex
	notifyCh  chan struct{} // Channel to notify when new log arrives
}

// Option configures a Server
type Option func(*Server)

// WithLogger sets the server logger
func WithLogger(log zerolog.Logger) Option {
	return func(s *Server) { s.log = log }
}

// WithClock replaces time.Now for token issuing and validation
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// NewServer creates a mock backend from config
func NewServer(config *Config, opts ...Option) (*Server, error) {
	if config.Port == 0 {
		config.Port = 8080
	}
	if config.Host == "" {
		config.Host = "localhost"
	}
	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	s := &Server{
		config:   config,
		log:      zerolog.Nop(),
		now:      time.Now,
		logs:     make([]RequestLog, 0),
		notifyCh: make(chan struct{}, 100), // Buffered channel for notifications
	}
	for _, opt := range opts {
		opt(s)
	}

	st, err := newStore(config)
	if err != nil {
		return nil, err
	}
	s.store = st

	accessTTL, _ := config.accessTTL()
	refreshTTL, _ := config.refreshTTL()
	s.tokens, err = newTokenIssuer(config.Secret, accessTTL, refreshTTL, func() time.Time { return s.now() })
	if err != nil {
		return nil, err
	}

	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.logRequests)

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)
	v1.HandleFunc("/auth/refresh", s.handleRefresh).Methods(http.MethodPost)
	v1.Handle("/auth/logout", s.requireAuth(s.handleLogout)).Methods(http.MethodPost)
	v1.Handle("/auth/me", s.requireAuth(s.handleMe)).Methods(http.MethodGet)
	v1.Handle("/auth/me", s.requireAuth(s.handleDeleteMe)).Methods(http.MethodDelete)

	v1.Handle("/users", s.requireAuth(s.handleListUsers)).Methods(http.MethodGet)
	v1.Handle("/users", s.requireAuth(s.handleCreate)).Methods(http.MethodPost)
	// search must precede {id}
	v1.Handle("/users/search", s.requireAuth(s.handleSearch)).Methods(http.MethodGet)
	v1.Handle("/users/{id}", s.requireAuth(s.handleGet)).Methods(http.MethodGet)
	v1.Handle("/users/{id}", s.requireAuth(s.handleUpdate)).Methods(http.MethodPatch)
	v1.Handle("/users/{id}", s.requireAuth(s.handleDelete)).Methods(http.MethodDelete)

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("No route for %s %s", r.Method, r.URL.Path))
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, fmt.Sprintf("Method %s not allowed on %s", r.Method, r.URL.Path))
	})
	return r
}

// Handler exposes the router, for httptest servers
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on the configured address and serves in the background
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error().Err(err).Msg("mock server error")
		}
	}()

	s.log.Info().Str("addr", s.GetAddress()).Msg("mock backend listening")
	return nil
}

// Stop stops the mock server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.httpServer.Shutdown(ctx)
}

// GetAddress returns the server address
func (s *Server) GetAddress() string {
	return fmt.Sprintf("http://%s:%d", s.config.Host, s.config.Port)
}

// statusRecorder captures the status written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		var body []byte
		if r.Body != nil {
			body, _ = io.ReadAll(r.Body)
			r.Body.Close()
			r.Body = io.NopCloser(bytes.NewReader(body))
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		matched := "none"
		if route := mux.CurrentRoute(r); route != nil {
			if tpl, err := route.GetPathTemplate(); err == nil {
				matched = r.Method + " " + tpl
			}
		}

		duration := time.Since(start)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", duration).
			Msg("mock request")

		if s.config.Logging {
			s.logRequest(RequestLog{
				Timestamp:   start,
				Method:      r.Method,
				Path:        r.URL.Path,
				Headers:     flattenHeaders(r.Header),
				Body:        redactBody(body),
				MatchedRule: matched,
				Status:      rec.status,
				Duration:    duration,
			})
		}
	})
}

// logRequest adds a request to the log
func (s *Server) logRequest(log RequestLog) {
	s.logsMutex.Lock()
	defer s.logsMutex.Unlock()

	s.logs = append(s.logs, log)

	if len(s.logs) > maxLogs {
		s.logs = s.logs[len(s.logs)-maxLogs:]
	}

	// Notify listeners (non-blocking)
	select {
	case s.notifyCh <- struct{}{}:
	default:
	}
}

// NotifyChannel returns the notification channel
func (s *Server) NotifyChannel() <-chan struct{} {
	return s.notifyCh
}

// GetLogs returns all logged requests
func (s *Server) GetLogs() []RequestLog {
	s.logsMutex.RLock()
	defer s.logsMutex.RUnlock()

	logs := make([]RequestLog, len(s.logs))
	copy(logs, s.logs)
	return logs
}

// DrainLogs returns the logged requests and empties the log
func (s *Server) DrainLogs() []RequestLog {
	s.logsMutex.Lock()
	defer s.logsMutex.Unlock()

	logs := s.logs
	s.logs = make([]RequestLog, 0)
	return logs
}

// ClearLogs clears all logged requests
func (s *Server) ClearLogs() {
	s.logsMutex.Lock()
	defer s.logsMutex.Unlock()

	s.logs = make([]RequestLog, 0)
}

// flattenHeaders converts http.Header to map[string]string (first value only)
// and masks credentials
func flattenHeaders(headers http.Header) map[string]string {
	result := make(map[string]string)
	for key, values := range headers {
		if len(values) == 0 {
			continue
		}
		if strings.EqualFold(key, "Authorization") {
			result[key] = "Bearer ***"
			continue
		}
		result[key] = values[0]
	}
	return result
}

// redactBody hides password fields in logged request bodies
func redactBody(body []byte) string {
	if bytes.Contains(body, []byte(`"password"`)) {
		return `{"password":"***"}`
	}
	return string(body)
}
