package mock

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/studiowebux/fxdash/internal/types"
)

var (
	errNotFound = errors.New("not found")
	errConflict = errors.New("already exists")
)

const (
	roleProvider   = "provider"
	roleSubscriber = "subscriber"
)

type ctxKey struct{}

func userIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

// requireAuth rejects requests without a valid bearer access token
func (s *Server) requireAuth(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		userID, err := s.tokens.verify(token)
		if err != nil {
			s.log.Debug().Err(err).Msg("rejected access token")
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		if _, ok := s.store.user(userID); !ok {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		next(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, userID)))
	})
}

func (s *Server) respondWithSession(w http.ResponseWriter, user types.User) {
	sec, err := s.tokens.issue(user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, types.AuthResponse{User: user, Security: sec})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, ok := s.store.authenticate(req.Email, req.Password)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	s.respondWithSession(w, user)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		writeError(w, http.StatusBadRequest, "Refresh token is required")
		return
	}

	userID, ok := s.tokens.consume(req.RefreshToken)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Invalid refresh token")
		return
	}
	user, ok := s.store.user(userID)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Invalid refresh token")
		return
	}
	s.respondWithSession(w, user)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.tokens.revoke(userIDFrom(r.Context()))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := s.store.user(userIDFrom(r.Context()))
	if !ok {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleDeleteMe(w http.ResponseWriter, r *http.Request) {
	id := userIDFrom(r.Context())
	s.tokens.revoke(id)
	s.store.delete(id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListUsers(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.store.users())
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := searchQuery{text: q.Get("q"), status: types.Status(q.Get("status"))}

	switch q.Get("role") {
	case roleProvider:
		writeJSON(w, http.StatusOK, s.store.searchProviders(query))
	case roleSubscriber:
		writeJSON(w, http.StatusOK, s.store.searchSubscribers(query))
	case "":
		writeError(w, http.StatusBadRequest, "role is required")
	default:
		writeError(w, http.StatusBadRequest, "Unknown role "+q.Get("role"))
	}
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if p, ok := s.store.provider(id); ok {
		writeJSON(w, http.StatusOK, p)
		return
	}
	if sub, ok := s.store.subscriber(id); ok {
		writeJSON(w, http.StatusOK, sub)
		return
	}
	if u, ok := s.store.user(id); ok {
		writeJSON(w, http.StatusOK, u)
		return
	}
	writeError(w, http.StatusNotFound, "User not found")
}

type accountPayload struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

func readRole(body []byte) (string, error) {
	var peek struct {
		Role string `json:"role"`
	}
	if err := json.Unmarshal(body, &peek); err != nil {
		return "", err
	}
	return peek.Role, nil
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	role, err := readRole(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	switch role {
	case roleProvider:
		var p types.Provider
		if err := json.Unmarshal(body, &p); err != nil || p.Name == "" {
			writeError(w, http.StatusBadRequest, "Provider name is required")
			return
		}
		p.ID = ""
		writeJSON(w, http.StatusCreated, s.store.putProvider(p))

	case roleSubscriber:
		var sub types.Subscriber
		if err := json.Unmarshal(body, &sub); err != nil || sub.Name == "" {
			writeError(w, http.StatusBadRequest, "Subscriber name is required")
			return
		}
		sub.ID = ""
		writeJSON(w, http.StatusCreated, s.store.putSubscriber(sub))

	default:
		var in accountPayload
		if err := json.Unmarshal(body, &in); err != nil || in.Email == "" || in.Password == "" {
			writeError(w, http.StatusBadRequest, "Email and password are required")
			return
		}
		user, err := s.store.createAccount("", in.Email, in.Name, in.Password)
		if errors.Is(err, errConflict) {
			writeError(w, http.StatusConflict, "Email already registered")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusCreated, user)
	}
}

// handleUpdate merges the JSON body onto the stored record
func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if p, ok := s.store.provider(id); ok {
		if err := json.Unmarshal(body, &p); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		p.ID = id
		writeJSON(w, http.StatusOK, s.store.putProvider(p))
		return
	}

	if sub, ok := s.store.subscriber(id); ok {
		if err := json.Unmarshal(body, &sub); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		sub.ID = id
		writeJSON(w, http.StatusOK, s.store.putSubscriber(sub))
		return
	}

	var in accountPayload
	if err := json.Unmarshal(body, &in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	user, err := s.store.updateAccount(id, in.Email, in.Name, in.Password)
	switch {
	case errors.Is(err, errNotFound):
		writeError(w, http.StatusNotFound, "User not found")
	case errors.Is(err, errConflict):
		writeError(w, http.StatusConflict, "Email already registered")
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		writeJSON(w, http.StatusOK, user)
	}
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !s.store.delete(id) {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	s.tokens.revoke(id)
	w.WriteHeader(http.StatusNoContent)
}
