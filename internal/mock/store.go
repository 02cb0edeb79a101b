package mock

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/studiowebux/fxdash/internal/types"
)

type account struct {
	user         types.User
	passwordHash []byte
}

// store holds every backend record in memory. Accounts, providers and
// subscribers share one id space, like the users collection they model.
type store struct {
	mu          sync.RWMutex
	nextID      int
	accounts    map[string]*account
	providers   map[string]types.Provider
	subscribers map[string]types.Subscriber
}

func newStore(cfg *Config) (*store, error) {
	s := &store{
		nextID:      1,
		accounts:    make(map[string]*account),
		providers:   make(map[string]types.Provider),
		subscribers: make(map[string]types.Subscriber),
	}

	for _, u := range cfg.Users {
		if _, err := s.createAccount(u.ID, u.Email, u.Name, u.Password); err != nil {
			return nil, err
		}
	}
	for _, p := range cfg.Providers {
		s.putProvider(p)
	}
	for _, sub := range cfg.Subscribers {
		s.putSubscriber(sub)
	}
	return s, nil
}

// claimID returns id, or a fresh one when id is empty, and keeps the
// counter ahead of numeric ids
func (s *store) claimID(id string) string {
	if id == "" {
		id = strconv.Itoa(s.nextID)
	}
	if n, err := strconv.Atoi(id); err == nil && n >= s.nextID {
		s.nextID = n + 1
	}
	return id
}

func (s *store) exists(id string) bool {
	_, a := s.accounts[id]
	_, p := s.providers[id]
	_, sub := s.subscribers[id]
	return a || p || sub
}

func (s *store) createAccount(id, email, name, password string) (types.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return types.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findByEmailLocked(email) != nil {
		return types.User{}, errConflict
	}
	if id != "" && s.exists(id) {
		return types.User{}, errConflict
	}

	u := types.User{ID: s.claimID(id), Email: email, Name: name}
	s.accounts[u.ID] = &account{user: u, passwordHash: hash}
	return u, nil
}

func (s *store) findByEmailLocked(email string) *account {
	for _, a := range s.accounts {
		if strings.EqualFold(a.user.Email, email) {
			return a
		}
	}
	return nil
}

// authenticate checks credentials and returns the matching user
func (s *store) authenticate(email, password string) (types.User, bool) {
	s.mu.RLock()
	a := s.findByEmailLocked(email)
	s.mu.RUnlock()

	if a == nil {
		return types.User{}, false
	}
	if err := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password)); err != nil {
		return types.User{}, false
	}
	return a.user, true
}

func (s *store) user(id string) (types.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[id]
	if !ok {
		return types.User{}, false
	}
	return a.user, true
}

func (s *store) users() []types.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.User, 0, len(s.accounts))
	for _, a := range s.accounts {
		out = append(out, a.user)
	}
	slices.SortFunc(out, func(a, b types.User) int { return compareIDs(a.ID, b.ID) })
	return out
}

func (s *store) updateAccount(id, email, name, password string) (types.User, error) {
	var hash []byte
	if password != "" {
		var err error
		if hash, err = bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost); err != nil {
			return types.User{}, fmt.Errorf("failed to hash password: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[id]
	if !ok {
		return types.User{}, errNotFound
	}
	if email != "" && !strings.EqualFold(email, a.user.Email) {
		if s.findByEmailLocked(email) != nil {
			return types.User{}, errConflict
		}
		a.user.Email = email
	}
	if name != "" {
		a.user.Name = name
	}
	if hash != nil {
		a.passwordHash = hash
	}
	return a.user, nil
}

func (s *store) putProvider(p types.Provider) types.Provider {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.claimID(p.ID)
	s.providers[p.ID] = p
	return p
}

func (s *store) provider(id string) (types.Provider, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.providers[id]
	return p, ok
}

func (s *store) putSubscriber(sub types.Subscriber) types.Subscriber {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub.ID = s.claimID(sub.ID)
	s.subscribers[sub.ID] = sub
	return sub
}

func (s *store) subscriber(id string) (types.Subscriber, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sub, ok := s.subscribers[id]
	return sub, ok
}

// delete removes id from whichever collection holds it
func (s *store) delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.exists(id) {
		return false
	}
	delete(s.accounts, id)
	delete(s.providers, id)
	delete(s.subscribers, id)
	return true
}

type searchQuery struct {
	text   string
	status types.Status
}

func (q searchQuery) matches(name string, status types.Status) bool {
	if q.status != "" && status != q.status {
		return false
	}
	return q.text == "" || strings.Contains(strings.ToLower(name), strings.ToLower(q.text))
}

func (s *store) searchProviders(q searchQuery) []types.Provider {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.Provider, 0, len(s.providers))
	for _, p := range s.providers {
		if q.matches(p.Name, p.Status) {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, func(a, b types.Provider) int { return compareIDs(a.ID, b.ID) })
	return out
}

func (s *store) searchSubscribers(q searchQuery) []types.Subscriber {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.Subscriber, 0, len(s.subscribers))
	for _, sub := range s.subscribers {
		if q.matches(sub.Name, sub.Status) {
			out = append(out, sub)
		}
	}
	slices.SortFunc(out, func(a, b types.Subscriber) int { return compareIDs(a.ID, b.ID) })
	return out
}

// compareIDs orders numeric ids numerically and anything else lexically
func compareIDs(a, b string) int {
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)
	if errA == nil && errB == nil {
		return cmp.Compare(na, nb)
	}
	return strings.Compare(a, b)
}
