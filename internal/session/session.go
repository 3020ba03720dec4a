// Package session holds the client's authentication state.
package session

import (
	"strings"
	"sync"
)

// Provider exposes the capability to authenticate outgoing requests.
type Provider interface {
	IsAuthenticated() bool
	Token() string
	UserID() string
}

// Store is an in-memory Provider. Login sets the credentials and Logout clears them.
type Store struct {
	mu     sync.RWMutex
	token  string
	userID string
}

// Option configures a Store.
type Option func(*Store)

// WithCredentials seeds the store with an existing token, e.g. from config.
func WithCredentials(userID, token string) Option {
	return func(s *Store) {
		s.userID = strings.TrimSpace(userID)
		s.token = strings.TrimSpace(token)
	}
}

// New creates a Store, unauthenticated unless seeded by options.
func New(opts ...Option) *Store {
	s := &Store{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login replaces the current credentials.
func (s *Store) Login(userID, token string) {
	s.mu.Lock()
	s.userID = strings.TrimSpace(userID)
	s.token = strings.TrimSpace(token)
	s.mu.Unlock()
}

// Logout clears the credentials.
func (s *Store) Logout() {
	s.mu.Lock()
	s.userID, s.token = "", ""
	s.mu.Unlock()
}

// IsAuthenticated reports whether a token is present.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != ""
}

// Token returns the bearer token, or "" when logged out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// UserID returns the logged-in user, or "".
func (s *Store) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID
}
