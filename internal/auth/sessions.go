package auth

import (
	"sync"

	"github.com/google/uuid"
)

// Sessions maps opaque browser session tokens to users. Sessions live only
// in process memory.
type Sessions struct {
	mu     sync.RWMutex
	tokens map[string]User
}

// NewSessions returns an empty session table.
func NewSessions() *Sessions {
	return &Sessions{tokens: make(map[string]User)}
}

// Create starts a session for user and returns its token.
func (s *Sessions) Create(user User) string {
	token := uuid.NewString()
	s.mu.Lock()
	s.tokens[token] = user
	s.mu.Unlock()
	return token
}

// Lookup returns the user bound to token.
func (s *Sessions) Lookup(token string) (User, bool) {
	if token == "" {
		return User{}, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.tokens[token]
	return user, ok
}

// Revoke ends the session. Unknown tokens are ignored.
func (s *Sessions) Revoke(token string) {
	s.mu.Lock()
	delete(s.tokens, token)
	s.mu.Unlock()
}

// Len returns the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tokens)
}
