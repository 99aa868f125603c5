package whoop

import (
	"sync"
	"time"
)

// Session is the token pair obtained from the OAuth exchange.
type Session struct {
	AccessToken  string
	RefreshToken string
	Expiry       time.Time
	Scope        string
}

// TokenStore holds the pending OAuth state and the current session for the
// single local user. It lives for the process and is emptied on logout.
// Nothing is persisted across restarts.
type TokenStore struct {
	mu      sync.RWMutex
	state   string
	session *Session
}

func NewTokenStore() *TokenStore { return &TokenStore{} }

// SetState records the state sent with the authorization redirect.
func (s *TokenStore) SetState(state string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}

// ConsumeState reports whether state matches the pending one and clears it on match.
func (s *TokenStore) ConsumeState(state string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == "" || state != s.state {
		return false
	}
	s.state = ""
	return true
}

// Set replaces the current session.
func (s *TokenStore) Set(sess Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = &sess
}

// Session returns a copy of the current session, or false when not authenticated.
func (s *TokenStore) Session() (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil || s.session.AccessToken == "" {
		return Session{}, false
	}
	return *s.session, true
}

// RefreshToken returns the stored refresh token, if any.
func (s *TokenStore) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return ""
	}
	return s.session.RefreshToken
}

// Clear drops the session and any pending state.
func (s *TokenStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = ""
	s.session = nil
}
