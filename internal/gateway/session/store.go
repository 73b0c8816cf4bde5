// Package session holds the gateway's in-memory authentication sessions.
package session

import (
	"sync"

	"github.com/mharte/caseflow/internal/domain"
)

// Entry represents one authenticated session. Expiry is not implemented
// yet, so ExpiresAt is always zero (no expiry).
type Entry struct {
	EmailAddress string
	LogonType    domain.LogonType
	ExpiresAt    int64
	Token        string
}

// Store maps email addresses to their single active session. Sessions live
// only in process memory: a restart logs everyone out.
type Store struct {
	mu       sync.Mutex
	sessions map[string]Entry
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]Entry)}
}

// Add records a session for the email address. A user has at most one
// session: logging on again invalidates any previous token.
func (s *Store) Add(emailAddress, token string, logonType domain.LogonType) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[emailAddress] = Entry{
		EmailAddress: emailAddress,
		LogonType:    logonType,
		Token:        token,
	}
}

// Delete removes the session for the email address. Deleting an absent
// session is a no-op.
func (s *Store) Delete(emailAddress string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, emailAddress)
}

// IsValid reports whether token is the current session token for the email
// address. A stale token from an earlier logon is not valid.
func (s *Store) IsValid(emailAddress, token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[emailAddress]
	return ok && entry.Token == token
}

// Has reports whether the email address has any active session.
func (s *Store) Has(emailAddress string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.sessions[emailAddress]
	return ok
}
