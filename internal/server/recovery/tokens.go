// Package recovery issues the time-boxed opaque tokens behind account
// confirmation and password-recovery mails. The core only mints and
// consumes tokens; formatting and sending the mail is somebody else's job.
package recovery

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Action tags what a token is good for. A token minted for one action never
// consumes under another.
type Action string

const (
	ActionAccountConfirm Action = "accountconfirm"
	ActionPassRecover    Action = "passrecover"
)

type entry struct {
	action  Action
	login   string
	expires time.Time
}

// Store is an in-memory, mutex-guarded token table. Tokens are one-shot:
// a successful Consume removes the entry. Expired entries are swept lazily
// on each mutation.
type Store struct {
	mu     sync.Mutex
	tokens map[string]entry

	// now is a test seam.
	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		tokens: make(map[string]entry),
		now:    time.Now,
	}
}

// Create mints a fresh opaque token for the given action and login,
// expiring after ttl.
func (s *Store) Create(action Action, login string, ttl time.Duration) string {
	id := uuid.New().String()

	s.mu.Lock()
	s.sweepLocked()
	s.tokens[id] = entry{action: action, login: login, expires: s.now().Add(ttl)}
	s.mu.Unlock()

	return id
}

// Consume validates a token against the expected action and, when valid,
// removes it and returns the login it was minted for. Unknown, expired, or
// wrong-action tokens report ok=false.
func (s *Store) Consume(action Action, id string) (login string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepLocked()

	e, found := s.tokens[id]
	if !found || e.action != action {
		return "", false
	}

	delete(s.tokens, id)
	return e.login, true
}

// sweepLocked drops expired entries; the caller holds the lock.
func (s *Store) sweepLocked() {
	now := s.now()
	for id, e := range s.tokens {
		if e.expires.Before(now) {
			delete(s.tokens, id)
		}
	}
}
