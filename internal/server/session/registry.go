// Package session holds the process-wide, in-memory session state. Sessions
// are keyed by login, separately for regular users and administrators, and
// referenced from the outside only through signed bearer tokens. Nothing
// here is persisted: the token signing secret is generated at construction
// time, so a process restart revokes every outstanding token at once.
package session

import (
	"crypto/subtle"
	"sync"

	"github.com/dsmirnov/padkeeper/internal/common"
	"github.com/dsmirnov/padkeeper/internal/server/auth"
)

// Record binds a login to a live authentication state: a snapshot of the
// identity's public attributes plus the random key minted at login time.
// A token validates only while its embedded key equals the stored one.
type Record struct {
	Login      string
	Key        string
	IdentityID string
	Email      string
	Firstname  string
	Lastname   string

	UseLoginAndColor bool
	PadNickname      string
	Color            string
}

// Registry is the mutable heart of the authorization core. All access goes
// through one RWMutex: authorization decisions only read, while login,
// logout, and profile updates write. Each mutation is a single map
// operation, so the registry is never observed half-updated.
type Registry struct {
	mu     sync.RWMutex
	users  map[string]*Record
	admins map[string]*Record
	secret []byte
}

// NewRegistry creates an empty registry with a fresh random signing secret.
// The secret never leaves the registry and is never persisted.
func NewRegistry() *Registry {
	return &Registry{
		users:  make(map[string]*Record),
		admins: make(map[string]*Record),
		secret: common.GenerateRandByteArray(32),
	}
}

// Create stores a session record under the given namespace, minting a fresh
// random key and a signed bearer token referencing it. An existing session
// for the same login is overwritten, which revokes its tokens.
func (r *Registry) Create(ns auth.Namespace, rec Record) (string, error) {
	key, err := common.MakeRandHexString(32)
	if err != nil {
		return "", err
	}
	rec.Key = key

	token, err := auth.GenerateToken(rec.Login, key, ns, r.secret)
	if err != nil {
		return "", err
	}

	r.mu.Lock()
	r.namespace(ns)[rec.Login] = &rec
	r.mu.Unlock()

	return token, nil
}

// Validate resolves a bearer token to its live session record. It reports
// false — never an error — on decode failure, unknown namespace, missing
// record, or key mismatch; callers treat false as "unauthenticated".
func (r *Registry) Validate(token string) (Record, auth.Namespace, bool) {
	claims, err := auth.ParseToken(token, r.secret)
	if err != nil {
		return Record{}, "", false
	}

	ns := auth.Namespace(claims.Namespace)
	if ns != auth.NamespaceUser && ns != auth.NamespaceAdmin {
		return Record{}, "", false
	}

	r.mu.RLock()
	rec, ok := r.namespace(ns)[claims.Login]
	r.mu.RUnlock()
	if !ok {
		return Record{}, "", false
	}

	if subtle.ConstantTimeCompare([]byte(rec.Key), []byte(claims.SessionKey)) != 1 {
		return Record{}, "", false
	}

	return *rec, ns, true
}

// Invalidate removes the session record for login, immediately revoking all
// its outstanding tokens. Removing an absent record is a no-op.
func (r *Registry) Invalidate(ns auth.Namespace, login string) {
	r.mu.Lock()
	delete(r.namespace(ns), login)
	r.mu.Unlock()
}

// Get returns the live session record for login, if any.
func (r *Registry) Get(ns auth.Namespace, login string) (Record, bool) {
	r.mu.RLock()
	rec, ok := r.namespace(ns)[login]
	r.mu.RUnlock()
	if !ok {
		return Record{}, false
	}
	return *rec, true
}

// Update replaces the stored identity snapshot for a live session without
// rotating its key, so outstanding tokens stay valid across profile edits.
// It does nothing when no session exists.
func (r *Registry) Update(ns auth.Namespace, login string, fn func(*Record)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec, ok := r.namespace(ns)[login]; ok {
		fn(rec)
	}
}

// namespace must be called with the lock held.
func (r *Registry) namespace(ns auth.Namespace) map[string]*Record {
	if ns == auth.NamespaceAdmin {
		return r.admins
	}
	return r.users
}
