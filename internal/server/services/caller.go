// Package services contains the server-side business logic: credential
// verification, session lifecycle, access resolution for pads, and account
// management.
package services

import "github.com/dsmirnov/padkeeper/internal/server/session"

// CallerKind classifies who is asking: nobody, a regular user session, or
// an administrator session. The two session kinds come from disjoint
// namespaces and never shade into each other.
type CallerKind int

const (
	CallerAnonymous CallerKind = iota
	CallerUser
	CallerAdmin
)

// Caller is the resolved authentication state attached to a request.
// Session is meaningful only when Kind is CallerUser or CallerAdmin.
type Caller struct {
	Kind    CallerKind
	Session session.Record
}

// Authenticated reports whether any session backs this caller.
func (c Caller) Authenticated() bool {
	return c.Kind != CallerAnonymous
}
