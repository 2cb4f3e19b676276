// Package directory implements the external-directory credential backend:
// a bind-based check against an LDAP server, with configurable search and
// attribute mapping. Group and pad passphrases are never routed through
// here; only identity logins are directory subjects.
package directory

import (
	"context"
	"time"
)

// Profile carries the directory-supplied attributes used to auto-provision
// a local identity on first successful external login.
type Profile struct {
	Login     string
	Email     string
	Firstname string
	Lastname  string
}

// Verifier validates a login/secret pair against a directory.
//
// Error contract: common.ErrorNotFound when the directory has no such
// identity, common.ErrorBadSecret when the bind is rejected, and
// common.ErrorDirectoryUnavailable for transport or configuration trouble.
type Verifier interface {
	Bind(ctx context.Context, login, secret string) (*Profile, error)
}

// AttributeMap names the directory attributes to read for each profile field.
type AttributeMap struct {
	Login     string
	Email     string
	Firstname string
	Lastname  string
}

// Config describes the directory connection and search.
//
// SearchFilter must contain exactly one %s placeholder for the (escaped)
// login, e.g. "(uid=%s)".
type Config struct {
	URL          string
	BindDN       string
	BindPassword string
	SearchBase   string
	SearchFilter string
	Attributes   AttributeMap
	Timeout      time.Duration
}
