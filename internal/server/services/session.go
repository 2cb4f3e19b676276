package services

import (
	"context"

	"github.com/dsmirnov/padkeeper/internal/common"
	"github.com/dsmirnov/padkeeper/internal/server/auth"
	"github.com/dsmirnov/padkeeper/internal/server/config"
	"github.com/dsmirnov/padkeeper/internal/server/models"
	"github.com/dsmirnov/padkeeper/internal/server/session"
)

// SessionService turns verified credentials into sessions and bearer
// tokens, and resolves tokens back into callers. Regular users and the
// statically configured administrators live in disjoint namespaces; an
// admin token never resolves to a user session and vice versa.
type SessionService struct {
	registry *session.Registry
	creds    *CredentialService
	admins   []config.AdminAccount
}

// NewSessionService constructs a SessionService on the given registry.
func NewSessionService(registry *session.Registry, creds *CredentialService, cfg *config.Config) *SessionService {
	return &SessionService{
		registry: registry,
		creds:    creds,
		admins:   cfg.Admins,
	}
}

// Login verifies ref/secret through the credential backend and opens a user
// session, returning its bearer token. A second login for the same account
// replaces the session and revokes earlier tokens.
func (s *SessionService) Login(ctx context.Context, ref, secret string) (string, error) {
	identity, err := s.creds.Verify(ctx, ref, secret)
	if err != nil {
		return "", err
	}
	return s.registry.Create(auth.NamespaceUser, recordFor(identity))
}

// AdminLogin checks login/secret against the statically configured
// administrator accounts and opens an admin-namespace session.
func (s *SessionService) AdminLogin(ctx context.Context, login, secret string) (string, error) {
	for _, a := range s.admins {
		if a.Login != login {
			continue
		}
		ok, err := auth.CheckPassword(secret, a.PasswordHash)
		if err != nil {
			return "", err
		}
		if !ok {
			return "", common.ErrorBadSecret
		}
		return s.registry.Create(auth.NamespaceAdmin, session.Record{Login: login})
	}
	return "", common.ErrorNotFound
}

// Logout closes the session the token points at. It is idempotent: an
// expired, revoked, or garbage token is simply ignored.
func (s *SessionService) Logout(token string) {
	rec, ns, ok := s.registry.Validate(token)
	if !ok {
		return
	}
	s.registry.Invalidate(ns, rec.Login)
}

// WhoAmI resolves a token to its live session record and namespace.
func (s *SessionService) WhoAmI(token string) (session.Record, auth.Namespace, bool) {
	return s.registry.Validate(token)
}

// Caller classifies a bearer token. An empty or invalid token yields the
// anonymous caller, never an error: unauthenticated is a normal state.
func (s *SessionService) Caller(token string) Caller {
	if token == "" {
		return Caller{Kind: CallerAnonymous}
	}
	rec, ns, ok := s.registry.Validate(token)
	if !ok {
		return Caller{Kind: CallerAnonymous}
	}
	kind := CallerUser
	if ns == auth.NamespaceAdmin {
		kind = CallerAdmin
	}
	return Caller{Kind: kind, Session: rec}
}

// recordFor snapshots the identity attributes the session layer needs.
func recordFor(identity *models.Identity) session.Record {
	return session.Record{
		Login:            identity.Login,
		IdentityID:       identity.ID,
		Email:            identity.Email,
		Firstname:        identity.Firstname,
		Lastname:         identity.Lastname,
		UseLoginAndColor: identity.UseLoginAndColor,
		PadNickname:      identity.PadNickname,
		Color:            identity.Color,
	}
}
