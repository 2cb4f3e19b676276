package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dsmirnov/padkeeper/internal/common"
	"github.com/dsmirnov/padkeeper/internal/server/auth"
	"github.com/dsmirnov/padkeeper/internal/server/config"
	"github.com/dsmirnov/padkeeper/internal/server/models"
	"github.com/dsmirnov/padkeeper/internal/server/recovery"
	"github.com/dsmirnov/padkeeper/internal/server/repositories/repomanager"
	"github.com/dsmirnov/padkeeper/internal/server/session"
)

// AccountService manages the lifecycle of local identities: registration,
// confirmation, profile and password changes, recovery, and deletion. Any
// change to a live account is mirrored into its session so outstanding
// tokens keep working with fresh attributes.
type AccountService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	registry    *session.Registry
	tokens      *recovery.Store

	foldEmailCase         bool
	signupConfirmRequired bool
	recoveryTokenTTL      time.Duration
}

// NewAccountService constructs an AccountService.
func NewAccountService(db *sql.DB, m repomanager.RepositoryManager, registry *session.Registry, tokens *recovery.Store, cfg *config.Config) *AccountService {
	return &AccountService{
		db:                    db,
		repomanager:           m,
		registry:              registry,
		tokens:                tokens,
		foldEmailCase:         cfg.FoldEmailCase,
		signupConfirmRequired: cfg.SignupConfirmRequired,
		recoveryTokenTTL:      cfg.RecoveryTokenTTL,
	}
}

// ProfileUpdate carries the mutable profile fields. Nil pointers mean
// "leave unchanged".
type ProfileUpdate struct {
	Email            *string
	Firstname        *string
	Lastname         *string
	UseLoginAndColor *bool
	PadNickname      *string
	Color            *string
}

// Register creates a local identity. When signup confirmation is enabled
// the account starts inactive and a one-shot confirmation token is
// returned alongside it; otherwise the token is empty and the account is
// usable immediately.
func (s *AccountService) Register(ctx context.Context, login, email, password, firstname, lastname string) (*models.Identity, string, error) {
	if login == "" || password == "" {
		return nil, "", fmt.Errorf("%w: login and password are required", common.ErrorValidation)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, "", fmt.Errorf("hashing password: %w", err)
	}

	identity := &models.Identity{
		Login:        login,
		Email:        s.foldEmail(email),
		PasswordHash: hash,
		Firstname:    firstname,
		Lastname:     lastname,
		Active:       !s.signupConfirmRequired,
	}

	created, err := s.repomanager.Identities(s.db).Create(ctx, identity)
	if err != nil {
		return nil, "", err
	}

	var token string
	if s.signupConfirmRequired {
		token = s.tokens.Create(recovery.ActionAccountConfirm, created.Login, s.recoveryTokenTTL)
	}
	return created, token, nil
}

// Confirm consumes an account confirmation token and activates the account
// it was minted for. Unknown or expired tokens are unauthorized.
func (s *AccountService) Confirm(ctx context.Context, token string) error {
	login, ok := s.tokens.Consume(recovery.ActionAccountConfirm, token)
	if !ok {
		return common.ErrorUnauthorized
	}

	repo := s.repomanager.Identities(s.db)
	identity, err := repo.GetByLogin(ctx, login)
	if err != nil {
		return err
	}
	identity.Active = true
	return repo.Update(ctx, identity)
}

// UpdateProfile applies a partial profile update and refreshes the live
// session snapshot, if one exists, without rotating its token.
func (s *AccountService) UpdateProfile(ctx context.Context, login string, upd ProfileUpdate) (*models.Identity, error) {
	repo := s.repomanager.Identities(s.db)
	identity, err := repo.GetByLogin(ctx, login)
	if err != nil {
		return nil, err
	}

	if upd.Email != nil {
		identity.Email = s.foldEmail(*upd.Email)
	}
	if upd.Firstname != nil {
		identity.Firstname = *upd.Firstname
	}
	if upd.Lastname != nil {
		identity.Lastname = *upd.Lastname
	}
	if upd.UseLoginAndColor != nil {
		identity.UseLoginAndColor = *upd.UseLoginAndColor
	}
	if upd.PadNickname != nil {
		identity.PadNickname = *upd.PadNickname
	}
	if upd.Color != nil {
		identity.Color = *upd.Color
	}

	if err := repo.Update(ctx, identity); err != nil {
		return nil, err
	}

	s.registry.Update(auth.NamespaceUser, login, func(rec *session.Record) {
		rec.Email = identity.Email
		rec.Firstname = identity.Firstname
		rec.Lastname = identity.Lastname
		rec.UseLoginAndColor = identity.UseLoginAndColor
		rec.PadNickname = identity.PadNickname
		rec.Color = identity.Color
	})
	return identity, nil
}

// ChangePassword verifies the current password and stores a hash of the
// new one. The session, if any, stays valid.
func (s *AccountService) ChangePassword(ctx context.Context, login, current, newPassword string) error {
	repo := s.repomanager.Identities(s.db)
	identity, err := repo.GetByLogin(ctx, login)
	if err != nil {
		return err
	}

	ok, err := auth.CheckPassword(current, identity.PasswordHash)
	if err != nil {
		return fmt.Errorf("checking password: %w", err)
	}
	if !ok {
		return common.ErrorBadSecret
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	identity.PasswordHash = hash
	return repo.Update(ctx, identity)
}

// Delete removes the account. Its session is invalidated first, so no
// token outlives the identity it points at.
func (s *AccountService) Delete(ctx context.Context, login string) error {
	repo := s.repomanager.Identities(s.db)
	identity, err := repo.GetByLogin(ctx, login)
	if err != nil {
		return err
	}

	s.registry.Invalidate(auth.NamespaceUser, login)
	return repo.Delete(ctx, identity.ID)
}

// StartPasswordRecovery mints a one-shot recovery token for the account the
// reference (login or email) resolves to.
func (s *AccountService) StartPasswordRecovery(ctx context.Context, ref string) (string, error) {
	repo := s.repomanager.Identities(s.db)
	identity, err := repo.GetByLogin(ctx, ref)
	if err != nil {
		identity, err = repo.GetByEmail(ctx, s.foldEmail(ref))
		if err != nil {
			return "", err
		}
	}
	return s.tokens.Create(recovery.ActionPassRecover, identity.Login, s.recoveryTokenTTL), nil
}

// CompletePasswordRecovery consumes a recovery token and replaces the
// password. Existing sessions are revoked: whoever holds the old token is
// exactly who recovery is meant to lock out.
func (s *AccountService) CompletePasswordRecovery(ctx context.Context, token, newPassword string) error {
	login, ok := s.tokens.Consume(recovery.ActionPassRecover, token)
	if !ok {
		return common.ErrorUnauthorized
	}

	repo := s.repomanager.Identities(s.db)
	identity, err := repo.GetByLogin(ctx, login)
	if err != nil {
		return err
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	identity.PasswordHash = hash
	// Recovering a password proves mailbox control, which is what
	// confirmation would have proven.
	identity.Active = true
	if err := repo.Update(ctx, identity); err != nil {
		return err
	}

	s.registry.Invalidate(auth.NamespaceUser, login)
	return nil
}

func (s *AccountService) foldEmail(email string) string {
	if s.foldEmailCase {
		return strings.ToLower(email)
	}
	return email
}
