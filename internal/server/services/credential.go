package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dsmirnov/padkeeper/internal/common"
	"github.com/dsmirnov/padkeeper/internal/dbx"
	"github.com/dsmirnov/padkeeper/internal/server/auth"
	"github.com/dsmirnov/padkeeper/internal/server/config"
	"github.com/dsmirnov/padkeeper/internal/server/directory"
	"github.com/dsmirnov/padkeeper/internal/server/models"
	"github.com/dsmirnov/padkeeper/internal/server/repositories/repomanager"
)

// CredentialService verifies a login-or-email reference with a secret and
// yields the matching identity. Two backends exist: the local salted-hash
// store and an external directory. The backend is fixed at construction
// time from configuration; nothing switches backends per request.
type CredentialService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	dir         directory.Verifier

	backend               string
	foldEmailCase         bool
	signupConfirmRequired bool
}

// NewCredentialService constructs a CredentialService. dir may be nil when
// the configured backend is local.
func NewCredentialService(db *sql.DB, m repomanager.RepositoryManager, dir directory.Verifier, cfg *config.Config) *CredentialService {
	return &CredentialService{
		db:                    db,
		repomanager:           m,
		dir:                   dir,
		backend:               cfg.AuthBackend,
		foldEmailCase:         cfg.FoldEmailCase,
		signupConfirmRequired: cfg.SignupConfirmRequired,
	}
}

// Verify checks ref/secret against the configured backend and returns the
// identity on success.
//
// Error contract: common.ErrorNotFound (no such identity),
// common.ErrorBadSecret (wrong secret), common.ErrorActivationNeeded
// (correct secret but the account awaits confirmation), and
// common.ErrorDirectoryUnavailable (directory backend unreachable).
// Anything else is an internal failure.
func (s *CredentialService) Verify(ctx context.Context, ref, secret string) (*models.Identity, error) {
	var (
		identity *models.Identity
		err      error
	)

	switch s.backend {
	case config.BackendLDAP:
		identity, err = s.verifyDirectory(ctx, ref, secret)
	default:
		identity, err = s.verifyLocal(ctx, ref, secret)
	}
	if err != nil {
		return nil, err
	}

	if s.signupConfirmRequired && !identity.Active {
		return nil, common.ErrorActivationNeeded
	}
	return identity, nil
}

// verifyLocal looks the reference up by login first, then by email, and
// recomputes the stored argon2 hash against the candidate secret.
func (s *CredentialService) verifyLocal(ctx context.Context, ref, secret string) (*models.Identity, error) {
	identity, err := s.lookup(ctx, ref)
	if err != nil {
		return nil, err
	}

	if identity.PasswordHash == "" {
		// Directory-provisioned account; it has no local secret to check.
		return nil, common.ErrorBadSecret
	}

	ok, err := auth.CheckPassword(secret, identity.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("checking password: %w", err)
	}
	if !ok {
		return nil, common.ErrorBadSecret
	}
	return identity, nil
}

// verifyDirectory binds against the external directory and, on first
// success, provisions a local identity from the directory profile so that
// groups and pads can reference it by id.
func (s *CredentialService) verifyDirectory(ctx context.Context, ref, secret string) (*models.Identity, error) {
	if s.dir == nil {
		return nil, common.ErrorDirectoryUnavailable
	}

	profile, err := s.dir.Bind(ctx, ref, secret)
	if err != nil {
		return nil, err
	}

	// Lookup and provision/refresh run in one transaction so two
	// concurrent first logins cannot race each other into a duplicate.
	var identity *models.Identity
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Identities(tx)

		existing, err := repo.GetByLogin(ctx, profile.Login)
		if errors.Is(err, common.ErrorNotFound) {
			created := &models.Identity{
				Login:     profile.Login,
				Email:     s.foldEmail(profile.Email),
				Firstname: profile.Firstname,
				Lastname:  profile.Lastname,
				// The directory already vouches for the account.
				Active: true,
			}
			identity, err = repo.Create(ctx, created)
			return err
		}
		if err != nil {
			return err
		}

		// Refresh the local snapshot from the directory on every login.
		existing.Email = s.foldEmail(profile.Email)
		existing.Firstname = profile.Firstname
		existing.Lastname = profile.Lastname
		if err := repo.Update(ctx, existing); err != nil {
			return err
		}
		identity = existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return identity, nil
}

// lookup finds an identity by login, falling back to email.
func (s *CredentialService) lookup(ctx context.Context, ref string) (*models.Identity, error) {
	repo := s.repomanager.Identities(s.db)

	identity, err := repo.GetByLogin(ctx, ref)
	if err == nil {
		return identity, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, err
	}
	return repo.GetByEmail(ctx, s.foldEmail(ref))
}

func (s *CredentialService) foldEmail(email string) string {
	if s.foldEmailCase {
		return strings.ToLower(email)
	}
	return email
}
