package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dsmirnov/padkeeper/internal/common"
	"github.com/dsmirnov/padkeeper/internal/server/auth"
	"github.com/dsmirnov/padkeeper/internal/server/config"
	"github.com/dsmirnov/padkeeper/internal/server/models"
	"github.com/dsmirnov/padkeeper/internal/server/repositories/repomanager"
)

// Outcome is the verdict of an access resolution.
type Outcome string

const (
	// OutcomeAllow grants the requested access.
	OutcomeAllow Outcome = "allow"
	// OutcomeDeny refuses it; Decision.Reason says why.
	OutcomeDeny Outcome = "deny"
	// OutcomeNeedSecret means the pad is reachable once the caller supplies
	// the passphrase named by Decision.SecretTarget.
	OutcomeNeedSecret Outcome = "need_secret"
	// OutcomePassThrough means the pad is unknown here; the caller should
	// fall through to whatever serves unknown paths.
	OutcomePassThrough Outcome = "pass_through"
)

// SecretTarget names which passphrase a NeedSecret decision wants.
type SecretTarget string

const (
	SecretTargetGroup SecretTarget = "group"
	SecretTargetPad   SecretTarget = "pad"
)

// Display carries the attribution attributes a pad session should show for
// the caller. A nil Display means "let the editor pick".
type Display struct {
	Name  string
	Color string
}

// Decision is the full answer to "may this caller open this pad".
type Decision struct {
	Outcome      Outcome
	Reason       string
	SecretTarget SecretTarget
	ReadOnly     bool
	Display      *Display
}

// AccessService resolves pad access requests against the three-tier
// visibility model. It only ever reads; nothing here mutates state.
type AccessService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager

	allPublicRequireAuth bool
	useFirstLastName     bool
}

// NewAccessService constructs an AccessService.
func NewAccessService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *AccessService {
	return &AccessService{
		db:                   db,
		repomanager:          m,
		allPublicRequireAuth: cfg.AllPublicRequireAuth,
		useFirstLastName:     cfg.UseFirstLastName,
	}
}

// Resolve decides whether caller may open the pad, optionally for editing,
// optionally presenting a passphrase. The checks run in a fixed order:
// administrator override, group-admin override, the edit gate, then the
// effective visibility tier with the pad's own settings shadowing the
// group's. An unknown pad is a pass-through, not a denial; a pad whose
// group is missing is corrupted state and surfaces as an error.
func (s *AccessService) Resolve(ctx context.Context, padID string, caller Caller, secret *string, forEdit bool) (*Decision, error) {
	pad, err := s.repomanager.Pads(s.db).Get(ctx, padID)
	if errors.Is(err, common.ErrorNotFound) {
		return &Decision{Outcome: OutcomePassThrough, Reason: common.ReasonNotFound}, nil
	}
	if err != nil {
		return nil, err
	}

	group, err := s.repomanager.Groups(s.db).Get(ctx, pad.GroupID)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("%w: pad %s references missing group %s", common.ErrorInternal, pad.ID, pad.GroupID)
	}
	if err != nil {
		return nil, err
	}

	readOnly := pad.EffectiveReadOnly(group)
	allow := &Decision{Outcome: OutcomeAllow, ReadOnly: readOnly, Display: s.displayFor(caller)}

	// Global administrators and group admins see everything.
	if caller.Kind == CallerAdmin {
		return allow, nil
	}
	isGroupAdmin := caller.Kind == CallerUser && group.IsAdmin(caller.Session.IdentityID)
	if isGroupAdmin {
		return allow, nil
	}

	// Editing is an admin privilege; everyone else reads at most.
	if forEdit {
		return &Decision{Outcome: OutcomeDeny, Reason: common.ReasonRecordEditDenied, ReadOnly: readOnly}, nil
	}

	switch pad.EffectiveVisibility(group) {
	case models.VisibilityPublic:
		if s.allPublicRequireAuth && !caller.Authenticated() {
			return &Decision{Outcome: OutcomeDeny, Reason: common.ReasonMustBeAuthenticated, ReadOnly: readOnly}, nil
		}
		return allow, nil

	case models.VisibilityPrivate:
		target, hash := SecretTargetGroup, group.SecretHash
		if pad.HasOwnSecret() {
			target, hash = SecretTargetPad, pad.SecretHash
		}
		if secret == nil {
			return &Decision{Outcome: OutcomeNeedSecret, SecretTarget: target, ReadOnly: readOnly}, nil
		}
		ok, err := auth.CheckPassword(*secret, hash)
		if err != nil {
			return nil, fmt.Errorf("checking pad secret: %w", err)
		}
		if !ok {
			return &Decision{Outcome: OutcomeDeny, Reason: common.ReasonPermissionUnauthorized, SecretTarget: target, ReadOnly: readOnly}, nil
		}
		return allow, nil

	case models.VisibilityRestricted:
		if !caller.Authenticated() {
			return &Decision{Outcome: OutcomeDeny, Reason: common.ReasonMustBeAuthenticated, ReadOnly: readOnly}, nil
		}
		id := caller.Session.IdentityID
		if group.IsMember(id) || pad.AllowsUser(id) {
			return allow, nil
		}
		return &Decision{Outcome: OutcomeDeny, Reason: common.ReasonRecordDenied, ReadOnly: readOnly}, nil
	}

	return nil, fmt.Errorf("%w: pad %s has unresolvable visibility", common.ErrorInternal, pad.ID)
}

// displayFor resolves the attribution attributes for a caller. Only a user
// session that opted in (UseLoginAndColor) gets fixed attributes; everyone
// else is left to the editor's own defaults.
func (s *AccessService) displayFor(caller Caller) *Display {
	if caller.Kind != CallerUser || !caller.Session.UseLoginAndColor {
		return nil
	}

	rec := caller.Session
	name := rec.Login
	if rec.PadNickname != "" {
		name = rec.PadNickname
	} else if s.useFirstLastName && rec.Firstname != "" && rec.Lastname != "" {
		name = rec.Firstname + " " + rec.Lastname
	}

	d := &Display{Name: name}
	if rec.Color != "" {
		d.Color = rec.Color
	}
	return d
}
