package models

import (
	"fmt"
	"slices"

	"github.com/dsmirnov/padkeeper/internal/common"
)

// Pad is a single editable unit belonging to exactly one group. Its own
// visibility and read-only flag, when set, override the group's; unset means
// "inherit". Users lists the identities permitted when the effective
// visibility is restricted.
type Pad struct {
	ID      string
	GroupID string
	Name    string

	// Visibility overrides the group tier when non-empty.
	Visibility Visibility
	SecretHash string

	// ReadOnly overrides the group flag when non-nil.
	ReadOnly *bool

	Users []string
}

// Validate enforces the pad invariants before persistence.
func (p *Pad) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("%w: pad name is required", common.ErrorValidation)
	}
	if p.GroupID == "" {
		return fmt.Errorf("%w: pad requires a group", common.ErrorValidation)
	}
	if p.Visibility != "" && !p.Visibility.Valid() {
		return fmt.Errorf("%w: unknown visibility %q", common.ErrorValidation, p.Visibility)
	}
	if p.Visibility == VisibilityPrivate && p.SecretHash == "" {
		return fmt.Errorf("%w: private pad requires a secret hash", common.ErrorValidation)
	}
	return nil
}

// EffectiveVisibility is the pad's own tier when set, else the group's.
func (p *Pad) EffectiveVisibility(g *Group) Visibility {
	if p.Visibility != "" {
		return p.Visibility
	}
	return g.Visibility
}

// EffectiveReadOnly is the pad's own flag when set (non-nil), else the
// group's. It never denies access, it only downgrades edit to read.
func (p *Pad) EffectiveReadOnly(g *Group) bool {
	if p.ReadOnly != nil {
		return *p.ReadOnly
	}
	return g.ReadOnly
}

// HasOwnSecret reports whether the pad declares its own secret hash, which
// makes the pad (not the group) the target of a passphrase check.
func (p *Pad) HasOwnSecret() bool {
	return p.Visibility == VisibilityPrivate && p.SecretHash != ""
}

// AllowsUser reports whether the identity id is in the pad's member list.
func (p *Pad) AllowsUser(id string) bool {
	return slices.Contains(p.Users, id)
}
