package models

import (
	"fmt"
	"slices"

	"github.com/dsmirnov/padkeeper/internal/common"
)

// Group is a named collection of pads with its own visibility tier and
// admin/member lists. Admins must never be empty: the last admin cannot be
// removed, the group has to be deleted instead.
type Group struct {
	ID         string
	Name       string
	Visibility Visibility
	SecretHash string
	ReadOnly   bool
	Admins     []string
	Users      []string
	Pads       []string
}

// Validate enforces the group invariants before persistence: a known
// visibility tier, a non-empty secret hash for private groups, and at least
// one admin.
func (g *Group) Validate() error {
	if g.Name == "" {
		return fmt.Errorf("%w: group name is required", common.ErrorValidation)
	}
	if !g.Visibility.Valid() {
		return fmt.Errorf("%w: unknown visibility %q", common.ErrorValidation, g.Visibility)
	}
	if g.Visibility == VisibilityPrivate && g.SecretHash == "" {
		return fmt.Errorf("%w: private group requires a secret hash", common.ErrorValidation)
	}
	if len(g.Admins) == 0 {
		return common.ErrorLastAdmin
	}
	return nil
}

// IsAdmin reports whether the identity id is in the group's admin list.
func (g *Group) IsAdmin(id string) bool {
	return slices.Contains(g.Admins, id)
}

// IsMember reports whether the identity id is a member or an admin.
func (g *Group) IsMember(id string) bool {
	return slices.Contains(g.Users, id) || g.IsAdmin(id)
}
