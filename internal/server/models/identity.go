// Package models defines the core data types of padkeeper: identities,
// groups, pads, and the visibility tiers that gate access to them.
package models

// Identity is a registered user account. Login and Email are globally
// unique; Email comparison may be case-folded depending on configuration.
// PasswordHash is empty when authentication is delegated to an external
// directory. Active stays false until the account is confirmed, when
// confirmation is enabled.
type Identity struct {
	ID           string
	Login        string
	Email        string
	PasswordHash string
	Active       bool
	Firstname    string
	Lastname     string

	// Display preferences, consumed by the identity-display resolver.
	UseLoginAndColor bool
	PadNickname      string
	Color            string
}
