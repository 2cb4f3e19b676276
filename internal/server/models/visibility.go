package models

// Visibility is the access tier of a group or pad.
type Visibility string

const (
	// VisibilityPublic is readable by anyone (unless the deployment forces
	// authentication for public content).
	VisibilityPublic Visibility = "public"

	// VisibilityRestricted is readable by group members and admins only.
	VisibilityRestricted Visibility = "restricted"

	// VisibilityPrivate requires a passphrase check against the owning
	// entity's secret hash.
	VisibilityPrivate Visibility = "private"
)

// Valid reports whether v is one of the three known tiers.
func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPublic, VisibilityRestricted, VisibilityPrivate:
		return true
	}
	return false
}
