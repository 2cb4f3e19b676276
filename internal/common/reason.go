package common

// Deny/failure reason codes surfaced to the routing layer. These are part of
// the external contract and must stay stable; clients branch on them.
const (
	ReasonNotFound            = "NOT_FOUND"
	ReasonPasswordIncorrect   = "PASSWORD_INCORRECT"
	ReasonActivationNeeded    = "ACTIVATION_NEEDED"
	ReasonAdminRequired       = "ADMIN_REQUIRED"
	ReasonMustBeAuthenticated = "MUST_BE_AUTHENTICATED"
	ReasonRecordDenied        = "RECORD_DENIED"
	ReasonRecordEditDenied    = "RECORD_EDIT_DENIED"

	// ReasonPermissionUnauthorized reports a wrong group/pad passphrase;
	// ReasonPasswordIncorrect covers login credentials only.
	ReasonPermissionUnauthorized = "PERMISSION_UNAUTHORIZED"

	ReasonDirectoryUnavailable = "DIRECTORY_UNAVAILABLE"
)
