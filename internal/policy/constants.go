package policy

const fieldID = "id"

const (
	msgMissingCredential  = "Unauthorized: missing or invalid credential"
	msgMappingFailed      = "Unauthorized: identity lookup failed"
	msgAuthorizationError = "Unauthorized: could not authorize request"
	msgNoEmailClaim       = "Forbidden: token has no email claim"
	msgNoBackendUser      = "Forbidden: no matching backend user"
	msgNotYourRecord      = "Forbidden: cannot access another user's record"
	msgNotOwnedFmt        = "Forbidden: %s does not belong to you"
)
