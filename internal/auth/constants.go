package auth

const (
	headerAuthorization = "Authorization"

	bearerScheme    = "bearer"
	authHeaderParts = 2
)

const (
	msgUnexpectedSigningMethod = "unexpected signing method: %v"
	msgTokenParseFailed        = "%w: %v"
	msgMissingSubjectClaim     = "%w: token has no subject claim"
	msgInvalidTokenClaims      = "%w: invalid token claims"
	msgVerifierRejectedFmt     = "%w: %v"
)

// TrustMode is the classification of a request's credential material,
// decided exactly once before any policy logic runs.
type TrustMode string

const (
	// TrustAnonymous: no credential at all.
	TrustAnonymous TrustMode = "anonymous"
	// TrustCookiePassthrough: the CMS session cookie is present; the CMS
	// authenticates the session itself, the proxy defers entirely.
	TrustCookiePassthrough TrustMode = "cookie-passthrough"
	// TrustServiceBypass: the bearer token is the shared service token.
	TrustServiceBypass TrustMode = "service-token-bypass"
	// TrustIdentityBearer: the bearer token verified against the identity
	// provider and carries claims.
	TrustIdentityBearer TrustMode = "identity-bearer"
	// TrustOpaqueBypass: the bearer token failed verification and is
	// forwarded to the backend untouched, leaving rejection to the backend.
	// The CMS's own personal access tokens arrive this way.
	TrustOpaqueBypass TrustMode = "opaque-bypass"
)
