package proxy

const (
	headerAuthorization = "Authorization"
	bearerPrefix        = "Bearer "

	// Auxiliary identity headers attached on forward so the backend can
	// audit the true caller even though it only trusts the one shared
	// credential. Best-effort, omitted when unknown.
	headerCallerSubject   = "x-firebase-uid"
	headerCallerEmail     = "x-firebase-email"
	headerCallerBackendID = "x-directus-user-id"

	jsonKeyError = "error"
)

const (
	msgBackendUnreachable  = "Bad gateway: backend unreachable"
	msgInvalidToken        = "Unauthorized: invalid identity token"
	msgGenericUnauthorized = "Unauthorized: could not authorize request"
)

// Hop-by-hop headers are connection-scoped and never forwarded.
var hopByHopHeaders = []string{
	"Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}
