package backend

const (
	errInvalidBaseURLFmt = "invalid backend base URL: %w"
	errBuildRequestFmt   = "failed to build backend request: %w"
	errQueryFailedFmt    = "backend query %s failed: %w"
	errQueryStatusFmt    = "backend query %s returned status %d: %s"
	errDecodeResponseFmt = "failed to decode backend response for %s: %w"
	errUserIDShapeFmt    = "unexpected user id shape in backend response: %v"
)
