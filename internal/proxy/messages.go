package proxy

const (
	errInvalidBaseURLFmt = "invalid backend base URL: %w"
	errBuildForwardFmt   = "failed to build forward request: %w"
)
