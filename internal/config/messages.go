package config

const (
	errInvalidConfigurationFmt  = "invalid configuration: %w"
	errPortRequired             = "PORT must be set"
	errBackendURLRequired       = "BACKEND_URL must be set"
	errBackendURLInvalidFmt     = "BACKEND_URL is not a valid URL: %q"
	errServiceTokenRequired     = "SERVICE_TOKEN must be set"
	errServiceTokenMinLengthFmt = "SERVICE_TOKEN must be at least %d characters"
	errVerifierSecretRequired   = "VERIFIER_SECRET must be set"
	errVerifierFailureModeFmt   = "ON_VERIFIER_FAILURE must be \"bypass\" or \"deny\", got %q"
)
