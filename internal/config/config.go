package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
)

const (
	envPort                  = "PORT"
	envServerReadTimeout     = "SERVER_READ_TIMEOUT"
	envServerWriteTimeout    = "SERVER_WRITE_TIMEOUT"
	envServerShutdownTimeout = "SERVER_SHUTDOWN_TIMEOUT"
	envBackendURL            = "BACKEND_URL"
	envServiceToken          = "SERVICE_TOKEN"
	envSessionCookie         = "SESSION_COOKIE"
	envVerifierSecret        = "VERIFIER_SECRET"
	envVerifierIssuer        = "VERIFIER_ISSUER"
	envOnVerifierFailure     = "ON_VERIFIER_FAILURE"
	envResolverCacheTTL      = "RESOLVER_CACHE_TTL"
	envForwardTimeout        = "FORWARD_TIMEOUT"
	envRateLimitPerSecond    = "RATE_LIMIT_PER_SECOND"
	envRateLimitBurst        = "RATE_LIMIT_BURST"
)

const (
	defaultServerPort         = "8080"
	defaultServerReadTimeout  = 10 * time.Second
	defaultServerWriteTimeout = 30 * time.Second
	defaultServerShutdown     = 10 * time.Second
	defaultSessionCookie      = "directus_session_token"
	defaultForwardTimeout     = 30 * time.Second
	defaultRatePerSecond      = 50
	defaultRateBurst          = 100
	minServiceTokenLength     = 16
)

// VerifierFailureMode controls what happens when a bearer token fails
// identity verification: pass it through to the backend untouched
// (compatible with CMS personal access tokens), or reject outright.
type VerifierFailureMode string

const (
	VerifierFailureBypass VerifierFailureMode = "bypass"
	VerifierFailureDeny   VerifierFailureMode = "deny"
)

type Config struct {
	Server   ServerConfig
	Backend  BackendConfig
	Verifier VerifierConfig
	App      AppConfig
}

type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type BackendConfig struct {
	BaseURL        string
	ServiceToken   string
	ForwardTimeout time.Duration
}

type VerifierConfig struct {
	Secret        string
	Issuer        string
	OnFailure     VerifierFailureMode
	ResolverCache time.Duration
}

type AppConfig struct {
	SessionCookie string
	RatePerSecond int
	RateBurst     int
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv(envPort, defaultServerPort),
			ReadTimeout:     getDurationEnv(envServerReadTimeout, defaultServerReadTimeout),
			WriteTimeout:    getDurationEnv(envServerWriteTimeout, defaultServerWriteTimeout),
			ShutdownTimeout: getDurationEnv(envServerShutdownTimeout, defaultServerShutdown),
		},
		Backend: BackendConfig{
			BaseURL:        os.Getenv(envBackendURL),
			ServiceToken:   os.Getenv(envServiceToken),
			ForwardTimeout: getDurationEnv(envForwardTimeout, defaultForwardTimeout),
		},
		Verifier: VerifierConfig{
			Secret:        os.Getenv(envVerifierSecret),
			Issuer:        os.Getenv(envVerifierIssuer),
			OnFailure:     VerifierFailureMode(getEnv(envOnVerifierFailure, string(VerifierFailureBypass))),
			ResolverCache: getDurationEnv(envResolverCacheTTL, 0),
		},
		App: AppConfig{
			SessionCookie: getEnv(envSessionCookie, defaultSessionCookie),
			RatePerSecond: getIntEnv(envRateLimitPerSecond, defaultRatePerSecond),
			RateBurst:     getIntEnv(envRateLimitBurst, defaultRateBurst),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf(errInvalidConfigurationFmt, err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf(errPortRequired)
	}

	if c.Backend.BaseURL == "" {
		return fmt.Errorf(errBackendURLRequired)
	}

	if u, err := url.Parse(c.Backend.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf(errBackendURLInvalidFmt, c.Backend.BaseURL)
	}

	if c.Backend.ServiceToken == "" {
		return fmt.Errorf(errServiceTokenRequired)
	}

	if len(c.Backend.ServiceToken) < minServiceTokenLength {
		return fmt.Errorf(errServiceTokenMinLengthFmt, minServiceTokenLength)
	}

	if c.Verifier.Secret == "" {
		return fmt.Errorf(errVerifierSecretRequired)
	}

	switch c.Verifier.OnFailure {
	case VerifierFailureBypass, VerifierFailureDeny:
	default:
		return fmt.Errorf(errVerifierFailureModeFmt, c.Verifier.OnFailure)
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
