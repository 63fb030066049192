package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"authproxy/internal/auth"
	"authproxy/internal/backend"
	"authproxy/internal/config"
	httpserver "authproxy/internal/http"
	"authproxy/internal/identity"
	"authproxy/internal/policy"
	"authproxy/internal/policy/presets"
	"authproxy/internal/proxy"
)

const (
	errLoadConfigFmt    = "failed to load config: %w"
	errBackendClientFmt = "failed to create backend client: %w"
	errForwarderFmt     = "failed to create forwarder: %w"
)

// Service owns the wired proxy and its HTTP server lifecycle.
type Service struct {
	cfg    *config.Config
	server *httpserver.Server
	log    zerolog.Logger
}

// NewService loads configuration and wires the full pipeline:
// classifier → resolver → policy engine → forwarder.
func NewService(log zerolog.Logger) (*Service, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf(errLoadConfigFmt, err)
	}

	client, err := backend.NewClient(cfg.Backend, log)
	if err != nil {
		return nil, fmt.Errorf(errBackendClientFmt, err)
	}

	verifier := auth.NewJWTVerifier(cfg.Verifier)
	classifier := auth.NewClassifier(cfg.App.SessionCookie, cfg.Backend.ServiceToken, verifier, cfg.Verifier.OnFailure)

	var resolver identity.Resolver = identity.NewBackendResolver(client, log)
	if cfg.Verifier.ResolverCache > 0 {
		resolver = identity.NewCachedResolver(resolver, cfg.Verifier.ResolverCache)
	}

	engine := policy.NewEngine(presets.ComplaintPortal(client), presets.PublicEndpoints(), resolver, log)

	forwarder, err := proxy.NewForwarder(cfg.Backend, log)
	if err != nil {
		return nil, fmt.Errorf(errForwarderFmt, err)
	}

	handler := proxy.NewHandler(classifier, engine, forwarder, log)
	server := httpserver.NewServer(cfg, handler)

	return &Service{
		cfg:    cfg,
		server: server,
		log:    log,
	}, nil
}

// Run starts the server and blocks until SIGINT/SIGTERM, then shuts down
// gracefully within the configured timeout.
func (s *Service) Run() error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.server.Start(":" + s.cfg.Server.Port)
	}()

	s.log.Info().
		Str("port", s.cfg.Server.Port).
		Str("backend", s.cfg.Backend.BaseURL).
		Msg("authorization proxy listening")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		s.log.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()

	return s.server.Shutdown(ctx)
}
