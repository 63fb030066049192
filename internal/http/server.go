package http

import (
	"context"
	stdhttp "net/http"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"authproxy/internal/config"
	"authproxy/internal/http/middleware"
	"authproxy/internal/proxy"
)

const (
	jsonKeyStatus = "status"
	statusOK      = "ok"

	healthPath   = "/health"
	catchAllPath = "/*"
)

type Server struct {
	echo *echo.Echo
}

// NewServer assembles the echo instance. CORS runs before the proxy
// handler so OPTIONS pre-flights are answered directly and never reach
// the classifier; everything else falls through to the pipeline.
func NewServer(cfg *config.Config, handler *proxy.Handler) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.HTTPErrorHandler = ErrorHandler

	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	e.Use(middleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOriginFunc: func(string) (bool, error) {
			return true, nil
		},
		AllowCredentials: true,
		AllowMethods: []string{
			stdhttp.MethodGet,
			stdhttp.MethodHead,
			stdhttp.MethodPost,
			stdhttp.MethodPut,
			stdhttp.MethodPatch,
			stdhttp.MethodDelete,
			stdhttp.MethodOptions,
		},
	}))

	rateLimiter := middleware.NewRateLimiter(cfg.App.RatePerSecond, cfg.App.RateBurst)
	e.Use(rateLimiter.Middleware())

	e.GET(healthPath, healthCheck)
	e.Any(catchAllPath, handler.Handle)

	return &Server{echo: e}
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Echo exposes the underlying instance for tests.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

func healthCheck(c echo.Context) error {
	return c.JSON(stdhttp.StatusOK, map[string]string{
		jsonKeyStatus: statusOK,
	})
}
