package proxy

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"authproxy/internal/auth"
	"authproxy/internal/policy"
)

// Handler runs the per-request pipeline: classify, evaluate policy,
// forward. Each stage may short-circuit with a terminal JSON response.
type Handler struct {
	classifier *auth.Classifier
	engine     *policy.Engine
	forwarder  *Forwarder
	log        zerolog.Logger
}

func NewHandler(classifier *auth.Classifier, engine *policy.Engine, forwarder *Forwarder, log zerolog.Logger) *Handler {
	return &Handler{
		classifier: classifier,
		engine:     engine,
		forwarder:  forwarder,
		log:        log,
	}
}

func (h *Handler) Handle(c echo.Context) error {
	r := c.Request()
	ctx := r.Context()

	cls, err := h.classifier.Classify(ctx, r)
	if err != nil {
		if errors.Is(err, auth.ErrVerifierRejected) {
			return respondError(c, http.StatusUnauthorized, msgInvalidToken)
		}
		h.log.Error().Err(err).Msg("classification failed")
		return respondError(c, http.StatusUnauthorized, msgGenericUnauthorized)
	}

	decision := h.engine.Evaluate(ctx, cls, r.Method, r.URL.Path, r.URL.Query())
	if !decision.Allow {
		h.log.Info().
			Str("mode", string(cls.Mode)).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", decision.Status).
			Msg("request denied")
		return respondError(c, decision.Status, decision.Reason)
	}

	return h.forwarder.Forward(c, decision)
}

func respondError(c echo.Context, status int, message string) error {
	return c.JSON(status, map[string]string{jsonKeyError: message})
}
