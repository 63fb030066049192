package proxy

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"authproxy/internal/config"
	"authproxy/internal/http/middleware"
	"authproxy/internal/policy"
)

// Forwarder relays a request to the data API. The caller's credential is
// always replaced with the shared service credential, except in
// bypass-forward mode where the original Authorization header survives
// untouched. The backend response streams back to the caller unchanged.
type Forwarder struct {
	baseURL      *url.URL
	serviceToken string
	httpClient   *http.Client
	log          zerolog.Logger
}

func NewForwarder(cfg config.BackendConfig, log zerolog.Logger) (*Forwarder, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf(errInvalidBaseURLFmt, err)
	}

	return &Forwarder{
		baseURL:      base,
		serviceToken: cfg.ServiceToken,
		httpClient:   &http.Client{Timeout: cfg.ForwardTimeout},
		log:          log,
	}, nil
}

func (f *Forwarder) Forward(c echo.Context, decision policy.Decision) error {
	inbound := c.Request()

	target := *f.baseURL
	target.Path = strings.TrimRight(target.Path, "/") + inbound.URL.Path
	if decision.Query != nil {
		target.RawQuery = decision.Query.Encode()
	} else {
		target.RawQuery = inbound.URL.RawQuery
	}

	outbound, err := http.NewRequestWithContext(inbound.Context(), inbound.Method, target.String(), inbound.Body)
	if err != nil {
		return fmt.Errorf(errBuildForwardFmt, err)
	}
	outbound.ContentLength = inbound.ContentLength

	copyHeaders(outbound.Header, inbound.Header)

	if !decision.RetainCredential {
		outbound.Header.Set(headerAuthorization, bearerPrefix+f.serviceToken)
	}

	if id := decision.Identity; id != nil {
		if id.Subject != "" {
			outbound.Header.Set(headerCallerSubject, id.Subject)
		}
		if id.Email != "" {
			outbound.Header.Set(headerCallerEmail, id.Email)
		}
		if id.BackendUserID != "" {
			outbound.Header.Set(headerCallerBackendID, id.BackendUserID)
		}
	}

	if requestID := middleware.GetRequestID(c); requestID != "" {
		outbound.Header.Set(middleware.RequestIDHeader, requestID)
	}

	resp, err := f.httpClient.Do(outbound)
	if err != nil {
		f.log.Error().Err(err).Str("target", target.String()).Msg("forward to backend failed")
		return respondError(c, http.StatusBadGateway, msgBackendUnreachable)
	}
	defer resp.Body.Close()

	respHeader := c.Response().Header()
	copyHeaders(respHeader, resp.Header)

	c.Response().WriteHeader(resp.StatusCode)
	if _, err := io.Copy(c.Response(), resp.Body); err != nil {
		// The status line is already on the wire; all that is left is to
		// log the truncated stream.
		f.log.Warn().Err(err).Msg("backend response stream interrupted")
	}

	return nil
}

func copyHeaders(dst, src http.Header) {
	for key, values := range src {
		if isHopByHop(key) {
			continue
		}
		for _, v := range values {
			dst.Add(key, v)
		}
	}
}

func isHopByHop(key string) bool {
	for _, h := range hopByHopHeaders {
		if http.CanonicalHeaderKey(key) == h {
			return true
		}
	}
	return false
}
