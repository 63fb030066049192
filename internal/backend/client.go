package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"authproxy/internal/config"
)

const (
	headerAuthorization = "Authorization"
	bearerPrefix        = "Bearer "

	usersPath  = "/users"
	fieldID    = "id"
	fieldEmail = "email"

	maxErrorBodyBytes = 4096
)

// Client issues service-credentialed read queries against the data API.
// It is used for identity lookups and ownership checks only; full request
// forwarding lives in the proxy package.
type Client struct {
	baseURL      *url.URL
	serviceToken string
	httpClient   *http.Client
	log          zerolog.Logger
}

func NewClient(cfg config.BackendConfig, log zerolog.Logger) (*Client, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf(errInvalidBaseURLFmt, err)
	}

	return &Client{
		baseURL:      base,
		serviceToken: cfg.ServiceToken,
		httpClient:   &http.Client{Timeout: cfg.ForwardTimeout},
		log:          log,
	}, nil
}

type itemsEnvelope struct {
	Data []map[string]any `json:"data"`
}

// Items performs a GET against the given collection path with the given
// query and returns the decoded data rows.
func (c *Client) Items(ctx context.Context, path string, q url.Values) ([]map[string]any, error) {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + path
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf(errBuildRequestFmt, err)
	}
	req.Header.Set(headerAuthorization, bearerPrefix+c.serviceToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf(errQueryFailedFmt, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		c.log.Warn().
			Str("path", path).
			Int("status", resp.StatusCode).
			Msg("backend query returned non-200")
		return nil, fmt.Errorf(errQueryStatusFmt, path, resp.StatusCode, body)
	}

	var envelope itemsEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf(errDecodeResponseFmt, path, err)
	}

	return envelope.Data, nil
}

// Exists reports whether at least one row matches the given query. The
// query is narrowed to a single id projection with limit 1 before sending.
func (c *Client) Exists(ctx context.Context, path string, q url.Values) (bool, error) {
	scoped := cloneValues(q)
	SetLimit(scoped, 1)
	scoped.Del(paramFields)
	AddField(scoped, fieldID)

	rows, err := c.Items(ctx, path, scoped)
	if err != nil {
		return false, err
	}

	return len(rows) > 0, nil
}

// LookupUserIDByEmail maps an email claim to a backend user id. Returns ""
// with a nil error when no user matches; the first row wins when several do.
func (c *Client) LookupUserIDByEmail(ctx context.Context, email string) (string, error) {
	q := url.Values{}
	SetFilterEq(q, email, fieldEmail)
	SetLimit(q, 1)
	AddField(q, fieldID)

	rows, err := c.Items(ctx, usersPath, q)
	if err != nil {
		return "", err
	}

	if len(rows) == 0 {
		return "", nil
	}

	id, ok := rows[0][fieldID].(string)
	if !ok {
		return "", fmt.Errorf(errUserIDShapeFmt, rows[0][fieldID])
	}

	return id, nil
}

func cloneValues(q url.Values) url.Values {
	out := make(url.Values, len(q))
	for k, vs := range q {
		out[k] = append([]string(nil), vs...)
	}
	return out
}
