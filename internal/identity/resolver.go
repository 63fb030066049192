package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"authproxy/internal/backend"
)

// ErrMappingFailed indicates the email→user lookup call itself failed
// (network error or backend 5xx), as opposed to matching zero rows.
var ErrMappingFailed = errors.New("identity mapping lookup failed")

const errMappingFailedFmt = "%w: %v"

// Resolved is the per-request identity of an identity-bearer caller.
// BackendUserID stays "" until resolution succeeds; an identity with an
// empty BackendUserID must never be used to authorize protected access.
type Resolved struct {
	Subject       string
	Email         string
	BackendUserID string
}

// Resolver maps a verified email claim to a backend user id. An empty id
// with a nil error means no backend user matched.
type Resolver interface {
	ResolveBackendUser(ctx context.Context, email string) (string, error)
}

// BackendResolver resolves against the data API's user collection with the
// shared service credential. Every request re-resolves; there is no state.
type BackendResolver struct {
	client *backend.Client
	log    zerolog.Logger
}

func NewBackendResolver(client *backend.Client, log zerolog.Logger) *BackendResolver {
	return &BackendResolver{client: client, log: log}
}

func (r *BackendResolver) ResolveBackendUser(ctx context.Context, email string) (string, error) {
	id, err := r.client.LookupUserIDByEmail(ctx, email)
	if err != nil {
		r.log.Warn().Err(err).Msg("backend user lookup failed")
		return "", fmt.Errorf(errMappingFailedFmt, ErrMappingFailed, err)
	}

	return id, nil
}
