package identity

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const cacheSize = 1024

// CachedResolver wraps a Resolver with a short-lived TTL cache keyed by
// email. Only successful non-empty mappings are cached: a miss or a lookup
// failure is always re-tried on the next request so that newly created
// backend users become visible immediately.
type CachedResolver struct {
	inner Resolver
	cache *expirable.LRU[string, string]
}

func NewCachedResolver(inner Resolver, ttl time.Duration) *CachedResolver {
	return &CachedResolver{
		inner: inner,
		cache: expirable.NewLRU[string, string](cacheSize, nil, ttl),
	}
}

func (r *CachedResolver) ResolveBackendUser(ctx context.Context, email string) (string, error) {
	if id, ok := r.cache.Get(email); ok {
		return id, nil
	}

	id, err := r.inner.ResolveBackendUser(ctx, email)
	if err != nil {
		return "", err
	}

	if id != "" {
		r.cache.Add(email, id)
	}

	return id, nil
}
