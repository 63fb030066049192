package policy

import (
	"context"
	"net/http"
	"net/url"

	"github.com/rs/zerolog"

	"authproxy/internal/auth"
	"authproxy/internal/identity"
)

// Decision is the terminal outcome of policy evaluation. Exactly one
// Decision is produced per request; once produced, no further policy
// logic runs.
type Decision struct {
	Allow  bool
	Status int
	Reason string

	// Query, when non-nil, replaces the outbound query string.
	Query url.Values

	// RetainCredential instructs the forwarder to leave the caller's
	// Authorization header untouched (bypass-forward).
	RetainCredential bool

	// Identity carries whatever caller identity is known, for the
	// auxiliary headers attached on forward.
	Identity *identity.Resolved
}

func deny(status int, reason string) Decision {
	return Decision{Status: status, Reason: reason}
}

// Engine evaluates the trust mode, public set and collection rules in
// strict order, first match wins. All fields are read-only after
// construction.
type Engine struct {
	rules    *Registry
	public   []PublicEndpoint
	resolver identity.Resolver
	log      zerolog.Logger
}

func NewEngine(rules *Registry, public []PublicEndpoint, resolver identity.Resolver, log zerolog.Logger) *Engine {
	return &Engine{
		rules:    rules,
		public:   public,
		resolver: resolver,
		log:      log,
	}
}

func (e *Engine) Evaluate(ctx context.Context, cls auth.Classification, method, path string, query url.Values) Decision {
	switch cls.Mode {
	case auth.TrustCookiePassthrough, auth.TrustServiceBypass:
		return Decision{Allow: true}
	case auth.TrustOpaqueBypass:
		return Decision{Allow: true, RetainCredential: true}
	}

	// A pass-through service credential never reaches this point, so the
	// public set only ever admits anonymous and identity-bearer callers.
	if e.isPublic(method, path) {
		return Decision{Allow: true, Identity: claimsIdentity(cls)}
	}

	rule, protected := e.rules.Match(path)
	if !protected {
		return Decision{Allow: true, Identity: claimsIdentity(cls)}
	}

	if cls.Mode != auth.TrustIdentityBearer {
		return deny(http.StatusUnauthorized, msgMissingCredential)
	}

	if cls.Claims.Email == "" {
		return deny(http.StatusForbidden, msgNoEmailClaim)
	}

	backendID, err := e.resolver.ResolveBackendUser(ctx, cls.Claims.Email)
	if err != nil {
		return deny(http.StatusUnauthorized, msgMappingFailed)
	}
	if backendID == "" {
		e.log.Info().Str("email", cls.Claims.Email).Msg("no backend user for verified email")
		return deny(http.StatusForbidden, msgNoBackendUser)
	}

	caller := &identity.Resolved{
		Subject:       cls.Claims.Subject,
		Email:         cls.Claims.Email,
		BackendUserID: backendID,
	}

	return e.dispatch(ctx, rule, method, path, query, caller)
}

// dispatch applies the matched rule's list/detail handling. Non-GET
// requests pass through unrewritten unless the rule enforces its detail
// check on every method.
func (e *Engine) dispatch(ctx context.Context, rule Rule, method, path string, query url.Values, caller *identity.Resolved) Decision {
	resourceID, isDetail := splitResource(path, rule.PathPrefix())

	if method != http.MethodGet {
		if isDetail && rule.EnforceAllMethods() {
			return e.detailDecision(ctx, rule, resourceID, caller)
		}
		return Decision{Allow: true, Identity: caller}
	}

	if isDetail {
		return e.detailDecision(ctx, rule, resourceID, caller)
	}

	rewritten, err := rule.RewriteList(ctx, caller.BackendUserID, query)
	if err != nil {
		e.log.Error().Err(err).Str("path", path).Msg("list rewrite failed")
		return deny(http.StatusUnauthorized, msgAuthorizationError)
	}

	return Decision{Allow: true, Query: rewritten, Identity: caller}
}

func (e *Engine) detailDecision(ctx context.Context, rule Rule, resourceID string, caller *identity.Resolved) Decision {
	owned, err := rule.CheckDetail(ctx, resourceID, caller.BackendUserID)
	if err != nil {
		e.log.Error().Err(err).Str("resource", resourceID).Msg("ownership check failed")
		return deny(http.StatusUnauthorized, msgAuthorizationError)
	}
	if !owned {
		return deny(http.StatusForbidden, rule.DenyMessage())
	}
	return Decision{Allow: true, Identity: caller}
}

func (e *Engine) isPublic(method, path string) bool {
	for _, p := range e.public {
		if p.Matches(method, path) {
			return true
		}
	}
	return false
}

// claimsIdentity surfaces verified claims for auxiliary headers without
// resolving a backend user: resolution is lazy and only happens when a
// protected resource is touched.
func claimsIdentity(cls auth.Classification) *identity.Resolved {
	if cls.Claims == nil {
		return nil
	}
	return &identity.Resolved{
		Subject: cls.Claims.Subject,
		Email:   cls.Claims.Email,
	}
}
