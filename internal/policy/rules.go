package policy

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/google/uuid"

	"authproxy/internal/backend"
)

// Rule encapsulates the ownership model of one protected collection:
// how to scope a list query to the caller, and how to check whether the
// caller owns a single resource by id.
type Rule interface {
	// PathPrefix is the inbound path prefix this rule protects,
	// e.g. "/items/Complaint".
	PathPrefix() string

	// RewriteList returns a copy of the query with the collection's
	// ownership filter set to the caller, overwriting any caller-supplied
	// value for the same filter.
	RewriteList(ctx context.Context, callerID string, q url.Values) (url.Values, error)

	// CheckDetail reports whether the resource with the given id is owned
	// by (or transitively linked to) the caller.
	CheckDetail(ctx context.Context, resourceID, callerID string) (bool, error)

	// EnforceAllMethods reports whether CheckDetail applies to every HTTP
	// method, not just GET. Only self-record collections set this.
	EnforceAllMethods() bool

	// DenyMessage is the 403 body text when CheckDetail fails.
	DenyMessage() string
}

// Registry is the flat, immutable set of collection rules. Built once at
// startup, read-only afterwards; safe for concurrent use.
type Registry struct {
	rules []Rule
}

func NewRegistry(rules ...Rule) *Registry {
	return &Registry{rules: rules}
}

// Match returns the rule protecting the given path, if any. A prefix only
// matches on a path-segment boundary.
func (reg *Registry) Match(path string) (Rule, bool) {
	for _, r := range reg.rules {
		prefix := r.PathPrefix()
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return r, true
		}
	}
	return nil, false
}

// splitResource extracts the id segment following the rule prefix.
// Returns ok=false for a bare list path.
func splitResource(path, prefix string) (string, bool) {
	rest := strings.TrimPrefix(path, prefix)
	rest = strings.TrimPrefix(rest, "/")
	if rest == "" {
		return "", false
	}
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		rest = rest[:i]
	}
	return rest, true
}

// ownerFieldRule protects a collection whose rows carry the owner's user id
// in a direct field.
type ownerFieldRule struct {
	prefix string
	field  string
	label  string
	client *backend.Client
}

func NewOwnerFieldRule(prefix, field, label string, client *backend.Client) Rule {
	return &ownerFieldRule{prefix: prefix, field: field, label: label, client: client}
}

func (r *ownerFieldRule) PathPrefix() string      { return r.prefix }
func (r *ownerFieldRule) EnforceAllMethods() bool { return false }

func (r *ownerFieldRule) DenyMessage() string {
	return fmt.Sprintf(msgNotOwnedFmt, r.label)
}

func (r *ownerFieldRule) RewriteList(_ context.Context, callerID string, q url.Values) (url.Values, error) {
	out := cloneValues(q)
	backend.SetFilterEq(out, callerID, r.field)
	return out, nil
}

func (r *ownerFieldRule) CheckDetail(ctx context.Context, resourceID, callerID string) (bool, error) {
	q := url.Values{}
	backend.SetFilterEq(q, resourceID, fieldID)
	backend.SetFilterEq(q, callerID, r.field)
	return r.client.Exists(ctx, r.prefix, q)
}

// pivotRule protects a collection linked to users through a many-to-many
// junction: ownership means the caller's id appears among the linked ids.
type pivotRule struct {
	prefix   string
	relation string
	subfield string
	label    string
	client   *backend.Client
}

func NewPivotRule(prefix, relation, subfield, label string, client *backend.Client) Rule {
	return &pivotRule{prefix: prefix, relation: relation, subfield: subfield, label: label, client: client}
}

func (r *pivotRule) PathPrefix() string      { return r.prefix }
func (r *pivotRule) EnforceAllMethods() bool { return false }

func (r *pivotRule) DenyMessage() string {
	return fmt.Sprintf(msgNotOwnedFmt, r.label)
}

func (r *pivotRule) RewriteList(_ context.Context, callerID string, q url.Values) (url.Values, error) {
	out := cloneValues(q)
	backend.SetFilterEq(out, callerID, r.relation, r.subfield)
	return out, nil
}

func (r *pivotRule) CheckDetail(ctx context.Context, resourceID, callerID string) (bool, error) {
	q := url.Values{}
	backend.SetFilterEq(q, resourceID, fieldID)
	backend.SetFilterEq(q, callerID, r.relation, r.subfield)
	return r.client.Exists(ctx, r.prefix, q)
}

// transitiveRule protects a collection with no owner field of its own:
// a resource is owned when some row of a parent collection owned by the
// caller references it through one of a fixed set of attachment fields.
type transitiveRule struct {
	prefix           string
	parentPath       string
	ownerField       string
	attachmentFields []string
	label            string
	client           *backend.Client
}

func NewTransitiveRule(prefix, parentPath, ownerField string, attachmentFields []string, label string, client *backend.Client) Rule {
	return &transitiveRule{
		prefix:           prefix,
		parentPath:       parentPath,
		ownerField:       ownerField,
		attachmentFields: attachmentFields,
		label:            label,
		client:           client,
	}
}

func (r *transitiveRule) PathPrefix() string      { return r.prefix }
func (r *transitiveRule) EnforceAllMethods() bool { return false }

func (r *transitiveRule) DenyMessage() string {
	return fmt.Sprintf(msgNotOwnedFmt, r.label)
}

func (r *transitiveRule) RewriteList(ctx context.Context, callerID string, q url.Values) (url.Values, error) {
	ids, err := r.ownedAttachmentIDs(ctx, callerID)
	if err != nil {
		return nil, err
	}

	out := cloneValues(q)
	if len(ids) == 0 {
		// The filter must never be omitted: an empty owned set scopes the
		// list to a sentinel id that cannot exist.
		backend.SetFilterIn(out, []string{uuid.Nil.String()}, fieldID)
		return out, nil
	}

	backend.SetFilterIn(out, ids, fieldID)
	return out, nil
}

func (r *transitiveRule) CheckDetail(ctx context.Context, resourceID, callerID string) (bool, error) {
	q := url.Values{}
	backend.SetFilterEq(q, callerID, r.ownerField)
	for i, field := range r.attachmentFields {
		q.Set(backend.FilterOrKey(i, backend.OpEq, field), resourceID)
	}
	return r.client.Exists(ctx, r.parentPath, q)
}

// ownedAttachmentIDs queries the caller's parent rows projected to the
// attachment fields and unions every referenced id.
func (r *transitiveRule) ownedAttachmentIDs(ctx context.Context, callerID string) ([]string, error) {
	q := url.Values{}
	backend.SetFilterEq(q, callerID, r.ownerField)
	for _, field := range r.attachmentFields {
		backend.AddField(q, field)
	}

	rows, err := r.client.Items(ctx, r.parentPath, q)
	if err != nil {
		return nil, err
	}

	set := make(map[string]struct{})
	for _, row := range rows {
		for _, field := range r.attachmentFields {
			if id, ok := row[field].(string); ok && id != "" {
				set[id] = struct{}{}
			}
		}
	}

	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// selfRule protects the caller's own user record: the path id must equal
// the caller's backend id for every HTTP method, and lists are scoped to
// the caller's own row. No backend round trip is needed.
type selfRule struct {
	prefix string
}

func NewSelfRule(prefix string) Rule {
	return &selfRule{prefix: prefix}
}

func (r *selfRule) PathPrefix() string      { return r.prefix }
func (r *selfRule) EnforceAllMethods() bool { return true }

func (r *selfRule) DenyMessage() string {
	return msgNotYourRecord
}

func (r *selfRule) RewriteList(_ context.Context, callerID string, q url.Values) (url.Values, error) {
	out := cloneValues(q)
	backend.SetFilterEq(out, callerID, fieldID)
	return out, nil
}

func (r *selfRule) CheckDetail(_ context.Context, resourceID, callerID string) (bool, error) {
	return resourceID == callerID, nil
}

func cloneValues(q url.Values) url.Values {
	out := make(url.Values, len(q))
	for k, vs := range q {
		out[k] = append([]string(nil), vs...)
	}
	return out
}
