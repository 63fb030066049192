package policy

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"authproxy/internal/backend"
	"authproxy/internal/config"
)

func newRuleClient(t *testing.T, handler http.HandlerFunc) *backend.Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := backend.NewClient(config.BackendConfig{
		BaseURL:        srv.URL,
		ServiceToken:   "shared-service-token",
		ForwardTimeout: time.Second,
	}, zerolog.Nop())
	require.NoError(t, err)

	return client
}

func TestRegistry_Match(t *testing.T) {
	reg := NewRegistry(
		NewSelfRule("/items/users"),
		NewOwnerFieldRule("/items/Complaint", "user", "complaint", nil),
	)

	rule, ok := reg.Match("/items/Complaint")
	require.True(t, ok)
	assert.Equal(t, "/items/Complaint", rule.PathPrefix())

	rule, ok = reg.Match("/items/Complaint/7")
	require.True(t, ok)
	assert.Equal(t, "/items/Complaint", rule.PathPrefix())

	// Segment boundaries only: a sibling collection must not match.
	_, ok = reg.Match("/items/ComplaintArchive")
	assert.False(t, ok)

	_, ok = reg.Match("/items/Announcement")
	assert.False(t, ok)
}

func TestSplitResource(t *testing.T) {
	id, isDetail := splitResource("/items/Complaint", "/items/Complaint")
	assert.False(t, isDetail)
	assert.Empty(t, id)

	id, isDetail = splitResource("/items/Complaint/7", "/items/Complaint")
	assert.True(t, isDetail)
	assert.Equal(t, "7", id)

	id, isDetail = splitResource("/items/Complaint/7/comments", "/items/Complaint")
	assert.True(t, isDetail)
	assert.Equal(t, "7", id)
}

func TestOwnerFieldRule_RewriteListOverwritesAndIsIdempotent(t *testing.T) {
	rule := NewOwnerFieldRule("/items/Complaint", "user", "complaint", nil)

	q := url.Values{}
	q.Set("filter[user][_eq]", "99")
	q.Set("sort", "-date_created")

	once, err := rule.RewriteList(context.Background(), "42", q)
	require.NoError(t, err)
	assert.Equal(t, "42", once.Get("filter[user][_eq]"))
	assert.Equal(t, "-date_created", once.Get("sort"))
	assert.Len(t, once["filter[user][_eq]"], 1)

	twice, err := rule.RewriteList(context.Background(), "42", once)
	require.NoError(t, err)
	assert.Equal(t, once.Encode(), twice.Encode())

	// The inbound query is never mutated in place.
	assert.Equal(t, "99", q.Get("filter[user][_eq]"))
}

func TestOwnerFieldRule_CheckDetail(t *testing.T) {
	var seen url.Values
	rows := `{"data":[{"id":"7"}]}`
	rule := NewOwnerFieldRule("/items/Complaint", "user", "complaint", newRuleClient(t, func(w http.ResponseWriter, r *http.Request) {
		seen = r.URL.Query()
		w.Write([]byte(rows))
	}))

	owned, err := rule.CheckDetail(context.Background(), "7", "42")
	require.NoError(t, err)
	assert.True(t, owned)
	assert.Equal(t, "7", seen.Get("filter[id][_eq]"))
	assert.Equal(t, "42", seen.Get("filter[user][_eq]"))
	assert.Equal(t, "1", seen.Get("limit"))

	rows = `{"data":[]}`
	owned, err = rule.CheckDetail(context.Background(), "7", "42")
	require.NoError(t, err)
	assert.False(t, owned)
}

func TestPivotRule_RewriteList(t *testing.T) {
	rule := NewPivotRule("/items/notification", "users", "directus_users_id", "notification", nil)

	q, err := rule.RewriteList(context.Background(), "42", url.Values{})
	require.NoError(t, err)
	assert.Equal(t, "42", q.Get("filter[users][directus_users_id][_eq]"))
}

func TestPivotRule_CheckDetailQueryShape(t *testing.T) {
	var seen url.Values
	rule := NewPivotRule("/items/notification", "users", "directus_users_id", "notification", newRuleClient(t, func(w http.ResponseWriter, r *http.Request) {
		seen = r.URL.Query()
		w.Write([]byte(`{"data":[{"id":"n1"}]}`))
	}))

	owned, err := rule.CheckDetail(context.Background(), "n1", "42")
	require.NoError(t, err)
	assert.True(t, owned)
	assert.Equal(t, "n1", seen.Get("filter[id][_eq]"))
	assert.Equal(t, "42", seen.Get("filter[users][directus_users_id][_eq]"))
}

func TestTransitiveRule_RewriteListUnionsAttachmentIDs(t *testing.T) {
	var seen url.Values
	rule := NewTransitiveRule("/files", "/items/Complaint", "user", []string{"photo", "document"}, "file", newRuleClient(t, func(w http.ResponseWriter, r *http.Request) {
		seen = r.URL.Query()
		w.Write([]byte(`{"data":[
			{"photo":"f1","document":"f2"},
			{"photo":"f2","document":null},
			{"photo":null,"document":"f3"}
		]}`))
	}))

	q, err := rule.RewriteList(context.Background(), "42", url.Values{})
	require.NoError(t, err)
	assert.Equal(t, "f1,f2,f3", q.Get("filter[id][_in]"))

	assert.Equal(t, "42", seen.Get("filter[user][_eq]"))
	assert.ElementsMatch(t, []string{"photo", "document"}, seen["fields[]"])
}

func TestTransitiveRule_EmptySetNeverExposesCollection(t *testing.T) {
	rule := NewTransitiveRule("/files", "/items/Complaint", "user", []string{"photo", "document"}, "file", newRuleClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"data":[]}`))
	}))

	q, err := rule.RewriteList(context.Background(), "42", url.Values{})
	require.NoError(t, err)
	assert.Equal(t, uuid.Nil.String(), q.Get("filter[id][_in]"))
}

func TestTransitiveRule_CheckDetailSingleQuery(t *testing.T) {
	var seen url.Values
	calls := 0
	rule := NewTransitiveRule("/files", "/items/Complaint", "user", []string{"photo", "document"}, "file", newRuleClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		seen = r.URL.Query()
		w.Write([]byte(`{"data":[{"id":"c1"}]}`))
	}))

	owned, err := rule.CheckDetail(context.Background(), "f1", "42")
	require.NoError(t, err)
	assert.True(t, owned)
	assert.Equal(t, 1, calls)

	assert.Equal(t, "42", seen.Get("filter[user][_eq]"))
	assert.Equal(t, "f1", seen.Get("filter[_or][0][photo][_eq]"))
	assert.Equal(t, "f1", seen.Get("filter[_or][1][document][_eq]"))
}

func TestSelfRule(t *testing.T) {
	rule := NewSelfRule("/items/users")

	assert.True(t, rule.EnforceAllMethods())

	owned, err := rule.CheckDetail(context.Background(), "42", "42")
	require.NoError(t, err)
	assert.True(t, owned)

	owned, err = rule.CheckDetail(context.Background(), "99", "42")
	require.NoError(t, err)
	assert.False(t, owned)

	q, err := rule.RewriteList(context.Background(), "42", url.Values{})
	require.NoError(t, err)
	assert.Equal(t, "42", q.Get("filter[id][_eq]"))
}
