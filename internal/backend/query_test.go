package backend

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterKey(t *testing.T) {
	assert.Equal(t, "filter[user][_eq]", FilterKey(OpEq, "user"))
	assert.Equal(t, "filter[users][directus_users_id][_eq]", FilterKey(OpEq, "users", "directus_users_id"))
	assert.Equal(t, "filter[id][_in]", FilterKey(OpIn, "id"))
}

func TestFilterOrKey(t *testing.T) {
	assert.Equal(t, "filter[_or][0][photo][_eq]", FilterOrKey(0, OpEq, "photo"))
	assert.Equal(t, "filter[_or][2][receipt][_eq]", FilterOrKey(2, OpEq, "receipt"))
}

func TestSetFilterEq_OverwritesCallerValue(t *testing.T) {
	q := url.Values{}
	q.Set("filter[user][_eq]", "someone-else")
	q.Set("limit", "5")

	SetFilterEq(q, "42", "user")

	assert.Equal(t, "42", q.Get("filter[user][_eq]"))
	assert.Equal(t, "5", q.Get("limit"))
}

func TestSetFilterEq_StripsOtherOperatorVariants(t *testing.T) {
	q := url.Values{}
	q.Set("filter[user][_in]", "1,2,3")
	q.Set("filter[user][_eq]", "7")
	q.Set("filter[username][_eq]", "keep-me")

	SetFilterEq(q, "42", "user")

	assert.Equal(t, "42", q.Get("filter[user][_eq]"))
	assert.Empty(t, q.Get("filter[user][_in]"))
	assert.Equal(t, "keep-me", q.Get("filter[username][_eq]"))
}

func TestSetFilterEq_Idempotent(t *testing.T) {
	q := url.Values{}
	SetFilterEq(q, "42", "user")
	once := q.Encode()

	SetFilterEq(q, "42", "user")
	assert.Equal(t, once, q.Encode())
}

func TestSetFilterIn(t *testing.T) {
	q := url.Values{}
	SetFilterIn(q, []string{"a", "b", "c"}, "id")
	assert.Equal(t, "a,b,c", q.Get("filter[id][_in]"))
}

func TestSetLimitAndAddField(t *testing.T) {
	q := url.Values{}
	SetLimit(q, 1)
	AddField(q, "id")
	AddField(q, "email")

	assert.Equal(t, "1", q.Get("limit"))
	assert.Equal(t, []string{"id", "email"}, q["fields[]"])
}
