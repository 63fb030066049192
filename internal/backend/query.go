package backend

import (
	"net/url"
	"strconv"
	"strings"
)

// Filter operators of the data API's query grammar.
const (
	OpEq = "_eq"
	OpIn = "_in"
)

const (
	paramLimit  = "limit"
	paramFields = "fields[]"

	filterPrefix = "filter["
)

// FilterKey builds a filter parameter name for a (possibly nested) field
// path, e.g. FilterKey(OpEq, "user") -> "filter[user][_eq]" and
// FilterKey(OpEq, "users", "directus_users_id") ->
// "filter[users][directus_users_id][_eq]".
func FilterKey(op string, fields ...string) string {
	var b strings.Builder
	b.WriteString("filter")
	for _, f := range fields {
		b.WriteString("[")
		b.WriteString(f)
		b.WriteString("]")
	}
	b.WriteString("[")
	b.WriteString(op)
	b.WriteString("]")
	return b.String()
}

// FilterOrKey builds one branch of a top-level _or filter, e.g.
// FilterOrKey(0, OpEq, "photo") -> "filter[_or][0][photo][_eq]".
func FilterOrKey(index int, op string, fields ...string) string {
	var b strings.Builder
	b.WriteString("filter[_or][")
	b.WriteString(strconv.Itoa(index))
	b.WriteString("]")
	for _, f := range fields {
		b.WriteString("[")
		b.WriteString(f)
		b.WriteString("]")
	}
	b.WriteString("[")
	b.WriteString(op)
	b.WriteString("]")
	return b.String()
}

// FieldFilterPrefix is the common prefix of every filter parameter touching
// the given top-level field, regardless of operator or nesting.
func FieldFilterPrefix(field string) string {
	return filterPrefix + field + "]"
}

// StripFieldFilters removes every caller-supplied filter parameter that
// touches the given top-level field. Callers must not be able to loosen an
// ownership constraint by supplying their own operator variant.
func StripFieldFilters(q url.Values, field string) {
	prefix := FieldFilterPrefix(field)
	for key := range q {
		if strings.HasPrefix(key, prefix) {
			delete(q, key)
		}
	}
}

// SetFilterEq sets an equality filter on a field path, replacing any prior
// filter on the same top-level field.
func SetFilterEq(q url.Values, value string, fields ...string) {
	StripFieldFilters(q, fields[0])
	q.Set(FilterKey(OpEq, fields...), value)
}

// SetFilterIn sets an IN filter on a field path, replacing any prior filter
// on the same top-level field. Values are joined as CSV.
func SetFilterIn(q url.Values, values []string, fields ...string) {
	StripFieldFilters(q, fields[0])
	q.Set(FilterKey(OpIn, fields...), strings.Join(values, ","))
}

// SetLimit sets the row limit parameter.
func SetLimit(q url.Values, n int) {
	q.Set(paramLimit, strconv.Itoa(n))
}

// AddField appends a field projection parameter.
func AddField(q url.Values, field string) {
	q.Add(paramFields, field)
}
