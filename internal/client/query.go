package client

import (
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"
)

// Query builds Strapi-style list parameters.
type Query struct {
	values   url.Values
	sorts    int
	populate int
}

// NewQuery returns an empty query.
func NewQuery() *Query {
	return &Query{values: url.Values{}}
}

// Filter adds filters[a][b][$op]=value for the dotted field path "a.b".
// Slice values expand to filters[...][$op][i]=v.
func (q *Query) Filter(field, op string, value interface{}) *Query {
	key := "filters"
	for _, part := range strings.Split(field, ".") {
		key += "[" + part + "]"
	}
	if !strings.HasPrefix(op, "$") {
		op = "$" + op
	}
	key += "[" + op + "]"

	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() != reflect.Uint8 {
		for i := 0; i < rv.Len(); i++ {
			q.values.Add(key+"["+strconv.Itoa(i)+"]", formatValue(rv.Index(i).Interface()))
		}
		return q
	}
	q.values.Add(key, formatValue(value))
	return q
}

// Sort appends sort[i]=field:dir entries in order.
func (q *Query) Sort(fields ...string) *Query {
	for _, s := range fields {
		q.values.Set("sort["+strconv.Itoa(q.sorts)+"]", s)
		q.sorts++
	}
	return q
}

// Populate appends populate[i]=relation entries.
func (q *Query) Populate(relations ...string) *Query {
	for _, r := range relations {
		q.values.Set("populate["+strconv.Itoa(q.populate)+"]", r)
		q.populate++
	}
	return q
}

// Page sets pagination[page] and pagination[pageSize]. Zero values are omitted.
func (q *Query) Page(page, pageSize int) *Query {
	if page > 0 {
		q.values.Set("pagination[page]", strconv.Itoa(page))
	}
	if pageSize > 0 {
		q.values.Set("pagination[pageSize]", strconv.Itoa(pageSize))
	}
	return q
}

// Values returns a copy of the encoded parameters.
func (q *Query) Values() url.Values {
	out := url.Values{}
	if q == nil {
		return out
	}
	for k, v := range q.values {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// Encode renders the query string, sorted by key.
func (q *Query) Encode() string {
	if q == nil {
		return ""
	}
	return q.values.Encode()
}

func formatValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}
