package utils

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Filter operators understood by list endpoints.
const (
	OpEq        = "$eq"
	OpNe        = "$ne"
	OpLt        = "$lt"
	OpLte       = "$lte"
	OpGt        = "$gt"
	OpGte       = "$gte"
	OpContains  = "$contains"
	OpContainsi = "$containsi"
	OpIn        = "$in"
	OpNull      = "$null"
	OpNotNull   = "$notNull"
)

// Filter is one parsed filters[...] condition. Path is the field path
// (e.g. ["user", "id"]); Values holds one value except for $in.
type Filter struct {
	Path     []string
	Operator string
	Values   []string
}

// Field joins the path with dots, the form used by field whitelists.
func (f Filter) Field() string {
	return strings.Join(f.Path, ".")
}

// SortField is one sort directive.
type SortField struct {
	Field string
	Desc  bool
}

// ListQuery is the parsed form of filters, sort, populate and pagination
// query parameters.
type ListQuery struct {
	Filters    []Filter
	Sort       []SortField
	Populate   []string
	Pagination PaginationParams
}

// ParseListQuery parses Strapi-style list query parameters.
func ParseListQuery(values url.Values) ListQuery {
	q := ListQuery{
		Pagination: NewPaginationParams(values.Get("pagination[page]"), values.Get("pagination[pageSize]")),
	}

	grouped := make(map[string]*Filter)
	var order []string
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		name, segments := splitBrackets(key)
		vals := values[key]

		switch name {
		case "filters":
			f, ok := parseFilter(segments, vals)
			if !ok {
				continue
			}
			id := f.Field() + "|" + f.Operator
			if existing, found := grouped[id]; found {
				existing.Values = append(existing.Values, f.Values...)
				continue
			}
			grouped[id] = &f
			order = append(order, id)
		case "sort":
			for _, v := range vals {
				q.Sort = append(q.Sort, parseSort(v)...)
			}
		case "populate":
			for _, v := range vals {
				q.Populate = append(q.Populate, parsePopulate(segments, v)...)
			}
		}
	}

	for _, id := range order {
		q.Filters = append(q.Filters, *grouped[id])
	}

	return q
}

// splitBrackets splits "filters[user][id][$eq]" into "filters" and
// ["user", "id", "$eq"].
func splitBrackets(key string) (string, []string) {
	i := strings.IndexByte(key, '[')
	if i < 0 {
		return key, nil
	}
	name := key[:i]
	var segments []string
	rest := key[i:]
	for len(rest) > 0 && rest[0] == '[' {
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			break
		}
		segments = append(segments, rest[1:end])
		rest = rest[end+1:]
	}
	return name, segments
}

func parseFilter(segments []string, vals []string) (Filter, bool) {
	if len(segments) == 0 || len(vals) == 0 {
		return Filter{}, false
	}

	// Drop trailing numeric indexes: filters[id][$in][0]=1
	for len(segments) > 0 {
		if _, err := strconv.Atoi(segments[len(segments)-1]); err != nil {
			break
		}
		segments = segments[:len(segments)-1]
	}
	if len(segments) == 0 {
		return Filter{}, false
	}

	op := OpEq
	last := segments[len(segments)-1]
	if strings.HasPrefix(last, "$") {
		op = last
		segments = segments[:len(segments)-1]
	}
	if len(segments) == 0 {
		return Filter{}, false
	}

	values := vals
	if op == OpIn && len(vals) == 1 && strings.Contains(vals[0], ",") {
		values = strings.Split(vals[0], ",")
	}

	return Filter{
		Path:     append([]string(nil), segments...),
		Operator: op,
		Values:   values,
	}, true
}

func parseSort(raw string) []SortField {
	var fields []SortField
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		field, dir, _ := strings.Cut(part, ":")
		fields = append(fields, SortField{
			Field: field,
			Desc:  strings.EqualFold(dir, "desc"),
		})
	}
	return fields
}

func parsePopulate(segments []string, raw string) []string {
	// populate[owner]=true
	if len(segments) == 1 {
		if _, err := strconv.Atoi(segments[0]); err != nil {
			if raw == "true" || raw == "*" {
				return []string{segments[0]}
			}
			return nil
		}
	}

	var relations []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			relations = append(relations, part)
		}
	}
	return relations
}
