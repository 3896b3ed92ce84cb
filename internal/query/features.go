// Package query translates list-endpoint query strings into SQL.
//
// It implements the filter/sort/projection/pagination conventions used
// across every collection endpoint:
//
//	?difficulty=easy&price[lt]=1000    filtering with operators
//	?sort=-ratings_average,price       multi-key sorting, '-' = desc
//	?fields=name,price                 sparse responses
//	?page=2&limit=10                   offset pagination
//
// Conditions are built on goqu datasets, so the output is always
// parameterized SQL. Column names are checked against a per-resource
// whitelist; keys naming unknown columns are ignored rather than
// interpolated.
package query

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
)

// Reserved keys are consumed by the pagination, sorting and projection
// stages and never treated as filter columns.
var reservedKeys = map[string]bool{
	"page":   true,
	"sort":   true,
	"limit":  true,
	"fields": true,
}

// Comparison operator suffixes accepted in filter keys, as in
// "price[gte]=500".
var comparisonOps = map[string]bool{
	"gte": true,
	"gt":  true,
	"lte": true,
	"lt":  true,
}

const (
	DefaultPage  = 1
	DefaultLimit = 50
)

// Features applies the shared query-string conventions to a goqu
// dataset. Stages are chainable and each consumes its part of the
// query string; the zero-value result of every stage is the documented
// default (no filters, newest first, full projection minus internal
// columns, page 1 with 50 rows).
type Features struct {
	ds     *goqu.SelectDataset
	values url.Values

	page  int
	limit int
}

// New wraps a dataset and the raw query values. The dataset should
// already name its table; Features only adds clauses.
func New(ds *goqu.SelectDataset, values url.Values) *Features {
	return &Features{
		ds:     ds,
		values: values,
		page:   DefaultPage,
		limit:  DefaultLimit,
	}
}

// parseFilterKey splits "price[gte]" into ("price", "gte"). A key
// without brackets is an equality match.
func parseFilterKey(key string) (column, op string) {
	open := strings.Index(key, "[")
	if open == -1 || !strings.HasSuffix(key, "]") {
		return key, ""
	}
	return key[:open], key[open+1 : len(key)-1]
}

// coerce turns a query parameter into the value bound into SQL.
// Numeric and boolean literals are converted so comparisons against
// numeric columns work; everything else stays a string.
func coerce(raw string) any {
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	return raw
}

// Filter adds WHERE clauses for every non-reserved query key naming an
// allowed column. Repeated keys AND together; keys outside the allowed
// set are dropped.
func (f *Features) Filter(allowed map[string]bool) *Features {
	for key, vals := range f.values {
		if reservedKeys[key] || len(vals) == 0 {
			continue
		}
		column, op := parseFilterKey(key)
		if !allowed[column] {
			continue
		}
		for _, raw := range vals {
			value := coerce(raw)
			if op == "" {
				f.ds = f.ds.Where(goqu.Ex{column: value})
				continue
			}
			if comparisonOps[op] {
				f.ds = f.ds.Where(goqu.Ex{column: goqu.Op{op: value}})
			}
		}
	}
	return f
}

// Sort adds ORDER BY from the "sort" key. Keys are comma separated and
// a leading '-' means descending. Unknown columns are skipped; when
// nothing usable remains, newest rows come first.
func (f *Features) Sort(allowed map[string]bool) *Features {
	var ordered []exp.OrderedExpression
	for _, key := range strings.Split(f.values.Get("sort"), ",") {
		key = strings.TrimSpace(key)
		desc := strings.HasPrefix(key, "-")
		column := strings.TrimPrefix(key, "-")
		if column == "" || !allowed[column] {
			continue
		}
		if desc {
			ordered = append(ordered, goqu.I(column).Desc())
		} else {
			ordered = append(ordered, goqu.I(column).Asc())
		}
	}
	if len(ordered) == 0 {
		ordered = append(ordered, goqu.I("created_at").Desc())
	}
	f.ds = f.ds.Order(ordered...)
	return f
}

// Fields applies the projection from the "fields" key. A plain list
// selects exactly those columns (id is always included); entries with
// a leading '-' subtract from the default projection instead. Without
// the key, the default projection is used as-is. Internal columns stay
// out unless defaults name them.
func (f *Features) Fields(allowed map[string]bool, defaults []string) *Features {
	raw := f.values.Get("fields")
	if raw == "" {
		f.ds = f.ds.Select(toSelectable(defaults)...)
		return f
	}

	var include, exclude []string
	for _, key := range strings.Split(raw, ",") {
		key = strings.TrimSpace(key)
		if strings.HasPrefix(key, "-") {
			exclude = append(exclude, strings.TrimPrefix(key, "-"))
		} else if allowed[key] {
			include = append(include, key)
		}
	}

	switch {
	case len(include) > 0:
		if !contains(include, "id") {
			include = append([]string{"id"}, include...)
		}
		f.ds = f.ds.Select(toSelectable(include)...)
	case len(exclude) > 0:
		var kept []string
		for _, column := range defaults {
			if !contains(exclude, column) {
				kept = append(kept, column)
			}
		}
		f.ds = f.ds.Select(toSelectable(kept)...)
	default:
		f.ds = f.ds.Select(toSelectable(defaults)...)
	}
	return f
}

// Paginate applies LIMIT/OFFSET from "page" and "limit". Values below
// one fall back to the defaults.
func (f *Features) Paginate() *Features {
	if p, err := strconv.Atoi(f.values.Get("page")); err == nil && p > 0 {
		f.page = p
	}
	if l, err := strconv.Atoi(f.values.Get("limit")); err == nil && l > 0 {
		f.limit = l
	}
	f.ds = f.ds.Limit(uint(f.limit)).Offset(uint((f.page - 1) * f.limit))
	return f
}

// Dataset returns the dataset with all applied stages.
func (f *Features) Dataset() *goqu.SelectDataset {
	return f.ds
}

// ToSQL renders the accumulated query as parameterized SQL.
func (f *Features) ToSQL() (string, []interface{}, error) {
	return f.ds.Prepared(true).ToSQL()
}

// Page returns the resolved page number after Paginate.
func (f *Features) Page() int { return f.page }

// Limit returns the resolved page size after Paginate.
func (f *Features) Limit() int { return f.limit }

func toSelectable(columns []string) []interface{} {
	out := make([]interface{}, len(columns))
	for i, c := range columns {
		out[i] = goqu.I(c)
	}
	return out
}

func contains(list []string, want string) bool {
	for _, v := range list {
		if v == want {
			return true
		}
	}
	return false
}

// Columns builds the whitelist set used by the stages.
func Columns(names ...string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}
