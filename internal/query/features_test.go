package query

import (
	"net/url"
	"testing"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAllowed = Columns("name", "price", "difficulty", "ratings_average", "created_at")

func testDataset() *goqu.SelectDataset {
	return goqu.Dialect("postgres").From("tours")
}

func buildSQL(t *testing.T, rawQuery string, apply func(f *Features) *Features) (string, []interface{}) {
	t.Helper()

	values, err := url.ParseQuery(rawQuery)
	require.NoError(t, err)

	sql, args, err := apply(New(testDataset(), values)).ToSQL()
	require.NoError(t, err)
	return sql, args
}

func TestParseFilterKey(t *testing.T) {
	column, op := parseFilterKey("price[gte]")
	assert.Equal(t, "price", column)
	assert.Equal(t, "gte", op)

	column, op = parseFilterKey("difficulty")
	assert.Equal(t, "difficulty", column)
	assert.Empty(t, op)
}

func TestCoerce(t *testing.T) {
	assert.Equal(t, int64(500), coerce("500"))
	assert.Equal(t, 4.5, coerce("4.5"))
	assert.Equal(t, true, coerce("true"))
	assert.Equal(t, "easy", coerce("easy"))
}

func TestFilterEquality(t *testing.T) {
	sql, args := buildSQL(t, "difficulty=easy", func(f *Features) *Features {
		return f.Filter(testAllowed)
	})

	assert.Contains(t, sql, `"difficulty"`)
	assert.Contains(t, args, "easy")
}

func TestFilterComparisonOperator(t *testing.T) {
	sql, args := buildSQL(t, "price[gte]=500", func(f *Features) *Features {
		return f.Filter(testAllowed)
	})

	assert.Contains(t, sql, `"price" >=`)
	assert.Contains(t, args, int64(500))
}

func TestFilterUnknownColumnIgnored(t *testing.T) {
	sql, args := buildSQL(t, "secret_tour=true&role=admin", func(f *Features) *Features {
		return f.Filter(testAllowed)
	})

	assert.NotContains(t, sql, "secret_tour")
	assert.NotContains(t, sql, "role")
	assert.Empty(t, args)
}

func TestFilterUnknownOperatorIgnored(t *testing.T) {
	sql, _ := buildSQL(t, "price[like]=500", func(f *Features) *Features {
		return f.Filter(testAllowed)
	})

	assert.NotContains(t, sql, "price")
}

func TestFilterReservedKeysSkipped(t *testing.T) {
	sql, args := buildSQL(t, "page=2&sort=price&limit=10&fields=name", func(f *Features) *Features {
		return f.Filter(testAllowed)
	})

	assert.NotContains(t, sql, "WHERE")
	assert.Empty(t, args)
}

func TestSortMultipleKeys(t *testing.T) {
	sql, _ := buildSQL(t, "sort=-ratings_average,price", func(f *Features) *Features {
		return f.Sort(testAllowed)
	})

	assert.Contains(t, sql, `"ratings_average" DESC`)
	assert.Contains(t, sql, `"price" ASC`)
}

func TestSortDefaultsToNewestFirst(t *testing.T) {
	sql, _ := buildSQL(t, "", func(f *Features) *Features {
		return f.Sort(testAllowed)
	})

	assert.Contains(t, sql, `"created_at" DESC`)
}

func TestSortUnknownColumnFallsBack(t *testing.T) {
	sql, _ := buildSQL(t, "sort=password_hash", func(f *Features) *Features {
		return f.Sort(testAllowed)
	})

	assert.NotContains(t, sql, "password_hash")
	assert.Contains(t, sql, `"created_at" DESC`)
}

func TestFieldsInclude(t *testing.T) {
	defaults := []string{"id", "name", "price", "difficulty"}

	sql, _ := buildSQL(t, "fields=name,price", func(f *Features) *Features {
		return f.Fields(testAllowed, defaults)
	})

	assert.Contains(t, sql, `"id"`)
	assert.Contains(t, sql, `"name"`)
	assert.Contains(t, sql, `"price"`)
	assert.NotContains(t, sql, `"difficulty"`)
}

func TestFieldsExclude(t *testing.T) {
	defaults := []string{"id", "name", "price", "difficulty"}

	sql, _ := buildSQL(t, "fields=-difficulty", func(f *Features) *Features {
		return f.Fields(testAllowed, defaults)
	})

	assert.Contains(t, sql, `"name"`)
	assert.NotContains(t, sql, `"difficulty"`)
}

func TestFieldsDefaultProjection(t *testing.T) {
	defaults := []string{"id", "name"}

	sql, _ := buildSQL(t, "", func(f *Features) *Features {
		return f.Fields(testAllowed, defaults)
	})

	assert.Contains(t, sql, `"id"`)
	assert.Contains(t, sql, `"name"`)
	assert.NotContains(t, sql, "*")
}

func TestPaginate(t *testing.T) {
	values, err := url.ParseQuery("page=3&limit=10")
	require.NoError(t, err)

	f := New(testDataset(), values).Paginate()
	sql, _, err := f.ToSQL()
	require.NoError(t, err)

	assert.Equal(t, 3, f.Page())
	assert.Equal(t, 10, f.Limit())
	assert.Contains(t, sql, "LIMIT")
	assert.Contains(t, sql, "OFFSET")
}

func TestPaginateDefaults(t *testing.T) {
	f := New(testDataset(), url.Values{}).Paginate()

	assert.Equal(t, DefaultPage, f.Page())
	assert.Equal(t, DefaultLimit, f.Limit())
}

func TestPaginateRejectsNonPositiveValues(t *testing.T) {
	values, err := url.ParseQuery("page=0&limit=-5")
	require.NoError(t, err)

	f := New(testDataset(), values).Paginate()

	assert.Equal(t, DefaultPage, f.Page())
	assert.Equal(t, DefaultLimit, f.Limit())
}

func TestChainedStages(t *testing.T) {
	sql, args := buildSQL(t, "difficulty=easy&price[lt]=1000&sort=price&fields=name,price&page=2&limit=5",
		func(f *Features) *Features {
			return f.Filter(testAllowed).
				Sort(testAllowed).
				Fields(testAllowed, []string{"id", "name", "price"}).
				Paginate()
		})

	assert.Contains(t, sql, `"difficulty"`)
	assert.Contains(t, sql, `"price" <`)
	assert.Contains(t, sql, `"price" ASC`)
	assert.Contains(t, sql, "LIMIT")
	assert.Contains(t, args, "easy")
	assert.Contains(t, args, int64(1000))
}
