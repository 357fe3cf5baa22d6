package inventory

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseFiltersDefaults(t *testing.T) {
	f := ParseFilters(url.Values{})
	require.Equal(t, AllSentinel, f.Category)
	require.Equal(t, AllSentinel, f.Status)
	require.Equal(t, DefaultSortBy, f.SortBy)
	require.Equal(t, DefaultSortOrder, f.SortOrder)
	require.Equal(t, 1, f.Page)
	require.Equal(t, DefaultLimit, f.Limit)
}

func TestParseFiltersPageResetsWithoutParam(t *testing.T) {
	// The filter form never submits a page field, so any filter change
	// lands back on page 1 even if the user was deep in the listing.
	f := ParseFilters(url.Values{"search": {"resistor"}})
	require.Equal(t, 1, f.Page)

	f = ParseFilters(url.Values{"search": {"resistor"}, "page": {"7"}})
	require.Equal(t, 7, f.Page)
}

func TestParseFiltersLimitBounds(t *testing.T) {
	f := ParseFilters(url.Values{"limit": {"500"}})
	require.Equal(t, DefaultLimit, f.Limit)

	f = ParseFilters(url.Values{"limit": {"-3"}})
	require.Equal(t, DefaultLimit, f.Limit)

	f = ParseFilters(url.Values{"limit": {"50"}})
	require.Equal(t, 50, f.Limit)
}

func TestParseFiltersInvalidSortOrder(t *testing.T) {
	f := ParseFilters(url.Values{"sortOrder": {"sideways"}})
	require.Equal(t, DefaultSortOrder, f.SortOrder)

	f = ParseFilters(url.Values{"sortOrder": {"asc"}})
	require.Equal(t, "asc", f.SortOrder)
}

func TestQueryOmitsDefaultsAndSendsBooleans(t *testing.T) {
	f := ParseFilters(url.Values{})
	q := f.Query()

	// Sentinel and empty fields stay off the wire.
	require.False(t, q.Has("search"))
	require.False(t, q.Has("category"))
	require.False(t, q.Has("status"))
	require.False(t, q.Has("location"))
	require.False(t, q.Has("minQuantity"))

	// Booleans and sort keys are always explicit.
	require.Equal(t, "false", q.Get("lowStock"))
	require.Equal(t, "false", q.Get("oldStock"))
	require.Equal(t, DefaultSortBy, q.Get("sortBy"))
	require.Equal(t, DefaultSortOrder, q.Get("sortOrder"))
	require.Equal(t, "1", q.Get("page"))
	require.Equal(t, "20", q.Get("limit"))
}

func TestQueryCarriesActiveFilters(t *testing.T) {
	f := ParseFilters(url.Values{
		"search":      {"op-amp"},
		"category":    {"ICs"},
		"status":      {"Active"},
		"lowStock":    {"true"},
		"minQuantity": {"5"},
	})
	q := f.Query()
	require.Equal(t, "op-amp", q.Get("search"))
	require.Equal(t, "ICs", q.Get("category"))
	require.Equal(t, "Active", q.Get("status"))
	require.Equal(t, "true", q.Get("lowStock"))
	require.Equal(t, "5", q.Get("minQuantity"))
}

func TestPageQuerySubstitutesPage(t *testing.T) {
	f := ParseFilters(url.Values{"search": {"cap"}, "page": {"2"}})
	link, err := url.ParseQuery(f.PageQuery(5))
	require.NoError(t, err)
	require.Equal(t, "5", link.Get("page"))
	require.Equal(t, "cap", link.Get("search"))
	// False flags are dropped from browser-facing links.
	require.False(t, link.Has("lowStock"))
	require.False(t, link.Has("oldStock"))
}

func TestActiveCount(t *testing.T) {
	f := ParseFilters(url.Values{})
	require.Zero(t, f.ActiveCount())

	f = ParseFilters(url.Values{"search": {"x"}, "category": {"ICs"}, "lowStock": {"true"}})
	require.Equal(t, 3, f.ActiveCount())
}
