package inventory

import (
	"net/url"
	"strconv"
)

// Filter defaults.
const (
	DefaultSortBy    = "createdAt"
	DefaultSortOrder = "desc"
	DefaultLimit     = 20
)

// AllSentinel is the dropdown value meaning "no filter".
const AllSentinel = "all"

// Filters is the combined inventory query state. The query string is the
// single authoritative copy per request; deriving a new Filters from request
// parameters replaces it wholesale, so no stale in-flight state can survive
// a filter change.
type Filters struct {
	Search      string
	Category    string
	Status      string
	Location    string
	MinQuantity string
	MaxQuantity string
	LowStock    bool
	OldStock    bool
	SortBy      string
	SortOrder   string
	Page        int
	Limit       int
}

// ParseFilters builds the filter state from request query parameters.
// The filter form never submits a page parameter, so every filter change
// lands on page 1; only explicit pagination links carry a page.
func ParseFilters(q url.Values) Filters {
	f := Filters{
		Search:      q.Get("search"),
		Category:    q.Get("category"),
		Status:      q.Get("status"),
		Location:    q.Get("location"),
		MinQuantity: q.Get("minQuantity"),
		MaxQuantity: q.Get("maxQuantity"),
		LowStock:    q.Get("lowStock") == "true",
		OldStock:    q.Get("oldStock") == "true",
		SortBy:      q.Get("sortBy"),
		SortOrder:   q.Get("sortOrder"),
		Page:        1,
		Limit:       DefaultLimit,
	}
	if f.Category == "" {
		f.Category = AllSentinel
	}
	if f.Status == "" {
		f.Status = AllSentinel
	}
	if f.SortBy == "" {
		f.SortBy = DefaultSortBy
	}
	if f.SortOrder != "asc" && f.SortOrder != "desc" {
		f.SortOrder = DefaultSortOrder
	}
	if page, err := strconv.Atoi(q.Get("page")); err == nil && page > 0 {
		f.Page = page
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil && limit > 0 && limit <= 100 {
		f.Limit = limit
	}
	return f
}

// Query encodes the state for the backend listing endpoint. Empty and
// "all"-sentinel fields are omitted; the two boolean flags are always sent.
func (f Filters) Query() url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(f.Page))
	q.Set("limit", strconv.Itoa(f.Limit))
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.Category != "" && f.Category != AllSentinel {
		q.Set("category", f.Category)
	}
	if f.Status != "" && f.Status != AllSentinel {
		q.Set("status", f.Status)
	}
	if f.Location != "" {
		q.Set("location", f.Location)
	}
	if f.MinQuantity != "" {
		q.Set("minQuantity", f.MinQuantity)
	}
	if f.MaxQuantity != "" {
		q.Set("maxQuantity", f.MaxQuantity)
	}
	q.Set("lowStock", strconv.FormatBool(f.LowStock))
	q.Set("oldStock", strconv.FormatBool(f.OldStock))
	q.Set("sortBy", f.SortBy)
	q.Set("sortOrder", f.SortOrder)
	return q
}

// PageQuery returns the browser-facing query string for a pagination link:
// the full filter state with the given page substituted.
func (f Filters) PageQuery(page int) string {
	g := f
	g.Page = page
	q := g.Query()
	// lowStock/oldStock default to false in links to keep URLs tidy.
	if !g.LowStock {
		q.Del("lowStock")
	}
	if !g.OldStock {
		q.Del("oldStock")
	}
	return q.Encode()
}

// ActiveCount reports how many non-default filters are set, for the
// "N filters active" badge.
func (f Filters) ActiveCount() int {
	n := 0
	if f.Search != "" {
		n++
	}
	if f.Category != "" && f.Category != AllSentinel {
		n++
	}
	if f.Status != "" && f.Status != AllSentinel {
		n++
	}
	if f.Location != "" {
		n++
	}
	if f.MinQuantity != "" {
		n++
	}
	if f.MaxQuantity != "" {
		n++
	}
	if f.LowStock {
		n++
	}
	if f.OldStock {
		n++
	}
	return n
}
