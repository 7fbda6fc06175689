package listutil

import (
	"net/url"
	"strconv"
	"strings"

	"gymportal/internal/domain/activity"
)

// Query parameter names for the activity list.
const (
	ParamQuery        = "q"
	ParamCategory     = "categoria"
	ParamWeekday      = "dia"
	ParamOnlyEnrolled = "solo_inscriptas"
	ParamPage         = "page"
	ParamPerPage      = "per_page"
)

// PageParams carries pagination parameters parsed from a request.
type PageParams struct {
	Page    int // 1-indexed page number
	PerPage int // rows per page
}

// PageInfo carries pagination metadata for rendering.
type PageInfo struct {
	Page       int `json:"page"`        // current page (1-indexed)
	PerPage    int `json:"per_page"`    // rows per page
	Total      int `json:"total"`       // total matching rows
	TotalPages int `json:"total_pages"` // ceil(Total / PerPage)
}

// DefaultPerPage is the default number of rows per page.
const DefaultPerPage = 50

// PerPageOptions are the allowed rows-per-page values.
var PerPageOptions = []int{10, 20, 50, 100}

// ParsePageParams extracts page and per_page from URL query values.
// PRE: none
// POST: returns valid PageParams with defaults applied
func ParsePageParams(q url.Values) PageParams {
	page, _ := strconv.Atoi(q.Get(ParamPage))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(q.Get(ParamPerPage))
	if !isValidPerPage(perPage) {
		perPage = DefaultPerPage
	}
	return PageParams{Page: page, PerPage: perPage}
}

// ParseCriteria extracts the activity filter from URL query values.
// Text values are kept verbatim apart from surrounding whitespace.
// PRE: none
// POST: returns Criteria; absent keys leave the matching constraint empty
func ParseCriteria(q url.Values) activity.Criteria {
	only, _ := strconv.ParseBool(q.Get(ParamOnlyEnrolled))
	if q.Get(ParamOnlyEnrolled) == "on" {
		only = true
	}
	return activity.Criteria{
		Query:        strings.TrimSpace(q.Get(ParamQuery)),
		Category:     strings.TrimSpace(q.Get(ParamCategory)),
		Weekday:      strings.TrimSpace(q.Get(ParamWeekday)),
		OnlyEnrolled: only,
	}
}

// EncodeCriteria renders c back into query values, omitting empty constraints.
// POST: ParseCriteria(EncodeCriteria(c)) == c for trimmed c
func EncodeCriteria(c activity.Criteria) url.Values {
	q := url.Values{}
	if c.Query != "" {
		q.Set(ParamQuery, c.Query)
	}
	if c.Category != "" {
		q.Set(ParamCategory, c.Category)
	}
	if c.Weekday != "" {
		q.Set(ParamWeekday, c.Weekday)
	}
	if c.OnlyEnrolled {
		q.Set(ParamOnlyEnrolled, "1")
	}
	return q
}

// NewPageInfo computes pagination metadata.
// PRE: total >= 0
// POST: returns PageInfo with TotalPages computed; Page clamped to valid range
func NewPageInfo(page, perPage, total int) PageInfo {
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	totalPages := (total + perPage - 1) / perPage
	if totalPages < 1 {
		totalPages = 1
	}
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}
	return PageInfo{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	}
}

// Paginate returns the slice of items on the page described by p.
// PRE: p was built by NewPageInfo with Total == len(items)
// POST: Returns a subslice of items; never out of range
func Paginate[T any](items []T, p PageInfo) []T {
	start := p.Offset()
	if start > len(items) {
		start = len(items)
	}
	end := start + p.PerPage
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// Offset returns the index of the first row on the current page.
// POST: Returns (Page-1) * PerPage
func (p PageInfo) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// StartRow returns the 1-indexed first row number on the current page.
// POST: Returns 0 if Total is 0, otherwise Offset+1
func (p PageInfo) StartRow() int {
	if p.Total == 0 {
		return 0
	}
	return p.Offset() + 1
}

// EndRow returns the 1-indexed last row number on the current page.
// POST: Returns min(Offset+PerPage, Total)
func (p PageInfo) EndRow() int {
	end := p.Offset() + p.PerPage
	if end > p.Total {
		end = p.Total
	}
	return end
}

// PageNumbers returns at most 5 page numbers centered on the current page.
func (p PageInfo) PageNumbers() []int {
	const maxButtons = 5
	start := p.Page - maxButtons/2
	if start < 1 {
		start = 1
	}
	end := start + maxButtons - 1
	if end > p.TotalPages {
		end = p.TotalPages
		start = end - maxButtons + 1
		if start < 1 {
			start = 1
		}
	}
	pages := make([]int, 0, end-start+1)
	for i := start; i <= end; i++ {
		pages = append(pages, i)
	}
	return pages
}

// ShowPagination returns true if pagination controls should be displayed.
func (p PageInfo) ShowPagination() bool {
	return p.Total > p.PerPage
}

// PageURL returns the query string for page n keeping c.
func (p PageInfo) PageURL(c activity.Criteria, n int) string {
	q := EncodeCriteria(c)
	q.Set(ParamPage, strconv.Itoa(n))
	if p.PerPage != DefaultPerPage {
		q.Set(ParamPerPage, strconv.Itoa(p.PerPage))
	}
	return "?" + q.Encode()
}

func isValidPerPage(n int) bool {
	for _, opt := range PerPageOptions {
		if n == opt {
			return true
		}
	}
	return false
}
