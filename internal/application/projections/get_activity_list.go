package projections

import (
	"context"
	"sort"
	"strings"

	"gymportal/internal/application/board"
	"gymportal/internal/application/listutil"
	"gymportal/internal/domain/activity"
)

// GetActivityListQuery carries query parameters.
type GetActivityListQuery struct {
	Criteria activity.Criteria
	Page     listutil.PageParams
	Reload   bool // false when the board was already loaded by an orchestrator
}

// GetActivityListResult carries the query result.
type GetActivityListResult struct {
	Rows              []board.Row       `json:"actividades"`
	Page              listutil.PageInfo `json:"pagina"`
	Categories        []string          `json:"categorias"` // distinct categories over the unfiltered list, sorted
	LoadFailed        bool              `json:"load_failed,omitempty"`
	EnrollmentsFailed bool              `json:"enrollments_failed,omitempty"` // activities shown without enrollment marks
}

// GetActivityListDeps holds dependencies for GetActivityList.
type GetActivityListDeps struct {
	Board ActivityBoard
}

// QueryGetActivityList builds the filtered, paginated activity list.
// PRE: deps.Board is non-nil
// POST: Rows are the requested page of the filtered view in backend order
// INVARIANT: A reload failure never fails the query; LoadFailed or EnrollmentsFailed is set instead
func QueryGetActivityList(ctx context.Context, query GetActivityListQuery, deps GetActivityListDeps) (GetActivityListResult, error) {
	var result GetActivityListResult
	if query.Reload {
		result.LoadFailed = deps.Board.ReloadActivities(ctx) != nil
		result.EnrollmentsFailed = deps.Board.ReloadEnrollments(ctx) != nil
	}

	all := deps.Board.View(activity.Criteria{})
	result.Categories = distinctCategories(all)

	rows := all
	if !query.Criteria.IsZero() {
		rows = deps.Board.View(query.Criteria)
	}

	perPage := query.Page.PerPage
	if perPage < 1 {
		perPage = listutil.DefaultPerPage
	}
	result.Page = listutil.NewPageInfo(query.Page.Page, perPage, len(rows))
	result.Rows = listutil.Paginate(rows, result.Page)
	return result, nil
}

func distinctCategories(rows []board.Row) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range rows {
		c := strings.TrimSpace(r.Category)
		key := strings.ToLower(c)
		if c == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
