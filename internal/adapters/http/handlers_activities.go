package web

import (
	"context"
	"net/http"
	"strings"

	"gymportal/internal/adapters/http/middleware"
	"gymportal/internal/application/board"
	"gymportal/internal/application/listutil"
	"gymportal/internal/application/orchestrators"
	"gymportal/internal/application/projections"
	"gymportal/internal/domain/activity"
)

// handleActivities renders the filtered activity list.
// Filters come from the query string and are echoed back into the form and pagination links.
func handleActivities(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := middleware.SessionFrom(ctx)
	q := r.URL.Query()
	criteria := listutil.ParseCriteria(q)

	query := projections.GetActivityListQuery{
		Criteria: criteria,
		Page:     listutil.ParsePageParams(q),
		Reload:   true,
	}
	deps := projections.GetActivityListDeps{Board: board.New(backend, sess)}

	result, err := projections.QueryGetActivityList(ctx, query, deps)
	if err != nil {
		internalError(w, err)
		return
	}

	if !isHTMLRequest(r) {
		writeJSON(w, http.StatusOK, result)
		return
	}
	renderTemplate(w, r, http.StatusOK, "activities.html", map[string]any{
		"Rows":              result.Rows,
		"PageInfo":          result.Page,
		"Categories":        result.Categories,
		"LoadFailed":        result.LoadFailed,
		"EnrollmentsFailed": result.EnrollmentsFailed,
		"Criteria":          criteria,
		"HasFilters":        !criteria.IsZero(),
		"PerPageOptions":    listutil.PerPageOptions,
		"ReturnTo":          listURL(r),
		"Flash":             popFlash(w, r),
	})
}

// handleEnroll enrolls the current user in the activity named by the path.
func handleEnroll(w http.ResponseWriter, r *http.Request) {
	handleEnrollment(w, r, orchestrators.ExecuteEnroll)
}

// handleUnenroll removes the current user's enrollment in the activity named by the path.
func handleUnenroll(w http.ResponseWriter, r *http.Request) {
	handleEnrollment(w, r, orchestrators.ExecuteUnenroll)
}

type enrollmentFunc func(context.Context, orchestrators.EnrollmentInput, orchestrators.EnrollmentDeps) (orchestrators.Outcome, error)

// enrollmentJSON adds the reloaded activity list to a mutation result.
type enrollmentJSON struct {
	outcomeJSON
	Activities []board.Row `json:"actividades"`
}

func handleEnrollment(w http.ResponseWriter, r *http.Request, execute enrollmentFunc) {
	ctx := r.Context()
	id := pathID(r)
	if id == 0 {
		http.Error(w, "Invalid activity id", http.StatusBadRequest)
		return
	}

	sess := middleware.SessionFrom(ctx)
	b := board.New(backend, sess)
	deps := orchestrators.EnrollmentDeps{Session: sess, API: backend, Board: b}
	outcome, err := execute(ctx, orchestrators.EnrollmentInput{ActivityID: id}, deps)

	if !isHTMLRequest(r) {
		writeJSON(w, outcomeStatus(err), enrollmentJSON{
			outcomeJSON: outcomeJSON{OK: outcome.OK, Message: outcome.Message, RedirectToLogin: outcome.RedirectToLogin},
			Activities:  b.View(activity.Criteria{}),
		})
		return
	}
	if outcome.RedirectToLogin {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	setFlash(w, outcome)
	http.Redirect(w, r, safeReturn(r.FormValue("return_to")), http.StatusSeeOther)
}

// listURL is the current list page with its filters, used as a form's return_to.
func listURL(r *http.Request) string {
	return r.URL.RequestURI()
}

// safeReturn accepts only local activity-list URLs and falls back to the list.
func safeReturn(v string) string {
	if strings.HasPrefix(v, "/actividades") && !strings.ContainsAny(v, "\\\r\n") {
		return v
	}
	return "/actividades"
}
