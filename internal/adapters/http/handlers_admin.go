package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"gymportal/internal/adapters/api"
	"gymportal/internal/adapters/http/middleware"
	"gymportal/internal/adapters/http/perf"
	"gymportal/internal/application/board"
	"gymportal/internal/application/orchestrators"
	"gymportal/internal/application/projections"
	"gymportal/internal/domain/activity"
	"gymportal/internal/domain/audit"
)

// draftJSON accepts cupo as a JSON number or string; both reach the validator as text.
type draftJSON struct {
	activity.Draft
	Capacity json.RawMessage `json:"cupo"`
}

// capacityText turns a raw cupo value into the draft's string form.
// Non-numeric JSON values are kept verbatim so validation reports them per field.
func capacityText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	switch {
	case len(raw) == 0 || string(raw) == "null":
		return ""
	case raw[0] == '"':
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	return string(raw)
}

// parseDraft reads an activity draft from a form post or a JSON body.
func parseDraft(r *http.Request) (activity.Draft, error) {
	var d activity.Draft
	if isJSONBody(r) {
		var in draftJSON
		if err := strictDecode(r, &in); err != nil {
			return d, err
		}
		d = in.Draft
		d.Capacity = capacityText(in.Capacity)
		return d, nil
	}
	if err := r.ParseForm(); err != nil {
		return d, err
	}
	for _, f := range activity.DraftFields {
		if err := d.Set(f, r.PostFormValue(f)); err != nil {
			return d, err
		}
	}
	return d, nil
}

// renderActivityForm renders the create or edit form. id is 0 on create.
func renderActivityForm(w http.ResponseWriter, r *http.Request, status int, id int, form *activity.FormState, outcome orchestrators.Outcome) {
	action := "/admin/actividades"
	if id > 0 {
		action += "/" + strconv.Itoa(id)
	}
	renderTemplate(w, r, status, "activity_form.html", map[string]any{
		"ID":              id,
		"Action":          action,
		"Form":            form,
		"Outcome":         outcome,
		"RedirectToLogin": outcome.RedirectToLogin,
	})
}

// handleNewActivityForm renders an empty create form.
func handleNewActivityForm(w http.ResponseWriter, r *http.Request) {
	renderActivityForm(w, r, http.StatusOK, 0, &activity.FormState{Errors: activity.Errors{}}, orchestrators.Outcome{})
}

// handleEditActivityForm renders the edit form pre-filled from the backend.
func handleEditActivityForm(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if id == 0 {
		http.NotFound(w, r)
		return
	}
	result, err := projections.QueryGetActivity(r.Context(), projections.GetActivityQuery{ID: id}, projections.GetActivityDeps{Source: backend})
	if errors.Is(err, api.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}
	if !isHTMLRequest(r) {
		writeJSON(w, http.StatusOK, result.Form.Draft)
		return
	}
	renderActivityForm(w, r, http.StatusOK, id, &result.Form, orchestrators.Outcome{})
}

// handleCreateActivity validates and submits a new activity.
func handleCreateActivity(w http.ResponseWriter, r *http.Request) {
	handleSaveActivity(w, r, 0, orchestrators.ExecuteCreateActivity)
}

// handleUpdateActivity validates and submits changes to an existing activity.
func handleUpdateActivity(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if id == 0 {
		http.NotFound(w, r)
		return
	}
	handleSaveActivity(w, r, id, orchestrators.ExecuteUpdateActivity)
}

type saveActivityFunc func(ctx context.Context, input orchestrators.SaveActivityInput, deps orchestrators.SaveActivityDeps) (orchestrators.SaveActivityResult, error)

func handleSaveActivity(w http.ResponseWriter, r *http.Request, id int, execute saveActivityFunc) {
	draft, err := parseDraft(r)
	if err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	deps := orchestrators.SaveActivityDeps{
		Session:  middleware.SessionFrom(ctx),
		API:      backend,
		Sessions: sessions,
		Notifier: notifier,
	}
	result, err := execute(ctx, orchestrators.SaveActivityInput{ID: id, Draft: draft}, deps)
	if errors.Is(err, orchestrators.ErrSessionExpired) {
		middleware.ClearSessionCookie(w, secureCookies)
	}

	if !isHTMLRequest(r) {
		status := outcomeStatus(err)
		if err == nil && id == 0 {
			status = http.StatusCreated
		}
		writeJSON(w, status, outcomeJSON{
			OK:              result.OK,
			Message:         result.Message,
			RedirectToLogin: result.RedirectToLogin,
			Errors:          result.Errors,
		})
		return
	}

	if err == nil {
		setFlash(w, result.Outcome)
		http.Redirect(w, r, "/actividades", http.StatusSeeOther)
		return
	}
	status := http.StatusOK
	if errors.Is(err, orchestrators.ErrInvalidDraft) {
		status = http.StatusUnprocessableEntity
	}
	form := &activity.FormState{Draft: draft, Errors: result.Errors}
	if form.Errors == nil {
		form.Errors = activity.Errors{}
	}
	renderActivityForm(w, r, status, id, form, result.Outcome)
}

// handleDeleteActivity deletes the activity named by the path.
// The browser asks for confirmation before the form is posted.
func handleDeleteActivity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := middleware.SessionFrom(ctx)
	input := orchestrators.DeleteActivityInput{ID: pathID(r), Title: r.FormValue("titulo")}
	deps := orchestrators.DeleteActivityDeps{
		Session:  sess,
		API:      backend,
		Board:    board.New(backend, sess),
		Notifier: notifier,
	}
	outcome, err := orchestrators.ExecuteDeleteActivity(ctx, input, deps)

	if !isHTMLRequest(r) {
		writeJSON(w, outcomeStatus(err), outcomeJSON{OK: outcome.OK, Message: outcome.Message, RedirectToLogin: outcome.RedirectToLogin})
		return
	}
	if outcome.RedirectToLogin {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	setFlash(w, outcome)
	http.Redirect(w, r, safeReturn(r.FormValue("return_to")), http.StatusSeeOther)
}

// handlePerf returns the perf snapshot as JSON. ?minutes= selects the window (default 15).
func handlePerf(w http.ResponseWriter, r *http.Request) {
	minutes, err := strconv.Atoi(r.URL.Query().Get("minutes"))
	if err != nil || minutes <= 0 {
		minutes = 15
	}
	if perfCollector == nil {
		writeJSON(w, http.StatusOK, perf.Snapshot{})
		return
	}
	since := timeNow().Add(-time.Duration(minutes) * time.Minute)
	writeJSON(w, http.StatusOK, perfCollector.Snapshot(since, 10))
}

// handleAudit lists recent catalog changes. Query: accion, usuario, dias, limite.
func handleAudit(w http.ResponseWriter, r *http.Request) {
	if auditLog == nil {
		http.Error(w, "audit log is not enabled", http.StatusNotFound)
		return
	}
	q := r.URL.Query()
	days, _ := strconv.Atoi(q.Get("dias"))
	limit, _ := strconv.Atoi(q.Get("limite"))
	query := projections.GetCatalogAuditQuery{
		Action: q.Get("accion"),
		Actor:  q.Get("usuario"),
		Days:   days,
		Limit:  limit,
	}

	res, err := projections.QueryCatalogAudit(r.Context(), query, projections.GetCatalogAuditDeps{Store: auditLog, Now: timeNow})
	if errors.Is(err, audit.ErrInvalidAction) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}

	if !isHTMLRequest(r) {
		writeJSON(w, http.StatusOK, res)
		return
	}
	renderTemplate(w, r, http.StatusOK, "audit.html", map[string]any{
		"Events":  res.Events,
		"Query":   query,
		"Actions": []audit.Action{audit.ActionCreate, audit.ActionUpdate, audit.ActionDelete},
	})
}
