package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gorilla/csrf"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"gymportal/internal/adapters/api"
	"gymportal/internal/adapters/http/middleware"
	"gymportal/internal/application/orchestrators"
	"gymportal/internal/domain/account"
	"gymportal/internal/domain/activity"
)

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set).
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// internalError logs the real error and returns a generic message to the client.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func isHTMLRequest(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "text/html") || strings.Contains(accept, "application/xhtml+xml")
}

func isJSONBody(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// pathID parses the {id} path value. Non-numeric or non-positive ids yield 0.
func pathID(r *http.Request) int {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id < 0 {
		return 0
	}
	return id
}

// outcomeStatus maps an orchestrator error to the HTTP status of a JSON response.
func outcomeStatus(err error) int {
	var apiErr *api.Error
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, orchestrators.ErrLoginRequired),
		errors.Is(err, orchestrators.ErrNoSession),
		errors.Is(err, orchestrators.ErrSessionExpired),
		errors.Is(err, orchestrators.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, account.ErrEmptyUsername),
		errors.Is(err, account.ErrEmptyPassword),
		errors.Is(err, account.ErrEmptyName):
		return http.StatusBadRequest
	case errors.Is(err, orchestrators.ErrInvalidDraft):
		return http.StatusUnprocessableEntity
	case errors.Is(err, orchestrators.ErrMissingActivityID):
		return http.StatusBadRequest
	case errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500:
		return apiErr.Status
	default:
		return http.StatusBadGateway
	}
}

// outcomeJSON is the JSON body for every mutation.
type outcomeJSON struct {
	OK              bool              `json:"ok"`
	Message         string            `json:"message"`
	RedirectToLogin bool              `json:"redirect_to_login,omitempty"`
	Errors          map[string]string `json:"errors,omitempty"`
}

const flashCookieName = "gymportal_flash"

// flash is a one-shot message carried across a redirect.
type flash struct {
	OK      bool
	Message string
}

func setFlash(w http.ResponseWriter, o orchestrators.Outcome) {
	if o.Message == "" {
		return
	}
	v := url.Values{"m": {o.Message}}
	if o.OK {
		v.Set("ok", "1")
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    v.Encode(),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		Secure:   secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// popFlash reads and clears the flash cookie.
func popFlash(w http.ResponseWriter, r *http.Request) flash {
	c, err := r.Cookie(flashCookieName)
	if err != nil {
		return flash{}
	}
	http.SetCookie(w, &http.Cookie{Name: flashCookieName, Path: "/", MaxAge: -1})
	v, err := url.ParseQuery(c.Value)
	if err != nil {
		return flash{}
	}
	return flash{OK: v.Get("ok") == "1", Message: v.Get("m")}
}

func renderTemplate(w http.ResponseWriter, r *http.Request, status int, templateName string, data map[string]any) {
	sess := middleware.SessionFrom(r.Context())

	funcMap := template.FuncMap{
		"currentUser": func() string { return sess.Username },
		"isLoggedIn":  func() bool { return sess.IsAuthenticated() },
		"isAdmin":     func() bool { return sess.IsAdmin() },
		"csrfField":   func() template.HTML { return csrf.TemplateField(r) },
		"weekdays":    func() []string { return activity.Weekdays },
		"add1":        func(n int) int { return n + 1 },
		"sub1":        func(n int) int { return n - 1 },
		"renderMarkdown": func(md string) template.HTML {
			var buf bytes.Buffer
			if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
				return template.HTML(template.HTMLEscapeString(md))
			}
			return template.HTML(buf.String())
		},
	}

	tpl, err := template.New("layout.html").Funcs(funcMap).ParseFS(templateFS, "templates/layout.html", "templates/"+templateName)
	if err != nil {
		internalError(w, err)
		return
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		internalError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// handleHome renders the landing page.
func handleHome(w http.ResponseWriter, r *http.Request) {
	if !isHTMLRequest(r) {
		sess := middleware.SessionFrom(r.Context())
		writeJSON(w, http.StatusOK, map[string]any{
			"authenticated": sess.IsAuthenticated(),
			"username":      sess.Username,
			"role":          sess.Role,
		})
		return
	}
	renderTemplate(w, r, http.StatusOK, "home.html", map[string]any{
		"Flash": popFlash(w, r),
	})
}

// handleHealthz reports whether the session database answers.
func handleHealthz(w http.ResponseWriter, r *http.Request) {
	if healthCheck != nil {
		if err := healthCheck(r.Context()); err != nil {
			slog.Error("health_check_failed", "error", err)
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}
