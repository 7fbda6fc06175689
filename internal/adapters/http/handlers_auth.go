package web

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"gymportal/internal/adapters/http/middleware"
	"gymportal/internal/application/orchestrators"
	"gymportal/internal/domain/account"
)

func loginDeps() orchestrators.LoginDeps {
	return orchestrators.LoginDeps{
		API:        backend,
		Sessions:   sessions,
		JWTSecret:  jwtSecret,
		GenerateID: uuid.NewString,
		Now:        timeNow,
	}
}

// handleLoginPage renders the login form.
func handleLoginPage(w http.ResponseWriter, r *http.Request) {
	renderTemplate(w, r, http.StatusOK, "login.html", map[string]any{
		"Flash": popFlash(w, r),
	})
}

// handleLogin exchanges credentials for a backend token and starts a session.
func handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds account.Credentials
	if isJSONBody(r) {
		if err := strictDecode(r, &creds); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}
		creds.Username = r.PostFormValue("username")
		creds.Password = r.PostFormValue("password")
	}

	result, err := orchestrators.ExecuteLogin(r.Context(), orchestrators.LoginInput{Credentials: creds}, loginDeps())
	if err != nil {
		if !isHTMLRequest(r) {
			writeJSON(w, outcomeStatus(err), outcomeJSON{Message: result.Message})
			return
		}
		renderTemplate(w, r, outcomeStatus(err), "login.html", map[string]any{
			"Message":  result.Message,
			"Username": creds.Username,
		})
		return
	}
	startSession(w, r, result)
}

// handleRegisterPage renders the sign-up form.
func handleRegisterPage(w http.ResponseWriter, r *http.Request) {
	renderTemplate(w, r, http.StatusOK, "register.html", map[string]any{
		"Registration": account.Registration{},
	})
}

// handleRegister creates a backend account and logs the new user in.
func handleRegister(w http.ResponseWriter, r *http.Request) {
	var reg account.Registration
	if isJSONBody(r) {
		if err := strictDecode(r, &reg); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}
		reg.FirstName = r.PostFormValue("nombre")
		reg.LastName = r.PostFormValue("apellido")
		reg.Username = r.PostFormValue("username")
		reg.Password = r.PostFormValue("password")
	}

	result, err := orchestrators.ExecuteRegister(r.Context(), orchestrators.RegisterInput{Registration: reg}, loginDeps())
	if err != nil {
		if !isHTMLRequest(r) {
			writeJSON(w, outcomeStatus(err), outcomeJSON{Message: result.Message})
			return
		}
		reg.Password = ""
		renderTemplate(w, r, outcomeStatus(err), "register.html", map[string]any{
			"Message":      result.Message,
			"Registration": reg,
		})
		return
	}
	startSession(w, r, result)
}

// startSession sets the cookie for a freshly stored session and answers the login or register post.
func startSession(w http.ResponseWriter, r *http.Request, result orchestrators.LoginResult) {
	sess := result.Session
	middleware.SetSessionCookie(w, sess.ID, sess.ExpiresAt, secureCookies)

	if !isHTMLRequest(r) {
		writeJSON(w, http.StatusOK, map[string]any{
			"username":   sess.Username,
			"role":       sess.Role,
			"expires_at": sess.ExpiresAt,
		})
		return
	}
	setFlash(w, result.Outcome)
	http.Redirect(w, r, "/actividades", http.StatusSeeOther)
}

// handleLogout ends the current session.
func handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFrom(r.Context())
	if err := orchestrators.ExecuteLogout(r.Context(), orchestrators.LogoutInput{Session: sess}, orchestrators.LogoutDeps{Sessions: sessions}); err != nil {
		slog.Error("auth_event", "event", "logout_failed", "session_id", sess.ID, "error", err)
	}
	middleware.ClearSessionCookie(w, secureCookies)

	if !isHTMLRequest(r) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
