//go:build browser

package browser_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/playwright-community/playwright-go"

	_ "modernc.org/sqlite"

	"gymportal/internal/adapters/api"
	web "gymportal/internal/adapters/http"
	"gymportal/internal/adapters/storage"
	"gymportal/internal/adapters/storage/session"
)

const jwtSecret = "browser-test-secret"

// testApp holds the running portal, the fake activities API and Playwright handles.
type testApp struct {
	BaseURL string
	Backend *fakeAPI
	Server  *http.Server
	PW      *playwright.Playwright
	Browser playwright.Browser
}

// newTestApp wires the portal against a fake activities API and a temp SQLite session DB.
func newTestApp(t *testing.T) *testApp {
	t.Helper()

	backend := newFakeAPI()
	upstream := httptest.NewServer(backend)
	t.Cleanup(upstream.Close)

	dbPath := filepath.Join(t.TempDir(), "sessions.db")
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		t.Fatalf("failed to open test DB: %v", err)
	}
	if err := storage.InitDB(db); err != nil {
		t.Fatalf("failed to init test DB: %v", err)
	}
	sealer, err := session.NewSealer([]byte("0123456789abcdef0123456789abcdef"))
	if err != nil {
		t.Fatalf("sealer: %v", err)
	}
	store := session.NewSQLiteStore(storage.NewTimedDB(db, nil, 0), sealer)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to find free port: %v", err)
	}
	port := listener.Addr().(*net.TCPAddr).Port
	listener.Close()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	handler := web.NewMux(ctx, web.Deps{
		API:       api.NewClient(upstream.URL, upstream.Client(), nil, 0),
		Sessions:  store,
		JWTSecret: jwtSecret,
	}, web.MuxOptions{
		CSRFKey:        []byte("0123456789abcdef0123456789abcdef"),
		TrustedOrigins: []string{fmt.Sprintf("127.0.0.1:%d", port), fmt.Sprintf("localhost:%d", port)},
		RateLimitRPS:   100,
		RateLimitBurst: 200,
	})

	srv := &http.Server{Addr: fmt.Sprintf("127.0.0.1:%d", port), Handler: handler}
	go func() {
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("test server error: %v", err)
		}
	}()

	baseURL := fmt.Sprintf("http://127.0.0.1:%d", port)
	for i := 0; i < 50; i++ {
		resp, err := http.Get(baseURL + "/healthz")
		if err == nil {
			resp.Body.Close()
			break
		}
		time.Sleep(100 * time.Millisecond)
	}

	pw, err := playwright.Run()
	if err != nil {
		t.Fatalf("failed to start Playwright: %v", err)
	}
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		t.Fatalf("failed to launch browser: %v", err)
	}

	t.Cleanup(func() {
		browser.Close()
		pw.Stop()
		srv.Close()
		db.Close()
	})

	return &testApp{BaseURL: baseURL, Backend: backend, Server: srv, PW: pw, Browser: browser}
}

// newPage creates a new browser page (tab).
func (a *testApp) newPage(t *testing.T) playwright.Page {
	t.Helper()
	page, err := a.Browser.NewPage()
	if err != nil {
		t.Fatalf("failed to create page: %v", err)
	}
	t.Cleanup(func() { page.Close() })
	return page
}

// login signs in through the form and waits for the activity list.
func (a *testApp) login(t *testing.T, page playwright.Page, username string) {
	t.Helper()
	if _, err := page.Goto(a.BaseURL + "/login"); err != nil {
		t.Fatalf("failed to navigate to login: %v", err)
	}
	if err := page.Locator("input[name=username]").Fill(username); err != nil {
		t.Fatalf("failed to fill username: %v", err)
	}
	if err := page.Locator("input[name=password]").Fill(fakePassword); err != nil {
		t.Fatalf("failed to fill password: %v", err)
	}
	if err := page.Locator("main button[type=submit]").Click(); err != nil {
		t.Fatalf("failed to click login: %v", err)
	}
	if err := page.WaitForURL(a.BaseURL+"/actividades", playwright.PageWaitForURLOptions{
		Timeout: playwright.Float(10000),
	}); err != nil {
		t.Fatalf("login did not redirect to the activity list: %v", err)
	}
}

const fakePassword = "secreto"

// fakeAPI is an in-memory stand-in for the activities REST API.
// The user "admin" gets an admin token; every other user is a member.
type fakeAPI struct {
	mu         sync.Mutex
	activities map[int]map[string]any
	enrolled   map[string]map[int]bool // username -> activity ids
	nextID     int
}

func newFakeAPI() *fakeAPI {
	f := &fakeAPI{activities: map[int]map[string]any{}, enrolled: map[string]map[int]bool{}}
	f.add(map[string]any{"titulo": "Yoga", "descripcion": "Estiramiento", "cupo": 2, "dia": "Lunes",
		"hora_inicio": "09:00", "hora_fin": "10:00", "foto_url": "", "instructor": "Ana", "categoria": "Bienestar"})
	f.add(map[string]any{"titulo": "Boxeo", "descripcion": "Guantes propios", "cupo": 10, "dia": "Miercoles",
		"hora_inicio": "19:00", "hora_fin": "20:00", "foto_url": "", "instructor": "Luis", "categoria": "Combate"})
	return f
}

func (f *fakeAPI) add(a map[string]any) int {
	f.nextID++
	a["id_actividad"] = f.nextID
	f.activities[f.nextID] = a
	return f.nextID
}

// remaining counts free places; callers hold mu.
func (f *fakeAPI) remaining(id int) int {
	capacity, _ := f.activities[id]["cupo"].(int)
	if v, ok := f.activities[id]["cupo"].(float64); ok {
		capacity = int(v)
	}
	for _, ids := range f.enrolled {
		if ids[id] {
			capacity--
		}
	}
	return capacity
}

func (f *fakeAPI) token(username string) string {
	tok, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"username": username,
		"is_admin": username == "admin",
		"exp":      time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(jwtSecret))
	return tok
}

// user returns the username of the bearer token, or "" when it is missing or invalid.
func (f *fakeAPI) user(r *http.Request) (string, bool) {
	raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	claims, err := api.ParseClaims(raw, jwtSecret)
	if err != nil {
		return "", false
	}
	return claims.Username, claims.IsAdmin
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	writeJSON := func(status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(v)
	}
	fail := func(status int, msg string) { writeJSON(status, map[string]string{"error": msg}) }

	path := strings.TrimSuffix(r.URL.Path, "/")
	switch {
	case path == "/login" || path == "/register":
		var body struct{ Username, Password string }
		json.NewDecoder(r.Body).Decode(&body)
		if body.Password != fakePassword {
			fail(http.StatusUnauthorized, "credenciales incorrectas")
			return
		}
		writeJSON(http.StatusOK, api.Token{AccessToken: f.token(body.Username), TokenType: "bearer", ExpiresIn: 3600})

	case path == "/actividades" && r.Method == http.MethodGet:
		out := make([]map[string]any, 0, len(f.activities))
		for id, a := range f.activities {
			row := map[string]any{}
			for k, v := range a {
				row[k] = v
			}
			row["lugares"] = f.remaining(id)
			out = append(out, row)
		}
		sort.Slice(out, func(i, j int) bool { return out[i]["id_actividad"].(int) < out[j]["id_actividad"].(int) })
		writeJSON(http.StatusOK, out)

	case path == "/actividades" && r.Method == http.MethodPost:
		if _, admin := f.user(r); !admin {
			fail(http.StatusUnauthorized, "token requerido")
			return
		}
		var a map[string]any
		json.NewDecoder(r.Body).Decode(&a)
		writeJSON(http.StatusCreated, map[string]int{"id_actividad": f.add(a)})

	case strings.HasPrefix(path, "/actividades/"):
		id, _ := strconv.Atoi(strings.TrimPrefix(path, "/actividades/"))
		a, ok := f.activities[id]
		if !ok {
			fail(http.StatusNotFound, "actividad no encontrada")
			return
		}
		switch r.Method {
		case http.MethodGet:
			row := map[string]any{"lugares": f.remaining(id)}
			for k, v := range a {
				row[k] = v
			}
			writeJSON(http.StatusOK, row)
		case http.MethodPut, http.MethodDelete:
			if _, admin := f.user(r); !admin {
				fail(http.StatusUnauthorized, "token requerido")
				return
			}
			if r.Method == http.MethodDelete {
				delete(f.activities, id)
				w.WriteHeader(http.StatusNoContent)
				return
			}
			var upd map[string]any
			json.NewDecoder(r.Body).Decode(&upd)
			upd["id_actividad"] = id
			f.activities[id] = upd
			writeJSON(http.StatusOK, upd)
		}

	case path == "/inscripciones":
		username, _ := f.user(r)
		if username == "" {
			fail(http.StatusUnauthorized, "token requerido")
			return
		}
		if f.enrolled[username] == nil {
			f.enrolled[username] = map[int]bool{}
		}
		switch r.Method {
		case http.MethodGet:
			out := []map[string]any{}
			for id := range f.enrolled[username] {
				out = append(out, map[string]any{"id_usuario": 1, "id_actividad": id, "fecha_inscripcion": "2026-03-02", "is_activa": true})
			}
			writeJSON(http.StatusOK, out)
		case http.MethodPost, http.MethodDelete:
			var body struct{ ID int }
			json.NewDecoder(r.Body).Decode(&body)
			if r.Method == http.MethodDelete {
				delete(f.enrolled[username], body.ID)
				w.WriteHeader(http.StatusNoContent)
				return
			}
			if f.remaining(body.ID) <= 0 {
				fail(http.StatusConflict, "No hay cupos disponibles")
				return
			}
			f.enrolled[username][body.ID] = true
			writeJSON(http.StatusCreated, map[string]string{"message": "ok"})
		}

	default:
		http.NotFound(w, r)
	}
}
