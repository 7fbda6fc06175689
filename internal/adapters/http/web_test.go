package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"gymportal/internal/adapters/api"
	"gymportal/internal/adapters/http/middleware"
	"gymportal/internal/domain/account"
	"gymportal/internal/domain/activity"
	"gymportal/internal/domain/enrollment"
)

// fakeBackend is an in-memory activities API.
type fakeBackend struct {
	mu         sync.Mutex
	activities map[int]activity.Activity
	enrolled   map[int]bool
	nextID     int

	loginErr      error
	enrollErr     error
	saveErr       error
	listEnrollErr error
	token         string

	created []activity.Activity
	updated []activity.Activity
	deleted []int
}

func newFakeBackend(list ...activity.Activity) *fakeBackend {
	fb := &fakeBackend{
		activities: make(map[int]activity.Activity),
		enrolled:   make(map[int]bool),
		token:      "tok-member",
	}
	for _, a := range list {
		fb.activities[a.ID] = a
		if a.ID > fb.nextID {
			fb.nextID = a.ID
		}
	}
	return fb
}

// ListActivities returns every activity ordered by ID.
// POST: Remaining reflects the fake's enrollments
func (f *fakeBackend) ListActivities(_ context.Context) ([]activity.Activity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]activity.Activity, 0, len(f.activities))
	for _, a := range f.activities {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ListEnrollments returns one active enrollment per enrolled activity.
func (f *fakeBackend) ListEnrollments(_ context.Context, token string) ([]enrollment.Enrollment, error) {
	if token == "" {
		return nil, &api.Error{Status: http.StatusUnauthorized}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listEnrollErr != nil {
		return nil, f.listEnrollErr
	}
	var out []enrollment.Enrollment
	for id, on := range f.enrolled {
		out = append(out, enrollment.Enrollment{UserID: 7, ActivityID: id, Active: on})
	}
	return out, nil
}

// GetActivity returns the activity or a 404 api.Error.
func (f *fakeBackend) GetActivity(_ context.Context, id int) (activity.Activity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.activities[id]
	if !ok {
		return activity.Activity{}, &api.Error{Status: http.StatusNotFound}
	}
	return a, nil
}

// CreateActivity stores a with a fresh ID unless saveErr is set.
func (f *fakeBackend) CreateActivity(_ context.Context, _ string, a activity.Activity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.nextID++
	a.ID = f.nextID
	a.Remaining = a.Capacity
	f.activities[a.ID] = a
	f.created = append(f.created, a)
	return nil
}

// UpdateActivity replaces the activity unless saveErr is set.
func (f *fakeBackend) UpdateActivity(_ context.Context, _ string, a activity.Activity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.activities[a.ID] = a
	f.updated = append(f.updated, a)
	return nil
}

// DeleteActivity removes the activity or returns 404.
func (f *fakeBackend) DeleteActivity(_ context.Context, _ string, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.activities[id]; !ok {
		return &api.Error{Status: http.StatusNotFound}
	}
	delete(f.activities, id)
	f.deleted = append(f.deleted, id)
	return nil
}

// Enroll marks the activity enrolled and takes one place.
func (f *fakeBackend) Enroll(_ context.Context, _ string, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.enrollErr != nil {
		return f.enrollErr
	}
	a := f.activities[id]
	a.Remaining--
	f.activities[id] = a
	f.enrolled[id] = true
	return nil
}

// Unenroll drops the enrollment and frees one place.
func (f *fakeBackend) Unenroll(_ context.Context, _ string, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.enrolled[id] {
		return &api.Error{Status: http.StatusNotFound}
	}
	delete(f.enrolled, id)
	a := f.activities[id]
	a.Remaining++
	f.activities[id] = a
	return nil
}

// Login returns an opaque token unless loginErr is set.
func (f *fakeBackend) Login(_ context.Context, _ account.Credentials) (api.Token, error) {
	if f.loginErr != nil {
		return api.Token{}, f.loginErr
	}
	return api.Token{AccessToken: f.token, TokenType: "bearer", ExpiresIn: 3600}, nil
}

// Register behaves like Login.
func (f *fakeBackend) Register(ctx context.Context, reg account.Registration) (api.Token, error) {
	return f.Login(ctx, account.Credentials{Username: reg.Username, Password: reg.Password})
}

var testActivities = []activity.Activity{
	{ID: 1, Title: "Yoga", Description: "Estiramiento **suave**", Instructor: "Ana", Category: "Bienestar",
		Weekday: activity.Monday, StartTime: "09:00", EndTime: "10:00", Capacity: 20, Remaining: 20},
	{ID: 2, Title: "Boxeo", Description: "Guantes propios", Instructor: "Luis", Category: "Combate",
		Weekday: activity.Wednesday, StartTime: "19:00", EndTime: "20:00", Capacity: 10, Remaining: 0},
}

var testNow = time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

// setupWeb installs fresh package deps and returns the fake backend and session store.
func setupWeb(t *testing.T) (*fakeBackend, *middleware.MemorySessionStore) {
	t.Helper()
	fb := newFakeBackend(testActivities...)
	store := middleware.NewMemorySessionStore()
	setDeps(Deps{API: fb, Sessions: store})
	prevNow := timeNow
	timeNow = func() time.Time { return testNow }
	t.Cleanup(func() {
		timeNow = prevNow
		setDeps(Deps{})
	})
	return fb, store
}

func memberSession() account.Session {
	return account.Session{
		ID: "sess-member", Token: "tok-member", Username: "juan", UserID: 7,
		Role: account.RoleMember, CreatedAt: testNow, ExpiresAt: testNow.Add(time.Hour),
	}
}

func adminSession() account.Session {
	return account.Session{
		ID: "sess-admin", Token: "tok-admin", Username: "admin", UserID: 1,
		Role: account.RoleAdmin, CreatedAt: testNow, ExpiresAt: testNow.Add(time.Hour),
	}
}

// withSession attaches sess to the request context the way the Auth middleware does.
func withSession(r *http.Request, sess account.Session) *http.Request {
	return r.WithContext(middleware.ContextWithSession(r.Context(), sess))
}

// htmlRequest builds a browser request. A non-empty form is sent url-encoded.
func htmlRequest(method, target, form string) *http.Request {
	r := httptest.NewRequest(method, target, strings.NewReader(form))
	if form != "" {
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	r.Header.Set("Accept", "text/html")
	return r
}

func jsonRequest(method, target, body string) *http.Request {
	r := httptest.NewRequest(method, target, strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	r.Header.Set("Accept", "application/json")
	return r
}

func cookieNamed(rr *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
