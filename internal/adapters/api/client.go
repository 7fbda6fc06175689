package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"gymportal/internal/adapters/http/perf"
	"gymportal/internal/domain/account"
	"gymportal/internal/domain/activity"
	"gymportal/internal/domain/enrollment"
)

// DefaultSlowUpstreamMs is the default threshold for slow upstream warnings.
const DefaultSlowUpstreamMs = 500

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 1 << 20

// Client is a typed client for the activities REST API.
// Every call is one request; there are no retries and no caching.
type Client struct {
	baseURL   string
	http      *http.Client
	collector *perf.Collector
	slowMs    float64
}

// NewClient creates a client rooted at baseURL.
// PRE: baseURL is an absolute http(s) URL; httpClient may be nil (http.DefaultClient)
// POST: Returns a client that records upstream timings to collector when non-nil
func NewClient(baseURL string, httpClient *http.Client, collector *perf.Collector, slowMs int) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if slowMs <= 0 {
		slowMs = DefaultSlowUpstreamMs
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      httpClient,
		collector: collector,
		slowMs:    float64(slowMs),
	}
}

// ListActivities fetches every activity.
// POST: Returns activities in backend order
func (c *Client) ListActivities(ctx context.Context) ([]activity.Activity, error) {
	var dtos []activityDTO
	if _, err := c.do(ctx, http.MethodGet, "/actividades", "/actividades", "", errorKeys, nil, &dtos); err != nil {
		return nil, err
	}
	out := make([]activity.Activity, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, d.toDomain())
	}
	return out, nil
}

// GetActivity fetches one activity by id.
// POST: Returns ErrNotFound (via errors.Is) when the backend answers 404
func (c *Client) GetActivity(ctx context.Context, id int) (activity.Activity, error) {
	var d activityDTO
	path := "/actividades/" + strconv.Itoa(id)
	if _, err := c.do(ctx, http.MethodGet, "/actividades/{id}", path, "", errorKeys, nil, &d); err != nil {
		return activity.Activity{}, err
	}
	return d.toDomain(), nil
}

// CreateActivity creates a as an admin.
// PRE: a passed draft validation; token is an admin bearer token
func (c *Client) CreateActivity(ctx context.Context, token string, a activity.Activity) error {
	dto := activityFromDomain(a)
	dto.ID = 0
	_, err := c.do(ctx, http.MethodPost, "/actividades", "/actividades", token, errorKeys, dto, nil)
	return err
}

// UpdateActivity replaces activity a.ID.
// PRE: a.ID > 0; token is an admin bearer token
func (c *Client) UpdateActivity(ctx context.Context, token string, a activity.Activity) error {
	path := "/actividades/" + strconv.Itoa(a.ID)
	_, err := c.do(ctx, http.MethodPut, "/actividades/{id}", path, token, errorKeys, activityFromDomain(a), nil)
	return err
}

// DeleteActivity removes activity id.
// PRE: id > 0; token is an admin bearer token
func (c *Client) DeleteActivity(ctx context.Context, token string, id int) error {
	path := "/actividades/" + strconv.Itoa(id)
	_, err := c.do(ctx, http.MethodDelete, "/actividades/{id}", path, token, messageKeys, nil, nil)
	return err
}

// ListEnrollments fetches the token owner's enrollments, active and inactive.
func (c *Client) ListEnrollments(ctx context.Context, token string) ([]enrollment.Enrollment, error) {
	var dtos []enrollmentDTO
	if _, err := c.do(ctx, http.MethodGet, "/inscripciones", "/inscripciones", token, errorKeys, nil, &dtos); err != nil {
		return nil, err
	}
	out := make([]enrollment.Enrollment, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, d.toDomain())
	}
	return out, nil
}

// Enroll registers the token owner in activityID. Any 2xx is success.
func (c *Client) Enroll(ctx context.Context, token string, activityID int) error {
	_, err := c.do(ctx, http.MethodPost, "/inscripciones", "/inscripciones", token, errorKeys, idDTO{ID: activityID}, nil)
	return err
}

// Unenroll deactivates the token owner's enrollment in activityID.
// POST: nil only when the backend answers 204; any other status is an *Error
func (c *Client) Unenroll(ctx context.Context, token string, activityID int) error {
	status, err := c.do(ctx, http.MethodDelete, "/inscripciones", "/inscripciones", token, errorKeys, idDTO{ID: activityID}, nil)
	if err != nil {
		return err
	}
	if status != http.StatusNoContent {
		return &Error{Status: status}
	}
	return nil
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, creds account.Credentials) (Token, error) {
	var tok Token
	_, err := c.do(ctx, http.MethodPost, "/login", "/login", "", errorKeys, loginDTO{Username: creds.Username, Password: creds.Password}, &tok)
	if err != nil {
		return Token{}, err
	}
	if tok.AccessToken == "" {
		return Token{}, fmt.Errorf("login: %w", ErrMalformedResponse)
	}
	return tok, nil
}

// Register creates a user and returns a bearer token for it.
func (c *Client) Register(ctx context.Context, reg account.Registration) (Token, error) {
	var tok Token
	body := registerDTO{FirstName: reg.FirstName, LastName: reg.LastName, Username: reg.Username, Password: reg.Password}
	if _, err := c.do(ctx, http.MethodPost, "/register", "/register", "", errorKeys, body, &tok); err != nil {
		return Token{}, err
	}
	if tok.AccessToken == "" {
		return Token{}, fmt.Errorf("register: %w", ErrMalformedResponse)
	}
	return tok, nil
}

// do sends one request and decodes a 2xx JSON body into out when out is non-nil.
// route is the templated path used for timing aggregation; keys names the body
// fields read, in order, for the server message of a non-2xx response.
// PRE: ctx is valid; in is nil or JSON-encodable
// POST: Returns the status code; non-2xx yields *Error, network failure *TransportError
func (c *Client) do(ctx context.Context, method, route, path, token string, keys []string, in, out any) (int, error) {
	op := method + " " + route

	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return 0, fmt.Errorf("encode %s: %w", op, err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, fmt.Errorf("build %s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.record(op, 0, start)
		return 0, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	c.record(op, resp.StatusCode, start)
	if err != nil {
		return resp.StatusCode, &TransportError{Op: op, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, newError(resp.StatusCode, raw, keys)
	}
	if out != nil && len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode %s: %w: %v", op, ErrMalformedResponse, err)
		}
	}
	return resp.StatusCode, nil
}

// record logs and optionally collects an upstream timing.
func (c *Client) record(op string, status int, start time.Time) {
	durationMs := float64(time.Since(start).Microseconds()) / 1000.0

	if durationMs >= c.slowMs {
		slog.Warn("slow_upstream",
			"op", op,
			"status", status,
			"duration_ms", durationMs,
		)
	} else {
		slog.Debug("upstream",
			"op", op,
			"status", status,
			"duration_ms", durationMs,
		)
	}

	c.collector.Record(perf.Entry{
		Kind:       perf.KindUpstream,
		Path:       op,
		StatusCode: status,
		DurationMs: durationMs,
		Timestamp:  start,
	})
}
