// Package client talks to the leaderboard HTTP API. It is what the command
// line tool uses in place of a direct store connection, and it satisfies the
// store interfaces of the bulk edit and ingest controllers.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dom/leaderboard-dashboard/internal/datasource"
	"github.com/dom/leaderboard-dashboard/internal/domain"
	"github.com/dom/leaderboard-dashboard/internal/leaderboard"
	"github.com/dom/leaderboard-dashboard/internal/session"
	"github.com/google/uuid"
)

// ErrNotSignedIn is returned by calls that need a token when there is none.
var ErrNotSignedIn = errors.New("not signed in")

// StatusError is a non-2xx response.
type StatusError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Status, e.Body)
}

// Temporary reports whether the server said it could not reach its store.
func (e *StatusError) Temporary() bool {
	switch e.Status {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// Client is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	session    session.Context
	logger     *slog.Logger
	retryDelay time.Duration
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithSession supplies the identity whose token authenticates requests.
func WithSession(s session.Context) Option {
	return func(c *Client) { c.session = s }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func WithRetryDelay(d time.Duration) Option {
	return func(c *Client) { c.retryDelay = d }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/") + "/api/v1",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		retryDelay: 250 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type User struct {
	ID          uuid.UUID   `json:"id"`
	DisplayName string      `json:"displayName"`
	Role        domain.Role `json:"role"`
}

type AuthResponse struct {
	User         User      `json:"user"`
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// Identity converts a login response into a session identity.
func (a *AuthResponse) Identity() session.Identity {
	return session.Identity{
		UserID:      a.User.ID,
		DisplayName: a.User.DisplayName,
		Role:        a.User.Role,
		Token:       a.AccessToken,
		ExpiresAt:   a.ExpiresAt,
	}
}

type Board struct {
	Entries []leaderboard.Ranked `json:"entries"`
	Total   int                  `json:"total"`
	Sort    leaderboard.Sort     `json:"sort"`
}

func (c *Client) Login(ctx context.Context, displayName, password string) (*AuthResponse, error) {
	var out AuthResponse
	body := map[string]string{"displayName": displayName, "password": password}
	if err := c.do(ctx, request{method: http.MethodPost, path: "/auth/login", body: body, out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

// Leaderboard fetches the ranked, filtered view. Empty arguments take the
// server defaults.
func (c *Client) Leaderboard(ctx context.Context, search string, sort leaderboard.Sort) (*Board, error) {
	q := url.Values{}
	if search != "" {
		q.Set("search", search)
	}
	if sort.Field != "" {
		q.Set("sort", string(sort.Field))
		q.Set("direction", string(sort.Direction))
	}

	var out Board
	if err := c.do(ctx, request{method: http.MethodGet, path: "/leaderboard", query: q, idempotent: true, out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Summary(ctx context.Context) (*leaderboard.Summary, error) {
	var out leaderboard.Summary
	if err := c.do(ctx, request{method: http.MethodGet, path: "/leaderboard/summary", idempotent: true, out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RecentEntries(ctx context.Context, page int) (*datasource.Page, error) {
	q := url.Values{"page": {strconv.Itoa(page)}}
	var out datasource.Page
	err := c.do(ctx, request{method: http.MethodGet, path: "/admin/entries", query: q, auth: true, idempotent: true, out: &out})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// InsertEntries sends the batch in one request.
func (c *Client) InsertEntries(ctx context.Context, records []domain.EntryFields) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}
	var out struct {
		Count int `json:"count"`
	}
	err := c.do(ctx, request{method: http.MethodPost, path: "/admin/entries", body: records, auth: true, out: &out})
	return out.Count, err
}

func (c *Client) UpdateEntry(ctx context.Context, id uuid.UUID, fields domain.EntryFields) error {
	return c.do(ctx, request{method: http.MethodPatch, path: "/admin/entries/" + id.String(), body: fields, auth: true, idempotent: true})
}

// DeleteEntries sends an already confirmed bulk delete.
func (c *Client) DeleteEntries(ctx context.Context, ids []uuid.UUID) (int64, error) {
	body := map[string]any{"ids": ids, "confirmed": true}
	var out struct {
		Count int64 `json:"count"`
	}
	err := c.do(ctx, request{method: http.MethodPost, path: "/admin/entries/bulk-delete", body: body, auth: true, idempotent: true, out: &out})
	return out.Count, err
}

// Export downloads the full data set and returns it with the server's file name.
func (c *Client) Export(ctx context.Context, format string) ([]byte, string, error) {
	var buf bytes.Buffer
	var header http.Header
	err := c.do(ctx, request{
		method:     http.MethodGet,
		path:       "/admin/export",
		query:      url.Values{"format": {format}},
		auth:       true,
		idempotent: true,
		raw:        &buf,
		header:     &header,
	})
	if err != nil {
		return nil, "", err
	}

	name := "leaderboard-export." + format
	if _, params, err := mime.ParseMediaType(header.Get("Content-Disposition")); err == nil && params["filename"] != "" {
		name = params["filename"]
	}
	return buf.Bytes(), name, nil
}

type request struct {
	method string
	path   string
	query  url.Values
	body   any
	auth   bool
	// idempotent requests are retried once on a transport error or a
	// temporary status.
	idempotent bool
	out        any
	raw        io.Writer
	header     *http.Header
}

func (c *Client) do(ctx context.Context, r request) error {
	var payload []byte
	if r.body != nil {
		var err error
		if payload, err = json.Marshal(r.body); err != nil {
			return err
		}
	}

	token := ""
	if r.auth {
		if c.session == nil {
			return ErrNotSignedIn
		}
		identity, ok := c.session.CurrentUser()
		if !ok {
			return ErrNotSignedIn
		}
		token = identity.Token
	}

	err := c.attempt(ctx, r, payload, token)
	if err == nil || !r.idempotent || !retryable(err) {
		return err
	}

	c.logger.Warn("request failed, retrying once", "component", "client", "method", r.method, "path", r.path, "error", err)
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(c.retryDelay):
	}
	return c.attempt(ctx, r, payload, token)
}

func (c *Client) attempt(ctx context.Context, r request, payload []byte, token string) error {
	target := c.baseURL + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, r.method, target, body)
	if err != nil {
		return err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{Method: r.method, Path: r.path, Status: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}

	if r.header != nil {
		*r.header = resp.Header
	}
	switch {
	case r.raw != nil:
		_, err = io.Copy(r.raw, resp.Body)
		return err
	case r.out != nil:
		if err := json.NewDecoder(resp.Body).Decode(r.out); err != nil {
			return fmt.Errorf("decode %s response: %w", r.path, err)
		}
	}
	return nil
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var status *StatusError
	if errors.As(err, &status) {
		return status.Temporary()
	}
	// Anything else came from the transport.
	return true
}
