package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/oriontask/internal/client/models"
	"github.com/dmitrijs2005/oriontask/internal/common"
	"github.com/dmitrijs2005/oriontask/internal/logging"
	"github.com/google/uuid"
)

type HTTPClient struct {
	baseURL        string
	http           *http.Client
	credentials    Credentials
	onUnauthorized func(ctx context.Context)
	log            logging.Logger
}

type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying transport client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.http = hc }
}

// WithCredentials sets the token source that is also cleared on 401.
func WithCredentials(cr Credentials) Option {
	return func(c *HTTPClient) { c.credentials = cr }
}

// WithUnauthorizedHook registers fn to run after a 401 cleared the
// credentials.
func WithUnauthorizedHook(fn func(ctx context.Context)) Option {
	return func(c *HTTPClient) { c.onUnauthorized = fn }
}

func WithLogger(l logging.Logger) Option {
	return func(c *HTTPClient) { c.log = l }
}

func NewHTTPClient(baseURL string, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		log:     logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *HTTPClient) newRequest(ctx context.Context, method, path string, query url.Values, body any) (*http.Request, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rdr)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(common.RequestIDHeaderName, uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.credentials != nil {
		token, err := c.credentials.Token(ctx)
		if err != nil {
			return nil, fmt.Errorf("read token: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return req, nil
}

// do sends the request and decodes a 2xx body into out. A 204 or empty body
// leaves out untouched and reports empty=true.
func (c *HTTPClient) do(ctx context.Context, method, path string, query url.Values, body, out any) (empty bool, err error) {
	req, err := c.newRequest(ctx, method, path, query, body)
	if err != nil {
		return false, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return false, ctxErr
		}
		c.log.Warn(ctx, "request failed without response", "method", method, "path", path, "error", err)
		return false, &APIError{
			Message:    "no response from server",
			Status:     http.StatusServiceUnavailable,
			NoResponse: true,
			cause:      err,
		}
	}
	defer resp.Body.Close()

	c.log.Debug(ctx, "request completed", "method", method, "path", path, "status", resp.StatusCode,
		"request_id", req.Header.Get(common.RequestIDHeaderName))

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, &APIError{Message: "failed to read response", Status: resp.StatusCode, cause: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Message: extractMessage(data, resp.StatusCode), Status: resp.StatusCode}
		if resp.StatusCode == http.StatusUnauthorized {
			c.handleUnauthorized(ctx)
		}
		return false, apiErr
	}

	if resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(data)) == 0 {
		return true, nil
	}
	if out == nil {
		return false, nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, &ParseError{Status: resp.StatusCode, Err: err}
	}
	return false, nil
}

func (c *HTTPClient) handleUnauthorized(ctx context.Context) {
	if c.credentials != nil {
		if err := c.credentials.Clear(ctx); err != nil {
			c.log.Error(ctx, "failed to clear credentials after 401", "error", err)
		}
	}
	if c.onUnauthorized != nil {
		c.onUnauthorized(ctx)
	}
}

// extractMessage prefers the backend's JSON "message" or "error" fields,
// then field validation errors, then the raw body.
func extractMessage(data []byte, status int) string {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return "Error " + strconv.Itoa(status)
	}

	var body struct {
		Message string            `json:"message"`
		Error   string            `json:"error"`
		Errors  map[string]string `json:"errors"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return trimmed
	}

	switch {
	case body.Message != "":
		return body.Message
	case len(body.Errors) > 0:
		parts := make([]string, 0, len(body.Errors))
		for field, msg := range body.Errors {
			parts = append(parts, field+": "+msg)
		}
		sort.Strings(parts)
		return strings.Join(parts, "; ")
	case body.Error != "":
		return body.Error
	}
	return trimmed
}

// getOne decodes a single entity. A 204 or empty body yields (nil, nil).
func getOne[T any](ctx context.Context, c *HTTPClient, method, path string, query url.Values, body any) (*T, error) {
	var out T
	empty, err := c.do(ctx, method, path, query, body, &out)
	if err != nil {
		return nil, err
	}
	if empty {
		return nil, nil
	}
	return &out, nil
}

func pageQuery(p models.PageRequest) url.Values {
	p = p.Normalize()
	q := url.Values{}
	q.Set("page", strconv.Itoa(p.Page))
	q.Set("size", strconv.Itoa(p.Size))
	return q
}

func id(v int64) string {
	return strconv.FormatInt(v, 10)
}

func (c *HTTPClient) Signup(ctx context.Context, req models.SignupRequest) (*models.AuthResponse, error) {
	return getOne[models.AuthResponse](ctx, c, http.MethodPost, "/auth/signup", nil, req)
}

func (c *HTTPClient) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	return getOne[models.AuthResponse](ctx, c, http.MethodPost, "/auth/login", nil, req)
}

func (c *HTTPClient) GetUser(ctx context.Context, userID string) (*models.User, error) {
	return getOne[models.User](ctx, c, http.MethodGet, "/users/"+url.PathEscape(userID), nil, nil)
}

func (c *HTTPClient) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return getOne[models.User](ctx, c, http.MethodGet, "/users/username/"+url.PathEscape(username), nil, nil)
}

func (c *HTTPClient) GetProfile(ctx context.Context) (*models.Profile, error) {
	return getOne[models.Profile](ctx, c, http.MethodGet, "/users/profile", nil, nil)
}

func (c *HTTPClient) UpdateProfile(ctx context.Context, upd models.ProfileUpdate) (*models.Profile, error) {
	return getOne[models.Profile](ctx, c, http.MethodPatch, "/users/profile", nil, upd)
}

func (c *HTTPClient) ListDharmasByUser(ctx context.Context, userID string, includeHidden bool) ([]models.Dharma, error) {
	q := url.Values{}
	q.Set("includeHidden", strconv.FormatBool(includeHidden))

	var out []models.Dharma
	if _, err := c.do(ctx, http.MethodGet, "/dharma/user/"+url.PathEscape(userID), q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) CreateDharma(ctx context.Context, userID string, in models.DharmaInput) (*models.Dharma, error) {
	return getOne[models.Dharma](ctx, c, http.MethodPost, "/dharma/"+url.PathEscape(userID)+"/create", nil, in)
}

func (c *HTTPClient) UpdateDharma(ctx context.Context, dharmaID int64, in models.DharmaInput) (*models.Dharma, error) {
	return getOne[models.Dharma](ctx, c, http.MethodPatch, "/dharma/edit/"+id(dharmaID), nil, in)
}

func (c *HTTPClient) ToggleDharmaHidden(ctx context.Context, dharmaID int64) (*models.Dharma, error) {
	return getOne[models.Dharma](ctx, c, http.MethodPatch, "/dharma/"+id(dharmaID)+"/toggle-hidden", nil, nil)
}

func (c *HTTPClient) DeleteDharma(ctx context.Context, dharmaID int64) error {
	_, err := c.do(ctx, http.MethodDelete, "/dharma/"+id(dharmaID), nil, nil, nil)
	return err
}

func (c *HTTPClient) CreateTask(ctx context.Context, dharmaID int64, in models.TaskInput) (*models.Task, error) {
	return getOne[models.Task](ctx, c, http.MethodPost, "/tasks/"+id(dharmaID)+"/create", nil, in)
}

func (c *HTTPClient) UpdateTask(ctx context.Context, taskID int64, in models.TaskInput) (*models.Task, error) {
	return getOne[models.Task](ctx, c, http.MethodPatch, "/tasks/edit/"+id(taskID), nil, in)
}

func (c *HTTPClient) ChangeTaskStatus(ctx context.Context, taskID int64, status models.TaskStatus) (*models.Task, error) {
	q := url.Values{}
	q.Set("status", string(status))
	return getOne[models.Task](ctx, c, http.MethodPatch, "/tasks/"+id(taskID)+"/change-status", q, nil)
}

func (c *HTTPClient) MarkTaskDone(ctx context.Context, taskID int64) (*models.Task, error) {
	return getOne[models.Task](ctx, c, http.MethodPatch, "/tasks/"+id(taskID)+"/mark-done", nil, nil)
}

func (c *HTTPClient) MoveTaskToNow(ctx context.Context, taskID int64) (*models.Task, error) {
	return getOne[models.Task](ctx, c, http.MethodPatch, "/tasks/"+id(taskID)+"/move-to-now", nil, nil)
}

func (c *HTTPClient) ListTasksByDharma(ctx context.Context, dharmaID int64, page models.PageRequest) (*models.Page[models.Task], error) {
	return getOne[models.Page[models.Task]](ctx, c, http.MethodGet, "/tasks/dharma/"+id(dharmaID), pageQuery(page), nil)
}

func (c *HTTPClient) ListTasksByDharmaAndStatus(ctx context.Context, dharmaID int64, status models.TaskStatus, page models.PageRequest) (*models.Page[models.Task], error) {
	path := "/tasks/dharma/" + id(dharmaID) + "/status/" + url.PathEscape(string(status))
	return getOne[models.Page[models.Task]](ctx, c, http.MethodGet, path, pageQuery(page), nil)
}

func (c *HTTPClient) ListTasksByUserAndStatus(ctx context.Context, userID string, status models.TaskStatus, page models.PageRequest) (*models.Page[models.Task], error) {
	path := "/tasks/user/" + url.PathEscape(userID) + "/status/" + url.PathEscape(string(status))
	return getOne[models.Page[models.Task]](ctx, c, http.MethodGet, path, pageQuery(page), nil)
}

func (c *HTTPClient) DeleteTask(ctx context.Context, taskID int64) error {
	_, err := c.do(ctx, http.MethodDelete, "/tasks/"+id(taskID), nil, nil, nil)
	return err
}
