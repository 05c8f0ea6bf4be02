package tasks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teju/task-manager/backend/internal/auth"
	"github.com/teju/task-manager/backend/internal/middleware"
	"github.com/teju/task-manager/backend/internal/models"
	"github.com/teju/task-manager/backend/internal/store"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// staticUserStore serves a fixed set of users keyed by email.
type staticUserStore struct {
	users map[string]*models.User
}

func (s *staticUserStore) CreateUser(context.Context, string, string, string) (*models.User, error) {
	panic("not used")
}

func (s *staticUserStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	if u, ok := s.users[email]; ok {
		return u, nil
	}
	return nil, store.ErrNotFound
}

type taskFixture struct {
	router http.Handler
	tokens *auth.TokenService
}

func setupTaskRouter(t *testing.T) *taskFixture {
	t.Helper()
	tokens := auth.NewTokenService(testSecret, time.Hour)
	users := &staticUserStore{users: map[string]*models.User{
		"a@x.com": {ID: 1, Email: "a@x.com", FullName: "A"},
		"b@x.com": {ID: 2, Email: "b@x.com", FullName: "B"},
	}}
	handler := NewHandler(NewService(newMemTaskStore()))

	r := chi.NewRouter()
	r.Route("/api/tasks", func(r chi.Router) {
		r.Use(middleware.Authenticator(tokens, users))
		r.Use(middleware.RequireUser)
		r.Post("/", handler.Create)
		r.Get("/", handler.List)
		r.Get("/{id}", handler.Get)
		r.Get("/status/{status}", handler.ListByStatus)
		r.Get("/priority/{priority}", handler.ListByPriority)
		r.Put("/{id}", handler.Update)
		r.Delete("/{id}", handler.Delete)
	})
	return &taskFixture{router: r, tokens: tokens}
}

func (f *taskFixture) do(t *testing.T, method, path, email string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if email != "" {
		token, err := f.tokens.Issue(email)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeTask(t *testing.T, rec *httptest.ResponseRecorder) models.Task {
	t.Helper()
	var task models.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &task))
	return task
}

func TestTasksEndpoint_RequiresAuth(t *testing.T) {
	f := setupTaskRouter(t)

	rec := f.do(t, http.MethodGet, "/api/tasks/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/tasks/", "", models.TaskRequest{Title: "t"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateTaskEndpoint(t *testing.T) {
	f := setupTaskRouter(t)

	rec := f.do(t, http.MethodPost, "/api/tasks/", "a@x.com", models.TaskRequest{Title: "t"})
	require.Equal(t, http.StatusCreated, rec.Code)

	task := decodeTask(t, rec)
	assert.Equal(t, "t", task.Title)
	assert.Equal(t, models.StatusTodo, task.Status)
	assert.Equal(t, models.PriorityMedium, task.Priority)
	assert.False(t, task.CreatedAt.IsZero())
}

func TestCreateTaskEndpoint_BadInput(t *testing.T) {
	f := setupTaskRouter(t)

	rec := f.do(t, http.MethodPost, "/api/tasks/", "a@x.com", models.TaskRequest{Title: ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// unknown enum value fails the body decode
	rec = f.do(t, http.MethodPost, "/api/tasks/", "a@x.com",
		map[string]string{"title": "t", "status": "WAITING"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetTaskEndpoint(t *testing.T) {
	f := setupTaskRouter(t)

	created := decodeTask(t, f.do(t, http.MethodPost, "/api/tasks/", "a@x.com", models.TaskRequest{Title: "t"}))

	rec := f.do(t, http.MethodGet, fmt.Sprintf("/api/tasks/%d", created.ID), "a@x.com", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, created.ID, decodeTask(t, rec).ID)

	// same id as another user reads as not found
	rec = f.do(t, http.MethodGet, fmt.Sprintf("/api/tasks/%d", created.ID), "b@x.com", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/tasks/999", "a@x.com", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/tasks/abc", "a@x.com", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListTaskEndpoints(t *testing.T) {
	f := setupTaskRouter(t)

	f.do(t, http.MethodPost, "/api/tasks/", "a@x.com", models.TaskRequest{Title: "first"})
	f.do(t, http.MethodPost, "/api/tasks/", "a@x.com",
		models.TaskRequest{Title: "second", Status: statusPtr(models.StatusDone), Priority: priorityPtr(models.PriorityHigh)})
	f.do(t, http.MethodPost, "/api/tasks/", "b@x.com", models.TaskRequest{Title: "other user"})

	rec := f.do(t, http.MethodGet, "/api/tasks/", "a@x.com", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listed []models.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed, 2)
	assert.Equal(t, "first", listed[0].Title)
	assert.Equal(t, "second", listed[1].Title)

	// status filter, case-insensitive path value
	rec = f.do(t, http.MethodGet, "/api/tasks/status/done", "a@x.com", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, "second", listed[0].Title)

	rec = f.do(t, http.MethodGet, "/api/tasks/priority/HIGH", "a@x.com", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed, 1)

	rec = f.do(t, http.MethodGet, "/api/tasks/status/bogus", "a@x.com", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// an empty result is an empty JSON array, not null
	rec = f.do(t, http.MethodGet, "/api/tasks/status/IN_PROGRESS", "a@x.com", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestUpdateTaskEndpoint(t *testing.T) {
	f := setupTaskRouter(t)

	created := decodeTask(t, f.do(t, http.MethodPost, "/api/tasks/", "a@x.com",
		models.TaskRequest{Title: "t", Status: statusPtr(models.StatusInProgress)}))

	// status omitted: preserved
	rec := f.do(t, http.MethodPut, fmt.Sprintf("/api/tasks/%d", created.ID), "a@x.com",
		models.TaskRequest{Title: "renamed"})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decodeTask(t, rec)
	assert.Equal(t, "renamed", updated.Title)
	assert.Equal(t, models.StatusInProgress, updated.Status)

	// cross-user update misses
	rec = f.do(t, http.MethodPut, fmt.Sprintf("/api/tasks/%d", created.ID), "b@x.com",
		models.TaskRequest{Title: "stolen"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteTaskEndpoint(t *testing.T) {
	f := setupTaskRouter(t)

	created := decodeTask(t, f.do(t, http.MethodPost, "/api/tasks/", "a@x.com", models.TaskRequest{Title: "t"}))

	// cross-user delete misses and leaves the task in place
	rec := f.do(t, http.MethodDelete, fmt.Sprintf("/api/tasks/%d", created.ID), "b@x.com", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodDelete, fmt.Sprintf("/api/tasks/%d", created.ID), "a@x.com", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// second delete of the same id fails
	rec = f.do(t, http.MethodDelete, fmt.Sprintf("/api/tasks/%d", created.ID), "a@x.com", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
