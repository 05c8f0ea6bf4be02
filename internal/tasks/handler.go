package tasks

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/teju/task-manager/backend/internal/middleware"
	"github.com/teju/task-manager/backend/internal/models"
	"github.com/teju/task-manager/backend/internal/store"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeServiceError maps service failures to the wire. Internal detail
// never crosses the boundary.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		http.Error(w, `{"error":"task not found"}`, http.StatusNotFound)
	case errors.Is(err, ErrValidation):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		log.Printf("tasks: %v", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
	}
}

// Handler holds task HTTP handlers. All routes sit behind the
// Authenticator and RequireUser middleware, so the resolved user is
// always present in the context.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Create handles POST /api/tasks.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	var req models.TaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}

	task, err := h.svc.Create(r.Context(), user.ID, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

// List handles GET /api/tasks.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	tasks, err := h.svc.List(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

// ListByStatus handles GET /api/tasks/status/{status}.
func (h *Handler) ListByStatus(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	status, err := models.ParseStatus(chi.URLParam(r, "status"))
	if err != nil {
		http.Error(w, `{"error":"invalid status"}`, http.StatusBadRequest)
		return
	}

	tasks, err := h.svc.ListByStatus(r.Context(), user.ID, status)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

// ListByPriority handles GET /api/tasks/priority/{priority}.
func (h *Handler) ListByPriority(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	priority, err := models.ParsePriority(chi.URLParam(r, "priority"))
	if err != nil {
		http.Error(w, `{"error":"invalid priority"}`, http.StatusBadRequest)
		return
	}

	tasks, err := h.svc.ListByPriority(r.Context(), user.ID, priority)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

// Get handles GET /api/tasks/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	id, ok := taskID(w, r)
	if !ok {
		return
	}

	task, err := h.svc.Get(r.Context(), user.ID, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// Update handles PUT /api/tasks/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	id, ok := taskID(w, r)
	if !ok {
		return
	}

	var req models.TaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}

	task, err := h.svc.Update(r.Context(), user.ID, id, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// Delete handles DELETE /api/tasks/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	id, ok := taskID(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), user.ID, id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// taskID parses the {id} URL param. A non-numeric id can't name any
// task, so it reads as not found rather than a malformed request.
func taskID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, `{"error":"task not found"}`, http.StatusNotFound)
		return 0, false
	}
	return id, true
}
