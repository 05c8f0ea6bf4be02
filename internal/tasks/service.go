package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/teju/task-manager/backend/internal/models"
)

// ErrValidation marks rejected input (missing title and the like).
var ErrValidation = errors.New("invalid task")

// Store defines the interface for task persistence. Every method is
// owner-scoped: the store applies the user id to each query, so a
// lookup miss never reveals whether the id exists under another owner.
type Store interface {
	CreateTask(ctx context.Context, t *models.Task) error
	ListTasks(ctx context.Context, userID int64) ([]models.Task, error)
	ListTasksByStatus(ctx context.Context, userID int64, status models.Status) ([]models.Task, error)
	ListTasksByPriority(ctx context.Context, userID int64, priority models.Priority) ([]models.Task, error)
	GetTask(ctx context.Context, userID, id int64) (*models.Task, error)
	UpdateTask(ctx context.Context, t *models.Task) error
	DeleteTask(ctx context.Context, userID, id int64) error
}

// Service enforces ownership and default values on top of the store.
// The owner always comes from the resolved request identity, never from
// client input.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Create persists a new task for owner. Status defaults to TODO and
// priority to MEDIUM when absent from the request.
func (s *Service) Create(ctx context.Context, owner int64, req models.TaskRequest) (*models.Task, error) {
	title, err := validTitle(req.Title)
	if err != nil {
		return nil, err
	}

	task := &models.Task{
		UserID:      owner,
		Title:       title,
		Description: req.Description,
		Status:      models.StatusTodo,
		Priority:    models.PriorityMedium,
		DueDate:     req.DueDate,
	}
	if req.Status != nil {
		task.Status = *req.Status
	}
	if req.Priority != nil {
		task.Priority = *req.Priority
	}

	if err := s.store.CreateTask(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// List returns all of the owner's tasks in insertion order.
func (s *Service) List(ctx context.Context, owner int64) ([]models.Task, error) {
	return s.store.ListTasks(ctx, owner)
}

func (s *Service) ListByStatus(ctx context.Context, owner int64, status models.Status) ([]models.Task, error) {
	return s.store.ListTasksByStatus(ctx, owner, status)
}

func (s *Service) ListByPriority(ctx context.Context, owner int64, priority models.Priority) ([]models.Task, error) {
	return s.store.ListTasksByPriority(ctx, owner, priority)
}

// Get returns the owner's task or store.ErrNotFound.
func (s *Service) Get(ctx context.Context, owner, id int64) (*models.Task, error) {
	return s.store.GetTask(ctx, owner, id)
}

// Update replaces title, description and dueDate wholesale from the
// request, while status and priority change only when present. The
// asymmetry matches the wire contract: omitting status means "keep",
// omitting description means "clear".
func (s *Service) Update(ctx context.Context, owner, id int64, req models.TaskRequest) (*models.Task, error) {
	task, err := s.store.GetTask(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	title, err := validTitle(req.Title)
	if err != nil {
		return nil, err
	}

	task.Title = title
	task.Description = req.Description
	task.DueDate = req.DueDate
	if req.Status != nil {
		task.Status = *req.Status
	}
	if req.Priority != nil {
		task.Priority = *req.Priority
	}

	if err := s.store.UpdateTask(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// Delete removes the owner's task. A second delete of the same id
// returns store.ErrNotFound.
func (s *Service) Delete(ctx context.Context, owner, id int64) error {
	return s.store.DeleteTask(ctx, owner, id)
}

func validTitle(title string) (string, error) {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return "", fmt.Errorf("%w: title is required", ErrValidation)
	}
	return trimmed, nil
}
