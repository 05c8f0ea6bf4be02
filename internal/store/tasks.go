package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/teju/task-manager/backend/internal/models"
)

const taskColumns = `id, user_id, title, description, status, priority, due_date, created_at, updated_at`

// CreateTask inserts a task and fills in its assigned id and timestamps.
func (s *PostgresStore) CreateTask(ctx context.Context, t *models.Task) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO tasks (user_id, title, description, status, priority, due_date)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at`,
		t.UserID, t.Title, t.Description, t.Status, t.Priority, t.DueDate,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// ListTasks returns all tasks owned by userID in insertion order.
func (s *PostgresStore) ListTasks(ctx context.Context, userID int64) ([]models.Task, error) {
	return s.listTasks(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE user_id = $1 ORDER BY id`, userID)
}

// ListTasksByStatus returns the owner's tasks with the given status, in
// insertion order.
func (s *PostgresStore) ListTasksByStatus(ctx context.Context, userID int64, status models.Status) ([]models.Task, error) {
	return s.listTasks(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE user_id = $1 AND status = $2 ORDER BY id`, userID, status)
}

// ListTasksByPriority returns the owner's tasks with the given priority,
// in insertion order.
func (s *PostgresStore) ListTasksByPriority(ctx context.Context, userID int64, priority models.Priority) ([]models.Task, error) {
	return s.listTasks(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE user_id = $1 AND priority = $2 ORDER BY id`, userID, priority)
}

// GetTask looks up a single task by id, scoped to its owner.
func (s *PostgresStore) GetTask(ctx context.Context, userID, id int64) (*models.Task, error) {
	var t models.Task
	err := s.pool.QueryRow(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1 AND user_id = $2`, id, userID,
	).Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Status, &t.Priority,
		&t.DueDate, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return &t, nil
}

// UpdateTask writes all mutable fields back, scoped to the owner, and
// refreshes the updated_at timestamp.
func (s *PostgresStore) UpdateTask(ctx context.Context, t *models.Task) error {
	err := s.pool.QueryRow(ctx,
		`UPDATE tasks
		 SET title = $1, description = $2, status = $3, priority = $4, due_date = $5, updated_at = NOW()
		 WHERE id = $6 AND user_id = $7
		 RETURNING updated_at`,
		t.Title, t.Description, t.Status, t.Priority, t.DueDate, t.ID, t.UserID,
	).Scan(&t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return nil
}

// DeleteTask removes a task, scoped to the owner. Deleting a task that
// is already gone returns ErrNotFound.
func (s *PostgresStore) DeleteTask(ctx context.Context, userID, id int64) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM tasks WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) listTasks(ctx context.Context, query string, args ...any) ([]models.Task, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		var t models.Task
		if err := rows.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Status,
			&t.Priority, &t.DueDate, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}
