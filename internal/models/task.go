package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Status is the task workflow state.
type Status string

const (
	StatusTodo       Status = "TODO"
	StatusInProgress Status = "IN_PROGRESS"
	StatusDone       Status = "DONE"
)

// Priority is the task importance level.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

// ParseStatus normalizes user input to a Status. Input is matched
// case-insensitively; unknown values are rejected.
func ParseStatus(s string) (Status, error) {
	switch v := Status(strings.ToUpper(strings.TrimSpace(s))); v {
	case StatusTodo, StatusInProgress, StatusDone:
		return v, nil
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// ParsePriority normalizes user input to a Priority.
func ParsePriority(s string) (Priority, error) {
	switch v := Priority(strings.ToUpper(strings.TrimSpace(s))); v {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return v, nil
	}
	return "", fmt.Errorf("unknown priority %q", s)
}

// UnmarshalJSON validates status values at decode time, so a bad value
// in a request body fails the decode instead of slipping into the store.
func (s *Status) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	parsed, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (p *Priority) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	parsed, err := ParsePriority(raw)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Task represents a row in the PostgreSQL tasks table. The owner is
// implicit in the authenticated route and never serialized outward.
type Task struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      Status     `json:"status"`
	Priority    Priority   `json:"priority"`
	DueDate     *time.Time `json:"dueDate"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	UserID      int64      `json:"-"`
}

// TaskRequest is the JSON body for POST and PUT /api/tasks. Status and
// priority are pointers: absent means "default on create, keep on
// update", while title, description and dueDate are always taken
// wholesale from the request.
type TaskRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      *Status    `json:"status"`
	Priority    *Priority  `json:"priority"`
	DueDate     *time.Time `json:"dueDate"`
}
