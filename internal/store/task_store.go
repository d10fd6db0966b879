package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"mlnotify/internal/domain"
)

// CreateTask inserts a new task record. ProcessID must already be assigned;
// inserting an existing id is an error (the id is immutable and unique).
func (s *Store) CreateTask(ctx context.Context, t domain.Task) error {
	if strings.TrimSpace(t.ProcessID) == "" {
		return fmt.Errorf("task process id must not be empty")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (process_id, name, status, registered_at, start_time, finish_time, message)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ProcessID, t.Name, t.Status, t.RegisteredAt, t.StartTime, t.FinishTime, t.Message,
	)
	if err != nil {
		return fmt.Errorf("creating task %s: %w", t.ProcessID, err)
	}
	return nil
}

// TaskByID retrieves a single task. Returns (nil, nil) when no record exists;
// a missing task is a normal condition for late-arriving pushes, not an error.
func (s *Store) TaskByID(ctx context.Context, processID string) (*domain.Task, error) {
	var t domain.Task
	err := s.db.GetContext(ctx, &t, "SELECT * FROM tasks WHERE process_id = ?", processID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting task %s: %w", processID, err)
	}
	return &t, nil
}

// UpdateTask replaces the mutable fields of an existing task.
func (s *Store) UpdateTask(ctx context.Context, t domain.Task) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE tasks SET
			name = ?, status = ?, start_time = ?, finish_time = ?, message = ?
		WHERE process_id = ?`,
		t.Name, t.Status, t.StartTime, t.FinishTime, t.Message, t.ProcessID,
	)
	if err != nil {
		return fmt.Errorf("updating task %s: %w", t.ProcessID, err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("task %s not found", t.ProcessID)
	}
	return nil
}

// DeleteTask removes a task record by id.
func (s *Store) DeleteTask(ctx context.Context, processID string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM tasks WHERE process_id = ?", processID)
	if err != nil {
		return fmt.Errorf("deleting task %s: %w", processID, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("task %s not found", processID)
	}
	return nil
}

// ListTasks returns all tasks, newest registration first.
func (s *Store) ListTasks(ctx context.Context) ([]domain.Task, error) {
	var tasks []domain.Task
	err := s.db.SelectContext(ctx, &tasks, "SELECT * FROM tasks ORDER BY registered_at DESC")
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	return tasks, nil
}

// TasksByName returns tasks with a matching display name.
func (s *Store) TasksByName(ctx context.Context, name string) ([]domain.Task, error) {
	var tasks []domain.Task
	err := s.db.SelectContext(ctx, &tasks,
		"SELECT * FROM tasks WHERE name = ? ORDER BY registered_at DESC", name)
	if err != nil {
		return nil, fmt.Errorf("listing tasks named %q: %w", name, err)
	}
	return tasks, nil
}

// SetMessage updates only the free-text message of a task.
func (s *Store) SetMessage(ctx context.Context, processID string, message string) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE tasks SET message = ? WHERE process_id = ?", message, processID)
	if err != nil {
		return fmt.Errorf("setting message on task %s: %w", processID, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("task %s not found", processID)
	}
	return nil
}
