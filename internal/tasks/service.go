// Package tasks holds the user-facing task lifecycle operations the UI layer
// calls into.
package tasks

import (
	"context"
	"time"

	"mlnotify/internal/domain"
	"mlnotify/internal/editor"
	"mlnotify/internal/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type Service struct {
	Store  ports.TaskStore
	Editor *editor.MessageEditor
}

// Register creates a new task record. Status always starts at PENDING; the
// process id and registration time are assigned here and never change.
func (s *Service) Register(ctx context.Context, name string, message *string) (domain.Task, error) {
	t := domain.Task{
		ProcessID:    uuid.NewString(),
		Name:         name,
		Status:       domain.StatusPending,
		RegisteredAt: time.Now().UnixMilli(),
		Message:      message,
	}

	if err := s.Store.CreateTask(ctx, t); err != nil {
		return domain.Task{}, err
	}

	log.Ctx(ctx).Info().Msgf("registered task %s (%s)", t.Name, t.ProcessID)
	return t, nil
}

// Delete removes a task and drops any pending debounced message save for it.
func (s *Service) Delete(ctx context.Context, processID string) error {
	if s.Editor != nil {
		s.Editor.Cancel(processID)
	}
	return s.Store.DeleteTask(ctx, processID)
}
