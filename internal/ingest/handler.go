// Package ingest is the device-side entry point for inbound push payloads.
package ingest

import (
	"context"
	"strconv"

	"mlnotify/internal/domain"
	"mlnotify/internal/lock"
	"mlnotify/internal/notify"
	"mlnotify/internal/ports"

	"github.com/rs/zerolog/log"
)

// Push payload field names.
const (
	FieldProcessID      = "processId"
	FieldStatus         = "status"
	FieldTaskName       = "taskName"
	FieldStartTime      = "taskActualStartTime"
	FieldCompletionTime = "taskActualCompletionTime"
)

// Handler reconciles one push payload with the local task store. Invocations
// for the same process id are serialized by the per-task lock; invocations
// for different ids proceed concurrently.
type Handler struct {
	Store   ports.TaskStore
	Locks   *lock.Keyed
	Emitter notify.Emitter
}

// Handle processes a single delivered payload. Every failure is logged and
// swallowed; a malformed or late push must never crash the consumer or block
// later deliveries.
func (h *Handler) Handle(ctx context.Context, data map[string]string) {
	defer func() {
		if r := recover(); r != nil {
			log.Ctx(ctx).Error().Msgf("panic while handling push payload: %v", r)
		}
	}()

	processID := data[FieldProcessID]
	rawStatus := data[FieldStatus]
	startTime := parseEpochMs(ctx, data, FieldStartTime)
	finishTime := parseEpochMs(ctx, data, FieldCompletionTime)

	if processID == "" || rawStatus == "" || (startTime == nil && finishTime == nil) {
		log.Ctx(ctx).Warn().Msgf("rejecting push payload with missing fields: %v", data)
		return
	}

	status, err := domain.ParseWireStatus(rawStatus)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Msgf("rejecting push payload for process %s", processID)
		return
	}

	update := domain.StatusUpdate{Status: status, StartTime: startTime, FinishTime: finishTime}

	task, ok := h.applyLocked(ctx, processID, update)
	if !ok {
		return
	}

	// Emission stays outside the critical section so slow notification
	// rendering never blocks updates for other pushes on the same task.
	n := notify.ForStatus(task.Name, task.ProcessID, task.Status)
	if err := h.Emitter.Notify(ctx, n); err != nil {
		log.Ctx(ctx).Error().Err(err).Msgf("failed to emit notification for process %s", processID)
	}
}

// applyLocked runs the read-merge-write sequence under the task's lock and
// returns the updated record.
func (h *Handler) applyLocked(ctx context.Context, processID string, update domain.StatusUpdate) (domain.Task, bool) {
	release, err := h.Locks.Acquire(ctx, processID)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Msgf("lock wait cancelled for process %s", processID)
		return domain.Task{}, false
	}
	defer release()

	task, err := h.Store.TaskByID(ctx, processID)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msgf("failed to load task %s", processID)
		return domain.Task{}, false
	}
	if task == nil {
		// The task may have been deleted locally between dispatch and
		// delivery. Normal race: skip, never create a record.
		log.Ctx(ctx).Info().Msgf("task %s not found, skipping push", processID)
		return domain.Task{}, false
	}

	if update.Status.Rank() < task.Status.Rank() {
		log.Ctx(ctx).Info().Msgf("skipping stale %s update for task %s (currently %s)",
			update.Status, processID, task.Status)
		return domain.Task{}, false
	}

	updated := task.Apply(update)
	if err := h.Store.UpdateTask(ctx, updated); err != nil {
		log.Ctx(ctx).Error().Err(err).Msgf("failed to persist task %s", processID)
		return domain.Task{}, false
	}

	return updated, true
}

func parseEpochMs(ctx context.Context, data map[string]string, field string) *int64 {
	raw, ok := data[field]
	if !ok || raw == "" {
		return nil
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		log.Ctx(ctx).Warn().Msgf("ignoring unparseable %s value %q", field, raw)
		return nil
	}
	return &ms
}
