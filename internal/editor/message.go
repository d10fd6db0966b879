// Package editor debounces free-text message edits on the task detail view.
package editor

import (
	"context"
	"sync"
	"time"

	"mlnotify/internal/lock"
	"mlnotify/internal/ports"

	"github.com/rs/zerolog/log"
)

// DefaultDelay is the quiet period after the last edit before a save fires.
const DefaultDelay = 500 * time.Millisecond

type pendingEdit struct {
	timer *time.Timer
	text  string
}

// MessageEditor schedules one delayed save per task; each new edit cancels
// and reschedules it. The eventual flush goes through the same per-task lock
// as push updates, so a user edit cannot race a concurrent status change.
type MessageEditor struct {
	store ports.TaskStore
	locks *lock.Keyed
	delay time.Duration

	mu      sync.Mutex
	pending map[string]*pendingEdit
}

func NewMessageEditor(store ports.TaskStore, locks *lock.Keyed, delay time.Duration) *MessageEditor {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &MessageEditor{
		store:   store,
		locks:   locks,
		delay:   delay,
		pending: make(map[string]*pendingEdit),
	}
}

// Edit records the latest text for a task and restarts its quiet-period
// timer.
func (e *MessageEditor) Edit(processID, text string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if p, ok := e.pending[processID]; ok {
		p.timer.Stop()
		p.text = text
		p.timer.Reset(e.delay)
		return
	}

	p := &pendingEdit{text: text}
	p.timer = time.AfterFunc(e.delay, func() {
		if err := e.Flush(context.Background(), processID); err != nil {
			log.Error().Err(err).Msgf("debounced save failed for task %s", processID)
		}
	})
	e.pending[processID] = p
}

// Cancel drops any pending save for a task. Called when the task is deleted.
func (e *MessageEditor) Cancel(processID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if p, ok := e.pending[processID]; ok {
		p.timer.Stop()
		delete(e.pending, processID)
	}
}

// Flush persists the pending edit for a task immediately. A save that would
// write an unchanged value is skipped. No-op when nothing is pending.
func (e *MessageEditor) Flush(ctx context.Context, processID string) error {
	e.mu.Lock()
	p, ok := e.pending[processID]
	if ok {
		p.timer.Stop()
		delete(e.pending, processID)
	}
	e.mu.Unlock()

	if !ok {
		return nil
	}

	release, err := e.locks.Acquire(ctx, processID)
	if err != nil {
		return err
	}
	defer release()

	task, err := e.store.TaskByID(ctx, processID)
	if err != nil {
		return err
	}
	if task == nil {
		log.Ctx(ctx).Info().Msgf("task %s gone before debounced save, skipping", processID)
		return nil
	}
	if task.Message != nil && *task.Message == p.text {
		log.Ctx(ctx).Debug().Msgf("message unchanged for task %s, skipping save", processID)
		return nil
	}

	return e.store.SetMessage(ctx, processID, p.text)
}
