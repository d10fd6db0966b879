package ports

import (
	"context"

	"mlnotify/internal/domain"
)

// TaskStore is the durable record store for tasks, keyed by process id.
// TaskByID returns (nil, nil) when no record exists.
type TaskStore interface {
	CreateTask(ctx context.Context, t domain.Task) error
	TaskByID(ctx context.Context, processID string) (*domain.Task, error)
	UpdateTask(ctx context.Context, t domain.Task) error
	DeleteTask(ctx context.Context, processID string) error
	ListTasks(ctx context.Context) ([]domain.Task, error)
	TasksByName(ctx context.Context, name string) ([]domain.Task, error)
	SetMessage(ctx context.Context, processID string, message string) error
}

// Pusher submits a data-only message to the push fabric, addressed to a
// device token. Returns the provider's message id.
type Pusher interface {
	Send(ctx context.Context, m domain.PushMessage) (string, error)
}

// DeviceDirectory is the remote document store holding per-device settings
// and the set of registered push tokens.
type DeviceDirectory interface {
	SetDeviceFields(ctx context.Context, deviceID string, fields map[string]string) error
	RegisterToken(ctx context.Context, token string) error
}

// Prefs is the small local key-value preference store.
type Prefs interface {
	Setting(ctx context.Context, key string) (string, bool, error)
	SetSetting(ctx context.Context, key, value string) error
}
