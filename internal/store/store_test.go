package store

import (
	"context"
	"testing"

	"mlnotify/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})
	return s
}

func strPtr(v string) *string { return &v }
func msPtr(v int64) *int64    { return &v }

func TestTaskStore_CreateAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	in := domain.Task{
		ProcessID:    "p1",
		Name:         "train-model",
		Status:       domain.StatusPending,
		RegisteredAt: 1700000000000,
		Message:      strPtr("first run"),
	}

	if err := s.CreateTask(ctx, in); err != nil {
		t.Fatalf("CreateTask() err = %v, want nil", err)
	}

	got, err := s.TaskByID(ctx, "p1")
	if err != nil {
		t.Fatalf("TaskByID() err = %v, want nil", err)
	}
	if got == nil {
		t.Fatal("TaskByID() = nil, want task")
	}
	if got.Name != in.Name || got.Status != domain.StatusPending || got.RegisteredAt != in.RegisteredAt {
		t.Fatalf("TaskByID() returned unexpected task: %+v", got)
	}
	if got.Message == nil || *got.Message != "first run" {
		t.Fatalf("Message = %v, want \"first run\"", got.Message)
	}
	if got.StartTime != nil || got.FinishTime != nil {
		t.Fatalf("times = %v/%v, want nil/nil", got.StartTime, got.FinishTime)
	}
}

func TestTaskStore_CreateDuplicateFails(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	task := domain.Task{ProcessID: "p1", Name: "a", Status: domain.StatusPending, RegisteredAt: 1}
	if err := s.CreateTask(ctx, task); err != nil {
		t.Fatalf("CreateTask() err = %v", err)
	}
	if err := s.CreateTask(ctx, task); err == nil {
		t.Fatal("CreateTask() on duplicate id err = nil, want non-nil")
	}
}

func TestTaskStore_Get_NotFound(t *testing.T) {
	s := newTestStore(t)

	got, err := s.TaskByID(context.Background(), "missing")
	if err != nil {
		t.Fatalf("TaskByID() err = %v, want nil", err)
	}
	if got != nil {
		t.Fatalf("TaskByID() = %+v, want nil", got)
	}
}

func TestTaskStore_Update(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	task := domain.Task{ProcessID: "p1", Name: "a", Status: domain.StatusPending, RegisteredAt: 1}
	if err := s.CreateTask(ctx, task); err != nil {
		t.Fatalf("CreateTask() err = %v", err)
	}

	task.Status = domain.StatusRunning
	task.StartTime = msPtr(1000)
	if err := s.UpdateTask(ctx, task); err != nil {
		t.Fatalf("UpdateTask() err = %v", err)
	}

	got, err := s.TaskByID(ctx, "p1")
	if err != nil {
		t.Fatalf("TaskByID() err = %v", err)
	}
	if got.Status != domain.StatusRunning {
		t.Fatalf("Status = %s, want %s", got.Status, domain.StatusRunning)
	}
	if got.StartTime == nil || *got.StartTime != 1000 {
		t.Fatalf("StartTime = %v, want 1000", got.StartTime)
	}
}

func TestTaskStore_Update_NotFound(t *testing.T) {
	s := newTestStore(t)

	err := s.UpdateTask(context.Background(), domain.Task{ProcessID: "ghost", Status: domain.StatusRunning})
	if err == nil {
		t.Fatal("UpdateTask() err = nil, want non-nil")
	}
}

func TestTaskStore_SetMessage_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	task := domain.Task{ProcessID: "p1", Name: "a", Status: domain.StatusPending, RegisteredAt: 1, Message: strPtr("x")}
	if err := s.CreateTask(ctx, task); err != nil {
		t.Fatalf("CreateTask() err = %v", err)
	}

	if err := s.SetMessage(ctx, "p1", "y"); err != nil {
		t.Fatalf("SetMessage() err = %v", err)
	}

	got, err := s.TaskByID(ctx, "p1")
	if err != nil {
		t.Fatalf("TaskByID() err = %v", err)
	}
	if got.Message == nil || *got.Message != "y" {
		t.Fatalf("Message = %v, want \"y\"", got.Message)
	}
}

func TestTaskStore_Delete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	task := domain.Task{ProcessID: "p1", Name: "a", Status: domain.StatusPending, RegisteredAt: 1}
	if err := s.CreateTask(ctx, task); err != nil {
		t.Fatalf("CreateTask() err = %v", err)
	}
	if err := s.DeleteTask(ctx, "p1"); err != nil {
		t.Fatalf("DeleteTask() err = %v", err)
	}

	got, err := s.TaskByID(ctx, "p1")
	if err != nil {
		t.Fatalf("TaskByID() err = %v", err)
	}
	if got != nil {
		t.Fatalf("TaskByID() after delete = %+v, want nil", got)
	}

	if err := s.DeleteTask(ctx, "p1"); err == nil {
		t.Fatal("DeleteTask() twice err = nil, want non-nil")
	}
}

func TestTaskStore_TasksByName(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i, id := range []string{"p1", "p2", "p3"} {
		name := "train"
		if id == "p3" {
			name = "eval"
		}
		task := domain.Task{ProcessID: id, Name: name, Status: domain.StatusPending, RegisteredAt: int64(i)}
		if err := s.CreateTask(ctx, task); err != nil {
			t.Fatalf("CreateTask(%s) err = %v", id, err)
		}
	}

	got, err := s.TasksByName(ctx, "train")
	if err != nil {
		t.Fatalf("TasksByName() err = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("TasksByName() len = %d, want 2", len(got))
	}
}

func TestSettings_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, ok, err := s.Setting(ctx, "device_id")
	if err != nil {
		t.Fatalf("Setting() err = %v", err)
	}
	if ok {
		t.Fatal("Setting() ok = true on empty store, want false")
	}

	if err := s.SetSetting(ctx, "device_id", "d-1"); err != nil {
		t.Fatalf("SetSetting() err = %v", err)
	}
	if err := s.SetSetting(ctx, "device_id", "d-2"); err != nil {
		t.Fatalf("SetSetting() overwrite err = %v", err)
	}

	got, ok, err := s.Setting(ctx, "device_id")
	if err != nil {
		t.Fatalf("Setting() err = %v", err)
	}
	if !ok || got != "d-2" {
		t.Fatalf("Setting() = %q, %v, want \"d-2\", true", got, ok)
	}
}
