package tasks

import (
	"context"
	"testing"
	"time"

	"mlnotify/internal/domain"
	"mlnotify/internal/editor"
	"mlnotify/internal/lock"
	"mlnotify/internal/store"
)

func newService(t *testing.T) (*Service, *store.Store) {
	t.Helper()

	s, err := store.New(":memory:")
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	svc := &Service{
		Store:  s,
		Editor: editor.NewMessageEditor(s, lock.NewKeyed(), 20*time.Millisecond),
	}
	return svc, s
}

func TestRegister_StartsPending(t *testing.T) {
	svc, s := newService(t)
	ctx := context.Background()

	msg := "kick off"
	created, err := svc.Register(ctx, "train-model", &msg)
	if err != nil {
		t.Fatalf("Register() err = %v", err)
	}
	if created.ProcessID == "" {
		t.Fatal("Register() assigned empty process id")
	}
	if created.Status != domain.StatusPending {
		t.Fatalf("Status = %s, want %s", created.Status, domain.StatusPending)
	}
	if created.RegisteredAt == 0 {
		t.Fatal("RegisteredAt not set")
	}
	if created.StartTime != nil || created.FinishTime != nil {
		t.Fatal("times set at creation")
	}

	got, err := s.TaskByID(ctx, created.ProcessID)
	if err != nil {
		t.Fatalf("TaskByID() err = %v", err)
	}
	if got == nil || got.Message == nil || *got.Message != "kick off" {
		t.Fatalf("stored task = %+v", got)
	}
}

func TestRegister_DistinctIDs(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	a, _ := svc.Register(ctx, "a", nil)
	b, _ := svc.Register(ctx, "b", nil)
	if a.ProcessID == b.ProcessID {
		t.Fatalf("two registrations share process id %s", a.ProcessID)
	}
}

func TestDelete_CancelsPendingMessageSave(t *testing.T) {
	svc, s := newService(t)
	ctx := context.Background()

	created, err := svc.Register(ctx, "train", nil)
	if err != nil {
		t.Fatalf("Register() err = %v", err)
	}

	svc.Editor.Edit(created.ProcessID, "draft note")
	if err := svc.Delete(ctx, created.ProcessID); err != nil {
		t.Fatalf("Delete() err = %v", err)
	}

	// The debounced save must not fire (and must not resurrect the row).
	time.Sleep(100 * time.Millisecond)
	got, err := s.TaskByID(ctx, created.ProcessID)
	if err != nil {
		t.Fatalf("TaskByID() err = %v", err)
	}
	if got != nil {
		t.Fatalf("task still present after delete: %+v", got)
	}
}
