package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"devdesk/internal/models"
)

type genFunc func(ctx context.Context, systemType, contentType string) (string, error)

func (f genFunc) Generate(ctx context.Context, systemType, contentType string) (string, error) {
	return f(ctx, systemType, contentType)
}

// waitStatus polls until task id reaches a finished state or the deadline passes.
func waitStatus(t *testing.T, m *TaskManager, id string) models.GenerationTask {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		task, err := m.Get(id)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if task.Status.Finished() {
			return task
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("task %s did not finish in time", id)
	return models.GenerationTask{}
}

func TestTaskManager_Succeeds(t *testing.T) {
	m := NewTaskManager(genFunc(func(ctx context.Context, st, ct string) (string, error) {
		return "design for " + st, nil
	}), nil)
	defer m.Shutdown()

	task := m.Submit("crm", "architecture")
	if task.Status != models.TaskPending {
		t.Fatalf("expected pending on submit, got %s", task.Status)
	}

	done := waitStatus(t, m, task.ID)
	if done.Status != models.TaskSucceeded {
		t.Fatalf("expected succeeded, got %s", done.Status)
	}
	if done.Result != "design for crm" || done.FinishedAt == nil {
		t.Fatalf("unexpected task %+v", done)
	}
}

func TestTaskManager_FailureHidesCause(t *testing.T) {
	m := NewTaskManager(genFunc(func(ctx context.Context, st, ct string) (string, error) {
		return FailureMessage, errors.New("401 unauthorized")
	}), nil)
	defer m.Shutdown()

	done := waitStatus(t, m, m.Submit("crm", "code").ID)
	if done.Status != models.TaskFailed {
		t.Fatalf("expected failed, got %s", done.Status)
	}
	if done.Error != FailureMessage || done.Result != "" {
		t.Fatalf("cause must not leak, got %+v", done)
	}
}

func TestTaskManager_CancelRunning(t *testing.T) {
	started := make(chan struct{})
	m := NewTaskManager(genFunc(func(ctx context.Context, st, ct string) (string, error) {
		close(started)
		<-ctx.Done()
		return FailureMessage, ctx.Err()
	}), nil)
	defer m.Shutdown()

	task := m.Submit("crm", "test")
	<-started

	if err := m.Cancel(task.ID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	done := waitStatus(t, m, task.ID)
	if done.Status != models.TaskCanceled {
		t.Fatalf("expected canceled, got %s", done.Status)
	}

	if err := m.Cancel(task.ID); !errors.Is(err, ErrTaskFinished) {
		t.Fatalf("expected ErrTaskFinished, got %v", err)
	}

	// the generator goroutine result must not overwrite the canceled state
	time.Sleep(20 * time.Millisecond)
	if got, _ := m.Get(task.ID); got.Status != models.TaskCanceled {
		t.Fatalf("status changed after cancel: %s", got.Status)
	}
}

func TestTaskManager_UnknownID(t *testing.T) {
	m := NewTaskManager(genFunc(func(ctx context.Context, st, ct string) (string, error) { return "", nil }), nil)
	defer m.Shutdown()

	if _, err := m.Get("missing"); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
	if err := m.Cancel("missing"); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestTaskManager_ShutdownCancelsActive(t *testing.T) {
	started := make(chan struct{})
	m := NewTaskManager(genFunc(func(ctx context.Context, st, ct string) (string, error) {
		close(started)
		<-ctx.Done()
		return FailureMessage, ctx.Err()
	}), nil)

	task := m.Submit("crm", "database")
	<-started
	m.Shutdown()

	got, err := m.Get(task.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != models.TaskCanceled {
		t.Fatalf("expected canceled after shutdown, got %s", got.Status)
	}
}

func TestTaskManager_Evict(t *testing.T) {
	m := NewTaskManager(genFunc(func(ctx context.Context, st, ct string) (string, error) { return "ok", nil }), nil)
	defer m.Shutdown()

	base := time.Date(2025, time.April, 1, 9, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return base }

	old := waitStatus(t, m, m.Submit("a", "code").ID)

	m.now = func() time.Time { return base.Add(50 * time.Minute) }
	fresh := waitStatus(t, m, m.Submit("b", "code").ID)

	if n := m.Evict(base.Add(70*time.Minute), time.Hour); n != 1 {
		t.Fatalf("expected 1 eviction, got %d", n)
	}
	if _, err := m.Get(old.ID); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("old task should be gone, got %v", err)
	}
	if _, err := m.Get(fresh.ID); err != nil {
		t.Fatalf("fresh task should survive: %v", err)
	}
}

func TestJanitor_RunStopsOnCancel(t *testing.T) {
	m := NewTaskManager(genFunc(func(ctx context.Context, st, ct string) (string, error) { return "ok", nil }), nil)
	sessions := NewSessionStore(testSessionKey, time.Millisecond)
	if _, _, err := sessions.Create("alice"); err != nil {
		t.Fatalf("Create: %v", err)
	}

	j := NewJanitorService(m, sessions, time.Nanosecond)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		j.Run(ctx, 5*time.Millisecond)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for {
		sessions.mu.RLock()
		n := len(sessions.sessions)
		sessions.mu.RUnlock()
		if n == 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("janitor did not prune expired sessions")
		}
		time.Sleep(5 * time.Millisecond)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Run did not return after cancel")
	}
	j.Shutdown()
}
