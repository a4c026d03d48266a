package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"devdesk/internal/logger"
	"devdesk/internal/models"

	"github.com/google/uuid"
)

var (
	ErrTaskNotFound = errors.New("task not found")
	ErrTaskFinished = errors.New("task already finished")
)

// generator is the part of Relay a task needs.
type generator interface {
	Generate(ctx context.Context, systemType, contentType string) (string, error)
}

type taskEntry struct {
	task   models.GenerationTask
	cancel context.CancelFunc
}

// TaskManager runs generation calls on background goroutines and keeps their outcome
// until the janitor evicts them.
type TaskManager struct {
	mu    sync.RWMutex
	tasks map[string]*taskEntry

	gen  generator
	log  *logger.Logger
	now  func() time.Time
	root context.Context
	stop context.CancelFunc
	wg   sync.WaitGroup
}

func NewTaskManager(gen generator, log *logger.Logger) *TaskManager {
	root, stop := context.WithCancel(context.Background())
	return &TaskManager{
		tasks: make(map[string]*taskEntry),
		gen:   gen,
		log:   log,
		now:   time.Now,
		root:  root,
		stop:  stop,
	}
}

var _ Tasks = (*TaskManager)(nil)

// Submit registers a pending task and starts it.
func (m *TaskManager) Submit(systemType, contentType string) models.GenerationTask {
	ctx, cancel := context.WithCancel(m.root)
	e := &taskEntry{
		task: models.GenerationTask{
			ID:          uuid.NewString(),
			SystemType:  systemType,
			ContentType: contentType,
			Status:      models.TaskPending,
			CreatedAt:   m.now().UTC(),
		},
		cancel: cancel,
	}

	m.mu.Lock()
	m.tasks[e.task.ID] = e
	snapshot := e.task
	m.mu.Unlock()

	m.wg.Add(1)
	go m.run(ctx, e)

	return snapshot
}

func (m *TaskManager) run(ctx context.Context, e *taskEntry) {
	defer m.wg.Done()
	defer e.cancel()

	m.mu.Lock()
	if e.task.Status != models.TaskPending {
		m.mu.Unlock()
		return
	}
	e.task.Status = models.TaskRunning
	st, ct := e.task.SystemType, e.task.ContentType
	m.mu.Unlock()

	text, err := m.gen.Generate(ctx, st, ct)

	m.mu.Lock()
	defer m.mu.Unlock()
	if e.task.Status.Finished() {
		// canceled while running
		return
	}
	now := m.now().UTC()
	e.task.FinishedAt = &now
	if err != nil {
		e.task.Status = models.TaskFailed
		e.task.Error = FailureMessage
		if m.log != nil {
			m.log.Warnw("task_failed", "task_id", e.task.ID, "error", err)
		}
		return
	}
	e.task.Status = models.TaskSucceeded
	e.task.Result = text
}

// Get returns a snapshot of task id.
func (m *TaskManager) Get(id string) (models.GenerationTask, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.tasks[id]
	if !ok {
		return models.GenerationTask{}, ErrTaskNotFound
	}
	return e.task, nil
}

// Cancel stops an active task. Finished tasks keep their outcome.
func (m *TaskManager) Cancel(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.tasks[id]
	if !ok {
		return ErrTaskNotFound
	}
	if e.task.Status.Finished() {
		return ErrTaskFinished
	}
	m.markCanceled(e)
	return nil
}

// Evict drops finished tasks that ended before now minus retention.
func (m *TaskManager) Evict(now time.Time, retention time.Duration) int {
	cutoff := now.Add(-retention)

	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, e := range m.tasks {
		if e.task.FinishedAt != nil && e.task.FinishedAt.Before(cutoff) {
			delete(m.tasks, id)
			n++
		}
	}
	return n
}

// Shutdown cancels every active task and waits for their goroutines.
func (m *TaskManager) Shutdown() {
	m.mu.Lock()
	for _, e := range m.tasks {
		if !e.task.Status.Finished() {
			m.markCanceled(e)
		}
	}
	m.mu.Unlock()

	m.stop()
	m.wg.Wait()
}

// markCanceled requires m.mu held.
func (m *TaskManager) markCanceled(e *taskEntry) {
	now := m.now().UTC()
	e.task.Status = models.TaskCanceled
	e.task.FinishedAt = &now
	e.cancel()
}
