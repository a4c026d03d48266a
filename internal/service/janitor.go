package service

import (
	"context"
	"time"
)

const defaultTaskRetention = time.Hour

// JanitorService periodically drops finished tasks and expired sessions.
type JanitorService struct {
	tasks     *TaskManager
	sessions  *SessionStore
	retention time.Duration
}

func NewJanitorService(tasks *TaskManager, sessions *SessionStore, retention time.Duration) *JanitorService {
	if retention <= 0 {
		retention = defaultTaskRetention
	}
	return &JanitorService{
		tasks:     tasks,
		sessions:  sessions,
		retention: retention,
	}
}

var _ Janitor = (*JanitorService)(nil)

// Run ticks at the given interval until ctx is canceled.
func (j *JanitorService) Run(ctx context.Context, tick time.Duration) {
	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			j.sweep(now)
		}
	}
}

func (j *JanitorService) sweep(now time.Time) {
	if j.tasks != nil {
		j.tasks.Evict(now, j.retention)
	}
	if j.sessions != nil {
		j.sessions.PruneExpired(now)
	}
}

// Shutdown cancels in-flight tasks.
func (j *JanitorService) Shutdown() {
	if j.tasks != nil {
		j.tasks.Shutdown()
	}
}
