package models

import "time"

// TaskStatus is the lifecycle state of a GenerationTask.
type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskRunning   TaskStatus = "running"
	TaskSucceeded TaskStatus = "succeeded"
	TaskFailed    TaskStatus = "failed"
	TaskCanceled  TaskStatus = "canceled"
)

// Finished reports whether the status is terminal.
func (s TaskStatus) Finished() bool {
	switch s {
	case TaskSucceeded, TaskFailed, TaskCanceled:
		return true
	default:
		return false
	}
}

// GenerationTask is one asynchronous prompt relay call.
type GenerationTask struct {
	ID          string     `json:"id"`
	SystemType  string     `json:"system_type"`
	ContentType string     `json:"content_type"`
	Status      TaskStatus `json:"status"`
	Result      string     `json:"result,omitempty"`
	Error       string     `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
}
