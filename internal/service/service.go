package service

import (
	"context"
	"time"

	"devdesk/internal/llm"
	"devdesk/internal/logger"
	"devdesk/internal/models"
	"devdesk/internal/prompts"
	"devdesk/internal/repository"
)

type Authorization interface {
	SignUp(username, password string) (int, error)
	Authenticate(username, password string) (*models.User, error)
}

// Sessions is the server-side login state behind the session cookie.
type Sessions interface {
	Create(username string) (models.Session, string, error)
	Resolve(token string) (models.Session, error)
	Destroy(token string)
}

// Relay turns a category and subject into generated text.
type Relay interface {
	Generate(ctx context.Context, systemType, contentType string) (string, error)
	SetTestMode(on bool)
}

// Tasks runs relay calls in the background.
type Tasks interface {
	Submit(systemType, contentType string) models.GenerationTask
	Get(id string) (models.GenerationTask, error)
	Cancel(id string) error
}

// Janitor evicts stale sessions and finished tasks.
// Stop via context cancellation in main() for graceful shutdown.
type Janitor interface {
	Run(ctx context.Context, tick time.Duration)
	Shutdown()
}

type Exporter interface {
	Export(filename, content string) (string, error)
}

// Service aggregates the sub-services of the web application.
type Service struct {
	Authorization
	Sessions
	Relay
	Tasks
	Janitor
	Exporter
}

// Options carries the collaborators and settings NewService cannot derive from repos.
type Options struct {
	Completer     llm.Completer
	Prompts       *prompts.Table
	SessionKey    []byte
	SessionTTL    time.Duration
	ExportDir     string
	LLMTimeout    time.Duration
	TaskRetention time.Duration
	TestMode      bool
	Log           *logger.Logger
}

// NewService wires the repository layer and options into concrete services.
func NewService(repos *repository.Repository, opts Options) *Service {
	relay := NewRelayService(opts.Completer, opts.Prompts, opts.LLMTimeout, opts.Log)
	relay.SetTestMode(opts.TestMode)

	sessions := NewSessionStore(opts.SessionKey, opts.SessionTTL)
	tasks := NewTaskManager(relay, opts.Log)

	return &Service{
		Authorization: NewAuthService(repos.Auth),
		Sessions:      sessions,
		Relay:         relay,
		Tasks:         tasks,
		Janitor:       NewJanitorService(tasks, sessions, opts.TaskRetention),
		Exporter:      NewExportService(opts.ExportDir),
	}
}
