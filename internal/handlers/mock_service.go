package handlers

import (
	"context"
	"net/http"
	"sync"

	"devdesk/internal/models"
	"devdesk/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID  int
	signUpErr error
	authUser  *models.User
	authErr   error

	lastSignUpUsername string
	lastSignUpPassword string
	lastAuthUsername   string
	lastAuthPassword   string
}

func (m *mockAuth) SignUp(username, password string) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) Authenticate(username, password string) (*models.User, error) {
	m.lastAuthUsername = username
	m.lastAuthPassword = password
	return m.authUser, m.authErr
}

type mockSessions struct {
	session   models.Session
	token     string
	createErr error
	resolve   map[string]models.Session

	destroyed []string
}

func (m *mockSessions) Create(username string) (models.Session, string, error) {
	s := m.session
	s.Username = username
	return s, m.token, m.createErr
}
func (m *mockSessions) Resolve(token string) (models.Session, error) {
	s, ok := m.resolve[token]
	if !ok {
		return models.Session{}, service.ErrSessionNotFound
	}
	return s, nil
}
func (m *mockSessions) Destroy(token string) {
	m.destroyed = append(m.destroyed, token)
}

type mockRelay struct {
	text string
	err  error

	calls           int
	lastSystemType  string
	lastContentType string
}

func (m *mockRelay) Generate(ctx context.Context, systemType, contentType string) (string, error) {
	m.calls++
	m.lastSystemType = systemType
	m.lastContentType = contentType
	return m.text, m.err
}
func (m *mockRelay) SetTestMode(bool) {}

// mockTasks is safe for use from the websocket handler goroutine.
type mockTasks struct {
	mu        sync.Mutex
	submitted models.GenerationTask
	tasks     map[string]models.GenerationTask
	cancelErr error
	// snapshots, when set, are returned in order by Get for their id; the last one repeats
	snapshots map[string][]models.GenerationTask

	canceled []string
}

func (m *mockTasks) Submit(systemType, contentType string) models.GenerationTask {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := m.submitted
	t.SystemType, t.ContentType = systemType, contentType
	return t
}
func (m *mockTasks) Get(id string) (models.GenerationTask, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if seq := m.snapshots[id]; len(seq) > 0 {
		t := seq[0]
		if len(seq) > 1 {
			m.snapshots[id] = seq[1:]
		}
		return t, nil
	}
	t, ok := m.tasks[id]
	if !ok {
		return models.GenerationTask{}, service.ErrTaskNotFound
	}
	return t, nil
}
func (m *mockTasks) Cancel(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.canceled = append(m.canceled, id)
	return m.cancelErr
}

type mockExporter struct {
	path string
	err  error

	lastFilename string
	lastContent  string
}

func (m *mockExporter) Export(filename, content string) (string, error) {
	m.lastFilename = filename
	m.lastContent = content
	return m.path, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func sessionCookieHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Cookie", sessionCookie+"="+token)
	}
	return h
}
