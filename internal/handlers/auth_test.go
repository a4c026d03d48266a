package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"devdesk/internal/models"
	"devdesk/internal/service"
)

func postForm(path string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestAuthHandlers_RegisterAndLogin(t *testing.T) {
	now := time.Now()
	auth := &mockAuth{signUpID: 42, authUser: &models.User{ID: 42, Username: "u"}}
	sessions := &mockSessions{
		session: models.Session{ID: "s1", CreatedAt: now, ExpiresAt: now.Add(time.Hour)},
		token:   "tok123",
	}
	r := newTestRouter(&service.Service{Authorization: auth, Sessions: sessions})

	// register success → redirect to login
	w := httptest.NewRecorder()
	r.ServeHTTP(w, postForm("/register", url.Values{"username": {"u"}, "password": {"p"}}))
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/login" {
		t.Fatalf("register status=%d location=%q body=%s", w.Code, w.Header().Get("Location"), w.Body.String())
	}
	if auth.lastSignUpUsername != "u" || auth.lastSignUpPassword != "p" {
		t.Fatalf("credentials not forwarded: %+v", auth)
	}

	// login success → cookie + redirect to index
	w = httptest.NewRecorder()
	r.ServeHTTP(w, postForm("/login", url.Values{"username": {"u"}, "password": {"p"}}))
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/" {
		t.Fatalf("login status=%d location=%q", w.Code, w.Header().Get("Location"))
	}
	cookie := w.Header().Get("Set-Cookie")
	if !strings.Contains(cookie, sessionCookie+"=tok123") || !strings.Contains(cookie, "HttpOnly") {
		t.Fatalf("unexpected Set-Cookie %q", cookie)
	}
	if !strings.Contains(cookie, "Max-Age=3600") {
		t.Fatalf("cookie lifetime must follow the session, got %q", cookie)
	}

	// login missing password → 400
	w = httptest.NewRecorder()
	r.ServeHTTP(w, postForm("/login", url.Values{"username": {"u"}}))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing field, got %d", w.Code)
	}
}

func TestAuthHandlers_RegisterFailures(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{"duplicate", service.ErrDuplicateUser, http.StatusBadRequest, "user already exists"},
		{"blank", service.ErrInvalidInput, http.StatusBadRequest, service.ErrInvalidInput.Error()},
		{"long password", service.ErrPasswordTooLong, http.StatusBadRequest, service.ErrPasswordTooLong.Error()},
		{"storage", errors.New("disk full"), http.StatusInternalServerError, "registration failed"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newTestRouter(&service.Service{Authorization: &mockAuth{signUpErr: tc.err}})
			w := httptest.NewRecorder()
			r.ServeHTTP(w, postForm("/register", url.Values{"username": {"u"}, "password": {"p"}}))
			if w.Code != tc.wantCode || w.Body.String() != tc.wantBody {
				t.Fatalf("got %d %q, want %d %q", w.Code, w.Body.String(), tc.wantCode, tc.wantBody)
			}
		})
	}
}

func TestAuthHandlers_LoginInvalidCredentials(t *testing.T) {
	sessions := &mockSessions{}
	r := newTestRouter(&service.Service{
		Authorization: &mockAuth{authErr: service.ErrInvalidCredentials},
		Sessions:      sessions,
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, postForm("/login", url.Values{"username": {"u"}, "password": {"bad"}}))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if w.Body.String() != "invalid username or password" {
		t.Fatalf("unexpected body %q", w.Body.String())
	}
	if w.Header().Get("Set-Cookie") != "" {
		t.Fatalf("no cookie expected on failed login")
	}
}

func TestAuthHandlers_Logout(t *testing.T) {
	sessions := &mockSessions{}
	r := newTestRouter(&service.Service{Sessions: sessions})

	// with a cookie
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/logout", nil)
	req.Header = sessionCookieHeader("tok123")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/login" {
		t.Fatalf("logout status=%d location=%q", w.Code, w.Header().Get("Location"))
	}
	if len(sessions.destroyed) != 1 || sessions.destroyed[0] != "tok123" {
		t.Fatalf("expected session destroyed, got %v", sessions.destroyed)
	}
	if !strings.Contains(w.Header().Get("Set-Cookie"), "Max-Age=0") {
		t.Fatalf("expected cookie cleared, got %q", w.Header().Get("Set-Cookie"))
	}

	// anonymous logout still redirects
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/logout", nil))
	if w.Code != http.StatusFound {
		t.Fatalf("anonymous logout status=%d", w.Code)
	}
}

func TestAuthPages_Render(t *testing.T) {
	r := newTestRouter(&service.Service{})
	for _, path := range []string{"/login", "/register"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `method="post"`) {
			t.Fatalf("%s: status=%d body=%s", path, w.Code, w.Body.String())
		}
	}
}
