package service

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"devdesk/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const defaultSessionTTL = 24 * time.Hour

var (
	ErrInvalidToken    = errors.New("invalid token")
	ErrSessionNotFound = errors.New("session not found")
)

// SessionStore keeps sessions in memory and hands out HS256-signed cookie tokens
// that carry only the session id.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]models.Session

	key []byte
	ttl time.Duration
	now func() time.Time
}

func NewSessionStore(key []byte, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &SessionStore{
		sessions: make(map[string]models.Session),
		key:      key,
		ttl:      ttl,
		now:      time.Now,
	}
}

var _ Sessions = (*SessionStore)(nil)

// Create opens a session for username and returns it with its signed token.
func (s *SessionStore) Create(username string) (models.Session, string, error) {
	if strings.TrimSpace(username) == "" {
		return models.Session{}, "", ErrInvalidInput
	}

	now := s.now().UTC()
	sess := models.Session{
		ID:        uuid.NewString(),
		Username:  username,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ID:        sess.ID,
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(sess.CreatedAt),
		ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
	}).SignedString(s.key)
	if err != nil {
		return models.Session{}, "", fmt.Errorf("sign session token: %w", err)
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	return sess, token, nil
}

// Resolve verifies token and returns the live session it points to.
func (s *SessionStore) Resolve(token string) (models.Session, error) {
	claims, err := s.parse(token, jwt.WithTimeFunc(s.now))
	if err != nil {
		return models.Session{}, err
	}

	s.mu.RLock()
	sess, ok := s.sessions[claims.ID]
	s.mu.RUnlock()
	if !ok {
		return models.Session{}, ErrSessionNotFound
	}
	if sess.Expired(s.now()) {
		s.mu.Lock()
		delete(s.sessions, sess.ID)
		s.mu.Unlock()
		return models.Session{}, ErrSessionNotFound
	}
	return sess, nil
}

// Destroy drops the session behind token. Unknown or malformed tokens are ignored.
func (s *SessionStore) Destroy(token string) {
	claims, err := s.parse(token, jwt.WithoutClaimsValidation())
	if err != nil {
		return
	}
	s.mu.Lock()
	delete(s.sessions, claims.ID)
	s.mu.Unlock()
}

// PruneExpired removes every session expired at now and returns how many were dropped.
func (s *SessionStore) PruneExpired(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, sess := range s.sessions {
		if sess.Expired(now) {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

func (s *SessionStore) parse(token string, opts ...jwt.ParserOption) (*jwt.RegisteredClaims, error) {
	opts = append(opts, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.key, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
