// Package session keeps a signed-in doctor's token and cached profile
// server-side, keyed by an opaque session ID.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/wolfman30/reserva-portal/internal/reserva"
	"github.com/wolfman30/reserva-portal/pkg/logging"
)

const DefaultTTL = 24 * time.Hour

var (
	// ErrNotFound is returned for unknown or expired sessions.
	ErrNotFound = errors.New("session: not found")
	// ErrEmptyToken is returned when beginning a session without a token.
	ErrEmptyToken = errors.New("session: token is required")
)

// Session is one signed-in doctor.
type Session struct {
	ID        string        `json:"id"`
	Token     string        `json:"token"`
	User      *reserva.User `json:"user,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
	ExpiresAt time.Time     `json:"expiresAt"`
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Store persists sessions. ttl is the time left until ExpiresAt.
type Store interface {
	Save(ctx context.Context, s *Session, ttl time.Duration) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
}

// Manager creates and resolves sessions.
type Manager struct {
	store  Store
	ttl    time.Duration
	now    func() time.Time
	logger *logging.Logger
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

func NewManager(store Store, ttl time.Duration, logger *logging.Logger, opts ...ManagerOption) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = logging.Default()
	}
	m := &Manager{store: store, ttl: ttl, now: time.Now, logger: logger}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Begin stores a new session for the token and user returned by login or signup.
func (m *Manager) Begin(ctx context.Context, token string, user *reserva.User) (*Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrEmptyToken
	}
	now := m.now().UTC()
	s := &Session{
		ID:        uuid.NewString(),
		Token:     token,
		User:      user,
		CreatedAt: now,
		ExpiresAt: m.expiry(token, now),
	}
	if !s.ExpiresAt.After(now) {
		return nil, fmt.Errorf("session: token already expired at %s", s.ExpiresAt.Format(time.RFC3339))
	}
	if err := m.store.Save(ctx, s, s.ExpiresAt.Sub(now)); err != nil {
		return nil, fmt.Errorf("session: save: %w", err)
	}
	return s, nil
}

// expiry reads the token's exp claim without verifying the signature. Tokens
// are only forwarded; the backend validates them.
func (m *Manager) expiry(token string, now time.Time) time.Time {
	fallback := now.Add(m.ttl)
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		m.logger.Debug("session token is not a readable JWT, using default ttl", "error", err)
		return fallback
	}
	if claims.ExpiresAt == nil {
		return fallback
	}
	return claims.ExpiresAt.Time.UTC()
}

// Resolve returns the live session for id.
func (m *Manager) Resolve(ctx context.Context, id string) (*Session, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrNotFound
	}
	s, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.Expired(m.now()) {
		if err := m.store.Delete(ctx, id); err != nil {
			m.logger.Warn("failed to drop expired session", "session_id", id, "error", err)
		}
		return nil, ErrNotFound
	}
	return s, nil
}

// UpdateUser replaces the cached profile, keeping the original expiry.
func (m *Manager) UpdateUser(ctx context.Context, id string, user *reserva.User) (*Session, error) {
	s, err := m.Resolve(ctx, id)
	if err != nil {
		return nil, err
	}
	s.User = user
	if err := m.store.Save(ctx, s, s.ExpiresAt.Sub(m.now())); err != nil {
		return nil, fmt.Errorf("session: save: %w", err)
	}
	return s, nil
}

// End deletes the session. Ending an unknown session is not an error.
func (m *Manager) End(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return nil
	}
	if err := m.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("session: delete: %w", err)
	}
	return nil
}
