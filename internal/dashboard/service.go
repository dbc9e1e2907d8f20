package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wolfman30/reserva-portal/internal/reserva"
	"github.com/wolfman30/reserva-portal/internal/session"
	"github.com/wolfman30/reserva-portal/pkg/logging"
)

const (
	MsgSettingsSaved = "Settings saved successfully!"
	MsgSaveFailed    = "Save failed"
)

var (
	// ErrUnauthenticated means there is no usable session or the backend refused its token.
	ErrUnauthenticated = errors.New("dashboard: not signed in")
	// ErrProfileIncomplete means the doctor must finish onboarding first.
	ErrProfileIncomplete = errors.New("dashboard: profile incomplete")
)

// SaveError is a backend failure while saving settings.
type SaveError struct {
	Message string
	Err     error
}

func (e *SaveError) Error() string { return "dashboard: " + e.Message }

func (e *SaveError) Unwrap() error { return e.Err }

// Backend is the subset of the Reserva client the dashboard needs.
type Backend interface {
	Me(ctx context.Context, token string) (*reserva.User, error)
	UpdateProfile(ctx context.Context, token string, payload any) (*reserva.User, error)
}

type Service struct {
	backend  Backend
	sessions *session.Manager
	origin   string
	now      func() time.Time
	logger   *logging.Logger
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService builds a dashboard service. origin is the public site URL the
// booking link is built on.
func NewService(backend Backend, sessions *session.Manager, origin string, logger *logging.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	s := &Service{
		backend:  backend,
		sessions: sessions,
		origin:   origin,
		now:      time.Now,
		logger:   logger.Component("dashboard"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load fetches the doctor fresh, caches it on the session and builds the view.
func (s *Service) Load(ctx context.Context, sessionID string) (*View, error) {
	sess, err := s.sessions.Resolve(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}
	user, err := s.backend.Me(ctx, sess.Token)
	if err != nil {
		s.logger.Warn("loading doctor failed", "session_id", sess.ID, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}
	if _, err := s.sessions.UpdateUser(ctx, sess.ID, user); err != nil {
		return nil, fmt.Errorf("dashboard: refresh session: %w", err)
	}
	if !user.ProfileCompleted {
		return nil, ErrProfileIncomplete
	}
	return s.view(user), nil
}

// Save validates and stores the settings, returning the refreshed view.
func (s *Service) Save(ctx context.Context, sessionID string, settings Settings) (*View, error) {
	sess, err := s.sessions.Resolve(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}
	if err := Validate(settings); err != nil {
		return nil, err
	}
	user, err := s.backend.UpdateProfile(ctx, sess.Token, PayloadFrom(settings))
	if err != nil {
		s.logger.Warn("saving settings failed", "session_id", sess.ID, "error", err)
		return nil, &SaveError{Message: reserva.MessageOr(err, MsgSaveFailed), Err: err}
	}
	if _, err := s.sessions.UpdateUser(ctx, sess.ID, user); err != nil {
		return nil, fmt.Errorf("dashboard: refresh session: %w", err)
	}
	s.logger.Info("settings saved", "session_id", sess.ID, "slug", user.Slug)
	return s.view(user), nil
}

func (s *Service) view(user *reserva.User) *View {
	return &View{
		User:         user,
		Settings:     FromUser(user),
		Subscription: SubscriptionFor(user, s.now()),
		BookingURL:   BookingURL(s.origin, user.Slug),
	}
}
