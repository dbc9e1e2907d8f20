package onboarding

import (
	"context"
	"fmt"

	"github.com/wolfman30/reserva-portal/internal/reserva"
	"github.com/wolfman30/reserva-portal/internal/session"
	"github.com/wolfman30/reserva-portal/pkg/logging"
)

const (
	MsgProfileSaved        = "Profile completed successfully!"
	MsgProfileUpdateFailed = "Profile update failed"
)

// ProfileUpdater saves a profile payload for the token's doctor.
type ProfileUpdater interface {
	UpdateProfile(ctx context.Context, token string, payload any) (*reserva.User, error)
}

// SaveError is a backend failure with the message to show above the form.
type SaveError struct {
	Message string
	Err     error
}

func (e *SaveError) Error() string { return "onboarding: " + e.Message }

func (e *SaveError) Unwrap() error { return e.Err }

// Service submits onboarding profiles on behalf of a session.
type Service struct {
	backend  ProfileUpdater
	sessions *session.Manager
	logger   *logging.Logger
}

func NewService(backend ProfileUpdater, sessions *session.Manager, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{backend: backend, sessions: sessions, logger: logger.Component("onboarding")}
}

// Submit validates the whole form, saves it and refreshes the session's
// cached user. Validation failures come back as Errors and nothing is sent.
// An unknown session yields session.ErrNotFound.
func (s *Service) Submit(ctx context.Context, sessionID string, form Form) (*reserva.User, error) {
	sess, err := s.sessions.Resolve(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if errs := Validate(form); !errs.Empty() {
		return nil, errs
	}

	user, err := s.backend.UpdateProfile(ctx, sess.Token, PayloadFrom(form))
	if err != nil {
		s.logger.Warn("profile update failed", "session_id", sess.ID, "error", err)
		return nil, &SaveError{Message: reserva.MessageOr(err, MsgProfileUpdateFailed), Err: err}
	}
	if _, err := s.sessions.UpdateUser(ctx, sess.ID, user); err != nil {
		return nil, fmt.Errorf("onboarding: refresh session: %w", err)
	}
	s.logger.Info("onboarding profile saved", "session_id", sess.ID, "slug", user.Slug)
	return user, nil
}
