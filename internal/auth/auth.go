// Package auth runs the doctor login, signup and password reset flows
// against the Reserva backend and opens portal sessions on success.
package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/wolfman30/reserva-portal/internal/reserva"
	"github.com/wolfman30/reserva-portal/internal/session"
	"github.com/wolfman30/reserva-portal/pkg/logging"
)

const (
	MsgLoginFieldsRequired  = "Please fill email & password"
	MsgSignupFieldsRequired = "Please fill all fields"
	MsgEmailRequired        = "Please enter your email"
	MsgResetLinkSent        = "Reset link sent to your email!"
	MsgAccountCreated       = "Account created! Your booking link is ready."
	MsgLoginFailed          = "Login failed"
	MsgSignupFailed         = "Signup failed"
	MsgSomethingWentWrong   = "Something went wrong"
)

// ErrInvalidInput marks errors caused by missing form fields.
var ErrInvalidInput = errors.New("auth: invalid input")

// Error carries the message to show the doctor. Err is ErrInvalidInput for
// form problems, otherwise the backend or session failure.
type Error struct {
	Message string
	Err     error
}

func (e *Error) Error() string { return "auth: " + e.Message }

func (e *Error) Unwrap() error { return e.Err }

func invalid(msg string) *Error {
	return &Error{Message: msg, Err: ErrInvalidInput}
}

// Backend is the subset of the Reserva client used for authentication.
type Backend interface {
	Login(ctx context.Context, creds reserva.Credentials) (*reserva.AuthResult, error)
	Signup(ctx context.Context, req reserva.SignupRequest) (*reserva.AuthResult, error)
	ForgotPassword(ctx context.Context, email string) (string, error)
}

// Service coordinates the backend and the session manager.
type Service struct {
	backend  Backend
	sessions *session.Manager
	logger   *logging.Logger
}

func NewService(backend Backend, sessions *session.Manager, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{backend: backend, sessions: sessions, logger: logger.Component("auth")}
}

// Login checks the form, signs in and begins a session.
func (s *Service) Login(ctx context.Context, creds reserva.Credentials) (*session.Session, error) {
	creds.Email = strings.TrimSpace(creds.Email)
	if creds.Email == "" || creds.Password == "" {
		return nil, invalid(MsgLoginFieldsRequired)
	}
	res, err := s.backend.Login(ctx, creds)
	if err != nil {
		s.logger.Warn("login failed", "error", err)
		return nil, &Error{Message: reserva.MessageOr(err, MsgLoginFailed), Err: err}
	}
	return s.begin(ctx, res, MsgLoginFailed)
}

// Signup checks that every field is filled, creates the account and begins a session.
func (s *Service) Signup(ctx context.Context, req reserva.SignupRequest) (*session.Session, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.ClinicName = strings.TrimSpace(req.ClinicName)
	req.Specialization = strings.TrimSpace(req.Specialization)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" || req.ClinicName == "" || req.Specialization == "" || req.Email == "" || req.Password == "" {
		return nil, invalid(MsgSignupFieldsRequired)
	}
	res, err := s.backend.Signup(ctx, req)
	if err != nil {
		s.logger.Warn("signup failed", "error", err)
		return nil, &Error{Message: reserva.MessageOr(err, MsgSignupFailed), Err: err}
	}
	return s.begin(ctx, res, MsgSignupFailed)
}

func (s *Service) begin(ctx context.Context, res *reserva.AuthResult, fallback string) (*session.Session, error) {
	if res == nil {
		return nil, &Error{Message: fallback, Err: errors.New("auth: empty backend response")}
	}
	sess, err := s.sessions.Begin(ctx, res.Token, res.User)
	if err != nil {
		s.logger.Error("failed to begin session", "error", err)
		return nil, &Error{Message: fallback, Err: err}
	}
	s.logger.Info("session started", "session_id", sess.ID)
	return sess, nil
}

// ForgotPassword requests a reset link and returns the message to display.
func (s *Service) ForgotPassword(ctx context.Context, email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", invalid(MsgEmailRequired)
	}
	msg, err := s.backend.ForgotPassword(ctx, email)
	if err != nil {
		s.logger.Warn("forgot password failed", "error", err)
		return "", &Error{Message: reserva.MessageOr(err, MsgSomethingWentWrong), Err: err}
	}
	if strings.TrimSpace(msg) == "" {
		msg = MsgResetLinkSent
	}
	return msg, nil
}

// Logout ends the session.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	return s.sessions.End(ctx, sessionID)
}
