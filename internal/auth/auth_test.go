package auth

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/reserva-portal/internal/reserva"
	"github.com/wolfman30/reserva-portal/internal/session"
	"github.com/wolfman30/reserva-portal/pkg/logging"
)

type stubBackend struct {
	loginCalls  int
	signupCalls int
	lastCreds   reserva.Credentials
	lastSignup  reserva.SignupRequest
	result      *reserva.AuthResult
	err         error
	forgotMsg   string
}

func (s *stubBackend) Login(_ context.Context, creds reserva.Credentials) (*reserva.AuthResult, error) {
	s.loginCalls++
	s.lastCreds = creds
	return s.result, s.err
}

func (s *stubBackend) Signup(_ context.Context, req reserva.SignupRequest) (*reserva.AuthResult, error) {
	s.signupCalls++
	s.lastSignup = req
	return s.result, s.err
}

func (s *stubBackend) ForgotPassword(_ context.Context, _ string) (string, error) {
	return s.forgotMsg, s.err
}

func newService(b *stubBackend) (*Service, *session.Manager) {
	mgr := session.NewManager(session.NewMemoryStore(), 0, logging.Discard())
	return NewService(b, mgr, logging.Discard()), mgr
}

func messageOf(t *testing.T, err error) string {
	t.Helper()
	var authErr *Error
	require.True(t, errors.As(err, &authErr), "expected *auth.Error, got %v", err)
	return authErr.Message
}

func TestLoginRequiresFields(t *testing.T) {
	b := &stubBackend{}
	svc, _ := newService(b)

	for _, creds := range []reserva.Credentials{{}, {Email: "a@b.com"}, {Password: "x"}, {Email: "  ", Password: "x"}} {
		_, err := svc.Login(context.Background(), creds)
		assert.ErrorIs(t, err, ErrInvalidInput)
		assert.Equal(t, MsgLoginFieldsRequired, messageOf(t, err))
	}
	assert.Zero(t, b.loginCalls)
}

func TestLoginBeginsSession(t *testing.T) {
	b := &stubBackend{result: &reserva.AuthResult{Token: "tok", User: &reserva.User{Name: "Dr Rao", Slug: "dr-rao"}}}
	svc, mgr := newService(b)

	sess, err := svc.Login(context.Background(), reserva.Credentials{Email: " doc@clinic.in ", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "doc@clinic.in", b.lastCreds.Email)

	got, err := mgr.Resolve(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "tok", got.Token)
	assert.Equal(t, "dr-rao", got.User.Slug)

	require.NoError(t, svc.Logout(context.Background(), sess.ID))
	_, err = mgr.Resolve(context.Background(), sess.ID)
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestLoginSurfacesBackendMessage(t *testing.T) {
	b := &stubBackend{err: &reserva.APIError{Status: http.StatusUnauthorized, Message: "Invalid credentials"}}
	svc, _ := newService(b)
	_, err := svc.Login(context.Background(), reserva.Credentials{Email: "a@b.com", Password: "x"})
	assert.Equal(t, "Invalid credentials", messageOf(t, err))
	assert.True(t, reserva.IsStatus(err, http.StatusUnauthorized))

	b.err = errors.New("connection reset")
	_, err = svc.Login(context.Background(), reserva.Credentials{Email: "a@b.com", Password: "x"})
	assert.Equal(t, MsgLoginFailed, messageOf(t, err))
}

func TestLoginWithoutTokenFails(t *testing.T) {
	b := &stubBackend{result: &reserva.AuthResult{}}
	svc, _ := newService(b)
	_, err := svc.Login(context.Background(), reserva.Credentials{Email: "a@b.com", Password: "x"})
	assert.Equal(t, MsgLoginFailed, messageOf(t, err))
	assert.ErrorIs(t, err, session.ErrEmptyToken)
}

func TestSignupRequiresAllFields(t *testing.T) {
	b := &stubBackend{}
	svc, _ := newService(b)
	full := reserva.SignupRequest{Name: "Rao", ClinicName: "Rao Clinic", Specialization: "Dentist", Email: "a@b.com", Password: "x"}

	missing := []func(r *reserva.SignupRequest){
		func(r *reserva.SignupRequest) { r.Name = "" },
		func(r *reserva.SignupRequest) { r.ClinicName = " " },
		func(r *reserva.SignupRequest) { r.Specialization = "" },
		func(r *reserva.SignupRequest) { r.Email = "" },
		func(r *reserva.SignupRequest) { r.Password = "" },
	}
	for _, drop := range missing {
		req := full
		drop(&req)
		_, err := svc.Signup(context.Background(), req)
		assert.Equal(t, MsgSignupFieldsRequired, messageOf(t, err))
	}
	assert.Zero(t, b.signupCalls)

	b.result = &reserva.AuthResult{Token: "tok", User: &reserva.User{Slug: "rao-clinic"}}
	sess, err := svc.Signup(context.Background(), full)
	require.NoError(t, err)
	assert.Equal(t, "rao-clinic", sess.User.Slug)

	b.err = &reserva.APIError{Status: http.StatusConflict}
	_, err = svc.Signup(context.Background(), full)
	assert.Equal(t, MsgSignupFailed, messageOf(t, err))
}

func TestForgotPassword(t *testing.T) {
	b := &stubBackend{}
	svc, _ := newService(b)

	_, err := svc.ForgotPassword(context.Background(), " ")
	assert.Equal(t, MsgEmailRequired, messageOf(t, err))

	msg, err := svc.ForgotPassword(context.Background(), "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, MsgResetLinkSent, msg)

	b.forgotMsg = "Check your inbox"
	msg, err = svc.ForgotPassword(context.Background(), "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, "Check your inbox", msg)

	b.err = errors.New("boom")
	_, err = svc.ForgotPassword(context.Background(), "a@b.com")
	assert.Equal(t, MsgSomethingWentWrong, messageOf(t, err))
}
