package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/wolfman30/reserva-portal/internal/auth"
	"github.com/wolfman30/reserva-portal/internal/http/middleware"
	"github.com/wolfman30/reserva-portal/internal/reserva"
	"github.com/wolfman30/reserva-portal/internal/session"
	"github.com/wolfman30/reserva-portal/pkg/logging"
)

// AuthHandler serves login, signup, password reset and logout.
type AuthHandler struct {
	svc          *auth.Service
	secureCookie bool
	logger       *logging.Logger
}

// NewAuthHandler creates the handler. secureCookie marks the session cookie
// Secure, which production deployments behind HTTPS want.
func NewAuthHandler(svc *auth.Service, secureCookie bool, logger *logging.Logger) *AuthHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AuthHandler{svc: svc, secureCookie: secureCookie, logger: logger}
}

// SessionResponse is returned after login or signup.
type SessionResponse struct {
	Message   string        `json:"message,omitempty"`
	SessionID string        `json:"sessionId"`
	ExpiresAt time.Time     `json:"expiresAt"`
	User      *reserva.User `json:"user,omitempty"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

// Login signs a doctor in.
// POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var creds reserva.Credentials
	if !decodeJSON(w, r, &creds) {
		return
	}
	sess, err := h.svc.Login(r.Context(), creds)
	if err != nil {
		h.writeAuthError(w, r, err)
		return
	}
	h.setCookie(w, sess)
	writeJSON(w, r, http.StatusOK, SessionResponse{SessionID: sess.ID, ExpiresAt: sess.ExpiresAt, User: sess.User})
}

// Signup creates an account and signs it in.
// POST /api/auth/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req reserva.SignupRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	sess, err := h.svc.Signup(r.Context(), req)
	if err != nil {
		h.writeAuthError(w, r, err)
		return
	}
	h.setCookie(w, sess)
	writeJSON(w, r, http.StatusCreated, SessionResponse{
		Message:   auth.MsgAccountCreated,
		SessionID: sess.ID,
		ExpiresAt: sess.ExpiresAt,
		User:      sess.User,
	})
}

// ForgotPassword requests a reset link.
// POST /api/auth/forgot-password
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	msg, err := h.svc.ForgotPassword(r.Context(), req.Email)
	if err != nil {
		h.writeAuthError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, messageResponse{Message: msg})
}

// Logout ends the session and clears the cookie.
// POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Logout(r.Context(), middleware.SessionID(r)); err != nil {
		h.logger.Error("logout failed", "error", err)
		jsonError(w, r, "internal error", http.StatusInternalServerError)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, r, http.StatusOK, messageResponse{Message: "Logged out"})
}

func (h *AuthHandler) setCookie(w http.ResponseWriter, sess *session.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    sess.ID,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

// writeAuthError maps form problems to 400, backend 4xx answers to the same
// status and everything else to 502.
func (h *AuthHandler) writeAuthError(w http.ResponseWriter, r *http.Request, err error) {
	var authErr *auth.Error
	if !errors.As(err, &authErr) {
		h.logger.Error("auth flow failed", "error", err)
		jsonError(w, r, "internal error", http.StatusInternalServerError)
		return
	}
	if errors.Is(err, auth.ErrInvalidInput) {
		jsonError(w, r, authErr.Message, http.StatusBadRequest)
		return
	}
	var apiErr *reserva.APIError
	if errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500 {
		jsonError(w, r, authErr.Message, apiErr.Status)
		return
	}
	jsonError(w, r, authErr.Message, http.StatusBadGateway)
}
