package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/wolfman30/reserva-portal/internal/audit"
	"github.com/wolfman30/reserva-portal/internal/dashboard"
	"github.com/wolfman30/reserva-portal/internal/http/middleware"
	"github.com/wolfman30/reserva-portal/internal/onboarding"
	"github.com/wolfman30/reserva-portal/internal/session"
	"github.com/wolfman30/reserva-portal/pkg/logging"
)

// DoctorHandler serves the signed-in doctor's dashboard and onboarding.
// Routes are expected behind middleware.RequireSession.
type DoctorHandler struct {
	dashboard  *dashboard.Service
	onboarding *onboarding.Service
	attempts   AttemptReader
	logger     *logging.Logger
}

// AttemptReader lists recorded booking attempts.
type AttemptReader interface {
	QueryAttempts(ctx context.Context, filter audit.Filter) ([]audit.BookingEvent, error)
}

func NewDoctorHandler(dash *dashboard.Service, onboard *onboarding.Service, logger *logging.Logger) *DoctorHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &DoctorHandler{dashboard: dash, onboarding: onboard, logger: logger}
}

// WithAttempts enables the booking attempt log on the dashboard.
func (h *DoctorHandler) WithAttempts(r AttemptReader) *DoctorHandler {
	h.attempts = r
	return h
}

// HasAttempts reports whether ListAttempts has a source.
func (h *DoctorHandler) HasAttempts() bool { return h.attempts != nil }

func sessionID(r *http.Request) string {
	if sess, ok := middleware.SessionFromContext(r.Context()); ok {
		return sess.ID
	}
	return middleware.SessionID(r)
}

// GetDashboard returns settings, subscription and the booking link.
// GET /api/dashboard
func (h *DoctorHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	view, err := h.dashboard.Load(r.Context(), sessionID(r))
	if err != nil {
		h.writeDashboardError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, view)
}

// SaveSettings validates and stores dashboard settings.
// PUT /api/dashboard/settings
func (h *DoctorHandler) SaveSettings(w http.ResponseWriter, r *http.Request) {
	settings := dashboard.DefaultSettings()
	if !decodeJSON(w, r, &settings) {
		return
	}
	view, err := h.dashboard.Save(r.Context(), sessionID(r), settings)
	if err != nil {
		h.writeDashboardError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{
		"message":   dashboard.MsgSettingsSaved,
		"dashboard": view,
	})
}

func (h *DoctorHandler) writeDashboardError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *dashboard.ValidationError
	var saveErr *dashboard.SaveError
	switch {
	case errors.Is(err, dashboard.ErrUnauthenticated):
		writeJSON(w, r, http.StatusUnauthorized, errorResponse{Error: "Please log in again", Redirect: "/login"})
	case errors.Is(err, dashboard.ErrProfileIncomplete):
		writeJSON(w, r, http.StatusConflict, errorResponse{Error: "Complete your profile first", Redirect: "/onboarding"})
	case errors.As(err, &verr):
		jsonError(w, r, verr.Message, http.StatusUnprocessableEntity)
	case errors.As(err, &saveErr):
		jsonError(w, r, saveErr.Message, http.StatusBadGateway)
	default:
		h.logger.Error("dashboard request failed", "error", err)
		jsonError(w, r, "internal error", http.StatusInternalServerError)
	}
}

// SaveOnboarding validates and stores the onboarding profile.
// PUT /api/onboarding/profile
func (h *DoctorHandler) SaveOnboarding(w http.ResponseWriter, r *http.Request) {
	form := onboarding.NewForm()
	if !decodeJSON(w, r, &form) {
		return
	}
	user, err := h.onboarding.Submit(r.Context(), sessionID(r), form)
	var fieldErrs onboarding.Errors
	var saveErr *onboarding.SaveError
	switch {
	case err == nil:
		writeJSON(w, r, http.StatusOK, map[string]any{
			"message":  onboarding.MsgProfileSaved,
			"user":     user,
			"redirect": "/dashboard",
		})
	case errors.As(err, &fieldErrs):
		writeJSON(w, r, http.StatusUnprocessableEntity, errorResponse{
			Error:       "Please correct the highlighted fields",
			FieldErrors: fieldErrs,
		})
	case errors.As(err, &saveErr):
		jsonError(w, r, saveErr.Message, http.StatusBadGateway)
	case errors.Is(err, session.ErrNotFound):
		writeJSON(w, r, http.StatusUnauthorized, errorResponse{Error: "Please log in again", Redirect: "/login"})
	default:
		h.logger.Error("onboarding request failed", "error", err)
		jsonError(w, r, "internal error", http.StatusInternalServerError)
	}
}

const maxAttempts = 200

// ListAttempts returns recent booking attempts on the doctor's own page.
// GET /api/dashboard/requests?outcome=&since=RFC3339&limit=
func (h *DoctorHandler) ListAttempts(w http.ResponseWriter, r *http.Request) {
	if h.attempts == nil {
		jsonError(w, r, "Booking history is not enabled", http.StatusNotFound)
		return
	}
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok || sess.User == nil || sess.User.Slug == "" {
		writeJSON(w, r, http.StatusUnauthorized, errorResponse{Error: "Please log in again", Redirect: "/login"})
		return
	}

	q := r.URL.Query()
	filter := audit.Filter{Slug: sess.User.Slug, Outcome: audit.Outcome(strings.TrimSpace(q.Get("outcome"))), Limit: 50}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			jsonError(w, r, "limit must be a positive number", http.StatusBadRequest)
			return
		}
		filter.Limit = min(n, maxAttempts)
	}
	if raw := q.Get("since"); raw != "" {
		since, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			jsonError(w, r, "since must be an RFC3339 timestamp", http.StatusBadRequest)
			return
		}
		filter.StartTime = since
	}

	events, err := h.attempts.QueryAttempts(r.Context(), filter)
	if err != nil {
		h.logger.Error("listing booking attempts failed", "slug", filter.Slug, "error", err)
		jsonError(w, r, "internal error", http.StatusInternalServerError)
		return
	}
	if events == nil {
		events = []audit.BookingEvent{}
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"requests": events})
}
