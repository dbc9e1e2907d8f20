package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/reserva-portal/internal/audit"
	"github.com/wolfman30/reserva-portal/internal/booking"
	"github.com/wolfman30/reserva-portal/internal/http/middleware"
	"github.com/wolfman30/reserva-portal/internal/reserva"
	"github.com/wolfman30/reserva-portal/pkg/logging"
)

// AuditLogger records booking attempts.
type AuditLogger interface {
	LogAttempt(ctx context.Context, event audit.BookingEvent) error
}

// PublicBookingHandler serves the patient-facing booking page.
type PublicBookingHandler struct {
	backend  booking.Backend
	audit    AuditLogger
	pageOpts []booking.Option
	logger   *logging.Logger
}

// NewPublicBookingHandler creates the handler. auditLog may be nil. pageOpts
// configure every per-request booking.Page (clock, zone, recorder).
func NewPublicBookingHandler(backend booking.Backend, auditLog AuditLogger, logger *logging.Logger, pageOpts ...booking.Option) *PublicBookingHandler {
	if logger == nil {
		logger = logging.Default()
	}
	logger = logger.Component("public_booking")
	return &PublicBookingHandler{
		backend:  backend,
		audit:    auditLog,
		pageOpts: append([]booking.Option{booking.WithLogger(logger)}, pageOpts...),
		logger:   logger,
	}
}

func (h *PublicBookingHandler) newPage() *booking.Page {
	return booking.NewPage(h.backend, h.pageOpts...)
}

// AvailabilityResponse is the slot grid for one date.
type AvailabilityResponse struct {
	Slug           string          `json:"slug"`
	Date           string          `json:"date"`
	DateLabel      string          `json:"dateLabel"`
	Today          string          `json:"today"`
	Slots          []string        `json:"slots"`
	BookedSlots    []string        `json:"bookedSlots"`
	AvailableSlots []string        `json:"availableSlots"`
	Closed         bool            `json:"closed"`
	Message        string          `json:"message,omitempty"`
	Notice         *booking.Notice `json:"notice,omitempty"`
}

func availabilityFromView(v booking.View) AvailabilityResponse {
	return AvailabilityResponse{
		Slug:           v.Slug,
		Date:           v.Date,
		DateLabel:      v.DateLabel,
		Today:          v.Today,
		Slots:          v.Slots,
		BookedSlots:    v.Booked,
		AvailableSlots: v.Available,
		Closed:         v.Closed,
		Message:        v.ClosedMessage,
		Notice:         v.Notice,
	}
}

// GetDoctor returns the doctor card.
// GET /api/public/{slug}
func (h *PublicBookingHandler) GetDoctor(w http.ResponseWriter, r *http.Request) {
	slug := strings.TrimSpace(chi.URLParam(r, "slug"))
	doc, err := h.backend.Doctor(r.Context(), slug)
	if err != nil {
		if !reserva.IsStatus(err, http.StatusNotFound) {
			h.logger.Warn("doctor lookup failed", "slug", slug, "error", err)
		}
		jsonError(w, r, "Doctor not found", http.StatusNotFound)
		return
	}
	if doc.Slug == "" {
		doc.Slug = slug
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"doctor": doc, "initial": doc.Initial()})
}

// GetAvailability returns the slots for a date. Past dates are answered for
// today; fetch failures come back as a closed day.
// GET /api/public/{slug}/availability?date=YYYY-MM-DD
func (h *PublicBookingHandler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	page := h.newPage()
	if !h.load(w, r, page, r.URL.Query().Get("date")) {
		return
	}
	writeJSON(w, r, http.StatusOK, availabilityFromView(page.View()))
}

func (h *PublicBookingHandler) load(w http.ResponseWriter, r *http.Request, page *booking.Page, date string) bool {
	err := page.Load(r.Context(), chi.URLParam(r, "slug"), date)
	switch {
	case err == nil:
		return true
	case errors.Is(err, booking.ErrInvalidDate):
		jsonError(w, r, "Date must be YYYY-MM-DD", http.StatusBadRequest)
	case errors.Is(err, booking.ErrEmptySlug):
		jsonError(w, r, "Doctor not found", http.StatusNotFound)
	default:
		h.logger.Error("loading booking page failed", "error", err)
		jsonError(w, r, "internal error", http.StatusInternalServerError)
	}
	return false
}

// BookingRequestBody is what the booking form posts.
type BookingRequestBody struct {
	Date     string `json:"date"`
	TimeSlot string `json:"timeSlot"`
	booking.PatientDetails
}

// BookingAccepted is the acknowledgment for a sent request.
type BookingAccepted struct {
	Message      string               `json:"message"`
	Detail       string               `json:"detail"`
	Disclaimer   string               `json:"disclaimer"`
	AckMillis    int64                `json:"ackMillis"`
	Availability AvailabilityResponse `json:"availability"`
}

// CreateRequest runs the booking workflow for one submission: load the
// date's availability, validate the form, select the slot and submit.
// POST /api/public/{slug}/requests
func (h *PublicBookingHandler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	var body BookingRequestBody
	if !decodeJSON(w, r, &body) {
		return
	}

	page := h.newPage()
	if !h.load(w, r, page, body.Date) {
		return
	}
	view := page.View()
	event := audit.BookingEvent{
		Slug:      view.Slug,
		Date:      view.Date,
		Slot:      body.TimeSlot,
		RequestID: middleware.RequestIDFromContext(r.Context()),
	}

	// Load moved a past date forward to today; never book the moved date.
	if requested, _ := booking.ParseDate(body.Date); requested != "" && requested != view.Date {
		event.Date = requested
		h.record(r.Context(), event, audit.OutcomeConflict, booking.MsgDatePassed)
		writeJSON(w, r, http.StatusConflict, map[string]any{
			"error":        booking.MsgDatePassed,
			"availability": availabilityFromView(view),
		})
		return
	}

	fieldErrs := booking.Validate(body.PatientDetails)
	if strings.TrimSpace(body.TimeSlot) == "" {
		fieldErrs["timeSlot"] = booking.MsgSlotRequired
	}
	if !fieldErrs.Empty() {
		h.record(r.Context(), event, audit.OutcomeInvalid, "")
		writeJSON(w, r, http.StatusUnprocessableEntity, errorResponse{
			Error:       "Please correct the highlighted fields",
			FieldErrors: fieldErrs,
		})
		return
	}

	if err := page.SelectSlot(body.TimeSlot); err != nil {
		h.record(r.Context(), event, audit.OutcomeConflict, booking.MsgSlotTaken)
		writeJSON(w, r, http.StatusConflict, map[string]any{
			"error":        booking.MsgSlotTaken,
			"availability": availabilityFromView(view),
		})
		return
	}
	page.SetPatient(body.PatientDetails)

	if err := page.Submit(r.Context()); err != nil {
		if msg, ok := booking.IsSubmitError(err); ok {
			h.record(r.Context(), event, audit.OutcomeRejected, msg)
			jsonError(w, r, msg, http.StatusBadGateway)
			return
		}
		h.record(r.Context(), event, audit.OutcomeInvalid, err.Error())
		jsonError(w, r, booking.MsgBookingFailed, http.StatusUnprocessableEntity)
		return
	}

	h.record(r.Context(), event, audit.OutcomeAccepted, "")
	after := page.View()
	writeJSON(w, r, http.StatusAccepted, BookingAccepted{
		Message:      booking.MsgRequestSent,
		Detail:       booking.MsgRequestSentDetail,
		Disclaimer:   booking.MsgPendingDisclaimer,
		AckMillis:    page.AckDuration().Milliseconds(),
		Availability: availabilityFromView(after),
	})
}

func (h *PublicBookingHandler) record(ctx context.Context, event audit.BookingEvent, outcome audit.Outcome, msg string) {
	if h.audit == nil {
		return
	}
	event.Outcome = outcome
	event.ErrorMessage = msg
	if err := h.audit.LogAttempt(ctx, event); err != nil {
		h.logger.Warn("failed to audit booking attempt", "slug", event.Slug, "error", err)
	}
}
