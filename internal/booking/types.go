// Package booking implements the public booking page workflow: availability
// fetching, slot selection, patient form validation and request submission.
package booking

import (
	"errors"
	"strings"

	"github.com/wolfman30/reserva-portal/internal/reserva"
)

var (
	// ErrEmptySlug is returned when a page is opened without a clinic slug.
	ErrEmptySlug = errors.New("booking: clinic slug is required")
	// ErrInvalidDate is returned for dates that are not YYYY-MM-DD.
	ErrInvalidDate = errors.New("booking: date must be YYYY-MM-DD")
	// ErrSlotUnavailable is returned when selecting a booked or unknown slot.
	ErrSlotUnavailable = errors.New("booking: slot is not available")
	// ErrCannotSubmit is returned when Submit is called while the gate is closed.
	ErrCannotSubmit = errors.New("booking: request is not ready to submit")
)

// Messages shown to patients.
const (
	MsgSlotsUnavailable   = "Slots not available"
	MsgBookingFailed      = "Booking failed"
	MsgClinicClosed       = "Clinic Closed"
	MsgDoctorUnavailable  = "Doctor is not available on this day"
	MsgNoSlots            = "No slots available"
	MsgTryAnotherDate     = "Try another date"
	MsgRequestSent        = "Request Sent"
	MsgRequestSentDetail  = "Your booking request is submitted. Doctor will verify and confirm soon."
	MsgPendingDisclaimer  = "Appointment is not confirmed until the doctor approves it."
	MsgInvalidPhone       = "Enter valid 10-digit Indian number"
	MsgInvalidEmail       = "Enter a valid email address"
	MsgNameRequired       = "Enter patient name"
	MsgPhoneRequired      = "Phone number is required"
	MsgEmailRequired      = "Email is required"
	MsgSlotRequired       = "Select a time slot"
	MsgSlotTaken          = "This slot is no longer available. Pick another time."
	MsgSubmissionInFlight = "A booking request is already being sent"
	MsgDatePassed         = "That date has passed. Pick another date."
)

// Availability is what the backend reported for one (slug, date) pair.
type Availability struct {
	// Date is the date the slots belong to.
	Date    string
	Slots   []string
	Booked  []string
	Closed  bool
	Message string
}

func availabilityFrom(date string, s *reserva.Slots) Availability {
	if s == nil {
		return unavailable(date)
	}
	return Availability{
		Date:    date,
		Slots:   append([]string(nil), s.Slots...),
		Booked:  append([]string(nil), s.BookedSlots...),
		Closed:  s.Closed,
		Message: s.Message,
	}
}

// unavailable is the fail-safe state used when availability cannot be loaded.
func unavailable(date string) Availability {
	return Availability{Date: date, Closed: true, Message: MsgSlotsUnavailable}
}

// PatientDetails is the patient form. It lives only in memory.
type PatientDetails struct {
	Name  string `json:"patientName"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// Request is a booking request composed at submission time.
type Request struct {
	Slug    string
	Date    string
	Slot    string
	Patient PatientDetails
}

// Payload converts the request to the backend's wire body.
func (r Request) Payload() reserva.BookingPayload {
	return reserva.BookingPayload{
		PatientName: r.Patient.Name,
		Phone:       r.Patient.Phone,
		Email:       r.Patient.Email,
		Date:        r.Date,
		TimeSlot:    r.Slot,
	}
}

// SubmitError is returned when the backend rejects or fails a booking request.
// Message is what the patient should see.
type SubmitError struct {
	Message string
	Err     error
}

func (e *SubmitError) Error() string {
	return "booking: submit failed: " + e.Message
}

func (e *SubmitError) Unwrap() error { return e.Err }

func trimmed(s string) string { return strings.TrimSpace(s) }
