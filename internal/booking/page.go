package booking

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/wolfman30/reserva-portal/internal/reserva"
	"github.com/wolfman30/reserva-portal/pkg/logging"
)

// DefaultAckDuration is how long the "request sent" acknowledgment stays up.
const DefaultAckDuration = 3500 * time.Millisecond

// Backend is the slice of the Reserva API the booking page needs.
type Backend interface {
	Doctor(ctx context.Context, slug string) (*reserva.Doctor, error)
	Slots(ctx context.Context, slug, date string) (*reserva.Slots, error)
	Book(ctx context.Context, slug string, payload reserva.BookingPayload) error
}

// Recorder receives workflow outcomes, typically Prometheus counters.
type Recorder interface {
	ObserveFetch(result string)
	ObserveBooking(outcome string)
}

// Fetch results and booking outcomes passed to Recorder.
const (
	FetchOK     = "ok"
	FetchClosed = "closed"
	FetchFailed = "error"

	BookingAccepted = "accepted"
	BookingRejected = "rejected"
	BookingBlocked  = "blocked"
)

// Page is the state of one public booking page. It is safe for concurrent
// use; no backend call is made while the lock is held. Fetch responses are
// applied in arrival order.
type Page struct {
	backend  Backend
	logger   *logging.Logger
	recorder Recorder
	now      func() time.Time
	loc      *time.Location
	ackFor   time.Duration

	mu         sync.Mutex
	slug       string
	date       string
	doctor     *reserva.Doctor
	avail      Availability
	fetching   int
	selected   string
	patient    PatientDetails
	submitting bool
	ackUntil   time.Time
	lastError  string
}

// Option configures a Page.
type Option func(*Page)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(p *Page) {
		if now != nil {
			p.now = now
		}
	}
}

// WithLocation sets the zone that decides what "today" is.
func WithLocation(loc *time.Location) Option {
	return func(p *Page) {
		if loc != nil {
			p.loc = loc
		}
	}
}

// WithAckDuration sets how long a successful submission stays acknowledged.
func WithAckDuration(d time.Duration) Option {
	return func(p *Page) {
		if d > 0 {
			p.ackFor = d
		}
	}
}

// WithLogger sets the page logger.
func WithLogger(logger *logging.Logger) Option {
	return func(p *Page) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithRecorder reports fetch and booking outcomes.
func WithRecorder(r Recorder) Option {
	return func(p *Page) {
		p.recorder = r
	}
}

// NewPage creates a page dated today with no slug.
func NewPage(backend Backend, opts ...Option) *Page {
	p := &Page{
		backend: backend,
		logger:  logging.Default(),
		now:     time.Now,
		loc:     time.UTC,
		ackFor:  DefaultAckDuration,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.date = Today(p.now(), p.loc)
	return p
}

// Open points the page at a clinic and loads its doctor card and today's
// (or the current date's) availability.
func (p *Page) Open(ctx context.Context, slug string) error {
	return p.OpenAt(ctx, slug, "")
}

// OpenAt is Open for a given date, with a single availability fetch. An
// empty date keeps the current one.
func (p *Page) OpenAt(ctx context.Context, slug, date string) error {
	if err := p.setSlug(slug); err != nil {
		return err
	}
	if err := p.setDate(date); err != nil {
		return err
	}
	p.loadDoctor(ctx, slug)
	return p.Refresh(ctx)
}

// SetSlug switches the clinic. Selection is always cleared.
func (p *Page) SetSlug(ctx context.Context, slug string) error {
	return p.Open(ctx, slug)
}

func (p *Page) setSlug(slug string) error {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return ErrEmptySlug
	}
	p.mu.Lock()
	p.slug = slug
	p.selected = ""
	p.mu.Unlock()
	return nil
}

// SetDate changes the appointment date, clamps past dates to today, clears
// the selection and fetches availability for the effective date.
func (p *Page) SetDate(ctx context.Context, date string) error {
	normalized, err := ParseDate(date)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.date = normalized
	p.selected = ""
	p.mu.Unlock()
	return p.Refresh(ctx)
}

// Load points the page at slug and date together and fetches availability
// once, without the doctor card. An empty date keeps the current one.
func (p *Page) Load(ctx context.Context, slug, date string) error {
	if err := p.setSlug(slug); err != nil {
		return err
	}
	if err := p.setDate(date); err != nil {
		return err
	}
	return p.Refresh(ctx)
}

func (p *Page) setDate(date string) error {
	if strings.TrimSpace(date) == "" {
		return nil
	}
	normalized, err := ParseDate(date)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.date = normalized
	p.mu.Unlock()
	return nil
}

// Refresh fetches availability for the current slug and date.
func (p *Page) Refresh(ctx context.Context) error {
	p.mu.Lock()
	today := Today(p.now(), p.loc)
	p.date = ClampDate(p.date, today)
	slug, date := p.slug, p.date
	p.mu.Unlock()

	if slug == "" {
		return ErrEmptySlug
	}
	p.fetch(ctx, slug, date)
	return nil
}

// fetch loads availability and applies it on arrival. Failures collapse into
// the closed fail-safe so a stale list is never offered as bookable.
func (p *Page) fetch(ctx context.Context, slug, date string) {
	p.mu.Lock()
	p.fetching++
	p.mu.Unlock()

	result := FetchOK
	raw, err := p.backend.Slots(ctx, slug, date)
	avail := availabilityFrom(date, raw)
	if err != nil {
		p.logger.Warn("availability fetch failed", "slug", slug, "date", date, "error", err)
		avail = unavailable(date)
		result = FetchFailed
	} else if avail.Closed {
		result = FetchClosed
	}
	if p.recorder != nil {
		p.recorder.ObserveFetch(result)
	}

	p.mu.Lock()
	p.fetching--
	p.avail = avail
	p.selected = ""
	p.mu.Unlock()
}

func (p *Page) loadDoctor(ctx context.Context, slug string) {
	doc, err := p.backend.Doctor(ctx, slug)
	if err != nil {
		p.logger.Warn("doctor lookup failed", "slug", slug, "error", err)
		doc = nil
	}
	p.mu.Lock()
	if p.slug == slug {
		p.doctor = doc
	}
	p.mu.Unlock()
}

// SelectSlot picks one available slot. Booked, unknown or closed-day labels
// leave the selection untouched and return ErrSlotUnavailable.
func (p *Page) SelectSlot(label string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.avail.CanSelect(label) {
		return ErrSlotUnavailable
	}
	p.selected = label
	return nil
}

// ClearSlot drops the current selection.
func (p *Page) ClearSlot() {
	p.mu.Lock()
	p.selected = ""
	p.mu.Unlock()
}

// SetName updates the patient name field.
func (p *Page) SetName(name string) {
	p.mu.Lock()
	p.patient.Name = name
	p.mu.Unlock()
}

// SetPhone updates the patient phone field.
func (p *Page) SetPhone(phone string) {
	p.mu.Lock()
	p.patient.Phone = phone
	p.mu.Unlock()
}

// SetEmail updates the patient email field.
func (p *Page) SetEmail(email string) {
	p.mu.Lock()
	p.patient.Email = email
	p.mu.Unlock()
}

// SetPatient replaces the whole patient form.
func (p *Page) SetPatient(d PatientDetails) {
	p.mu.Lock()
	p.patient = d
	p.mu.Unlock()
}

// CanSubmit reports the aggregate gate for the current state.
func (p *Page) CanSubmit() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.gateLocked().CanSubmit()
}

func (p *Page) gateLocked() Gate {
	return Gate{SelectedSlot: p.selected, Patient: p.patient, Submitting: p.submitting}
}

// Submit sends the booking request. It refuses to start unless the gate
// holds, so repeated clicks cannot double-submit. On success the
// acknowledgment is raised, availability is re-fetched and the form and
// selection are cleared. On failure the form is kept for a retry.
func (p *Page) Submit(ctx context.Context) error {
	p.mu.Lock()
	if !p.gateLocked().CanSubmit() {
		p.mu.Unlock()
		if p.recorder != nil {
			p.recorder.ObserveBooking(BookingBlocked)
		}
		return ErrCannotSubmit
	}
	req := Request{Slug: p.slug, Date: p.date, Slot: p.selected, Patient: p.patient}
	p.submitting = true
	p.lastError = ""
	p.mu.Unlock()

	if err := p.backend.Book(ctx, req.Slug, req.Payload()); err != nil {
		msg := reserva.MessageOr(err, MsgBookingFailed)
		p.mu.Lock()
		p.submitting = false
		p.lastError = msg
		p.mu.Unlock()
		if p.recorder != nil {
			p.recorder.ObserveBooking(BookingRejected)
		}
		p.logger.Warn("booking request failed", "slug", req.Slug, "date", req.Date, "slot", req.Slot, "error", err)
		return &SubmitError{Message: msg, Err: err}
	}

	p.mu.Lock()
	p.ackUntil = p.now().Add(p.ackFor)
	p.mu.Unlock()
	if p.recorder != nil {
		p.recorder.ObserveBooking(BookingAccepted)
	}
	p.logger.Info("booking request sent", "slug", req.Slug, "date", req.Date, "slot", req.Slot)

	p.fetch(ctx, req.Slug, req.Date)

	p.mu.Lock()
	p.patient = PatientDetails{}
	p.selected = ""
	p.submitting = false
	p.mu.Unlock()
	return nil
}

// AckDuration is how long a successful submission stays acknowledged.
func (p *Page) AckDuration() time.Duration {
	return p.ackFor
}

// TakeError returns the last submission failure message once, then forgets it.
func (p *Page) TakeError() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	msg := p.lastError
	p.lastError = ""
	return msg
}

// View is a read-only snapshot of the page, everything derived recomputed.
type View struct {
	Slug          string          `json:"slug"`
	Date          string          `json:"date"`
	DateLabel     string          `json:"dateLabel"`
	Today         string          `json:"today"`
	Doctor        *reserva.Doctor `json:"doctor,omitempty"`
	SlotsDate     string          `json:"slotsDate"`
	Slots         []string        `json:"slots"`
	Booked        []string        `json:"bookedSlots"`
	Available     []string        `json:"availableSlots"`
	Closed        bool            `json:"closed"`
	ClosedMessage string          `json:"message,omitempty"`
	Notice        *Notice         `json:"notice,omitempty"`
	Loading       bool            `json:"loading"`
	Selected      string          `json:"selectedSlot,omitempty"`
	Patient       PatientDetails  `json:"patient"`
	FieldErrors   FieldErrors     `json:"fieldErrors,omitempty"`
	CanSubmit     bool            `json:"canSubmit"`
	Submitting    bool            `json:"submitting"`
	Acknowledged  bool            `json:"acknowledged"`
	LastError     string          `json:"lastError,omitempty"`
}

// View snapshots the page.
func (p *Page) View() View {
	p.mu.Lock()
	defer p.mu.Unlock()

	v := View{
		Slug:          p.slug,
		Date:          p.date,
		DateLabel:     FormatDate(p.date),
		Today:         Today(p.now(), p.loc),
		Doctor:        p.doctor,
		SlotsDate:     p.avail.Date,
		Slots:         append([]string{}, p.avail.Slots...),
		Booked:        append([]string{}, p.avail.Booked...),
		Available:     p.avail.Selectable(),
		Closed:        p.avail.Closed,
		ClosedMessage: p.avail.Message,
		Loading:       p.fetching > 0,
		Selected:      p.selected,
		Patient:       p.patient,
		FieldErrors:   InlineErrors(p.patient),
		CanSubmit:     p.gateLocked().CanSubmit(),
		Submitting:    p.submitting,
		Acknowledged:  p.now().Before(p.ackUntil),
		LastError:     p.lastError,
	}
	if !v.Loading {
		v.Notice = p.avail.Notice()
	}
	return v
}

// IsSubmitError reports whether err came from a backend rejection and returns
// the patient-facing message.
func IsSubmitError(err error) (string, bool) {
	var se *SubmitError
	if errors.As(err, &se) {
		return se.Message, true
	}
	return "", false
}
