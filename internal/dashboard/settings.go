// Package dashboard loads and saves a doctor's clinic settings and builds
// the dashboard overview: subscription state and the public booking link.
package dashboard

import (
	"regexp"
	"strings"
	"time"

	"github.com/wolfman30/reserva-portal/internal/onboarding"
	"github.com/wolfman30/reserva-portal/internal/reserva"
)

// Weekdays in the order the backend stores business hours.
var Weekdays = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

var (
	SlotDurations = []int{5, 10, 15, 20, 30}
	BufferOptions = []int{0, 5, 10, 15, 20, 30}
)

const (
	DefaultBookingWindowDays     = 30
	DefaultBufferTimeMins        = 0
	DefaultMaxAppointmentsPerDay = 50
)

var (
	indianMobile = regexp.MustCompile(`^[6-9]\d{9}$`)
	sixDigits    = regexp.MustCompile(`^\d{6}$`)
)

// Timings is the single working window applied to every open day.
type Timings struct {
	Start        string `json:"start"`
	End          string `json:"end"`
	DurationMins int    `json:"durationMins"`
}

// Rules limit how patients may book.
type Rules struct {
	BookingWindowDays     int `json:"bookingWindowDays"`
	BufferTimeMins        int `json:"bufferTimeMins"`
	MaxAppointmentsPerDay int `json:"maxAppointmentsPerDay"`
}

// Profile is the public clinic profile. Services is the comma separated text.
type Profile struct {
	ClinicPhone   string `json:"clinicPhone"`
	GoogleMapLink string `json:"googleMapLink"`
	AboutDoctor   string `json:"aboutDoctor"`
	Services      string `json:"services"`
	State         string `json:"state"`
	City          string `json:"city"`
	Address       string `json:"address"`
	Pincode       string `json:"pincode"`
}

type Branding struct {
	LogoURL      string `json:"logoUrl"`
	ProfilePhoto string `json:"profilePhoto"`
}

// Settings is everything editable on the dashboard.
type Settings struct {
	VacationMode        bool     `json:"vacationMode"`
	AllowOnlineBooking  bool     `json:"allowOnlineBooking"`
	RequireConfirmation bool     `json:"requireConfirmation"`
	ClosedDays          []string `json:"closedDays"`
	Timings             Timings  `json:"timings"`
	Rules               Rules    `json:"rules"`
	Profile             Profile  `json:"profile"`
	Branding            Branding `json:"branding"`
}

// DefaultSettings are used before the backend user is known.
func DefaultSettings() Settings {
	return Settings{
		AllowOnlineBooking:  true,
		RequireConfirmation: true,
		ClosedDays:          []string{},
		Timings:             Timings{Start: "10:00", End: "14:00", DurationMins: 15},
		Rules: Rules{
			BookingWindowDays:     DefaultBookingWindowDays,
			BufferTimeMins:        DefaultBufferTimeMins,
			MaxAppointmentsPerDay: DefaultMaxAppointmentsPerDay,
		},
	}
}

// IsClosed reports whether day is a weekly off day.
func (s Settings) IsClosed(day string) bool {
	for _, d := range s.ClosedDays {
		if d == day {
			return true
		}
	}
	return false
}

// ToggleClosedDay flips day between open and closed.
func (s *Settings) ToggleClosedDay(day string) {
	if s.IsClosed(day) {
		kept := make([]string, 0, len(s.ClosedDays)-1)
		for _, d := range s.ClosedDays {
			if d != day {
				kept = append(kept, d)
			}
		}
		s.ClosedDays = kept
		return
	}
	s.ClosedDays = append(s.ClosedDays, day)
}

// ValidationError is the first problem found in the settings.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return "dashboard: " + e.Message }

// Validate checks timings, then booking rules, then the profile, and
// reports the first failure.
func Validate(s Settings) error {
	if msg := validateTimings(s.Timings); msg != "" {
		return &ValidationError{Message: msg}
	}
	if msg := validateRules(s.Rules); msg != "" {
		return &ValidationError{Message: msg}
	}
	if msg := validateProfile(s.Profile); msg != "" {
		return &ValidationError{Message: msg}
	}
	return nil
}

func validateTimings(t Timings) string {
	start, errStart := time.Parse("15:04", strings.TrimSpace(t.Start))
	end, errEnd := time.Parse("15:04", strings.TrimSpace(t.End))
	if errStart != nil || errEnd != nil {
		return "Please select start & end time"
	}
	if !start.Before(end) {
		return "End time must be after start time"
	}
	if !contains(SlotDurations, t.DurationMins) {
		return "Invalid slot duration"
	}
	return ""
}

func validateRules(r Rules) string {
	if r.BookingWindowDays < 1 || r.BookingWindowDays > 365 {
		return "Booking window days must be between 1 and 365"
	}
	if !contains(BufferOptions, r.BufferTimeMins) {
		return "Buffer time invalid"
	}
	if r.MaxAppointmentsPerDay < 1 || r.MaxAppointmentsPerDay > 500 {
		return "Max appointments should be between 1 and 500"
	}
	return ""
}

func validateProfile(p Profile) string {
	if pin := strings.TrimSpace(p.Pincode); pin != "" && !sixDigits.MatchString(pin) {
		return "Pincode must be 6 digits"
	}
	if phone := strings.TrimSpace(p.ClinicPhone); phone != "" && !indianMobile.MatchString(phone) {
		return "Clinic phone must be valid Indian number"
	}
	return ""
}

// Payload is the backend profile body for a settings save.
type Payload struct {
	VacationMode          bool               `json:"vacationMode"`
	AllowOnlineBooking    bool               `json:"allowOnlineBooking"`
	RequireConfirmation   bool               `json:"requireConfirmation"`
	BusinessHours         []reserva.DayHours `json:"businessHours"`
	BookingWindowDays     int                `json:"bookingWindowDays"`
	BufferTimeMins        int                `json:"bufferTimeMins"`
	MaxAppointmentsPerDay int                `json:"maxAppointmentsPerDay"`
	ClinicPhone           string             `json:"clinicPhone"`
	GoogleMapLink         string             `json:"googleMapLink"`
	AboutDoctor           string             `json:"aboutDoctor"`
	Services              []string           `json:"services"`
	State                 string             `json:"state"`
	City                  string             `json:"city"`
	Address               string             `json:"address"`
	Pincode               string             `json:"pincode"`
	LogoURL               string             `json:"logoUrl"`
	ProfilePhoto          string             `json:"profilePhoto"`
}

// BusinessHours expands the settings into all seven days: closed days carry
// no slots, open days one slot with the shared timings.
func BusinessHours(s Settings) []reserva.DayHours {
	out := make([]reserva.DayHours, 0, len(Weekdays))
	for _, day := range Weekdays {
		open := !s.IsClosed(day)
		entry := reserva.DayHours{Day: day, IsOpen: &open, Slots: []reserva.TimeRange{}}
		if open {
			entry.Slots = []reserva.TimeRange{{
				Start:        s.Timings.Start,
				End:          s.Timings.End,
				DurationMins: s.Timings.DurationMins,
			}}
		}
		out = append(out, entry)
	}
	return out
}

func PayloadFrom(s Settings) Payload {
	return Payload{
		VacationMode:          s.VacationMode,
		AllowOnlineBooking:    s.AllowOnlineBooking,
		RequireConfirmation:   s.RequireConfirmation,
		BusinessHours:         BusinessHours(s),
		BookingWindowDays:     s.Rules.BookingWindowDays,
		BufferTimeMins:        s.Rules.BufferTimeMins,
		MaxAppointmentsPerDay: s.Rules.MaxAppointmentsPerDay,
		ClinicPhone:           s.Profile.ClinicPhone,
		GoogleMapLink:         s.Profile.GoogleMapLink,
		AboutDoctor:           s.Profile.AboutDoctor,
		Services:              onboarding.SplitList(s.Profile.Services),
		State:                 s.Profile.State,
		City:                  s.Profile.City,
		Address:               s.Profile.Address,
		Pincode:               s.Profile.Pincode,
		LogoURL:               s.Branding.LogoURL,
		ProfilePhoto:          s.Branding.ProfilePhoto,
	}
}

// FromUser loads settings from the backend account. Zero rule values fall
// back to the defaults; timings come from the first open day's first slot.
func FromUser(u *reserva.User) Settings {
	s := DefaultSettings()
	if u == nil {
		return s
	}
	s.VacationMode = u.VacationMode
	s.AllowOnlineBooking = u.AllowOnlineBooking
	s.RequireConfirmation = u.RequireConfirmation
	s.Rules = Rules{
		BookingWindowDays:     orDefault(u.BookingWindowDays, DefaultBookingWindowDays),
		BufferTimeMins:        orDefault(u.BufferTimeMins, DefaultBufferTimeMins),
		MaxAppointmentsPerDay: orDefault(u.MaxAppointmentsPerDay, DefaultMaxAppointmentsPerDay),
	}
	s.Profile = Profile{
		ClinicPhone:   u.ClinicPhone,
		GoogleMapLink: u.GoogleMapLink,
		AboutDoctor:   u.AboutDoctor,
		Services:      strings.Join(u.Services, ", "),
		State:         u.State,
		City:          u.City,
		Address:       u.Address,
		Pincode:       u.Pincode,
	}
	s.Branding = Branding{LogoURL: u.LogoURL, ProfilePhoto: u.ProfilePhoto}

	for _, d := range u.BusinessHours {
		if !d.Open() {
			s.ClosedDays = append(s.ClosedDays, d.Day)
		}
	}
	for _, d := range u.BusinessHours {
		if d.Open() {
			if len(d.Slots) > 0 {
				slot := d.Slots[0]
				s.Timings = Timings{Start: slot.Start, End: slot.End, DurationMins: slot.DurationMins}
			}
			break
		}
	}
	return s
}

func orDefault(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

func contains(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
