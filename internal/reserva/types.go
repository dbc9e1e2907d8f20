package reserva

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Doctor is the public display metadata for a clinic's booking page.
type Doctor struct {
	Name           string `json:"name"`
	Specialization string `json:"specialization"`
	ClinicName     string `json:"clinicName"`
	Slug           string `json:"slug,omitempty"`
}

// Initial returns the avatar letter shown on the doctor card.
func (d *Doctor) Initial() string {
	if d == nil || d.Name == "" {
		return "D"
	}
	return string([]rune(d.Name)[:1])
}

// Slots is the availability payload for one clinic and date.
type Slots struct {
	Slots       []string `json:"slots"`
	BookedSlots []string `json:"bookedSlots"`
	Closed      bool     `json:"closed"`
	Message     string   `json:"message,omitempty"`
}

// BookingPayload is the body of a public booking request.
type BookingPayload struct {
	PatientName string `json:"patientName"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	Date        string `json:"date"`
	TimeSlot    string `json:"timeSlot"`
}

// Credentials is the login body.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignupRequest is the account creation body.
type SignupRequest struct {
	Name           string `json:"name"`
	ClinicName     string `json:"clinicName"`
	Specialization string `json:"specialization"`
	Email          string `json:"email"`
	Password       string `json:"password"`
}

// AuthResult is returned by login and signup.
type AuthResult struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// TimeRange is one working window inside a day, e.g. 10:00-14:00 in 15 minute slots.
type TimeRange struct {
	Start        string `json:"start"`
	End          string `json:"end"`
	DurationMins int    `json:"durationMins"`
}

// DayHours is the backend's business hours entry for one weekday.
type DayHours struct {
	Day    string      `json:"day"`
	IsOpen *bool       `json:"isOpen,omitempty"`
	Slots  []TimeRange `json:"slots"`
}

// Open reports whether the day accepts bookings. A missing flag means open.
func (d DayHours) Open() bool {
	return d.IsOpen == nil || *d.IsOpen
}

// User is the doctor account as the backend returns it.
type User struct {
	ID                 string   `json:"_id,omitempty"`
	Name               string   `json:"name"`
	Email              string   `json:"email"`
	ClinicName         string   `json:"clinicName"`
	Specialization     string   `json:"specialization"`
	Slug               string   `json:"slug"`
	ProfileCompleted   bool     `json:"profileCompleted"`
	PlanName           string   `json:"planName,omitempty"`
	SubscriptionStatus string   `json:"subscriptionStatus,omitempty"`
	TrialEndDate       FlexTime `json:"trialEndDate,omitempty"`

	VacationMode          bool `json:"vacationMode"`
	AllowOnlineBooking    bool `json:"allowOnlineBooking"`
	RequireConfirmation   bool `json:"requireConfirmation"`
	BookingWindowDays     int  `json:"bookingWindowDays,omitempty"`
	BufferTimeMins        int  `json:"bufferTimeMins,omitempty"`
	MaxAppointmentsPerDay int  `json:"maxAppointmentsPerDay,omitempty"`

	BusinessHours []DayHours `json:"businessHours,omitempty"`

	Phone                   string   `json:"phone,omitempty"`
	WhatsappNumber          string   `json:"whatsappNumber,omitempty"`
	DefaultSlotDurationMins int      `json:"defaultSlotDurationMins,omitempty"`
	ClinicPhone             string   `json:"clinicPhone,omitempty"`
	GoogleMapLink           string   `json:"googleMapLink,omitempty"`
	AboutDoctor             string   `json:"aboutDoctor,omitempty"`
	Services                []string `json:"services,omitempty"`
	State                   string   `json:"state,omitempty"`
	City                    string   `json:"city,omitempty"`
	Address                 string   `json:"address,omitempty"`
	Pincode                 string   `json:"pincode,omitempty"`
	LogoURL                 string   `json:"logoUrl,omitempty"`
	ProfilePhoto            string   `json:"profilePhoto,omitempty"`
}

// FlexTime decodes timestamps sent either as a plain string or in the
// {"$date": ...} wrapper the backend's document store emits.
type FlexTime struct {
	time.Time
}

func (f *FlexTime) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		f.Time = time.Time{}
		return nil
	}
	if data[0] == '{' {
		var wrapped struct {
			Date json.RawMessage `json:"$date"`
		}
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return fmt.Errorf("reserva: decode wrapped date: %w", err)
		}
		return f.UnmarshalJSON(wrapped.Date)
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("reserva: decode date: %w", err)
		}
		if s == "" {
			f.Time = time.Time{}
			return nil
		}
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return fmt.Errorf("reserva: parse date %q: %w", s, err)
		}
		f.Time = t
		return nil
	}
	ms, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("reserva: parse epoch millis: %w", err)
	}
	f.Time = time.UnixMilli(ms).UTC()
	return nil
}

func (f FlexTime) MarshalJSON() ([]byte, error) {
	if f.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(f.Time.UTC().Format(time.RFC3339))
}
