package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/reserva-portal/internal/reserva"
	"github.com/wolfman30/reserva-portal/internal/session"
	"github.com/wolfman30/reserva-portal/pkg/logging"
)

func boolPtr(b bool) *bool { return &b }

func TestValidateSettings(t *testing.T) {
	require.NoError(t, Validate(DefaultSettings()))

	tests := []struct {
		name string
		edit func(s *Settings)
		msg  string
	}{
		{"missing start", func(s *Settings) { s.Timings.Start = "" }, "Please select start & end time"},
		{"end before start", func(s *Settings) { s.Timings.End = "09:00" }, "End time must be after start time"},
		{"equal times", func(s *Settings) { s.Timings.End = s.Timings.Start }, "End time must be after start time"},
		{"bad duration", func(s *Settings) { s.Timings.DurationMins = 25 }, "Invalid slot duration"},
		{"window zero", func(s *Settings) { s.Rules.BookingWindowDays = 0 }, "Booking window days must be between 1 and 365"},
		{"window too big", func(s *Settings) { s.Rules.BookingWindowDays = 366 }, "Booking window days must be between 1 and 365"},
		{"buffer", func(s *Settings) { s.Rules.BufferTimeMins = 7 }, "Buffer time invalid"},
		{"max", func(s *Settings) { s.Rules.MaxAppointmentsPerDay = 501 }, "Max appointments should be between 1 and 500"},
		{"pincode", func(s *Settings) { s.Profile.Pincode = "5600" }, "Pincode must be 6 digits"},
		{"clinic phone", func(s *Settings) { s.Profile.ClinicPhone = "1234567890" }, "Clinic phone must be valid Indian number"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.edit(&s)
			var verr *ValidationError
			require.True(t, errors.As(Validate(s), &verr))
			assert.Equal(t, tt.msg, verr.Message)
		})
	}
}

func TestValidateReportsTimingsFirst(t *testing.T) {
	s := DefaultSettings()
	s.Timings.DurationMins = 3
	s.Rules.BufferTimeMins = 7
	var verr *ValidationError
	require.True(t, errors.As(Validate(s), &verr))
	assert.Equal(t, "Invalid slot duration", verr.Message)
}

func TestToggleClosedDay(t *testing.T) {
	s := DefaultSettings()
	s.ToggleClosedDay("Sun")
	s.ToggleClosedDay("Sat")
	assert.Equal(t, []string{"Sun", "Sat"}, s.ClosedDays)
	s.ToggleClosedDay("Sun")
	assert.Equal(t, []string{"Sat"}, s.ClosedDays)
}

func TestToggleClosedDayLeavesCopiesAlone(t *testing.T) {
	orig := DefaultSettings()
	orig.ClosedDays = []string{"Sun", "Sat"}

	edited := orig
	edited.ToggleClosedDay("Sun")
	assert.Equal(t, []string{"Sat"}, edited.ClosedDays)
	assert.Equal(t, []string{"Sun", "Sat"}, orig.ClosedDays)
}

func TestBusinessHoursCoversAllDays(t *testing.T) {
	s := DefaultSettings()
	s.ClosedDays = []string{"Sun"}
	s.Timings = Timings{Start: "09:00", End: "13:00", DurationMins: 20}

	hours := BusinessHours(s)
	require.Len(t, hours, 7)
	for i, d := range hours {
		assert.Equal(t, Weekdays[i], d.Day)
		require.NotNil(t, d.IsOpen)
		if d.Day == "Sun" {
			assert.False(t, *d.IsOpen)
			assert.Empty(t, d.Slots)
			continue
		}
		assert.True(t, *d.IsOpen)
		assert.Equal(t, []reserva.TimeRange{{Start: "09:00", End: "13:00", DurationMins: 20}}, d.Slots)
	}

	raw, err := json.Marshal(hours[6])
	require.NoError(t, err)
	assert.JSONEq(t, `{"day":"Sun","isOpen":false,"slots":[]}`, string(raw))
}

func TestPayloadSplitsServices(t *testing.T) {
	s := DefaultSettings()
	s.Profile.Services = "Root Canal,  Braces ,"
	p := PayloadFrom(s)
	assert.Equal(t, []string{"Root Canal", "Braces"}, p.Services)
	assert.Equal(t, DefaultBookingWindowDays, p.BookingWindowDays)
	assert.Len(t, p.BusinessHours, 7)
}

func TestFromUser(t *testing.T) {
	u := &reserva.User{
		VacationMode:       true,
		AllowOnlineBooking: true,
		BufferTimeMins:     10,
		Services:           []string{"Root Canal", "Braces"},
		Pincode:            "560038",
		LogoURL:            "https://cdn/logo.png",
		BusinessHours: []reserva.DayHours{
			{Day: "Mon", IsOpen: boolPtr(false)},
			{Day: "Tue", Slots: []reserva.TimeRange{{Start: "11:00", End: "17:00", DurationMins: 30}}},
			{Day: "Wed", IsOpen: boolPtr(true), Slots: []reserva.TimeRange{{Start: "08:00", End: "09:00", DurationMins: 5}}},
			{Day: "Sun", IsOpen: boolPtr(false)},
		},
	}
	s := FromUser(u)
	assert.True(t, s.VacationMode)
	assert.True(t, s.AllowOnlineBooking)
	assert.False(t, s.RequireConfirmation)
	assert.Equal(t, []string{"Mon", "Sun"}, s.ClosedDays)
	assert.Equal(t, Timings{Start: "11:00", End: "17:00", DurationMins: 30}, s.Timings)
	assert.Equal(t, Rules{BookingWindowDays: 30, BufferTimeMins: 10, MaxAppointmentsPerDay: 50}, s.Rules)
	assert.Equal(t, "Root Canal, Braces", s.Profile.Services)
	assert.Equal(t, "https://cdn/logo.png", s.Branding.LogoURL)

	empty := FromUser(&reserva.User{})
	assert.Equal(t, Timings{Start: "10:00", End: "14:00", DurationMins: 15}, empty.Timings)
	assert.Empty(t, empty.ClosedDays)
}

func TestSubscriptionAndCountdown(t *testing.T) {
	now := time.Date(2025, 1, 27, 12, 0, 0, 0, time.UTC)

	sub := SubscriptionFor(&reserva.User{}, now)
	assert.Equal(t, "STARTER", sub.PlanName)
	assert.Equal(t, "TRIAL", sub.Status)
	assert.Nil(t, sub.TrialEndDate)
	assert.Empty(t, sub.TrialLeft)

	var u reserva.User
	require.NoError(t, json.Unmarshal([]byte(`{"planName":"PRO","trialEndDate":{"$date":"2025-01-30T00:00:00Z"}}`), &u))
	sub = SubscriptionFor(&u, now)
	assert.Equal(t, "PRO", sub.PlanName)
	require.NotNil(t, sub.TrialEndDate)
	assert.Equal(t, "3 days left", sub.TrialLeft)

	assert.Equal(t, "1 days left", TrialCountdown(now.Add(time.Minute), now))
	assert.Equal(t, TrialEnded, TrialCountdown(now, now))
	assert.Equal(t, TrialEnded, TrialCountdown(now.Add(-time.Hour), now))
}

func TestBookingURL(t *testing.T) {
	assert.Equal(t, "https://reserva.in/dr-rao", BookingURL("https://reserva.in/", "dr-rao"))
	assert.Equal(t, "http://localhost:5173/dr-rao", BookingURL("http://localhost:5173", "dr-rao"))
}

type stubBackend struct {
	user    *reserva.User
	meErr   error
	saveErr error
	payload any
}

func (s *stubBackend) Me(_ context.Context, _ string) (*reserva.User, error) {
	return s.user, s.meErr
}

func (s *stubBackend) UpdateProfile(_ context.Context, _ string, payload any) (*reserva.User, error) {
	s.payload = payload
	if s.saveErr != nil {
		return nil, s.saveErr
	}
	return s.user, nil
}

func newService(t *testing.T, b *stubBackend) (*Service, string) {
	t.Helper()
	mgr := session.NewManager(session.NewMemoryStore(), 0, logging.Discard())
	sess, err := mgr.Begin(context.Background(), "tok", nil)
	require.NoError(t, err)
	now := func() time.Time { return time.Date(2025, 1, 27, 12, 0, 0, 0, time.UTC) }
	return NewService(b, mgr, "https://reserva.in", logging.Discard(), WithClock(now)), sess.ID
}

func TestServiceLoad(t *testing.T) {
	b := &stubBackend{user: &reserva.User{Slug: "dr-rao", ProfileCompleted: true}}
	svc, id := newService(t, b)

	view, err := svc.Load(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "https://reserva.in/dr-rao", view.BookingURL)
	assert.Equal(t, "STARTER", view.Subscription.PlanName)

	_, err = svc.Load(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.ErrorIs(t, err, session.ErrNotFound)

	b.user.ProfileCompleted = false
	_, err = svc.Load(context.Background(), id)
	assert.ErrorIs(t, err, ErrProfileIncomplete)

	b.meErr = &reserva.APIError{Status: http.StatusUnauthorized}
	_, err = svc.Load(context.Background(), id)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestServiceSave(t *testing.T) {
	b := &stubBackend{user: &reserva.User{Slug: "dr-rao", ProfileCompleted: true, VacationMode: true}}
	svc, id := newService(t, b)

	s := DefaultSettings()
	s.VacationMode = true
	view, err := svc.Save(context.Background(), id, s)
	require.NoError(t, err)
	assert.True(t, view.Settings.VacationMode)
	require.IsType(t, Payload{}, b.payload)
	assert.True(t, b.payload.(Payload).VacationMode)

	b.payload = nil
	bad := DefaultSettings()
	bad.Rules.MaxAppointmentsPerDay = 0
	_, err = svc.Save(context.Background(), id, bad)
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
	assert.Nil(t, b.payload)

	b.saveErr = errors.New("boom")
	_, err = svc.Save(context.Background(), id, s)
	var saveErr *SaveError
	require.True(t, errors.As(err, &saveErr))
	assert.Equal(t, MsgSaveFailed, saveErr.Message)
}
