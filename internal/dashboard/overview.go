package dashboard

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/wolfman30/reserva-portal/internal/reserva"
)

const (
	DefaultPlan   = "STARTER"
	DefaultStatus = "TRIAL"
	TrialEnded    = "Trial ended"
)

// Subscription is the plan card on the overview tab.
type Subscription struct {
	PlanName     string     `json:"planName"`
	Status       string     `json:"subscriptionStatus"`
	TrialEndDate *time.Time `json:"trialEndDate,omitempty"`
	TrialLeft    string     `json:"trialLeft,omitempty"`
}

// SubscriptionFor fills plan defaults and the trial countdown at now.
func SubscriptionFor(u *reserva.User, now time.Time) Subscription {
	sub := Subscription{PlanName: DefaultPlan, Status: DefaultStatus}
	if u == nil {
		return sub
	}
	if u.PlanName != "" {
		sub.PlanName = u.PlanName
	}
	if u.SubscriptionStatus != "" {
		sub.Status = u.SubscriptionStatus
	}
	if !u.TrialEndDate.IsZero() {
		end := u.TrialEndDate.Time
		sub.TrialEndDate = &end
		sub.TrialLeft = TrialCountdown(end, now)
	}
	return sub
}

// TrialCountdown renders the days left, rounded up, or TrialEnded.
func TrialCountdown(end, now time.Time) string {
	diff := end.Sub(now)
	if diff <= 0 {
		return TrialEnded
	}
	days := int(math.Ceil(diff.Hours() / 24))
	return fmt.Sprintf("%d days left", days)
}

// BookingURL is the public page patients open, origin + "/" + slug.
func BookingURL(origin, slug string) string {
	return strings.TrimRight(origin, "/") + "/" + slug
}

// View is the whole dashboard.
type View struct {
	User         *reserva.User `json:"user"`
	Settings     Settings      `json:"settings"`
	Subscription Subscription  `json:"subscription"`
	BookingURL   string        `json:"bookingUrl"`
}
