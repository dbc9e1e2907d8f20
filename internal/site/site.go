// Package site holds the landing page content and the navbar scroll spy.
package site

// ScrollOffset is subtracted from a section's top so a link activates just
// before its section reaches the fixed navbar.
const ScrollOffset = 120

// NoSection is the active link when no section is in view.
const NoSection = "#"

type NavLink struct {
	Label string `json:"label"`
	Href  string `json:"href"`
}

type Plan struct {
	Name        string   `json:"name"`
	Price       string   `json:"price"`
	Period      string   `json:"period"`
	Description string   `json:"description"`
	Features    []string `json:"features"`
	Popular     bool     `json:"popular"`
	ButtonText  string   `json:"buttonText"`
}

type FAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Content is everything the landing page renders.
type Content struct {
	NavLinks []NavLink `json:"navLinks"`
	Plans    []Plan    `json:"plans"`
	FAQs     []FAQ     `json:"faqs"`
}

// Landing returns the landing page content.
func Landing() Content {
	return Content{
		NavLinks: []NavLink{
			{Label: "Features", Href: "#features"},
			{Label: "How it Works", Href: "#how-it-works"},
			{Label: "Pricing", Href: "#pricing"},
			{Label: "Testimonials", Href: "#testimonials"},
			{Label: "FAQ", Href: "#faq"},
		},
		Plans: []Plan{
			{
				Name:        "Starter",
				Price:       "₹0",
				Period:      "14-day trial",
				Description: "Try Reserva free for your clinic",
				Features: []string{
					"Online booking page + link",
					"Up to 50 bookings / month",
					"Email confirmations",
					"Basic dashboard",
					"1 doctor account",
					"Basic support",
				},
				ButtonText: "Start Free Trial",
			},
			{
				Name:        "Pro",
				Price:       "₹999",
				Period:      "/month",
				Description: "Best for single doctor clinics",
				Features: []string{
					"Unlimited bookings",
					"WhatsApp + Email alerts",
					"Auto slot generation",
					"QR code booking",
					"Patient details & notes",
					"No-show reduction tools",
					"Priority support",
				},
				Popular:    true,
				ButtonText: "Choose Pro",
			},
			{
				Name:        "Clinic",
				Price:       "₹2,499",
				Period:      "/month",
				Description: "Perfect for multi-doctor clinics",
				Features: []string{
					"Everything in Pro",
					"Up to 10 doctors",
					"Team schedule calendar",
					"Advanced analytics",
					"Custom branding",
					"Multiple clinic staff access",
					"Dedicated support",
				},
				ButtonText: "Contact Sales",
			},
		},
		FAQs: []FAQ{
			{
				Question: "Can patients book from their mobile phones?",
				Answer:   "Absolutely! Our booking page is fully responsive and works seamlessly on smartphones, tablets, and desktops. Patients can book appointments in just a few taps.",
			},
			{
				Question: "How does slot generation work?",
				Answer:   "You set your working hours and appointment duration (15, 20, or 30 minutes), and our system automatically generates available time slots. It also accounts for breaks and lunch hours you configure.",
			},
			{
				Question: "Can I disable booking temporarily (Vacation Mode)?",
				Answer:   "Yes! You can enable Vacation Mode to block all bookings during specific dates. You can also block specific days or hours without affecting your regular schedule.",
			},
			{
				Question: "Do you support WhatsApp reminders?",
				Answer:   "Yes, our Pro and Clinic plans include automated WhatsApp reminders. Patients receive a booking confirmation and a reminder 24 hours before their appointment, reducing no-shows significantly.",
			},
			{
				Question: "Can I manage multiple doctors in one clinic?",
				Answer:   "With our Clinic plan, you can add up to 10 doctors, each with their own schedule and booking page. The team calendar view lets you see everyone's appointments at a glance.",
			},
			{
				Question: "Is patient data secure?",
				Answer:   "Security is our top priority. All data is encrypted in transit and at rest. We're fully GDPR compliant and offer HIPAA compliance on our Clinic plan. Your patient data is never shared with third parties.",
			},
		},
	}
}

// Section is a rendered page section's geometry in pixels.
type Section struct {
	ID     string `json:"id"`
	Top    int    `json:"top"`
	Height int    `json:"height"`
}

// ActiveSection returns "#id" of the section whose window
// [top-ScrollOffset, top-ScrollOffset+height) contains scrollY. When windows
// overlap the later section wins. NoSection is returned otherwise.
func ActiveSection(sections []Section, scrollY int) string {
	current := NoSection
	for _, s := range sections {
		top := s.Top - ScrollOffset
		if scrollY >= top && scrollY < top+s.Height {
			current = "#" + s.ID
		}
	}
	return current
}
