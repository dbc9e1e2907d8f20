// Package onboarding validates and saves the profile a doctor completes
// after signing up.
package onboarding

import "strings"

// Field names, also the JSON keys of Form.
const (
	FieldPhone    = "phone"
	FieldWhatsapp = "whatsappNumber"
	FieldAddress  = "address"
	FieldCity     = "city"
	FieldPincode  = "pincode"
	FieldDuration = "defaultSlotDurationMins"
	FieldServices = "services"
)

// Fields lists every form field in display order.
var Fields = []string{FieldPhone, FieldWhatsapp, FieldAddress, FieldCity, FieldPincode, FieldDuration, FieldServices}

// SlotDurations are the allowed default appointment lengths in minutes.
var SlotDurations = []int{10, 15, 20, 30}

const (
	DefaultSlotDuration = 15
	maxServicesLen      = 200
	minAddressLen       = 8
	minCityLen          = 2
)

// Form is the onboarding form as typed.
type Form struct {
	Phone                   string `json:"phone"`
	WhatsappNumber          string `json:"whatsappNumber"`
	Address                 string `json:"address"`
	City                    string `json:"city"`
	Pincode                 string `json:"pincode"`
	DefaultSlotDurationMins int    `json:"defaultSlotDurationMins"`
	Services                string `json:"services"`
}

// NewForm returns an empty form with the default slot duration.
func NewForm() Form {
	return Form{DefaultSlotDurationMins: DefaultSlotDuration}
}

// Errors maps field names to messages.
type Errors map[string]string

func (e Errors) Empty() bool { return len(e) == 0 }

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, f := range Fields {
		if msg, ok := e[f]; ok {
			parts = append(parts, f+": "+msg)
		}
	}
	return "onboarding: invalid profile: " + strings.Join(parts, "; ")
}

// Validate checks every field regardless of whether it was touched.
func Validate(f Form) Errors {
	errs := Errors{}

	switch phone := digits(f.Phone); {
	case phone == "":
		errs[FieldPhone] = "Phone number is required"
	case len(phone) != 10:
		errs[FieldPhone] = "Phone number must be 10 digits"
	}

	if f.WhatsappNumber != "" && len(digits(f.WhatsappNumber)) != 10 {
		errs[FieldWhatsapp] = "WhatsApp number must be 10 digits"
	}

	switch address := strings.TrimSpace(f.Address); {
	case address == "":
		errs[FieldAddress] = "Clinic address is required"
	case len([]rune(address)) < minAddressLen:
		errs[FieldAddress] = "Address looks too short"
	}

	switch city := strings.TrimSpace(f.City); {
	case city == "":
		errs[FieldCity] = "City is required"
	case len([]rune(city)) < minCityLen:
		errs[FieldCity] = "Enter a valid city name"
	}

	switch pin := digits(f.Pincode); {
	case pin == "":
		errs[FieldPincode] = "Pincode is required"
	case len(pin) != 6:
		errs[FieldPincode] = "Pincode must be 6 digits"
	}

	if !allowedDuration(f.DefaultSlotDurationMins) {
		errs[FieldDuration] = "Select a valid slot duration"
	}

	if len([]rune(f.Services)) > maxServicesLen {
		errs[FieldServices] = "Services text is too long"
	}
	return errs
}

// Touched records which fields the doctor has interacted with.
type Touched map[string]bool

// TouchAll marks every field, as a submit attempt does.
func (t Touched) TouchAll() {
	for _, f := range Fields {
		t[f] = true
	}
}

// Visible filters errs down to touched fields.
func Visible(errs Errors, touched Touched) Errors {
	out := Errors{}
	for field, msg := range errs {
		if touched[field] {
			out[field] = msg
		}
	}
	return out
}

// Payload is the normalized body sent to the backend.
type Payload struct {
	Phone                   string   `json:"phone"`
	WhatsappNumber          string   `json:"whatsappNumber"`
	Address                 string   `json:"address"`
	City                    string   `json:"city"`
	Pincode                 string   `json:"pincode"`
	DefaultSlotDurationMins int      `json:"defaultSlotDurationMins"`
	Services                []string `json:"services"`
}

// PayloadFrom strips non-digits from numbers and splits services on commas.
func PayloadFrom(f Form) Payload {
	return Payload{
		Phone:                   digits(f.Phone),
		WhatsappNumber:          digits(f.WhatsappNumber),
		Address:                 strings.TrimSpace(f.Address),
		City:                    strings.TrimSpace(f.City),
		Pincode:                 digits(f.Pincode),
		DefaultSlotDurationMins: f.DefaultSlotDurationMins,
		Services:                SplitList(f.Services),
	}
}

// SplitList turns "Root Canal, Braces" into ["Root Canal", "Braces"],
// dropping blanks. An empty input gives an empty, non-nil slice.
func SplitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func digits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

func allowedDuration(mins int) bool {
	for _, d := range SlotDurations {
		if d == mins {
			return true
		}
	}
	return false
}

