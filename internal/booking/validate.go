package booking

import (
	"regexp"
	"strings"
)

var (
	phonePattern = regexp.MustCompile(`^[6-9]\d{9}$`)
	emailPattern = regexp.MustCompile(`^[^\s\v\p{Z}\x{FEFF}@]+@[^\s\v\p{Z}\x{FEFF}@]+\.[^\s\v\p{Z}\x{FEFF}@]+$`)
)

// ValidName reports whether the trimmed name is non-empty.
func ValidName(name string) bool {
	return trimmed(name) != ""
}

// ValidPhone accepts a 10-digit Indian mobile number starting with 6-9.
func ValidPhone(phone string) bool {
	return phonePattern.MatchString(trimmed(phone))
}

// ValidEmail accepts a permissive local@domain.tld shape.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(trimmed(email))
}

// FieldErrors holds inline hints keyed by form field.
type FieldErrors map[string]string

// Empty reports whether there are no errors.
func (f FieldErrors) Empty() bool { return len(f) == 0 }

// Error joins the messages so FieldErrors can travel as an error.
func (f FieldErrors) Error() string {
	parts := make([]string, 0, len(f))
	for _, key := range []string{"patientName", "phone", "email", "timeSlot"} {
		if msg, ok := f[key]; ok {
			parts = append(parts, key+": "+msg)
		}
	}
	return "booking: invalid request: " + strings.Join(parts, "; ")
}

// InlineErrors returns the hints to render under each field. Untouched empty
// fields produce nothing; only populated-but-invalid values do.
func InlineErrors(d PatientDetails) FieldErrors {
	errs := FieldErrors{}
	if trimmed(d.Phone) != "" && !ValidPhone(d.Phone) {
		errs["phone"] = MsgInvalidPhone
	}
	if trimmed(d.Email) != "" && !ValidEmail(d.Email) {
		errs["email"] = MsgInvalidEmail
	}
	return errs
}

// Validate is the strict submit-time check, empty fields included.
func Validate(d PatientDetails) FieldErrors {
	errs := FieldErrors{}
	if !ValidName(d.Name) {
		errs["patientName"] = MsgNameRequired
	}
	switch {
	case trimmed(d.Phone) == "":
		errs["phone"] = MsgPhoneRequired
	case !ValidPhone(d.Phone):
		errs["phone"] = MsgInvalidPhone
	}
	switch {
	case trimmed(d.Email) == "":
		errs["email"] = MsgEmailRequired
	case !ValidEmail(d.Email):
		errs["email"] = MsgInvalidEmail
	}
	return errs
}

// Gate is the input of the aggregate submit check.
type Gate struct {
	SelectedSlot string
	Patient      PatientDetails
	Submitting   bool
}

// CanSubmit holds when a slot is chosen, every field is valid and nothing is in flight.
func (g Gate) CanSubmit() bool {
	return g.SelectedSlot != "" &&
		ValidName(g.Patient.Name) &&
		ValidPhone(g.Patient.Phone) &&
		ValidEmail(g.Patient.Email) &&
		!g.Submitting
}
