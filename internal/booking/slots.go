package booking

// Available returns slots minus booked, keeping the backend's order.
// Membership decides, not position.
func Available(slots, booked []string) []string {
	taken := make(map[string]struct{}, len(booked))
	for _, b := range booked {
		taken[b] = struct{}{}
	}
	out := make([]string, 0, len(slots))
	for _, s := range slots {
		if _, ok := taken[s]; !ok {
			out = append(out, s)
		}
	}
	return out
}

// Selectable is the set a patient may pick from. A closed day offers nothing
// whatever the slot list says.
func (a Availability) Selectable() []string {
	if a.Closed {
		return []string{}
	}
	return Available(a.Slots, a.Booked)
}

// CanSelect reports whether label is in the selectable set.
func (a Availability) CanSelect(label string) bool {
	if label == "" {
		return false
	}
	for _, s := range a.Selectable() {
		if s == label {
			return true
		}
	}
	return false
}

// IsBooked reports whether label is already taken.
func (a Availability) IsBooked(label string) bool {
	for _, b := range a.Booked {
		if b == label {
			return true
		}
	}
	return false
}

// Notice is the empty-state message shown instead of the slot grid.
type Notice struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

// Notice returns nil while slots should be shown.
func (a Availability) Notice() *Notice {
	switch {
	case a.Closed:
		detail := a.Message
		if detail == "" {
			detail = MsgDoctorUnavailable
		}
		return &Notice{Title: MsgClinicClosed, Detail: detail}
	case len(a.Slots) == 0:
		return &Notice{Title: MsgNoSlots, Detail: MsgTryAnotherDate}
	default:
		return nil
	}
}
