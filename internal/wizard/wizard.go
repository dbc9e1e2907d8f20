// Package wizard is the four-step booking demo shown on the landing page:
// pick a doctor, a date, a time, then confirm.
package wizard

import (
	"errors"
	"fmt"
)

type Step int

const (
	StepDoctor Step = iota + 1
	StepDate
	StepTime
	StepConfirm
)

func (s Step) String() string {
	switch s {
	case StepDoctor:
		return "doctor"
	case StepDate:
		return "date"
	case StepTime:
		return "time"
	case StepConfirm:
		return "confirm"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

var (
	ErrUnknownChoice   = errors.New("wizard: unknown choice")
	ErrDateUnavailable = errors.New("wizard: date is not available")
	ErrCannotAdvance   = errors.New("wizard: current step is incomplete")
	ErrNotConfirming   = errors.New("wizard: not on the confirm step")
)

type Doctor struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Specialty string `json:"specialty"`
	Avatar    string `json:"avatar"`
}

type Date struct {
	Day       string `json:"day"`
	Date      string `json:"date"`
	Available bool   `json:"available"`
}

// Catalog is the fixed demo data.
type Catalog struct {
	Doctors   []Doctor `json:"doctors"`
	Dates     []Date   `json:"dates"`
	TimeSlots []string `json:"timeSlots"`
}

// DemoCatalog returns the landing page demo data.
func DemoCatalog() Catalog {
	return Catalog{
		Doctors: []Doctor{
			{ID: 1, Name: "Dr. Sarah Mitchell", Specialty: "General Dentist", Avatar: "SM"},
			{ID: 2, Name: "Dr. James Rodriguez", Specialty: "Orthodontist", Avatar: "JR"},
		},
		Dates: []Date{
			{Day: "Mon", Date: "27", Available: true},
			{Day: "Tue", Date: "28", Available: true},
			{Day: "Wed", Date: "29", Available: false},
			{Day: "Thu", Date: "30", Available: true},
			{Day: "Fri", Date: "31", Available: true},
		},
		TimeSlots: []string{
			"09:00 AM", "09:30 AM", "10:00 AM", "10:30 AM",
			"11:00 AM", "02:00 PM", "02:30 PM", "03:00 PM",
		},
	}
}

// Summary is what the confirm step shows.
type Summary struct {
	Doctor Doctor `json:"doctor"`
	Date   Date   `json:"date"`
	Time   string `json:"time"`
}

// Wizard holds one run through the demo. Not safe for concurrent use.
type Wizard struct {
	catalog Catalog
	step    Step
	doctor  *Doctor
	date    *Date
	time    string
}

func New(catalog Catalog) *Wizard {
	return &Wizard{catalog: catalog, step: StepDoctor}
}

func (w *Wizard) Step() Step { return w.step }

func (w *Wizard) Catalog() Catalog { return w.catalog }

func (w *Wizard) SelectDoctor(id int) error {
	for i := range w.catalog.Doctors {
		if w.catalog.Doctors[i].ID == id {
			d := w.catalog.Doctors[i]
			w.doctor = &d
			return nil
		}
	}
	return fmt.Errorf("%w: doctor %d", ErrUnknownChoice, id)
}

// SelectDate picks a date by its day-of-month label. Unavailable dates are refused.
func (w *Wizard) SelectDate(date string) error {
	for i := range w.catalog.Dates {
		if w.catalog.Dates[i].Date == date {
			d := w.catalog.Dates[i]
			if !d.Available {
				return ErrDateUnavailable
			}
			w.date = &d
			return nil
		}
	}
	return fmt.Errorf("%w: date %q", ErrUnknownChoice, date)
}

func (w *Wizard) SelectTime(slot string) error {
	for _, s := range w.catalog.TimeSlots {
		if s == slot {
			w.time = slot
			return nil
		}
	}
	return fmt.Errorf("%w: time %q", ErrUnknownChoice, slot)
}

// CanAdvance reports whether the current step's choice has been made.
// The confirm step never advances.
func (w *Wizard) CanAdvance() bool {
	switch w.step {
	case StepDoctor:
		return w.doctor != nil
	case StepDate:
		return w.date != nil
	case StepTime:
		return w.time != ""
	default:
		return false
	}
}

func (w *Wizard) Next() error {
	if !w.CanAdvance() {
		return ErrCannotAdvance
	}
	w.step++
	return nil
}

// Back moves one step back and reports whether it moved.
func (w *Wizard) Back() bool {
	if w.step <= StepDoctor {
		return false
	}
	w.step--
	return true
}

// Reset clears every choice and returns to the first step.
func (w *Wizard) Reset() {
	w.step = StepDoctor
	w.doctor = nil
	w.date = nil
	w.time = ""
}

// Finish returns the summary on the confirm step and resets the wizard.
func (w *Wizard) Finish() (Summary, error) {
	if w.step != StepConfirm || w.doctor == nil || w.date == nil || w.time == "" {
		return Summary{}, ErrNotConfirming
	}
	s := Summary{Doctor: *w.doctor, Date: *w.date, Time: w.time}
	w.Reset()
	return s, nil
}
