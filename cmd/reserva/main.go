// Command reserva drives the public booking workflow from a terminal: list a
// clinic's slots for a date, send a booking request, or walk the demo wizard.
//
// Usage:
//
//	reserva slots <slug> [--date=YYYY-MM-DD]
//	reserva book <slug> --date=YYYY-MM-DD --slot="10:00 AM" --name=... --phone=... --email=...
//	reserva demo --doctor=1 --date=28 --time="10:00 AM"
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/joho/godotenv"

	"github.com/wolfman30/reserva-portal/internal/booking"
	appconfig "github.com/wolfman30/reserva-portal/internal/config"
	"github.com/wolfman30/reserva-portal/internal/reserva"
	"github.com/wolfman30/reserva-portal/internal/wizard"
	"github.com/wolfman30/reserva-portal/pkg/logging"
)

var (
	okColor   = color.New(color.FgGreen, color.Bold)
	warnColor = color.New(color.FgYellow)
	errColor  = color.New(color.FgRed, color.Bold)
	dimColor  = color.New(color.Faint)
)

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)

	backend := reserva.NewClient(cfg.APIBaseURL, logger.Component("reserva"), reserva.WithTimeout(cfg.HTTPClientTimeout))
	opts := []booking.Option{
		booking.WithLogger(logger),
		booking.WithLocation(cfg.Location()),
	}
	if err := run(context.Background(), os.Args[1:], backend, os.Stdout, opts...); err != nil {
		errColor.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var errUsage = errors.New("usage: reserva <slots|book|demo> [flags]")

func run(ctx context.Context, args []string, backend booking.Backend, out io.Writer, opts ...booking.Option) error {
	if len(args) == 0 {
		return errUsage
	}
	switch args[0] {
	case "slots":
		return runSlots(ctx, args[1:], backend, out, opts)
	case "book":
		return runBook(ctx, args[1:], backend, out, opts)
	case "demo":
		return runDemo(args[1:], out)
	default:
		return fmt.Errorf("unknown command %q: %w", args[0], errUsage)
	}
}

// splitSlug takes the leading positional slug so flags may follow it.
func splitSlug(args []string) (string, []string, error) {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return "", nil, errors.New("a clinic slug is required")
	}
	return args[0], args[1:], nil
}

func runSlots(ctx context.Context, args []string, backend booking.Backend, out io.Writer, opts []booking.Option) error {
	slug, rest, err := splitSlug(args)
	if err != nil {
		return err
	}
	fs := flag.NewFlagSet("slots", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	date := fs.String("date", "", "appointment date (YYYY-MM-DD), defaults to today")
	if err := fs.Parse(rest); err != nil {
		return err
	}

	page := booking.NewPage(backend, opts...)
	if err := page.OpenAt(ctx, slug, *date); err != nil {
		return err
	}
	printAvailability(out, page.View())
	return nil
}

func runBook(ctx context.Context, args []string, backend booking.Backend, out io.Writer, opts []booking.Option) error {
	slug, rest, err := splitSlug(args)
	if err != nil {
		return err
	}
	fs := flag.NewFlagSet("book", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	date := fs.String("date", "", "appointment date (YYYY-MM-DD)")
	slot := fs.String("slot", "", "slot label, e.g. \"10:00 AM\"")
	name := fs.String("name", "", "patient name")
	phone := fs.String("phone", "", "10 digit mobile number")
	email := fs.String("email", "", "patient email")
	if err := fs.Parse(rest); err != nil {
		return err
	}

	page := booking.NewPage(backend, opts...)
	if err := page.Load(ctx, slug, *date); err != nil {
		return err
	}
	if requested, _ := booking.ParseDate(*date); requested != "" && requested != page.View().Date {
		return errors.New(booking.MsgDatePassed)
	}
	if err := page.SelectSlot(*slot); err != nil {
		printAvailability(out, page.View())
		return fmt.Errorf("%s: %w", booking.MsgSlotTaken, err)
	}
	page.SetPatient(booking.PatientDetails{Name: *name, Phone: *phone, Email: *email})
	if errs := booking.Validate(page.View().Patient); !errs.Empty() {
		return errs
	}

	if err := page.Submit(ctx); err != nil {
		if msg, ok := booking.IsSubmitError(err); ok {
			return errors.New(msg)
		}
		return err
	}
	okColor.Fprintln(out, booking.MsgRequestSent)
	fmt.Fprintln(out, booking.MsgRequestSentDetail)
	dimColor.Fprintln(out, booking.MsgPendingDisclaimer)
	return nil
}

func printAvailability(out io.Writer, v booking.View) {
	header := v.DateLabel
	if v.Doctor != nil {
		header = fmt.Sprintf("%s (%s) - %s", v.Doctor.Name, v.Doctor.ClinicName, v.DateLabel)
	}
	fmt.Fprintln(out, header)
	if v.Notice != nil {
		warnColor.Fprintln(out, v.Notice.Title)
		if v.Notice.Detail != "" {
			dimColor.Fprintln(out, v.Notice.Detail)
		}
		return
	}
	for _, s := range v.Slots {
		if contains(v.Booked, s) {
			dimColor.Fprintf(out, "  %s  booked\n", s)
			continue
		}
		okColor.Fprintf(out, "  %s\n", s)
	}
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func runDemo(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("demo", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	doctor := fs.Int("doctor", 0, "doctor id")
	date := fs.String("date", "", "day of month")
	slot := fs.String("time", "", "time slot")
	if err := fs.Parse(args); err != nil {
		return err
	}

	w := wizard.New(wizard.DemoCatalog())
	if *doctor == 0 {
		printCatalog(out, w.Catalog())
		return nil
	}
	steps := []func() error{
		func() error { return w.SelectDoctor(*doctor) },
		w.Next,
		func() error { return w.SelectDate(*date) },
		w.Next,
		func() error { return w.SelectTime(*slot) },
		w.Next,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return fmt.Errorf("demo stopped at step %s: %w", w.Step(), err)
		}
	}
	summary, err := w.Finish()
	if err != nil {
		return err
	}
	okColor.Fprintln(out, "Booking confirmed (demo)")
	fmt.Fprintf(out, "  %s, %s\n  %s %s at %s\n",
		summary.Doctor.Name, summary.Doctor.Specialty, summary.Date.Day, summary.Date.Date, summary.Time)
	return nil
}

func printCatalog(out io.Writer, c wizard.Catalog) {
	fmt.Fprintln(out, "Doctors:")
	for _, d := range c.Doctors {
		fmt.Fprintf(out, "  %d  %s (%s)\n", d.ID, d.Name, d.Specialty)
	}
	fmt.Fprintln(out, "Dates:")
	for _, d := range c.Dates {
		if !d.Available {
			dimColor.Fprintf(out, "  %s %s  unavailable\n", d.Day, d.Date)
			continue
		}
		fmt.Fprintf(out, "  %s %s\n", d.Day, d.Date)
	}
	fmt.Fprintln(out, "Times:", strings.Join(c.TimeSlots, ", "))
}
