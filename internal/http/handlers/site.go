package handlers

import (
	"errors"
	"net/http"

	"github.com/wolfman30/reserva-portal/internal/site"
	"github.com/wolfman30/reserva-portal/internal/wizard"
)

// GetSite returns the landing page content and the demo catalog.
// GET /api/site
func GetSite(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{
		"site": site.Landing(),
		"demo": wizard.DemoCatalog(),
	})
}

type demoRequest struct {
	DoctorID int    `json:"doctorId"`
	Date     string `json:"date"`
	Time     string `json:"time"`
}

// ConfirmDemo walks the demo wizard with the posted choices and returns the
// confirm-step summary.
// POST /api/demo/confirm
func ConfirmDemo(w http.ResponseWriter, r *http.Request) {
	var req demoRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	wz := wizard.New(wizard.DemoCatalog())
	steps := []func() error{
		func() error { return wz.SelectDoctor(req.DoctorID) },
		wz.Next,
		func() error { return wz.SelectDate(req.Date) },
		wz.Next,
		func() error { return wz.SelectTime(req.Time) },
		wz.Next,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			msg := "Pick a doctor, an available date and a time"
			if errors.Is(err, wizard.ErrDateUnavailable) {
				msg = "That date is not available"
			}
			writeJSON(w, r, http.StatusUnprocessableEntity, errorResponse{Error: msg})
			return
		}
	}
	summary, err := wz.Finish()
	if err != nil {
		jsonError(w, r, "Demo is incomplete", http.StatusUnprocessableEntity)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"summary": summary})
}
