package handlers

import (
	"net/http"

	"github.com/go-chi/render"
)

type errorResponse struct {
	Error       string            `json:"error"`
	FieldErrors map[string]string `json:"fieldErrors,omitempty"`
	Redirect    string            `json:"redirect,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	render.Status(r, status)
	render.JSON(w, r, payload)
}

func jsonError(w http.ResponseWriter, r *http.Request, msg string, status int) {
	writeJSON(w, r, status, errorResponse{Error: msg})
}

// decodeJSON reads the request body into v and answers 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := render.DecodeJSON(r.Body, v); err != nil {
		jsonError(w, r, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}
