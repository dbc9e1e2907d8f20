// Package audit records public booking attempts. Patient details are never
// stored, only what was asked for and how it ended.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Outcome of a booking attempt.
type Outcome string

const (
	OutcomeAccepted Outcome = "accepted"
	OutcomeRejected Outcome = "rejected"
	OutcomeInvalid  Outcome = "invalid"
	OutcomeConflict Outcome = "slot_unavailable"
)

// BookingEvent is one immutable booking attempt record.
type BookingEvent struct {
	ID           string    `json:"id"`
	Slug         string    `json:"slug"`
	Date         string    `json:"date"`
	Slot         string    `json:"slot"`
	Outcome      Outcome   `json:"outcome"`
	ErrorMessage string    `json:"error_message,omitempty"`
	RequestID    string    `json:"request_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Service writes and reads booking_request_events.
type Service struct {
	db *sql.DB
}

func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

// LogAttempt records a booking attempt.
func (s *Service) LogAttempt(ctx context.Context, event BookingEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO booking_request_events (
			id, slug, booking_date, slot, outcome, error_message, request_id, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(ctx, query,
		event.ID,
		event.Slug,
		event.Date,
		event.Slot,
		event.Outcome,
		nullString(event.ErrorMessage),
		nullString(event.RequestID),
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("audit: failed to log booking event: %w", err)
	}
	return nil
}

// Filter narrows QueryAttempts. Slug is required.
type Filter struct {
	Slug      string
	Outcome   Outcome
	StartTime time.Time
	EndTime   time.Time
	Limit     int
}

// QueryAttempts lists a clinic's booking attempts, newest first.
func (s *Service) QueryAttempts(ctx context.Context, filter Filter) ([]BookingEvent, error) {
	query := `
		SELECT id, slug, booking_date, slot, outcome, error_message, request_id, created_at
		FROM booking_request_events
		WHERE slug = $1
	`
	args := []any{filter.Slug}
	argIdx := 2

	if filter.Outcome != "" {
		query += fmt.Sprintf(" AND outcome = $%d", argIdx)
		args = append(args, filter.Outcome)
		argIdx++
	}
	if !filter.StartTime.IsZero() {
		query += fmt.Sprintf(" AND created_at >= $%d", argIdx)
		args = append(args, filter.StartTime)
		argIdx++
	}
	if !filter.EndTime.IsZero() {
		query += fmt.Sprintf(" AND created_at <= $%d", argIdx)
		args = append(args, filter.EndTime)
	}

	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("audit: failed to query booking events: %w", err)
	}
	defer rows.Close()

	var events []BookingEvent
	for rows.Next() {
		var e BookingEvent
		var errMsg, reqID sql.NullString
		if err := rows.Scan(&e.ID, &e.Slug, &e.Date, &e.Slot, &e.Outcome, &errMsg, &reqID, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("audit: failed to scan booking event: %w", err)
		}
		e.ErrorMessage = errMsg.String
		e.RequestID = reqID.String
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("audit: failed to read booking events: %w", err)
	}
	return events, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
