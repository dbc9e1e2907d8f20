// Package reserva is an HTTP client for the Reserva backend API: public
// booking lookups, doctor authentication and doctor profile management.
package reserva

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/reserva-portal/pkg/logging"
)

const (
	defaultBaseURL = "http://localhost:4000/api"
	defaultTimeout = 15 * time.Second
	maxErrorBody   = 4 << 10
)

var tracer = otel.Tracer("reserva.internal.reserva.client")

// Observer receives the latency and outcome of every backend call.
type Observer interface {
	ObserveBackend(operation string, seconds float64, ok bool)
}

// Client talks to the Reserva backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
	observer   Observer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient swaps the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout of the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithObserver reports call latencies, typically to Prometheus.
func WithObserver(o Observer) Option {
	return func(c *Client) {
		c.observer = o
	}
}

// NewClient creates a backend client rooted at baseURL (e.g. http://localhost:4000/api).
func NewClient(baseURL string, logger *logging.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Doctor returns the display metadata behind a public booking slug.
func (c *Client) Doctor(ctx context.Context, slug string) (*Doctor, error) {
	var out struct {
		Doctor *Doctor `json:"doctor"`
	}
	if err := c.do(ctx, "doctor", http.MethodGet, "/public/"+url.PathEscape(slug), "", nil, &out); err != nil {
		return nil, err
	}
	if out.Doctor == nil {
		return nil, &APIError{Status: http.StatusNotFound, Message: "Doctor not found"}
	}
	return out.Doctor, nil
}

// Slots returns the slot labels and booked subset for one date (YYYY-MM-DD).
func (c *Client) Slots(ctx context.Context, slug, date string) (*Slots, error) {
	path := "/public/" + url.PathEscape(slug) + "/slots?" + url.Values{"date": {date}}.Encode()
	var out Slots
	if err := c.do(ctx, "slots", http.MethodGet, path, "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Book submits a pending booking request. The backend stays authoritative on
// whether the slot is still free.
func (c *Client) Book(ctx context.Context, slug string, payload BookingPayload) error {
	return c.do(ctx, "book", http.MethodPost, "/public/"+url.PathEscape(slug)+"/book", "", payload, nil)
}

// Login exchanges credentials for a token and the doctor's account.
func (c *Client) Login(ctx context.Context, creds Credentials) (*AuthResult, error) {
	var out AuthResult
	if err := c.do(ctx, "login", http.MethodPost, "/auth/login", "", creds, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Signup creates a doctor account and returns its first token.
func (c *Client) Signup(ctx context.Context, req SignupRequest) (*AuthResult, error) {
	var out AuthResult
	if err := c.do(ctx, "signup", http.MethodPost, "/auth/signup", "", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ForgotPassword asks the backend to mail a reset link and returns its message.
func (c *Client) ForgotPassword(ctx context.Context, email string) (string, error) {
	var out struct {
		Message string `json:"message"`
	}
	body := map[string]string{"email": email}
	if err := c.do(ctx, "forgot_password", http.MethodPost, "/auth/forgot-password", "", body, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// Me loads the signed-in doctor.
func (c *Client) Me(ctx context.Context, token string) (*User, error) {
	var out struct {
		User *User `json:"user"`
	}
	if err := c.do(ctx, "me", http.MethodGet, "/doctor/me", token, nil, &out); err != nil {
		return nil, err
	}
	if out.User == nil {
		return nil, fmt.Errorf("reserva: me: empty user in response")
	}
	return out.User, nil
}

// UpdateProfile saves a profile or settings payload and returns the updated account.
func (c *Client) UpdateProfile(ctx context.Context, token string, payload any) (*User, error) {
	var out struct {
		User *User `json:"user"`
	}
	if err := c.do(ctx, "update_profile", http.MethodPut, "/doctor/profile", token, payload, &out); err != nil {
		return nil, err
	}
	if out.User == nil {
		return nil, fmt.Errorf("reserva: update profile: empty user in response")
	}
	return out.User, nil
}

func (c *Client) do(ctx context.Context, operation, method, path, token string, body, result any) (err error) {
	ctx, span := tracer.Start(ctx, "reserva."+operation, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("http.method", method),
		attribute.String("reserva.operation", operation),
	)

	start := time.Now()
	defer func() {
		if c.observer != nil {
			c.observer.ObserveBackend(operation, time.Since(start).Seconds(), err == nil)
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("reserva: %s: marshal request: %w", operation, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("reserva: %s: create request: %w", operation, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("reserva: %s: http request: %w", operation, err)
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		apiErr := &APIError{Status: resp.StatusCode}
		var msg struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(raw, &msg) == nil {
			apiErr.Message = msg.Message
		}
		c.logger.Warn("reserva backend rejected request",
			"operation", operation,
			"status", resp.StatusCode,
			"message", apiErr.Message,
		)
		return apiErr
	}

	if result == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("reserva: %s: decode response: %w", operation, err)
	}
	return nil
}
