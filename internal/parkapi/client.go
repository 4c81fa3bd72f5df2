// Package parkapi is the HTTP client for the remote park API, the backend
// that owns accounts, the ride and ticket catalogs, and purchased tickets.
// The storefront treats it as an opaque collaborator: every call either
// succeeds with a decoded payload or fails with a *RemoteError carrying the
// collaborator's message.
package parkapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/wonderpark/storefront/internal/domain"
	"github.com/wonderpark/storefront/pkg/telemetry"
)

// AccountPayload is the opaque created-account payload returned by register.
type AccountPayload map[string]interface{}

// RegisterRequest is the account creation request.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the credential pair sent on login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Client defines the calls the storefront makes against the park API.
type Client interface {
	Register(ctx context.Context, req RegisterRequest) (AccountPayload, error)
	Login(ctx context.Context, req LoginRequest) (*domain.UserRecord, error)
	Logout(ctx context.Context) error
	ListRides(ctx context.Context) ([]domain.Ride, error)
	ListTicketTypes(ctx context.Context) ([]domain.TicketTier, error)
	SubmitBooking(ctx context.Context, req domain.BookingRequest) (*domain.BookingConfirmation, error)
}

// RemoteError is a non-2xx response from the park API.
type RemoteError struct {
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("park api: %s (status %d)", e.Message, e.StatusCode)
}

// RemoteMessage extracts the collaborator's message from err, or returns
// fallback when err carries none.
func RemoteMessage(err error, fallback string) string {
	var re *RemoteError
	if errors.As(err, &re) && re.Message != "" {
		return re.Message
	}
	return fallback
}

// Config holds HTTP client settings for the park API.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

type httpClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient creates a Client against the given base URL.
func NewHTTPClient(cfg Config) Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}

	return &httpClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
	}
}

func (c *httpClient) Register(ctx context.Context, req RegisterRequest) (AccountPayload, error) {
	ctx, span := telemetry.StartSpan(ctx, "parkapi.register")
	defer span.End()
	span.SetAttributes(attribute.String("username", req.Username))

	var payload AccountPayload
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/register", req, &payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return payload, nil
}

func (c *httpClient) Login(ctx context.Context, req LoginRequest) (*domain.UserRecord, error) {
	ctx, span := telemetry.StartSpan(ctx, "parkapi.login")
	defer span.End()
	span.SetAttributes(attribute.String("username", req.Username))

	var user domain.UserRecord
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", req, &user); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.String("user_id", user.ID))
	span.SetStatus(codes.Ok, "")
	return &user, nil
}

func (c *httpClient) Logout(ctx context.Context) error {
	ctx, span := telemetry.StartSpan(ctx, "parkapi.logout")
	defer span.End()

	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/logout", nil, nil); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

func (c *httpClient) ListRides(ctx context.Context) ([]domain.Ride, error) {
	ctx, span := telemetry.StartSpan(ctx, "parkapi.list_rides")
	defer span.End()

	var rides []domain.Ride
	if err := c.doJSON(ctx, http.MethodGet, "/api/rides", nil, &rides); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("count", len(rides)))
	span.SetStatus(codes.Ok, "")
	return rides, nil
}

func (c *httpClient) ListTicketTypes(ctx context.Context) ([]domain.TicketTier, error) {
	ctx, span := telemetry.StartSpan(ctx, "parkapi.list_ticket_types")
	defer span.End()

	var tiers []domain.TicketTier
	if err := c.doJSON(ctx, http.MethodGet, "/api/tickets/types", nil, &tiers); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("count", len(tiers)))
	span.SetStatus(codes.Ok, "")
	return tiers, nil
}

func (c *httpClient) SubmitBooking(ctx context.Context, req domain.BookingRequest) (*domain.BookingConfirmation, error) {
	ctx, span := telemetry.StartSpan(ctx, "parkapi.submit_booking")
	defer span.End()
	span.SetAttributes(
		attribute.String("user_id", req.UserID),
		attribute.Float64("total_price", req.TotalPrice),
	)

	var conf domain.BookingConfirmation
	if err := c.doJSON(ctx, http.MethodPost, "/api/tickets/book", req, &conf); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.String("booking_id", conf.ID))
	span.SetStatus(codes.Ok, "")
	return &conf, nil
}

// doJSON sends one request and decodes a 2xx response into out (when out is
// non-nil). Non-2xx responses become *RemoteError with the message pulled
// from the body.
func (c *httpClient) doJSON(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		encoded, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("park api request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &RemoteError{
			StatusCode: resp.StatusCode,
			Message:    extractMessage(resp.Body),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// extractMessage pulls a human-readable message out of an error body. The
// park API answers either {"message": "..."} or a bare string.
func extractMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(raw) == 0 {
		return ""
	}

	var envelope struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Message != "" {
		return envelope.Message
	}

	text := strings.TrimSpace(string(raw))
	if strings.HasPrefix(text, "{") || strings.HasPrefix(text, "[") {
		return ""
	}
	return strings.Trim(text, `"`)
}
