package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/wonderpark/storefront/internal/booking"
	"github.com/wonderpark/storefront/internal/catalog"
	"github.com/wonderpark/storefront/internal/domain"
	"github.com/wonderpark/storefront/internal/middleware"
	"github.com/wonderpark/storefront/internal/parkapi"
	"github.com/wonderpark/storefront/internal/selection"
	"github.com/wonderpark/storefront/internal/session"
	"github.com/wonderpark/storefront/pkg/logger"
	"github.com/wonderpark/storefront/pkg/response"
)

// MockParkClient is a mock implementation of parkapi.Client
type MockParkClient struct {
	RegisterFunc        func(ctx context.Context, req parkapi.RegisterRequest) (parkapi.AccountPayload, error)
	LoginFunc           func(ctx context.Context, req parkapi.LoginRequest) (*domain.UserRecord, error)
	LogoutFunc          func(ctx context.Context) error
	ListRidesFunc       func(ctx context.Context) ([]domain.Ride, error)
	ListTicketTypesFunc func(ctx context.Context) ([]domain.TicketTier, error)
	SubmitBookingFunc   func(ctx context.Context, req domain.BookingRequest) (*domain.BookingConfirmation, error)
}

func (m *MockParkClient) Register(ctx context.Context, req parkapi.RegisterRequest) (parkapi.AccountPayload, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, req)
	}
	return parkapi.AccountPayload{"id": "new-user", "username": req.Username}, nil
}

func (m *MockParkClient) Login(ctx context.Context, req parkapi.LoginRequest) (*domain.UserRecord, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, req)
	}
	return &domain.UserRecord{ID: "user-1", Username: req.Username}, nil
}

func (m *MockParkClient) Logout(ctx context.Context) error {
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx)
	}
	return nil
}

func (m *MockParkClient) ListRides(ctx context.Context) ([]domain.Ride, error) {
	if m.ListRidesFunc != nil {
		return m.ListRidesFunc(ctx)
	}
	return []domain.Ride{
		{ID: "1", Name: "Roller Coaster", Price: 10.00, Active: true},
		{ID: "3", Name: "Water Slide", Price: 12.00, Active: true},
	}, nil
}

func (m *MockParkClient) ListTicketTypes(ctx context.Context) ([]domain.TicketTier, error) {
	if m.ListTicketTypesFunc != nil {
		return m.ListTicketTypesFunc(ctx)
	}
	return []domain.TicketTier{
		{ID: "silver", Name: "Silver", RideLimit: 3, Price: 299},
		{ID: "gold", Name: "Gold", RideLimit: 6, Price: 499},
	}, nil
}

func (m *MockParkClient) SubmitBooking(ctx context.Context, req domain.BookingRequest) (*domain.BookingConfirmation, error) {
	if m.SubmitBookingFunc != nil {
		return m.SubmitBookingFunc(ctx, req)
	}
	return &domain.BookingConfirmation{ID: "booking-1", Status: "CONFIRMED"}, nil
}

func newTestRouter(t *testing.T, api parkapi.Client) *gin.Engine {
	gin.SetMode(gin.TestMode)

	log := logger.Get()
	vault := session.NewMemoryVault()
	manager := session.NewManager(vault, api, log)
	t.Cleanup(manager.Close)
	cache := catalog.NewCache(api, log)
	selections := selection.NewService(selection.NewMemoryRepository())
	submitter := booking.NewSubmitter(api, selections, cache, log)

	return NewRouter(RouterDeps{
		Auth:      NewAuthHandler(manager),
		Catalog:   NewCatalogHandler(cache),
		Selection: NewSelectionHandler(selections, cache),
		Booking:   NewBookingHandler(submitter),
		Health:    NewHealthHandler(nil, "test"),
		Manager:   manager,
		Cookie:    middleware.CookieConfig{Name: "park_session", Secret: "test-secret"},
		CORS:      middleware.DefaultCORSConfig(),
		Log:       log,
	})
}

// browser replays cookies across requests like a real client would.
type browser struct {
	t       *testing.T
	router  *gin.Engine
	cookies []*http.Cookie
}

func newBrowser(t *testing.T, router *gin.Engine) *browser {
	return &browser{t: t, router: router}
}

func (b *browser) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	b.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			b.t.Fatalf("encode body: %v", err)
		}
	}

	req, err := http.NewRequest(method, path, &buf)
	if err != nil {
		b.t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for _, ck := range b.cookies {
		req.AddCookie(ck)
	}

	resp := httptest.NewRecorder()
	b.router.ServeHTTP(resp, req)

	for _, ck := range resp.Result().Cookies() {
		b.cookies = append(b.cookies, ck)
	}
	return resp
}

func decodeEnvelope(t *testing.T, resp *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var env response.Response
	if err := json.Unmarshal(resp.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (body %s)", err, resp.Body.String())
	}
	return env
}

func TestAuthLifecycle(t *testing.T) {
	router := newTestRouter(t, &MockParkClient{})
	b := newBrowser(t, router)

	// Fresh visitor is not logged in.
	resp := b.do(http.MethodGet, "/api/v1/auth/me", nil)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("me before login: status = %d, want 401", resp.Code)
	}

	resp = b.do(http.MethodPost, "/api/v1/auth/register", gin.H{
		"username": "visitor", "email": "v@park.test", "password": "longenough",
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("register: status = %d, body %s", resp.Code, resp.Body.String())
	}

	// Registering does not log in.
	resp = b.do(http.MethodGet, "/api/v1/auth/me", nil)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("me after register: status = %d, want 401", resp.Code)
	}

	resp = b.do(http.MethodPost, "/api/v1/auth/login", gin.H{
		"username": "visitor", "password": "longenough",
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("login: status = %d, body %s", resp.Code, resp.Body.String())
	}

	resp = b.do(http.MethodGet, "/api/v1/auth/me", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("me after login: status = %d", resp.Code)
	}
	env := decodeEnvelope(t, resp)
	user, ok := env.Data.(map[string]interface{})
	if !ok || user["username"] != "visitor" {
		t.Errorf("me data = %v, want the logged-in user", env.Data)
	}

	resp = b.do(http.MethodPost, "/api/v1/auth/logout", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("logout: status = %d", resp.Code)
	}

	resp = b.do(http.MethodGet, "/api/v1/auth/me", nil)
	if resp.Code != http.StatusUnauthorized {
		t.Errorf("me after logout: status = %d, want 401", resp.Code)
	}
}

func TestLoginFailurePassesRemoteMessage(t *testing.T) {
	api := &MockParkClient{
		LoginFunc: func(context.Context, parkapi.LoginRequest) (*domain.UserRecord, error) {
			return nil, &parkapi.RemoteError{StatusCode: 401, Message: "Invalid credentials"}
		},
	}
	b := newBrowser(t, newTestRouter(t, api))

	resp := b.do(http.MethodPost, "/api/v1/auth/login", gin.H{
		"username": "visitor", "password": "wrong",
	})
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.Code)
	}
	env := decodeEnvelope(t, resp)
	if env.Error == nil || env.Error.Code != "AUTHENTICATION_FAILED" {
		t.Fatalf("error = %+v, want AUTHENTICATION_FAILED", env.Error)
	}
	if env.Error.Message != "Invalid credentials" {
		t.Errorf("message = %q, want the collaborator's message", env.Error.Message)
	}
}

func TestRegisterValidation(t *testing.T) {
	b := newBrowser(t, newTestRouter(t, &MockParkClient{}))

	tests := []struct {
		name string
		body gin.H
	}{
		{"missing fields", gin.H{"username": "visitor"}},
		{"short username", gin.H{"username": "ab", "email": "v@park.test", "password": "longenough"}},
		{"bad email", gin.H{"username": "visitor", "email": "nonsense", "password": "longenough"}},
		{"short password", gin.H{"username": "visitor", "email": "v@park.test", "password": "short"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := b.do(http.MethodPost, "/api/v1/auth/register", tt.body)
			if resp.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.Code)
			}
		})
	}
}

func TestProtectedRoutesRedirectToLogin(t *testing.T) {
	b := newBrowser(t, newTestRouter(t, &MockParkClient{}))

	resp := b.do(http.MethodGet, "/api/v1/selection", nil)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.Code)
	}
	env := decodeEnvelope(t, resp)
	if env.Error == nil || env.Error.Code != "LOGIN_REQUIRED" {
		t.Fatalf("error = %+v, want LOGIN_REQUIRED", env.Error)
	}
	if env.Error.Details != "/login" {
		t.Errorf("details = %q, want the login entry point", env.Error.Details)
	}
}

func TestCatalogEndpoints(t *testing.T) {
	t.Run("live catalog", func(t *testing.T) {
		b := newBrowser(t, newTestRouter(t, &MockParkClient{}))

		resp := b.do(http.MethodGet, "/api/v1/catalog/rides", nil)
		if resp.Code != http.StatusOK {
			t.Fatalf("status = %d", resp.Code)
		}
		env := decodeEnvelope(t, resp)
		if env.Meta != nil {
			t.Errorf("meta = %v, want none for live data", env.Meta)
		}
		if rides, ok := env.Data.([]interface{}); !ok || len(rides) != 2 {
			t.Errorf("data = %v, want two rides", env.Data)
		}
	})

	t.Run("fallback catalog is flagged", func(t *testing.T) {
		api := &MockParkClient{
			ListRidesFunc: func(context.Context) ([]domain.Ride, error) {
				return nil, context.DeadlineExceeded
			},
		}
		b := newBrowser(t, newTestRouter(t, api))

		resp := b.do(http.MethodGet, "/api/v1/catalog/ticket-types", nil)
		if resp.Code != http.StatusOK {
			t.Fatalf("status = %d", resp.Code)
		}
		env := decodeEnvelope(t, resp)
		meta, ok := env.Meta.(map[string]interface{})
		if !ok || meta["catalogUnavailable"] != true {
			t.Errorf("meta = %v, want catalogUnavailable flag", env.Meta)
		}
		if tiers, ok := env.Data.([]interface{}); !ok || len(tiers) != 3 {
			t.Errorf("data = %v, want the three sample tiers", env.Data)
		}
	})
}

func TestSelectionAndBookingFlow(t *testing.T) {
	api := &MockParkClient{}
	b := newBrowser(t, newTestRouter(t, api))

	resp := b.do(http.MethodPost, "/api/v1/auth/login", gin.H{
		"username": "visitor", "password": "longenough",
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("login: status = %d", resp.Code)
	}

	// Booking with nothing selected is rejected locally.
	resp = b.do(http.MethodPost, "/api/v1/bookings", nil)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("empty booking: status = %d, want 400", resp.Code)
	}
	if env := decodeEnvelope(t, resp); env.Error == nil || env.Error.Code != "NO_SELECTION" {
		t.Fatalf("error = %+v, want NO_SELECTION", env.Error)
	}

	resp = b.do(http.MethodPut, "/api/v1/selection/rides/1", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("select ride: status = %d, body %s", resp.Code, resp.Body.String())
	}
	resp = b.do(http.MethodPut, "/api/v1/selection/rides/3", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("select ride: status = %d", resp.Code)
	}

	// Unknown rides cannot be selected.
	resp = b.do(http.MethodPut, "/api/v1/selection/rides/999", nil)
	if resp.Code != http.StatusNotFound {
		t.Errorf("select unknown ride: status = %d, want 404", resp.Code)
	}

	resp = b.do(http.MethodPut, "/api/v1/selection/contact", gin.H{
		"name": "Visitor", "email": "v@park.test", "phone": "0812345678",
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("contact: status = %d", resp.Code)
	}

	resp = b.do(http.MethodGet, "/api/v1/selection/quote", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("quote: status = %d", resp.Code)
	}
	env := decodeEnvelope(t, resp)
	data := env.Data.(map[string]interface{})
	quote := data["quote"].(map[string]interface{})
	if quote["total"] != 47.00 {
		t.Errorf("quote total = %v, want 47", quote["total"])
	}
	if quote["mode"] != "rides" {
		t.Errorf("quote mode = %v, want rides", quote["mode"])
	}

	resp = b.do(http.MethodPost, "/api/v1/bookings", nil)
	if resp.Code != http.StatusCreated {
		t.Fatalf("booking: status = %d, body %s", resp.Code, resp.Body.String())
	}

	// The form is cleared afterwards.
	resp = b.do(http.MethodGet, "/api/v1/selection/quote", nil)
	env = decodeEnvelope(t, resp)
	data = env.Data.(map[string]interface{})
	quote = data["quote"].(map[string]interface{})
	if quote["mode"] != "none" {
		t.Errorf("quote mode after booking = %v, want none", quote["mode"])
	}
}

func TestTierSelectionClampsAtZero(t *testing.T) {
	b := newBrowser(t, newTestRouter(t, &MockParkClient{}))

	resp := b.do(http.MethodPost, "/api/v1/auth/login", gin.H{
		"username": "visitor", "password": "longenough",
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("login: status = %d", resp.Code)
	}

	// Decrementing an empty tier stays at zero.
	resp = b.do(http.MethodPost, "/api/v1/selection/tiers/silver/decrement", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("decrement: status = %d", resp.Code)
	}
	env := decodeEnvelope(t, resp)
	rec := env.Data.(map[string]interface{})
	sel := rec["selection"].(map[string]interface{})
	if _, ok := sel["tierQuantities"]; ok {
		t.Errorf("selection = %v, want no tier quantities", sel)
	}

	resp = b.do(http.MethodPost, "/api/v1/selection/tiers/silver/increment", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("increment: status = %d", resp.Code)
	}

	resp = b.do(http.MethodPost, "/api/v1/selection/tiers/platinum/increment", nil)
	if resp.Code != http.StatusNotFound {
		t.Errorf("unknown tier: status = %d, want 404", resp.Code)
	}
}

func TestBookingRemoteFailure(t *testing.T) {
	api := &MockParkClient{
		SubmitBookingFunc: func(context.Context, domain.BookingRequest) (*domain.BookingConfirmation, error) {
			return nil, &parkapi.RemoteError{StatusCode: 500, Message: "Ticket inventory exhausted"}
		},
	}
	b := newBrowser(t, newTestRouter(t, api))

	resp := b.do(http.MethodPost, "/api/v1/auth/login", gin.H{
		"username": "visitor", "password": "longenough",
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("login: status = %d", resp.Code)
	}
	resp = b.do(http.MethodPost, "/api/v1/selection/tiers/silver/increment", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("increment: status = %d", resp.Code)
	}

	resp = b.do(http.MethodPost, "/api/v1/bookings", nil)
	if resp.Code != http.StatusBadGateway {
		t.Fatalf("booking: status = %d, want 502", resp.Code)
	}
	env := decodeEnvelope(t, resp)
	if env.Error == nil || env.Error.Code != "BOOKING_FAILED" {
		t.Fatalf("error = %+v, want BOOKING_FAILED", env.Error)
	}
	if env.Error.Message != "Ticket inventory exhausted" {
		t.Errorf("message = %q, want the collaborator's message", env.Error.Message)
	}

	// The selection survives for a retry.
	resp = b.do(http.MethodGet, "/api/v1/selection", nil)
	env = decodeEnvelope(t, resp)
	rec := env.Data.(map[string]interface{})
	sel := rec["selection"].(map[string]interface{})
	if sel["tierQuantities"] == nil {
		t.Error("selection should be intact after a failed booking")
	}
}
