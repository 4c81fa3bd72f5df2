// Package handler exposes the storefront over HTTP. Handlers bind and
// validate input, call the owning service and translate sentinel errors to
// the response envelope; no business rules live here.
package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/wonderpark/storefront/internal/domain"
	"github.com/wonderpark/storefront/internal/dto"
	"github.com/wonderpark/storefront/internal/middleware"
	"github.com/wonderpark/storefront/internal/parkapi"
	"github.com/wonderpark/storefront/internal/session"
	"github.com/wonderpark/storefront/pkg/response"
)

// AuthHandler handles account and session endpoints.
type AuthHandler struct {
	manager *session.Manager
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(manager *session.Manager) *AuthHandler {
	return &AuthHandler{manager: manager}
}

// Register handles POST /api/v1/auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	if ok, msg := req.ValidateUsername(); !ok {
		response.BadRequest(c, msg)
		return
	}
	if ok, msg := req.ValidateEmail(); !ok {
		response.BadRequest(c, msg)
		return
	}
	if ok, msg := req.ValidatePassword(); !ok {
		response.BadRequest(c, msg)
		return
	}

	store := middleware.StoreFrom(c)
	if store == nil {
		response.Unauthorized(c, "No session")
		return
	}

	payload, err := store.Register(c.Request.Context(), parkapi.RegisterRequest{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		response.Error(c, http.StatusBadRequest, "REGISTRATION_FAILED",
			userMessage(err, domain.ErrRegistrationFailed), "")
		return
	}

	response.Created(c, payload)
}

// Login handles POST /api/v1/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	store := middleware.StoreFrom(c)
	if store == nil {
		response.Unauthorized(c, "No session")
		return
	}

	user, err := store.Login(c.Request.Context(), parkapi.LoginRequest{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		response.Error(c, http.StatusUnauthorized, "AUTHENTICATION_FAILED",
			userMessage(err, domain.ErrAuthenticationFailed), "")
		return
	}

	response.Success(c, user)
}

// Logout handles POST /api/v1/auth/logout. Logout always succeeds from the
// caller's point of view.
func (h *AuthHandler) Logout(c *gin.Context) {
	store := middleware.StoreFrom(c)
	if store == nil {
		response.Unauthorized(c, "No session")
		return
	}

	store.Logout(c.Request.Context())
	h.manager.Drop(store.SID())

	response.Success(c, gin.H{"message": "Logged out successfully"})
}

// Me handles GET /api/v1/auth/me, reporting the resolved session state.
func (h *AuthHandler) Me(c *gin.Context) {
	store := middleware.StoreFrom(c)
	if store == nil {
		response.Unauthorized(c, "No session")
		return
	}

	sess := store.Snapshot()
	if !sess.Authenticated {
		response.Error(c, http.StatusUnauthorized, "LOGIN_REQUIRED", "Not logged in", "")
		return
	}

	response.Success(c, sess.User)
}

// userMessage extracts the user-facing part of a wrapped sentinel error,
// falling back to the sentinel's own text.
func userMessage(err error, sentinel error) string {
	if !errors.Is(err, sentinel) {
		return sentinel.Error()
	}
	msg := strings.TrimPrefix(err.Error(), sentinel.Error())
	msg = strings.TrimPrefix(msg, ": ")
	if msg == "" {
		return sentinel.Error()
	}
	return msg
}
