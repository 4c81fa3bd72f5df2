package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wonderpark/storefront/internal/booking"
	"github.com/wonderpark/storefront/internal/domain"
	"github.com/wonderpark/storefront/internal/middleware"
	"github.com/wonderpark/storefront/pkg/response"
)

// BookingHandler submits the assembled purchase.
type BookingHandler struct {
	submitter *booking.Submitter
}

// NewBookingHandler creates a BookingHandler.
func NewBookingHandler(submitter *booking.Submitter) *BookingHandler {
	return &BookingHandler{submitter: submitter}
}

// Submit handles POST /api/v1/bookings.
func (h *BookingHandler) Submit(c *gin.Context) {
	store := middleware.StoreFrom(c)
	if store == nil {
		response.Unauthorized(c, "No session")
		return
	}

	conf, err := h.submitter.Submit(c.Request.Context(), store.Snapshot(), middleware.SIDFrom(c))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotAuthenticated):
			response.Error(c, http.StatusUnauthorized, "LOGIN_REQUIRED", "Login required", "")
		case errors.Is(err, domain.ErrNoSelection):
			response.Error(c, http.StatusBadRequest, "NO_SELECTION",
				"Please select at least one ride or ticket", "")
		case errors.Is(err, domain.ErrMixedSelection):
			response.Error(c, http.StatusBadRequest, "MIXED_SELECTION",
				"Choose either individual rides or ticket packages, not both", "")
		default:
			response.BadGateway(c, "BOOKING_FAILED", userMessage(err, domain.ErrBookingFailed))
		}
		return
	}

	response.Created(c, conf)
}
