package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/wonderpark/storefront/internal/catalog"
	"github.com/wonderpark/storefront/internal/domain"
	"github.com/wonderpark/storefront/internal/dto"
	"github.com/wonderpark/storefront/internal/middleware"
	"github.com/wonderpark/storefront/internal/pricing"
	"github.com/wonderpark/storefront/internal/selection"
	"github.com/wonderpark/storefront/pkg/response"
)

// SelectionHandler mutates and reads the per-session ticket selection.
type SelectionHandler struct {
	selections *selection.Service
	cache      *catalog.Cache
}

// NewSelectionHandler creates a SelectionHandler.
func NewSelectionHandler(selections *selection.Service, cache *catalog.Cache) *SelectionHandler {
	return &SelectionHandler{selections: selections, cache: cache}
}

// Get handles GET /api/v1/selection.
func (h *SelectionHandler) Get(c *gin.Context) {
	rec, err := h.selections.Get(c.Request.Context(), middleware.SIDFrom(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, rec)
}

// SelectRide handles PUT /api/v1/selection/rides/:id.
func (h *SelectionHandler) SelectRide(c *gin.Context) {
	rideID := c.Param("id")
	h.cache.EnsureLoaded(c.Request.Context())
	if _, ok := h.cache.RideByID(rideID); !ok {
		response.NotFound(c, "Unknown ride")
		return
	}

	rec, err := h.selections.SelectRide(c.Request.Context(), middleware.SIDFrom(c), rideID)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, rec)
}

// DeselectRide handles DELETE /api/v1/selection/rides/:id. Removing a ride
// that was never selected is a no-op, not an error.
func (h *SelectionHandler) DeselectRide(c *gin.Context) {
	rec, err := h.selections.DeselectRide(c.Request.Context(), middleware.SIDFrom(c), c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, rec)
}

// IncrementTier handles POST /api/v1/selection/tiers/:id/increment.
func (h *SelectionHandler) IncrementTier(c *gin.Context) {
	h.adjustTier(c, 1)
}

// DecrementTier handles POST /api/v1/selection/tiers/:id/decrement. The
// quantity is clamped at zero.
func (h *SelectionHandler) DecrementTier(c *gin.Context) {
	h.adjustTier(c, -1)
}

func (h *SelectionHandler) adjustTier(c *gin.Context, sign int) {
	tierID := c.Param("id")
	h.cache.EnsureLoaded(c.Request.Context())
	if _, ok := h.cache.TierByID(tierID); !ok {
		response.NotFound(c, "Unknown ticket type")
		return
	}

	step := 1
	var req dto.TierAdjustRequest
	if err := c.ShouldBindJSON(&req); err == nil && req.Count > 0 {
		step = req.Count
	}

	rec, err := h.selections.AdjustTier(c.Request.Context(), middleware.SIDFrom(c), tierID, sign*step)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, rec)
}

// SetContact handles PUT /api/v1/selection/contact.
func (h *SelectionHandler) SetContact(c *gin.Context) {
	var req dto.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Name, email and phone are required")
		return
	}

	rec, err := h.selections.SetContact(c.Request.Context(), middleware.SIDFrom(c), domain.PersonalInfo{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, rec)
}

// Quote handles GET /api/v1/selection/quote. The quote is recomputed from
// the stored selection on every call; nothing is cached.
func (h *SelectionHandler) Quote(c *gin.Context) {
	ctx := c.Request.Context()
	h.cache.EnsureLoaded(ctx)

	rec, err := h.selections.Get(ctx, middleware.SIDFrom(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}

	quote := pricing.QuoteSelection(h.cache, rec.Selection)
	response.Success(c, gin.H{
		"selection": rec.Selection,
		"contact":   rec.Contact,
		"quote":     quote,
	})
}
