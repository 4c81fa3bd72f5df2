package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/wonderpark/storefront/internal/catalog"
	"github.com/wonderpark/storefront/pkg/response"
)

// CatalogHandler serves the purchasable-item lists.
type CatalogHandler struct {
	cache *catalog.Cache
}

// NewCatalogHandler creates a CatalogHandler.
func NewCatalogHandler(cache *catalog.Cache) *CatalogHandler {
	return &CatalogHandler{cache: cache}
}

// Rides handles GET /api/v1/catalog/rides.
func (h *CatalogHandler) Rides(c *gin.Context) {
	h.cache.EnsureLoaded(c.Request.Context())
	h.respond(c, h.cache.Rides())
}

// TicketTypes handles GET /api/v1/catalog/ticket-types.
func (h *CatalogHandler) TicketTypes(c *gin.Context) {
	h.cache.EnsureLoaded(c.Request.Context())
	h.respond(c, h.cache.TicketTiers())
}

// respond flags fallback data in the meta section so the client can show a
// degraded-data notice without the payload shape changing.
func (h *CatalogHandler) respond(c *gin.Context, data interface{}) {
	if h.cache.Unavailable() {
		response.SuccessWithMeta(c, data, gin.H{"catalogUnavailable": true})
		return
	}
	response.Success(c, data)
}
