package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/wonderpark/storefront/internal/middleware"
	"github.com/wonderpark/storefront/internal/session"
	"github.com/wonderpark/storefront/pkg/logger"
	"github.com/wonderpark/storefront/pkg/telemetry"
)

// RouterDeps carries everything the HTTP surface needs.
type RouterDeps struct {
	Auth      *AuthHandler
	Catalog   *CatalogHandler
	Selection *SelectionHandler
	Booking   *BookingHandler
	Health    *HealthHandler

	Manager *session.Manager
	Cookie  middleware.CookieConfig
	CORS    middleware.CORSConfig
	Log     *logger.Logger

	// ServiceName names the tracing middleware's spans.
	ServiceName string
	// Idempotency guards the booking submission against double-submits.
	// Nil disables the guard (tests, single-node development).
	Idempotency *middleware.IdempotencyConfig
}

// NewRouter builds the gin engine with the full middleware chain and route
// table. Catalog routes are public; selection and booking routes sit behind
// the access gate.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	serviceName := deps.ServiceName
	if serviceName == "" {
		serviceName = "park-storefront"
	}
	router.Use(telemetry.Middleware(serviceName))
	router.Use(middleware.Logger(deps.Log))
	router.Use(middleware.CORSWithConfig(deps.CORS))

	router.GET("/health", deps.Health.Health)
	router.GET("/ready", deps.Health.Ready)

	v1 := router.Group("/api/v1")
	v1.Use(middleware.SessionCookie(deps.Cookie, deps.Manager))

	auth := v1.Group("/auth")
	{
		auth.POST("/register", deps.Auth.Register)
		auth.POST("/login", deps.Auth.Login)
		auth.POST("/logout", deps.Auth.Logout)
		auth.GET("/me", deps.Auth.Me)
	}

	catalog := v1.Group("/catalog")
	{
		catalog.GET("/rides", deps.Catalog.Rides)
		catalog.GET("/ticket-types", deps.Catalog.TicketTypes)
	}

	sel := v1.Group("/selection")
	sel.Use(middleware.RequireSession())
	{
		sel.GET("", deps.Selection.Get)
		sel.GET("/quote", deps.Selection.Quote)
		sel.PUT("/rides/:id", deps.Selection.SelectRide)
		sel.DELETE("/rides/:id", deps.Selection.DeselectRide)
		sel.POST("/tiers/:id/increment", deps.Selection.IncrementTier)
		sel.POST("/tiers/:id/decrement", deps.Selection.DecrementTier)
		sel.PUT("/contact", deps.Selection.SetContact)
	}

	bookings := v1.Group("/bookings")
	bookings.Use(middleware.RequireSession())
	{
		if deps.Idempotency != nil {
			bookings.POST("", middleware.Idempotency(deps.Idempotency), deps.Booking.Submit)
		} else {
			bookings.POST("", deps.Booking.Submit)
		}
	}

	return router
}
