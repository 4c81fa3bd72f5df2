package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wonderpark/storefront/internal/gate"
	"github.com/wonderpark/storefront/pkg/response"
)

// RequireSession applies the access gate to protected routes. The decision
// is recomputed per request from the current session snapshot:
//
//   - pending: the restore step has not resolved yet; answer 202 with no
//     content so the client shows a neutral waiting state instead of
//     flashing the login page
//   - redirect: 401 pointing the client at the login entry point, without
//     remembering the original navigation
//   - allow: pass through unchanged
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		store := StoreFrom(c)
		if store == nil {
			response.Unauthorized(c, "No session")
			c.Abort()
			return
		}

		switch gate.Decide(store.Snapshot()) {
		case gate.DecisionPending:
			c.JSON(http.StatusAccepted, response.Response{
				Success: true,
				Data:    gin.H{"status": "pending"},
			})
			c.Abort()
		case gate.DecisionRedirect:
			response.Error(c, http.StatusUnauthorized, "LOGIN_REQUIRED", "Login required", gate.LoginPath)
			c.Abort()
		case gate.DecisionAllow:
			c.Next()
		}
	}
}
