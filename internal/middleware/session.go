package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/wonderpark/storefront/internal/session"
)

const (
	// ContextKeyStore is the gin context key for the session store.
	ContextKeyStore = "session_store"
	// ContextKeySID is the gin context key for the browser session id.
	ContextKeySID = "session_id"
)

// CookieConfig holds session cookie settings.
type CookieConfig struct {
	Name   string
	Secret string
	Secure bool
}

// SessionCookie identifies the browser session. The cookie value is an
// HS256-signed token carrying the session id; a missing or tampered cookie
// mints a fresh session. The cookie has no Max-Age so it dies with the
// browser session, matching the vault TTL server-side.
//
// The matching store is restored (once) and attached to the request
// context, so downstream handlers always see a resolved session.
func SessionCookie(cfg CookieConfig, manager *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid := ""
		if raw, err := c.Cookie(cfg.Name); err == nil {
			sid = parseSessionToken(raw, cfg.Secret)
		}
		if sid == "" {
			sid = uuid.New().String()
			token, err := signSessionToken(sid, cfg.Secret)
			if err != nil {
				c.AbortWithStatus(http.StatusInternalServerError)
				return
			}
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(cfg.Name, token, 0, "/", "", cfg.Secure, true)
		}

		store := manager.Get(c.Request.Context(), sid)
		c.Set(ContextKeySID, sid)
		c.Set(ContextKeyStore, store)

		c.Next()
	}
}

func signSessionToken(sid, secret string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sid": sid,
	})
	return token.SignedString([]byte(secret))
}

func parseSessionToken(raw, secret string) string {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return ""
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ""
	}
	sid, _ := claims["sid"].(string)
	return sid
}

// StoreFrom returns the session store attached by SessionCookie.
func StoreFrom(c *gin.Context) *session.Store {
	if v, ok := c.Get(ContextKeyStore); ok {
		if store, ok := v.(*session.Store); ok {
			return store
		}
	}
	return nil
}

// SIDFrom returns the browser session id attached by SessionCookie.
func SIDFrom(c *gin.Context) string {
	if v, ok := c.Get(ContextKeySID); ok {
		if sid, ok := v.(string); ok {
			return sid
		}
	}
	return ""
}
