package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	// CookieName carries the session token for browser clients
	CookieName = "roster_session"

	sessionKeyCtx = "session"
	tokenKeyCtx   = "session_token"
)

// RequireSession enforces a live session from a bearer token or the session
// cookie.
func RequireSession(m *Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := TokenFromRequest(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not signed in"})
			return
		}

		sess, err := m.Authenticate(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not signed in"})
			return
		}

		c.Set(sessionKeyCtx, sess)
		c.Set(tokenKeyCtx, token)
		c.Next()
	}
}

// TokenFromRequest returns the bearer token, falling back to the cookie
func TokenFromRequest(c *gin.Context) string {
	authz := c.GetHeader("Authorization")
	if len(authz) > len("bearer ") && strings.HasPrefix(strings.ToLower(authz), "bearer ") {
		return strings.TrimSpace(authz[len("bearer "):])
	}
	if cookie, err := c.Cookie(CookieName); err == nil {
		return cookie
	}
	return ""
}

// SessionFrom returns the session RequireSession stored on the request
func SessionFrom(c *gin.Context) (*Session, bool) {
	v, ok := c.Get(sessionKeyCtx)
	if !ok {
		return nil, false
	}
	sess, ok := v.(*Session)
	return sess, ok
}

// TokenFrom returns the token RequireSession authenticated
func TokenFrom(c *gin.Context) string {
	return c.GetString(tokenKeyCtx)
}
