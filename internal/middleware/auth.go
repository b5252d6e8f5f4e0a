package middleware

import (
	"net/http"
	"strings"

	"github.com/tambo-ai/cliauth/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// Session keys for the browser cookie session.
const (
	SessionUserID = "user_id"
	SessionID     = "session_id"
)

// Context keys set for downstream handlers.
const (
	ContextUserID           = "user_id"
	ContextBrowserSessionID = "browser_session_id"
)

// RequireBrowserAuth requires a logged-in browser session. Used by the
// verification endpoint: only a human in a browser may claim a user code.
func RequireBrowserAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID := session.Get(SessionUserID)

		if userID == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "authentication required",
			})
			return
		}

		c.Set(ContextUserID, userID)
		if sid := session.Get(SessionID); sid != nil {
			c.Set(ContextBrowserSessionID, sid)
		}
		c.Next()
	}
}

// RequireAuth accepts either a logged-in browser session or a CLI bearer
// token. Used by the session registry so both the web dashboard and the
// CLI itself can manage sessions.
func RequireAuth(sessionService *services.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		if userID := session.Get(SessionUserID); userID != nil {
			c.Set(ContextUserID, userID)
			c.Next()
			return
		}

		token := bearerToken(c)
		if token != "" {
			user, err := sessionService.Authenticate(c.Request.Context(), token)
			if err == nil {
				c.Set(ContextUserID, user.ID)
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "authentication required",
		})
	}
}

// bearerToken extracts the token from an Authorization: Bearer header.
func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}

// CurrentUserID returns the authenticated user id set by the middleware.
func CurrentUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get(ContextUserID)
	if !exists {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}

// CurrentBrowserSessionID returns the browser session id, if any.
func CurrentBrowserSessionID(c *gin.Context) string {
	v, exists := c.Get(ContextBrowserSessionID)
	if !exists {
		return ""
	}
	id, _ := v.(string)
	return id
}
