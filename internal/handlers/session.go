package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/tambo-ai/cliauth/internal/middleware"
	"github.com/tambo-ai/cliauth/internal/models"
	"github.com/tambo-ai/cliauth/internal/services"

	"github.com/gin-gonic/gin"
)

type SessionHandler struct {
	sessionService *services.SessionService
}

func NewSessionHandler(ss *services.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: ss}
}

// sessionView is the JSON shape for a listed session. The bearer token is
// its own id; listing intentionally includes it so owners can correlate
// with their stored credentials, but lifetimes are the primary content.
type sessionView struct {
	ID        string `json:"id"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
	NotAfter  string `json:"notAfter"`
}

func toSessionView(s models.CliSession) sessionView {
	return sessionView{
		ID:        s.ID,
		CreatedAt: s.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: s.UpdatedAt.UTC().Format(time.RFC3339),
		NotAfter:  s.NotAfter.UTC().Format(time.RFC3339),
	}
}

// List handles GET /api/cli/sessions
func (h *SessionHandler) List(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	sessions, err := h.sessionService.List(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list sessions"})
		return
	}

	views := make([]sessionView, 0, len(sessions))
	for _, s := range sessions {
		views = append(views, toSessionView(s))
	}
	c.JSON(http.StatusOK, gin.H{"sessions": views})
}

// Revoke handles DELETE /api/cli/sessions/:id
func (h *SessionHandler) Revoke(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	sessionID := c.Param("id")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session id is required"})
		return
	}

	if err := h.sessionService.Revoke(c.Request.Context(), userID, sessionID); err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "session_not_found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to revoke session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// RevokeAll handles DELETE /api/cli/sessions
func (h *SessionHandler) RevokeAll(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	count, err := h.sessionService.RevokeAll(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to revoke sessions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "revoked": count})
}
