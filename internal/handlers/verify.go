package handlers

import (
	"errors"
	"net/http"

	"github.com/tambo-ai/cliauth/internal/middleware"
	"github.com/tambo-ai/cliauth/internal/services"

	"github.com/gin-gonic/gin"
)

type VerifyHandler struct {
	deviceService *services.DeviceAuthService
}

func NewVerifyHandler(ds *services.DeviceAuthService) *VerifyHandler {
	return &VerifyHandler{deviceService: ds}
}

type verifyRequest struct {
	UserCode string `json:"userCode" binding:"required"`
}

// Verify handles POST /api/cli/verify
// Called from the browser by an authenticated user to approve a pending
// CLI login. Dashed and plain user codes are both accepted.
func (h *VerifyHandler) Verify(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "authentication required",
		})
		return
	}

	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "userCode is required",
		})
		return
	}

	err := h.deviceService.Verify(
		c.Request.Context(),
		req.UserCode,
		userID,
		middleware.CurrentBrowserSessionID(c),
	)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCodeAlreadyUsed):
			c.JSON(http.StatusConflict, gin.H{
				"error": "code_already_used",
			})
		case errors.Is(err, services.ErrCodeExpired):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "code_expired",
			})
		case errors.Is(err, services.ErrCodeNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "code_not_found",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "server_error",
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
