package handlers

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/tambo-ai/cliauth/internal/config"
	"github.com/tambo-ai/cliauth/internal/services"
	"github.com/tambo-ai/cliauth/internal/util"

	"github.com/gin-gonic/gin"
)

// verificationPath is where the browser UI collects the user code.
const verificationPath = "/cli-auth"

type DeviceHandler struct {
	deviceService *services.DeviceAuthService
	config        *config.Config
}

func NewDeviceHandler(ds *services.DeviceAuthService, cfg *config.Config) *DeviceHandler {
	return &DeviceHandler{deviceService: ds, config: cfg}
}

// Initiate handles POST /api/cli/login
// Called by the CLI to start a device authorization attempt.
func (h *DeviceHandler) Initiate(c *gin.Context) {
	dc, err := h.deviceService.Initiate(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to start device authorization",
		})
		return
	}

	formatted := services.FormatUserCode(dc.UserCode)
	baseURL := util.ResolveBaseURL(c.Request, h.config.PublicURL, h.config.FallbackURL)
	verificationURI := baseURL + verificationPath

	c.JSON(http.StatusOK, gin.H{
		"deviceCode":              dc.DeviceCode,
		"userCode":                formatted,
		"verificationUri":         verificationURI,
		"verificationUriComplete": verificationURI + "?user_code=" + url.QueryEscape(formatted),
		"expiresIn":               int(h.config.DeviceCodeExpiration.Seconds()),
		"interval":                int(h.config.PollingInterval.Seconds()),
	})
}

type pollRequest struct {
	DeviceCode string `json:"deviceCode" binding:"required"`
}

// Poll handles POST /api/cli/login/poll
// Called by the CLI; authorization is possession of the device code.
func (h *DeviceHandler) Poll(c *gin.Context) {
	var req pollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "deviceCode is required",
		})
		return
	}

	result, err := h.deviceService.Poll(c.Request.Context(), req.DeviceCode)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCodeNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "code_not_found",
			})
		case errors.Is(err, services.ErrTooManyRequests):
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "too_many_requests",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "server_error",
			})
		}
		return
	}

	switch result.Status {
	case services.StatusComplete:
		c.JSON(http.StatusOK, gin.H{
			"status":       result.Status,
			"sessionToken": result.SessionToken,
			"expiresAt":    result.ExpiresAt,
			"user":         result.User,
		})
	default:
		c.JSON(http.StatusOK, gin.H{
			"status": result.Status,
		})
	}
}
