package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetAuthPrompt returns the device unlock prompt configuration. The
// biometric/PIN gate itself runs on the device; the backend only owns the
// wording and the fallback policy.
func (h *Handler) GetAuthPrompt(c *gin.Context) {
	if h.cfg == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "auth gate is not configured"})
		return
	}

	gate := h.cfg.AuthGate
	c.JSON(http.StatusOK, gin.H{
		"prompt_message":        gate.PromptMessage,
		"fallback_label":        gate.FallbackLabel,
		"cancel_label":          gate.CancelLabel,
		"allow_device_fallback": gate.AllowDeviceFallback,
	})
}
