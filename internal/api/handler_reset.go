package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// RequestReset handles POST /api/reset/request. Clearing all data is the one
// destructive, irreversible operation, so it is two-step: this issues a
// short-lived token that ConfirmReset must echo back.
func (h *Handler) RequestReset(c *gin.Context) {
	token := uuid.NewString()
	h.resetTokens.Set(token, true, cache.DefaultExpiration)
	c.JSON(http.StatusOK, gin.H{
		"confirm_token":      token,
		"expires_in_seconds": int(resetTokenTTL.Seconds()),
	})
}

type confirmResetRequest struct {
	ConfirmToken string `json:"confirm_token" binding:"required"`
}

// ConfirmReset handles POST /api/reset/confirm. On success the catalog and
// ledger are wiped atomically, cached responses are flushed, and both
// collections are re-read so the confirmation cannot sit next to stale data.
func (h *Handler) ConfirmReset(c *gin.Context) {
	var req confirmResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, ok := h.resetTokens.Get(req.ConfirmToken); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown or expired confirm token"})
		return
	}
	h.resetTokens.Delete(req.ConfirmToken)

	ctx := c.Request.Context()
	if err := h.store.ClearAll(ctx); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if h.pageCache != nil {
		h.pageCache.Flush()
	}

	meds, err := h.store.ListMedications(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	doses, err := h.store.ListDoseHistory(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"medications":  len(meds),
		"dose_history": len(doses),
	})
}
