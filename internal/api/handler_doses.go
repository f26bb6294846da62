package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"medreminder-backend/internal/model"
)

type recordDoseRequest struct {
	MedicationID string     `json:"medication_id" binding:"required"`
	Taken        *bool      `json:"taken" binding:"required"`
	Timestamp    *time.Time `json:"timestamp"`
}

// RecordDose handles POST /api/doses. The ledger is append-only: every
// successful call adds exactly one entry and never touches prior ones.
func (h *Handler) RecordDose(c *gin.Context) {
	var req recordDoseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	if _, err := h.store.GetMedication(ctx, req.MedicationID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "medication not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	timestamp := time.Now().In(h.loc)
	if req.Timestamp != nil {
		timestamp = *req.Timestamp
	}

	entry := model.DoseHistory{
		MedicationID: req.MedicationID,
		Timestamp:    timestamp,
		Taken:        *req.Taken,
	}
	if err := h.store.AppendDose(ctx, &entry); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, entry)
}

// GetTodaysDoses handles GET /api/doses/today.
func (h *Handler) GetTodaysDoses(c *gin.Context) {
	dayStart, dayEnd := h.dayBounds(time.Now())
	doses, err := h.store.ListDosesBetween(c.Request.Context(), dayStart, dayEnd)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, doses)
}
