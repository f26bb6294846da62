package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"medreminder-backend/internal/schedule"
)

// GetFrequencyOptions returns the fixed frequency and duration choices so
// clients render the same pickers the schedule evaluator understands.
func (h *Handler) GetFrequencyOptions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"frequencies": schedule.Frequencies,
		"durations":   schedule.DurationOptions,
	})
}
