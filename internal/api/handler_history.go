package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"medreminder-backend/internal/history"
)

// GetHistory handles GET /api/history?filter=all|taken|missed. Entries are
// enriched with medication names, filtered, and grouped by calendar day with
// the most recent day first.
func (h *Handler) GetHistory(c *gin.Context) {
	filter, err := history.ParseFilter(c.Query("filter"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	doses, err := h.store.ListDoseHistory(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	meds, err := h.store.ListMedications(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	entries := filter.Apply(history.Enrich(doses, meds))
	groups := history.GroupByDay(entries, h.loc)

	c.JSON(http.StatusOK, gin.H{
		"filter": filter,
		"days":   groups,
	})
}
