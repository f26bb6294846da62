package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"medreminder-backend/internal/model"
	"medreminder-backend/internal/schedule"
)

type createMedicationRequest struct {
	Name            string    `json:"name" binding:"required"`
	Dosage          string    `json:"dosage"`
	Frequency       string    `json:"frequency" binding:"required"`
	Duration        string    `json:"duration" binding:"required"`
	StartDate       time.Time `json:"start_date"`
	Times           []string  `json:"times"`
	Color           string    `json:"color"`
	ReminderEnabled *bool     `json:"reminder_enabled"`
	RefillReminder  bool      `json:"refill_reminder"`
	CurrentSupply   int       `json:"current_supply"`
	RefillAt        int       `json:"refill_at"`
}

// validate enforces the catalog invariants at the boundary: a known
// frequency, a parseable duration, and times that match the frequency's
// template. Nothing is persisted when validation fails.
func (req *createMedicationRequest) validate() ([]string, error) {
	template, ok := schedule.TimesFor(req.Frequency)
	if !ok {
		return nil, fmt.Errorf("unknown frequency: %q", req.Frequency)
	}

	if _, err := schedule.ParseDurationDays(req.Duration); err != nil {
		return nil, err
	}

	times := req.Times
	if len(times) == 0 {
		times = template
	}
	if req.Frequency == schedule.AsNeeded {
		if len(times) != 0 {
			return nil, fmt.Errorf("%q medications take no scheduled times", schedule.AsNeeded)
		}
	} else if len(times) != len(template) {
		return nil, fmt.Errorf("frequency %q expects %d times, got %d", req.Frequency, len(template), len(times))
	}
	for _, hm := range times {
		if _, err := time.Parse("15:04", hm); err != nil {
			return nil, fmt.Errorf("invalid time %q: expected HH:MM", hm)
		}
	}

	if req.CurrentSupply < 0 || req.RefillAt < 0 {
		return nil, fmt.Errorf("supply counters must not be negative")
	}

	return times, nil
}

// GetMedications handles GET /api/medications.
func (h *Handler) GetMedications(c *gin.Context) {
	meds, err := h.store.ListMedications(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, meds)
}

// CreateMedication handles POST /api/medications.
func (h *Handler) CreateMedication(c *gin.Context) {
	var req createMedicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	times, err := req.validate()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	startDate := req.StartDate
	if startDate.IsZero() {
		startDate = time.Now().In(h.loc)
	}
	reminderEnabled := true
	if req.ReminderEnabled != nil {
		reminderEnabled = *req.ReminderEnabled
	}

	med := model.Medication{
		Name:            req.Name,
		Dosage:          req.Dosage,
		Frequency:       req.Frequency,
		Times:           datatypes.NewJSONSlice(times),
		Duration:        req.Duration,
		StartDate:       startDate,
		Color:           req.Color,
		ReminderEnabled: reminderEnabled,
		RefillReminder:  req.RefillReminder,
		CurrentSupply:   req.CurrentSupply,
		RefillAt:        req.RefillAt,
	}

	if err := h.store.CreateMedication(c.Request.Context(), &med); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, med)
}

// todayMedication is a catalog entry flattened with its taken flag.
type todayMedication struct {
	model.Medication
	Taken bool `json:"taken"`
}

type todayResponse struct {
	Date        string                     `json:"date"`
	Medications []todayMedication          `json:"medications"`
	Progress    schedule.Progress          `json:"progress"`
	Issues      []schedule.ValidationIssue `json:"issues,omitempty"`
}

// GetTodayView handles GET /api/medications/today: the medications active
// today, whether each has a taken dose recorded, and the day's progress.
func (h *Handler) GetTodayView(c *gin.Context) {
	ctx := c.Request.Context()
	now := time.Now().In(h.loc)

	meds, err := h.store.ListMedications(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	active, issues := schedule.FilterActive(meds, now)

	dayStart, dayEnd := h.dayBounds(now)
	doses, err := h.store.ListDosesBetween(ctx, dayStart, dayEnd)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	takenByMed := make(map[string]bool)
	for _, dose := range doses {
		if dose.Taken {
			takenByMed[dose.MedicationID] = true
		}
	}

	response := todayResponse{
		Date:        now.Format("2006-01-02"),
		Medications: make([]todayMedication, 0, len(active)),
		Progress:    schedule.DailyProgress(len(active), doses, now),
		Issues:      issues,
	}
	for _, med := range active {
		response.Medications = append(response.Medications, todayMedication{
			Medication: med,
			Taken:      takenByMed[med.ID],
		})
	}

	c.JSON(http.StatusOK, response)
}
