package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"medreminder-backend/config"
	"medreminder-backend/internal/model"
	"medreminder-backend/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupTestRouter(t *testing.T) (*gin.Engine, store.Store) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Medication{}, &model.DoseHistory{}, &model.PushSubscription{}))

	cfg := &config.Config{}
	cfg.Reminder.Timezone = "UTC"
	// Generous limits so tests never trip the limiter.
	cfg.Server.RateLimitPerSec = 1000
	cfg.Server.RateLimitBurst = 1000
	cfg.Server.CacheTTLSeconds = 1
	cfg.AuthGate.PromptMessage = "Unlock to access your medications"
	cfg.AuthGate.FallbackLabel = "Use PIN"
	cfg.AuthGate.CancelLabel = "Cancel"

	s := store.NewGormStore(db)
	router := NewRouter(s, cfg, &webpush.Options{VAPIDPublicKey: "test-public-key"})
	return router, s
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestCreateMedication(t *testing.T) {
	router, _ := setupTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/medications", gin.H{
		"name":      "Ibuprofen",
		"dosage":    "200mg",
		"frequency": "Twice daily",
		"duration":  "7 days",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var med model.Medication
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &med))
	assert.NotEmpty(t, med.ID)
	assert.Equal(t, "Ibuprofen", med.Name)
	// Times default from the frequency template when omitted.
	assert.Equal(t, []string{"09:00", "21:00"}, []string(med.Times))
	// Reminders are on unless the client opts out.
	assert.True(t, med.ReminderEnabled)
}

func TestCreateMedicationValidation(t *testing.T) {
	router, s := setupTestRouter(t)

	testCases := []struct {
		name    string
		payload gin.H
	}{
		{
			name:    "missing name",
			payload: gin.H{"frequency": "Once daily", "duration": "7 days"},
		},
		{
			name:    "unknown frequency",
			payload: gin.H{"name": "X", "frequency": "Hourly", "duration": "7 days"},
		},
		{
			name:    "unparseable duration",
			payload: gin.H{"name": "X", "frequency": "Once daily", "duration": "soon"},
		},
		{
			name:    "zero duration",
			payload: gin.H{"name": "X", "frequency": "Once daily", "duration": "0 days"},
		},
		{
			name:    "times count does not match frequency",
			payload: gin.H{"name": "X", "frequency": "Twice daily", "duration": "7 days", "times": []string{"09:00"}},
		},
		{
			name:    "as-needed with scheduled times",
			payload: gin.H{"name": "X", "frequency": "As needed", "duration": "Ongoing", "times": []string{"09:00"}},
		},
		{
			name:    "malformed time",
			payload: gin.H{"name": "X", "frequency": "Once daily", "duration": "7 days", "times": []string{"9am"}},
		},
		{
			name:    "negative supply",
			payload: gin.H{"name": "X", "frequency": "Once daily", "duration": "7 days", "current_supply": -1},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(t, router, http.MethodPost, "/api/medications", tc.payload)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}

	// Rejected requests must leave the catalog untouched.
	meds, err := s.ListMedications(context.Background())
	require.NoError(t, err)
	assert.Empty(t, meds)
}

func TestGetTodayView(t *testing.T) {
	router, s := setupTestRouter(t)
	ctx := context.Background()

	yesterday := time.Now().UTC().AddDate(0, 0, -1)
	medA := model.Medication{Name: "Ibuprofen", Frequency: "Once daily", Duration: "Ongoing", StartDate: yesterday}
	medB := model.Medication{Name: "Amoxicillin", Frequency: "Once daily", Duration: "Ongoing", StartDate: yesterday}
	expired := model.Medication{Name: "Old", Frequency: "Once daily", Duration: "7 days", StartDate: yesterday.AddDate(0, 0, -30)}
	require.NoError(t, s.CreateMedication(ctx, &medA))
	require.NoError(t, s.CreateMedication(ctx, &medB))
	require.NoError(t, s.CreateMedication(ctx, &expired))

	require.NoError(t, s.AppendDose(ctx, &model.DoseHistory{
		MedicationID: medA.ID,
		Timestamp:    time.Now().UTC(),
		Taken:        true,
	}))

	w := doJSON(t, router, http.MethodGet, "/api/medications/today", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Date        string `json:"date"`
		Medications []struct {
			ID    string `json:"id"`
			Taken bool   `json:"taken"`
		} `json:"medications"`
		Progress struct {
			CompletedDoses int     `json:"completed_doses"`
			TotalDoses     int     `json:"total_doses"`
			Ratio          float64 `json:"ratio"`
		} `json:"progress"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	// The expired course is filtered out of the day view.
	require.Len(t, resp.Medications, 2)
	taken := map[string]bool{}
	for _, m := range resp.Medications {
		taken[m.ID] = m.Taken
	}
	assert.True(t, taken[medA.ID])
	assert.False(t, taken[medB.ID])

	assert.Equal(t, 1, resp.Progress.CompletedDoses)
	assert.Equal(t, 4, resp.Progress.TotalDoses)
	assert.InDelta(t, 0.25, resp.Progress.Ratio, 1e-9)
}

func TestRecordDose(t *testing.T) {
	router, s := setupTestRouter(t)
	ctx := context.Background()

	med := model.Medication{
		Name: "Ibuprofen", Frequency: "Once daily", Duration: "Ongoing",
		StartDate: time.Now().UTC(), CurrentSupply: 10,
	}
	require.NoError(t, s.CreateMedication(ctx, &med))

	t.Run("unknown medication", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/doses", gin.H{
			"medication_id": "nope", "taken": true,
		})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("missing taken flag", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/doses", gin.H{
			"medication_id": med.ID,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("taken dose is appended and supply drops", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/doses", gin.H{
			"medication_id": med.ID, "taken": true,
		})
		require.Equal(t, http.StatusCreated, w.Code)

		var entry model.DoseHistory
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entry))
		assert.NotEmpty(t, entry.ID)
		assert.True(t, entry.Taken)

		got, err := s.GetMedication(ctx, med.ID)
		require.NoError(t, err)
		assert.Equal(t, 9, got.CurrentSupply)
	})

	t.Run("recording twice appends a second entry", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/doses", gin.H{
			"medication_id": med.ID, "taken": true,
		})
		require.Equal(t, http.StatusCreated, w.Code)

		doses, err := s.ListDoseHistory(ctx)
		require.NoError(t, err)
		assert.Len(t, doses, 2)
	})
}

func TestGetHistory(t *testing.T) {
	router, s := setupTestRouter(t)
	ctx := context.Background()

	med := model.Medication{Name: "Ibuprofen", Frequency: "Once daily", Duration: "Ongoing", StartDate: time.Now().UTC()}
	require.NoError(t, s.CreateMedication(ctx, &med))

	day := func(offset int, taken bool) {
		require.NoError(t, s.AppendDose(ctx, &model.DoseHistory{
			MedicationID: med.ID,
			Timestamp:    time.Now().UTC().AddDate(0, 0, offset),
			Taken:        taken,
		}))
	}
	day(-2, true)
	day(-1, false)
	day(0, true)

	t.Run("invalid filter", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/history?filter=everything", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missed filter keeps only skipped doses", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/history?filter=missed", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Filter string `json:"filter"`
			Days   []struct {
				Date    string `json:"date"`
				Entries []struct {
					MedicationName string `json:"medication_name"`
					Taken          bool   `json:"taken"`
				} `json:"entries"`
			} `json:"days"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "missed", resp.Filter)
		require.Len(t, resp.Days, 1)
		require.Len(t, resp.Days[0].Entries, 1)
		assert.Equal(t, "Ibuprofen", resp.Days[0].Entries[0].MedicationName)
		assert.False(t, resp.Days[0].Entries[0].Taken)
	})

	t.Run("all groups by day, most recent first", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/history", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Days []struct {
				Date string `json:"date"`
			} `json:"days"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Days, 3)
		assert.Greater(t, resp.Days[0].Date, resp.Days[1].Date)
		assert.Greater(t, resp.Days[1].Date, resp.Days[2].Date)
	})
}

func TestResetFlow(t *testing.T) {
	router, s := setupTestRouter(t)
	ctx := context.Background()

	med := model.Medication{Name: "Ibuprofen", Frequency: "Once daily", Duration: "Ongoing", StartDate: time.Now().UTC()}
	require.NoError(t, s.CreateMedication(ctx, &med))
	require.NoError(t, s.AppendDose(ctx, &model.DoseHistory{MedicationID: med.ID, Timestamp: time.Now().UTC(), Taken: true}))
	require.NoError(t, s.UpsertSubscription(ctx, &model.PushSubscription{Endpoint: "https://example.com/push", P256DH: "k", Auth: "a"}))

	t.Run("confirm without a token is rejected", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/reset/confirm", gin.H{"confirm_token": "bogus"})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		meds, err := s.ListMedications(ctx)
		require.NoError(t, err)
		assert.Len(t, meds, 1, "a failed confirmation must not clear anything")
	})

	w := doJSON(t, router, http.MethodPost, "/api/reset/request", nil)
	require.Equal(t, http.StatusOK, w.Code)
	token, _ := decodeBody(t, w)["confirm_token"].(string)
	require.NotEmpty(t, token)

	t.Run("confirm wipes catalog and ledger", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/reset/confirm", gin.H{"confirm_token": token})
		require.Equal(t, http.StatusOK, w.Code)

		body := decodeBody(t, w)
		assert.EqualValues(t, 0, body["medications"])
		assert.EqualValues(t, 0, body["dose_history"])

		// Device registrations survive the reset.
		subs, err := s.ListSubscriptions(ctx)
		require.NoError(t, err)
		assert.Len(t, subs, 1)
	})

	t.Run("tokens are single use", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/reset/confirm", gin.H{"confirm_token": token})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSubscriptionLifecycle(t *testing.T) {
	router, _ := setupTestRouter(t)
	// A percent-encoded endpoint must round-trip without decoding.
	endpoint := "https://push.example.com/send/abc%2Fdef"

	w := doJSON(t, router, http.MethodPut, "/api/subscriptions", gin.H{
		"endpoint": endpoint, "p256dh": "key", "auth": "secret",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/subscriptions?endpoint="+endpoint, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, endpoint, decodeBody(t, w)["endpoint"])

	// Replacing the keys is idempotent on the endpoint.
	w = doJSON(t, router, http.MethodPut, "/api/subscriptions", gin.H{
		"endpoint": endpoint, "p256dh": "newkey", "auth": "newsecret",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodDelete, "/api/subscriptions", gin.H{"endpoint": endpoint})
	require.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/subscriptions?endpoint="+endpoint, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStaticEndpoints(t *testing.T) {
	router, _ := setupTestRouter(t)

	t.Run("frequency options", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/frequencies", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Frequencies []struct {
				Label string   `json:"label"`
				Times []string `json:"times"`
			} `json:"frequencies"`
			Durations []struct {
				Label string `json:"label"`
				Days  int    `json:"days"`
			} `json:"durations"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

		labels := make(map[string][]string)
		for _, f := range resp.Frequencies {
			labels[f.Label] = f.Times
		}
		assert.Equal(t, []string{"09:00", "21:00"}, labels["Twice daily"])
		assert.Contains(t, labels, "As needed")

		days := make(map[string]int)
		for _, d := range resp.Durations {
			days[d.Label] = d.Days
		}
		assert.Equal(t, -1, days["Ongoing"])
		assert.Equal(t, 7, days["7 days"])
	})

	t.Run("vapid public key", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/vapid_public_key", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "test-public-key", decodeBody(t, w)["public_key"])
	})

	t.Run("auth prompt", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/auth/prompt", nil)
		require.Equal(t, http.StatusOK, w.Code)

		body := decodeBody(t, w)
		assert.Equal(t, "Unlock to access your medications", body["prompt_message"])
		assert.Equal(t, "Use PIN", body["fallback_label"])
		assert.Equal(t, false, body["allow_device_fallback"])
	})
}
