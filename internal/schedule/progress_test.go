package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"medreminder-backend/internal/model"
)

func TestDailyProgress(t *testing.T) {
	today := time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)
	at := func(hour int) time.Time {
		return time.Date(2024, time.March, 10, hour, 0, 0, 0, time.UTC)
	}

	testCases := []struct {
		name        string
		activeCount int
		ledger      []model.DoseHistory
		expected    Progress
	}{
		{
			name:        "no active medications means zero regardless of ledger",
			activeCount: 0,
			ledger: []model.DoseHistory{
				{MedicationID: "a", Timestamp: at(9), Taken: true},
			},
			expected: Progress{CompletedDoses: 1, TotalDoses: 0, Ratio: 0},
		},
		{
			name:        "two active medications, one dose taken",
			activeCount: 2,
			ledger: []model.DoseHistory{
				{MedicationID: "a", Timestamp: at(9), Taken: true},
			},
			expected: Progress{CompletedDoses: 1, TotalDoses: 4, Ratio: 0.25},
		},
		{
			name:        "not-taken entries do not count",
			activeCount: 2,
			ledger: []model.DoseHistory{
				{MedicationID: "a", Timestamp: at(9), Taken: true},
				{MedicationID: "b", Timestamp: at(10), Taken: false},
			},
			expected: Progress{CompletedDoses: 1, TotalDoses: 4, Ratio: 0.25},
		},
		{
			name:        "entries from other days are excluded",
			activeCount: 1,
			ledger: []model.DoseHistory{
				{MedicationID: "a", Timestamp: at(9).AddDate(0, 0, -1), Taken: true},
				{MedicationID: "a", Timestamp: at(9), Taken: true},
			},
			expected: Progress{CompletedDoses: 1, TotalDoses: 2, Ratio: 0.5},
		},
		{
			name:        "duplicate records both count and the ratio is not clamped",
			activeCount: 1,
			ledger: []model.DoseHistory{
				{MedicationID: "a", Timestamp: at(9), Taken: true},
				{MedicationID: "a", Timestamp: at(9), Taken: true},
				{MedicationID: "a", Timestamp: at(10), Taken: true},
			},
			expected: Progress{CompletedDoses: 3, TotalDoses: 2, Ratio: 1.5},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, DailyProgress(tc.activeCount, tc.ledger, today))
		})
	}
}
