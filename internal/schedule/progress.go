package schedule

import (
	"time"

	"medreminder-backend/internal/model"
)

// expectedDosesPerDay is a product constant: every active medication counts
// as two expected doses per day regardless of its real frequency.
const expectedDosesPerDay = 2

// Progress summarizes a day's dose completion.
type Progress struct {
	CompletedDoses int     `json:"completed_doses"`
	TotalDoses     int     `json:"total_doses"`
	Ratio          float64 `json:"ratio"`
}

// DailyProgress derives the completion ratio for the calendar day of `day`.
// Completed counts ledger entries marked taken on that day; entries from
// other days are ignored even for active medications. The ratio is
// completed/(active*2), exactly 0 when no medication is active, and is not
// clamped: presentation layers clamp for display.
func DailyProgress(activeCount int, ledger []model.DoseHistory, day time.Time) Progress {
	loc := day.Location()
	d := dateOf(day, loc)

	completed := 0
	for _, entry := range ledger {
		if entry.Taken && dateOf(entry.Timestamp, loc).Equal(d) {
			completed++
		}
	}

	p := Progress{
		CompletedDoses: completed,
		TotalDoses:     activeCount * expectedDosesPerDay,
	}
	if activeCount > 0 {
		p.Ratio = float64(completed) / float64(p.TotalDoses)
	}
	return p
}
