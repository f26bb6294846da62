package schedule

import (
	"time"

	"medreminder-backend/internal/model"
)

const clockLayout = "15:04"

// DueTimes returns the medication's scheduled clock times that fall inside
// the half-open interval (from, to], in to's location. Malformed entries in
// the times list are skipped. Activity and reminder gating are the caller's
// concern; this only matches clock times against the window.
func DueTimes(med model.Medication, from, to time.Time) []string {
	loc := to.Location()
	from = from.In(loc)

	var due []string
	for day := dateOf(from, loc); !day.After(dateOf(to, loc)); day = day.AddDate(0, 0, 1) {
		for _, hm := range med.Times {
			t, err := time.ParseInLocation(clockLayout, hm, loc)
			if err != nil {
				continue
			}
			at := time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, loc)
			if at.After(from) && !at.After(to) {
				due = append(due, hm)
			}
		}
	}
	return due
}
