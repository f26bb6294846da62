package schedule

import (
	"time"

	"medreminder-backend/internal/model"
)

// dateOf truncates t to its calendar day in loc.
func dateOf(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// ActiveOn reports whether the medication's schedule window covers the
// calendar day of `day`. Ongoing medications are always active; bounded ones
// are active on the closed interval [startDate, startDate+D days].
func ActiveOn(med model.Medication, day time.Time) (bool, error) {
	days, err := ParseDurationDays(med.Duration)
	if err != nil {
		return false, err
	}
	if days == OngoingDays {
		return true, nil
	}

	loc := day.Location()
	d := dateOf(day, loc)
	start := dateOf(med.StartDate, loc)
	end := start.AddDate(0, 0, days)
	return !d.Before(start) && !d.After(end), nil
}

// ValidationIssue ties a data validation error to the medication it came from.
type ValidationIssue struct {
	MedicationID string `json:"medication_id"`
	Err          error  `json:"-"`
	Message      string `json:"message"`
}

// FilterActive returns the medications active on `day`, preserving catalog
// order. A medication whose duration cannot be parsed is treated as not
// active and reported as a validation issue rather than dropped silently.
func FilterActive(meds []model.Medication, day time.Time) ([]model.Medication, []ValidationIssue) {
	var active []model.Medication
	var issues []ValidationIssue
	for _, med := range meds {
		ok, err := ActiveOn(med, day)
		if err != nil {
			issues = append(issues, ValidationIssue{MedicationID: med.ID, Err: err, Message: err.Error()})
			continue
		}
		if ok {
			active = append(active, med)
		}
	}
	return active, issues
}
