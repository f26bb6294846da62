package history

import (
	"fmt"
	"sort"
	"time"

	"medreminder-backend/internal/model"
)

// UnknownMedication is displayed when a ledger entry's medication reference
// no longer resolves. A dangling reference is expected after a data reset
// and is never an error.
const UnknownMedication = "Unknown Medication"

// Filter selects which ledger entries a history view shows.
type Filter string

const (
	FilterAll    Filter = "all"
	FilterTaken  Filter = "taken"
	FilterMissed Filter = "missed"
)

// ParseFilter maps a query value to a Filter. The empty string means all.
func ParseFilter(s string) (Filter, error) {
	switch Filter(s) {
	case "", FilterAll:
		return FilterAll, nil
	case FilterTaken:
		return FilterTaken, nil
	case FilterMissed:
		return FilterMissed, nil
	}
	return "", fmt.Errorf("unknown history filter: %q", s)
}

// Entry is a ledger record enriched with its medication's display fields.
type Entry struct {
	model.DoseHistory
	MedicationName string `json:"medication_name"`
	Dosage         string `json:"dosage"`
}

// Enrich joins ledger entries with the catalog, preserving ledger order.
func Enrich(doses []model.DoseHistory, meds []model.Medication) []Entry {
	byID := make(map[string]model.Medication, len(meds))
	for _, m := range meds {
		byID[m.ID] = m
	}

	entries := make([]Entry, 0, len(doses))
	for _, dose := range doses {
		e := Entry{DoseHistory: dose, MedicationName: UnknownMedication}
		if med, ok := byID[dose.MedicationID]; ok {
			e.MedicationName = med.Name
			e.Dosage = med.Dosage
		}
		entries = append(entries, e)
	}
	return entries
}

// Apply returns the entries matching the filter, preserving order.
func (f Filter) Apply(entries []Entry) []Entry {
	if f == FilterAll {
		return entries
	}
	wantTaken := f == FilterTaken
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Taken == wantTaken {
			out = append(out, e)
		}
	}
	return out
}

// DayGroup collects one calendar day's entries.
type DayGroup struct {
	Date    string  `json:"date"` // "2006-01-02"
	Entries []Entry `json:"entries"`
}

// GroupByDay buckets entries by the calendar day of their timestamp in loc,
// most recent day first. Within a day the incoming order is kept; no
// secondary sort is applied.
func GroupByDay(entries []Entry, loc *time.Location) []DayGroup {
	buckets := make(map[string]*DayGroup)
	var order []string
	for _, e := range entries {
		date := e.Timestamp.In(loc).Format("2006-01-02")
		g, ok := buckets[date]
		if !ok {
			g = &DayGroup{Date: date}
			buckets[date] = g
			order = append(order, date)
		}
		g.Entries = append(g.Entries, e)
	}

	sort.Sort(sort.Reverse(sort.StringSlice(order)))

	groups := make([]DayGroup, 0, len(order))
	for _, date := range order {
		groups = append(groups, *buckets[date])
	}
	return groups
}
