package schedule

// AsNeeded is the only frequency without fixed clock times.
const AsNeeded = "As needed"

// Frequency pairs a user-facing label with its template of clock times.
type Frequency struct {
	Label string   `json:"label"`
	Times []string `json:"times"`
}

// Frequencies is the fixed set offered by the add-medication form. The
// templates are defaults; users may adjust individual times, but the length
// of a medication's times always matches its frequency's template.
var Frequencies = []Frequency{
	{Label: "Once daily", Times: []string{"09:00"}},
	{Label: "Twice daily", Times: []string{"09:00", "21:00"}},
	{Label: "Three times daily", Times: []string{"09:00", "15:00", "21:00"}},
	{Label: "Four times daily", Times: []string{"09:00", "15:00", "17:00", "21:00"}},
	{Label: AsNeeded, Times: nil},
}

// DurationOption is one of the fixed duration choices.
type DurationOption struct {
	Label string `json:"label"`
	Days  int    `json:"days"`
}

// DurationOptions lists the duration choices offered by the form.
var DurationOptions = []DurationOption{
	{Label: "7 days", Days: 7},
	{Label: "14 days", Days: 14},
	{Label: "30 days", Days: 30},
	{Label: "90 days", Days: 90},
	{Label: "Ongoing", Days: OngoingDays},
}

// TimesFor returns the time template for a frequency label.
func TimesFor(label string) ([]string, bool) {
	for _, f := range Frequencies {
		if f.Label == label {
			return f.Times, true
		}
	}
	return nil, false
}
