package schedule

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidDuration marks a duration label whose day count cannot be parsed.
var ErrInvalidDuration = errors.New("invalid duration")

// OngoingDays is the sentinel day count for an unbounded schedule.
const OngoingDays = -1

var leadingIntRe = regexp.MustCompile(`^-?\d+`)

// ParseDurationDays extracts the day count from a duration label such as
// "7 days" or "Ongoing". The count is OngoingDays for unbounded schedules,
// otherwise a positive number of calendar days.
func ParseDurationDays(label string) (int, error) {
	s := strings.TrimSpace(label)
	if strings.EqualFold(s, "Ongoing") {
		return OngoingDays, nil
	}

	m := leadingIntRe.FindString(s)
	if m == "" {
		return 0, fmt.Errorf("%w: no leading day count in %q", ErrInvalidDuration, label)
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, label)
	}
	if n != OngoingDays && n <= 0 {
		return 0, fmt.Errorf("%w: day count must be positive or %d, got %d", ErrInvalidDuration, OngoingDays, n)
	}
	return n, nil
}
