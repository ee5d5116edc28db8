package scheduling

import (
	"fmt"
	"time"

	"github.com/swas/backend/internal/domain/shared"
)

// DateLayout is the calendar-day format used by appointments and unavailability
const DateLayout = "2006-01-02"

// ClockTime is a wall-clock time of day in minutes since midnight
type ClockTime int

// ParseClockTime parses an HH:mm string
func ParseClockTime(s string) (ClockTime, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, shared.NewDomainError("INVALID_TIME", fmt.Sprintf("Time %q must be HH:mm", s))
	}
	return ClockTime(t.Hour()*60 + t.Minute()), nil
}

// String formats as HH:mm
func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// TimeRange is a half-open interval within one day
type TimeRange struct {
	Start ClockTime
	End   ClockTime
}

// NewTimeRange parses start and end and checks start < end
func NewTimeRange(start, end string) (TimeRange, error) {
	s, err := ParseClockTime(start)
	if err != nil {
		return TimeRange{}, err
	}
	e, err := ParseClockTime(end)
	if err != nil {
		return TimeRange{}, err
	}
	if s >= e {
		return TimeRange{}, shared.NewDomainError("INVALID_TIME_RANGE", "Start time must be before end time")
	}
	return TimeRange{Start: s, End: e}, nil
}

// Overlaps reports whether r and o share any minute
func (r TimeRange) Overlaps(o TimeRange) bool {
	return r.Start < o.End && r.End > o.Start
}

// Day returns the calendar date of t, read in t's own location, as UTC
// midnight. Scheduling dates are calendar days and carry no zone.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD calendar date
func ParseDay(raw string) (time.Time, error) {
	return time.Parse(DateLayout, raw)
}

// SameDay reports whether a and b carry the same calendar date, each read
// in its own location
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
