package analytics

import (
	"errors"
	"fmt"
	"time"
)

// DefaultPeriodDays is used when no positive day count is supplied.
const DefaultPeriodDays = 30

// ErrInvalidPeriod is returned when an explicit range ends before it starts.
var ErrInvalidPeriod = errors.New("invalid period")

// Period is a closed instant range [Start, End].
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Days  int       `json:"days"`
}

// ResolvePeriod turns a relative day count or an explicit range into a
// concrete Period. An explicit start wins over days; a missing end defaults
// to now.
func ResolvePeriod(days int, start, end *time.Time, now time.Time) (Period, error) {
	if start != nil {
		e := now
		if end != nil {
			e = *end
		}
		if e.Before(*start) {
			return Period{}, fmt.Errorf("%w: end %s is before start %s", ErrInvalidPeriod,
				e.Format(time.RFC3339), start.Format(time.RFC3339))
		}
		return Period{
			Start: *start,
			End:   e,
			Days:  int(e.Sub(*start).Hours()/24 + 0.5),
		}, nil
	}

	if days <= 0 {
		days = DefaultPeriodDays
	}
	e := now
	if end != nil {
		e = *end
	}
	return Period{
		Start: e.AddDate(0, 0, -days),
		End:   e,
		Days:  days,
	}, nil
}

// Contains reports whether t falls inside the period, both ends inclusive.
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && !t.After(p.End)
}

// ContainsPtr is Contains for nullable timestamps; nil is never contained.
func (p Period) ContainsPtr(t *time.Time) bool {
	return t != nil && p.Contains(*t)
}

// MonthStart returns the first instant of t's calendar month in t's location.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// TrailingMonths returns the first instant of each of the n calendar months
// ending with the month containing ref, oldest first.
func TrailingMonths(ref time.Time, n int) []time.Time {
	if n <= 0 {
		return nil
	}
	first := MonthStart(ref).AddDate(0, -(n - 1), 0)
	months := make([]time.Time, n)
	for i := range months {
		months[i] = first.AddDate(0, i, 0)
	}
	return months
}

// MonthKey formats a month bucket as YYYY-MM.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// DayKey formats a day bucket as YYYY-MM-DD.
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// DaysInRange returns the midnight of every calendar day touched by the period,
// oldest first.
func (p Period) DaysInRange() []time.Time {
	start := time.Date(p.Start.Year(), p.Start.Month(), p.Start.Day(), 0, 0, 0, 0, p.Start.Location())
	var days []time.Time
	for d := start; !d.After(p.End); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}
