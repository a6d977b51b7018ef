package core

import (
	"regexp"
	"time"
)

const periodLayout = "2006-01"

var periodPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// Period is a calendar month formatted as YYYY-MM.
type Period string

// ParsePeriod validates s. An empty string is rejected; callers that want the
// current month use PeriodOf.
func ParsePeriod(s string) (Period, error) {
	if !periodPattern.MatchString(s) {
		return "", ErrInvalidPeriod
	}
	return Period(s), nil
}

// PeriodOf returns the period containing t in loc.
func PeriodOf(t time.Time, loc *time.Location) Period {
	if loc == nil {
		loc = time.UTC
	}
	return Period(t.In(loc).Format(periodLayout))
}

// Range returns the first and last instant of the month in loc, both inclusive.
func (p Period) Range(loc *time.Location) (start, end time.Time, err error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(periodLayout, string(p), loc)
	if err != nil {
		return time.Time{}, time.Time{}, ErrInvalidPeriod
	}
	start = time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, loc)
	end = start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return start, end, nil
}

func (p Period) String() string { return string(p) }
