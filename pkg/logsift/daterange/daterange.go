// Package daterange implements the inclusive calendar-date window applied to
// extracted records.
//
// Every bare date is interpreted in UTC: a start date covers the window from
// 00:00:00 UTC, and an end date runs through 23:59:59 UTC of that day.
package daterange

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrInvalidDate is returned for a start or end that is not YYYY-MM-DD.
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidLookback is returned for a negative or over-limit day count.
	ErrInvalidLookback = errors.New("invalid lookback days")
)

// Range is an optional inclusive window. A nil bound is open.
type Range struct {
	Start *time.Time
	End   *time.Time
}

// Open is the unbounded range.
var Open = Range{}

// IsOpen reports whether neither bound is set.
func (r Range) IsOpen() bool {
	return r.Start == nil && r.End == nil
}

// Contains reports whether t falls within the range, bounds included.
func (r Range) Contains(t time.Time) bool {
	if r.Start != nil && t.Before(*r.Start) {
		return false
	}
	if r.End != nil && t.After(*r.End) {
		return false
	}
	return true
}

func (r Range) String() string {
	if r.IsOpen() {
		return "all dates"
	}
	start, end := "*", "*"
	if r.Start != nil {
		start = r.Start.Format(time.DateOnly)
	}
	if r.End != nil {
		end = r.End.Format(time.DateOnly)
	}
	return start + ".." + end
}

// Key is a stable identifier for caching results computed under r.
func (r Range) Key() string {
	var b strings.Builder
	if r.Start != nil {
		b.WriteString(r.Start.UTC().Format(time.RFC3339))
	}
	b.WriteByte('|')
	if r.End != nil {
		b.WriteString(r.End.UTC().Format(time.RFC3339))
	}
	return b.String()
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func endOfDay(t time.Time) time.Time {
	return startOfDay(t).Add(24*time.Hour - time.Second)
}

func parseDay(field, s string) (time.Time, error) {
	t, err := time.ParseInLocation(time.DateOnly, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s %q must be YYYY-MM-DD", ErrInvalidDate, field, s)
	}
	return t, nil
}

// Parse builds a range from optional YYYY-MM-DD strings. Empty strings leave
// that bound open. Start after End is allowed and yields an empty window.
func Parse(start, end string) (Range, error) {
	var r Range
	if strings.TrimSpace(start) != "" {
		t, err := parseDay("start date", start)
		if err != nil {
			return Range{}, err
		}
		r.Start = &t
	}
	if strings.TrimSpace(end) != "" {
		t, err := parseDay("end date", end)
		if err != nil {
			return Range{}, err
		}
		e := endOfDay(t)
		r.End = &e
	}
	return r, nil
}

// Lookback converts a day count into {today-days, today}. A positive maxDays
// caps days.
func Lookback(days, maxDays int, now time.Time) (Range, error) {
	if days < 0 {
		return Range{}, fmt.Errorf("%w: %d is negative", ErrInvalidLookback, days)
	}
	if maxDays > 0 && days > maxDays {
		return Range{}, fmt.Errorf("%w: %d exceeds the limit of %d", ErrInvalidLookback, days, maxDays)
	}
	start := startOfDay(now).AddDate(0, 0, -days)
	end := endOfDay(now)
	return Range{Start: &start, End: &end}, nil
}

// Resolve picks explicit dates when either is given, otherwise a positive
// lookback, otherwise the open range.
func Resolve(start, end string, days, maxDays int, now time.Time) (Range, error) {
	if strings.TrimSpace(start) != "" || strings.TrimSpace(end) != "" {
		return Parse(start, end)
	}
	if days != 0 {
		return Lookback(days, maxDays, now)
	}
	return Open, nil
}
