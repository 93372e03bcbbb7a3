// Package agecheck parses loosely formatted date strings and decides whether
// they are older than a number of calendar months.
package agecheck

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/danieljhkim/opskit/internal/clock"
)

// ErrUnparsableDate is returned when a string matches none of the known layouts.
var ErrUnparsableDate = errors.New("unparsable date")

// layouts are tried in order. Go accepts fractional seconds after the seconds
// field when parsing, so ".000" and ".000000" inputs match the plain layouts.
var layouts = []string{
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02 15:04:05Z0700",
	"2006-01-02T15:04:05Z0700",
	"2006-01-02 15:04:05MST",
	"2006-01-02T15:04:05MST",
	"2006-01-02 15:04:05 MST",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"Mon Jan _2 15:04:05 2006 -0700",
	"Mon Jan _2 15:04:05 MST 2006",
	time.RFC1123Z,
	"2006-01-02 15:04",
	"2006-01-02",
}

// Layouts returns a copy of the recognized layouts in the order they are tried.
func Layouts() []string {
	out := make([]string, len(layouts))
	copy(out, layouts)
	return out
}

// Parse reads s using the first layout that matches. Strings without an offset
// or zone name are placed in loc.
func Parse(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	s = strings.TrimSpace(s)
	for _, layout := range layouts {
		t, err := time.ParseInLocation(layout, s, loc)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrUnparsableDate, s)
}

// MonthsBefore subtracts months calendar months from t. When the resulting
// month is shorter than t's day, the day is clamped to the month's last day.
func MonthsBefore(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	hour, min, sec := t.Clock()

	idx := int(month) - 1 - months
	year += floorDiv(idx, 12)
	target := time.Month(idx - floorDiv(idx, 12)*12 + 1)

	if last := daysIn(year, target, t.Location()); day > last {
		day = last
	}
	return time.Date(year, target, day, hour, min, sec, t.Nanosecond(), t.Location())
}

// Threshold is the cutoff instant for a months-old comparison.
func Threshold(months int, clk clock.Clock) time.Time {
	return MonthsBefore(clk.Now(), months)
}

// IsOlderThan reports whether the date in s lies before now minus months.
// Parse failures return an error wrapping ErrUnparsableDate.
func IsOlderThan(s string, months int, clk clock.Clock) (bool, error) {
	t, err := Parse(s, clk.Location())
	if err != nil {
		return false, err
	}
	return IsTimeOlderThan(t, months, clk), nil
}

// IsTimeOlderThan is IsOlderThan for an already parsed instant.
func IsTimeOlderThan(t time.Time, months int, clk clock.Clock) bool {
	return t.Before(Threshold(months, clk))
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
