// Package timeutil converts between clock strings, calendar dates and
// minute-of-day offsets. All conversions happen in a single configured
// time zone; callers must not mix locations.
package timeutil

import (
	"fmt"
	"time"
)

const (
	DateLayout = "2006-01-02"

	// MinutesPerDay bounds a minute-of-day value: valid offsets are [0, 1440).
	MinutesPerDay = 24 * 60
)

var instantLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
}

// ParseClock converts "HH:MM" (or "HH:MM:SS", seconds ignored) to minutes
// since midnight.
func ParseClock(s string) (int, error) {
	var hours, minutes, seconds int
	if _, err := fmt.Sscanf(s, "%d:%d:%d", &hours, &minutes, &seconds); err != nil {
		if _, err := fmt.Sscanf(s, "%d:%d", &hours, &minutes); err != nil {
			return 0, fmt.Errorf("invalid clock value %q", s)
		}
	}
	if hours < 0 || hours > 23 || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("clock value %q out of range", s)
	}
	return hours*60 + minutes, nil
}

// FormatClock converts minutes since midnight to zero-padded "HH:MM".
func FormatClock(minute int) string {
	return fmt.Sprintf("%02d:%02d", minute/60, minute%60)
}

// ParseDate parses a YYYY-MM-DD string as midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return t, nil
}

// WeekdayName resolves the weekday ("Monday".."Sunday") of a YYYY-MM-DD date
// in loc. The same names key stored availability windows.
func WeekdayName(date string, loc *time.Location) (string, error) {
	t, err := ParseDate(date, loc)
	if err != nil {
		return "", err
	}
	return t.Weekday().String(), nil
}

// ValidWeekday reports whether s is one of the seven English weekday names.
func ValidWeekday(s string) bool {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if s == d.String() {
			return true
		}
	}
	return false
}

// SplitInstant parses a combined date+time ("YYYY-MM-DD HH:MM", T separator
// and trailing seconds accepted) in loc and splits it into the calendar date
// and the minute-of-day offset.
func SplitInstant(s string, loc *time.Location) (date string, minute int, err error) {
	var t time.Time
	for _, layout := range instantLayouts {
		if t, err = time.ParseInLocation(layout, s, loc); err == nil {
			return t.Format(DateLayout), t.Hour()*60 + t.Minute(), nil
		}
	}
	return "", 0, fmt.Errorf("invalid start time %q: expected YYYY-MM-DD HH:MM", s)
}

// CombineDateMinute builds the instant at minute-of-day on the given date in loc.
func CombineDateMinute(date string, minute int, loc *time.Location) (time.Time, error) {
	t, err := ParseDate(date, loc)
	if err != nil {
		return time.Time{}, err
	}
	return t.Add(time.Duration(minute) * time.Minute), nil
}
