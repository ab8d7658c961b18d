// Package clinicdate implements the date and time string formats exchanged
// with the console: API dates are "YYYY-MM-DD", API times are "HH:MM:SS",
// and browser time inputs carry "HH:MM".
package clinicdate

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	DateLayout          = "2006-01-02"
	TimeLayout          = "15:04:05"
	InputTimeLayout     = "15:04"
	DateTimeInputLayout = "2006-01-02T15:04"
	DisplayDateLayout   = "Jan 2, 2006"
	DisplayTimeLayout   = "3:04 PM"
)

var (
	datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timePattern = regexp.MustCompile(`^\d{2}:\d{2}:\d{2}$`)
)

// IsValidDate reports whether s has the YYYY-MM-DD shape and names a real day.
func IsValidDate(s string) bool {
	if !datePattern.MatchString(s) {
		return false
	}
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// IsValidTime reports whether s has the HH:MM:SS shape and is a real time of day.
func IsValidTime(s string) bool {
	if !timePattern.MatchString(s) {
		return false
	}
	_, err := time.Parse(TimeLayout, s)
	return err == nil
}

// FormatDate renders t as an API date in t's own location.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses an API date at midnight UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return t, nil
}

// NormalizeDate accepts an API date or an RFC 3339 timestamp and returns the
// API date. Timestamps keep their calendar date as written.
func NormalizeDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if len(s) > 10 && s[10] == 'T' {
		s = s[:10]
	}
	if !IsValidDate(s) {
		return "", fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return s, nil
}

// NormalizeTime accepts "HH:MM" or "HH:MM:SS" and returns "HH:MM:SS".
func NormalizeTime(s string) (string, error) {
	s = TimeInputToAPI(strings.TrimSpace(s))
	if !IsValidTime(s) {
		return "", fmt.Errorf("invalid time %q: expected HH:MM or HH:MM:SS", s)
	}
	return s, nil
}

// TimeInputToAPI appends the seconds component when it is missing.
func TimeInputToAPI(value string) string {
	if len(value) == 5 {
		return value + ":00"
	}
	return value
}

// TimeAPIToInput strips the seconds component.
func TimeAPIToInput(value string) string {
	if len(value) < 5 {
		return value
	}
	return value[:5]
}

// DateAPIToInput returns the date part of an API date or timestamp.
func DateAPIToInput(value string) string {
	if len(value) < 10 {
		return value
	}
	return value[:10]
}

// MinutesOfDay converts "HH:MM" or "HH:MM:SS" into minutes since midnight.
// Seconds are ignored.
func MinutesOfDay(s string) (int, error) {
	norm, err := NormalizeTime(s)
	if err != nil {
		return 0, err
	}
	t, _ := time.Parse(TimeLayout, norm)
	return t.Hour()*60 + t.Minute(), nil
}

// Today returns now's calendar date as an API date.
func Today(now time.Time) string {
	return FormatDate(now)
}

// CurrentTime returns now's time of day as an API time.
func CurrentTime(now time.Time) string {
	return now.Format(TimeLayout)
}

// FormatTimeDisplay renders an API time as "9:05 AM". Unparseable input is
// returned unchanged.
func FormatTimeDisplay(s string) string {
	norm, err := NormalizeTime(s)
	if err != nil {
		return s
	}
	t, _ := time.Parse(TimeLayout, norm)
	return t.Format(DisplayTimeLayout)
}

// FormatDateDisplay renders an API date as "Mar 10, 2024". Unparseable input
// is returned unchanged.
func FormatDateDisplay(s string) string {
	t, err := ParseDate(s)
	if err != nil {
		return s
	}
	return t.Format(DisplayDateLayout)
}

// DateOnly truncates t to midnight in its own location.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
