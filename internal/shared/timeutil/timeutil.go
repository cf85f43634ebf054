package timeutil

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// Sheet dates travel as "M/D/YYYY" (no zero padding, US order). Month tokens
// travel as "YYYY-Mon", e.g. "2025-Aug".

const monthTokenLayout = "2006-Jan"

var ErrInvalidDate = errors.New("invalid date, expected M/D/YYYY")

// ParseSheetDate parses "M/D/YYYY", tolerating zero padding and surrounding
// whitespace. The result is midnight UTC.
func ParseSheetDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return time.Time{}, ErrInvalidDate
	}

	month, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	day, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	year, err3 := strconv.Atoi(strings.TrimSpace(parts[2]))
	if err1 != nil || err2 != nil || err3 != nil {
		return time.Time{}, ErrInvalidDate
	}
	if month < 1 || month > 12 || day < 1 || day > 31 || year < 1 {
		return time.Time{}, ErrInvalidDate
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflow (e.g. 2/30 -> 3/2); reject those rows.
	if t.Day() != day || t.Month() != time.Month(month) {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// FormatSheetDate renders a date back to the sheet convention, unpadded.
func FormatSheetDate(t time.Time) string {
	return strconv.Itoa(int(t.Month())) + "/" + strconv.Itoa(t.Day()) + "/" + strconv.Itoa(t.Year())
}

// MonthToken renders the "YYYY-Mon" month token for a date.
func MonthToken(t time.Time) string {
	return t.Format(monthTokenLayout)
}

// ParseMonthToken parses a "YYYY-Mon" token. ok is false for any other form.
func ParseMonthToken(token string) (year int, month time.Month, ok bool) {
	t, err := time.Parse(monthTokenLayout, strings.TrimSpace(token))
	if err != nil {
		return 0, 0, false
	}
	return t.Year(), t.Month(), true
}

// SundayWeek returns the Sunday-anchored week-of-year number (>= 1): the week
// containing January 1st is week 1, and each Sunday starts a new week.
func SundayWeek(t time.Time) int {
	jan1 := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	dayOfYear := t.YearDay()
	offset := int(jan1.Weekday())
	return (dayOfYear+offset-1)/7 + 1
}

// EndOfMonth returns the last calendar day of the given month, midnight UTC.
func EndOfMonth(year int, month time.Month) time.Time {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC)
}
