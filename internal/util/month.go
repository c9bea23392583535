package util

import (
	"fmt"
	"strconv"
	"time"
)

// DateKeyLayout is the fixed-width calendar date format used for ledger dates.
// Keys compare correctly as plain strings.
const DateKeyLayout = "2006-01-02"

// PreviousMonth returns the year and month for the previous month
func PreviousMonth(year, month int) (int, int) {
	if month == 1 {
		return year - 1, 12
	}
	return year, month - 1
}

// NextMonth returns the year and month for the following month
func NextMonth(year, month int) (int, int) {
	if month == 12 {
		return year + 1, 1
	}
	return year, month + 1
}

// ShiftMonth moves year/month by n months, rolling the year as needed.
func ShiftMonth(year, month, n int) (int, int) {
	idx := year*12 + (month - 1) + n
	return idx / 12, idx%12 + 1
}

// ToLocalDateKey formats t as YYYY-MM-DD on the calendar of t's own location,
// so a local midnight never slips to the previous UTC day.
func ToLocalDateKey(t time.Time) string {
	return t.Format(DateKeyLayout)
}

// DateKey builds a zero-padded key. The day is not range checked.
func DateKey(year, month, day int) string {
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
}

// ParseDateKey parses a key into a UTC midnight time.
func ParseDateKey(key string) (time.Time, error) {
	t, err := time.Parse(DateKeyLayout, key)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date key %q: %w", key, err)
	}
	return t, nil
}

// SplitDateKey returns the numeric year, month and day of a key.
func SplitDateKey(key string) (year, month, day int, err error) {
	if len(key) != 10 || key[4] != '-' || key[7] != '-' {
		return 0, 0, 0, fmt.Errorf("invalid date key %q", key)
	}
	if year, err = strconv.Atoi(key[0:4]); err != nil {
		return 0, 0, 0, fmt.Errorf("invalid date key %q: %w", key, err)
	}
	if month, err = strconv.Atoi(key[5:7]); err != nil {
		return 0, 0, 0, fmt.Errorf("invalid date key %q: %w", key, err)
	}
	if day, err = strconv.Atoi(key[8:10]); err != nil {
		return 0, 0, 0, fmt.Errorf("invalid date key %q: %w", key, err)
	}
	return year, month, day, nil
}

// DaysInMonth returns the number of days of the given month.
func DaysInMonth(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// CalculateActualDate returns the actual date for a target day in a given month,
// handling months with fewer days (e.g., day 31 in February returns Feb 28/29)
func CalculateActualDate(year int, month time.Month, targetDay int) time.Time {
	lastDay := DaysInMonth(year, int(month))

	actualDay := targetDay
	if actualDay > lastDay {
		actualDay = lastDay
	}

	return time.Date(year, month, actualDay, 0, 0, 0, 0, time.UTC)
}

// ClampedDateKey is CalculateActualDate formatted as a key.
func ClampedDateKey(year, month, day int) string {
	return CalculateActualDate(year, time.Month(month), day).Format(DateKeyLayout)
}

// AddMonthsClamped adds n calendar months to t. When the day does not exist in
// the target month it is clamped to the month's last day (Jan 31 + 1 = Feb 28/29).
// The time of day and location are preserved.
func AddMonthsClamped(t time.Time, n int) time.Time {
	year, month := ShiftMonth(t.Year(), int(t.Month()), n)
	day := t.Day()
	if last := DaysInMonth(year, month); day > last {
		day = last
	}
	return time.Date(year, time.Month(month), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// MonthBounds returns the first and last date keys of a month.
func MonthBounds(year, month int) (start, end string) {
	return DateKey(year, month, 1), DateKey(year, month, DaysInMonth(year, month))
}

// AddDays shifts a date key by n days.
func AddDays(key string, n int) (string, error) {
	t, err := ParseDateKey(key)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, n).Format(DateKeyLayout), nil
}
