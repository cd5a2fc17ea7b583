package core

import (
	"fmt"
	"time"
)

// CalendarDate is a day-resolution date. All series in the forecasting
// pipeline are keyed by business day, so times-of-day are always truncated.
type CalendarDate struct {
	t time.Time
}

// NewCalendarDate builds a date from year, month and day in UTC.
func NewCalendarDate(year int, month time.Month, day int) CalendarDate {
	return CalendarDate{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a time.Time to its calendar day.
func DateOf(t time.Time) CalendarDate {
	y, m, d := t.Date()
	return NewCalendarDate(y, m, d)
}

// ParseDate parses an ISO date string (2006-01-02).
func ParseDate(s string) (CalendarDate, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return CalendarDate{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// Time returns the underlying time.Time (midnight UTC).
func (d CalendarDate) Time() time.Time { return d.t }

// Year returns the calendar year.
func (d CalendarDate) Year() int { return d.t.Year() }

// Month returns the calendar month.
func (d CalendarDate) Month() time.Month { return d.t.Month() }

// Day returns the day of the month.
func (d CalendarDate) Day() int { return d.t.Day() }

// Weekday returns the day of the week.
func (d CalendarDate) Weekday() time.Weekday { return d.t.Weekday() }

// IsWeekend reports whether the date falls on Saturday or Sunday.
func (d CalendarDate) IsWeekend() bool {
	wd := d.t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// AddDays returns the date shifted by n calendar days.
func (d CalendarDate) AddDays(n int) CalendarDate {
	return CalendarDate{t: d.t.AddDate(0, 0, n)}
}

// Before reports whether d is strictly before u.
func (d CalendarDate) Before(u CalendarDate) bool { return d.t.Before(u.t) }

// After reports whether d is strictly after u.
func (d CalendarDate) After(u CalendarDate) bool { return d.t.After(u.t) }

// Equal reports whether d and u are the same day.
func (d CalendarDate) Equal(u CalendarDate) bool { return d.t.Equal(u.t) }

// IsZero reports whether the date is the zero value.
func (d CalendarDate) IsZero() bool { return d.t.IsZero() }

// String formats the date as ISO 2006-01-02.
func (d CalendarDate) String() string { return d.t.Format("2006-01-02") }

// MonthDay formats the date as MM-DD, the key used for fixed holidays.
func (d CalendarDate) MonthDay() string { return d.t.Format("01-02") }

// Today returns the current calendar date in the given location.
func Today(loc *time.Location) CalendarDate {
	return DateOf(time.Now().In(loc))
}

// Yesterday returns the previous calendar date in the given location.
func Yesterday(loc *time.Location) CalendarDate {
	return Today(loc).AddDays(-1)
}
