// Package calendar answers holiday questions for the Brazilian national
// calendar. It is a pure lookup: fixed holidays are keyed by month-day and
// movable feasts are derived from the Gregorian Easter date, so the package
// holds no state and needs no I/O.
package calendar

import (
	"time"

	"lavanda/domain/core"
)

// HolidayType distinguishes month-day holidays from Easter-relative ones.
type HolidayType string

const (
	HolidayFixed    HolidayType = "fixed"
	HolidayMoveable HolidayType = "moveable"
)

// HolidayInfo is the answer to "is this date a holiday".
type HolidayInfo struct {
	IsHoliday bool
	Name      string
	Type      HolidayType
}

// EveInfo is the answer to "is tomorrow a holiday".
type EveInfo struct {
	IsHolidayEve bool
	HolidayName  string
}

// fixedHolidays is keyed by MM-DD, independent of year.
var fixedHolidays = map[string]string{
	"01-01": "Confraternização Universal",
	"04-21": "Tiradentes",
	"05-01": "Dia do Trabalho",
	"09-07": "Independência do Brasil",
	"10-12": "Nossa Senhora Aparecida",
	"11-02": "Finados",
	"11-15": "Proclamação da República",
	"11-20": "Consciência Negra",
	"12-25": "Natal",
}

// moveableOffsets maps holiday names to day offsets from Easter Sunday.
var moveableOffsets = []struct {
	name   string
	offset int
}{
	{"Segunda-feira de Carnaval", -48},
	{"Terça-feira de Carnaval", -47},
	{"Sexta-feira Santa", -2},
	{"Corpus Christi", 60},
}

// EasterSunday computes Gregorian Easter for a year using the
// Meeus/Jones/Butcher integer algorithm.
func EasterSunday(year int) core.CalendarDate {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	return core.NewCalendarDate(year, time.Month(month), day)
}

// IsHoliday reports whether a date is a national holiday.
func IsHoliday(date core.CalendarDate) HolidayInfo {
	if name, ok := fixedHolidays[date.MonthDay()]; ok {
		return HolidayInfo{IsHoliday: true, Name: name, Type: HolidayFixed}
	}

	easter := EasterSunday(date.Year())
	for _, mh := range moveableOffsets {
		if easter.AddDays(mh.offset).Equal(date) {
			return HolidayInfo{IsHoliday: true, Name: mh.name, Type: HolidayMoveable}
		}
	}

	return HolidayInfo{}
}

// IsHolidayEve reports whether the day after the given date is a holiday.
func IsHolidayEve(date core.CalendarDate) EveInfo {
	next := IsHoliday(date.AddDays(1))
	if !next.IsHoliday {
		return EveInfo{}
	}
	return EveInfo{IsHolidayEve: true, HolidayName: next.Name}
}
