// Package calendar defines the in-game clock.
// This package is PURE and must NOT import any infrastructure packages.
//
// GameDate is the only clock the simulation knows about. All scheduling
// (stage durations, vote dates, elections) is expressed as a GameDate and
// advanced with exact calendar arithmetic, never with time.Time.
package calendar

import (
	"errors"
	"fmt"
)

// ErrInvalidDate is returned when a date does not exist on the calendar.
var ErrInvalidDate = errors.New("invalid game date")

// Weekday mirrors the usual Sunday-first numbering.
type Weekday int

const (
	Sunday Weekday = iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

var weekdayNames = [...]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

func (w Weekday) String() string {
	if w < Sunday || w > Saturday {
		return fmt.Sprintf("Weekday(%d)", int(w))
	}
	return weekdayNames[w]
}

// GameDate is a calendar day in the simulation.
type GameDate struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

// New builds a validated date.
func New(year, month, day int) (GameDate, error) {
	d := GameDate{Year: year, Month: month, Day: day}
	if !d.Valid() {
		return GameDate{}, fmt.Errorf("%w: %04d-%02d-%02d", ErrInvalidDate, year, month, day)
	}
	return d, nil
}

// MustNew is New for literals in tests and fixtures.
func MustNew(year, month, day int) GameDate {
	d, err := New(year, month, day)
	if err != nil {
		panic(err)
	}
	return d
}

// Parse reads a YYYY-MM-DD string.
func Parse(s string) (GameDate, error) {
	var y, m, d int
	if _, err := fmt.Sscanf(s, "%d-%d-%d", &y, &m, &d); err != nil {
		return GameDate{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return New(y, m, d)
}

// IsLeapYear reports Gregorian leap years.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysInMonth returns the number of days in the month, or 0 for an invalid month.
func DaysInMonth(year, month int) int {
	switch month {
	case 1, 3, 5, 7, 8, 10, 12:
		return 31
	case 4, 6, 9, 11:
		return 30
	case 2:
		if IsLeapYear(year) {
			return 29
		}
		return 28
	}
	return 0
}

// IsZero reports the unset date.
func (d GameDate) IsZero() bool {
	return d == GameDate{}
}

// Valid reports whether the date exists.
func (d GameDate) Valid() bool {
	if d.Month < 1 || d.Month > 12 || d.Day < 1 {
		return false
	}
	return d.Day <= DaysInMonth(d.Year, d.Month)
}

// Next returns the following day, rolling months and years over.
func (d GameDate) Next() GameDate {
	if d.Day < DaysInMonth(d.Year, d.Month) {
		return GameDate{Year: d.Year, Month: d.Month, Day: d.Day + 1}
	}
	if d.Month < 12 {
		return GameDate{Year: d.Year, Month: d.Month + 1, Day: 1}
	}
	return GameDate{Year: d.Year + 1, Month: 1, Day: 1}
}

// Prev returns the previous day.
func (d GameDate) Prev() GameDate {
	if d.Day > 1 {
		return GameDate{Year: d.Year, Month: d.Month, Day: d.Day - 1}
	}
	if d.Month > 1 {
		return GameDate{Year: d.Year, Month: d.Month - 1, Day: DaysInMonth(d.Year, d.Month-1)}
	}
	return GameDate{Year: d.Year - 1, Month: 12, Day: 31}
}

// AddDays moves n days forward (or backward for negative n).
func (d GameDate) AddDays(n int) GameDate {
	if n < 0 {
		return FromOrdinal(d.Ordinal() + n)
	}
	// Whole months first, then single days.
	for n > 0 {
		remaining := DaysInMonth(d.Year, d.Month) - d.Day
		if n <= remaining {
			d.Day += n
			return d
		}
		n -= remaining + 1
		if d.Month == 12 {
			d = GameDate{Year: d.Year + 1, Month: 1, Day: 1}
		} else {
			d = GameDate{Year: d.Year, Month: d.Month + 1, Day: 1}
		}
	}
	return d
}

// AddMonths keeps the day clamped to the target month length.
func (d GameDate) AddMonths(n int) GameDate {
	total := d.Year*12 + (d.Month - 1) + n
	year, month := total/12, total%12+1
	day := d.Day
	if max := DaysInMonth(year, month); day > max {
		day = max
	}
	return GameDate{Year: year, Month: month, Day: day}
}

// AddYears is AddMonths(12*n).
func (d GameDate) AddYears(n int) GameDate {
	return d.AddMonths(12 * n)
}

// Ordinal counts days since 0001-01-01 (day 1).
func (d GameDate) Ordinal() int {
	y := d.Year - 1
	days := y*365 + y/4 - y/100 + y/400
	for m := 1; m < d.Month; m++ {
		days += DaysInMonth(d.Year, m)
	}
	return days + d.Day
}

// FromOrdinal is the inverse of Ordinal.
func FromOrdinal(n int) GameDate {
	// Estimate the year, then correct.
	year := n/366 + 1
	for (GameDate{Year: year + 1, Month: 1, Day: 1}).Ordinal() <= n {
		year++
	}
	for (GameDate{Year: year, Month: 1, Day: 1}).Ordinal() > n {
		year--
	}
	rest := n - (GameDate{Year: year, Month: 1, Day: 1}).Ordinal() + 1
	month := 1
	for rest > DaysInMonth(year, month) {
		rest -= DaysInMonth(year, month)
		month++
	}
	return GameDate{Year: year, Month: month, Day: rest}
}

// DaysUntil returns other - d in days.
func (d GameDate) DaysUntil(other GameDate) int {
	return other.Ordinal() - d.Ordinal()
}

// Compare returns -1, 0 or +1.
func (d GameDate) Compare(other GameDate) int {
	switch {
	case d.Year != other.Year:
		return sign(d.Year - other.Year)
	case d.Month != other.Month:
		return sign(d.Month - other.Month)
	default:
		return sign(d.Day - other.Day)
	}
}

func (d GameDate) Before(other GameDate) bool { return d.Compare(other) < 0 }
func (d GameDate) After(other GameDate) bool  { return d.Compare(other) > 0 }
func (d GameDate) Equal(other GameDate) bool  { return d == other }

// OnOrAfter is the scheduling check used everywhere: has the date arrived?
func (d GameDate) OnOrAfter(other GameDate) bool { return d.Compare(other) >= 0 }

// Max returns the later date.
func Max(a, b GameDate) GameDate {
	if a.After(b) {
		return a
	}
	return b
}

// Weekday uses Sakamoto's method.
func (d GameDate) Weekday() Weekday {
	t := [...]int{0, 3, 2, 5, 0, 3, 5, 1, 4, 6, 2, 4}
	y := d.Year
	if d.Month < 3 {
		y--
	}
	w := (y + y/4 - y/100 + y/400 + t[d.Month-1] + d.Day) % 7
	if w < 0 {
		w += 7
	}
	return Weekday(w)
}

// IsFirstOfMonth triggers the monthly pipeline.
func (d GameDate) IsFirstOfMonth() bool { return d.Day == 1 }

// IsNewYear triggers the yearly routine.
func (d GameDate) IsNewYear() bool { return d.Month == 1 && d.Day == 1 }

func (d GameDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}
