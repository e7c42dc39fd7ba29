package core

import "time"

// Date is a day-granular calendar date in UTC.
type Date struct {
	time.Time
}

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a timestamp to its UTC calendar day.
func DateOf(t time.Time) Date {
	y, m, d := t.UTC().Date()
	return NewDate(y, int(m), d)
}

// Day returns the day of the month.
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month as 1-12.
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year.
func (d Date) Year() int {
	return d.Time.Year()
}

// IsZero reports whether the date is unset.
func (d Date) IsZero() bool {
	return d.Time.IsZero()
}

// Before reports whether d is earlier than other.
func (d Date) Before(other Date) bool {
	return d.Time.Before(other.Time)
}

// After reports whether d is later than other.
func (d Date) After(other Date) bool {
	return d.Time.After(other.Time)
}

// Equal reports whether d and other are the same day.
func (d Date) Equal(other Date) bool {
	return d.Time.Equal(other.Time)
}

// DaysUntil returns the number of whole days from d to other.
// Negative when other is in the past.
func (d Date) DaysUntil(other Date) int {
	return int(other.Time.Sub(d.Time).Hours() / 24)
}

// Validate rejects the zero date.
func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// MonthStart returns the first day of the date's month.
func MonthStart(d Date) Date {
	return NewDate(d.Year(), d.Month(), 1)
}

// NextMonthStart returns the first day of the month after the date's month,
// handling the December to January rollover.
func NextMonthStart(d Date) Date {
	if d.Month() == 12 {
		return NewDate(d.Year()+1, 1, 1)
	}
	return NewDate(d.Year(), d.Month()+1, 1)
}

// PrevMonthStart returns the first day of the month before the date's month.
func PrevMonthStart(d Date) Date {
	if d.Month() == 1 {
		return NewDate(d.Year()-1, 12, 1)
	}
	return NewDate(d.Year(), d.Month()-1, 1)
}

// MonthEnd returns the last day of the date's month.
func MonthEnd(d Date) Date {
	next := NextMonthStart(d)
	return DateOf(next.Time.AddDate(0, 0, -1))
}

// MonthsInclusive counts calendar months from the month of from to the
// month of to, both ends included. MonthsInclusive(Jan, Mar) == 3.
func MonthsInclusive(from, to Date) int {
	return (to.Year()-from.Year())*12 + (to.Month() - from.Month()) + 1
}
