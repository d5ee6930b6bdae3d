package domain

import "time"

// Date-only values (expiration, registration, session dates) are stored as
// midnight UTC of the civil date they represent, so they compare and decode
// the same no matter which timezone the server runs in.

// CivilDate truncates t to its calendar date in t's own location and returns
// that date at midnight UTC.
func CivilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AddMonths adds n calendar months, clamping the day to the last day of the
// target month (Jan 31 + 1 month = Feb 28/29).
func AddMonths(date time.Time, n int) time.Time {
	y, m, d := date.Date()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, date.Location())
	last := daysIn(first.Year(), first.Month())
	if d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, date.Hour(), date.Minute(), date.Second(), date.Nanosecond(), date.Location())
}

// AddDays adds n calendar days to a date.
func AddDays(date time.Time, n int) time.Time {
	return date.AddDate(0, 0, n)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// MonthRange returns the first day of the month containing date and the first
// day of the following month, both as civil dates.
func MonthRange(date time.Time) (start, end time.Time) {
	y, m, _ := date.Date()
	start = time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// PreviousMonthRange returns the civil month before the one containing date.
func PreviousMonthRange(date time.Time) (start, end time.Time) {
	thisStart, _ := MonthRange(date)
	return thisStart.AddDate(0, -1, 0), thisStart
}

// DayBounds returns the instants at which the civil day containing t starts
// and ends in loc.
func DayBounds(t time.Time, loc *time.Location) (start, end time.Time) {
	local := t.In(loc)
	y, m, d := local.Date()
	start = time.Date(y, m, d, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

// MonthBounds returns the instants at which the month containing t starts
// and ends in loc.
func MonthBounds(t time.Time, loc *time.Location) (start, end time.Time) {
	local := t.In(loc)
	y, m, _ := local.Date()
	start = time.Date(y, m, 1, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 1, 0)
}
