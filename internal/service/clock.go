package service

import (
	"alcyxob/gym-manager/internal/domain"
	"time"
)

// Clock reads the current time in the gym's timezone.
type Clock struct {
	loc *time.Location
	now func() time.Time
}

// NewClock returns a clock in loc. A nil now uses time.Now.
func NewClock(loc *time.Location, now func() time.Time) Clock {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return Clock{loc: loc, now: now}
}

func (c Clock) Now() time.Time {
	return c.now().In(c.loc)
}

// Today is the current civil date (see domain.CivilDate).
func (c Clock) Today() time.Time {
	return domain.CivilDate(c.Now())
}

func (c Clock) Location() *time.Location {
	return c.loc
}

// TodayBounds are the instants at which the local day starts and ends.
func (c Clock) TodayBounds() (time.Time, time.Time) {
	return domain.DayBounds(c.Now(), c.loc)
}

// MonthBounds are the instants at which the local month starts and ends.
func (c Clock) MonthBounds() (time.Time, time.Time) {
	return domain.MonthBounds(c.Now(), c.loc)
}
