package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAddMonthsClampsToMonthEnd(t *testing.T) {
	assert.Equal(t, date(2025, time.February, 28), AddMonths(date(2025, time.January, 31), 1))
	assert.Equal(t, date(2024, time.February, 29), AddMonths(date(2024, time.January, 31), 1))
	assert.Equal(t, date(2026, time.January, 15), AddMonths(date(2025, time.November, 15), 2))
	assert.Equal(t, date(2025, time.April, 30), AddMonths(date(2025, time.March, 31), 1))
}

func TestCivilDateUsesLocalCalendarDay(t *testing.T) {
	lima := time.FixedZone("PET", -5*3600)
	late := time.Date(2025, time.March, 10, 22, 0, 0, 0, lima) // 03:00 UTC next day

	assert.Equal(t, date(2025, time.March, 10), CivilDate(late))
	assert.Equal(t, date(2025, time.March, 11), CivilDate(late.UTC()))
}

func TestPreviousMonthRangeAcrossYear(t *testing.T) {
	start, end := PreviousMonthRange(date(2025, time.January, 20))
	assert.Equal(t, date(2024, time.December, 1), start)
	assert.Equal(t, date(2025, time.January, 1), end)
}

func TestDayBounds(t *testing.T) {
	lima := time.FixedZone("PET", -5*3600)
	now := time.Date(2025, time.March, 10, 2, 0, 0, 0, time.UTC) // 21:00 on the 9th in Lima

	start, end := DayBounds(now, lima)
	assert.Equal(t, time.Date(2025, time.March, 9, 0, 0, 0, 0, lima), start)
	assert.Equal(t, 24*time.Hour, end.Sub(start))
}
