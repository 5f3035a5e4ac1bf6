package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestPeriodOrdering(t *testing.T) {
	assert.True(t, Period{Year: 2019, Month: 12}.Before(Period{Year: 2020, Month: 1}))
	assert.True(t, Period{Year: 2020, Month: 3}.Before(Period{Year: 2020, Month: 4}))
	assert.False(t, Period{Year: 2020, Month: 4}.Before(Period{Year: 2020, Month: 4}))
}

func TestPeriodPrev(t *testing.T) {
	assert.Equal(t, Period{Year: 2020, Month: 2}, Period{Year: 2020, Month: 3}.Prev())
	assert.Equal(t, Period{Year: 2019, Month: 12}, Period{Year: 2020, Month: 1}.Prev())
}

func TestPeriodReference(t *testing.T) {
	now := date(2021, time.June, 15)

	// Past period resolves to end of month.
	ref := Period{Year: 2020, Month: 2}.Reference(now)
	assert.Equal(t, date(2020, time.February, 29), ref)

	// Current month clamps to now.
	ref = Period{Year: 2021, Month: 6}.Reference(now)
	assert.Equal(t, now, ref)
}

func TestDateRangeValidate(t *testing.T) {
	valid := DateRange{Start: date(2018, time.January, 1), End: date(2020, time.December, 31)}
	require.NoError(t, valid.Validate())

	inverted := DateRange{Start: valid.End, End: valid.Start}
	assert.Error(t, inverted.Validate())

	assert.Error(t, DateRange{}.Validate())
}

func TestDateRangeContains(t *testing.T) {
	r := DateRange{Start: date(2018, time.January, 1), End: date(2020, time.December, 31)}

	assert.True(t, r.Contains(date(2018, time.January, 1)), "start is inclusive")
	assert.True(t, r.Contains(date(2020, time.December, 31)), "end is inclusive")
	assert.True(t, r.Contains(date(2019, time.June, 10)))
	assert.False(t, r.Contains(date(2017, time.December, 31)))
	assert.False(t, r.Contains(date(2021, time.January, 1)))

	// Time-of-day on the boundary does not push a date out of range.
	endOfDay := time.Date(2020, time.December, 31, 23, 59, 59, 0, time.UTC)
	assert.True(t, r.Contains(endOfDay))
}

func TestDateRangeBeforeStart(t *testing.T) {
	r := DateRange{Start: date(2018, time.January, 1), End: date(2020, time.December, 31)}

	assert.True(t, r.BeforeStart(date(2017, time.December, 31)))
	assert.False(t, r.BeforeStart(date(2018, time.January, 1)))
	assert.False(t, r.BeforeStart(time.Date(2018, time.January, 1, 8, 30, 0, 0, time.UTC)))
}

func TestDateRangePeriods(t *testing.T) {
	r := DateRange{Start: date(2019, time.November, 15), End: date(2020, time.February, 10)}

	periods := r.Periods()
	require.Len(t, periods, 4)
	assert.Equal(t, Period{Year: 2020, Month: 2}, periods[0])
	assert.Equal(t, Period{Year: 2020, Month: 1}, periods[1])
	assert.Equal(t, Period{Year: 2019, Month: 12}, periods[2])
	assert.Equal(t, Period{Year: 2019, Month: 11}, periods[3])
}

func TestDateRangePeriodsSingleMonth(t *testing.T) {
	r := DateRange{Start: date(2020, time.March, 1), End: date(2020, time.March, 31)}

	periods := r.Periods()
	require.Len(t, periods, 1)
	assert.Equal(t, Period{Year: 2020, Month: 3}, periods[0])
}
