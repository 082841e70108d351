package dateindex

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestMergeMarksInclusiveRange(t *testing.T) {
	idx := New()

	merged, err := idx.Merge(date(2024, 7, 10), date(2024, 7, 12))
	require.NoError(t, err)

	assert.True(t, merged.Booked(date(2024, 7, 10)))
	assert.True(t, merged.Booked(date(2024, 7, 11)))
	assert.True(t, merged.Booked(date(2024, 7, 12)))
	assert.False(t, merged.Booked(date(2024, 7, 9)))
	assert.False(t, merged.Booked(date(2024, 7, 13)))
	assert.Equal(t, 3, merged.Len())
}

func TestMergeLeavesOriginalUntouched(t *testing.T) {
	idx := New()

	merged, err := idx.Merge(date(2024, 5, 1), date(2024, 5, 3))
	require.NoError(t, err)
	assert.Equal(t, 0, idx.Len())
	assert.Equal(t, 3, merged.Len())
}

func TestMergeReportsFirstConflictingDay(t *testing.T) {
	idx, err := New().Merge(date(2024, 5, 2), date(2024, 5, 2))
	require.NoError(t, err)

	_, err = idx.Merge(date(2024, 5, 1), date(2024, 5, 4))
	var conflict ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, DayOf(date(2024, 5, 2)), conflict.Day)
}

func TestMergeConflictIsAtomic(t *testing.T) {
	idx, err := New().Merge(date(2024, 5, 3), date(2024, 5, 3))
	require.NoError(t, err)
	before := idx.Days()

	_, err = idx.Merge(date(2024, 5, 1), date(2024, 5, 5))
	require.Error(t, err)
	assert.Equal(t, before, idx.Days())
	assert.False(t, idx.Booked(date(2024, 5, 1)))
	assert.False(t, idx.Booked(date(2024, 5, 2)))
}

func TestRemergingSameRangeAlwaysFails(t *testing.T) {
	merged, err := New().Merge(date(2024, 5, 1), date(2024, 5, 3))
	require.NoError(t, err)

	_, err = merged.Merge(date(2024, 5, 1), date(2024, 5, 3))
	var conflict ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, DayOf(date(2024, 5, 1)), conflict.Day)
}

func TestMergeRejectsInvertedRange(t *testing.T) {
	_, err := New().Merge(date(2024, 5, 3), date(2024, 5, 1))
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestMergeAcrossMonthBoundary(t *testing.T) {
	merged, err := New().Merge(date(2024, 2, 28), date(2024, 3, 1))
	require.NoError(t, err)
	assert.True(t, merged.Booked(date(2024, 2, 29))) // leap year
	assert.Equal(t, 3, merged.Len())
}

func TestBookedOnEmptyIndex(t *testing.T) {
	var idx Index // zero value, nil map
	assert.False(t, idx.Booked(date(2024, 1, 1)))
}

func TestFromDaysRoundTrip(t *testing.T) {
	merged, err := New().Merge(date(2024, 7, 10), date(2024, 7, 12))
	require.NoError(t, err)

	restored := FromDays(merged.Days())
	assert.Equal(t, merged.Days(), restored.Days())
}

func TestDaysInclusive(t *testing.T) {
	assert.Equal(t, 3, DaysInclusive(date(2024, 3, 1), date(2024, 3, 3)))
	assert.Equal(t, 1, DaysInclusive(date(2024, 3, 1), date(2024, 3, 1)))
	// time-of-day must not change the day count
	in := time.Date(2024, 3, 1, 23, 0, 0, 0, time.UTC)
	out := time.Date(2024, 3, 3, 1, 0, 0, 0, time.UTC)
	assert.Equal(t, 3, DaysInclusive(in, out))
}

func TestDayString(t *testing.T) {
	assert.Equal(t, "2024-05-01", DayOf(date(2024, 5, 1)).String())
}
