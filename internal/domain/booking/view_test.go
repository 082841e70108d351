package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stayhub/internal/domain/shared/dateindex"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func mustMerge(t *testing.T, idx dateindex.Index, in, out time.Time) dateindex.Index {
	t.Helper()
	merged, err := idx.Merge(in, out)
	require.NoError(t, err)
	return merged
}

func TestIsBlockedPastAndToday(t *testing.T) {
	idx := dateindex.New()
	today := date(2024, 1, 15)

	assert.True(t, IsBlocked(idx, date(2024, 1, 14), today, 180), "past day")
	assert.True(t, IsBlocked(idx, date(2024, 1, 15), today, 180), "same day")
	assert.False(t, IsBlocked(idx, date(2024, 1, 16), today, 180), "tomorrow")
}

func TestIsBlockedHorizon(t *testing.T) {
	idx := dateindex.New()
	today := date(2024, 1, 1)

	// 2024-06-29 is exactly 180 days past 2024-01-01
	assert.False(t, IsBlocked(idx, date(2024, 6, 29), today, 180))
	assert.True(t, IsBlocked(idx, date(2024, 6, 30), today, 180))
}

func TestIsBlockedBookedDay(t *testing.T) {
	idx := mustMerge(t, dateindex.New(), date(2024, 5, 1), date(2024, 5, 3))
	today := date(2024, 1, 15)

	assert.True(t, IsBlocked(idx, date(2024, 5, 2), today, 180))
	assert.False(t, IsBlocked(idx, date(2024, 5, 4), today, 180))
}

func TestValidateRangeBeforeCheckIn(t *testing.T) {
	err := ValidateRange(dateindex.New(), date(2024, 5, 3), date(2024, 5, 1))
	var rangeErr RangeError
	require.ErrorAs(t, err, &rangeErr)
	assert.Equal(t, RangeBeforeCheckIn, rangeErr.Reason)
}

func TestValidateRangeSameDay(t *testing.T) {
	err := ValidateRange(dateindex.New(), date(2024, 5, 1), date(2024, 5, 1))
	var rangeErr RangeError
	require.ErrorAs(t, err, &rangeErr)
	assert.Equal(t, RangeSameDay, rangeErr.Reason)
}

func TestValidateRangeOverlapNamesFirstDay(t *testing.T) {
	idx := mustMerge(t, dateindex.New(), date(2024, 5, 3), date(2024, 5, 3))

	err := ValidateRange(idx, date(2024, 5, 1), date(2024, 5, 5))
	var rangeErr RangeError
	require.ErrorAs(t, err, &rangeErr)
	assert.Equal(t, RangeOverlap, rangeErr.Reason)
	assert.Equal(t, dateindex.DayOf(date(2024, 5, 3)), rangeErr.Day)
}

func TestValidateRangeAccepts(t *testing.T) {
	idx := mustMerge(t, dateindex.New(), date(2024, 5, 10), date(2024, 5, 12))
	assert.NoError(t, ValidateRange(idx, date(2024, 5, 1), date(2024, 5, 5)))
	assert.NoError(t, ValidateRange(idx, date(2024, 5, 13), date(2024, 5, 15)))
}

// ValidateRange and Merge must never disagree: every multi-day range either
// passes both or fails both on the same snapshot.
func TestValidateRangeAgreesWithMerge(t *testing.T) {
	base := mustMerge(t, dateindex.New(), date(2024, 5, 5), date(2024, 5, 7))
	base = mustMerge(t, base, date(2024, 5, 20), date(2024, 5, 20))

	start := date(2024, 4, 25)
	for inOff := 0; inOff < 30; inOff++ {
		for nights := 1; nights <= 6; nights++ {
			in := start.AddDate(0, 0, inOff)
			out := in.AddDate(0, 0, nights)
			validateErr := ValidateRange(base, in, out)
			_, mergeErr := base.Merge(in, out)
			if validateErr == nil {
				assert.NoError(t, mergeErr, "range %s..%s", in, out)
			} else {
				assert.Error(t, mergeErr, "range %s..%s", in, out)
			}
		}
	}
}
