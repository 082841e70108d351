package booking

import (
	"fmt"
	"time"

	"stayhub/internal/domain/shared/dateindex"
)

// RangeReason identifies which rule a candidate range violated during the
// pre-flight check.
type RangeReason string

const (
	RangeBeforeCheckIn RangeReason = "before-checkin"
	RangeSameDay       RangeReason = "same-day"
	RangeOverlap       RangeReason = "overlap"
)

// RangeError is the pre-flight counterpart of the merge conflict: it carries a
// stable reason code so the caller can name the single rule that was violated.
type RangeError struct {
	Reason RangeReason
	Day    dateindex.Day
}

func (e RangeError) Error() string {
	if e.Reason == RangeOverlap {
		return fmt.Sprintf("booking: range rejected (%s) on %s", e.Reason, e.Day)
	}
	return fmt.Sprintf("booking: range rejected (%s)", e.Reason)
}

// IsBlocked decides whether a calendar day is selectable for a new stay. A day
// is blocked when it falls on or before the current day, when it lies more
// than horizonDays past the current day, or when the index already holds it.
// This is the read-only projection calendars render from; it must answer
// exactly as the server-side checks would for the same index snapshot.
func IsBlocked(idx dateindex.Index, date, today time.Time, horizonDays int) bool {
	day := dateindex.DayOf(date)
	current := dateindex.DayOf(today)
	if day <= current {
		return true
	}
	if day > current+dateindex.Day(horizonDays) {
		return true
	}
	return idx.Booked(date)
}

// ValidateRange checks a tentative checkout against a fixed check-in without
// mutating anything. It scans the same days Merge would, so the two always
// agree: a range that passes here cannot fail the merge on the same snapshot,
// and vice versa.
func ValidateRange(idx dateindex.Index, checkIn, checkOut time.Time) error {
	first := dateindex.DayOf(checkIn)
	last := dateindex.DayOf(checkOut)
	if last < first {
		return RangeError{Reason: RangeBeforeCheckIn}
	}
	if last == first {
		return RangeError{Reason: RangeSameDay}
	}
	for d := first; d <= last; d++ {
		if idx.BookedDay(d) {
			return RangeError{Reason: RangeOverlap, Day: d}
		}
	}
	return nil
}
