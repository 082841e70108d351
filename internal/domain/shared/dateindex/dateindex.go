package dateindex

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

var (
	ErrInvalidRange = errors.New("dateindex: checkout must not be before checkin")
)

// Day is a calendar day expressed as whole days since the Unix epoch in UTC.
// Using a flat ordinal keeps lookups O(1) and makes range walks trivial.
type Day int64

// DayOf truncates an instant to its UTC calendar day.
func DayOf(t time.Time) Day {
	t = t.UTC()
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return Day(midnight.Unix() / 86400)
}

// Time returns midnight UTC of the day.
func (d Day) Time() time.Time {
	return time.Unix(int64(d)*86400, 0).UTC()
}

func (d Day) String() string {
	return d.Time().Format("2006-01-02")
}

// ConflictError reports the first already-booked day found while merging a range.
type ConflictError struct {
	Day Day
}

func (e ConflictError) Error() string {
	return fmt.Sprintf("dateindex: day %s is already booked", e.Day)
}

// Index is a sparse set of booked calendar days owned by a single listing.
// A day is either present (booked) or absent (free); there is no third state.
// Index values are treated as immutable snapshots: Merge returns a new copy
// and never touches the receiver.
type Index struct {
	days map[Day]struct{}
}

// New returns an empty index.
func New() Index {
	return Index{days: make(map[Day]struct{})}
}

// FromDays rebuilds an index from a persisted day set.
func FromDays(days []Day) Index {
	idx := Index{days: make(map[Day]struct{}, len(days))}
	for _, d := range days {
		idx.days[d] = struct{}{}
	}
	return idx
}

// Booked reports whether the calendar day of t is present in the index.
func (idx Index) Booked(t time.Time) bool {
	return idx.BookedDay(DayOf(t))
}

// BookedDay reports whether the given day is present in the index.
func (idx Index) BookedDay(d Day) bool {
	if idx.days == nil {
		return false
	}
	_, ok := idx.days[d]
	return ok
}

// Merge returns a new snapshot with every day from checkIn through checkOut
// (inclusive) marked as booked. The walk runs forward from checkIn and stops
// at the first day that is already present, returning a ConflictError naming
// it. On failure the receiver is unchanged and no partial snapshot escapes.
func (idx Index) Merge(checkIn, checkOut time.Time) (Index, error) {
	first := DayOf(checkIn)
	last := DayOf(checkOut)
	if last < first {
		return Index{}, ErrInvalidRange
	}
	merged := idx.Clone()
	for d := first; d <= last; d++ {
		if merged.BookedDay(d) {
			return Index{}, ConflictError{Day: d}
		}
		merged.days[d] = struct{}{}
	}
	return merged, nil
}

// Clone returns an independent copy of the snapshot.
func (idx Index) Clone() Index {
	out := Index{days: make(map[Day]struct{}, len(idx.days))}
	for d := range idx.days {
		out.days[d] = struct{}{}
	}
	return out
}

// Days returns the booked days in ascending order, for persistence.
func (idx Index) Days() []Day {
	out := make([]Day, 0, len(idx.days))
	for d := range idx.days {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Len returns the number of booked days.
func (idx Index) Len() int {
	return len(idx.days)
}

// DaysInclusive counts the billed days of a stay, both endpoints included.
func DaysInclusive(checkIn, checkOut time.Time) int {
	return int(DayOf(checkOut)-DayOf(checkIn)) + 1
}
