package types

import "time"

// DateRange is an inclusive range of calendar days.
type DateRange struct {
	Start Date `json:"start"`
	End   Date `json:"end"`
}

// NewDateRange returns the inclusive range between two explicit bounds.
// The bounds are truncated to their calendar day.
func NewDateRange(start, end time.Time) DateRange {
	return DateRange{Start: DateOf(start), End: DateOf(end)}
}

// Empty reports if the range contains no day at all.
func (r DateRange) Empty() bool {
	return r.End.Before(r.Start)
}

// Contains reports whether the day is within the range.
func (r DateRange) Contains(d Date) bool {
	return !d.Before(r.Start) && !d.After(r.End)
}

// Days returns every calendar day in the range in ascending order.
// An empty range yields an empty slice.
func (r DateRange) Days() []Date {
	if r.Empty() {
		return []Date{}
	}

	days := make([]Date, 0, int(r.End.Time().Sub(r.Start.Time()).Hours()/24)+1)
	for d := r.Start; !d.After(r.End); d = d.AddDays(1) {
		days = append(days, d)
	}

	return days
}

// Len returns the number of days in the range.
func (r DateRange) Len() int {
	if r.Empty() {
		return 0
	}

	return int(r.End.Time().Sub(r.Start.Time()).Hours()/24) + 1
}

// ResolveMonth resolves a "YYYY-MM" month token into the month and its inclusive
// date range.
//
// Resolution fails soft: an empty, malformed or non-existent month token
// resolves to the month that now is in.
func ResolveMonth(token string, now time.Time) (Month, DateRange) {
	month, err := ParseMonth(token)
	if err != nil {
		month = MonthOf(now)
	}

	return month, month.Range()
}
