// Package types implements the calendar value types used by the ledger.
package types

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Month is a month in a specific year. It is the unit reports and caches are partitioned by.
type Month time.Time

// NewMonth returns a new Month.
func NewMonth(year int, month time.Month) Month {
	return Month(time.Date(year, month, 1, 0, 0, 0, 0, time.UTC))
}

// MonthOf returns the Month in which a time occurs in that time's location.
func MonthOf(t time.Time) Month {
	year, month, _ := t.Date()
	return NewMonth(year, month)
}

// ParseMonth parses a "YYYY-MM" string and returns the Month value it represents.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(s))
	if err != nil {
		return Month{}, err
	}

	return MonthOf(t), nil
}

// String returns the month formatted as YYYY-MM.
func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", time.Time(m).Year(), time.Time(m).Month())
}

// MarshalJSON implements the json.Marshaler interface.
// The output is the month key, e.g. "2024-05".
func (m Month) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface.
// The "2006-01" month key, full dates and RFC3339 timestamps are accepted,
// only the year and month are kept.
func (m *Month) UnmarshalJSON(data []byte) error {
	value := strings.Trim(string(data), `"`)
	if value == "" || value == "null" {
		return nil
	}

	var pattern string
	switch len(value) {
	case len("2006-01"):
		pattern = "2006-01"
	case len(DateFormat):
		pattern = DateFormat
	default:
		pattern = time.RFC3339
	}

	t, err := time.Parse(pattern, value)
	if err != nil {
		return err
	}

	*m = MonthOf(t)
	return nil
}

// IsZero reports if the month is the zero value.
func (m Month) IsZero() bool {
	return time.Time(m).IsZero()
}

// AddDate adds a specified amount of years and months.
func (m Month) AddDate(years, months int) Month {
	return Month(time.Time(m).AddDate(years, months, 0))
}

// Before reports whether the month instant m is before n.
func (m Month) Before(n Month) bool {
	return time.Time(m).Before(time.Time(n))
}

// Equal reports whether m and n represent the same month.
func (m Month) Equal(n Month) bool {
	return time.Time(m).Equal(time.Time(n))
}

// Contains reports whether the time instant is in the month.
func (m Month) Contains(t time.Time) bool {
	return t.Year() == time.Time(m).Year() && t.Month() == time.Time(m).Month()
}

// First returns the first day of the month.
func (m Month) First() Date {
	return Date(time.Time(m))
}

// Last returns the last day of the month.
func (m Month) Last() Date {
	return Date(time.Time(m).AddDate(0, 1, -1))
}

// Range returns the inclusive range from the first to the last day of the month.
func (m Month) Range() DateRange {
	return DateRange{Start: m.First(), End: m.Last()}
}

// Days returns the number of days in the month.
func (m Month) Days() int {
	return m.Last().Time().Day()
}
