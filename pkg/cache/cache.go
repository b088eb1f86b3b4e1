// Package cache memoizes monthly reports.
//
// Entries are keyed by report and month. Writes to the record stores invalidate every
// report of the month they touch, the TTL only bounds how long an entry can live
// without any write.
package cache

import (
	"context"
	"fmt"
	"strings"

	"github.com/mess-ledger/backend/internal/types"
)

// keySeparator separates the report name from the month key.
const keySeparator = "|"

// Cache stores encoded reports.
type Cache interface {
	// Get decodes the entry for key into dest. It reports false on a miss.
	Get(ctx context.Context, key string, dest any) (bool, error)

	// Set stores value under key.
	Set(ctx context.Context, key string, value any) error

	// Invalidate removes the entries of all reports for the month.
	Invalidate(ctx context.Context, month types.Month) error

	// Flush removes all entries.
	Flush(ctx context.Context) error
}

// Key returns the cache key of a report for a month, e.g. "summary|2024-05".
func Key(report string, month types.Month) string {
	return fmt.Sprintf("%s%s%s", report, keySeparator, month)
}

// monthPattern returns the glob pattern matching all keys of the month.
func monthPattern(month types.Month) string {
	return "*" + keySeparator + month.String()
}

// Report returns the report part of a key.
func Report(key string) string {
	report, _, _ := strings.Cut(key, keySeparator)
	return report
}
