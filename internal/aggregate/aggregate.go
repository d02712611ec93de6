// Package aggregate orders a bill collection and computes its summary statistics.
package aggregate

import (
	"slices"
	"strings"

	"github.com/JakeFAU/legislation-tracker/internal/tracker"
)

// inactiveMarkers flag a bill whose status text means it is no longer moving.
var inactiveMarkers = []string{"enacted", "vetoed", "failed", "dead"}

// Aggregate returns a copy of bills sorted by EffectiveDate, newest first,
// along with the collection's statistics. Ties keep their input order. Dates
// are compared as strings, so bills without a date sort last.
func Aggregate(bills []tracker.Bill) ([]tracker.Bill, tracker.Stats) {
	sorted := slices.Clone(bills)
	if sorted == nil {
		sorted = []tracker.Bill{}
	}
	slices.SortStableFunc(sorted, func(a, b tracker.Bill) int {
		return strings.Compare(b.EffectiveDate(), a.EffectiveDate())
	})
	return sorted, ComputeStats(sorted)
}

// ComputeStats counts totals, distinct jurisdictions, active and analyzed bills.
func ComputeStats(bills []tracker.Bill) tracker.Stats {
	names := make(map[string]struct{})
	stats := tracker.Stats{Total: len(bills)}
	for _, b := range bills {
		names[b.JurisdictionName] = struct{}{}
		if IsActive(b.StatusText) {
			stats.ActiveCount++
		}
		if b.AnalysisURL != "" {
			stats.AnalyzedCount++
		}
	}
	stats.JurisdictionCount = len(names)
	return stats
}

// IsActive reports whether statusText names a bill that is still in progress.
func IsActive(statusText string) bool {
	lower := strings.ToLower(statusText)
	for _, marker := range inactiveMarkers {
		if strings.Contains(lower, marker) {
			return false
		}
	}
	return true
}
