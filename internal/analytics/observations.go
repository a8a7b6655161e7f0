// Package analytics computes the descriptive numbers behind the dashboard:
// open/closed tallies, categorical frequencies and daily incident counts.
package analytics

import (
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/safetystack/dashgen/internal/dataset"
)

// OpenClosed is the observation status tally.
type OpenClosed struct {
	Total  int
	Open   int
	Closed int
}

// OpenClosedTally counts observations as closed when the action-taken cell
// holds any non-blank text, regardless of content ("N/A" counts as closed).
// If no action-taken column resolves, every row is reported open; that is
// a degraded report, not an error.
func OpenClosedTally(t *dataset.Table, r dataset.Resolver) OpenClosed {
	oc := OpenClosed{Total: t.Len()}
	col, ok := r.Column(t, "action_taken")
	if !ok {
		oc.Open = oc.Total
		return oc
	}
	oc.Closed = lo.CountBy(t.Column(col), func(v string) bool {
		return strings.TrimSpace(v) != ""
	})
	oc.Open = oc.Total - oc.Closed
	return oc
}

// CategoryCount pairs a categorical value with its occurrence count.
type CategoryCount struct {
	Value string
	Count int
}

// TopCounts drops blank values, counts the rest and keeps the n most
// frequent, returned ascending by count so a horizontal bar chart draws
// the largest bar at the top. Ties order by value before truncation.
func TopCounts(values []string, n int) []CategoryCount {
	trimmed := lo.FilterMap(values, func(v string, _ int) (string, bool) {
		v = strings.TrimSpace(v)
		return v, v != ""
	})
	if len(trimmed) == 0 {
		return nil
	}
	counts := lo.CountValues(trimmed)
	out := make([]CategoryCount, 0, len(counts))
	for v, c := range counts {
		out = append(out, CategoryCount{Value: v, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Value < out[j].Value
		}
		return out[i].Count > out[j].Count
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	lo.Reverse(out)
	return out
}

// DailyCount is the number of events on one calendar day.
type DailyCount struct {
	Day   time.Time
	Count int
}

// DailyCounts groups valid timestamps by calendar date (UTC) and returns
// the per-day counts in chronological order. Invalid entries are skipped.
func DailyCounts(times []time.Time, valid []bool) []DailyCount {
	byDay := map[time.Time]int{}
	for i, ts := range times {
		if i < len(valid) && !valid[i] {
			continue
		}
		day := time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
		byDay[day]++
	}
	if len(byDay) == 0 {
		return nil
	}
	out := make([]DailyCount, 0, len(byDay))
	for day, c := range byDay {
		out = append(out, DailyCount{Day: day, Count: c})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out
}
