package maintenance

import (
	"time"

	logx "motorcare/pkg/logx"
)

// Synthesize deterministically reproduces a full schedule from the baseline
// catalog alone: the next occurrence of every entry (via Resolve) plus
// forecast placeholders out to the horizon (via Forecast), deduplicated.
//
// This is the fallback path when the external forecast service is unavailable
// or returns nothing usable. It needs no network access and never fails:
// malformed entries are skipped, entries without intervals become undated
// tasks, and the result is internally consistent for any input.
func Synthesize(v Vehicle, catalog []BaselineTask, now time.Time, pol ResolverPolicy, log logx.Logger) []MaintenanceTask {
	next := make([]MaintenanceTask, 0, len(catalog))
	for _, b := range catalog {
		if b.IntervalDistance < 0 || b.IntervalMonths < 0 {
			log.Warn("skipping malformed baseline entry",
				logx.String("item", b.Item),
				logx.Int("interval_distance", b.IntervalDistance),
				logx.Int("interval_months", b.IntervalMonths),
			)
			continue
		}
		due := Resolve(b, v, now, pol)
		next = append(next, DeriveTask(b, due, now, v.CurrentMileage))
	}

	return Merge(next, Forecast(v, catalog, now, log))
}
