package maintenance

import (
	"time"

	logx "motorcare/pkg/logx"
)

// ForecastHorizon is the maximum projected distance beyond the current
// odometer for which placeholders are generated.
const ForecastHorizon = 20000

// Forecast projects every future occurrence of each recurring catalog item
// within the horizon and returns them as forecast-flagged placeholders.
//
// Only items with a positive distance interval are projected (a pure time
// interval gives no mileage bound to iterate on). Malformed entries (negative
// intervals) are skipped with a warning; the rest of the catalog is still
// processed. Within one item the placeholders are monotonically increasing in
// due mileage; ordering across items follows the catalog.
func Forecast(v Vehicle, catalog []BaselineTask, now time.Time, log logx.Logger) []MaintenanceTask {
	ref := v.ReferenceDate(now)
	limit := v.CurrentMileage + ForecastHorizon

	var out []MaintenanceTask
	for _, b := range catalog {
		if b.IntervalDistance < 0 || b.IntervalMonths < 0 {
			log.Warn("skipping malformed baseline entry",
				logx.String("item", b.Item),
				logx.Int("interval_distance", b.IntervalDistance),
				logx.Int("interval_months", b.IntervalMonths),
			)
			continue
		}
		if b.IntervalDistance == 0 {
			continue
		}

		occurrence := 0
		for next := v.CurrentMileage + b.IntervalDistance; next <= limit; next += b.IntervalDistance {
			occurrence++
			t := MaintenanceTask{
				ID:                 NewTaskID(),
				Title:              b.Item,
				Category:           b.Category,
				Status:             StatusUpcoming,
				DueMileage:         intPtr(next),
				IsRecurring:        true,
				RecurrenceInterval: b.RecurrenceSummary(),
				IsForecast:         true,
				Importance:         ImportanceFromUrgency(b.Urgency),
				CreationDate:       now,
			}
			if b.IntervalMonths > 0 {
				t.DueDate = timePtr(ref.AddDate(0, occurrence*b.IntervalMonths, 0))
			}
			out = append(out, t)
		}
	}
	return out
}
