package maintenance

import "time"

// DefaultAnnualDistance is the assumed distance driven per year when
// estimating a calendar date from a mileage interval. It is a policy
// constant, not a law: callers can override it via ResolverPolicy.
const DefaultAnnualDistance = 12000

// ResolverPolicy holds the tunables for interval resolution.
type ResolverPolicy struct {
	AnnualDistance int
}

func (p ResolverPolicy) withDefaults() ResolverPolicy {
	if p.AnnualDistance <= 0 {
		p.AnnualDistance = DefaultAnnualDistance
	}
	return p
}

// Due is the resolved schedule point for one baseline entry. Either field may
// be nil; both nil means the entry is undated (no intervals set).
type Due struct {
	Date    *time.Time
	Mileage *int
}

// Resolve turns one baseline interval into a concrete due date and/or due
// mileage for a vehicle.
//
// When the mileage interval is still ahead of the odometer, the due date is
// estimated from the remaining distance at the assumed annual rate, and a
// month interval (when present) can only pull that date earlier, never later.
// A due date that already lies in the past is corrected to one month from now
// for vehicles purchased this calendar year (or with no purchase date), so a
// freshly added vehicle is not flooded with overdue baseline items.
func Resolve(b BaselineTask, v Vehicle, now time.Time, pol ResolverPolicy) Due {
	pol = pol.withDefaults()
	ref := v.ReferenceDate(now)

	var due Due
	switch {
	case b.IntervalDistance > 0 && v.CurrentMileage < b.IntervalDistance:
		due.Mileage = intPtr(b.IntervalDistance)

		remaining := b.IntervalDistance - v.CurrentMileage
		months := ceilDiv(remaining*12, pol.AnnualDistance)
		if months < 1 {
			months = 1
		}
		date := ref.AddDate(0, months, 0)

		if b.IntervalMonths > 0 {
			// Earlier date wins; strict less-than, so the mileage-based
			// estimate keeps ties.
			monthDate := ref.AddDate(0, b.IntervalMonths, 0)
			if monthDate.Before(date) {
				date = monthDate
			}
		}
		due.Date = timePtr(date)

	case b.IntervalMonths > 0:
		due.Date = timePtr(ref.AddDate(0, b.IntervalMonths, 0))
		if b.IntervalDistance > 0 {
			// Next occurrence from the current odometer, not from zero.
			due.Mileage = intPtr(v.CurrentMileage + b.IntervalDistance)
		}
	}

	if due.Date != nil && dateOnly(*due.Date).Before(dateOnly(now)) {
		if v.PurchaseDate == nil || v.PurchaseDate.Year() == now.Year() {
			due.Date = timePtr(now.AddDate(0, 1, 0))
		}
	}
	return due
}

// DeriveTask materializes one schedule entry for a baseline item from its
// resolved due point. The resulting task is not a forecast placeholder.
func DeriveTask(b BaselineTask, due Due, now time.Time, currentMileage int) MaintenanceTask {
	t := MaintenanceTask{
		ID:                 NewTaskID(),
		Title:              b.Item,
		Category:           b.Category,
		DueDate:            due.Date,
		DueMileage:         due.Mileage,
		IsRecurring:        b.Recurring(),
		RecurrenceInterval: b.RecurrenceSummary(),
		Importance:         ImportanceFromUrgency(b.Urgency),
		CreationDate:       now,
	}
	t.Status = deriveStatus(t, now, currentMileage)
	return t
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		return 0
	}
	return (a + b - 1) / b
}
