package maintenance

import "time"

// Action selects what a classification request should do.
type Action int

const (
	// ActionRecompute re-derives the status from the due date/mileage.
	// Terminal statuses (Completed, Skipped) are left untouched.
	ActionRecompute Action = iota
	// ActionSetStatus forces an explicit status.
	ActionSetStatus
	// ActionToggle flips between Completed and the re-derived active status.
	ActionToggle
)

// StatusRequest is an explicit, tagged classification request. Constructing
// it through Recompute/SetStatus/Toggle keeps the zero value meaningful
// (recompute) and avoids ambiguous optional-argument behavior.
type StatusRequest struct {
	Action Action
	Status Status
}

func Recompute() StatusRequest         { return StatusRequest{Action: ActionRecompute} }
func SetStatus(s Status) StatusRequest { return StatusRequest{Action: ActionSetStatus, Status: s} }
func Toggle() StatusRequest            { return StatusRequest{Action: ActionToggle} }

// Classify applies one status request to a task and returns the updated task.
//
// It is a pure function of the task, the request, today's date, and the
// vehicle's current mileage. Recompute is idempotent: re-running it with the
// same inputs never changes the result, and it never overwrites Completed or
// Skipped.
func Classify(t MaintenanceTask, req StatusRequest, now time.Time, currentMileage int) MaintenanceTask {
	switch req.Action {
	case ActionRecompute:
		if t.Status.Terminal() {
			return t
		}
		t.Status = deriveStatus(t, now, currentMileage)
		return t

	case ActionSetStatus:
		if !req.Status.Valid() {
			return t
		}
		t.Status = req.Status
		if req.Status == StatusCompleted {
			if t.CompletedDate == nil {
				t.CompletedDate = timePtr(now)
			}
		} else {
			t.CompletedDate = nil
		}
		return t

	case ActionToggle:
		if t.Status == StatusCompleted {
			t.CompletedDate = nil
			t.Status = deriveStatus(t, now, currentMileage)
			return t
		}
		t.Status = StatusCompleted
		t.CompletedDate = timePtr(now)
		return t

	default:
		return t
	}
}

// deriveStatus maps due information to an active status. The date comparison
// is date-only and strict: a task due today is Upcoming, not Overdue.
func deriveStatus(t MaintenanceTask, now time.Time, currentMileage int) Status {
	if t.DueDate != nil {
		if dateOnly(*t.DueDate).Before(dateOnly(now)) {
			return StatusOverdue
		}
		return StatusUpcoming
	}
	if t.DueMileage != nil {
		if currentMileage > *t.DueMileage {
			return StatusOverdue
		}
		return StatusUpcoming
	}
	return StatusInProgress
}
