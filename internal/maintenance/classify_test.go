package maintenance

import (
	"testing"
	"time"
)

func TestClassifyRecompute(t *testing.T) {
	t.Parallel()

	now := date(2025, time.June, 10)
	yesterday := date(2025, time.June, 9)
	today := date(2025, time.June, 10)
	tomorrow := date(2025, time.June, 11)

	tests := []struct {
		name    string
		task    MaintenanceTask
		mileage int
		want    Status
	}{
		{name: "due yesterday is overdue", task: MaintenanceTask{Status: StatusUpcoming, DueDate: &yesterday}, want: StatusOverdue},
		{name: "due today is upcoming (strict before)", task: MaintenanceTask{Status: StatusOverdue, DueDate: &today}, want: StatusUpcoming},
		{name: "due tomorrow is upcoming", task: MaintenanceTask{Status: StatusUpcoming, DueDate: &tomorrow}, want: StatusUpcoming},
		{name: "mileage passed is overdue", task: MaintenanceTask{Status: StatusUpcoming, DueMileage: intPtr(50000)}, mileage: 50001, want: StatusOverdue},
		{name: "mileage equal is upcoming", task: MaintenanceTask{Status: StatusUpcoming, DueMileage: intPtr(50000)}, mileage: 50000, want: StatusUpcoming},
		{name: "undated is in progress", task: MaintenanceTask{Status: StatusUpcoming}, want: StatusInProgress},
		{name: "completed is sticky", task: MaintenanceTask{Status: StatusCompleted, DueDate: &yesterday}, want: StatusCompleted},
		{name: "skipped is sticky", task: MaintenanceTask{Status: StatusSkipped, DueDate: &yesterday}, want: StatusSkipped},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.task, Recompute(), now, tt.mileage)
			if got.Status != tt.want {
				t.Fatalf("Status = %q, want %q", got.Status, tt.want)
			}

			// Idempotence: a second pass with the same inputs changes nothing.
			again := Classify(got, Recompute(), now, tt.mileage)
			if again.Status != got.Status {
				t.Fatalf("second pass changed status: %q -> %q", got.Status, again.Status)
			}
		})
	}
}

func TestClassifyTimeOfDayIgnored(t *testing.T) {
	t.Parallel()

	// Due earlier today by clock time, but the same calendar day: not overdue.
	due := time.Date(2025, time.June, 10, 6, 0, 0, 0, time.UTC)
	now := time.Date(2025, time.June, 10, 23, 30, 0, 0, time.UTC)

	got := Classify(MaintenanceTask{Status: StatusUpcoming, DueDate: &due}, Recompute(), now, 0)
	if got.Status != StatusUpcoming {
		t.Fatalf("Status = %q, want %q", got.Status, StatusUpcoming)
	}
}

func TestClassifySetStatus(t *testing.T) {
	t.Parallel()

	now := date(2025, time.June, 10)

	got := Classify(MaintenanceTask{Status: StatusUpcoming}, SetStatus(StatusCompleted), now, 0)
	if got.Status != StatusCompleted {
		t.Fatalf("Status = %q, want %q", got.Status, StatusCompleted)
	}
	if got.CompletedDate == nil || !got.CompletedDate.Equal(now) {
		t.Fatalf("CompletedDate = %v, want %v", got.CompletedDate, now)
	}

	// Moving back to an active status clears the completion date.
	got = Classify(got, SetStatus(StatusSkipped), now, 0)
	if got.Status != StatusSkipped || got.CompletedDate != nil {
		t.Fatalf("Status=%q CompletedDate=%v, want skipped/nil", got.Status, got.CompletedDate)
	}

	// An invalid status is a no-op.
	got = Classify(got, SetStatus(Status("bogus")), now, 0)
	if got.Status != StatusSkipped {
		t.Fatalf("Status = %q, want %q", got.Status, StatusSkipped)
	}
}

func TestClassifyToggle(t *testing.T) {
	t.Parallel()

	now := date(2025, time.June, 10)
	tomorrow := date(2025, time.June, 11)

	// Toggle on: completed with a date.
	task := MaintenanceTask{Status: StatusUpcoming, DueDate: &tomorrow}
	task = Classify(task, Toggle(), now, 0)
	if task.Status != StatusCompleted || task.CompletedDate == nil {
		t.Fatalf("after toggle on: Status=%q CompletedDate=%v", task.Status, task.CompletedDate)
	}

	// Toggle off: completion date cleared, status re-derived from the due date.
	task = Classify(task, Toggle(), now, 0)
	if task.Status != StatusUpcoming || task.CompletedDate != nil {
		t.Fatalf("after toggle off: Status=%q CompletedDate=%v", task.Status, task.CompletedDate)
	}

	// Toggle off with no due information falls back to in progress.
	undated := Classify(MaintenanceTask{Status: StatusCompleted, CompletedDate: &now}, Toggle(), now, 0)
	if undated.Status != StatusInProgress || undated.CompletedDate != nil {
		t.Fatalf("undated toggle off: Status=%q CompletedDate=%v", undated.Status, undated.CompletedDate)
	}
}
