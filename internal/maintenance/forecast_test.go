package maintenance

import (
	"testing"
	"time"

	logx "motorcare/pkg/logx"
)

func TestForecastHorizonBoundary(t *testing.T) {
	t.Parallel()

	v := Vehicle{CurrentMileage: 50000}
	catalog := []BaselineTask{{Item: "Engine Oil & Filter", Category: "engine", IntervalDistance: 5000}}

	got := Forecast(v, catalog, date(2025, time.March, 15), logx.Nop())

	want := []int{55000, 60000, 65000, 70000}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i, m := range want {
		if got[i].DueMileage == nil || *got[i].DueMileage != m {
			t.Fatalf("got[%d].DueMileage = %v, want %d", i, got[i].DueMileage, m)
		}
	}
}

func TestForecastPlaceholderShape(t *testing.T) {
	t.Parallel()

	purchase := date(2025, time.January, 1)
	v := Vehicle{CurrentMileage: 0, PurchaseDate: &purchase}
	catalog := []BaselineTask{{Item: "Engine Oil & Filter", Category: "engine", IntervalDistance: 10000, IntervalMonths: 6, Urgency: UrgencyHigh}}

	got := Forecast(v, catalog, purchase, logx.Nop())
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	for i, task := range got {
		if !task.IsForecast || !task.IsRecurring || task.Archived {
			t.Fatalf("got[%d]: IsForecast=%v IsRecurring=%v Archived=%v", i, task.IsForecast, task.IsRecurring, task.Archived)
		}
		if task.Status != StatusUpcoming {
			t.Fatalf("got[%d].Status = %q, want %q", i, task.Status, StatusUpcoming)
		}
		if task.Importance != ImportanceRequired {
			t.Fatalf("got[%d].Importance = %q, want %q", i, task.Importance, ImportanceRequired)
		}
		if task.ID == "" {
			t.Fatalf("got[%d]: empty id", i)
		}
	}

	// Dates step by the month interval per occurrence.
	if got[0].DueDate == nil || !got[0].DueDate.Equal(date(2025, time.July, 1)) {
		t.Fatalf("got[0].DueDate = %v, want 2025-07-01", got[0].DueDate)
	}
	if got[1].DueDate == nil || !got[1].DueDate.Equal(date(2026, time.January, 1)) {
		t.Fatalf("got[1].DueDate = %v, want 2026-01-01", got[1].DueDate)
	}
}

func TestForecastImportanceFromUrgency(t *testing.T) {
	t.Parallel()

	tests := []struct {
		urgency Urgency
		want    Importance
	}{
		{UrgencyHigh, ImportanceRequired},
		{UrgencyMedium, ImportanceRecommended},
		{UrgencyLow, ImportanceOptional},
		{"", ImportanceOptional},
	}
	for _, tt := range tests {
		if got := ImportanceFromUrgency(tt.urgency); got != tt.want {
			t.Fatalf("ImportanceFromUrgency(%q) = %q, want %q", tt.urgency, got, tt.want)
		}
	}
}

func TestForecastSkipsUnboundedAndMalformedItems(t *testing.T) {
	t.Parallel()

	v := Vehicle{CurrentMileage: 10000}
	catalog := []BaselineTask{
		{Item: "Battery Check", Category: "electrical", IntervalMonths: 12},                 // no distance: nothing to iterate on
		{Item: "Broken Entry", Category: "engine", IntervalDistance: -100},                  // malformed: skipped
		{Item: "Tire Rotation", Category: "tires", IntervalDistance: 7500},                  // projected
		{Item: "Also Broken", Category: "engine", IntervalDistance: 5000, IntervalMonths: -1}, // malformed: skipped
	}

	got := Forecast(v, catalog, date(2025, time.March, 15), logx.Nop())
	for _, task := range got {
		if task.Title != "Tire Rotation" {
			t.Fatalf("unexpected forecast for %q", task.Title)
		}
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2 (17500, 25000)", len(got))
	}
}
