package maintenance

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a maintenance task.
type Status string

const (
	StatusUpcoming   Status = "upcoming"
	StatusOverdue    Status = "overdue"
	StatusCompleted  Status = "completed"
	StatusSkipped    Status = "skipped"
	StatusInProgress Status = "in_progress"
)

// Terminal reports whether the status is sticky: the classifier never
// transitions a task out of a terminal status on its own.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusSkipped
}

func (s Status) Valid() bool {
	switch s {
	case StatusUpcoming, StatusOverdue, StatusCompleted, StatusSkipped, StatusInProgress:
		return true
	}
	return false
}

// Urgency ranks a baseline catalog entry.
type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

// Importance grades a forecast placeholder, derived from the catalog urgency.
type Importance string

const (
	ImportanceRequired    Importance = "required"
	ImportanceRecommended Importance = "recommended"
	ImportanceOptional    Importance = "optional"
)

func ImportanceFromUrgency(u Urgency) Importance {
	switch u {
	case UrgencyHigh:
		return ImportanceRequired
	case UrgencyMedium:
		return ImportanceRecommended
	default:
		return ImportanceOptional
	}
}

// Vehicle is the subset of vehicle facts the engine needs.
type Vehicle struct {
	Make           string     `json:"make"`
	Model          string     `json:"model"`
	Year           int        `json:"year"`
	CurrentMileage int        `json:"current_mileage"`
	PurchaseDate   *time.Time `json:"purchase_date,omitempty"`
}

// ReferenceDate is the anchor for interval date math: the purchase date when
// known, otherwise now.
func (v Vehicle) ReferenceDate(now time.Time) time.Time {
	if v.PurchaseDate != nil {
		return *v.PurchaseDate
	}
	return now
}

// BaselineTask is one manufacturer-recommended catalog entry.
//
// IntervalDistance and IntervalMonths are optional; zero means unset. An entry
// with neither interval is a valid ad-hoc/undated item, not an error. Negative
// intervals are malformed and skipped by the consumers that iterate catalogs.
type BaselineTask struct {
	Item             string  `json:"item"`
	Category         string  `json:"category"`
	IntervalDistance int     `json:"interval_distance,omitempty"`
	IntervalMonths   int     `json:"interval_months,omitempty"`
	Urgency          Urgency `json:"urgency,omitempty"`
}

// Recurring reports whether the entry has at least one usable interval.
func (b BaselineTask) Recurring() bool {
	return b.IntervalDistance > 0 || b.IntervalMonths > 0
}

// RecurrenceSummary renders a human-readable form of the source interval,
// e.g. "every 5000 mi or 6 months".
func (b BaselineTask) RecurrenceSummary() string {
	var parts []string
	if b.IntervalDistance > 0 {
		parts = append(parts, strconv.Itoa(b.IntervalDistance)+" mi")
	}
	if b.IntervalMonths > 0 {
		unit := "months"
		if b.IntervalMonths == 1 {
			unit = "month"
		}
		parts = append(parts, strconv.Itoa(b.IntervalMonths)+" "+unit)
	}
	if len(parts) == 0 {
		return ""
	}
	return "every " + strings.Join(parts, " or ")
}

// MaintenanceTask is one schedule entry for a vehicle.
type MaintenanceTask struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Category string `json:"category"`
	Status   Status `json:"status"`

	DueDate       *time.Time `json:"due_date,omitempty"`
	DueMileage    *int       `json:"due_mileage,omitempty"`
	CompletedDate *time.Time `json:"completed_date,omitempty"`

	IsRecurring        bool   `json:"is_recurring"`
	RecurrenceInterval string `json:"recurrence_interval,omitempty"`

	// IsForecast marks placeholders produced by the forecast generator;
	// Archived marks a placeholder superseded by a real completion. Archived
	// placeholders are excluded from active views but retained for history.
	IsForecast bool `json:"is_forecast"`
	Archived   bool `json:"archived"`

	Importance Importance `json:"importance,omitempty"`

	CreationDate time.Time `json:"creation_date"`
}

// NewTaskID returns a fresh opaque task identifier.
func NewTaskID() string { return uuid.NewString() }

// Active filters out archived forecast placeholders.
func Active(tasks []MaintenanceTask) []MaintenanceTask {
	out := make([]MaintenanceTask, 0, len(tasks))
	for _, t := range tasks {
		if t.IsForecast && t.Archived {
			continue
		}
		out = append(out, t)
	}
	return out
}

// dateOnly strips the time-of-day component.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func intPtr(v int) *int { return &v }

func timePtr(t time.Time) *time.Time { return &t }
