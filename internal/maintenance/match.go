package maintenance

import "strings"

// MatchMileageTolerance is the inclusive mileage distance within which a
// completed task supersedes a forecast placeholder.
const MatchMileageTolerance = 500

// ArchiveMatches reconciles a just-completed task against the schedule's
// forecast placeholders: every unarchived placeholder with a case-insensitive
// title match, an exact category match, and a due mileage within
// MatchMileageTolerance of the completed task's is marked Completed and
// archived in place.
//
// Policy: ALL placeholders within tolerance are archived in one pass, not
// just the first. A completion supersedes every placeholder it plausibly
// represents; leaving near-duplicates active is exactly the reminder noise
// this step exists to prevent.
//
// Tasks missing a due mileage on either side are never matched. No fields
// other than status and archived are touched. Returns the indexes of the
// archived placeholders.
func ArchiveMatches(tasks []MaintenanceTask, completed MaintenanceTask) []int {
	if completed.DueMileage == nil {
		return nil
	}

	var archived []int
	for i := range tasks {
		t := &tasks[i]
		if !t.IsForecast || t.Archived || t.ID == completed.ID {
			continue
		}
		if t.DueMileage == nil {
			continue
		}
		if !strings.EqualFold(t.Title, completed.Title) || t.Category != completed.Category {
			continue
		}
		if absInt(*t.DueMileage-*completed.DueMileage) > MatchMileageTolerance {
			continue
		}
		t.Status = StatusCompleted
		t.Archived = true
		archived = append(archived, i)
	}
	return archived
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
