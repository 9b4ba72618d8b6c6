package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"motorcare/internal/maintenance"
	logx "motorcare/pkg/logx"
)

func openTestStore(t *testing.T, dir string) Store {
	t.Helper()
	s, err := Open(Config{Driver: "file", Path: dir}, logx.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpenDisabled(t *testing.T) {
	t.Parallel()

	for _, driver := range []string{"", "none", "  NONE  "} {
		s, err := Open(Config{Driver: driver}, logx.Nop())
		if err != nil || s != nil {
			t.Fatalf("Open(%q) = %v, %v; want nil, nil", driver, s, err)
		}
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	t.Parallel()

	if _, err := Open(Config{Driver: "postgres"}, logx.Nop()); err == nil {
		t.Fatal("expected an error for an unknown driver")
	}
}

func TestFileVehicleRoundtrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	ctx := context.Background()
	s := openTestStore(t, dir)

	purchase := time.Date(2022, time.March, 10, 0, 0, 0, 0, time.UTC)
	rec := VehicleRecord{
		ID: "v1", Make: "Honda", Model: "Civic", Year: 2022,
		CurrentMileage: 52000, PurchaseDate: &purchase,
	}
	if err := s.PutVehicle(ctx, rec); err != nil {
		t.Fatalf("PutVehicle: %v", err)
	}

	got, err := s.GetVehicle(ctx, "v1")
	if err != nil {
		t.Fatalf("GetVehicle: %v", err)
	}
	if got.Make != "Honda" || got.CurrentMileage != 52000 || got.PurchaseDate == nil {
		t.Fatalf("got %+v", got)
	}
	if got.UpdatedAt.IsZero() {
		t.Fatal("UpdatedAt must be stamped on put")
	}

	if _, err := s.GetVehicle(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}

	// A reopened store sees the persisted snapshot.
	_ = s.Close()
	s2 := openTestStore(t, dir)
	list, err := s2.ListVehicles(ctx)
	if err != nil {
		t.Fatalf("ListVehicles: %v", err)
	}
	if len(list) != 1 || list[0].ID != "v1" {
		t.Fatalf("list = %+v", list)
	}
}

func TestFileTasksRoundtrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := openTestStore(t, t.TempDir())

	due := time.Date(2025, time.August, 15, 0, 0, 0, 0, time.UTC)
	mileage := 55000
	tasks := []maintenance.MaintenanceTask{{
		ID:          maintenance.NewTaskID(),
		Title:       "Engine Oil & Filter",
		Category:    "engine",
		Status:      maintenance.StatusUpcoming,
		DueDate:     &due,
		DueMileage:  &mileage,
		IsRecurring: true,
		Importance:  maintenance.ImportanceRequired,
	}}
	if err := s.SaveTasks(ctx, "v1", tasks); err != nil {
		t.Fatalf("SaveTasks: %v", err)
	}

	got, err := s.LoadTasks(ctx, "v1")
	if err != nil {
		t.Fatalf("LoadTasks: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("tasks = %d, want 1", len(got))
	}
	if got[0].ID != tasks[0].ID || got[0].DueMileage == nil || *got[0].DueMileage != 55000 {
		t.Fatalf("got %+v", got[0])
	}
	if !got[0].DueDate.Equal(due) {
		t.Fatalf("DueDate = %v, want %v", got[0].DueDate, due)
	}

	// Unknown vehicle loads as an empty schedule, not an error.
	none, err := s.LoadTasks(ctx, "ghost")
	if err != nil || none != nil {
		t.Fatalf("LoadTasks(ghost) = %v, %v", none, err)
	}
}

func TestFileSanitizesVehicleIDInFilename(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	ctx := context.Background()
	s := openTestStore(t, dir)

	if err := s.SaveTasks(ctx, "../weird id", nil); err != nil {
		t.Fatalf("SaveTasks: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "tasks.___weird_id.json")); err != nil {
		t.Fatalf("sanitized snapshot missing: %v", err)
	}
}

func TestFileServiceLogAppends(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	ctx := context.Background()
	s := openTestStore(t, dir)

	for i := 0; i < 3; i++ {
		err := s.AppendServiceLog(ctx, ServiceLogEntry{
			VehicleID: "v1", TaskID: "t1", Title: "Engine Oil & Filter",
			Category: "engine", Mileage: 50000 + i,
		})
		if err != nil {
			t.Fatalf("AppendServiceLog: %v", err)
		}
	}

	f, err := os.Open(filepath.Join(dir, "servicelog.jsonl"))
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	defer f.Close()

	var n int
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var e ServiceLogEntry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			t.Fatalf("line %d: %v", n, err)
		}
		if e.At.IsZero() {
			t.Fatal("entry missing timestamp")
		}
		n++
	}
	if n != 3 {
		t.Fatalf("log lines = %d, want 3", n)
	}
}
