package sweeper

import (
	"context"
	"sync"
	"testing"
	"time"

	"motorcare/internal/eventbus"
	"motorcare/internal/forecast"
	"motorcare/internal/maintenance"
	"motorcare/internal/storage"
	logx "motorcare/pkg/logx"
)

type memStore struct {
	mu       sync.Mutex
	vehicles map[string]storage.VehicleRecord
	tasks    map[string][]maintenance.MaintenanceTask
	logs     []storage.ServiceLogEntry
}

func newMemStore() *memStore {
	return &memStore{
		vehicles: map[string]storage.VehicleRecord{},
		tasks:    map[string][]maintenance.MaintenanceTask{},
	}
}

func (m *memStore) PutVehicle(ctx context.Context, v storage.VehicleRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vehicles[v.ID] = v
	return nil
}

func (m *memStore) GetVehicle(ctx context.Context, id string) (storage.VehicleRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.vehicles[id]
	if !ok {
		return storage.VehicleRecord{}, storage.ErrNotFound
	}
	return v, nil
}

func (m *memStore) ListVehicles(ctx context.Context) ([]storage.VehicleRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]storage.VehicleRecord, 0, len(m.vehicles))
	for _, v := range m.vehicles {
		out = append(out, v)
	}
	return out, nil
}

func (m *memStore) SaveTasks(ctx context.Context, vehicleID string, tasks []maintenance.MaintenanceTask) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks[vehicleID] = append([]maintenance.MaintenanceTask(nil), tasks...)
	return nil
}

func (m *memStore) LoadTasks(ctx context.Context, vehicleID string) ([]maintenance.MaintenanceTask, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]maintenance.MaintenanceTask(nil), m.tasks[vehicleID]...), nil
}

func (m *memStore) AppendServiceLog(ctx context.Context, e storage.ServiceLogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, e)
	return nil
}

func (m *memStore) Close() error { return nil }

func sweepClock() func() time.Time {
	return func() time.Time { return time.Date(2025, time.June, 1, 9, 0, 0, 0, time.UTC) }
}

func newTestService(t *testing.T, store storage.Store, bus eventbus.Bus) *Service {
	t.Helper()
	planner := forecast.NewPlanner(nil, maintenance.ResolverPolicy{}, logx.Nop())
	planner.SetClock(sweepClock())
	s := New(Config{Enabled: true}, store, planner, nil, bus, logx.Nop())
	s.SetClock(sweepClock())
	return s
}

func drain(ch <-chan eventbus.Event) []eventbus.Event {
	var out []eventbus.Event
	for {
		select {
		case e := <-ch:
			out = append(out, e)
		default:
			return out
		}
	}
}

func TestSweepSeedsScheduleForNewVehicle(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	_ = store.PutVehicle(context.Background(), storage.VehicleRecord{
		ID: "v1", Make: "Honda", Model: "Civic", Year: 2022, CurrentMileage: 52000,
	})

	s := newTestService(t, store, nil)
	report, err := s.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if report.Vehicles != 1 || report.Errors != 0 {
		t.Fatalf("report = %+v", report)
	}
	if report.TasksAdded == 0 {
		t.Fatal("expected the sweep to seed a schedule from the builtin catalog")
	}

	saved, _ := store.LoadTasks(context.Background(), "v1")
	if len(saved) != report.TasksAdded {
		t.Fatalf("saved %d tasks, report counted %d", len(saved), report.TasksAdded)
	}
	for _, task := range saved {
		if task.ID == "" {
			t.Fatal("saved task without id")
		}
	}
}

func TestSweepPublishesOverdueOnTransitionOnly(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	_ = store.PutVehicle(context.Background(), storage.VehicleRecord{
		ID: "v1", Make: "Honda", Model: "Civic", Year: 2022, CurrentMileage: 52000,
	})
	yesterday := time.Date(2025, time.May, 31, 0, 0, 0, 0, time.UTC)
	_ = store.SaveTasks(context.Background(), "v1", []maintenance.MaintenanceTask{{
		ID:       "t-late",
		Title:    "Custom Inspection",
		Category: "custom",
		Status:   maintenance.StatusUpcoming,
		DueDate:  &yesterday,
	}})

	bus := eventbus.New()
	ch, unsub := bus.Subscribe(64)
	defer unsub()

	s := newTestService(t, store, bus)
	report, err := s.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if report.Overdue != 1 {
		t.Fatalf("Overdue = %d, want 1", report.Overdue)
	}

	overdue := 0
	for _, e := range drain(ch) {
		if e.Type == eventbus.TypeTaskOverdue {
			overdue++
			te := e.Data.(eventbus.TaskEvent)
			if te.TaskID != "t-late" || te.VehicleID != "v1" {
				t.Fatalf("unexpected event payload %+v", te)
			}
		}
	}
	if overdue != 1 {
		t.Fatalf("overdue events = %d, want 1", overdue)
	}

	// Second sweep: still overdue, but no new transition, so no event.
	if _, err := s.Sweep(context.Background()); err != nil {
		t.Fatalf("second Sweep: %v", err)
	}
	for _, e := range drain(ch) {
		if e.Type == eventbus.TypeTaskOverdue {
			t.Fatal("overdue event re-published without a status transition")
		}
	}
}

func TestSweepPublishesDueSoonWithinWindow(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	_ = store.PutVehicle(context.Background(), storage.VehicleRecord{
		ID: "v1", Make: "Honda", Model: "Civic", Year: 2022, CurrentMileage: 52000,
	})
	soon := time.Date(2025, time.June, 4, 0, 0, 0, 0, time.UTC)   // 3 days out
	later := time.Date(2025, time.July, 15, 0, 0, 0, 0, time.UTC) // outside the window
	_ = store.SaveTasks(context.Background(), "v1", []maintenance.MaintenanceTask{
		{ID: "t-soon", Title: "Custom Inspection", Category: "custom", Status: maintenance.StatusUpcoming, DueDate: &soon},
		{ID: "t-later", Title: "Custom Alignment", Category: "custom", Status: maintenance.StatusUpcoming, DueDate: &later},
	})

	bus := eventbus.New()
	ch, unsub := bus.Subscribe(64)
	defer unsub()

	s := newTestService(t, store, bus)
	report, err := s.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if report.DueSoon != 1 {
		t.Fatalf("DueSoon = %d, want 1", report.DueSoon)
	}
	for _, e := range drain(ch) {
		if e.Type == eventbus.TypeTaskDueSoon {
			if te := e.Data.(eventbus.TaskEvent); te.TaskID != "t-soon" {
				t.Fatalf("due-soon event for %q, want t-soon", te.TaskID)
			}
		}
	}
}

func TestSweepWithoutStorage(t *testing.T) {
	t.Parallel()

	s := newTestService(t, nil, nil)
	if _, err := s.Sweep(context.Background()); err == nil {
		t.Fatal("expected an error when storage is disabled")
	}
}

func TestStartStop(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	s := newTestService(t, store, nil)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	// Second Start is a no-op.
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("second Start: %v", err)
	}
	snap := s.Snapshot()
	if !snap.Enabled || snap.Schedule != "1h" {
		t.Fatalf("snapshot = %+v", snap)
	}
	s.Stop(context.Background())
}

func TestStartRejectsBadSchedule(t *testing.T) {
	t.Parallel()

	planner := forecast.NewPlanner(nil, maintenance.ResolverPolicy{}, logx.Nop())
	s := New(Config{Enabled: true, Schedule: "nope"}, newMemStore(), planner, nil, nil, logx.Nop())
	if err := s.Start(context.Background()); err == nil {
		t.Fatal("expected an error for an unparseable schedule")
	}
}

func TestRecordTrimsHistory(t *testing.T) {
	t.Parallel()

	planner := forecast.NewPlanner(nil, maintenance.ResolverPolicy{}, logx.Nop())
	s := New(Config{Enabled: true, HistorySize: 3}, newMemStore(), planner, nil, nil, logx.Nop())
	for i := 0; i < 10; i++ {
		s.record(HistoryItem{Started: time.Now()})
	}
	if got := len(s.Snapshot().History); got != 3 {
		t.Fatalf("history length = %d, want 3", got)
	}
}
