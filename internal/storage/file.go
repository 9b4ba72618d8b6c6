package storage

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"motorcare/internal/maintenance"
	logx "motorcare/pkg/logx"
)

// fileStore is a dependency-free persistence backend.
//
// Layout under the configured directory:
//   - vehicles.json          (snapshot of all vehicle records)
//   - tasks.<vehicleID>.json (snapshot of one vehicle's schedule)
//   - servicelog.jsonl       (append-only JSON Lines)
//
// Snapshots are written via tmp-file + rename so a crash mid-write never
// leaves a truncated snapshot behind.
type fileStore struct {
	log logx.Logger
	dir string

	mu       sync.Mutex
	vehicles map[string]VehicleRecord
	logFile  *os.File
}

func openFile(cfg Config, log logx.Logger) (Store, error) {
	dir := strings.TrimSpace(cfg.Path)
	if dir == "" {
		return nil, errors.New("storage.path is required for file driver")
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	s := &fileStore{log: log, dir: dir, vehicles: map[string]VehicleRecord{}}

	if err := s.loadVehicles(); err != nil {
		return nil, err
	}

	lf, err := os.OpenFile(filepath.Join(dir, "servicelog.jsonl"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, err
	}
	s.logFile = lf
	return s, nil
}

func (s *fileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.logFile != nil {
		err := s.logFile.Close()
		s.logFile = nil
		return err
	}
	return nil
}

func (s *fileStore) vehiclesPath() string { return filepath.Join(s.dir, "vehicles.json") }

func (s *fileStore) tasksPath(vehicleID string) string {
	return filepath.Join(s.dir, "tasks."+sanitizeID(vehicleID)+".json")
}

func (s *fileStore) loadVehicles() error {
	b, err := os.ReadFile(s.vehiclesPath())
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	var recs []VehicleRecord
	if err := json.Unmarshal(b, &recs); err != nil {
		return err
	}
	for _, r := range recs {
		s.vehicles[r.ID] = r
	}
	return nil
}

func (s *fileStore) flushVehiclesLocked() error {
	recs := make([]VehicleRecord, 0, len(s.vehicles))
	for _, r := range s.vehicles {
		recs = append(recs, r)
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].ID < recs[j].ID })
	return writeSnapshot(s.vehiclesPath(), recs)
}

func (s *fileStore) PutVehicle(ctx context.Context, v VehicleRecord) error {
	_ = ctx
	if strings.TrimSpace(v.ID) == "" {
		return errors.New("vehicle id is required")
	}
	if v.UpdatedAt.IsZero() {
		v.UpdatedAt = time.Now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vehicles[v.ID] = v
	return s.flushVehiclesLocked()
}

func (s *fileStore) GetVehicle(ctx context.Context, id string) (VehicleRecord, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.vehicles[id]
	if !ok {
		return VehicleRecord{}, ErrNotFound
	}
	return r, nil
}

func (s *fileStore) ListVehicles(ctx context.Context) ([]VehicleRecord, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	recs := make([]VehicleRecord, 0, len(s.vehicles))
	for _, r := range s.vehicles {
		recs = append(recs, r)
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].ID < recs[j].ID })
	return recs, nil
}

func (s *fileStore) SaveTasks(ctx context.Context, vehicleID string, tasks []maintenance.MaintenanceTask) error {
	_ = ctx
	if strings.TrimSpace(vehicleID) == "" {
		return errors.New("vehicle id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return writeSnapshot(s.tasksPath(vehicleID), tasks)
}

func (s *fileStore) LoadTasks(ctx context.Context, vehicleID string) ([]maintenance.MaintenanceTask, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	b, err := os.ReadFile(s.tasksPath(vehicleID))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var tasks []maintenance.MaintenanceTask
	if err := json.Unmarshal(b, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (s *fileStore) AppendServiceLog(ctx context.Context, e ServiceLogEntry) error {
	_ = ctx
	if e.At.IsZero() {
		e.At = time.Now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.logFile == nil {
		return errors.New("service log closed")
	}
	return json.NewEncoder(s.logFile).Encode(e)
}

func writeSnapshot(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// sanitizeID keeps task snapshot filenames safe regardless of what the
// caller uses as a vehicle id.
func sanitizeID(id string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, id)
}
