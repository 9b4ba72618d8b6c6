package storage

import (
	"context"
	"errors"
	"strings"

	"motorcare/internal/maintenance"
	logx "motorcare/pkg/logx"
)

// Store is the persistence API used by the app shell and the sweeper.
type Store interface {
	PutVehicle(ctx context.Context, v VehicleRecord) error
	GetVehicle(ctx context.Context, id string) (VehicleRecord, error)
	ListVehicles(ctx context.Context) ([]VehicleRecord, error)

	SaveTasks(ctx context.Context, vehicleID string, tasks []maintenance.MaintenanceTask) error
	LoadTasks(ctx context.Context, vehicleID string) ([]maintenance.MaintenanceTask, error)

	AppendServiceLog(ctx context.Context, e ServiceLogEntry) error

	Close() error
}

// Open initializes the configured store.
// It returns (nil, nil) if storage is disabled.
func Open(cfg Config, log logx.Logger) (Store, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if driver == "" || driver == "none" {
		return nil, nil
	}
	if log.IsZero() {
		log = logx.Nop()
	}

	switch driver {
	case "file":
		return openFile(cfg, log)
	case "sqlite", "sqlite3":
		return openSQLite(cfg, log)
	default:
		return nil, errors.New("unknown storage driver: " + driver)
	}
}
