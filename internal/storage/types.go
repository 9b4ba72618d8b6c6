package storage

import (
	"errors"
	"time"
)

var (
	ErrDisabled = errors.New("storage disabled")
	ErrNotFound = errors.New("not found")
)

// Config configures storage.
//
// Driver values:
//   - "file": dependency-free file backend
//   - "sqlite": SQLite database file (optional build tag)
//
// If Driver is empty or "none", storage is disabled.
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default
}

// VehicleRecord is a stored vehicle.
type VehicleRecord struct {
	ID             string     `json:"id"`
	Make           string     `json:"make"`
	Model          string     `json:"model"`
	Year           int        `json:"year"`
	CurrentMileage int        `json:"current_mileage"`
	PurchaseDate   *time.Time `json:"purchase_date,omitempty"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// ServiceLogEntry records one completed service for history/audit.
// Keep it compact and schema-stable.
type ServiceLogEntry struct {
	At        time.Time `json:"at"`
	VehicleID string    `json:"vehicle_id"`
	TaskID    string    `json:"task_id"`
	Title     string    `json:"title"`
	Category  string    `json:"category"`
	Mileage   int       `json:"mileage"`
	Cost      float64   `json:"cost,omitempty"`
	Notes     string    `json:"notes,omitempty"`
}
