package config

import (
	"errors"
	"fmt"
	"strings"
)

type Config struct {
	Logging LoggingConfig `json:"logging"`

	// Storage selects the persistence driver for vehicles and schedules.
	// If omitted, storage is disabled and the daemon runs stateless.
	Storage *StorageConfig `json:"storage,omitempty"`

	// Catalog points at the baseline interval catalog file. If omitted, the
	// compiled-in catalog is used.
	Catalog CatalogConfig `json:"catalog,omitempty"`

	// Forecast configures the optional external forecast service. If the URL
	// is empty, schedules are always synthesized locally.
	Forecast ForecastConfig `json:"forecast,omitempty"`

	// Sweeper controls the periodic reclassification/forecast-refresh sweep.
	Sweeper SweeperConfig `json:"sweeper"`
}

type LoggingConfig struct {
	Level   string        `json:"level,omitempty"`
	Console bool          `json:"console,omitempty"`
	File    LogFileConfig `json:"file,omitempty"`
}

type LogFileConfig struct {
	Enabled bool   `json:"enabled,omitempty"`
	Path    string `json:"path,omitempty"`
}

type StorageConfig struct {
	Driver string `json:"driver,omitempty"`
	Path   string `json:"path,omitempty"`

	// BusyTimeout is a Go duration string (sqlite only).
	BusyTimeout string `json:"busy_timeout,omitempty"`
}

type CatalogConfig struct {
	Path string `json:"path,omitempty"`
}

type ForecastConfig struct {
	URL string `json:"url,omitempty"`

	// Timeout is a Go duration string (e.g. "5s"). Default "10s".
	Timeout string `json:"timeout,omitempty"`

	// RatePerSec caps outbound forecast requests. Default 1.
	RatePerSec int `json:"rate_per_sec,omitempty"`

	// AnnualDistance overrides the assumed distance driven per year used to
	// estimate dates from mileage intervals. Default 12000.
	AnnualDistance int `json:"annual_distance,omitempty"`
}

// SweeperConfig controls the periodic sweep.
//
// Schedule accepts a standard 5-field cron spec ("0 7 * * *"), a "cron:" or
// "interval:" prefixed form, or a bare Go duration ("6h").
type SweeperConfig struct {
	Enabled  *bool  `json:"enabled,omitempty"`
	Schedule string `json:"schedule,omitempty"`
	Timezone string `json:"timezone,omitempty"`

	// DueSoonDays is the lookahead window for due-soon reminder events.
	DueSoonDays int `json:"due_soon_days,omitempty"`

	HistorySize int `json:"history_size,omitempty"`
}

func (c SweeperConfig) IsEnabled() bool {
	if c.Enabled == nil {
		return true
	}
	return *c.Enabled
}

// Validate checks cross-field constraints that the strict decoder cannot.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	if cfg.Storage != nil {
		switch d := strings.ToLower(strings.TrimSpace(cfg.Storage.Driver)); d {
		case "", "none", "file", "sqlite", "sqlite3":
		default:
			return fmt.Errorf("storage.driver: unknown driver %q", d)
		}
		if _, err := ParseDurationField("storage.busy_timeout", cfg.Storage.BusyTimeout); err != nil {
			return err
		}
	}
	if _, err := ParseDurationField("forecast.timeout", cfg.Forecast.Timeout); err != nil {
		return err
	}
	if cfg.Forecast.RatePerSec < 0 {
		return errors.New("forecast.rate_per_sec: must be >= 0")
	}
	if cfg.Forecast.AnnualDistance < 0 {
		return errors.New("forecast.annual_distance: must be >= 0")
	}
	if cfg.Sweeper.DueSoonDays < 0 {
		return errors.New("sweeper.due_soon_days: must be >= 0")
	}
	return nil
}
