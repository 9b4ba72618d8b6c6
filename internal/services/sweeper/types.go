package sweeper

import (
	"strings"
	"sync"
	"time"
)

// Config controls the sweep service.
type Config struct {
	Enabled     bool
	Schedule    string // cron spec, HH:MM, or duration; default "1h"
	Timezone    string // IANA TZ, e.g. "Asia/Jakarta"
	DueSoonDays int    // lookahead for due-soon events; default 7
	HistorySize int    // default 50
}

func (c Config) withDefaults() Config {
	if strings.TrimSpace(c.Schedule) == "" {
		c.Schedule = "1h"
	}
	if c.DueSoonDays <= 0 {
		c.DueSoonDays = 7
	}
	if c.HistorySize <= 0 {
		c.HistorySize = 50
	}
	return c
}

// runState gates overlapping sweeps: a sweep that fires while the previous
// one is still running is skipped, not queued.
type runState struct {
	mu      sync.Mutex
	running bool
}

func (s *runState) tryAcquire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return false
	}
	s.running = true
	return true
}

func (s *runState) release() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

// HistoryItem is one completed (or failed) sweep, for diagnostics.
type HistoryItem struct {
	Started  time.Time
	Duration time.Duration
	Report   Report
	Error    string
}

// Report summarizes one sweep.
type Report struct {
	Vehicles   int `json:"vehicles"`
	TasksAdded int `json:"tasks_added"`
	Overdue    int `json:"overdue"`
	DueSoon    int `json:"due_soon"`
	Errors     int `json:"errors"`
}

// Snapshot is a lightweight view for diagnostics.
type Snapshot struct {
	Enabled  bool
	Schedule string
	Timezone string
	NextRun  time.Time
	Running  bool
	History  []HistoryItem
}
