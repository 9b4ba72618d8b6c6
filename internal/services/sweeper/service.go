package sweeper

import (
	"context"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"motorcare/internal/catalog"
	"motorcare/internal/eventbus"
	"motorcare/internal/forecast"
	"motorcare/internal/storage"
	logx "motorcare/pkg/logx"
)

// Service owns the cron engine and runs sweeps.
type Service struct {
	mu  sync.Mutex
	cfg Config

	log     logx.Logger
	store   storage.Store
	planner *forecast.Planner
	cat     *catalog.Catalog
	bus     eventbus.Bus

	parser  cron.Parser
	c       *cron.Cron
	entryID cron.EntryID
	loc     *time.Location

	state runState
	now   func() time.Time

	hmu     sync.Mutex
	history []HistoryItem
}

func New(cfg Config, store storage.Store, planner *forecast.Planner, cat *catalog.Catalog, bus eventbus.Bus, log logx.Logger) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Service{
		cfg:     cfg.withDefaults(),
		log:     log,
		store:   store,
		planner: planner,
		cat:     cat,
		bus:     bus,
		// SecondOptional allows both 5-field and 6-field (with seconds) cron specs.
		parser: cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
		now:    time.Now,
	}
}

// SetClock overrides the sweep clock. Intended for tests.
func (s *Service) SetClock(now func() time.Time) { s.now = now }

// Apply swaps the config. A changed schedule or timezone restarts the cron
// entry; an in-flight sweep is not interrupted.
func (s *Service) Apply(ctx context.Context, cfg Config) {
	s.mu.Lock()
	old := s.cfg
	s.cfg = cfg.withDefaults()
	running := s.c != nil
	changed := old.Schedule != s.cfg.Schedule ||
		strings.TrimSpace(old.Timezone) != strings.TrimSpace(s.cfg.Timezone) ||
		old.Enabled != s.cfg.Enabled
	s.mu.Unlock()

	if running && changed {
		s.Stop(ctx)
		if cfg.Enabled {
			if err := s.Start(ctx); err != nil {
				s.log.Error("sweeper restart failed", logx.Err(err))
			}
		}
	}
}

// Start registers the sweep with the cron engine. It is a no-op when the
// service is disabled or already started.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.cfg.Enabled || s.c != nil {
		return nil
	}

	spec, err := ParseSchedule(s.cfg.Schedule)
	if err != nil {
		return err
	}

	loc := time.Local
	if tz := strings.TrimSpace(s.cfg.Timezone); tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			return err
		}
		loc = l
	}
	s.loc = loc

	c := cron.New(cron.WithParser(s.parser), cron.WithLocation(loc))

	job := func() { s.runSweep(ctx) }
	switch spec.Kind {
	case SpecCron:
		id, err := c.AddFunc(spec.Cron, job)
		if err != nil {
			return err
		}
		s.entryID = id
	case SpecInterval:
		s.entryID = c.Schedule(cron.Every(spec.Every), cron.FuncJob(job))
	}

	s.c = c
	c.Start()
	s.log.Info("sweeper started",
		logx.String("schedule", s.cfg.Schedule),
		logx.String("tz", loc.String()),
		logx.Int("due_soon_days", s.cfg.DueSoonDays),
	)
	return nil
}

// Stop halts the cron engine and waits for an in-flight sweep to finish, up
// to ctx's deadline.
func (s *Service) Stop(ctx context.Context) {
	s.mu.Lock()
	c := s.c
	s.c = nil
	s.mu.Unlock()

	if c == nil {
		return
	}
	select {
	case <-c.Stop().Done():
	case <-ctx.Done():
		// stop continues in background
	}
	s.log.Info("sweeper stopped")
}

// runSweep is the cron entry point: overlap-gated, panic-safe, recorded.
func (s *Service) runSweep(ctx context.Context) {
	if !s.state.tryAcquire() {
		s.log.Debug("sweep skipped (previous sweep still running)")
		return
	}
	defer s.state.release()

	started := s.now()
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("panic in sweep",
				logx.Any("panic", r),
				logx.Stack(string(debug.Stack())),
			)
			s.record(HistoryItem{Started: started, Duration: time.Since(started), Error: "panic"})
		}
	}()

	report, err := s.Sweep(ctx)
	item := HistoryItem{Started: started, Duration: time.Since(started), Report: report}
	if err != nil {
		item.Error = err.Error()
		s.log.Error("sweep failed", logx.Err(err))
	}
	s.record(item)
}

func (s *Service) record(item HistoryItem) {
	s.mu.Lock()
	size := s.cfg.HistorySize
	s.mu.Unlock()

	s.hmu.Lock()
	s.history = append(s.history, item)
	if len(s.history) > size {
		s.history = s.history[len(s.history)-size:]
	}
	s.hmu.Unlock()
}

// Snapshot returns a diagnostics view.
func (s *Service) Snapshot() Snapshot {
	s.mu.Lock()
	snap := Snapshot{
		Enabled:  s.cfg.Enabled,
		Schedule: s.cfg.Schedule,
		Timezone: s.cfg.Timezone,
	}
	if s.c != nil {
		snap.NextRun = s.c.Entry(s.entryID).Next
	}
	s.mu.Unlock()

	s.state.mu.Lock()
	snap.Running = s.state.running
	s.state.mu.Unlock()

	s.hmu.Lock()
	snap.History = append([]HistoryItem(nil), s.history...)
	s.hmu.Unlock()
	return snap
}
