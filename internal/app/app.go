// Package app wires the motorcare components: config, logging, storage,
// catalog, forecast planner, event bus, and the periodic sweeper.
package app

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"motorcare/internal/catalog"
	"motorcare/internal/config"
	"motorcare/internal/eventbus"
	"motorcare/internal/forecast"
	"motorcare/internal/maintenance"
	"motorcare/internal/services/sweeper"
	"motorcare/internal/storage"
	logx "motorcare/pkg/logx"
)

type App struct {
	cfgPath string

	cfgm *config.Manager
	logs *logx.Service
	log  logx.Logger

	store   storage.Store
	bus     eventbus.Bus
	cat     *catalog.Catalog
	planner *forecast.Planner
	sweep   *sweeper.Service

	now func() time.Time

	stopWatch context.CancelFunc
	wg        sync.WaitGroup
}

func New(cfgPath string) (*App, error) {
	cfgm := config.NewManager(cfgPath)
	cfg, err := cfgm.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logs, log := logx.New(logxConfig(cfg))
	cfgm.SetLogger(log.With(logx.String("comp", "config")))
	cfgm.SetValidator(func(ctx context.Context, c *config.Config) error {
		_ = ctx
		return config.Validate(c)
	})

	store, err := openStorage(cfg, log)
	if err != nil {
		_ = logs.Close()
		return nil, err
	}

	var cat *catalog.Catalog
	if path := strings.TrimSpace(cfg.Catalog.Path); path != "" {
		cat, err = catalog.Load(path, log.With(logx.String("comp", "catalog")))
		if err != nil {
			if store != nil {
				_ = store.Close()
			}
			_ = logs.Close()
			return nil, err
		}
	}

	svc, err := forecastService(cfg, log)
	if err != nil {
		if store != nil {
			_ = store.Close()
		}
		_ = logs.Close()
		return nil, err
	}

	policy := maintenance.ResolverPolicy{AnnualDistance: cfg.Forecast.AnnualDistance}
	planner := forecast.NewPlanner(svc, policy, log.With(logx.String("comp", "forecast")))

	bus := eventbus.New()

	a := &App{
		cfgPath: cfgPath,
		cfgm:    cfgm,
		logs:    logs,
		log:     log,
		store:   store,
		bus:     bus,
		cat:     cat,
		planner: planner,
		now:     time.Now,
	}
	a.sweep = sweeper.New(sweeperConfig(cfg), store, planner, cat, bus, log.With(logx.String("comp", "sweeper")))
	return a, nil
}

func (a *App) Log() logx.Logger           { return a.log }
func (a *App) Bus() eventbus.Bus          { return a.bus }
func (a *App) Store() storage.Store       { return a.store }
func (a *App) Sweeper() *sweeper.Service  { return a.sweep }
func (a *App) Planner() *forecast.Planner { return a.planner }

// Catalog returns the baseline catalog source; nil means compiled-in only.
func (a *App) Catalog() *catalog.Catalog { return a.cat }

func (a *App) Start(ctx context.Context) error {
	// Config hot reload: watch the file and re-apply live-tunable sections.
	wctx, cancel := context.WithCancel(ctx)
	a.stopWatch = cancel

	updates := a.cfgm.Subscribe(4)
	a.wg.Add(2)
	go func() {
		defer a.wg.Done()
		_ = a.cfgm.Watch(wctx)
	}()
	go func() {
		defer a.wg.Done()
		old := a.cfgm.Get()
		for {
			select {
			case <-wctx.Done():
				return
			case cfg, ok := <-updates:
				if !ok {
					return
				}
				a.applyReload(wctx, old, cfg)
				old = cfg
			}
		}
	}()

	if a.store != nil {
		if err := a.sweep.Start(ctx); err != nil {
			return fmt.Errorf("start sweeper: %w", err)
		}
	} else {
		a.log.Warn("storage disabled; periodic sweep not started")
	}

	a.log.Info("motorcare started", logx.String("config", a.cfgPath))
	return nil
}

func (a *App) applyReload(ctx context.Context, old, cfg *config.Config) {
	changed, attrs := config.SummarizeChange(old, cfg)
	if len(changed) == 0 {
		return
	}
	a.log.Info("config reloaded", append([]logx.Field{logx.Any("sections", changed)}, attrs...)...)

	for _, section := range changed {
		switch section {
		case "logging":
			a.logs.Apply(logxConfig(cfg))
		case "sweeper":
			a.sweep.Apply(ctx, sweeperConfig(cfg))
		case "storage", "catalog", "forecast":
			// Swapping these safely requires re-wiring; take effect on restart.
			a.log.Warn("config section requires restart to take effect", logx.String("section", section))
		}
	}
}

func (a *App) Stop(ctx context.Context) error {
	if a.stopWatch != nil {
		a.stopWatch()
	}
	a.sweep.Stop(ctx)
	a.wg.Wait()

	if a.store != nil {
		_ = a.store.Close()
	}
	a.log.Info("motorcare stopped")
	return a.logs.Close()
}

// ---- config mapping ----

func logxConfig(cfg *config.Config) logx.Config {
	return logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	}
}

func openStorage(cfg *config.Config, log logx.Logger) (storage.Store, error) {
	if cfg.Storage == nil {
		return nil, nil
	}
	busy, err := config.ParseDurationField("storage.busy_timeout", cfg.Storage.BusyTimeout)
	if err != nil {
		return nil, err
	}
	return storage.Open(storage.Config{
		Driver:      cfg.Storage.Driver,
		Path:        cfg.Storage.Path,
		BusyTimeout: busy,
	}, log.With(logx.String("comp", "storage")))
}

func forecastService(cfg *config.Config, log logx.Logger) (forecast.Service, error) {
	if strings.TrimSpace(cfg.Forecast.URL) == "" {
		return nil, nil
	}
	timeout, err := config.ParseDurationOrDefault("forecast.timeout", cfg.Forecast.Timeout, 0)
	if err != nil {
		return nil, err
	}
	return forecast.NewHTTPClient(forecast.ClientConfig{
		URL:        cfg.Forecast.URL,
		Timeout:    timeout,
		RatePerSec: cfg.Forecast.RatePerSec,
	}, log.With(logx.String("comp", "forecast")))
}

func sweeperConfig(cfg *config.Config) sweeper.Config {
	return sweeper.Config{
		Enabled:     cfg.Sweeper.IsEnabled(),
		Schedule:    cfg.Sweeper.Schedule,
		Timezone:    cfg.Sweeper.Timezone,
		DueSoonDays: cfg.Sweeper.DueSoonDays,
		HistorySize: cfg.Sweeper.HistorySize,
	}
}
