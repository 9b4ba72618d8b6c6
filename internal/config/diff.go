package config

import (
	"reflect"
	"strings"

	logx "motorcare/pkg/logx"
)

// SummarizeChange returns a compact list of changed sections plus structured
// attrs for logging the reload.
func SummarizeChange(oldCfg, newCfg *Config) ([]string, []logx.Field) {
	if oldCfg == nil {
		oldCfg = &Config{}
	}
	if newCfg == nil {
		newCfg = &Config{}
	}

	changed := make([]string, 0, 5)
	attrs := make([]logx.Field, 0, 12)

	if !reflect.DeepEqual(oldCfg.Logging, newCfg.Logging) {
		changed = append(changed, "logging")
		attrs = append(attrs,
			logx.String("logging.level", newCfg.Logging.Level),
			logx.Bool("logging.console", newCfg.Logging.Console),
			logx.Bool("logging.file_enabled", newCfg.Logging.File.Enabled),
		)
	}

	if !reflect.DeepEqual(oldCfg.Storage, newCfg.Storage) {
		changed = append(changed, "storage")
		driver := ""
		if newCfg.Storage != nil {
			driver = strings.TrimSpace(newCfg.Storage.Driver)
		}
		attrs = append(attrs, logx.String("storage.driver", driver))
	}

	if strings.TrimSpace(oldCfg.Catalog.Path) != strings.TrimSpace(newCfg.Catalog.Path) {
		changed = append(changed, "catalog")
		attrs = append(attrs, logx.String("catalog.path", strings.TrimSpace(newCfg.Catalog.Path)))
	}

	if !reflect.DeepEqual(oldCfg.Forecast, newCfg.Forecast) {
		changed = append(changed, "forecast")
		attrs = append(attrs,
			logx.Bool("forecast.url_set", strings.TrimSpace(newCfg.Forecast.URL) != ""),
			logx.Int("forecast.annual_distance", newCfg.Forecast.AnnualDistance),
		)
	}

	if !reflect.DeepEqual(oldCfg.Sweeper, newCfg.Sweeper) {
		changed = append(changed, "sweeper")
		attrs = append(attrs,
			logx.Bool("sweeper.enabled", newCfg.Sweeper.IsEnabled()),
			logx.String("sweeper.schedule", newCfg.Sweeper.Schedule),
			logx.Int("sweeper.due_soon_days", newCfg.Sweeper.DueSoonDays),
		)
	}

	return changed, attrs
}
