// Package catalog loads baseline maintenance interval catalogs.
//
// A catalog file is YAML: a "default" list of baseline entries that applies
// to every vehicle, plus optional "vehicles" blocks keyed by make/model and a
// year range. A compiled-in catalog backs everything so a schedule can always
// be synthesized even when no file is configured or the provider failed.
package catalog

import (
	"fmt"
	"os"
	"strings"

	yaml "go.yaml.in/yaml/v3"

	"motorcare/internal/maintenance"
	logx "motorcare/pkg/logx"
)

// Entry is one catalog row as it appears on disk.
type Entry struct {
	Item             string `yaml:"item" json:"item"`
	Category         string `yaml:"category" json:"category"`
	IntervalDistance int    `yaml:"interval_distance,omitempty" json:"interval_distance,omitempty"`
	IntervalMonths   int    `yaml:"interval_months,omitempty" json:"interval_months,omitempty"`
	Urgency          string `yaml:"urgency,omitempty" json:"urgency,omitempty"`
}

// VehicleBlock scopes entries to a make/model and an inclusive year range.
// Zero YearFrom/YearTo means unbounded on that side.
type VehicleBlock struct {
	Make     string  `yaml:"make" json:"make"`
	Model    string  `yaml:"model,omitempty" json:"model,omitempty"`
	YearFrom int     `yaml:"year_from,omitempty" json:"year_from,omitempty"`
	YearTo   int     `yaml:"year_to,omitempty" json:"year_to,omitempty"`
	Tasks    []Entry `yaml:"tasks" json:"tasks"`
}

type file struct {
	Default  []Entry        `yaml:"default,omitempty" json:"default,omitempty"`
	Vehicles []VehicleBlock `yaml:"vehicles,omitempty" json:"vehicles,omitempty"`
}

// Catalog is an in-memory, validated baseline catalog.
type Catalog struct {
	defaults []maintenance.BaselineTask
	vehicles []vehicleEntries
}

type vehicleEntries struct {
	make_    string
	model    string
	yearFrom int
	yearTo   int
	tasks    []maintenance.BaselineTask
}

// Load reads and validates a catalog file. Malformed entries (missing item,
// negative interval) are skipped with a warning; the rest of the file is
// still usable. A file with no usable entries at all is an error.
func Load(path string, log logx.Logger) (*Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f file
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}

	c := &Catalog{defaults: validateEntries(f.Default, log)}
	for _, vb := range f.Vehicles {
		tasks := validateEntries(vb.Tasks, log)
		if len(tasks) == 0 {
			continue
		}
		c.vehicles = append(c.vehicles, vehicleEntries{
			make_:    strings.TrimSpace(vb.Make),
			model:    strings.TrimSpace(vb.Model),
			yearFrom: vb.YearFrom,
			yearTo:   vb.YearTo,
			tasks:    tasks,
		})
	}

	if len(c.defaults) == 0 && len(c.vehicles) == 0 {
		return nil, fmt.Errorf("catalog %s: no usable entries", path)
	}
	return c, nil
}

func validateEntries(entries []Entry, log logx.Logger) []maintenance.BaselineTask {
	out := make([]maintenance.BaselineTask, 0, len(entries))
	for _, e := range entries {
		item := strings.TrimSpace(e.Item)
		if item == "" {
			log.Warn("skipping catalog entry with empty item")
			continue
		}
		if e.IntervalDistance < 0 || e.IntervalMonths < 0 {
			log.Warn("skipping catalog entry with negative interval",
				logx.String("item", item),
				logx.Int("interval_distance", e.IntervalDistance),
				logx.Int("interval_months", e.IntervalMonths),
			)
			continue
		}
		out = append(out, maintenance.BaselineTask{
			Item:             item,
			Category:         strings.TrimSpace(e.Category),
			IntervalDistance: e.IntervalDistance,
			IntervalMonths:   e.IntervalMonths,
			Urgency:          parseUrgency(e.Urgency),
		})
	}
	return out
}

func parseUrgency(s string) maintenance.Urgency {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high":
		return maintenance.UrgencyHigh
	case "medium", "med":
		return maintenance.UrgencyMedium
	case "low":
		return maintenance.UrgencyLow
	default:
		return ""
	}
}

// For returns the baseline entries for a specific vehicle: matching
// vehicle-scoped entries first, then default entries for items not already
// covered (keyed by item+category). Falls back to the compiled-in catalog
// when the result would be empty.
func (c *Catalog) For(vmake, model string, year int) []maintenance.BaselineTask {
	if c == nil {
		return Builtin()
	}

	var out []maintenance.BaselineTask
	seen := map[string]struct{}{}
	add := func(tasks []maintenance.BaselineTask) {
		for _, t := range tasks {
			k := strings.ToLower(t.Item) + "\x00" + strings.ToLower(t.Category)
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, t)
		}
	}

	for _, ve := range c.vehicles {
		if !strings.EqualFold(ve.make_, vmake) {
			continue
		}
		if ve.model != "" && !strings.EqualFold(ve.model, model) {
			continue
		}
		if ve.yearFrom != 0 && year < ve.yearFrom {
			continue
		}
		if ve.yearTo != 0 && year > ve.yearTo {
			continue
		}
		add(ve.tasks)
	}
	add(c.defaults)

	if len(out) == 0 {
		return Builtin()
	}
	return out
}

// Builtin is the compiled-in fallback catalog: common service items with
// widely used intervals. It keeps the fallback synthesizer functional when no
// catalog file is configured or the external provider is down.
func Builtin() []maintenance.BaselineTask {
	return []maintenance.BaselineTask{
		{Item: "Engine Oil & Filter", Category: "engine", IntervalDistance: 5000, IntervalMonths: 6, Urgency: maintenance.UrgencyHigh},
		{Item: "Tire Rotation", Category: "tires", IntervalDistance: 7500, IntervalMonths: 6, Urgency: maintenance.UrgencyMedium},
		{Item: "Engine Air Filter", Category: "engine", IntervalDistance: 15000, IntervalMonths: 12, Urgency: maintenance.UrgencyLow},
		{Item: "Cabin Air Filter", Category: "hvac", IntervalDistance: 15000, IntervalMonths: 12, Urgency: maintenance.UrgencyLow},
		{Item: "Brake Inspection", Category: "brakes", IntervalDistance: 10000, IntervalMonths: 12, Urgency: maintenance.UrgencyHigh},
		{Item: "Coolant Flush", Category: "engine", IntervalDistance: 30000, IntervalMonths: 24, Urgency: maintenance.UrgencyMedium},
		{Item: "Transmission Fluid", Category: "drivetrain", IntervalDistance: 30000, IntervalMonths: 36, Urgency: maintenance.UrgencyMedium},
		{Item: "Battery Check", Category: "electrical", IntervalMonths: 12, Urgency: maintenance.UrgencyLow},
	}
}
