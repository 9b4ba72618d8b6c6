package forecast

import (
	"context"
	"time"

	"motorcare/internal/maintenance"
	logx "motorcare/pkg/logx"
)

// Planner is the explicit two-step forecast pipeline: try the external
// service, and on any error or empty result synthesize the schedule locally
// from the catalog. The external failure is logged and swallowed here; Plan
// never fails.
type Planner struct {
	svc    Service // nil means always synthesize locally
	policy maintenance.ResolverPolicy
	log    logx.Logger
	now    func() time.Time
}

func NewPlanner(svc Service, policy maintenance.ResolverPolicy, log logx.Logger) *Planner {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Planner{svc: svc, policy: policy, log: log, now: time.Now}
}

// SetClock overrides the planner's clock. Intended for tests.
func (p *Planner) SetClock(now func() time.Time) { p.now = now }

// Plan returns a non-empty, internally consistent schedule for the vehicle.
// Completed tasks are forwarded to the external service so it can avoid
// re-forecasting work that was just done; the local fallback ignores them
// (reconciliation happens via smart match at completion time).
func (p *Planner) Plan(ctx context.Context, v maintenance.Vehicle, catalog []maintenance.BaselineTask, completed []maintenance.MaintenanceTask) []maintenance.MaintenanceTask {
	now := p.now()

	if p.svc != nil {
		tasks, err := p.svc.Forecast(ctx, Request{Vehicle: v, Completed: completed, Catalog: catalog})
		if err == nil && len(tasks) > 0 {
			return tasks
		}
		p.log.Warn("forecast service unusable; synthesizing locally",
			logx.Err(err),
			logx.String("make", v.Make),
			logx.String("model", v.Model),
		)
	}

	return maintenance.Synthesize(v, catalog, now, p.policy, p.log)
}
