package sweeper

import (
	"context"
	"fmt"

	"motorcare/internal/eventbus"
	"motorcare/internal/maintenance"
	"motorcare/internal/storage"
	logx "motorcare/pkg/logx"
)

// Sweep runs one full pass over every stored vehicle: reclassify the existing
// schedule, refresh the forecast through the planner, merge, persist, and
// publish reminder events. Per-vehicle failures are counted and logged but do
// not abort the rest of the sweep.
//
// Events are re-published on every sweep while the condition holds; it is the
// subscriber's job to dedupe deliveries.
func (s *Service) Sweep(ctx context.Context) (Report, error) {
	if s.store == nil {
		return Report{}, fmt.Errorf("sweep: storage disabled")
	}

	vehicles, err := s.store.ListVehicles(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("sweep: list vehicles: %w", err)
	}

	s.mu.Lock()
	dueSoonDays := s.cfg.DueSoonDays
	s.mu.Unlock()

	var report Report
	for _, vr := range vehicles {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		if err := s.sweepVehicle(ctx, vr, dueSoonDays, &report); err != nil {
			report.Errors++
			s.log.Error("vehicle sweep failed", logx.Err(err), logx.String("vehicle", vr.ID))
			continue
		}
		report.Vehicles++
	}

	s.log.Info("sweep finished",
		logx.Int("vehicles", report.Vehicles),
		logx.Int("tasks_added", report.TasksAdded),
		logx.Int("overdue", report.Overdue),
		logx.Int("due_soon", report.DueSoon),
		logx.Int("errors", report.Errors),
	)
	return report, nil
}

func (s *Service) sweepVehicle(ctx context.Context, vr storage.VehicleRecord, dueSoonDays int, report *Report) error {
	now := s.now()

	tasks, err := s.store.LoadTasks(ctx, vr.ID)
	if err != nil {
		return fmt.Errorf("load tasks: %w", err)
	}

	v := maintenance.Vehicle{
		Make:           vr.Make,
		Model:          vr.Model,
		Year:           vr.Year,
		CurrentMileage: vr.CurrentMileage,
		PurchaseDate:   vr.PurchaseDate,
	}

	prev := make(map[string]maintenance.Status, len(tasks))
	for i := range tasks {
		prev[tasks[i].ID] = tasks[i].Status
		tasks[i] = maintenance.Classify(tasks[i], maintenance.Recompute(), now, v.CurrentMileage)
	}

	var completed []maintenance.MaintenanceTask
	for _, t := range tasks {
		if t.Status == maintenance.StatusCompleted {
			completed = append(completed, t)
		}
	}

	derived := s.planner.Plan(ctx, v, s.cat.For(v.Make, v.Model, v.Year), completed)
	merged := maintenance.Merge(tasks, derived)
	report.TasksAdded += len(merged) - len(tasks)

	if err := s.store.SaveTasks(ctx, vr.ID, merged); err != nil {
		return fmt.Errorf("save tasks: %w", err)
	}

	for _, t := range maintenance.Active(merged) {
		switch {
		case t.Status == maintenance.StatusOverdue:
			report.Overdue++
			if prev[t.ID] != maintenance.StatusOverdue {
				s.publish(eventbus.TypeTaskOverdue, vr.ID, t)
			}
		case t.Status == maintenance.StatusUpcoming && t.DueDate != nil:
			days := int(t.DueDate.Sub(now).Hours() / 24)
			if days >= 0 && days <= dueSoonDays {
				report.DueSoon++
				s.publish(eventbus.TypeTaskDueSoon, vr.ID, t)
			}
		}
	}

	if s.bus != nil {
		s.bus.Publish(eventbus.Event{
			Type: eventbus.TypeScheduleRefreshed,
			Data: eventbus.TaskEvent{VehicleID: vr.ID},
		})
	}
	return nil
}

func (s *Service) publish(typ, vehicleID string, t maintenance.MaintenanceTask) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(eventbus.Event{
		Type: typ,
		Data: eventbus.TaskEvent{
			VehicleID: vehicleID,
			TaskID:    t.ID,
			Title:     t.Title,
			Category:  t.Category,
			Status:    string(t.Status),
		},
	})
}
