package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"motorcare/internal/eventbus"
	"motorcare/internal/maintenance"
	"motorcare/internal/storage"
	logx "motorcare/pkg/logx"
)

// Garage-level operations: the caller-facing surface that composes the pure
// engine with storage and events. Concurrent calls for the same vehicle must
// be serialized by the caller.

var ErrNoStorage = errors.New("storage disabled")

// AddVehicle stores a vehicle and seeds its schedule from the baseline
// catalog (external forecast first, local synthesis as fallback).
func (a *App) AddVehicle(ctx context.Context, rec storage.VehicleRecord) error {
	if a.store == nil {
		return ErrNoStorage
	}
	if strings.TrimSpace(rec.ID) == "" {
		rec.ID = maintenance.NewTaskID()
	}
	if err := a.store.PutVehicle(ctx, rec); err != nil {
		return fmt.Errorf("put vehicle: %w", err)
	}

	v := maintenance.Vehicle{
		Make:           rec.Make,
		Model:          rec.Model,
		Year:           rec.Year,
		CurrentMileage: rec.CurrentMileage,
		PurchaseDate:   rec.PurchaseDate,
	}
	schedule := a.planner.Plan(ctx, v, a.cat.For(v.Make, v.Model, v.Year), nil)
	if err := a.store.SaveTasks(ctx, rec.ID, schedule); err != nil {
		return fmt.Errorf("save schedule: %w", err)
	}

	a.log.Info("vehicle added",
		logx.String("vehicle", rec.ID),
		logx.String("make", rec.Make),
		logx.String("model", rec.Model),
		logx.Int("tasks", len(schedule)),
	)
	return nil
}

// CompleteTask marks one task completed, reconciles it against forecast
// placeholders (archiving every placeholder it supersedes), persists the
// schedule, and appends a service-history line.
func (a *App) CompleteTask(ctx context.Context, vehicleID, taskID string, cost float64, notes string) error {
	if a.store == nil {
		return ErrNoStorage
	}
	vr, err := a.store.GetVehicle(ctx, vehicleID)
	if err != nil {
		return err
	}
	tasks, err := a.store.LoadTasks(ctx, vehicleID)
	if err != nil {
		return err
	}

	idx := -1
	for i := range tasks {
		if tasks[i].ID == taskID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("task %s: %w", taskID, storage.ErrNotFound)
	}

	now := a.now()
	tasks[idx] = maintenance.Classify(tasks[idx], maintenance.SetStatus(maintenance.StatusCompleted), now, vr.CurrentMileage)

	archived := maintenance.ArchiveMatches(tasks, tasks[idx])
	for _, i := range archived {
		a.bus.Publish(eventbus.Event{
			Type: eventbus.TypeForecastArchived,
			Data: eventbus.TaskEvent{
				VehicleID: vehicleID,
				TaskID:    tasks[i].ID,
				Title:     tasks[i].Title,
				Category:  tasks[i].Category,
				Status:    string(tasks[i].Status),
			},
		})
	}

	if err := a.store.SaveTasks(ctx, vehicleID, tasks); err != nil {
		return fmt.Errorf("save tasks: %w", err)
	}

	entry := storage.ServiceLogEntry{
		At:        now,
		VehicleID: vehicleID,
		TaskID:    taskID,
		Title:     tasks[idx].Title,
		Category:  tasks[idx].Category,
		Mileage:   vr.CurrentMileage,
		Cost:      cost,
		Notes:     notes,
	}
	if err := a.store.AppendServiceLog(ctx, entry); err != nil {
		a.log.Warn("service log append failed", logx.Err(err), logx.String("vehicle", vehicleID))
	}

	a.log.Info("task completed",
		logx.String("vehicle", vehicleID),
		logx.String("task", taskID),
		logx.Int("forecasts_archived", len(archived)),
	)
	return nil
}

// ToggleTask flips a task between completed and its re-derived active status.
func (a *App) ToggleTask(ctx context.Context, vehicleID, taskID string) error {
	if a.store == nil {
		return ErrNoStorage
	}
	vr, err := a.store.GetVehicle(ctx, vehicleID)
	if err != nil {
		return err
	}
	tasks, err := a.store.LoadTasks(ctx, vehicleID)
	if err != nil {
		return err
	}
	for i := range tasks {
		if tasks[i].ID == taskID {
			tasks[i] = maintenance.Classify(tasks[i], maintenance.Toggle(), a.now(), vr.CurrentMileage)
			return a.store.SaveTasks(ctx, vehicleID, tasks)
		}
	}
	return fmt.Errorf("task %s: %w", taskID, storage.ErrNotFound)
}

// UpdateMileage records a new odometer reading and reclassifies the schedule
// against it.
func (a *App) UpdateMileage(ctx context.Context, vehicleID string, mileage int) error {
	if a.store == nil {
		return ErrNoStorage
	}
	if mileage < 0 {
		return errors.New("mileage must be >= 0")
	}
	vr, err := a.store.GetVehicle(ctx, vehicleID)
	if err != nil {
		return err
	}
	vr.CurrentMileage = mileage
	if err := a.store.PutVehicle(ctx, vr); err != nil {
		return err
	}

	tasks, err := a.store.LoadTasks(ctx, vehicleID)
	if err != nil {
		return err
	}
	now := a.now()
	for i := range tasks {
		tasks[i] = maintenance.Classify(tasks[i], maintenance.Recompute(), now, mileage)
	}
	return a.store.SaveTasks(ctx, vehicleID, tasks)
}
