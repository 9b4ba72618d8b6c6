//go:build sqlite
// +build sqlite

package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"motorcare/internal/maintenance"
	logx "motorcare/pkg/logx"
)

//go:embed migrations.sql
var migrationsFS embed.FS

type sqliteStore struct {
	db  *sql.DB
	log logx.Logger
}

func openSQLite(cfg Config, log logx.Logger) (Store, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	path := cfg.Path
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite prefers a small number of concurrent writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	st := &sqliteStore{db: db, log: log}

	// Basic pragmas.
	if cfg.BusyTimeout > 0 {
		ms := cfg.BusyTimeout.Milliseconds()
		_, _ = db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", ms))
	}
	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")
	_, _ = db.Exec("PRAGMA foreign_keys = ON")

	if err := st.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return st, nil
}

func (s *sqliteStore) migrate(ctx context.Context) error {
	b, err := migrationsFS.ReadFile("migrations.sql")
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, string(b))
	return err
}

func (s *sqliteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *sqliteStore) PutVehicle(ctx context.Context, v VehicleRecord) error {
	if strings.TrimSpace(v.ID) == "" {
		return errors.New("vehicle id is required")
	}
	if v.UpdatedAt.IsZero() {
		v.UpdatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO vehicles(id, make, model, year, current_mileage, purchase_date, updated_at)
		 VALUES(?,?,?,?,?,?,?)
		 ON CONFLICT(id) DO UPDATE SET
		   make=excluded.make, model=excluded.model, year=excluded.year,
		   current_mileage=excluded.current_mileage, purchase_date=excluded.purchase_date,
		   updated_at=excluded.updated_at`,
		v.ID, v.Make, v.Model, v.Year, v.CurrentMileage, nullTime(v.PurchaseDate), v.UpdatedAt.Format(time.RFC3339Nano),
	)
	return err
}

func (s *sqliteStore) GetVehicle(ctx context.Context, id string) (VehicleRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, make, model, year, current_mileage, purchase_date, updated_at FROM vehicles WHERE id = ?`, id)
	v, err := scanVehicle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return VehicleRecord{}, ErrNotFound
	}
	return v, err
}

func (s *sqliteStore) ListVehicles(ctx context.Context) ([]VehicleRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, make, model, year, current_mileage, purchase_date, updated_at FROM vehicles ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []VehicleRecord
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVehicle(r rowScanner) (VehicleRecord, error) {
	var (
		v        VehicleRecord
		purchase sql.NullString
		updated  string
	)
	if err := r.Scan(&v.ID, &v.Make, &v.Model, &v.Year, &v.CurrentMileage, &purchase, &updated); err != nil {
		return VehicleRecord{}, err
	}
	if purchase.Valid {
		if t, err := time.Parse(time.RFC3339Nano, purchase.String); err == nil {
			v.PurchaseDate = &t
		}
	}
	if t, err := time.Parse(time.RFC3339Nano, updated); err == nil {
		v.UpdatedAt = t
	}
	return v, nil
}

func (s *sqliteStore) SaveTasks(ctx context.Context, vehicleID string, tasks []maintenance.MaintenanceTask) error {
	if strings.TrimSpace(vehicleID) == "" {
		return errors.New("vehicle id is required")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE vehicle_id = ?`, vehicleID); err != nil {
		return err
	}
	for i, t := range tasks {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO tasks(id, vehicle_id, title, category, status, due_date, due_mileage,
			   completed_date, is_recurring, recurrence_interval, is_forecast, archived,
			   importance, creation_date, position)
			 VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
			t.ID, vehicleID, t.Title, t.Category, string(t.Status),
			nullTime(t.DueDate), nullInt(t.DueMileage), nullTime(t.CompletedDate),
			boolInt(t.IsRecurring), nullStr(t.RecurrenceInterval), boolInt(t.IsForecast), boolInt(t.Archived),
			nullStr(string(t.Importance)), t.CreationDate.Format(time.RFC3339Nano), i,
		)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *sqliteStore) LoadTasks(ctx context.Context, vehicleID string) ([]maintenance.MaintenanceTask, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, category, status, due_date, due_mileage, completed_date,
		        is_recurring, recurrence_interval, is_forecast, archived, importance, creation_date
		 FROM tasks WHERE vehicle_id = ? ORDER BY position`, vehicleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []maintenance.MaintenanceTask
	for rows.Next() {
		var (
			t          maintenance.MaintenanceTask
			status     string
			due        sql.NullString
			mileage    sql.NullInt64
			completed  sql.NullString
			recurring  int
			recurrence sql.NullString
			forecast   int
			archived   int
			importance sql.NullString
			created    string
		)
		if err := rows.Scan(&t.ID, &t.Title, &t.Category, &status, &due, &mileage, &completed,
			&recurring, &recurrence, &forecast, &archived, &importance, &created); err != nil {
			return nil, err
		}
		t.Status = maintenance.Status(status)
		if due.Valid {
			if tt, err := time.Parse(time.RFC3339Nano, due.String); err == nil {
				t.DueDate = &tt
			}
		}
		if mileage.Valid {
			m := int(mileage.Int64)
			t.DueMileage = &m
		}
		if completed.Valid {
			if tt, err := time.Parse(time.RFC3339Nano, completed.String); err == nil {
				t.CompletedDate = &tt
			}
		}
		t.IsRecurring = recurring != 0
		t.RecurrenceInterval = recurrence.String
		t.IsForecast = forecast != 0
		t.Archived = archived != 0
		t.Importance = maintenance.Importance(importance.String)
		if tt, err := time.Parse(time.RFC3339Nano, created); err == nil {
			t.CreationDate = tt
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *sqliteStore) AppendServiceLog(ctx context.Context, e ServiceLogEntry) error {
	if e.At.IsZero() {
		e.At = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO service_log(at, vehicle_id, task_id, title, category, mileage, cost, notes)
		 VALUES(?,?,?,?,?,?,?,?)`,
		e.At.Format(time.RFC3339Nano), e.VehicleID, e.TaskID, e.Title, nullStr(e.Category),
		e.Mileage, e.Cost, nullStr(e.Notes),
	)
	return err
}

func nullStr(v string) any {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return v
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339Nano)
}

func nullInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
