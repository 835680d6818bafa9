/*
Package sqlite provides a SQLite-backed implementation of the engine's
persistence interfaces.

PURPOSE:
  Implements engine.RecordStore, engine.PolicyStore and
  engine.EmployeeStore using SQLite. In production, the same patterns
  apply to PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  attendance_records:  Versioned attendance records (submit/cancel lineage)
  policy_settings:     The settings singleton (one row)
  employees:           Entity records
  batch_runs:          Audit trail of nightly and manual batch runs

VERSIONING ENFORCEMENT:
  Records are never updated in place except through SetFields (display
  annotation fields only). Status and penalty changes happen via
  cancel + copy + insert + submit. A partial unique index enforces that
  at most one Submitted version exists per (employee_id, date):

    CREATE UNIQUE INDEX idx_records_active
        ON attendance_records(employee_id, date) WHERE doc_status = 1;

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  multiple readers don't block; single writer at a time.

USAGE:
  store, err := sqlite.New("./data/attendance.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - engine/record.go: Interface definitions
  - engine/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/attendance-engine/engine"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection keeps ":memory:" databases coherent across the
	// pool; the store's mutex serializes writers anyway.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema and seeds the policy singleton.
func (s *Store) migrate() error {
	schema := `
	-- Versioned attendance records
	CREATE TABLE IF NOT EXISTS attendance_records (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		date TEXT NOT NULL,
		status TEXT NOT NULL,
		late_entry INTEGER NOT NULL DEFAULT 0,
		working_hours TEXT NOT NULL DEFAULT '0',
		leave_type TEXT NOT NULL DEFAULT '',
		half_day_type TEXT NOT NULL DEFAULT '',
		late_strike_count INTEGER NOT NULL DEFAULT 0,
		late_incident_remark TEXT NOT NULL DEFAULT '',
		strike_processed INTEGER NOT NULL DEFAULT 0,
		penalty_applied INTEGER NOT NULL DEFAULT 0,
		original_status TEXT NOT NULL DEFAULT '',
		cumulative_reset_count INTEGER NOT NULL DEFAULT 0,
		doc_status INTEGER NOT NULL DEFAULT 0,
		amended_from TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_records_employee_date
		ON attendance_records(employee_id, date);

	-- CRITICAL: at most one active version per (employee, date)
	CREATE UNIQUE INDEX IF NOT EXISTS idx_records_active
		ON attendance_records(employee_id, date) WHERE doc_status = 1;

	-- Hot path for the inline hook's running late count
	CREATE INDEX IF NOT EXISTS idx_records_late
		ON attendance_records(employee_id, late_entry, date)
		WHERE doc_status != 2;

	-- Settings singleton (exactly one row, id = 1)
	CREATE TABLE IF NOT EXISTS policy_settings (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		enabled INTEGER NOT NULL DEFAULT 0,
		counting_mode TEXT NOT NULL DEFAULT '',
		strike_threshold INTEGER NOT NULL DEFAULT 0,
		penalty_action TEXT NOT NULL DEFAULT '',
		apply_from_date TEXT,
		updated_at TEXT NOT NULL
	);

	-- Employees (entities)
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		active INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL
	);

	-- Batch run audit trail for the daily scheduler
	CREATE TABLE IF NOT EXISTS batch_runs (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		window_start TEXT,
		window_end TEXT,
		employees_processed INTEGER NOT NULL DEFAULT 0,
		employees_failed INTEGER NOT NULL DEFAULT 0,
		strikes_annotated INTEGER NOT NULL DEFAULT 0,
		penalties_applied INTEGER NOT NULL DEFAULT 0,
		penalties_skipped INTEGER NOT NULL DEFAULT 0,
		error TEXT NOT NULL DEFAULT '',
		started_at TEXT NOT NULL,
		completed_at TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_batch_runs_started
		ON batch_runs(started_at DESC);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	// First install seeds the singleton with defaults: disabled,
	// threshold 3, cumulative, half-day.
	defaults := engine.DefaultPolicySettings()
	_, err := s.db.Exec(`
		INSERT INTO policy_settings (id, enabled, counting_mode, strike_threshold, penalty_action, updated_at)
		VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING`,
		boolToInt(defaults.Enabled), string(defaults.CountingMode),
		defaults.StrikeThreshold, string(defaults.PenaltyAction),
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// =============================================================================
// RECORD STORE
// =============================================================================

const recordColumns = `id, employee_id, date, status, late_entry, working_hours,
	leave_type, half_day_type, late_strike_count, late_incident_remark,
	strike_processed, penalty_applied, original_status, cumulative_reset_count,
	doc_status, amended_from, created_at`

// Get retrieves a record by ID regardless of document status.
func (s *Store) Get(ctx context.Context, id engine.RecordID) (*engine.AttendanceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM attendance_records WHERE id = ?`, string(id))
	return scanRecord(row)
}

// Current retrieves the single submitted record for an employee and date.
func (s *Store) Current(ctx context.Context, employee engine.EmployeeID, date engine.Date) (*engine.AttendanceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM attendance_records
		 WHERE employee_id = ? AND date = ? AND doc_status = 1`,
		string(employee), date.String())
	return scanRecord(row)
}

// QueryRange returns submitted records in [from, to], ascending by date.
func (s *Store) QueryRange(ctx context.Context, employee engine.EmployeeID, from, to engine.Date) ([]*engine.AttendanceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+recordColumns+` FROM attendance_records
		 WHERE employee_id = ? AND date >= ? AND date <= ? AND doc_status = 1
		 ORDER BY date ASC`,
		string(employee), from.String(), to.String())
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var result []*engine.AttendanceRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, rec)
	}
	return result, rows.Err()
}

// CountLate counts non-cancelled late records in [from, to], excluding
// one record ID (the record being saved, in the inline hook's case).
func (s *Store) CountLate(ctx context.Context, employee engine.EmployeeID, from, to engine.Date, exclude engine.RecordID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM attendance_records
		 WHERE employee_id = ? AND date >= ? AND date <= ?
		   AND late_entry = 1 AND doc_status != 2 AND id != ?`,
		string(employee), from.String(), to.String(), string(exclude)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count late entries: %w", err)
	}
	return count, nil
}

// Cancel moves a submitted record to Cancelled.
func (s *Store) Cancel(ctx context.Context, id engine.RecordID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE attendance_records SET doc_status = 2 WHERE id = ? AND doc_status = 1`,
		string(id))
	if err != nil {
		return fmt.Errorf("cancel record: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		// Distinguish missing from already-cancelled or never-submitted.
		var docStatus int
		err := s.db.QueryRowContext(ctx,
			`SELECT doc_status FROM attendance_records WHERE id = ?`, string(id)).Scan(&docStatus)
		if err == sql.ErrNoRows {
			return engine.ErrRecordNotFound
		}
		if err != nil {
			return err
		}
		return engine.ErrRecordCancelled
	}
	return nil
}

// CopyAsNew builds an unsaved draft copy of an existing record with a
// fresh ID and an amendment link back to the source. The caller mutates
// the copy and then calls Insert and Submit.
func (s *Store) CopyAsNew(ctx context.Context, id engine.RecordID) (*engine.AttendanceRecord, error) {
	src, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	cp := *src
	cp.ID = engine.RecordID(uuid.NewString())
	cp.AmendedFrom = src.ID
	cp.DocStatus = engine.DocDraft
	cp.CreatedAt = time.Now().UTC()
	return &cp, nil
}

// Insert persists a new record.
func (s *Store) Insert(ctx context.Context, rec *engine.AttendanceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ID == "" {
		rec.ID = engine.RecordID(uuid.NewString())
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO attendance_records (`+recordColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(rec.ID), string(rec.EmployeeID), rec.Date.String(), string(rec.Status),
		boolToInt(rec.LateEntry), rec.WorkingHours.String(),
		rec.LeaveType, string(rec.HalfDayType),
		rec.LateStrikeCount, rec.LateIncidentRemark,
		boolToInt(rec.StrikeProcessed), boolToInt(rec.PenaltyApplied),
		string(rec.OriginalStatus), rec.CumulativeResetCount,
		int(rec.DocStatus), string(rec.AmendedFrom),
		rec.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

// Submit moves a draft record to Submitted. The idx_records_active
// unique index rejects a second active version for the same day.
func (s *Store) Submit(ctx context.Context, id engine.RecordID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var docStatus int
	err := s.db.QueryRowContext(ctx,
		`SELECT doc_status FROM attendance_records WHERE id = ?`, string(id)).Scan(&docStatus)
	if err == sql.ErrNoRows {
		return engine.ErrRecordNotFound
	}
	if err != nil {
		return err
	}
	if engine.DocStatus(docStatus) == engine.DocCancelled {
		return engine.ErrRecordCancelled
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE attendance_records SET doc_status = 1 WHERE id = ?`, string(id))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("submit record %s: %w", id, engine.ErrDuplicateActive)
		}
		return fmt.Errorf("submit record: %w", err)
	}
	return nil
}

// SetFields updates display annotation fields in place. Only the
// non-nil fields are written. Penalty and status fields are
// deliberately not reachable through this path.
func (s *Store) SetFields(ctx context.Context, id engine.RecordID, fields engine.FieldValues) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	set := ""
	var args []any
	appendSet := func(col string, v any) {
		if set != "" {
			set += ", "
		}
		set += col + " = ?"
		args = append(args, v)
	}
	if fields.LateStrikeCount != nil {
		appendSet("late_strike_count", *fields.LateStrikeCount)
	}
	if fields.LateIncidentRemark != nil {
		appendSet("late_incident_remark", *fields.LateIncidentRemark)
	}
	if fields.StrikeProcessed != nil {
		appendSet("strike_processed", boolToInt(*fields.StrikeProcessed))
	}
	if fields.CumulativeResetCount != nil {
		appendSet("cumulative_reset_count", *fields.CumulativeResetCount)
	}
	if set == "" {
		return nil
	}

	args = append(args, string(id))
	res, err := s.db.ExecContext(ctx,
		`UPDATE attendance_records SET `+set+` WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("set fields: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return engine.ErrRecordNotFound
	}
	return nil
}

// =============================================================================
// POLICY STORE
// =============================================================================

// GetPolicy loads the settings singleton.
func (s *Store) GetPolicy(ctx context.Context) (engine.PolicySettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		settings  engine.PolicySettings
		enabled   int
		mode      string
		action    string
		applyFrom sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT enabled, counting_mode, strike_threshold, penalty_action, apply_from_date
		 FROM policy_settings WHERE id = 1`).
		Scan(&enabled, &mode, &settings.StrikeThreshold, &action, &applyFrom)
	if err == sql.ErrNoRows {
		return engine.PolicySettings{}, engine.ErrPolicyNotConfigured
	}
	if err != nil {
		return engine.PolicySettings{}, fmt.Errorf("load policy: %w", err)
	}

	settings.Enabled = enabled != 0
	settings.CountingMode = engine.CountingMode(mode)
	settings.PenaltyAction = engine.PenaltyAction(action)
	if applyFrom.Valid && applyFrom.String != "" {
		d, err := engine.ParseDate(applyFrom.String)
		if err != nil {
			return engine.PolicySettings{}, fmt.Errorf("%w: bad apply_from_date: %v", engine.ErrPolicyNotConfigured, err)
		}
		settings.ApplyFromDate = &d
	}
	return settings, nil
}

// SavePolicy replaces the settings singleton.
func (s *Store) SavePolicy(ctx context.Context, settings engine.PolicySettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var applyFrom any
	if settings.ApplyFromDate != nil {
		applyFrom = settings.ApplyFromDate.String()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO policy_settings (id, enabled, counting_mode, strike_threshold, penalty_action, apply_from_date, updated_at)
		 VALUES (1, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			enabled = excluded.enabled,
			counting_mode = excluded.counting_mode,
			strike_threshold = excluded.strike_threshold,
			penalty_action = excluded.penalty_action,
			apply_from_date = excluded.apply_from_date,
			updated_at = excluded.updated_at`,
		boolToInt(settings.Enabled), string(settings.CountingMode),
		settings.StrikeThreshold, string(settings.PenaltyAction),
		applyFrom, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("save policy: %w", err)
	}
	return nil
}

// =============================================================================
// EMPLOYEE STORE
// =============================================================================

func (s *Store) GetEmployee(ctx context.Context, id engine.EmployeeID) (*engine.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		emp    engine.Employee
		empID  string
		active int
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, active FROM employees WHERE id = ?`, string(id)).
		Scan(&empID, &emp.Name, &emp.Email, &active)
	if err == sql.ErrNoRows {
		return nil, engine.ErrEmployeeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load employee: %w", err)
	}
	emp.ID = engine.EmployeeID(empID)
	emp.Active = active != 0
	return &emp, nil
}

func (s *Store) ListActiveEmployees(ctx context.Context) ([]engine.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, email, active FROM employees WHERE active = 1 ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	defer rows.Close()

	var result []engine.Employee
	for rows.Next() {
		var (
			emp    engine.Employee
			empID  string
			active int
		)
		if err := rows.Scan(&empID, &emp.Name, &emp.Email, &active); err != nil {
			return nil, err
		}
		emp.ID = engine.EmployeeID(empID)
		emp.Active = active != 0
		result = append(result, emp)
	}
	return result, rows.Err()
}

// SaveEmployee adds or replaces an employee.
func (s *Store) SaveEmployee(ctx context.Context, emp engine.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO employees (id, name, email, active, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			name = excluded.name, email = excluded.email, active = excluded.active`,
		string(emp.ID), emp.Name, emp.Email, boolToInt(emp.Active),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("save employee: %w", err)
	}
	return nil
}

// =============================================================================
// BATCH RUNS
// =============================================================================

// BatchRun records one nightly or manual batch pass.
type BatchRun struct {
	ID                 string
	Kind               string // "scheduled", "manual" or "reprocess"
	WindowStart        string
	WindowEnd          string
	EmployeesProcessed int
	EmployeesFailed    int
	StrikesAnnotated   int
	PenaltiesApplied   int
	PenaltiesSkipped   int
	Error              string
	StartedAt          time.Time
	CompletedAt        *time.Time
}

// SaveBatchRun inserts or updates a batch run audit row.
func (s *Store) SaveBatchRun(ctx context.Context, run BatchRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var completed any
	if run.CompletedAt != nil {
		completed = run.CompletedAt.Format(time.RFC3339)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO batch_runs (id, kind, window_start, window_end,
			employees_processed, employees_failed, strikes_annotated,
			penalties_applied, penalties_skipped, error, started_at, completed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			employees_processed = excluded.employees_processed,
			employees_failed = excluded.employees_failed,
			strikes_annotated = excluded.strikes_annotated,
			penalties_applied = excluded.penalties_applied,
			penalties_skipped = excluded.penalties_skipped,
			error = excluded.error,
			completed_at = excluded.completed_at`,
		run.ID, run.Kind, run.WindowStart, run.WindowEnd,
		run.EmployeesProcessed, run.EmployeesFailed, run.StrikesAnnotated,
		run.PenaltiesApplied, run.PenaltiesSkipped, run.Error,
		run.StartedAt.Format(time.RFC3339), completed,
	)
	if err != nil {
		return fmt.Errorf("save batch run: %w", err)
	}
	return nil
}

// ListBatchRuns returns the most recent runs, newest first.
func (s *Store) ListBatchRuns(ctx context.Context, limit int) ([]BatchRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, window_start, window_end, employees_processed,
			employees_failed, strikes_annotated, penalties_applied,
			penalties_skipped, error, started_at, completed_at
		 FROM batch_runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list batch runs: %w", err)
	}
	defer rows.Close()

	var result []BatchRun
	for rows.Next() {
		var (
			run       BatchRun
			started   string
			completed sql.NullString
		)
		if err := rows.Scan(&run.ID, &run.Kind, &run.WindowStart, &run.WindowEnd,
			&run.EmployeesProcessed, &run.EmployeesFailed, &run.StrikesAnnotated,
			&run.PenaltiesApplied, &run.PenaltiesSkipped, &run.Error,
			&started, &completed); err != nil {
			return nil, err
		}
		run.StartedAt, _ = time.Parse(time.RFC3339, started)
		if completed.Valid {
			t, _ := time.Parse(time.RFC3339, completed.String)
			run.CompletedAt = &t
		}
		result = append(result, run)
	}
	return result, rows.Err()
}

// =============================================================================
// SCAN HELPERS
// =============================================================================

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*engine.AttendanceRecord, error) {
	var (
		rec          engine.AttendanceRecord
		id, empID    string
		date, status string
		lateEntry    int
		workingHours string
		halfDayType  string
		strikeProc   int
		penaltyApp   int
		origStatus   string
		docStatus    int
		amendedFrom  string
		createdAt    string
	)
	err := row.Scan(&id, &empID, &date, &status, &lateEntry, &workingHours,
		&rec.LeaveType, &halfDayType, &rec.LateStrikeCount, &rec.LateIncidentRemark,
		&strikeProc, &penaltyApp, &origStatus, &rec.CumulativeResetCount,
		&docStatus, &amendedFrom, &createdAt)
	if err == sql.ErrNoRows {
		return nil, engine.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan record: %w", err)
	}

	rec.ID = engine.RecordID(id)
	rec.EmployeeID = engine.EmployeeID(empID)
	rec.Date, err = engine.ParseDate(date)
	if err != nil {
		return nil, err
	}
	rec.Status = engine.Status(status)
	rec.LateEntry = lateEntry != 0
	rec.WorkingHours, err = decimal.NewFromString(workingHours)
	if err != nil {
		rec.WorkingHours = decimal.Zero
	}
	rec.HalfDayType = engine.HalfDayType(halfDayType)
	rec.StrikeProcessed = strikeProc != 0
	rec.PenaltyApplied = penaltyApp != 0
	rec.OriginalStatus = engine.Status(origStatus)
	rec.DocStatus = engine.DocStatus(docStatus)
	rec.AmendedFrom = engine.RecordID(amendedFrom)
	rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &rec, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
