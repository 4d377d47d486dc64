/*
Package sqlite provides a SQLite-backed implementation of the worktime
storage interfaces.

PURPOSE:
  Implements worktime.Store (ShiftStore, ReportStore, ContractStore)
  using SQLite. In production the same patterns apply to PostgreSQL -
  only minor SQL dialect differences.

KEY TABLES:
  contracts: One row per employment agreement
  shifts:    One row per shift, owned by a contract (cascade delete)
  reports:   One row per (contract, month), month normalized to day 1
             and uniquely constrained

INDEXES:
  idx_shifts_contract_reviewed_started: The aggregation hot path -
    a contract's reviewed shifts of one month.
  idx_reports_contract_month (unique): The ledger key; also serves the
    ascending ReportsFrom walk.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety of the connection. The engine's
  per-contract recompute serialization lives in the orchestrator; the
  store only has to keep individual statements atomic.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency
  and crash recovery. Foreign keys are enabled so deleting a contract
  cascades its shifts and reports.

USAGE:
  store, err := sqlite.New("./data/worktime.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()
  svc := worktime.NewService(store)

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - worktime/store.go: Interface definitions
  - worktime/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/timeclerk/worktime-engine/worktime"
)

const dayFormat = "2006-01-02"

// Store implements worktime.Store using SQLite.
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

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS contracts (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		debit_minutes INTEGER NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		initial_carryover INTEGER NOT NULL DEFAULT 0,
		last_used TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_contracts_user
		ON contracts(user_id);
	CREATE INDEX IF NOT EXISTS idx_contracts_interval
		ON contracts(start_date, end_date);

	CREATE TABLE IF NOT EXISTS shifts (
		id TEXT PRIMARY KEY,
		contract_id TEXT NOT NULL REFERENCES contracts(id) ON DELETE CASCADE,
		user_id TEXT NOT NULL,
		started TEXT NOT NULL,
		stopped TEXT NOT NULL,
		shift_type TEXT NOT NULL,
		note TEXT,
		tags_json TEXT,
		reviewed INTEGER NOT NULL DEFAULT 0,
		exported INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Aggregation hot path: a contract's reviewed shifts of one month.
	CREATE INDEX IF NOT EXISTS idx_shifts_contract_reviewed_started
		ON shifts(contract_id, reviewed, started);
	CREATE INDEX IF NOT EXISTS idx_shifts_contract_exported
		ON shifts(contract_id, exported, started);

	CREATE TABLE IF NOT EXISTS reports (
		id TEXT PRIMARY KEY,
		contract_id TEXT NOT NULL REFERENCES contracts(id) ON DELETE CASCADE,
		user_id TEXT NOT NULL,
		month TEXT NOT NULL,
		worktime_minutes INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Ledger key: one report per (contract, month).
	CREATE UNIQUE INDEX IF NOT EXISTS idx_reports_contract_month
		ON reports(contract_id, month);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// CONTRACT STORE
// =============================================================================

func (s *Store) CreateContract(ctx context.Context, c worktime.Contract) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO contracts
		(id, user_id, name, debit_minutes, start_date, end_date,
		 initial_carryover, last_used, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.UserID, c.Name, int64(c.DebitMinutes),
		c.StartDate.UTC().Format(dayFormat), c.EndDate.UTC().Format(dayFormat),
		int64(c.InitialCarryover),
		c.LastUsed.UTC().Format(time.RFC3339),
		c.CreatedAt.UTC().Format(time.RFC3339),
		c.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert contract: %w", err)
	}
	return nil
}

func (s *Store) UpdateContract(ctx context.Context, c worktime.Contract) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE contracts
		SET name = ?, debit_minutes = ?, start_date = ?, end_date = ?,
		    initial_carryover = ?, updated_at = ?
		WHERE id = ?`,
		c.Name, int64(c.DebitMinutes),
		c.StartDate.UTC().Format(dayFormat), c.EndDate.UTC().Format(dayFormat),
		int64(c.InitialCarryover),
		c.UpdatedAt.UTC().Format(time.RFC3339),
		c.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update contract: %w", err)
	}
	return requireRow(res, worktime.ErrContractNotFound)
}

func (s *Store) DeleteContract(ctx context.Context, id worktime.ContractID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Shifts and reports cascade via foreign keys.
	res, err := s.db.ExecContext(ctx, `DELETE FROM contracts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete contract: %w", err)
	}
	return requireRow(res, worktime.ErrContractNotFound)
}

func (s *Store) GetContract(ctx context.Context, id worktime.ContractID) (worktime.Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, debit_minutes, start_date, end_date,
		       initial_carryover, last_used, created_at, updated_at
		FROM contracts WHERE id = ?`, id)
	return scanContract(row)
}

func (s *Store) ActiveContracts(ctx context.Context, today time.Time) ([]worktime.Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	day := today.UTC().Format(dayFormat)
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, name, debit_minutes, start_date, end_date,
		       initial_carryover, last_used, created_at, updated_at
		FROM contracts
		WHERE start_date <= ? AND end_date >= ?
		ORDER BY created_at ASC`, day, day)
	if err != nil {
		return nil, fmt.Errorf("failed to query contracts: %w", err)
	}
	defer rows.Close()
	return collectContracts(rows)
}

func (s *Store) ListContracts(ctx context.Context) ([]worktime.Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, name, debit_minutes, start_date, end_date,
		       initial_carryover, last_used, created_at, updated_at
		FROM contracts ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query contracts: %w", err)
	}
	defer rows.Close()
	return collectContracts(rows)
}

func (s *Store) TouchContract(ctx context.Context, id worktime.ContractID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE contracts SET last_used = ? WHERE id = ?`,
		at.UTC().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("failed to touch contract: %w", err)
	}
	return requireRow(res, worktime.ErrContractNotFound)
}

// =============================================================================
// SHIFT STORE
// =============================================================================

func (s *Store) CreateShift(ctx context.Context, sh worktime.Shift) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tagsJSON, _ := json.Marshal(sh.Tags)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO shifts
		(id, contract_id, user_id, started, stopped, shift_type, note,
		 tags_json, reviewed, exported, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sh.ID, sh.ContractID, sh.UserID,
		sh.Started.UTC().Format(time.RFC3339), sh.Stopped.UTC().Format(time.RFC3339),
		sh.Type, sh.Note, string(tagsJSON),
		boolInt(sh.Reviewed), boolInt(sh.Exported),
		sh.CreatedAt.UTC().Format(time.RFC3339), sh.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert shift: %w", err)
	}
	return nil
}

func (s *Store) UpdateShift(ctx context.Context, sh worktime.Shift) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tagsJSON, _ := json.Marshal(sh.Tags)
	res, err := s.db.ExecContext(ctx, `
		UPDATE shifts
		SET started = ?, stopped = ?, shift_type = ?, note = ?, tags_json = ?,
		    reviewed = ?, exported = ?, updated_at = ?
		WHERE id = ?`,
		sh.Started.UTC().Format(time.RFC3339), sh.Stopped.UTC().Format(time.RFC3339),
		sh.Type, sh.Note, string(tagsJSON),
		boolInt(sh.Reviewed), boolInt(sh.Exported),
		sh.UpdatedAt.UTC().Format(time.RFC3339),
		sh.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update shift: %w", err)
	}
	return requireRow(res, worktime.ErrShiftNotFound)
}

func (s *Store) DeleteShift(ctx context.Context, id worktime.ShiftID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM shifts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete shift: %w", err)
	}
	return requireRow(res, worktime.ErrShiftNotFound)
}

func (s *Store) GetShift(ctx context.Context, id worktime.ShiftID) (worktime.Shift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, contract_id, user_id, started, stopped, shift_type, note,
		       tags_json, reviewed, exported, created_at, updated_at
		FROM shifts WHERE id = ?`, id)
	return scanShift(row)
}

func (s *Store) ReviewedShiftsForMonth(ctx context.Context, contractID worktime.ContractID, month worktime.Month) ([]worktime.Shift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, contract_id, user_id, started, stopped, shift_type, note,
		       tags_json, reviewed, exported, created_at, updated_at
		FROM shifts
		WHERE contract_id = ? AND reviewed = 1 AND started >= ? AND started < ?
		ORDER BY started ASC`,
		contractID,
		month.Start().Format(time.RFC3339),
		month.Next().Start().Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query shifts: %w", err)
	}
	defer rows.Close()
	return collectShifts(rows)
}

func (s *Store) ShiftsForContract(ctx context.Context, contractID worktime.ContractID) ([]worktime.Shift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, contract_id, user_id, started, stopped, shift_type, note,
		       tags_json, reviewed, exported, created_at, updated_at
		FROM shifts
		WHERE contract_id = ?
		ORDER BY started ASC`, contractID)
	if err != nil {
		return nil, fmt.Errorf("failed to query shifts: %w", err)
	}
	defer rows.Close()
	return collectShifts(rows)
}

func (s *Store) MonthExported(ctx context.Context, contractID worktime.ContractID, month worktime.Month) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM shifts
		WHERE contract_id = ? AND exported = 1 AND started >= ? AND started < ?`,
		contractID,
		month.Start().Format(time.RFC3339),
		month.Next().Start().Format(time.RFC3339),
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to query exported shifts: %w", err)
	}
	return count > 0, nil
}

func (s *Store) MarkMonthExported(ctx context.Context, contractID worktime.ContractID, month worktime.Month) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		UPDATE shifts SET exported = 1
		WHERE contract_id = ? AND started >= ? AND started < ?`,
		contractID,
		month.Start().Format(time.RFC3339),
		month.Next().Start().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to mark month exported: %w", err)
	}
	return nil
}

// =============================================================================
// REPORT STORE
// =============================================================================

func (s *Store) GetReport(ctx context.Context, contractID worktime.ContractID, month worktime.Month) (worktime.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, contract_id, user_id, month, worktime_minutes, created_at, updated_at
		FROM reports WHERE contract_id = ? AND month = ?`,
		contractID, month.Start().Format(dayFormat))

	r, err := scanReport(row)
	if err == sql.ErrNoRows {
		return r, worktime.ErrReportNotFound
	}
	return r, err
}

func (s *Store) UpsertReport(ctx context.Context, r worktime.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reports
		(id, contract_id, user_id, month, worktime_minutes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(contract_id, month) DO UPDATE SET
			worktime_minutes = excluded.worktime_minutes,
			updated_at = excluded.updated_at`,
		r.ID, r.ContractID, r.UserID,
		r.Month.Start().Format(dayFormat),
		int64(r.Worktime),
		r.CreatedAt.UTC().Format(time.RFC3339),
		r.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert report: %w", err)
	}
	return nil
}

func (s *Store) ReportsFrom(ctx context.Context, contractID worktime.ContractID, from worktime.Month) ([]worktime.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, contract_id, user_id, month, worktime_minutes, created_at, updated_at
		FROM reports
		WHERE contract_id = ? AND month >= ?
		ORDER BY month ASC`,
		contractID, from.Start().Format(dayFormat))
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	var reports []worktime.Report
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

// =============================================================================
// SCAN HELPERS
// =============================================================================

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContract(row rowScanner) (worktime.Contract, error) {
	var (
		c                            worktime.Contract
		debit, carryover             int64
		startDate, endDate           string
		lastUsed, createdAt, updated string
	)
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &debit, &startDate, &endDate,
		&carryover, &lastUsed, &createdAt, &updated)
	if err == sql.ErrNoRows {
		return c, worktime.ErrContractNotFound
	}
	if err != nil {
		return c, fmt.Errorf("failed to scan contract: %w", err)
	}

	c.DebitMinutes = worktime.Minutes(debit)
	c.InitialCarryover = worktime.Minutes(carryover)
	c.StartDate, _ = time.Parse(dayFormat, startDate)
	c.EndDate, _ = time.Parse(dayFormat, endDate)
	c.LastUsed, _ = time.Parse(time.RFC3339, lastUsed)
	c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	c.UpdatedAt, _ = time.Parse(time.RFC3339, updated)
	return c, nil
}

func collectContracts(rows *sql.Rows) ([]worktime.Contract, error) {
	var contracts []worktime.Contract
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, err
		}
		contracts = append(contracts, c)
	}
	return contracts, rows.Err()
}

func scanShift(row rowScanner) (worktime.Shift, error) {
	var (
		sh                   worktime.Shift
		started, stopped     string
		note, tagsJSON       sql.NullString
		reviewed, exported   int
		createdAt, updatedAt string
	)
	err := row.Scan(&sh.ID, &sh.ContractID, &sh.UserID, &started, &stopped,
		&sh.Type, &note, &tagsJSON, &reviewed, &exported, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return sh, worktime.ErrShiftNotFound
	}
	if err != nil {
		return sh, fmt.Errorf("failed to scan shift: %w", err)
	}

	sh.Started, _ = time.Parse(time.RFC3339, started)
	sh.Stopped, _ = time.Parse(time.RFC3339, stopped)
	sh.Note = note.String
	if tagsJSON.Valid && tagsJSON.String != "" {
		_ = json.Unmarshal([]byte(tagsJSON.String), &sh.Tags)
	}
	sh.Reviewed = reviewed == 1
	sh.Exported = exported == 1
	sh.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	sh.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return sh, nil
}

func collectShifts(rows *sql.Rows) ([]worktime.Shift, error) {
	var shifts []worktime.Shift
	for rows.Next() {
		sh, err := scanShift(rows)
		if err != nil {
			return nil, err
		}
		shifts = append(shifts, sh)
	}
	return shifts, rows.Err()
}

func scanReport(row rowScanner) (worktime.Report, error) {
	var (
		r                    worktime.Report
		month                string
		minutes              int64
		createdAt, updatedAt string
	)
	err := row.Scan(&r.ID, &r.ContractID, &r.UserID, &month, &minutes, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return r, sql.ErrNoRows
	}
	if err != nil {
		return r, fmt.Errorf("failed to scan report: %w", err)
	}

	day, _ := time.Parse(dayFormat, month)
	r.Month = worktime.MonthOf(day)
	r.Worktime = worktime.Minutes(minutes)
	r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	r.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return r, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func requireRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
