// Package store persists scenario parameters in SQLite. Schedules are never
// stored; they are recomputed from the parameters.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/loan-analyzer/internal/scenario"
	"github.com/iwvelando/loan-analyzer/pkg/loans"
	"go.uber.org/zap"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when no scenario has the requested ID.
var ErrNotFound = errors.New("scenario not found")

// Record is a stored scenario.
type Record struct {
	ID        string            `json:"id"`
	Scenario  scenario.Scenario `json:"scenario"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// Store is a SQLite-backed scenario repository.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
	now    func() time.Time
}

// Open opens or creates the database file at dbPath and migrates it.
func Open(dbPath string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dbPath == "" {
		return nil, fmt.Errorf("store path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, err
	}

	logger.Debug("opened scenario store",
		zap.String("op", "store.Open"),
		zap.String("path", dbPath),
	)
	return &Store{db: db, logger: logger, now: time.Now}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Save validates sc and stores it. A scenario with the same name is replaced
// in place and keeps its ID.
func (s *Store) Save(ctx context.Context, sc scenario.Scenario) (Record, error) {
	if err := sc.Validate(); err != nil {
		return Record{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Record{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := s.now().UTC()
	record := Record{Scenario: sc, UpdatedAt: now}

	var createdAt string
	err = tx.QueryRowContext(ctx, `SELECT id, created_at FROM scenarios WHERE name = ?`, sc.Name).
		Scan(&record.ID, &createdAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		record.ID = uuid.NewString()
		record.CreatedAt = now
		_, err = tx.ExecContext(ctx, `
			INSERT INTO scenarios (id, name, start_date, include_in_graph, principal, down_payment,
				interest_rate, term_years, extra_payment, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			record.ID, sc.Name, sc.StartDate, sc.IncludeInGraph, sc.Loan.Principal, sc.Loan.DownPayment,
			sc.Loan.AnnualRate, sc.Loan.TermYears, sc.Loan.ExtraPayment,
			formatTime(now), formatTime(now))
		if err != nil {
			return Record{}, fmt.Errorf("insert scenario: %w", err)
		}
	case err != nil:
		return Record{}, fmt.Errorf("look up scenario %s: %w", sc.Name, err)
	default:
		if record.CreatedAt, err = parseTime(createdAt); err != nil {
			return Record{}, err
		}
		_, err = tx.ExecContext(ctx, `
			UPDATE scenarios SET start_date = ?, include_in_graph = ?, principal = ?, down_payment = ?,
				interest_rate = ?, term_years = ?, extra_payment = ?, updated_at = ?
			WHERE id = ?`,
			sc.StartDate, sc.IncludeInGraph, sc.Loan.Principal, sc.Loan.DownPayment,
			sc.Loan.AnnualRate, sc.Loan.TermYears, sc.Loan.ExtraPayment, formatTime(now), record.ID)
		if err != nil {
			return Record{}, fmt.Errorf("update scenario: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Record{}, fmt.Errorf("commit scenario: %w", err)
	}

	s.logger.Info("scenario saved",
		zap.String("op", "store.Save"),
		zap.String("id", record.ID),
		zap.String("name", sc.Name),
	)
	return record, nil
}

// List returns every stored scenario, oldest first.
func (s *Store) List(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+` ORDER BY created_at, name`)
	if err != nil {
		return nil, fmt.Errorf("list scenarios: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scenarios: %w", err)
	}
	return records, nil
}

// Get returns the scenario with the given ID.
func (s *Store) Get(ctx context.Context, id string) (Record, error) {
	record, err := scanRecord(s.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return record, err
}

// Delete removes the scenario with the given ID.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM scenarios WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete scenario: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete scenario: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	s.logger.Info("scenario deleted",
		zap.String("op", "store.Delete"),
		zap.String("id", id),
	)
	return nil
}

// Scenarios returns the stored scenarios without their metadata.
func (s *Store) Scenarios(ctx context.Context) ([]scenario.Scenario, error) {
	records, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	scenarios := make([]scenario.Scenario, len(records))
	for i, record := range records {
		scenarios[i] = record.Scenario
	}
	return scenarios, nil
}

const selectColumns = `
	SELECT id, name, start_date, include_in_graph, principal, down_payment,
		interest_rate, term_years, extra_payment, created_at, updated_at
	FROM scenarios`

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (Record, error) {
	var (
		record               Record
		loan                 loans.LoanParameters
		createdAt, updatedAt string
	)
	err := row.Scan(&record.ID, &record.Scenario.Name, &record.Scenario.StartDate, &record.Scenario.IncludeInGraph,
		&loan.Principal, &loan.DownPayment, &loan.AnnualRate, &loan.TermYears, &loan.ExtraPayment,
		&createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, err
		}
		return Record{}, fmt.Errorf("scan scenario: %w", err)
	}
	record.Scenario.Loan = loan

	if record.CreatedAt, err = parseTime(createdAt); err != nil {
		return Record{}, err
	}
	if record.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return Record{}, err
	}
	return record, nil
}

// timeLayout has a fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(value string) (time.Time, error) {
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored timestamp %q: %w", value, err)
	}
	return t, nil
}
