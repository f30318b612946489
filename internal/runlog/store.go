package runlog

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema changes.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database schema version doesn't match the expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// ErrNotFound is returned by Get for unknown run ids.
var ErrNotFound = errors.New("run not found")

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Status values.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Run is one ledger entry.
type Run struct {
	ID         string           `json:"id"`
	Pipeline   string           `json:"pipeline"`
	Status     string           `json:"status"`
	Seed       uint64           `json:"seed"`
	OutputDir  string           `json:"output_dir"`
	ConfigPath string           `json:"config_path,omitempty"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
	Counts     map[string]int64 `json:"counts"`
	Warnings   []string         `json:"warnings,omitempty"`
	Error      string           `json:"error,omitempty"`
}

// Duration is the wall time of the run.
func (r Run) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// NewID returns a fresh run identifier.
func NewID() string {
	return uuid.NewString()
}

// Filter narrows List.
type Filter struct {
	Pipeline string
	// Limit caps the number of rows; <= 0 means no cap.
	Limit int
}

// Store manages the ledger database.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the ledger at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure history directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record inserts run. An empty ID is replaced with NewID; the stored id is
// returned.
func (s *Store) Record(ctx context.Context, run Run) (string, error) {
	if strings.TrimSpace(run.Pipeline) == "" {
		return "", errors.New("record run: pipeline is required")
	}
	if run.ID == "" {
		run.ID = NewID()
	}
	if run.Status == "" {
		run.Status = StatusCompleted
	}
	if run.Counts == nil {
		run.Counts = map[string]int64{}
	}
	countsJSON, err := json.Marshal(run.Counts)
	if err != nil {
		return "", fmt.Errorf("marshal counts: %w", err)
	}
	warnings := run.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	warningsJSON, err := json.Marshal(warnings)
	if err != nil {
		return "", fmt.Errorf("marshal warnings: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (
            id, pipeline, status, seed, output_dir, config_path,
            started_at, finished_at, counts_json, warnings_json, error_message
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.Pipeline,
		run.Status,
		int64(run.Seed),
		nullableString(run.OutputDir),
		nullableString(run.ConfigPath),
		run.StartedAt.UTC().Format(timeLayout),
		run.FinishedAt.UTC().Format(timeLayout),
		string(countsJSON),
		string(warningsJSON),
		nullableString(run.Error),
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return run.ID, nil
}

const runColumns = `id, pipeline, status, seed, output_dir, config_path,
            started_at, finished_at, counts_json, warnings_json, error_message`

// Get fetches one run by id.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+runColumns+" FROM runs WHERE id = ?", id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// List returns runs newest first.
func (s *Store) List(ctx context.Context, filter Filter) ([]Run, error) {
	query := "SELECT " + runColumns + " FROM runs"
	var args []any
	if p := strings.TrimSpace(filter.Pipeline); p != "" {
		query += " WHERE pipeline = ?"
		args = append(args, p)
	}
	query += " ORDER BY started_at DESC, rowid DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Run, error) {
	var (
		run                      Run
		seed                     int64
		outputDir, configPath    sql.NullString
		errorMessage             sql.NullString
		startedAt, finishedAt    string
		countsJSON, warningsJSON string
	)
	if err := row.Scan(
		&run.ID, &run.Pipeline, &run.Status, &seed, &outputDir, &configPath,
		&startedAt, &finishedAt, &countsJSON, &warningsJSON, &errorMessage,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan run: %w", err)
	}
	run.Seed = uint64(seed)
	run.OutputDir = outputDir.String
	run.ConfigPath = configPath.String
	run.Error = errorMessage.String

	var err error
	if run.StartedAt, err = time.Parse(timeLayout, startedAt); err != nil {
		return nil, fmt.Errorf("parse started_at: %w", err)
	}
	if run.FinishedAt, err = time.Parse(timeLayout, finishedAt); err != nil {
		return nil, fmt.Errorf("parse finished_at: %w", err)
	}
	if err := json.Unmarshal([]byte(countsJSON), &run.Counts); err != nil {
		return nil, fmt.Errorf("decode counts: %w", err)
	}
	if err := json.Unmarshal([]byte(warningsJSON), &run.Warnings); err != nil {
		return nil, fmt.Errorf("decode warnings: %w", err)
	}
	if len(run.Warnings) == 0 {
		run.Warnings = nil
	}
	return &run, nil
}

func nullableString(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}
