package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/grader/internal/model"
)

// FileName is the database file created inside the data directory.
const FileName = "grader.db"

// storedTimestampFormat has fixed-width fractional seconds so that stored
// timestamps sort correctly as text.
const storedTimestampFormat = "2006-01-02T15:04:05.000000000Z"

// ErrRunNotFound is returned when no run has the requested ID.
var ErrRunNotFound = errors.New("run not found")

// HistoryDB provides SQLite-based storage for grading runs.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a HistoryDB in dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (run with --save first)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file; mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Path returns the database file path.
func (hdb *HistoryDB) Path() string {
	return hdb.dbPath
}

// Close closes the database connection.
func (hdb *HistoryDB) Close() error {
	return hdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (hdb *HistoryDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		source TEXT NOT NULL,
		document_hash TEXT,
		checks_file TEXT,
		timestamp TEXT NOT NULL,
		result_json TEXT,
		total INTEGER DEFAULT 0,
		present INTEGER DEFAULT 0,
		missing INTEGER DEFAULT 0,
		error TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_runs_source ON runs(source);
	CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON runs(timestamp);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveRun stores a run and sets its ID.
func (hdb *HistoryDB) SaveRun(ctx context.Context, run *model.Run) error {
	var resultJSON sql.NullString
	if run.Result != nil {
		data, err := json.Marshal(run.Result)
		if err != nil {
			return fmt.Errorf("failed to serialize result: %w", err)
		}
		resultJSON = sql.NullString{String: string(data), Valid: true}
	}

	s := run.Summary()
	query := `
	INSERT INTO runs (source, document_hash, checks_file, timestamp, result_json, total, present, missing, error)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	res, err := hdb.db.ExecContext(ctx, query,
		run.Source,
		run.DocumentHash,
		run.ChecksFile,
		run.Timestamp.UTC().Format(storedTimestampFormat),
		resultJSON,
		s.Total,
		s.Present,
		s.Missing,
		run.Error,
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read run id: %w", err)
	}
	run.ID = id
	return nil
}

// RunMetadata contains summary information about a stored run.
// It is used for listing history without decoding results.
type RunMetadata struct {
	ID           int64
	Source       string
	DocumentHash string
	Timestamp    time.Time
	Summary      model.Summary
	Error        string
}

// ListSources returns every graded source in alphabetical order.
func (hdb *HistoryDB) ListSources(ctx context.Context) ([]string, error) {
	rows, err := hdb.db.QueryContext(ctx, `SELECT DISTINCT source FROM runs ORDER BY source`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}
	defer rows.Close()

	var sources []string
	for rows.Next() {
		var source string
		if err := rows.Scan(&source); err != nil {
			return nil, fmt.Errorf("failed to scan source: %w", err)
		}
		sources = append(sources, source)
	}
	return sources, rows.Err()
}

// GetHistory returns the metadata of every run of source, newest first.
func (hdb *HistoryDB) GetHistory(ctx context.Context, source string) ([]RunMetadata, error) {
	query := `
	SELECT id, source, document_hash, timestamp, total, present, missing, error
	FROM runs
	WHERE source = ?
	ORDER BY timestamp DESC, id DESC
	`

	rows, err := hdb.db.QueryContext(ctx, query, source)
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	defer rows.Close()

	var results []RunMetadata
	for rows.Next() {
		var meta RunMetadata
		var hash, errText sql.NullString
		var timestamp string

		if err := rows.Scan(&meta.ID, &meta.Source, &hash, &timestamp,
			&meta.Summary.Total, &meta.Summary.Present, &meta.Summary.Missing, &errText); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		meta.DocumentHash = hash.String
		meta.Error = errText.String
		meta.Timestamp = parseTimestamp(timestamp)
		results = append(results, meta)
	}
	return results, rows.Err()
}

// GetRunByID returns the full run with the given ID, or ErrRunNotFound.
func (hdb *HistoryDB) GetRunByID(ctx context.Context, id int64) (*model.Run, error) {
	query := `
	SELECT id, source, document_hash, checks_file, timestamp, result_json, error
	FROM runs
	WHERE id = ?
	`

	var run model.Run
	var hash, checksFile, resultJSON, errText sql.NullString
	var timestamp string

	err := hdb.db.QueryRowContext(ctx, query, id).Scan(
		&run.ID, &run.Source, &hash, &checksFile, &timestamp, &resultJSON, &errText,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	run.DocumentHash = hash.String
	run.ChecksFile = checksFile.String
	run.Error = errText.String
	run.Timestamp = parseTimestamp(timestamp)

	if resultJSON.Valid {
		var result model.CheckResult
		if err := json.Unmarshal([]byte(resultJSON.String), &result); err != nil {
			return nil, fmt.Errorf("failed to parse result: %w", err)
		}
		run.Result = &result
	}

	return &run, nil
}

// GetLatestRun returns the most recent run of source, or ErrRunNotFound.
func (hdb *HistoryDB) GetLatestRun(ctx context.Context, source string) (*model.Run, error) {
	var id int64
	err := hdb.db.QueryRowContext(ctx,
		`SELECT id FROM runs WHERE source = ? ORDER BY timestamp DESC, id DESC LIMIT 1`,
		source,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest run: %w", err)
	}
	return hdb.GetRunByID(ctx, id)
}

// timestampFormats contains the timestamp formats a stored run may use.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// parseTimestamp parses a stored timestamp, returning zero time when no
// format matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
