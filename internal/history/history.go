// Package history provides SQLite-backed storage of per-run download outcomes
package history

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/rishabh-bhattad/audioset-downloader-win/pkg/models"
)

// DB wraps the SQLite database connection
type DB struct {
	conn *sql.DB
}

// Record is one task outcome within a run. The filesystem stays the
// authority for skip decisions; records exist for reporting only.
type Record struct {
	ID           int64
	RunID        string
	YTID         string
	StartSeconds float64
	EndSeconds   float64
	PrimaryLabel string
	Outcome      string
	Attempts     int
	ErrorMessage string
	CreatedAt    time.Time
}

// New creates a new database connection and initializes the schema
func New(dbPath string) (*DB, error) {
	// Add connection parameters to help with concurrent access
	connString := dbPath
	if dbPath != ":memory:" {
		connString = dbPath + "?_busy_timeout=30000&_journal_mode=WAL&_synchronous=NORMAL"
	}

	conn, err := sql.Open("sqlite", connString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't handle concurrent writes well
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	db := &DB{conn: conn}

	if err := db.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// initSchema creates the necessary tables
func (db *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS download_records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		ytid TEXT NOT NULL,
		start_seconds REAL NOT NULL,
		end_seconds REAL NOT NULL,
		primary_label TEXT NOT NULL,
		outcome TEXT NOT NULL,
		attempts INTEGER NOT NULL DEFAULT 0,
		error_message TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_download_records_run_id ON download_records(run_id);
	CREATE INDEX IF NOT EXISTS idx_download_records_created_at ON download_records(created_at);
	`

	if _, err := db.conn.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// CreateRecord inserts a new outcome record
func (db *DB) CreateRecord(record *Record) error {
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	result, err := db.conn.Exec(`
		INSERT INTO download_records
			(run_id, ytid, start_seconds, end_seconds, primary_label, outcome, attempts, error_message, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.RunID,
		record.YTID,
		record.StartSeconds,
		record.EndSeconds,
		record.PrimaryLabel,
		record.Outcome,
		record.Attempts,
		record.ErrorMessage,
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get record ID: %w", err)
	}
	record.ID = id

	return nil
}

// GetRunRecords returns all records for a run, oldest first
func (db *DB) GetRunRecords(runID string) ([]*Record, error) {
	rows, err := db.conn.Query(`
		SELECT id, run_id, ytid, start_seconds, end_seconds, primary_label, outcome, attempts, error_message, created_at
		FROM download_records
		WHERE run_id = ?
		ORDER BY created_at ASC, id ASC`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query run records: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		var record Record
		if err := rows.Scan(
			&record.ID,
			&record.RunID,
			&record.YTID,
			&record.StartSeconds,
			&record.EndSeconds,
			&record.PrimaryLabel,
			&record.Outcome,
			&record.Attempts,
			&record.ErrorMessage,
			&record.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, &record)
	}

	return records, rows.Err()
}

// GetRunFailures returns the failed records for a run, oldest first
func (db *DB) GetRunFailures(runID string) ([]*Record, error) {
	records, err := db.GetRunRecords(runID)
	if err != nil {
		return nil, err
	}

	var failures []*Record
	for _, record := range records {
		if record.Outcome == string(models.OutcomeFailed) {
			failures = append(failures, record)
		}
	}
	return failures, nil
}

// RunSummary returns per-outcome counts for a run
func (db *DB) RunSummary(runID string) (map[string]int, error) {
	rows, err := db.conn.Query(`
		SELECT outcome, COUNT(*)
		FROM download_records
		WHERE run_id = ?
		GROUP BY outcome`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query run summary: %w", err)
	}
	defer rows.Close()

	summary := make(map[string]int)
	for rows.Next() {
		var outcome string
		var count int
		if err := rows.Scan(&outcome, &count); err != nil {
			return nil, fmt.Errorf("failed to scan summary row: %w", err)
		}
		summary[outcome] = count
	}

	return summary, rows.Err()
}

// DeleteOldRecords removes records older than the retention period
func (db *DB) DeleteOldRecords(retention time.Duration) error {
	cutoff := time.Now().Add(-retention)

	if _, err := db.conn.Exec(`DELETE FROM download_records WHERE created_at < ?`, cutoff); err != nil {
		return fmt.Errorf("failed to delete old records: %w", err)
	}

	return nil
}

// Recorder binds a run ID to the database so the dispatcher can persist
// outcomes without knowing about runs
type Recorder struct {
	db    *DB
	runID string
}

// NewRecorder creates a recorder writing records under runID
func NewRecorder(db *DB, runID string) *Recorder {
	return &Recorder{db: db, runID: runID}
}

// Record stores one task outcome
func (r *Recorder) Record(task models.DownloadTask, result models.Result) error {
	errorMessage := ""
	if result.Err != nil {
		errorMessage = result.Err.Error()
	}

	return r.db.CreateRecord(&Record{
		RunID:        r.runID,
		YTID:         task.YTID,
		StartSeconds: task.StartSeconds,
		EndSeconds:   task.EndSeconds,
		PrimaryLabel: task.PrimaryLabel(),
		Outcome:      string(result.Outcome),
		Attempts:     result.Attempts,
		ErrorMessage: errorMessage,
	})
}
