package report

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS sweep_runs (
	run_id       TEXT PRIMARY KEY,
	dataset      TEXT NOT NULL,
	model_type   TEXT NOT NULL,
	sweep        TEXT NOT NULL,
	started_at   TEXT NOT NULL,
	finished_at  TEXT,
	row_count    INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS sweep_results (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id       TEXT NOT NULL,
	params_json  TEXT,
	consistency  REAL,
	runtime      REAL,
	created_at   TEXT NOT NULL,
	FOREIGN KEY (run_id) REFERENCES sweep_runs(run_id)
);
`

// #endregion schema

// #region records

// RunRecord is one sweep invocation.
type RunRecord struct {
	RunID      string
	Dataset    string
	ModelType  string
	Sweep      string
	StartedAt  time.Time
	FinishedAt time.Time
	RowCount   int
}

// ResultRecord is one configuration's outcome within a run.
type ResultRecord struct {
	RunID       string
	ParamsJSON  string
	Consistency float64
	Runtime     float64
	CreatedAt   time.Time
}

// #endregion records

// #region store

// Store is the sqlite run registry: one row per sweep run plus a provenance
// row per result, alongside the CSV report files.
type Store struct {
	db *sql.DB
}

// NewStore opens the registry database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open registry: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// #endregion store

// #region begin-finish

// BeginRun registers a sweep invocation and returns its run ID.
func (s *Store) BeginRun(dataset, modelType, sweep string) (string, error) {
	id := uuid.New().String()
	_, err := s.db.Exec(
		`INSERT INTO sweep_runs (run_id, dataset, model_type, sweep, started_at)
		 VALUES (?, ?, ?, ?, ?)`,
		id, dataset, modelType, sweep, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("begin run: %w", err)
	}
	return id, nil
}

// FinishRun stamps the run's completion time and final row count.
func (s *Store) FinishRun(runID string, rowCount int) error {
	res, err := s.db.Exec(
		`UPDATE sweep_runs SET finished_at = ?, row_count = ? WHERE run_id = ?`,
		time.Now().UTC().Format(time.RFC3339Nano), rowCount, runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return fmt.Errorf("finish run: run %s not found", runID)
	}
	return nil
}

// #endregion begin-finish

// #region record-table

// RecordTable logs every row of a finished report table under the run. The
// consistency and runtime columns are lifted into dedicated fields; the
// remaining columns become the params JSON.
func (s *Store) RecordTable(runID string, t *Table) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("record table: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for i := 0; i < t.Len(); i++ {
		row := t.Row(i)
		consistency := takeFloat(row, "consistency", "consistency_mean")
		runtime := takeFloat(row, "runtime")
		params, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("record table: row %d: %w", i, err)
		}
		_, err = tx.Exec(
			`INSERT INTO sweep_results (run_id, params_json, consistency, runtime, created_at)
			 VALUES (?, ?, ?, ?, ?)`,
			runID, string(params), consistency, runtime, now,
		)
		if err != nil {
			return fmt.Errorf("record table: row %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// takeFloat removes the first present column from the row map and parses it.
func takeFloat(row map[string]string, cols ...string) float64 {
	for _, col := range cols {
		if v, ok := row[col]; ok {
			delete(row, col)
			var f float64
			fmt.Sscanf(v, "%g", &f)
			return f
		}
	}
	return 0
}

// #endregion record-table

// #region queries

// ListRuns returns the most recent runs.
func (s *Store) ListRuns(limit int) ([]RunRecord, error) {
	rows, err := s.db.Query(
		`SELECT run_id, dataset, model_type, sweep, started_at, finished_at, row_count
		 FROM sweep_runs ORDER BY started_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// GetRun returns one run and its recorded result rows.
func (s *Store) GetRun(runID string) (RunRecord, []ResultRecord, error) {
	row := s.db.QueryRow(
		`SELECT run_id, dataset, model_type, sweep, started_at, finished_at, row_count
		 FROM sweep_runs WHERE run_id = ?`, runID,
	)
	rec, err := scanRun(row)
	if err != nil {
		return RunRecord{}, nil, fmt.Errorf("get run %s: %w", runID, err)
	}

	rows, err := s.db.Query(
		`SELECT run_id, params_json, consistency, runtime, created_at
		 FROM sweep_results WHERE run_id = ? ORDER BY id ASC`, runID,
	)
	if err != nil {
		return RunRecord{}, nil, fmt.Errorf("get run results: %w", err)
	}
	defer rows.Close()

	var results []ResultRecord
	for rows.Next() {
		var r ResultRecord
		var params sql.NullString
		var createdStr string
		if err := rows.Scan(&r.RunID, &params, &r.Consistency, &r.Runtime, &createdStr); err != nil {
			return RunRecord{}, nil, fmt.Errorf("scan result: %w", err)
		}
		if params.Valid {
			r.ParamsJSON = params.String
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		results = append(results, r)
	}
	return rec, results, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row rowScanner) (RunRecord, error) {
	var rec RunRecord
	var started string
	var finished sql.NullString
	if err := row.Scan(&rec.RunID, &rec.Dataset, &rec.ModelType, &rec.Sweep, &started, &finished, &rec.RowCount); err != nil {
		return RunRecord{}, fmt.Errorf("scan run: %w", err)
	}
	rec.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
	if finished.Valid {
		rec.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished.String)
	}
	return rec, nil
}

// #endregion queries
