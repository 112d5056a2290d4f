package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"obelisk/pkg/pipeline"

	_ "modernc.org/sqlite"
)

const schemaVersion = 1

const schema = `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS executions (
	execution_id   TEXT PRIMARY KEY,
	deployment_id  TEXT NOT NULL,
	created_at     TEXT NOT NULL,
	top_label      TEXT,
	top_confidence REAL NOT NULL DEFAULT 0,
	review_flagged INTEGER NOT NULL DEFAULT 0,
	result_json    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_executions_created ON executions(created_at DESC);
`

// SqlStore implements Store with SQLite.
type SqlStore struct {
	db *sql.DB
}

// Open opens or creates a SQLite DB at path and runs migrations.
// Creates the parent directory (e.g. .obelisk) if it does not exist.
func Open(path string) (*SqlStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	s := &SqlStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SqlStore) migrate() error {
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	var v int
	err := s.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		_, err = s.db.Exec("INSERT INTO schema_version (version) VALUES (?)", schemaVersion)
		return err
	}
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if v != schemaVersion {
		return fmt.Errorf("unsupported schema version %d (want %d)", v, schemaVersion)
	}
	return nil
}

func (s *SqlStore) Save(deploymentID string, result pipeline.ExecutionResult) error {
	rec := newRecord(deploymentID, result)
	data, err := json.Marshal(rec.Result)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO executions
			(execution_id, deployment_id, created_at, top_label, top_confidence, review_flagged, result_json)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ExecutionID, rec.DeploymentID, rec.CreatedAt.Format(time.RFC3339),
		rec.TopLabel, rec.TopConfidence, boolInt(rec.ReviewFlagged), string(data),
	)
	if err != nil {
		return fmt.Errorf("save execution: %w", err)
	}
	return nil
}

func (s *SqlStore) Get(executionID string) (*Record, error) {
	row := s.db.QueryRow(
		`SELECT execution_id, deployment_id, created_at, top_label, top_confidence, review_flagged, result_json
		 FROM executions WHERE execution_id = ?`, executionID)

	var rec Record
	var createdAt, resultJSON string
	var topLabel sql.NullString
	var flagged int
	err := row.Scan(&rec.ExecutionID, &rec.DeploymentID, &createdAt, &topLabel, &rec.TopConfidence, &flagged, &resultJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get execution: %w", err)
	}
	rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	rec.TopLabel = topLabel.String
	rec.ReviewFlagged = flagged != 0
	if err := json.Unmarshal([]byte(resultJSON), &rec.Result); err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}
	return &rec, nil
}

func (s *SqlStore) List(limit int) ([]Summary, error) {
	q := `SELECT execution_id, deployment_id, created_at, top_label, top_confidence, review_flagged
	      FROM executions ORDER BY created_at DESC, execution_id`
	args := []any{}
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("list executions: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var sum Summary
		var createdAt string
		var topLabel sql.NullString
		var flagged int
		if err := rows.Scan(&sum.ExecutionID, &sum.DeploymentID, &createdAt, &topLabel, &sum.TopConfidence, &flagged); err != nil {
			return nil, err
		}
		sum.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		sum.TopLabel = topLabel.String
		sum.ReviewFlagged = flagged != 0
		out = append(out, sum)
	}
	return out, rows.Err()
}

func (s *SqlStore) Close() error { return s.db.Close() }

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
