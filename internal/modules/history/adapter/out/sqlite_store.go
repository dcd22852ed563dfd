package out

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"veil/internal/modules/history/domain"
	historyout "veil/internal/modules/history/port/out"
	apperrors "veil/internal/platform/errors"

	_ "modernc.org/sqlite"
)

const timeLayout = "2006-01-02T15:04:05.000Z07:00"

type SQLiteRunStore struct {
	db *sql.DB
}

func NewSQLiteRunStore(dbPath string) (historyout.RunStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	store := &SQLiteRunStore{db: db}
	if err := store.ensureSchema(context.Background()); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *SQLiteRunStore) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS runs (
  id TEXT PRIMARY KEY,
  run_id TEXT,
  command TEXT NOT NULL,
  preset_id TEXT,
  status TEXT NOT NULL,
  error TEXT,
  findings_count INTEGER NOT NULL,
  summary_json TEXT NOT NULL,
  run_folder TEXT,
  output_path TEXT,
  language TEXT,
  started_at TEXT NOT NULL,
  finished_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at DESC);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create runs table: %w", err)
	}
	return nil
}

func (s *SQLiteRunStore) Append(ctx context.Context, record domain.RunRecord) error {
	summary := record.Summary
	if summary == nil {
		summary = map[string]int{}
	}
	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshal run summary: %w", err)
	}
	const stmt = `
INSERT INTO runs (id, run_id, command, preset_id, status, error, findings_count, summary_json, run_folder, output_path, language, started_at, finished_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
`
	_, err = s.db.ExecContext(ctx, stmt,
		record.ID,
		record.RunID,
		record.Command,
		record.PresetID,
		string(record.Status),
		record.Error,
		record.FindingsCount,
		string(summaryJSON),
		record.RunFolder,
		record.OutputPath,
		record.Language,
		record.StartedAt.Format(timeLayout),
		record.FinishedAt.Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("insert run record: %w", err)
	}
	return nil
}

func (s *SQLiteRunStore) List(ctx context.Context, limit int) ([]domain.RunRecord, error) {
	const query = `
SELECT id, run_id, command, preset_id, status, error, findings_count, summary_json, run_folder, output_path, language, started_at, finished_at
FROM runs ORDER BY started_at DESC LIMIT ?;
`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list run records: %w", err)
	}
	defer rows.Close()

	records := []domain.RunRecord{}
	for rows.Next() {
		record, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run records: %w", err)
	}
	return records, nil
}

func (s *SQLiteRunStore) Get(ctx context.Context, id string) (domain.RunRecord, error) {
	const query = `
SELECT id, run_id, command, preset_id, status, error, findings_count, summary_json, run_folder, output_path, language, started_at, finished_at
FROM runs WHERE id = ? OR run_id = ? LIMIT 1;
`
	row := s.db.QueryRowContext(ctx, query, id, id)
	record, err := scanRecord(row.Scan)
	if err == sql.ErrNoRows {
		return domain.RunRecord{}, fmt.Errorf("%w: run %s", apperrors.ErrNotFound, id)
	}
	if err != nil {
		return domain.RunRecord{}, err
	}
	return record, nil
}

func scanRecord(scan func(dest ...any) error) (domain.RunRecord, error) {
	var record domain.RunRecord
	var status, summaryJSON, startedAt, finishedAt string
	err := scan(
		&record.ID,
		&record.RunID,
		&record.Command,
		&record.PresetID,
		&status,
		&record.Error,
		&record.FindingsCount,
		&summaryJSON,
		&record.RunFolder,
		&record.OutputPath,
		&record.Language,
		&startedAt,
		&finishedAt,
	)
	if err == sql.ErrNoRows {
		return domain.RunRecord{}, err
	}
	if err != nil {
		return domain.RunRecord{}, fmt.Errorf("scan run record: %w", err)
	}
	record.Status = domain.RunStatus(status)
	if err := json.Unmarshal([]byte(summaryJSON), &record.Summary); err != nil {
		return domain.RunRecord{}, fmt.Errorf("decode run summary: %w", err)
	}
	record.StartedAt, err = time.Parse(timeLayout, startedAt)
	if err != nil {
		return domain.RunRecord{}, fmt.Errorf("parse started_at: %w", err)
	}
	record.FinishedAt, err = time.Parse(timeLayout, finishedAt)
	if err != nil {
		return domain.RunRecord{}, fmt.Errorf("parse finished_at: %w", err)
	}
	return record, nil
}
