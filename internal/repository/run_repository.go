package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/godilite/evalreport/internal/repository/models"
)

// Schema creates the run history table. It is safe to execute repeatedly.
const Schema = `
	CREATE TABLE IF NOT EXISTS report_runs (
		id               TEXT PRIMARY KEY,
		created_at       TEXT NOT NULL,
		year             INTEGER NOT NULL DEFAULT 0,
		module           INTEGER NOT NULL DEFAULT 0,
		instructor_count INTEGER NOT NULL DEFAULT 0,
		level_counts     TEXT NOT NULL DEFAULT '{}',
		warning_count    INTEGER NOT NULL DEFAULT 0,
		instructor_error TEXT NOT NULL DEFAULT '',
		module_error     TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_report_runs_created_at ON report_runs (created_at);
`

// createdAtLayout is fixed width so that text ordering matches time ordering.
const createdAtLayout = "2006-01-02T15:04:05.000000000Z"

type RunRepository struct {
	db *sql.DB
}

func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// SaveRun stores one run summary.
func (s *RunRepository) SaveRun(ctx context.Context, run models.RunSummary) error {
	const query = `
		INSERT INTO report_runs (
			id, created_at, year, module, instructor_count,
			level_counts, warning_count, instructor_error, module_error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	counts := run.LevelCounts
	if counts == nil {
		counts = map[string]int{}
	}
	levelCounts, err := json.Marshal(counts)
	if err != nil {
		return fmt.Errorf("encode level counts: %w", err)
	}

	_, err = s.db.ExecContext(ctx, query,
		run.ID,
		run.CreatedAt.UTC().Format(createdAtLayout),
		run.Year,
		run.Module,
		run.InstructorCount,
		string(levelCounts),
		run.WarningCount,
		run.InstructorError,
		run.ModuleError,
	)
	if err != nil {
		return fmt.Errorf("exec SaveRun: %w", err)
	}
	return nil
}

// ListRuns returns up to limit runs, newest first.
func (s *RunRepository) ListRuns(ctx context.Context, limit int) ([]models.RunSummary, error) {
	const query = `
		SELECT id, created_at, year, module, instructor_count,
		       level_counts, warning_count, instructor_error, module_error
		FROM report_runs
		ORDER BY created_at DESC
		LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query ListRuns: %w", err)
	}
	defer rows.Close()

	var results []models.RunSummary
	for rows.Next() {
		var (
			r           models.RunSummary
			createdAt   string
			levelCounts string
		)
		if err := rows.Scan(&r.ID, &createdAt, &r.Year, &r.Module, &r.InstructorCount,
			&levelCounts, &r.WarningCount, &r.InstructorError, &r.ModuleError); err != nil {
			return nil, fmt.Errorf("scan ListRuns row: %w", err)
		}
		if r.CreatedAt, err = time.Parse(createdAtLayout, createdAt); err != nil {
			return nil, fmt.Errorf("parse created_at of run %s: %w", r.ID, err)
		}
		if err := json.Unmarshal([]byte(levelCounts), &r.LevelCounts); err != nil {
			return nil, fmt.Errorf("decode level counts of run %s: %w", r.ID, err)
		}
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ListRuns: %w", err)
	}
	return results, nil
}
