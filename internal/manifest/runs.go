package manifest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// BeginRun inserts a running row for id.
func (s *Store) BeginRun(ctx context.Context, id, inputPath string) error {
	_, err := s.exec(ctx,
		`INSERT INTO runs (id, input_path, status, started_at) VALUES (?, ?, ?, ?)`,
		id, inputPath, string(StatusRunning), formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("begin run %s: %w", id, err)
	}
	return nil
}

// FinishRun closes run id with a terminal status.
func (s *Store) FinishRun(ctx context.Context, id string, status Status, message string) error {
	affected, err := s.exec(ctx,
		`UPDATE runs SET status = ?, error_message = ?, finished_at = ? WHERE id = ?`,
		string(status), nullableString(message), formatTime(time.Now()), id)
	if err != nil {
		return fmt.Errorf("finish run %s: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("finish run %s: unknown run", id)
	}
	return nil
}

// LatestRun returns the most recently started run, or nil.
func (s *Store) LatestRun(ctx context.Context) (*Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, input_path, status, error_message, started_at, finished_at FROM runs ORDER BY started_at DESC, rowid DESC LIMIT 1`)
	var (
		run      Run
		status   string
		errMsg   sql.NullString
		started  sql.NullString
		finished sql.NullString
	)
	err := row.Scan(&run.ID, &run.InputPath, &status, &errMsg, &started, &finished)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest run: %w", err)
	}
	run.Status = Status(status)
	run.ErrorMessage = errMsg.String
	run.StartedAt = parseTime(started)
	run.FinishedAt = parseTime(finished)
	return &run, nil
}
