package manifest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const checkpointColumns = "stage, ordinal, artifact, status, size_bytes, sha256, run_id, error_message, started_at, updated_at"

func scanCheckpoint(scanner interface{ Scan(dest ...any) error }) (*Checkpoint, error) {
	var (
		cp        Checkpoint
		status    string
		sha       sql.NullString
		runID     sql.NullString
		errMsg    sql.NullString
		started   sql.NullString
		updatedAt sql.NullString
	)
	if err := scanner.Scan(&cp.Stage, &cp.Ordinal, &cp.Artifact, &status, &cp.SizeBytes, &sha, &runID, &errMsg, &started, &updatedAt); err != nil {
		return nil, err
	}
	cp.Status = Status(status)
	cp.SHA256 = sha.String
	cp.RunID = runID.String
	cp.ErrorMessage = errMsg.String
	cp.StartedAt = parseTime(started)
	cp.UpdatedAt = parseTime(updatedAt)
	return &cp, nil
}

// Get returns the checkpoint for stage, or nil when none is recorded.
func (s *Store) Get(ctx context.Context, stage string) (*Checkpoint, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+checkpointColumns+` FROM checkpoints WHERE stage = ?`, stage)
	cp, err := scanCheckpoint(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get checkpoint %s: %w", stage, err)
	}
	return cp, nil
}

// List returns every checkpoint in pipeline order.
func (s *Store) List(ctx context.Context) ([]*Checkpoint, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+checkpointColumns+` FROM checkpoints ORDER BY ordinal, stage`)
	if err != nil {
		return nil, fmt.Errorf("list checkpoints: %w", err)
	}
	defer rows.Close()

	var out []*Checkpoint
	for rows.Next() {
		cp, err := scanCheckpoint(rows)
		if err != nil {
			return nil, fmt.Errorf("scan checkpoint: %w", err)
		}
		out = append(out, cp)
	}
	return out, rows.Err()
}

// Put inserts or replaces the checkpoint row for cp.Stage.
func (s *Store) Put(ctx context.Context, cp Checkpoint) error {
	if cp.Stage == "" {
		return errors.New("checkpoint stage is required")
	}
	if _, ok := statusSet[cp.Status]; !ok {
		return fmt.Errorf("checkpoint %s: invalid status %q", cp.Stage, cp.Status)
	}
	now := time.Now().UTC()
	var started any
	if !cp.StartedAt.IsZero() {
		started = formatTime(cp.StartedAt)
	}
	_, err := s.exec(ctx,
		`INSERT INTO checkpoints (`+checkpointColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT(stage) DO UPDATE SET
             ordinal = excluded.ordinal,
             artifact = excluded.artifact,
             status = excluded.status,
             size_bytes = excluded.size_bytes,
             sha256 = excluded.sha256,
             run_id = excluded.run_id,
             error_message = excluded.error_message,
             started_at = excluded.started_at,
             updated_at = excluded.updated_at`,
		cp.Stage,
		cp.Ordinal,
		cp.Artifact,
		string(cp.Status),
		cp.SizeBytes,
		nullableString(cp.SHA256),
		nullableString(cp.RunID),
		nullableString(cp.ErrorMessage),
		started,
		formatTime(now),
	)
	if err != nil {
		return fmt.Errorf("put checkpoint %s: %w", cp.Stage, err)
	}
	return nil
}

// MarkRunning records that runID has started producing artifact for stage.
func (s *Store) MarkRunning(ctx context.Context, stage string, ordinal int, artifact, runID string) error {
	return s.Put(ctx, Checkpoint{
		Stage:     stage,
		Ordinal:   ordinal,
		Artifact:  artifact,
		Status:    StatusRunning,
		RunID:     runID,
		StartedAt: time.Now().UTC(),
	})
}

// MarkCompleted stores the committed artifact fingerprint for stage.
func (s *Store) MarkCompleted(ctx context.Context, stage string, size int64, digest string) error {
	return s.transition(ctx, stage,
		`UPDATE checkpoints SET status = ?, size_bytes = ?, sha256 = ?, error_message = NULL, updated_at = ? WHERE stage = ?`,
		string(StatusCompleted), size, nullableString(digest), formatTime(time.Now()), stage)
}

// MarkFailed records message against stage.
func (s *Store) MarkFailed(ctx context.Context, stage, message string) error {
	return s.transition(ctx, stage,
		`UPDATE checkpoints SET status = ?, error_message = ?, updated_at = ? WHERE stage = ?`,
		string(StatusFailed), nullableString(message), formatTime(time.Now()), stage)
}

// MarkPending clears the fingerprint of stage so the next run rebuilds it.
// Stages without a row are left alone.
func (s *Store) MarkPending(ctx context.Context, stage string) error {
	_, err := s.exec(ctx,
		`UPDATE checkpoints SET status = ?, size_bytes = 0, sha256 = NULL, error_message = NULL, updated_at = ? WHERE stage = ?`,
		string(StatusPending), formatTime(time.Now()), stage)
	if err != nil {
		return fmt.Errorf("reset checkpoint %s: %w", stage, err)
	}
	return nil
}

func (s *Store) transition(ctx context.Context, stage, query string, args ...any) error {
	affected, err := s.exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update checkpoint %s: %w", stage, err)
	}
	if affected == 0 {
		return fmt.Errorf("update checkpoint %s: %w", stage, ErrNoCheckpoint)
	}
	return nil
}

// ErrNoCheckpoint indicates a transition on a stage that was never started.
var ErrNoCheckpoint = errors.New("no checkpoint recorded")
