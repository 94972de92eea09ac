package romstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const jobColumns = "id, drive_id, type, status, phase, total_items, processed_items, skipped_items, error_items, total_bytes, processed_bytes, error_message, created_at, started_at, finished_at"

// SaveJob upserts a scan job row. Jobs are kept as history; terminal rows
// are immutable in practice because the state machine stops writing after a
// terminal transition.
func (s *Store) SaveJob(ctx context.Context, job *JobRecord) error {
	if job == nil {
		return errors.New("job is nil")
	}
	if err := s.execWithRetry(ensureContext(ctx), `
        INSERT INTO scan_jobs (
            id, drive_id, type, status, phase, total_items, processed_items,
            skipped_items, error_items, total_bytes, processed_bytes,
            error_message, created_at, started_at, finished_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT (id) DO UPDATE SET
            status = excluded.status,
            phase = excluded.phase,
            total_items = excluded.total_items,
            processed_items = excluded.processed_items,
            skipped_items = excluded.skipped_items,
            error_items = excluded.error_items,
            total_bytes = excluded.total_bytes,
            processed_bytes = excluded.processed_bytes,
            error_message = excluded.error_message,
            started_at = excluded.started_at,
            finished_at = excluded.finished_at`,
		job.ID,
		job.DriveID,
		job.Type,
		job.Status,
		nullableString(job.Phase),
		job.TotalItems,
		job.ProcessedItems,
		job.SkippedItems,
		job.ErrorItems,
		job.TotalBytes,
		job.ProcessedBytes,
		nullableString(job.ErrorMessage),
		job.CreatedAt.UTC().Format(time.RFC3339Nano),
		nullableTime(job.StartedAt),
		nullableTime(job.FinishedAt),
	); err != nil {
		return fmt.Errorf("save job: %w", err)
	}
	return nil
}

// GetJob fetches one job by identifier; nil when absent.
func (s *Store) GetJob(ctx context.Context, id string) (*JobRecord, error) {
	row := s.db.QueryRowContext(ensureContext(ctx),
		`SELECT `+jobColumns+` FROM scan_jobs WHERE id = ?`, id)
	job, err := scanJobRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

// ListJobs returns jobs for a drive, newest first. Empty driveID lists all.
func (s *Store) ListJobs(ctx context.Context, driveID string) ([]*JobRecord, error) {
	ctx = ensureContext(ctx)
	var (
		rows *sql.Rows
		err  error
	)
	if driveID == "" {
		rows, err = s.db.QueryContext(ctx, `SELECT `+jobColumns+` FROM scan_jobs ORDER BY created_at DESC`)
	} else {
		rows, err = s.db.QueryContext(ctx,
			`SELECT `+jobColumns+` FROM scan_jobs WHERE drive_id = ? ORDER BY created_at DESC`, driveID)
	}
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*JobRecord
	for rows.Next() {
		job, err := scanJobRow(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

func scanJobRow(scanner interface{ Scan(dest ...any) error }) (*JobRecord, error) {
	var (
		job         JobRecord
		phase       sql.NullString
		errMessage  sql.NullString
		createdRaw  string
		startedRaw  sql.NullString
		finishedRaw sql.NullString
	)

	if err := scanner.Scan(
		&job.ID, &job.DriveID, &job.Type, &job.Status, &phase,
		&job.TotalItems, &job.ProcessedItems, &job.SkippedItems, &job.ErrorItems,
		&job.TotalBytes, &job.ProcessedBytes,
		&errMessage, &createdRaw, &startedRaw, &finishedRaw,
	); err != nil {
		return nil, err
	}

	job.Phase = phase.String
	job.ErrorMessage = errMessage.String
	if created, err := parseTimeString(createdRaw); err == nil {
		job.CreatedAt = created
	}
	if startedRaw.Valid {
		if started, err := parseTimeString(startedRaw.String); err == nil {
			job.StartedAt = &started
		}
	}
	if finishedRaw.Valid {
		if finished, err := parseTimeString(finishedRaw.String); err == nil {
			job.FinishedAt = &finished
		}
	}
	return &job, nil
}
