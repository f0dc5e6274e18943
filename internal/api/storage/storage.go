package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cuongbtq/job-tracker/internal/api/domain"
	"github.com/cuongbtq/job-tracker/internal/api/model"
	"github.com/jmoiron/sqlx"
)

const logColumns = `
			id, timestamp, action, company, job_title,
			job_id, details, username, metadata, created_at`

type Storage struct {
	db *sqlx.DB
}

func NewStorage(db *sqlx.DB) *Storage {
	return &Storage{
		db: db,
	}
}

// CreateLog inserts log and sets its ID and CreatedAt
func (s *Storage) CreateLog(ctx context.Context, log *model.ActivityLog) error {
	query := `
		INSERT INTO activity_logs (
			timestamp, action, company, job_title,
			job_id, details, username, metadata
		) VALUES (
			$1, $2, $3, $4,
			$5, $6, $7, $8
		)
		RETURNING id, created_at
	`

	err := s.db.QueryRowxContext(
		ctx,
		query,
		log.Timestamp,
		log.Action,
		log.Company,
		log.JobTitle,
		log.JobID,
		log.Details,
		log.Username,
		log.Metadata,
	).Scan(&log.ID, &log.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create log: %w", err)
	}

	return nil
}

func (s *Storage) GetLogByID(ctx context.Context, id int64) (*model.ActivityLog, error) {
	var log model.ActivityLog
	query := `SELECT` + logColumns + `
		FROM activity_logs
		WHERE id = $1
	`

	err := s.db.GetContext(ctx, &log, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrLogNotFound
		}
		return nil, fmt.Errorf("failed to get log: %w", err)
	}

	return &log, nil
}

func (s *Storage) DeleteLog(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM activity_logs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete log: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete log: %w", err)
	}
	if n == 0 {
		return domain.ErrLogNotFound
	}

	return nil
}

type LogFilter struct {
	Action   string
	Company  string
	Username string
	JobID    string
	From     *time.Time
	To       *time.Time
	Limit    int
	Cursor   *LogCursor
}

type LogCursor struct {
	Timestamp time.Time
	ID        int64
}

// ListLogs returns up to Limit+1 logs newest first. The extra row tells the
// caller whether another page exists.
func (s *Storage) ListLogs(ctx context.Context, filter LogFilter) ([]model.ActivityLog, error) {
	query := `SELECT` + logColumns + `
        FROM activity_logs
        WHERE 1=1
    `
	args := []interface{}{}
	argIdx := 1

	// Filters
	if filter.Action != "" {
		query += fmt.Sprintf(" AND action = $%d", argIdx)
		args = append(args, filter.Action)
		argIdx++
	}

	if filter.Company != "" {
		query += fmt.Sprintf(" AND LOWER(company) = LOWER($%d)", argIdx)
		args = append(args, filter.Company)
		argIdx++
	}

	if filter.Username != "" {
		query += fmt.Sprintf(" AND username = $%d", argIdx)
		args = append(args, filter.Username)
		argIdx++
	}

	if filter.JobID != "" {
		query += fmt.Sprintf(" AND job_id = $%d", argIdx)
		args = append(args, filter.JobID)
		argIdx++
	}

	if filter.From != nil {
		query += fmt.Sprintf(" AND timestamp >= $%d", argIdx)
		args = append(args, *filter.From)
		argIdx++
	}

	if filter.To != nil {
		query += fmt.Sprintf(" AND timestamp <= $%d", argIdx)
		args = append(args, *filter.To)
		argIdx++
	}

	if filter.Cursor != nil {
		query += fmt.Sprintf(" AND (timestamp, id) < ($%d, $%d)", argIdx, argIdx+1)
		args = append(args, filter.Cursor.Timestamp, filter.Cursor.ID)
		argIdx += 2
	}

	// Order by timestamp DESC, id DESC for consistent pagination
	query += " ORDER BY timestamp DESC, id DESC"

	query += fmt.Sprintf(" LIMIT $%d", argIdx)
	args = append(args, filter.Limit+1)

	var logs []model.ActivityLog
	err := s.db.SelectContext(ctx, &logs, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list logs: %w", err)
	}

	return logs, nil
}

// GetStats aggregates the whole log table
func (s *Storage) GetStats(ctx context.Context, topCompanies int) (*model.LogStats, error) {
	var stats model.LogStats

	if err := s.db.GetContext(ctx, &stats.Total, `SELECT COUNT(*) FROM activity_logs`); err != nil {
		return nil, fmt.Errorf("failed to count logs: %w", err)
	}

	err := s.db.SelectContext(ctx, &stats.ByAction, `
		SELECT action, COUNT(*) AS count
		FROM activity_logs
		GROUP BY action
		ORDER BY count DESC, action ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to count logs by action: %w", err)
	}

	err = s.db.SelectContext(ctx, &stats.TopCompanies, `
		SELECT company, COUNT(*) AS count
		FROM activity_logs
		WHERE company <> ''
		GROUP BY company
		ORDER BY count DESC, company ASC
		LIMIT $1
	`, topCompanies)
	if err != nil {
		return nil, fmt.Errorf("failed to rank companies: %w", err)
	}

	var last sql.NullTime
	if err := s.db.GetContext(ctx, &last, `SELECT MAX(timestamp) FROM activity_logs`); err != nil {
		return nil, fmt.Errorf("failed to get last activity: %w", err)
	}
	if last.Valid {
		ts := last.Time.UTC()
		stats.LastActivity = &ts
	}

	return &stats, nil
}
