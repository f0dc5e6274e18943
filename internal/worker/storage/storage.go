package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cuongbtq/job-tracker/internal/worker/domain"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Storage handles all database operations for the worker
type Storage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStorage creates a new Storage instance
func NewStorage(db *sqlx.DB, logger *slog.Logger) *Storage {
	return &Storage{
		db:     db,
		logger: logger,
	}
}

// InsertBatch stores every entry of the batch in one transaction.
// A batch id that was already committed returns ErrBatchAlreadyImported and
// writes nothing.
func (s *Storage) InsertBatch(ctx context.Context, batch *domain.BatchMessage) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return classify(fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.logger.Warn("Failed to rollback batch",
					slog.String("batch_id", batch.BatchID),
					slog.String("error", rbErr.Error()),
				)
			}
		}
	}()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO import_batches (batch_id, entry_count, submitted_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (batch_id) DO NOTHING
	`, batch.BatchID, len(batch.Entries), batch.SubmittedAt)
	if err != nil {
		return classify(fmt.Errorf("failed to register batch: %w", err))
	}

	n, err := res.RowsAffected()
	if err != nil {
		return classify(fmt.Errorf("failed to register batch: %w", err))
	}
	if n == 0 {
		err = domain.ErrBatchAlreadyImported
		return err
	}

	query := `
		INSERT INTO activity_logs (
			timestamp, action, company, job_title,
			job_id, details, username, metadata
		) VALUES (
			$1, $2, $3, $4,
			$5, $6, $7, $8
		)
	`

	for i, e := range batch.Entries {
		metadata, mErr := encodeMetadata(e.Metadata)
		if mErr != nil {
			err = fmt.Errorf("%w: entry %d: %v", domain.ErrInvalidEntry, i, mErr)
			return err
		}

		_, err = tx.ExecContext(ctx, query,
			e.Timestamp.UTC(),
			e.Action,
			e.Company,
			e.JobTitle,
			e.JobID,
			e.Details,
			e.Username,
			metadata,
		)
		if err != nil {
			err = classify(fmt.Errorf("failed to insert entry %d: %w", i, err))
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		err = classify(fmt.Errorf("failed to commit batch: %w", err))
		return err
	}

	s.logger.Info("Batch stored",
		slog.String("batch_id", batch.BatchID),
		slog.Int("entries", len(batch.Entries)),
	)

	return nil
}

func encodeMetadata(m map[string]string) ([]byte, error) {
	if len(m) == 0 {
		return []byte(`{}`), nil
	}
	return json.Marshal(m)
}

// classify marks data errors as permanent and everything else as retryable.
// Postgres classes 22 (data exception) and 23 (integrity violation) will fail
// the same way on every redelivery.
func classify(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Class() {
		case "22", "23":
			return fmt.Errorf("%w: %v", domain.ErrInvalidEntry, err)
		}
	}
	return domain.NewRetryableError(err)
}
