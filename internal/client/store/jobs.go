package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/cuongbtq/job-tracker/internal/tracker/activity"
	"github.com/cuongbtq/job-tracker/internal/tracker/job"
)

// ErrJobNotFound is returned when no job has the requested id
var ErrJobNotFound = errors.New("job not found")

// StageChange is the result of UpdateStage
type StageChange struct {
	Field  job.StageField
	Before job.Record
	After  job.Record
}

// Changed reports whether the stage value actually moved
func (c StageChange) Changed() bool {
	return c.Before.Stage(c.Field) != c.After.Stage(c.Field)
}

// Celebrates reports whether the change landed an offer
func (c StageChange) Celebrates() bool {
	return job.Celebrates(c.Before, c.After)
}

// JobStore keeps job applications in local storage and records every mutation
// in the activity log
type JobStore struct {
	storage *LocalStorage
	session *Session
	logs    LogRepository
	now     func() time.Time
	logger  *slog.Logger

	mu     sync.Mutex
	lastID int64
}

// JobStoreConfig holds JobStore configuration
type JobStoreConfig struct {
	Storage *LocalStorage
	Session *Session
	Logs    LogRepository
	Now     func() time.Time
	Logger  *slog.Logger
}

// NewJobStore creates a JobStore
func NewJobStore(cfg *JobStoreConfig) *JobStore {
	s := &JobStore{
		storage: cfg.Storage,
		session: cfg.Session,
		logs:    cfg.Logs,
		now:     cfg.Now,
		logger:  cfg.Logger,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// List returns every job, normalized, in insertion order
func (s *JobStore) List() ([]job.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Get returns the job with the given id
func (s *JobStore) Get(id string) (job.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return job.Record{}, err
	}
	i := indexOf(records, id)
	if i < 0 {
		return job.Record{}, fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	return records[i], nil
}

// Add stores a new job and logs a created entry
func (s *JobStore) Add(ctx context.Context, r job.Record) (job.Record, error) {
	user, err := s.session.Current()
	if err != nil {
		return job.Record{}, err
	}

	s.mu.Lock()
	records, err := s.load()
	if err != nil {
		s.mu.Unlock()
		return job.Record{}, err
	}

	now := s.now().UTC()
	r = job.Normalize(r)
	r.ID = s.nextID(records, now)
	r.CreatedAt = now
	if err := r.Validate(); err != nil {
		s.mu.Unlock()
		return job.Record{}, fmt.Errorf("invalid job: %w", err)
	}

	if err := s.save(append(records, r)); err != nil {
		s.mu.Unlock()
		return job.Record{}, err
	}
	s.mu.Unlock()

	s.record(ctx, activity.Entry{
		Action:  activity.ActionCreated,
		Details: fmt.Sprintf("Added application for %s at %s", r.Position, r.Company),
	}, r, user)

	return r, nil
}

// Update replaces the editable fields of an existing job and logs an updated entry.
// The id and creation time are preserved.
func (s *JobStore) Update(ctx context.Context, r job.Record) (job.Record, error) {
	user, err := s.session.Current()
	if err != nil {
		return job.Record{}, err
	}

	s.mu.Lock()
	records, err := s.load()
	if err != nil {
		s.mu.Unlock()
		return job.Record{}, err
	}

	i := indexOf(records, r.ID)
	if i < 0 {
		s.mu.Unlock()
		return job.Record{}, fmt.Errorf("%w: %s", ErrJobNotFound, r.ID)
	}

	r = job.Normalize(r)
	r.CreatedAt = records[i].CreatedAt
	if err := r.Validate(); err != nil {
		s.mu.Unlock()
		return job.Record{}, fmt.Errorf("invalid job: %w", err)
	}

	records[i] = r
	if err := s.save(records); err != nil {
		s.mu.Unlock()
		return job.Record{}, err
	}
	s.mu.Unlock()

	s.record(ctx, activity.Entry{
		Action:  activity.ActionUpdated,
		Details: fmt.Sprintf("Updated application details for %s", r.Position),
	}, r, user)

	return r, nil
}

// UpdateStage moves one stage field and logs a status_update entry.
// Setting a field to its current value changes nothing and logs nothing.
func (s *JobStore) UpdateStage(ctx context.Context, id string, field job.StageField, value string) (StageChange, error) {
	user, err := s.session.Current()
	if err != nil {
		return StageChange{}, err
	}

	s.mu.Lock()
	records, err := s.load()
	if err != nil {
		s.mu.Unlock()
		return StageChange{}, err
	}

	i := indexOf(records, id)
	if i < 0 {
		s.mu.Unlock()
		return StageChange{}, fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}

	after, err := records[i].WithStage(field, value)
	if err != nil {
		s.mu.Unlock()
		return StageChange{}, err
	}

	change := StageChange{Field: field, Before: records[i], After: after}
	if !change.Changed() {
		s.mu.Unlock()
		return change, nil
	}

	records[i] = after
	if err := s.save(records); err != nil {
		s.mu.Unlock()
		return StageChange{}, err
	}
	s.mu.Unlock()

	s.record(ctx, activity.Entry{
		Action:  activity.ActionStatusUpdate,
		Details: fmt.Sprintf("%s changed from %s to %s", field.Label, change.Before.Stage(field), value),
		Metadata: map[string]string{
			"field": field.Key,
			"from":  change.Before.Stage(field),
			"to":    value,
		},
	}, after, user)

	return change, nil
}

// Delete removes a job and logs a deleted entry
func (s *JobStore) Delete(ctx context.Context, id string) error {
	user, err := s.session.Current()
	if err != nil {
		return err
	}

	s.mu.Lock()
	records, err := s.load()
	if err != nil {
		s.mu.Unlock()
		return err
	}

	i := indexOf(records, id)
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}

	removed := records[i]
	records = append(records[:i], records[i+1:]...)
	if err := s.save(records); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	s.record(ctx, activity.Entry{
		Action:  activity.ActionDeleted,
		Details: fmt.Sprintf("Deleted application for %s at %s", removed.Position, removed.Company),
	}, removed, user)

	return nil
}

// record logs e for r. Failures are logged and never fail the mutation.
func (s *JobStore) record(ctx context.Context, e activity.Entry, r job.Record, user User) {
	if s.logs == nil {
		return
	}

	e.Timestamp = s.now().UTC()
	e.Company = r.Company
	e.JobTitle = r.Position
	e.JobID = r.ID
	e.Username = user.Username

	if _, err := s.logs.Create(ctx, e); err != nil {
		s.logger.Warn("Failed to record activity",
			slog.String("action", e.Action),
			slog.String("job_id", r.ID),
			slog.Any("error", err),
		)
	}
}

func (s *JobStore) load() ([]job.Record, error) {
	var records []job.Record
	if _, err := s.storage.Load(KeyJobs, &records); err != nil {
		return nil, err
	}
	return job.NormalizeAll(records), nil
}

func (s *JobStore) save(records []job.Record) error {
	if records == nil {
		records = []job.Record{}
	}
	return s.storage.Save(KeyJobs, records)
}

// nextID derives an id from the creation time in Unix milliseconds,
// bumped past every id already issued or stored
func (s *JobStore) nextID(records []job.Record, now time.Time) string {
	id := now.UnixMilli()
	floor := s.lastID
	for _, r := range records {
		if n, err := strconv.ParseInt(r.ID, 10, 64); err == nil && n > floor {
			floor = n
		}
	}
	if id <= floor {
		id = floor + 1
	}
	s.lastID = id
	return strconv.FormatInt(id, 10)
}

func indexOf(records []job.Record, id string) int {
	for i, r := range records {
		if r.ID == id {
			return i
		}
	}
	return -1
}
