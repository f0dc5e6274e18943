package store

import (
	"context"

	"github.com/cuongbtq/job-tracker/internal/client/logapi"
	"github.com/cuongbtq/job-tracker/internal/tracker/activity"
	"github.com/cuongbtq/job-tracker/internal/tracker/job"
)

// QuerySources exposes the job and log stores as one snapshot source
type QuerySources struct {
	jobs *JobStore
	logs LogRepository
}

// NewQuerySources creates a QuerySources
func NewQuerySources(jobs *JobStore, logs LogRepository) *QuerySources {
	return &QuerySources{jobs: jobs, logs: logs}
}

func (q *QuerySources) Jobs(_ context.Context) ([]job.Record, error) {
	return q.jobs.List()
}

func (q *QuerySources) Logs(ctx context.Context) ([]activity.Entry, error) {
	return q.logs.List(ctx, logapi.Filter{})
}
