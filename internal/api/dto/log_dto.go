package dto

import (
	"time"

	"github.com/cuongbtq/job-tracker/internal/api/model"
)

type CreateLogRequest struct {
	Timestamp *time.Time        `json:"timestamp"`
	Action    string            `json:"action"`
	Company   string            `json:"company"`
	JobTitle  string            `json:"jobTitle"`
	JobID     string            `json:"jobId"`
	Details   string            `json:"details"`
	Username  string            `json:"username"`
	Metadata  map[string]string `json:"metadata"`
}

// ToModel converts the request, stamping now when no timestamp was sent
func (r CreateLogRequest) ToModel(now time.Time) model.ActivityLog {
	ts := now
	if r.Timestamp != nil && !r.Timestamp.IsZero() {
		ts = *r.Timestamp
	}
	return model.ActivityLog{
		Timestamp: ts.UTC(),
		Action:    r.Action,
		Company:   r.Company,
		JobTitle:  r.JobTitle,
		JobID:     r.JobID,
		Details:   r.Details,
		Username:  r.Username,
		Metadata:  model.Metadata(r.Metadata),
	}
}

type ListLogsRequest struct {
	Action   string `form:"action"`
	Company  string `form:"company"`
	Username string `form:"username"`
	JobID    string `form:"jobId"`
	From     string `form:"from"`
	To       string `form:"to"`
	Limit    int    `form:"limit"`
	Cursor   string `form:"cursor"`
}

type LogDTO struct {
	ID        int64             `json:"id"`
	Timestamp string            `json:"timestamp"`
	Action    string            `json:"action"`
	Company   string            `json:"company"`
	JobTitle  string            `json:"jobTitle"`
	JobID     string            `json:"jobId,omitempty"`
	Details   string            `json:"details"`
	Username  string            `json:"username"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

func FromModel(m model.ActivityLog) LogDTO {
	return LogDTO{
		ID:        m.ID,
		Timestamp: m.Timestamp.UTC().Format(time.RFC3339Nano),
		Action:    m.Action,
		Company:   m.Company,
		JobTitle:  m.JobTitle,
		JobID:     m.JobID,
		Details:   m.Details,
		Username:  m.Username,
		Metadata:  m.Metadata,
	}
}

type ListLogsResponse struct {
	Success    bool     `json:"success"`
	Count      int      `json:"count"`
	Data       []LogDTO `json:"data"`
	NextCursor string   `json:"nextCursor,omitempty"`
}

type CompanyCountDTO struct {
	Company string `json:"company"`
	Count   int    `json:"count"`
}

type StatsDTO struct {
	Total        int               `json:"total"`
	ByAction     map[string]int    `json:"byAction"`
	TopCompanies []CompanyCountDTO `json:"topCompanies"`
	LastActivity *time.Time        `json:"lastActivity,omitempty"`
}

func FromStats(s *model.LogStats) StatsDTO {
	out := StatsDTO{
		Total:        s.Total,
		ByAction:     make(map[string]int, len(s.ByAction)),
		TopCompanies: make([]CompanyCountDTO, 0, len(s.TopCompanies)),
		LastActivity: s.LastActivity,
	}
	for _, a := range s.ByAction {
		out.ByAction[a.Action] = a.Count
	}
	for _, c := range s.TopCompanies {
		out.TopCompanies = append(out.TopCompanies, CompanyCountDTO{Company: c.Company, Count: c.Count})
	}
	return out
}

// BulkImportMessage is published to the broker for the worker service
type BulkImportMessage struct {
	BatchID     string    `json:"batchId"`
	SubmittedAt time.Time `json:"submittedAt"`
	Entries     []LogDTO  `json:"entries"`
}
