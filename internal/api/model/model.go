package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type ActivityLog struct {
	ID        int64     `db:"id"`
	Timestamp time.Time `db:"timestamp"`
	Action    string    `db:"action"`
	Company   string    `db:"company"`
	JobTitle  string    `db:"job_title"`
	JobID     string    `db:"job_id"`
	Details   string    `db:"details"`
	Username  string    `db:"username"`
	Metadata  Metadata  `db:"metadata"`
	CreatedAt time.Time `db:"created_at"`
}

// Metadata is stored as a JSONB object
type Metadata map[string]string

func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

func (m *Metadata) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*m = nil
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported metadata type %T", src)
	}

	out := Metadata{}
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("failed to decode metadata: %w", err)
	}
	if len(out) == 0 {
		out = nil
	}
	*m = out
	return nil
}

type CompanyCount struct {
	Company string `db:"company"`
	Count   int    `db:"count"`
}

type ActionCount struct {
	Action string `db:"action"`
	Count  int    `db:"count"`
}

type LogStats struct {
	Total        int
	ByAction     []ActionCount
	TopCompanies []CompanyCount
	LastActivity *time.Time
}
