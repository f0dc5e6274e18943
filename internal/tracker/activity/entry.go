package activity

import (
	"sort"
	"strings"
	"time"
)

// Canonical actions recorded alongside job mutations
const (
	ActionCreated      = "created"
	ActionUpdated      = "updated"
	ActionDeleted      = "deleted"
	ActionStatusUpdate = "status_update"
)

// CanonicalActions lists the actions that get their own counter
var CanonicalActions = []string{ActionCreated, ActionUpdated, ActionDeleted, ActionStatusUpdate}

// Entry is one immutable activity-log record
type Entry struct {
	ID        int64             `json:"id"`
	Timestamp time.Time         `json:"timestamp"`
	Action    string            `json:"action"`
	Company   string            `json:"company"`
	JobTitle  string            `json:"jobTitle"`
	JobID     string            `json:"jobId,omitempty"`
	Details   string            `json:"details"`
	Username  string            `json:"username"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// SortNewestFirst returns a copy of entries ordered by timestamp descending.
// Entries with equal timestamps keep their relative order.
func SortNewestFirst(entries []Entry) []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out
}

// ForCompany returns the entries whose company equals name, ignoring case
func ForCompany(entries []Entry, name string) []Entry {
	var out []Entry
	for _, e := range entries {
		if strings.EqualFold(e.Company, name) {
			out = append(out, e)
		}
	}
	return out
}
