package timeline

import (
	"fmt"
	"sort"
	"time"

	"github.com/cuongbtq/job-tracker/internal/tracker/activity"
)

const (
	absoluteLayout12 = "Jan 2, 2006, 03:04 PM"
	absoluteLayout24 = "Jan 2, 2006, 15:04"
)

var actionLabels = map[string]string{
	activity.ActionCreated:      "Created",
	activity.ActionUpdated:      "Updated",
	activity.ActionDeleted:      "Deleted",
	activity.ActionStatusUpdate: "Status Update",
}

// Chip is one metadata key/value pair shown inline
type Chip struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Item is a display-ready timeline row
type Item struct {
	Entry activity.Entry `json:"entry"`
	When  string         `json:"when"`
	Label string         `json:"label"`
	Chips []Chip         `json:"chips,omitempty"`
}

// Counts tallies the canonical actions
type Counts struct {
	Created      int `json:"created"`
	Updated      int `json:"updated"`
	Deleted      int `json:"deleted"`
	StatusUpdate int `json:"statusUpdate"`
}

// Of returns the count for a canonical action, zero otherwise
func (c Counts) Of(action string) int {
	switch action {
	case activity.ActionCreated:
		return c.Created
	case activity.ActionUpdated:
		return c.Updated
	case activity.ActionDeleted:
		return c.Deleted
	case activity.ActionStatusUpdate:
		return c.StatusUpdate
	}
	return 0
}

// Total returns the sum of the canonical counts
func (c Counts) Total() int {
	return c.Created + c.Updated + c.Deleted + c.StatusUpdate
}

// Timeline is the formatted list plus its footer counts
type Timeline struct {
	Items  []Item `json:"items"`
	Counts Counts `json:"counts"`
}

// Formatter converts log entries to timeline rows relative to Now
type Formatter struct {
	Now      func() time.Time
	Location *time.Location
	Hour12   bool
}

// NewFormatter creates a Formatter using the wall clock and a 12-hour clock
func NewFormatter(loc *time.Location) *Formatter {
	return &Formatter{Now: time.Now, Location: loc, Hour12: true}
}

func (f *Formatter) now() time.Time {
	if f.Now == nil {
		return time.Now()
	}
	return f.Now()
}

// Relative renders ts relative to now. Every unit is truncated, never rounded.
func (f *Formatter) Relative(ts time.Time) string {
	delta := f.now().Sub(ts)

	switch {
	case delta < time.Minute:
		return "Just now"
	case delta < time.Hour:
		return fmt.Sprintf("%d minutes ago", int64(delta/time.Minute))
	case delta < 24*time.Hour:
		return fmt.Sprintf("%d hours ago", int64(delta/time.Hour))
	case delta < 7*24*time.Hour:
		return fmt.Sprintf("%d days ago", int64(delta/(24*time.Hour)))
	}
	return f.Absolute(ts)
}

// Absolute renders ts as "Mon D, YYYY, HH:MM" in the formatter's location
func (f *Formatter) Absolute(ts time.Time) string {
	loc := f.Location
	if loc == nil {
		loc = time.Local
	}
	layout := absoluteLayout24
	if f.Hour12 {
		layout = absoluteLayout12
	}
	return ts.In(loc).Format(layout)
}

// Label returns the display label of an action
func Label(action string) string {
	if label, ok := actionLabels[action]; ok {
		return label
	}
	return action
}

// Chips returns the metadata pairs sorted by key
func Chips(metadata map[string]string) []Chip {
	if len(metadata) == 0 {
		return nil
	}
	chips := make([]Chip, 0, len(metadata))
	for k, v := range metadata {
		chips = append(chips, Chip{Key: k, Value: v})
	}
	sort.Slice(chips, func(i, j int) bool {
		return chips[i].Key < chips[j].Key
	})
	return chips
}

// Build formats entries in the order given
func (f *Formatter) Build(entries []activity.Entry) Timeline {
	t := Timeline{Items: make([]Item, 0, len(entries))}

	for _, e := range entries {
		t.Items = append(t.Items, Item{
			Entry: e,
			When:  f.Relative(e.Timestamp),
			Label: Label(e.Action),
			Chips: Chips(e.Metadata),
		})

		switch e.Action {
		case activity.ActionCreated:
			t.Counts.Created++
		case activity.ActionUpdated:
			t.Counts.Updated++
		case activity.ActionDeleted:
			t.Counts.Deleted++
		case activity.ActionStatusUpdate:
			t.Counts.StatusUpdate++
		}
	}

	return t
}
