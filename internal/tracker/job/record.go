package job

import (
	"errors"
	"fmt"
	"time"
)

// ScreenStatus is the vocabulary of the recruiter and technical screens
type ScreenStatus string

const (
	ScreenNotStarted ScreenStatus = "Not Started"
	ScreenInProgress ScreenStatus = "In Progress"
	ScreenCompleted  ScreenStatus = "Completed"
	ScreenRejected   ScreenStatus = "Rejected"
)

// RoundStatus is the vocabulary of the onsite rounds
type RoundStatus string

const (
	RoundNotStarted RoundStatus = "Not Started"
	RoundScheduled  RoundStatus = "Scheduled"
	RoundCompleted  RoundStatus = "Completed"
	RoundPassed     RoundStatus = "Passed"
	RoundFailed     RoundStatus = "Failed"
)

// Decision is the final outcome of an application
type Decision string

const (
	DecisionPending       Decision = "Pending"
	DecisionOfferExtended Decision = "Offer Extended"
	DecisionAccepted      Decision = "Accepted"
	DecisionRejected      Decision = "Rejected"
	DecisionDeclined      Decision = "Declined"
)

var (
	screenValues   = []ScreenStatus{ScreenNotStarted, ScreenInProgress, ScreenCompleted, ScreenRejected}
	roundValues    = []RoundStatus{RoundNotStarted, RoundScheduled, RoundCompleted, RoundPassed, RoundFailed}
	decisionValues = []Decision{DecisionPending, DecisionOfferExtended, DecisionAccepted, DecisionRejected, DecisionDeclined}
)

// ErrInvalidStage is returned when a stage value is outside the field's vocabulary
var ErrInvalidStage = errors.New("invalid stage value")

// ErrUnknownStageField is returned for a stage field name that does not exist
var ErrUnknownStageField = errors.New("unknown stage field")

// Record represents a tracked job application
type Record struct {
	ID                 string       `json:"id"`
	CreatedAt          time.Time    `json:"createdAt"`
	Company            string       `json:"company"`
	Position           string       `json:"position"`
	RecruiterName      string       `json:"recruiterName"`
	HiringManager      string       `json:"hiringManager"`
	RecruiterScreen    ScreenStatus `json:"recruiterScreen"`
	TechnicalScreen    ScreenStatus `json:"technicalScreen"`
	OnsiteRound1       RoundStatus  `json:"onsiteRound1"`
	OnsiteRound2       RoundStatus  `json:"onsiteRound2"`
	OnsiteRound3       RoundStatus  `json:"onsiteRound3"`
	OnsiteRound4       RoundStatus  `json:"onsiteRound4"`
	Decision           Decision     `json:"decision"`
	Notes              string       `json:"notes"`
	HiringManagerNotes string       `json:"hiringManagerNotes"`
}

// Normalize returns a copy of r with every empty stage field set to its default
func Normalize(r Record) Record {
	if r.RecruiterScreen == "" {
		r.RecruiterScreen = ScreenNotStarted
	}
	if r.TechnicalScreen == "" {
		r.TechnicalScreen = ScreenNotStarted
	}
	rounds := []*RoundStatus{&r.OnsiteRound1, &r.OnsiteRound2, &r.OnsiteRound3, &r.OnsiteRound4}
	for _, round := range rounds {
		if *round == "" {
			*round = RoundNotStarted
		}
	}
	if r.Decision == "" {
		r.Decision = DecisionPending
	}
	return r
}

// NormalizeAll normalizes a slice into a new slice
func NormalizeAll(records []Record) []Record {
	out := make([]Record, len(records))
	for i, r := range records {
		out[i] = Normalize(r)
	}
	return out
}

// Rounds returns the four onsite round statuses in order
func (r Record) Rounds() []RoundStatus {
	return []RoundStatus{r.OnsiteRound1, r.OnsiteRound2, r.OnsiteRound3, r.OnsiteRound4}
}

// Validate checks that every stage field holds a value from its vocabulary
func (r Record) Validate() error {
	if r.Company == "" {
		return fmt.Errorf("company is required")
	}
	for _, f := range StageFields {
		if !f.Accepts(r.Stage(f)) {
			return fmt.Errorf("%w: %s=%q", ErrInvalidStage, f.Key, r.Stage(f))
		}
	}
	return nil
}

func contains[T ~string](values []T, v string) bool {
	for _, candidate := range values {
		if string(candidate) == v {
			return true
		}
	}
	return false
}
