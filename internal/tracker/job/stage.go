package job

import (
	"fmt"
	"strings"
)

type fieldKind int

const (
	kindScreen fieldKind = iota
	kindRound
	kindDecision
)

// StageField identifies one pipeline stage of a Record
type StageField struct {
	Key   string
	Label string
	kind  fieldKind
}

var (
	RecruiterScreenField = StageField{Key: "recruiterScreen", Label: "Recruiter Screen", kind: kindScreen}
	TechnicalScreenField = StageField{Key: "technicalScreen", Label: "Technical Screen", kind: kindScreen}
	OnsiteRound1Field    = StageField{Key: "onsiteRound1", Label: "Onsite Round 1", kind: kindRound}
	OnsiteRound2Field    = StageField{Key: "onsiteRound2", Label: "Onsite Round 2", kind: kindRound}
	OnsiteRound3Field    = StageField{Key: "onsiteRound3", Label: "Onsite Round 3", kind: kindRound}
	OnsiteRound4Field    = StageField{Key: "onsiteRound4", Label: "Onsite Round 4", kind: kindRound}
	DecisionField        = StageField{Key: "decision", Label: "Decision", kind: kindDecision}
)

// StageFields lists every stage field in display order
var StageFields = []StageField{
	RecruiterScreenField,
	TechnicalScreenField,
	OnsiteRound1Field,
	OnsiteRound2Field,
	OnsiteRound3Field,
	OnsiteRound4Field,
	DecisionField,
}

// LookupStageField finds a stage field by key, case-insensitively
func LookupStageField(key string) (StageField, error) {
	for _, f := range StageFields {
		if strings.EqualFold(f.Key, key) {
			return f, nil
		}
	}
	return StageField{}, fmt.Errorf("%w: %s", ErrUnknownStageField, key)
}

// Values returns the allowed values of the field
func (f StageField) Values() []string {
	var out []string
	switch f.kind {
	case kindScreen:
		for _, v := range screenValues {
			out = append(out, string(v))
		}
	case kindRound:
		for _, v := range roundValues {
			out = append(out, string(v))
		}
	case kindDecision:
		for _, v := range decisionValues {
			out = append(out, string(v))
		}
	}
	return out
}

// Accepts reports whether v is in the field's vocabulary
func (f StageField) Accepts(v string) bool {
	switch f.kind {
	case kindScreen:
		return contains(screenValues, v)
	case kindRound:
		return contains(roundValues, v)
	case kindDecision:
		return contains(decisionValues, v)
	}
	return false
}

// Stage returns the current value of the field
func (r Record) Stage(f StageField) string {
	switch f.Key {
	case RecruiterScreenField.Key:
		return string(r.RecruiterScreen)
	case TechnicalScreenField.Key:
		return string(r.TechnicalScreen)
	case OnsiteRound1Field.Key:
		return string(r.OnsiteRound1)
	case OnsiteRound2Field.Key:
		return string(r.OnsiteRound2)
	case OnsiteRound3Field.Key:
		return string(r.OnsiteRound3)
	case OnsiteRound4Field.Key:
		return string(r.OnsiteRound4)
	case DecisionField.Key:
		return string(r.Decision)
	}
	return ""
}

// WithStage returns a copy of r with the field set to value
func (r Record) WithStage(f StageField, value string) (Record, error) {
	if !f.Accepts(value) {
		return r, fmt.Errorf("%w: %s=%q (allowed: %s)", ErrInvalidStage, f.Key, value, strings.Join(f.Values(), ", "))
	}

	switch f.Key {
	case RecruiterScreenField.Key:
		r.RecruiterScreen = ScreenStatus(value)
	case TechnicalScreenField.Key:
		r.TechnicalScreen = ScreenStatus(value)
	case OnsiteRound1Field.Key:
		r.OnsiteRound1 = RoundStatus(value)
	case OnsiteRound2Field.Key:
		r.OnsiteRound2 = RoundStatus(value)
	case OnsiteRound3Field.Key:
		r.OnsiteRound3 = RoundStatus(value)
	case OnsiteRound4Field.Key:
		r.OnsiteRound4 = RoundStatus(value)
	case DecisionField.Key:
		r.Decision = Decision(value)
	default:
		return r, fmt.Errorf("%w: %s", ErrUnknownStageField, f.Key)
	}
	return r, nil
}
