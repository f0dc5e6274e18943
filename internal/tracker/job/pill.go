package job

// Pill is the single status badge shown next to an application
type Pill string

const (
	PillApplied   Pill = "Applied"
	PillScreening Pill = "Screening"
	PillTechnical Pill = "Technical"
	PillOnsite    Pill = "Onsite"
	PillOffer     Pill = "Offer"
	PillAccepted  Pill = "Accepted"
	PillRejected  Pill = "Rejected"
	PillDeclined  Pill = "Declined"
)

// Pill derives the badge from the furthest stage reached.
// The decision always wins, then onsite rounds, then the screens.
func (r Record) Pill() Pill {
	r = Normalize(r)

	switch r.Decision {
	case DecisionAccepted:
		return PillAccepted
	case DecisionOfferExtended:
		return PillOffer
	case DecisionRejected:
		return PillRejected
	case DecisionDeclined:
		return PillDeclined
	}

	onsite := false
	for _, round := range r.Rounds() {
		switch round {
		case RoundFailed:
			return PillRejected
		case RoundScheduled, RoundCompleted, RoundPassed:
			onsite = true
		}
	}
	if onsite {
		return PillOnsite
	}

	if r.TechnicalScreen == ScreenRejected || r.RecruiterScreen == ScreenRejected {
		return PillRejected
	}
	if r.TechnicalScreen == ScreenInProgress || r.TechnicalScreen == ScreenCompleted {
		return PillTechnical
	}
	if r.RecruiterScreen == ScreenInProgress || r.RecruiterScreen == ScreenCompleted {
		return PillScreening
	}
	return PillApplied
}

// IsOffer reports whether the decision is an extended or accepted offer
func (d Decision) IsOffer() bool {
	return d == DecisionOfferExtended || d == DecisionAccepted
}

// Celebrates reports whether moving from before to after earns a celebration
func Celebrates(before, after Record) bool {
	return !before.Decision.IsOffer() && after.Decision.IsOffer()
}
