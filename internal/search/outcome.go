package search

// OutcomeKind tags how a search concluded.
type OutcomeKind string

const (
	// OutcomeOK means the query ran against the backend.
	OutcomeOK OutcomeKind = "ok"
	// OutcomeRejectedComplexity means the analyzer scored the query too
	// expensive; no backend call was made.
	OutcomeRejectedComplexity OutcomeKind = "rejected_complexity"
	// OutcomeRejectedValidation means the sanitizer refused the query; no
	// backend call was made.
	OutcomeRejectedValidation OutcomeKind = "rejected_validation"
)

// Outcome makes a rejected query distinguishable from one that matched
// nothing. The plain list-returning service methods collapse rejection into
// an empty list; callers that need the reason use the WithOutcome forms.
type Outcome struct {
	Kind   OutcomeKind
	Reason string
}

// Rejected reports whether the query never reached the backend.
func (o Outcome) Rejected() bool { return o.Kind != OutcomeOK }

func ok() Outcome { return Outcome{Kind: OutcomeOK} }
