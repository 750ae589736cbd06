package types

import (
	"errors"
	"fmt"
)

// Domain errors for result validation
var (
	ErrMissingFilePath       = errors.New("file path is required")
	ErrMissingDatasetID      = errors.New("dataset ID is required")
	ErrInvalidRelevanceScore = errors.New("relevance score must be between 0 and 1")
)

// ErrBackendTimeout is wrapped by backends when a search exceeds its
// timeout_ms budget. Callers detect it with errors.Is.
var ErrBackendTimeout = errors.New("search backend timed out")

// ValidationError is returned by the query sanitizer when a query violates a
// hard limit. Direct callers of the sanitizer receive it typed; the search
// service recovers it into an empty result set.
type ValidationError struct {
	Limit   string // name of the exceeded limit
	Actual  int
	Allowed int
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("query validation failed: %s is %d, limit is %d", e.Limit, e.Actual, e.Allowed)
}

// ComplexityError marks a query the analyzer scored as too expensive to
// execute. The search service never propagates it; it is carried on the
// search outcome for logging and analytics.
type ComplexityError struct {
	Warnings []string
}

func (e *ComplexityError) Error() string {
	if len(e.Warnings) == 0 {
		return "query too complex"
	}
	return "query too complex: " + e.Warnings[0]
}
