package complexity

import (
	"fmt"
	"strings"
)

// Level classifies how expensive a query is expected to be.
type Level string

const (
	LevelSimple     Level = "simple"
	LevelModerate   Level = "moderate"
	LevelComplex    Level = "complex"
	LevelTooComplex Level = "too_complex"
)

// Default thresholds applied when a Limits field is zero.
const (
	DefaultMaxTerms     = 50
	DefaultMaxOperators = 20
	DefaultMaxNesting   = 5
	DefaultMaxWildcards = 10
	DefaultMaxCost      = 100.0
)

// Per-metric cost weights. Nesting is penalized quadratically to deter
// deeply grouped expressions.
const (
	termCost     = 1.0
	operatorCost = 2.0
	wildcardCost = 5.0
	phraseCost   = 3.0
	nestingCost  = 4.0
)

// Limits holds the thresholds for one analysis call. Zero-valued fields fall
// back to the package defaults, so callers can override selectively. Limits
// travel with each call; the analyzer holds no mutable state.
type Limits struct {
	MaxTerms     int
	MaxOperators int
	MaxNesting   int
	MaxWildcards int
	MaxCost      float64
}

// DefaultLimits returns the default analysis thresholds.
func DefaultLimits() Limits {
	return Limits{
		MaxTerms:     DefaultMaxTerms,
		MaxOperators: DefaultMaxOperators,
		MaxNesting:   DefaultMaxNesting,
		MaxWildcards: DefaultMaxWildcards,
		MaxCost:      DefaultMaxCost,
	}
}

func (l Limits) withDefaults() Limits {
	if l.MaxTerms <= 0 {
		l.MaxTerms = DefaultMaxTerms
	}
	if l.MaxOperators <= 0 {
		l.MaxOperators = DefaultMaxOperators
	}
	if l.MaxNesting <= 0 {
		l.MaxNesting = DefaultMaxNesting
	}
	if l.MaxWildcards <= 0 {
		l.MaxWildcards = DefaultMaxWildcards
	}
	if l.MaxCost <= 0 {
		l.MaxCost = DefaultMaxCost
	}
	return l
}

// Metrics is the immutable result of analyzing one query.
type Metrics struct {
	TermCount        int
	OperatorCount    int
	NestingDepth     int
	WildcardCount    int
	PhraseCount      int
	SpecialCharCount int
	EstimatedCost    float64
	Level            Level
	Warnings         []string
}

// specialChars are punctuation characters common in code identifiers; their
// presence hints the query targets source text rather than prose.
const specialChars = "$@#:._-"

// Analyze scores a raw query against the given limits. It never fails:
// empty or whitespace-only input yields zeroed Simple metrics.
func Analyze(query string, limits Limits) Metrics {
	limits = limits.withDefaults()

	query = strings.TrimSpace(query)
	if query == "" {
		return Metrics{Level: LevelSimple}
	}

	m := Metrics{
		TermCount:        countTerms(query),
		OperatorCount:    countOperators(query),
		NestingDepth:     maxNestingDepth(query),
		WildcardCount:    countWildcards(query),
		PhraseCount:      countPhrases(query),
		SpecialCharCount: countSpecialChars(query),
	}

	m.EstimatedCost = float64(m.TermCount)*termCost +
		float64(m.OperatorCount)*operatorCost +
		float64(m.WildcardCount)*wildcardCost +
		float64(m.PhraseCount)*phraseCost +
		float64(m.NestingDepth*m.NestingDepth)*nestingCost

	m.Level, m.Warnings = classify(m, limits)
	return m
}

// IsTooComplex reports whether the query exceeds any limit.
func IsTooComplex(query string, limits Limits) bool {
	return Analyze(query, limits).Level == LevelTooComplex
}

// SuggestSimplification returns heuristic suggestions for reducing query
// cost, keyed to the specific metrics that look excessive.
func SuggestSimplification(query string, limits Limits) []string {
	m := Analyze(query, limits)

	var suggestions []string
	if m.WildcardCount > 3 {
		suggestions = append(suggestions, "reduce the number of wildcard terms; each wildcard forces a prefix scan")
	}
	if m.OperatorCount > 10 {
		suggestions = append(suggestions, "reduce the number of AND/OR/NOT operators by grouping related terms")
	}
	if m.NestingDepth > 2 {
		suggestions = append(suggestions, "flatten nested parentheses; deep grouping is penalized quadratically")
	}
	if m.TermCount > 20 {
		suggestions = append(suggestions, "use fewer, more specific terms")
	}
	if len(suggestions) == 0 && m.Level == LevelTooComplex {
		suggestions = append(suggestions, "simplify the query: fewer terms, operators, and wildcards")
	}
	return suggestions
}

func classify(m Metrics, limits Limits) (Level, []string) {
	var warnings []string
	if m.TermCount > limits.MaxTerms {
		warnings = append(warnings, fmt.Sprintf("query has %d terms, limit is %d", m.TermCount, limits.MaxTerms))
	}
	if m.OperatorCount > limits.MaxOperators {
		warnings = append(warnings, fmt.Sprintf("query has %d operators, limit is %d", m.OperatorCount, limits.MaxOperators))
	}
	if m.NestingDepth > limits.MaxNesting {
		warnings = append(warnings, fmt.Sprintf("query nests %d levels deep, limit is %d", m.NestingDepth, limits.MaxNesting))
	}
	if m.WildcardCount > limits.MaxWildcards {
		warnings = append(warnings, fmt.Sprintf("query has %d wildcards, limit is %d", m.WildcardCount, limits.MaxWildcards))
	}
	if m.EstimatedCost > limits.MaxCost {
		warnings = append(warnings, fmt.Sprintf("estimated cost %.1f exceeds limit %.1f", m.EstimatedCost, limits.MaxCost))
	}
	if len(warnings) > 0 {
		return LevelTooComplex, warnings
	}

	switch {
	case m.EstimatedCost > 0.7*limits.MaxCost:
		return LevelComplex, []string{"query is approaching the cost limit"}
	case m.EstimatedCost > 0.3*limits.MaxCost:
		return LevelModerate, nil
	default:
		return LevelSimple, nil
	}
}

// countTerms strips boolean keywords, parentheses and quote characters, then
// counts the remaining whitespace-delimited tokens.
func countTerms(query string) int {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '(', ')', '"':
			return ' '
		}
		return r
	}, query)

	count := 0
	for _, tok := range strings.Fields(cleaned) {
		if isBooleanKeyword(tok) {
			continue
		}
		count++
	}
	return count
}

// countOperators counts whole-word AND/OR/NOT occurrences, case-insensitive.
func countOperators(query string) int {
	count := 0
	for _, tok := range strings.Fields(query) {
		if isBooleanKeyword(strings.Trim(tok, "()")) {
			count++
		}
	}
	return count
}

func isBooleanKeyword(tok string) bool {
	switch strings.ToUpper(tok) {
	case "AND", "OR", "NOT":
		return true
	}
	return false
}

// maxNestingDepth scans left-to-right tracking balanced parenthesis depth.
// Depth floors at zero on an unmatched close.
func maxNestingDepth(query string) int {
	depth, maxDepth := 0, 0
	for _, r := range query {
		switch r {
		case '(':
			depth++
			if depth > maxDepth {
				maxDepth = depth
			}
		case ')':
			if depth > 0 {
				depth--
			}
		}
	}
	return maxDepth
}

// countWildcards counts '*' characters outside double-quoted spans. Quote
// toggling is escape-aware: a backslash suppresses the toggle and consumes
// exactly one following character.
func countWildcards(query string) int {
	count := 0
	inQuote := false
	escaped := false
	for _, r := range query {
		if escaped {
			escaped = false
			continue
		}
		switch r {
		case '\\':
			escaped = true
		case '"':
			inQuote = !inQuote
		case '*':
			if !inQuote {
				count++
			}
		}
	}
	return count
}

// countPhrases counts closed double-quoted spans. Escaped quotes inside a
// phrase do not terminate it.
func countPhrases(query string) int {
	count := 0
	inQuote := false
	escaped := false
	for _, r := range query {
		if escaped {
			escaped = false
			continue
		}
		switch r {
		case '\\':
			escaped = true
		case '"':
			if inQuote {
				count++
			}
			inQuote = !inQuote
		}
	}
	return count
}

func countSpecialChars(query string) int {
	count := 0
	for _, r := range query {
		if strings.ContainsRune(specialChars, r) {
			count++
		}
	}
	return count
}
