package complexity

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeEmptyQuery(t *testing.T) {
	for _, q := range []string{"", "   ", "\t\n"} {
		m := Analyze(q, DefaultLimits())
		assert.Equal(t, LevelSimple, m.Level)
		assert.Zero(t, m.TermCount)
		assert.Zero(t, m.EstimatedCost)
		assert.Empty(t, m.Warnings)
	}
}

func TestAnalyzeCounts(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		terms     int
		operators int
		wildcards int
		phrases   int
		nesting   int
	}{
		{
			name:  "PlainTerms",
			query: "login logout session",
			terms: 3,
		},
		{
			name:      "BooleanOperators",
			query:     "login AND logout OR session NOT token",
			terms:     4,
			operators: 3,
		},
		{
			name:      "QuotedWildcardExcluded",
			query:     `test* "not a wildcard*" real*`,
			terms:     5,
			wildcards: 2,
			phrases:   1,
		},
		{
			name:    "Nesting",
			query:   "(a AND (b OR (c NOT d)))",
			nesting: 3,
			// parens stripped before term counting
			terms:     4,
			operators: 3,
		},
		{
			name:    "UnmatchedCloseFloorsAtZero",
			query:   ")) (a)",
			nesting: 1,
			terms:   1,
		},
		{
			name:      "EscapedQuoteDoesNotToggle",
			query:     `foo\" bar* "quoted*"`,
			terms:     3,
			wildcards: 1,
			phrases:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Analyze(tt.query, DefaultLimits())
			assert.Equal(t, tt.terms, m.TermCount, "terms")
			assert.Equal(t, tt.operators, m.OperatorCount, "operators")
			assert.Equal(t, tt.wildcards, m.WildcardCount, "wildcards")
			assert.Equal(t, tt.phrases, m.PhraseCount, "phrases")
			assert.Equal(t, tt.nesting, m.NestingDepth, "nesting")
		})
	}
}

func TestEstimatedCostWeights(t *testing.T) {
	m := Analyze("alpha beta", DefaultLimits())
	assert.InDelta(t, 2.0, m.EstimatedCost, 1e-9)

	m = Analyze("alpha AND beta", DefaultLimits())
	assert.InDelta(t, 4.0, m.EstimatedCost, 1e-9)

	m = Analyze("alpha*", DefaultLimits())
	assert.InDelta(t, 1.0+5.0, m.EstimatedCost, 1e-9)

	m = Analyze(`"a phrase"`, DefaultLimits())
	// two phrase terms + one phrase
	assert.InDelta(t, 2.0+3.0, m.EstimatedCost, 1e-9)

	m = Analyze("((x))", DefaultLimits())
	// one term + 2^2 * 4 nesting penalty
	assert.InDelta(t, 1.0+16.0, m.EstimatedCost, 1e-9)
}

// Cost must be non-negative and monotonically non-decreasing in each
// contributing count.
func TestCostMonotonicity(t *testing.T) {
	limits := DefaultLimits()

	prev := 0.0
	for n := 1; n <= 8; n++ {
		q := strings.TrimSpace(strings.Repeat("term ", n))
		cost := Analyze(q, limits).EstimatedCost
		require.GreaterOrEqual(t, cost, prev)
		require.GreaterOrEqual(t, cost, 0.0)
		prev = cost
	}

	// Quadratic in nesting depth: marginal cost grows with depth.
	d1 := Analyze("(x)", limits).EstimatedCost
	d2 := Analyze("((x))", limits).EstimatedCost
	d3 := Analyze("(((x)))", limits).EstimatedCost
	require.Greater(t, d3-d2, d2-d1)
}

func TestClassifyLevels(t *testing.T) {
	limits := Limits{MaxCost: 10}

	assert.Equal(t, LevelSimple, Analyze("one two", limits).Level)
	assert.Equal(t, LevelModerate, Analyze("one two three four", limits).Level)

	m := Analyze("one two three four five six seven eight", limits)
	assert.Equal(t, LevelComplex, m.Level)
	require.Len(t, m.Warnings, 1)

	m = Analyze("a* b* c*", limits)
	assert.Equal(t, LevelTooComplex, m.Level)
	assert.NotEmpty(t, m.Warnings)
}

func TestTooComplexWarningPerViolation(t *testing.T) {
	limits := Limits{MaxTerms: 2, MaxWildcards: 1}
	m := Analyze("a* b* c* d", limits)
	assert.Equal(t, LevelTooComplex, m.Level)
	// one warning for terms, one for wildcards, one for cost if exceeded
	assert.GreaterOrEqual(t, len(m.Warnings), 2)
}

func TestIsTooComplex(t *testing.T) {
	assert.False(t, IsTooComplex("simple query", DefaultLimits()))
	assert.True(t, IsTooComplex(strings.Repeat("t ", 60), DefaultLimits()))
}

func TestSuggestSimplification(t *testing.T) {
	sugg := SuggestSimplification("a* b* c* d*", DefaultLimits())
	require.NotEmpty(t, sugg)
	assert.Contains(t, sugg[0], "wildcard")

	sugg = SuggestSimplification("((((((x))))))", DefaultLimits())
	require.NotEmpty(t, sugg)
	assert.Contains(t, sugg[0], "parentheses")

	// TooComplex with no specific rule matched gets the generic fallback.
	limits := Limits{MaxTerms: 1}
	sugg = SuggestSimplification("two terms", limits)
	require.Len(t, sugg, 1)
	assert.Contains(t, sugg[0], "simplify")

	assert.Empty(t, SuggestSimplification("fine", DefaultLimits()))
}

func TestSpecialCharCount(t *testing.T) {
	m := Analyze("$user->name obj.field #tag", DefaultLimits())
	// $, the '-' in '->', '.', '#'
	assert.Equal(t, 4, m.SpecialCharCount)
}
