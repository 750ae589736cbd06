package sanitize

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codesift/codesift-mcp/pkg/types"
)

func TestSanitizeBasic(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"PlainTerms", "login logout", "login logout"},
		{"Operators", "login AND logout", "login AND logout"},
		{"OperatorCaseNormalized", "login and logout or session", "login AND logout OR session"},
		{"Parens", "(login OR logout) AND session", "( login OR logout ) AND session"},
		{"Phrase", `"user login"`, `"user login"`},
		{"PhraseWithDoubledQuote", `"say ""hi"""`, `"say ""hi"""`},
		{"TrailingWildcard", "auth*", "auth*"},
		{"WildcardOnSpecialTerm", "get_user*", `"get_user"*`},
		{"InteriorStarQuoted", "a*b", `"a*b"`},
		{"LoneStarQuoted", "*", `"*"`},
		{"CodeTermQuoted", "$user->getName", `"$user->getName"`},
		{"NamespaceTermQuoted", "std::vector", `"std::vector"`},
		{"ReservedCollisionQuoted", `x "AND" y`, `x "AND" y`},
		{"Near", "NEAR(term1 term2)", `NEAR("term1" "term2", 10)`},
		{"NearLowercase", "near(a b, 3)", `NEAR("a" "b", 3)`},
		{"NearNumericTermBare", "NEAR(a 42 b)", `NEAR("a" 42 "b", 10)`},
		{"InitialToken", "^main", "^main"},
		{"InitialTokenStripsWildcard", "^main*", "^main"},
		{"InitialTokenSpecial", "^get_user", `^"get_user"`},
		{"FiltersStrippedToValues", "title:hello content:world", "hello world"},
		{"NegatedFilterStripped", "-title:hello", "hello"},
		{"Empty", "", `""`},
		{"Whitespace", "   \t ", `""`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Sanitize(tt.query, cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSanitizeColumnFiltersAllowed(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AllowColumnFilters = true

	tests := []struct {
		query string
		want  string
	}{
		{"title:hello", "title:hello"},
		{"-title:hello", "-title:hello"},
		{`title:"hello world"`, `title:"hello world"`},
		{"{name overview}:auth", "{name overview}:auth"},
		{"std::vector", `"std::vector"`}, // namespace separator is not a filter
	}
	for _, tt := range tests {
		got, err := Sanitize(tt.query, cfg)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "query %q", tt.query)
	}
}

func TestSanitizeBraceFilterDisallowed(t *testing.T) {
	got, err := Sanitize("{name overview}:auth", DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, "auth", got)
}

func TestSanitizeWildcardLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxWildcards = 2

	_, err := Sanitize("a* b* c*", cfg)
	require.Error(t, err)

	var verr *types.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "wildcards", verr.Limit)
	assert.Equal(t, 3, verr.Actual)
	assert.Equal(t, 2, verr.Allowed)
}

func TestSanitizeTermCeiling(t *testing.T) {
	terms := make([]string, 60)
	for i := range terms {
		terms[i] = string(rune('a' + i%26))
	}
	_, err := Sanitize(strings.Join(terms, " "), DefaultConfig())
	require.Error(t, err)

	var verr *types.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "terms", verr.Limit)
}

func TestSanitizeWildcardsDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AllowWildcards = false

	got, err := Sanitize("auth* session", cfg)
	require.NoError(t, err)
	assert.Equal(t, "auth session", got)
}

func TestSanitizeInitialTokenDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AllowInitialTokenMatch = false

	got, err := Sanitize("^main rest", cfg)
	require.NoError(t, err)
	assert.Equal(t, "main rest", got)
}

func TestSanitizePhraseTruncation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxPhraseLength = 5

	got, err := Sanitize(`"abcdefghij"`, cfg)
	require.NoError(t, err)
	assert.Equal(t, `"abcde"`, got)
}

func TestSanitizeUnterminatedQuote(t *testing.T) {
	got, err := Sanitize(`abc"; drop`, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, `abc "; drop"`, got)
}

// A raw `";` sequence must never appear bare in sanitized output, only
// inside a quoted span.
func TestSanitizeNeutralizesQuoteSemicolon(t *testing.T) {
	inputs := []string{
		`foo"; DELETE`,
		`"phrase"; extra`,
		`term1 term2";`,
	}
	for _, q := range inputs {
		got, err := Sanitize(q, DefaultConfig())
		require.NoError(t, err, "query %q", q)

		// verify every ';' sits inside a quoted span
		inQuote := false
		for i := 0; i < len(got); i++ {
			switch got[i] {
			case '"':
				inQuote = !inQuote
			case ';':
				assert.True(t, inQuote, "bare ';' in %q (from %q)", got, q)
			}
		}
	}
}

func TestSanitizeIdempotent(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AllowColumnFilters = true

	queries := []string{
		"login AND logout",
		`"user login"`,
		"auth* get_user*",
		"NEAR(term1 term2)",
		"NEAR(a b, 3)",
		"^main ^get_user",
		"title:hello",
		`title:"hello world"`,
		"$user->getName",
		"(a OR b) AND c",
		"std::vector NOT list",
		`"say ""hi"""`,
		"",
	}
	for _, q := range queries {
		once, err := Sanitize(q, cfg)
		require.NoError(t, err, "first pass on %q", q)
		twice, err := Sanitize(once, cfg)
		require.NoError(t, err, "second pass on %q", once)
		assert.Equal(t, once, twice, "not idempotent for %q", q)
	}
}

func TestIsQuerySafe(t *testing.T) {
	ok, msg := IsQuerySafe("login AND logout", DefaultConfig())
	assert.True(t, ok)
	assert.Empty(t, msg)

	cfg := DefaultConfig()
	cfg.MaxWildcards = 1
	ok, msg = IsQuerySafe("a* b*", cfg)
	assert.False(t, ok)
	assert.Contains(t, msg, "wildcards")
}

// A NEAR clause containing quoted phrases must keep them inside the clause;
// re-sanitizing never wraps them again.
func TestSanitizeNearQuotedTermsStable(t *testing.T) {
	got, err := Sanitize(`NEAR("term1" "term2", 10)`, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, `NEAR("term1" "term2", 10)`, got)
}
