package progressive

import (
	"strings"

	"github.com/codesift/codesift-mcp/internal/strategy"
)

// DefaultStrategies returns the stock four-step cascade, most to least
// specific: exact query, code-aware OR of all terms, prefix match on longer
// terms, then quoted partial terms. Callers needing a different policy build
// their own list.
func DefaultStrategies() []Strategy {
	return []Strategy{
		{
			Name:        "exact",
			Description: "query as written",
			Transform:   func(q string) string { return q },
		},
		{
			Name:        "fuzzy_terms",
			Description: "any-term match with code identifiers quoted",
			Transform:   fuzzyTerms,
		},
		{
			Name:        "prefix_match",
			Description: "trailing-wildcard match on terms of three or more characters",
			Transform:   prefixTerms,
		},
		{
			Name:        "partial_terms",
			Description: "any-term match on quoted terms of two or more characters",
			Transform:   partialTerms,
		},
	}
}

func fuzzyTerms(query string) string {
	terms := splitTerms(query)
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if strategy.IsCodePattern(t) {
			out = append(out, quote(t))
			continue
		}
		out = append(out, t)
	}
	return strings.Join(out, " OR ")
}

func prefixTerms(query string) string {
	terms := splitTerms(query)
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if len(t) < 3 {
			continue
		}
		if strategy.IsCodePattern(t) {
			out = append(out, quote(t)+"*")
			continue
		}
		out = append(out, strings.TrimSuffix(t, "*")+"*")
	}
	return strings.Join(out, " OR ")
}

func partialTerms(query string) string {
	terms := splitTerms(query)
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if len(t) < 2 {
			continue
		}
		out = append(out, quote(t))
	}
	return strings.Join(out, " OR ")
}

// splitTerms breaks the raw query on whitespace, dropping operator keywords
// and stray quotes so reformulations start from bare terms.
func splitTerms(query string) []string {
	var terms []string
	for _, f := range strings.Fields(query) {
		f = strings.Trim(f, `"()`)
		if f == "" {
			continue
		}
		switch strings.ToUpper(f) {
		case "AND", "OR", "NOT":
			continue
		}
		terms = append(terms, f)
	}
	return terms
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
