package strategy

import "strings"

// Fallback offers progressively less restrictive reformulations of a query
// for use when stricter formulations return too little. Its primary
// transform is whole-phrase search; Variants exposes the full menu.
type Fallback struct{}

func (Fallback) Name() string        { return "fallback" }
func (Fallback) Description() string { return "less restrictive reformulations for low-recall queries" }

// Transform returns the whole input as one quoted phrase.
func (Fallback) Transform(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return query
	}
	return quote(strings.Trim(query, `"`))
}

// Variants returns the alternate reformulations in decreasing strictness:
// whole phrase, prefix match on every term, OR-joined terms, and stop-word
// filtered keywords.
func (f Fallback) Variants(query string) []string {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	return []string{
		f.Transform(query),
		PrefixMatch(query),
		OrTerms(query),
		Keywords(query),
	}
}

// PrefixMatch appends a trailing wildcard to every term that does not
// already carry one.
func PrefixMatch(query string) string {
	terms := termTexts(query)
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if strings.HasSuffix(t, "*") {
			out = append(out, t)
			continue
		}
		if IsCodePattern(t) {
			out = append(out, quote(t)+"*")
			continue
		}
		out = append(out, t+"*")
	}
	return strings.Join(out, " ")
}

// OrTerms joins all terms with OR, widening recall to any-term match.
func OrTerms(query string) string {
	terms := termTexts(query)
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if IsCodePattern(t) {
			out = append(out, quote(t))
			continue
		}
		out = append(out, t)
	}
	return strings.Join(out, " OR ")
}

// stopWords are skipped during keyword extraction unless the term itself is
// a code pattern.
var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "is": {}, "are": {}, "was": {},
	"in": {}, "on": {}, "of": {}, "to": {}, "for": {}, "with": {},
	"and": {}, "or": {}, "not": {}, "how": {}, "what": {}, "where": {},
	"do": {}, "does": {}, "i": {}, "it": {}, "this": {}, "that": {},
}

// Keywords extracts significant terms, drops stop words, and OR-joins the
// remainder. Code patterns are never treated as stop words.
func Keywords(query string) string {
	terms := termTexts(query)
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if _, stop := stopWords[strings.ToLower(t)]; stop && !IsCodePattern(t) {
			continue
		}
		if IsCodePattern(t) {
			out = append(out, quote(t))
			continue
		}
		out = append(out, t)
	}
	if len(out) == 0 {
		return ""
	}
	return strings.Join(out, " OR ")
}

// termTexts extracts term texts with quote-aware splitting, dropping
// operator keywords.
func termTexts(query string) []string {
	var terms []string
	for _, p := range extractTerms(query) {
		text := strings.TrimSpace(p.text)
		if text == "" {
			continue
		}
		switch strings.ToUpper(text) {
		case "AND", "OR", "NOT":
			continue
		}
		text = strings.Trim(text, "()")
		if text == "" {
			continue
		}
		if p.phrase && strings.ContainsAny(text, " \t") {
			// keep extracted phrases atomic
			terms = append(terms, quote(text))
			continue
		}
		terms = append(terms, text)
	}
	return terms
}
