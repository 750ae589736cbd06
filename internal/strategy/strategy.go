package strategy

import (
	"strings"
	"unicode"
)

// Strategy transforms caller query text into index query syntax. Transforms
// are pure: no strategy holds mutable state, so one instance serves
// concurrent callers.
type Strategy interface {
	Name() string
	Description() string
	Transform(query string) string
}

// Default passes the query through untouched apart from balancing embedded
// quotes. It suits callers that already write the target syntax.
type Default struct{}

func (Default) Name() string        { return "default" }
func (Default) Description() string { return "passthrough with quote balancing" }

func (Default) Transform(query string) string {
	query = strings.TrimSpace(query)
	if strings.Count(query, `"`)%2 == 0 {
		return query
	}
	// unbalanced quotes would derail the index tokenizer; double them all so
	// each becomes a literal
	return strings.ReplaceAll(query, `"`, `""`)
}

// CodeAware tokenizes with an eye for source-code identifiers: tokens
// carrying identifier punctuation are quoted as atomic literals while
// operators, NEAR clauses and existing phrases pass through.
type CodeAware struct{}

func (CodeAware) Name() string        { return "code_aware" }
func (CodeAware) Description() string { return "quotes code identifiers, preserves query syntax" }

func (CodeAware) Transform(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return query
	}

	// already a single quoted phrase: nothing to do
	if isSinglePhrase(query) {
		return query
	}

	if hasQuerySyntax(query) {
		return transformSyntaxAware(query)
	}

	// free-form input: extract terms (quote-aware) and quote code patterns
	// and multi-word phrases
	parts := extractTerms(query)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if IsCodePattern(p.text) || (p.phrase && strings.ContainsAny(p.text, " \t")) {
			out = append(out, quote(p.text))
			continue
		}
		if p.phrase {
			out = append(out, quote(p.text))
			continue
		}
		out = append(out, p.text)
	}
	return strings.Join(out, " ")
}

// codeSpecials are single characters whose presence marks a token as a code
// identifier that must stay atomic.
const codeSpecials = "$_@#"

// IsCodePattern reports whether a token carries source-code-identifier
// punctuation and must be treated as an atomic literal.
func IsCodePattern(token string) bool {
	if strings.ContainsAny(token, codeSpecials) {
		return true
	}
	if strings.Contains(token, "->") || strings.Contains(token, "::") {
		return true
	}
	// method calls and qualified names: foo.bar, getName()
	if strings.Contains(token, "(") || strings.Contains(token, ")") {
		return true
	}
	if strings.Contains(token, ".") && !isNumericToken(token) {
		return true
	}
	return false
}

func isNumericToken(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) && r != '.' {
			return false
		}
	}
	return s != ""
}

// isSinglePhrase reports whether the whole input is one quoted phrase with
// no interior unescaped quote.
func isSinglePhrase(query string) bool {
	if len(query) < 2 || !strings.HasPrefix(query, `"`) || !strings.HasSuffix(query, `"`) {
		return false
	}
	interior := query[1 : len(query)-1]
	return !strings.Contains(strings.ReplaceAll(interior, `""`, ``), `"`)
}

// hasQuerySyntax reports whether the input already uses boolean, proximity,
// wildcard or initial-match syntax.
func hasQuerySyntax(query string) bool {
	if strings.Contains(query, "*") || strings.Contains(query, "^") {
		return true
	}
	upper := strings.ToUpper(query)
	for _, tok := range strings.Fields(upper) {
		trimmed := strings.Trim(tok, "()")
		switch trimmed {
		case "AND", "OR", "NOT":
			return true
		}
		if strings.HasPrefix(trimmed, "NEAR(") {
			return true
		}
	}
	return false
}

// transformSyntaxAware walks whitespace tokens, quoting only code-pattern
// tokens while leaving operators, NEAR clauses, phrases, wildcards and
// parentheses untouched.
func transformSyntaxAware(query string) string {
	fields := splitPreservingQuotes(query)
	out := make([]string, 0, len(fields))
	for _, tok := range fields {
		if tok == "" {
			continue
		}
		upper := strings.ToUpper(tok)
		switch {
		case upper == "AND" || upper == "OR" || upper == "NOT":
			out = append(out, upper)
		case strings.HasPrefix(upper, "NEAR("):
			out = append(out, tok)
		case strings.HasPrefix(tok, `"`):
			out = append(out, tok)
		case strings.HasSuffix(tok, "*"), strings.HasPrefix(tok, "^"):
			out = append(out, tok)
		case tok == "(" || tok == ")":
			out = append(out, tok)
		case IsCodePattern(tok):
			out = append(out, quote(tok))
		default:
			out = append(out, tok)
		}
	}
	return strings.Join(out, " ")
}

type extracted struct {
	text   string
	phrase bool
}

// extractTerms splits on whitespace while keeping quoted spans intact.
func extractTerms(query string) []extracted {
	var parts []extracted
	var b strings.Builder
	inQuote := false

	flush := func(phrase bool) {
		if b.Len() > 0 {
			parts = append(parts, extracted{text: b.String(), phrase: phrase})
			b.Reset()
		}
	}

	for _, r := range query {
		switch {
		case r == '"':
			if inQuote {
				flush(true)
				inQuote = false
			} else {
				flush(false)
				inQuote = true
			}
		case unicode.IsSpace(r) && !inQuote:
			flush(false)
		default:
			b.WriteRune(r)
		}
	}
	flush(inQuote)
	return parts
}

// splitPreservingQuotes splits on whitespace but keeps quoted spans (and any
// attached prefix like a NEAR clause) as single tokens.
func splitPreservingQuotes(query string) []string {
	var fields []string
	var b strings.Builder
	inQuote := false
	depth := 0 // inside NEAR(...) parentheses

	for _, r := range query {
		switch {
		case r == '"':
			inQuote = !inQuote
			b.WriteRune(r)
		case r == '(' && b.Len() >= 4 && strings.EqualFold(b.String()[b.Len()-4:], "NEAR"):
			depth++
			b.WriteRune(r)
		case r == ')' && depth > 0 && !inQuote:
			depth--
			b.WriteRune(r)
		case unicode.IsSpace(r) && !inQuote && depth == 0:
			if b.Len() > 0 {
				fields = append(fields, b.String())
				b.Reset()
			}
		default:
			b.WriteRune(r)
		}
	}
	if b.Len() > 0 {
		fields = append(fields, b.String())
	}
	return fields
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
