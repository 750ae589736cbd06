package sanitize

import (
	"fmt"
	"strings"

	"github.com/codesift/codesift-mcp/pkg/types"
)

// Config controls which query features the sanitizer admits.
type Config struct {
	AllowWildcards         bool
	AllowColumnFilters     bool
	AllowInitialTokenMatch bool
	MaxWildcards           int
	MaxPhraseLength        int
}

// Defaults applied when a Config field is zero.
const (
	DefaultMaxWildcards    = 5
	DefaultMaxPhraseLength = 100
)

// maxTotalTerms is the fixed ceiling on extracted terms across all token
// kinds. It is not configurable: it bounds the work one query can demand
// from the index regardless of caller configuration.
const maxTotalTerms = 50

// EmptyQuery is the canonical sentinel for input that sanitizes to nothing.
// It is a valid match-nothing phrase in the index query language.
const EmptyQuery = `""`

// DefaultConfig returns the default sanitization settings.
func DefaultConfig() Config {
	return Config{
		AllowWildcards:         true,
		AllowColumnFilters:     false,
		AllowInitialTokenMatch: true,
		MaxWildcards:           DefaultMaxWildcards,
		MaxPhraseLength:        DefaultMaxPhraseLength,
	}
}

func (c Config) withDefaults() Config {
	if c.MaxWildcards <= 0 {
		c.MaxWildcards = DefaultMaxWildcards
	}
	if c.MaxPhraseLength <= 0 {
		c.MaxPhraseLength = DefaultMaxPhraseLength
	}
	return c
}

// Sanitize transforms raw query text into safe index query syntax. It fails
// with a *types.ValidationError when the query exceeds the wildcard limit or
// the fixed term ceiling. Empty or fully-consumed input yields EmptyQuery.
func Sanitize(query string, cfg Config) (string, error) {
	cfg = cfg.withDefaults()

	tokens := scan(query, cfg)
	if err := validate(tokens, cfg); err != nil {
		return "", err
	}

	out := reconstruct(tokens)
	if out == "" {
		return EmptyQuery, nil
	}
	return out, nil
}

// IsQuerySafe runs the sanitizer without side effects, reporting whether the
// query would be accepted and, if not, why.
func IsQuerySafe(query string, cfg Config) (bool, string) {
	if _, err := Sanitize(query, cfg); err != nil {
		return false, err.Error()
	}
	return true, ""
}

func validate(tokens []token, cfg Config) error {
	wildcards := 0
	terms := 0
	for _, t := range tokens {
		switch t.kind {
		case kindWildcard:
			wildcards++
			terms++
		case kindTerm, kindPhrase, kindInitial:
			terms++
		case kindNear:
			terms += len(t.nearTerms)
		}
	}
	if wildcards > cfg.MaxWildcards {
		return &types.ValidationError{Limit: "wildcards", Actual: wildcards, Allowed: cfg.MaxWildcards}
	}
	if terms > maxTotalTerms {
		return &types.ValidationError{Limit: "terms", Actual: terms, Allowed: maxTotalTerms}
	}
	return nil
}

// reconstruct renders tokens back to query text in original order. Operators
// and parentheses pass through verbatim; everything else is emitted in its
// neutralized form.
func reconstruct(tokens []token) string {
	parts := make([]string, 0, len(tokens))
	for _, t := range tokens {
		switch t.kind {
		case kindOperator:
			parts = append(parts, t.op)
		case kindOpenParen:
			parts = append(parts, "(")
		case kindCloseParen:
			parts = append(parts, ")")
		case kindPhrase:
			parts = append(parts, quoteLiteral(t.term))
		case kindWildcard:
			parts = append(parts, maybeQuote(t.term)+"*")
		case kindInitial:
			parts = append(parts, "^"+maybeQuote(t.term))
		case kindFilter:
			parts = append(parts, t.field+":"+maybeQuote(t.value))
		case kindNear:
			parts = append(parts, renderNear(t))
		case kindTerm:
			if t.term == "" {
				continue
			}
			parts = append(parts, maybeQuote(t.term))
		}
	}
	return strings.Join(parts, " ")
}

func renderNear(t token) string {
	quoted := make([]string, len(t.nearTerms))
	for i, term := range t.nearTerms {
		if isNumeric(term) {
			quoted[i] = term
			continue
		}
		quoted[i] = quoteLiteral(term)
	}
	return fmt.Sprintf("NEAR(%s, %d)", strings.Join(quoted, " "), t.nearDistance)
}

// quotingRequired lists characters that force a term into a quoted literal:
// index syntax metacharacters and code-identifier punctuation that the
// tokenizer would otherwise split or interpret.
const quotingRequired = "$_->:.@+#;*()[]{}\""

// maybeQuote quotes a term when it contains a character from the quoting
// set, contains whitespace, or collides with a reserved keyword. Bare terms
// pass through unchanged.
func maybeQuote(term string) string {
	if term == "" {
		return quoteLiteral(term)
	}
	if strings.ContainsAny(term, quotingRequired) || strings.ContainsAny(term, " \t\n") {
		return quoteLiteral(term)
	}
	if isReserved(term) {
		return quoteLiteral(term)
	}
	return term
}

// quoteLiteral wraps a term in double quotes, doubling embedded quotes.
func quoteLiteral(term string) string {
	return `"` + strings.ReplaceAll(term, `"`, `""`) + `"`
}

func isReserved(term string) bool {
	switch strings.ToUpper(term) {
	case "AND", "OR", "NOT", "NEAR":
		return true
	}
	return false
}
