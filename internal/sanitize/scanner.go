package sanitize

import (
	"strings"
	"unicode"
)

type tokenKind int

const (
	kindTerm tokenKind = iota
	kindWildcard
	kindPhrase
	kindNear
	kindFilter
	kindInitial
	kindOperator
	kindOpenParen
	kindCloseParen
)

// token is one classified span of the input, in original order. Exactly one
// field group is populated depending on kind.
type token struct {
	kind tokenKind

	// term content for kindTerm, kindWildcard, kindPhrase, kindInitial
	term string

	// normalized operator text for kindOperator
	op string

	// column filter parts for kindFilter; field keeps any '-' prefix or
	// '{group}' braces
	field string
	value string

	// NEAR clause parts for kindNear
	nearTerms    []string
	nearDistance int
}

// defaultNearDistance is applied when a NEAR clause omits its distance.
const defaultNearDistance = 10

type scanner struct {
	src []rune
	pos int
	cfg Config
}

// scan walks the query once, left to right, producing classified tokens in
// original order. Extraction order ambiguities of a multi-pass design cannot
// arise: each span is consumed exactly once at its position.
func scan(query string, cfg Config) []token {
	s := &scanner{src: []rune(query), cfg: cfg}

	var tokens []token
	for s.pos < len(s.src) {
		r := s.src[s.pos]
		switch {
		case unicode.IsSpace(r):
			s.pos++
		case r == '(':
			tokens = append(tokens, token{kind: kindOpenParen})
			s.pos++
		case r == ')':
			tokens = append(tokens, token{kind: kindCloseParen})
			s.pos++
		case r == '"':
			s.pos++
			tokens = append(tokens, s.scanPhrase())
		case r == '^' && cfg.AllowInitialTokenMatch:
			s.pos++
			if tok, ok := s.scanInitial(); ok {
				tokens = append(tokens, tok)
			}
		case r == '{':
			tokens = append(tokens, s.scanBraceFilter())
		default:
			if s.peekNearClause() {
				tokens = append(tokens, s.scanNear())
				break
			}
			if tok, ok := s.scanWord(); ok {
				tokens = append(tokens, tok)
			}
		}
	}
	return tokens
}

// scanQuoted consumes a double-quoted span whose opening quote has already
// been consumed. Doubled quotes escape a literal quote. An unterminated span
// extends to the end of input.
func (s *scanner) scanQuoted() string {
	var b strings.Builder
	for s.pos < len(s.src) {
		r := s.src[s.pos]
		if r == '"' {
			if s.pos+1 < len(s.src) && s.src[s.pos+1] == '"' {
				b.WriteRune('"')
				s.pos += 2
				continue
			}
			s.pos++
			return b.String()
		}
		b.WriteRune(r)
		s.pos++
	}
	return b.String()
}

func (s *scanner) scanPhrase() token {
	content := s.scanQuoted()
	if s.cfg.MaxPhraseLength > 0 {
		if runes := []rune(content); len(runes) > s.cfg.MaxPhraseLength {
			content = string(runes[:s.cfg.MaxPhraseLength])
		}
	}
	// a phrase immediately followed by '*' is a prefix match on the phrase
	if s.pos < len(s.src) && s.src[s.pos] == '*' {
		s.pos++
		if s.cfg.AllowWildcards {
			return token{kind: kindWildcard, term: content}
		}
	}
	return token{kind: kindPhrase, term: content}
}

// scanInitial consumes a '^term' initial-token marker whose '^' has already
// been consumed. A trailing wildcard is stripped: prefix match combined with
// initial-token match is not supported by the index.
func (s *scanner) scanInitial() (token, bool) {
	var content string
	if s.pos < len(s.src) && s.src[s.pos] == '"' {
		s.pos++
		content = s.scanQuoted()
	} else {
		content = s.scanBareWord()
	}
	content = strings.TrimRight(content, "*")
	if content == "" {
		return token{}, false
	}
	return token{kind: kindInitial, term: content}, true
}

// scanBraceFilter consumes a '{group}:value' column filter. Malformed input
// degrades to a plain term of the consumed text.
func (s *scanner) scanBraceFilter() token {
	start := s.pos
	s.pos++ // consume '{'
	for s.pos < len(s.src) && s.src[s.pos] != '}' {
		s.pos++
	}
	if s.pos >= len(s.src) || s.src[s.pos] != '}' {
		// no closing brace: plain term
		return token{kind: kindTerm, term: string(s.src[start:s.pos])}
	}
	s.pos++ // consume '}'
	field := string(s.src[start:s.pos])
	if s.pos >= len(s.src) || s.src[s.pos] != ':' {
		return token{kind: kindTerm, term: field}
	}
	s.pos++ // consume ':'

	var value string
	if s.pos < len(s.src) && s.src[s.pos] == '"' {
		s.pos++
		value = s.scanQuoted()
	} else {
		value = s.scanBareWord()
	}
	if value == "" {
		return token{kind: kindTerm, term: field}
	}
	if !s.cfg.AllowColumnFilters {
		return token{kind: kindTerm, term: value}
	}
	return token{kind: kindFilter, field: field, value: value}
}

// peekNearClause reports whether the input at the current position begins a
// NEAR(...) clause, case-insensitive.
func (s *scanner) peekNearClause() bool {
	if s.pos+5 > len(s.src) {
		return false
	}
	word := strings.ToUpper(string(s.src[s.pos : s.pos+5]))
	return word == "NEAR("
}

// scanNear consumes a NEAR(terms[, distance]) clause. Inner terms are split
// on whitespace; surrounding quotes on a term are stripped so re-sanitizing
// an already-sanitized clause is a no-op. A trailing numeric element after a
// comma is the distance, defaulting to 10.
func (s *scanner) scanNear() token {
	s.pos += 5 // consume 'NEAR('

	var b strings.Builder
	inQuote := false
	for s.pos < len(s.src) {
		r := s.src[s.pos]
		if r == '"' {
			inQuote = !inQuote
		}
		if r == ')' && !inQuote {
			s.pos++
			break
		}
		b.WriteRune(r)
		s.pos++
	}

	inner := b.String()
	distance := defaultNearDistance
	termsPart := inner
	if idx := strings.LastIndex(inner, ","); idx >= 0 {
		tail := strings.TrimSpace(inner[idx+1:])
		if isNumeric(tail) {
			termsPart = inner[:idx]
			distance = parseInt(tail, defaultNearDistance)
		}
	}

	var terms []string
	for _, raw := range strings.Fields(termsPart) {
		raw = strings.Trim(raw, ",")
		if raw == "" {
			continue
		}
		terms = append(terms, unquote(raw))
	}
	if len(terms) == 0 {
		// degenerate clause: drop it rather than emit invalid syntax
		return token{kind: kindTerm, term: ""}
	}
	return token{kind: kindNear, nearTerms: terms, nearDistance: distance}
}

// scanBareWord reads until whitespace, parenthesis or quote.
func (s *scanner) scanBareWord() string {
	var b strings.Builder
	for s.pos < len(s.src) {
		r := s.src[s.pos]
		if unicode.IsSpace(r) || r == '(' || r == ')' || r == '"' {
			break
		}
		b.WriteRune(r)
		s.pos++
	}
	return b.String()
}

// scanWord reads one word and classifies it as operator, column filter,
// trailing-wildcard term, or plain term. A quoted filter value
// (field:"some value") is consumed as part of the word.
func (s *scanner) scanWord() (token, bool) {
	var b strings.Builder
	for s.pos < len(s.src) {
		r := s.src[s.pos]
		if unicode.IsSpace(r) || r == '(' || r == ')' {
			break
		}
		if r == '"' {
			if strings.HasSuffix(b.String(), ":") {
				s.pos++
				value := s.scanQuoted()
				return s.classifyFilter(strings.TrimSuffix(b.String(), ":"), value)
			}
			break
		}
		b.WriteRune(r)
		s.pos++
	}
	return s.classifyWord(b.String())
}

func (s *scanner) classifyWord(word string) (token, bool) {
	if word == "" {
		return token{}, false
	}

	if isOperator(word) {
		return token{kind: kindOperator, op: strings.ToUpper(word)}, true
	}

	// column filter: single ':' separator, excluding '::' namespace
	// separators which belong to code identifiers
	if idx := strings.Index(word, ":"); idx > 0 && !strings.Contains(word, "::") {
		field, value := word[:idx], word[idx+1:]
		if isFilterField(field) && value != "" {
			return s.classifyFilter(field, value)
		}
	}

	// initial-match marker with the feature disabled: keep the term, drop
	// the marker
	if strings.HasPrefix(word, "^") {
		word = strings.TrimPrefix(word, "^")
		if word == "" {
			return token{}, false
		}
	}

	if strings.Count(word, "*") == 1 && strings.HasSuffix(word, "*") && len(word) > 1 {
		if s.cfg.AllowWildcards {
			return token{kind: kindWildcard, term: strings.TrimSuffix(word, "*")}, true
		}
		return token{kind: kindTerm, term: strings.TrimSuffix(word, "*")}, true
	}

	return token{kind: kindTerm, term: word}, true
}

func (s *scanner) classifyFilter(field, value string) (token, bool) {
	if !s.cfg.AllowColumnFilters {
		return token{kind: kindTerm, term: value}, true
	}
	return token{kind: kindFilter, field: field, value: value}, true
}

func isOperator(word string) bool {
	switch strings.ToUpper(word) {
	case "AND", "OR", "NOT":
		return true
	}
	return false
}

// isFilterField accepts an identifier with an optional leading '-' negation.
func isFilterField(field string) bool {
	field = strings.TrimPrefix(field, "-")
	if field == "" {
		return false
	}
	for _, r := range field {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}
	return true
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func parseInt(s string, fallback int) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return fallback
		}
		n = n*10 + int(r-'0')
		if n > 1<<20 {
			return fallback
		}
	}
	if n == 0 {
		return fallback
	}
	return n
}

func unquote(s string) string {
	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		return strings.ReplaceAll(s[1:len(s)-1], `""`, `"`)
	}
	return s
}
