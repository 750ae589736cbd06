// Package sanitize normalizes raw query text into injection-safe index
// query syntax.
//
// The sanitizer is a single forward character-stream scanner that classifies
// each span of the input exactly once, in original order, into one of:
// quoted phrase, NEAR clause, column filter, initial-token marker,
// parenthesis, boolean operator, trailing-wildcard term, or plain term. A
// separate reconstruction pass renders the classified tokens back to query
// text, quoting anything the index tokenizer could misinterpret.
//
// Because classification and position are decided in one pass there is no
// extraction-order interaction between span kinds: a phrase can never leak a
// placeholder into a NEAR clause, and offsets need no bookkeeping.
//
// # Usage
//
//	safe, err := sanitize.Sanitize(`title:hello NEAR(a b)`, sanitize.DefaultConfig())
//	// safe == `hello NEAR("a" "b", 10)` with column filters disallowed
//
// Sanitize is idempotent: feeding its output back in returns the same text.
// Rejection (too many wildcards, too many terms) surfaces as a typed
// *types.ValidationError naming the exceeded limit.
package sanitize
