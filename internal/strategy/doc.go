// Package strategy implements the query-building transforms composed by the
// search service.
//
// Three strategies cover the common caller profiles:
//
//   - Default: passthrough with quote balancing, for callers writing the
//     target syntax directly.
//   - CodeAware: quotes tokens carrying code-identifier punctuation
//     ($user->getName, std::vector, snake_case) so the index treats them as
//     atomic literals, while leaving operators, NEAR clauses and phrases
//     untouched.
//   - Fallback: a menu of less restrictive reformulations (whole phrase,
//     prefix match, OR-joined terms, stop-word filtered keywords) for
//     low-recall queries.
//
// Builder composes a primary strategy with the fallback menu:
//
//	b := strategy.NewBuilder(strategy.CodeAware{})
//	variants := b.QueryVariants(`$user->getName()`)
//	// most specific first, duplicates removed
//
// NormalizeQuery produces an order-independent canonical key used for
// analytics grouping.
package strategy
