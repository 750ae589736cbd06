// Package search is the query pipeline front door.
//
// Every search passes two gates before touching the backend: complexity
// analysis (a query scored TooComplex is rejected outright) and
// sanitization (a query violating hard limits is rejected with a typed
// reason). Rejection is quiet at the list-returning API: the caller sees an
// empty result set, and the reason is observable through logs, analytics,
// or the WithOutcome method forms.
//
// Accepted queries dispatch through one of three execution paths:
//
//   - progressive cascade (progressive + fallback enabled): successively
//     less restrictive reformulations until enough results accumulate;
//   - variant iteration (fallback only): the builder's variant list, one
//     backend call per variant, per-variant errors recovered;
//   - single shot: one transformed query, one backend call, backend errors
//     propagated.
//
// Unified mode runs the metadata and content sub-searches concurrently and
// merges them by file path, with content matches taking priority and
// metadata-only hits carrying a neutral relevance score.
package search
