// Package complexity scores raw query text before it reaches the search
// backend, rejecting pathological inputs pre-execution.
//
// The analyzer computes per-metric counts (terms, operators, wildcards,
// phrases, parenthesis nesting, special characters) and a synthetic cost:
//
//	cost = terms·1 + operators·2 + wildcards·5 + phrases·3 + nesting²·4
//
// The quadratic nesting penalty is a deliberate DoS deterrent for deeply
// grouped expressions.
//
// # Usage
//
//	m := complexity.Analyze(`auth* AND (login OR logout)`, complexity.DefaultLimits())
//	if m.Level == complexity.LevelTooComplex {
//	    for _, w := range m.Warnings {
//	        fmt.Println(w)
//	    }
//	}
//
// Analyze never fails; empty input yields zeroed Simple metrics. Thresholds
// are passed explicitly per call, so one analyzer serves concurrent callers
// with different limits without shared mutable state.
package complexity
