// Package progressive implements a cascading search orchestrator: an ordered
// list of query reformulation strategies tried in turn until enough results
// accumulate.
//
// The orchestrator is generic over the result type, so the same cascade
// serves metadata and content searches:
//
//	o := progressive.NewOrchestrator[types.SearchResult](progressive.DefaultStrategies(), logger)
//	results := o.ExecuteSearch(ctx, query, searchFn, 5, 50, func(r types.SearchResult) string {
//		return r.FilePath + "\x00" + r.MatchContent
//	})
//
// A strategy whose search fails is logged and contributes nothing; the
// cascade continues. Dedup is first-seen wins across all strategies within
// one execution.
package progressive
