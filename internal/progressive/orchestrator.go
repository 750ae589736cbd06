package progressive

import (
	"context"

	"go.uber.org/zap"
)

// Strategy is one query reformulation step in a cascade. Order in the
// orchestrator's list encodes most to least specific.
type Strategy struct {
	Name        string
	Description string
	Transform   func(query string) string
}

// SearchFunc executes one transformed query against a backend and returns
// whatever it matched.
type SearchFunc[T any] func(ctx context.Context, query string) ([]T, error)

// KeyFunc derives a dedup key collapsing results that refer to the same
// logical item.
type KeyFunc[T any] func(result T) string

// Orchestrator runs an ordered strategy cascade until enough results
// accumulate. It holds no per-search state, so one instance serves
// concurrent callers as long as the strategy list is not mutated mid-flight.
type Orchestrator[T any] struct {
	strategies []Strategy
	logger     *zap.Logger
}

// NewOrchestrator creates an orchestrator over the given strategy order.
func NewOrchestrator[T any](strategies []Strategy, logger *zap.Logger) *Orchestrator[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator[T]{
		strategies: strategies,
		logger:     logger,
	}
}

// Strategies returns the current strategy order.
func (o *Orchestrator[T]) Strategies() []Strategy {
	out := make([]Strategy, len(o.strategies))
	copy(out, o.strategies)
	return out
}

// AddStrategy appends a strategy, or inserts it at position when one is
// given. Positions out of range clamp to the nearest end.
func (o *Orchestrator[T]) AddStrategy(s Strategy, position ...int) {
	if len(position) == 0 {
		o.strategies = append(o.strategies, s)
		return
	}

	pos := position[0]
	if pos < 0 {
		pos = 0
	}
	if pos > len(o.strategies) {
		pos = len(o.strategies)
	}

	o.strategies = append(o.strategies, Strategy{})
	copy(o.strategies[pos+1:], o.strategies[pos:])
	o.strategies[pos] = s
}

// RemoveStrategy removes the first strategy with the given name, reporting
// whether one was found.
func (o *Orchestrator[T]) RemoveStrategy(name string) bool {
	for i, s := range o.strategies {
		if s.Name == name {
			o.strategies = append(o.strategies[:i], o.strategies[i+1:]...)
			return true
		}
	}
	return false
}

// ExecuteSearch runs the cascade: each strategy transforms the query and
// feeds searchFn; a failing strategy is logged and counts as zero results.
// Past the first strategy, iteration stops once minResults have accumulated.
// When keyFn is non-nil, a key seen once suppresses all later results
// sharing it, across strategies. The accumulator is truncated to maxResults
// and iteration stops the moment it fills.
func (o *Orchestrator[T]) ExecuteSearch(ctx context.Context, query string, searchFn SearchFunc[T], minResults, maxResults int, keyFn KeyFunc[T]) []T {
	var accumulated []T
	var seen map[string]struct{}
	if keyFn != nil {
		seen = make(map[string]struct{})
	}

	for i, strat := range o.strategies {
		if i > 0 && len(accumulated) >= minResults {
			break
		}

		transformed := strat.Transform(query)
		results, err := searchFn(ctx, transformed)
		if err != nil {
			o.logger.Warn("search strategy failed",
				zap.String("strategy", strat.Name),
				zap.String("query", transformed),
				zap.Error(err))
			continue
		}

		for _, r := range results {
			if keyFn != nil {
				key := keyFn(r)
				if _, dup := seen[key]; dup {
					continue
				}
				seen[key] = struct{}{}
			}
			accumulated = append(accumulated, r)
			if maxResults > 0 && len(accumulated) >= maxResults {
				return accumulated[:maxResults]
			}
		}
	}

	return accumulated
}
