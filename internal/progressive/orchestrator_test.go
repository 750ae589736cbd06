package progressive

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func identity(name string) Strategy {
	return Strategy{Name: name, Transform: func(q string) string { return q }}
}

func TestExecuteSearchStopsWhenSatisfied(t *testing.T) {
	invoked := make(map[string]int)
	strategies := []Strategy{
		{Name: "s1", Transform: func(q string) string { return q + " s1" }},
		{Name: "s2", Transform: func(q string) string { return q + " s2" }},
		{Name: "s3", Transform: func(q string) string { return q + " s3" }},
	}
	o := NewOrchestrator[string](strategies, zap.NewNop())

	searchFn := func(_ context.Context, query string) ([]string, error) {
		switch {
		case strings.HasSuffix(query, "s1"):
			invoked["s1"]++
			return nil, nil
		case strings.HasSuffix(query, "s2"):
			invoked["s2"]++
			return []string{"a", "b", "c"}, nil
		default:
			invoked["s3"]++
			return []string{"d"}, nil
		}
	}

	results := o.ExecuteSearch(context.Background(), "q", searchFn, 2, 10, nil)

	assert.Equal(t, []string{"a", "b", "c"}, results)
	assert.Equal(t, 1, invoked["s1"])
	assert.Equal(t, 1, invoked["s2"])
	assert.Zero(t, invoked["s3"])
}

func TestExecuteSearchDeduplicatesFirstSeen(t *testing.T) {
	strategies := []Strategy{identity("s1"), identity("s2")}
	o := NewOrchestrator[string](strategies, zap.NewNop())

	calls := 0
	searchFn := func(context.Context, string) ([]string, error) {
		calls++
		if calls == 1 {
			return []string{"dup", "only-first"}, nil
		}
		return []string{"dup", "only-second"}, nil
	}

	results := o.ExecuteSearch(context.Background(), "q", searchFn, 10, 10,
		func(s string) string { return s })

	assert.Equal(t, []string{"dup", "only-first", "only-second"}, results)
}

func TestExecuteSearchRecoversStrategyError(t *testing.T) {
	strategies := []Strategy{identity("broken"), identity("working")}
	o := NewOrchestrator[int](strategies, zap.NewNop())

	calls := 0
	searchFn := func(context.Context, string) ([]int, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("backend unavailable")
		}
		return []int{1, 2}, nil
	}

	results := o.ExecuteSearch(context.Background(), "q", searchFn, 1, 10, nil)
	assert.Equal(t, []int{1, 2}, results)
}

func TestExecuteSearchTruncatesAtMax(t *testing.T) {
	strategies := []Strategy{identity("s1"), identity("s2")}
	o := NewOrchestrator[int](strategies, zap.NewNop())

	calls := 0
	searchFn := func(context.Context, string) ([]int, error) {
		calls++
		return []int{1, 2, 3, 4, 5}, nil
	}

	results := o.ExecuteSearch(context.Background(), "q", searchFn, 100, 3, nil)
	assert.Equal(t, []int{1, 2, 3}, results)
	assert.Equal(t, 1, calls)
}

func TestExecuteSearchEmptyStrategies(t *testing.T) {
	o := NewOrchestrator[int](nil, zap.NewNop())
	results := o.ExecuteSearch(context.Background(), "q",
		func(context.Context, string) ([]int, error) { return []int{1}, nil }, 1, 10, nil)
	assert.Empty(t, results)
}

func TestAddRemoveStrategy(t *testing.T) {
	o := NewOrchestrator[int]([]Strategy{identity("a"), identity("c")}, zap.NewNop())

	o.AddStrategy(identity("b"), 1)
	o.AddStrategy(identity("d"))
	o.AddStrategy(identity("front"), -5)

	names := make([]string, 0, 5)
	for _, s := range o.Strategies() {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"front", "a", "b", "c", "d"}, names)

	assert.True(t, o.RemoveStrategy("b"))
	assert.False(t, o.RemoveStrategy("b"))

	names = names[:0]
	for _, s := range o.Strategies() {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"front", "a", "c", "d"}, names)
}

func TestDefaultStrategies(t *testing.T) {
	strategies := DefaultStrategies()
	require.Len(t, strategies, 4)

	names := []string{"exact", "fuzzy_terms", "prefix_match", "partial_terms"}
	for i, s := range strategies {
		assert.Equal(t, names[i], s.Name)
	}

	assert.Equal(t, "user login", strategies[0].Transform("user login"))
	assert.Equal(t, `"user_repo" OR login`, strategies[1].Transform("user_repo login"))
	assert.Equal(t, "user* OR login*", strategies[2].Transform("user login at"))
	assert.Equal(t, `"user" OR "at"`, strategies[3].Transform("user at x"))
}
