package strategy

import (
	"sort"
	"strings"
)

// Builder composes a primary strategy with the fallback menu, producing an
// ordered, deduplicated sequence of query variants from most to least
// specific.
type Builder struct {
	primary  Strategy
	fallback Fallback
}

// NewBuilder creates a builder around the given primary strategy.
func NewBuilder(primary Strategy) *Builder {
	return &Builder{primary: primary}
}

// Primary returns the primary strategy.
func (b *Builder) Primary() Strategy { return b.primary }

// BuildQuery applies the primary strategy.
func (b *Builder) BuildQuery(query string) string {
	return b.primary.Transform(query)
}

// BuildFallbackQuery applies the fallback strategy's primary transform.
func (b *Builder) BuildFallbackQuery(query string) string {
	return b.fallback.Transform(query)
}

// QueryVariants returns the primary result, then the fallback transform if
// distinct, then the remaining fallback variants, skipping duplicates while
// preserving order.
func (b *Builder) QueryVariants(query string) []string {
	seen := make(map[string]struct{})
	var variants []string

	add := func(v string) {
		if v == "" {
			return
		}
		if _, dup := seen[v]; dup {
			return
		}
		seen[v] = struct{}{}
		variants = append(variants, v)
	}

	add(b.BuildQuery(query))
	add(b.BuildFallbackQuery(query))
	for _, v := range b.fallback.Variants(query) {
		add(v)
	}
	return variants
}

// NormalizeQuery produces an order-independent canonical key for grouping
// and analytics: lowercase, collapsed whitespace, and terms sorted
// alphabetically unless the query uses boolean or proximity syntax, where
// term order is significant.
func (b *Builder) NormalizeQuery(query string) string {
	normalized := strings.ToLower(strings.TrimSpace(query))
	fields := strings.Fields(normalized)
	if len(fields) == 0 {
		return ""
	}

	for _, f := range fields {
		switch f {
		case "and", "or", "not":
			return strings.Join(fields, " ")
		}
		if strings.HasPrefix(f, "near(") {
			return strings.Join(fields, " ")
		}
	}

	sort.Strings(fields)
	return strings.Join(fields, " ")
}
