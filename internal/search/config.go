package search

import (
	"github.com/codesift/codesift-mcp/internal/complexity"
	"github.com/codesift/codesift-mcp/internal/sanitize"
)

// Mode selects which indexes a search consults.
type Mode string

const (
	// ModeUnified merges metadata and content matches per file.
	ModeUnified Mode = "unified"
	// ModeMetadataOnly searches only the metadata index.
	ModeMetadataOnly Mode = "metadata_only"
	// ModeContentOnly searches only the content index.
	ModeContentOnly Mode = "content_only"
)

// Default numeric limits applied when a Config field is zero.
const (
	DefaultMaxResults     = 50
	DefaultMinResults     = 5
	DefaultQueryTimeoutMS = 5000
)

// Config aggregates the per-call feature toggles and limits. A nil Config on
// a service call means the service defaults; a non-nil Config replaces them
// wholesale.
type Config struct {
	// Feature toggles
	EnableFallback           bool
	EnableCodeAware          bool
	EnableSnippetGeneration  bool
	EnableRelevanceScoring   bool
	EnableQuerySanitization  bool
	EnableProgressiveSearch  bool
	EnableComplexityAnalysis bool

	// Numeric limits
	MaxResults        int
	MinResults        int
	MinRelevanceScore float64
	QueryTimeoutMS    int
	MaxQueryTerms     int
	MaxQueryCost      float64

	Mode               Mode
	DeduplicateResults bool

	// Sanitization overrides the default sanitizer settings when non-nil.
	Sanitization *sanitize.Config
}

// DefaultConfig returns the stock configuration: every pipeline stage
// enabled, unified mode, default limits.
func DefaultConfig() Config {
	return Config{
		EnableFallback:           true,
		EnableCodeAware:          true,
		EnableSnippetGeneration:  true,
		EnableRelevanceScoring:   true,
		EnableQuerySanitization:  true,
		EnableProgressiveSearch:  true,
		EnableComplexityAnalysis: true,

		MaxResults:     DefaultMaxResults,
		MinResults:     DefaultMinResults,
		QueryTimeoutMS: DefaultQueryTimeoutMS,
		MaxQueryTerms:  complexity.DefaultMaxTerms,
		MaxQueryCost:   complexity.DefaultMaxCost,

		Mode:               ModeUnified,
		DeduplicateResults: true,
	}
}

func (c Config) withDefaults() Config {
	if c.MaxResults <= 0 {
		c.MaxResults = DefaultMaxResults
	}
	if c.MinResults <= 0 {
		c.MinResults = DefaultMinResults
	}
	if c.QueryTimeoutMS <= 0 {
		c.QueryTimeoutMS = DefaultQueryTimeoutMS
	}
	if c.Mode == "" {
		c.Mode = ModeUnified
	}
	return c
}

// complexityLimits maps the config's query limits onto analyzer thresholds.
// Unset fields fall back to the analyzer defaults.
func (c Config) complexityLimits() complexity.Limits {
	return complexity.Limits{
		MaxTerms: c.MaxQueryTerms,
		MaxCost:  c.MaxQueryCost,
	}
}

// sanitizeConfig resolves the effective sanitizer settings.
func (c Config) sanitizeConfig() sanitize.Config {
	if c.Sanitization != nil {
		return *c.Sanitization
	}
	return sanitize.DefaultConfig()
}
