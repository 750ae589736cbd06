package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/codesift/codesift-mcp/internal/sanitize"
	"github.com/codesift/codesift-mcp/internal/search"
)

// Config is the process-wide configuration, loaded from an optional YAML
// file and then overridden from the environment. Unset fields keep the
// package defaults.
type Config struct {
	// DBPath is the index database location.
	DBPath string `yaml:"db_path"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	Search       SearchSection       `yaml:"search"`
	Sanitization SanitizationSection `yaml:"sanitization"`
}

// SearchSection mirrors search.Config with optional fields: a nil pointer
// keeps the default.
type SearchSection struct {
	EnableFallback           *bool `yaml:"enable_fallback"`
	EnableCodeAware          *bool `yaml:"enable_code_aware"`
	EnableSnippetGeneration  *bool `yaml:"enable_snippet_generation"`
	EnableRelevanceScoring   *bool `yaml:"enable_relevance_scoring"`
	EnableQuerySanitization  *bool `yaml:"enable_query_sanitization"`
	EnableProgressiveSearch  *bool `yaml:"enable_progressive_search"`
	EnableComplexityAnalysis *bool `yaml:"enable_complexity_analysis"`

	MaxResults        int     `yaml:"max_results"`
	MinResults        int     `yaml:"min_results"`
	MinRelevanceScore float64 `yaml:"min_relevance_score"`
	QueryTimeoutMS    int     `yaml:"query_timeout_ms"`
	MaxQueryTerms     int     `yaml:"max_query_terms"`
	MaxQueryCost      float64 `yaml:"max_query_cost"`

	Mode               string `yaml:"mode"`
	DeduplicateResults *bool  `yaml:"deduplicate_results"`
}

// SanitizationSection mirrors sanitize.Config the same way.
type SanitizationSection struct {
	AllowWildcards         *bool `yaml:"allow_wildcards"`
	AllowColumnFilters     *bool `yaml:"allow_column_filters"`
	AllowInitialTokenMatch *bool `yaml:"allow_initial_token_match"`
	MaxWildcards           int   `yaml:"max_wildcards"`
	MaxPhraseLength        int   `yaml:"max_phrase_length"`
}

// DefaultDBPath is used when neither file nor environment names one.
const DefaultDBPath = "~/.codesift/index.db"

// Load reads the YAML file at path (skipped when path is empty or the file
// does not exist), then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{
		DBPath:   DefaultDBPath,
		LogLevel: "info",
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("CODESIFT_DB_PATH"); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv("CODESIFT_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("CODESIFT_MAX_RESULTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Search.MaxResults = n
		}
	}
	if v := os.Getenv("CODESIFT_QUERY_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Search.QueryTimeoutMS = n
		}
	}
	if v := os.Getenv("CODESIFT_SEARCH_MODE"); v != "" {
		c.Search.Mode = v
	}
}

// SearchConfig resolves the effective search defaults: the stock defaults
// with this file's overrides applied.
func (c *Config) SearchConfig() search.Config {
	out := search.DefaultConfig()

	applyBool(&out.EnableFallback, c.Search.EnableFallback)
	applyBool(&out.EnableCodeAware, c.Search.EnableCodeAware)
	applyBool(&out.EnableSnippetGeneration, c.Search.EnableSnippetGeneration)
	applyBool(&out.EnableRelevanceScoring, c.Search.EnableRelevanceScoring)
	applyBool(&out.EnableQuerySanitization, c.Search.EnableQuerySanitization)
	applyBool(&out.EnableProgressiveSearch, c.Search.EnableProgressiveSearch)
	applyBool(&out.EnableComplexityAnalysis, c.Search.EnableComplexityAnalysis)
	applyBool(&out.DeduplicateResults, c.Search.DeduplicateResults)

	if c.Search.MaxResults > 0 {
		out.MaxResults = c.Search.MaxResults
	}
	if c.Search.MinResults > 0 {
		out.MinResults = c.Search.MinResults
	}
	if c.Search.MinRelevanceScore > 0 {
		out.MinRelevanceScore = c.Search.MinRelevanceScore
	}
	if c.Search.QueryTimeoutMS > 0 {
		out.QueryTimeoutMS = c.Search.QueryTimeoutMS
	}
	if c.Search.MaxQueryTerms > 0 {
		out.MaxQueryTerms = c.Search.MaxQueryTerms
	}
	if c.Search.MaxQueryCost > 0 {
		out.MaxQueryCost = c.Search.MaxQueryCost
	}
	if c.Search.Mode != "" {
		out.Mode = search.Mode(c.Search.Mode)
	}

	if s := c.SanitizeConfig(); s != nil {
		out.Sanitization = s
	}

	return out
}

// SanitizeConfig returns a sanitizer override when the file sets any
// sanitization field, nil otherwise.
func (c *Config) SanitizeConfig() *sanitize.Config {
	sec := c.Sanitization
	if sec.AllowWildcards == nil && sec.AllowColumnFilters == nil &&
		sec.AllowInitialTokenMatch == nil && sec.MaxWildcards == 0 && sec.MaxPhraseLength == 0 {
		return nil
	}

	out := sanitize.DefaultConfig()
	applyBool(&out.AllowWildcards, sec.AllowWildcards)
	applyBool(&out.AllowColumnFilters, sec.AllowColumnFilters)
	applyBool(&out.AllowInitialTokenMatch, sec.AllowInitialTokenMatch)
	if sec.MaxWildcards > 0 {
		out.MaxWildcards = sec.MaxWildcards
	}
	if sec.MaxPhraseLength > 0 {
		out.MaxPhraseLength = sec.MaxPhraseLength
	}
	return &out
}

func applyBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}
