package search

import (
	"context"
	"crypto/sha256"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/codesift/codesift-mcp/internal/analytics"
	"github.com/codesift/codesift-mcp/internal/backend"
	"github.com/codesift/codesift-mcp/internal/complexity"
	"github.com/codesift/codesift-mcp/internal/progressive"
	"github.com/codesift/codesift-mcp/internal/sanitize"
	"github.com/codesift/codesift-mcp/internal/strategy"
	"github.com/codesift/codesift-mcp/pkg/types"
)

const (
	cacheSize       = 1000
	defaultCacheTTL = 1 * time.Hour
)

// cacheEntry holds cached unified results with an expiration time.
type cacheEntry struct {
	results   []types.UnifiedResult
	expiresAt time.Time
}

// Service is the query pipeline front door: it gates queries through
// complexity analysis and sanitization, dispatches to the backend through
// one of three execution paths, and shapes results per search mode.
type Service struct {
	backend  backend.SearchBackend
	defaults Config
	logger   *zap.Logger
	recorder *analytics.Recorder

	cache    *lru.Cache[[32]byte, *cacheEntry]
	cacheMu  sync.RWMutex
	cacheTTL time.Duration
}

// NewService creates a service over the given backend. A zero defaults
// Config gets the package defaults for its numeric limits but keeps its
// toggles as given; most callers pass DefaultConfig().
func NewService(b backend.SearchBackend, defaults Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}

	cache, err := lru.New[[32]byte, *cacheEntry](cacheSize)
	if err != nil {
		// only possible with an invalid size constant
		panic(fmt.Sprintf("failed to create LRU cache: %v", err))
	}

	return &Service{
		backend:  b,
		defaults: defaults.withDefaults(),
		logger:   logger,
		cache:    cache,
		cacheTTL: defaultCacheTTL,
	}
}

// AttachRecorder enables fire-and-forget analytics for completed searches.
func (s *Service) AttachRecorder(r *analytics.Recorder) {
	s.recorder = r
}

// Defaults returns the service-wide default configuration.
func (s *Service) Defaults() Config {
	return s.defaults
}

// Search runs a unified (or mode-restricted) search. Rejected queries yield
// an empty list; use SearchWithOutcome to observe the reason. A backend
// error in single-shot execution propagates.
func (s *Service) Search(ctx context.Context, query, datasetID string, cfg *Config) ([]types.UnifiedResult, error) {
	results, _, err := s.SearchWithOutcome(ctx, query, datasetID, cfg)
	return results, err
}

// SearchMetadata searches only the metadata index.
func (s *Service) SearchMetadata(ctx context.Context, query, datasetID string, cfg *Config) ([]types.FileMetadata, error) {
	results, _, err := s.SearchMetadataWithOutcome(ctx, query, datasetID, cfg)
	return results, err
}

// SearchContent searches only the content index.
func (s *Service) SearchContent(ctx context.Context, query, datasetID string, cfg *Config) ([]types.SearchResult, error) {
	results, _, err := s.SearchContentWithOutcome(ctx, query, datasetID, cfg)
	return results, err
}

// SearchMetadataWithOutcome is SearchMetadata with the rejection reason
// surfaced.
func (s *Service) SearchMetadataWithOutcome(ctx context.Context, query, datasetID string, cfg *Config) ([]types.FileMetadata, Outcome, error) {
	effective := s.resolve(cfg)
	start := time.Now()

	prepared, outcome := s.prepare(query, effective)
	if outcome.Rejected() {
		s.record(query, datasetID, "metadata", outcome, 0, start)
		return []types.FileMetadata{}, outcome, nil
	}

	results, err := s.runMetadata(ctx, prepared, datasetID, effective)
	if err != nil {
		return nil, outcome, err
	}

	s.record(query, datasetID, "metadata", outcome, len(results), start)
	return results, outcome, nil
}

// SearchContentWithOutcome is SearchContent with the rejection reason
// surfaced.
func (s *Service) SearchContentWithOutcome(ctx context.Context, query, datasetID string, cfg *Config) ([]types.SearchResult, Outcome, error) {
	effective := s.resolve(cfg)
	start := time.Now()

	prepared, outcome := s.prepare(query, effective)
	if outcome.Rejected() {
		s.record(query, datasetID, "content", outcome, 0, start)
		return []types.SearchResult{}, outcome, nil
	}

	results, err := s.runContent(ctx, prepared, datasetID, effective)
	if err != nil {
		return nil, outcome, err
	}

	s.record(query, datasetID, "content", outcome, len(results), start)
	return results, outcome, nil
}

// SearchWithOutcome is Search with the rejection reason surfaced.
func (s *Service) SearchWithOutcome(ctx context.Context, query, datasetID string, cfg *Config) ([]types.UnifiedResult, Outcome, error) {
	effective := s.resolve(cfg)
	start := time.Now()

	prepared, outcome := s.prepare(query, effective)
	if outcome.Rejected() {
		s.record(query, datasetID, string(effective.Mode), outcome, 0, start)
		return []types.UnifiedResult{}, outcome, nil
	}

	if cached, hit := s.checkCache(prepared, datasetID, effective); hit {
		s.record(query, datasetID, string(effective.Mode), outcome, len(cached), start)
		return cached, outcome, nil
	}

	var unified []types.UnifiedResult
	var err error

	switch effective.Mode {
	case ModeMetadataOnly:
		var metas []types.FileMetadata
		metas, err = s.runMetadata(ctx, prepared, datasetID, effective)
		if err == nil {
			unified = make([]types.UnifiedResult, 0, len(metas))
			for _, m := range metas {
				unified = append(unified, types.FromMetadata(m))
			}
		}
	case ModeContentOnly:
		var contents []types.SearchResult
		contents, err = s.runContent(ctx, prepared, datasetID, effective)
		if err == nil {
			unified = make([]types.UnifiedResult, 0, len(contents))
			for _, c := range contents {
				unified = append(unified, types.FromContent(c))
			}
		}
	default:
		unified, err = s.runUnified(ctx, prepared, datasetID, effective)
	}
	if err != nil {
		return nil, outcome, err
	}

	if effective.EnableRelevanceScoring {
		sort.SliceStable(unified, func(i, j int) bool {
			return unified[i].RelevanceScore > unified[j].RelevanceScore
		})
	}
	if len(unified) > effective.MaxResults {
		unified = unified[:effective.MaxResults]
	}

	s.storeCache(prepared, datasetID, effective, unified)
	s.record(query, datasetID, string(effective.Mode), outcome, len(unified), start)
	return unified, outcome, nil
}

// InvalidateCache drops all cached results. Called after dataset writes.
func (s *Service) InvalidateCache() {
	s.cacheMu.Lock()
	s.cache.Purge()
	s.cacheMu.Unlock()
}

func (s *Service) resolve(cfg *Config) Config {
	if cfg == nil {
		return s.defaults
	}
	return cfg.withDefaults()
}

// prepare runs the query gates in order: complexity analysis, then
// sanitization. A rejected query never reaches the backend.
func (s *Service) prepare(query string, cfg Config) (string, Outcome) {
	if cfg.EnableComplexityAnalysis {
		metrics := complexity.Analyze(query, cfg.complexityLimits())
		if metrics.Level == complexity.LevelTooComplex {
			s.logger.Warn("query rejected as too complex",
				zap.Float64("cost", metrics.EstimatedCost),
				zap.Strings("warnings", metrics.Warnings))
			reason := (&types.ComplexityError{Warnings: metrics.Warnings}).Error()
			return "", Outcome{Kind: OutcomeRejectedComplexity, Reason: reason}
		}
		if len(metrics.Warnings) > 0 {
			s.logger.Info("query flagged by complexity analysis",
				zap.Strings("warnings", metrics.Warnings))
		}
	}

	if cfg.EnableQuerySanitization {
		sanitized, err := sanitize.Sanitize(query, cfg.sanitizeConfig())
		if err != nil {
			s.logger.Warn("query failed sanitization", zap.Error(err))
			return "", Outcome{Kind: OutcomeRejectedValidation, Reason: err.Error()}
		}
		query = sanitized
	}

	return query, ok()
}

func (s *Service) builderFor(cfg Config) *strategy.Builder {
	if cfg.EnableCodeAware {
		return strategy.NewBuilder(strategy.CodeAware{})
	}
	return strategy.NewBuilder(strategy.Default{})
}

// runMetadata executes a prepared query against the metadata index through
// the configured execution path.
func (s *Service) runMetadata(ctx context.Context, query, datasetID string, cfg Config) ([]types.FileMetadata, error) {
	searchFn := func(ctx context.Context, q string) ([]types.FileMetadata, error) {
		return s.backend.SearchFiles(ctx, q, datasetID, cfg.MaxResults, cfg.QueryTimeoutMS)
	}
	keyFn := func(m types.FileMetadata) string { return m.FilePath }

	switch {
	case cfg.EnableProgressiveSearch && cfg.EnableFallback:
		orch := progressive.NewOrchestrator[types.FileMetadata](progressive.DefaultStrategies(), s.logger)
		var kf progressive.KeyFunc[types.FileMetadata]
		if cfg.DeduplicateResults {
			kf = keyFn
		}
		return orch.ExecuteSearch(ctx, query, searchFn, cfg.MinResults, cfg.MaxResults, kf), nil
	case cfg.EnableFallback:
		variants := s.builderFor(cfg).QueryVariants(query)
		return iterateVariants(ctx, variants, searchFn, keyFn, cfg, s.logger), nil
	default:
		return searchFn(ctx, s.builderFor(cfg).BuildQuery(query))
	}
}

// runContent executes a prepared query against the content index. Relevance
// filtering happens inside the search function so filtered-out matches never
// count toward the progressive minimum.
func (s *Service) runContent(ctx context.Context, query, datasetID string, cfg Config) ([]types.SearchResult, error) {
	searchFn := func(ctx context.Context, q string) ([]types.SearchResult, error) {
		results, err := s.backend.SearchFullContent(ctx, q, datasetID, cfg.MaxResults, cfg.EnableSnippetGeneration, cfg.QueryTimeoutMS)
		if err != nil {
			return nil, err
		}
		return filterRelevance(results, cfg.MinRelevanceScore), nil
	}
	keyFn := func(r types.SearchResult) string { return r.FilePath + "\x00" + r.MatchContent }

	switch {
	case cfg.EnableProgressiveSearch && cfg.EnableFallback:
		orch := progressive.NewOrchestrator[types.SearchResult](progressive.DefaultStrategies(), s.logger)
		var kf progressive.KeyFunc[types.SearchResult]
		if cfg.DeduplicateResults {
			kf = keyFn
		}
		return orch.ExecuteSearch(ctx, query, searchFn, cfg.MinResults, cfg.MaxResults, kf), nil
	case cfg.EnableFallback:
		variants := s.builderFor(cfg).QueryVariants(query)
		return iterateVariants(ctx, variants, searchFn, keyFn, cfg, s.logger), nil
	default:
		return searchFn(ctx, s.builderFor(cfg).BuildQuery(query))
	}
}

// runUnified runs the metadata and content sub-searches concurrently and
// merges them by file path, content matches taking priority.
func (s *Service) runUnified(ctx context.Context, query, datasetID string, cfg Config) ([]types.UnifiedResult, error) {
	var metas []types.FileMetadata
	var contents []types.SearchResult

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		metas, err = s.runMetadata(gctx, query, datasetID, cfg)
		return err
	})
	g.Go(func() error {
		var err error
		contents, err = s.runContent(gctx, query, datasetID, cfg)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return mergeUnified(metas, contents), nil
}

// mergeUnified keeps one entry per file path: the best content match when
// one exists, otherwise a neutral-scored metadata hit. Metadata found for a
// file that also matched on content is attached rather than duplicated.
func mergeUnified(metas []types.FileMetadata, contents []types.SearchResult) []types.UnifiedResult {
	unified := make([]types.UnifiedResult, 0, len(contents)+len(metas))
	byPath := make(map[string]int)

	for _, c := range contents {
		if idx, seen := byPath[c.FilePath]; seen {
			if c.RelevanceScore > unified[idx].RelevanceScore {
				unified[idx] = types.FromContent(c)
			}
			continue
		}
		byPath[c.FilePath] = len(unified)
		unified = append(unified, types.FromContent(c))
	}

	for _, m := range metas {
		if idx, seen := byPath[m.FilePath]; seen {
			if unified[idx].Metadata == nil {
				meta := m
				unified[idx].Metadata = &meta
			}
			continue
		}
		byPath[m.FilePath] = len(unified)
		unified = append(unified, types.FromMetadata(m))
	}

	return unified
}

// iterateVariants walks the builder's variant list, one backend call per
// variant, recovering per-variant errors and stopping once maxResults
// accumulate.
func iterateVariants[T any](ctx context.Context, variants []string, searchFn progressive.SearchFunc[T], keyFn progressive.KeyFunc[T], cfg Config, logger *zap.Logger) []T {
	var accumulated []T
	var seen map[string]struct{}
	if cfg.DeduplicateResults {
		seen = make(map[string]struct{})
	}

	for _, variant := range variants {
		results, err := searchFn(ctx, variant)
		if err != nil {
			logger.Warn("fallback variant failed",
				zap.String("query", variant),
				zap.Error(err))
			continue
		}

		for _, r := range results {
			if seen != nil {
				key := keyFn(r)
				if _, dup := seen[key]; dup {
					continue
				}
				seen[key] = struct{}{}
			}
			accumulated = append(accumulated, r)
			if len(accumulated) >= cfg.MaxResults {
				return accumulated
			}
		}
	}

	return accumulated
}

func filterRelevance(results []types.SearchResult, min float64) []types.SearchResult {
	if min <= 0 {
		return results
	}
	filtered := results[:0]
	for _, r := range results {
		if r.RelevanceScore >= min {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

func (s *Service) record(query, datasetID, mode string, outcome Outcome, results int, start time.Time) {
	if s.recorder == nil {
		return
	}
	normalized := strategy.NewBuilder(strategy.Default{}).NormalizeQuery(query)
	s.recorder.Record(analytics.Event{
		Query:     normalized,
		DatasetID: datasetID,
		Mode:      mode,
		Outcome:   string(outcome.Kind),
		Results:   results,
		Duration:  time.Since(start),
	})
}

// checkCache looks up cached unified results.
func (s *Service) checkCache(query, datasetID string, cfg Config) ([]types.UnifiedResult, bool) {
	key := cacheKey(query, datasetID, cfg)

	s.cacheMu.RLock()
	entry, found := s.cache.Get(key)
	if !found {
		s.cacheMu.RUnlock()
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		s.cacheMu.RUnlock()
		s.cacheMu.Lock()
		s.cache.Remove(key)
		s.cacheMu.Unlock()
		return nil, false
	}
	results := make([]types.UnifiedResult, len(entry.results))
	copy(results, entry.results)
	s.cacheMu.RUnlock()

	return results, true
}

// storeCache saves unified results.
func (s *Service) storeCache(query, datasetID string, cfg Config, results []types.UnifiedResult) {
	if len(results) == 0 {
		return
	}
	stored := make([]types.UnifiedResult, len(results))
	copy(stored, results)

	entry := &cacheEntry{
		results:   stored,
		expiresAt: time.Now().Add(s.cacheTTL),
	}

	s.cacheMu.Lock()
	s.cache.Add(cacheKey(query, datasetID, cfg), entry)
	s.cacheMu.Unlock()
}

// cacheKey builds a deterministic key over the prepared query, the dataset
// and the config fields that change what the backend returns.
func cacheKey(query, datasetID string, cfg Config) [32]byte {
	var data strings.Builder
	data.WriteString(query)
	data.WriteString("|")
	data.WriteString(datasetID)
	data.WriteString("|")
	data.WriteString(string(cfg.Mode))
	data.WriteString("|")
	fmt.Fprintf(&data, "%t|%t|%t|%t|%t|%d|%d|%.2f|%d|%t",
		cfg.EnableFallback, cfg.EnableCodeAware, cfg.EnableSnippetGeneration,
		cfg.EnableRelevanceScoring, cfg.EnableProgressiveSearch,
		cfg.MaxResults, cfg.MinResults, cfg.MinRelevanceScore,
		cfg.QueryTimeoutMS, cfg.DeduplicateResults)
	return sha256.Sum256([]byte(data.String()))
}
