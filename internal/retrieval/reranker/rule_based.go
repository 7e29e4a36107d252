// Package reranker applies a final pass of ranking adjustments over a
// hybrid searcher's results. The rule-based reranker here is the
// default; an extended interface lets a neural reranker be plugged in
// later without touching the hybrid searcher's call site.
package reranker

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/kadirpekel/cocode/internal/retrieval"
)

// Reranker adjusts SearchResult.Score (and may reorder) in place.
type Reranker interface {
	Rerank(ctx context.Context, query string, results []retrieval.SearchResult) error
}

// RuleBasedRerankerConfig controls the multiplicative boosts applied
// by RuleBasedReranker.
type RuleBasedRerankerConfig struct {
	ExactMatchBoost      float64
	PathRelevanceBoost   float64
	RecencyBoost         float64
	RecencyDaysThreshold int
}

// DefaultRuleBasedRerankerConfig matches the reference reranker's
// defaults.
func DefaultRuleBasedRerankerConfig() RuleBasedRerankerConfig {
	return RuleBasedRerankerConfig{
		ExactMatchBoost:      2.0,
		PathRelevanceBoost:   1.5,
		RecencyBoost:         1.2,
		RecencyDaysThreshold: 7,
	}
}

// RuleBasedReranker boosts results by exact-term content match,
// query-term presence in the filepath, and recent modification time.
type RuleBasedReranker struct {
	cfg RuleBasedRerankerConfig
}

func New() *RuleBasedReranker {
	return &RuleBasedReranker{cfg: DefaultRuleBasedRerankerConfig()}
}

func WithConfig(cfg RuleBasedRerankerConfig) *RuleBasedReranker {
	return &RuleBasedReranker{cfg: cfg}
}

// Rerank multiplies each result's score by the boosts that apply to
// it. An empty query applies no boosts, leaving scores unchanged.
func (r *RuleBasedReranker) Rerank(ctx context.Context, query string, results []retrieval.SearchResult) error {
	if strings.TrimSpace(query) == "" {
		return nil
	}
	now := time.Now().Unix()
	threshold := int64(r.cfg.RecencyDaysThreshold) * 86400

	for i := range results {
		chunk := results[i].Chunk
		boost := 1.0
		if r.ContainsExactMatch(chunk.Content, query) {
			boost *= r.cfg.ExactMatchBoost
		}
		if r.PathContainsQueryTerms(chunk.Filepath, query) {
			boost *= r.cfg.PathRelevanceBoost
		}
		if chunk.ModifiedTime != 0 && now-chunk.ModifiedTime <= threshold {
			boost *= r.cfg.RecencyBoost
		}
		results[i].Score *= float32(boost)
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	return nil
}

// ContainsExactMatch reports whether every whitespace-separated term
// in query appears as a case-insensitive substring of content.
func (r *RuleBasedReranker) ContainsExactMatch(content, query string) bool {
	return containsAllTerms(content, query)
}

// PathContainsQueryTerms reports whether every whitespace-separated
// term in query appears as a case-insensitive substring of path.
func (r *RuleBasedReranker) PathContainsQueryTerms(path, query string) bool {
	return containsAllTerms(path, query)
}

func containsAllTerms(haystack, query string) bool {
	terms := strings.Fields(query)
	if len(terms) == 0 {
		return false
	}
	lower := strings.ToLower(haystack)
	for _, term := range terms {
		if !strings.Contains(lower, strings.ToLower(term)) {
			return false
		}
	}
	return true
}
