// Package search fuses the bm25store's lexical matches with the
// vectorstore's KNN matches into one ranked SearchResult list, merging
// overlapping chunks from the same file and optionally boosting by a
// repo-map PageRank score before a reranker gets the final pass.
package search

import (
	"context"
	"math"
	"sort"

	"github.com/kadirpekel/cocode/internal/retrieval"
	"github.com/kadirpekel/cocode/internal/retrieval/bm25store"
	"github.com/kadirpekel/cocode/internal/retrieval/embedding"
	"github.com/kadirpekel/cocode/internal/retrieval/vectorstore"
)

// Config controls how BM25 and vector scores are combined.
type Config struct {
	// BM25Weight and VectorWeight are applied to each source's score
	// after dividing it by that source's largest absolute score, before
	// summing.
	BM25Weight   float64
	VectorWeight float64
	// PageRankAlpha, when non-zero, boosts a result's fused score by
	// pageRank(file)^Alpha.
	PageRankAlpha float64
	// OverlapLines is the minimum shared line range for two chunks from
	// the same file to be considered overlapping and merged.
	OverlapLines int
	// MaxChunksPerFile caps how many results from one file survive
	// merging; 0 means unlimited.
	MaxChunksPerFile int
}

func DefaultConfig() Config {
	return Config{BM25Weight: 0.4, VectorWeight: 0.6, OverlapLines: 1}
}

// Searcher runs a hybrid BM25 + vector search over one workspace
// collection.
type Searcher struct {
	cfg        Config
	vectors    *vectorstore.Store
	fulltext   *bm25store.Store
	provider   embedding.Provider
	collection string
}

func New(cfg Config, vectors *vectorstore.Store, fulltext *bm25store.Store, provider embedding.Provider, collection string) *Searcher {
	return &Searcher{cfg: cfg, vectors: vectors, fulltext: fulltext, provider: provider, collection: collection}
}

type fusedResult struct {
	result retrieval.SearchResult
	score  float64
}

// Search embeds query, runs both lookups, normalizes and fuses their
// scores, merges overlapping chunks within a file, and applies an
// optional PageRank boost using fileRanks (file path -> rank in
// [0,1], from repomap.PageRanker.Rank).
func (s *Searcher) Search(ctx context.Context, query string, topK int, fileRanks map[string]float64) ([]retrieval.SearchResult, error) {
	bm25Matches, err := s.fulltext.Search(query, topK*2)
	if err != nil {
		return nil, err
	}

	var vecMatches []vectorstore.Match
	if s.provider != nil {
		embeddings, err := s.provider.EmbedBatch(ctx, []string{query})
		if err == nil && len(embeddings) == 1 && len(embeddings[0]) > 0 {
			vecMatches, err = s.vectors.Search(ctx, s.collection, embeddings[0], topK*2)
			if err != nil {
				return nil, err
			}
		}
	}

	maxBM25 := maxAbsScore(bm25Matches)
	maxVec := maxFloat32Score(vecMatches)

	byID := make(map[string]*fusedResult)

	for _, m := range bm25Matches {
		norm := 0.0
		if maxBM25 != 0 {
			// bm25() is negative and lower-is-better; flip sign before
			// normalizing so higher is better like the vector score.
			norm = (-m.Score) / maxBM25
		}
		byID[m.ID] = &fusedResult{
			result: retrieval.SearchResult{
				Chunk:     retrieval.CodeChunk{ID: m.ID, Filepath: m.Filepath, Content: m.Content},
				ScoreType: retrieval.ScoreHybrid,
			},
			score: norm * s.cfg.BM25Weight,
		}
	}
	for _, m := range vecMatches {
		norm := 0.0
		if maxVec != 0 {
			norm = float64(m.Score) / maxVec
		}
		if f, ok := byID[m.ID]; ok {
			f.score += norm * s.cfg.VectorWeight
		} else {
			byID[m.ID] = &fusedResult{
				result: retrieval.SearchResult{
					Chunk:     retrieval.CodeChunk{ID: m.ID, Filepath: m.Metadata["filepath"], Content: m.Content, Language: m.Metadata["language"]},
					ScoreType: retrieval.ScoreHybrid,
				},
				score: norm * s.cfg.VectorWeight,
			}
		}
	}

	results := make([]*fusedResult, 0, len(byID))
	for _, f := range byID {
		if s.cfg.PageRankAlpha > 0 {
			if rank, ok := fileRanks[f.result.Chunk.Filepath]; ok && rank > 0 {
				f.score *= math.Pow(rank, s.cfg.PageRankAlpha)
			}
		}
		results = append(results, f)
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].score > results[j].score })

	merged := mergeOverlapping(results, s.cfg.OverlapLines, s.cfg.MaxChunksPerFile)

	out := make([]retrieval.SearchResult, 0, len(merged))
	for _, f := range merged {
		f.result.Score = float32(f.score)
		out = append(out, f.result)
		if len(out) >= topK {
			break
		}
	}
	return out, nil
}

func mergeOverlapping(results []*fusedResult, overlapLines, maxPerFile int) []*fusedResult {
	perFileCount := make(map[string]int)
	var out []*fusedResult
	for _, r := range results {
		fp := r.result.Chunk.Filepath
		if maxPerFile > 0 && perFileCount[fp] >= maxPerFile {
			continue
		}
		overlapped := false
		for _, kept := range out {
			if kept.result.Chunk.Filepath != fp {
				continue
			}
			if rangesOverlap(kept.result.Chunk.StartLine, kept.result.Chunk.EndLine, r.result.Chunk.StartLine, r.result.Chunk.EndLine, overlapLines) {
				overlapped = true
				break
			}
		}
		if overlapped {
			continue
		}
		out = append(out, r)
		perFileCount[fp]++
	}
	return out
}

func rangesOverlap(aStart, aEnd, bStart, bEnd, minOverlap int) bool {
	if aStart == 0 && aEnd == 0 || bStart == 0 && bEnd == 0 {
		return false
	}
	lo := aStart
	if bStart > lo {
		lo = bStart
	}
	hi := aEnd
	if bEnd < hi {
		hi = bEnd
	}
	return hi-lo+1 >= minOverlap
}

func maxAbsScore(matches []bm25store.Match) float64 {
	max := 0.0
	for _, m := range matches {
		v := m.Score
		if v < 0 {
			v = -v
		}
		if v > max {
			max = v
		}
	}
	return max
}

func maxFloat32Score(matches []vectorstore.Match) float64 {
	max := 0.0
	for _, m := range matches {
		v := float64(m.Score)
		if v > max {
			max = v
		}
	}
	return max
}
