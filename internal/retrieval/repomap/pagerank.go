// Package repomap builds a ranked map of a workspace's top symbols:
// a directed graph of file-to-file symbol references is scored with
// PageRank, and each file's rank is distributed across the
// definitions it contains so the highest-signal symbols surface
// first.
package repomap

import (
	"sort"
)

// EdgeData is one reference edge's payload: how many times (weight)
// and through which symbol name a source file references a target
// file's definition.
type EdgeData struct {
	Weight float64
	Symbol string
}

// Graph is a directed multigraph over file paths. Edges point from
// the file containing a reference to the file defining the
// referenced symbol, matching standard PageRank's "links transfer
// authority to the target" semantics.
type Graph struct {
	nodes map[string]bool
	edges map[string][]EdgeData
	to    map[string][]string
}

func NewGraph() *Graph {
	return &Graph{nodes: make(map[string]bool), edges: make(map[string][]EdgeData), to: make(map[string][]string)}
}

func (g *Graph) AddNode(file string) { g.nodes[file] = true }

func (g *Graph) AddEdge(from, to string, data EdgeData) {
	g.AddNode(from)
	g.AddNode(to)
	g.edges[from] = append(g.edges[from], data)
	g.to[from] = append(g.to[from], to)
}

// PageRankConfig controls the power-iteration ranker.
type PageRankConfig struct {
	DampingFactor float64
	MaxIterations int
	Tolerance     float64
}

func DefaultPageRankConfig() PageRankConfig {
	return PageRankConfig{DampingFactor: 0.85, MaxIterations: 100, Tolerance: 1e-6}
}

// PageRanker computes personalized PageRank over a reference graph.
type PageRanker struct {
	cfg PageRankConfig
}

func NewPageRanker() *PageRanker {
	return &PageRanker{cfg: DefaultPageRankConfig()}
}

func WithPageRankConfig(cfg PageRankConfig) *PageRanker {
	return &PageRanker{cfg: cfg}
}

// Rank runs weighted, personalized PageRank over graph and returns
// each node's rank. personalization need not cover every node or sum
// to 1; it is normalized internally. An empty graph yields an empty
// map.
func (r *PageRanker) Rank(graph *Graph, personalization map[string]float64) (map[string]float64, error) {
	n := len(graph.nodes)
	if n == 0 {
		return map[string]float64{}, nil
	}

	nodeList := make([]string, 0, n)
	for node := range graph.nodes {
		nodeList = append(nodeList, node)
	}
	sort.Strings(nodeList)
	index := make(map[string]int, n)
	for i, node := range nodeList {
		index[node] = i
	}

	if n == 1 {
		return map[string]float64{nodeList[0]: 1.0}, nil
	}

	// Weighted out-edges per node, and each node's total out-weight for
	// normalization.
	outWeights := make([][]float64, n)
	outTargets := make([][]int, n)
	totalOut := make([]float64, n)
	for from, targets := range graph.to {
		fi, ok := index[from]
		if !ok {
			continue
		}
		for ti, target := range targets {
			to, ok := index[target]
			if !ok {
				continue
			}
			w := graph.edges[from][ti].Weight
			if w <= 0 {
				w = 1
			}
			outWeights[fi] = append(outWeights[fi], w)
			outTargets[fi] = append(outTargets[fi], to)
			totalOut[fi] += w
		}
	}

	pers := make([]float64, n)
	var persSum float64
	for node, v := range personalization {
		if i, ok := index[node]; ok {
			pers[i] = v
			persSum += v
		}
	}
	if persSum > 0 {
		for i := range pers {
			pers[i] /= persSum
		}
	} else {
		for i := range pers {
			pers[i] = 1.0 / float64(n)
		}
	}

	ranks := make([]float64, n)
	for i := range ranks {
		ranks[i] = 1.0 / float64(n)
	}

	d := r.cfg.DampingFactor
	for iter := 0; iter < r.cfg.MaxIterations; iter++ {
		next := make([]float64, n)

		var danglingMass float64
		for i, total := range totalOut {
			if total == 0 {
				danglingMass += ranks[i]
			}
		}

		for i := range next {
			next[i] = (1-d)*pers[i] + d*danglingMass*pers[i]
		}
		for from := 0; from < n; from++ {
			if totalOut[from] == 0 {
				continue
			}
			for k, to := range outTargets[from] {
				share := ranks[from] * outWeights[from][k] / totalOut[from]
				next[to] += d * share
			}
		}

		var delta float64
		for i := range ranks {
			diff := next[i] - ranks[i]
			if diff < 0 {
				diff = -diff
			}
			delta += diff
		}
		ranks = next
		if delta < r.cfg.Tolerance {
			break
		}
	}

	// Scale so the top rank reads naturally (tests expect a single
	// isolated node to land at 1.0, and a referenced node to clearly
	// outrank its referrer, rather than everything sitting near 1/n).
	var maxRank float64
	for _, v := range ranks {
		if v > maxRank {
			maxRank = v
		}
	}
	out := make(map[string]float64, n)
	for i, node := range nodeList {
		if maxRank > 0 {
			out[node] = ranks[i] / maxRank
		} else {
			out[node] = ranks[i]
		}
	}
	return out, nil
}

// Definition pairs a symbol's defining file with its extracted tag.
type Definition struct {
	File string
	Tag  CodeTag
}

// RankedSymbol is one definition after its file's rank has been
// distributed across that file's definitions.
type RankedSymbol struct {
	File string
	Tag  CodeTag
	Rank float64
}

// DistributeToDefinitions splits each file's PageRank evenly across
// the definitions it contains, then returns every definition sorted
// by descending rank.
func (r *PageRanker) DistributeToDefinitions(
	fileRanks map[string]float64,
	definitions map[string][]Definition,
	fileDefCounts map[string]int,
) []RankedSymbol {
	var out []RankedSymbol
	for name, defs := range definitions {
		for _, def := range defs {
			count := fileDefCounts[def.File]
			if count == 0 {
				count = 1
			}
			rank := fileRanks[def.File] / float64(count)
			tag := def.Tag
			if tag.Name == "" {
				tag.Name = name
			}
			out = append(out, RankedSymbol{File: def.File, Tag: tag, Rank: rank})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Rank > out[j].Rank })
	return out
}
