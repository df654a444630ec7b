package fusion

import (
	"fmt"
	"sort"

	"github.com/akozyrev/techdocs-qa/internal/core/domain"
)

const DefaultRRFK = 60

// Engine merges two independently ranked candidate lists with
// Reciprocal Rank Fusion. It holds only validated parameters and is
// safe for concurrent use.
type Engine struct {
	alpha float64
	k     int
}

// NewEngine validates the semantic weight alpha and the RRF smoothing
// constant k. Alpha outside [0,1] is a configuration error; k <= 0
// falls back to the conventional 60.
func NewEngine(alpha float64, k int) (*Engine, error) {
	if alpha < 0 || alpha > 1 {
		return nil, fmt.Errorf("fusion: alpha must be in [0,1], got %v", alpha)
	}
	if k <= 0 {
		k = DefaultRRFK
	}
	return &Engine{alpha: alpha, k: k}, nil
}

// NewSemanticOnlyEngine is the no-op fusion variant used when lexical
// search is disabled: listB never contributes to the score.
func NewSemanticOnlyEngine(k int) *Engine {
	engine, _ := NewEngine(1, k)
	return engine
}

func (e *Engine) Alpha() float64 { return e.alpha }

type fusedCandidate struct {
	doc   domain.Document
	score float64
	rankA int // 1-based, 0 when absent from listA
	rankB int
}

// Fuse scores every document appearing in either list with
// alpha/(rankA+k) + (1-alpha)/(rankB+k), an absent list contributing
// zero. Ordering is score descending; ties prefer documents present in
// both lists, then listA order, then listB order. The result is
// truncated to topN when topN > 0. Both lists empty yields an empty
// result, not an error. An empty listB degrades to semantic-only
// ordering without any caller-side recomputation.
func (e *Engine) Fuse(listA, listB domain.RankedList, topN int) domain.FusedResult {
	if len(listA) == 0 && len(listB) == 0 {
		return nil
	}

	order := make([]string, 0, len(listA)+len(listB))
	acc := make(map[string]*fusedCandidate, len(listA)+len(listB))

	for i, doc := range listA {
		key := candidateKey(doc)
		candidate, ok := acc[key]
		if !ok {
			candidate = &fusedCandidate{doc: doc}
			acc[key] = candidate
			order = append(order, key)
		}
		if candidate.rankA == 0 {
			candidate.rankA = i + 1
			candidate.score += e.alpha / float64(i+1+e.k)
		}
	}
	for i, doc := range listB {
		key := candidateKey(doc)
		candidate, ok := acc[key]
		if !ok {
			candidate = &fusedCandidate{doc: doc}
			acc[key] = candidate
			order = append(order, key)
		}
		if candidate.rankB == 0 {
			candidate.rankB = i + 1
			candidate.score += (1 - e.alpha) / float64(i+1+e.k)
		}
	}

	candidates := make([]*fusedCandidate, 0, len(order))
	for _, key := range order {
		candidates = append(candidates, acc[key])
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.score != b.score {
			return a.score > b.score
		}
		aBoth := a.rankA > 0 && a.rankB > 0
		bBoth := b.rankA > 0 && b.rankB > 0
		if aBoth != bBoth {
			return aBoth
		}
		if a.rankA != b.rankA {
			return rankLess(a.rankA, b.rankA)
		}
		return rankLess(a.rankB, b.rankB)
	})

	if topN > 0 && len(candidates) > topN {
		candidates = candidates[:topN]
	}

	out := make(domain.FusedResult, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, domain.FusedDocument{Document: c.doc, Score: c.score})
	}
	return out
}

// rankLess orders present ranks ahead of absent (zero) ones.
func rankLess(a, b int) bool {
	if a == 0 {
		return false
	}
	if b == 0 {
		return true
	}
	return a < b
}

func candidateKey(doc domain.Document) string {
	if doc.ID != "" {
		return doc.ID
	}
	return doc.Source + "|" + doc.Text
}
