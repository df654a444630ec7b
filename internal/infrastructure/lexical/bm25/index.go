package bm25

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/akozyrev/techdocs-qa/internal/core/domain"
)

const (
	k1 = 1.2
	b  = 0.75
)

// Index is an in-memory BM25 index over chunk documents. It serves as
// the lexical half of hybrid retrieval; exact part numbers and unit
// tokens that embeddings blur together stay sharp here.
type Index struct {
	mu        sync.RWMutex
	docs      []domain.Document
	docTokens []map[string]int
	docLens   []int
	termDocs  map[string]int
	totalLen  int
}

func New() *Index {
	return &Index{
		termDocs: make(map[string]int),
	}
}

func (ix *Index) IndexDocuments(_ context.Context, docs []domain.Document) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	for _, doc := range docs {
		tokens := tokenize(doc.Text + " " + doc.Source)
		counts := make(map[string]int, len(tokens))
		for _, tok := range tokens {
			counts[tok]++
		}
		for tok := range counts {
			ix.termDocs[tok]++
		}
		ix.docs = append(ix.docs, doc)
		ix.docTokens = append(ix.docTokens, counts)
		ix.docLens = append(ix.docLens, len(tokens))
		ix.totalLen += len(tokens)
	}
	return nil
}

func (ix *Index) Search(_ context.Context, query string, limit int) (domain.RankedList, error) {
	queryTokens := tokenize(query)
	if len(queryTokens) == 0 {
		return nil, nil
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	n := len(ix.docs)
	if n == 0 {
		return nil, nil
	}
	avgLen := float64(ix.totalLen) / float64(n)

	type scored struct {
		idx   int
		score float64
	}
	results := make([]scored, 0, n)
	for i := range ix.docs {
		score := 0.0
		for _, tok := range queryTokens {
			tf := float64(ix.docTokens[i][tok])
			if tf == 0 {
				continue
			}
			df := float64(ix.termDocs[tok])
			idf := math.Log(1 + (float64(n)-df+0.5)/(df+0.5))
			norm := tf * (k1 + 1) / (tf + k1*(1-b+b*float64(ix.docLens[i])/avgLen))
			score += idf * norm
		}
		if score > 0 {
			results = append(results, scored{idx: i, score: score})
		}
	}

	sort.SliceStable(results, func(a, c int) bool { return results[a].score > results[c].score })
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	out := make(domain.RankedList, 0, len(results))
	for _, r := range results {
		doc := ix.docs[r.idx]
		doc.Score = r.score
		out = append(out, doc)
	}
	return out, nil
}

func tokenize(s string) []string {
	if s == "" {
		return nil
	}
	out := make([]string, 0, 24)
	var sb strings.Builder
	for _, r := range s {
		r = unicode.ToLower(r)
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
			continue
		}
		if sb.Len() > 0 {
			out = append(out, sb.String())
			sb.Reset()
		}
	}
	if sb.Len() > 0 {
		out = append(out, sb.String())
	}
	return out
}
