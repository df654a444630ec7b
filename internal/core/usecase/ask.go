package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/akozyrev/techdocs-qa/internal/core/confidence"
	"github.com/akozyrev/techdocs-qa/internal/core/domain"
	"github.com/akozyrev/techdocs-qa/internal/core/fusion"
	"github.com/akozyrev/techdocs-qa/internal/core/ports"
	"github.com/akozyrev/techdocs-qa/internal/core/respcache"
	"github.com/akozyrev/techdocs-qa/internal/core/telemetry"
)

// AskUseCase runs the full question path: fingerprint and cache probe,
// hybrid retrieval, rank fusion, generation, confidence scoring, and
// telemetry recording. A cache hit skips fusion and scoring entirely.
type AskUseCase struct {
	cache     *respcache.Cache
	fuser     *fusion.Engine
	scorer    *confidence.Scorer
	collector *telemetry.Aggregator

	embedder  ports.Embedder
	semantic  ports.SemanticIndex
	lexical   ports.LexicalIndex
	generator ports.AnswerGenerator

	defaultDepth int
	candidates   int
}

func NewAskUseCase(
	cache *respcache.Cache,
	fuser *fusion.Engine,
	scorer *confidence.Scorer,
	collector *telemetry.Aggregator,
	embedder ports.Embedder,
	semantic ports.SemanticIndex,
	lexical ports.LexicalIndex,
	generator ports.AnswerGenerator,
	defaultDepth, candidates int,
) *AskUseCase {
	if defaultDepth <= 0 {
		defaultDepth = 5
	}
	if candidates < defaultDepth {
		candidates = defaultDepth * 3
	}
	return &AskUseCase{
		cache:        cache,
		fuser:        fuser,
		scorer:       scorer,
		collector:    collector,
		embedder:     embedder,
		semantic:     semantic,
		lexical:      lexical,
		generator:    generator,
		defaultDepth: defaultDepth,
		candidates:   candidates,
	}
}

func (uc *AskUseCase) Ask(ctx context.Context, question string, opts ports.AskOptions) (*domain.AnswerRecord, error) {
	if strings.TrimSpace(question) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "ask", errors.New("question is empty"))
	}

	depth := opts.Depth
	if depth <= 0 {
		depth = uc.defaultDepth
	}

	start := time.Now()
	key := respcache.Fingerprint(question, respcache.Params{Depth: depth, Alpha: uc.fuser.Alpha()})

	if record, ok := uc.cache.Get(key); ok {
		uc.collector.Record(telemetry.Sample{
			Total:         time.Since(start),
			CacheHit:      true,
			Success:       true,
			Confidence:    record.Confidence.Overall,
			HasConfidence: true,
		})
		return &record, nil
	}

	retrievalStart := time.Now()
	semList, lexList, err := uc.retrieve(ctx, question)
	if err != nil {
		uc.recordFailure(start)
		return nil, err
	}
	retrievalDur := time.Since(retrievalStart)

	fusionStart := time.Now()
	fused := uc.fuser.Fuse(semList, lexList, depth)
	fusionDur := time.Since(fusionStart)

	sources := fused.Documents()
	generationStart := time.Now()
	answer, err := uc.generator.GenerateAnswer(ctx, question, sources)
	if err != nil {
		uc.recordFailure(start)
		return nil, fmt.Errorf("generate answer: %w", err)
	}
	generationDur := time.Since(generationStart)

	scoringStart := time.Now()
	breakdown := uc.scorer.Score(answer, sources, retrievalScores(sources))
	scoringDur := time.Since(scoringStart)

	record := domain.AnswerRecord{
		Answer:     answer,
		Sources:    sources,
		Confidence: breakdown,
		Duration:   time.Since(start),
	}
	uc.cache.Put(key, record)

	uc.collector.Record(telemetry.Sample{
		Total: record.Duration,
		Stages: telemetry.StageLatencies{
			Retrieval:  retrievalDur,
			Fusion:     fusionDur,
			Generation: generationDur,
			Scoring:    scoringDur,
		},
		Success:       true,
		Confidence:    breakdown.Overall,
		HasConfidence: true,
	})

	return &record, nil
}

// retrieve produces the two candidate lists. Semantic search failure is
// fatal; a failing or empty lexical backend degrades to semantic-only
// fusion rather than an error.
func (uc *AskUseCase) retrieve(ctx context.Context, question string) (domain.RankedList, domain.RankedList, error) {
	queryVector, err := uc.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return nil, nil, fmt.Errorf("embed query: %w", err)
	}

	semList, err := uc.semantic.Search(ctx, queryVector, uc.candidates)
	if err != nil {
		return nil, nil, fmt.Errorf("semantic search: %w", err)
	}

	lexList, err := uc.lexical.Search(ctx, question, uc.candidates)
	if err != nil {
		slog.Warn("lexical search degraded to semantic-only", "error", err)
		lexList = nil
	}
	return semList, lexList, nil
}

func (uc *AskUseCase) recordFailure(start time.Time) {
	uc.collector.Record(telemetry.Sample{
		Total:   time.Since(start),
		Success: false,
	})
}

// retrievalScores pulls the similarity scores the search backends
// attached to the fused sources; zero-valued scores are omitted so the
// scorer falls back to its count-based heuristic.
func retrievalScores(sources []domain.Document) []float64 {
	out := make([]float64, 0, len(sources))
	for _, doc := range sources {
		if doc.Score > 0 {
			out = append(out, doc.Score)
		}
	}
	return out
}
