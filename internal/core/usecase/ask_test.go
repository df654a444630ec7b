package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/akozyrev/techdocs-qa/internal/core/confidence"
	"github.com/akozyrev/techdocs-qa/internal/core/domain"
	"github.com/akozyrev/techdocs-qa/internal/core/fusion"
	"github.com/akozyrev/techdocs-qa/internal/core/ports"
	"github.com/akozyrev/techdocs-qa/internal/core/respcache"
	"github.com/akozyrev/techdocs-qa/internal/core/telemetry"
)

type askEmbedderFake struct {
	calls int
	err   error
}

func (f *askEmbedderFake) Embed(context.Context, []string) ([][]float32, error) { return nil, nil }
func (f *askEmbedderFake) EmbedQuery(context.Context, string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []float32{0.1, 0.2}, nil
}

type askSemanticFake struct {
	list  domain.RankedList
	limit int
	err   error
}

func (f *askSemanticFake) IndexDocuments(context.Context, []domain.Document, [][]float32) error {
	return nil
}
func (f *askSemanticFake) Search(_ context.Context, _ []float32, limit int) (domain.RankedList, error) {
	f.limit = limit
	return f.list, f.err
}

type askLexicalFake struct {
	list domain.RankedList
	err  error
}

func (f *askLexicalFake) IndexDocuments(context.Context, []domain.Document) error { return nil }
func (f *askLexicalFake) Search(context.Context, string, int) (domain.RankedList, error) {
	return f.list, f.err
}

type askGeneratorFake struct {
	calls   int
	answer  string
	sources []domain.Document
	err     error
}

func (f *askGeneratorFake) GenerateAnswer(_ context.Context, _ string, sources []domain.Document) (string, error) {
	f.calls++
	f.sources = sources
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

func newAskFixture(t *testing.T, semantic *askSemanticFake, lexical *askLexicalFake, generator *askGeneratorFake) (*AskUseCase, *telemetry.Aggregator, *respcache.Cache) {
	t.Helper()
	cache, err := respcache.New(16, time.Minute)
	if err != nil {
		t.Fatalf("respcache.New() error = %v", err)
	}
	fuser, err := fusion.NewEngine(0.5, 60)
	if err != nil {
		t.Fatalf("fusion.NewEngine() error = %v", err)
	}
	collector, err := telemetry.NewAggregator(32)
	if err != nil {
		t.Fatalf("telemetry.NewAggregator() error = %v", err)
	}

	uc := NewAskUseCase(
		cache, fuser, confidence.NewScorer(), collector,
		&askEmbedderFake{}, semantic, lexical, generator,
		5, 15,
	)
	return uc, collector, cache
}

func TestAskRejectsBlankQuestion(t *testing.T) {
	uc, _, _ := newAskFixture(t, &askSemanticFake{}, &askLexicalFake{}, &askGeneratorFake{answer: "x"})

	_, err := uc.Ask(context.Background(), "   ", ports.AskOptions{})
	if err == nil {
		t.Fatalf("expected error for blank question")
	}
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestAskFusesBothListsAndScoresAnswer(t *testing.T) {
	semantic := &askSemanticFake{list: domain.RankedList{
		{ID: "c1", Text: "the snr is 98 db", Source: "amp.pdf", Score: 0.9},
		{ID: "c2", Text: "output power 100 watts", Source: "amp.pdf", Score: 0.8},
	}}
	lexical := &askLexicalFake{list: domain.RankedList{
		{ID: "c2", Text: "output power 100 watts", Source: "amp.pdf", Score: 4.1},
		{ID: "c3", Text: "impedance 8 ohm", Source: "amp.pdf", Score: 2.2},
	}}
	generator := &askGeneratorFake{answer: "The SNR is 98 db and output power is 100 watts."}
	uc, collector, _ := newAskFixture(t, semantic, lexical, generator)

	record, err := uc.Ask(context.Background(), "What is the SNR?", ports.AskOptions{Depth: 2})
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if len(record.Sources) != 2 {
		t.Fatalf("expected fused sources truncated to depth 2, got %d", len(record.Sources))
	}
	if record.Sources[0].ID != "c2" {
		t.Fatalf("expected c2 (in both lists) ranked first, got %s", record.Sources[0].ID)
	}
	if record.Confidence.Label == "" || record.Confidence.Explanation == "" {
		t.Fatalf("expected populated confidence block, got %+v", record.Confidence)
	}
	if semantic.limit != 15 {
		t.Fatalf("expected candidate limit 15, got %d", semantic.limit)
	}

	stats := collector.Snapshot()
	if stats.Count != 1 || stats.SuccessRate != 1 {
		t.Fatalf("expected one successful sample, got %+v", stats)
	}
	if stats.CacheHitRate != 0 {
		t.Fatalf("expected miss on first ask, got %+v", stats)
	}
}

func TestAskServesSecondCallFromCache(t *testing.T) {
	generator := &askGeneratorFake{answer: "Answer text."}
	semantic := &askSemanticFake{list: domain.RankedList{{ID: "c1", Text: "answer text", Source: "a.pdf", Score: 0.9}}}
	uc, collector, _ := newAskFixture(t, semantic, &askLexicalFake{}, generator)

	first, err := uc.Ask(context.Background(), "Same question", ports.AskOptions{})
	if err != nil {
		t.Fatalf("first Ask() error = %v", err)
	}
	second, err := uc.Ask(context.Background(), "  same   QUESTION ", ports.AskOptions{})
	if err != nil {
		t.Fatalf("second Ask() error = %v", err)
	}

	if generator.calls != 1 {
		t.Fatalf("expected generation skipped on cache hit, got %d calls", generator.calls)
	}
	if second.Answer != first.Answer {
		t.Fatalf("expected cached answer, got %q vs %q", second.Answer, first.Answer)
	}
	stats := collector.Snapshot()
	if stats.CacheHitRate != 0.5 {
		t.Fatalf("expected 1 of 2 samples as cache hit, got %+v", stats)
	}
}

func TestAskLexicalFailureDegradesToSemanticOnly(t *testing.T) {
	semantic := &askSemanticFake{list: domain.RankedList{{ID: "c1", Text: "only source", Source: "a.pdf", Score: 0.7}}}
	lexical := &askLexicalFake{err: errors.New("index offline")}
	generator := &askGeneratorFake{answer: "Only source says so."}
	uc, _, _ := newAskFixture(t, semantic, lexical, generator)

	record, err := uc.Ask(context.Background(), "degraded?", ports.AskOptions{})
	if err != nil {
		t.Fatalf("expected lexical failure to degrade, got error %v", err)
	}
	if len(record.Sources) != 1 || record.Sources[0].ID != "c1" {
		t.Fatalf("expected semantic-only sources, got %+v", record.Sources)
	}
}

func TestAskGenerationFailureRecordsFailedSample(t *testing.T) {
	semantic := &askSemanticFake{list: domain.RankedList{{ID: "c1", Text: "t", Source: "a.pdf"}}}
	generator := &askGeneratorFake{err: errors.New("model unavailable")}
	uc, collector, cache := newAskFixture(t, semantic, &askLexicalFake{}, generator)

	if _, err := uc.Ask(context.Background(), "boom", ports.AskOptions{}); err == nil {
		t.Fatalf("expected generation error to propagate")
	}
	stats := collector.Snapshot()
	if stats.Count != 1 || stats.SuccessRate != 0 {
		t.Fatalf("expected one failed sample, got %+v", stats)
	}
	if cacheStats := cache.Stats(); cacheStats.Size != 0 {
		t.Fatalf("expected no cache entry for failed answer, got %+v", cacheStats)
	}
}

func TestAskEmbedderFailurePropagates(t *testing.T) {
	uc, _, _ := newAskFixture(t, &askSemanticFake{}, &askLexicalFake{}, &askGeneratorFake{answer: "x"})
	uc.embedder = &askEmbedderFake{err: errors.New("embed fail")}

	if _, err := uc.Ask(context.Background(), "q", ports.AskOptions{}); err == nil {
		t.Fatalf("expected error")
	}
}
