package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/akozyrev/techdocs-qa/internal/config"
	"github.com/akozyrev/techdocs-qa/internal/core/confidence"
	"github.com/akozyrev/techdocs-qa/internal/core/fusion"
	"github.com/akozyrev/techdocs-qa/internal/core/ports"
	"github.com/akozyrev/techdocs-qa/internal/core/respcache"
	"github.com/akozyrev/techdocs-qa/internal/core/telemetry"
	"github.com/akozyrev/techdocs-qa/internal/core/usecase"
	"github.com/akozyrev/techdocs-qa/internal/infrastructure/chunking"
	"github.com/akozyrev/techdocs-qa/internal/infrastructure/extractor"
	"github.com/akozyrev/techdocs-qa/internal/infrastructure/lexical/bm25"
	"github.com/akozyrev/techdocs-qa/internal/infrastructure/llm/ollama"
	"github.com/akozyrev/techdocs-qa/internal/infrastructure/queue/nats"
	"github.com/akozyrev/techdocs-qa/internal/infrastructure/repository/postgres"
	"github.com/akozyrev/techdocs-qa/internal/infrastructure/resilience"
	"github.com/akozyrev/techdocs-qa/internal/infrastructure/storage/localfs"
	"github.com/akozyrev/techdocs-qa/internal/infrastructure/vector/qdrant"
)

// App holds every wired component. The api, worker, mcp, and evaluate
// entrypoints pick the parts they need.
type App struct {
	Config config.Config

	Queue ports.MessageQueue
	Files ports.FileReader

	IngestUC  ports.FileIngestor
	ProcessUC ports.FileProcessor
	AskUC     ports.QuestionService

	Cache     *respcache.Cache
	Collector *telemetry.Aggregator

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewFileRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultPolicy())

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	ollamaClient := ollama.New(cfg.OllamaURL, cfg.OllamaGenModel, cfg.OllamaEmbedModel).
		WithExecutor(executor)
	embedder := ollama.NewEmbedder(ollamaClient)
	generator := ollama.NewGenerator(ollamaClient)

	semantic := qdrant.New(cfg.QdrantURL, cfg.QdrantCollection)
	lexical := bm25.New()

	chunker := chunking.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap)
	textExtractor := extractor.NewRouter(storage)

	fuser, err := fusion.NewEngine(cfg.FusionAlpha, cfg.FusionRRFK)
	if err != nil {
		return nil, fmt.Errorf("init fusion engine: %w", err)
	}
	cache, err := respcache.New(cfg.CacheMaxSize, time.Duration(cfg.CacheTTLSeconds)*time.Second)
	if err != nil {
		return nil, fmt.Errorf("init response cache: %w", err)
	}
	collector, err := telemetry.NewAggregator(cfg.TelemetryWindow)
	if err != nil {
		return nil, fmt.Errorf("init telemetry aggregator: %w", err)
	}
	scorer := confidence.NewScorer()

	ingestUC := usecase.NewIngestFileUseCase(repo, storage, queue)
	processUC := usecase.NewProcessFileUseCase(repo, textExtractor, chunker, embedder, semantic, lexical)
	askUC := usecase.NewAskUseCase(
		cache, fuser, scorer, collector,
		embedder, semantic, lexical, generator,
		cfg.AskDepth, cfg.HybridCandidates,
	)

	return &App{
		Config: cfg,

		Queue: queue,
		Files: repo,

		IngestUC:  ingestUC,
		ProcessUC: processUC,
		AskUC:     askUC,

		Cache:     cache,
		Collector: collector,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
