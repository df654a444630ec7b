package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/akozyrev/techdocs-qa/internal/bootstrap"
	"github.com/akozyrev/techdocs-qa/internal/config"
	"github.com/akozyrev/techdocs-qa/internal/evaluation"
	"github.com/akozyrev/techdocs-qa/internal/observability/logging"
)

func main() {
	questionsPath := flag.String("questions", "questions.yaml", "path to the YAML question set")
	outputPath := flag.String("out", "evaluation.xlsx", "path for the xlsx report")
	flag.Parse()

	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger("evaluate", cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	set, err := evaluation.LoadQuestionSet(*questionsPath)
	if err != nil {
		slog.Error("load question set failed", "error", err)
		os.Exit(1)
	}

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		slog.Error("bootstrap failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	slog.Info("evaluation started", "set", set.Name, "questions", len(set.Questions))
	report := evaluation.NewEvaluator(app.AskUC).Run(ctx, set)

	if err := evaluation.WriteXLSX(report, *outputPath); err != nil {
		slog.Error("write report failed", "error", err)
		os.Exit(1)
	}
	slog.Info("evaluation finished",
		"answered", report.Summary.Answered,
		"failed", report.Summary.Failed,
		"keyword_hits", report.Summary.KeywordHits,
		"mean_confidence_pct", report.Summary.MeanConfidence,
		"report", *outputPath,
	)
}
