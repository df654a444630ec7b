package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	mcpadapter "github.com/akozyrev/techdocs-qa/internal/adapters/mcp"
	"github.com/akozyrev/techdocs-qa/internal/bootstrap"
	"github.com/akozyrev/techdocs-qa/internal/config"
	"github.com/akozyrev/techdocs-qa/internal/observability/logging"
)

// The MCP transport owns stdout, so logs go to stderr here.
func main() {
	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLoggerTo(os.Stderr, "mcp", cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		slog.Error("bootstrap failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	srv := mcpadapter.NewServer(app.AskUC, app.Collector, app.Cache)
	if err := srv.ServeStdio(); err != nil {
		slog.Error("mcp server failed", "error", err)
		os.Exit(1)
	}
}
