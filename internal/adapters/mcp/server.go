package mcpadapter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/akozyrev/techdocs-qa/internal/core/ports"
	"github.com/akozyrev/techdocs-qa/internal/core/respcache"
	"github.com/akozyrev/techdocs-qa/internal/core/telemetry"
)

// Server exposes question answering and pipeline statistics as MCP
// tools, so editor agents can query the documentation corpus directly.
type Server struct {
	ask       ports.QuestionService
	collector *telemetry.Aggregator
	cache     *respcache.Cache

	mcp *server.MCPServer
}

func NewServer(ask ports.QuestionService, collector *telemetry.Aggregator, cache *respcache.Cache) *Server {
	s := &Server{
		ask:       ask,
		collector: collector,
		cache:     cache,
	}

	s.mcp = server.NewMCPServer(
		"techdocs-qa",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	s.mcp.AddTool(
		mcp.NewTool("ask_documentation",
			mcp.WithDescription("Answer a question from the indexed technical documentation, with sources and a confidence breakdown."),
			mcp.WithString("question", mcp.Required(), mcp.Description("The question to answer")),
			mcp.WithNumber("depth", mcp.Description("How many fused source documents to use (default from server config)")),
		),
		s.handleAsk,
	)

	s.mcp.AddTool(
		mcp.NewTool("get_system_stats",
			mcp.WithDescription("Return rolling query telemetry and answer cache counters."),
		),
		s.handleStats,
	)

	return s
}

// ServeStdio blocks serving the MCP protocol over stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

func (s *Server) handleAsk(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question, err := req.RequireString("question")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	depth := req.GetInt("depth", 0)

	record, err := s.ask.Ask(ctx, question, ports.AskOptions{Depth: depth})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("ask failed: %v", err)), nil
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("marshal answer: %w", err)
	}
	return mcp.NewToolResultText(string(payload)), nil
}

func (s *Server) handleStats(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats := struct {
		Telemetry telemetry.AggregateStats `json:"telemetry"`
		Cache     respcache.Stats          `json:"cache"`
	}{
		Telemetry: s.collector.Snapshot(),
		Cache:     s.cache.Stats(),
	}

	payload, err := json.Marshal(stats)
	if err != nil {
		return nil, fmt.Errorf("marshal stats: %w", err)
	}
	return mcp.NewToolResultText(string(payload)), nil
}
