package mcp

import (
	"context"

	"github.com/0x5457/phosim/internal/models"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

const (
	ServerName    = "phosim/mcp"
	ServerVersion = "0.1.0"

	ToolSimilarity      = "similarity"
	ToolBatchSimilarity = "batch_similarity"
)

// Scorer is the part of the similarity service the tools call into.
type Scorer interface {
	Similarity(ctx context.Context, sentence1, sentence2 string) (float64, error)
	BatchSimilarity(ctx context.Context, sentence string, candidates []string) ([]float64, error)
}

// Server holds the tool handlers. Failures are reported as tool error
// results so the session stays usable.
type Server struct {
	scorer Scorer
	logger *zap.Logger
}

// New returns an MCP server exposing the similarity tools.
func New(scorer Scorer, logger *zap.Logger) *server.MCPServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	srv := &Server{scorer: scorer, logger: logger.Named("mcp")}

	s := server.NewMCPServer(
		ServerName,
		ServerVersion,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)
	s.AddTool(newSimilarityTool(), srv.handleSimilarity)
	s.AddTool(newBatchSimilarityTool(), srv.handleBatchSimilarity)
	return s
}

func newSimilarityTool() mcp.Tool {
	return mcp.NewTool(
		ToolSimilarity,
		mcp.WithDescription("Cosine similarity between the PhoBERT embeddings of two Vietnamese sentences"),
		mcp.WithString("sentence1", mcp.Description("First sentence"), mcp.Required()),
		mcp.WithString("sentence2", mcp.Description("Second sentence"), mcp.Required()),
	)
}

func newBatchSimilarityTool() mcp.Tool {
	return mcp.NewTool(
		ToolBatchSimilarity,
		mcp.WithDescription("Score every candidate against one reference sentence, in input order"),
		mcp.WithString("sentence", mcp.Description("Reference sentence"), mcp.Required()),
		mcp.WithArray("candidates",
			mcp.Description("Candidate sentences"),
			mcp.Required(),
			mcp.WithStringItems(),
		),
	)
}

func (srv *Server) handleSimilarity(
	ctx context.Context,
	req mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {
	sentence1, err := req.RequireString("sentence1")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sentence2, err := req.RequireString("sentence2")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if srv.scorer == nil {
		return mcp.NewToolResultError("similarity service not initialized"), nil
	}

	score, err := srv.scorer.Similarity(ctx, sentence1, sentence2)
	if err != nil {
		srv.logger.Warn("tool failed", zap.String("tool", ToolSimilarity), zap.Error(err))
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultStructuredOnly(models.SimilarityResponse{Similarity: score}), nil
}

func (srv *Server) handleBatchSimilarity(
	ctx context.Context,
	req mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {
	sentence, err := req.RequireString("sentence")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	candidates, err := req.RequireStringSlice("candidates")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if srv.scorer == nil {
		return mcp.NewToolResultError("similarity service not initialized"), nil
	}

	scores, err := srv.scorer.BatchSimilarity(ctx, sentence, candidates)
	if err != nil {
		srv.logger.Warn("tool failed",
			zap.String("tool", ToolBatchSimilarity),
			zap.Int("candidates", len(candidates)),
			zap.Error(err),
		)
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultStructuredOnly(models.BatchSimilarityResponse{Similarities: scores}), nil
}
