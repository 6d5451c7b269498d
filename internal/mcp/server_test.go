package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/0x5457/phosim/internal/embeddings"
	"github.com/0x5457/phosim/internal/models"
	"github.com/0x5457/phosim/internal/similarity"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func localService() *similarity.Service {
	return &similarity.Service{Encoder: &similarity.Encoder{
		Embedder: embeddings.NewLocal(768, 256),
		Dim:      768,
	}}
}

type failingScorer struct{ err error }

func (f failingScorer) Similarity(context.Context, string, string) (float64, error) {
	return 0, f.err
}

func (f failingScorer) BatchSimilarity(context.Context, string, []string) ([]float64, error) {
	return nil, f.err
}

func newTestServer(scorer Scorer) *Server {
	return &Server{scorer: scorer, logger: zap.NewNop()}
}

func callRequest(name string, args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{Params: mcp.CallToolParams{Name: name, Arguments: args}}
}

func TestNew(t *testing.T) {
	assert.NotNil(t, New(localService(), nil))
}

func TestToolDefinitions(t *testing.T) {
	tests := []struct {
		toolFunc func() mcp.Tool
		name     string
		required []string
	}{
		{newSimilarityTool, ToolSimilarity, []string{"sentence1", "sentence2"}},
		{newBatchSimilarityTool, ToolBatchSimilarity, []string{"sentence", "candidates"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tool := tt.toolFunc()
			assert.Equal(t, tt.name, tool.Name)
			assert.NotEmpty(t, tool.Description)
			assert.ElementsMatch(t, tt.required, tool.InputSchema.Required)
			for _, p := range tt.required {
				assert.Contains(t, tool.InputSchema.Properties, p)
			}
		})
	}
}

func TestBatchSimilarityTool_CandidatesSchema(t *testing.T) {
	tool := newBatchSimilarityTool()
	prop := tool.InputSchema.Properties["candidates"].(map[string]any)
	assert.Equal(t, "array", prop["type"])
	assert.Contains(t, prop, "items")
}

func TestHandleSimilarity(t *testing.T) {
	srv := newTestServer(localService())
	result, err := srv.handleSimilarity(context.Background(), callRequest(ToolSimilarity, map[string]any{
		"sentence1": "Xin chào",
		"sentence2": "Xin chào",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var out models.SimilarityResponse
	require.NoError(t, DecodeResult(result, &out))
	assert.InDelta(t, 1.0, out.Similarity, 1e-5)
}

func TestHandleBatchSimilarity(t *testing.T) {
	srv := newTestServer(localService())
	result, err := srv.handleBatchSimilarity(context.Background(), callRequest(ToolBatchSimilarity, map[string]any{
		"sentence":   "mèo",
		"candidates": []any{"chó", "mèo", "ô tô"},
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var out models.BatchSimilarityResponse
	require.NoError(t, DecodeResult(result, &out))
	require.Len(t, out.Similarities, 3)
	assert.InDelta(t, 1.0, out.Similarities[1], 1e-5)
}

func TestHandleMissingArguments(t *testing.T) {
	srv := newTestServer(localService())
	ctx := context.Background()

	tests := []struct {
		name   string
		handle func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)
		args   map[string]any
	}{
		{"similarity no args", srv.handleSimilarity, map[string]any{}},
		{"similarity one sentence", srv.handleSimilarity, map[string]any{"sentence1": "a"}},
		{"batch no candidates", srv.handleBatchSimilarity, map[string]any{"sentence": "a"}},
		{"batch no sentence", srv.handleBatchSimilarity, map[string]any{"candidates": []any{"a"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := tt.handle(ctx, callRequest("x", tt.args))
			require.NoError(t, err)
			assert.True(t, result.IsError)
			assert.NotEmpty(t, result.Content)
		})
	}
}

func TestHandleScorerError(t *testing.T) {
	srv := newTestServer(failingScorer{err: errors.New("provider down")})

	result, err := srv.handleSimilarity(context.Background(), callRequest(ToolSimilarity, map[string]any{
		"sentence1": "a",
		"sentence2": "b",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.ErrorContains(t, DecodeResult(result, &models.SimilarityResponse{}), "provider down")
}

func TestHandleNilScorer(t *testing.T) {
	srv := newTestServer(nil)
	result, err := srv.handleBatchSimilarity(context.Background(), callRequest(ToolBatchSimilarity, map[string]any{
		"sentence":   "a",
		"candidates": []any{"b"},
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}
