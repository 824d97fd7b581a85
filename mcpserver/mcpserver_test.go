package mcpserver

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/pevans/wechatfed/failure"
	"github.com/pevans/wechatfed/logger"
	"github.com/pevans/wechatfed/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRunner struct {
	result string
	err    error
	name   string
	raw    json.RawMessage
}

func (r *stubRunner) Call(ctx context.Context, name string, raw json.RawMessage) (string, error) {
	r.name = name
	r.raw = raw
	return r.result, r.err
}

func callRequest(name string, args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", result.Content[0])
	return text.Text
}

// TestDefinition verifies parameters and required fields are carried over
func TestDefinition(t *testing.T) {
	search, ok := tools.Lookup(tools.SearchTool)
	require.True(t, ok)

	def := Definition(search)

	assert.Equal(t, tools.SearchTool, def.Name)
	assert.Equal(t, search.Description, def.Description)
	assert.Equal(t, []string{"query"}, def.InputSchema.Required)
	for _, name := range []string{"query", "limit", "page", "format", "detail"} {
		assert.Contains(t, def.InputSchema.Properties, name)
	}

	limit := def.InputSchema.Properties["limit"].(map[string]any)
	assert.Equal(t, "number", limit["type"])
	format := def.InputSchema.Properties["format"].(map[string]any)
	assert.Equal(t, []string{"json", "markdown"}, format["enum"])
}

// TestHandler_Success verifies arguments are forwarded as JSON
func TestHandler_Success(t *testing.T) {
	runner := &stubRunner{result: "# 搜索结果: AI"}
	s := New(runner, "test", logger.Discard())

	result, err := s.handler(tools.SearchTool)(context.Background(), callRequest(tools.SearchTool, map[string]any{
		"query": "AI",
		"limit": 5,
	}))

	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Equal(t, "# 搜索结果: AI", resultText(t, result))
	assert.Equal(t, tools.SearchTool, runner.name)
	assert.JSONEq(t, `{"query":"AI","limit":5}`, string(runner.raw))
}

// TestHandler_Failure verifies failures become tool errors with the
// suggestion
func TestHandler_Failure(t *testing.T) {
	runner := &stubRunner{err: failure.New(failure.KindRateLimit, "访问频率受限", "请降低请求频率")}
	s := New(runner, "test", logger.Discard())

	result, err := s.handler(tools.TrendingTool)(context.Background(), callRequest(tools.TrendingTool, nil))

	require.NoError(t, err, "failures are results, not protocol errors")
	assert.True(t, result.IsError)
	assert.Equal(t, "访问频率受限. 请降低请求频率", resultText(t, result))
}
