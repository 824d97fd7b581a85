// Package mcpserver registers the tools with an MCP server that speaks over
// stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/pevans/wechatfed/failure"
	"github.com/pevans/wechatfed/tools"
	"github.com/sirupsen/logrus"
)

// Name is the server name announced to clients.
const Name = "wechatfed"

// Runner runs a tool by name. *tools.Service implements it.
type Runner interface {
	Call(ctx context.Context, name string, raw json.RawMessage) (string, error)
}

// Server adapts a Runner to MCP.
type Server struct {
	runner Runner
	log    logrus.FieldLogger
	mcp    *server.MCPServer
}

// New creates a server with every tool registered.
func New(runner Runner, version string, log logrus.FieldLogger) *Server {
	s := &Server{
		runner: runner,
		log:    log,
		mcp: server.NewMCPServer(Name, version,
			server.WithToolCapabilities(false),
			server.WithRecovery(),
		),
	}

	for _, t := range tools.Tools() {
		s.mcp.AddTool(Definition(t), s.handler(t.Name))
	}

	return s
}

// ServeStdio serves requests on stdin and stdout until stdin closes. The
// logger must not write to stdout.
func (s *Server) ServeStdio(logger *logrus.Logger) error {
	s.log.WithField("tools", len(tools.Tools())).Info("serving MCP over stdio")
	return server.ServeStdio(s.mcp, server.WithErrorLogger(log.New(logger.Writer(), "", 0)))
}

// Definition converts a tool descriptor into an MCP tool with typed
// parameters and behaviour hints.
func Definition(t tools.Tool) mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(t.Description),
		mcp.WithTitleAnnotation(t.Title),
		mcp.WithReadOnlyHintAnnotation(t.ReadOnly),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(t.Idempotent),
		mcp.WithOpenWorldHintAnnotation(t.OpenWorld),
	}

	for _, p := range t.Params {
		props := []mcp.PropertyOption{mcp.Description(p.Description)}
		if p.Required {
			props = append(props, mcp.Required())
		}

		switch p.Type {
		case "integer":
			if d, ok := p.Default.(int); ok {
				props = append(props, mcp.DefaultNumber(float64(d)))
			}
			if p.Min != nil {
				props = append(props, mcp.Min(float64(*p.Min)))
			}
			if p.Max != nil {
				props = append(props, mcp.Max(float64(*p.Max)))
			}
			opts = append(opts, mcp.WithNumber(p.Name, props...))
		case "boolean":
			if d, ok := p.Default.(bool); ok {
				props = append(props, mcp.DefaultBool(d))
			}
			opts = append(opts, mcp.WithBoolean(p.Name, props...))
		default:
			if d, ok := p.Default.(string); ok {
				props = append(props, mcp.DefaultString(d))
			}
			if len(p.Enum) > 0 {
				props = append(props, mcp.Enum(p.Enum...))
			}
			if p.Min != nil {
				props = append(props, mcp.MinLength(*p.Min))
			}
			if p.Max != nil {
				props = append(props, mcp.MaxLength(*p.Max))
			}
			opts = append(opts, mcp.WithString(p.Name, props...))
		}
	}

	return mcp.NewTool(t.Name, opts...)
}

func (s *Server) handler(name string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		raw, err := json.Marshal(request.GetArguments())
		if err != nil {
			return mcp.NewToolResultError(ErrorText(failure.Validation("参数格式错误: %v", err))), nil
		}

		out, err := s.runner.Call(ctx, name, raw)
		if err != nil {
			return mcp.NewToolResultError(ErrorText(err)), nil
		}
		return mcp.NewToolResultText(out), nil
	}
}

// ErrorText renders a failure as the text of a tool error result:
// the message followed by the suggestion.
func ErrorText(err error) string {
	var f *failure.Error
	if !errors.As(err, &f) {
		f = failure.Classify(err)
	}
	return fmt.Sprintf("%s. %s", f.Message, f.Suggestion)
}
