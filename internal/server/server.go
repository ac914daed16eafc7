package server

import (
	"context"
	"io"
	"log/slog"
	"runtime/debug"

	"github.com/dmorgan81/seedream/internal/handler"
	"github.com/dmorgan81/seedream/internal/log"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/samber/do"
	"github.com/samber/lo"
)

type Server struct {
	mcp     *mcpserver.MCPServer
	handler *handler.Handler
	logger  *slog.Logger
}

func NewServer(i *do.Injector) (*Server, error) {
	s := &Server{
		handler: do.MustInvoke[*handler.Handler](i),
		logger:  do.MustInvoke[*slog.Logger](i),
	}

	s.mcp = mcpserver.NewMCPServer("seedream", revision(), mcpserver.WithToolCapabilities(false))
	s.mcp.AddTool(Tool(s.handler.Version()), s.handle)
	return s, nil
}

func revision() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}
	setting := lo.FindOrElse(info.Settings, debug.BuildSetting{Value: "unknown"}, func(s debug.BuildSetting) bool {
		return s.Key == "vcs.revision"
	})
	return setting.Value
}

// handle never returns a protocol error: every failure becomes a tool result
// flagged isError so the client sees the message and the server keeps running.
func (s *Server) handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx = log.NewContext(ctx, s.logger)

	result, err := s.handler.Generate(ctx, req.GetArguments())
	if err != nil {
		return mcp.NewToolResultError(handler.FormatError(err)), nil
	}
	return mcp.NewToolResultText(handler.Format(result)), nil
}

// Serve speaks MCP over the given streams until in is exhausted or ctx is done.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	s.logger.Info("serving MCP over stdio", "tool", ToolName, "version", s.handler.Version())

	stdio := mcpserver.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(slog.NewLogLogger(s.logger.Handler(), slog.LevelError))
	return stdio.Listen(log.NewContext(ctx, s.logger), in, out)
}
