package server

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/dmorgan81/seedream/internal/config"
	"github.com/dmorgan81/seedream/internal/handler"
	"github.com/dmorgan81/seedream/internal/image"
	"github.com/dmorgan81/seedream/internal/log"
	"github.com/dmorgan81/seedream/internal/request"
	"github.com/dmorgan81/seedream/internal/store"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/samber/do"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	output any
	calls  int
}

func (g *fakeGenerator) Generate(context.Context, string, request.Payload) (any, error) {
	g.calls++
	return g.output, nil
}

type fakeDownloader struct{}

func (fakeDownloader) Download(_ context.Context, _ string, name string) (store.Asset, error) {
	return store.Asset{Path: "/tmp/" + name}, nil
}

func newTestServer(t *testing.T, version request.Version, gen image.Generator) *Server {
	t.Helper()
	i := do.New()
	do.ProvideValue(i, &config.Config{
		ModelVersion:   version,
		MaxConcurrent:  1,
		RequestTimeout: time.Second,
		OutputDir:      t.TempDir(),
	})
	do.ProvideValue(i, log.New(io.Discard, slog.LevelDebug))
	do.ProvideValue[store.Downloader](i, fakeDownloader{})
	do.Provide(i, func(*do.Injector) (image.Generator, error) {
		if gen == nil {
			return nil, image.ErrMissingToken
		}
		return gen, nil
	})
	do.Provide(i, handler.NewHandler)
	do.Provide(i, NewServer)
	return do.MustInvoke[*Server](i)
}

func call(t *testing.T, s *Server, args any) (*mcp.CallToolResult, string) {
	t.Helper()
	var req mcp.CallToolRequest
	req.Params.Name = ToolName
	req.Params.Arguments = args

	res, err := s.handle(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return res, text.Text
}

func TestToolSchemas(t *testing.T) {
	v3 := Tool(request.V3)
	require.Equal(t, ToolName, v3.Name)
	require.Equal(t, []string{"prompt"}, v3.InputSchema.Required)
	aspect := v3.InputSchema.Properties["aspect_ratio"].(map[string]any)
	require.Equal(t, request.V3AspectRatios, aspect["enum"])
	require.Equal(t, "16:9", aspect["default"])
	require.Contains(t, v3.InputSchema.Properties, "guidance_scale")
	require.NotContains(t, v3.InputSchema.Properties, "image_input")

	v4 := Tool(request.V4)
	require.Equal(t, ToolName, v4.Name)
	size := v4.InputSchema.Properties["size"].(map[string]any)
	require.Equal(t, request.V4Sizes, size["enum"])
	maxImages := v4.InputSchema.Properties["max_images"].(map[string]any)
	require.Equal(t, float64(1), maxImages["minimum"])
	require.Equal(t, float64(15), maxImages["maximum"])
	require.Contains(t, v4.InputSchema.Properties, "image_input")
	require.NotContains(t, v4.InputSchema.Properties, "guidance_scale")
}

func TestHandleSuccess(t *testing.T) {
	gen := &fakeGenerator{output: []any{"https://replicate.delivery/a.png", "https://replicate.delivery/b.png"}}
	s := newTestServer(t, request.V4, gen)

	res, text := call(t, s, map[string]any{"prompt": "two cats", "max_images": float64(2), "sequential_image_generation": "auto"})
	require.False(t, res.IsError)
	require.Contains(t, text, "Generated 2 image(s)")
	require.Contains(t, text, "Prompt: two cats")
	require.Contains(t, text, "2 of 2 images saved")
	require.Equal(t, 1, gen.calls)
}

func TestHandleValidationError(t *testing.T) {
	gen := &fakeGenerator{output: "https://replicate.delivery/a.png"}
	s := newTestServer(t, request.V3, gen)

	res, text := call(t, s, map[string]any{"prompt": "x", "aspect_ratio": "7:5"})
	require.True(t, res.IsError)
	require.Contains(t, text, "InvalidAspectRatio")
	require.Contains(t, text, "21:9")
	require.Zero(t, gen.calls)

	res, text = call(t, s, nil)
	require.True(t, res.IsError)
	require.Contains(t, text, "MissingPrompt")
}

func TestHandleWithoutCredential(t *testing.T) {
	s := newTestServer(t, request.V4, nil)

	for i := 0; i < 2; i++ {
		res, text := call(t, s, map[string]any{"prompt": "x"})
		require.True(t, res.IsError)
		require.Contains(t, text, "Configuration error")
		require.Contains(t, text, "REPLICATE_API_TOKEN")
	}
}
