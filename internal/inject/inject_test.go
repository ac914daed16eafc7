package inject

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"testing"
	"time"

	appconfig "github.com/dmorgan81/seedream/internal/config"
	"github.com/dmorgan81/seedream/internal/handler"
	"github.com/dmorgan81/seedream/internal/image"
	"github.com/dmorgan81/seedream/internal/log"
	"github.com/dmorgan81/seedream/internal/param"
	"github.com/dmorgan81/seedream/internal/request"
	"github.com/dmorgan81/seedream/internal/server"
	"github.com/dmorgan81/seedream/internal/store"
	"github.com/samber/do"
	"github.com/stretchr/testify/require"
)

type stubFetcher struct {
	value string
	err   error
	paths []string
}

func (f *stubFetcher) Fetch(_ context.Context, path string) (string, error) {
	f.paths = append(f.paths, path)
	return f.value, f.err
}

func testConfig(t *testing.T) *appconfig.Config {
	return &appconfig.Config{
		ModelVersion:   request.V4,
		LogLevel:       "debug",
		MaxConcurrent:  1,
		RequestTimeout: time.Minute,
		OutputDir:      t.TempDir(),
		S3Prefix:       "seedream",
	}
}

func TestSetupWithoutCredential(t *testing.T) {
	ctx := log.NewContext(context.Background(), log.New(&bytes.Buffer{}, slog.LevelDebug))
	injector := Setup(ctx, testConfig(t))
	t.Cleanup(func() { _ = injector.Shutdown() })

	_, err := do.Invoke[image.Generator](injector)
	require.ErrorIs(t, err, image.ErrMissingToken)

	require.NotNil(t, do.MustInvoke[*server.Server](injector))

	h := do.MustInvoke[*handler.Handler](injector)
	_, err = h.Generate(ctx, map[string]any{"prompt": "x"})
	require.Contains(t, err.Error(), "REPLICATE_API_TOKEN")
}

func TestSetupWithToken(t *testing.T) {
	cfg := testConfig(t)
	cfg.APIToken = "r8_test"
	injector := Setup(context.Background(), cfg)
	t.Cleanup(func() { _ = injector.Shutdown() })

	gen, err := do.Invoke[image.Generator](injector)
	require.NoError(t, err)
	require.IsType(t, &image.ReplicateGenerator{}, gen)

	d, err := do.Invoke[store.Downloader](injector)
	require.NoError(t, err)
	require.Nil(t, d.(*store.HTTPDownloader).Mirror)
	require.Equal(t, cfg.OutputDir, d.(*store.HTTPDownloader).Local.(*store.FileUploader).Dir)
}

func TestSetupDownloadClientTimeout(t *testing.T) {
	cfg := testConfig(t)
	injector := Setup(context.Background(), cfg)
	t.Cleanup(func() { _ = injector.Shutdown() })

	client := do.MustInvoke[*http.Client](injector)
	require.Equal(t, time.Minute, client.Timeout)
	require.Same(t, client, do.MustInvoke[store.Downloader](injector).(*store.HTTPDownloader).Client)
}

func TestSetupWithTokenParameter(t *testing.T) {
	cfg := testConfig(t)
	cfg.APITokenParam = "/seedream/replicate-token"
	injector := Setup(context.Background(), cfg)
	t.Cleanup(func() { _ = injector.Shutdown() })

	fetcher := &stubFetcher{value: "r8_from_ssm"}
	do.Override[param.Fetcher](injector, func(*do.Injector) (param.Fetcher, error) {
		return fetcher, nil
	})

	gen, err := do.Invoke[image.Generator](injector)
	require.NoError(t, err)
	require.IsType(t, &image.ReplicateGenerator{}, gen)
	require.Equal(t, "r8_from_ssm", do.MustInvokeNamed[string](injector, "replicate_token"))
	require.Equal(t, []string{"/seedream/replicate-token"}, fetcher.paths)
}

func TestSetupTokenParameterFailure(t *testing.T) {
	cfg := testConfig(t)
	cfg.APITokenParam = "/seedream/replicate-token"
	injector := Setup(context.Background(), cfg)
	t.Cleanup(func() { _ = injector.Shutdown() })

	cause := errors.New("ParameterNotFound")
	do.Override[param.Fetcher](injector, func(*do.Injector) (param.Fetcher, error) {
		return &stubFetcher{err: cause}, nil
	})

	h := do.MustInvoke[*handler.Handler](injector)
	for i := 0; i < 2; i++ {
		_, err := h.Generate(context.Background(), map[string]any{"prompt": "x"})
		var cerr *handler.ConfigurationError
		require.True(t, errors.As(err, &cerr))
		require.ErrorIs(t, err, cause)
		require.Contains(t, handler.FormatError(err), "REPLICATE_API_TOKEN")
	}
}
