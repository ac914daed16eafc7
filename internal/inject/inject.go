package inject

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudfront"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	appconfig "github.com/dmorgan81/seedream/internal/config"
	"github.com/dmorgan81/seedream/internal/handler"
	"github.com/dmorgan81/seedream/internal/image"
	"github.com/dmorgan81/seedream/internal/log"
	"github.com/dmorgan81/seedream/internal/param"
	"github.com/dmorgan81/seedream/internal/server"
	"github.com/dmorgan81/seedream/internal/store"
	"github.com/replicate/replicate-go"
	"github.com/samber/do"
)

func Setup(ctx context.Context, cfg *appconfig.Config) *do.Injector {
	logger := log.FromContextOrDiscard(ctx)

	injector := do.NewWithOpts(&do.InjectorOpts{
		Logf: func(format string, args ...any) {
			logger.Debug(fmt.Sprintf(format, args...))
		},
	})
	do.ProvideValue[*appconfig.Config](injector, cfg)
	do.ProvideValue[*slog.Logger](injector, logger)
	do.ProvideValue[*http.Client](injector, &http.Client{Timeout: cfg.RequestTimeout})

	do.Provide[aws.Config](injector, func(i *do.Injector) (aws.Config, error) {
		return config.LoadDefaultConfig(ctx)
	})
	do.Provide[*ssm.Client](injector, func(i *do.Injector) (*ssm.Client, error) {
		return ssm.NewFromConfig(do.MustInvoke[aws.Config](i)), nil
	})
	do.Provide[*s3.Client](injector, func(i *do.Injector) (*s3.Client, error) {
		return s3.NewFromConfig(do.MustInvoke[aws.Config](i)), nil
	})
	do.Provide[*cloudfront.Client](injector, func(i *do.Injector) (*cloudfront.Client, error) {
		return cloudfront.NewFromConfig(do.MustInvoke[aws.Config](i)), nil
	})

	do.ProvideNamed[string](injector, "replicate_token", func(i *do.Injector) (string, error) {
		if cfg.APIToken != "" {
			return cfg.APIToken, nil
		}
		if cfg.APITokenParam == "" {
			return "", image.ErrMissingToken
		}
		fetcher, err := do.Invoke[param.Fetcher](i)
		if err != nil {
			return "", err
		}
		return fetcher.Fetch(ctx, cfg.APITokenParam)
	})
	do.Provide[*replicate.Client](injector, func(i *do.Injector) (*replicate.Client, error) {
		token, err := do.InvokeNamed[string](i, "replicate_token")
		if err != nil {
			return nil, err
		}
		return replicate.NewClient(replicate.WithToken(token))
	})

	do.ProvideNamedValue[string](injector, "bucket", cfg.S3Bucket)
	do.ProvideNamedValue[string](injector, "prefix", cfg.S3Prefix)
	do.ProvideNamedValue[string](injector, "distribution", cfg.Distribution)

	do.Provide[param.Fetcher](injector, param.NewParameterStoreFetcher)
	do.Provide[image.Generator](injector, image.NewReplicateGenerator)
	do.ProvideNamedValue[store.Uploader](injector, "local", &store.FileUploader{Dir: cfg.OutputDir})
	do.ProvideNamed[store.Uploader](injector, "mirror", store.NewS3Uploader)
	do.Provide[store.Downloader](injector, store.NewHTTPDownloader)
	do.Provide[store.Invalidator](injector, store.NewCloudFrontInvalidator)

	do.Provide[*handler.Handler](injector, handler.NewHandler)
	do.Provide[*server.Server](injector, server.NewServer)

	return injector
}
