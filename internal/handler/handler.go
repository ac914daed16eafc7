package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dmorgan81/seedream/internal/config"
	"github.com/dmorgan81/seedream/internal/image"
	"github.com/dmorgan81/seedream/internal/log"
	"github.com/dmorgan81/seedream/internal/request"
	"github.com/dmorgan81/seedream/internal/store"
	"github.com/google/uuid"
	"github.com/samber/do"
	"github.com/samber/lo"
)

// ConfigurationError is returned for every call while no upstream client is
// available. The process keeps serving.
type ConfigurationError struct {
	Err error
}

func (e *ConfigurationError) Error() string {
	if e.Err == nil || errors.Is(e.Err, image.ErrMissingToken) {
		return "Replicate API token is not configured: set REPLICATE_API_TOKEN and restart the server"
	}
	return fmt.Sprintf("Replicate client is not available (%v): check REPLICATE_API_TOKEN and restart the server", e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

type ImageResult struct {
	Index     int
	SourceURL string
	LocalPath string
	MirrorKey string
	Err       error
}

type Result struct {
	RequestID string
	Version   request.Version
	Prompt    string
	Payload   request.Payload
	Elapsed   time.Duration
	Images    []ImageResult
}

func (r *Result) Saved() int {
	return lo.CountBy(r.Images, func(img ImageResult) bool {
		return img.Err == nil
	})
}

type Handler struct {
	version    request.Version
	normalizer request.Normalizer
	// generator is nil when no credential is configured; configErr says why.
	generator   image.Generator
	configErr   error
	downloader  store.Downloader
	invalidator store.Invalidator
	timeout     time.Duration
	newID       func() string
}

func NewHandler(i *do.Injector) (*Handler, error) {
	cfg := do.MustInvoke[*config.Config](i)
	normalizer, err := request.ForVersion(cfg.ModelVersion)
	if err != nil {
		return nil, err
	}

	h := &Handler{
		version:    cfg.ModelVersion,
		normalizer: normalizer,
		downloader: do.MustInvoke[store.Downloader](i),
		timeout:    cfg.RequestTimeout,
		newID:      shortID,
	}

	if h.generator, err = do.Invoke[image.Generator](i); err != nil {
		h.generator, h.configErr = nil, &ConfigurationError{Err: err}
		do.MustInvoke[*slog.Logger](i).Warn("generate_image calls will fail until restarted", "error", h.configErr)
	}
	if cfg.S3Bucket != "" && cfg.Distribution != "" {
		if h.invalidator, err = do.Invoke[store.Invalidator](i); err != nil {
			return nil, fmt.Errorf("cloudfront invalidator: %w", err)
		}
	}
	return h, nil
}

func shortID() string {
	return uuid.NewString()[:8]
}

func (h *Handler) Version() request.Version {
	return h.version
}

// Generate runs one generate_image call: normalize, invoke the model with a
// bounded wait, then download every produced image in order.
func (h *Handler) Generate(ctx context.Context, args map[string]any) (*Result, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("handler").With("version", h.version)
	log.Info("handling generate_image call")

	if h.generator == nil {
		log.Warn("no upstream client configured")
		return nil, lo.Ternary[error](h.configErr != nil, h.configErr, &ConfigurationError{})
	}

	payload, err := h.normalizer.Normalize(args)
	if err != nil {
		log.Warn("rejected request", "error", err)
		return nil, err
	}

	start := time.Now()
	output, err := h.run(ctx, payload)
	if err != nil {
		log.Error("upstream call failed", "error", err)
		return nil, err
	}

	refs, err := image.Refs(h.version, output)
	if err != nil {
		log.Error("unusable model output", "error", err)
		return nil, err
	}

	result := &Result{
		RequestID: h.newID(),
		Version:   h.version,
		Prompt:    payload["prompt"].(string),
		Payload:   payload,
	}
	for i, ref := range refs {
		img := ImageResult{Index: i, SourceURL: ref}
		name := store.FileName(string(h.version), result.RequestID, i+1, ref)
		if asset, err := h.downloader.Download(ctx, ref, name); err != nil {
			log.Warn("image download failed", "index", i, "url", ref, "error", err)
			img.Err = err
		} else {
			img.LocalPath, img.MirrorKey = asset.Path, asset.MirrorKey
		}
		result.Images = append(result.Images, img)
	}
	result.Elapsed = time.Since(start)

	h.invalidate(ctx, result)

	log.Info("generate_image call finished", "images", len(result.Images), "saved", result.Saved(), "elapsed", result.Elapsed)
	return result, nil
}

// run races the model call against the request timeout. The call itself gets
// a context the timer never cancels, so a timed out prediction keeps running
// on Replicate; the caller just stops waiting for it.
func (h *Handler) run(ctx context.Context, payload request.Payload) (any, error) {
	type outcome struct {
		output any
		err    error
	}
	if err := ctx.Err(); err != nil {
		return nil, &image.UpstreamError{Kind: image.KindCallFailed, Err: err}
	}

	done := make(chan outcome, 1)
	go func() {
		output, err := h.generator.Generate(context.WithoutCancel(ctx), h.version.Model(), payload)
		done <- outcome{output, err}
	}()

	timer := time.NewTimer(h.timeout)
	defer timer.Stop()

	select {
	case o := <-done:
		if o.err != nil {
			return nil, &image.UpstreamError{Kind: image.KindCallFailed, Err: o.err}
		}
		return o.output, nil
	case <-timer.C:
		return nil, &image.UpstreamError{Kind: image.KindTimeout, Err: fmt.Errorf("no result after %s", h.timeout)}
	case <-ctx.Done():
		return nil, &image.UpstreamError{Kind: image.KindCallFailed, Err: ctx.Err()}
	}
}

func (h *Handler) invalidate(ctx context.Context, result *Result) {
	if h.invalidator == nil {
		return
	}
	keys := lo.FilterMap(result.Images, func(img ImageResult, _ int) (string, bool) {
		return img.MirrorKey, img.MirrorKey != ""
	})
	if len(keys) == 0 {
		return
	}
	if err := h.invalidator.Invalidate(ctx, keys); err != nil {
		log.FromContextOrDiscard(ctx).Warn("cloudfront invalidation failed", "error", err)
	}
}
