package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmorgan81/seedream/internal/config"
	"github.com/dmorgan81/seedream/internal/inject"
	"github.com/dmorgan81/seedream/internal/log"
	"github.com/dmorgan81/seedream/internal/server"
	"github.com/samber/do"
	"golang.org/x/sync/errgroup"
)

func main() {
	envFile := flag.String("env-file", "", "load environment variables from this file instead of .env")
	flag.Parse()

	cfg, err := config.Load(config.Options{EnvFile: *envFile})
	if err != nil {
		fmt.Fprintf(os.Stderr, "seedream: %v\n", err)
		os.Exit(1)
	}

	logger := log.New(os.Stderr, log.ParseLevel(cfg.LogLevel))
	logger.Info("starting seedream server",
		"model", cfg.ModelVersion.Model(),
		"output_dir", cfg.OutputDir,
		"request_timeout", cfg.RequestTimeout,
		"max_concurrent", cfg.MaxConcurrent,
	)
	if !cfg.HasCredential() {
		logger.Warn("REPLICATE_API_TOKEN is not set; generate_image will report a configuration error")
	}

	ctx, cancel := signal.NotifyContext(log.NewContext(context.Background(), logger), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	injector := inject.Setup(ctx, cfg)
	srv := do.MustInvoke[*server.Server](injector)

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		defer cancel()
		return srv.Serve(ctx, os.Stdin, os.Stdout)
	})
	group.Go(func() error {
		<-ctx.Done()
		return injector.Shutdown()
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
