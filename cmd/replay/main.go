// Command replay runs one registered batch job to completion and exits.
// It shares the API's configuration; flags override the replay window so an
// operator can re-drive a slice of an export file without editing the env.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/mdco-storefront/api/internal/di"
	"github.com/mdco-storefront/api/internal/platform/config"
	"github.com/mdco-storefront/api/internal/platform/observability"
	"github.com/mdco-storefront/api/internal/platform/requestctx"
)

func main() {
	var (
		jobName = flag.String("job", di.JobReplayCatalog, "registered job to run")
		file    = flag.String("file", "", "override the replay input file")
		start   = flag.Int("start", -1, "override the first entry to replay")
		count   = flag.Int("count", -1, "override how many entries to replay; 0 means the rest of the file")
	)
	flag.Parse()

	baseLogger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()
	logger := baseLogger.Named("replay")

	cfg, err := config.Load()
	if err != nil {
		var validation *config.ValidationError
		if errors.As(err, &validation) {
			logger.Fatal("invalid configuration", zap.Strings("fields", validation.Fields()))
		}
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	if *file != "" {
		cfg.Jobs.File = *file
	}
	if *start >= 0 {
		cfg.Jobs.Start = *start
	}
	if *count >= 0 {
		cfg.Jobs.Count = *count
	}

	container, err := di.NewContainer(cfg, logger)
	if err != nil {
		logger.Fatal("failed to build container", zap.Error(err))
	}

	if !container.Jobs.Has(*jobName) {
		logger.Fatal("job is not registered",
			zap.String("job", *jobName),
			zap.Strings("available", container.Jobs.Names()))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	ctx = requestctx.WithLogger(ctx, logger)

	logger.Info("job starting", zap.String("job", *jobName))
	if err := container.Jobs.Run(ctx, *jobName); err != nil {
		logger.Fatal("job failed", zap.String("job", *jobName), zap.Error(err))
	}
	logger.Info("job finished", zap.String("job", *jobName))
}
