package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mdco-storefront/api/internal/di"
	"github.com/mdco-storefront/api/internal/handlers"
	"github.com/mdco-storefront/api/internal/platform/config"
	"github.com/mdco-storefront/api/internal/platform/observability"
	"github.com/mdco-storefront/api/internal/platform/requestctx"
)

func main() {
	ctx := context.Background()

	baseLogger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()

	logger := baseLogger.Named("api")
	ctx = observability.WithLogger(ctx, logger)

	cfg, err := config.Load()
	if err != nil {
		var validation *config.ValidationError
		if errors.As(err, &validation) {
			logger.Fatal("invalid configuration", zap.Strings("fields", validation.Fields()))
		}
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	container, err := di.NewContainer(cfg, logger)
	if err != nil {
		logger.Fatal("failed to build container", zap.Error(err))
	}

	runStartupJob(ctx, container, logger)

	productHandlers := handlers.NewProductHandlers(container.Pipeline)
	jobHandlers := handlers.NewJobHandlers(container.Jobs)

	middlewares := []func(http.Handler) http.Handler{
		observability.InjectLoggerMiddleware(logger.Named("http")),
		observability.TraceMiddleware(),
		observability.RecoveryMiddleware(logger.Named("http")),
		observability.RequestLoggerMiddleware(),
	}

	health := handlers.NewHealthHandlers()
	health.AddReadinessCheck("catalog", probeURL(cfg.Catalog.BaseURL))
	health.AddReadinessCheck("marketplace", probeURL(cfg.Marketplace.BaseURL))

	router := handlers.NewRouter(
		handlers.WithMiddlewares(middlewares...),
		handlers.WithHealthHandlers(health),
		handlers.WithProductRoutes(productHandlers.Routes),
		handlers.WithJobRoutes(jobHandlers.Routes),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverLogger := logger.Named("http").With(zap.String("addr", server.Addr))
	go func() {
		serverLogger.Info("mdco storefront api listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverLogger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-shutdown
	logger.Info("shutdown signal received; draining requests")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

// probeURL builds a readiness check that verifies the upstream base URL is
// reachable. Any HTTP response counts as reachable; only transport failures
// mark the dependency unavailable.
func probeURL(baseURL string) handlers.ReadinessCheck {
	client := &http.Client{Timeout: 2 * time.Second}
	return func() error {
		if baseURL == "" {
			return errors.New("base URL is not configured")
		}
		req, err := http.NewRequest(http.MethodHead, baseURL, nil)
		if err != nil {
			return err
		}
		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		resp.Body.Close()
		return nil
	}
}

// runStartupJob launches the configured boot job in the background so a long
// replay does not delay serving traffic.
func runStartupJob(ctx context.Context, container *di.Container, logger *zap.Logger) {
	name := container.Config.Jobs.Startup
	if name == "" {
		return
	}
	if !container.Jobs.Has(name) {
		logger.Warn("startup job is not registered", zap.String("job", name))
		return
	}

	jobCtx := requestctx.WithLogger(context.WithoutCancel(ctx), logger.Named("jobs"))
	go func() {
		logger.Info("startup job launched", zap.String("job", name))
		if err := container.Jobs.Run(jobCtx, name); err != nil {
			logger.Error("startup job failed", zap.String("job", name), zap.Error(err))
			return
		}
		logger.Info("startup job finished", zap.String("job", name))
	}()
}
