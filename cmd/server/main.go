package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	apihttp "triplefeature/recsservice/internal/api/http"
	"triplefeature/recsservice/internal/app"
	"triplefeature/recsservice/internal/metrics"
	"triplefeature/recsservice/internal/providers/gemini"
	"triplefeature/recsservice/internal/providers/openrouter"
	"triplefeature/recsservice/internal/recs"
	"triplefeature/recsservice/internal/telemetry"
	"triplefeature/recsservice/internal/tmdb"
)

func main() {
	cfg := app.LoadConfig()
	logger := newLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)
	metrics.Register(prometheus.DefaultRegisterer)

	shutdownTracer, err := telemetry.Init(context.Background(), "movie-recs")
	if err != nil {
		logger.Warn("otel init failed", slog.String("error", err.Error()))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	logger.Info("configuration loaded",
		slog.String("service", "movie-recs"),
		slog.String("httpAddr", cfg.HTTPAddr),
		slog.String("logLevel", cfg.LogLevel),
		slog.String("logFormat", cfg.LogFormat),
		slog.Duration("requestTimeout", cfg.RequestTimeout),
		slog.Duration("providerDeadline", cfg.ProviderDeadline),
		slog.Bool("hasOpenRouterKey", cfg.OpenRouterAPIKey != ""),
		slog.Bool("hasGeminiKey", cfg.GeminiAPIKey != ""),
		slog.Bool("hasTMDBKey", cfg.TMDBAPIKey != ""),
		slog.String("tmdbRegion", cfg.TMDBRegion),
		slog.Bool("hasRedis", strings.TrimSpace(cfg.RedisURL) != ""),
		slog.Duration("metadataCacheTTL", cfg.MetadataCacheTTL),
	)

	redisClient := buildRedisClient(cfg, logger)

	providerClient := &http.Client{
		Timeout:   cfg.ProviderDeadline + 2*time.Second,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
	// Registration order decides who wins duplicate titles.
	providers := []recs.Provider{
		openrouter.NewProvider(openrouter.Config{
			APIKey:  cfg.OpenRouterAPIKey,
			BaseURL: cfg.OpenRouterBaseURL,
			Model:   "openai/gpt-4o-mini",
			Source:  "GPT-4",
			Referer: cfg.OpenRouterReferer,
			Title:   cfg.OpenRouterTitle,
			Client:  providerClient,
		}),
		openrouter.NewProvider(openrouter.Config{
			APIKey:  cfg.OpenRouterAPIKey,
			BaseURL: cfg.OpenRouterBaseURL,
			Model:   "anthropic/claude-3.5-sonnet",
			Source:  "Claude",
			Referer: cfg.OpenRouterReferer,
			Title:   cfg.OpenRouterTitle,
			Client:  providerClient,
		}),
		gemini.NewProvider(gemini.Config{
			APIKey:  cfg.GeminiAPIKey,
			BaseURL: cfg.GeminiBaseURL,
			Client:  providerClient,
		}),
	}

	serviceOpts := []recs.ServiceOption{
		recs.WithProviderDeadline(cfg.ProviderDeadline),
		recs.WithRegion(cfg.TMDBRegion),
		recs.WithEnhanceBatchSize(cfg.EnhanceBatchSize),
		recs.WithCacheDisabled(cfg.CacheDisabled),
	}
	if tmdbClient := buildTMDBClient(cfg, redisClient, logger); tmdbClient != nil {
		serviceOpts = append(serviceOpts, recs.WithTMDB(tmdbClient))
	}
	if redisClient != nil && !cfg.CacheDisabled {
		serviceOpts = append(serviceOpts, recs.WithMetadataCache(recs.NewRedisMetadataCache(redisClient, cfg.MetadataCacheTTL)))
	} else if !cfg.CacheDisabled {
		serviceOpts = append(serviceOpts, recs.WithMetadataCache(recs.NewMemoryMetadataCache(cfg.MetadataCacheTTL, 0)))
	}

	service := recs.NewService(providers, serviceOpts...)

	handler := apihttp.NewServer(service,
		apihttp.WithLogger(logger),
		apihttp.WithCORSOrigin(cfg.CORSOrigin),
	).Handler()
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		// Recommendation requests fan out to three models and then enrich;
		// the write timeout has to cover the whole pipeline.
		WriteTimeout: cfg.RequestTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	logger.Info("movie recommendation service started",
		slog.String("addr", cfg.HTTPAddr),
		slog.Duration("providerDeadline", cfg.ProviderDeadline),
	)

	select {
	case <-rootCtx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown error", slog.String("error", err.Error()))
	}
	logger.Info("movie recommendation service stopped")
}

func newLogger(levelRaw, formatRaw string) *slog.Logger {
	level := parseLogLevel(levelRaw)
	options := &slog.HandlerOptions{Level: level}
	format := strings.ToLower(strings.TrimSpace(formatRaw))
	if format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, options))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, options))
}

func parseLogLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func buildRedisClient(cfg app.Config, logger *slog.Logger) *redis.Client {
	redisURL := strings.TrimSpace(cfg.RedisURL)
	if redisURL == "" {
		return nil
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		logger.Warn("invalid redis url, using in-memory cache only", slog.String("error", err.Error()))
		return nil
	}
	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not reachable, using in-memory cache only", slog.String("error", err.Error()))
		return nil
	}
	logger.Info("redis connected", slog.String("addr", opts.Addr))
	return client
}

func buildTMDBClient(cfg app.Config, redisClient *redis.Client, logger *slog.Logger) *tmdb.Client {
	apiKey := strings.TrimSpace(cfg.TMDBAPIKey)
	if apiKey == "" {
		logger.Info("tmdb api key not configured, metadata enrichment disabled")
		return nil
	}

	client := tmdb.NewClient(tmdb.Config{
		APIKey:   apiKey,
		BaseURL:  cfg.TMDBBaseURL,
		Client:   &http.Client{Timeout: 10 * time.Second, Transport: otelhttp.NewTransport(http.DefaultTransport)},
		Redis:    redisClient,
		CacheTTL: cfg.MetadataCacheTTL,
	})
	logger.Info("tmdb client initialized", slog.Bool("enabled", client.Enabled()))
	return client
}
