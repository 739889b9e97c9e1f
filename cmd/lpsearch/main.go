package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/lvpi/lpsearch/internal/config"
	"github.com/lvpi/lpsearch/internal/db"
	"github.com/lvpi/lpsearch/internal/db/elastic"
	dbRedis "github.com/lvpi/lpsearch/internal/db/redis"
	"github.com/lvpi/lpsearch/internal/domain"
	"github.com/lvpi/lpsearch/internal/domain/search/facet"
	"github.com/lvpi/lpsearch/internal/domain/search/translate"
	logpkg "github.com/lvpi/lpsearch/internal/logger"
	"github.com/lvpi/lpsearch/internal/metrics"
	savedsearchrepo "github.com/lvpi/lpsearch/internal/repository/savedsearch"
	searchrepo "github.com/lvpi/lpsearch/internal/repository/search"
	"github.com/lvpi/lpsearch/internal/repository/searchcache"
	chiTransport "github.com/lvpi/lpsearch/internal/transport/chi"
	openaiChat "github.com/lvpi/lpsearch/internal/transport/openai"
	assistantuc "github.com/lvpi/lpsearch/internal/usecase/assistant"
	healthuc "github.com/lvpi/lpsearch/internal/usecase/health"
	savedsearchuc "github.com/lvpi/lpsearch/internal/usecase/savedsearch"
	searchuc "github.com/lvpi/lpsearch/internal/usecase/search"
	"github.com/lvpi/lpsearch/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting lpsearch API server",
		zap.String("version", version.String()),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("es_addrs", cfg.Elasticsearch.Addrs),
		zap.String("index", cfg.Search.Index),
	)

	ctx := context.Background()

	engine, err := elastic.NewClient(elastic.Config{
		Addrs:    cfg.Elasticsearch.Addrs,
		Username: cfg.Elasticsearch.Username,
		Password: cfg.Elasticsearch.Password,
		APIKey:   cfg.Elasticsearch.APIKey,
	})
	if err != nil {
		logger.Fatal("Failed to create Elasticsearch client", zap.Error(err))
	}
	if err := engine.WaitForReady(ctx, time.Duration(cfg.Elasticsearch.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Elasticsearch not ready", zap.Error(err))
	}
	logger.Info("Connected to Elasticsearch")

	// Optional key-value store for the result cache and saved searches.
	// Redis and Valkey speak the same protocol; both go through rueidis.
	var store db.Store
	if cfg.Store.Enabled() {
		switch cfg.Store.Driver {
		case "redis", "valkey":
			store, err = dbRedis.NewStore(dbRedis.Config{
				Addrs:    cfg.Store.Addrs,
				Username: cfg.Store.Username,
				Password: cfg.Store.Password,
				DB:       cfg.Store.DB,
			})
		default:
			logger.Fatal("Unknown store driver", zap.String("driver", cfg.Store.Driver))
		}
		if err != nil {
			logger.Fatal("Failed to create store", zap.Error(err))
		}
		defer store.Close()

		if err := store.WaitForReady(ctx, time.Duration(cfg.Store.ReadinessTimeout)*time.Second); err != nil {
			logger.Fatal("Store not ready", zap.Error(err))
		}
		logger.Info("Connected to store",
			zap.String("driver", cfg.Store.Driver),
			zap.Strings("addrs", cfg.Store.Addrs),
		)
	}

	// Register search metrics explicitly (no init())
	metrics.RegisterSearchMetrics()

	catalog, err := facet.NewCatalog(cfg.Search.Facets)
	if err != nil {
		logger.Fatal("Invalid facet configuration", zap.Error(err))
	}

	translator := translate.New(translate.Config{
		TitleField:     cfg.Search.TitleField,
		BodyField:      cfg.Search.BodyField,
		TitleBoost:     cfg.Search.TitleBoost,
		SentenceBreak:  cfg.Search.SentenceBreak,
		ParagraphBreak: cfg.Search.ParagraphBreak,
	})

	searchRepo := searchrepo.New(engine, searchrepo.Settings{
		Index:               cfg.Search.Index,
		ResultAttributes:    cfg.Search.ResultAttributes,
		HighlightAttributes: cfg.Search.HighlightAttributes,
		Facets:              catalog,
		BucketSize:          cfg.Search.BucketSize,
		MergeField:          translator.Config().BodyField,
	})

	// Decorator chain: Elasticsearch -> Cached
	var executor domain.SearchExecutor = searchRepo
	if store != nil && cfg.Cache.Enabled {
		executor = searchcache.New(
			searchRepo, store, time.Duration(cfg.Cache.TTLSec)*time.Second, metrics.SearchCacheTotal, logger,
		)
		logger.Info("Search cache enabled", zap.Int("ttl_sec", cfg.Cache.TTLSec))
	}

	searchSvc := searchuc.New(translator, searchRepo, executor)

	// Saved searches need the store; the handlers answer 501 without it.
	var savedSvc *savedsearchuc.Service
	if store != nil {
		savedSvc = savedsearchuc.New(savedsearchrepo.New(store), searchSvc)
	}

	assistantSvc := buildAssistant(cfg.Assistant, logger)

	// Pass nil interface (not typed nil pointer!) if the store is not configured.
	var cachePinger healthuc.Pinger
	if store != nil {
		cachePinger = store
	}
	var assistantChecker healthuc.AssistantChecker
	if assistantSvc.Enabled() {
		assistantChecker = assistantSvc
	}
	healthSvc := healthuc.New(engine, cachePinger, assistantChecker)

	server := chiTransport.NewServer(searchSvc, savedSvc, assistantSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys, "/health", "/metrics"))
	r.Use(metrics.Middleware())
	server.Mount(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// buildAssistant creates one streaming client per provider with an API key.
// Providers without a key are skipped, and so are their models.
func buildAssistant(cfg config.AssistantConfig, logger *zap.Logger) *assistantuc.Service {
	providers := make(map[string]assistantuc.Provider, len(cfg.Providers))
	for name, p := range cfg.Providers {
		if p.APIKey == "" {
			logger.Warn("Assistant provider has no api_key, skipping", zap.String("provider", name))
			continue
		}
		providers[name] = openaiChat.NewChat(&openaiChat.Config{
			APIKey:   p.APIKey,
			BaseURL:  p.BaseURL,
			Provider: name,
			Logger:   logger,
		})
	}

	models := make([]assistantuc.Model, len(cfg.Models))
	for i, m := range cfg.Models {
		models[i] = assistantuc.Model{Name: m.Name, Provider: m.Provider, Label: m.Label}
	}

	svc := assistantuc.New(assistantuc.Config{
		Models:       models,
		DefaultModel: cfg.DefaultModel,
		SystemPrompt: cfg.SystemPrompt,
		MaxTokens:    cfg.MaxTokens,
	}, providers)

	if svc.Enabled() {
		names := make([]string, 0, len(svc.Models()))
		for _, m := range svc.Models() {
			names = append(names, m.Name)
		}
		logger.Info("Assistant enabled", zap.Strings("models", names), zap.String("default", svc.DefaultModel()))
	} else {
		logger.Warn("Assistant disabled: no provider configured")
	}
	return svc
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					if rvr == http.ErrAbortHandler {
						panic(rvr)
					}
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
