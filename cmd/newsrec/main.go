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

	"github.com/kailas-cloud/newsrec/internal/config"
	dbRedis "github.com/kailas-cloud/newsrec/internal/db/redis"
	logpkg "github.com/kailas-cloud/newsrec/internal/logger"
	"github.com/kailas-cloud/newsrec/internal/metrics"
	articlerepo "github.com/kailas-cloud/newsrec/internal/repository/article"
	"github.com/kailas-cloud/newsrec/internal/repository/articlesql"
	"github.com/kailas-cloud/newsrec/internal/textvec"
	chiTransport "github.com/kailas-cloud/newsrec/internal/transport/chi"
	articleuc "github.com/kailas-cloud/newsrec/internal/usecase/article"
	healthuc "github.com/kailas-cloud/newsrec/internal/usecase/health"
	recommenduc "github.com/kailas-cloud/newsrec/internal/usecase/recommend"
	"github.com/kailas-cloud/newsrec/internal/version"
)

// repository is what the article and recommendation services need from storage.
type repository interface {
	articleuc.Repository
	recommenduc.ArticleReader
}

// storage is an opened article store together with its lifecycle hooks.
type storage struct {
	repo  repository
	ping  healthuc.DBPinger
	close func()
}

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

	logger.Info("Starting newsrec API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
	)

	ctx := context.Background()
	st, err := openStorage(ctx, &cfg, logger)
	if err != nil {
		logger.Fatal("Failed to open article storage", zap.Error(err))
	}
	defer st.close()

	// Register metrics explicitly (no init())
	metrics.RegisterHTTPMetrics()
	metrics.RegisterRecommendMetrics()

	vectorizer := textvec.NewTFIDF(vectorizerOptions(&cfg.Recommend)...)
	logger.Info("Recommendation engine ready",
		zap.Int("min_token_length", cfg.Recommend.MinTokenLength),
		zap.Int("stop_words", len(cfg.Recommend.StopWords)),
		zap.Bool("sublinear_tf", cfg.Recommend.SublinearTF),
		zap.Int("max_corpus_size", cfg.Recommend.MaxCorpusSize),
	)

	// Create use case services
	articleSvc := articleuc.New(st.repo, logger)
	recommendSvc := recommenduc.New(vectorizer, st.repo, logger).
		WithMaxCorpusSize(cfg.Recommend.MaxCorpusSize)
	healthSvc := healthuc.New(st.ping, recommendSvc)

	// Create chi server
	server := chiTransport.NewServer(articleSvc, recommendSvc, healthSvc, logger).
		WithTopN(cfg.Recommend.DefaultTopN, cfg.Recommend.MaxTopN)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Register(r)

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

// openStorage connects the configured driver and waits until it answers.
func openStorage(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*storage, error) {
	switch cfg.Database.Driver {
	case config.DriverValkey, config.DriverRedis:
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Database.Addrs,
			Password: cfg.Database.Password,
		})
		if err != nil {
			return nil, fmt.Errorf("create %s store: %w", cfg.Database.Driver, err)
		}
		if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
			store.Close()
			return nil, fmt.Errorf("%s not ready: %w", cfg.Database.Driver, err)
		}
		logger.Info("Connected to database",
			zap.String("driver", cfg.Database.Driver),
			zap.Strings("addrs", cfg.Database.Addrs),
			zap.String("key_prefix", cfg.Storage.KeyPrefix),
		)
		return &storage{
			repo:  articlerepo.New(store, cfg.Storage.KeyPrefix),
			ping:  store,
			close: store.Close,
		}, nil

	case config.DriverSQLite:
		repo, err := articlesql.Open(cfg.Database.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		logger.Info("Opened SQLite database", zap.String("path", repo.Path()))
		return &storage{
			repo: repo,
			ping: repo,
			close: func() {
				if err := repo.Close(); err != nil {
					logger.Warn("Failed to close SQLite database", zap.Error(err))
				}
			},
		}, nil

	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}

func vectorizerOptions(rc *config.RecommendConfig) []textvec.Option {
	opts := []textvec.Option{textvec.WithMinTokenLength(rc.MinTokenLength)}
	if len(rc.StopWords) > 0 {
		opts = append(opts, textvec.WithStopWords(rc.StopWords...))
	}
	if rc.SublinearTF {
		opts = append(opts, textvec.WithSublinearTF())
	}
	return opts
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
						zap.String("path", r.URL.Path),
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(chiTransport.ErrorResponse{
						Code:    chiTransport.CodeInternalError,
						Message: "internal error",
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
