package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/kailas-cloud/microblog/internal/config"
	dbMongo "github.com/kailas-cloud/microblog/internal/db/mongo"
	dbRedis "github.com/kailas-cloud/microblog/internal/db/redis"
	"github.com/kailas-cloud/microblog/internal/domain/search/criteria"
	logpkg "github.com/kailas-cloud/microblog/internal/logger"
	"github.com/kailas-cloud/microblog/internal/metrics"
	"github.com/kailas-cloud/microblog/internal/repository/instrumented"
	mongorepo "github.com/kailas-cloud/microblog/internal/repository/mongo"
	postrepo "github.com/kailas-cloud/microblog/internal/repository/post"
	ratingrepo "github.com/kailas-cloud/microblog/internal/repository/rating"
	chiTransport "github.com/kailas-cloud/microblog/internal/transport/chi"
	healthuc "github.com/kailas-cloud/microblog/internal/usecase/health"
	postuc "github.com/kailas-cloud/microblog/internal/usecase/post"
	ratinguc "github.com/kailas-cloud/microblog/internal/usecase/rating"
	"github.com/kailas-cloud/microblog/internal/version"
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

	logger.Info("Starting microblog API server",
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
	)

	ctx := context.Background()

	// Open the document store selected by driver
	var b *backend
	switch cfg.Database.Driver {
	case config.DriverRedis:
		b, err = openRedis(&cfg)
	case config.DriverMongo:
		b, err = openMongo(&cfg)
	default:
		logger.Fatal("Unknown database driver", zap.String("driver", cfg.Database.Driver))
	}
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer b.close()

	if err := b.waitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	if cfg.ShouldCreateIndexes() {
		if err := b.ensureIndexes(ctx); err != nil {
			logger.Fatal("Failed to create indexes", zap.Error(err))
		}
		logger.Info("Indexes ready")
	}

	metrics.RegisterStoreMetrics()

	// Repositories are instrumented at the composition root
	posts := instrumented.NewPostRepo(b.posts, cfg.Database.Driver)
	ratings := instrumented.NewRatingRepo(b.ratings, cfg.Database.Driver)

	// Use case services
	postSvc := postuc.New(posts, criteria.Limits{
		DefaultSize: cfg.Query.DefaultPageSize,
		MaxSize:     cfg.Query.MaxPageSize,
	})
	ratingSvc := ratinguc.New(ratings, posts, cfg.RequireExistingPost())
	healthSvc := healthuc.New(b.pinger, cfg.Database.Driver)

	server := chiTransport.NewServer(postSvc, ratingSvc, healthSvc)
	limiter := chiTransport.NewRateLimiter(cfg.HTTP.RateLimitRPS, cfg.HTTP.RateLimitBurst, 10*time.Minute)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	if len(cfg.HTTP.CORSAllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.HTTP.CORSAllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders: []string{"Location", "X-Request-ID"},
			MaxAge:         300,
		}))
	}
	r.Use(limiter.Middleware)
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
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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

// backend bundles the repositories and lifecycle of one document store.
type backend struct {
	posts         postuc.Repository
	ratings       ratinguc.Repository
	pinger        healthuc.DBPinger
	waitForReady  func(ctx context.Context, timeout time.Duration) error
	ensureIndexes func(ctx context.Context) error
	close         func()
}

func openRedis(cfg *config.Config) (*backend, error) {
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		DB:       cfg.Database.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}

	posts := postrepo.New(store, cfg.Storage.KeyPrefix)
	ratings := ratingrepo.New(store, cfg.Storage.KeyPrefix)

	return &backend{
		posts:        posts,
		ratings:      ratings,
		pinger:       store,
		waitForReady: store.WaitForReady,
		ensureIndexes: func(ctx context.Context) error {
			if err := posts.EnsureIndex(ctx); err != nil {
				return err //nolint:wrapcheck // repository adds context
			}
			return ratings.EnsureIndex(ctx) //nolint:wrapcheck // repository adds context
		},
		close: store.Close,
	}, nil
}

func openMongo(cfg *config.Config) (*backend, error) {
	client, err := dbMongo.NewClient(dbMongo.Config{
		URI:      cfg.Database.Mongo.URI,
		Database: cfg.Database.Mongo.Database,
	})
	if err != nil {
		return nil, fmt.Errorf("mongo: %w", err)
	}

	posts := mongorepo.NewPostRepo(client.Collection(mongorepo.PostsCollection))
	ratings := mongorepo.NewRatingRepo(client.Collection(mongorepo.RatingsCollection))

	return &backend{
		posts:        posts,
		ratings:      ratings,
		pinger:       client,
		waitForReady: client.WaitForReady,
		ensureIndexes: func(ctx context.Context) error {
			if err := posts.EnsureIndex(ctx); err != nil {
				return err //nolint:wrapcheck // repository adds context
			}
			return ratings.EnsureIndex(ctx) //nolint:wrapcheck // repository adds context
		},
		close: client.Close,
	}, nil
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					if rvr == http.ErrAbortHandler { //nolint:errorlint // sentinel compared by identity
						panic(rvr)
					}
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.String("path", r.URL.Path),
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

			ctx := logpkg.With(logpkg.ContextWithLogger(r.Context(), logger), zap.String("request_id", requestID))
			reqLogger := logpkg.FromContext(ctx)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line: one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("query", r.URL.RawQuery),
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
