package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/book-catalog/backend/internal/auth"
	"github.com/book-catalog/backend/internal/config"
	"github.com/book-catalog/backend/internal/db"
	"github.com/book-catalog/backend/internal/events"
	"github.com/book-catalog/backend/internal/graph"
	apphttp "github.com/book-catalog/backend/internal/http"
	"github.com/book-catalog/backend/internal/http/handlers"
	"github.com/book-catalog/backend/internal/metrics"
	"github.com/book-catalog/backend/internal/repositories"
	"github.com/book-catalog/backend/internal/services"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	log := newLogger(cfg)
	defer log.Sync()

	if err := cfg.Validate(log); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics.MustRegister()

	// Database
	database, err := db.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to open database", zap.Error(err), zap.String("driver", cfg.DatabaseDriver))
	}
	defer database.Close()

	// Run migrations
	if err := db.RunMigrations(ctx, database.Gorm, log, repositories.Records()...); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	// Redis (optional)
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	if rdb != nil {
		defer rdb.Close()
	}

	// Repositories
	bookRepo := repositories.NewBookRepo(database.Gorm)
	activityRepo := repositories.NewActivityRepo(database.Gorm)

	// Events
	var publisher events.Publisher = events.NopPublisher{}
	if rdb != nil {
		publisher = events.NewRedisPublisher(rdb, log)
	}

	// Services
	bookService := services.NewBookService(bookRepo, activityRepo, publisher, log)
	activityService := services.NewActivityService(activityRepo)

	// Auth
	verifier, err := newVerifier(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to set up token verification", zap.Error(err))
	}

	// GraphQL
	schema, err := graph.NewSchema(graph.NewResolver(bookService, activityService, log, cfg.IsDevelopment()))
	if err != nil {
		log.Fatal("failed to build graphql schema", zap.Error(err))
	}

	// Handlers
	h := apphttp.Handlers{
		GraphQL: handlers.NewGraphQLHandler(schema, cfg.GraphQLPlayground, log),
		Health:  handlers.NewHealthHandler(database.Gorm),
	}
	if rdb != nil {
		feed := handlers.NewActivityFeed(verifier, events.NewRedisSubscriber(rdb, log), log)
		if err := feed.Start(ctx); err != nil {
			log.Fatal("failed to start activity feed", zap.Error(err))
		}
		h.Feed = feed
	}

	// Fiber app
	app := apphttp.NewApp()
	apphttp.SetupRouter(app, cfg, log, rdb, verifier, h)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")
		cancel()
		_ = app.Shutdown()
	}()

	addr := fmt.Sprintf(":%s", cfg.APIPort)
	log.Info("starting API server",
		zap.String("addr", addr),
		zap.String("env", cfg.AppEnv),
		zap.Bool("playground", cfg.GraphQLPlayground),
	)
	if err := app.Listen(addr); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}

func newLogger(cfg *config.Config) *zap.Logger {
	var (
		log *zap.Logger
		err error
	)
	if cfg.IsDevelopment() {
		log, err = zap.NewDevelopment()
	} else {
		log, err = zap.NewProduction()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	return log
}

// newVerifier accepts HS256 tokens signed with JWT_SECRET and, when JWKS_URL is set, provider tokens.
func newVerifier(ctx context.Context, cfg *config.Config, log *zap.Logger) (auth.Verifier, error) {
	var verifiers []auth.Verifier
	if cfg.JWTSecret != "" {
		verifiers = append(verifiers, auth.NewHMACVerifier(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience))
	}
	if cfg.JWKSURL != "" {
		jwks, err := auth.NewJWKSVerifier(ctx, cfg.JWKSURL, cfg.JWTIssuer, cfg.JWTAudience)
		if err != nil {
			return nil, err
		}
		verifiers = append(verifiers, jwks)
		log.Info("jwks verification enabled", zap.String("url", cfg.JWKSURL))
	}
	return auth.NewChainVerifier(log, verifiers...), nil
}
