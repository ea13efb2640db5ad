package main // Entry point package

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/seatmap-editor/internal/config"
	"github.com/iliyamo/seatmap-editor/internal/database"
	"github.com/iliyamo/seatmap-editor/internal/handler"
	"github.com/iliyamo/seatmap-editor/internal/logger"
	"github.com/iliyamo/seatmap-editor/internal/middleware"
	"github.com/iliyamo/seatmap-editor/internal/queue"
	"github.com/iliyamo/seatmap-editor/internal/repository"
	"github.com/iliyamo/seatmap-editor/internal/router"
	queue_publisher "github.com/iliyamo/seatmap-editor/internal/service"
	"github.com/iliyamo/seatmap-editor/internal/store"
)

func main() {
	cfg := config.Load()

	lg, err := logger.New(cfg.LogLevel, cfg.LogFormat, "seatmap-editor")
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sessCfg := config.LoadSessionConfig()

	// Redis is optional: without it sessions live in memory and the cache
	// and rate limiter are off.
	var (
		rdb      *redis.Client
		docStore store.DocumentStore
	)
	if client, err := config.NewRedisClient(config.LoadRedisConfig()); err != nil {
		lg.Warn("redis unavailable, using in-memory sessions", zap.Error(err))
		docStore = store.NewMemoryStore(sessCfg.TTL)
	} else {
		rdb = client
		defer rdb.Close()
		docStore = store.NewRedisStore(rdb, sessCfg)
	}

	var db *sql.DB
	if cfg.AuditEnabled() {
		db, err = database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			lg.Fatal("mysql: open failed", zap.Error(err))
		}
		defer db.Close()
		mctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		err = database.Migrate(mctx, db)
		cancel()
		if err != nil {
			lg.Fatal("mysql: migrate failed", zap.Error(err))
		}
	}

	h := handler.NewSeatMapHandler(docStore, lg)
	h.MaxUploadBytes = cfg.MaxUploadBytes
	if db != nil {
		h.Audit = repository.NewEditRepo(db)
	}
	if cfg.AMQPURL != "" {
		h.Events = queue_publisher.New(cfg.AMQPURL, lg)
		if cfg.ConsumeEvents {
			consumer := &queue.EditConsumer{URL: cfg.AMQPURL, Dir: "logs", Log: lg.Named("edit-consumer")}
			go func() {
				if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					lg.Error("edit consumer stopped", zap.Error(err))
				}
			}()
		}
	}
	cache := middleware.NewResponseCache(config.LoadCacheConfig(), rdb, lg)
	if cache != nil {
		h.Cache = cache
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	router.RegisterRoutes(e, &handler.HealthHandler{Redis: rdb, DB: db})
	router.RegisterSeatMaps(e, h, router.Options{
		JWTSecret: cfg.JWTSecret,
		RateLimit: middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, lg),
		Cache:     cache,
	})

	addr := ":" + cfg.Port
	go func() {
		lg.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env),
			zap.Bool("redis", rdb != nil), zap.Bool("audit", db != nil), zap.Bool("events", h.Events != nil))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		lg.Error("shutdown", zap.Error(err))
	}
}
