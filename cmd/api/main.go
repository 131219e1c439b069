package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	redisclient "github.com/redis/go-redis/v9"
	mongoadapter "github.com/robertarktes/after-school-classes/internal/adapters/mongo"
	redisadapter "github.com/robertarktes/after-school-classes/internal/adapters/redis"
	"github.com/robertarktes/after-school-classes/internal/config"
	httphandler "github.com/robertarktes/after-school-classes/internal/http"
	"github.com/robertarktes/after-school-classes/internal/idempotency"
	"github.com/robertarktes/after-school-classes/internal/observability"
	"github.com/robertarktes/after-school-classes/internal/service"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	shutdownOtel, err := observability.SetupOTel(context.Background(), cfg, "afterschool-api")
	if err != nil {
		log.Fatalf("failed to setup otel: %v", err)
	}
	defer shutdownOtel()

	logger := observability.NewLogger(cfg.LogLevel)
	observability.InitMetrics()

	// No retry: a database that is down at startup is fatal.
	connectCtx, cancelConnect := context.WithTimeout(context.Background(), 10*time.Second)
	store, err := mongoadapter.Connect(connectCtx, cfg.MongoURI, cfg.MongoDatabase, logger)
	cancelConnect()
	if err != nil {
		logger.WithError(err).Error("failed to connect to mongo")
		os.Exit(1)
	}
	if err := store.EnsureIndexes(context.Background()); err != nil {
		logger.WithError(err).Warn("failed to ensure indexes")
	}

	lessonRepo := mongoadapter.NewLessonRepository(store)
	orderRepo := mongoadapter.NewOrderRepository(store)
	outboxRepo := mongoadapter.NewOutboxRepository(store)
	audit := mongoadapter.NewAuditLogger(store)

	var idemp *idempotency.Idempotency
	if cfg.RedisAddr != "" {
		redisClient := redisclient.NewClient(&redisclient.Options{Addr: cfg.RedisAddr})
		defer redisClient.Close()
		idemp = idempotency.NewIdempotency(redisadapter.NewIdempotency(redisClient), cfg.IdempotencyTTL)
		logger.WithField("redis", cfg.RedisAddr).Info("idempotent order replays enabled")
	}

	lessons := service.NewLessonService(lessonRepo, audit, logger)
	orders := service.NewOrderService(store, lessonRepo, orderRepo, outboxRepo, audit, logger)
	handlers := httphandler.NewHandlers(lessons, orders, store, logger)

	r := httphandler.SetupRouter(handlers, logger, idemp, cfg.StaticDir)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.WithField("addr", cfg.HTTPAddr).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "listen")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown Server ...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Error("server shutdown")
		}
		return errors.Wrap(store.Close(shutdownCtx), "close mongo")
	})

	if err := g.Wait(); err != nil {
		logger.WithError(err).Error("server exited with error")
		os.Exit(1)
	}
	logger.Info("Server exiting")
}
